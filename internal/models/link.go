// Package models содержит доменные структуры сервиса сокращения ссылок.
package models

import "time"

// Категории ссылок.
const (
	CategoryWork    = "work"
	CategorySocials = "socials"
	CategoryOther   = "other"
)

// Categories перечисляет допустимые категории в порядке отображения.
var Categories = []string{CategoryWork, CategorySocials, CategoryOther}

// CategoryTitle возвращает человекочитаемое имя категории.
func CategoryTitle(category string) string {
	switch category {
	case CategoryWork:
		return "Work"
	case CategorySocials:
		return "Socials"
	case CategoryOther:
		return "Other"
	}
	return category
}

// Link представляет сокращенную ссылку.
type Link struct {
	ID          int64      `json:"id"`
	UserID      string     `json:"user_id,omitempty"`
	OriginalURL string     `json:"original_url"`
	ShortURL    string     `json:"short_url"`
	ClickCount  int64      `json:"click_count"`
	CreatedAt   time.Time  `json:"creation_date"`
	ExpiresAt   *time.Time `json:"expiry_date,omitempty"`
	Category    string     `json:"category"`
	HasQR       bool       `json:"has_qr,omitempty"`
}

// IsExpired сообщает, истек ли срок действия ссылки к моменту now.
func (l *Link) IsExpired(now time.Time) bool {
	if l.ExpiresAt == nil {
		return false
	}
	return now.After(*l.ExpiresAt)
}

// Clone возвращает независимую копию ссылки.
func (l *Link) Clone() *Link {
	c := *l
	if l.ExpiresAt != nil {
		t := *l.ExpiresAt
		c.ExpiresAt = &t
	}
	return &c
}

// Stats агрегированная статистика для главной страницы.
type Stats struct {
	TotalURLs   int64
	TotalClicks int64
	ActiveUsers int64
}

// CategoryCount количество ссылок в категории.
type CategoryCount struct {
	Category string
	Count    int64
}
