package models

import "time"

// User зарегистрированный пользователь.
type User struct {
	ID           string
	Username     string
	PasswordHash []byte
	CreatedAt    time.Time
}
