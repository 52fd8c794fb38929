package models

// RenameSlugRequest тело запроса на переименование слага.
type RenameSlugRequest struct {
	ShortURL string `json:"short_url"`
}

// RenameSlugResponse ответ на успешное переименование.
type RenameSlugResponse struct {
	Success  bool   `json:"success"`
	ShortURL string `json:"short_url"`
}

// DeleteResponse ответ на удаление ссылки.
type DeleteResponse struct {
	Deleted bool   `json:"deleted"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ErrorResponse ответ с описанием ошибки.
type ErrorResponse struct {
	Error string `json:"error"`
}

// QRPreview ответ предпросмотра QR-кода.
type QRPreview struct {
	ShortLink string `json:"short_link"`
	QRDataURI string `json:"qr_data_uri"`
}
