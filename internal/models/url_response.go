package models

import "time"

// CreateURLResponse represents the response after creating a short URL
type CreateURLResponse struct {
	ShortCode   string     `json:"short_code"`
	OriginalURL string     `json:"original_url"`
	ShortURL    string     `json:"short_url"` // Full redirect URL (base URL + /r/ + code)
	UserID      *string    `json:"user_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// URLListItem is one row of a URL listing
type URLListItem struct {
	ID                 string     `json:"id"`
	ShortCode          string     `json:"short_code"`
	OriginalURL        string     `json:"original_url"`
	UserID             *string    `json:"user_id,omitempty"`
	Clicks             int64      `json:"clicks"`
	UniqueClicks       int64      `json:"unique_clicks"`
	HasShortenedQR     bool       `json:"has_shortened_qr"`
	HasOriginalQR      bool       `json:"has_original_qr"`
	OwnedByCurrentUser bool       `json:"owned_by_current_user"`
	CreatedAt          time.Time  `json:"created_at"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`
}
