package entities

import "time"

// URL represents a shortened URL record
type URL struct {
	ID          string     `json:"id"` // UUID
	ShortCode   string     `json:"short_code"`
	OriginalURL string     `json:"original_url"`
	UserID      *string    `json:"user_id,omitempty"` // Pointer allows nil (unowned/legacy URLs), UUID
	ClickCount  int64      `json:"clicks"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"` // Pointer allows nil (no expiration)
}

// IsExpired reports whether the record's expiry has passed. Expiration is a
// derived status; expired rows stay in the store and their codes are never
// reused.
func (u *URL) IsExpired(now time.Time) bool {
	return u.ExpiresAt != nil && now.After(*u.ExpiresAt)
}

// URLListItem is a URL row enriched with the derived fields the list view
// needs. The QR flags are existence checks against qr_codes, never stored.
type URLListItem struct {
	URL
	UniqueClicks   int64 `json:"unique_clicks"`
	HasShortenedQR bool  `json:"has_shortened_qr"`
	HasOriginalQR  bool  `json:"has_original_qr"`
}
