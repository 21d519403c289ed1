package models

import "time"

// BucketCount is one entry of a grouped breakdown, sorted by descending
// count with ties broken by key.
type BucketCount struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// DayCount is one day of click history (date formatted YYYY-MM-DD, UTC).
type DayCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// AnalyticsSummary is the on-demand analytics view for one short code
type AnalyticsSummary struct {
	ShortCode   string     `json:"short_code"`
	OriginalURL string     `json:"original_url"`
	UserID      *string    `json:"user_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`

	Clicks          int64 `json:"clicks"`
	UniqueClicks    int64 `json:"unique_clicks"`
	ReturningClicks int64 `json:"returning_clicks"`

	Referrers []BucketCount `json:"referrers"`
	Browsers  []BucketCount `json:"browsers"`
	Devices   []BucketCount `json:"devices"`
	Countries []BucketCount `json:"countries"`

	ClickHistory []DayCount `json:"click_history"`

	HasShortenedQR         bool       `json:"has_shortened_qr"`
	HasOriginalQR          bool       `json:"has_original_qr"`
	ShortenedQRGeneratedAt *time.Time `json:"shortened_qr_generated_at,omitempty"`
	OriginalQRGeneratedAt  *time.Time `json:"original_qr_generated_at,omitempty"`
}
