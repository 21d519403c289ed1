package entities

import "time"

// URLVisitor is one recorded redirect through a short code. Events are
// append-only: they are never mutated and only removed when their parent URL
// is deleted. The visitor is identified by a salted hash; raw IPs are never
// stored.
type URLVisitor struct {
	ID          string    `json:"id"` // UUID
	ShortCode   string    `json:"short_code"`
	VisitorHash string    `json:"visitor_hash"`
	CountryCode string    `json:"country_code,omitempty"` // ISO 3166-1 alpha-2, resolved at record time
	UserAgent   *string   `json:"user_agent,omitempty"`
	Referrer    *string   `json:"referrer,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
