package entities

import (
	"strings"
	"time"
)

// QRTargetType says whether a QR code encodes the original URL or the
// shortened redirect URL.
type QRTargetType string

const (
	TargetOriginal  QRTargetType = "original"
	TargetShortened QRTargetType = "shortened"
)

// ParseTargetType maps a query-parameter value to a target type, defaulting
// to the shortened URL.
func ParseTargetType(s string) QRTargetType {
	if s == string(TargetOriginal) {
		return TargetOriginal
	}
	return TargetShortened
}

// DirectCodePrefix marks QR records generated for an arbitrary URL with no
// associated shortened URL.
const DirectCodePrefix = "direct-"

// QRCode is a cached rendered QR payload. At most one record exists per
// (short_code, target_type) pair; forced regeneration replaces the record in
// place.
type QRCode struct {
	ID          string       `json:"id"` // UUID
	ShortCode   string       `json:"short_code"`
	OriginalURL string       `json:"original_url"`
	SVGContent  string       `json:"svg_content"`
	Size        int          `json:"size"`
	TargetType  QRTargetType `json:"target_type"`
	UserID      *string      `json:"user_id,omitempty"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// IsDirect reports whether the record was generated for a raw URL rather
// than a short code.
func (q *QRCode) IsDirect() bool {
	return strings.HasPrefix(q.ShortCode, DirectCodePrefix)
}
