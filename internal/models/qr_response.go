package models

import "time"

// QRCodeInfo is one row of a QR code listing
type QRCodeInfo struct {
	ID                 string    `json:"id"`
	ShortCode          string    `json:"short_code"`
	OriginalURL        string    `json:"original_url"`
	TargetType         string    `json:"target_type"`
	IsDirect           bool      `json:"is_direct"`
	Size               int       `json:"size"`
	UserID             *string   `json:"user_id,omitempty"`
	OwnedByCurrentUser bool      `json:"owned_by_current_user"`
	GeneratedAt        time.Time `json:"generated_at"`
	SVGContent         string    `json:"svg_content,omitempty"`
}
