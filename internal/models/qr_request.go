package models

// DirectQRRequest represents the request body for generating a QR code for
// an arbitrary URL without shortening it first
type DirectQRRequest struct {
	URL             string `json:"url" binding:"required"`
	Size            *int   `json:"size,omitempty" binding:"omitempty,gt=0"`
	ForceRegenerate *bool  `json:"force_regenerate,omitempty"`
}

// QRSearchParams are the query parameters accepted by the QR listings
type QRSearchParams struct {
	Search     string `form:"search"`
	TargetType string `form:"target_type"`
	DirectOnly bool   `form:"direct_only"`
	OwnedOnly  bool   `form:"owned_only"`
}
