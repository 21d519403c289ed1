package models

// CreateURLRequest represents the request body for creating a short URL
type CreateURLRequest struct {
	URL           string  `json:"url" binding:"required"`
	CustomCode    *string `json:"custom_code,omitempty"`
	ExpiresInDays *int    `json:"expires_in_days,omitempty" binding:"omitempty,gt=0"`
}

// URLSearchParams are the query parameters accepted by the URL listings
type URLSearchParams struct {
	Search    string `form:"search"`
	OwnedOnly bool   `form:"owned_only"`
	UserID    string `form:"user_id"`
}
