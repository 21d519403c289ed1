package service

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"

	"makemeshort/internal/apperrors"
)

// codeAlphabet is the base62 alphabet used for generated codes. Codes are
// case-sensitive.
const codeAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// generatedCodeLength gives ~5.7e10 possible codes; collisions stay
// vanishingly rare at expected volumes, and the store's unique index plus
// bounded retry covers the rest.
const generatedCodeLength = 6

const (
	customCodeMinLength = 3
	customCodeMaxLength = 20
)

var customCodePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Reserved short codes that cannot be claimed as custom codes: route
// prefixes and the direct-QR namespace.
var reservedCodes = map[string]bool{
	"api":       true,
	"auth":      true,
	"login":     true,
	"signup":    true,
	"logout":    true,
	"shorten":   true,
	"urls":      true,
	"url":       true,
	"users":     true,
	"qr":        true,
	"r":         true,
	"analytics": true,
	"health":    true,
	"admin":     true,
	"www":       true,
}

// generateCode produces a pseudo-random candidate code. Uniqueness is not
// checked here; the caller inserts against the store's unique index and
// retries on conflict.
func generateCode() (string, error) {
	buf := make([]byte, generatedCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}

// validateCustomCode checks the shape of a caller-chosen code. Availability
// is not checked: a taken code surfaces as CodeConflict on insert.
func validateCustomCode(code string) error {
	if len(code) < customCodeMinLength {
		return apperrors.Newf(apperrors.InvalidCode, "short code must be at least %d characters long", customCodeMinLength)
	}
	if len(code) > customCodeMaxLength {
		return apperrors.Newf(apperrors.InvalidCode, "short code must be at most %d characters long", customCodeMaxLength)
	}
	if !customCodePattern.MatchString(code) {
		return apperrors.New(apperrors.InvalidCode, "short code can only contain letters, numbers, hyphens, and underscores")
	}
	if reservedCodes[strings.ToLower(code)] || strings.HasPrefix(code, "direct-") {
		return apperrors.Newf(apperrors.InvalidCode, "short code '%s' is reserved and cannot be used", code)
	}
	return nil
}
