package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"makemeshort/internal/entities"
	"makemeshort/internal/repository"
)

// VisitorTracker records per-redirect visit events. Raw IPs never reach the
// store: the visitor identity is a salted one-way hash, and uniqueness is
// recomputed from the event log on analytics reads rather than cached.
type VisitorTracker interface {
	RecordVisit(ctx context.Context, shortCode, rawIP string, userAgent, referrer *string, countryCode string) error
}

type visitorTracker struct {
	repo repository.VisitorRepository
	salt string
}

// NewVisitorTracker creates a visitor tracker hashing IPs with the given salt.
func NewVisitorTracker(repo repository.VisitorRepository, salt string) VisitorTracker {
	return &visitorTracker{repo: repo, salt: salt}
}

// hashIP derives the stored visitor identifier. Salting blocks rainbow-table
// reversal of the address space.
func (t *visitorTracker) hashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip + t.salt))
	return hex.EncodeToString(sum[:])
}

func (t *visitorTracker) RecordVisit(ctx context.Context, shortCode, rawIP string, userAgent, referrer *string, countryCode string) error {
	visit := &entities.URLVisitor{
		ShortCode:   shortCode,
		VisitorHash: t.hashIP(rawIP),
		CountryCode: countryCode,
		UserAgent:   userAgent,
		Referrer:    referrer,
	}
	return t.repo.RecordVisit(ctx, visit)
}
