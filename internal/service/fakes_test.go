package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"makemeshort/internal/apperrors"
	"makemeshort/internal/classify"
	"makemeshort/internal/entities"
	"makemeshort/internal/repository"
)

// fakeURLRepo is an in-memory URLRepository enforcing short-code uniqueness
// the way the real unique index does.
type fakeURLRepo struct {
	mu   sync.Mutex
	urls map[string]*entities.URL
	seq  int

	// conflictNext forces the next N creates to fail with CodeConflict
	// regardless of the requested code.
	conflictNext int
	createCalls  int
}

func newFakeURLRepo() *fakeURLRepo {
	return &fakeURLRepo{urls: make(map[string]*entities.URL)}
}

func (f *fakeURLRepo) Create(ctx context.Context, shortCode, originalURL string, userID *string, expiresAt *time.Time) (*entities.URL, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.createCalls++
	if f.conflictNext > 0 {
		f.conflictNext--
		return nil, apperrors.Newf(apperrors.CodeConflict, "short code '%s' is already taken", shortCode)
	}
	if _, exists := f.urls[shortCode]; exists {
		return nil, apperrors.Newf(apperrors.CodeConflict, "short code '%s' is already taken", shortCode)
	}

	f.seq++
	u := &entities.URL{
		ID:          fmt.Sprintf("url-%d", f.seq),
		ShortCode:   shortCode,
		OriginalURL: originalURL,
		UserID:      userID,
		CreatedAt:   time.Now(),
		ExpiresAt:   expiresAt,
	}
	f.urls[shortCode] = u
	copied := *u
	return &copied, nil
}

func (f *fakeURLRepo) FindByShortCode(ctx context.Context, shortCode string) (*entities.URL, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.urls[shortCode]
	if !ok {
		return nil, apperrors.Newf(apperrors.NotFound, "short URL '%s' not found", shortCode)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeURLRepo) List(ctx context.Context, filter repository.URLListFilter) ([]*entities.URLListItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var items []*entities.URLListItem
	for _, u := range f.urls {
		if filter.Search != "" && !strings.Contains(u.ShortCode, filter.Search) && !strings.Contains(u.OriginalURL, filter.Search) {
			continue
		}
		switch {
		case filter.OwnerID != "":
			if u.UserID == nil || *u.UserID != filter.OwnerID {
				continue
			}
		case filter.OwnedOnly && filter.CurrentUserID != nil:
			if u.UserID == nil || *u.UserID != *filter.CurrentUserID {
				continue
			}
		}
		items = append(items, &entities.URLListItem{URL: *u})
	}
	return items, nil
}

func (f *fakeURLRepo) DeleteCascade(ctx context.Context, shortCode string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.urls[shortCode]; !ok {
		return apperrors.Newf(apperrors.NotFound, "short URL '%s' not found", shortCode)
	}
	delete(f.urls, shortCode)
	return nil
}

// fakeVisitorRepo is an in-memory append-only event log.
type fakeVisitorRepo struct {
	mu     sync.Mutex
	events []*entities.URLVisitor
	seq    int
}

func (f *fakeVisitorRepo) RecordVisit(ctx context.Context, visit *entities.URLVisitor) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	copied := *visit
	copied.ID = fmt.Sprintf("visit-%d", f.seq)
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = time.Now()
	}
	f.events = append(f.events, &copied)
	return nil
}

func (f *fakeVisitorRepo) FindByShortCode(ctx context.Context, shortCode string) ([]*entities.URLVisitor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*entities.URLVisitor
	for _, ev := range f.events {
		if ev.ShortCode == shortCode {
			copied := *ev
			out = append(out, &copied)
		}
	}
	return out, nil
}

// fakeQRRepo is an in-memory QRRepository keyed by (short_code, target_type).
type fakeQRRepo struct {
	mu  sync.Mutex
	qrs map[string]*entities.QRCode
	seq int
	now func() time.Time
}

func newFakeQRRepo() *fakeQRRepo {
	return &fakeQRRepo{qrs: make(map[string]*entities.QRCode), now: time.Now}
}

func qrKey(code string, target entities.QRTargetType) string {
	return code + "|" + string(target)
}

func (f *fakeQRRepo) FindByCodeAndType(ctx context.Context, shortCode string, target entities.QRTargetType) (*entities.QRCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	qr, ok := f.qrs[qrKey(shortCode, target)]
	if !ok {
		return nil, apperrors.Newf(apperrors.NotFound, "no QR code cached for '%s' (%s)", shortCode, target)
	}
	copied := *qr
	return &copied, nil
}

func (f *fakeQRRepo) Upsert(ctx context.Context, qr *entities.QRCode) (*entities.QRCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	copied := *qr
	copied.ID = fmt.Sprintf("qr-%d", f.seq)
	copied.GeneratedAt = f.now()
	f.qrs[qrKey(qr.ShortCode, qr.TargetType)] = &copied
	returned := copied
	return &returned, nil
}

func (f *fakeQRRepo) List(ctx context.Context, filter repository.QRListFilter) ([]*entities.QRCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*entities.QRCode
	for _, qr := range f.qrs {
		if filter.TargetType != "" && string(qr.TargetType) != filter.TargetType {
			continue
		}
		if filter.DirectOnly && !qr.IsDirect() {
			continue
		}
		copied := *qr
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeQRRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.qrs)
}

// stubClassifier returns a fixed classification per user agent string.
type stubClassifier struct {
	byUA map[string]classify.Classification
}

func (s *stubClassifier) Classify(userAgent string) classify.Classification {
	if c, ok := s.byUA[userAgent]; ok {
		return c
	}
	return classify.Classification{Browser: classify.Unknown, Device: classify.Unknown}
}