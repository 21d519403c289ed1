package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"makemeshort/internal/apperrors"
	"makemeshort/internal/models"
)

func newTestURLService(repo *fakeURLRepo) *urlService {
	return NewURLService(repo, nil, "http://short.test", zap.NewNop()).(*urlService)
}

func TestCreateGeneratedCode(t *testing.T) {
	repo := newFakeURLRepo()
	svc := newTestURLService(repo)

	resp, err := svc.Create(context.Background(), &models.CreateURLRequest{URL: "https://example.com/page"}, nil)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if len(resp.ShortCode) != generatedCodeLength {
		t.Errorf("generated code %q has length %d, want %d", resp.ShortCode, len(resp.ShortCode), generatedCodeLength)
	}
	if resp.ShortURL != "http://short.test/r/"+resp.ShortCode {
		t.Errorf("short URL = %q", resp.ShortURL)
	}

	got, err := svc.Resolve(context.Background(), resp.ShortCode)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got.OriginalURL != "https://example.com/page" {
		t.Errorf("resolved URL = %q", got.OriginalURL)
	}
}

func TestCreateInvalidURL(t *testing.T) {
	svc := newTestURLService(newFakeURLRepo())

	for _, raw := range []string{"", "example.com", "ftp://example.com/file", "https://"} {
		_, err := svc.Create(context.Background(), &models.CreateURLRequest{URL: raw}, nil)
		if !apperrors.IsKind(err, apperrors.InvalidURL) {
			t.Errorf("Create(%q) kind = %v, want InvalidURL", raw, apperrors.KindOf(err))
		}
	}
}

func TestCreateCustomCode(t *testing.T) {
	repo := newFakeURLRepo()
	svc := newTestURLService(repo)

	custom := "my-brand"
	resp, err := svc.Create(context.Background(), &models.CreateURLRequest{URL: "https://example.com", CustomCode: &custom}, nil)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if resp.ShortCode != custom {
		t.Errorf("short code = %q, want %q", resp.ShortCode, custom)
	}
}

func TestCreateCustomCodeConflictNotRetried(t *testing.T) {
	repo := newFakeURLRepo()
	svc := newTestURLService(repo)

	custom := "taken1"
	if _, err := svc.Create(context.Background(), &models.CreateURLRequest{URL: "https://example.com/a", CustomCode: &custom}, nil); err != nil {
		t.Fatalf("first Create() error: %v", err)
	}
	callsBefore := repo.createCalls

	_, err := svc.Create(context.Background(), &models.CreateURLRequest{URL: "https://example.com/b", CustomCode: &custom}, nil)
	if !apperrors.IsKind(err, apperrors.CodeConflict) {
		t.Fatalf("second Create() kind = %v, want CodeConflict", apperrors.KindOf(err))
	}
	if repo.createCalls != callsBefore+1 {
		t.Errorf("conflicting custom code attempted %d inserts, want exactly 1", repo.createCalls-callsBefore)
	}
}

func TestCreateRetriesOnCollision(t *testing.T) {
	repo := newFakeURLRepo()
	repo.conflictNext = 3
	svc := newTestURLService(repo)

	resp, err := svc.Create(context.Background(), &models.CreateURLRequest{URL: "https://example.com"}, nil)
	if err != nil {
		t.Fatalf("Create() error after collisions: %v", err)
	}
	if resp.ShortCode == "" {
		t.Fatal("Create() returned empty short code")
	}
	if repo.createCalls != 4 {
		t.Errorf("createCalls = %d, want 4 (3 collisions + 1 success)", repo.createCalls)
	}
}

func TestCreateGenerationExhausted(t *testing.T) {
	repo := newFakeURLRepo()
	repo.conflictNext = maxGenerateAttempts
	svc := newTestURLService(repo)

	_, err := svc.Create(context.Background(), &models.CreateURLRequest{URL: "https://example.com"}, nil)
	if !apperrors.IsKind(err, apperrors.GenerationExhausted) {
		t.Fatalf("Create() kind = %v, want GenerationExhausted", apperrors.KindOf(err))
	}
	if repo.createCalls != maxGenerateAttempts {
		t.Errorf("createCalls = %d, want %d", repo.createCalls, maxGenerateAttempts)
	}
}

func TestConcurrentCreatesProduceDistinctCodes(t *testing.T) {
	repo := newFakeURLRepo()
	svc := newTestURLService(repo)

	const n = 20
	codes := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := svc.Create(context.Background(), &models.CreateURLRequest{URL: "https://example.com"}, nil)
			if err != nil {
				t.Errorf("Create() error: %v", err)
				return
			}
			codes <- resp.ShortCode
		}()
	}
	wg.Wait()
	close(codes)

	seen := make(map[string]bool)
	for code := range codes {
		if seen[code] {
			t.Fatalf("short code %q assigned twice", code)
		}
		seen[code] = true
	}
}

func TestResolveNotFound(t *testing.T) {
	svc := newTestURLService(newFakeURLRepo())

	_, err := svc.Resolve(context.Background(), "nosuch")
	if !apperrors.IsKind(err, apperrors.NotFound) {
		t.Fatalf("Resolve() kind = %v, want NotFound", apperrors.KindOf(err))
	}
}

func TestResolveExpired(t *testing.T) {
	repo := newFakeURLRepo()
	svc := newTestURLService(repo)

	days := 1
	resp, err := svc.Create(context.Background(), &models.CreateURLRequest{URL: "https://example.com", ExpiresInDays: &days}, nil)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	// Still live just before the deadline.
	if _, err := svc.Resolve(context.Background(), resp.ShortCode); err != nil {
		t.Fatalf("Resolve() before expiry: %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	_, err = svc.Resolve(context.Background(), resp.ShortCode)
	if !apperrors.IsKind(err, apperrors.Expired) {
		t.Fatalf("Resolve() after expiry kind = %v, want Expired", apperrors.KindOf(err))
	}

	// The record is retained; the code must not become claimable again.
	custom := resp.ShortCode
	_, err = svc.Create(context.Background(), &models.CreateURLRequest{URL: "https://example.com/other", CustomCode: &custom}, nil)
	if !apperrors.IsKind(err, apperrors.CodeConflict) {
		t.Fatalf("Create() on expired code kind = %v, want CodeConflict", apperrors.KindOf(err))
	}
}

func TestDeleteOwnership(t *testing.T) {
	owner := "user-1"
	other := "user-2"

	tests := []struct {
		name      string
		urlOwner  *string
		requester *string
		wantKind  apperrors.Kind
	}{
		{"owner deletes own", &owner, &owner, 0},
		{"other user denied", &owner, &other, apperrors.Forbidden},
		{"anonymous denied on owned", &owner, nil, apperrors.Forbidden},
		{"anyone deletes unowned", nil, &other, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeURLRepo()
			svc := newTestURLService(repo)

			custom := "victim"
			if _, err := svc.Create(context.Background(), &models.CreateURLRequest{URL: "https://example.com", CustomCode: &custom}, tt.urlOwner); err != nil {
				t.Fatalf("Create() error: %v", err)
			}

			err := svc.Delete(context.Background(), custom, tt.requester)
			if tt.wantKind == 0 {
				if err != nil {
					t.Fatalf("Delete() error: %v", err)
				}
				if _, err := repo.FindByShortCode(context.Background(), custom); !apperrors.IsKind(err, apperrors.NotFound) {
					t.Error("URL still present after delete")
				}
			} else if !apperrors.IsKind(err, tt.wantKind) {
				t.Fatalf("Delete() kind = %v, want %v", apperrors.KindOf(err), tt.wantKind)
			}
		})
	}
}

func TestDeleteNotFound(t *testing.T) {
	svc := newTestURLService(newFakeURLRepo())

	user := "user-1"
	err := svc.Delete(context.Background(), "nosuch", &user)
	if !apperrors.IsKind(err, apperrors.NotFound) {
		t.Fatalf("Delete() kind = %v, want NotFound", apperrors.KindOf(err))
	}
}

func TestListMarksOwnership(t *testing.T) {
	repo := newFakeURLRepo()
	svc := newTestURLService(repo)

	mine := "user-1"
	theirs := "user-2"
	code1, code2 := "mine99", "theirs9"
	if _, err := svc.Create(context.Background(), &models.CreateURLRequest{URL: "https://example.com/1", CustomCode: &code1}, &mine); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if _, err := svc.Create(context.Background(), &models.CreateURLRequest{URL: "https://example.com/2", CustomCode: &code2}, &theirs); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	items, err := svc.List(context.Background(), models.URLSearchParams{}, &mine)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("List() returned %d items, want 2", len(items))
	}
	for _, it := range items {
		wantOwned := it.ShortCode == code1
		if it.OwnedByCurrentUser != wantOwned {
			t.Errorf("item %q owned = %v, want %v", it.ShortCode, it.OwnedByCurrentUser, wantOwned)
		}
	}

	owned, err := svc.List(context.Background(), models.URLSearchParams{OwnedOnly: true}, &mine)
	if err != nil {
		t.Fatalf("List(owned_only) error: %v", err)
	}
	if len(owned) != 1 || owned[0].ShortCode != code1 {
		t.Errorf("List(owned_only) = %v, want only %q", owned, code1)
	}
}
