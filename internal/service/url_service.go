package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"makemeshort/internal/apperrors"
	"makemeshort/internal/cache"
	"makemeshort/internal/entities"
	"makemeshort/internal/models"
	"makemeshort/internal/repository"
)

// maxGenerateAttempts bounds collision retries for generated codes before
// giving up with GenerationExhausted.
const maxGenerateAttempts = 10

const resolveCacheTTL = time.Hour

// URLService owns the shortened-URL lifecycle: creation with code
// generation, expiry-aware resolution, listing and cascade deletion.
type URLService interface {
	Create(ctx context.Context, req *models.CreateURLRequest, userID *string) (*models.CreateURLResponse, error)
	// Resolve returns the record for a code, failing NotFound when absent
	// and Expired when past its expiry. Expired rows are never deleted on
	// read.
	Resolve(ctx context.Context, code string) (*entities.URL, error)
	List(ctx context.Context, params models.URLSearchParams, currentUserID *string) ([]*models.URLListItem, error)
	Delete(ctx context.Context, code string, requester *string) error
	// ShortURL returns the public redirect URL for a code.
	ShortURL(code string) string
}

type urlService struct {
	repo    repository.URLRepository
	cache   cache.Cache // nil when Redis is unavailable
	baseURL string
	logger  *zap.Logger
	now     func() time.Time
}

// NewURLService creates a new URL service. cacheClient may be nil.
func NewURLService(repo repository.URLRepository, cacheClient cache.Cache, baseURL string, logger *zap.Logger) URLService {
	return &urlService{
		repo:    repo,
		cache:   cacheClient,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
		now:     time.Now,
	}
}

// validateOriginalURL requires an absolute http(s) URL with a host.
func validateOriginalURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return apperrors.Wrap(apperrors.InvalidURL, "invalid URL format", err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return apperrors.New(apperrors.InvalidURL, "URL must be absolute with an http or https scheme")
	}
	return nil
}

func (s *urlService) ShortURL(code string) string {
	return fmt.Sprintf("%s/r/%s", s.baseURL, code)
}

func (s *urlService) Create(ctx context.Context, req *models.CreateURLRequest, userID *string) (*models.CreateURLResponse, error) {
	if err := validateOriginalURL(req.URL); err != nil {
		return nil, err
	}

	var expiresAt *time.Time
	if req.ExpiresInDays != nil {
		if *req.ExpiresInDays <= 0 {
			return nil, apperrors.New(apperrors.InvalidURL, "expires_in_days must be positive")
		}
		t := s.now().UTC().Add(time.Duration(*req.ExpiresInDays) * 24 * time.Hour)
		expiresAt = &t
	}

	var created *entities.URL

	if req.CustomCode != nil && strings.TrimSpace(*req.CustomCode) != "" {
		// Custom code: shape-check, then let the unique index decide.
		// Conflicts are client errors and are never retried.
		customCode := strings.TrimSpace(*req.CustomCode)
		if err := validateCustomCode(customCode); err != nil {
			return nil, err
		}
		url, err := s.repo.Create(ctx, customCode, req.URL, userID, expiresAt)
		if err != nil {
			return nil, err
		}
		created = url
	} else {
		// Generated code: insert against the unique index and retry with a
		// fresh candidate on collision. There is no check-then-insert
		// window; two concurrent callers can never both succeed with the
		// same code.
		backoff := retry.WithMaxRetries(maxGenerateAttempts-1, retry.NewConstant(5*time.Millisecond))
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			code, err := generateCode()
			if err != nil {
				return err
			}
			url, err := s.repo.Create(ctx, code, req.URL, userID, expiresAt)
			if apperrors.IsKind(err, apperrors.CodeConflict) {
				return retry.RetryableError(err)
			}
			if err != nil {
				return err
			}
			created = url
			return nil
		})
		if err != nil {
			if apperrors.IsKind(err, apperrors.CodeConflict) {
				return nil, apperrors.Wrap(apperrors.GenerationExhausted,
					fmt.Sprintf("failed to generate a unique short code after %d attempts", maxGenerateAttempts), err)
			}
			return nil, err
		}
	}

	s.cacheResolved(ctx, created)

	return &models.CreateURLResponse{
		ShortCode:   created.ShortCode,
		OriginalURL: created.OriginalURL,
		ShortURL:    s.ShortURL(created.ShortCode),
		UserID:      created.UserID,
		CreatedAt:   created.CreatedAt,
		ExpiresAt:   created.ExpiresAt,
	}, nil
}

// resolveCacheEntry is the subset of a URL record kept in Redis for the
// redirect hot path.
type resolveCacheEntry struct {
	OriginalURL string     `json:"original_url"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

func resolveCacheKey(code string) string {
	return "url:" + code
}

func (s *urlService) cacheResolved(ctx context.Context, u *entities.URL) {
	if s.cache == nil {
		return
	}
	entry := resolveCacheEntry{OriginalURL: u.OriginalURL, ExpiresAt: u.ExpiresAt}
	if err := s.cache.SetJSON(ctx, resolveCacheKey(u.ShortCode), entry, resolveCacheTTL); err != nil {
		s.logger.Warn("failed to cache resolved URL", zap.String("short_code", u.ShortCode), zap.Error(err))
	}
}

func (s *urlService) Resolve(ctx context.Context, code string) (*entities.URL, error) {
	if s.cache != nil {
		var entry resolveCacheEntry
		if err := s.cache.GetJSON(ctx, resolveCacheKey(code), &entry); err == nil && entry.OriginalURL != "" {
			cached := &entities.URL{ShortCode: code, OriginalURL: entry.OriginalURL, ExpiresAt: entry.ExpiresAt}
			if cached.IsExpired(s.now()) {
				return nil, apperrors.Newf(apperrors.Expired, "short URL '%s' has expired", code)
			}
			return cached, nil
		}
	}

	url, err := s.repo.FindByShortCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if url.IsExpired(s.now()) {
		return nil, apperrors.Newf(apperrors.Expired, "short URL '%s' has expired", code)
	}

	s.cacheResolved(ctx, url)
	return url, nil
}

func (s *urlService) List(ctx context.Context, params models.URLSearchParams, currentUserID *string) ([]*models.URLListItem, error) {
	filter := repository.URLListFilter{
		Search:        params.Search,
		OwnedOnly:     params.OwnedOnly,
		OwnerID:       params.UserID,
		CurrentUserID: currentUserID,
	}

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.URLListItem, len(items))
	for i, it := range items {
		owned := currentUserID != nil && it.UserID != nil && *currentUserID == *it.UserID
		responses[i] = &models.URLListItem{
			ID:                 it.ID,
			ShortCode:          it.ShortCode,
			OriginalURL:        it.OriginalURL,
			UserID:             it.UserID,
			Clicks:             it.ClickCount,
			UniqueClicks:       it.UniqueClicks,
			HasShortenedQR:     it.HasShortenedQR,
			HasOriginalQR:      it.HasOriginalQR,
			OwnedByCurrentUser: owned,
			CreatedAt:          it.CreatedAt,
			ExpiresAt:          it.ExpiresAt,
		}
	}
	return responses, nil
}

// Delete removes a URL and cascades to its QR records and visitor events.
// Only the owner may delete an owned URL; unowned records are deletable by
// any authenticated caller.
func (s *urlService) Delete(ctx context.Context, code string, requester *string) error {
	url, err := s.repo.FindByShortCode(ctx, code)
	if err != nil {
		return err
	}

	if url.UserID != nil && (requester == nil || *requester != *url.UserID) {
		return apperrors.New(apperrors.Forbidden, "you do not have permission to delete this URL")
	}

	if err := s.repo.DeleteCascade(ctx, code); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, resolveCacheKey(code)); err != nil {
			s.logger.Warn("failed to invalidate URL cache", zap.String("short_code", code), zap.Error(err))
		}
	}
	return nil
}
