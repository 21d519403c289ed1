package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"makemeshort/internal/apperrors"
	"makemeshort/internal/entities"
	"makemeshort/internal/models"
	"makemeshort/internal/qrsvg"
	"makemeshort/internal/repository"
)

// QRService renders and caches SVG QR payloads. Cached payloads are keyed by
// (short code, target type), or by a content hash of (url, size) for direct
// requests, and are returned unchanged unless regeneration is forced.
type QRService interface {
	// GetOrCreateForCode returns the cached payload for a short code, or
	// renders and stores one. NotFound/Expired from URL resolution propagate.
	GetOrCreateForCode(ctx context.Context, code string, target entities.QRTargetType, force bool, userID *string) (*entities.QRCode, error)
	// GetOrCreateDirect is the shortening-bypass path for arbitrary URLs.
	GetOrCreateDirect(ctx context.Context, rawURL string, size int, force bool, userID *string) (*entities.QRCode, error)
	// GetCached returns the cached payload without ever rendering.
	GetCached(ctx context.Context, code string, target entities.QRTargetType) (*entities.QRCode, error)
	List(ctx context.Context, params models.QRSearchParams, ownerID string, currentUserID *string) ([]*models.QRCodeInfo, error)
}

type qrService struct {
	repo        repository.QRRepository
	urls        URLService
	defaultSize int
}

// NewQRService creates a new QR service
func NewQRService(repo repository.QRRepository, urls URLService, defaultSize int) QRService {
	return &qrService{repo: repo, urls: urls, defaultSize: defaultSize}
}

// directCode derives the deterministic cache key for a direct QR request, so
// repeated requests for the same (url, size) hit the same record.
func directCode(rawURL string, size int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", rawURL, size)))
	return entities.DirectCodePrefix + hex.EncodeToString(sum[:])[:12]
}

// render produces the SVG payload, mapping encoder errors (e.g. payload over
// capacity) to QREncodingFailed. Nothing is persisted on failure.
func render(target string, size int) (string, error) {
	svg, err := qrsvg.Render(target, size)
	if err != nil {
		return "", apperrors.Wrap(apperrors.QREncodingFailed, "failed to render QR code", err)
	}
	return svg, nil
}

func (s *qrService) GetOrCreateForCode(ctx context.Context, code string, target entities.QRTargetType, force bool, userID *string) (*entities.QRCode, error) {
	url, err := s.urls.Resolve(ctx, code)
	if err != nil {
		return nil, err
	}

	if !force {
		if cached, err := s.repo.FindByCodeAndType(ctx, code, target); err == nil {
			return cached, nil
		} else if !apperrors.IsKind(err, apperrors.NotFound) {
			return nil, err
		}
	}

	targetURL := url.OriginalURL
	if target == entities.TargetShortened {
		targetURL = s.urls.ShortURL(code)
	}

	svg, err := render(targetURL, s.defaultSize)
	if err != nil {
		return nil, err
	}

	return s.repo.Upsert(ctx, &entities.QRCode{
		ShortCode:   code,
		TargetType:  target,
		OriginalURL: url.OriginalURL,
		SVGContent:  svg,
		Size:        s.defaultSize,
		UserID:      userID,
	})
}

func (s *qrService) GetOrCreateDirect(ctx context.Context, rawURL string, size int, force bool, userID *string) (*entities.QRCode, error) {
	if err := validateOriginalURL(rawURL); err != nil {
		return nil, err
	}
	if size <= 0 {
		size = s.defaultSize
	}

	code := directCode(rawURL, size)

	if !force {
		if cached, err := s.repo.FindByCodeAndType(ctx, code, entities.TargetOriginal); err == nil {
			return cached, nil
		} else if !apperrors.IsKind(err, apperrors.NotFound) {
			return nil, err
		}
	}

	svg, err := render(rawURL, size)
	if err != nil {
		return nil, err
	}

	// Direct QR codes always point at the original URL.
	return s.repo.Upsert(ctx, &entities.QRCode{
		ShortCode:   code,
		TargetType:  entities.TargetOriginal,
		OriginalURL: rawURL,
		SVGContent:  svg,
		Size:        size,
		UserID:      userID,
	})
}

func (s *qrService) GetCached(ctx context.Context, code string, target entities.QRTargetType) (*entities.QRCode, error) {
	return s.repo.FindByCodeAndType(ctx, code, target)
}

func (s *qrService) List(ctx context.Context, params models.QRSearchParams, ownerID string, currentUserID *string) ([]*models.QRCodeInfo, error) {
	filter := repository.QRListFilter{
		Search:        params.Search,
		TargetType:    params.TargetType,
		DirectOnly:    params.DirectOnly,
		OwnedOnly:     params.OwnedOnly,
		OwnerID:       ownerID,
		CurrentUserID: currentUserID,
	}

	qrs, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	infos := make([]*models.QRCodeInfo, len(qrs))
	for i, qr := range qrs {
		owned := currentUserID != nil && qr.UserID != nil && *currentUserID == *qr.UserID
		infos[i] = &models.QRCodeInfo{
			ID:                 qr.ID,
			ShortCode:          qr.ShortCode,
			OriginalURL:        qr.OriginalURL,
			TargetType:         string(qr.TargetType),
			IsDirect:           qr.IsDirect(),
			Size:               qr.Size,
			UserID:             qr.UserID,
			OwnedByCurrentUser: owned,
			GeneratedAt:        qr.GeneratedAt,
			SVGContent:         qr.SVGContent,
		}
	}
	return infos, nil
}
