package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"makemeshort/internal/apperrors"
	"makemeshort/internal/entities"
)

// QRListFilter composes the QR listing predicate.
type QRListFilter struct {
	Search        string
	TargetType    string // "original" or "shortened", empty for both
	DirectOnly    bool
	OwnedOnly     bool
	OwnerID       string
	CurrentUserID *string
}

// QRRepository persists cached QR payloads, one row per (short_code,
// target_type).
type QRRepository interface {
	FindByCodeAndType(ctx context.Context, shortCode string, target entities.QRTargetType) (*entities.QRCode, error)
	// Upsert replaces any prior record for the same key and returns the
	// stored row. Regeneration therefore supersedes, never duplicates.
	Upsert(ctx context.Context, qr *entities.QRCode) (*entities.QRCode, error)
	List(ctx context.Context, filter QRListFilter) ([]*entities.QRCode, error)
}

type qrRepository struct {
	db *sql.DB
}

// NewQRRepository creates a new QR code repository
func NewQRRepository(db *sql.DB) QRRepository {
	return &qrRepository{db: db}
}

const qrColumns = `id, short_code, target_type, original_url, svg_content, size, user_id, generated_at`

func scanQR(row *sql.Row) (*entities.QRCode, error) {
	var q entities.QRCode
	err := row.Scan(&q.ID, &q.ShortCode, &q.TargetType, &q.OriginalURL, &q.SVGContent, &q.Size, &q.UserID, &q.GeneratedAt)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *qrRepository) FindByCodeAndType(ctx context.Context, shortCode string, target entities.QRTargetType) (*entities.QRCode, error) {
	query := `SELECT ` + qrColumns + ` FROM qr_codes WHERE short_code = $1 AND target_type = $2`

	qr, err := scanQR(r.db.QueryRowContext(ctx, query, shortCode, string(target)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Newf(apperrors.NotFound, "no QR code cached for '%s' (%s)", shortCode, target)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.StoreUnavailable, "failed to find QR code", err)
	}

	return qr, nil
}

func (r *qrRepository) Upsert(ctx context.Context, qr *entities.QRCode) (*entities.QRCode, error) {
	query := `
		INSERT INTO qr_codes (short_code, target_type, original_url, svg_content, size, user_id, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (short_code, target_type) DO UPDATE
		SET svg_content = EXCLUDED.svg_content,
		    size = EXCLUDED.size,
		    original_url = EXCLUDED.original_url,
		    generated_at = now()
		RETURNING ` + qrColumns

	stored, err := scanQR(r.db.QueryRowContext(ctx, query,
		qr.ShortCode, string(qr.TargetType), qr.OriginalURL, qr.SVGContent, qr.Size, qr.UserID))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.StoreUnavailable, "failed to upsert QR code", err)
	}

	return stored, nil
}

func (r *qrRepository) List(ctx context.Context, filter QRListFilter) ([]*entities.QRCode, error) {
	query := `SELECT ` + qrColumns + ` FROM qr_codes WHERE 1=1`

	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		query += ` AND (short_code ILIKE ` + p + ` OR original_url ILIKE ` + p + `)`
	}
	if filter.TargetType == string(entities.TargetOriginal) || filter.TargetType == string(entities.TargetShortened) {
		query += ` AND target_type = ` + arg(filter.TargetType)
	}
	if filter.DirectOnly {
		query += ` AND short_code LIKE '` + entities.DirectCodePrefix + `%'`
	}
	switch {
	case filter.OwnerID != "":
		query += ` AND user_id = ` + arg(filter.OwnerID)
	case filter.OwnedOnly && filter.CurrentUserID != nil:
		query += ` AND user_id = ` + arg(*filter.CurrentUserID)
	}

	query += ` ORDER BY generated_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.StoreUnavailable, "failed to list QR codes", err)
	}
	defer rows.Close()

	var qrs []*entities.QRCode
	for rows.Next() {
		var q entities.QRCode
		err := rows.Scan(&q.ID, &q.ShortCode, &q.TargetType, &q.OriginalURL, &q.SVGContent, &q.Size, &q.UserID, &q.GeneratedAt)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.StoreUnavailable, "failed to scan QR row", err)
		}
		qrs = append(qrs, &q)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.StoreUnavailable, "error iterating QR codes", err)
	}

	return qrs, nil
}
