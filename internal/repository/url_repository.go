package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"makemeshort/internal/apperrors"
	"makemeshort/internal/entities"
)

// URLListFilter composes the list predicate: free-text search over code and
// original URL, owner-only restriction, or an explicit owner id (which
// overrides OwnedOnly).
type URLListFilter struct {
	Search        string
	OwnedOnly     bool
	OwnerID       string  // explicit owner filter
	CurrentUserID *string // authenticated principal, used by OwnedOnly
}

// URLRepository defines the interface for shortened URL persistence
type URLRepository interface {
	// Create inserts a new record, relying on the unique index on short_code.
	// A taken code surfaces as a CodeConflict error.
	Create(ctx context.Context, shortCode, originalURL string, userID *string, expiresAt *time.Time) (*entities.URL, error)
	// FindByShortCode returns the record regardless of expiry; expiration is
	// derived by the caller, never filtered here.
	FindByShortCode(ctx context.Context, shortCode string) (*entities.URL, error)
	List(ctx context.Context, filter URLListFilter) ([]*entities.URLListItem, error)
	// DeleteCascade removes the URL together with its QR records and visitor
	// events in one transaction.
	DeleteCascade(ctx context.Context, shortCode string) error
}

type urlRepository struct {
	db *sql.DB
}

// NewURLRepository creates a new URL repository
func NewURLRepository(db *sql.DB) URLRepository {
	return &urlRepository{db: db}
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

const urlColumns = `id, short_code, original_url, user_id, click_count, created_at, expires_at`

func scanURL(row *sql.Row) (*entities.URL, error) {
	var u entities.URL
	err := row.Scan(&u.ID, &u.ShortCode, &u.OriginalURL, &u.UserID, &u.ClickCount, &u.CreatedAt, &u.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *urlRepository) Create(ctx context.Context, shortCode, originalURL string, userID *string, expiresAt *time.Time) (*entities.URL, error) {
	var expiresAtValue interface{}
	if expiresAt != nil {
		utc := expiresAt.UTC()
		expiresAtValue = utc
	}

	query := `
		INSERT INTO urls (short_code, original_url, user_id, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + urlColumns

	url, err := scanURL(r.db.QueryRowContext(ctx, query, shortCode, originalURL, userID, expiresAtValue))
	if isUniqueViolation(err) {
		return nil, apperrors.Newf(apperrors.CodeConflict, "short code '%s' is already taken", shortCode)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.StoreUnavailable, "failed to create URL", err)
	}

	return url, nil
}

func (r *urlRepository) FindByShortCode(ctx context.Context, shortCode string) (*entities.URL, error) {
	query := `SELECT ` + urlColumns + ` FROM urls WHERE short_code = $1`

	url, err := scanURL(r.db.QueryRowContext(ctx, query, shortCode))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Newf(apperrors.NotFound, "short URL '%s' not found", shortCode)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.StoreUnavailable, "failed to find URL", err)
	}

	return url, nil
}

// List returns matching rows newest first, enriched with unique click counts
// and QR existence flags derived per read.
func (r *urlRepository) List(ctx context.Context, filter URLListFilter) ([]*entities.URLListItem, error) {
	query := `
		SELECT u.id, u.short_code, u.original_url, u.user_id, u.click_count, u.created_at, u.expires_at,
			(SELECT COUNT(DISTINCT v.visitor_hash) FROM url_visitors v WHERE v.short_code = u.short_code) AS unique_clicks,
			EXISTS(SELECT 1 FROM qr_codes q WHERE q.short_code = u.short_code AND q.target_type = 'shortened') AS has_shortened_qr,
			EXISTS(SELECT 1 FROM qr_codes q WHERE q.short_code = u.short_code AND q.target_type = 'original') AS has_original_qr
		FROM urls u
		WHERE 1=1`

	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		query += ` AND (u.short_code ILIKE ` + p + ` OR u.original_url ILIKE ` + p + `)`
	}
	switch {
	case filter.OwnerID != "":
		query += ` AND u.user_id = ` + arg(filter.OwnerID)
	case filter.OwnedOnly && filter.CurrentUserID != nil:
		query += ` AND u.user_id = ` + arg(*filter.CurrentUserID)
	}

	query += ` ORDER BY u.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.StoreUnavailable, "failed to list URLs", err)
	}
	defer rows.Close()

	var items []*entities.URLListItem
	for rows.Next() {
		var it entities.URLListItem
		err := rows.Scan(
			&it.ID, &it.ShortCode, &it.OriginalURL, &it.UserID, &it.ClickCount, &it.CreatedAt, &it.ExpiresAt,
			&it.UniqueClicks, &it.HasShortenedQR, &it.HasOriginalQR,
		)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.StoreUnavailable, "failed to scan URL row", err)
		}
		items = append(items, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.StoreUnavailable, "error iterating URLs", err)
	}

	return items, nil
}

func (r *urlRepository) DeleteCascade(ctx context.Context, shortCode string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Wrap(apperrors.StoreUnavailable, "failed to begin delete transaction", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM urls WHERE short_code = $1`, shortCode)
	if err != nil {
		return apperrors.Wrap(apperrors.StoreUnavailable, "failed to delete URL", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperrors.Wrap(apperrors.StoreUnavailable, "failed to get rows affected", err)
	}
	if affected == 0 {
		return apperrors.Newf(apperrors.NotFound, "short URL '%s' not found", shortCode)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM qr_codes WHERE short_code = $1`, shortCode); err != nil {
		return apperrors.Wrap(apperrors.StoreUnavailable, "failed to delete QR codes", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM url_visitors WHERE short_code = $1`, shortCode); err != nil {
		return apperrors.Wrap(apperrors.StoreUnavailable, "failed to delete visitor events", err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Wrap(apperrors.StoreUnavailable, "failed to commit cascade delete", err)
	}
	return nil
}
