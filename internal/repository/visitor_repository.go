package repository

import (
	"context"
	"database/sql"

	"makemeshort/internal/apperrors"
	"makemeshort/internal/entities"
)

// VisitorRepository persists the append-only visit event log.
type VisitorRepository interface {
	// RecordVisit inserts the event and bumps the parent URL's click counter
	// in a single transaction. The increment is done in SQL, never
	// read-modify-write, so concurrent redirects cannot lose updates, and a
	// cancelled request cannot leave the click half-applied.
	RecordVisit(ctx context.Context, visit *entities.URLVisitor) error
	// FindByShortCode returns all events for a code, oldest first.
	FindByShortCode(ctx context.Context, shortCode string) ([]*entities.URLVisitor, error)
}

type visitorRepository struct {
	db *sql.DB
}

// NewVisitorRepository creates a new visitor repository
func NewVisitorRepository(db *sql.DB) VisitorRepository {
	return &visitorRepository{db: db}
}

func (r *visitorRepository) RecordVisit(ctx context.Context, visit *entities.URLVisitor) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Wrap(apperrors.StoreUnavailable, "failed to begin visit transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO url_visitors (short_code, visitor_hash, country_code, user_agent, referrer)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5)
	`, visit.ShortCode, visit.VisitorHash, visit.CountryCode, visit.UserAgent, visit.Referrer)
	if err != nil {
		return apperrors.Wrap(apperrors.StoreUnavailable, "failed to insert visitor event", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE urls SET click_count = click_count + 1 WHERE short_code = $1
	`, visit.ShortCode)
	if err != nil {
		return apperrors.Wrap(apperrors.StoreUnavailable, "failed to increment click count", err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Wrap(apperrors.StoreUnavailable, "failed to commit visit", err)
	}
	return nil
}

func (r *visitorRepository) FindByShortCode(ctx context.Context, shortCode string) ([]*entities.URLVisitor, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, short_code, visitor_hash, COALESCE(country_code, ''), user_agent, referrer, created_at
		FROM url_visitors
		WHERE short_code = $1
		ORDER BY created_at ASC
	`, shortCode)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.StoreUnavailable, "failed to query visitor events", err)
	}
	defer rows.Close()

	var visits []*entities.URLVisitor
	for rows.Next() {
		var v entities.URLVisitor
		err := rows.Scan(&v.ID, &v.ShortCode, &v.VisitorHash, &v.CountryCode, &v.UserAgent, &v.Referrer, &v.CreatedAt)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.StoreUnavailable, "failed to scan visitor event", err)
		}
		visits = append(visits, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.StoreUnavailable, "error iterating visitor events", err)
	}

	return visits, nil
}
