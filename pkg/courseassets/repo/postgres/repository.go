// Package postgres implements the courseassets persistence interfaces
// on PostgreSQL via pgx.
//
// Expected schema:
//
//	CREATE TABLE courseasset (
//	    id              UUID PRIMARY KEY,
//	    course_id       UUID NOT NULL,
//	    content_id      UUID NOT NULL,
//	    asset_id        UUID NOT NULL,
//	    reference_count INT  NOT NULL CHECK (reference_count >= 1),
//	    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    UNIQUE (course_id, content_id, asset_id)
//	);
//
// The unique constraint on the triple is what enforces one row per
// (course, content, asset); callers never check for duplicates.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/course-assets/pkg/courseassets"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Ledger implements courseassets.Ledger using PostgreSQL
type Ledger struct {
	db DBTX
}

// NewLedger creates a new PostgreSQL ledger
func NewLedger(db DBTX) *Ledger {
	return &Ledger{db: db}
}

// NewLedgerWithPool creates a new PostgreSQL ledger with connection pool
func NewLedgerWithPool(pool *pgxpool.Pool) *Ledger {
	return &Ledger{db: pool}
}

// Error handling helper
func handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("reference already exists")
		case "23514": // check_violation
			return fmt.Errorf("reference count out of range")
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}
	return fmt.Errorf("database error in %s: %w", operation, err)
}

const linkColumns = "id, course_id, content_id, asset_id, reference_count, created_at, updated_at"

func scanLink(row pgx.Row) (*courseassets.ReferenceLink, error) {
	var link courseassets.ReferenceLink
	err := row.Scan(
		&link.ID, &link.CourseID, &link.ContentID, &link.AssetID,
		&link.ReferenceCount, &link.CreatedAt, &link.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (l *Ledger) SetReferenceCount(ctx context.Context, key courseassets.ReferenceKey, count int) error {
	if count <= 0 {
		query := `
			DELETE FROM courseasset
			WHERE course_id = $1 AND content_id = $2 AND asset_id = $3`

		_, err := l.db.Exec(ctx, query, key.CourseID, key.ContentID, key.AssetID)
		if err != nil {
			return handlePostgresError("set reference count", err)
		}
		return nil
	}

	query := `
		INSERT INTO courseasset (id, course_id, content_id, asset_id, reference_count)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (course_id, content_id, asset_id)
		DO UPDATE SET reference_count = EXCLUDED.reference_count, updated_at = now()`

	_, err := l.db.Exec(ctx, query, uuid.New(), key.CourseID, key.ContentID, key.AssetID, count)
	if err != nil {
		return handlePostgresError("set reference count", err)
	}
	return nil
}

func (l *Ledger) AdjustReferenceCount(ctx context.Context, key courseassets.ReferenceKey, delta int) (*courseassets.ReferenceLink, error) {
	if delta > 0 {
		query := `
			INSERT INTO courseasset (id, course_id, content_id, asset_id, reference_count)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (course_id, content_id, asset_id)
			DO UPDATE SET reference_count = courseasset.reference_count + $5, updated_at = now()
			RETURNING ` + linkColumns

		link, err := scanLink(l.db.QueryRow(ctx, query, uuid.New(), key.CourseID, key.ContentID, key.AssetID, delta))
		if err != nil {
			return nil, handlePostgresError("adjust reference count", err)
		}
		return link, nil
	}

	// A decrement that reaches zero must delete the row outright: the
	// reference_count >= 1 check is evaluated per row at UPDATE time,
	// so writing the zero first would abort the statement. The two CTE
	// predicates are mutually exclusive on the current count, so
	// exactly one of them touches the row.
	query := `
		WITH reaped AS (
			DELETE FROM courseasset
			WHERE course_id = $1 AND content_id = $2 AND asset_id = $3
				AND reference_count + $4 <= 0
			RETURNING id, course_id, content_id, asset_id, reference_count + $4 AS reference_count, created_at, updated_at
		), updated AS (
			UPDATE courseasset
			SET reference_count = reference_count + $4, updated_at = now()
			WHERE course_id = $1 AND content_id = $2 AND asset_id = $3
				AND reference_count + $4 > 0
			RETURNING ` + linkColumns + `
		)
		SELECT ` + linkColumns + ` FROM updated
		UNION ALL
		SELECT ` + linkColumns + ` FROM reaped`

	link, err := scanLink(l.db.QueryRow(ctx, query, key.CourseID, key.ContentID, key.AssetID, delta))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, courseassets.ErrReferenceNotFound
		}
		return nil, handlePostgresError("adjust reference count", err)
	}
	if link.ReferenceCount <= 0 {
		return nil, nil
	}
	return link, nil
}

func (l *Ledger) GetReference(ctx context.Context, key courseassets.ReferenceKey) (*courseassets.ReferenceLink, error) {
	query := `
		SELECT ` + linkColumns + ` FROM courseasset
		WHERE course_id = $1 AND content_id = $2 AND asset_id = $3`

	link, err := scanLink(l.db.QueryRow(ctx, query, key.CourseID, key.ContentID, key.AssetID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, courseassets.ErrReferenceNotFound
		}
		return nil, handlePostgresError("get reference", err)
	}
	return link, nil
}

func (l *Ledger) ListByContent(ctx context.Context, courseID, contentID uuid.UUID) ([]*courseassets.ReferenceLink, error) {
	query := `
		SELECT ` + linkColumns + ` FROM courseasset
		WHERE course_id = $1 AND content_id = $2
		ORDER BY asset_id`

	return l.queryLinks(ctx, query, courseID, contentID)
}

func (l *Ledger) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]*courseassets.ReferenceLink, error) {
	query := `
		SELECT ` + linkColumns + ` FROM courseasset
		WHERE course_id = $1
		ORDER BY content_id, asset_id`

	return l.queryLinks(ctx, query, courseID)
}

func (l *Ledger) queryLinks(ctx context.Context, query string, args ...interface{}) ([]*courseassets.ReferenceLink, error) {
	rows, err := l.db.Query(ctx, query, args...)
	if err != nil {
		return nil, handlePostgresError("list references", err)
	}
	defer rows.Close()

	var links []*courseassets.ReferenceLink
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

func (l *Ledger) CountByAsset(ctx context.Context, assetID uuid.UUID) (int64, error) {
	var count int64
	err := l.db.QueryRow(ctx, `SELECT COUNT(*) FROM courseasset WHERE asset_id = $1`, assetID).Scan(&count)
	if err != nil {
		return 0, handlePostgresError("count by asset", err)
	}
	return count, nil
}

func (l *Ledger) SumByAsset(ctx context.Context, assetID uuid.UUID) (int64, error) {
	var sum int64
	err := l.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(reference_count), 0) FROM courseasset WHERE asset_id = $1`, assetID).Scan(&sum)
	if err != nil {
		return 0, handlePostgresError("sum by asset", err)
	}
	return sum, nil
}

func (l *Ledger) DeleteByContent(ctx context.Context, courseID, contentID uuid.UUID) (int64, error) {
	tag, err := l.db.Exec(ctx,
		`DELETE FROM courseasset WHERE course_id = $1 AND content_id = $2`, courseID, contentID)
	if err != nil {
		return 0, handlePostgresError("delete by content", err)
	}
	return tag.RowsAffected(), nil
}

func (l *Ledger) DeleteByCourse(ctx context.Context, courseID uuid.UUID) (int64, error) {
	tag, err := l.db.Exec(ctx, `DELETE FROM courseasset WHERE course_id = $1`, courseID)
	if err != nil {
		return 0, handlePostgresError("delete by course", err)
	}
	return tag.RowsAffected(), nil
}
