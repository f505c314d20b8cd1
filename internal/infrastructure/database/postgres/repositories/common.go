// Package repositories contains the PostgreSQL implementations of the domain
// persistence ports, built on pgx. Each repository runs against the shared
// pool or, inside WithTx, against a transaction through the same executor
// interface.
package repositories

import (
	"context"
	stderrors "errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

// queryExecutor abstracts pgxpool.Pool and pgx.Tx.
type queryExecutor interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// isNoRows reports whether err is the pgx empty-result sentinel.
func isNoRows(err error) bool {
	return stderrors.Is(err, pgx.ErrNoRows)
}

// uniqueViolation returns the violated constraint name when err is a
// PostgreSQL unique violation, or "" otherwise.
func uniqueViolation(err error) string {
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr.ConstraintName
	}
	return ""
}

// pageWindow converts a Pagination into a LIMIT/OFFSET pair, defaulting to
// the first page of 20 rows.
func pageWindow(p common.Pagination) (limit, offset int) {
	page := p.Page
	if page < 1 {
		page = 1
	}
	size := p.PageSize
	if size < 1 {
		size = 20
	}
	return size, (page - 1) * size
}
