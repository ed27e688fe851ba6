// Package sqlstore contains database/sql implementations of the repository
// interfaces. The same queries run on SQLite and Postgres; placeholders are
// rebound per dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/example/followup/internal/core/calendar"
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// isUniqueViolation reports whether err is a unique constraint failure from
// either driver.
func isUniqueViolation(err error) bool {
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// dateArg converts a civil date to its column value.
func dateArg(d time.Time) sql.NullString {
	if d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: calendar.Format(d), Valid: true}
}

// parseDate reads a civil date column. Unparseable values read as the zero
// time so callers can skip the row as malformed.
func parseDate(s sql.NullString) time.Time {
	if !s.Valid {
		return time.Time{}
	}
	d, err := calendar.Parse(s.String)
	if err != nil {
		return time.Time{}
	}
	return d
}

func stringArg(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func timeArg(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t.UTC(), Valid: !t.IsZero()}
}

func limitClause(limit int) (string, []any) {
	if limit <= 0 {
		return "", nil
	}
	return " LIMIT ?", []any{limit}
}
