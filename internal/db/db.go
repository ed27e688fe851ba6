// Package db opens the obligation store and owns its schema.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect names the SQL flavour behind a connection.
type Dialect string

const (
	SQLite   Dialect = "sqlite3"
	Postgres Dialect = "postgres"
)

// Rebind rewrites ? placeholders to $n for Postgres. SQLite queries are
// returned unchanged. Queries must not contain literal question marks.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// DefaultPath returns ~/.followup/followup.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".followup", "followup.db"), nil
}

// Resolve maps a database URL to a driver dialect and DSN.
// An empty URL selects the default SQLite file. postgres:// and
// postgresql:// select Postgres; sqlite:// or a bare path select SQLite.
func Resolve(databaseURL string) (Dialect, string, error) {
	url := strings.TrimSpace(databaseURL)
	switch {
	case url == "":
		path, err := DefaultPath()
		if err != nil {
			return "", "", err
		}
		return SQLite, path, nil
	case strings.HasPrefix(url, "postgres://"):
		return Postgres, "postgresql://" + strings.TrimPrefix(url, "postgres://"), nil
	case strings.HasPrefix(url, "postgresql://"):
		return Postgres, url, nil
	case strings.HasPrefix(url, "sqlite://"):
		return SQLite, strings.TrimPrefix(url, "sqlite://"), nil
	case strings.Contains(url, "://"):
		return "", "", fmt.Errorf("unsupported database URL scheme in %q", url)
	default:
		return SQLite, url, nil
	}
}

// Open connects to the store named by databaseURL and brings its schema up
// to date.
func Open(databaseURL string) (*sql.DB, Dialect, error) {
	dialect, dsn, err := Resolve(databaseURL)
	if err != nil {
		return nil, "", err
	}

	if dialect == SQLite {
		if dsn != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
				return nil, "", fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		dsn = sqliteDSN(dsn)
	}

	conn, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open database: %w", err)
	}
	if dialect == SQLite {
		// One writer keeps SQLite from returning SQLITE_BUSY under the two timers.
		conn.SetMaxOpenConns(1)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, "", fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := InitSchema(conn, dialect); err != nil {
		conn.Close()
		return nil, "", fmt.Errorf("failed to initialize schema: %w", err)
	}

	return conn, dialect, nil
}

// sqliteDSN enables foreign keys on every pooled connection.
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000"
}
