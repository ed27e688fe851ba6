package db

import (
	"database/sql"
	"fmt"
)

// SchemaSQL is the complete schema for a fresh install.
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. Repository
// tests load it through GetSchemaSQL() so that a column referenced by
// repository code but missing here fails immediately with "no such column".
//
// The statements are written in the subset shared by SQLite and Postgres:
// civil dates are TEXT in YYYY-MM-DD form so they compare lexically, and
// timestamps are TIMESTAMP.
const SchemaSQL = `
-- Obligations (follow-ups owed to a contact)
CREATE TABLE IF NOT EXISTS obligations (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL CHECK(source IN ('Phone', 'Email', 'Meeting', 'WhatsApp', 'SMS', 'Other')),
	contact TEXT NOT NULL,
	contact_email TEXT,
	contact_phone TEXT,
	description TEXT NOT NULL,
	due_date TEXT NOT NULL,
	priority TEXT NOT NULL CHECK(priority IN ('Low', 'Medium', 'High')) DEFAULT 'Medium',
	status TEXT NOT NULL CHECK(status IN ('Pending', 'Snoozed', 'Done')) DEFAULT 'Pending',
	snooze_until TEXT,
	version INTEGER NOT NULL DEFAULT 1,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	completed_at TIMESTAMP,
	CHECK ((status = 'Snoozed') = (snooze_until IS NOT NULL))
);

CREATE INDEX IF NOT EXISTS idx_obligations_status_due ON obligations(status, due_date);
CREATE INDEX IF NOT EXISTS idx_obligations_status_snooze ON obligations(status, snooze_until);

-- Delivery records (append-only audit of reminder dispatch)
CREATE TABLE IF NOT EXISTS delivery_records (
	id TEXT PRIMARY KEY,
	obligation_id TEXT NOT NULL,
	channel TEXT NOT NULL CHECK(channel IN ('email', 'whatsapp', 'sms')),
	recipient TEXT NOT NULL,
	tier TEXT NOT NULL,
	tier_days INTEGER NOT NULL DEFAULT 0,
	subject TEXT NOT NULL DEFAULT '',
	sent_at TIMESTAMP NOT NULL,
	sent_on TEXT NOT NULL,
	outcome TEXT NOT NULL CHECK(outcome IN ('sent', 'failed')),
	error_detail TEXT,
	FOREIGN KEY (obligation_id) REFERENCES obligations(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_delivery_records_obligation_day ON delivery_records(obligation_id, sent_on);
CREATE INDEX IF NOT EXISTS idx_delivery_records_sent_at ON delivery_records(sent_at);

-- At most one successful reminder per obligation, channel and day
CREATE UNIQUE INDEX IF NOT EXISTS idx_delivery_records_sent_once
	ON delivery_records(obligation_id, channel, sent_on)
	WHERE outcome = 'sent';
`

// Migration represents a database migration.
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// migrations is the list of all migrations in order.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_obligations_and_delivery_records",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(SchemaSQL)
			return err
		},
	},
}

// SchemaVersion is the version a fully migrated database reports.
func SchemaVersion() int {
	return migrations[len(migrations)-1].Version
}

// InitSchema creates the schema_version table and runs pending migrations.
func InitSchema(conn *sql.DB, dialect Dialect) error {
	_, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	current, err := CurrentVersion(conn)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= current {
			continue
		}

		tx, err := conn.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}

		_, err = tx.Exec(dialect.Rebind("INSERT INTO schema_version (version) VALUES (?)"), migration.Version)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// CurrentVersion returns the highest applied migration, or 0.
func CurrentVersion(conn *sql.DB) (int, error) {
	var version int
	if err := conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get current schema version: %w", err)
	}
	return version, nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
