// Package sqlstore_test contains integration tests for the SQL repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() to ensure tests run against
// the authoritative schema, preventing drift between test and production.
package sqlstore_test

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/followup/internal/db"
	"github.com/example/followup/internal/ports/secondary"
)

var today = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

// setupTestDB creates an in-memory database with the authoritative schema.
// A single connection keeps every query on the same in-memory database.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	testDB.SetMaxOpenConns(1)

	if _, err := testDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}
	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// newObligation returns a valid Pending obligation due offset days from today.
func newObligation(id string, offset int) *secondary.ObligationRecord {
	return &secondary.ObligationRecord{
		ID:           id,
		Source:       "Meeting",
		Contact:      "Dana Reyes",
		ContactEmail: "dana@example.com",
		Description:  "Send revised proposal",
		DueDate:      today.AddDate(0, 0, offset),
		Priority:     "High",
		Status:       "Pending",
	}
}
