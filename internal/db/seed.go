package db

import (
	"database/sql"
	"fmt"
	"time"
)

// SeedFixtures populates the database with development fixtures that land in
// every reminder tier relative to today.
func SeedFixtures(conn *sql.DB, dialect Dialect, today time.Time) error {
	now := time.Now().UTC()
	day := func(offset int) string {
		return today.AddDate(0, 0, offset).Format("2006-01-02")
	}

	obligations := []struct {
		id, source, contact, email, phone, description, priority string
		due                                                      int
	}{
		{"OBL-001", "Meeting", "Dana Reyes", "dana@example.com", "+14155550100", "Send revised proposal", "High", 2},
		{"OBL-002", "Phone", "Lee Park", "lee@example.com", "", "Call back about invoice", "Medium", 1},
		{"OBL-003", "Email", "Sam Ortiz", "", "+14155550101", "Confirm venue booking", "Low", 0},
		{"OBL-004", "WhatsApp", "Ari Cohen", "ari@example.com", "", "Share contract draft", "High", -1},
		{"OBL-005", "Other", "Jo Smith", "", "", "Return borrowed laptop", "Medium", 10},
	}
	for _, o := range obligations {
		if _, err := conn.Exec(dialect.Rebind(
			"INSERT INTO obligations (id, source, contact, contact_email, contact_phone, description, due_date, priority, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, 'Pending', ?, ?)"),
			o.id, o.source, o.contact, nullable(o.email), nullable(o.phone), o.description, day(o.due), o.priority, now, now,
		); err != nil {
			return fmt.Errorf("seed obligations: %w", err)
		}
	}

	// One snoozed item that is ready to be released today.
	if _, err := conn.Exec(dialect.Rebind(
		"INSERT INTO obligations (id, source, contact, contact_email, description, due_date, priority, status, snooze_until, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, 'Snoozed', ?, ?, ?)"),
		"OBL-006", "SMS", "Kim Lee", "kim@example.com", "Follow up on referral", day(3), "Medium", day(-1), now, now,
	); err != nil {
		return fmt.Errorf("seed snoozed obligation: %w", err)
	}

	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
