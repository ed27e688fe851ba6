// Package calendar contains civil-date helpers shared by the pure core packages.
// A civil date is represented as a time.Time at midnight UTC so that day
// arithmetic never crosses a DST boundary.
package calendar

import (
	"fmt"
	"time"
)

// Layout is the storage and CLI format for civil dates.
const Layout = "2006-01-02"

// DisplayLayout is the human format used in reminder messages.
const DisplayLayout = "Jan 02, 2006"

// Date returns the civil date of t as observed in loc.
func Date(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns to - from in whole days. Negative when to is before from.
func DaysBetween(from, to time.Time) int {
	a := Date(from, time.UTC)
	b := Date(to, time.UTC)
	return int(b.Sub(a).Round(time.Hour).Hours() / 24)
}

// AddDays shifts a civil date by n days.
func AddDays(d time.Time, n int) time.Time {
	return Date(d, time.UTC).AddDate(0, 0, n)
}

// Parse parses a YYYY-MM-DD string. An empty string yields the zero time.
func Parse(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", s)
	}
	return t, nil
}

// Format renders a civil date for storage. The zero time renders as "".
func Format(d time.Time) string {
	if d.IsZero() {
		return ""
	}
	return d.Format(Layout)
}

// Display renders a civil date for humans, or "unspecified" when unset.
func Display(d time.Time) string {
	if d.IsZero() {
		return "unspecified"
	}
	return d.Format(DisplayLayout)
}
