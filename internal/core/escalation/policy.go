// Package escalation contains the pure policy that maps an obligation's due
// date to a reminder tier.
// This is part of the Functional Core - no I/O, only pure functions.
package escalation

import (
	"fmt"
	"time"

	"github.com/example/followup/internal/core/calendar"
	"github.com/example/followup/internal/core/obligation"
)

// DefaultWindowDays is how far ahead of the due date reminders start.
const DefaultWindowDays = 3

// TierKind classifies how urgent a reminder is.
type TierKind string

const (
	KindUpcoming TierKind = "upcoming"
	KindTomorrow TierKind = "tomorrow"
	KindToday    TierKind = "today"
	KindOverdue  TierKind = "overdue"
)

// Tier is the escalation level of one reminder.
// Days is the number of days until the due date for KindUpcoming and the
// number of days past due for KindOverdue.
type Tier struct {
	Kind TierKind
	Days int
}

// Label returns the tier name recorded on delivery records.
func (t Tier) Label() string {
	switch t.Kind {
	case KindUpcoming:
		return fmt.Sprintf("due in %d days", t.Days)
	case KindTomorrow:
		return "due tomorrow"
	case KindToday:
		return "due today"
	case KindOverdue:
		return "overdue"
	default:
		return string(t.Kind)
	}
}

// String includes the overdue magnitude.
func (t Tier) String() string {
	if t.Kind == KindOverdue {
		return fmt.Sprintf("overdue by %s", Days(t.Days))
	}
	return t.Label()
}

// Policy decides which obligations are due a reminder.
type Policy struct {
	// WindowDays is the reminder lookahead. Values below 1 use DefaultWindowDays.
	WindowDays int
	// MaxOverdueDays stops reminders for items overdue longer than this. 0 means no cap.
	MaxOverdueDays int
}

// Window returns the effective lookahead.
func (p Policy) Window() int {
	if p.WindowDays < 1 {
		return DefaultWindowDays
	}
	return p.WindowDays
}

// Horizon is the latest due date a candidate query should return for today.
func (p Policy) Horizon(today time.Time) time.Time {
	return calendar.AddDays(today, p.Window())
}

// Floor is the earliest due date a candidate query should return, or the
// zero time when overdue reminders are uncapped.
func (p Policy) Floor(today time.Time) time.Time {
	if p.MaxOverdueDays <= 0 {
		return time.Time{}
	}
	return calendar.AddDays(today, -p.MaxOverdueDays)
}

// Evaluate returns the tier for an obligation, or false when no reminder applies.
// Only Pending obligations with a due date are eligible.
func (p Policy) Evaluate(status string, dueDate, today time.Time) (Tier, bool) {
	if status != obligation.StatusPending || dueDate.IsZero() {
		return Tier{}, false
	}

	days := calendar.DaysBetween(today, dueDate)
	switch {
	case days > p.Window():
		return Tier{}, false
	case days > 1:
		return Tier{Kind: KindUpcoming, Days: days}, true
	case days == 1:
		return Tier{Kind: KindTomorrow, Days: 1}, true
	case days == 0:
		return Tier{Kind: KindToday}, true
	default:
		overdue := -days
		if p.MaxOverdueDays > 0 && overdue > p.MaxOverdueDays {
			return Tier{}, false
		}
		return Tier{Kind: KindOverdue, Days: overdue}, true
	}
}

// Days renders "1 day" or "N days".
func Days(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
