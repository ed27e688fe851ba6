package obligation

import "time"

// TransitionResult captures the field changes implied by a status transition.
// The caller writes them onto the stored record.
type TransitionResult struct {
	NewStatus   string
	SnoozeUntil time.Time // zero clears the column
	DueDate     time.Time // zero keeps the current due date
	CompletedAt time.Time // zero clears the column
}

// InitialStatus returns the status of a newly created obligation.
func InitialStatus() string {
	return StatusPending
}

// Snooze returns the transition to Snoozed until the given date.
func Snooze(until time.Time) TransitionResult {
	return TransitionResult{NewStatus: StatusSnoozed, SnoozeUntil: until}
}

// Release returns the transition from Snoozed back to Pending.
// The due date is left untouched.
func Release() TransitionResult {
	return TransitionResult{NewStatus: StatusPending}
}

// Reschedule returns the transition back to Pending with a new due date.
func Reschedule(newDue time.Time) TransitionResult {
	return TransitionResult{NewStatus: StatusPending, DueDate: newDue}
}

// Complete returns the transition to Done stamped with now.
func Complete(now time.Time) TransitionResult {
	return TransitionResult{NewStatus: StatusDone, CompletedAt: now}
}
