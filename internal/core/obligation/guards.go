// Package obligation contains the pure business logic for obligation operations.
// Guards are pure functions that evaluate preconditions without side effects.
package obligation

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Status values.
const (
	StatusPending = "Pending"
	StatusSnoozed = "Snoozed"
	StatusDone    = "Done"
)

// Priority values.
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// Source values.
const (
	SourcePhone    = "Phone"
	SourceEmail    = "Email"
	SourceMeeting  = "Meeting"
	SourceWhatsApp = "WhatsApp"
	SourceSMS      = "SMS"
	SourceOther    = "Other"
)

// MaxContactLength bounds the contact name.
const MaxContactLength = 120

var (
	validSources    = []string{SourcePhone, SourceEmail, SourceMeeting, SourceWhatsApp, SourceSMS, SourceOther}
	validPriorities = []string{PriorityLow, PriorityMedium, PriorityHigh}
	validStatuses   = []string{StatusPending, StatusSnoozed, StatusDone}

	validate = validator.New()
)

// Sources returns the accepted source values.
func Sources() []string { return append([]string(nil), validSources...) }

// Priorities returns the accepted priority values.
func Priorities() []string { return append([]string(nil), validPriorities...) }

// Statuses returns the lifecycle statuses.
func Statuses() []string { return append([]string(nil), validStatuses...) }

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// CreateContext provides context for obligation creation guards.
type CreateContext struct {
	Source       string
	Contact      string
	ContactEmail string // optional
	ContactPhone string // optional
	Description  string
	Priority     string
	DueDate      time.Time
}

// SnoozeContext provides context for snooze guards.
type SnoozeContext struct {
	ObligationID string
	Status       string
	DueDate      time.Time
	SnoozeUntil  time.Time
	Today        time.Time
}

// ReleaseContext provides context for snooze release guards.
type ReleaseContext struct {
	ObligationID string
	Status       string
	SnoozeUntil  time.Time
	Today        time.Time
}

// CompleteContext provides context for completion guards.
type CompleteContext struct {
	ObligationID string
	Status       string
}

// RescheduleContext provides context for reschedule guards.
type RescheduleContext struct {
	ObligationID string
	Status       string
	NewDueDate   time.Time
	Today        time.Time
}

// CanCreate evaluates whether an obligation can be created.
// Rules:
// - Source, priority must be known values
// - Contact is required and at most MaxContactLength characters
// - Description and due date are required
// - Contact email and phone must be well formed when present
func CanCreate(ctx CreateContext) GuardResult {
	if !oneOf(ctx.Source, validSources) {
		return deny("unsupported source %q (expected one of %s)", ctx.Source, strings.Join(validSources, ", "))
	}

	contact := strings.TrimSpace(ctx.Contact)
	if contact == "" {
		return deny("contact is required")
	}
	if len([]rune(contact)) > MaxContactLength {
		return deny("contact must be at most %d characters", MaxContactLength)
	}

	if strings.TrimSpace(ctx.Description) == "" {
		return deny("description is required")
	}

	if ctx.DueDate.IsZero() {
		return deny("due date is required")
	}

	if !oneOf(ctx.Priority, validPriorities) {
		return deny("unsupported priority %q (expected one of %s)", ctx.Priority, strings.Join(validPriorities, ", "))
	}

	if r := CheckContactEmail(ctx.ContactEmail); !r.Allowed {
		return r
	}
	if r := CheckContactPhone(ctx.ContactPhone); !r.Allowed {
		return r
	}

	return GuardResult{Allowed: true}
}

// CheckContactEmail validates an optional email address.
func CheckContactEmail(email string) GuardResult {
	if email == "" {
		return GuardResult{Allowed: true}
	}
	if err := validate.Var(email, "email"); err != nil {
		return deny("invalid contact email %q", email)
	}
	return GuardResult{Allowed: true}
}

// CheckContactPhone validates an optional E.164 phone number.
func CheckContactPhone(phone string) GuardResult {
	if phone == "" {
		return GuardResult{Allowed: true}
	}
	if err := validate.Var(phone, "e164"); err != nil {
		return deny("invalid contact phone %q (expected E.164, e.g. +14155550100)", phone)
	}
	return GuardResult{Allowed: true}
}

// IsValidStatus reports whether status is a known obligation status.
func IsValidStatus(status string) bool {
	return oneOf(status, validStatuses)
}

// CanSnooze evaluates whether an obligation can be snoozed.
// Rules:
// - Status must be Pending or Snoozed (extending a snooze is allowed)
// - Snooze date must be strictly after today
// - A Pending obligation that is already overdue must be rescheduled first
func CanSnooze(ctx SnoozeContext) GuardResult {
	if ctx.Status != StatusPending && ctx.Status != StatusSnoozed {
		return deny("can only snooze Pending or Snoozed obligations (current status: %s)", ctx.Status)
	}

	if ctx.SnoozeUntil.IsZero() {
		return deny("snoozing requires a target date")
	}
	if !ctx.SnoozeUntil.After(ctx.Today) {
		return deny("snooze date must be after today")
	}

	if ctx.Status == StatusPending && !ctx.DueDate.IsZero() && ctx.DueDate.Before(ctx.Today) {
		return deny("cannot snooze overdue obligation %s. Reschedule it first", ctx.ObligationID)
	}

	return GuardResult{Allowed: true}
}

// CanRelease evaluates whether a snoozed obligation is ready to return to Pending.
// Rules:
// - Status must be Snoozed
// - Snooze date must be set and on or before today
func CanRelease(ctx ReleaseContext) GuardResult {
	if ctx.Status != StatusSnoozed {
		return deny("obligation %s is not snoozed (current status: %s)", ctx.ObligationID, ctx.Status)
	}
	if ctx.SnoozeUntil.IsZero() {
		return deny("obligation %s is snoozed without a snooze date", ctx.ObligationID)
	}
	if ctx.SnoozeUntil.After(ctx.Today) {
		return deny("obligation %s is snoozed until %s", ctx.ObligationID, ctx.SnoozeUntil.Format("2006-01-02"))
	}
	return GuardResult{Allowed: true}
}

// CanComplete evaluates whether an obligation can be marked Done.
// Rules:
// - Status must not already be Done
func CanComplete(ctx CompleteContext) GuardResult {
	if ctx.Status == StatusDone {
		return deny("obligation %s is already done", ctx.ObligationID)
	}
	return GuardResult{Allowed: true}
}

// CanReschedule evaluates whether an obligation can get a new due date.
// Rules:
// - Status must not be Done
// - New due date is required and must not be in the past
func CanReschedule(ctx RescheduleContext) GuardResult {
	if ctx.Status == StatusDone {
		return deny("cannot reschedule done obligation %s", ctx.ObligationID)
	}
	if ctx.NewDueDate.IsZero() {
		return deny("rescheduling requires a new due date")
	}
	if ctx.NewDueDate.Before(ctx.Today) {
		return deny("new due date must be today or later")
	}
	return GuardResult{Allowed: true}
}

func deny(format string, args ...any) GuardResult {
	return GuardResult{Allowed: false, Reason: fmt.Sprintf(format, args...)}
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
