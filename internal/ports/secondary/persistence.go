// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors returned by repository implementations.
var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned by AtomicUpdate when the row changed underneath the mutation.
	ErrConflict = errors.New("concurrent update conflict")

	// ErrDuplicateDelivery is returned by Append when a sent record already
	// exists for the same obligation, channel and day.
	ErrDuplicateDelivery = errors.New("delivery already recorded for today")
)

// ObligationRepository defines the secondary port for obligation persistence.
type ObligationRepository interface {
	// Create persists a new obligation.
	Create(ctx context.Context, obligation *ObligationRecord) error

	// GetByID retrieves an obligation by its ID.
	GetByID(ctx context.Context, id string) (*ObligationRecord, error)

	// Find retrieves obligations matching the given filters, ordered by due date ascending.
	Find(ctx context.Context, filters ObligationFilters) ([]*ObligationRecord, error)

	// AtomicUpdate loads the obligation, applies mutate and writes it back in one
	// transaction. The write is a compare-and-swap on Version; ErrConflict is
	// returned when another writer got there first. If mutate returns an error
	// nothing is written and that error is returned.
	AtomicUpdate(ctx context.Context, id string, mutate func(*ObligationRecord) error) (*ObligationRecord, error)

	// Delete removes an obligation together with its delivery records.
	Delete(ctx context.Context, id string) error
}

// ObligationRecord represents an obligation as stored in persistence.
// Civil dates are midnight UTC; the zero time means null.
type ObligationRecord struct {
	ID           string
	Source       string
	Contact      string
	ContactEmail string // Empty string means null
	ContactPhone string // Empty string means null
	Description  string
	DueDate      time.Time
	Priority     string
	Status       string // Pending, Snoozed, Done
	SnoozeUntil  time.Time
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  time.Time
}

// ObligationFilters contains filter options for querying obligations.
// Zero values are ignored.
type ObligationFilters struct {
	Status           string
	DueOnOrBefore    time.Time
	DueOnOrAfter     time.Time
	SnoozeOnOrBefore time.Time
	Limit            int
}

// DeliveryRepository defines the secondary port for the delivery audit trail.
// Records are append-only.
type DeliveryRepository interface {
	// Append persists a new delivery record.
	Append(ctx context.Context, record *DeliveryRecord) error

	// FindByObligationAndDate returns the records of one obligation counted against day.
	FindByObligationAndDate(ctx context.Context, obligationID string, day time.Time) ([]*DeliveryRecord, error)

	// List retrieves delivery records matching the given filters, newest first.
	List(ctx context.Context, filters DeliveryFilters) ([]*DeliveryRecord, error)
}

// DeliveryRecord represents one dispatch attempt as stored in persistence.
type DeliveryRecord struct {
	ID           string
	ObligationID string
	Channel      string // email, whatsapp, sms
	Recipient    string
	Tier         string
	TierDays     int
	Subject      string
	SentAt       time.Time
	SentOn       time.Time // civil day the attempt counts against
	Outcome      string    // sent, failed
	ErrorDetail  string    // Empty string means null
}

// DeliveryFilters contains filter options for listing delivery records.
type DeliveryFilters struct {
	ObligationID string
	Outcome      string
	Limit        int
}
