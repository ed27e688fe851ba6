package primary

import (
	"context"
	"time"
)

// ObligationService defines the primary port for operator-driven obligation changes.
type ObligationService interface {
	// CreateObligation records a new Pending obligation.
	CreateObligation(ctx context.Context, req CreateObligationRequest) (*Obligation, error)

	// GetObligation retrieves an obligation by ID.
	GetObligation(ctx context.Context, id string) (*Obligation, error)

	// ListObligations lists obligations ordered by due date.
	ListObligations(ctx context.Context, filters ObligationFilters) ([]*Obligation, error)

	// SnoozeObligation moves a Pending or Snoozed obligation to Snoozed until the given date.
	SnoozeObligation(ctx context.Context, id string, until time.Time) (*Obligation, error)

	// CompleteObligation marks an obligation Done.
	CompleteObligation(ctx context.Context, id string) (*Obligation, error)

	// RescheduleObligation sets a new due date and returns the obligation to Pending.
	RescheduleObligation(ctx context.Context, id string, dueDate time.Time) (*Obligation, error)

	// DeleteObligation removes an obligation and its delivery history.
	DeleteObligation(ctx context.Context, id string) error
}

// CreateObligationRequest contains parameters for creating an obligation.
type CreateObligationRequest struct {
	Source       string
	Contact      string
	ContactEmail string
	ContactPhone string
	Description  string
	DueDate      time.Time
	Priority     string // defaults to Medium
}

// Obligation represents an obligation at the port boundary.
type Obligation struct {
	ID           string
	Source       string
	Contact      string
	ContactEmail string // May be empty
	ContactPhone string // May be empty
	Description  string
	DueDate      time.Time
	Priority     string
	Status       string
	SnoozeUntil  time.Time // Zero unless Snoozed
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  time.Time // Zero unless Done
}

// ObligationFilters contains filter options for listing obligations.
type ObligationFilters struct {
	Status string
	Limit  int
}
