package primary

import (
	"context"
	"time"
)

// DeliveryService defines the primary port for reading the delivery audit trail.
type DeliveryService interface {
	// ListDeliveries lists delivery records, newest first.
	ListDeliveries(ctx context.Context, filters DeliveryFilters) ([]*Delivery, error)
}

// Delivery represents one dispatch attempt at the port boundary.
type Delivery struct {
	ID           string
	ObligationID string
	Channel      string
	Recipient    string
	Tier         string
	TierDays     int
	Subject      string
	SentAt       time.Time
	SentOn       time.Time
	Outcome      string
	ErrorDetail  string // May be empty
}

// DeliveryFilters contains filter options for listing deliveries.
type DeliveryFilters struct {
	ObligationID string
	Outcome      string
	Limit        int
}
