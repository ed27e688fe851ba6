package app

import (
	"context"
	"fmt"

	"github.com/example/followup/internal/core/delivery"
	"github.com/example/followup/internal/ports/primary"
	"github.com/example/followup/internal/ports/secondary"
)

// DeliveryServiceImpl implements the DeliveryService interface.
type DeliveryServiceImpl struct {
	deliveryRepo secondary.DeliveryRepository
}

// NewDeliveryService creates a new DeliveryService with injected dependencies.
func NewDeliveryService(deliveryRepo secondary.DeliveryRepository) *DeliveryServiceImpl {
	return &DeliveryServiceImpl{deliveryRepo: deliveryRepo}
}

// ListDeliveries lists delivery records, newest first.
func (s *DeliveryServiceImpl) ListDeliveries(ctx context.Context, filters primary.DeliveryFilters) ([]*primary.Delivery, error) {
	if filters.Outcome != "" && filters.Outcome != delivery.OutcomeSent && filters.Outcome != delivery.OutcomeFailed {
		return nil, fmt.Errorf("unknown outcome %q (expected %s or %s)", filters.Outcome, delivery.OutcomeSent, delivery.OutcomeFailed)
	}

	records, err := s.deliveryRepo.List(ctx, secondary.DeliveryFilters{
		ObligationID: filters.ObligationID,
		Outcome:      filters.Outcome,
		Limit:        filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list deliveries: %w", err)
	}

	deliveries := make([]*primary.Delivery, len(records))
	for i, r := range records {
		deliveries[i] = &primary.Delivery{
			ID:           r.ID,
			ObligationID: r.ObligationID,
			Channel:      r.Channel,
			Recipient:    r.Recipient,
			Tier:         r.Tier,
			TierDays:     r.TierDays,
			Subject:      r.Subject,
			SentAt:       r.SentAt,
			SentOn:       r.SentOn,
			Outcome:      r.Outcome,
			ErrorDetail:  r.ErrorDetail,
		}
	}
	return deliveries, nil
}

// Ensure DeliveryServiceImpl implements the interface
var _ primary.DeliveryService = (*DeliveryServiceImpl)(nil)
