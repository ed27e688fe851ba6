package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/followup/internal/core/calendar"
	"github.com/example/followup/internal/core/obligation"
	"github.com/example/followup/internal/ports/primary"
	"github.com/example/followup/internal/ports/secondary"
)

// ObligationServiceImpl implements the ObligationService interface.
type ObligationServiceImpl struct {
	obligationRepo secondary.ObligationRepository
	location       *time.Location
	now            func() time.Time
}

// NewObligationService creates a new ObligationService with injected dependencies.
func NewObligationService(obligationRepo secondary.ObligationRepository, location *time.Location) *ObligationServiceImpl {
	return &ObligationServiceImpl{
		obligationRepo: obligationRepo,
		location:       location,
		now:            time.Now,
	}
}

// CreateObligation records a new Pending obligation.
func (s *ObligationServiceImpl) CreateObligation(ctx context.Context, req primary.CreateObligationRequest) (*primary.Obligation, error) {
	priority := req.Priority
	if priority == "" {
		priority = obligation.PriorityMedium
	}

	guard := obligation.CanCreate(obligation.CreateContext{
		Source:       req.Source,
		Contact:      req.Contact,
		ContactEmail: strings.TrimSpace(req.ContactEmail),
		ContactPhone: strings.TrimSpace(req.ContactPhone),
		Description:  req.Description,
		Priority:     priority,
		DueDate:      req.DueDate,
	})
	if err := guard.Error(); err != nil {
		return nil, err
	}

	record := &secondary.ObligationRecord{
		ID:           uuid.NewString(),
		Source:       req.Source,
		Contact:      strings.TrimSpace(req.Contact),
		ContactEmail: strings.TrimSpace(req.ContactEmail),
		ContactPhone: strings.TrimSpace(req.ContactPhone),
		Description:  strings.TrimSpace(req.Description),
		DueDate:      calendar.Date(req.DueDate, time.UTC),
		Priority:     priority,
		Status:       obligation.InitialStatus(),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.obligationRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create obligation: %w", err)
	}

	return recordToObligation(record), nil
}

// GetObligation retrieves an obligation by ID.
func (s *ObligationServiceImpl) GetObligation(ctx context.Context, id string) (*primary.Obligation, error) {
	record, err := s.obligationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return recordToObligation(record), nil
}

// ListObligations lists obligations ordered by due date.
func (s *ObligationServiceImpl) ListObligations(ctx context.Context, filters primary.ObligationFilters) ([]*primary.Obligation, error) {
	if filters.Status != "" && !obligation.IsValidStatus(filters.Status) {
		return nil, fmt.Errorf("unknown status %q", filters.Status)
	}

	records, err := s.obligationRepo.Find(ctx, secondary.ObligationFilters{
		Status: filters.Status,
		Limit:  filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list obligations: %w", err)
	}

	obligations := make([]*primary.Obligation, len(records))
	for i, r := range records {
		obligations[i] = recordToObligation(r)
	}
	return obligations, nil
}

// SnoozeObligation snoozes an obligation until the given date.
func (s *ObligationServiceImpl) SnoozeObligation(ctx context.Context, id string, until time.Time) (*primary.Obligation, error) {
	today := s.today()
	return s.update(ctx, id, func(o *secondary.ObligationRecord) error {
		guard := obligation.CanSnooze(obligation.SnoozeContext{
			ObligationID: o.ID,
			Status:       o.Status,
			DueDate:      o.DueDate,
			SnoozeUntil:  until,
			Today:        today,
		})
		if err := guard.Error(); err != nil {
			return err
		}
		apply(o, obligation.Snooze(until))
		return nil
	})
}

// CompleteObligation marks an obligation Done.
func (s *ObligationServiceImpl) CompleteObligation(ctx context.Context, id string) (*primary.Obligation, error) {
	now := s.now().UTC()
	return s.update(ctx, id, func(o *secondary.ObligationRecord) error {
		guard := obligation.CanComplete(obligation.CompleteContext{
			ObligationID: o.ID,
			Status:       o.Status,
		})
		if err := guard.Error(); err != nil {
			return err
		}
		apply(o, obligation.Complete(now))
		return nil
	})
}

// RescheduleObligation sets a new due date and returns the obligation to Pending.
func (s *ObligationServiceImpl) RescheduleObligation(ctx context.Context, id string, dueDate time.Time) (*primary.Obligation, error) {
	today := s.today()
	return s.update(ctx, id, func(o *secondary.ObligationRecord) error {
		guard := obligation.CanReschedule(obligation.RescheduleContext{
			ObligationID: o.ID,
			Status:       o.Status,
			NewDueDate:   dueDate,
			Today:        today,
		})
		if err := guard.Error(); err != nil {
			return err
		}
		apply(o, obligation.Reschedule(dueDate))
		return nil
	})
}

// DeleteObligation removes an obligation and its delivery history.
func (s *ObligationServiceImpl) DeleteObligation(ctx context.Context, id string) error {
	if err := s.obligationRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete obligation: %w", err)
	}
	return nil
}

func (s *ObligationServiceImpl) update(ctx context.Context, id string, mutate func(*secondary.ObligationRecord) error) (*primary.Obligation, error) {
	record, err := s.obligationRepo.AtomicUpdate(ctx, id, mutate)
	if err != nil {
		return nil, err
	}
	return recordToObligation(record), nil
}

func (s *ObligationServiceImpl) today() time.Time {
	return calendar.Date(s.now(), s.location)
}

// apply writes a transition onto a record.
func apply(o *secondary.ObligationRecord, tr obligation.TransitionResult) {
	o.Status = tr.NewStatus
	o.SnoozeUntil = tr.SnoozeUntil
	o.CompletedAt = tr.CompletedAt
	if !tr.DueDate.IsZero() {
		o.DueDate = calendar.Date(tr.DueDate, time.UTC)
	}
}

func recordToObligation(r *secondary.ObligationRecord) *primary.Obligation {
	return &primary.Obligation{
		ID:           r.ID,
		Source:       r.Source,
		Contact:      r.Contact,
		ContactEmail: r.ContactEmail,
		ContactPhone: r.ContactPhone,
		Description:  r.Description,
		DueDate:      r.DueDate,
		Priority:     r.Priority,
		Status:       r.Status,
		SnoozeUntil:  r.SnoozeUntil,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		CompletedAt:  r.CompletedAt,
	}
}

// Ensure ObligationServiceImpl implements the interface
var _ primary.ObligationService = (*ObligationServiceImpl)(nil)
