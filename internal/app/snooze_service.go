package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/followup/internal/core/calendar"
	"github.com/example/followup/internal/core/obligation"
	"github.com/example/followup/internal/ctxutil"
	"github.com/example/followup/internal/ports/primary"
	"github.com/example/followup/internal/ports/secondary"
)

// errNotReleasable marks an obligation that changed between the query and the update.
var errNotReleasable = errors.New("obligation no longer releasable")

// SnoozeServiceImpl implements the SnoozeService interface.
type SnoozeServiceImpl struct {
	obligationRepo secondary.ObligationRepository
	location       *time.Location
	logger         *zap.Logger
	now            func() time.Time
}

// NewSnoozeService creates a new SnoozeService with injected dependencies.
func NewSnoozeService(obligationRepo secondary.ObligationRepository, location *time.Location, logger *zap.Logger) *SnoozeServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnoozeServiceImpl{
		obligationRepo: obligationRepo,
		location:       location,
		logger:         logger,
		now:            time.Now,
	}
}

// RunSnoozeReleasePass returns due Snoozed obligations to Pending.
// No reminder is sent here; the next escalation pass picks them up.
func (s *SnoozeServiceImpl) RunSnoozeReleasePass(ctx context.Context) (*primary.PassReport, error) {
	today := calendar.Date(s.now(), s.location)
	report := &primary.PassReport{Pass: primary.PassSnoozeRelease, Today: today}
	log := s.logger.With(
		zap.String("pass", primary.PassSnoozeRelease),
		zap.String("tick_id", ctxutil.TickIDFromContext(ctx)),
	)

	candidates, err := s.obligationRepo.Find(ctx, secondary.ObligationFilters{
		Status:           obligation.StatusSnoozed,
		SnoozeOnOrBefore: today,
	})
	if err != nil {
		return report, fmt.Errorf("failed to find snoozed obligations: %w", err)
	}

	for _, o := range candidates {
		report.Candidates++

		_, err := s.obligationRepo.AtomicUpdate(ctx, o.ID, func(current *secondary.ObligationRecord) error {
			guard := obligation.CanRelease(obligation.ReleaseContext{
				ObligationID: current.ID,
				Status:       current.Status,
				SnoozeUntil:  current.SnoozeUntil,
				Today:        today,
			})
			if !guard.Allowed {
				return fmt.Errorf("%w: %s", errNotReleasable, guard.Reason)
			}
			tr := obligation.Release()
			current.Status = tr.NewStatus
			current.SnoozeUntil = tr.SnoozeUntil
			return nil
		})

		switch {
		case err == nil:
			report.Released++
			log.Info("snooze released", zap.String("obligation_id", o.ID))
		case errors.Is(err, errNotReleasable):
			report.Skipped++
			log.Info("skipping obligation", zap.String("obligation_id", o.ID), zap.Error(err))
		default:
			report.Errors++
			log.Error("snooze release failed", zap.String("obligation_id", o.ID), zap.Error(err))
		}
	}

	log.Info("snooze-release pass complete",
		zap.String("today", calendar.Format(today)),
		zap.Int("candidates", report.Candidates),
		zap.Int("released", report.Released),
		zap.Int("skipped", report.Skipped),
		zap.Int("errors", report.Errors),
	)
	return report, nil
}

// Ensure SnoozeServiceImpl implements the interface
var _ primary.SnoozeService = (*SnoozeServiceImpl)(nil)
