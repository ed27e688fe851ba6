package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/followup/internal/core/calendar"
	"github.com/example/followup/internal/core/delivery"
	"github.com/example/followup/internal/core/escalation"
	"github.com/example/followup/internal/core/message"
	"github.com/example/followup/internal/core/obligation"
	"github.com/example/followup/internal/ctxutil"
	"github.com/example/followup/internal/ports/primary"
	"github.com/example/followup/internal/ports/secondary"
)

// EscalationConfig holds the escalation pass settings.
type EscalationConfig struct {
	Policy             escalation.Policy
	DefaultNotifyEmail string
	Location           *time.Location // civil-date zone; nil means UTC
}

// EscalationServiceImpl implements the EscalationService interface.
type EscalationServiceImpl struct {
	obligationRepo secondary.ObligationRepository
	deliveryRepo   secondary.DeliveryRepository
	notifiers      map[string]secondary.Notifier
	channels       []string
	cfg            EscalationConfig
	logger         *zap.Logger
	now            func() time.Time
}

// NewEscalationService creates a new EscalationService with injected dependencies.
// Channels are attempted in the order the notifiers are given.
func NewEscalationService(
	obligationRepo secondary.ObligationRepository,
	deliveryRepo secondary.DeliveryRepository,
	notifiers []secondary.Notifier,
	cfg EscalationConfig,
	logger *zap.Logger,
) *EscalationServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &EscalationServiceImpl{
		obligationRepo: obligationRepo,
		deliveryRepo:   deliveryRepo,
		notifiers:      make(map[string]secondary.Notifier, len(notifiers)),
		cfg:            cfg,
		logger:         logger,
		now:            time.Now,
	}
	for _, n := range notifiers {
		if _, dup := s.notifiers[n.Channel()]; dup {
			continue
		}
		s.notifiers[n.Channel()] = n
		s.channels = append(s.channels, n.Channel())
	}
	return s
}

// RunEscalationPass reminds every eligible obligation once per channel per day.
func (s *EscalationServiceImpl) RunEscalationPass(ctx context.Context) (*primary.PassReport, error) {
	today := calendar.Date(s.now(), s.cfg.Location)
	report := &primary.PassReport{Pass: primary.PassEscalation, Today: today}
	log := s.passLogger(ctx)

	candidates, err := s.obligationRepo.Find(ctx, secondary.ObligationFilters{
		Status:        obligation.StatusPending,
		DueOnOrBefore: s.cfg.Policy.Horizon(today),
		DueOnOrAfter:  s.cfg.Policy.Floor(today),
	})
	if err != nil {
		return report, fmt.Errorf("failed to find escalation candidates: %w", err)
	}

	for _, o := range candidates {
		report.Candidates++
		if err := s.escalate(ctx, log, o, today, report); err != nil {
			report.Errors++
			log.Error("escalation aborted for obligation",
				zap.String("obligation_id", o.ID),
				zap.Error(err),
			)
		}
	}

	log.Info("escalation pass complete",
		zap.String("today", calendar.Format(today)),
		zap.Int("candidates", report.Candidates),
		zap.Int("sent", report.Sent),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped),
		zap.Int("errors", report.Errors),
	)
	return report, nil
}

// escalate handles one candidate. A returned error is a store failure that
// aborts this obligation only.
func (s *EscalationServiceImpl) escalate(ctx context.Context, log *zap.Logger, o *secondary.ObligationRecord, today time.Time, report *primary.PassReport) error {
	log = log.With(zap.String("obligation_id", o.ID))

	if o.DueDate.IsZero() || o.Contact == "" {
		report.Skipped++
		log.Warn("skipping malformed obligation")
		return nil
	}

	tier, ok := s.cfg.Policy.Evaluate(o.Status, o.DueDate, today)
	if !ok {
		report.Skipped++
		return nil
	}

	attempts := delivery.Plan(s.channels, delivery.RecipientContext{
		ContactEmail:       o.ContactEmail,
		ContactPhone:       o.ContactPhone,
		DefaultNotifyEmail: s.cfg.DefaultNotifyEmail,
	})
	if len(attempts) == 0 {
		report.Skipped++
		log.Debug("no reachable channel for obligation")
		return nil
	}

	prior, err := s.deliveryRepo.FindByObligationAndDate(ctx, o.ID, today)
	if err != nil {
		return fmt.Errorf("failed to load delivery records: %w", err)
	}
	attempts = delivery.Outstanding(attempts, toPrior(prior))
	if len(attempts) == 0 {
		report.Skipped++
		log.Debug("already reminded today", zap.String("tier", tier.Label()))
		return nil
	}

	msg := message.Compose(message.Input{
		Contact:     o.Contact,
		Description: o.Description,
		Source:      o.Source,
		Priority:    o.Priority,
		DueDate:     o.DueDate,
	}, tier)

	for _, a := range attempts {
		sendErr := s.notifiers[a.Channel].Send(ctx, a.Recipient, msg)

		record := &secondary.DeliveryRecord{
			ID:           uuid.NewString(),
			ObligationID: o.ID,
			Channel:      a.Channel,
			Recipient:    a.Recipient,
			Tier:         tier.Label(),
			TierDays:     tier.Days,
			Subject:      msg.Subject,
			SentAt:       s.now().UTC(),
			SentOn:       today,
			Outcome:      delivery.OutcomeSent,
		}
		if sendErr != nil {
			record.Outcome = delivery.OutcomeFailed
			record.ErrorDetail = delivery.ErrorDetail(sendErr)
		}

		if err := s.deliveryRepo.Append(ctx, record); err != nil {
			if errors.Is(err, secondary.ErrDuplicateDelivery) {
				report.Skipped++
				log.Info("reminder already recorded by a concurrent pass", zap.String("channel", a.Channel))
				continue
			}
			return fmt.Errorf("failed to record %s delivery: %w", a.Channel, err)
		}

		if sendErr != nil {
			report.Failed++
			log.Warn("reminder delivery failed",
				zap.String("channel", a.Channel),
				zap.String("tier", tier.String()),
				zap.Error(sendErr),
			)
			continue
		}
		report.Sent++
		log.Info("reminder sent",
			zap.String("channel", a.Channel),
			zap.String("tier", tier.String()),
		)
	}

	return nil
}

func (s *EscalationServiceImpl) passLogger(ctx context.Context) *zap.Logger {
	return s.logger.With(
		zap.String("pass", primary.PassEscalation),
		zap.String("tick_id", ctxutil.TickIDFromContext(ctx)),
	)
}

func toPrior(records []*secondary.DeliveryRecord) []delivery.Prior {
	prior := make([]delivery.Prior, len(records))
	for i, r := range records {
		prior[i] = delivery.Prior{Channel: r.Channel, Outcome: r.Outcome}
	}
	return prior
}

// Ensure EscalationServiceImpl implements the interface
var _ primary.EscalationService = (*EscalationServiceImpl)(nil)
