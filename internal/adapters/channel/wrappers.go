package channel

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/example/followup/internal/core/message"
	"github.com/example/followup/internal/ports/secondary"
)

// DryRun wraps a channel and reports success without sending anything.
type DryRun struct {
	inner  secondary.Notifier
	logger *zap.Logger
}

// NewDryRun wraps inner.
func NewDryRun(inner secondary.Notifier, logger *zap.Logger) *DryRun {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DryRun{inner: inner, logger: logger}
}

// Channel returns the wrapped channel's name.
func (d *DryRun) Channel() string { return d.inner.Channel() }

// Send logs the message and returns nil.
func (d *DryRun) Send(ctx context.Context, recipient string, msg message.Message) error {
	d.logger.Info("dry run: reminder not sent",
		zap.String("channel", d.inner.Channel()),
		zap.String("recipient", recipient),
		zap.String("subject", msg.Subject),
	)
	return nil
}

// Throttle wraps a channel with a send rate limit.
type Throttle struct {
	inner   secondary.Notifier
	limiter *rate.Limiter
}

// NewThrottle allows perSecond sends per second with a burst of one.
// A non-positive rate returns inner unchanged.
func NewThrottle(inner secondary.Notifier, perSecond float64) secondary.Notifier {
	if perSecond <= 0 {
		return inner
	}
	return &Throttle{inner: inner, limiter: rate.NewLimiter(rate.Limit(perSecond), 1)}
}

// Channel returns the wrapped channel's name.
func (t *Throttle) Channel() string { return t.inner.Channel() }

// Send waits for a token, then delegates.
func (t *Throttle) Send(ctx context.Context, recipient string, msg message.Message) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s throttle: %w", t.inner.Channel(), err)
	}
	return t.inner.Send(ctx, recipient, msg)
}

var (
	_ secondary.Notifier = (*Email)(nil)
	_ secondary.Notifier = (*WhatsApp)(nil)
	_ secondary.Notifier = (*SMS)(nil)
	_ secondary.Notifier = (*DryRun)(nil)
	_ secondary.Notifier = (*Throttle)(nil)
)
