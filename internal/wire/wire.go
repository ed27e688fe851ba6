// Package wire provides dependency injection for the followup engine.
// Build assembles a Container from configuration; the package-level
// accessors hold a lazily built singleton for the CLI.
package wire

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/followup/internal/adapters/channel"
	cliadapter "github.com/example/followup/internal/adapters/cli"
	"github.com/example/followup/internal/adapters/sqlstore"
	"github.com/example/followup/internal/app"
	"github.com/example/followup/internal/config"
	"github.com/example/followup/internal/core/escalation"
	"github.com/example/followup/internal/db"
	"github.com/example/followup/internal/ports/primary"
	"github.com/example/followup/internal/ports/secondary"
	"github.com/example/followup/internal/scheduler"
)

// Container holds every wired component.
type Container struct {
	Config  *config.Config
	Logger  *zap.Logger
	DB      *sql.DB
	Dialect db.Dialect

	ObligationService primary.ObligationService
	DeliveryService   primary.DeliveryService
	EscalationService primary.EscalationService
	SnoozeService     primary.SnoozeService

	Notifiers []secondary.Notifier
	Scheduler *scheduler.Scheduler
}

// Build opens the store and wires the services, channels and scheduler.
func Build(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	conn, dialect, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	loc := cfg.Location()
	obligationRepo := sqlstore.NewObligationRepository(conn, dialect)
	deliveryRepo := sqlstore.NewDeliveryRepository(conn, dialect)
	notifiers := Notifiers(cfg, logger)

	c := &Container{
		Config:            cfg,
		Logger:            logger,
		DB:                conn,
		Dialect:           dialect,
		ObligationService: app.NewObligationService(obligationRepo, loc),
		DeliveryService:   app.NewDeliveryService(deliveryRepo),
		EscalationService: app.NewEscalationService(obligationRepo, deliveryRepo, notifiers, app.EscalationConfig{
			Policy: escalation.Policy{
				WindowDays:     cfg.Escalation.ReminderWindowDays,
				MaxOverdueDays: cfg.Escalation.MaxOverdueDays,
			},
			DefaultNotifyEmail: cfg.DefaultNotifyEmail,
			Location:           loc,
		}, logger),
		SnoozeService: app.NewSnoozeService(obligationRepo, loc, logger),
		Notifiers:     notifiers,
	}

	c.Scheduler, err = scheduler.New(logger, cfg.Scheduler.RunOnStart,
		scheduler.Job{
			Name:     primary.PassEscalation,
			Interval: cfg.EscalationInterval(),
			Run: func(ctx context.Context) error {
				_, err := c.EscalationService.RunEscalationPass(ctx)
				return err
			},
		},
		scheduler.Job{
			Name:     primary.PassSnoozeRelease,
			Interval: cfg.SnoozeInterval(),
			Run: func(ctx context.Context) error {
				_, err := c.SnoozeService.RunSnoozeReleasePass(ctx)
				return err
			},
		},
	)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return c, nil
}

// Close releases the database connection.
func (c *Container) Close() error {
	return c.DB.Close()
}

// ObligationAdapter returns a new ObligationAdapter writing to out.
// Adapters are stateless translators, so each call creates a new one.
func (c *Container) ObligationAdapter(out io.Writer) *cliadapter.ObligationAdapter {
	return cliadapter.NewObligationAdapter(c.ObligationService, out, c.Config.Location())
}

// DeliveryAdapter returns a new DeliveryAdapter writing to out.
func (c *Container) DeliveryAdapter(out io.Writer) *cliadapter.DeliveryAdapter {
	return cliadapter.NewDeliveryAdapter(c.DeliveryService, out)
}

// PassAdapter returns a new PassAdapter writing to out.
func (c *Container) PassAdapter(out io.Writer) *cliadapter.PassAdapter {
	return cliadapter.NewPassAdapter(c.EscalationService, c.SnoozeService, out)
}

// Notifiers builds the enabled channels in dispatch order: email first, then
// the configured messaging channel. A channel without credentials is skipped
// with a warning unless dry-run is on. Dry-run wraps every channel in a logging
// no-op; otherwise channels with a rate limit are throttled.
func Notifiers(cfg *config.Config, logger *zap.Logger) []secondary.Notifier {
	var out []secondary.Notifier

	emailConfigured := cfg.Email.ResendAPIKey != "" || cfg.Email.SMTPHost != ""
	switch {
	case !cfg.Email.Enabled:
	case emailConfigured || cfg.DryRun:
		email := channel.NewEmail(channel.EmailConfig{
			From:         cfg.Email.From,
			ResendAPIKey: cfg.Email.ResendAPIKey,
			ResendURL:    cfg.Email.ResendURL,
			SMTPHost:     cfg.Email.SMTPHost,
			SMTPPort:     cfg.Email.SMTPPort,
			SMTPUsername: cfg.Email.SMTPUsername,
			SMTPPassword: cfg.Email.SMTPPassword,
			SMTPUseSSL:   cfg.Email.SMTPUseSSL,
			SMTPUseTLS:   cfg.Email.SMTPUseTLS,
			Timeout:      seconds(cfg.Email.TimeoutSeconds),
		}, logger)
		out = append(out, wrap(cfg, email, cfg.Email.RatePerSecond, logger))
	default:
		logger.Warn("email channel enabled but neither resend nor smtp is configured; skipping")
	}

	timeout := seconds(cfg.Messaging.TimeoutSeconds)
	wa, sms := cfg.Messaging.WhatsApp, cfg.Messaging.SMS
	switch cfg.Messaging.Channel {
	case config.MessagingWhatsApp:
		if !cfg.DryRun && (wa.Endpoint == "" || wa.Token == "") {
			logger.Warn("whatsapp channel selected but endpoint or token is missing; skipping")
			break
		}
		n := channel.NewWhatsApp(channel.WhatsAppConfig{
			Endpoint: wa.Endpoint,
			Token:    wa.Token,
			Sender:   wa.Sender,
			Timeout:  timeout,
		})
		out = append(out, wrap(cfg, n, cfg.Messaging.RatePerSecond, logger))
	case config.MessagingSMS:
		if !cfg.DryRun && (sms.Endpoint == "" || (sms.APIKey == "" && sms.UserID == "")) {
			logger.Warn("sms channel selected but endpoint or credentials are missing; skipping")
			break
		}
		n := channel.NewSMS(channel.SMSConfig{
			Endpoint: sms.Endpoint,
			APIKey:   sms.APIKey,
			UserID:   sms.UserID,
			Password: sms.Password,
			SenderID: sms.SenderID,
			Timeout:  timeout,
		})
		out = append(out, wrap(cfg, n, cfg.Messaging.RatePerSecond, logger))
	}

	return out
}

func wrap(cfg *config.Config, n secondary.Notifier, perSecond float64, logger *zap.Logger) secondary.Notifier {
	if cfg.DryRun {
		return channel.NewDryRun(n, logger)
	}
	return channel.NewThrottle(n, perSecond)
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

var (
	container *Container
	buildErr  error
	once      sync.Once

	pendingCfg    *config.Config
	pendingLogger *zap.Logger
)

// Configure sets the configuration used by the singleton. It must be called
// before the first accessor.
func Configure(cfg *config.Config, logger *zap.Logger) {
	pendingCfg = cfg
	pendingLogger = logger
}

// Get returns the singleton Container, building it on first use.
func Get() (*Container, error) {
	once.Do(initContainer)
	return container, buildErr
}

// initContainer builds the singleton. This is called once via sync.Once.
func initContainer() {
	cfg := pendingCfg
	if cfg == nil {
		cfg = config.Default()
	}
	container, buildErr = Build(cfg, pendingLogger)
}
