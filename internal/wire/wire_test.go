package wire

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/example/followup/internal/config"
	"github.com/example/followup/internal/core/calendar"
	"github.com/example/followup/internal/core/delivery"
	"github.com/example/followup/internal/core/obligation"
	"github.com/example/followup/internal/ports/primary"
)

func dryRunConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DatabaseURL = filepath.Join(t.TempDir(), "followup.db")
	cfg.Timezone = "UTC"
	cfg.DryRun = true
	cfg.DefaultNotifyEmail = "ops@example.com"
	cfg.Messaging.Channel = config.MessagingWhatsApp
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestNotifiers(t *testing.T) {
	cfg := config.Default()
	assert.Empty(t, Notifiers(cfg, zap.NewNop()), "unconfigured email is skipped")

	cfg.Email.SMTPHost = "smtp.example.com"
	cfg.Messaging.Channel = config.MessagingSMS
	cfg.Messaging.SMS.Endpoint = "https://sms.example.com/send"
	cfg.Messaging.SMS.APIKey = "key"
	got := Notifiers(cfg, zap.NewNop())
	require.Len(t, got, 2)
	assert.Equal(t, delivery.ChannelEmail, got[0].Channel())
	assert.Equal(t, delivery.ChannelSMS, got[1].Channel())

	cfg.Email.Enabled = false
	got = Notifiers(cfg, zap.NewNop())
	require.Len(t, got, 1)
	assert.Equal(t, delivery.ChannelSMS, got[0].Channel())
}

func TestNotifiers_MessagingCredentials(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(cfg *config.Config)
		want    []string
		warning string
	}{
		{
			name: "whatsapp without credentials is skipped",
			setup: func(cfg *config.Config) {
				cfg.Messaging.Channel = config.MessagingWhatsApp
			},
			warning: "whatsapp channel selected but endpoint or token is missing; skipping",
		},
		{
			name: "whatsapp without token is skipped",
			setup: func(cfg *config.Config) {
				cfg.Messaging.Channel = config.MessagingWhatsApp
				cfg.Messaging.WhatsApp.Endpoint = "https://wa.example.com/messages"
			},
			warning: "whatsapp channel selected but endpoint or token is missing; skipping",
		},
		{
			name: "whatsapp with endpoint and token",
			setup: func(cfg *config.Config) {
				cfg.Messaging.Channel = config.MessagingWhatsApp
				cfg.Messaging.WhatsApp.Endpoint = "https://wa.example.com/messages"
				cfg.Messaging.WhatsApp.Token = "token"
			},
			want: []string{delivery.ChannelWhatsApp},
		},
		{
			name: "sms without credentials is skipped",
			setup: func(cfg *config.Config) {
				cfg.Messaging.Channel = config.MessagingSMS
				cfg.Messaging.SMS.Endpoint = "https://sms.example.com/send"
			},
			warning: "sms channel selected but endpoint or credentials are missing; skipping",
		},
		{
			name: "sms with user id",
			setup: func(cfg *config.Config) {
				cfg.Messaging.Channel = config.MessagingSMS
				cfg.Messaging.SMS.Endpoint = "https://sms.example.com/send"
				cfg.Messaging.SMS.UserID = "acct"
			},
			want: []string{delivery.ChannelSMS},
		},
		{
			name: "dry-run keeps an unconfigured channel",
			setup: func(cfg *config.Config) {
				cfg.DryRun = true
				cfg.Email.Enabled = false
				cfg.Messaging.Channel = config.MessagingSMS
			},
			want: []string{delivery.ChannelSMS},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.setup(cfg)

			core, logs := observer.New(zapcore.WarnLevel)
			got := Notifiers(cfg, zap.New(core))

			var channels []string
			for _, n := range got {
				channels = append(channels, n.Channel())
			}
			assert.Equal(t, tt.want, channels)

			if tt.warning != "" {
				assert.Equal(t, 1, logs.FilterMessage(tt.warning).Len())
			} else {
				assert.Zero(t, logs.FilterMessageSnippet("whatsapp channel").Len()+logs.FilterMessageSnippet("sms channel").Len())
			}
		})
	}
}

func TestBuild_UnconfiguredMessagingRecordsNothing(t *testing.T) {
	ctx := context.Background()
	cfg := dryRunConfig(t)
	cfg.DryRun = false

	c, err := Build(cfg, zap.NewNop())
	require.NoError(t, err)
	defer c.Close()
	assert.Empty(t, c.Notifiers)

	today := calendar.Date(time.Now(), time.UTC)
	ob, err := c.ObligationService.CreateObligation(ctx, primary.CreateObligationRequest{
		Source:       obligation.SourcePhone,
		Contact:      "Kim",
		ContactPhone: "+15551234567",
		Description:  "Confirm the delivery window",
		DueDate:      calendar.AddDays(today, 1),
	})
	require.NoError(t, err)

	for range 4 {
		require.NoError(t, c.Scheduler.Trigger(ctx, primary.PassEscalation))
	}

	records, err := c.DeliveryService.ListDeliveries(ctx, primary.DeliveryFilters{ObligationID: ob.ID})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestBuild_DryRunDueInTwoDays(t *testing.T) {
	ctx := context.Background()
	c, err := Build(dryRunConfig(t), zap.NewNop())
	require.NoError(t, err)
	defer c.Close()

	require.Len(t, c.Notifiers, 2)
	assert.ElementsMatch(t, []string{primary.PassEscalation, primary.PassSnoozeRelease}, c.Scheduler.Jobs())

	today := calendar.Date(time.Now(), time.UTC)
	ob, err := c.ObligationService.CreateObligation(ctx, primary.CreateObligationRequest{
		Source:      obligation.SourceMeeting,
		Contact:     "Dana",
		Description: "Send the signed contract",
		DueDate:     calendar.AddDays(today, 2),
		Priority:    obligation.PriorityHigh,
	})
	require.NoError(t, err)

	require.NoError(t, c.Scheduler.Trigger(ctx, primary.PassEscalation))

	records, err := c.DeliveryService.ListDeliveries(ctx, primary.DeliveryFilters{ObligationID: ob.ID})
	require.NoError(t, err)
	require.Len(t, records, 1, "no phone, so only email is attempted")

	r := records[0]
	assert.Equal(t, delivery.ChannelEmail, r.Channel)
	assert.Equal(t, "ops@example.com", r.Recipient)
	assert.Equal(t, delivery.OutcomeSent, r.Outcome)
	assert.Equal(t, "due in 2 days", r.Tier)
	assert.Equal(t, 2, r.TierDays)
	assert.Equal(t, "Follow-up due in 2 days", r.Subject)
	assert.Equal(t, today, r.SentOn)

	// Same day, second tick: nothing new.
	require.NoError(t, c.Scheduler.Trigger(ctx, primary.PassEscalation))
	records, err = c.DeliveryService.ListDeliveries(ctx, primary.DeliveryFilters{ObligationID: ob.ID})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestBuild_SnoozeReleaseTick(t *testing.T) {
	ctx := context.Background()
	c, err := Build(dryRunConfig(t), zap.NewNop())
	require.NoError(t, err)
	defer c.Close()

	today := calendar.Date(time.Now(), time.UTC)
	ob, err := c.ObligationService.CreateObligation(ctx, primary.CreateObligationRequest{
		Source:       obligation.SourcePhone,
		Contact:      "Lee",
		ContactPhone: "+15551234567",
		Description:  "Call back about the quote",
		DueDate:      calendar.AddDays(today, 10),
	})
	require.NoError(t, err)

	_, err = c.ObligationService.SnoozeObligation(ctx, ob.ID, calendar.AddDays(today, 1))
	require.NoError(t, err)

	// Not due for release yet.
	require.NoError(t, c.Scheduler.Trigger(ctx, primary.PassSnoozeRelease))
	got, err := c.ObligationService.GetObligation(ctx, ob.ID)
	require.NoError(t, err)
	assert.Equal(t, obligation.StatusSnoozed, got.Status)
}
