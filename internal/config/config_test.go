package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test from an empty directory with an empty HOME so that no
// stray followup.yaml or .env is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	for _, k := range []string{
		"FOLLOWUP_DATABASE_URL", "DATABASE_URL", "FOLLOWUP_TIMEZONE",
		"FOLLOWUP_DRY_RUN", "NOTIFICATION_DRY_RUN", "DEFAULT_NOTIFY_EMAIL",
		"FOLLOWUP_ESCALATION_INTERVAL_MINUTES", "FOLLOWUP_MESSAGING_CHANNEL",
		"SMTP_HOST", "SMTP_PORT", "RESEND_API_KEY", "FOLLOWUP_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 15, cfg.Scheduler.EscalationIntervalMinutes)
	assert.Equal(t, 30, cfg.Scheduler.SnoozeIntervalMinutes)
	assert.True(t, cfg.Scheduler.RunOnStart)
	assert.Equal(t, 3, cfg.Escalation.ReminderWindowDays)
	assert.Equal(t, 0, cfg.Escalation.MaxOverdueDays)
	assert.True(t, cfg.Email.Enabled)
	assert.Equal(t, 587, cfg.Email.SMTPPort)
	assert.Equal(t, MessagingNone, cfg.Messaging.Channel)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.DryRun)
	assert.NoError(t, cfg.Validate())

	assert.Equal(t, 15*time.Minute, cfg.EscalationInterval())
	assert.Equal(t, 30*time.Minute, cfg.SnoozeInterval())
}

func TestLoad_NoFiles(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAMLOverlaysDefaults(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	writeFile(t, path, `
timezone: Europe/Berlin
default_notify_email: ops@example.com
scheduler:
  escalation_interval_minutes: 5
  run_on_start: false
escalation:
  max_overdue_days: 14
messaging:
  channel: WhatsApp
  whatsapp:
    endpoint: https://wa.example.com/send
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Europe/Berlin", cfg.Timezone)
	assert.Equal(t, "ops@example.com", cfg.DefaultNotifyEmail)
	assert.Equal(t, 5, cfg.Scheduler.EscalationIntervalMinutes)
	assert.False(t, cfg.Scheduler.RunOnStart)
	assert.Equal(t, 30, cfg.Scheduler.SnoozeIntervalMinutes, "absent keys keep defaults")
	assert.Equal(t, 14, cfg.Escalation.MaxOverdueDays)
	assert.Equal(t, MessagingWhatsApp, cfg.Messaging.Channel, "channel is normalised")
	assert.Equal(t, "https://wa.example.com/send", cfg.Messaging.WhatsApp.Endpoint)
	assert.Equal(t, "Europe/Berlin", cfg.Location().String())
}

func TestLoad_DiscoversLocalFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "followup.yaml"), "dry_run: true\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.DryRun)
}

func TestLoad_DiscoversHomeFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".followup", "config.yaml"), "escalation:\n  reminder_window_days: 7\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Escalation.ReminderWindowDays)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "bad.yaml")
	writeFile(t, path, "scheduler: [unterminated\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	writeFile(t, path, "database_url: sqlite:///tmp/file.db\nscheduler:\n  escalation_interval_minutes: 5\n")

	t.Setenv("FOLLOWUP_DATABASE_URL", "postgres://u:p@db/followup")
	t.Setenv("FOLLOWUP_ESCALATION_INTERVAL_MINUTES", "20")
	t.Setenv("NOTIFICATION_DRY_RUN", "true")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "465")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://u:p@db/followup", cfg.DatabaseURL)
	assert.Equal(t, 20, cfg.Scheduler.EscalationIntervalMinutes)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, "smtp.example.com", cfg.Email.SMTPHost)
	assert.Equal(t, 465, cfg.Email.SMTPPort)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".env"), "RESEND_API_KEY=re_test\nFOLLOWUP_MESSAGING_CHANNEL=sms\n")
	// godotenv never overrides a variable that is present, even when empty.
	os.Unsetenv("RESEND_API_KEY")
	os.Unsetenv("FOLLOWUP_MESSAGING_CHANNEL")
	t.Cleanup(func() {
		os.Unsetenv("RESEND_API_KEY")
		os.Unsetenv("FOLLOWUP_MESSAGING_CHANNEL")
	})

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "re_test", cfg.Email.ResendAPIKey)
	assert.Equal(t, MessagingSMS, cfg.Messaging.Channel)
}

func TestLoad_BadEnvValue(t *testing.T) {
	isolate(t)
	t.Setenv("FOLLOWUP_ESCALATION_INTERVAL_MINUTES", "soon")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FOLLOWUP_ESCALATION_INTERVAL_MINUTES")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero escalation interval", func(c *Config) { c.Scheduler.EscalationIntervalMinutes = 0 }, "escalation_interval_minutes"},
		{"negative snooze interval", func(c *Config) { c.Scheduler.SnoozeIntervalMinutes = -1 }, "snooze_interval_minutes"},
		{"zero window", func(c *Config) { c.Escalation.ReminderWindowDays = 0 }, "reminder_window_days"},
		{"negative overdue cap", func(c *Config) { c.Escalation.MaxOverdueDays = -2 }, "max_overdue_days"},
		{"unknown channel", func(c *Config) { c.Messaging.Channel = "pigeon" }, "messaging.channel"},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, "timezone"},
		{"bad log level", func(c *Config) { c.Log.Level = "chatty" }, "log.level"},
		{"zero timeout", func(c *Config) { c.Email.TimeoutSeconds = 0 }, "timeout_seconds"},
		{"negative rate", func(c *Config) { c.Messaging.RatePerSecond = -1 }, "rate_per_second"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLocation_FallsBackToUTC(t *testing.T) {
	cfg := Default()
	cfg.Timezone = "Not/AZone"
	assert.Equal(t, time.UTC, cfg.Location())
}
