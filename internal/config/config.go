// Package config provides configuration management for followup.
// Configuration is loaded from (highest to lowest priority):
// 1. Environment variables (FOLLOWUP_* for engine settings, provider names for credentials)
// 2. A .env file in the working directory
// 3. The YAML config file (--config, ./followup.yaml or ~/.followup/config.yaml)
// 4. Defaults
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Messaging channel values.
const (
	MessagingNone     = ""
	MessagingWhatsApp = "whatsapp"
	MessagingSMS      = "sms"
)

// Config holds all followup configuration.
type Config struct {
	// DatabaseURL selects the store. Empty means ~/.followup/followup.db.
	DatabaseURL string `yaml:"database_url"`

	// Timezone is the IANA zone used to decide what "today" is.
	Timezone string `yaml:"timezone"`

	// DryRun replaces every channel with a logging no-op.
	DryRun bool `yaml:"dry_run"`

	// DefaultNotifyEmail receives email reminders for contacts without an address.
	DefaultNotifyEmail string `yaml:"default_notify_email"`

	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Escalation EscalationConfig `yaml:"escalation"`
	Email      EmailConfig      `yaml:"email"`
	Messaging  MessagingConfig  `yaml:"messaging"`
	Log        LogConfig        `yaml:"log"`
}

// SchedulerConfig holds timer settings.
type SchedulerConfig struct {
	EscalationIntervalMinutes int  `yaml:"escalation_interval_minutes"`
	SnoozeIntervalMinutes     int  `yaml:"snooze_interval_minutes"`
	RunOnStart                bool `yaml:"run_on_start"`
}

// EscalationConfig holds reminder policy settings.
type EscalationConfig struct {
	ReminderWindowDays int `yaml:"reminder_window_days"`
	// MaxOverdueDays stops reminding after this many days overdue. 0 means never stop.
	MaxOverdueDays int `yaml:"max_overdue_days"`
}

// EmailConfig holds email channel settings.
type EmailConfig struct {
	Enabled        bool    `yaml:"enabled"`
	From           string  `yaml:"from"`
	ResendAPIKey   string  `yaml:"resend_api_key"`
	ResendURL      string  `yaml:"resend_url"`
	SMTPHost       string  `yaml:"smtp_host"`
	SMTPPort       int     `yaml:"smtp_port"`
	SMTPUsername   string  `yaml:"smtp_username"`
	SMTPPassword   string  `yaml:"smtp_password"`
	SMTPUseTLS     bool    `yaml:"smtp_use_tls"`
	SMTPUseSSL     bool    `yaml:"smtp_use_ssl"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	RatePerSecond  float64 `yaml:"rate_per_second"`
}

// MessagingConfig holds the WhatsApp/SMS channel settings.
type MessagingConfig struct {
	// Channel is "whatsapp", "sms" or empty to disable messaging.
	Channel        string         `yaml:"channel"`
	WhatsApp       WhatsAppConfig `yaml:"whatsapp"`
	SMS            SMSConfig      `yaml:"sms"`
	TimeoutSeconds int            `yaml:"timeout_seconds"`
	RatePerSecond  float64        `yaml:"rate_per_second"`
}

// WhatsAppConfig holds WhatsApp gateway credentials.
type WhatsAppConfig struct {
	Endpoint string `yaml:"endpoint"`
	Token    string `yaml:"token"`
	Sender   string `yaml:"sender"`
}

// SMSConfig holds SMS gateway credentials.
type SMSConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
	UserID   string `yaml:"user_id"`
	Password string `yaml:"password"`
	SenderID string `yaml:"sender_id"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Timezone: "Local",
		Scheduler: SchedulerConfig{
			EscalationIntervalMinutes: 15,
			SnoozeIntervalMinutes:     30,
			RunOnStart:                true,
		},
		Escalation: EscalationConfig{
			ReminderWindowDays: 3,
		},
		Email: EmailConfig{
			Enabled:        true,
			SMTPPort:       587,
			SMTPUseTLS:     true,
			TimeoutSeconds: 10,
		},
		Messaging: MessagingConfig{
			TimeoutSeconds: 10,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration. An explicit path must exist; with an empty
// path the first of ./followup.yaml and ~/.followup/config.yaml is used if present.
func Load(path string) (*Config, error) {
	cfg := Default()

	file, explicit := path, path != ""
	if !explicit {
		file = discover()
	}
	if file != "" {
		if err := loadFile(file, cfg); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func discover() string {
	candidates := []string{"followup.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".followup", "config.yaml"))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// loadFile overlays the YAML file onto cfg. Keys absent from the file keep
// their current values.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// applyEnv applies environment variable overrides.
func applyEnv(cfg *Config) error {
	var errs []error
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := os.Getenv(k); v != "" {
				*dst = v
				return
			}
		}
	}
	num := func(dst *int, key string) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %q is not an integer", key, v))
				return
			}
			*dst = n
		}
	}
	flt := func(dst *float64, key string) {
		if v := os.Getenv(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %q is not a number", key, v))
				return
			}
			*dst = f
		}
	}
	flag := func(dst *bool, keys ...string) {
		for _, k := range keys {
			if v := os.Getenv(k); v != "" {
				b, err := strconv.ParseBool(v)
				if err != nil {
					errs = append(errs, fmt.Errorf("%s: %q is not a boolean", k, v))
					return
				}
				*dst = b
				return
			}
		}
	}

	str(&cfg.DatabaseURL, "FOLLOWUP_DATABASE_URL", "DATABASE_URL")
	str(&cfg.Timezone, "FOLLOWUP_TIMEZONE")
	flag(&cfg.DryRun, "FOLLOWUP_DRY_RUN", "NOTIFICATION_DRY_RUN")
	str(&cfg.DefaultNotifyEmail, "DEFAULT_NOTIFY_EMAIL")

	num(&cfg.Scheduler.EscalationIntervalMinutes, "FOLLOWUP_ESCALATION_INTERVAL_MINUTES")
	num(&cfg.Scheduler.SnoozeIntervalMinutes, "FOLLOWUP_SNOOZE_INTERVAL_MINUTES")
	flag(&cfg.Scheduler.RunOnStart, "FOLLOWUP_RUN_ON_START")

	num(&cfg.Escalation.ReminderWindowDays, "FOLLOWUP_REMINDER_WINDOW_DAYS")
	num(&cfg.Escalation.MaxOverdueDays, "FOLLOWUP_MAX_OVERDUE_DAYS")

	flag(&cfg.Email.Enabled, "FOLLOWUP_EMAIL_ENABLED")
	str(&cfg.Email.From, "EMAIL_FROM", "SMTP_FROM_EMAIL")
	str(&cfg.Email.ResendAPIKey, "RESEND_API_KEY")
	str(&cfg.Email.SMTPHost, "SMTP_HOST")
	num(&cfg.Email.SMTPPort, "SMTP_PORT")
	str(&cfg.Email.SMTPUsername, "SMTP_USERNAME")
	str(&cfg.Email.SMTPPassword, "SMTP_PASSWORD")
	flag(&cfg.Email.SMTPUseTLS, "SMTP_USE_TLS")
	flag(&cfg.Email.SMTPUseSSL, "SMTP_USE_SSL")
	num(&cfg.Email.TimeoutSeconds, "FOLLOWUP_EMAIL_TIMEOUT_SECONDS")
	flt(&cfg.Email.RatePerSecond, "FOLLOWUP_EMAIL_RATE_PER_SECOND")

	str(&cfg.Messaging.Channel, "FOLLOWUP_MESSAGING_CHANNEL")
	str(&cfg.Messaging.WhatsApp.Endpoint, "WHATSAPP_ENDPOINT")
	str(&cfg.Messaging.WhatsApp.Token, "WHATSAPP_TOKEN")
	str(&cfg.Messaging.WhatsApp.Sender, "WHATSAPP_SENDER")
	str(&cfg.Messaging.SMS.Endpoint, "SMS_ENDPOINT")
	str(&cfg.Messaging.SMS.APIKey, "SMS_API_KEY")
	str(&cfg.Messaging.SMS.UserID, "SMS_USER_ID")
	str(&cfg.Messaging.SMS.Password, "SMS_PASSWORD")
	str(&cfg.Messaging.SMS.SenderID, "SMS_SENDER_ID")
	num(&cfg.Messaging.TimeoutSeconds, "FOLLOWUP_MESSAGING_TIMEOUT_SECONDS")
	flt(&cfg.Messaging.RatePerSecond, "FOLLOWUP_MESSAGING_RATE_PER_SECOND")

	str(&cfg.Log.Level, "FOLLOWUP_LOG_LEVEL")
	flag(&cfg.Log.Development, "FOLLOWUP_LOG_DEVELOPMENT")

	return errors.Join(errs...)
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Scheduler.EscalationIntervalMinutes <= 0 {
		errs = append(errs, fmt.Errorf("scheduler.escalation_interval_minutes must be positive (got %d)", c.Scheduler.EscalationIntervalMinutes))
	}
	if c.Scheduler.SnoozeIntervalMinutes <= 0 {
		errs = append(errs, fmt.Errorf("scheduler.snooze_interval_minutes must be positive (got %d)", c.Scheduler.SnoozeIntervalMinutes))
	}
	if c.Escalation.ReminderWindowDays < 1 {
		errs = append(errs, fmt.Errorf("escalation.reminder_window_days must be at least 1 (got %d)", c.Escalation.ReminderWindowDays))
	}
	if c.Escalation.MaxOverdueDays < 0 {
		errs = append(errs, fmt.Errorf("escalation.max_overdue_days must not be negative (got %d)", c.Escalation.MaxOverdueDays))
	}
	if c.Email.TimeoutSeconds <= 0 || c.Messaging.TimeoutSeconds <= 0 {
		errs = append(errs, errors.New("channel timeout_seconds must be positive"))
	}
	if c.Email.RatePerSecond < 0 || c.Messaging.RatePerSecond < 0 {
		errs = append(errs, errors.New("channel rate_per_second must not be negative"))
	}

	switch strings.ToLower(c.Messaging.Channel) {
	case MessagingNone, MessagingWhatsApp, MessagingSMS:
		c.Messaging.Channel = strings.ToLower(c.Messaging.Channel)
	default:
		errs = append(errs, fmt.Errorf("messaging.channel must be %q, %q or empty (got %q)", MessagingWhatsApp, MessagingSMS, c.Messaging.Channel))
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone %q: %w", c.Timezone, err))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	return errors.Join(errs...)
}

// Location returns the configured time zone. Call Validate first.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// EscalationInterval returns the escalation timer period.
func (c *Config) EscalationInterval() time.Duration {
	return time.Duration(c.Scheduler.EscalationIntervalMinutes) * time.Minute
}

// SnoozeInterval returns the snooze-release timer period.
func (c *Config) SnoozeInterval() time.Duration {
	return time.Duration(c.Scheduler.SnoozeIntervalMinutes) * time.Minute
}
