package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/followup/internal/core/delivery"
	"github.com/example/followup/internal/core/message"
)

// WhatsAppConfig holds the WhatsApp gateway credentials.
type WhatsAppConfig struct {
	Endpoint string // full send URL of the gateway
	Token    string
	Sender   string // registered sender number
	Timeout  time.Duration
}

// WhatsApp delivers reminders through a JSON WhatsApp gateway.
type WhatsApp struct {
	cfg    WhatsAppConfig
	client *http.Client
}

// NewWhatsApp creates a WhatsApp channel.
func NewWhatsApp(cfg WhatsAppConfig) *WhatsApp {
	cfg.Timeout = timeoutOrDefault(cfg.Timeout)
	return &WhatsApp{cfg: cfg, client: newHTTPClient(cfg.Timeout)}
}

// Channel returns the channel name.
func (w *WhatsApp) Channel() string { return delivery.ChannelWhatsApp }

// Send posts msg as a text message to recipient.
func (w *WhatsApp) Send(ctx context.Context, recipient string, msg message.Message) error {
	if w.cfg.Endpoint == "" || w.cfg.Token == "" {
		return fmt.Errorf("whatsapp: %w", ErrNotConfigured)
	}

	ctx, cancel := context.WithTimeout(ctx, w.cfg.Timeout)
	defer cancel()

	payload, err := json.Marshal(map[string]string{
		"messageType": "text",
		"token":       w.cfg.Token,
		"from":        w.cfg.Sender,
		"to":          recipient,
		"text":        msg.Text(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal whatsapp payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create whatsapp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return do(ctx, w.client, req, "whatsapp")
}

// SMSConfig holds the SMS gateway credentials.
type SMSConfig struct {
	Endpoint string
	APIKey   string // sent as the apikey header when set
	UserID   string
	Password string
	SenderID string
	Timeout  time.Duration
}

// SMS delivers reminders through a form-encoded SMS gateway.
type SMS struct {
	cfg    SMSConfig
	client *http.Client
}

// NewSMS creates an SMS channel.
func NewSMS(cfg SMSConfig) *SMS {
	cfg.Timeout = timeoutOrDefault(cfg.Timeout)
	return &SMS{cfg: cfg, client: newHTTPClient(cfg.Timeout)}
}

// Channel returns the channel name.
func (s *SMS) Channel() string { return delivery.ChannelSMS }

// Send posts msg as a text message to recipient.
func (s *SMS) Send(ctx context.Context, recipient string, msg message.Message) error {
	if s.cfg.Endpoint == "" || (s.cfg.APIKey == "" && s.cfg.UserID == "") {
		return fmt.Errorf("sms: %w", ErrNotConfigured)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	form := url.Values{}
	form.Set("userid", s.cfg.UserID)
	form.Set("password", s.cfg.Password)
	form.Set("senderid", s.cfg.SenderID)
	form.Set("sendMethod", "quick")
	form.Set("msgType", "text")
	form.Set("msg", msg.Text())
	form.Set("mobile", recipient)
	form.Set("duplicatecheck", "true")
	form.Set("output", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if s.cfg.APIKey != "" {
		req.Header.Set("apikey", s.cfg.APIKey)
	}

	return do(ctx, s.client, req, "sms")
}
