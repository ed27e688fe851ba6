package channel

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/followup/internal/core/delivery"
	"github.com/example/followup/internal/core/message"
)

// DefaultResendURL is the Resend email API endpoint.
const DefaultResendURL = "https://api.resend.com/emails"

// EmailConfig holds the email channel credentials.
// Resend is used when ResendAPIKey is set; SMTP is the fallback.
type EmailConfig struct {
	From string

	ResendAPIKey string
	ResendURL    string
	ResendFrom   string // sender shown by Resend; defaults to From

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPUseSSL   bool // implicit TLS, usually port 465
	SMTPUseTLS   bool // STARTTLS on a plain connection

	Timeout time.Duration
}

// Email delivers reminders by email.
type Email struct {
	cfg    EmailConfig
	client *http.Client
	logger *zap.Logger
}

// NewEmail creates an email channel.
func NewEmail(cfg EmailConfig, logger *zap.Logger) *Email {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.Timeout = timeoutOrDefault(cfg.Timeout)
	if cfg.ResendURL == "" {
		cfg.ResendURL = DefaultResendURL
	}
	if cfg.ResendFrom == "" {
		cfg.ResendFrom = cfg.From
	}
	if cfg.SMTPPort == 0 {
		cfg.SMTPPort = 587
	}
	return &Email{cfg: cfg, client: newHTTPClient(cfg.Timeout), logger: logger}
}

// Channel returns the channel name.
func (e *Email) Channel() string { return delivery.ChannelEmail }

// Send delivers msg through Resend, falling back to SMTP.
func (e *Email) Send(ctx context.Context, recipient string, msg message.Message) error {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	var resendErr error
	if e.cfg.ResendAPIKey != "" {
		resendErr = e.sendResend(ctx, recipient, msg)
		if resendErr == nil {
			return nil
		}
		if errors.Is(resendErr, context.DeadlineExceeded) {
			return resendErr
		}
		e.logger.Warn("resend delivery failed, trying smtp",
			zap.String("recipient", recipient),
			zap.Error(resendErr),
		)
	}

	if e.cfg.SMTPHost == "" {
		if resendErr != nil {
			return resendErr
		}
		return fmt.Errorf("email: %w", ErrNotConfigured)
	}

	if err := e.sendSMTP(ctx, recipient, msg); err != nil {
		if resendErr != nil {
			return fmt.Errorf("%v; smtp fallback: %w", resendErr, err)
		}
		return err
	}
	return nil
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

func (e *Email) sendResend(ctx context.Context, recipient string, msg message.Message) error {
	payload, err := json.Marshal(resendRequest{
		From:    e.cfg.ResendFrom,
		To:      []string{recipient},
		Subject: msg.Subject,
		HTML:    msg.HTML(),
		Text:    msg.Body,
		ReplyTo: e.cfg.From,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal resend payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.ResendURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create resend request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.cfg.ResendAPIKey)
	req.Header.Set("Content-Type", "application/json")

	return do(ctx, e.client, req, "resend")
}

func (e *Email) sendSMTP(ctx context.Context, recipient string, msg message.Message) error {
	addr := net.JoinHostPort(e.cfg.SMTPHost, fmt.Sprint(e.cfg.SMTPPort))
	tlsConfig := &tls.Config{ServerName: e.cfg.SMTPHost}

	var (
		conn net.Conn
		err  error
	)
	if e.cfg.SMTPUseSSL {
		dialer := &tls.Dialer{Config: tlsConfig}
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	} else {
		var dialer net.Dialer
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer conn.Close()

	// net/smtp has no context support; the deadline bounds every exchange.
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, e.cfg.SMTPHost)
	if err != nil {
		return e.smtpError(ctx, "smtp handshake", err)
	}
	defer client.Close()

	if !e.cfg.SMTPUseSSL && e.cfg.SMTPUseTLS {
		if err := client.StartTLS(tlsConfig); err != nil {
			return e.smtpError(ctx, "smtp starttls", err)
		}
	}

	if e.cfg.SMTPUsername != "" && e.cfg.SMTPPassword != "" {
		auth := smtp.PlainAuth("", e.cfg.SMTPUsername, e.cfg.SMTPPassword, e.cfg.SMTPHost)
		if err := client.Auth(auth); err != nil {
			return e.smtpError(ctx, "smtp auth", err)
		}
	}

	from := e.cfg.From
	if from == "" {
		from = e.cfg.SMTPUsername
	}
	if err := client.Mail(from); err != nil {
		return e.smtpError(ctx, "smtp mail", err)
	}
	if err := client.Rcpt(recipient); err != nil {
		return e.smtpError(ctx, "smtp rcpt", err)
	}

	w, err := client.Data()
	if err != nil {
		return e.smtpError(ctx, "smtp data", err)
	}
	if _, err := w.Write(buildMIME(from, recipient, msg)); err != nil {
		return e.smtpError(ctx, "smtp write", err)
	}
	if err := w.Close(); err != nil {
		return e.smtpError(ctx, "smtp data", err)
	}

	return client.Quit()
}

// smtpError reports an expired deadline as such rather than as an I/O error.
func (e *Email) smtpError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", op, ctxErr)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func buildMIME(from, to string, msg message.Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML())
	b.WriteString("\r\n")
	return []byte(b.String())
}
