// Package delivery contains the pure dedup and recipient rules for reminder dispatch.
package delivery

import (
	"context"
	"errors"
	"strings"
)

// Outcome values recorded on delivery records.
const (
	OutcomeSent   = "sent"
	OutcomeFailed = "failed"
)

// Channel names. They match the names notifiers report.
const (
	ChannelEmail    = "email"
	ChannelWhatsApp = "whatsapp"
	ChannelSMS      = "sms"
)

// maxErrorDetail bounds the error text stored on a failed record.
const maxErrorDetail = 500

// Attempt is one planned dispatch of a reminder.
type Attempt struct {
	Channel   string
	Recipient string
}

// Prior is the part of an existing delivery record the dedup rule looks at.
type Prior struct {
	Channel string
	Outcome string
}

// RecipientContext provides the addresses available for an obligation.
type RecipientContext struct {
	ContactEmail       string
	ContactPhone       string
	DefaultNotifyEmail string
}

// Plan returns one attempt per configured channel that has a recipient.
// Email goes to the contact email, falling back to the default notify
// address. WhatsApp and SMS go to the contact phone. Channels without a
// recipient are left out.
func Plan(channels []string, ctx RecipientContext) []Attempt {
	var attempts []Attempt
	for _, ch := range channels {
		recipient := recipientFor(ch, ctx)
		if recipient == "" {
			continue
		}
		attempts = append(attempts, Attempt{Channel: ch, Recipient: recipient})
	}
	return attempts
}

func recipientFor(channel string, ctx RecipientContext) string {
	switch channel {
	case ChannelEmail:
		if e := strings.TrimSpace(ctx.ContactEmail); e != "" {
			return e
		}
		return strings.TrimSpace(ctx.DefaultNotifyEmail)
	case ChannelWhatsApp, ChannelSMS:
		return strings.TrimSpace(ctx.ContactPhone)
	default:
		return ""
	}
}

// Outstanding drops attempts whose channel already has a sent record today.
// Failed records do not count, so a failed channel is tried again on the
// next pass. The dedup key is (obligation, channel, day): prior must hold the
// records of one obligation for one day, and a sent email never suppresses
// the messaging channel or the next day's reminder. The store enforces the
// same key with a unique index on sent records.
func Outstanding(attempts []Attempt, prior []Prior) []Attempt {
	sent := make(map[string]bool, len(prior))
	for _, p := range prior {
		if p.Outcome == OutcomeSent {
			sent[p.Channel] = true
		}
	}

	var out []Attempt
	for _, a := range attempts {
		if !sent[a.Channel] {
			out = append(out, a)
		}
	}
	return out
}

// ErrorDetail renders a dispatch error for storage. Deadline expiry is
// recorded as "timeout".
func ErrorDetail(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	detail := err.Error()
	if len(detail) > maxErrorDetail {
		detail = detail[:maxErrorDetail]
	}
	return detail
}
