// Package message renders reminder text for an obligation at a given tier.
// Rendering is deterministic: the same input always yields the same message.
package message

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/example/followup/internal/core/calendar"
	"github.com/example/followup/internal/core/escalation"
)

// Input is the obligation data a reminder needs.
type Input struct {
	Contact     string
	Description string
	Source      string
	Priority    string
	DueDate     time.Time
}

// Message is a composed reminder.
type Message struct {
	Subject string
	Body    string
}

// Compose builds the reminder for tier.
func Compose(in Input, tier escalation.Tier) Message {
	base := fmt.Sprintf("Follow-up '%s' for %s", in.Description, in.Contact)
	due := calendar.Display(in.DueDate)
	meta := fmt.Sprintf("Source: %s. Priority: %s.", in.Source, in.Priority)

	switch tier.Kind {
	case escalation.KindUpcoming:
		return Message{
			Subject: fmt.Sprintf("Follow-up due in %s", escalation.Days(tier.Days)),
			Body:    fmt.Sprintf("%s is due in %s (on %s). %s", base, escalation.Days(tier.Days), due, meta),
		}
	case escalation.KindTomorrow:
		return Message{
			Subject: "Follow-up due tomorrow",
			Body:    fmt.Sprintf("%s is due tomorrow (on %s). %s", base, due, meta),
		}
	case escalation.KindToday:
		return Message{
			Subject: "Follow-up due TODAY!",
			Body:    fmt.Sprintf("%s is due TODAY (%s). %s Take action now!", base, due, meta),
		}
	case escalation.KindOverdue:
		days := escalation.Days(tier.Days)
		return Message{
			Subject: fmt.Sprintf("Follow-up OVERDUE by %s!", days),
			Body: fmt.Sprintf("URGENT: %s is %s overdue! Was due on %s. %s Please take immediate action!",
				base, days, due, meta),
		}
	default:
		return Message{
			Subject: "Follow-up due soon",
			Body:    fmt.Sprintf("%s. %s", base, meta),
		}
	}
}

// Text renders the message as one plain-text block for WhatsApp and SMS.
func (m Message) Text() string {
	return m.Subject + "\n\n" + m.Body
}

// HTML renders the body for email.
func (m Message) HTML() string {
	body := strings.ReplaceAll(html.EscapeString(m.Body), "\n", "<br>")
	return "<div style='font-family: Arial, sans-serif;'>" + body + "</div>"
}
