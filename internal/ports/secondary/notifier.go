package secondary

import (
	"context"

	"github.com/example/followup/internal/core/message"
)

// Notifier defines the secondary port for one outbound delivery channel.
// Implementations bound their own wait and return an error for any failed
// or timed-out attempt.
type Notifier interface {
	// Channel returns the channel name recorded on delivery records.
	Channel() string

	// Send delivers one message to recipient.
	Send(ctx context.Context, recipient string, msg message.Message) error
}
