// Package channel contains the outbound delivery channels behind secondary.Notifier.
package channel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a single send when a config leaves Timeout unset.
const DefaultTimeout = 10 * time.Second

// ErrNotConfigured is returned by a channel that has no provider credentials.
var ErrNotConfigured = errors.New("channel not configured")

// maxResponseBody bounds how much of a provider error response is kept.
const maxResponseBody = 512

func timeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultTimeout
	}
	return d
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// do sends req and turns any non-2xx answer into an error carrying the
// provider's response.
func do(ctx context.Context, client *http.Client, req *http.Request, provider string) error {
	resp, err := client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s request: %w", provider, ctxErr)
		}
		return fmt.Errorf("%s request: %w", provider, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s returned %d: %s", provider, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
