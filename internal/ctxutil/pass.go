// Package ctxutil provides context utilities that can be safely imported anywhere.
// This package has no internal dependencies to avoid import cycles.
package ctxutil

import "context"

// PassKey is the context key for the name of the running pass.
type PassKey struct{}

// TickKey is the context key for the id of the scheduler tick.
type TickKey struct{}

// WithPass returns a context carrying the pass name.
func WithPass(ctx context.Context, pass string) context.Context {
	return context.WithValue(ctx, PassKey{}, pass)
}

// PassFromContext returns the pass name from context, or empty string if not set.
func PassFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(PassKey{}).(string); ok {
		return v
	}
	return ""
}

// WithTickID returns a context carrying the tick id.
func WithTickID(ctx context.Context, tickID string) context.Context {
	return context.WithValue(ctx, TickKey{}, tickID)
}

// TickIDFromContext returns the tick id from context, or empty string if not set.
func TickIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(TickKey{}).(string); ok {
		return v
	}
	return ""
}
