// Package requestid carries the per-request identifier through contexts.
package requestid

import "context"

type contextKey struct{}

// Header is the HTTP header used to propagate request ids.
const Header = "X-Request-ID"

// WithValue returns a copy of ctx carrying id.
func WithValue(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext extracts the request id, or "" when none is set.
func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(contextKey{}).(string); ok {
		return id
	}
	return ""
}
