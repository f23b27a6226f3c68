// Package principal carries the caller identity through request contexts.
package principal

import "context"

// AuthMethod describes how a caller was identified.
type AuthMethod string

const (
	AuthMethodJWT AuthMethod = "jwt"
	// AuthMethodNone is used when authentication is disabled and the
	// configured default identity applies.
	AuthMethodNone AuthMethod = "none"
)

// Principal captures the normalized caller identity.
type Principal struct {
	Subject        string
	OrganizationID string
	AuthMethod     AuthMethod
}

type contextKey struct{}

// WithContext returns a copy of ctx carrying p.
func WithContext(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the principal stored in ctx.
func FromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}
