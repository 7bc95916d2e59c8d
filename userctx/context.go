package userctx

import (
	"context"
	"time"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is what the route boundary learned from the access token.
// The token signature is not verified, so treat it as a display hint.
type Identity struct {
	Subject   string
	Email     string
	Name      string
	ExpiresAt time.Time
}

// WithIdentity adds the token identity to the request context
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext returns the identity stored by WithIdentity
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// Label returns the email, name or subject of the identity, in that order
func (id Identity) Label() string {
	switch {
	case id.Email != "":
		return id.Email
	case id.Name != "":
		return id.Name
	case id.Subject != "":
		return id.Subject
	default:
		return "anonymous"
	}
}

// GetUserLabel returns the label of the identity in ctx, or "anonymous"
func GetUserLabel(ctx context.Context) string {
	id, _ := FromContext(ctx)
	return id.Label()
}
