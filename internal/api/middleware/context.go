package middleware

import (
	"context"

	"github.com/JanAndriessens/CalyClub-sub002/internal/domain/models"
)

type ctxKey int

const identityKey ctxKey = iota

// WithIdentity attaches the verified identity to the request context.
func WithIdentity(ctx context.Context, identity models.VerifiedIdentity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFrom returns the verified identity set by the admin guard, if any.
func IdentityFrom(ctx context.Context) (models.VerifiedIdentity, bool) {
	identity, ok := ctx.Value(identityKey).(models.VerifiedIdentity)
	return identity, ok
}
