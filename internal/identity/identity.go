// Package identity carries the authenticated user through a request context.
package identity

import (
	"context"

	"whatsurv/internal/models"
)

type contextKey struct{}

func WithIdentity(ctx context.Context, id *models.Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the identity attached by the auth middleware, if any.
func FromContext(ctx context.Context) (*models.Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(*models.Identity)
	if !ok || id == nil || id.UID == "" {
		return nil, false
	}
	return id, true
}
