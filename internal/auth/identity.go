package auth

import (
	"context"

	"bookstore-service/internal/models"
)

// Identity is the caller resolved from the request credentials.
type Identity struct {
	Email string
	Role  models.Role
}

func (i *Identity) HasRole(role models.Role) bool {
	return i != nil && i.Role == role
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFrom returns the identity stored in ctx, or nil for anonymous
// callers.
func IdentityFrom(ctx context.Context) *Identity {
	id, _ := ctx.Value(ctxKey{}).(*Identity)
	return id
}
