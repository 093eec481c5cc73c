package auth

import (
	"context"

	"github.com/evcrm/charger-crm/internal/domain"
)

type contextKey string

const userContextKey contextKey = "actingUser"

// WithUser adds the acting user to the context
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts the acting user from the context
func FromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userContextKey).(*domain.User)
	return user, ok && user != nil
}

// MustFromContext extracts the acting user or panics
func MustFromContext(ctx context.Context) *domain.User {
	user, ok := FromContext(ctx)
	if !ok {
		panic("acting user not found in context")
	}
	return user
}
