package auth

import (
	"context"

	"github.com/user/cinelens-go/users"
)

// contextKey is unexported so no other package can collide with it.
type contextKey string

const userContextKey contextKey = "auth_user"

// NewContextWithUser returns a copy of ctx carrying the authenticated user.
func NewContextWithUser(ctx context.Context, user *users.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the user placed in ctx by JWTMiddleware.
func UserFromContext(ctx context.Context) (*users.User, bool) {
	user, ok := ctx.Value(userContextKey).(*users.User)
	return user, ok && user != nil
}
