// Package context provides request-scoped values extraction.
package context

import (
	"context"

	"dukapos/internal/core/id"
)

// UserContext contains authenticated user information.
type UserContext struct {
	UserID string
	Name   string
	Phone  string
	Role   string
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}

// GetActorID returns the authenticated user's ID as an entity ID,
// or the nil ID when unauthenticated or malformed.
func GetActorID(ctx context.Context) id.ID {
	actorID, err := id.Parse(GetUserID(ctx))
	if err != nil {
		return id.Nil()
	}
	return actorID
}

// IsAdmin checks if the context user has the admin role.
func IsAdmin(ctx context.Context) bool {
	u := GetUser(ctx)
	return u != nil && u.Role == "admin"
}
