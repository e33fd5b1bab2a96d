// Package context provides request-scoped values extraction.
package context

import (
	"context"

	"kamesan/internal/core/id"
)

// UserContext contains authenticated user information.
type UserContext struct {
	UserID  string
	Email   string
	Role    string
	IsAdmin bool
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

// GetUserEmail returns user email from context or empty string.
func GetUserEmail(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.Email
	}
	return ""
}

// GetUserEntityID parses the context user ID as an entity ID.
// Returns nil when unauthenticated or the ID is malformed.
func GetUserEntityID(ctx context.Context) *id.ID {
	u := GetUser(ctx)
	if u == nil {
		return nil
	}
	parsed, err := id.Parse(u.UserID)
	if err != nil {
		return nil
	}
	return &parsed
}

// IsAdmin reports whether the current user has the admin role.
func IsAdmin(ctx context.Context) bool {
	u := GetUser(ctx)
	return u != nil && u.IsAdmin
}
