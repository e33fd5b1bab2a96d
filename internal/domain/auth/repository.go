package auth

import (
	"context"

	"kamesan/internal/core/id"
)

// UserRepository persists user accounts.
type UserRepository interface {
	GetByID(ctx context.Context, userID id.ID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
}
