package auth

import (
	"context"
	"time"

	"kamesan/internal/core/apperror"
	"kamesan/internal/core/id"
	"kamesan/pkg/logger"
)

// Service provides authentication operations.
type Service struct {
	users UserRepository
	jwt   *JWTService
}

// NewService creates an auth service.
func NewService(users UserRepository, jwt *JWTService) *Service {
	return &Service{users: users, jwt: jwt}
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	User        *User
	AccessToken string
	ExpiresAt   time.Time
}

// Login verifies credentials and issues an access token.
// The same generic error is returned for unknown email and wrong password.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized("invalid email or password")
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, apperror.NewUnauthorized("account is disabled")
	}

	if !user.CheckPassword(password) {
		return nil, apperror.NewUnauthorized("invalid email or password")
	}

	token, expiresAt, err := s.jwt.GenerateAccessToken(user)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	logger.Info(ctx, "user logged in", "user_id", user.ID, "email", user.Email)

	return &LoginResult{
		User:        user,
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}, nil
}

// GetUser returns a user profile by ID.
func (s *Service) GetUser(ctx context.Context, userID id.ID) (*User, error) {
	return s.users.GetByID(ctx, userID)
}

// Register creates a new user account.
func (s *Service) Register(ctx context.Context, email, displayName, password string, role Role) (*User, error) {
	if len(password) < 8 {
		return nil, apperror.NewValidation("password must be at least 8 characters").
			WithDetail("field", "password")
	}

	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, apperror.NewDuplicate("user", "email", email)
	} else if err != nil && !apperror.IsNotFound(err) {
		return nil, err
	}

	user, err := NewUser(email, displayName, password, role)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	if err := user.Validate(ctx); err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Info(ctx, "user registered", "user_id", user.ID, "email", user.Email)
	return user, nil
}
