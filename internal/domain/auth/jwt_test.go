package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("test-secret"))

	user, err := NewUser("admin@example.com", "Admin", "correct horse battery", RoleAdmin)
	require.NoError(t, err)

	token, expiresAt, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	userCtx, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), userCtx.UserID)
	assert.Equal(t, "admin@example.com", userCtx.Email)
	assert.Equal(t, "admin", userCtx.Role)
	assert.True(t, userCtx.IsAdmin)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	issuer := NewJWTService(DefaultJWTConfig("secret-a"))
	validator := NewJWTService(DefaultJWTConfig("secret-b"))

	user, err := NewUser("cashier@example.com", "Cashier", "password123", RoleCashier)
	require.NoError(t, err)

	token, _, err := issuer.GenerateAccessToken(user)
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("test-secret"))
	_, err := svc.ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestCheckPassword(t *testing.T) {
	user, err := NewUser("u@example.com", "U", "s3cret-pass", RoleManager)
	require.NoError(t, err)

	assert.True(t, user.CheckPassword("s3cret-pass"))
	assert.False(t, user.CheckPassword("wrong"))
}
