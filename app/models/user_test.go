package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCreateUser(t *testing.T) {
	user, err := CreateUser("testuser", "test@example.com", "password123")
	assert.NoError(t, err)
	assert.NotNil(t, user)
	assert.Equal(t, "testuser", user.Name)
	assert.Equal(t, "test@example.com", user.Email)
	assert.Equal(t, ROLE_USER, user.Role)
	assert.Equal(t, STATUS_INACTIVE, user.Status)
	assert.Equal(t, SubscriptionStatusNone, user.SubscriptionStatus)
	assert.False(t, user.IsPremium)
	assert.NotEqual(t, "password123", user.Password)
	assert.True(t, user.CheckPassword("password123"))
}

func TestCreateUserValidation(t *testing.T) {
	_, err := CreateUser("ab", "test@example.com", "password123")
	assert.Error(t, err, "name below minimum length must fail validation")

	_, err = CreateUser("testuser", "not-an-email", "password123")
	assert.Error(t, err, "invalid email must fail validation")
}

func TestCheckPasswordHash(t *testing.T) {
	hash, err := HashPassword("secret")
	assert.NoError(t, err)
	assert.True(t, CheckPasswordHash("secret", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestActivationToken(t *testing.T) {
	user := &User{}
	err := user.GenerateActivationToken()
	assert.NoError(t, err)
	assert.NotEmpty(t, user.ActivationToken)
	assert.NotNil(t, user.ActivationSentAt)

	assert.True(t, user.IsActivationTokenValid(user.ActivationToken))
	assert.False(t, user.IsActivationTokenValid("other-token"))

	expired := time.Now().Add(-25 * time.Hour)
	user.ActivationSentAt = &expired
	assert.False(t, user.IsActivationTokenValid(user.ActivationToken))
}

func TestPasswordResetToken(t *testing.T) {
	user := &User{}
	err := user.GeneratePasswordResetToken()
	assert.NoError(t, err)
	assert.True(t, user.IsPasswordResetTokenValid(user.PasswordResetToken))

	expired := time.Now().Add(-3 * time.Hour)
	user.PasswordResetSentAt = &expired
	assert.False(t, user.IsPasswordResetTokenValid(user.PasswordResetToken))

	user.ClearPasswordResetRequest()
	assert.Empty(t, user.PasswordResetToken)
	assert.Nil(t, user.PasswordResetSentAt)
}

func TestIssueAPIKey(t *testing.T) {
	user := &User{}
	rawKey, err := user.IssueAPIKey()
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(rawKey, "tsc_"))
	assert.Equal(t, HashAPIKey(rawKey), user.APIKeyHash)
	assert.Nil(t, user.APIKeyLastUsedAt)

	// reissuing replaces the hash
	second, err := user.IssueAPIKey()
	assert.NoError(t, err)
	assert.NotEqual(t, rawKey, second)
	assert.Equal(t, HashAPIKey(second), user.APIKeyHash)
}

func TestHashAPIKeyTrimsWhitespace(t *testing.T) {
	assert.Equal(t, HashAPIKey("tsc_abc"), HashAPIKey(" tsc_abc \n"))
}
