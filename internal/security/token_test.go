package security

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Bukenyae/medical-rentals-sub002/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	mgr := NewTokenManager("test-secret")

	token, err := mgr.GenerateAccessToken(42, "owner@test.com", domain.RoleOwner)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := mgr.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "owner@test.com", claims.Email)
	assert.Equal(t, domain.RoleOwner, claims.Role)
	assert.True(t, claims.Role.CanApprove())
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret-a").GenerateAccessToken(1, "guest@test.com", domain.RoleGuest)
	assert.NoError(t, err)

	_, err = NewTokenManager("secret-b").ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := NewTokenManager("secret").ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMissingRoleDefaultsToGuest(t *testing.T) {
	mgr := NewTokenManager("secret")
	token, err := mgr.GenerateAccessToken(7, "", "")
	assert.NoError(t, err)

	claims, err := mgr.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, domain.RoleGuest, claims.Role)
	assert.False(t, claims.Role.CanApprove())
}
