package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careops/clinicflow/internal/config"
	"github.com/careops/clinicflow/internal/domain"
)

func testManager(accessTTL time.Duration) *JWTManager {
	return NewJWTManager(config.JWTConfig{
		Secret:          "test-secret-do-not-use-in-prod",
		AccessTokenTTL:  accessTTL,
		RefreshTokenTTL: 24 * time.Hour,
		Issuer:          "clinicflow-test",
	})
}

func testClaims() *domain.Claims {
	staffID := uuid.New()
	return &domain.Claims{
		UserID:  uuid.New(),
		Email:   "doctor@clinic.example",
		Role:    domain.RoleDoctor,
		StaffID: &staffID,
	}
}

func TestTokenPairRoundtrip(t *testing.T) {
	m := testManager(15 * time.Minute)
	claims := testClaims()

	pair, err := m.GenerateTokenPair(claims)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)

	got, err := m.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, claims.UserID, got.UserID)
	assert.Equal(t, claims.Email, got.Email)
	assert.Equal(t, domain.RoleDoctor, got.Role)
	require.NotNil(t, got.StaffID)
	assert.Equal(t, *claims.StaffID, *got.StaffID)

	_, err = m.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
}

func TestTokenTypeMismatch(t *testing.T) {
	m := testManager(15 * time.Minute)

	pair, err := m.GenerateTokenPair(testClaims())
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenTypeMismatch)
	_, err = m.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenTypeMismatch)
}

func TestTokenExpired(t *testing.T) {
	m := testManager(-1 * time.Minute)

	pair, err := m.GenerateTokenPair(testClaims())
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenTamperedOrForeign(t *testing.T) {
	m := testManager(15 * time.Minute)

	pair, err := m.GenerateTokenPair(testClaims())
	require.NoError(t, err)

	t.Run("garbage", func(t *testing.T) {
		_, err := m.ValidateAccessToken("not-a-token")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTManager(config.JWTConfig{
			Secret:         "a-different-secret",
			AccessTokenTTL: 15 * time.Minute,
			Issuer:         "clinicflow-test",
		})
		_, err := other.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewJWTManager(config.JWTConfig{
			Secret:         "test-secret-do-not-use-in-prod",
			AccessTokenTTL: 15 * time.Minute,
			Issuer:         "someone-else",
		})
		_, err := other.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}
