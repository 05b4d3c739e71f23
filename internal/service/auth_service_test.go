package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/careops/clinicflow/internal/config"
	"github.com/careops/clinicflow/internal/domain"
	"github.com/careops/clinicflow/pkg/auth"
)

func newAuthService(t *testing.T, users *fakeUserRepo) *AuthService {
	t.Helper()
	jwtManager := auth.NewJWTManager(config.JWTConfig{
		Secret:          "test-secret-do-not-use-in-prod",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
		Issuer:          "clinicflow-test",
	})
	return NewAuthService(users, jwtManager, zap.NewNop())
}

func seedUser(t *testing.T, users *fakeUserRepo, email, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	staffID := uuid.New()
	u := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleDoctor,
		StaffID:      &staffID,
		IsActive:     true,
	}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestLoginIssuesTokenPair(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAuthService(t, users)
	seedUser(t, users, "doctor@clinic.example", "correct horse battery")

	pair, err := svc.Login(context.Background(), "doctor@clinic.example", "correct horse battery", "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	refreshed, err := svc.RefreshToken(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	// A refresh token cannot be presented as an access token.
	_, err = svc.RefreshToken(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejections(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAuthService(t, users)
	u := seedUser(t, users, "doctor@clinic.example", "correct horse battery")
	ctx := context.Background()

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody@clinic.example", "whatever", "127.0.0.1")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "doctor@clinic.example", "wrong", "127.0.0.1")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("inactive account", func(t *testing.T) {
		u.IsActive = false
		users.put(u)
		defer func() { u.IsActive = true; users.put(u) }()
		_, err := svc.Login(ctx, "doctor@clinic.example", "correct horse battery", "127.0.0.1")
		assert.ErrorIs(t, err, ErrAccountInactive)
	})
}

func TestLoginLockoutAfterRepeatedFailures(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAuthService(t, users)
	seedUser(t, users, "doctor@clinic.example", "correct horse battery")
	ctx := context.Background()

	for i := 0; i < maxFailedAttempts; i++ {
		_, err := svc.Login(ctx, "doctor@clinic.example", "wrong", "127.0.0.1")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	// Even the right password is refused while the lock holds.
	_, err := svc.Login(ctx, "doctor@clinic.example", "correct horse battery", "127.0.0.1")
	assert.ErrorIs(t, err, ErrAccountLocked)
}

func TestChangePassword(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAuthService(t, users)
	u := seedUser(t, users, "doctor@clinic.example", "correct horse battery")
	ctx := context.Background()

	t.Run("wrong current password", func(t *testing.T) {
		err := svc.ChangePassword(ctx, u.ID, "wrong", "a new long passphrase")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("weak replacement", func(t *testing.T) {
		err := svc.ChangePassword(ctx, u.ID, "correct horse battery", "short")
		assert.Error(t, err)
	})

	t.Run("success", func(t *testing.T) {
		require.NoError(t, svc.ChangePassword(ctx, u.ID, "correct horse battery", "a new long passphrase"))
		_, err := svc.Login(ctx, "doctor@clinic.example", "a new long passphrase", "127.0.0.1")
		require.NoError(t, err)
	})
}
