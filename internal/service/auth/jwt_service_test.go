package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:                   "thisisasecretkeythatis32charslong!!",
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 10080,
	}
}

func TestNewJWTService(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		svc, err := NewJWTService(testAuthConfig())
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})

	t.Run("short secret", func(t *testing.T) {
		cfg := testAuthConfig()
		cfg.JWTSecret = "tooshort"
		_, err := NewJWTService(cfg)
		require.Error(t, err)
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc, err := NewJWTService(testAuthConfig())
	require.NoError(t, err)

	ctx := context.Background()
	userID := uuid.New()

	token, err := svc.GenerateToken(ctx, userID, domain.RoleAdmin)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.Equal(t, "access", claims.TokenType)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.NotEmpty(t, claims.ID)

	principal := claims.Principal()
	assert.Equal(t, userID, principal.ID)
	assert.True(t, principal.IsAdmin())
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	svc, err := NewJWTService(testAuthConfig())
	require.NoError(t, err)

	ctx := context.Background()
	userID := uuid.New()

	token, err := svc.GenerateRefreshToken(ctx, userID, domain.RoleUser)
	require.NoError(t, err)

	claims, err := svc.ValidateRefreshToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, domain.RoleUser, claims.Role)
	assert.Equal(t, "refresh", claims.TokenType)
}

func TestTokenTypeEnforcement(t *testing.T) {
	svc, err := NewJWTService(testAuthConfig())
	require.NoError(t, err)

	ctx := context.Background()
	userID := uuid.New()

	access, err := svc.GenerateToken(ctx, userID, domain.RoleUser)
	require.NoError(t, err)
	refresh, err := svc.GenerateRefreshToken(ctx, userID, domain.RoleUser)
	require.NoError(t, err)

	t.Run("refresh token rejected as access token", func(t *testing.T) {
		_, err := svc.ValidateToken(ctx, refresh)
		assert.ErrorIs(t, err, ErrWrongTokenType)
	})

	t.Run("access token rejected as refresh token", func(t *testing.T) {
		_, err := svc.ValidateRefreshToken(ctx, access)
		assert.ErrorIs(t, err, ErrWrongTokenType)
	})
}

func TestValidateTokenFailures(t *testing.T) {
	svc, err := NewJWTService(testAuthConfig())
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("malformed token", func(t *testing.T) {
		_, err := svc.ValidateToken(ctx, "not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("token signed with different key", func(t *testing.T) {
		otherCfg := testAuthConfig()
		otherCfg.JWTSecret = "anothersecretkeythatis32charslong!!!"
		other, err := NewJWTService(otherCfg)
		require.NoError(t, err)

		token, err := other.GenerateToken(ctx, uuid.New(), domain.RoleUser)
		require.NoError(t, err)

		_, err = svc.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		impl := &hmacJWTService{
			signingKey:           []byte(testAuthConfig().JWTSecret),
			tokenLifetime:        time.Minute,
			refreshTokenLifetime: time.Minute,
			timeFunc:             func() time.Time { return time.Now().Add(-time.Hour) },
			clockSkew:            0,
		}
		token, err := impl.GenerateToken(ctx, uuid.New(), domain.RoleUser)
		require.NoError(t, err)

		// Validate with real time, an hour past issue and well past expiry.
		impl.timeFunc = time.Now
		_, err = impl.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}

func TestBcryptVerifier(t *testing.T) {
	verifier := NewBcryptVerifier()

	hashed, err := bcrypt.GenerateFromPassword([]byte("correct horse battery staple"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.NoError(t, verifier.Compare(string(hashed), "correct horse battery staple"))
	assert.Error(t, verifier.Compare(string(hashed), "wrong password"))
}
