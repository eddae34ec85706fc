package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lmatos/creator-hub/config"
	"github.com/lmatos/creator-hub/internal/api"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		SecretKey:        "test-access-secret",
		RefreshSecretKey: "test-refresh-secret",
		AccessTokenTTL:   15 * time.Minute,
		RefreshTokenTTL:  7 * 24 * time.Hour,
		Issuer:           "test-issuer",
		Audience:         "test-audience",
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager(testJWTConfig(), nil)

	token, err := tm.IssueAccessToken("user-123")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := tm.VerifyAccessToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "test-issuer", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func TestRefreshTokenCarriesVersion(t *testing.T) {
	tm := NewTokenManager(testJWTConfig(), nil)

	token, err := tm.IssueRefreshToken("user-123", 4)
	assert.NoError(t, err)

	claims, err := tm.VerifyRefreshToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, 4, claims.Version)
}

func TestVerifyAccessToken_Expired(t *testing.T) {
	cfg := testJWTConfig()
	cfg.AccessTokenTTL = -time.Minute
	tm := NewTokenManager(cfg, nil)

	token, err := tm.IssueAccessToken("user-123")
	assert.NoError(t, err)

	_, err = tm.VerifyAccessToken(token)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrTokenExpired))
}

func TestVerifyAccessToken_WrongSecret(t *testing.T) {
	tm := NewTokenManager(testJWTConfig(), nil)
	token, err := tm.IssueAccessToken("user-123")
	assert.NoError(t, err)

	otherCfg := testJWTConfig()
	otherCfg.SecretKey = "a-different-secret"
	other := NewTokenManager(otherCfg, nil)

	_, err = other.VerifyAccessToken(token)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrUnauthenticated))
}

func TestVerifyAccessToken_RefreshSecretDoesNotVerifyAccess(t *testing.T) {
	tm := NewTokenManager(testJWTConfig(), nil)

	refresh, err := tm.IssueRefreshToken("user-123", 0)
	assert.NoError(t, err)

	_, err = tm.VerifyAccessToken(refresh)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrUnauthenticated))
}

func TestVerifyAccessToken_Revoked(t *testing.T) {
	registry := NewInMemoryRevocationRegistry(time.Minute)
	tm := NewTokenManager(testJWTConfig(), registry)

	token, err := tm.IssueAccessToken("user-123")
	assert.NoError(t, err)

	claims, err := tm.VerifyAccessToken(token)
	assert.NoError(t, err)

	registry.Revoke(token, claims.ExpiresAt.Time)

	_, err = tm.VerifyAccessToken(token)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrTokenRevoked))
}

func TestVerifyAccessToken_Garbage(t *testing.T) {
	tm := NewTokenManager(testJWTConfig(), nil)

	_, err := tm.VerifyAccessToken("not.a.jwt")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrUnauthenticated))
}
