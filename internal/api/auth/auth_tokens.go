package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lmatos/creator-hub/config"
	"github.com/lmatos/creator-hub/internal/api"
)

// TokenManager issues and verifies the two token kinds. Issuance is a pure
// function of input, wall clock and secret; verification of access tokens
// additionally consults the revocation registry.
type TokenManager struct {
	cfg      config.JWTConfig
	registry RevocationRegistry
}

func NewTokenManager(cfg config.JWTConfig, registry RevocationRegistry) *TokenManager {
	return &TokenManager{
		cfg:      cfg,
		registry: registry,
	}
}

// IssueAccessToken signs a short-lived token carrying the user identity.
func (t *TokenManager) IssueAccessToken(userID string) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.cfg.Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.AccessTokenTTL)),
		},
	}
	if t.cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{t.cfg.Audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(t.cfg.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// IssueRefreshToken signs a long-lived token carrying the user identity and
// a snapshot of the user's token version.
func (t *TokenManager) IssueRefreshToken(userID string, tokenVersion int) (string, error) {
	now := time.Now()
	claims := RefreshClaims{
		UserID:  userID,
		Version: tokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.cfg.Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.RefreshTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(t.cfg.RefreshSecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return signed, nil
}

// VerifyAccessToken validates signature and expiry, then checks the
// revocation registry. The stateless checks run first; the registry lookup
// only happens for otherwise-valid tokens.
func (t *TokenManager) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	var opts []jwt.ParserOption
	if t.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(t.cfg.Audience))
	}
	if err := t.parse(tokenString, claims, []byte(t.cfg.SecretKey), opts...); err != nil {
		return nil, err
	}
	if t.registry != nil && t.registry.IsRevoked(tokenString) {
		return nil, fmt.Errorf("access token revoked: %w", api.ErrTokenRevoked)
	}
	return claims, nil
}

// VerifyRefreshToken validates signature and expiry against the refresh
// secret. Store-match and version checks are the session orchestrator's job;
// it needs the user record regardless.
func (t *TokenManager) VerifyRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := t.parse(tokenString, claims, []byte(t.cfg.RefreshSecretKey)); err != nil {
		return nil, err
	}
	return claims, nil
}

func (t *TokenManager) parse(tokenString string, claims jwt.Claims, secret []byte, extra ...jwt.ParserOption) error {
	parseOpts := []jwt.ParserOption{jwt.WithIssuedAt()}
	if t.cfg.Issuer != "" {
		parseOpts = append(parseOpts, jwt.WithIssuer(t.cfg.Issuer))
	}
	parseOpts = append(parseOpts, extra...)

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, parseOpts...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return fmt.Errorf("token expired: %w", api.ErrTokenExpired)
		}
		return fmt.Errorf("token validation failed: %w", api.ErrUnauthenticated)
	}
	if !token.Valid {
		return fmt.Errorf("token marked invalid: %w", api.ErrUnauthenticated)
	}
	return nil
}
