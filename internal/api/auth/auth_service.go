package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/lmatos/creator-hub/internal/api"
)

var _ AuthService = (*AuthServiceImpl)(nil)

// AuthService is the session orchestrator. It coordinates the credential
// store, password hasher, token manager and revocation registry into the
// four user-facing operations.
type AuthService interface {
	// SignUp registers a new user and returns a fresh token pair.
	SignUp(ctx context.Context, name, email, password string) (*AuthPayload, error)

	// SignIn authenticates a user and returns a fresh token pair,
	// overwriting any previously stored refresh token.
	SignIn(ctx context.Context, email, password string) (*AuthPayload, error)

	// RefreshAccessToken exchanges a valid refresh token for a new access
	// token. The refresh token itself is not rotated.
	RefreshAccessToken(ctx context.Context, refreshToken string) (*RefreshPayload, error)

	// SignOut revokes the presented access token and invalidates all of the
	// user's refresh tokens. Always succeeds from the caller's perspective;
	// an undecodable token needs no revocation bookkeeping.
	SignOut(ctx context.Context, accessToken string) error
}

type AuthServiceImpl struct {
	logger   *slog.Logger
	repo     AuthRepo
	tokens   *TokenManager
	registry RevocationRegistry
}

func NewAuthService(repo AuthRepo, tokens *TokenManager, registry RevocationRegistry, logger *slog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		logger:   logger,
		repo:     repo,
		tokens:   tokens,
		registry: registry,
	}
}

const (
	minPasswordLen = 8
	minNameLen     = 3
	maxNameLen     = 50
)

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required: %w", api.ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("please enter a valid email address: %w", api.ErrValidation)
	}
	return nil
}

func validateSignUp(name, email, password string) error {
	name = strings.TrimSpace(name)
	if len(name) < minNameLen || len(name) > maxNameLen {
		return fmt.Errorf("name must be between %d and %d characters long: %w", minNameLen, maxNameLen, api.ErrValidation)
	}
	if err := validateEmail(email); err != nil {
		return err
	}
	if len(password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters long: %w", minPasswordLen, api.ErrValidation)
	}
	return nil
}

// SignUp registers a new user. The existence check and the insert are
// deliberately not wrapped in one transaction; a concurrent duplicate
// registration loses at the unique constraint, which the repo maps to the
// same api.ErrConflict the early check produces.
func (s *AuthServiceImpl) SignUp(ctx context.Context, name, email, password string) (*AuthPayload, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "SignUp", trace.WithAttributes(
		attribute.String("user.email", email),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "SignUp"), slog.String("email", email))

	if err := validateSignUp(name, email, password); err != nil {
		l.WarnContext(ctx, "Signup validation failed", slog.Any("error", err))
		span.SetStatus(codes.Error, "Validation failed")
		return nil, err
	}

	_, err := s.repo.GetUserByEmail(ctx, email)
	if err == nil {
		l.WarnContext(ctx, "Email already registered")
		span.SetStatus(codes.Error, "Duplicate email")
		return nil, fmt.Errorf("user already exists: %w", api.ErrConflict)
	}
	if !errors.Is(err, api.ErrNotFound) {
		l.ErrorContext(ctx, "Failed to check existing user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Store lookup failed")
		return nil, fmt.Errorf("error checking existing user: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, strings.TrimSpace(name), email, password)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Create failed")
		return nil, err
	}

	payload, err := s.issueTokenPair(ctx, user)
	if err != nil {
		l.ErrorContext(ctx, "Failed to issue token pair", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Token issuance failed")
		return nil, err
	}

	l.InfoContext(ctx, "User created", slog.String("userID", user.ID))
	span.SetStatus(codes.Ok, "User created")
	return payload, nil
}

// SignIn authenticates against the stored hash and issues a new token pair.
// Storing the new refresh token overwrites the previous one, which ends any
// other session's refresh capability (single-active-refresh-token policy).
func (s *AuthServiceImpl) SignIn(ctx context.Context, email, password string) (*AuthPayload, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "SignIn", trace.WithAttributes(
		attribute.String("user.email", email),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "SignIn"), slog.String("email", email))

	if err := validateEmail(email); err != nil {
		span.SetStatus(codes.Error, "Validation failed")
		return nil, err
	}
	if password == "" {
		span.SetStatus(codes.Error, "Validation failed")
		return nil, fmt.Errorf("password is required: %w", api.ErrValidation)
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			l.WarnContext(ctx, "User not found")
			span.SetStatus(codes.Error, "User not found")
			return nil, err
		}
		l.ErrorContext(ctx, "Failed to look up user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Store lookup failed")
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	ok, err := VerifyPassword(password, user.PasswordHash)
	if err != nil {
		l.ErrorContext(ctx, "Password verification could not run", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Hash error")
		return nil, err
	}
	if !ok {
		l.WarnContext(ctx, "Invalid password")
		span.SetStatus(codes.Error, "Invalid credentials")
		return nil, fmt.Errorf("invalid password: %w", api.ErrUnauthenticated)
	}

	payload, err := s.issueTokenPair(ctx, user)
	if err != nil {
		l.ErrorContext(ctx, "Failed to issue token pair", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Token issuance failed")
		return nil, err
	}

	l.InfoContext(ctx, "User signed in", slog.String("userID", user.ID))
	span.SetStatus(codes.Ok, "User signed in")
	return payload, nil
}

// RefreshAccessToken validates a refresh token and issues a new access
// token. The token must verify, match the user's stored refresh token
// exactly, and carry the user's current token version.
func (s *AuthServiceImpl) RefreshAccessToken(ctx context.Context, refreshToken string) (*RefreshPayload, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "RefreshAccessToken")
	defer span.End()

	l := s.logger.With(slog.String("method", "RefreshAccessToken"))

	if refreshToken == "" {
		span.SetStatus(codes.Error, "Validation failed")
		return nil, fmt.Errorf("refresh token is required: %w", api.ErrValidation)
	}

	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		l.WarnContext(ctx, "Refresh token verification failed", slog.Any("error", err))
		span.SetStatus(codes.Error, "Invalid refresh token")
		return nil, fmt.Errorf("invalid or expired refresh token: %w", api.ErrUnauthenticated)
	}

	user, err := s.repo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			l.WarnContext(ctx, "Refresh token claims unknown user", slog.String("userID", claims.UserID))
			span.SetStatus(codes.Error, "Unknown user")
			return nil, fmt.Errorf("invalid refresh token: %w", api.ErrUnauthenticated)
		}
		l.ErrorContext(ctx, "Failed to load user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Store lookup failed")
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	// A token that no longer matches the stored one was superseded by a
	// later sign-in; it must not mint access tokens.
	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		l.WarnContext(ctx, "Refresh token does not match stored token", slog.String("userID", user.ID))
		span.SetStatus(codes.Error, "Stale refresh token")
		return nil, fmt.Errorf("invalid refresh token: %w", api.ErrUnauthenticated)
	}

	if claims.Version != user.TokenVersion {
		l.WarnContext(ctx, "Refresh token version mismatch",
			slog.Int("claimed", claims.Version), slog.Int("current", user.TokenVersion))
		span.SetStatus(codes.Error, "Version mismatch")
		return nil, fmt.Errorf("token version mismatch, please sign in again: %w", api.ErrVersionMismatch)
	}

	accessToken, err := s.tokens.IssueAccessToken(user.ID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to issue access token", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Token issuance failed")
		return nil, err
	}

	span.SetStatus(codes.Ok, "Access token refreshed")
	return &RefreshPayload{AccessToken: accessToken}, nil
}

// SignOut ends the session the presented token belongs to. A missing or
// undecodable token is a no-op: the caller's intent (end this session) is
// already satisfied. A valid token is revoked until its own expiry, and the
// owning user's token version is bumped so every outstanding refresh token
// dies with it.
func (s *AuthServiceImpl) SignOut(ctx context.Context, accessToken string) error {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "SignOut")
	defer span.End()

	l := s.logger.With(slog.String("method", "SignOut"))

	if accessToken == "" {
		span.SetStatus(codes.Ok, "No token presented")
		return nil
	}

	claims, err := s.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		// Expired, malformed or already-revoked tokens need no bookkeeping.
		l.DebugContext(ctx, "Ignoring invalid token on sign-out", slog.Any("error", err))
		span.SetStatus(codes.Ok, "Invalid token ignored")
		return nil
	}

	s.registry.Revoke(accessToken, claims.ExpiresAt.Time)

	user, err := s.repo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			span.SetStatus(codes.Ok, "User already gone")
			return nil
		}
		l.ErrorContext(ctx, "Failed to load user on sign-out", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Store lookup failed")
		return fmt.Errorf("error looking up user: %w", err)
	}

	if err := s.repo.BumpTokenVersion(ctx, user.ID); err != nil {
		l.ErrorContext(ctx, "Failed to bump token version", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Version bump failed")
		return fmt.Errorf("error invalidating refresh tokens: %w", err)
	}

	l.InfoContext(ctx, "User signed out", slog.String("userID", user.ID))
	span.SetStatus(codes.Ok, "User signed out")
	return nil
}

// issueTokenPair mints both tokens and persists the refresh token on the
// user record.
func (s *AuthServiceImpl) issueTokenPair(ctx context.Context, user *UserAuth) (*AuthPayload, error) {
	accessToken, err := s.tokens.IssueAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.tokens.IssueRefreshToken(user.ID, user.TokenVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	if err := s.repo.SaveRefreshToken(ctx, user.ID, &refreshToken); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}
	user.RefreshToken = &refreshToken

	return &AuthPayload{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}
