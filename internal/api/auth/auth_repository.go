package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/lmatos/creator-hub/internal/api"
)

// pgUniqueViolation is the Postgres error code for unique constraint violations.
const pgUniqueViolation = "23505"

var _ AuthRepo = (*PostgresAuthRepo)(nil)

// AuthRepo is the credential store. Password hashing happens inside
// CreateUser and UpdatePassword: the store guarantees a plaintext never
// reaches durable storage, callers are not trusted to pre-hash.
type AuthRepo interface {
	// GetUserByEmail returns the user for a login email.
	// Returns api.ErrNotFound if no such user exists.
	GetUserByEmail(ctx context.Context, email string) (*UserAuth, error)

	// GetUserByID returns the user for a token-claimed identity.
	// Returns api.ErrNotFound if no such user exists.
	GetUserByID(ctx context.Context, userID string) (*UserAuth, error)

	// CreateUser inserts a new user with a hashed password.
	// Returns api.ErrConflict when the email is already taken.
	CreateUser(ctx context.Context, name, email, password string) (*UserAuth, error)

	// SaveRefreshToken overwrites the user's stored refresh token.
	// nil clears the slot.
	SaveRefreshToken(ctx context.Context, userID string, refreshToken *string) error

	// BumpTokenVersion increments the user's token version and clears the
	// stored refresh token in one statement, invalidating every outstanding
	// refresh token at once.
	BumpTokenVersion(ctx context.Context, userID string) error

	// UpdatePassword hashes and stores a new password.
	UpdatePassword(ctx context.Context, userID, newPassword string) error
}

// DB is the slice of pgxpool.Pool the credential store needs. Declared here
// so tests can substitute a mock pool.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PostgresAuthRepo struct {
	logger *slog.Logger
	pgpool DB
}

func NewPostgresAuthRepo(pgpool DB, logger *slog.Logger) *PostgresAuthRepo {
	return &PostgresAuthRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

const userColumns = `id, name, email, password_hash, token_version, refresh_token,
       bio, location, profile_picture, created_at, updated_at`

func scanUser(row pgx.Row) (*UserAuth, error) {
	var user UserAuth
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&user.TokenVersion, &user.RefreshToken, &user.Bio, &user.Location,
		&user.ProfilePicture, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", api.ErrNotFound)
		}
		return nil, fmt.Errorf("user query failed: %w", err)
	}
	return &user, nil
}

func (r *PostgresAuthRepo) GetUserByEmail(ctx context.Context, email string) (*UserAuth, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE email = $1", userColumns)
	return scanUser(r.pgpool.QueryRow(ctx, query, email))
}

func (r *PostgresAuthRepo) GetUserByID(ctx context.Context, userID string) (*UserAuth, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE id = $1", userColumns)
	return scanUser(r.pgpool.QueryRow(ctx, query, userID))
}

func (r *PostgresAuthRepo) CreateUser(ctx context.Context, name, email, password string) (*UserAuth, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "CreateUser", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "CreateUser"), slog.String("email", email))

	hashedPassword, err := HashPassword(password)
	if err != nil {
		l.ErrorContext(ctx, "Failed to hash password", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to hash password")
		return nil, err
	}

	query := fmt.Sprintf(`INSERT INTO users (name, email, password_hash)
         VALUES ($1, $2, $3)
         RETURNING %s`, userColumns)

	user, err := scanUser(r.pgpool.QueryRow(ctx, query, name, email, hashedPassword))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			l.WarnContext(ctx, "Email already registered")
			span.SetStatus(codes.Error, "Duplicate email")
			return nil, fmt.Errorf("email already registered: %w", api.ErrConflict)
		}
		l.ErrorContext(ctx, "Failed to insert user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Insert failed")
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	span.SetStatus(codes.Ok, "User created")
	return user, nil
}

func (r *PostgresAuthRepo) SaveRefreshToken(ctx context.Context, userID string, refreshToken *string) error {
	tag, err := r.pgpool.Exec(ctx,
		`UPDATE users SET refresh_token = $1, updated_at = now() WHERE id = $2`,
		refreshToken, userID)
	if err != nil {
		return fmt.Errorf("save refresh token: db update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %w", api.ErrNotFound)
	}
	return nil
}

func (r *PostgresAuthRepo) BumpTokenVersion(ctx context.Context, userID string) error {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "BumpTokenVersion", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "users"),
		attribute.String("db.user.id", userID),
	))
	defer span.End()

	tag, err := r.pgpool.Exec(ctx,
		`UPDATE users
            SET token_version = token_version + 1,
                refresh_token = NULL,
                updated_at = now()
          WHERE id = $1`,
		userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Update failed")
		return fmt.Errorf("bump token version: db update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "User not found")
		return fmt.Errorf("user not found: %w", api.ErrNotFound)
	}
	span.SetStatus(codes.Ok, "Token version bumped")
	return nil
}

func (r *PostgresAuthRepo) UpdatePassword(ctx context.Context, userID, newPassword string) error {
	l := r.logger.With(slog.String("method", "UpdatePassword"), slog.String("userID", userID))

	hashedPassword, err := HashPassword(newPassword)
	if err != nil {
		l.ErrorContext(ctx, "Failed to hash new password", slog.Any("error", err))
		return err
	}

	tag, err := r.pgpool.Exec(ctx,
		`UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`,
		hashedPassword, userID)
	if err != nil {
		return fmt.Errorf("update password: db update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %w", api.ErrNotFound)
	}
	return nil
}
