package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/lmatos/creator-hub/internal/api"
)

const pgUniqueViolation = "23505"

// UserRepo persists and queries public profile data.
type UserRepo interface {
	ListUsers(ctx context.Context, limit, offset int) ([]UserProfile, int, error)
	GetUserByID(ctx context.Context, id string) (*UserProfile, error)
	EmailInUse(ctx context.Context, email, excludeUserID string) (bool, error)
	UpdateProfile(ctx context.Context, userID string, params UpdateProfileParams) (*UserProfile, error)
	GetYoutubeLinks(ctx context.Context, userID string) ([]YoutubeLink, error)
	SaveYoutubeLinks(ctx context.Context, userID string, links []YoutubeLink) error
	ListContent(ctx context.Context, limit, offset int) ([]ContentItem, int, error)
}

var _ UserRepo = (*PostgresUserRepo)(nil)

// DB is the slice of pgxpool.Pool the profile store needs. Declared here so
// tests can substitute a mock pool.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PostgresUserRepo struct {
	logger *slog.Logger
	pgpool DB
}

func NewPostgresUserRepo(pgpool DB, logger *slog.Logger) *PostgresUserRepo {
	return &PostgresUserRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

const profileColumns = `id, name, email, bio, location, profile_picture, youtube_links, created_at, updated_at`

func scanProfile(row pgx.Row) (*UserProfile, error) {
	var p UserProfile
	err := row.Scan(
		&p.ID, &p.Name, &p.Email,
		&p.Bio, &p.Location, &p.ProfilePicture,
		&p.YoutubeLinks,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", api.ErrNotFound)
		}
		return nil, fmt.Errorf("database error scanning user: %w", err)
	}
	if p.YoutubeLinks == nil {
		p.YoutubeLinks = []YoutubeLink{}
	}
	return &p, nil
}

func (r *PostgresUserRepo) ListUsers(ctx context.Context, limit, offset int) ([]UserProfile, int, error) {
	tracer := otel.Tracer("PostgresUserRepo")
	ctx, span := tracer.Start(ctx, "ListUsers", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
	))
	defer span.End()

	var total int
	if err := r.pgpool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&total); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count query failed")
		return nil, 0, fmt.Errorf("database error counting users: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`, profileColumns)
	rows, err := r.pgpool.Query(ctx, query, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list query failed")
		return nil, 0, fmt.Errorf("database error listing users: %w", err)
	}
	defer rows.Close()

	users := make([]UserProfile, 0, limit)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "scan failed")
			return nil, 0, err
		}
		users = append(users, *p)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "row iteration failed")
		return nil, 0, fmt.Errorf("database error iterating users: %w", err)
	}

	span.SetAttributes(attribute.Int("users.count", len(users)))
	span.SetStatus(codes.Ok, "users listed")
	return users, total, nil
}

func (r *PostgresUserRepo) GetUserByID(ctx context.Context, id string) (*UserProfile, error) {
	tracer := otel.Tracer("PostgresUserRepo")
	ctx, span := tracer.Start(ctx, "GetUserByID", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.user.id", id),
	))
	defer span.End()

	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, profileColumns)
	p, err := scanProfile(r.pgpool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			span.SetStatus(codes.Error, "user not found")
		} else {
			span.RecordError(err)
			span.SetStatus(codes.Error, "query failed")
		}
		return nil, err
	}

	span.SetStatus(codes.Ok, "user found")
	return p, nil
}

func (r *PostgresUserRepo) EmailInUse(ctx context.Context, email, excludeUserID string) (bool, error) {
	tracer := otel.Tracer("PostgresUserRepo")
	ctx, span := tracer.Start(ctx, "EmailInUse", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
	))
	defer span.End()

	var exists bool
	err := r.pgpool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND id <> $2)`,
		email, excludeUserID,
	).Scan(&exists)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return false, fmt.Errorf("database error checking email: %w", err)
	}

	span.SetStatus(codes.Ok, "email checked")
	return exists, nil
}

func (r *PostgresUserRepo) UpdateProfile(ctx context.Context, userID string, params UpdateProfileParams) (*UserProfile, error) {
	tracer := otel.Tracer("PostgresUserRepo")
	ctx, span := tracer.Start(ctx, "UpdateProfile", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.user.id", userID),
	))
	defer span.End()

	setClauses := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)
	argID := 1

	addClause := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argID))
		args = append(args, value)
		argID++
	}

	if params.Name != nil {
		addClause("name", *params.Name)
	}
	if params.Email != nil {
		addClause("email", *params.Email)
	}
	if params.Bio != nil {
		addClause("bio", *params.Bio)
	}
	if params.Location != nil {
		addClause("location", *params.Location)
	}

	if len(setClauses) == 0 {
		return r.GetUserByID(ctx, userID)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, userID)

	query := fmt.Sprintf(
		`UPDATE users SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), argID, profileColumns,
	)

	p, err := scanProfile(r.pgpool.QueryRow(ctx, query, args...))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			span.SetStatus(codes.Error, "email already in use")
			return nil, fmt.Errorf("email already in use: %w", api.ErrConflict)
		}
		if errors.Is(err, api.ErrNotFound) {
			span.SetStatus(codes.Error, "user not found")
			return nil, err
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return nil, err
	}

	span.SetStatus(codes.Ok, "profile updated")
	return p, nil
}

func (r *PostgresUserRepo) GetYoutubeLinks(ctx context.Context, userID string) ([]YoutubeLink, error) {
	tracer := otel.Tracer("PostgresUserRepo")
	ctx, span := tracer.Start(ctx, "GetYoutubeLinks", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.user.id", userID),
	))
	defer span.End()

	var links []YoutubeLink
	err := r.pgpool.QueryRow(ctx,
		`SELECT youtube_links FROM users WHERE id = $1`, userID,
	).Scan(&links)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "user not found")
			return nil, fmt.Errorf("user not found: %w", api.ErrNotFound)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return nil, fmt.Errorf("database error reading links: %w", err)
	}
	if links == nil {
		links = []YoutubeLink{}
	}

	span.SetStatus(codes.Ok, "links read")
	return links, nil
}

func (r *PostgresUserRepo) SaveYoutubeLinks(ctx context.Context, userID string, links []YoutubeLink) error {
	tracer := otel.Tracer("PostgresUserRepo")
	ctx, span := tracer.Start(ctx, "SaveYoutubeLinks", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.user.id", userID),
		attribute.Int("links.count", len(links)),
	))
	defer span.End()

	if links == nil {
		links = []YoutubeLink{}
	}
	tag, err := r.pgpool.Exec(ctx,
		`UPDATE users SET youtube_links = $1, updated_at = NOW() WHERE id = $2`,
		links, userID,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return fmt.Errorf("database error saving links: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "user not found")
		return fmt.Errorf("user not found: %w", api.ErrNotFound)
	}

	span.SetStatus(codes.Ok, "links saved")
	return nil
}

func (r *PostgresUserRepo) ListContent(ctx context.Context, limit, offset int) ([]ContentItem, int, error) {
	tracer := otel.Tracer("PostgresUserRepo")
	ctx, span := tracer.Start(ctx, "ListContent", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
	))
	defer span.End()

	var total int
	err := r.pgpool.QueryRow(ctx,
		`SELECT COALESCE(SUM(jsonb_array_length(youtube_links)), 0) FROM users`,
	).Scan(&total)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count query failed")
		return nil, 0, fmt.Errorf("database error counting content: %w", err)
	}

	rows, err := r.pgpool.Query(ctx, `
		SELECT u.id, u.name, link.value
		FROM users u, jsonb_array_elements(u.youtube_links) AS link
		ORDER BY link.value->>'addedAt' DESC
		LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list query failed")
		return nil, 0, fmt.Errorf("database error listing content: %w", err)
	}
	defer rows.Close()

	items := make([]ContentItem, 0, limit)
	for rows.Next() {
		var item ContentItem
		if err := rows.Scan(&item.OwnerID, &item.OwnerName, &item.YoutubeLink); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "scan failed")
			return nil, 0, fmt.Errorf("database error scanning content: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "row iteration failed")
		return nil, 0, fmt.Errorf("database error iterating content: %w", err)
	}

	span.SetAttributes(attribute.Int("content.count", len(items)))
	span.SetStatus(codes.Ok, "content listed")
	return items, total, nil
}
