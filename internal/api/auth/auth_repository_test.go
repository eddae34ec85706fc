package auth

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"

	"github.com/lmatos/creator-hub/internal/api"
)

func userRow(id, name, email, hash string, version int, refreshToken *string) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{
		"id", "name", "email", "password_hash", "token_version", "refresh_token",
		"bio", "location", "profile_picture", "created_at", "updated_at",
	}).AddRow(id, name, email, hash, version, refreshToken, nil, nil, nil, now, now)
}

func TestPostgresAuthRepo_GetUserByEmail(t *testing.T) {
	ctx := context.Background()
	mockPool, err := pgxmock.NewPool()
	assert.NoError(t, err)
	defer mockPool.Close()

	repo := NewPostgresAuthRepo(mockPool, slog.Default())

	t.Run("found", func(t *testing.T) {
		mockPool.ExpectQuery(`SELECT (.+) FROM users WHERE email = \$1`).
			WithArgs("creator@example.com").
			WillReturnRows(userRow("user-1", "Test Creator", "creator@example.com", "hash", 2, nil))

		user, err := repo.GetUserByEmail(ctx, "creator@example.com")
		assert.NoError(t, err)
		assert.Equal(t, "user-1", user.ID)
		assert.Equal(t, 2, user.TokenVersion)
		assert.Nil(t, user.RefreshToken)
	})

	t.Run("missing is ErrNotFound", func(t *testing.T) {
		mockPool.ExpectQuery(`SELECT (.+) FROM users WHERE email = \$1`).
			WithArgs("ghost@example.com").
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetUserByEmail(ctx, "ghost@example.com")
		assert.Error(t, err)
		assert.True(t, errors.Is(err, api.ErrNotFound))
	})

	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresAuthRepo_CreateUser(t *testing.T) {
	ctx := context.Background()
	mockPool, err := pgxmock.NewPool()
	assert.NoError(t, err)
	defer mockPool.Close()

	repo := NewPostgresAuthRepo(mockPool, slog.Default())

	t.Run("inserts with a hashed password", func(t *testing.T) {
		mockPool.ExpectQuery(`INSERT INTO users \(name, email, password_hash\)`).
			WithArgs("Test Creator", "creator@example.com", pgxmock.AnyArg()).
			WillReturnRows(userRow("user-1", "Test Creator", "creator@example.com", "hash", 0, nil))

		user, err := repo.CreateUser(ctx, "Test Creator", "creator@example.com", "password123")
		assert.NoError(t, err)
		assert.Equal(t, "user-1", user.ID)
	})

	t.Run("unique violation is ErrConflict", func(t *testing.T) {
		mockPool.ExpectQuery(`INSERT INTO users \(name, email, password_hash\)`).
			WithArgs("Test Creator", "creator@example.com", pgxmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})

		_, err := repo.CreateUser(ctx, "Test Creator", "creator@example.com", "password123")
		assert.Error(t, err)
		assert.True(t, errors.Is(err, api.ErrConflict))
	})

	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresAuthRepo_SaveRefreshToken(t *testing.T) {
	ctx := context.Background()
	mockPool, err := pgxmock.NewPool()
	assert.NoError(t, err)
	defer mockPool.Close()

	repo := NewPostgresAuthRepo(mockPool, slog.Default())
	token := "refresh-token"

	t.Run("stores the token", func(t *testing.T) {
		mockPool.ExpectExec(`UPDATE users SET refresh_token = \$1`).
			WithArgs(&token, "user-1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, repo.SaveRefreshToken(ctx, "user-1", &token))
	})

	t.Run("nil clears the slot", func(t *testing.T) {
		mockPool.ExpectExec(`UPDATE users SET refresh_token = \$1`).
			WithArgs((*string)(nil), "user-1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, repo.SaveRefreshToken(ctx, "user-1", nil))
	})

	t.Run("missing user is ErrNotFound", func(t *testing.T) {
		mockPool.ExpectExec(`UPDATE users SET refresh_token = \$1`).
			WithArgs(&token, "ghost").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.SaveRefreshToken(ctx, "ghost", &token)
		assert.True(t, errors.Is(err, api.ErrNotFound))
	})

	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresAuthRepo_UpdatePassword(t *testing.T) {
	ctx := context.Background()
	mockPool, err := pgxmock.NewPool()
	assert.NoError(t, err)
	defer mockPool.Close()

	repo := NewPostgresAuthRepo(mockPool, slog.Default())

	t.Run("stores a fresh hash, not the plaintext", func(t *testing.T) {
		mockPool.ExpectExec(`UPDATE users SET password_hash = \$1`).
			WithArgs(pgxmock.AnyArg(), "user-1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, repo.UpdatePassword(ctx, "user-1", "newpassword123"))
	})

	t.Run("missing user is ErrNotFound", func(t *testing.T) {
		mockPool.ExpectExec(`UPDATE users SET password_hash = \$1`).
			WithArgs(pgxmock.AnyArg(), "ghost").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdatePassword(ctx, "ghost", "newpassword123")
		assert.True(t, errors.Is(err, api.ErrNotFound))
	})

	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresAuthRepo_BumpTokenVersion(t *testing.T) {
	ctx := context.Background()
	mockPool, err := pgxmock.NewPool()
	assert.NoError(t, err)
	defer mockPool.Close()

	repo := NewPostgresAuthRepo(mockPool, slog.Default())

	t.Run("increments version and clears refresh token", func(t *testing.T) {
		mockPool.ExpectExec(`UPDATE users\s+SET token_version = token_version \+ 1`).
			WithArgs("user-1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, repo.BumpTokenVersion(ctx, "user-1"))
	})

	t.Run("missing user is ErrNotFound", func(t *testing.T) {
		mockPool.ExpectExec(`UPDATE users\s+SET token_version = token_version \+ 1`).
			WithArgs("ghost").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.BumpTokenVersion(ctx, "ghost")
		assert.True(t, errors.Is(err, api.ErrNotFound))
	})

	assert.NoError(t, mockPool.ExpectationsWereMet())
}
