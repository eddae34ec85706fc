package user

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

func profileRow(id, name, email string, links []YoutubeLink) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{
		"id", "name", "email", "bio", "location", "profile_picture",
		"youtube_links", "created_at", "updated_at",
	}).AddRow(id, name, email, nil, nil, nil, links, now, now)
}

func TestPostgresUserRepo_GetUserByID(t *testing.T) {
	ctx := context.Background()
	mockPool, err := pgxmock.NewPool()
	assert.NoError(t, err)
	defer mockPool.Close()

	repo := NewPostgresUserRepo(mockPool, slog.Default())

	t.Run("found", func(t *testing.T) {
		links := []YoutubeLink{{ID: "link-1", URL: "https://youtu.be/abc", Title: "First"}}
		mockPool.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
			WithArgs("user-1").
			WillReturnRows(profileRow("user-1", "Alice Creator", "alice@example.com", links))

		profile, err := repo.GetUserByID(ctx, "user-1")
		assert.NoError(t, err)
		assert.Equal(t, "Alice Creator", profile.Name)
		assert.Len(t, profile.YoutubeLinks, 1)
	})

	t.Run("nil links column becomes empty slice", func(t *testing.T) {
		mockPool.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
			WithArgs("user-2").
			WillReturnRows(profileRow("user-2", "Bob Creator", "bob@example.com", nil))

		profile, err := repo.GetUserByID(ctx, "user-2")
		assert.NoError(t, err)
		assert.NotNil(t, profile.YoutubeLinks)
		assert.Empty(t, profile.YoutubeLinks)
	})

	t.Run("missing is ErrNotFound", func(t *testing.T) {
		mockPool.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
			WithArgs("ghost").
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetUserByID(ctx, "ghost")
		assert.True(t, errors.Is(err, api.ErrNotFound))
	})

	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresUserRepo_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	mockPool, err := pgxmock.NewPool()
	assert.NoError(t, err)
	defer mockPool.Close()

	repo := NewPostgresUserRepo(mockPool, slog.Default())

	t.Run("updates only the provided fields", func(t *testing.T) {
		mockPool.ExpectQuery(`UPDATE users SET name = \$1, bio = \$2, updated_at = NOW\(\) WHERE id = \$3`).
			WithArgs("New Name", "New bio", "user-1").
			WillReturnRows(profileRow("user-1", "New Name", "alice@example.com", nil))

		profile, err := repo.UpdateProfile(ctx, "user-1", UpdateProfileParams{
			Name: strPtr("New Name"),
			Bio:  strPtr("New bio"),
		})
		assert.NoError(t, err)
		assert.Equal(t, "New Name", profile.Name)
	})

	t.Run("no fields degrades to a read", func(t *testing.T) {
		mockPool.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
			WithArgs("user-1").
			WillReturnRows(profileRow("user-1", "Alice Creator", "alice@example.com", nil))

		profile, err := repo.UpdateProfile(ctx, "user-1", UpdateProfileParams{})
		assert.NoError(t, err)
		assert.Equal(t, "Alice Creator", profile.Name)
	})

	t.Run("duplicate email is ErrConflict", func(t *testing.T) {
		mockPool.ExpectQuery(`UPDATE users SET email = \$1, updated_at = NOW\(\) WHERE id = \$2`).
			WithArgs("taken@example.com", "user-1").
			WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})

		_, err := repo.UpdateProfile(ctx, "user-1", UpdateProfileParams{Email: strPtr("taken@example.com")})
		assert.True(t, errors.Is(err, api.ErrConflict))
	})

	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresUserRepo_SaveYoutubeLinks(t *testing.T) {
	ctx := context.Background()
	mockPool, err := pgxmock.NewPool()
	assert.NoError(t, err)
	defer mockPool.Close()

	repo := NewPostgresUserRepo(mockPool, slog.Default())

	t.Run("writes the whole slice", func(t *testing.T) {
		links := []YoutubeLink{{ID: "link-1", URL: "https://youtu.be/abc", Title: "First"}}
		mockPool.ExpectExec(`UPDATE users SET youtube_links = \$1`).
			WithArgs(links, "user-1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, repo.SaveYoutubeLinks(ctx, "user-1", links))
	})

	t.Run("missing user is ErrNotFound", func(t *testing.T) {
		mockPool.ExpectExec(`UPDATE users SET youtube_links = \$1`).
			WithArgs([]YoutubeLink{}, "ghost").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.SaveYoutubeLinks(ctx, "ghost", nil)
		assert.True(t, errors.Is(err, api.ErrNotFound))
	})

	assert.NoError(t, mockPool.ExpectationsWereMet())
}
