package container

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/lmatos/creator-hub/app/db"
	"github.com/lmatos/creator-hub/config"
	"github.com/lmatos/creator-hub/internal/api/auth"
	"github.com/lmatos/creator-hub/internal/api/user"
)

// Registry cleanup sweep. Entries also expire individually at token exp.
const revocationCleanupInterval = 5 * time.Minute

// Container holds all application dependencies.
type Container struct {
	Config       *config.Config
	Logger       *slog.Logger
	Pool         *pgxpool.Pool
	AuthHandler  *auth.HandlerImpl
	UserHandler  *user.HandlerImpl
	Authenticate func(next http.Handler) http.Handler
}

// NewContainer initializes and returns a new dependency container.
func NewContainer(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	dbConfig, err := database.NewDatabaseConfig(&cfg.Repositories.Postgres, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	pool, err := database.Init(dbConfig, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	registry := auth.NewInMemoryRevocationRegistry(revocationCleanupInterval)
	tokens := auth.NewTokenManager(cfg.JWT, registry)

	authRepo := auth.NewPostgresAuthRepo(pool, logger)
	userRepo := user.NewPostgresUserRepo(pool, logger)

	authService := auth.NewAuthService(authRepo, tokens, registry, logger)
	userService := user.NewUserService(userRepo, logger)

	return &Container{
		Config:       cfg,
		Logger:       logger,
		Pool:         pool,
		AuthHandler:  auth.NewHandlerImpl(authService, logger),
		UserHandler:  user.NewHandlerImpl(userService, logger),
		Authenticate: auth.Authenticate(tokens, logger),
	}, nil
}

// Close releases held resources.
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}
