package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/lmatos/creator-hub/config"
	"github.com/lmatos/creator-hub/internal/api"
	"github.com/lmatos/creator-hub/internal/container"
)

// SetupRouter wires all HTTP routes. Server-wide middleware (request ID,
// logging, recoverer) is applied by the caller before mounting this router.
func SetupRouter(c *container.Container, cfg *config.Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes. Signout stays public on purpose: it is
		// best-effort and succeeds even with a missing or garbage token.
		r.Group(func(r chi.Router) {
			r.Post("/auth/signup", c.AuthHandler.SignUp)
			r.Post("/auth/signin", c.AuthHandler.SignIn)
			r.Post("/auth/refresh", c.AuthHandler.Refresh)
			r.Post("/auth/signout", c.AuthHandler.SignOut)
		})

		// Public profile reads.
		r.Group(func(r chi.Router) {
			r.Get("/users", c.UserHandler.GetUsers)
			r.Get("/users/content", c.UserHandler.GetAllContent)
			r.Get("/users/{id}", c.UserHandler.GetUserByID)
		})

		// Routes below require a valid, unrevoked access token.
		r.Group(func(r chi.Router) {
			r.Use(c.Authenticate)

			r.Get("/users/profile/me", c.UserHandler.GetProfile)
			r.Put("/users/profile/me", c.UserHandler.UpdateProfile)
			r.Post("/users/profile/youtube", c.UserHandler.AddYoutubeLink)
			r.Delete("/users/profile/youtube/{linkId}", c.UserHandler.RemoveYoutubeLink)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		api.ErrorResponse(w, r, http.StatusNotFound, "Resource not found")
	})

	return r
}
