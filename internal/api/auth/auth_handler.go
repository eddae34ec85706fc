package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/lmatos/creator-hub/app/observability/metrics"
	"github.com/lmatos/creator-hub/internal/api"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	SignUp(w http.ResponseWriter, r *http.Request)
	SignIn(w http.ResponseWriter, r *http.Request)
	Refresh(w http.ResponseWriter, r *http.Request)
	SignOut(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	authService AuthService
	logger      *slog.Logger
}

func NewHandlerImpl(authService AuthService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		authService: authService,
		logger:      logger,
	}
}

// statusForError maps a domain error to a transport status code. Anything
// unclassified is a 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, api.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, api.ErrUnauthenticated),
		errors.Is(err, api.ErrTokenExpired),
		errors.Is(err, api.ErrTokenRevoked),
		errors.Is(err, api.ErrVersionMismatch):
		return http.StatusUnauthorized
	case errors.Is(err, api.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, api.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// clientMessage strips wrapped internals: 4xx errors carry their own
// message, 5xx errors get a generic one.
func clientMessage(err error, status int) string {
	if status >= http.StatusInternalServerError {
		return "Internal server error"
	}
	return err.Error()
}

// SignUp godoc
// @Summary      Register
// @Description  Creates a new user account and returns an access/refresh token pair.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body SignUpRequest true "Signup Parameters"
// @Success      201 {object} api.DataResponse "User Created"
// @Failure      400 {object} api.Response "Invalid Input"
// @Failure      409 {object} api.Response "Email Already Registered"
// @Failure      500 {object} api.Response "Internal Server Error"
// @Router       /auth/signup [post]
func (h *HandlerImpl) SignUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "SignUp"))
	start := time.Now()

	var req SignUpRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	payload, err := h.authService.SignUp(ctx, req.Name, req.Email, req.Password)
	outcome := "success"
	if err != nil {
		status := statusForError(err)
		outcome = http.StatusText(status)
		l.WarnContext(ctx, "Signup failed", slog.Any("error", err))
		api.ErrorResponse(w, r, status, clientMessage(err, status))
	} else {
		api.WriteJSONResponse(w, r, http.StatusCreated, api.DataResponse{
			Success: true,
			Message: "User created successfully",
			Data:    payload,
		})
	}

	m := metrics.Get()
	m.SignUpRequestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	m.AuthRequestDurationSeconds.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("operation", "signup")))
}

// SignIn godoc
// @Summary      Sign In
// @Description  Authenticates a user and returns an access/refresh token pair.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body SignInRequest true "Signin Parameters"
// @Success      200 {object} api.DataResponse "Signed In"
// @Failure      400 {object} api.Response "Invalid Input"
// @Failure      401 {object} api.Response "Invalid Credentials"
// @Failure      404 {object} api.Response "User Not Found"
// @Failure      500 {object} api.Response "Internal Server Error"
// @Router       /auth/signin [post]
func (h *HandlerImpl) SignIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "SignIn"))
	start := time.Now()

	var req SignInRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	payload, err := h.authService.SignIn(ctx, req.Email, req.Password)
	outcome := "success"
	if err != nil {
		status := statusForError(err)
		outcome = http.StatusText(status)
		l.WarnContext(ctx, "Signin failed", slog.Any("error", err))
		api.ErrorResponse(w, r, status, clientMessage(err, status))
	} else {
		api.WriteJSONResponse(w, r, http.StatusOK, api.DataResponse{
			Success: true,
			Message: "User signed in successfully",
			Data:    payload,
		})
	}

	m := metrics.Get()
	m.SignInRequestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	m.AuthRequestDurationSeconds.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("operation", "signin")))
}

// Refresh godoc
// @Summary      Refresh Access Token
// @Description  Exchanges a valid refresh token for a new access token.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body RefreshTokenRequest true "Refresh Parameters"
// @Success      200 {object} api.DataResponse "Token Refreshed"
// @Failure      400 {object} api.Response "Missing Refresh Token"
// @Failure      401 {object} api.Response "Invalid Or Expired Refresh Token"
// @Failure      500 {object} api.Response "Internal Server Error"
// @Router       /auth/refresh [post]
func (h *HandlerImpl) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Refresh"))
	start := time.Now()

	var req RefreshTokenRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	payload, err := h.authService.RefreshAccessToken(ctx, req.RefreshToken)
	outcome := "success"
	if err != nil {
		status := statusForError(err)
		outcome = http.StatusText(status)
		l.WarnContext(ctx, "Refresh failed", slog.Any("error", err))
		api.ErrorResponse(w, r, status, clientMessage(err, status))
	} else {
		api.WriteJSONResponse(w, r, http.StatusOK, api.DataResponse{
			Success: true,
			Message: "Token refreshed successfully",
			Data:    payload,
		})
	}

	m := metrics.Get()
	m.RefreshRequestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	m.AuthRequestDurationSeconds.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("operation", "refresh")))
}

// SignOut godoc
// @Summary      Sign Out
// @Description  Revokes the presented access token and invalidates the user's refresh tokens. Succeeds even without a token.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200 {object} api.Response "Signed Out"
// @Failure      500 {object} api.Response "Internal Server Error"
// @Router       /auth/signout [post]
func (h *HandlerImpl) SignOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "SignOut"))

	token := ExtractBearerToken(r)

	if err := h.authService.SignOut(ctx, token); err != nil {
		l.ErrorContext(ctx, "Signout failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to sign out")
		return
	}

	m := metrics.Get()
	m.SignOutRequestsTotal.Add(ctx, 1)
	if token != "" {
		m.TokensRevokedTotal.Add(ctx, 1)
	}

	api.WriteJSONResponse(w, r, http.StatusOK, api.Response{
		Success: true,
		Message: "User signed out successfully",
	})
}
