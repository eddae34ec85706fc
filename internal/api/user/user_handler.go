package user

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lmatos/creator-hub/internal/api"
	"github.com/lmatos/creator-hub/internal/api/auth"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// Handler exposes the profile and content HTTP endpoints.
type Handler interface {
	GetUsers(w http.ResponseWriter, r *http.Request)
	GetUserByID(w http.ResponseWriter, r *http.Request)
	GetAllContent(w http.ResponseWriter, r *http.Request)
	GetProfile(w http.ResponseWriter, r *http.Request)
	UpdateProfile(w http.ResponseWriter, r *http.Request)
	AddYoutubeLink(w http.ResponseWriter, r *http.Request)
	RemoveYoutubeLink(w http.ResponseWriter, r *http.Request)
}

var _ Handler = (*HandlerImpl)(nil)

type HandlerImpl struct {
	userService UserService
	logger      *slog.Logger
}

func NewHandlerImpl(userService UserService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		userService: userService,
		logger:      logger,
	}
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, api.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, api.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, api.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, api.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func clientMessage(err error, status int) string {
	if status >= http.StatusInternalServerError {
		return "Internal server error"
	}
	return err.Error()
}

func parsePageParams(r *http.Request) (page, limit int) {
	page, limit = 1, defaultPageLimit
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= maxPageLimit {
			limit = n
		}
	}
	return page, limit
}

// GetUsers godoc
// @Summary      List Users
// @Description  Returns a paginated list of public user profiles, newest first.
// @Tags         Users
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        limit query int false "Page size" default(10)
// @Success      200 {object} api.DataResponse "Users"
// @Failure      500 {object} api.Response "Internal Server Error"
// @Router       /users [get]
func (h *HandlerImpl) GetUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetUsers"))

	page, limit := parsePageParams(r)
	paged, err := h.userService.ListUsers(ctx, page, limit)
	if err != nil {
		status := statusForError(err)
		l.ErrorContext(ctx, "Failed to list users", slog.Any("error", err))
		api.ErrorResponse(w, r, status, clientMessage(err, status))
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, api.DataResponse{
		Success: true,
		Message: "Users retrieved successfully",
		Data: map[string]interface{}{
			"users":      paged.Users,
			"pagination": paged.Pagination,
		},
	})
}

// GetUserByID godoc
// @Summary      Get User
// @Description  Returns a single public user profile.
// @Tags         Users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} api.DataResponse "User"
// @Failure      404 {object} api.Response "User Not Found"
// @Failure      500 {object} api.Response "Internal Server Error"
// @Router       /users/{id} [get]
func (h *HandlerImpl) GetUserByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetUserByID"))

	id := chi.URLParam(r, "id")
	profile, err := h.userService.GetUserByID(ctx, id)
	if err != nil {
		status := statusForError(err)
		l.WarnContext(ctx, "Failed to get user", slog.String("userID", id), slog.Any("error", err))
		api.ErrorResponse(w, r, status, clientMessage(err, status))
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, api.DataResponse{
		Success: true,
		Message: "User retrieved successfully",
		Data:    profile,
	})
}

// GetAllContent godoc
// @Summary      Content Feed
// @Description  Returns a paginated feed of embedded links across all users, newest first.
// @Tags         Users
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        limit query int false "Page size" default(10)
// @Success      200 {object} api.DataResponse "Content"
// @Failure      500 {object} api.Response "Internal Server Error"
// @Router       /users/content [get]
func (h *HandlerImpl) GetAllContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetAllContent"))

	page, limit := parsePageParams(r)
	paged, err := h.userService.ListContent(ctx, page, limit)
	if err != nil {
		status := statusForError(err)
		l.ErrorContext(ctx, "Failed to list content", slog.Any("error", err))
		api.ErrorResponse(w, r, status, clientMessage(err, status))
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, api.DataResponse{
		Success: true,
		Message: "Content retrieved successfully",
		Data: map[string]interface{}{
			"content":    paged.Items,
			"pagination": paged.Pagination,
		},
	})
}

// GetProfile godoc
// @Summary      My Profile
// @Description  Returns the authenticated user's own profile.
// @Tags         Profile
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} api.DataResponse "Profile"
// @Failure      401 {object} api.Response "Unauthorized"
// @Failure      404 {object} api.Response "User Not Found"
// @Router       /users/profile/me [get]
func (h *HandlerImpl) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetProfile"))

	userID, ok := auth.GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	profile, err := h.userService.GetProfile(ctx, userID)
	if err != nil {
		status := statusForError(err)
		l.WarnContext(ctx, "Failed to get profile", slog.Any("error", err))
		api.ErrorResponse(w, r, status, clientMessage(err, status))
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, api.DataResponse{
		Success: true,
		Message: "Profile retrieved successfully",
		Data:    profile,
	})
}

// UpdateProfile godoc
// @Summary      Update Profile
// @Description  Updates the authenticated user's profile fields. Omitted fields are left unchanged.
// @Tags         Profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body UpdateProfileParams true "Profile Fields"
// @Success      200 {object} api.DataResponse "Profile Updated"
// @Failure      400 {object} api.Response "Invalid Input"
// @Failure      401 {object} api.Response "Unauthorized"
// @Failure      409 {object} api.Response "Email Already In Use"
// @Router       /users/profile/me [put]
func (h *HandlerImpl) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "UpdateProfile"))

	userID, ok := auth.GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var params UpdateProfileParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.userService.UpdateProfile(ctx, userID, params)
	if err != nil {
		status := statusForError(err)
		l.WarnContext(ctx, "Failed to update profile", slog.Any("error", err))
		api.ErrorResponse(w, r, status, clientMessage(err, status))
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, api.DataResponse{
		Success: true,
		Message: "Profile updated successfully",
		Data:    profile,
	})
}

// AddYoutubeLink godoc
// @Summary      Add YouTube Link
// @Description  Attaches a YouTube link to the authenticated user's profile.
// @Tags         Profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body AddYoutubeLinkRequest true "Link Parameters"
// @Success      201 {object} api.DataResponse "Link Added"
// @Failure      400 {object} api.Response "Invalid Input"
// @Failure      401 {object} api.Response "Unauthorized"
// @Router       /users/profile/youtube [post]
func (h *HandlerImpl) AddYoutubeLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "AddYoutubeLink"))

	userID, ok := auth.GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req AddYoutubeLinkRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	link, err := h.userService.AddYoutubeLink(ctx, userID, req)
	if err != nil {
		status := statusForError(err)
		l.WarnContext(ctx, "Failed to add link", slog.Any("error", err))
		api.ErrorResponse(w, r, status, clientMessage(err, status))
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, api.DataResponse{
		Success: true,
		Message: "YouTube link added successfully",
		Data:    link,
	})
}

// RemoveYoutubeLink godoc
// @Summary      Remove YouTube Link
// @Description  Removes a YouTube link from the authenticated user's profile.
// @Tags         Profile
// @Produce      json
// @Security     BearerAuth
// @Param        linkId path string true "Link ID"
// @Success      200 {object} api.Response "Link Removed"
// @Failure      401 {object} api.Response "Unauthorized"
// @Failure      404 {object} api.Response "Link Not Found"
// @Router       /users/profile/youtube/{linkId} [delete]
func (h *HandlerImpl) RemoveYoutubeLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "RemoveYoutubeLink"))

	userID, ok := auth.GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	linkID := chi.URLParam(r, "linkId")
	if err := h.userService.RemoveYoutubeLink(ctx, userID, linkID); err != nil {
		status := statusForError(err)
		l.WarnContext(ctx, "Failed to remove link", slog.Any("error", err))
		api.ErrorResponse(w, r, status, clientMessage(err, status))
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, api.Response{
		Success: true,
		Message: "YouTube link removed successfully",
	})
}
