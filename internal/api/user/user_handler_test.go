package user

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/lmatos/creator-hub/internal/api"
	"github.com/lmatos/creator-hub/internal/api/auth"
)

// MockUserService is a mock implementation of the UserService interface
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) ListUsers(ctx context.Context, page, limit int) (*PagedUsers, error) {
	args := m.Called(ctx, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PagedUsers), args.Error(1)
}

func (m *MockUserService) GetUserByID(ctx context.Context, id string) (*UserProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*UserProfile), args.Error(1)
}

func (m *MockUserService) GetProfile(ctx context.Context, userID string) (*UserProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*UserProfile), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, userID string, params UpdateProfileParams) (*UserProfile, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*UserProfile), args.Error(1)
}

func (m *MockUserService) AddYoutubeLink(ctx context.Context, userID string, req AddYoutubeLinkRequest) (*YoutubeLink, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*YoutubeLink), args.Error(1)
}

func (m *MockUserService) RemoveYoutubeLink(ctx context.Context, userID, linkID string) error {
	args := m.Called(ctx, userID, linkID)
	return args.Error(0)
}

func (m *MockUserService) ListContent(ctx context.Context, page, limit int) (*PagedContent, error) {
	args := m.Called(ctx, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PagedContent), args.Error(1)
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func asAuthenticated(req *http.Request, userID string) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), auth.UserIDKey, userID))
}

func TestGetUsersHandler(t *testing.T) {
	t.Run("defaults page and limit", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, slog.Default())

		mockService.On("ListUsers", mock.Anything, 1, 10).Return(&PagedUsers{
			Users:      []UserProfile{{ID: "user-1", Name: "Alice Creator"}},
			Pagination: NewPagination(1, 1, 10),
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
		rr := httptest.NewRecorder()
		handler.GetUsers(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("honors query parameters", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, slog.Default())

		mockService.On("ListUsers", mock.Anything, 3, 25).Return(&PagedUsers{
			Users:      []UserProfile{},
			Pagination: NewPagination(0, 3, 25),
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users?page=3&limit=25", nil)
		rr := httptest.NewRecorder()
		handler.GetUsers(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("nonsense parameters fall back to defaults", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, slog.Default())

		mockService.On("ListUsers", mock.Anything, 1, 10).Return(&PagedUsers{
			Users:      []UserProfile{},
			Pagination: NewPagination(0, 1, 10),
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users?page=-1&limit=banana", nil)
		rr := httptest.NewRecorder()
		handler.GetUsers(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestGetUserByIDHandler(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, slog.Default())

		mockService.On("GetUserByID", mock.Anything, "user-1").
			Return(&UserProfile{ID: "user-1", Name: "Alice Creator"}, nil)

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/users/user-1", nil), "id", "user-1")
		rr := httptest.NewRecorder()
		handler.GetUserByID(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("missing is 404", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, slog.Default())

		mockService.On("GetUserByID", mock.Anything, "ghost").Return(nil, api.ErrNotFound)

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/users/ghost", nil), "id", "ghost")
		rr := httptest.NewRecorder()
		handler.GetUserByID(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)

		var body map[string]interface{}
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, false, body["success"])
	})
}

func TestGetProfileHandler(t *testing.T) {
	t.Run("requires authentication context", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, slog.Default())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/profile/me", nil)
		rr := httptest.NewRecorder()
		handler.GetProfile(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		mockService.AssertNotCalled(t, "GetProfile", mock.Anything, mock.Anything)
	})

	t.Run("returns own profile", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, slog.Default())

		mockService.On("GetProfile", mock.Anything, "user-1").
			Return(&UserProfile{ID: "user-1", Name: "Alice Creator"}, nil)

		req := asAuthenticated(httptest.NewRequest(http.MethodGet, "/api/v1/users/profile/me", nil), "user-1")
		rr := httptest.NewRecorder()
		handler.GetProfile(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestUpdateProfileHandler(t *testing.T) {
	t.Run("conflict on taken email", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, slog.Default())

		mockService.On("UpdateProfile", mock.Anything, "user-1", mock.Anything).
			Return(nil, api.ErrConflict)

		body, _ := json.Marshal(UpdateProfileParams{Email: strPtr("taken@example.com")})
		req := asAuthenticated(
			httptest.NewRequest(http.MethodPut, "/api/v1/users/profile/me", bytes.NewReader(body)),
			"user-1",
		)
		rr := httptest.NewRecorder()
		handler.UpdateProfile(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestAddYoutubeLinkHandler(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, slog.Default())

		reqBody := AddYoutubeLinkRequest{YoutubeURL: "https://youtu.be/abc", Title: "My Video"}
		mockService.On("AddYoutubeLink", mock.Anything, "user-1", reqBody).
			Return(&YoutubeLink{ID: "link-1", URL: reqBody.YoutubeURL, Title: reqBody.Title}, nil)

		body, _ := json.Marshal(reqBody)
		req := asAuthenticated(
			httptest.NewRequest(http.MethodPost, "/api/v1/users/profile/youtube", bytes.NewReader(body)),
			"user-1",
		)
		rr := httptest.NewRecorder()
		handler.AddYoutubeLink(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
	})
}

func TestRemoveYoutubeLinkHandler(t *testing.T) {
	t.Run("removed", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, slog.Default())

		mockService.On("RemoveYoutubeLink", mock.Anything, "user-1", "link-1").Return(nil)

		req := asAuthenticated(
			withURLParam(httptest.NewRequest(http.MethodDelete, "/api/v1/users/profile/youtube/link-1", nil), "linkId", "link-1"),
			"user-1",
		)
		rr := httptest.NewRecorder()
		handler.RemoveYoutubeLink(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("unknown link is 404", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, slog.Default())

		mockService.On("RemoveYoutubeLink", mock.Anything, "user-1", "ghost-link").
			Return(api.ErrNotFound)

		req := asAuthenticated(
			withURLParam(httptest.NewRequest(http.MethodDelete, "/api/v1/users/profile/youtube/ghost-link", nil), "linkId", "ghost-link"),
			"user-1",
		)
		rr := httptest.NewRecorder()
		handler.RemoveYoutubeLink(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
