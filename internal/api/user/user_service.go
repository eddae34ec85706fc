package user

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/lmatos/creator-hub/internal/api"
)

const (
	minNameLen  = 3
	maxNameLen  = 50
	maxTitleLen = 100
)

var youtubeURLPattern = regexp.MustCompile(`^(https?://)?(www\.)?(youtube\.com|youtu\.be)/.+`)

// UserService exposes profile and content operations.
type UserService interface {
	ListUsers(ctx context.Context, page, limit int) (*PagedUsers, error)
	GetUserByID(ctx context.Context, id string) (*UserProfile, error)
	GetProfile(ctx context.Context, userID string) (*UserProfile, error)
	UpdateProfile(ctx context.Context, userID string, params UpdateProfileParams) (*UserProfile, error)
	AddYoutubeLink(ctx context.Context, userID string, req AddYoutubeLinkRequest) (*YoutubeLink, error)
	RemoveYoutubeLink(ctx context.Context, userID, linkID string) error
	ListContent(ctx context.Context, page, limit int) (*PagedContent, error)
}

var _ UserService = (*UserServiceImpl)(nil)

type UserServiceImpl struct {
	logger *slog.Logger
	repo   UserRepo
}

func NewUserService(repo UserRepo, logger *slog.Logger) *UserServiceImpl {
	return &UserServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

func (s *UserServiceImpl) ListUsers(ctx context.Context, page, limit int) (*PagedUsers, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "ListUsers")
	defer span.End()

	offset := (page - 1) * limit
	users, total, err := s.repo.ListUsers(ctx, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list users")
		return nil, err
	}

	span.SetStatus(codes.Ok, "users listed")
	return &PagedUsers{
		Users:      users,
		Pagination: NewPagination(total, page, limit),
	}, nil
}

func (s *UserServiceImpl) GetUserByID(ctx context.Context, id string) (*UserProfile, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "GetUserByID")
	defer span.End()

	p, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, "failed to get user")
		return nil, err
	}

	span.SetStatus(codes.Ok, "user found")
	return p, nil
}

func (s *UserServiceImpl) GetProfile(ctx context.Context, userID string) (*UserProfile, error) {
	return s.GetUserByID(ctx, userID)
}

func (s *UserServiceImpl) UpdateProfile(ctx context.Context, userID string, params UpdateProfileParams) (*UserProfile, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "UpdateProfile")
	defer span.End()
	l := s.logger.With(slog.String("method", "UpdateProfile"), slog.String("userID", userID))

	if err := validateProfileParams(params); err != nil {
		span.SetStatus(codes.Error, "validation failed")
		return nil, err
	}

	if params.Email != nil {
		taken, err := s.repo.EmailInUse(ctx, *params.Email, userID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "email check failed")
			return nil, err
		}
		if taken {
			span.SetStatus(codes.Error, "email already in use")
			return nil, fmt.Errorf("email already in use: %w", api.ErrConflict)
		}
	}

	p, err := s.repo.UpdateProfile(ctx, userID, params)
	if err != nil {
		span.SetStatus(codes.Error, "update failed")
		return nil, err
	}

	l.DebugContext(ctx, "Profile updated")
	span.SetStatus(codes.Ok, "profile updated")
	return p, nil
}

func (s *UserServiceImpl) AddYoutubeLink(ctx context.Context, userID string, req AddYoutubeLinkRequest) (*YoutubeLink, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "AddYoutubeLink")
	defer span.End()
	l := s.logger.With(slog.String("method", "AddYoutubeLink"), slog.String("userID", userID))

	url := strings.TrimSpace(req.YoutubeURL)
	title := strings.TrimSpace(req.Title)
	if url == "" || !youtubeURLPattern.MatchString(url) {
		span.SetStatus(codes.Error, "invalid youtube url")
		return nil, fmt.Errorf("a valid YouTube URL is required: %w", api.ErrValidation)
	}
	if title == "" || len(title) > maxTitleLen {
		span.SetStatus(codes.Error, "invalid title")
		return nil, fmt.Errorf("title is required and must be at most %d characters: %w", maxTitleLen, api.ErrValidation)
	}

	links, err := s.repo.GetYoutubeLinks(ctx, userID)
	if err != nil {
		span.SetStatus(codes.Error, "failed to load links")
		return nil, err
	}

	link := YoutubeLink{
		ID:      uuid.New().String(),
		URL:     url,
		Title:   title,
		AddedAt: time.Now().UTC(),
	}
	links = append(links, link)

	if err := s.repo.SaveYoutubeLinks(ctx, userID, links); err != nil {
		span.SetStatus(codes.Error, "failed to save links")
		return nil, err
	}

	l.InfoContext(ctx, "YouTube link added", slog.String("linkID", link.ID))
	span.SetAttributes(attribute.String("link.id", link.ID))
	span.SetStatus(codes.Ok, "link added")
	return &link, nil
}

func (s *UserServiceImpl) RemoveYoutubeLink(ctx context.Context, userID, linkID string) error {
	ctx, span := otel.Tracer("UserService").Start(ctx, "RemoveYoutubeLink")
	defer span.End()
	l := s.logger.With(slog.String("method", "RemoveYoutubeLink"), slog.String("userID", userID))

	links, err := s.repo.GetYoutubeLinks(ctx, userID)
	if err != nil {
		span.SetStatus(codes.Error, "failed to load links")
		return err
	}

	kept := make([]YoutubeLink, 0, len(links))
	for _, link := range links {
		if link.ID != linkID {
			kept = append(kept, link)
		}
	}
	if len(kept) == len(links) {
		span.SetStatus(codes.Error, "link not found")
		return fmt.Errorf("link not found: %w", api.ErrNotFound)
	}

	if err := s.repo.SaveYoutubeLinks(ctx, userID, kept); err != nil {
		span.SetStatus(codes.Error, "failed to save links")
		return err
	}

	l.InfoContext(ctx, "YouTube link removed", slog.String("linkID", linkID))
	span.SetStatus(codes.Ok, "link removed")
	return nil
}

func (s *UserServiceImpl) ListContent(ctx context.Context, page, limit int) (*PagedContent, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "ListContent")
	defer span.End()

	offset := (page - 1) * limit
	items, total, err := s.repo.ListContent(ctx, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list content")
		return nil, err
	}

	span.SetStatus(codes.Ok, "content listed")
	return &PagedContent{
		Items:      items,
		Pagination: NewPagination(total, page, limit),
	}, nil
}

func validateProfileParams(params UpdateProfileParams) error {
	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if len(name) < minNameLen || len(name) > maxNameLen {
			return fmt.Errorf("name must be between %d and %d characters: %w", minNameLen, maxNameLen, api.ErrValidation)
		}
	}
	if params.Email != nil {
		if _, err := mail.ParseAddress(*params.Email); err != nil {
			return fmt.Errorf("a valid email address is required: %w", api.ErrValidation)
		}
	}
	return nil
}
