// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces ownership and plan rules
//	Repository (Data layer)  → reads/writes to the database
//
// Services take the caller's external user ID as a plain string. An empty
// string means "not signed in"; the service decides whether that is allowed.
// Nothing here knows about HTTP, so the same rules apply to every caller.
//
// Every service depends on repository interfaces, never on *sqlite.DB, so
// tests pass in-memory fakes (see *_test.go).
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/codecraft/internal/apperror"
	"github.com/sakif/codecraft/internal/executor"
	"github.com/sakif/codecraft/internal/model"
	"github.com/sakif/codecraft/internal/repository"
)

// Validation limits.
const (
	MaxSnippetTitleLength = 100
	MaxCodeLength         = 100000 // ~100KB of code
	MaxCommentLength      = 5000
)

// SnippetService handles snippets and everything hanging off them: stars
// and comments.
type SnippetService struct {
	snippets repository.SnippetRepository
	stars    repository.StarRepository
	comments repository.CommentRepository
	users    repository.UserRepository
	logger   *slog.Logger
}

// NewSnippetService creates a new SnippetService.
func NewSnippetService(
	snippets repository.SnippetRepository,
	stars repository.StarRepository,
	comments repository.CommentRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *SnippetService {
	return &SnippetService{
		snippets: snippets,
		stars:    stars,
		comments: comments,
		users:    users,
		logger:   logger,
	}
}

// CreateSnippet publishes a snippet owned by the caller.
//
// The caller must be signed in and must already have a User record (created
// by the identity webhook). The owner's display name is copied onto the
// snippet now and never refreshed.
func (s *SnippetService) CreateSnippet(ctx context.Context, callerID, title, language, code string) (*model.Snippet, error) {
	user, err := requireUser(ctx, s.users, callerID)
	if err != nil {
		return nil, err
	}

	// === VALIDATION ===
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "snippet title is required")
	}
	if len(title) > MaxSnippetTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("snippet title must be %d characters or less", MaxSnippetTitleLength))
	}
	if err := validateLanguage(language); err != nil {
		return nil, err
	}
	if len(code) > MaxCodeLength {
		return nil, apperror.ValidationFailed("code",
			fmt.Sprintf("code must be %d characters or less", MaxCodeLength))
	}

	snippet := &model.Snippet{
		UserID:   user.UserID,
		UserName: user.Name,
		Title:    title,
		Language: language,
		Code:     code,
	}

	if err := s.snippets.Create(ctx, snippet); err != nil {
		s.logger.Error("failed to create snippet",
			slog.String("userId", callerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating snippet: %w", err)
	}

	s.logger.Info("snippet created",
		slog.String("id", snippet.ID),
		slog.String("userId", snippet.UserID),
		slog.String("language", snippet.Language),
	)

	return snippet, nil
}

// DeleteSnippet removes a snippet with its comments and stars. Only the
// owner may do this; anyone else gets ErrForbidden and nothing changes.
//
// The cascade runs in a single transaction. If it fails part-way, nothing is
// removed and the caller sees "delete failed".
func (s *SnippetService) DeleteSnippet(ctx context.Context, callerID, id string) error {
	if callerID == "" {
		return apperror.Unauthorized()
	}

	snippet, err := s.GetSnippet(ctx, id)
	if err != nil {
		return err
	}

	if snippet.UserID != callerID {
		s.logger.Warn("snippet delete refused",
			slog.String("id", id),
			slog.String("userId", callerID),
		)
		return apperror.Forbidden("not authorized to delete this snippet")
	}

	if err := s.snippets.DeleteCascade(ctx, snippet.ID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			// Deleted by a concurrent request between the lookup and here.
			return err
		}
		s.logger.Error("failed to delete snippet",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("delete failed: %w", err)
	}

	s.logger.Info("snippet deleted", slog.String("id", id))
	return nil
}

// GetSnippet retrieves a snippet by its ID.
// Returns apperror.ErrNotFound if the snippet doesn't exist.
func (s *SnippetService) GetSnippet(ctx context.Context, id string) (*model.Snippet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "snippet ID is required")
	}

	// NotFound is already an apperror; pass it through untouched.
	return s.snippets.GetByID(ctx, id)
}

// GetSnippets returns every snippet, newest first.
func (s *SnippetService) GetSnippets(ctx context.Context) ([]model.Snippet, error) {
	snippets, err := s.snippets.List(ctx)
	if err != nil {
		s.logger.Error("failed to list snippets", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing snippets: %w", err)
	}
	return snippets, nil
}

// StarSnippet toggles the caller's star on a snippet and returns the new
// state. Two calls in a row leave things as they were.
func (s *SnippetService) StarSnippet(ctx context.Context, callerID, id string) (bool, error) {
	if callerID == "" {
		return false, apperror.Unauthorized()
	}

	snippet, err := s.GetSnippet(ctx, id)
	if err != nil {
		return false, err
	}

	starred, err := s.stars.Toggle(ctx, callerID, snippet.ID)
	if err != nil {
		s.logger.Error("failed to toggle star",
			slog.String("snippetId", id),
			slog.String("userId", callerID),
			slog.String("error", err.Error()),
		)
		return false, fmt.Errorf("toggling star: %w", err)
	}

	return starred, nil
}

// IsSnippetStarred reports whether the caller starred the snippet. Anonymous
// callers have starred nothing.
func (s *SnippetService) IsSnippetStarred(ctx context.Context, callerID, id string) (bool, error) {
	if callerID == "" {
		return false, nil
	}

	starred, err := s.stars.IsStarred(ctx, callerID, id)
	if err != nil {
		return false, fmt.Errorf("checking star: %w", err)
	}
	return starred, nil
}

// GetSnippetStarCount returns how many users starred the snippet. A deleted
// or unknown snippet has zero stars.
func (s *SnippetService) GetSnippetStarCount(ctx context.Context, id string) (int, error) {
	n, err := s.stars.CountBySnippet(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("counting stars: %w", err)
	}
	return n, nil
}

// GetStarStatus combines IsSnippetStarred and GetSnippetStarCount.
func (s *SnippetService) GetStarStatus(ctx context.Context, callerID, id string) (*model.StarStatus, error) {
	starred, err := s.IsSnippetStarred(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	count, err := s.GetSnippetStarCount(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.StarStatus{SnippetID: id, Starred: starred, Count: count}, nil
}

func validateLanguage(language string) error {
	if language == "" {
		return apperror.ValidationFailed("language", "language is required")
	}
	if _, ok := executor.Lookup(language); !ok {
		return apperror.ValidationFailed("language",
			fmt.Sprintf("unsupported language %q", language))
	}
	return nil
}

// requireUser resolves the caller to a User record. Empty callerID is an
// authentication error; a signed-in caller with no record is not-found.
func requireUser(ctx context.Context, users repository.UserRepository, callerID string) (*model.User, error) {
	if callerID == "" {
		return nil, apperror.Unauthorized()
	}
	user, err := users.GetUserByUserID(ctx, callerID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, &apperror.AppError{Err: apperror.ErrNotFound, Message: "User not found"}
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	return user, nil
}
