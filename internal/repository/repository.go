// Package repository declares the persistence contracts the service layer
// depends on. The sqlite subpackage implements all of them on one *sqlite.DB.
package repository

import (
	"context"

	"github.com/sakif/codecraft/internal/model"
)

type UserRepository interface {
	// Upsert inserts or refreshes a user keyed by its external UserID.
	// Existing rows keep their ID, CreatedAt and IsPro.
	Upsert(ctx context.Context, user *model.User) error
	GetUserByUserID(ctx context.Context, userID string) (*model.User, error)
	// SetPro changes the entitlement flag. Unknown users are ErrNotFound.
	SetPro(ctx context.Context, userID string, isPro bool) error
}

type SnippetRepository interface {
	Create(ctx context.Context, snippet *model.Snippet) error
	GetByID(ctx context.Context, id string) (*model.Snippet, error)
	// List returns every snippet, newest first.
	List(ctx context.Context) ([]model.Snippet, error)
	// DeleteCascade removes the snippet's comments, then its stars, then the
	// snippet, in one transaction. Nothing is removed if any step fails.
	DeleteCascade(ctx context.Context, id string) error
}

type StarRepository interface {
	// Toggle removes the (userID, snippetID) star if present and inserts it
	// otherwise, atomically. It reports the resulting state.
	Toggle(ctx context.Context, userID, snippetID string) (bool, error)
	IsStarred(ctx context.Context, userID, snippetID string) (bool, error)
	CountBySnippet(ctx context.Context, snippetID string) (int, error)
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	GetComment(ctx context.Context, id string) (*model.Comment, error)
	// ListBySnippet returns a snippet's comments, newest first.
	ListBySnippet(ctx context.Context, snippetID string) ([]model.Comment, error)
	DeleteComment(ctx context.Context, id string) error
}

type ExecutionRepository interface {
	CreateExecution(ctx context.Context, rec *model.ExecutionRecord) error
	// ListByUser returns a user's saved runs, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.ExecutionRecord, error)
}
