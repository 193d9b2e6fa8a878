package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/codecraft/internal/apperror"
	"github.com/sakif/codecraft/internal/model"
)

// AddComment attaches a comment to a snippet. Like snippets, the author's
// display name is copied at write time.
func (s *SnippetService) AddComment(ctx context.Context, callerID, snippetID, content string) (*model.Comment, error) {
	user, err := requireUser(ctx, s.users, callerID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(content) == "" {
		return nil, apperror.ValidationFailed("content", "comment cannot be empty")
	}
	if len(content) > MaxCommentLength {
		return nil, apperror.ValidationFailed("content",
			fmt.Sprintf("comment must be %d characters or less", MaxCommentLength))
	}

	snippet, err := s.GetSnippet(ctx, snippetID)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		SnippetID: snippet.ID,
		UserID:    user.UserID,
		UserName:  user.Name,
		Content:   content,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		s.logger.Error("failed to create comment",
			slog.String("snippetId", snippetID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	return comment, nil
}

// GetComments returns a snippet's comments, newest first.
func (s *SnippetService) GetComments(ctx context.Context, snippetID string) ([]model.Comment, error) {
	comments, err := s.comments.ListBySnippet(ctx, snippetID)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	return comments, nil
}

// DeleteComment removes a comment. Only its author may.
func (s *SnippetService) DeleteComment(ctx context.Context, callerID, commentID string) error {
	if callerID == "" {
		return apperror.Unauthorized()
	}

	comment, err := s.comments.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != callerID {
		return apperror.Forbidden("not authorized to delete this comment")
	}

	if err := s.comments.DeleteComment(ctx, commentID); err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}
	return nil
}
