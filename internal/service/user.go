package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/codecraft/internal/apperror"
	"github.com/sakif/codecraft/internal/model"
	"github.com/sakif/codecraft/internal/repository"
)

// UserService mirrors identity-provider users into the local store.
//
// There is no sign-up or password flow here: users exist because the
// provider told us about them through the webhook.
type UserService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

func NewUserService(users repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		users:  users,
		logger: logger,
	}
}

// SyncUser creates or refreshes the local record for an external user.
// The pro flag is never touched here.
func (s *UserService) SyncUser(ctx context.Context, externalID, email, name string) (*model.User, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, apperror.ValidationFailed("userId", "user ID is required")
	}

	user := &model.User{
		UserID: externalID,
		Email:  email,
		Name:   strings.TrimSpace(name),
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		s.logger.Error("failed to sync user",
			slog.String("userId", externalID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("syncing user: %w", err)
	}

	s.logger.Info("user synced",
		slog.String("userId", user.UserID),
		slog.String("id", user.ID),
	)
	return user, nil
}

// GetUser returns the caller's own record.
func (s *UserService) GetUser(ctx context.Context, callerID string) (*model.User, error) {
	return requireUser(ctx, s.users, callerID)
}

// SetPro grants or revokes the pro plan for an existing user.
func (s *UserService) SetPro(ctx context.Context, externalID string, isPro bool) (*model.User, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, apperror.ValidationFailed("userId", "user ID is required")
	}

	if err := s.users.SetPro(ctx, externalID, isPro); err != nil {
		return nil, fmt.Errorf("setting pro flag: %w", err)
	}

	s.logger.Info("pro flag changed",
		slog.String("userId", externalID),
		slog.Bool("isPro", isPro),
	)
	return s.users.GetUserByUserID(ctx, externalID)
}
