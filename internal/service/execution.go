package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/codecraft/internal/apperror"
	"github.com/sakif/codecraft/internal/executor"
	"github.com/sakif/codecraft/internal/model"
	"github.com/sakif/codecraft/internal/repository"
)

// ExecutionService stores and lists users' saved runs.
type ExecutionService struct {
	executions repository.ExecutionRepository
	users      repository.UserRepository
	logger     *slog.Logger
}

func NewExecutionService(executions repository.ExecutionRepository, users repository.UserRepository, logger *slog.Logger) *ExecutionService {
	return &ExecutionService{
		executions: executions,
		users:      users,
		logger:     logger,
	}
}

// SaveExecution records one run for the caller.
//
// ENTITLEMENT:
// Free accounts may only save JavaScript runs. Anything else is rejected
// with ErrEntitlement (not ErrForbidden) so the client can show an upgrade
// prompt, and nothing is written.
func (s *ExecutionService) SaveExecution(ctx context.Context, callerID, language, code string, output, errMsg *string) (*model.ExecutionRecord, error) {
	user, err := requireUser(ctx, s.users, callerID)
	if err != nil {
		return nil, err
	}

	// Entitlement comes first: a free account is refused any language other
	// than javascript, including ones the runtime table does not know.
	if !user.IsPro && language != executor.JavaScript {
		return nil, apperror.Entitlement("Only pro users can use this language")
	}
	if err := validateLanguage(language); err != nil {
		return nil, err
	}
	if len(code) > MaxCodeLength {
		return nil, apperror.ValidationFailed("code",
			fmt.Sprintf("code must be %d characters or less", MaxCodeLength))
	}

	rec := &model.ExecutionRecord{
		UserID:   user.UserID,
		Language: language,
		Code:     code,
		Output:   output,
		Error:    errMsg,
	}
	if err := s.executions.CreateExecution(ctx, rec); err != nil {
		s.logger.Error("failed to save execution",
			slog.String("userId", callerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("saving execution: %w", err)
	}

	s.logger.Info("execution saved",
		slog.String("id", rec.ID),
		slog.String("userId", rec.UserID),
		slog.String("language", rec.Language),
	)
	return rec, nil
}

// GetUserExecutions returns the caller's own saved runs, newest first.
func (s *ExecutionService) GetUserExecutions(ctx context.Context, callerID string) ([]model.ExecutionRecord, error) {
	if callerID == "" {
		return nil, apperror.Unauthorized()
	}

	records, err := s.executions.ListByUser(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("listing executions: %w", err)
	}
	return records, nil
}
