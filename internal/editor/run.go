package editor

import (
	"context"
	"log/slog"

	"github.com/sakif/codecraft/internal/executor"
)

// Run executes the current code on the gateway and records the outcome.
//
// Failures never come back as a Go error; they land in the session's Error
// field. Empty code is rejected without a gateway call and without touching
// the running flag. Otherwise the session is marked running and cleared, the
// lock is released for the duration of the call, and on every exit path the
// result, output, error and running=false are written in one critical
// section.
func (s *Session) Run(ctx context.Context) executor.ExecutionResult {
	s.mu.Lock()
	language, code := s.language, s.code
	if code == "" {
		s.errMsg = executor.MsgNoCode
		s.mu.Unlock()
		return executor.ExecutionResult{Error: executor.MsgNoCode}
	}
	s.running = true
	s.output = ""
	s.errMsg = ""
	s.mu.Unlock()

	// Stays the generic failure if the gateway call panics.
	result := executor.ExecutionResult{Code: code, Error: executor.MsgRunFailed}
	defer s.finish(&result)

	result = executor.Execute(ctx, s.gw, language, code)

	s.logger.Debug("run finished",
		slog.String("language", language),
		slog.Bool("failed", result.Error != ""),
	)
	return result
}

func (s *Session) finish(result *executor.ExecutionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := *result
	s.result = &r
	s.output = r.Output
	s.errMsg = r.Error
	s.running = false
}
