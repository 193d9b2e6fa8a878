package executor

import (
	"context"
	"strings"
)

// User-facing messages for runs that never produced gateway output.
const (
	MsgNoCode    = "No code to run, please write some code first"
	MsgRunFailed = "Error running code"
)

// Classify turns a gateway response into the result shown to the user.
//
// First match wins:
//  1. message set: the gateway refused the request.
//  2. compile stage failed: exit code missing or non-zero, or killed by a signal.
//  3. run stage failed, by the same rule.
//  4. otherwise: success, with the run output trimmed.
//
// A nil response, or one with neither a message nor a run stage, is treated
// as a failed run.
func Classify(code string, resp *Response) ExecutionResult {
	result := ExecutionResult{Code: code}

	switch {
	case resp == nil:
		result.Error = MsgRunFailed
	case resp.Message != nil:
		result.Error = *resp.Message
	case resp.Compile != nil && resp.Compile.failed():
		result.Error = stageError(resp.Compile)
	case resp.Run == nil:
		result.Error = MsgRunFailed
	case resp.Run.failed():
		result.Error = stageError(resp.Run)
	default:
		result.Output = strings.TrimSpace(resp.Run.Output)
	}

	return result
}

// stageError prefers the combined output and falls back to stderr. A
// failed stage that printed nothing still has to surface as an error.
func stageError(s *Stage) string {
	if s.Output != "" {
		return s.Output
	}
	if s.Stderr != "" {
		return s.Stderr
	}
	return MsgRunFailed
}

// Execute runs code through gw and classifies the outcome. It never returns
// a Go error: empty code, an unknown language and transport failures all
// come back as an ExecutionResult with Error set.
//
// Empty code is rejected before gw is touched.
func Execute(ctx context.Context, gw Gateway, language, code string) ExecutionResult {
	if code == "" {
		return ExecutionResult{Code: code, Error: MsgNoCode}
	}

	req, ok := NewRequest(language, code)
	if !ok {
		return ExecutionResult{Code: code, Error: MsgRunFailed}
	}

	resp, err := gw.Execute(ctx, req)
	if err != nil {
		return ExecutionResult{Code: code, Error: MsgRunFailed}
	}

	return Classify(code, resp)
}
