// Package executor defines the contract with the remote code execution
// gateway and turns its raw responses into displayable results.
//
// No code runs locally. A Gateway implementation (see the piston
// subpackage) forwards the source text to a hosted sandbox and hands back
// whatever compile/run output it reported; Classify decides what the user
// sees.
package executor

import "context"

// File is one source file in a gateway request. Only the content is sent;
// the sandbox names it.
type File struct {
	Content string `json:"content"`
}

// Request is the body POSTed to the gateway.
type Request struct {
	Language string `json:"language"`
	Version  string `json:"version"`
	Files    []File `json:"files"`
}

// Stage is the captured result of one phase (compile or run). Output is
// stdout and stderr interleaved. The sandbox reports a null code and sets
// Signal when it killed the process; a missing code counts as failure.
type Stage struct {
	Code   *int    `json:"code"`
	Signal *string `json:"signal,omitempty"`
	Output string  `json:"output"`
	Stderr string  `json:"stderr"`
}

func (s *Stage) failed() bool {
	return s.Code == nil || *s.Code != 0 || s.Signal != nil
}

// Response is the gateway's reply. Message is set when the gateway itself
// rejected the request; Compile is absent for interpreted languages.
type Response struct {
	Message *string `json:"message,omitempty"`
	Compile *Stage  `json:"compile,omitempty"`
	Run     *Stage  `json:"run,omitempty"`
}

// ExecutionResult is the outcome of one run: the code as submitted plus
// exactly one of Output or Error.
type ExecutionResult struct {
	Code   string `json:"code"`
	Output string `json:"output"`
	Error  string `json:"error,omitempty"`
}

// Gateway sends one execution request to a remote sandbox.
//
// Implementations return an error only for transport failures or responses
// they could not decode; a program that fails to compile or crashes is a
// successful Execute call with a non-zero stage code.
type Gateway interface {
	Execute(ctx context.Context, req Request) (*Response, error)
}
