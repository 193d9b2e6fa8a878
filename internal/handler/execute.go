package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/codecraft/internal/executor"
)

// ExecuteHandler proxies code to the remote execution gateway for clients
// that cannot reach it directly.
type ExecuteHandler struct {
	gw     executor.Gateway
	logger *slog.Logger
}

// NewExecuteHandler creates a new ExecuteHandler.
func NewExecuteHandler(gw executor.Gateway, logger *slog.Logger) *ExecuteHandler {
	return &ExecuteHandler{
		gw:     gw,
		logger: logger,
	}
}

// ExecuteRequest is the body of POST /api/execute.
type ExecuteRequest struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

// HandleExecute runs the code and returns the classified result.
//
// A run that fails (compile error, crash, gateway refusal, empty code) is
// still a 200: the failure is in the result's "error" field, exactly as the
// editor would display it. Only a malformed request body is a 4xx.
func (h *ExecuteHandler) HandleExecute(w http.ResponseWriter, r *http.Request) {
	var req ExecuteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warn("invalid execution request body", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	result := executor.Execute(r.Context(), h.gw, req.Language, req.Code)

	h.logger.Info("code executed",
		slog.String("language", req.Language),
		slog.Bool("failed", result.Error != ""),
	)
	writeJSON(w, http.StatusOK, result)
}
