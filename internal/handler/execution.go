package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/codecraft/internal/auth"
	"github.com/sakif/codecraft/internal/service"
)

// ExecutionHandler stores and lists saved runs.
type ExecutionHandler struct {
	executions *service.ExecutionService
	logger     *slog.Logger
}

func NewExecutionHandler(executions *service.ExecutionService, logger *slog.Logger) *ExecutionHandler {
	return &ExecutionHandler{executions: executions, logger: logger}
}

// SaveExecutionRequest is the body of POST /api/executions. Output and Error
// are optional; a run has one or the other.
type SaveExecutionRequest struct {
	Language string  `json:"language"`
	Code     string  `json:"code"`
	Output   *string `json:"output,omitempty"`
	Error    *string `json:"error,omitempty"`
}

// HandleSave records a run for the caller.
//
// HTTP: POST /api/executions
// ERRORS: 403 pro_required when a free account saves a non-JavaScript run.
func (h *ExecutionHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	var req SaveExecutionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	userID, _ := auth.UserIDFromContext(r.Context())
	rec, err := h.executions.SaveExecution(r.Context(), userID, req.Language, req.Code, req.Output, req.Error)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// HandleList returns the caller's saved runs, newest first.
//
// HTTP: GET /api/executions
func (h *ExecutionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	records, err := h.executions.GetUserExecutions(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}
