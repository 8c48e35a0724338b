package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/sql-manager/internal/apperror"
	"github.com/sakif/sql-manager/internal/executor"
)

// ExecuteHandler runs SQL against the configured executor.
type ExecuteHandler struct {
	exec   executor.Executor
	logger *slog.Logger
}

// NewExecuteHandler creates a new ExecuteHandler.
func NewExecuteHandler(exec executor.Executor, logger *slog.Logger) *ExecuteHandler {
	return &ExecuteHandler{
		exec:   exec,
		logger: logger,
	}
}

// executeRequest keeps SQL as a pointer so a missing key can be told apart
// from an empty string.
type executeRequest struct {
	SQL *string `json:"sql"`
}

// executeFailure is the error body of /api/execute-sql. It differs from
// ErrorResponse because the client renders it in the result pane.
type executeFailure struct {
	Error   string `json:"error"`
	Success bool   `json:"success"`
}

// HandleExecute runs a statement and returns its result set.
//
// HTTP: POST /api/execute-sql
// REQUEST BODY: {"sql":"SELECT * FROM products"}
// RESPONSE: 200 {"columns":[...],"rows":[...],"success":true,"message":"..."}
//
//	400 {"error":"...","success":false}
func (h *ExecuteHandler) HandleExecute(w http.ResponseWriter, r *http.Request) {
	var body executeRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, executeFailure{Error: "invalid JSON body"})
		return
	}

	// Only a missing key is rejected. An empty statement is still a
	// statement, and the executor acknowledges it like any non-SELECT.
	if body.SQL == nil {
		writeJSON(w, http.StatusBadRequest, executeFailure{Error: "sql is required"})
		return
	}

	result, err := h.exec.Execute(r.Context(), executor.ExecutionRequest{SQL: *body.SQL})
	if err != nil {
		var appErr *apperror.AppError
		if errors.Is(err, apperror.ErrSimulatedExecution) && errors.As(err, &appErr) {
			h.logger.Debug("simulated execution failure")
			writeJSON(w, http.StatusBadRequest, executeFailure{Error: appErr.Message})
			return
		}
		h.logger.Error("sql execution failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, executeFailure{Error: "internal error during execution"})
		return
	}

	writeJSON(w, http.StatusOK, result)
}
