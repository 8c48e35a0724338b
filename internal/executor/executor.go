// Package executor defines the contract for running a snippet's SQL.
// The only implementation is executor/simulator, which fabricates results
// without a database.
package executor

import "context"

// ExecutionRequest is the body of POST /api/execute-sql.
type ExecutionRequest struct {
	SQL string `json:"sql"`
}

// ExecutionResult is a tabular result set.
//
// Columns fixes the display order; each row maps column name to value.
// Statements that return no result set (INSERT, UPDATE, ...) leave both
// Columns and Rows empty and only report Success and Message.
type ExecutionResult struct {
	Columns []string         `json:"columns,omitempty"`
	Rows    []map[string]any `json:"rows,omitempty"`
	Success bool             `json:"success"`
	Message string           `json:"message"`
}

// Executor runs SQL text and returns its result.
//
// A failed execution is reported as an error wrapping
// apperror.ErrSimulatedExecution, never as a result with Success=false.
type Executor interface {
	Execute(ctx context.Context, req ExecutionRequest) (*ExecutionResult, error)
}
