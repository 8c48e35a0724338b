// Package simulator answers SQL with synthetic rows instead of a database.
//
// HOW A STATEMENT IS CLASSIFIED:
//  1. The text is lower-cased. If it contains "error" anywhere, execution
//     fails. This is a deliberate fault-injection hook for the UI, and it
//     fires even for `SELECT * FROM error_log`.
//  2. A statement starting with "select" is a query. The first word after
//     "from" names the table; with no FROM clause the table is "users".
//  3. Anything else is reported as executed, with no result set.
//
// There is no parsing beyond that one pattern match. Every generated value
// is a pure function of the row index and a fixed reference date, so the
// same input always produces the same output.
package simulator

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sakif/sql-manager/internal/apperror"
	"github.com/sakif/sql-manager/internal/executor"
)

// DefaultTable is queried when a SELECT has no FROM clause.
const DefaultTable = "users"

// failureMessage is what every injected fault reports.
const failureMessage = "simulated error: this is a test error"

// Table names may be any letters or digits, not just ASCII.
var fromClause = regexp.MustCompile(`from\s+([\p{L}\p{N}_]+)`)

// referenceDate anchors all generated timestamps.
var referenceDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

var _ executor.Executor = (*Simulator)(nil)

// Simulator implements executor.Executor and counts what it was asked.
type Simulator struct {
	queries *prometheus.CounterVec
}

// New creates a Simulator. When reg is non-nil the
// sqlmanager_simulated_statements_total counter is registered with it.
func New(reg prometheus.Registerer) *Simulator {
	queries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sqlmanager",
		Name:      "simulated_statements_total",
		Help:      "Statements answered by the query simulator, by table and outcome.",
	}, []string{"table", "outcome"})
	if reg != nil {
		reg.MustRegister(queries)
	}
	return &Simulator{queries: queries}
}

// Execute simulates req.SQL. It only consults ctx for cancellation.
func (s *Simulator) Execute(ctx context.Context, req executor.ExecutionRequest) (*executor.ExecutionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	table := classify(req.SQL)
	result, err := Simulate(req.SQL)
	if err != nil {
		s.queries.WithLabelValues(table, "error").Inc()
		return nil, err
	}
	s.queries.WithLabelValues(table, "ok").Inc()
	return result, nil
}

// classify returns the metrics label for sql: the table a SELECT reads
// from, or "statement" for anything else.
func classify(sql string) string {
	lower := strings.TrimSpace(strings.ToLower(sql))
	if !strings.HasPrefix(lower, "select") {
		return "statement"
	}
	return tableName(lower)
}

// Simulate is the pure core of the simulator.
func Simulate(sql string) (*executor.ExecutionResult, error) {
	lower := strings.ToLower(sql)
	if strings.Contains(lower, "error") {
		return nil, apperror.SimulatedExecution(failureMessage)
	}

	lower = strings.TrimSpace(lower)
	if !strings.HasPrefix(lower, "select") {
		return &executor.ExecutionResult{
			Success: true,
			Message: "SQL statement executed successfully",
		}, nil
	}

	columns, rows := generate(tableName(lower))
	return &executor.ExecutionResult{
		Columns: columns,
		Rows:    rows,
		Success: true,
		Message: fmt.Sprintf("Successfully executed query, returned %d rows", len(rows)),
	}, nil
}

// tableName expects already lower-cased SQL.
func tableName(lower string) string {
	if m := fromClause.FindStringSubmatch(lower); m != nil && m[1] != "" {
		return m[1]
	}
	return DefaultTable
}
