// Package errors defines the agent's small error taxonomy: parse errors
// from the Scanner, infeasible-plan errors from the Strategy, and driver
// errors from the capability layer. The executor is the only place that
// needs to distinguish between them.
package errors

import "fmt"

// NotFoundError represents a resource not found error.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// ParseError wraps a failure to extract a typed value from rendered HTML.
// The scanner raises it per-village, skips that village for the pass and
// aggregates the error; the executor logs each aggregated error at WARN.
type ParseError struct {
	Village string
	Field   string
	Cause   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s for village %s: %v", e.Field, e.Village, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// PlanInfeasibleError is raised (and logged at INFO, never propagated) when
// the strategy determines a candidate job can never be paid for — e.g. a
// shortage against zero production in every remaining resource kind.
type PlanInfeasibleError struct {
	Village string
	Reason  string
}

func (e *PlanInfeasibleError) Error() string {
	return fmt.Sprintf("plan infeasible for village %s: %s", e.Village, e.Reason)
}

// DriverError wraps a failed Driver call made by the scanner. A failed
// per-village fetch is aggregated and only that village is skipped; a failed
// top-level page fetch makes Scan return no GameState, which the executor
// treats as a fatal driver failure and answers with a driver restart.
type DriverError struct {
	Op    string
	Cause error
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("driver operation %q failed: %v", e.Op, e.Cause)
}

func (e *DriverError) Unwrap() error {
	return e.Cause
}