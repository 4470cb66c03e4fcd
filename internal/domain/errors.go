package domain

import "fmt"

// Stable validation codes surfaced to API clients.
const (
	CodeMinimumOneDay            = "minimum-one-day"
	CodeMinimumOneCostItem       = "minimum-one-cost-item"
	CodeInsufficientDestinations = "insufficient-destinations"
	CodeInvalidSegment           = "invalid-segment"
)

// ValidationError reports a caller-violated invariant. The operation that
// returns it has not mutated anything: the input value is still valid.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (%s): %s", e.Code, e.Message)
}

func NewValidationError(code, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message}
}

// ConversionError wraps a currency service failure. Callers keep showing the
// last successfully resolved amounts instead of applying a partial result.
type ConversionError struct {
	Cause error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("currency conversion failed: %v", e.Cause)
}

func (e *ConversionError) Unwrap() error { return e.Cause }

// OptimizationError wraps a route optimization failure. The Day's previous
// optimized route is preserved untouched.
type OptimizationError struct {
	Cause error
}

func (e *OptimizationError) Error() string {
	return fmt.Sprintf("route optimization failed: %v", e.Cause)
}

func (e *OptimizationError) Unwrap() error { return e.Cause }
