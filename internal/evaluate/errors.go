package evaluate

import "fmt"

// EvaluationUnavailableError indicates the external judgment capability
// could not produce a judgment. The state machine decides whether to retry,
// record the turn ungraded, or abort.
type EvaluationUnavailableError struct {
	Cause error
}

func (e *EvaluationUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("evaluation unavailable: %v", e.Cause)
	}
	return "evaluation unavailable"
}

func (e *EvaluationUnavailableError) Unwrap() error {
	return e.Cause
}
