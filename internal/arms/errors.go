package arms

import "fmt"

// NotFoundError indicates an unknown arm or question was requested
type NotFoundError struct {
	Kind string // "arm" or "question"
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Key)
}

// NoEligibleArmsError indicates no arm remains selectable for a session.
// It signals graceful completion, not a caller failure.
type NoEligibleArmsError struct{}

func (e *NoEligibleArmsError) Error() string {
	return "no eligible arms remain"
}
