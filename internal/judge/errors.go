package judge

import "fmt"

// APICallError represents a failed call to the LLM provider
type APICallError struct {
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("judge API call failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("judge API call failed: %s", e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// ParseError represents an unusable judge response
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("judge response parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("judge response parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
