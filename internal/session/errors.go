package session

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/interview-engine/internal/types"
)

// NotFoundError indicates an unknown session, or a question that is not the
// one awaiting an answer.
type NotFoundError struct {
	Kind string // "session" or "question"
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Key)
}

// InvalidStateError indicates an operation attempted against a session whose
// lifecycle state does not permit it.
type InvalidStateError struct {
	SessionID uuid.UUID
	State     types.SessionState
	Operation string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("session %s is %s: %s not permitted", e.SessionID, e.State, e.Operation)
}

// AbortedError indicates the session was aborted while handling the call,
// carrying the terminal state rather than losing session context.
type AbortedError struct {
	SessionID uuid.UUID
	Reason    string
	Cause     error
}

func (e *AbortedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("session %s aborted: %s: %v", e.SessionID, e.Reason, e.Cause)
	}
	return fmt.Sprintf("session %s aborted: %s", e.SessionID, e.Reason)
}

func (e *AbortedError) Unwrap() error {
	return e.Cause
}
