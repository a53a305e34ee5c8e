package types

import (
	"time"

	"github.com/google/uuid"
)

// SessionSnapshot is an immutable copy of a session's externally visible
// state, safe to serialize or aggregate without touching engine internals.
type SessionSnapshot struct {
	ID          uuid.UUID    `json:"id"`
	CandidateID string       `json:"candidate_id"`
	State       SessionState `json:"state"`
	CreatedAt   time.Time    `json:"created_at"`
	StartedAt   *time.Time   `json:"started_at,omitempty"`
	EndedAt     *time.Time   `json:"ended_at,omitempty"`
	Turns       []Turn       `json:"turns"`
	MaxTurns    int          `json:"max_turns"`
}
