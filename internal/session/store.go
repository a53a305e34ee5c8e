package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/interview-engine/internal/types"
)

// Store is the durable write-through layer for sessions, turns, and arm
// beliefs. Sessions and turns are keyed by session ID with append-only turn
// history; beliefs are keyed by arm and updated in place. A nil Store is
// valid: the engine then runs entirely in memory.
type Store interface {
	CreateSession(ctx context.Context, snap types.SessionSnapshot) error
	UpdateSessionState(ctx context.Context, id uuid.UUID, state types.SessionState, startedAt, endedAt *time.Time) error
	AppendTurn(ctx context.Context, sessionID uuid.UUID, turn types.Turn) error
	SaveArmBelief(ctx context.Context, arm types.ArmID, belief types.Belief) error
}
