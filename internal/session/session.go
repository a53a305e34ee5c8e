// Package session drives one candidate's interview from start to finish:
// it invokes the selector and evaluator each turn, updates arm beliefs, and
// enforces the lifecycle state machine.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/interview-engine/internal/types"
)

// pending tracks a question handed out and awaiting its answer. No locks
// are held while the candidate thinks; the pending marker is all the state
// that survives the suspension.
type pending struct {
	question types.Question
	askedAt  time.Time
}

// Session is one candidate's interview attempt. All mutation happens under
// mu: the per-turn algorithm is not reentrant-safe, so racing calls into
// the same session serialize here.
type Session struct {
	mu sync.Mutex

	id          uuid.UUID
	candidateID string
	state       types.SessionState
	createdAt   time.Time
	startedAt   *time.Time
	endedAt     *time.Time
	config      Config

	turns         []types.Turn
	usedQuestions map[string]bool
	armPresented  map[types.ArmID]int
	rotation      map[types.ArmID]int
	waiting       *pending
}

func newSession(candidateID string, cfg Config, now time.Time) *Session {
	return &Session{
		id:            uuid.New(),
		candidateID:   candidateID,
		state:         types.StateCreated,
		createdAt:     now,
		config:        cfg,
		usedQuestions: make(map[string]bool),
		armPresented:  make(map[types.ArmID]int),
		rotation:      make(map[types.ArmID]int),
	}
}

// ID returns the session identifier
func (s *Session) ID() uuid.UUID {
	return s.id
}

// snapshot copies the externally visible state. Callers must hold s.mu.
func (s *Session) snapshotLocked() types.SessionSnapshot {
	turns := make([]types.Turn, len(s.turns))
	copy(turns, s.turns)
	return types.SessionSnapshot{
		ID:          s.id,
		CandidateID: s.candidateID,
		State:       s.state,
		CreatedAt:   s.createdAt,
		StartedAt:   s.startedAt,
		EndedAt:     s.endedAt,
		Turns:       turns,
		MaxTurns:    s.config.MaxTurns,
	}
}

// Snapshot returns an immutable copy of the session's visible state.
func (s *Session) Snapshot() types.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// terminate moves the session into a terminal state. Callers hold s.mu.
func (s *Session) terminateLocked(state types.SessionState, now time.Time) {
	s.state = state
	ended := now
	s.endedAt = &ended
	s.waiting = nil
}

// gradedScores returns the scores of graded turns in chronological order.
// Callers hold s.mu.
func (s *Session) gradedScoresLocked() []float64 {
	var scores []float64
	for _, t := range s.turns {
		if t.Score != nil {
			scores = append(scores, *t.Score)
		}
	}
	return scores
}
