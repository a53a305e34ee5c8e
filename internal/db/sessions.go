package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/interview-engine/internal/types"
)

// SessionRow mirrors one row of the sessions table
type SessionRow struct {
	ID          uuid.UUID
	CandidateID string
	State       string
	MaxTurns    int
	CreatedAt   time.Time
	StartedAt   *time.Time
	EndedAt     *time.Time
}

// CreateSession inserts a new session record
func (db *DB) CreateSession(ctx context.Context, snap types.SessionSnapshot) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO sessions (id, candidate_id, state, max_turns, created_at, started_at, ended_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		snap.ID, snap.CandidateID, string(snap.State), snap.MaxTurns, snap.CreatedAt, snap.StartedAt, snap.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// UpdateSessionState records a state transition
func (db *DB) UpdateSessionState(ctx context.Context, id uuid.UUID, state types.SessionState, startedAt, endedAt *time.Time) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE sessions SET state = $1, started_at = $2, ended_at = $3 WHERE id = $4`,
		string(state), startedAt, endedAt, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update session state: %w", err)
	}
	return nil
}

// AppendTurn appends one turn to a session's history. Turn history is
// append-only; turn_index comes from the current row count.
func (db *DB) AppendTurn(ctx context.Context, sessionID uuid.UUID, turn types.Turn) error {
	answerJSON, err := json.Marshal(turn.Answer)
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO turns (id, session_id, turn_index, question_id, category, difficulty, answer, score, confidence, asked_at)
		 VALUES ($1, $2,
		         (SELECT COUNT(*) FROM turns WHERE session_id = $2),
		         $3, $4, $5, $6, $7, $8, $9)`,
		turn.ID, sessionID, turn.QuestionID,
		string(turn.Arm.Category), string(turn.Arm.Difficulty),
		answerJSON, turn.Score, turn.Confidence, turn.AskedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append turn: %w", err)
	}
	return nil
}

// SaveArmBelief upserts the current posterior for one arm
func (db *DB) SaveArmBelief(ctx context.Context, arm types.ArmID, belief types.Belief) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO arm_beliefs (category, difficulty, alpha, beta, times_presented, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW())
		 ON CONFLICT (category, difficulty)
		 DO UPDATE SET alpha = $3, beta = $4, times_presented = $5, updated_at = NOW()`,
		string(arm.Category), string(arm.Difficulty),
		belief.Alpha, belief.Beta, belief.TimesPresented,
	)
	if err != nil {
		return fmt.Errorf("failed to save arm belief: %w", err)
	}
	return nil
}

// LoadArmBeliefs reads every persisted arm posterior, for warm-starting
// the registry across restarts.
func (db *DB) LoadArmBeliefs(ctx context.Context) (map[types.ArmID]types.Belief, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT category, difficulty, alpha, beta, times_presented FROM arm_beliefs`)
	if err != nil {
		return nil, fmt.Errorf("failed to load arm beliefs: %w", err)
	}
	defer rows.Close()

	out := make(map[types.ArmID]types.Belief)
	for rows.Next() {
		var (
			category, difficulty string
			belief               types.Belief
		)
		if err := rows.Scan(&category, &difficulty, &belief.Alpha, &belief.Beta, &belief.TimesPresented); err != nil {
			return nil, fmt.Errorf("failed to scan arm belief: %w", err)
		}
		arm := types.ArmID{Category: types.Category(category), Difficulty: types.Difficulty(difficulty)}
		out[arm] = belief
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read arm beliefs: %w", err)
	}
	return out, nil
}

// GetSession loads one session row
func (db *DB) GetSession(ctx context.Context, id uuid.UUID) (*SessionRow, error) {
	var row SessionRow
	err := db.pool.QueryRow(ctx,
		`SELECT id, candidate_id, state, max_turns, created_at, started_at, ended_at
		 FROM sessions WHERE id = $1`,
		id,
	).Scan(&row.ID, &row.CandidateID, &row.State, &row.MaxTurns, &row.CreatedAt, &row.StartedAt, &row.EndedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &row, nil
}

// GetTurns loads a session's turn history in ask order
func (db *DB) GetTurns(ctx context.Context, sessionID uuid.UUID) ([]types.Turn, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, question_id, category, difficulty, answer, score, confidence, asked_at
		 FROM turns WHERE session_id = $1 ORDER BY turn_index`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get turns: %w", err)
	}
	defer rows.Close()

	var turns []types.Turn
	for rows.Next() {
		var (
			turn       types.Turn
			category   string
			difficulty string
			answerJSON []byte
		)
		if err := rows.Scan(&turn.ID, &turn.QuestionID, &category, &difficulty, &answerJSON, &turn.Score, &turn.Confidence, &turn.AskedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		if err := json.Unmarshal(answerJSON, &turn.Answer); err != nil {
			return nil, fmt.Errorf("failed to unmarshal answer: %w", err)
		}
		turn.Arm = types.ArmID{Category: types.Category(category), Difficulty: types.Difficulty(difficulty)}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read turns: %w", err)
	}
	return turns, nil
}
