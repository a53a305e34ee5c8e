// Package types provides type definitions for structured data used throughout the interview-engine system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Category identifies a question category (e.g. "algorithms", "system_design")
type Category string

// Question categories shipped in the embedded bank
const (
	CategoryAlgorithms   Category = "algorithms"
	CategorySystemDesign Category = "system_design"
	CategoryBehavioral   Category = "behavioral"
	CategoryCulturalFit  Category = "cultural_fit"
)

// Difficulty identifies the difficulty level of a question
type Difficulty string

// Difficulty levels, ordered from easiest to hardest
const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
	DifficultyExpert       Difficulty = "expert"
)

// ArmID identifies one bandit arm: a (category, difficulty) combination
type ArmID struct {
	Category   Category   `json:"category"`
	Difficulty Difficulty `json:"difficulty"`
}

// String returns the canonical "category/difficulty" form, used for
// ordering and storage keys.
func (a ArmID) String() string {
	return fmt.Sprintf("%s/%s", a.Category, a.Difficulty)
}

// Belief holds a point-in-time view of one arm's Beta-distribution belief
type Belief struct {
	Alpha          float64 `json:"alpha"`
	Beta           float64 `json:"beta"`
	TimesPresented int     `json:"times_presented"`
}

// Mean returns the expected success rate implied by the belief
func (b Belief) Mean() float64 {
	return b.Alpha / (b.Alpha + b.Beta)
}

// Question represents one immutable question in the bank
type Question struct {
	ID         string     `json:"id"`
	Prompt     string     `json:"prompt"`
	Category   Category   `json:"category"`
	Difficulty Difficulty `json:"difficulty"`
	RubricRef  string     `json:"rubric_ref"` // opaque; passed through to the judgment capability
}

// Arm returns the arm this question belongs to
func (q Question) Arm() ArmID {
	return ArmID{Category: q.Category, Difficulty: q.Difficulty}
}

// Answer represents a candidate's response to one question
type Answer struct {
	Transcript    string     `json:"transcript"`
	Correctness   float64    `json:"correctness"`        // [0,1] from the judgment capability
	Delivery      *float64   `json:"delivery,omitempty"` // [0,1] from audio analysis; nil when unavailable
	Sentiment     *float64   `json:"sentiment,omitempty"`
	WordTimes     []WordTime `json:"word_times,omitempty"`
	AudioDuration float64    `json:"audio_duration,omitempty"` // seconds
	ReceivedAt    time.Time  `json:"received_at"`
}

// WordTime is one timestamped word from the transcription capability
type WordTime struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Turn pairs one question with its answer and the fused score
type Turn struct {
	ID         uuid.UUID `json:"id"`
	QuestionID string    `json:"question_id"`
	Arm        ArmID     `json:"arm"`
	Answer     Answer    `json:"answer"`
	Score      *float64  `json:"score,omitempty"` // nil when the turn went ungraded
	Confidence float64   `json:"confidence"`
	AskedAt    time.Time `json:"asked_at"`
}

// Graded reports whether the turn received a fused score
func (t Turn) Graded() bool {
	return t.Score != nil
}

// SessionState is the lifecycle state of an interview session
type SessionState string

// Session lifecycle states. Completed and Aborted are terminal.
const (
	StateCreated    SessionState = "created"
	StateInProgress SessionState = "in_progress"
	StateCompleted  SessionState = "completed"
	StateAborted    SessionState = "aborted"
)

// Terminal reports whether no further transitions are permitted
func (s SessionState) Terminal() bool {
	return s == StateCompleted || s == StateAborted
}

// Report is the derived, read-only summary of a finished session
type Report struct {
	SessionID      uuid.UUID            `json:"session_id"`
	CandidateID    string               `json:"candidate_id"`
	GeneratedAt    time.Time            `json:"generated_at"`
	TotalTurns     int                  `json:"total_turns"`
	GradedTurns    int                  `json:"graded_turns"`
	AggregateScore float64              `json:"aggregate_score"`
	ByCategory     map[Category]float64 `json:"by_category"`
	Trend          []TrendPoint         `json:"trend"`
	TrendLabel     string               `json:"trend_label"` // improving, stable, declining
	Recommendation string               `json:"recommendation"`
	Strengths      []string             `json:"strengths"`
	Weaknesses     []string             `json:"weaknesses"`
	Suggestions    []string             `json:"suggestions"`
}

// TrendPoint is one graded turn's score in chronological order
type TrendPoint struct {
	TurnIndex int     `json:"turn_index"`
	Score     float64 `json:"score"`
}
