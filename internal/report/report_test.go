package report

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/interview-engine/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func score(v float64) *float64 { return &v }

func turn(category types.Category, s *float64) types.Turn {
	return types.Turn{
		ID:         uuid.New(),
		Arm:        types.ArmID{Category: category, Difficulty: types.DifficultyIntermediate},
		Score:      s,
		Confidence: 1,
	}
}

func finishedSession(turns ...types.Turn) types.SessionSnapshot {
	return types.SessionSnapshot{
		ID:          uuid.New(),
		CandidateID: "cand-1",
		State:       types.StateCompleted,
		Turns:       turns,
		MaxTurns:    10,
	}
}

func TestAggregate_RejectsUnfinishedSession(t *testing.T) {
	snap := finishedSession()
	snap.State = types.StateInProgress

	_, err := Aggregate(snap, DefaultConfig())
	var ise *InvalidStateError
	require.ErrorAs(t, err, &ise)
}

func TestAggregate_AbortedSessionIsReportable(t *testing.T) {
	snap := finishedSession(turn(types.CategoryAlgorithms, score(0.5)))
	snap.State = types.StateAborted

	r, err := Aggregate(snap, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 1, r.GradedTurns)
}

func TestAggregate_MeanExcludesUngradedTurns(t *testing.T) {
	snap := finishedSession(
		turn(types.CategoryAlgorithms, score(0.8)),
		turn(types.CategoryAlgorithms, nil), // ungraded
		turn(types.CategoryBehavioral, score(0.4)),
	)

	r, err := Aggregate(snap, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 3, r.TotalTurns)
	assert.Equal(t, 2, r.GradedTurns)
	assert.InDelta(t, 0.6, r.AggregateScore, 1e-9)
}

func TestAggregate_PerCategoryBreakdown(t *testing.T) {
	snap := finishedSession(
		turn(types.CategoryAlgorithms, score(0.9)),
		turn(types.CategoryAlgorithms, score(0.7)),
		turn(types.CategoryBehavioral, score(0.3)),
	)

	r, err := Aggregate(snap, DefaultConfig())
	require.NoError(t, err)
	assert.InDelta(t, 0.8, r.ByCategory[types.CategoryAlgorithms], 1e-9)
	assert.InDelta(t, 0.3, r.ByCategory[types.CategoryBehavioral], 1e-9)
}

func TestAggregate_TrendChronological(t *testing.T) {
	snap := finishedSession(
		turn(types.CategoryAlgorithms, score(0.2)),
		turn(types.CategoryAlgorithms, score(0.5)),
		turn(types.CategoryAlgorithms, score(0.8)),
	)

	r, err := Aggregate(snap, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, r.Trend, 3)
	assert.Equal(t, 0, r.Trend[0].TurnIndex)
	assert.Equal(t, TrendImproving, r.TrendLabel)
}

func TestAggregate_DecliningTrend(t *testing.T) {
	snap := finishedSession(
		turn(types.CategoryAlgorithms, score(0.9)),
		turn(types.CategoryAlgorithms, score(0.5)),
		turn(types.CategoryAlgorithms, score(0.1)),
	)

	r, err := Aggregate(snap, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, TrendDeclining, r.TrendLabel)
}

func TestAggregate_ShortHistoryIsStable(t *testing.T) {
	snap := finishedSession(
		turn(types.CategoryAlgorithms, score(0.1)),
		turn(types.CategoryAlgorithms, score(0.9)),
	)

	r, err := Aggregate(snap, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, TrendStable, r.TrendLabel)
}

func TestAggregate_RecommendationBuckets(t *testing.T) {
	cfg := DefaultConfig()

	low, err := Aggregate(finishedSession(turn(types.CategoryAlgorithms, score(0.2))), cfg)
	require.NoError(t, err)
	assert.Equal(t, RecommendationLow, low.Recommendation)

	medium, err := Aggregate(finishedSession(turn(types.CategoryAlgorithms, score(0.5))), cfg)
	require.NoError(t, err)
	assert.Equal(t, RecommendationMedium, medium.Recommendation)

	high, err := Aggregate(finishedSession(turn(types.CategoryAlgorithms, score(0.9))), cfg)
	require.NoError(t, err)
	assert.Equal(t, RecommendationHigh, high.Recommendation)
}

func TestAggregate_ZeroGradedTurns(t *testing.T) {
	snap := finishedSession(turn(types.CategoryAlgorithms, nil))

	r, err := Aggregate(snap, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 0, r.GradedTurns)
	assert.Equal(t, 0.0, r.AggregateScore)
	assert.Equal(t, RecommendationLow, r.Recommendation)
	assert.NotEmpty(t, r.Suggestions)
}

func TestAggregate_StrengthsAndWeaknesses(t *testing.T) {
	snap := finishedSession(
		turn(types.CategoryAlgorithms, score(0.9)),
		turn(types.CategoryBehavioral, score(0.2)),
	)

	r, err := Aggregate(snap, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, r.Strengths, 1)
	assert.Contains(t, r.Strengths[0], "algorithms")
	require.Len(t, r.Weaknesses, 1)
	assert.Contains(t, r.Weaknesses[0], "behavioral")
}

func TestStdDev(t *testing.T) {
	assert.InDelta(t, 0.0, StdDev([]float64{0.5, 0.5, 0.5}), 1e-9)
	assert.InDelta(t, 0.5, StdDev([]float64{0, 1}), 1e-9)
	assert.Equal(t, 0.0, StdDev(nil))
}

func TestMean(t *testing.T) {
	assert.InDelta(t, 0.5, Mean([]float64{0.2, 0.8}), 1e-9)
	assert.Equal(t, 0.0, Mean(nil))
}
