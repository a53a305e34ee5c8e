package bandit

import (
	"math/rand"
	"testing"

	"github.com/jonathan/interview-engine/internal/arms"
	"github.com/jonathan/interview-engine/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	armEasy = types.ArmID{Category: types.CategoryAlgorithms, Difficulty: types.DifficultyBeginner}
	armHard = types.ArmID{Category: types.CategoryAlgorithms, Difficulty: types.DifficultyAdvanced}
)

// stubBeliefs serves fixed beliefs without a registry
type stubBeliefs map[types.ArmID]types.Belief

func (s stubBeliefs) Snapshot(arm types.ArmID) (types.Belief, error) {
	b, ok := s[arm]
	if !ok {
		return types.Belief{}, &arms.NotFoundError{Kind: "arm", Key: arm.String()}
	}
	return b, nil
}

func TestSelect_EmptyEligibleSet(t *testing.T) {
	s := NewSelector(stubBeliefs{}, rand.New(rand.NewSource(1)))

	_, err := s.Select(nil)
	var noArms *arms.NoEligibleArmsError
	require.ErrorAs(t, err, &noArms)
}

func TestSelect_UnknownArmPropagates(t *testing.T) {
	s := NewSelector(stubBeliefs{}, rand.New(rand.NewSource(1)))

	_, err := s.Select([]types.ArmID{armEasy})
	var notFound *arms.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestSelect_SingleArm(t *testing.T) {
	beliefs := stubBeliefs{armEasy: {Alpha: 1, Beta: 1}}
	s := NewSelector(beliefs, rand.New(rand.NewSource(7)))

	got, err := s.Select([]types.ArmID{armEasy})
	require.NoError(t, err)
	assert.Equal(t, armEasy, got)
}

// Scenario from the design: Beta(5,1) vs Beta(1,1), the stronger arm must
// win materially more than half of 1000 draws.
func TestSelect_StrongArmDominates(t *testing.T) {
	beliefs := stubBeliefs{
		armEasy: {Alpha: 1, Beta: 1},
		armHard: {Alpha: 5, Beta: 1},
	}
	s := NewSelector(beliefs, rand.New(rand.NewSource(42)))

	hardWins := 0
	for i := 0; i < 1000; i++ {
		got, err := s.Select([]types.ArmID{armEasy, armHard})
		require.NoError(t, err)
		if got == armHard {
			hardWins++
		}
	}
	assert.Greater(t, hardWins, 600, "Beta(5,1) arm should be chosen materially more than half the time, got %d/1000", hardWins)
}

// Starvation-freedom: a weak arm must still be explored occasionally.
func TestSelect_WeakArmNotStarved(t *testing.T) {
	beliefs := stubBeliefs{
		armEasy: {Alpha: 2, Beta: 6}, // weak
		armHard: {Alpha: 6, Beta: 2}, // strong
	}
	s := NewSelector(beliefs, rand.New(rand.NewSource(99)))

	weakWins := 0
	for i := 0; i < 2000; i++ {
		got, err := s.Select([]types.ArmID{armEasy, armHard})
		require.NoError(t, err)
		if got == armEasy {
			weakWins++
		}
	}
	assert.Greater(t, weakWins, 20, "weak arm must not be deterministically starved")
	assert.Less(t, weakWins, 1000, "weak arm must not dominate")
}

func TestSelect_NoBeliefMutation(t *testing.T) {
	beliefs := stubBeliefs{
		armEasy: {Alpha: 2, Beta: 3, TimesPresented: 4},
	}
	s := NewSelector(beliefs, rand.New(rand.NewSource(5)))

	for i := 0; i < 50; i++ {
		_, err := s.Select([]types.ArmID{armEasy})
		require.NoError(t, err)
	}
	assert.Equal(t, types.Belief{Alpha: 2, Beta: 3, TimesPresented: 4}, beliefs[armEasy])
}

func TestSelect_DeterministicWithSeed(t *testing.T) {
	beliefs := stubBeliefs{
		armEasy: {Alpha: 3, Beta: 2},
		armHard: {Alpha: 2, Beta: 3},
	}

	run := func() []types.ArmID {
		s := NewSelector(beliefs, rand.New(rand.NewSource(1234)))
		var picks []types.ArmID
		for i := 0; i < 20; i++ {
			got, err := s.Select([]types.ArmID{armEasy, armHard})
			require.NoError(t, err)
			picks = append(picks, got)
		}
		return picks
	}

	assert.Equal(t, run(), run(), "same seed must reproduce the same selection sequence")
}

func TestBetterTieBreak(t *testing.T) {
	lessPresented := types.Belief{TimesPresented: 1}
	morePresented := types.Belief{TimesPresented: 5}

	assert.True(t, betterTieBreak(armHard, lessPresented, armEasy, morePresented))
	assert.False(t, betterTieBreak(armHard, morePresented, armEasy, lessPresented))
	// Equal presentations: lexical order decides ("advanced" < "beginner")
	assert.True(t, betterTieBreak(armHard, lessPresented, armEasy, lessPresented))
}

func TestSampleBeta_InUnitInterval(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 1000; i++ {
		v := sampleBeta(rng, 0.5, 2.5)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestSampleBeta_MeanApproximatesExpectation(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	var sum float64
	const n = 20000
	for i := 0; i < n; i++ {
		sum += sampleBeta(rng, 4, 2)
	}
	// E[Beta(4,2)] = 4/6
	assert.InDelta(t, 4.0/6.0, sum/n, 0.01)
}
