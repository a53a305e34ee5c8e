package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArmID_String(t *testing.T) {
	arm := ArmID{Category: CategorySystemDesign, Difficulty: DifficultyAdvanced}
	assert.Equal(t, "system_design/advanced", arm.String())
}

func TestBelief_Mean(t *testing.T) {
	assert.InDelta(t, 0.5, Belief{Alpha: 1, Beta: 1}.Mean(), 1e-9)
	assert.InDelta(t, 0.75, Belief{Alpha: 3, Beta: 1}.Mean(), 1e-9)
}

func TestSessionState_Terminal(t *testing.T) {
	assert.False(t, StateCreated.Terminal())
	assert.False(t, StateInProgress.Terminal())
	assert.True(t, StateCompleted.Terminal())
	assert.True(t, StateAborted.Terminal())
}

func TestTurn_Graded(t *testing.T) {
	assert.False(t, Turn{}.Graded())
	s := 0.4
	assert.True(t, Turn{Score: &s}.Graded())
}

func TestQuestion_Arm(t *testing.T) {
	q := Question{Category: CategoryBehavioral, Difficulty: DifficultyBeginner}
	assert.Equal(t, ArmID{Category: CategoryBehavioral, Difficulty: DifficultyBeginner}, q.Arm())
}
