package arms

import (
	"sync"
	"testing"

	"github.com/jonathan/interview-engine/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bankFixture() []types.Question {
	return []types.Question{
		{ID: "alg_easy_1", Prompt: "Reverse a linked list.", Category: types.CategoryAlgorithms, Difficulty: types.DifficultyBeginner, RubricRef: "rubric:alg_easy_1"},
		{ID: "alg_easy_2", Prompt: "Find duplicates in a slice.", Category: types.CategoryAlgorithms, Difficulty: types.DifficultyBeginner, RubricRef: "rubric:alg_easy_2"},
		{ID: "alg_hard_1", Prompt: "Design an LRU cache.", Category: types.CategoryAlgorithms, Difficulty: types.DifficultyAdvanced, RubricRef: "rubric:alg_hard_1"},
		{ID: "behav_1", Prompt: "Tell me about a conflict on your team.", Category: types.CategoryBehavioral, Difficulty: types.DifficultyIntermediate, RubricRef: "rubric:behav_1"},
	}
}

func TestNewRegistry_DerivesArmsFromCatalog(t *testing.T) {
	r := NewRegistry(bankFixture(), nil)

	arms := r.Arms()
	require.Len(t, arms, 3)
	// Lexical order by "category/difficulty"
	assert.Equal(t, "algorithms/advanced", arms[0].String())
	assert.Equal(t, "algorithms/beginner", arms[1].String())
	assert.Equal(t, "behavioral/intermediate", arms[2].String())
}

func TestNewRegistry_PriorOverrides(t *testing.T) {
	arm := types.ArmID{Category: types.CategoryAlgorithms, Difficulty: types.DifficultyBeginner}
	r := NewRegistry(bankFixture(), map[types.ArmID]Prior{
		arm: {Alpha: 3, Beta: 1},
	})

	b, err := r.Snapshot(arm)
	require.NoError(t, err)
	assert.Equal(t, 3.0, b.Alpha)
	assert.Equal(t, 1.0, b.Beta)
}

func TestNewRegistry_ImproperPriorRaisedToFloor(t *testing.T) {
	arm := types.ArmID{Category: types.CategoryBehavioral, Difficulty: types.DifficultyIntermediate}
	r := NewRegistry(bankFixture(), map[types.ArmID]Prior{
		arm: {Alpha: 0, Beta: -2},
	})

	b, err := r.Snapshot(arm)
	require.NoError(t, err)
	assert.Equal(t, 1.0, b.Alpha)
	assert.Equal(t, 1.0, b.Beta)
}

func TestQuestionsFor_UnknownArm(t *testing.T) {
	r := NewRegistry(bankFixture(), nil)

	_, err := r.QuestionsFor(types.ArmID{Category: "quantum", Difficulty: types.DifficultyExpert})
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "arm", notFound.Kind)
}

func TestUpdate_FractionalCredit(t *testing.T) {
	r := NewRegistry(bankFixture(), nil)
	arm := types.ArmID{Category: types.CategoryAlgorithms, Difficulty: types.DifficultyBeginner}

	require.NoError(t, r.Update(arm, 0.75))

	b, err := r.Snapshot(arm)
	require.NoError(t, err)
	assert.InDelta(t, 1.75, b.Alpha, 1e-9)
	assert.InDelta(t, 1.25, b.Beta, 1e-9)
}

func TestUpdate_ClampsOutOfRangeSuccess(t *testing.T) {
	r := NewRegistry(bankFixture(), nil)
	arm := types.ArmID{Category: types.CategoryAlgorithms, Difficulty: types.DifficultyBeginner}

	require.NoError(t, r.Update(arm, -0.5))
	require.NoError(t, r.Update(arm, 1.5))

	b, err := r.Snapshot(arm)
	require.NoError(t, err)
	// -0.5 clamps to 0 (beta +1), 1.5 clamps to 1 (alpha +1)
	assert.InDelta(t, 2.0, b.Alpha, 1e-9)
	assert.InDelta(t, 2.0, b.Beta, 1e-9)
	assert.GreaterOrEqual(t, b.Alpha, 1.0)
	assert.GreaterOrEqual(t, b.Beta, 1.0)
}

func TestUpdate_ConcurrentSessionsLoseNothing(t *testing.T) {
	r := NewRegistry(bankFixture(), nil)
	arm := types.ArmID{Category: types.CategoryAlgorithms, Difficulty: types.DifficultyBeginner}

	const workers = 8
	const updatesPerWorker = 250

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < updatesPerWorker; i++ {
				_ = r.Update(arm, 0.5)
			}
		}()
	}
	wg.Wait()

	b, err := r.Snapshot(arm)
	require.NoError(t, err)
	total := float64(workers * updatesPerWorker)
	assert.InDelta(t, 1+total*0.5, b.Alpha, 1e-6)
	assert.InDelta(t, 1+total*0.5, b.Beta, 1e-6)
}

func TestRecordPresented(t *testing.T) {
	r := NewRegistry(bankFixture(), nil)
	arm := types.ArmID{Category: types.CategoryBehavioral, Difficulty: types.DifficultyIntermediate}

	require.NoError(t, r.RecordPresented(arm))
	require.NoError(t, r.RecordPresented(arm))

	b, err := r.Snapshot(arm)
	require.NoError(t, err)
	assert.Equal(t, 2, b.TimesPresented)
}

func TestQuestion_Lookup(t *testing.T) {
	r := NewRegistry(bankFixture(), nil)

	q, err := r.Question("alg_hard_1")
	require.NoError(t, err)
	assert.Equal(t, types.DifficultyAdvanced, q.Difficulty)

	_, err = r.Question("missing")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "question", notFound.Kind)
}

func TestRestore_FloorsPersistedBelief(t *testing.T) {
	r := NewRegistry(bankFixture(), nil)
	arm := types.ArmID{Category: types.CategoryAlgorithms, Difficulty: types.DifficultyAdvanced}

	require.NoError(t, r.Restore(arm, types.Belief{Alpha: 0.2, Beta: 6, TimesPresented: 4}))

	b, err := r.Snapshot(arm)
	require.NoError(t, err)
	assert.Equal(t, 1.0, b.Alpha)
	assert.Equal(t, 6.0, b.Beta)
	assert.Equal(t, 4, b.TimesPresented)
}
