package observability

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jonathan/interview-engine/internal/types"
)

func score(v float64) *float64 { return &v }

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintReport(&types.Report{
		SessionID:      uuid.New(),
		TotalTurns:     5,
		GradedTurns:    4,
		AggregateScore: 0.72,
		TrendLabel:     "improving",
		Recommendation: "hire",
		ByCategory: map[types.Category]float64{
			types.CategoryAlgorithms: 0.8,
			types.CategoryBehavioral: 0.64,
		},
		Strengths:  []string{"strong in algorithms"},
		Weaknesses: []string{"uneven in behavioral"},
	})

	out := buf.String()
	assert.Contains(t, out, "INTERVIEW REPORT")
	assert.Contains(t, out, "0.72")
	assert.Contains(t, out, "improving")
	assert.Contains(t, out, "algorithms")
	assert.Contains(t, out, "strong in algorithms")
}

func TestPrintReport_NilIsSilent(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintReport(nil)
	assert.Empty(t, buf.String())
}

func TestPrintTurns_TruncatesLongHistories(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	turns := make([]types.Turn, 8)
	for i := range turns {
		turns[i] = types.Turn{
			QuestionID: "q",
			Arm:        types.ArmID{Category: types.CategoryAlgorithms, Difficulty: types.DifficultyIntermediate},
			Score:      score(0.5),
			Confidence: 1,
		}
	}
	p.PrintTurns(turns)

	out := buf.String()
	assert.Contains(t, out, "TURN HISTORY")
	assert.Contains(t, out, "... and 3 more turns")
}

func TestPrintTurns_UngradedMarked(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintTurns([]types.Turn{{QuestionID: "q1"}})
	assert.Contains(t, buf.String(), "ungraded")
}

func TestPrintArmBeliefs_SortedByMean(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintArmBeliefs(map[string]types.Belief{
		"behavioral/intermediate": {Alpha: 1, Beta: 3},
		"algorithms/intermediate": {Alpha: 3, Beta: 1},
	})

	out := buf.String()
	assert.Contains(t, out, "ARM BELIEFS")
	algorithms := bytes.Index(buf.Bytes(), []byte("algorithms"))
	behavioral := bytes.Index(buf.Bytes(), []byte("behavioral"))
	assert.Less(t, algorithms, behavioral, "higher mean prints first")
}
