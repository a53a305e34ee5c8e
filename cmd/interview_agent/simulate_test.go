package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-engine/internal/types"
)

func TestOfflineJudge_Deterministic(t *testing.T) {
	j := &offlineJudge{skill: 0.6}
	q := types.Question{ID: "q1"}

	first, err := j.Judge(context.Background(), q, "same answer")
	require.NoError(t, err)
	second, err := j.Judge(context.Background(), q, "same answer")
	require.NoError(t, err)
	assert.Equal(t, first.Correctness, second.Correctness)
}

func TestOfflineJudge_ScoresBounded(t *testing.T) {
	for _, skill := range []float64{0, 0.5, 1} {
		j := &offlineJudge{skill: skill}
		for _, transcript := range []string{"a", "b", "c", "long rambling answer"} {
			jd, err := j.Judge(context.Background(), types.Question{ID: "q"}, transcript)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, jd.Correctness, 0.0)
			assert.LessOrEqual(t, jd.Correctness, 1.0)
		}
	}
}

func TestOfflineJudge_TracksSkill(t *testing.T) {
	weak := &offlineJudge{skill: 0.1}
	strong := &offlineJudge{skill: 0.9}

	var weakSum, strongSum float64
	for i := 0; i < 50; i++ {
		q := types.Question{ID: string(rune('a' + i%26))}
		w, _ := weak.Judge(context.Background(), q, "answer")
		s, _ := strong.Judge(context.Background(), q, "answer")
		weakSum += w.Correctness
		strongSum += s.Correctness
	}
	assert.Greater(t, strongSum, weakSum)
}
