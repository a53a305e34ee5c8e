package judge

import (
	"context"
	"fmt"
	"testing"

	"github.com/jonathan/interview-engine/internal/llm"
	"github.com/jonathan/interview-engine/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient returns a canned response or error
type fakeClient struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeClient) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func (f *fakeClient) Close() error { return nil }

func question() types.Question {
	return types.Question{
		ID:         "alg_int_2",
		Prompt:     "Describe how a hash map handles collisions.",
		Category:   types.CategoryAlgorithms,
		Difficulty: types.DifficultyIntermediate,
		RubricRef:  "rubric:alg_int_2:chaining,open addressing",
	}
}

func TestJudge_ParsesValidResponse(t *testing.T) {
	client := &fakeClient{response: `{"correctness": 0.85, "confidence": 0.9, "reasoning": "covers chaining"}`}
	j := NewLLMJudge(client)

	jd, err := j.Judge(context.Background(), question(), "Collisions are handled by chaining...")
	require.NoError(t, err)
	assert.InDelta(t, 0.85, jd.Correctness, 1e-9)
	assert.InDelta(t, 0.9, jd.Confidence, 1e-9)
	assert.Equal(t, "covers chaining", jd.Reasoning)
}

func TestJudge_PromptCarriesRubricAndTranscript(t *testing.T) {
	client := &fakeClient{response: `{"correctness": 0.5}`}
	j := NewLLMJudge(client)

	_, err := j.Judge(context.Background(), question(), "my answer text")
	require.NoError(t, err)
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "rubric:alg_int_2")
	assert.Contains(t, client.prompts[0], "my answer text")
	assert.Contains(t, client.prompts[0], "hash map")
}

func TestJudge_APIFailure(t *testing.T) {
	client := &fakeClient{err: fmt.Errorf("connection refused")}
	j := NewLLMJudge(client)

	_, err := j.Judge(context.Background(), question(), "answer")
	var apiErr *APICallError
	require.ErrorAs(t, err, &apiErr)
}

func TestJudge_RejectsNonConformingJSON(t *testing.T) {
	client := &fakeClient{response: `{"reasoning": "no score field"}`}
	j := NewLLMJudge(client)

	_, err := j.Judge(context.Background(), question(), "answer")
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestJudge_StripsMarkdownFence(t *testing.T) {
	client := &fakeClient{response: "```json\n{\"correctness\": 0.4}\n```"}
	j := NewLLMJudge(client)

	jd, err := j.Judge(context.Background(), question(), "answer")
	require.NoError(t, err)
	assert.InDelta(t, 0.4, jd.Correctness, 1e-9)
}

func TestParseJudgment_ClampsScores(t *testing.T) {
	jd, err := parseJudgment([]byte(`{"correctness": 1.7, "confidence": -0.3}`))
	require.NoError(t, err)
	assert.Equal(t, 1.0, jd.Correctness)
	assert.Equal(t, 0.0, jd.Confidence)
}

func TestParseJudgment_DefaultsMissingConfidence(t *testing.T) {
	jd, err := parseJudgment([]byte(`{"correctness": 0.6}`))
	require.NoError(t, err)
	assert.Equal(t, 1.0, jd.Confidence)
}
