// Package judge implements the content-judgment capability: an LLM-as-judge
// call that scores one transcript against a question's rubric.
package judge

import (
	"context"
	"encoding/json"

	"github.com/jonathan/interview-engine/internal/llm"
	"github.com/jonathan/interview-engine/internal/prompts"
	"github.com/jonathan/interview-engine/internal/schemas"
	"github.com/jonathan/interview-engine/internal/types"
)

// Judgment is the structured result of judging one answer
type Judgment struct {
	Correctness float64 `json:"correctness"` // [0,1]
	Confidence  float64 `json:"confidence"`  // [0,1]
	Reasoning   string  `json:"reasoning"`
}

// Judge scores a transcript against a question's rubric. Implementations
// must be deterministic for identical inputs up to the provider's own
// temperature; the engine treats any error as a transient capability outage.
type Judge interface {
	Judge(ctx context.Context, question types.Question, transcript string) (*Judgment, error)
}

// LLMJudge implements Judge using the Gemini client
type LLMJudge struct {
	client llm.Client
	tier   llm.ModelTier
}

// NewLLMJudge creates a judge backed by the given LLM client
func NewLLMJudge(client llm.Client) *LLMJudge {
	return &LLMJudge{client: client, tier: llm.TierLite}
}

// Judge asks the model for a structured judgment and validates the response
// against the embedded schema before trusting it.
func (j *LLMJudge) Judge(ctx context.Context, question types.Question, transcript string) (*Judgment, error) {
	template := prompts.MustGet("judge.json", "judge-answer")
	prompt := prompts.Format(template, map[string]string{
		"Question":   question.Prompt,
		"Rubric":     question.RubricRef,
		"Transcript": transcript,
	})

	raw, err := j.client.GenerateJSON(ctx, prompt, j.tier)
	if err != nil {
		return nil, &APICallError{Message: "generate judgment", Cause: err}
	}

	return parseJudgment([]byte(llm.CleanJSONBlock(raw)))
}

// parseJudgment validates and decodes a raw judge response, clamping scores
// into [0,1].
func parseJudgment(raw []byte) (*Judgment, error) {
	if err := schemas.Validate(raw, judgmentSchema); err != nil {
		return nil, &ParseError{Message: "response does not match judgment schema", Cause: err}
	}

	var jd Judgment
	if err := json.Unmarshal(raw, &jd); err != nil {
		return nil, &ParseError{Message: "response is not valid JSON", Cause: err}
	}

	jd.Correctness = clamp01(jd.Correctness)
	if jd.Confidence == 0 {
		jd.Confidence = 1.0 // absent confidence means the judge did not hedge
	}
	jd.Confidence = clamp01(jd.Confidence)
	return &jd, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
