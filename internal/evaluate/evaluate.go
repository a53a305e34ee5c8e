// Package evaluate fuses per-answer signals into a single normalized score
// with a confidence weight. All randomness lives in the selector; evaluation
// of identical inputs always yields identical results.
package evaluate

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/interview-engine/internal/judge"
	"github.com/jonathan/interview-engine/internal/types"
)

// Weights controls how the content and delivery signals combine. The split
// is a calibration choice, not a contract; adjust it through configuration.
type Weights struct {
	Content  float64 `json:"content"`
	Delivery float64 `json:"delivery"`
}

// DefaultWeights is the shipped calibration: content-correctness dominates.
var DefaultWeights = Weights{Content: 0.7, Delivery: 0.3}

// Validate checks the weights form a proper convex combination.
func (w Weights) Validate() error {
	if w.Content < 0 || w.Delivery < 0 {
		return fmt.Errorf("fusion weights must be non-negative")
	}
	sum := w.Content + w.Delivery
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("fusion weights must sum to 1.0, got %.3f", sum)
	}
	return nil
}

// Result is the fused outcome for one answer
type Result struct {
	Score      float64         // [0,1]
	Confidence float64         // [0,1]
	Judgment   *judge.Judgment // nil for the empty-transcript non-answer
}

// Evaluator turns one answer into a fused score plus confidence
type Evaluator struct {
	judge   judge.Judge
	weights Weights
}

// NewEvaluator creates an evaluator with the given judge and weights.
func NewEvaluator(j judge.Judge, weights Weights) (*Evaluator, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &Evaluator{judge: j, weights: weights}, nil
}

// Evaluate scores a transcript for a question, fusing the judge's
// content-correctness with the optional delivery signal.
//
// An empty transcript is a non-answer: forced score 0 with confidence 1.0
// (the absence of an answer is certain, not uncertain) and no judge call.
// Judge failures are wrapped in *EvaluationUnavailableError.
func (e *Evaluator) Evaluate(ctx context.Context, question types.Question, transcript string, delivery *float64) (Result, error) {
	if strings.TrimSpace(transcript) == "" {
		return Result{Score: 0, Confidence: 1.0}, nil
	}

	jd, err := e.judge.Judge(ctx, question, transcript)
	if err != nil {
		return Result{}, &EvaluationUnavailableError{Cause: err}
	}

	score, confidence := e.fuse(jd.Correctness, delivery)
	return Result{Score: score, Confidence: confidence, Judgment: jd}, nil
}

// fuse combines content and delivery scores. When the delivery signal is
// absent its weight is redistributed to content, and confidence drops to
// the content weight share to reflect the reduced signal coverage.
func (e *Evaluator) fuse(correctness float64, delivery *float64) (score, confidence float64) {
	if delivery == nil {
		return clamp01(correctness), e.weights.Content
	}
	score = e.weights.Content*correctness + e.weights.Delivery*clamp01(*delivery)
	return clamp01(score), 1.0
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
