// Package report computes the read-only performance summary of a finished
// session. A report is a pure function of the turn history and can be
// recomputed at any time.
package report

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/interview-engine/internal/types"
)

// Config holds the recommendation thresholds and trend bands. These are
// calibration values, not product constants.
type Config struct {
	// MediumFloor and HighFloor split the aggregate score into
	// low / medium / high recommendation buckets
	MediumFloor float64 `json:"medium_floor"`
	HighFloor   float64 `json:"high_floor"`
	// TrendSlopeBand is the regression-slope magnitude below which the
	// performance trend is labeled stable
	TrendSlopeBand float64 `json:"trend_slope_band"`
	// CategoryStrength and CategoryWeakness are the per-category mean
	// cutoffs for the strengths and weaknesses lists
	CategoryStrength float64 `json:"category_strength"`
	CategoryWeakness float64 `json:"category_weakness"`
}

// DefaultConfig returns the shipped thresholds.
func DefaultConfig() Config {
	return Config{
		MediumFloor:      0.45,
		HighFloor:        0.70,
		TrendSlopeBand:   0.05,
		CategoryStrength: 0.75,
		CategoryWeakness: 0.5,
	}
}

// Recommendation buckets
const (
	RecommendationLow    = "low"
	RecommendationMedium = "medium"
	RecommendationHigh   = "high"
)

// Trend labels
const (
	TrendImproving = "improving"
	TrendStable    = "stable"
	TrendDeclining = "declining"
)

// InvalidStateError indicates aggregation was requested for a session that
// has not finished.
type InvalidStateError struct {
	SessionID uuid.UUID
	State     types.SessionState
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot aggregate session %s in state %s", e.SessionID, e.State)
}

// Aggregate rolls one finished session's turns into a Report. Ungraded
// turns are excluded from every mean but counted for transparency.
func Aggregate(snap types.SessionSnapshot, cfg Config) (*types.Report, error) {
	if !snap.State.Terminal() {
		return nil, &InvalidStateError{SessionID: snap.ID, State: snap.State}
	}

	r := &types.Report{
		SessionID:   snap.ID,
		CandidateID: snap.CandidateID,
		GeneratedAt: time.Now().UTC(),
		TotalTurns:  len(snap.Turns),
		ByCategory:  make(map[types.Category]float64),
	}

	var (
		sum        float64
		byCategory = make(map[types.Category][]float64)
	)
	for i, turn := range snap.Turns {
		if !turn.Graded() {
			continue
		}
		score := *turn.Score
		r.GradedTurns++
		sum += score
		r.Trend = append(r.Trend, types.TrendPoint{TurnIndex: i, Score: score})
		byCategory[turn.Arm.Category] = append(byCategory[turn.Arm.Category], score)
	}

	if r.GradedTurns > 0 {
		r.AggregateScore = sum / float64(r.GradedTurns)
	}
	for category, scores := range byCategory {
		r.ByCategory[category] = mean(scores)
	}

	r.TrendLabel = trendLabel(r.Trend, cfg.TrendSlopeBand)
	r.Recommendation = recommendation(r.AggregateScore, r.GradedTurns, cfg)
	r.Strengths, r.Weaknesses = categorySignals(r.ByCategory, cfg)
	r.Suggestions = suggestions(r)
	return r, nil
}

// trendLabel fits a least-squares line through the graded scores and maps
// the slope to improving/stable/declining. Fewer than three points is
// always stable: too little data to claim a direction.
func trendLabel(trend []types.TrendPoint, band float64) string {
	if len(trend) < 3 {
		return TrendStable
	}

	n := float64(len(trend))
	var sumX, sumY, sumXY, sumXX float64
	for i, p := range trend {
		x := float64(i)
		sumX += x
		sumY += p.Score
		sumXY += x * p.Score
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return TrendStable
	}
	slope := (n*sumXY - sumX*sumY) / denom

	switch {
	case slope > band:
		return TrendImproving
	case slope < -band:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func recommendation(aggregate float64, graded int, cfg Config) string {
	if graded == 0 {
		return RecommendationLow
	}
	switch {
	case aggregate >= cfg.HighFloor:
		return RecommendationHigh
	case aggregate >= cfg.MediumFloor:
		return RecommendationMedium
	default:
		return RecommendationLow
	}
}

func categorySignals(byCategory map[types.Category]float64, cfg Config) (strengths, weaknesses []string) {
	for _, category := range orderedCategories(byCategory) {
		score := byCategory[category]
		if score >= cfg.CategoryStrength {
			strengths = append(strengths, fmt.Sprintf("Strong performance in %s (%.2f)", category, score))
		} else if score < cfg.CategoryWeakness {
			weaknesses = append(weaknesses, fmt.Sprintf("%s needs improvement (%.2f)", category, score))
		}
	}
	return strengths, weaknesses
}

func suggestions(r *types.Report) []string {
	var out []string
	for _, w := range r.Weaknesses {
		out = append(out, "Practice: "+w)
	}
	if r.TrendLabel == TrendDeclining {
		out = append(out, "Performance declined over the session; work on stamina and pacing")
	}
	if r.GradedTurns < r.TotalTurns {
		out = append(out, fmt.Sprintf("%d of %d turns went ungraded; consider re-running the session", r.TotalTurns-r.GradedTurns, r.TotalTurns))
	}
	if len(out) == 0 {
		out = append(out, "Keep practicing mock interviews to maintain performance")
	}
	return out
}

// orderedCategories returns map keys sorted lexically for deterministic output
func orderedCategories(m map[types.Category]float64) []types.Category {
	keys := make([]types.Category, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation. Exported for the
// engine's plateau detection.
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	var sq float64
	for _, v := range values {
		sq += (v - m) * (v - m)
	}
	return math.Sqrt(sq / float64(len(values)))
}

// Mean is the exported mean for the engine's poor-performance check.
func Mean(values []float64) float64 {
	return mean(values)
}
