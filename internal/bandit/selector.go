package bandit

import (
	"math/rand"

	"github.com/jonathan/interview-engine/internal/arms"
	"github.com/jonathan/interview-engine/internal/types"
)

// BeliefReader is the read-only view of the registry the selector needs.
// Selection never mutates belief; updates happen only after evaluation.
type BeliefReader interface {
	Snapshot(arm types.ArmID) (types.Belief, error)
}

// Selector picks the next arm by Thompson sampling over current beliefs.
type Selector struct {
	beliefs BeliefReader
	rng     *rand.Rand
}

// NewSelector creates a selector reading beliefs from the given source.
// The rand source must not be shared with other goroutines; the engine
// guards Select calls with its own lock.
func NewSelector(beliefs BeliefReader, rng *rand.Rand) *Selector {
	return &Selector{beliefs: beliefs, rng: rng}
}

// Select draws one Beta(alpha, beta) sample per eligible arm and returns
// the arm with the highest draw. Ties break toward the arm presented
// fewest times, then lexical ArmID order for determinism.
func (s *Selector) Select(eligible []types.ArmID) (types.ArmID, error) {
	if len(eligible) == 0 {
		return types.ArmID{}, &arms.NoEligibleArmsError{}
	}

	var (
		best       types.ArmID
		bestSample = -1.0
		bestBelief types.Belief
	)
	for _, arm := range eligible {
		belief, err := s.beliefs.Snapshot(arm)
		if err != nil {
			return types.ArmID{}, err
		}
		sample := sampleBeta(s.rng, belief.Alpha, belief.Beta)
		if sample > bestSample {
			best, bestSample, bestBelief = arm, sample, belief
			continue
		}
		if sample == bestSample && betterTieBreak(arm, belief, best, bestBelief) {
			best, bestBelief = arm, belief
		}
	}
	return best, nil
}

// betterTieBreak reports whether candidate should win a tied draw over
// the current best: fewer presentations first, then lexical ArmID order.
func betterTieBreak(candidate types.ArmID, candidateBelief types.Belief, current types.ArmID, currentBelief types.Belief) bool {
	if candidateBelief.TimesPresented != currentBelief.TimesPresented {
		return candidateBelief.TimesPresented < currentBelief.TimesPresented
	}
	return candidate.String() < current.String()
}
