// Package arms owns the catalog of question arms and their Beta-distribution
// belief parameters. The registry is process-wide shared state: belief updates
// from one session persist and influence selection in future sessions.
package arms

import (
	"sort"
	"sync"

	"github.com/jonathan/interview-engine/internal/types"
)

// armState is the mutable belief for one arm, guarded by its own mutex so
// concurrent sessions never lose a read-modify-write update.
type armState struct {
	mu             sync.Mutex
	alpha          float64
	beta           float64
	timesPresented int
}

// Registry holds arm beliefs and the question catalog. The arm set and the
// catalog are fixed at construction; only beliefs and presentation counts
// mutate afterwards.
type Registry struct {
	states    map[types.ArmID]*armState
	questions map[types.ArmID][]types.Question
	order     []types.ArmID // sorted by ArmID string, for deterministic iteration
}

// Prior is the initial Beta belief for an arm
type Prior struct {
	Alpha float64
	Beta  float64
}

// DefaultPrior is the uninformative Beta(1,1) prior
var DefaultPrior = Prior{Alpha: 1, Beta: 1}

// NewRegistry builds a registry from a question catalog. Arms are derived
// from the questions' (category, difficulty) pairs. The priors map may
// override the default Beta(1,1) prior per arm; entries below 1 are raised
// to 1 to keep the prior proper.
func NewRegistry(questions []types.Question, priors map[types.ArmID]Prior) *Registry {
	r := &Registry{
		states:    make(map[types.ArmID]*armState),
		questions: make(map[types.ArmID][]types.Question),
	}
	for _, q := range questions {
		arm := q.Arm()
		if _, ok := r.states[arm]; !ok {
			p := DefaultPrior
			if override, ok := priors[arm]; ok {
				p = override
			}
			if p.Alpha < 1 {
				p.Alpha = 1
			}
			if p.Beta < 1 {
				p.Beta = 1
			}
			r.states[arm] = &armState{alpha: p.Alpha, beta: p.Beta}
			r.order = append(r.order, arm)
		}
		r.questions[arm] = append(r.questions[arm], q)
	}
	sort.Slice(r.order, func(i, j int) bool {
		return r.order[i].String() < r.order[j].String()
	})
	return r
}

// Arms returns all known arms in deterministic (lexical) order.
// Never empty after initialization with a non-empty catalog.
func (r *Registry) Arms() []types.ArmID {
	out := make([]types.ArmID, len(r.order))
	copy(out, r.order)
	return out
}

// QuestionsFor returns the questions belonging to an arm, in bank order.
func (r *Registry) QuestionsFor(arm types.ArmID) ([]types.Question, error) {
	qs, ok := r.questions[arm]
	if !ok {
		return nil, &NotFoundError{Kind: "arm", Key: arm.String()}
	}
	out := make([]types.Question, len(qs))
	copy(out, qs)
	return out, nil
}

// Question looks up a single question by ID across all arms.
func (r *Registry) Question(id string) (types.Question, error) {
	for _, qs := range r.questions {
		for _, q := range qs {
			if q.ID == id {
				return q, nil
			}
		}
	}
	return types.Question{}, &NotFoundError{Kind: "question", Key: id}
}

// Update applies a fractional success observation to an arm's belief:
// alpha += success, beta += (1 - success). Success is clamped to [0,1],
// so the alpha >= 1 && beta >= 1 invariant can never be violated.
// This is the only belief mutator and is safe under concurrent sessions.
func (r *Registry) Update(arm types.ArmID, success float64) error {
	state, ok := r.states[arm]
	if !ok {
		return &NotFoundError{Kind: "arm", Key: arm.String()}
	}
	if success < 0 {
		success = 0
	}
	if success > 1 {
		success = 1
	}
	state.mu.Lock()
	state.alpha += success
	state.beta += 1 - success
	state.mu.Unlock()
	return nil
}

// RecordPresented increments the arm's presentation counter. Called when a
// question from the arm is actually handed to a candidate.
func (r *Registry) RecordPresented(arm types.ArmID) error {
	state, ok := r.states[arm]
	if !ok {
		return &NotFoundError{Kind: "arm", Key: arm.String()}
	}
	state.mu.Lock()
	state.timesPresented++
	state.mu.Unlock()
	return nil
}

// Snapshot returns a consistent point-in-time view of one arm's belief.
func (r *Registry) Snapshot(arm types.ArmID) (types.Belief, error) {
	state, ok := r.states[arm]
	if !ok {
		return types.Belief{}, &NotFoundError{Kind: "arm", Key: arm.String()}
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	return types.Belief{
		Alpha:          state.alpha,
		Beta:           state.beta,
		TimesPresented: state.timesPresented,
	}, nil
}

// Restore replaces an arm's belief with persisted values, raising improper
// values to the Beta(1,1) floor. Used when warming the registry from storage.
func (r *Registry) Restore(arm types.ArmID, belief types.Belief) error {
	state, ok := r.states[arm]
	if !ok {
		return &NotFoundError{Kind: "arm", Key: arm.String()}
	}
	if belief.Alpha < 1 {
		belief.Alpha = 1
	}
	if belief.Beta < 1 {
		belief.Beta = 1
	}
	state.mu.Lock()
	state.alpha = belief.Alpha
	state.beta = belief.Beta
	state.timesPresented = belief.TimesPresented
	state.mu.Unlock()
	return nil
}
