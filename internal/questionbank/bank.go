// Package questionbank provides the embedded question catalog.
// The bank ships as a JSON file embedded at compile time and is parsed once.
package questionbank

import (
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jonathan/interview-engine/internal/arms"
	"github.com/jonathan/interview-engine/internal/types"
)

//go:embed bank.json
var bankFiles embed.FS

type bankFile struct {
	Questions []types.Question `json:"questions"`
}

var (
	loadOnce sync.Once
	loaded   []types.Question
	loadErr  error
)

// Load returns all questions in the embedded bank.
func Load() ([]types.Question, error) {
	loadOnce.Do(func() {
		data, err := bankFiles.ReadFile("bank.json")
		if err != nil {
			loadErr = fmt.Errorf("failed to read question bank: %w", err)
			return
		}
		var bf bankFile
		if err := json.Unmarshal(data, &bf); err != nil {
			loadErr = fmt.Errorf("failed to parse question bank: %w", err)
			return
		}
		if len(bf.Questions) == 0 {
			loadErr = fmt.Errorf("question bank is empty")
			return
		}
		for _, q := range bf.Questions {
			if q.ID == "" || q.Prompt == "" || q.Category == "" || q.Difficulty == "" {
				loadErr = fmt.Errorf("question bank entry %q is missing required fields", q.ID)
				return
			}
		}
		loaded = bf.Questions
	})
	return loaded, loadErr
}

// MustLoad returns the bank, panicking on a malformed embed. Use at startup.
func MustLoad() []types.Question {
	qs, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load question bank: %v", err))
	}
	return qs
}

// PriorsForLevel skews the initial beliefs toward a target difficulty:
// arms at the target level start at Beta(3,1), everything else at
// Beta(2,2). An unrecognized level yields nil (uninformative priors).
func PriorsForLevel(questions []types.Question, level types.Difficulty) map[types.ArmID]arms.Prior {
	switch level {
	case types.DifficultyBeginner, types.DifficultyIntermediate, types.DifficultyAdvanced, types.DifficultyExpert:
	default:
		return nil
	}

	priors := make(map[types.ArmID]arms.Prior)
	for _, q := range questions {
		arm := q.Arm()
		if _, ok := priors[arm]; ok {
			continue
		}
		if q.Difficulty == level {
			priors[arm] = arms.Prior{Alpha: 3, Beta: 1}
		} else {
			priors[arm] = arms.Prior{Alpha: 2, Beta: 2}
		}
	}
	return priors
}
