package main

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/interview-engine/internal/arms"
	"github.com/jonathan/interview-engine/internal/bandit"
	"github.com/jonathan/interview-engine/internal/evaluate"
	"github.com/jonathan/interview-engine/internal/judge"
	"github.com/jonathan/interview-engine/internal/logger"
	"github.com/jonathan/interview-engine/internal/observability"
	"github.com/jonathan/interview-engine/internal/questionbank"
	"github.com/jonathan/interview-engine/internal/report"
	"github.com/jonathan/interview-engine/internal/session"
	"github.com/jonathan/interview-engine/internal/types"
)

var (
	simCandidates int
	simTurns      int
	simSkill      float64
	simSeed       int64
	simVerbose    bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run scripted interview sessions against a local engine",
	Long: `Run N concurrent simulated candidates through full interview sessions
using a deterministic offline grader, then print each report and the
final arm beliefs. Useful for sanity-checking question selection
without an API key.`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().IntVar(&simCandidates, "candidates", 4, "Number of concurrent simulated candidates")
	simulateCmd.Flags().IntVar(&simTurns, "turns", 8, "Turns per session")
	simulateCmd.Flags().Float64Var(&simSkill, "skill", 0.65, "Base candidate skill in [0,1]")
	simulateCmd.Flags().Int64Var(&simSeed, "seed", 1, "Random seed")
	simulateCmd.Flags().BoolVar(&simVerbose, "verbose", false, "Print turn histories")
	rootCmd.AddCommand(simulateCmd)
}

// offlineJudge grades deterministically from the transcript hash around a
// base skill, so simulations are repeatable and need no API.
type offlineJudge struct {
	skill float64
}

func (j *offlineJudge) Judge(_ context.Context, question types.Question, transcript string) (*judge.Judgment, error) {
	h := fnv.New32a()
	h.Write([]byte(question.ID))
	h.Write([]byte(transcript))
	jitter := (float64(h.Sum32()%1000)/1000.0 - 0.5) * 0.3

	score := j.skill + jitter
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return &judge.Judgment{Correctness: score, Confidence: 1}, nil
}

func runSimulate(_ *cobra.Command, _ []string) error {
	if simSkill < 0 || simSkill > 1 {
		return fmt.Errorf("--skill must be in [0,1]")
	}

	log, err := logger.New(false, simVerbose)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	questions := questionbank.MustLoad()
	registry := arms.NewRegistry(questions, questionbank.PriorsForLevel(questions, types.DifficultyIntermediate))

	evaluator, err := evaluate.NewEvaluator(&offlineJudge{skill: simSkill}, evaluate.DefaultWeights)
	if err != nil {
		return err
	}

	defaults := session.DefaultConfig()
	defaults.MaxTurns = simTurns
	defaults.RetryBackoff = 0

	engine, err := session.NewEngine(session.Params{
		Registry:  registry,
		Selector:  bandit.NewSelector(registry, rand.New(rand.NewSource(simSeed))),
		Evaluator: evaluator,
		Logger:    log,
		Defaults:  defaults,
		ReportCfg: report.DefaultConfig(),
	})
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(os.Stdout)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	reports := make([]*types.Report, simCandidates)

	for i := 0; i < simCandidates; i++ {
		g.Go(func() error {
			candidateID := fmt.Sprintf("sim-candidate-%d", i+1)
			snap, err := engine.CreateSession(ctx, candidateID, nil)
			if err != nil {
				return err
			}

			for {
				question, err := engine.NextQuestion(ctx, snap.ID)
				if err != nil {
					break // session reached a terminal state
				}
				transcript := fmt.Sprintf("%s: a considered answer about %s", candidateID, question.Prompt)
				if _, err := engine.SubmitAnswer(ctx, snap.ID, question.ID, session.AnswerInput{Transcript: transcript}); err != nil {
					return fmt.Errorf("candidate %s: %w", candidateID, err)
				}
			}

			rep, err := engine.GetReport(snap.ID)
			if err != nil {
				return fmt.Errorf("candidate %s report: %w", candidateID, err)
			}
			reports[i] = rep
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	for i, rep := range reports {
		printer.PrintReport(rep)
		if simVerbose {
			snap, err := engine.GetSession(rep.SessionID)
			if err == nil {
				printer.PrintTurns(snap.Turns)
			}
		}
		if i < len(reports)-1 {
			fmt.Println()
		}
	}

	fmt.Println()
	printer.PrintArmBeliefs(engine.ArmSnapshots())
	return nil
}
