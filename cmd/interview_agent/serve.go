package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/interview-engine/internal/arms"
	"github.com/jonathan/interview-engine/internal/bandit"
	"github.com/jonathan/interview-engine/internal/config"
	"github.com/jonathan/interview-engine/internal/db"
	"github.com/jonathan/interview-engine/internal/evaluate"
	"github.com/jonathan/interview-engine/internal/judge"
	"github.com/jonathan/interview-engine/internal/llm"
	"github.com/jonathan/interview-engine/internal/logger"
	"github.com/jonathan/interview-engine/internal/questionbank"
	"github.com/jonathan/interview-engine/internal/report"
	"github.com/jonathan/interview-engine/internal/server"
	"github.com/jonathan/interview-engine/internal/session"
	"github.com/jonathan/interview-engine/internal/speech"
	"github.com/jonathan/interview-engine/internal/types"
)

var (
	serveAddr   string
	serveConfig string
	serveJSON   bool
	serveDebug  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for running adaptive interview sessions.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "localhost:8080", "Address to listen on")
	serveCmd.Flags().StringVar(&serveConfig, "config", "", "Path to JSON config file")
	serveCmd.Flags().BoolVar(&serveJSON, "log-json", false, "Log in JSON format")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
	rootCmd.AddCommand(serveCmd)
}

func loadServeConfig() (config.Config, error) {
	var cfg config.Config
	if serveConfig != "" {
		loaded, err := config.LoadConfig(serveConfig)
		if err != nil {
			return cfg, err
		}
		cfg = *loaded
	}
	cfg = cfg.MergeWithDefaults(config.Config{
		ListenAddr:  serveAddr,
		DatabaseURL: os.Getenv("DATABASE_URL"),
		APIKey:      os.Getenv("GEMINI_API_KEY"),
		TargetLevel: "intermediate",
	})
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// sessionDefaults maps service config onto the engine's session defaults.
func sessionDefaults(cfg config.Config) session.Config {
	defaults := session.DefaultConfig()
	if cfg.MaxTurns > 0 {
		defaults.MaxTurns = cfg.MaxTurns
	}
	if cfg.PerArmCap > 0 {
		defaults.PerArmCap = cfg.PerArmCap
	}
	if cfg.RetryBudget > 0 {
		defaults.RetryBudget = cfg.RetryBudget
	}
	if d := cfg.AnswerTimeoutDuration(); d > 0 {
		defaults.AnswerTimeout = d
	}
	return defaults
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadServeConfig()
	if err != nil {
		return err
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	log, err := logger.New(serveJSON, serveDebug || cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	ctx := context.Background()

	questions := questionbank.MustLoad()
	priors := questionbank.PriorsForLevel(questions, types.Difficulty(cfg.TargetLevel))
	registry := arms.NewRegistry(questions, priors)

	var store session.Store
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()
		if err := database.Migrate(ctx); err != nil {
			return err
		}

		// Warm-start arm beliefs from previous runs
		beliefs, err := database.LoadArmBeliefs(ctx)
		if err != nil {
			return err
		}
		for arm, belief := range beliefs {
			if err := registry.Restore(arm, belief); err != nil {
				log.Warn("skipping persisted belief for unknown arm", zap.String("arm", arm.String()))
			}
		}
		log.Info("arm beliefs restored", zap.Int("count", len(beliefs)))
		store = database
	} else {
		log.Warn("DATABASE_URL not set, sessions will not be persisted")
	}

	client, err := llm.NewGeminiClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer client.Close() //nolint:errcheck

	weights := evaluate.DefaultWeights
	if cfg.ContentWeight > 0 {
		weights = evaluate.Weights{Content: cfg.ContentWeight, Delivery: 1 - cfg.ContentWeight}
	}
	evaluator, err := evaluate.NewEvaluator(judge.NewLLMJudge(client), weights)
	if err != nil {
		return err
	}

	var transcriber speech.Transcriber
	if cfg.TranscriberURL != "" {
		transcriber = speech.NewHTTPTranscriber(cfg.TranscriberURL, 60*time.Second)
	}

	engine, err := session.NewEngine(session.Params{
		Registry:    registry,
		Selector:    bandit.NewSelector(registry, rand.New(rand.NewSource(time.Now().UnixNano()))),
		Evaluator:   evaluator,
		Transcriber: transcriber,
		Analyzer:    speech.NewPCMAnalyzer(),
		Store:       store,
		Logger:      log,
		Defaults:    sessionDefaults(cfg),
		ReportCfg:   report.DefaultConfig(),
	})
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	srv, err := server.New(server.Config{Addr: cfg.ListenAddr}, engine, log)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
