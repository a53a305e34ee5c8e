package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/interview-engine/internal/arms"
	"github.com/jonathan/interview-engine/internal/bandit"
	"github.com/jonathan/interview-engine/internal/evaluate"
	"github.com/jonathan/interview-engine/internal/report"
	"github.com/jonathan/interview-engine/internal/speech"
	"github.com/jonathan/interview-engine/internal/types"
)

// AnswerInput carries one candidate answer into the engine. Either a
// transcript or raw audio must be present; delivery may be supplied
// directly or derived from the audio.
type AnswerInput struct {
	Transcript string
	Audio      []byte
	Delivery   *float64
}

// Params wires the engine's collaborators. Registry, Selector, and
// Evaluator are required; the rest are optional.
type Params struct {
	Registry    *arms.Registry
	Selector    *bandit.Selector
	Evaluator   *evaluate.Evaluator
	Transcriber speech.Transcriber
	Analyzer    speech.Analyzer
	Store       Store
	Logger      *zap.Logger
	Defaults    Config
	ReportCfg   report.Config
}

// Engine owns every live session and the shared arm registry. Sessions
// serialize on their own mutex; the registry carries per-arm locks; the
// selector's random source is guarded here.
type Engine struct {
	registry    *arms.Registry
	selector    *bandit.Selector
	selectMu    sync.Mutex
	evaluator   *evaluate.Evaluator
	transcriber speech.Transcriber
	analyzer    speech.Analyzer
	store       Store
	log         *zap.Logger
	defaults    Config
	reportCfg   report.Config

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	now func() time.Time
}

// NewEngine creates an engine from its collaborators.
func NewEngine(p Params) (*Engine, error) {
	if p.Registry == nil || p.Selector == nil || p.Evaluator == nil {
		return nil, fmt.Errorf("registry, selector, and evaluator are required")
	}
	if err := p.Defaults.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session defaults: %w", err)
	}
	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		registry:    p.Registry,
		selector:    p.Selector,
		evaluator:   p.Evaluator,
		transcriber: p.Transcriber,
		analyzer:    p.Analyzer,
		store:       p.Store,
		log:         log,
		defaults:    p.Defaults,
		reportCfg:   p.ReportCfg,
		sessions:    make(map[uuid.UUID]*Session),
		now:         time.Now,
	}, nil
}

// Defaults returns the engine's default session configuration, for
// callers building per-session overrides.
func (e *Engine) Defaults() Config {
	return e.defaults
}

// CreateSession registers a new interview session for a candidate.
// A nil config uses the engine defaults.
func (e *Engine) CreateSession(ctx context.Context, candidateID string, cfg *Config) (types.SessionSnapshot, error) {
	if candidateID == "" {
		return types.SessionSnapshot{}, fmt.Errorf("candidate ID is required")
	}
	config := e.defaults
	if cfg != nil {
		if err := cfg.Validate(); err != nil {
			return types.SessionSnapshot{}, fmt.Errorf("invalid session config: %w", err)
		}
		config = *cfg
	}

	sess := newSession(candidateID, config, e.now().UTC())
	snap := sess.Snapshot()

	if e.store != nil {
		if err := e.store.CreateSession(ctx, snap); err != nil {
			return types.SessionSnapshot{}, fmt.Errorf("failed to persist session: %w", err)
		}
	}

	e.mu.Lock()
	e.sessions[sess.id] = sess
	e.mu.Unlock()

	e.log.Info("session created",
		zap.String("session_id", sess.id.String()),
		zap.String("candidate_id", candidateID),
		zap.Int("max_turns", config.MaxTurns))
	return snap, nil
}

// NextQuestion advances the session to its next question. The first call
// starts the interview. When a question is already outstanding it is
// returned again rather than burning a new one.
func (e *Engine) NextQuestion(ctx context.Context, sessionID uuid.UUID) (types.Question, error) {
	sess, err := e.lookup(sessionID)
	if err != nil {
		return types.Question{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.state.Terminal() {
		return types.Question{}, &InvalidStateError{SessionID: sessionID, State: sess.state, Operation: "next_question"}
	}

	now := e.now().UTC()
	if sess.state == types.StateCreated {
		sess.state = types.StateInProgress
		started := now
		sess.startedAt = &started
		e.persistState(ctx, sess)
	}

	// An expired outstanding question resolves as a non-answer before a new
	// one is handed out; the candidate never hangs on a dead turn.
	if sess.waiting != nil {
		if now.Sub(sess.waiting.askedAt) <= sess.config.AnswerTimeout {
			return sess.waiting.question, nil
		}
		e.recordTimeoutTurnLocked(ctx, sess, now)
		if sess.state.Terminal() {
			return types.Question{}, &InvalidStateError{SessionID: sessionID, State: sess.state, Operation: "next_question"}
		}
	}

	if len(sess.turns) >= sess.config.MaxTurns {
		sess.terminateLocked(types.StateCompleted, now)
		e.persistState(ctx, sess)
		return types.Question{}, &InvalidStateError{SessionID: sessionID, State: sess.state, Operation: "next_question"}
	}

	eligible := e.eligibleArmsLocked(sess)
	e.selectMu.Lock()
	arm, err := e.selector.Select(eligible)
	e.selectMu.Unlock()
	if err != nil {
		var noArms *arms.NoEligibleArmsError
		if errors.As(err, &noArms) {
			sess.terminateLocked(types.StateCompleted, now)
			e.persistState(ctx, sess)
			e.log.Info("question bank exhausted, session completed",
				zap.String("session_id", sessionID.String()),
				zap.Int("turns", len(sess.turns)))
			return types.Question{}, &InvalidStateError{SessionID: sessionID, State: sess.state, Operation: "next_question"}
		}
		return types.Question{}, err
	}

	question, err := e.pickQuestionLocked(sess, arm)
	if err != nil {
		return types.Question{}, err
	}

	if err := e.registry.RecordPresented(arm); err != nil {
		return types.Question{}, err
	}
	sess.armPresented[arm]++
	sess.waiting = &pending{question: question, askedAt: now}
	e.persistBelief(ctx, arm)

	e.log.Debug("question selected",
		zap.String("session_id", sessionID.String()),
		zap.String("question_id", question.ID),
		zap.String("arm", arm.String()))
	return question, nil
}

// SubmitAnswer records the candidate's answer to the outstanding question,
// evaluates it, commits the belief update, and appends the turn.
func (e *Engine) SubmitAnswer(ctx context.Context, sessionID uuid.UUID, questionID string, input AnswerInput) (*types.Turn, error) {
	sess, err := e.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.state.Terminal() {
		return nil, &InvalidStateError{SessionID: sessionID, State: sess.state, Operation: "submit_answer"}
	}
	if sess.waiting == nil {
		return nil, &InvalidStateError{SessionID: sessionID, State: sess.state, Operation: "submit_answer (no question outstanding)"}
	}
	if sess.waiting.question.ID != questionID {
		return nil, &NotFoundError{Kind: "question", Key: questionID}
	}

	now := e.now().UTC()
	question := sess.waiting.question
	askedAt := sess.waiting.askedAt

	// Late submissions degrade to the non-answer case, never a hard failure.
	timedOut := now.Sub(askedAt) > sess.config.AnswerTimeout

	var (
		transcript string
		delivery   *float64
		wordTimes  []types.WordTime
		duration   float64
	)
	if !timedOut {
		transcript = input.Transcript
		delivery = input.Delivery
		if transcript == "" && len(input.Audio) > 0 && e.transcriber != nil {
			tr, terr := e.transcribeWithRetries(ctx, sess.config, input.Audio)
			if terr != nil {
				return e.finishUngradedTurnLocked(ctx, sess, question, askedAt, now, terr)
			}
			transcript = tr.Text
			wordTimes = tr.Words
			duration = tr.Duration
		}
		if delivery == nil && len(input.Audio) > 0 && e.analyzer != nil {
			if score, aerr := e.analyzer.DeliveryScore(ctx, input.Audio); aerr == nil {
				delivery = &score
			} else {
				e.log.Warn("audio analysis unavailable, weight shifts to content",
					zap.String("session_id", sessionID.String()), zap.Error(aerr))
			}
		}
	} else {
		e.log.Warn("answer arrived after timeout, recording non-answer",
			zap.String("session_id", sessionID.String()),
			zap.String("question_id", questionID))
	}

	result, evalErr := e.evaluateWithRetries(ctx, sess.config, question, transcript, delivery)
	if evalErr != nil {
		return e.finishUngradedTurnLocked(ctx, sess, question, askedAt, now, evalErr)
	}

	// Belief commits only after evaluation fully succeeds.
	if err := e.registry.Update(question.Arm(), result.Score); err != nil {
		return nil, err
	}
	e.persistBelief(ctx, question.Arm())

	score := result.Score
	answer := types.Answer{
		Transcript:    transcript,
		Correctness:   judgmentCorrectness(result),
		Delivery:      delivery,
		WordTimes:     wordTimes,
		AudioDuration: duration,
		ReceivedAt:    now,
	}
	turn := e.appendTurnLocked(ctx, sess, question, answer, &score, result.Confidence, askedAt)
	e.checkTerminationLocked(ctx, sess, now)
	return &turn, nil
}

// CancelSession aborts a session immediately. A belief update for an
// in-flight turn never commits.
func (e *Engine) CancelSession(ctx context.Context, sessionID uuid.UUID) error {
	sess, err := e.lookup(sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.state.Terminal() {
		return &InvalidStateError{SessionID: sessionID, State: sess.state, Operation: "cancel_session"}
	}
	sess.terminateLocked(types.StateAborted, e.now().UTC())
	e.persistState(ctx, sess)
	e.log.Info("session cancelled", zap.String("session_id", sessionID.String()))
	return nil
}

// GetSession returns a snapshot of a session's visible state.
func (e *Engine) GetSession(sessionID uuid.UUID) (types.SessionSnapshot, error) {
	sess, err := e.lookup(sessionID)
	if err != nil {
		return types.SessionSnapshot{}, err
	}
	return sess.Snapshot(), nil
}

// GetReport aggregates a finished session into its performance report.
func (e *Engine) GetReport(sessionID uuid.UUID) (*types.Report, error) {
	sess, err := e.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return report.Aggregate(sess.Snapshot(), e.reportCfg)
}

// ArmSnapshots returns the current belief of every arm, for operations
// visibility.
func (e *Engine) ArmSnapshots() map[string]types.Belief {
	out := make(map[string]types.Belief)
	for _, arm := range e.registry.Arms() {
		if belief, err := e.registry.Snapshot(arm); err == nil {
			out[arm.String()] = belief
		}
	}
	return out
}

func (e *Engine) lookup(sessionID uuid.UUID) (*Session, error) {
	e.mu.RLock()
	sess, ok := e.sessions[sessionID]
	e.mu.RUnlock()
	if !ok {
		return nil, &NotFoundError{Kind: "session", Key: sessionID.String()}
	}
	return sess, nil
}

// eligibleArmsLocked filters registry arms to those still usable in this
// session: unused questions remain and the per-session cap is not reached.
func (e *Engine) eligibleArmsLocked(sess *Session) []types.ArmID {
	var eligible []types.ArmID
	for _, arm := range e.registry.Arms() {
		if sess.armPresented[arm] >= sess.config.PerArmCap {
			continue
		}
		questions, err := e.registry.QuestionsFor(arm)
		if err != nil {
			continue
		}
		for _, q := range questions {
			if !sess.usedQuestions[q.ID] {
				eligible = append(eligible, arm)
				break
			}
		}
	}
	return eligible
}

// pickQuestionLocked takes the next unused question from the arm in
// rotation order.
func (e *Engine) pickQuestionLocked(sess *Session, arm types.ArmID) (types.Question, error) {
	questions, err := e.registry.QuestionsFor(arm)
	if err != nil {
		return types.Question{}, err
	}
	start := sess.rotation[arm]
	for i := 0; i < len(questions); i++ {
		q := questions[(start+i)%len(questions)]
		if !sess.usedQuestions[q.ID] {
			sess.rotation[arm] = (start + i + 1) % len(questions)
			return q, nil
		}
	}
	// Eligibility filtering guarantees an unused question exists
	return types.Question{}, &NotFoundError{Kind: "question", Key: "unused question in " + arm.String()}
}

// recordTimeoutTurnLocked resolves an expired outstanding question as the
// forced-zero non-answer: score 0, confidence 1, belief updated with 0.
func (e *Engine) recordTimeoutTurnLocked(ctx context.Context, sess *Session, now time.Time) {
	question := sess.waiting.question
	askedAt := sess.waiting.askedAt

	if err := e.registry.Update(question.Arm(), 0); err != nil {
		e.log.Error("belief update failed for timed-out turn", zap.Error(err))
	} else {
		e.persistBelief(ctx, question.Arm())
	}

	zero := 0.0
	answer := types.Answer{Transcript: "", ReceivedAt: now}
	e.appendTurnLocked(ctx, sess, question, answer, &zero, 1.0, askedAt)
	e.log.Warn("question timed out, forced zero recorded",
		zap.String("session_id", sess.id.String()),
		zap.String("question_id", question.ID))
	e.checkTerminationLocked(ctx, sess, now)
}

// finishUngradedTurnLocked handles evaluation failure after the retry
// budget: the turn is recorded ungraded and belief stays untouched, unless
// this is the very first turn, in which case the session aborts (a report
// with zero graded turns is meaningless).
func (e *Engine) finishUngradedTurnLocked(ctx context.Context, sess *Session, question types.Question, askedAt, now time.Time, cause error) (*types.Turn, error) {
	if len(sess.turns) == 0 {
		sess.terminateLocked(types.StateAborted, now)
		e.persistState(ctx, sess)
		e.log.Error("first-turn evaluation failed, session aborted",
			zap.String("session_id", sess.id.String()), zap.Error(cause))
		return nil, &AbortedError{SessionID: sess.id, Reason: "evaluation unavailable on first turn", Cause: cause}
	}

	answer := types.Answer{Transcript: "", ReceivedAt: now}
	turn := e.appendTurnLocked(ctx, sess, question, answer, nil, 0, askedAt)
	e.log.Warn("turn recorded ungraded after retry budget",
		zap.String("session_id", sess.id.String()),
		zap.String("question_id", question.ID),
		zap.Error(cause))
	e.checkTerminationLocked(ctx, sess, now)
	return &turn, nil
}

// appendTurnLocked builds the turn, appends it, and clears the outstanding
// question.
func (e *Engine) appendTurnLocked(ctx context.Context, sess *Session, question types.Question, answer types.Answer, score *float64, confidence float64, askedAt time.Time) types.Turn {
	turn := types.Turn{
		ID:         uuid.New(),
		QuestionID: question.ID,
		Arm:        question.Arm(),
		Answer:     answer,
		Score:      score,
		Confidence: confidence,
		AskedAt:    askedAt,
	}
	sess.turns = append(sess.turns, turn)
	sess.usedQuestions[question.ID] = true
	sess.waiting = nil

	if e.store != nil {
		if err := e.store.AppendTurn(ctx, sess.id, turn); err != nil {
			e.log.Error("failed to persist turn", zap.String("session_id", sess.id.String()), zap.Error(err))
		}
	}
	return turn
}

// checkTerminationLocked applies the max-turn cap and the early-stop
// heuristics after a turn completes.
func (e *Engine) checkTerminationLocked(ctx context.Context, sess *Session, now time.Time) {
	if sess.state.Terminal() {
		return
	}
	if len(sess.turns) >= sess.config.MaxTurns {
		sess.terminateLocked(types.StateCompleted, now)
		e.persistState(ctx, sess)
		e.log.Info("session completed at max turns", zap.String("session_id", sess.id.String()))
		return
	}
	if !sess.config.earlyStopActive() {
		return
	}

	scores := sess.gradedScoresLocked()
	if w := sess.config.PlateauWindow; len(scores) >= w && report.StdDev(scores[len(scores)-w:]) < sess.config.PlateauStdDev {
		sess.terminateLocked(types.StateCompleted, now)
		e.persistState(ctx, sess)
		e.log.Info("performance plateau, session completed early", zap.String("session_id", sess.id.String()))
		return
	}
	if w := sess.config.PoorWindow; len(scores) >= w && report.Mean(scores[len(scores)-w:]) < sess.config.PoorMeanFloor {
		sess.terminateLocked(types.StateCompleted, now)
		e.persistState(ctx, sess)
		e.log.Info("sustained poor performance, session completed early", zap.String("session_id", sess.id.String()))
	}
}

// evaluateWithRetries runs the evaluator with the session's retry budget.
// Only transient unavailability retries.
func (e *Engine) evaluateWithRetries(ctx context.Context, cfg Config, question types.Question, transcript string, delivery *float64) (evaluate.Result, error) {
	var lastErr error
	for attempt := 0; attempt <= cfg.RetryBudget; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, cfg.RetryBackoff); err != nil {
				return evaluate.Result{}, err
			}
		}
		result, err := e.evaluator.Evaluate(ctx, question, transcript, delivery)
		if err == nil {
			return result, nil
		}
		lastErr = err
		var unavailable *evaluate.EvaluationUnavailableError
		if !errors.As(err, &unavailable) {
			return evaluate.Result{}, err
		}
		e.log.Warn("evaluation attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Int("budget", cfg.RetryBudget+1),
			zap.Error(err))
	}
	return evaluate.Result{}, lastErr
}

func (e *Engine) transcribeWithRetries(ctx context.Context, cfg Config, audio []byte) (*speech.Transcript, error) {
	var lastErr error
	for attempt := 0; attempt <= cfg.RetryBudget; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, cfg.RetryBackoff); err != nil {
				return nil, err
			}
		}
		tr, err := e.transcriber.Transcribe(ctx, audio)
		if err == nil {
			return tr, nil
		}
		lastErr = err
		e.log.Warn("transcription attempt failed", zap.Int("attempt", attempt+1), zap.Error(err))
	}
	return nil, lastErr
}

func (e *Engine) persistState(ctx context.Context, sess *Session) {
	if e.store == nil {
		return
	}
	if err := e.store.UpdateSessionState(ctx, sess.id, sess.state, sess.startedAt, sess.endedAt); err != nil {
		e.log.Error("failed to persist session state", zap.String("session_id", sess.id.String()), zap.Error(err))
	}
}

func (e *Engine) persistBelief(ctx context.Context, arm types.ArmID) {
	if e.store == nil {
		return
	}
	belief, err := e.registry.Snapshot(arm)
	if err != nil {
		return
	}
	if err := e.store.SaveArmBelief(ctx, arm, belief); err != nil {
		e.log.Error("failed to persist arm belief", zap.String("arm", arm.String()), zap.Error(err))
	}
}

func judgmentCorrectness(result evaluate.Result) float64 {
	if result.Judgment == nil {
		return 0
	}
	return result.Judgment.Correctness
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
