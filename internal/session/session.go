// Package session implements the drill/quiz session state machine:
// Setup -> Active -> Results, with retry edges back to Active.
//
// An Engine is not safe for concurrent use. Callers serialize commands,
// including timer callbacks delivered by the Scheduler.
package session

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/codedrills/internal/catalog"
	"github.com/abhisek/codedrills/internal/clock"
	"github.com/abhisek/codedrills/internal/scoring"
	"github.com/abhisek/codedrills/internal/selector"
	"github.com/abhisek/codedrills/internal/validator"
)

// Engine drives one session at a time over an immutable catalog.
type Engine struct {
	catalog   *catalog.Catalog
	validator *validator.Validator
	policy    scoring.Policy
	clock     clock.Clock
	scheduler clock.Scheduler
	observer  Observer
	logger    *slog.Logger
	newID     func() string

	phase    Phase
	config   Config
	run      RunInfo
	problems []catalog.Problem
	index    int
	attempts []Attempt
	tally    scoring.Tally
	summary  *Summary

	// Per-problem state, reset whenever index changes.
	shownAt    time.Time
	hintsShown int
	timer      clock.Timer
	timerGen   uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithValidator sets the answer validator.
func WithValidator(v *validator.Validator) Option {
	return func(e *Engine) { e.validator = v }
}

// WithPolicy sets the scoring policy.
func WithPolicy(p scoring.Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithClock sets the time source used for timestamps and elapsed times.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithScheduler sets the scheduler for per-question countdowns. Timed
// sessions need one. Its callbacks must not run concurrently with other
// engine calls: wrap a clock.Real with clock.Guarded, or deliver expiries
// through the caller's event loop.
func WithScheduler(s clock.Scheduler) Option {
	return func(e *Engine) { e.scheduler = s }
}

// WithObserver sets the lifecycle observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(f func() string) Option {
	return func(e *Engine) { e.newID = f }
}

// New creates an engine in the Setup phase. Without WithScheduler the
// engine only runs untimed sessions; a config with a time limit fails to
// start with ErrNoScheduler.
func New(cat *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog:  cat,
		policy:   scoring.DefaultPolicy(),
		clock:    clock.Real{},
		observer: nopObserver{},
		logger:    slog.New(slog.DiscardHandler),
		newID:     func() string { return uuid.New().String() },
		phase:     PhaseSetup,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.validator == nil {
		e.validator = validator.New(validator.WithLogger(e.logger))
	}
	return e
}

// Start selects problems for cfg and enters Active. On a
// ConfigurationError the engine stays in Setup.
func (e *Engine) Start(cfg Config) error {
	if err := e.require("start", PhaseSetup); err != nil {
		return err
	}
	cfg = cfg.withDefaults()
	problems, seed, err := e.selectProblems(cfg, cfg.Seed)
	if err != nil {
		return err
	}
	e.config = cfg
	e.begin(problems, seed, false)
	return nil
}

// Submit judges answer against the current problem, records the attempt
// and advances. After the last problem the engine enters Results.
func (e *Engine) Submit(answer string) (Attempt, error) {
	if err := e.requireProblem("submit"); err != nil {
		return Attempt{}, err
	}
	e.cancelTimer()

	p := e.problems[e.index]
	var v validator.Verdict
	if e.config.Mode == ModeQuiz {
		v = e.validator.ValidateChoice(p, answer)
	} else {
		v = e.validator.Validate(p, answer)
	}

	verdict := scoring.VerdictIncorrect
	if v.Correct {
		verdict = scoring.VerdictCorrect
	}
	return e.record(answer, verdict, v.MatchedPattern, false), nil
}

// Skip records a skipped attempt, which breaks the streak, and advances.
func (e *Engine) Skip() (Attempt, error) {
	if err := e.requireProblem("skip"); err != nil {
		return Attempt{}, err
	}
	e.cancelTimer()
	return e.record("", scoring.VerdictSkipped, validator.NoMatch, false), nil
}

// End finishes the run early. Unattempted problems are not counted.
func (e *Engine) End() (Summary, error) {
	if err := e.require("end", PhaseActive); err != nil {
		return Summary{}, err
	}
	e.cancelTimer()
	e.finish()
	return e.summary.clone(), nil
}

// RetrySame replays the previous run's problems in the same order with a
// fresh score.
func (e *Engine) RetrySame() error {
	if err := e.require("retry", PhaseResults); err != nil {
		return err
	}
	e.begin(e.problems, e.run.Seed, true)
	return nil
}

// RetryNew selects a fresh problem list, with cfg if given or else the
// previous configuration, and enters Active. A new seed is drawn unless
// cfg sets one. On a ConfigurationError the engine stays in Results.
func (e *Engine) RetryNew(cfg *Config) error {
	if err := e.require("new session", PhaseResults); err != nil {
		return err
	}

	next := e.config
	var seed uint64
	if cfg != nil {
		next = cfg.withDefaults()
		seed = cfg.Seed
	}
	problems, seed, err := e.selectProblems(next, seed)
	if err != nil {
		return err
	}
	e.config = next
	e.begin(problems, seed, false)
	return nil
}

// Reset returns a finished engine to Setup so a new configuration can be
// chosen.
func (e *Engine) Reset() error {
	if err := e.require("reset", PhaseResults); err != nil {
		return err
	}
	e.phase = PhaseSetup
	e.problems = nil
	e.attempts = nil
	e.tally = scoring.Tally{}
	e.summary = nil
	e.index = 0
	return nil
}

// RevealHint returns the next authored hint for the current problem.
func (e *Engine) RevealHint() (string, error) {
	if err := e.requireProblem("hint"); err != nil {
		return "", err
	}
	hints := e.problems[e.index].Hints
	if e.hintsShown >= len(hints) {
		return "", ErrNoMoreHints
	}
	h := hints[e.hintsShown]
	e.hintsShown++
	return h, nil
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase {
	return e.phase
}

// CurrentProblem returns the problem being answered. It reports false
// outside the Active phase.
func (e *Engine) CurrentProblem() (catalog.Problem, bool) {
	if e.phase != PhaseActive || e.index >= len(e.problems) {
		return catalog.Problem{}, false
	}
	return e.problems[e.index], true
}

// Progress returns the current index and the number of selected problems.
func (e *Engine) Progress() Progress {
	return Progress{Index: e.index, Total: len(e.problems)}
}

// Score returns the live score.
func (e *Engine) Score() ScoreSnapshot {
	return ScoreSnapshot{
		Score:     e.tally.Score,
		Streak:    e.tally.Streak,
		MaxStreak: e.tally.MaxStreak,
	}
}

// Results returns the summary of the finished run. It is only valid in
// the Results phase.
func (e *Engine) Results() (Summary, error) {
	if err := e.require("results", PhaseResults); err != nil {
		return Summary{}, err
	}
	return e.summary.clone(), nil
}

// Remaining returns the time left on the current problem's countdown. It
// reports false when the session is not active or untimed.
func (e *Engine) Remaining() (time.Duration, bool) {
	if e.phase != PhaseActive || !e.config.Timed() {
		return 0, false
	}
	left := e.config.TimeLimit - e.clock.Now().Sub(e.shownAt)
	return max(left, 0), true
}

// HintsShown returns how many hints were revealed for the current problem.
func (e *Engine) HintsShown() int {
	return e.hintsShown
}

// Attempts returns a copy of the current run's attempts.
func (e *Engine) Attempts() []Attempt {
	return slices.Clone(e.attempts)
}

// Problems returns a copy of the current run's problem list.
func (e *Engine) Problems() []catalog.Problem {
	return slices.Clone(e.problems)
}

// Config returns the configuration of the current or last run.
func (e *Engine) Config() Config {
	return e.config
}

// SessionID returns the id of the current or last run.
func (e *Engine) SessionID() string {
	return e.run.SessionID
}

// Seed returns the seed that produced the current problem order.
func (e *Engine) Seed() uint64 {
	return e.run.Seed
}

// Policy returns the scoring policy.
func (e *Engine) Policy() scoring.Policy {
	return e.policy
}

func (e *Engine) selectProblems(cfg Config, seed uint64) ([]catalog.Problem, uint64, error) {
	if err := cfg.check(); err != nil {
		return nil, 0, err
	}
	if cfg.Timed() && e.scheduler == nil {
		return nil, 0, &ConfigurationError{Err: ErrNoScheduler}
	}
	if e.catalog == nil {
		return nil, 0, &ConfigurationError{Err: ErrNoProblems}
	}
	if seed == 0 {
		seed = selector.NewSeed()
	}
	problems := selector.Select(e.catalog, cfg.Filter(), cfg.QuestionCount, seed)
	if len(problems) == 0 {
		return nil, 0, &ConfigurationError{Err: ErrNoProblems}
	}
	return problems, seed, nil
}

func (e *Engine) begin(problems []catalog.Problem, seed uint64, retry bool) {
	ids := make([]string, len(problems))
	for i, p := range problems {
		ids[i] = p.ID
	}

	e.problems = problems
	e.index = 0
	e.attempts = nil
	e.tally = scoring.Tally{}
	e.summary = nil
	e.run = RunInfo{
		SessionID:  e.newID(),
		Config:     e.config,
		Seed:       seed,
		ProblemIDs: ids,
		StartedAt:  e.clock.Now(),
		Retry:      retry,
	}
	e.phase = PhaseActive

	e.logger.Debug("session started",
		"session", e.run.SessionID, "mode", e.config.Mode,
		"problems", len(problems), "seed", seed, "retry", retry)
	e.observer.SessionStarted(e.run)

	e.enterProblem()
}

// enterProblem resets per-problem state and arms the countdown.
func (e *Engine) enterProblem() {
	e.shownAt = e.clock.Now()
	e.hintsShown = 0
	if !e.config.Timed() {
		return
	}
	e.timerGen++
	gen, index := e.timerGen, e.index
	e.timer = e.scheduler.AfterFunc(e.config.TimeLimit, func() {
		e.expire(gen, index)
	})
}

// cancelTimer stops any pending countdown. Bumping the generation also
// voids a callback that already fired but has not yet run.
func (e *Engine) cancelTimer() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.timerGen++
}

// expire handles a countdown firing. Stale callbacks are ignored.
func (e *Engine) expire(gen uint64, index int) {
	if e.phase != PhaseActive || gen != e.timerGen || index != e.index {
		return
	}
	e.timer = nil
	e.timerGen++
	p := e.problems[e.index]
	e.logger.Info("question timed out", "session", e.run.SessionID, "problem", p.ID)
	e.record("", scoring.VerdictSkipped, validator.NoMatch, true)
}

func (e *Engine) record(answer string, verdict scoring.Verdict, matched int, timedOut bool) Attempt {
	p := e.problems[e.index]

	tally, points := e.policy.Apply(e.tally, p.Difficulty, verdict)
	e.tally = tally

	a := Attempt{
		ProblemID:      p.ID,
		Category:       p.Category,
		Difficulty:     p.Difficulty,
		Answer:         answer,
		Verdict:        verdict,
		Points:         points,
		TimeTaken:      e.clock.Now().Sub(e.shownAt),
		TimedOut:       timedOut,
		HintsUsed:      e.hintsShown,
		MatchedPattern: matched,
	}
	e.attempts = append(e.attempts, a)
	e.observer.AttemptRecorded(e.run.SessionID, len(e.attempts)-1, a)

	e.index++
	if e.index >= len(e.problems) {
		e.finish()
	} else {
		e.enterProblem()
	}
	return a
}

func (e *Engine) finish() {
	e.phase = PhaseResults
	s := BuildSummary(e.run, e.attempts, e.tally.MaxStreak, e.clock.Now())
	s.MaxScore = e.policy.MaxScore(len(e.problems))
	e.summary = &s

	e.logger.Debug("session ended",
		"session", s.SessionID, "score", s.TotalPoints,
		"correct", s.CorrectCount, "total", s.TotalCount)
	e.observer.SessionEnded(s.clone())
}

func (e *Engine) require(op string, phase Phase) error {
	if e.phase != phase {
		return &InvalidTransitionError{Op: op, Phase: e.phase}
	}
	return nil
}

func (e *Engine) requireProblem(op string) error {
	if err := e.require(op, PhaseActive); err != nil {
		return err
	}
	if e.index >= len(e.problems) {
		return fmt.Errorf("%s: %w", op, &InvalidTransitionError{Op: op, Phase: e.phase})
	}
	return nil
}
