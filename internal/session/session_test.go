package session

import (
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/abhisek/codedrills/internal/catalog"
	"github.com/abhisek/codedrills/internal/clock"
	"github.com/abhisek/codedrills/internal/scoring"
)

var epoch = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

// testCatalog returns 5 easy algorithms problems and 5 hard sql problems.
// Every problem's answer is "ok"; even-numbered problems also have choices
// with "a" correct.
func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	var problems []catalog.Problem
	for i := range 10 {
		p := catalog.Problem{
			ID:             fmt.Sprintf("p%d", i),
			Category:       "algorithms",
			Difficulty:     catalog.DifficultyEasy,
			Prompt:         "prompt",
			ExpectedOutput: "ok",
			Hints:          []string{"first hint", "second hint"},
		}
		if i >= 5 {
			p.Category = "sql"
			p.Difficulty = catalog.DifficultyHard
		}
		if i%2 == 0 {
			p.Choices = []catalog.Choice{{ID: "a", Text: "ok"}, {ID: "b", Text: "not ok"}}
			p.Answer = "a"
		}
		problems = append(problems, p)
	}
	c, err := catalog.New(problems...)
	if err != nil {
		t.Fatalf("catalog.New() error: %v", err)
	}
	return c
}

type recorder struct {
	started  []RunInfo
	attempts []Attempt
	ended    []Summary
}

func (r *recorder) SessionStarted(info RunInfo) { r.started = append(r.started, info) }
func (r *recorder) AttemptRecorded(_ string, _ int, a Attempt) {
	r.attempts = append(r.attempts, a)
}
func (r *recorder) SessionEnded(s Summary) { r.ended = append(r.ended, s) }

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *clock.Fake) {
	t.Helper()
	fake := clock.NewFake(epoch)
	n := 0
	base := []Option{
		WithClock(fake),
		WithScheduler(fake),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("session-%d", n)
		}),
	}
	return New(testCatalog(t), append(base, opts...)...), fake
}

func problemIDs(ps []catalog.Problem) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func TestStart_ClampsToFilter(t *testing.T) {
	e, _ := newTestEngine(t)

	err := e.Start(Config{Difficulty: catalog.DifficultyEasy, QuestionCount: 10})
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if e.Phase() != PhaseActive {
		t.Errorf("Phase() = %s, want active", e.Phase())
	}
	if got := e.Progress(); got.Total != 5 || got.Index != 0 {
		t.Errorf("Progress() = %+v, want {0 5}", got)
	}
	for _, p := range e.Problems() {
		if p.Difficulty != catalog.DifficultyEasy {
			t.Errorf("problem %s is %s, want easy", p.ID, p.Difficulty)
		}
	}
	if e.Seed() == 0 {
		t.Error("Seed() = 0, want a generated seed")
	}
	if e.Config().Mode != ModeDrill {
		t.Errorf("Config().Mode = %q, want drill", e.Config().Mode)
	}
}

func TestStart_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"zero count", Config{QuestionCount: 0}, ErrInvalidCount},
		{"negative count", Config{QuestionCount: -3}, ErrInvalidCount},
		{"no matching category", Config{Categories: []string{"regex"}, QuestionCount: 5}, ErrNoProblems},
		{"no matching combination", Config{Categories: []string{"sql"}, Difficulty: catalog.DifficultyMedium, QuestionCount: 5}, ErrNoProblems},
		{"browse mode", Config{QuestionCount: 5, Mode: ModeBrowse}, ErrUnscoredMode},
		{"negative time limit", Config{QuestionCount: 5, TimeLimit: -time.Second}, ErrInvalidTimeLimit},
		{"bad difficulty", Config{QuestionCount: 5, Difficulty: "brutal"}, ErrInvalidDifficulty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(t)
			err := e.Start(tt.cfg)

			var ce *ConfigurationError
			if !errors.As(err, &ce) {
				t.Fatalf("Start() error = %v, want *ConfigurationError", err)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Start() error = %v, want %v", err, tt.want)
			}
			if e.Phase() != PhaseSetup {
				t.Errorf("Phase() = %s, want setup", e.Phase())
			}
		})
	}
}

func TestStart_TimedNeedsScheduler(t *testing.T) {
	e := New(testCatalog(t), WithClock(clock.NewFake(epoch)))

	cfg := Config{QuestionCount: 2, TimeLimit: 10 * time.Second}
	err := e.Start(cfg)
	if !errors.Is(err, ErrNoScheduler) || !IsConfigurationError(err) {
		t.Fatalf("Start(timed) error = %v, want ErrNoScheduler configuration error", err)
	}
	if e.Phase() != PhaseSetup {
		t.Errorf("Phase() = %s, want setup", e.Phase())
	}

	cfg.TimeLimit = 0
	if err := e.Start(cfg); err != nil {
		t.Fatalf("Start(untimed) error: %v", err)
	}
	if _, timed := e.Remaining(); timed {
		t.Error("untimed session should not report a countdown")
	}
}

func TestStart_NilCatalog(t *testing.T) {
	e := New(nil)
	if err := e.Start(Config{QuestionCount: 1}); !errors.Is(err, ErrNoProblems) {
		t.Errorf("Start() error = %v, want ErrNoProblems", err)
	}
}

func TestCommands_InvalidTransitions(t *testing.T) {
	e, _ := newTestEngine(t)

	if _, err := e.Submit("ok"); !IsInvalidTransition(err) {
		t.Errorf("Submit in setup: error = %v, want InvalidTransitionError", err)
	}
	if _, err := e.Skip(); !IsInvalidTransition(err) {
		t.Errorf("Skip in setup: error = %v", err)
	}
	if _, err := e.End(); !IsInvalidTransition(err) {
		t.Errorf("End in setup: error = %v", err)
	}
	if err := e.RetrySame(); !IsInvalidTransition(err) {
		t.Errorf("RetrySame in setup: error = %v", err)
	}
	if err := e.RetryNew(nil); !IsInvalidTransition(err) {
		t.Errorf("RetryNew in setup: error = %v", err)
	}
	if _, err := e.Results(); !IsInvalidTransition(err) {
		t.Errorf("Results in setup: error = %v", err)
	}

	if err := e.Start(Config{QuestionCount: 2}); err != nil {
		t.Fatal(err)
	}
	if err := e.Start(Config{QuestionCount: 2}); !IsInvalidTransition(err) {
		t.Errorf("Start in active: error = %v", err)
	}
	if err := e.RetrySame(); !IsInvalidTransition(err) {
		t.Errorf("RetrySame in active: error = %v", err)
	}
	if _, err := e.Results(); !IsInvalidTransition(err) {
		t.Errorf("Results in active: error = %v", err)
	}

	var te *InvalidTransitionError
	err := e.Reset()
	if !errors.As(err, &te) || te.Op != "reset" || te.Phase != PhaseActive {
		t.Errorf("Reset in active: error = %v", err)
	}
}

func TestSubmit_StreakResetsOnIncorrect(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.Start(Config{QuestionCount: 10, Seed: 99}); err != nil {
		t.Fatal(err)
	}

	for i := range 3 {
		a, err := e.Submit("ok")
		if err != nil {
			t.Fatalf("Submit %d: %v", i, err)
		}
		if a.Verdict != scoring.VerdictCorrect {
			t.Errorf("attempt %d verdict = %s, want correct", i, a.Verdict)
		}
	}
	if s := e.Score(); s.Streak != 3 || s.MaxStreak != 3 {
		t.Fatalf("Score() = %+v, want streak 3", s)
	}

	a, err := e.Submit("wrong")
	if err != nil {
		t.Fatal(err)
	}
	if a.Verdict != scoring.VerdictIncorrect || a.Points != 0 {
		t.Errorf("attempt = %+v, want incorrect with 0 points", a)
	}
	if s := e.Score(); s.Streak != 0 || s.MaxStreak != 3 {
		t.Errorf("Score() = %+v, want streak 0, maxStreak 3", s)
	}
	if got := e.Progress().Index; got != 4 {
		t.Errorf("Progress().Index = %d, want 4", got)
	}
}

func TestSubmit_PointsFollowPolicy(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.Start(Config{QuestionCount: 3, Difficulty: catalog.DifficultyHard}); err != nil {
		t.Fatal(err)
	}
	policy := e.Policy()

	total := 0
	for streak := range 3 {
		a, _ := e.Submit("ok")
		if want := policy.Points(catalog.DifficultyHard, streak); a.Points != want {
			t.Errorf("attempt %d points = %d, want %d", streak, a.Points, want)
		}
		total += a.Points
	}
	if e.Phase() != PhaseResults {
		t.Fatalf("Phase() = %s, want results", e.Phase())
	}
	sum, err := e.Results()
	if err != nil {
		t.Fatal(err)
	}
	if sum.TotalPoints != total {
		t.Errorf("TotalPoints = %d, want %d", sum.TotalPoints, total)
	}
}

func TestSkip_BreaksStreak(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.Start(Config{QuestionCount: 4}); err != nil {
		t.Fatal(err)
	}
	e.Submit("ok")
	e.Submit("ok")

	a, err := e.Skip()
	if err != nil {
		t.Fatal(err)
	}
	if a.Verdict != scoring.VerdictSkipped || a.Points != 0 || a.Answer != "" {
		t.Errorf("skip attempt = %+v", a)
	}
	if s := e.Score(); s.Streak != 0 || s.MaxStreak != 2 {
		t.Errorf("Score() = %+v, want streak 0, maxStreak 2", s)
	}
}

func TestResults_Consistency(t *testing.T) {
	e, fake := newTestEngine(t)
	if err := e.Start(Config{QuestionCount: 10}); err != nil {
		t.Fatal(err)
	}

	answers := []string{"ok", "nope", "", "ok", "ok", "skip", "ok", "bad", "ok", "ok"}
	for _, ans := range answers {
		fake.Advance(2 * time.Second)
		if ans == "skip" {
			e.Skip()
		} else {
			e.Submit(ans)
		}
	}

	if e.Phase() != PhaseResults {
		t.Fatalf("Phase() = %s, want results after the last problem", e.Phase())
	}
	if _, ok := e.CurrentProblem(); ok {
		t.Error("CurrentProblem() should report false in results")
	}

	s, err := e.Results()
	if err != nil {
		t.Fatal(err)
	}
	if want := e.Policy().MaxScore(len(e.Problems())); s.MaxScore != want || s.TotalPoints > s.MaxScore {
		t.Errorf("MaxScore = %d (points %d), want %d", s.MaxScore, s.TotalPoints, want)
	}
	if s.CorrectCount+s.IncorrectCount+s.SkippedCount != s.TotalCount || s.TotalCount != len(e.Attempts()) {
		t.Errorf("counts %d+%d+%d != total %d (attempts %d)",
			s.CorrectCount, s.IncorrectCount, s.SkippedCount, s.TotalCount, len(e.Attempts()))
	}
	if s.CorrectCount != 6 || s.IncorrectCount != 3 || s.SkippedCount != 1 {
		t.Errorf("counts = %d/%d/%d, want 6/3/1", s.CorrectCount, s.IncorrectCount, s.SkippedCount)
	}
	if want := float64(s.CorrectCount) / float64(s.TotalCount); s.Accuracy != want {
		t.Errorf("Accuracy = %v, want %v", s.Accuracy, want)
	}
	if s.Elapsed != 20*time.Second {
		t.Errorf("Elapsed = %v, want 20s", s.Elapsed)
	}
	if s.MaxStreak != e.Score().MaxStreak {
		t.Errorf("MaxStreak = %d, want %d", s.MaxStreak, e.Score().MaxStreak)
	}

	var attempted, correct int
	for _, cat := range s.Categories() {
		attempted += s.Breakdown[cat].Attempted
		correct += s.Breakdown[cat].Correct
	}
	if attempted != s.TotalCount || correct != s.CorrectCount {
		t.Errorf("breakdown sums = %d/%d, want %d/%d", correct, attempted, s.CorrectCount, s.TotalCount)
	}
	for _, a := range e.Attempts() {
		if a.TimeTaken != 2*time.Second {
			t.Errorf("attempt %s TimeTaken = %v, want 2s", a.ProblemID, a.TimeTaken)
		}
	}
}

func TestEnd_Midway(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.Start(Config{QuestionCount: 8}); err != nil {
		t.Fatal(err)
	}
	e.Submit("ok")
	e.Submit("no")

	s, err := e.End()
	if err != nil {
		t.Fatalf("End() error: %v", err)
	}
	if e.Phase() != PhaseResults {
		t.Errorf("Phase() = %s, want results", e.Phase())
	}
	if s.TotalCount != 2 || s.CorrectCount != 1 || s.Accuracy != 0.5 {
		t.Errorf("summary = total %d correct %d accuracy %v, want 2/1/0.5", s.TotalCount, s.CorrectCount, s.Accuracy)
	}
	if s.Unattempted() != 6 {
		t.Errorf("Unattempted() = %d, want 6", s.Unattempted())
	}
}

func TestEnd_Immediately(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.Start(Config{QuestionCount: 3}); err != nil {
		t.Fatal(err)
	}
	s, err := e.End()
	if err != nil {
		t.Fatal(err)
	}
	if s.TotalCount != 0 || s.Accuracy != 0 {
		t.Errorf("summary = %+v, want empty with zero accuracy", s)
	}
}

func TestRetrySame_DeterministicReplay(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.Start(Config{QuestionCount: 6}); err != nil {
		t.Fatal(err)
	}
	firstIDs := problemIDs(e.Problems())
	firstSeed := e.Seed()
	firstSession := e.SessionID()

	e.Submit("ok")
	e.Submit("ok")
	if _, err := e.End(); err != nil {
		t.Fatal(err)
	}

	if err := e.RetrySame(); err != nil {
		t.Fatalf("RetrySame() error: %v", err)
	}
	if e.Phase() != PhaseActive {
		t.Errorf("Phase() = %s, want active", e.Phase())
	}
	if got := problemIDs(e.Problems()); !slices.Equal(got, firstIDs) {
		t.Errorf("replayed problems = %v, want %v", got, firstIDs)
	}
	if e.Seed() != firstSeed {
		t.Errorf("Seed() = %d, want %d", e.Seed(), firstSeed)
	}
	if e.SessionID() == firstSession {
		t.Error("retry should get a new session id")
	}
	if s := e.Score(); s != (ScoreSnapshot{}) {
		t.Errorf("Score() = %+v, want zero", s)
	}
	if len(e.Attempts()) != 0 || e.Progress().Index != 0 {
		t.Error("attempts and index should reset")
	}
}

func TestRetryNew(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.Start(Config{QuestionCount: 10, Seed: 1}); err != nil {
		t.Fatal(err)
	}
	first := problemIDs(e.Problems())
	e.End()

	if err := e.RetryNew(nil); err != nil {
		t.Fatalf("RetryNew(nil) error: %v", err)
	}
	if e.Seed() == 1 {
		t.Error("RetryNew should draw a new seed")
	}
	second := problemIDs(e.Problems())
	sortedFirst, sortedSecond := slices.Sorted(slices.Values(first)), slices.Sorted(slices.Values(second))
	if !slices.Equal(sortedFirst, sortedSecond) {
		t.Errorf("RetryNew with the same config should draw from the same pool: %v vs %v", first, second)
	}
	e.End()

	cfg := Config{Categories: []string{"sql"}, QuestionCount: 2, Seed: 77}
	if err := e.RetryNew(&cfg); err != nil {
		t.Fatalf("RetryNew(cfg) error: %v", err)
	}
	if e.Seed() != 77 || e.Progress().Total != 2 {
		t.Errorf("Seed() = %d, Total = %d, want 77 and 2", e.Seed(), e.Progress().Total)
	}
	for _, p := range e.Problems() {
		if p.Category != "sql" {
			t.Errorf("problem %s category = %s, want sql", p.ID, p.Category)
		}
	}
	e.End()

	bad := Config{Categories: []string{"nothing"}, QuestionCount: 2}
	if err := e.RetryNew(&bad); !IsConfigurationError(err) {
		t.Errorf("RetryNew(bad) error = %v, want ConfigurationError", err)
	}
	if e.Phase() != PhaseResults {
		t.Errorf("Phase() = %s, want results after failed RetryNew", e.Phase())
	}
}

func TestSeed_Reproducible(t *testing.T) {
	a, _ := newTestEngine(t)
	b, _ := newTestEngine(t)
	cfg := Config{QuestionCount: 7, Seed: 4242}
	if err := a.Start(cfg); err != nil {
		t.Fatal(err)
	}
	if err := b.Start(cfg); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(problemIDs(a.Problems()), problemIDs(b.Problems())) {
		t.Error("same seed should give the same order")
	}
}

func TestReset(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Start(Config{QuestionCount: 1})
	e.Submit("ok")

	if err := e.Reset(); err != nil {
		t.Fatalf("Reset() error: %v", err)
	}
	if e.Phase() != PhaseSetup {
		t.Errorf("Phase() = %s, want setup", e.Phase())
	}
	if err := e.Start(Config{QuestionCount: 2}); err != nil {
		t.Errorf("Start after Reset: %v", err)
	}
}

func TestTimer_ExpiryAutoSkips(t *testing.T) {
	e, fake := newTestEngine(t)
	if err := e.Start(Config{QuestionCount: 3, TimeLimit: 10 * time.Second}); err != nil {
		t.Fatal(err)
	}
	e.Submit("ok")

	left, ok := e.Remaining()
	if !ok || left != 10*time.Second {
		t.Errorf("Remaining() = %v, %v, want 10s, true", left, ok)
	}
	fake.Advance(4 * time.Second)
	if left, _ := e.Remaining(); left != 6*time.Second {
		t.Errorf("Remaining() = %v, want 6s", left)
	}

	fake.Advance(6 * time.Second)
	attempts := e.Attempts()
	if len(attempts) != 2 {
		t.Fatalf("len(attempts) = %d, want 2", len(attempts))
	}
	timeout := attempts[1]
	if !timeout.TimedOut || timeout.Verdict != scoring.VerdictSkipped || timeout.Points != 0 {
		t.Errorf("timeout attempt = %+v", timeout)
	}
	if timeout.TimeTaken != 10*time.Second {
		t.Errorf("timeout TimeTaken = %v, want 10s", timeout.TimeTaken)
	}
	if e.Score().Streak != 0 || e.Score().MaxStreak != 1 {
		t.Errorf("Score() = %+v, want streak reset", e.Score())
	}
	if e.Progress().Index != 2 {
		t.Errorf("Progress().Index = %d, want 2", e.Progress().Index)
	}

	// The last problem times out too and ends the session.
	fake.Advance(10 * time.Second)
	if e.Phase() != PhaseResults {
		t.Fatalf("Phase() = %s, want results", e.Phase())
	}
	s, _ := e.Results()
	if s.TimedOutCount != 2 || s.SkippedCount != 2 {
		t.Errorf("TimedOutCount = %d, SkippedCount = %d, want 2, 2", s.TimedOutCount, s.SkippedCount)
	}
	if fake.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", fake.Pending())
	}
	if _, ok := e.Remaining(); ok {
		t.Error("Remaining() should report false in results")
	}
}

func TestTimer_SubmitCancelsPendingTimer(t *testing.T) {
	e, fake := newTestEngine(t)
	if err := e.Start(Config{QuestionCount: 3, TimeLimit: 10 * time.Second}); err != nil {
		t.Fatal(err)
	}

	fake.Advance(9 * time.Second)
	e.Submit("ok")
	if fake.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1 (next problem only)", fake.Pending())
	}

	// The first problem's deadline passes; the second problem has 9s left.
	fake.Advance(9 * time.Second)
	if n := len(e.Attempts()); n != 1 {
		t.Fatalf("len(attempts) = %d, want 1: no timeout after a manual submit", n)
	}

	e.Skip()
	fake.Advance(30 * time.Second)
	attempts := e.Attempts()
	if len(attempts) != 3 {
		t.Fatalf("len(attempts) = %d, want 3", len(attempts))
	}
	if attempts[1].TimedOut || !attempts[2].TimedOut {
		t.Errorf("timed out flags = %v, %v, want false, true", attempts[1].TimedOut, attempts[2].TimedOut)
	}
}

func TestTimer_EndCancels(t *testing.T) {
	e, fake := newTestEngine(t)
	e.Start(Config{QuestionCount: 3, TimeLimit: time.Second})
	e.End()
	if fake.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0 after End", fake.Pending())
	}
	fake.Advance(time.Minute)
	if n := len(e.Attempts()); n != 0 {
		t.Errorf("len(attempts) = %d, want 0", n)
	}
}

func TestTimer_StaleCallbackIgnored(t *testing.T) {
	// A scheduler whose Stop never succeeds, like a timer that already
	// fired but whose callback is still queued.
	sched := &leakyScheduler{}
	e, _ := newTestEngine(t, WithScheduler(sched))
	e.Start(Config{QuestionCount: 3, TimeLimit: time.Second})
	e.Submit("ok")

	sched.fire(0)
	if n := len(e.Attempts()); n != 1 {
		t.Errorf("len(attempts) = %d, want 1: stale callback must not skip", n)
	}
	sched.fire(1)
	if n := len(e.Attempts()); n != 2 {
		t.Errorf("len(attempts) = %d, want 2 after the live timer fires", n)
	}
	sched.fire(1)
	if n := len(e.Attempts()); n != 2 {
		t.Errorf("len(attempts) = %d, want 2: duplicate firing", n)
	}
}

type leakyScheduler struct {
	callbacks []func()
}

type leakyTimer struct{}

func (leakyTimer) Stop() bool { return false }

func (s *leakyScheduler) AfterFunc(_ time.Duration, f func()) clock.Timer {
	s.callbacks = append(s.callbacks, f)
	return leakyTimer{}
}

func (s *leakyScheduler) fire(i int) {
	s.callbacks[i]()
}

func TestUntimed_NoTimers(t *testing.T) {
	e, fake := newTestEngine(t)
	e.Start(Config{QuestionCount: 3})
	if fake.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0 when untimed", fake.Pending())
	}
	if _, ok := e.Remaining(); ok {
		t.Error("Remaining() should report false when untimed")
	}
}

func TestRevealHint(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Start(Config{QuestionCount: 2})

	h1, err := e.RevealHint()
	if err != nil || h1 != "first hint" {
		t.Fatalf("RevealHint() = %q, %v", h1, err)
	}
	h2, _ := e.RevealHint()
	if h2 != "second hint" {
		t.Errorf("second RevealHint() = %q", h2)
	}
	if _, err := e.RevealHint(); !errors.Is(err, ErrNoMoreHints) {
		t.Errorf("third RevealHint() error = %v, want ErrNoMoreHints", err)
	}

	a, _ := e.Submit("ok")
	if a.HintsUsed != 2 {
		t.Errorf("HintsUsed = %d, want 2", a.HintsUsed)
	}
	if e.HintsShown() != 0 {
		t.Errorf("HintsShown() = %d after advancing, want 0", e.HintsShown())
	}
}

func TestQuizMode(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.Start(Config{QuestionCount: 10, Mode: ModeQuiz}); err != nil {
		t.Fatal(err)
	}
	if got := e.Progress().Total; got != 5 {
		t.Fatalf("Total = %d, want 5 problems with choices", got)
	}
	for _, p := range e.Problems() {
		if !p.HasChoices() {
			t.Errorf("problem %s has no choices", p.ID)
		}
	}

	if a, _ := e.Submit("a"); a.Verdict != scoring.VerdictCorrect {
		t.Errorf("choice a verdict = %s, want correct", a.Verdict)
	}
	if a, _ := e.Submit("b"); a.Verdict != scoring.VerdictIncorrect {
		t.Errorf("choice b verdict = %s, want incorrect", a.Verdict)
	}
}

func TestObserver(t *testing.T) {
	rec := &recorder{}
	e, _ := newTestEngine(t, WithObserver(rec))
	e.Start(Config{QuestionCount: 2, Seed: 5})
	e.Submit("ok")
	e.Skip()
	e.RetrySame()

	if len(rec.started) != 2 {
		t.Fatalf("started events = %d, want 2", len(rec.started))
	}
	if rec.started[0].Retry || !rec.started[1].Retry {
		t.Error("retry flag mismatch")
	}
	if rec.started[0].Seed != 5 || len(rec.started[0].ProblemIDs) != 2 {
		t.Errorf("start info = %+v", rec.started[0])
	}
	if len(rec.attempts) != 2 || len(rec.ended) != 1 {
		t.Errorf("attempts = %d, ended = %d, want 2, 1", len(rec.attempts), len(rec.ended))
	}
	if rec.ended[0].SessionID != "session-1" {
		t.Errorf("ended session = %q, want session-1", rec.ended[0].SessionID)
	}
}

func TestObservers_FanOut(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	e, _ := newTestEngine(t, WithObserver(Observers(a, nil, b)))
	e.Start(Config{QuestionCount: 1, Seed: 5})
	e.Submit("ok")

	for i, rec := range []*recorder{a, b} {
		if len(rec.started) != 1 || len(rec.attempts) != 1 || len(rec.ended) != 1 {
			t.Errorf("observer %d saw %d/%d/%d events, want 1/1/1",
				i, len(rec.started), len(rec.attempts), len(rec.ended))
		}
	}
}
