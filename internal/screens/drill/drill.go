// Package drill is the active-session screen. It owns a session.Engine
// and drives it from keyboard input and countdown ticks.
package drill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/codedrills/internal/catalog"
	"github.com/abhisek/codedrills/internal/clock"
	"github.com/abhisek/codedrills/internal/hints"
	"github.com/abhisek/codedrills/internal/router"
	"github.com/abhisek/codedrills/internal/scoring"
	"github.com/abhisek/codedrills/internal/screen"
	"github.com/abhisek/codedrills/internal/screens/results"
	"github.com/abhisek/codedrills/internal/session"
	"github.com/abhisek/codedrills/internal/store"
	"github.com/abhisek/codedrills/internal/ui/components"
	"github.com/abhisek/codedrills/internal/ui/layout"
)

const hintTimeout = 30 * time.Second

// Deps are the collaborators a drill screen needs.
type Deps struct {
	Catalog  *catalog.Catalog
	Policy   scoring.Policy
	Observer session.Observer
	Hints    *hints.Service
	Clock    clock.Clock
	Logger   *slog.Logger

	// NewSetup builds the setup form used by "change setup" on the
	// results screen. Nil pops back instead.
	NewSetup func(cfg session.Config) screen.Screen
}

// feedback describes the outcome of the previous problem.
type feedback struct {
	attempt session.Attempt
	problem catalog.Problem
	quiz    bool
	// streak is the run of correct answers including this attempt.
	streak int
}

// DrillScreen implements screen.Screen for an active drill or quiz.
type DrillScreen struct {
	deps   Deps
	engine *session.Engine
	sched  *teaScheduler

	problemKey string
	input      components.TextInput
	choices    components.MultiChoice
	hints      []hints.Hint
	hintWait   bool

	last          *feedback
	notice        string
	confirmingEnd bool
	resultsShown  bool
	ticking       bool
	closed        bool
}

var (
	_ screen.Screen          = (*DrillScreen)(nil)
	_ screen.KeyHintProvider = (*DrillScreen)(nil)
	_ screen.StatusProvider  = (*DrillScreen)(nil)
	_ screen.Closer          = (*DrillScreen)(nil)
	_ screen.KeyCapturer     = (*DrillScreen)(nil)
)

// New starts a session for cfg. A configuration error is returned as is
// so the setup form can show it.
func New(deps Deps, cfg session.Config) (*DrillScreen, error) {
	if deps.Policy == (scoring.Policy{}) {
		deps.Policy = scoring.DefaultPolicy()
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}

	s := &DrillScreen{deps: deps, sched: newTeaScheduler()}
	opts := []session.Option{
		session.WithClock(deps.Clock),
		session.WithScheduler(s.sched),
		session.WithPolicy(deps.Policy),
		session.WithLogger(deps.Logger),
	}
	if deps.Observer != nil {
		opts = append(opts, session.WithObserver(deps.Observer))
	}
	s.engine = session.New(deps.Catalog, opts...)

	if err := s.engine.Start(cfg); err != nil {
		return nil, err
	}
	s.syncProblem()
	return s, nil
}

// Engine exposes the underlying engine, mainly for tests.
func (s *DrillScreen) Engine() *session.Engine {
	return s.engine
}

func (s *DrillScreen) Init() tea.Cmd {
	return tea.Batch(s.sched.drain(), s.input.Init(), s.startTicking())
}

func (s *DrillScreen) Title() string {
	return s.engine.Config().Mode.DisplayName()
}

func (s *DrillScreen) quiz() bool {
	return s.engine.Config().Mode == session.ModeQuiz
}

func (s *DrillScreen) KeyHints() []layout.KeyHint {
	if s.confirmingEnd {
		return []layout.KeyHint{
			{Key: "Y", Description: "End session"},
			{Key: "N", Description: "Keep going"},
		}
	}
	if s.engine.Phase() != session.PhaseActive {
		return nil
	}
	submit := layout.KeyHint{Key: "Enter", Description: "Submit"}
	if s.quiz() {
		submit = layout.KeyHint{Key: "A-D/Enter", Description: "Choose"}
	}
	return []layout.KeyHint{
		submit,
		{Key: "Ctrl+S", Description: "Skip"},
		{Key: "Ctrl+G", Description: "Hint"},
		{Key: "Esc", Description: "End"},
	}
}

func (s *DrillScreen) Status() layout.Status {
	sc := s.engine.Score()
	return layout.Status{Score: sc.Score, Streak: sc.Streak, Shown: true}
}

// CapturesEsc keeps the app from popping an active session without a
// confirmation.
func (s *DrillScreen) CapturesEsc() bool {
	return s.engine.Phase() == session.PhaseActive
}

// Close ends a still-running session so that it is recorded.
func (s *DrillScreen) Close() tea.Cmd {
	s.closed = true
	s.sched.stopAll()
	if s.engine.Phase() == session.PhaseActive {
		if _, err := s.engine.End(); err != nil {
			s.deps.Logger.Warn("failed to end session on close", "error", err)
		}
	}
	return nil
}

func (s *DrillScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case timerFiredMsg:
		if msg.sched != s.sched {
			return s, nil
		}
		before := len(s.engine.Attempts())
		if !s.sched.fire(msg.id) {
			return s, nil
		}
		s.noteAttempt(before)
		return s, s.afterEngine()

	case countdownTickMsg:
		if msg.sched != s.sched || s.closed || s.engine.Phase() != session.PhaseActive {
			s.ticking = false
			return s, nil
		}
		return s, s.tick()

	case hintGeneratedMsg:
		return s.handleHint(msg)

	case results.RetrySameMsg:
		return s, s.retry(s.engine.RetrySame)

	case results.RetryNewMsg:
		return s, s.retry(func() error { return s.engine.RetryNew(nil) })

	case results.ChangeSetupMsg:
		return s.changeSetup()

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.engine.Phase() == session.PhaseActive && !s.quiz() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *DrillScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.confirmingEnd {
		switch key {
		case "y", "Y":
			s.confirmingEnd = false
			if _, err := s.engine.End(); err != nil {
				s.notice = err.Error()
				return s, nil
			}
			return s, s.afterEngine()
		case "n", "N", "esc":
			s.confirmingEnd = false
		}
		return s, nil
	}

	if s.engine.Phase() != session.PhaseActive {
		return s, nil
	}

	switch key {
	case "esc":
		s.confirmingEnd = true
		return s, nil
	case "ctrl+s":
		return s, s.skip()
	case "ctrl+g":
		return s, s.requestHint()
	}

	if s.quiz() {
		s.choices, _ = s.choices.Update(msg)
		if s.choices.Submitted() {
			return s, s.submit(s.choices.Chosen)
		}
		return s, nil
	}

	if key == "enter" {
		if s.input.Value() == "" {
			return s, nil
		}
		return s, s.submit(s.input.Value())
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *DrillScreen) submit(answer string) tea.Cmd {
	before := len(s.engine.Attempts())
	if _, err := s.engine.Submit(answer); err != nil {
		s.notice = err.Error()
		return nil
	}
	s.noteAttempt(before)
	return s.afterEngine()
}

func (s *DrillScreen) skip() tea.Cmd {
	before := len(s.engine.Attempts())
	if _, err := s.engine.Skip(); err != nil {
		s.notice = err.Error()
		return nil
	}
	s.noteAttempt(before)
	return s.afterEngine()
}

// noteAttempt captures the attempt recorded since before, together with
// the problem it answered, for the feedback banner.
func (s *DrillScreen) noteAttempt(before int) {
	attempts := s.engine.Attempts()
	if len(attempts) <= before {
		return
	}
	a := attempts[len(attempts)-1]
	p, _ := s.deps.Catalog.ByID(a.ProblemID)
	s.last = &feedback{attempt: a, problem: p, quiz: s.quiz(), streak: s.engine.Score().Streak}
	s.notice = ""
}

// afterEngine reconciles the screen with the engine after a command:
// queued countdowns are handed to the runtime, a new problem resets the
// inputs, and entering Results pushes the results screen.
func (s *DrillScreen) afterEngine() tea.Cmd {
	cmds := []tea.Cmd{s.sched.drain()}

	switch s.engine.Phase() {
	case session.PhaseActive:
		s.resultsShown = false
		if s.syncProblem() {
			cmds = append(cmds, s.input.Init())
		}
		cmds = append(cmds, s.startTicking())
	case session.PhaseResults:
		if !s.resultsShown {
			s.resultsShown = true
			if sum, err := s.engine.Results(); err == nil {
				cmds = append(cmds, func() tea.Msg {
					return router.PushScreenMsg{Screen: results.New(sum)}
				})
			}
		}
	}
	return tea.Batch(cmds...)
}

// syncProblem resets per-problem UI state when the engine moved on. It
// reports whether the problem changed.
func (s *DrillScreen) syncProblem() bool {
	key := fmt.Sprintf("%s/%d", s.engine.SessionID(), s.engine.Progress().Index)
	if key == s.problemKey {
		return false
	}
	s.problemKey = key
	s.hints = nil
	s.hintWait = false
	s.input = components.NewAnswerInput("Type your answer...")
	if p, ok := s.engine.CurrentProblem(); ok && s.quiz() {
		s.choices = components.NewMultiChoice(p.Choices)
	}
	return true
}

func (s *DrillScreen) retry(fn func() error) tea.Cmd {
	if err := fn(); err != nil {
		s.notice = err.Error()
		return nil
	}
	s.last = nil
	s.notice = ""
	return s.afterEngine()
}

func (s *DrillScreen) changeSetup() (screen.Screen, tea.Cmd) {
	cfg := s.engine.Config()
	if err := s.engine.Reset(); err != nil {
		s.notice = err.Error()
		return s, nil
	}
	if s.deps.NewSetup == nil {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	next := s.deps.NewSetup(cfg)
	return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

// requestHint reveals the next authored hint, or starts a background
// request for a generated one when the authored hints are used up.
func (s *DrillScreen) requestHint() tea.Cmd {
	p, ok := s.engine.CurrentProblem()
	if !ok {
		return nil
	}
	text, err := s.engine.RevealHint()
	if err == nil {
		s.deps.Hints.RecordAuthored(s.engine.SessionID(), p.ID, text)
		s.hints = append(s.hints, hints.Hint{Text: text, Source: store.HintSourceAuthored})
		s.notice = ""
		return nil
	}
	if !errors.Is(err, session.ErrNoMoreHints) {
		s.notice = err.Error()
		return nil
	}
	if s.hintWait {
		return nil
	}
	if !s.deps.Hints.CanGenerate() {
		s.notice = "No more hints for this problem."
		return nil
	}

	s.hintWait = true
	svc, sched, key := s.deps.Hints, s.sched, s.problemKey
	req := hints.Request{SessionID: s.engine.SessionID(), Problem: p, LastAnswer: s.input.Value()}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), hintTimeout)
		defer cancel()
		h, err := svc.Generate(ctx, req)
		return hintGeneratedMsg{sched: sched, key: key, Hint: h, Err: err}
	}
}

func (s *DrillScreen) handleHint(msg hintGeneratedMsg) (screen.Screen, tea.Cmd) {
	if msg.sched != s.sched || msg.key != s.problemKey {
		return s, nil
	}
	s.hintWait = false
	switch {
	case msg.Err == nil:
		s.hints = append(s.hints, msg.Hint)
		s.notice = ""
	case errors.Is(msg.Err, hints.ErrExhausted):
		s.notice = "No more hints for this problem."
	case errors.Is(msg.Err, hints.ErrLeaksAnswer):
		s.notice = "That hint gave the answer away. Ask again for another."
	default:
		s.deps.Logger.Warn("hint generation failed", "error", msg.Err)
		s.notice = "Hint unavailable right now."
	}
	return s, nil
}

func (s *DrillScreen) startTicking() tea.Cmd {
	if s.ticking || s.closed || !s.engine.Config().Timed() || s.engine.Phase() != session.PhaseActive {
		return nil
	}
	s.ticking = true
	return s.tick()
}

func (s *DrillScreen) tick() tea.Cmd {
	sched := s.sched
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return countdownTickMsg{sched: sched}
	})
}
