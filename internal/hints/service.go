// Package hints serves authored hints first and, once those run out,
// short generated nudges from an LLM provider.
package hints

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/abhisek/codedrills/internal/catalog"
	"github.com/abhisek/codedrills/internal/llm"
	"github.com/abhisek/codedrills/internal/session"
	"github.com/abhisek/codedrills/internal/store"
	"github.com/abhisek/codedrills/internal/validator"
)

var (
	// ErrLeaksAnswer is returned when a generated hint contains the
	// reference answer. The hint is discarded.
	ErrLeaksAnswer = errors.New("generated hint reveals the answer")

	// ErrExhausted is returned when no authored hints remain and no more
	// can be generated.
	ErrExhausted = errors.New("no more hints for this problem")
)

// Hint is one hint shown to the learner.
type Hint struct {
	Text string

	// Source is store.HintSourceAuthored or store.HintSourceGenerated.
	Source string
}

// Generated reports whether the hint came from the LLM.
func (h Hint) Generated() bool {
	return h.Source == store.HintSourceGenerated
}

// Recorder persists shown hints. history.Recorder implements it.
type Recorder interface {
	RecordHint(sessionID, problemID, source, text string)
}

// Engine is the part of session.Engine that hints need.
type Engine interface {
	RevealHint() (string, error)
	CurrentProblem() (catalog.Problem, bool)
	SessionID() string
}

// Request asks for a generated hint.
type Request struct {
	SessionID  string
	Problem    catalog.Problem
	LastAnswer string
}

// Service hands out hints. A Service without a provider serves authored
// hints only.
type Service struct {
	provider llm.Provider
	cfg      Config
	recorder Recorder
	logger   *slog.Logger

	mu        sync.Mutex
	generated map[string][]string // sessionID/problemID -> generated hints
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder persists every hint served.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService returns a Service. provider may be nil.
func NewService(provider llm.Provider, cfg Config, opts ...Option) *Service {
	s := &Service{
		provider:  provider,
		cfg:       cfg,
		logger:    slog.New(slog.DiscardHandler),
		generated: make(map[string][]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ session.Observer = (*Service)(nil)

// Forget drops the generated hints kept for a session.
func (s *Service) Forget(sessionID string) {
	prefix := sessionID + "/"
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.generated {
		if strings.HasPrefix(key, prefix) {
			delete(s.generated, key)
		}
	}
}

func (s *Service) SessionStarted(session.RunInfo)                {}
func (s *Service) AttemptRecorded(string, int, session.Attempt) {}

// SessionEnded forgets the run's generated hints. A retry starts a new
// session id, so nothing is needed afterwards.
func (s *Service) SessionEnded(sum session.Summary) {
	s.Forget(sum.SessionID)
}

// CanGenerate reports whether an LLM provider is configured.
func (s *Service) CanGenerate() bool {
	return s != nil && s.provider != nil
}

// Next reveals the engine's next authored hint, or generates one when the
// authored hints are used up. It must be called from the goroutine that
// owns eng.
func (s *Service) Next(ctx context.Context, eng Engine, lastAnswer string) (Hint, error) {
	text, err := eng.RevealHint()
	if err == nil {
		p, _ := eng.CurrentProblem()
		s.RecordAuthored(eng.SessionID(), p.ID, text)
		return Hint{Text: text, Source: store.HintSourceAuthored}, nil
	}
	if !errors.Is(err, session.ErrNoMoreHints) {
		return Hint{}, err
	}

	p, ok := eng.CurrentProblem()
	if !ok {
		return Hint{}, ErrExhausted
	}
	return s.Generate(ctx, Request{SessionID: eng.SessionID(), Problem: p, LastAnswer: lastAnswer})
}

// RecordAuthored records an authored hint revealed outside Next.
func (s *Service) RecordAuthored(sessionID, problemID, text string) {
	if s != nil && s.recorder != nil {
		s.recorder.RecordHint(sessionID, problemID, store.HintSourceAuthored, text)
	}
}

// Generate asks the provider for a hint beyond the authored ones. It is
// safe to call from a background goroutine.
func (s *Service) Generate(ctx context.Context, req Request) (Hint, error) {
	if !s.CanGenerate() {
		return Hint{}, ErrExhausted
	}

	key := req.SessionID + "/" + req.Problem.ID
	s.mu.Lock()
	prior := append([]string(nil), s.generated[key]...)
	s.mu.Unlock()
	if len(prior) >= s.cfg.MaxGenerated {
		return Hint{}, ErrExhausted
	}

	text, err := s.ask(ctx, req, prior)
	if err != nil {
		return Hint{}, err
	}

	if leaks(text, req.Problem, s.cfg.MinLeakLength) {
		s.logger.Warn("discarded generated hint that reveals the answer", "problem", req.Problem.ID)
		return Hint{}, ErrLeaksAnswer
	}

	s.mu.Lock()
	s.generated[key] = append(s.generated[key], text)
	s.mu.Unlock()

	if s.recorder != nil {
		s.recorder.RecordHint(req.SessionID, req.Problem.ID, store.HintSourceGenerated, text)
	}
	return Hint{Text: text, Source: store.HintSourceGenerated}, nil
}

func (s *Service) ask(ctx context.Context, req Request, prior []string) (string, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeHint)

	shown := append(append([]string(nil), req.Problem.Hints...), prior...)
	msg := buildUserMessage(req, shown)

	resp, err := s.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: msg}},
		Schema:      HintSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("hint generation: %w", err)
	}

	var out hintOutput
	if err := resp.Decode(&out); err != nil {
		return "", fmt.Errorf("parse hint response: %w", err)
	}
	text := strings.TrimSpace(out.Hint)
	if text == "" {
		return "", fmt.Errorf("hint generation: empty hint")
	}
	return text, nil
}

// leaks reports whether hint contains any reference answer of p at least
// minLen characters long, compared after normalization and case folding.
func leaks(hint string, p catalog.Problem, minLen int) bool {
	h := strings.ToLower(validator.Normalize(hint))
	candidates := []string{p.SampleAnswer, p.ExpectedOutput}
	if c, ok := p.Choice(p.Answer); ok {
		candidates = append(candidates, c.Text)
	}
	for _, c := range candidates {
		c = strings.ToLower(validator.Normalize(c))
		if len([]rune(c)) >= minLen && strings.Contains(h, c) {
			return true
		}
	}
	return false
}
