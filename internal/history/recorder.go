// Package history persists session lifecycle events to the event store.
package history

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/abhisek/codedrills/internal/session"
	"github.com/abhisek/codedrills/internal/store"
)

// writeTimeout bounds each store write so a locked database cannot stall
// the session that triggered it.
const writeTimeout = 5 * time.Second

// Recorder is a session.Observer that appends events to an EventRepo.
// Write failures are logged and never surface to the session.
type Recorder struct {
	repo   store.EventRepo
	logger *slog.Logger

	mu   sync.Mutex
	runs map[string]session.RunInfo
}

var _ session.Observer = (*Recorder)(nil)

// NewRecorder returns a Recorder writing to repo. A nil logger discards.
func NewRecorder(repo store.EventRepo, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Recorder{
		repo:   repo,
		logger: logger,
		runs:   make(map[string]session.RunInfo),
	}
}

func (r *Recorder) SessionStarted(info session.RunInfo) {
	r.mu.Lock()
	r.runs[info.SessionID] = info
	r.mu.Unlock()

	data := runData(info)
	data.Action = store.ActionStart
	r.write("session start", func(ctx context.Context) error {
		return r.repo.AppendSessionEvent(ctx, data)
	})
}

func (r *Recorder) AttemptRecorded(sessionID string, index int, a session.Attempt) {
	data := store.AttemptEventData{
		SessionID:      sessionID,
		Position:       index,
		ProblemID:      a.ProblemID,
		Category:       a.Category,
		Difficulty:     string(a.Difficulty),
		Answer:         a.Answer,
		Verdict:        string(a.Verdict),
		Points:         a.Points,
		TimeMs:         a.TimeTakenMs(),
		TimedOut:       a.TimedOut,
		HintsUsed:      a.HintsUsed,
		MatchedPattern: a.MatchedPattern,
	}
	r.write("attempt", func(ctx context.Context) error {
		return r.repo.AppendAttemptEvent(ctx, data)
	})
}

func (r *Recorder) SessionEnded(s session.Summary) {
	r.mu.Lock()
	info, ok := r.runs[s.SessionID]
	delete(r.runs, s.SessionID)
	r.mu.Unlock()

	if !ok {
		info = session.RunInfo{SessionID: s.SessionID, Seed: s.Seed, StartedAt: s.StartedAt}
		info.Config.Mode = s.Mode
	}

	data := runData(info)
	data.Action = store.ActionEnd
	data.ProblemIDs = s.ProblemIDs
	data.Score = s.TotalPoints
	data.Correct = s.CorrectCount
	data.Incorrect = s.IncorrectCount
	data.Skipped = s.SkippedCount
	data.TimedOut = s.TimedOutCount
	data.Total = s.TotalCount
	data.MaxStreak = s.MaxStreak
	data.DurationMs = s.Elapsed.Milliseconds()

	r.write("session end", func(ctx context.Context) error {
		return r.repo.AppendSessionEvent(ctx, data)
	})
}

// RecordHint stores a hint shown for a problem. source is
// store.HintSourceAuthored or store.HintSourceGenerated.
func (r *Recorder) RecordHint(sessionID, problemID, source, text string) {
	data := store.HintEventData{
		SessionID: sessionID,
		ProblemID: problemID,
		Source:    source,
		HintText:  text,
	}
	r.write("hint", func(ctx context.Context) error {
		return r.repo.AppendHintEvent(ctx, data)
	})
}

func (r *Recorder) write(what string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		r.logger.Warn("failed to record event", "event", what, "error", err)
	}
}

func runData(info session.RunInfo) store.SessionEventData {
	cfg := info.Config
	return store.SessionEventData{
		SessionID:     info.SessionID,
		Mode:          string(cfg.Mode),
		Seed:          info.Seed,
		Retry:         info.Retry,
		Categories:    cfg.Categories,
		Difficulty:    string(cfg.Difficulty),
		QuestionCount: cfg.QuestionCount,
		TimeLimitSecs: int(cfg.TimeLimit / time.Second),
		ProblemIDs:    info.ProblemIDs,
	}
}
