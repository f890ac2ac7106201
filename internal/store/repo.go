package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To

	Mode     string // session queries only
	Category string // session queries only: sessions with an attempt in this category
	Purpose  string // LLM queries only
}

// Session event actions.
const (
	ActionStart = "start"
	ActionEnd   = "end"
)

// SessionEventData captures a session start or end. End events carry the
// final tallies; start events leave them zero.
type SessionEventData struct {
	SessionID     string
	Action        string
	Mode          string
	Seed          uint64
	Retry         bool
	Categories    []string
	Difficulty    string
	QuestionCount int
	TimeLimitSecs int
	ProblemIDs    []string

	Score      int
	Correct    int
	Incorrect  int
	Skipped    int
	TimedOut   int
	Total      int
	MaxStreak  int
	DurationMs int64
}

// AttemptEventData captures one recorded answer, skip or timeout.
type AttemptEventData struct {
	SessionID      string
	Position       int
	ProblemID      string
	Category       string
	Difficulty     string
	Answer         string
	Verdict        string
	Points         int
	TimeMs         int64
	TimedOut       bool
	HintsUsed      int
	MatchedPattern int
}

// Hint sources.
const (
	HintSourceAuthored  = "authored"
	HintSourceGenerated = "generated"
)

// HintEventData captures a hint shown to the user.
type HintEventData struct {
	SessionID string
	ProblemID string
	Source    string
	HintText  string
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// SessionRecord is a finished session as read back from session end events.
type SessionRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	SessionEventData
}

// Accuracy is the fraction of questions answered correctly.
func (r SessionRecord) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Total)
}

// AttemptRecord is a stored attempt event.
type AttemptRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	AttemptEventData
}

// HintRecord is a stored hint event.
type HintRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	HintEventData
}

// LLMRequestRecord is a stored LLM request event.
type LLMRequestRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// CategoryAccuracy aggregates attempts in one category across all sessions.
type CategoryAccuracy struct {
	Category  string
	Attempted int
	Correct   int
	Skipped   int
}

// Accuracy is the fraction of attempts answered correctly.
func (c CategoryAccuracy) Accuracy() float64 {
	if c.Attempted == 0 {
		return 0
	}
	return float64(c.Correct) / float64(c.Attempted)
}

// LLMUsage aggregates LLM calls by purpose or model.
type LLMUsage struct {
	Key          string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	AppendSessionEvent(ctx context.Context, data SessionEventData) error
	AppendAttemptEvent(ctx context.Context, data AttemptEventData) error
	AppendHintEvent(ctx context.Context, data HintEventData) error
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// RecentSessions returns finished sessions, newest first.
	RecentSessions(ctx context.Context, opts QueryOpts) ([]SessionRecord, error)
	// BestScores returns the highest scoring finished sessions for a mode.
	BestScores(ctx context.Context, mode string, limit int) ([]SessionRecord, error)
	// SessionAttempts returns a session's attempts in the order they were recorded.
	SessionAttempts(ctx context.Context, sessionID string) ([]AttemptRecord, error)
	// CategoryAccuracy aggregates every stored attempt by category.
	CategoryAccuracy(ctx context.Context) ([]CategoryAccuracy, error)
	QueryHintEvents(ctx context.Context, sessionID string) ([]HintRecord, error)

	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestRecord, error)
	// GetLLMEvent returns nil when no event has the id.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestRecord, error)
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}
