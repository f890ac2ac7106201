package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type StoreTestSuite struct {
	suite.Suite
	store *Store
	repo  EventRepo
	ctx   context.Context
	clock time.Time
}

func (s *StoreTestSuite) SetupTest() {
	s.clock = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	st, err := Open(filepath.Join(s.T().TempDir(), "test.db"), WithNow(func() time.Time {
		s.clock = s.clock.Add(time.Second)
		return s.clock
	}))
	s.Require().NoError(err)
	s.store = st
	s.repo = st.EventRepo()
	s.ctx = context.Background()
}

func (s *StoreTestSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func TestOpen_InMemory(t *testing.T) {
	st, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) error: %v", err)
	}
	defer st.Close()
	if st.Path() != ":memory:" {
		t.Errorf("Path() = %q", st.Path())
	}
	if err := st.EventRepo().AppendHintEvent(context.Background(), HintEventData{SessionID: "s", ProblemID: "p", Source: HintSourceAuthored, HintText: "h"}); err != nil {
		t.Errorf("append to in-memory store: %v", err)
	}
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) TestPragmas() {
	var fk int
	s.Require().NoError(s.store.DB().QueryRow("PRAGMA foreign_keys").Scan(&fk))
	s.Equal(1, fk)

	var sync int
	s.Require().NoError(s.store.DB().QueryRow("PRAGMA synchronous").Scan(&sync))
	s.Equal(1, sync) // NORMAL
}

func (s *StoreTestSuite) TestMigrationsIdempotent() {
	s.Require().NoError(migrate(s.store.DB()))

	var n int
	s.Require().NoError(s.store.DB().QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&n))
	s.Equal(1, n)
}

func (s *StoreTestSuite) TestSequenceIsGlobal() {
	s.Require().NoError(s.repo.AppendSessionEvent(s.ctx, SessionEventData{
		SessionID: "s1", Action: ActionStart, Mode: "drill", Seed: 7,
	}))
	s.Require().NoError(s.repo.AppendAttemptEvent(s.ctx, AttemptEventData{
		SessionID: "s1", ProblemID: "p1", Category: "sql", Difficulty: "easy", Verdict: "correct",
	}))
	s.Require().NoError(s.repo.AppendHintEvent(s.ctx, HintEventData{
		SessionID: "s1", ProblemID: "p2", HintText: "look left",
	}))

	attempts, err := s.repo.SessionAttempts(s.ctx, "s1")
	s.Require().NoError(err)
	s.Require().Len(attempts, 1)

	hints, err := s.repo.QueryHintEvents(s.ctx, "s1")
	s.Require().NoError(err)
	s.Require().Len(hints, 1)

	s.Equal(int64(2), attempts[0].Sequence)
	s.Equal(int64(3), hints[0].Sequence)
	s.Equal(HintSourceAuthored, hints[0].Source)
}

func (s *StoreTestSuite) TestRejectsUnknownSessionAction() {
	err := s.repo.AppendSessionEvent(s.ctx, SessionEventData{SessionID: "s1", Action: "pause"})
	s.Error(err)
}

func (s *StoreTestSuite) TestRecentSessionsRoundTrip() {
	s.appendSession("a", "drill", 40, "sql")
	s.appendSession("b", "quiz", 90, "regex")
	s.appendSession("c", "drill", 60, "regex")

	all, err := s.repo.RecentSessions(s.ctx, QueryOpts{})
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal("c", all[0].SessionID)
	s.Equal("a", all[2].SessionID)

	first := all[2]
	s.Equal(uint64(1)<<63+40, first.Seed)
	s.Equal([]string{"sql"}, first.Categories)
	s.Equal([]string{"a-1", "a-2"}, first.ProblemIDs)
	s.Equal(2, first.Total)
	s.InDelta(0.5, first.Accuracy(), 1e-9)
	s.False(first.Timestamp.IsZero())

	limited, err := s.repo.RecentSessions(s.ctx, QueryOpts{Limit: 1})
	s.Require().NoError(err)
	s.Require().Len(limited, 1)
	s.Equal("c", limited[0].SessionID)

	drills, err := s.repo.RecentSessions(s.ctx, QueryOpts{Mode: "drill"})
	s.Require().NoError(err)
	s.Len(drills, 2)

	regex, err := s.repo.RecentSessions(s.ctx, QueryOpts{Category: "regex"})
	s.Require().NoError(err)
	s.Require().Len(regex, 2)
	s.Equal("c", regex[0].SessionID)
	s.Equal("b", regex[1].SessionID)
}

func (s *StoreTestSuite) TestBestScores() {
	s.appendSession("a", "drill", 40, "sql")
	s.appendSession("b", "drill", 90, "sql")
	s.appendSession("c", "quiz", 100, "sql")
	s.appendSession("d", "drill", 90, "sql")

	best, err := s.repo.BestScores(s.ctx, "drill", 2)
	s.Require().NoError(err)
	s.Require().Len(best, 2)
	s.Equal("b", best[0].SessionID)
	s.Equal("d", best[1].SessionID)
}

func (s *StoreTestSuite) TestCategoryAccuracy() {
	s.appendSession("a", "drill", 40, "sql")
	s.appendSession("b", "drill", 40, "regex")
	s.Require().NoError(s.repo.AppendAttemptEvent(s.ctx, AttemptEventData{
		SessionID: "b", ProblemID: "x", Category: "regex", Difficulty: "hard", Verdict: "skipped", TimedOut: true,
	}))

	acc, err := s.repo.CategoryAccuracy(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(acc, 2)
	s.Equal(CategoryAccuracy{Category: "regex", Attempted: 3, Correct: 1, Skipped: 1}, acc[0])
	s.Equal(CategoryAccuracy{Category: "sql", Attempted: 2, Correct: 1}, acc[1])
	s.InDelta(0.5, acc[1].Accuracy(), 1e-9)

	attempts, err := s.repo.SessionAttempts(s.ctx, "b")
	s.Require().NoError(err)
	s.Require().Len(attempts, 3)
	s.True(attempts[2].TimedOut)
	s.Equal(-1, attempts[1].MatchedPattern)
}

func (s *StoreTestSuite) TestLLMEvents() {
	s.Require().NoError(s.repo.AppendLLMRequest(s.ctx, LLMRequestEventData{
		Provider: "mock", Model: "m1", Purpose: "hint", InputTokens: 10, OutputTokens: 5,
		LatencyMs: 100, Success: true, RequestBody: "req", ResponseBody: "resp",
	}))
	s.Require().NoError(s.repo.AppendLLMRequest(s.ctx, LLMRequestEventData{
		Provider: "mock", Model: "m2", Purpose: "hint", InputTokens: 20, OutputTokens: 15,
		LatencyMs: 300, ErrorMessage: "boom",
	}))
	s.Require().NoError(s.repo.AppendLLMRequest(s.ctx, LLMRequestEventData{
		Provider: "mock", Model: "m1", Purpose: "health-check", InputTokens: 1, OutputTokens: 1,
		LatencyMs: 10, Success: true,
	}))

	events, err := s.repo.QueryLLMEvents(s.ctx, QueryOpts{Purpose: "hint"})
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal("m2", events[0].Model)
	s.False(events[0].Success)

	got, err := s.repo.GetLLMEvent(s.ctx, events[1].ID)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal("req", got.RequestBody)
	s.True(got.Success)

	missing, err := s.repo.GetLLMEvent(s.ctx, 9999)
	s.Require().NoError(err)
	s.Nil(missing)

	byPurpose, err := s.repo.LLMUsageByPurpose(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(byPurpose, 2)
	s.Equal(LLMUsage{Key: "health-check", Calls: 1, InputTokens: 1, OutputTokens: 1, AvgLatencyMs: 10}, byPurpose[0])
	s.Equal(LLMUsage{Key: "hint", Calls: 2, InputTokens: 30, OutputTokens: 20, AvgLatencyMs: 200}, byPurpose[1])

	byModel, err := s.repo.LLMUsageByModel(s.ctx)
	s.Require().NoError(err)
	s.Len(byModel, 2)
}

func (s *StoreTestSuite) TestQueryOptsTimeWindow() {
	for i := 0; i < 3; i++ {
		s.Require().NoError(s.repo.AppendLLMRequest(s.ctx, LLMRequestEventData{Provider: "mock", Model: "m"}))
	}
	// Events are stamped 09:00:01, 09:00:02 and 09:00:03.
	from := time.Date(2026, 3, 1, 9, 0, 2, 0, time.UTC)
	events, err := s.repo.QueryLLMEvents(s.ctx, QueryOpts{From: from})
	s.Require().NoError(err)
	s.Len(events, 2)

	events, err = s.repo.QueryLLMEvents(s.ctx, QueryOpts{After: 1, Before: 3})
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(int64(2), events[0].Sequence)
}

// appendSession writes a start event, two attempts (one correct) and an end event.
func (s *StoreTestSuite) appendSession(id, mode string, score int, category string) {
	seed := uint64(1)<<63 + uint64(score)
	s.Require().NoError(s.repo.AppendSessionEvent(s.ctx, SessionEventData{
		SessionID: id, Action: ActionStart, Mode: mode, Seed: seed,
		Categories: []string{category}, Difficulty: "all", QuestionCount: 2,
	}))
	s.Require().NoError(s.repo.AppendAttemptEvent(s.ctx, AttemptEventData{
		SessionID: id, Position: 0, ProblemID: id + "-1", Category: category, Difficulty: "easy",
		Answer: "x", Verdict: "correct", Points: score, MatchedPattern: 0,
	}))
	s.Require().NoError(s.repo.AppendAttemptEvent(s.ctx, AttemptEventData{
		SessionID: id, Position: 1, ProblemID: id + "-2", Category: category, Difficulty: "easy",
		Answer: "y", Verdict: "incorrect", MatchedPattern: -1,
	}))
	s.Require().NoError(s.repo.AppendSessionEvent(s.ctx, SessionEventData{
		SessionID: id, Action: ActionEnd, Mode: mode, Seed: seed,
		Categories: []string{category}, Difficulty: "all", QuestionCount: 2,
		ProblemIDs: []string{id + "-1", id + "-2"},
		Score: score, Correct: 1, Incorrect: 1, Total: 2, MaxStreak: 1, DurationMs: 1500,
	}))
}
