package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/Masterminds/squirrel"
)

var sessionColumns = []string{
	"id", "sequence", "ts_ms", "session_id", "action", "mode", "seed", "retry",
	"categories", "difficulty", "question_count", "time_limit_secs", "problem_ids",
	"score", "correct", "incorrect", "skipped", "timed_out", "total", "max_streak", "duration_ms",
}

var attemptColumns = []string{
	"id", "sequence", "ts_ms", "session_id", "position", "problem_id", "category",
	"difficulty", "answer", "verdict", "points", "time_ms", "timed_out", "hints_used",
	"matched_pattern",
}

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	if data.Action != ActionStart && data.Action != ActionEnd {
		return fmt.Errorf("save session event: unknown action %q", data.Action)
	}

	categories, err := json.Marshal(nonNil(data.Categories))
	if err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	problemIDs, err := json.Marshal(nonNil(data.ProblemIDs))
	if err != nil {
		return fmt.Errorf("save session event: %w", err)
	}

	_, err = r.insert(ctx, "session_events", sessionColumns[3:], []any{
		data.SessionID, data.Action, data.Mode, strconv.FormatUint(data.Seed, 10), boolInt(data.Retry),
		string(categories), data.Difficulty, data.QuestionCount, data.TimeLimitSecs, string(problemIDs),
		data.Score, data.Correct, data.Incorrect, data.Skipped, data.TimedOut, data.Total, data.MaxStreak, data.DurationMs,
	})
	if err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendAttemptEvent(ctx context.Context, data AttemptEventData) error {
	_, err := r.insert(ctx, "attempt_events", attemptColumns[3:], []any{
		data.SessionID, data.Position, data.ProblemID, data.Category,
		data.Difficulty, data.Answer, data.Verdict, data.Points, data.TimeMs, boolInt(data.TimedOut), data.HintsUsed,
		data.MatchedPattern,
	})
	if err != nil {
		return fmt.Errorf("save attempt event: %w", err)
	}
	return nil
}

func (r *eventRepo) RecentSessions(ctx context.Context, opts QueryOpts) ([]SessionRecord, error) {
	q := sqlBuilder.Select(sessionColumns...).
		From("session_events").
		Where(squirrel.Eq{"action": ActionEnd}).
		OrderBy("sequence DESC")
	if opts.Mode != "" {
		q = q.Where(squirrel.Eq{"mode": opts.Mode})
	}
	if opts.Category != "" {
		q = q.Where(squirrel.Expr(
			"session_id IN (SELECT session_id FROM attempt_events WHERE category = ?)", opts.Category))
	}
	q = applyOpts(q, opts)

	return r.querySessions(ctx, q)
}

func (r *eventRepo) BestScores(ctx context.Context, mode string, limit int) ([]SessionRecord, error) {
	q := sqlBuilder.Select(sessionColumns...).
		From("session_events").
		Where(squirrel.Eq{"action": ActionEnd}).
		OrderBy("score DESC", "sequence ASC")
	if mode != "" {
		q = q.Where(squirrel.Eq{"mode": mode})
	}
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	return r.querySessions(ctx, q)
}

func (r *eventRepo) SessionAttempts(ctx context.Context, sessionID string) ([]AttemptRecord, error) {
	query, args, err := sqlBuilder.Select(attemptColumns...).
		From("attempt_events").
		Where(squirrel.Eq{"session_id": sessionID}).
		OrderBy("sequence ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build attempts query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []AttemptRecord
	for rows.Next() {
		var (
			rec      AttemptRecord
			ts       int64
			timedOut int
		)
		if err := rows.Scan(
			&rec.ID, &rec.Sequence, &ts, &rec.SessionID, &rec.Position, &rec.ProblemID, &rec.Category,
			&rec.Difficulty, &rec.Answer, &rec.Verdict, &rec.Points, &rec.TimeMs, &timedOut, &rec.HintsUsed,
			&rec.MatchedPattern,
		); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		rec.Timestamp = time.UnixMilli(ts)
		rec.TimedOut = timedOut != 0
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *eventRepo) CategoryAccuracy(ctx context.Context) ([]CategoryAccuracy, error) {
	query, args, err := sqlBuilder.Select(
		"category",
		"COUNT(*)",
		"SUM(CASE WHEN verdict = 'correct' THEN 1 ELSE 0 END)",
		"SUM(CASE WHEN verdict = 'skipped' THEN 1 ELSE 0 END)",
	).
		From("attempt_events").
		GroupBy("category").
		OrderBy("category").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build accuracy query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query category accuracy: %w", err)
	}
	defer rows.Close()

	var out []CategoryAccuracy
	for rows.Next() {
		var c CategoryAccuracy
		if err := rows.Scan(&c.Category, &c.Attempted, &c.Correct, &c.Skipped); err != nil {
			return nil, fmt.Errorf("scan category accuracy: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *eventRepo) querySessions(ctx context.Context, q squirrel.SelectBuilder) ([]SessionRecord, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sessions query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanSession(rows *sql.Rows) (SessionRecord, error) {
	var (
		rec                    SessionRecord
		ts                     int64
		seed                   string
		retry                  int
		categories, problemIDs string
	)
	if err := rows.Scan(
		&rec.ID, &rec.Sequence, &ts, &rec.SessionID, &rec.Action, &rec.Mode, &seed, &retry,
		&categories, &rec.Difficulty, &rec.QuestionCount, &rec.TimeLimitSecs, &problemIDs,
		&rec.Score, &rec.Correct, &rec.Incorrect, &rec.Skipped, &rec.TimedOut, &rec.Total, &rec.MaxStreak, &rec.DurationMs,
	); err != nil {
		return rec, fmt.Errorf("scan session: %w", err)
	}

	rec.Timestamp = time.UnixMilli(ts)
	rec.Retry = retry != 0
	n, err := strconv.ParseUint(seed, 10, 64)
	if err != nil {
		return rec, fmt.Errorf("session %s: parse seed: %w", rec.SessionID, err)
	}
	rec.Seed = n
	if err := json.Unmarshal([]byte(categories), &rec.Categories); err != nil {
		return rec, fmt.Errorf("session %s: decode categories: %w", rec.SessionID, err)
	}
	if err := json.Unmarshal([]byte(problemIDs), &rec.ProblemIDs); err != nil {
		return rec, fmt.Errorf("session %s: decode problem ids: %w", rec.SessionID, err)
	}
	return rec, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
