package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
)

func (r *eventRepo) AppendHintEvent(ctx context.Context, data HintEventData) error {
	source := data.Source
	if source == "" {
		source = HintSourceAuthored
	}
	_, err := r.insert(ctx, "hint_events",
		[]string{"session_id", "problem_id", "source", "hint_text"},
		[]any{data.SessionID, data.ProblemID, source, data.HintText},
	)
	if err != nil {
		return fmt.Errorf("save hint event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryHintEvents(ctx context.Context, sessionID string) ([]HintRecord, error) {
	query, args, err := sqlBuilder.Select("id", "sequence", "ts_ms", "session_id", "problem_id", "source", "hint_text").
		From("hint_events").
		Where(squirrel.Eq{"session_id": sessionID}).
		OrderBy("sequence ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build hints query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query hint events: %w", err)
	}
	defer rows.Close()

	var out []HintRecord
	for rows.Next() {
		var (
			rec HintRecord
			ts  int64
		)
		if err := rows.Scan(&rec.ID, &rec.Sequence, &ts, &rec.SessionID, &rec.ProblemID, &rec.Source, &rec.HintText); err != nil {
			return nil, fmt.Errorf("scan hint event: %w", err)
		}
		rec.Timestamp = time.UnixMilli(ts)
		out = append(out, rec)
	}
	return out, rows.Err()
}
