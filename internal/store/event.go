package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"
)

// sequenceCounter hands out one increasing sequence shared by every event
// table, so session, attempt, hint and LLM events can be ordered against
// each other. The mutex serializes callers in this process and RETURNING
// makes the increment atomic in the database.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{db: db}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := sc.db.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

// eventRepo implements EventRepo on plain SQL built with squirrel.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
	now func() time.Time
}

// insert assigns the next sequence and timestamp and writes one row.
func (r *eventRepo) insert(ctx context.Context, table string, cols []string, vals []any) (int64, error) {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return 0, err
	}

	query, args, err := sqlBuilder.Insert(table).
		Columns(append([]string{"sequence", "ts_ms"}, cols...)...).
		Values(append([]any{seqNum, r.now().UnixMilli()}, vals...)...).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// applyOpts narrows a select with the pagination and time window in opts.
func applyOpts(q squirrel.SelectBuilder, opts QueryOpts) squirrel.SelectBuilder {
	if opts.After > 0 {
		q = q.Where(squirrel.Gt{"sequence": opts.After})
	}
	if opts.Before > 0 {
		q = q.Where(squirrel.Lt{"sequence": opts.Before})
	}
	if !opts.From.IsZero() {
		q = q.Where(squirrel.GtOrEq{"ts_ms": opts.From.UnixMilli()})
	}
	if !opts.To.IsZero() {
		q = q.Where(squirrel.LtOrEq{"ts_ms": opts.To.UnixMilli()})
	}
	if opts.Limit > 0 {
		q = q.Limit(uint64(opts.Limit))
	}
	return q
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
