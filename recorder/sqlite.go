// Package recorder persists samples to a local SQLite file so a session can
// be inspected after the dashboard exits.
package recorder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"gitlab.com/tinyland/lab/pulsemon/collectors"
)

// ErrClosed is returned by operations on a closed Recorder.
var ErrClosed = errors.New("recorder: closed")

// Recorder writes sample batches into a `samples` table. For percent kinds
// v1 holds the percentage and v2 is 0; for rate kinds v1 is In and v2 is Out.
type Recorder struct {
	mu     sync.Mutex
	db     *sql.DB
	logger *slog.Logger
	path   string
}

// Open opens (or creates) the SQLite file at path and migrates the schema.
// The caller must call Close when done.
func Open(path string, logger *slog.Logger) (*Recorder, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if path == "" {
		return nil, fmt.Errorf("recorder: empty path")
	}

	// modernc.org/sqlite is pure Go and registers as "sqlite".
	db, err := sql.Open("sqlite", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("recorder: open %s: %w", path, err)
	}
	// A single writer avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("recorder: ping %s: %w", path, err)
	}

	r := &Recorder{db: db, logger: logger, path: path}
	if err := r.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Recorder) migrate() error {
	const stmt = `
CREATE TABLE IF NOT EXISTS samples (
    id    INTEGER PRIMARY KEY AUTOINCREMENT,
    ts    INTEGER NOT NULL,
    kind  TEXT NOT NULL,
    v1    REAL NOT NULL,
    v2    REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_samples_kind_ts ON samples(kind, ts);
`
	if _, err := r.db.Exec(stmt); err != nil {
		return fmt.Errorf("recorder: create samples table: %w", err)
	}
	r.logger.Debug("recorder: migration applied", "path", r.path)
	return nil
}

// Name implements presenter.Sink.
func (r *Recorder) Name() string { return "recorder" }

// Consume implements presenter.Sink.
func (r *Recorder) Consume(ctx context.Context, batch []collectors.Sample) error {
	return r.Save(ctx, batch)
}

// Save stores a batch in a single transaction. An empty batch is a no-op.
func (r *Recorder) Save(ctx context.Context, batch []collectors.Sample) error {
	if len(batch) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db == nil {
		return ErrClosed
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("recorder: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO samples (ts, kind, v1, v2) VALUES (?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("recorder: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range batch {
		v1, v2 := columns(s)
		if _, err := stmt.ExecContext(ctx, s.Time.UnixNano(), string(s.Kind), v1, v2); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("recorder: insert %s: %w", s.Kind, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("recorder: commit: %w", err)
	}
	r.logger.Debug("recorder: batch persisted", "samples", len(batch))
	return nil
}

func columns(s collectors.Sample) (v1, v2 float64) {
	if s.Kind.IsPercent() {
		return s.Percent, 0
	}
	return s.Rate.In, s.Rate.Out
}

// Query returns samples of kind with from <= ts < to, oldest first.
func (r *Recorder) Query(ctx context.Context, kind collectors.Kind, from, to time.Time) ([]collectors.Sample, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db == nil {
		return nil, ErrClosed
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT ts, v1, v2 FROM samples WHERE kind = ? AND ts >= ? AND ts < ? ORDER BY ts, id`,
		string(kind), from.UnixNano(), to.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("recorder: query %s: %w", kind, err)
	}
	defer rows.Close()

	var out []collectors.Sample
	for rows.Next() {
		var (
			ts     int64
			v1, v2 float64
		)
		if err := rows.Scan(&ts, &v1, &v2); err != nil {
			return nil, fmt.Errorf("recorder: scan: %w", err)
		}
		s := collectors.Sample{Kind: kind, Time: time.Unix(0, ts)}
		if kind.IsPercent() {
			s.Percent = v1
		} else {
			s.Rate = collectors.Throughput{In: v1, Out: v2}
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recorder: rows: %w", err)
	}
	return out, nil
}

// Count returns the number of stored samples of kind.
func (r *Recorder) Count(ctx context.Context, kind collectors.Kind) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db == nil {
		return 0, ErrClosed
	}

	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM samples WHERE kind = ?`, string(kind)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("recorder: count %s: %w", kind, err)
	}
	return n, nil
}

// Close shuts down the database connection. Further calls return ErrClosed;
// closing twice is a no-op.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}
