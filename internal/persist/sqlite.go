package persist

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteJournal appends events to a local SQLite file.
type SQLiteJournal struct {
	db  *sql.DB
	log *zap.Logger
}

// OpenSQLite opens (or creates) the journal file at path and migrates it.
func OpenSQLite(ctx context.Context, path string, log *zap.Logger) (*SQLiteJournal, error) {
	if path == "" {
		return nil, fmt.Errorf("empty journal path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	// One writer; SQLite serializes anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := RunSQLiteMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Info("journal ready", zap.String("backend", "sqlite"), zap.String("path", path))
	return &SQLiteJournal{db: db, log: log}, nil
}

func initPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// Append writes a batch of rows in a single transaction.
func (j *SQLiteJournal) Append(ctx context.Context, rows []EventRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("journal begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO sim_events (tick, kind, payload) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("journal prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, int64(r.Tick), r.Kind, string(r.Payload)); err != nil {
			return fmt.Errorf("journal insert: %w", err)
		}
	}

	return tx.Commit()
}

// Count returns the number of journaled events.
func (j *SQLiteJournal) Count(ctx context.Context) (int, error) {
	var n int
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sim_events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("journal count: %w", err)
	}
	return n, nil
}

// Rows returns every journaled event of the given kind in insertion order.
// An empty kind returns all events.
func (j *SQLiteJournal) Rows(ctx context.Context, kind string) ([]EventRow, error) {
	query := `SELECT tick, kind, payload FROM sim_events ORDER BY id`
	args := []any{}
	if kind != "" {
		query = `SELECT tick, kind, payload FROM sim_events WHERE kind = ? ORDER BY id`
		args = append(args, kind)
	}
	rs, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("journal query: %w", err)
	}
	defer rs.Close()

	var out []EventRow
	for rs.Next() {
		var (
			tick    int64
			r       EventRow
			payload string
		)
		if err := rs.Scan(&tick, &r.Kind, &payload); err != nil {
			return nil, fmt.Errorf("journal scan: %w", err)
		}
		r.Tick = uint64(tick)
		r.Payload = []byte(payload)
		out = append(out, r)
	}
	return out, rs.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
