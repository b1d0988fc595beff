package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/colonysim/colony/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// DB wraps a pgx connection pool.
type DB struct {
	Pool *pgxpool.Pool
	log  *zap.Logger
}

func NewDB(ctx context.Context, cfg config.JournalConfig, log *zap.Logger) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}

	// Verify connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return &DB{Pool: pool, log: log}, nil
}

func (db *DB) Close() {
	db.Pool.Close()
}

// PostgresJournal appends events to the sim_events table.
type PostgresJournal struct {
	db *DB
}

// OpenPostgres connects, migrates and returns a journal backed by PostgreSQL.
func OpenPostgres(ctx context.Context, cfg config.JournalConfig, log *zap.Logger) (*PostgresJournal, error) {
	db, err := NewDB(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if err := RunPostgresMigrations(ctx, db.Pool); err != nil {
		db.Close()
		return nil, err
	}
	log.Info("journal ready", zap.String("backend", "postgres"))
	return &PostgresJournal{db: db}, nil
}

// Append writes a batch of rows in a single transaction.
func (j *PostgresJournal) Append(ctx context.Context, rows []EventRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := j.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("journal begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, r := range rows {
		if _, err := tx.Exec(ctx,
			`INSERT INTO sim_events (tick, kind, payload) VALUES ($1, $2, $3)`,
			int64(r.Tick), r.Kind, r.Payload,
		); err != nil {
			return fmt.Errorf("journal insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (j *PostgresJournal) Close() error {
	j.db.Close()
	return nil
}
