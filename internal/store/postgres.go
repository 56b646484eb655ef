package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiranshivaraju/logpulse/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) ListLogEntries(ctx context.Context, limit int) ([]models.LogEntry, error) {
	query := `SELECT logged_at, source, level, message FROM log_entries ORDER BY id`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list log entries: %w", err)
	}
	defer rows.Close()

	entries := []models.LogEntry{}
	for rows.Next() {
		var e models.LogEntry
		if err := rows.Scan(&e.Timestamp, &e.Source, &e.Level, &e.Message); err != nil {
			return nil, fmt.Errorf("scan log entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// InsertLogEntries bulk-loads entries with COPY, preserving their order.
func (s *PostgresStore) InsertLogEntries(ctx context.Context, entries []models.LogEntry) (int64, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	n, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"log_entries"},
		[]string{"logged_at", "source", "level", "message"},
		pgx.CopyFromSlice(len(entries), func(i int) ([]any, error) {
			e := entries[i]
			return []any{e.Timestamp, e.Source, e.Level, e.Message}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("insert log entries: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) CountLogEntries(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM log_entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count log entries: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) TruncateLogEntries(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `TRUNCATE log_entries RESTART IDENTITY`); err != nil {
		return fmt.Errorf("truncate log entries: %w", err)
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
