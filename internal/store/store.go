package store

import (
	"context"
	"errors"

	"github.com/kiranshivaraju/logpulse/pkg/models"
)

var ErrNotFound = errors.New("resource not found")

// Store is the data access interface for the log dataset table.
type Store interface {
	Ping(ctx context.Context) error

	// ListLogEntries returns up to limit entries in insertion order; a
	// non-positive limit returns all of them.
	ListLogEntries(ctx context.Context, limit int) ([]models.LogEntry, error)
	InsertLogEntries(ctx context.Context, entries []models.LogEntry) (int64, error)
	CountLogEntries(ctx context.Context) (int64, error)
	TruncateLogEntries(ctx context.Context) error
}
