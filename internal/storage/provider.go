package storage

import (
	"context"
	"errors"
	"log/slog"

	"daily-worklog/internal/config"
)

// ErrNotFound is returned when no record exists for a day key. Callers must
// distinguish it from transport/storage failures: a clean not-found allows a
// merge against an empty baseline, a failure must abort the write.
var ErrNotFound = errors.New("worklog record not found")

type Provider interface {
	Close() error
	GetSchemaVersion(ctx context.Context) (int, error)

	// ListWorklogs returns all persisted records ordered by day key.
	ListWorklogs(ctx context.Context) ([]WorklogRecord, error)
	// GetWorklog returns the record for a day key, or ErrNotFound.
	GetWorklog(ctx context.Context, dateKey string) (*WorklogRecord, error)
	// UpsertWorklog writes the full record, keyed by date_key. Idempotent.
	UpsertWorklog(ctx context.Context, record WorklogRecord) error
}

func NewProvider(config *config.Storage) Provider {
	switch {
	case config.SQLite != nil:
		provider := NewSQLiteProvider(config)
		if provider == nil {
			return nil
		}
		if err := provider.runMigrations("sqlite3"); err != nil {
			slog.Error("Failed to run migrations", "error", err)
			return nil
		}
		return provider

	default:
		slog.Error("Unsupported storage configuration", "config", config)
	}

	return nil
}
