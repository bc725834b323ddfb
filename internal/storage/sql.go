package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"daily-worklog/internal/config"
)

type SQLProvider struct {
	db *sqlx.DB

	config *config.Storage

	logger *slog.Logger
}

func NewSQLProvider(config *config.Storage, driverName string, dataSource string) (provider *SQLProvider) {
	db, err := sqlx.Open(driverName, dataSource)
	if err != nil {
		return nil
	}

	// An in-memory sqlite database exists per connection; cap the pool so
	// every query sees the schema the migrations created.
	if dataSource == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	logger := slog.With("component", "storage")

	return &SQLProvider{
		db:     db,
		config: config,
		logger: logger,
	}
}

func (p *SQLProvider) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

func (p *SQLProvider) GetSchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := p.db.GetContext(ctx, &version, `SELECT COALESCE(MAX(version), 0) FROM migrations_log`)
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}

func (p *SQLProvider) ListWorklogs(ctx context.Context) ([]WorklogRecord, error) {
	records := []WorklogRecord{}
	err := p.db.SelectContext(ctx, &records,
		`SELECT date_key, am_in, am_out, pm_in, pm_out, activity, accomplished, created_at, updated_at
		   FROM worklogs
		  ORDER BY date_key`)
	if err != nil {
		return nil, fmt.Errorf("listing worklogs: %w", err)
	}
	return records, nil
}

func (p *SQLProvider) GetWorklog(ctx context.Context, dateKey string) (*WorklogRecord, error) {
	var record WorklogRecord
	err := p.db.GetContext(ctx, &record,
		`SELECT date_key, am_in, am_out, pm_in, pm_out, activity, accomplished, created_at, updated_at
		   FROM worklogs
		  WHERE date_key = ?`, dateKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching worklog %s: %w", dateKey, err)
	}
	return &record, nil
}

func (p *SQLProvider) UpsertWorklog(ctx context.Context, record WorklogRecord) error {
	now := time.Now().UTC()
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO worklogs (date_key, am_in, am_out, pm_in, pm_out, activity, accomplished, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(date_key) DO UPDATE SET
		   am_in        = excluded.am_in,
		   am_out       = excluded.am_out,
		   pm_in        = excluded.pm_in,
		   pm_out       = excluded.pm_out,
		   activity     = excluded.activity,
		   accomplished = excluded.accomplished,
		   updated_at   = excluded.updated_at`,
		record.DateKey, record.AmIn, record.AmOut, record.PmIn, record.PmOut,
		record.Activity, record.Accomplished, now, now)
	if err != nil {
		return fmt.Errorf("upserting worklog %s: %w", record.DateKey, err)
	}

	p.logger.Debug("Worklog upserted", "date_key", record.DateKey)
	return nil
}
