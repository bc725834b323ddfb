package storage

import (
	"context"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daily-worklog/internal/config"
	"daily-worklog/internal/daylog"
)

func newTestProvider(t *testing.T) Provider {
	t.Helper()
	cfg := &config.Storage{SQLite: &config.SQLLiteStorage{Path: ":memory:"}}
	provider := NewProvider(cfg)
	require.NotNil(t, provider, "in-memory provider should initialize")
	t.Cleanup(func() { provider.Close() })
	return provider
}

func TestProvider_MigratesSchema(t *testing.T) {
	p := newTestProvider(t)

	version, err := p.GetSchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestProvider_GetWorklog_NotFound(t *testing.T) {
	p := newTestProvider(t)

	_, err := p.GetWorklog(context.Background(), "2026-03-09")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProvider_UpsertIsIdempotentPerDay(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	amIn := time.Date(2026, time.March, 9, 8, 0, 0, 0, time.UTC)
	day := daylog.DayKeyOf(amIn)

	err := p.UpsertWorklog(ctx, NewWorklogRecord(day, daylog.Entry{AmIn: &amIn}))
	require.NoError(t, err)

	// Second write for the same key updates in place.
	amOut := amIn.Add(4 * time.Hour)
	err = p.UpsertWorklog(ctx, NewWorklogRecord(day, daylog.Entry{AmIn: &amIn, AmOut: &amOut, Activity: "reviews"}))
	require.NoError(t, err)

	records, err := p.ListWorklogs(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1, "one row per day key")

	got := records[0].Entry()
	require.NotNil(t, got.AmIn)
	assert.True(t, got.AmIn.Equal(amIn))
	require.NotNil(t, got.AmOut)
	assert.True(t, got.AmOut.Equal(amOut))
	assert.Equal(t, "reviews", got.Activity)
}

func TestProvider_UpsertPersistsClears(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	amIn := time.Date(2026, time.March, 9, 8, 0, 0, 0, time.UTC)
	day := daylog.DayKeyOf(amIn)

	require.NoError(t, p.UpsertWorklog(ctx, NewWorklogRecord(day, daylog.Entry{AmIn: &amIn})))

	// A cleared slot is written as NULL, not skipped.
	require.NoError(t, p.UpsertWorklog(ctx, NewWorklogRecord(day, daylog.Entry{})))

	record, err := p.GetWorklog(ctx, day.String())
	require.NoError(t, err)
	assert.Nil(t, record.AmIn)
}

func TestProvider_ListOrderedByDayKey(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	for _, key := range []string{"2026-03-10", "2026-03-08", "2026-03-09"} {
		day, err := daylog.ParseDayKey(key)
		require.NoError(t, err)
		require.NoError(t, p.UpsertWorklog(ctx, NewWorklogRecord(day, daylog.Entry{Activity: "x"})))
	}

	records, err := p.ListWorklogs(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "2026-03-08", records[0].DateKey)
	assert.Equal(t, "2026-03-09", records[1].DateKey)
	assert.Equal(t, "2026-03-10", records[2].DateKey)
}
