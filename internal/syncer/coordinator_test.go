package syncer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daily-worklog/internal/daylog"
	"daily-worklog/internal/mirror"
	"daily-worklog/internal/storage"
)

// fakePrimary is an in-memory Primary with injectable failures.
type fakePrimary struct {
	records map[string]storage.WorklogRecord

	fetchErr     error
	upsertErr    error
	upsertFails  int // fail this many upserts before succeeding
	upsertCalls  int
	listErr      error
	lastUpserted *storage.WorklogRecord
}

func newFakePrimary() *fakePrimary {
	return &fakePrimary{records: make(map[string]storage.WorklogRecord)}
}

func (f *fakePrimary) GetWorklog(ctx context.Context, dateKey string) (*storage.WorklogRecord, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	record, ok := f.records[dateKey]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &record, nil
}

func (f *fakePrimary) UpsertWorklog(ctx context.Context, record storage.WorklogRecord) error {
	f.upsertCalls++
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if f.upsertFails > 0 {
		f.upsertFails--
		return errors.New("transient write failure")
	}
	f.records[record.DateKey] = record
	f.lastUpserted = &record
	return nil
}

func (f *fakePrimary) ListWorklogs(ctx context.Context) ([]storage.WorklogRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	records := make([]storage.WorklogRecord, 0, len(f.records))
	for _, record := range f.records {
		records = append(records, record)
	}
	return records, nil
}

// fakeSink records mirror calls and can fail on demand.
type fakeSink struct {
	configured bool
	sendErr    error
	sent       []mirror.Payload
}

func (f *fakeSink) Configured() bool { return f.configured }

func (f *fakeSink) BuildPayload(day daylog.DayKey, e daylog.Entry) mirror.Payload {
	return mirror.Payload{DateKey: day.String(), Activity: e.Activity, Accomplished: e.Accomplished}
}

func (f *fakeSink) Send(ctx context.Context, payload mirror.Payload) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, payload)
	return nil
}

func newTestCoordinator(primary *fakePrimary, sink *fakeSink) *Coordinator {
	return NewCoordinator(primary, sink, Options{
		PrimaryAttempts: 1,
		StageTimeout:    time.Second,
	})
}

var testDay = daylog.DayKey{Year: 2026, Month: time.March, Day: 9}

func TestSync_FirstPunchActsAsUpsert(t *testing.T) {
	primary := newFakePrimary()
	sink := &fakeSink{configured: true}
	c := newTestCoordinator(primary, sink)

	t0 := time.Date(2026, time.March, 9, 8, 0, 0, 0, time.UTC)
	patch, err := daylog.PunchPatch(daylog.SlotAmIn, t0)
	require.NoError(t, err)

	result, err := c.Sync(context.Background(), testDay, patch)
	require.NoError(t, err)

	require.NotNil(t, result.Entry.AmIn)
	assert.True(t, result.Entry.AmIn.Equal(t0))
	assert.Equal(t, StateSuccess, result.Status.DB)
	// amIn alone meets the mirror trigger condition.
	assert.Equal(t, StateSuccess, result.Status.Sheet)
	assert.True(t, result.Mirrored)
}

func TestSync_MergePreservesEarlierPunch(t *testing.T) {
	primary := newFakePrimary()
	sink := &fakeSink{configured: true}
	c := newTestCoordinator(primary, sink)
	ctx := context.Background()

	t0 := time.Date(2026, time.March, 9, 8, 0, 0, 0, time.UTC)
	patch, _ := daylog.PunchPatch(daylog.SlotAmIn, t0)
	_, err := c.Sync(ctx, testDay, patch)
	require.NoError(t, err)

	// Ten minutes later, punch amOut; the stored amIn must survive.
	patch, _ = daylog.PunchPatch(daylog.SlotAmOut, t0.Add(10*time.Minute))
	result, err := c.Sync(ctx, testDay, patch)
	require.NoError(t, err)

	require.NotNil(t, result.Entry.AmIn, "merge must not drop the stored amIn")
	assert.True(t, result.Entry.AmIn.Equal(t0), "amIn unchanged")
	require.NotNil(t, result.Entry.AmOut)
}

func TestSync_MirrorFailureDoesNotFailCall(t *testing.T) {
	primary := newFakePrimary()
	sink := &fakeSink{configured: true, sendErr: errors.New("sheet unreachable")}
	c := newTestCoordinator(primary, sink)

	// Existing punches, then a report submit whose mirror write fails.
	amIn := time.Date(2026, time.March, 9, 8, 0, 0, 0, time.UTC)
	primary.records[testDay.String()] = storage.NewWorklogRecord(testDay, daylog.Entry{AmIn: &amIn})

	result, err := c.Sync(context.Background(), testDay, daylog.ReportPatch("A", "B"))

	require.NoError(t, err, "mirror is best-effort; the sync succeeds")
	assert.Equal(t, Status{DB: StateSuccess, Sheet: StateError}, result.Status)
	assert.False(t, result.Mirrored)
	assert.Equal(t, "A", result.Entry.Activity)
}

func TestSync_PrimaryFailureAbortsBeforeMirror(t *testing.T) {
	primary := newFakePrimary()
	primary.upsertErr = errors.New("db down")
	sink := &fakeSink{configured: true}
	c := newTestCoordinator(primary, sink)

	result, err := c.Sync(context.Background(), testDay, daylog.ReportPatch("A", "B"))

	assert.ErrorIs(t, err, ErrPrimaryWriteFailed)
	assert.Equal(t, StateError, result.Status.DB)
	assert.Equal(t, StateWaiting, result.Status.Sheet, "mirror stage never attempted")
	assert.Empty(t, sink.sent)
}

func TestSync_FetchFailureRefusesMerge(t *testing.T) {
	primary := newFakePrimary()
	primary.fetchErr = errors.New("connection refused")
	sink := &fakeSink{configured: true}
	c := newTestCoordinator(primary, sink)

	_, err := c.Sync(context.Background(), testDay, daylog.ReportPatch("A", ""))

	assert.ErrorIs(t, err, ErrBaselineUnavailable)
	assert.Zero(t, primary.upsertCalls, "no write may run against an unknown baseline")
}

func TestSync_ClearDoesNotCascade(t *testing.T) {
	primary := newFakePrimary()
	sink := &fakeSink{configured: true}
	c := newTestCoordinator(primary, sink)

	amIn := time.Date(2026, time.March, 9, 8, 0, 0, 0, time.UTC)
	amOut := amIn.Add(4 * time.Hour)
	primary.records[testDay.String()] = storage.NewWorklogRecord(testDay, daylog.Entry{AmIn: &amIn, AmOut: &amOut})

	patch, _ := daylog.ClearPatch(daylog.SlotAmIn)
	result, err := c.Sync(context.Background(), testDay, patch)
	require.NoError(t, err)

	assert.Nil(t, result.Entry.AmIn)
	require.NotNil(t, result.Entry.AmOut, "amOut unchanged by clearing amIn")
	assert.True(t, result.Entry.AmOut.Equal(amOut))
}

func TestSync_MirrorTriggerNotMet(t *testing.T) {
	primary := newFakePrimary()
	sink := &fakeSink{configured: true}
	c := newTestCoordinator(primary, sink)

	// A lone pmIn punch carries none of the trigger fields.
	patch, _ := daylog.PunchPatch(daylog.SlotPmIn, time.Date(2026, time.March, 9, 13, 0, 0, 0, time.UTC))
	result, err := c.Sync(context.Background(), testDay, patch)
	require.NoError(t, err)

	assert.Equal(t, Status{DB: StateSuccess, Sheet: StateWaiting}, result.Status)
	assert.Empty(t, sink.sent)
}

func TestSync_UnconfiguredSinkSkipsMirror(t *testing.T) {
	primary := newFakePrimary()
	sink := &fakeSink{configured: false}
	c := newTestCoordinator(primary, sink)

	result, err := c.Sync(context.Background(), testDay, daylog.ReportPatch("A", "B"))
	require.NoError(t, err)
	assert.Equal(t, StateWaiting, result.Status.Sheet)
}

func TestSync_PrimaryRetrySucceeds(t *testing.T) {
	primary := newFakePrimary()
	primary.upsertFails = 2
	sink := &fakeSink{configured: false}
	c := NewCoordinator(primary, sink, Options{
		PrimaryAttempts: 3,
		PrimaryBackoff:  time.Millisecond,
		StageTimeout:    time.Second,
	})

	result, err := c.Sync(context.Background(), testDay, daylog.ReportPatch("A", ""))
	require.NoError(t, err)
	assert.Equal(t, 3, primary.upsertCalls)
	assert.Equal(t, StateSuccess, result.Status.DB)
}

func TestSync_RetryExhaustionFails(t *testing.T) {
	primary := newFakePrimary()
	primary.upsertFails = 5
	c := NewCoordinator(primary, &fakeSink{}, Options{
		PrimaryAttempts: 2,
		PrimaryBackoff:  time.Millisecond,
		StageTimeout:    time.Second,
	})

	_, err := c.Sync(context.Background(), testDay, daylog.ReportPatch("A", ""))
	assert.ErrorIs(t, err, ErrPrimaryWriteFailed)
	assert.Equal(t, 2, primary.upsertCalls)
}

func TestStatusLifecycle(t *testing.T) {
	tracker := newStatusTracker()
	assert.Equal(t, Status{DB: StateWaiting, Sheet: StateWaiting}, tracker.Snapshot())

	tracker.SetBoth(StateLoading)
	assert.Equal(t, Status{DB: StateLoading, Sheet: StateLoading}, tracker.Snapshot())

	tracker.SetDB(StateSuccess)
	tracker.SetSheet(StateError)
	assert.Equal(t, Status{DB: StateSuccess, Sheet: StateError}, tracker.Snapshot())

	tracker.Reset()
	assert.Equal(t, Status{DB: StateWaiting, Sheet: StateWaiting}, tracker.Snapshot())
}
