// Package syncer sequences each worklog save across the two write channels:
// fetch the stored baseline, merge the partial update against it, upsert the
// result to the primary store, then forward a derived row to the spreadsheet
// mirror. The primary write is load-bearing; the mirror is best-effort.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"daily-worklog/internal/daylog"
	"daily-worklog/internal/mirror"
	"daily-worklog/internal/storage"
)

var (
	// ErrBaselineUnavailable means the existing record could not be fetched.
	// The merge is refused rather than run against an assumed-empty baseline
	// that could clobber stored fields outside the current patch.
	ErrBaselineUnavailable = errors.New("stored baseline unavailable")

	// ErrPrimaryWriteFailed means the merged record could not be persisted.
	// The mirror stage is never attempted after it.
	ErrPrimaryWriteFailed = errors.New("primary write failed")
)

// Primary is the slice of the storage provider the coordinator needs.
type Primary interface {
	GetWorklog(ctx context.Context, dateKey string) (*storage.WorklogRecord, error)
	UpsertWorklog(ctx context.Context, record storage.WorklogRecord) error
	ListWorklogs(ctx context.Context) ([]storage.WorklogRecord, error)
}

// Sink is the mirror adapter contract.
type Sink interface {
	Configured() bool
	BuildPayload(day daylog.DayKey, e daylog.Entry) mirror.Payload
	Send(ctx context.Context, payload mirror.Payload) error
}

// Options tune the coordinator's resilience knobs. The source system had no
// timeouts and no retry; both are deliberate additions here.
type Options struct {
	// PrimaryAttempts is the total attempt count for the primary write.
	// Values below 1 are treated as 1. The mirror write is never retried.
	PrimaryAttempts int
	// PrimaryBackoff is the linear pause between primary write attempts.
	PrimaryBackoff time.Duration
	// StageTimeout bounds each adapter call (fetch, write, mirror).
	StageTimeout time.Duration
}

func (o Options) normalized() Options {
	if o.PrimaryAttempts < 1 {
		o.PrimaryAttempts = 1
	}
	if o.StageTimeout <= 0 {
		o.StageTimeout = 10 * time.Second
	}
	return o
}

// Result is the outcome of one sync call.
type Result struct {
	// Entry is the merged record that was persisted.
	Entry daylog.Entry
	// Status is the channel pair at the end of the call.
	Status Status
	// Mirrored is set when the mirror stage ran and succeeded.
	Mirrored bool
}

// Coordinator runs the fetch → merge → persist → mirror sequence and tracks
// the two-channel status. Stages are strictly sequential; the merge depends
// on the fetch, the mirror on the persisted record.
type Coordinator struct {
	primary Primary
	sink    Sink
	opts    Options
	status  *statusTracker
	logger  *slog.Logger
}

func NewCoordinator(primary Primary, sink Sink, opts Options) *Coordinator {
	return &Coordinator{
		primary: primary,
		sink:    sink,
		opts:    opts.normalized(),
		status:  newStatusTracker(),
		logger:  slog.With("component", "syncer"),
	}
}

// Status returns the current channel status pair.
func (c *Coordinator) Status() Status {
	return c.status.Snapshot()
}

// fetchBaseline loads the stored record for the day. A clean not-found
// yields a nil baseline; any other failure aborts the sync.
func (c *Coordinator) fetchBaseline(ctx context.Context, day daylog.DayKey) (*daylog.Entry, error) {
	stageCtx, cancel := context.WithTimeout(ctx, c.opts.StageTimeout)
	defer cancel()

	record, err := c.primary.GetWorklog(stageCtx, day.String())
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBaselineUnavailable, err)
	}

	entry := record.Entry()
	return &entry, nil
}

func (c *Coordinator) writePrimary(ctx context.Context, record storage.WorklogRecord, logger *slog.Logger) error {
	var err error
	for attempt := 1; attempt <= c.opts.PrimaryAttempts; attempt++ {
		stageCtx, cancel := context.WithTimeout(ctx, c.opts.StageTimeout)
		err = c.primary.UpsertWorklog(stageCtx, record)
		cancel()
		if err == nil {
			return nil
		}

		logger.Warn("Primary write attempt failed",
			"attempt", attempt, "attempts", c.opts.PrimaryAttempts, "error", err)

		if attempt < c.opts.PrimaryAttempts && c.opts.PrimaryBackoff > 0 {
			select {
			case <-time.After(time.Duration(attempt) * c.opts.PrimaryBackoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return err
}

// shouldMirror is the trigger condition for the mirror stage: the merged
// record must carry a report field, a workday start, or a workday end.
func shouldMirror(e daylog.Entry) bool {
	return e.Activity != "" || e.Accomplished != "" || e.AmIn != nil || e.PmOut != nil
}

// Sync persists a partial update for one day across both channels.
//
// The error return reflects the primary channel only: a mirror failure
// leaves the sheet channel in StateError but the call still succeeds. The
// sheet channel stays StateWaiting when the trigger condition was not met.
func (c *Coordinator) Sync(ctx context.Context, day daylog.DayKey, patch daylog.Patch) (Result, error) {
	opID := uuid.NewString()
	logger := c.logger.With("op_id", opID, "date_key", day.String())

	c.status.Reset()
	c.status.SetBoth(StateLoading)

	baseline, err := c.fetchBaseline(ctx, day)
	if err != nil {
		logger.Error("Refusing to merge without baseline", "error", err)
		c.status.SetDB(StateError)
		c.status.SetSheet(StateWaiting)
		return Result{Status: c.Status()}, err
	}

	merged := daylog.Resolve(baseline, patch)

	if err := c.writePrimary(ctx, storage.NewWorklogRecord(day, merged), logger); err != nil {
		c.status.SetDB(StateError)
		c.status.SetSheet(StateWaiting)
		return Result{Status: c.Status()}, fmt.Errorf("%w: %v", ErrPrimaryWriteFailed, err)
	}
	c.status.SetDB(StateSuccess)

	result := Result{Entry: merged}

	if !shouldMirror(merged) || !c.sink.Configured() {
		c.status.SetSheet(StateWaiting)
		result.Status = c.Status()
		return result, nil
	}

	stageCtx, cancel := context.WithTimeout(ctx, c.opts.StageTimeout)
	mirrorErr := c.sink.Send(stageCtx, c.sink.BuildPayload(day, merged))
	cancel()

	if mirrorErr != nil {
		// Best-effort channel: log and move on.
		logger.Warn("Mirror write failed", "error", mirrorErr)
		c.status.SetSheet(StateError)
	} else {
		c.status.SetSheet(StateSuccess)
		result.Mirrored = true
	}

	result.Status = c.Status()
	logger.Info("Sync finished", "db", result.Status.DB, "sheet", result.Status.Sheet)
	return result, nil
}
