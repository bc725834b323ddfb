package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"daily-worklog/internal/daylog"
)

var (
	ErrNotLoaded    = errors.New("session store not loaded")
	ErrDayLocked    = errors.New("day is read-only")
	ErrPunchLocked  = errors.New("punch is past its edit window")
	ErrDayNotViewed = errors.New("day is not selectable")
)

// Session owns one user's view of the worklog: the cached record store, the
// punch/lock rules, and the coordinator that persists every change. All
// operations are serialized; backend calls within an operation run
// sequentially and each stage is awaited before the next.
//
// Local updates are two-phase: the cache is staged before the sync and the
// stage is reverted when the persist fails, so the cache never shows a punch
// that was refused by the store.
type Session struct {
	store *Store
	coord *Coordinator
	// now is injectable for tests; defaults to time.Now.
	now    func() time.Time
	window time.Duration
}

func NewSession(coord *Coordinator, window time.Duration) *Session {
	if window <= 0 {
		window = daylog.DefaultEditWindow
	}
	return &Session{
		store:  NewStore(),
		coord:  coord,
		now:    time.Now,
		window: window,
	}
}

// Load bulk-fetches all persisted records into the cache. Called once after
// construction; there is no implicit re-fetch.
func (s *Session) Load(ctx context.Context) error {
	records, err := s.coord.primary.ListWorklogs(ctx)
	if err != nil {
		return fmt.Errorf("loading worklogs: %w", err)
	}

	logs := make(map[daylog.DayKey]daylog.Entry, len(records))
	for _, record := range records {
		day, err := daylog.ParseDayKey(record.DateKey)
		if err != nil {
			return fmt.Errorf("stored record has invalid day key: %w", err)
		}
		logs[day] = record.Entry()
	}

	s.store.Fill(logs)
	return nil
}

func (s *Session) Loaded() bool {
	return s.store.Loaded()
}

// Entry returns the cached entry for a day, zero-valued when none exists.
func (s *Session) Entry(day daylog.DayKey) daylog.Entry {
	entry, _ := s.store.Get(day)
	return entry
}

// Status returns the coordinator's current channel status pair.
func (s *Session) Status() Status {
	return s.coord.Status()
}

// Selectable reports whether a day can be drilled into from the calendar.
func (s *Session) Selectable(day daylog.DayKey) bool {
	entry, ok := s.store.Get(day)
	hasData := ok && !entry.IsEmpty()
	return daylog.DaySelectable(day, daylog.DayKeyOf(s.now()), hasData)
}

// Punch records the current instant into the next eligible slot position.
// On the terminal pmOut punch the result's Completed flag tells the caller
// to advance to the report stage after daylog.ReportAdvanceDelay.
func (s *Session) Punch(ctx context.Context, day daylog.DayKey, slot daylog.Slot) (daylog.PunchResult, error) {
	if !s.store.Loaded() {
		return daylog.PunchResult{}, ErrNotLoaded
	}

	now := s.now()
	if !day.Equal(daylog.DayKeyOf(now)) {
		return daylog.PunchResult{}, ErrDayLocked
	}

	entry, _ := s.store.Get(day)
	res, err := daylog.ApplyPunch(entry, slot, now)
	if err != nil {
		return daylog.PunchResult{}, err
	}

	patch, err := daylog.PunchPatch(slot, now)
	if err != nil {
		return daylog.PunchResult{}, err
	}

	if err := s.persist(ctx, day, res.Entry, patch); err != nil {
		return daylog.PunchResult{}, err
	}
	return res, nil
}

// ClearPunch sets a recorded slot back to absent. The clear is itself a
// write; it is refused once the stored punch is past its edit window.
// Clearing does not cascade to later slots.
func (s *Session) ClearPunch(ctx context.Context, day daylog.DayKey, slot daylog.Slot) error {
	if !s.store.Loaded() {
		return ErrNotLoaded
	}

	now := s.now()
	entry, _ := s.store.Get(day)
	if !daylog.PunchEditable(entry, slot, day, now, s.window) {
		if !day.Equal(daylog.DayKeyOf(now)) {
			return ErrDayLocked
		}
		return ErrPunchLocked
	}

	cleared, err := daylog.ClearPunch(entry, slot)
	if err != nil {
		return err
	}

	patch, err := daylog.ClearPatch(slot)
	if err != nil {
		return err
	}

	return s.persist(ctx, day, cleared, patch)
}

// SubmitReport saves the end-of-day report and returns the final channel
// status pair. The report is editable only on the day itself.
func (s *Session) SubmitReport(ctx context.Context, day daylog.DayKey, activity, accomplished string) (Result, error) {
	if !s.store.Loaded() {
		return Result{}, ErrNotLoaded
	}

	if !daylog.ReportEditable(day, s.now()) {
		return Result{}, ErrDayLocked
	}

	entry, _ := s.store.Get(day)
	patch := daylog.ReportPatch(activity, accomplished)
	staged := daylog.Resolve(&entry, patch)

	revert := s.store.Stage(day, staged)
	result, err := s.coord.Sync(ctx, day, patch)
	if err != nil {
		revert()
		return Result{Status: s.coord.Status()}, err
	}

	// Adopt the authoritative merged record; the staged guess may lack
	// fields another writer persisted since load.
	s.store.Stage(day, result.Entry)
	return result, nil
}

func (s *Session) persist(ctx context.Context, day daylog.DayKey, staged daylog.Entry, patch daylog.Patch) error {
	revert := s.store.Stage(day, staged)
	result, err := s.coord.Sync(ctx, day, patch)
	if err != nil {
		revert()
		return err
	}
	s.store.Stage(day, result.Entry)
	return nil
}
