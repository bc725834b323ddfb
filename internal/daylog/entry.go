package daylog

import (
	"fmt"
	"time"
)

// DayKey identifies one calendar day. It deliberately carries no time zone
// or clock component: two DayKeys compare equal iff they name the same
// civil date, regardless of how the underlying instants were rendered.
type DayKey struct {
	Year  int
	Month time.Month
	Day   int
}

const dayKeyLayout = "2006-01-02"

// DayKeyOf truncates an instant to its civil date in the instant's location.
func DayKeyOf(t time.Time) DayKey {
	y, m, d := t.Date()
	return DayKey{Year: y, Month: m, Day: d}
}

// ParseDayKey parses a key in YYYY-MM-DD form.
func ParseDayKey(s string) (DayKey, error) {
	t, err := time.Parse(dayKeyLayout, s)
	if err != nil {
		return DayKey{}, fmt.Errorf("invalid day key %q: %w", s, err)
	}
	return DayKeyOf(t), nil
}

func (k DayKey) String() string {
	return k.Time().Format(dayKeyLayout)
}

// Time returns midnight of the day in UTC. Only used for formatting and
// ordering, never for wall-clock arithmetic.
func (k DayKey) Time() time.Time {
	return time.Date(k.Year, k.Month, k.Day, 0, 0, 0, 0, time.UTC)
}

func (k DayKey) Equal(other DayKey) bool {
	return k == other
}

func (k DayKey) Before(other DayKey) bool {
	return k.Time().Before(other.Time())
}

func (k DayKey) After(other DayKey) bool {
	return k.Time().After(other.Time())
}

func (k DayKey) IsZero() bool {
	return k == DayKey{}
}

// Slot names one of the four punch positions of a workday.
type Slot string

const (
	SlotAmIn  Slot = "amIn"
	SlotAmOut Slot = "amOut"
	SlotPmIn  Slot = "pmIn"
	SlotPmOut Slot = "pmOut"
)

// Slots lists the punch slots in workday order.
var Slots = []Slot{SlotAmIn, SlotAmOut, SlotPmIn, SlotPmOut}

// IsValid reports whether s names a known punch slot.
func (s Slot) IsValid() bool {
	switch s {
	case SlotAmIn, SlotAmOut, SlotPmIn, SlotPmOut:
		return true
	}
	return false
}

// Entry is one day's worklog: four optional punch instants plus the
// end-of-day report fields. A nil punch pointer means the slot was never
// punched (or was cleared). The four slots are conceptually ordered
// amIn <= amOut <= pmIn <= pmOut, but the entry does not enforce
// chronological consistency; only slot eligibility is gated (see punch.go).
type Entry struct {
	AmIn         *time.Time
	AmOut        *time.Time
	PmIn         *time.Time
	PmOut        *time.Time
	Activity     string
	Accomplished string
}

// Punch returns the instant stored in the given slot, or nil.
func (e Entry) Punch(slot Slot) *time.Time {
	switch slot {
	case SlotAmIn:
		return e.AmIn
	case SlotAmOut:
		return e.AmOut
	case SlotPmIn:
		return e.PmIn
	case SlotPmOut:
		return e.PmOut
	}
	return nil
}

func (e *Entry) setPunch(slot Slot, t *time.Time) {
	switch slot {
	case SlotAmIn:
		e.AmIn = t
	case SlotAmOut:
		e.AmOut = t
	case SlotPmIn:
		e.PmIn = t
	case SlotPmOut:
		e.PmOut = t
	}
}

// HasPunches reports whether any of the four slots is set.
func (e Entry) HasPunches() bool {
	return e.AmIn != nil || e.AmOut != nil || e.PmIn != nil || e.PmOut != nil
}

// IsEmpty reports whether the entry carries no data at all.
func (e Entry) IsEmpty() bool {
	return !e.HasPunches() && e.Activity == "" && e.Accomplished == ""
}

// Complete reports whether the workday reached its terminal transition,
// i.e. pmOut was punched.
func (e Entry) Complete() bool {
	return e.PmOut != nil
}
