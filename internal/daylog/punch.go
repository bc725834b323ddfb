package daylog

import (
	"errors"
	"time"
)

// ReportAdvanceDelay is how long the caller should dwell before advancing to
// the report stage after the terminal pmOut punch. It acknowledges the view
// transition only; correctness never depends on it.
const ReportAdvanceDelay = 800 * time.Millisecond

var (
	ErrSlotOccupied    = errors.New("punch slot already recorded")
	ErrSlotNotEligible = errors.New("punch slot not yet eligible")
	ErrUnknownSlot     = errors.New("unknown punch slot")
)

// CanPunch reports whether the given slot currently accepts a new punch.
// Each slot opens only once its predecessor is recorded and closes once it
// holds a value itself:
//
//	amIn  — open while amIn is absent
//	amOut — open once amIn is recorded, while amOut is absent
//	pmIn  — open once amOut is recorded, while pmIn is absent
//	pmOut — open once pmIn is recorded, while pmOut is absent
func CanPunch(e Entry, slot Slot) bool {
	switch slot {
	case SlotAmIn:
		return e.AmIn == nil
	case SlotAmOut:
		return e.AmIn != nil && e.AmOut == nil
	case SlotPmIn:
		return e.AmOut != nil && e.PmIn == nil
	case SlotPmOut:
		return e.PmIn != nil && e.PmOut == nil
	}
	return false
}

// NextSlot returns the single slot currently eligible for a punch, or
// ok=false when the day is complete. For every reachable entry state at most
// one slot is open at a time.
func NextSlot(e Entry) (Slot, bool) {
	for _, slot := range Slots {
		if CanPunch(e, slot) {
			return slot, true
		}
	}
	return "", false
}

// PunchResult is the outcome of a successful punch.
type PunchResult struct {
	Entry Entry
	// Completed is set when the punch was pmOut, the terminal transition of
	// the workday. The caller advances to the report stage after
	// ReportAdvanceDelay.
	Completed bool
}

// ApplyPunch validates slot eligibility and records now into the slot.
func ApplyPunch(e Entry, slot Slot, now time.Time) (PunchResult, error) {
	if !slot.IsValid() {
		return PunchResult{}, ErrUnknownSlot
	}
	if !CanPunch(e, slot) {
		if e.Punch(slot) != nil {
			return PunchResult{}, ErrSlotOccupied
		}
		return PunchResult{}, ErrSlotNotEligible
	}

	e.setPunch(slot, &now)
	return PunchResult{Entry: e, Completed: slot == SlotPmOut}, nil
}

// ClearPunch sets a slot back to absent. Clearing is unconditional on slot
// position and does NOT cascade: clearing amIn leaves a recorded amOut in
// place, producing an entry no punch sequence could have reached. That gap
// is a deliberate carry-over of observed behavior, not an oversight to fix
// here.
func ClearPunch(e Entry, slot Slot) (Entry, error) {
	if !slot.IsValid() {
		return Entry{}, ErrUnknownSlot
	}
	e.setPunch(slot, nil)
	return e, nil
}
