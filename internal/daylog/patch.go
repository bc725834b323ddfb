package daylog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Field is a tri-state update value: omitted, explicit null, or an explicit
// value. The zero Field is "omitted". Because encoding/json only invokes
// UnmarshalJSON for keys present in the document, decoding a Patch yields
// Set=false for absent keys, Set=true/Valid=false for explicit nulls, and
// Set=true/Valid=true for values.
type Field[T any] struct {
	Set   bool
	Valid bool
	Value T
}

// SetValue constructs an explicit-value field.
func SetValue[T any](v T) Field[T] {
	return Field[T]{Set: true, Valid: true, Value: v}
}

// Null constructs an explicit-clear field.
func Null[T any]() Field[T] {
	return Field[T]{Set: true}
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(data, []byte("null")) {
		f.Valid = false
		var zero T
		f.Value = zero
		return nil
	}
	if err := json.Unmarshal(data, &f.Value); err != nil {
		return err
	}
	f.Valid = true
	return nil
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set || !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Patch is a partial update against one day's entry. Every field is
// tri-state: a field the caller never mentioned must not disturb the stored
// value, while an explicit null is a clear that must be persisted.
type Patch struct {
	AmIn         Field[time.Time] `json:"amIn"`
	AmOut        Field[time.Time] `json:"amOut"`
	PmIn         Field[time.Time] `json:"pmIn"`
	PmOut        Field[time.Time] `json:"pmOut"`
	Activity     Field[string]    `json:"activity"`
	Accomplished Field[string]    `json:"accomplished"`
}

// PunchPatch builds a patch setting a single punch slot.
func PunchPatch(slot Slot, t time.Time) (Patch, error) {
	var p Patch
	if err := p.setSlot(slot, SetValue(t)); err != nil {
		return Patch{}, err
	}
	return p, nil
}

// ClearPatch builds a patch explicitly clearing a single punch slot.
func ClearPatch(slot Slot) (Patch, error) {
	var p Patch
	if err := p.setSlot(slot, Null[time.Time]()); err != nil {
		return Patch{}, err
	}
	return p, nil
}

// ReportPatch builds a patch setting both report fields. Empty strings are
// explicit values: submitting an empty report overwrites a stored one.
func ReportPatch(activity, accomplished string) Patch {
	return Patch{
		Activity:     SetValue(activity),
		Accomplished: SetValue(accomplished),
	}
}

func (p *Patch) setSlot(slot Slot, f Field[time.Time]) error {
	switch slot {
	case SlotAmIn:
		p.AmIn = f
	case SlotAmOut:
		p.AmOut = f
	case SlotPmIn:
		p.PmIn = f
	case SlotPmOut:
		p.PmOut = f
	default:
		return fmt.Errorf("unknown punch slot %q", slot)
	}
	return nil
}

// IsEmpty reports whether the patch mentions no field at all.
func (p Patch) IsEmpty() bool {
	return !p.AmIn.Set && !p.AmOut.Set && !p.PmIn.Set && !p.PmOut.Set &&
		!p.Activity.Set && !p.Accomplished.Set
}

// Resolve computes the full record to persist from a stored baseline and a
// partial update. Fields the patch omits keep their stored value; fields the
// patch mentions overwrite it, where an explicit null clears the slot.
// A nil existing means no record was stored for the day yet.
//
// Resolve is idempotent: applying the same patch to its own result is a
// no-op.
func Resolve(existing *Entry, patch Patch) Entry {
	var merged Entry
	if existing != nil {
		merged = *existing
	}

	punches := []struct {
		slot  Slot
		field Field[time.Time]
	}{
		{SlotAmIn, patch.AmIn},
		{SlotAmOut, patch.AmOut},
		{SlotPmIn, patch.PmIn},
		{SlotPmOut, patch.PmOut},
	}
	for _, p := range punches {
		if !p.field.Set {
			continue
		}
		if p.field.Valid {
			t := p.field.Value
			merged.setPunch(p.slot, &t)
		} else {
			merged.setPunch(p.slot, nil)
		}
	}

	if patch.Activity.Set {
		merged.Activity = patch.Activity.Value
	}
	if patch.Accomplished.Set {
		merged.Accomplished = patch.Accomplished.Value
	}

	return merged
}
