package daylog

import "time"

// DefaultEditWindow is how long a recorded punch stays editable.
const DefaultEditWindow = time.Hour

// PunchEditable reports whether the punch stored in slot may still be
// changed. The policy is a pure function of the stored instant, the viewed
// day, and the current wall clock; eligibility decays over time, so callers
// must re-evaluate on every check instead of caching the answer.
//
// Days other than today are read-only regardless of content. For today, a
// recorded punch locks once window has elapsed since the instant; a slot
// with no value yet stays open (slot eligibility is CanPunch's concern, not
// this policy's).
func PunchEditable(e Entry, slot Slot, day DayKey, now time.Time, window time.Duration) bool {
	if !day.Equal(DayKeyOf(now)) {
		return false
	}
	stored := e.Punch(slot)
	if stored == nil {
		return true
	}
	return now.Sub(*stored) <= window
}

// ReportEditable reports whether the activity/accomplished fields may be
// edited for the viewed day. Reports are editable only on the day itself;
// any other day is strictly view-only, independent of the punch edit window.
func ReportEditable(day DayKey, now time.Time) bool {
	return day.Equal(DayKeyOf(now))
}

// DaySelectable reports whether a day may be drilled into at all: future
// days never, today always, past days only if some data was recorded.
func DaySelectable(day DayKey, today DayKey, hasData bool) bool {
	if day.After(today) {
		return false
	}
	return day.Equal(today) || hasData
}
