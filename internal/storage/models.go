package storage

import (
	"time"

	"daily-worklog/internal/daylog"
)

// WorklogRecord is the persisted shape of one day's log. One row per day
// key, uniqueness enforced by the schema.
type WorklogRecord struct {
	DateKey      string     `db:"date_key" json:"date_key"`
	AmIn         *time.Time `db:"am_in" json:"am_in"`
	AmOut        *time.Time `db:"am_out" json:"am_out"`
	PmIn         *time.Time `db:"pm_in" json:"pm_in"`
	PmOut        *time.Time `db:"pm_out" json:"pm_out"`
	Activity     *string    `db:"activity" json:"activity"`
	Accomplished *string    `db:"accomplished" json:"accomplished"`
	CreatedAt    time.Time  `db:"created_at" json:"-"`
	UpdatedAt    time.Time  `db:"updated_at" json:"-"`
}

// Entry converts the row into the engine's entry type.
func (r WorklogRecord) Entry() daylog.Entry {
	e := daylog.Entry{
		AmIn:  r.AmIn,
		AmOut: r.AmOut,
		PmIn:  r.PmIn,
		PmOut: r.PmOut,
	}
	if r.Activity != nil {
		e.Activity = *r.Activity
	}
	if r.Accomplished != nil {
		e.Accomplished = *r.Accomplished
	}
	return e
}

// NewWorklogRecord builds the row for an entry keyed by day.
func NewWorklogRecord(day daylog.DayKey, e daylog.Entry) WorklogRecord {
	r := WorklogRecord{
		DateKey: day.String(),
		AmIn:    e.AmIn,
		AmOut:   e.AmOut,
		PmIn:    e.PmIn,
		PmOut:   e.PmOut,
	}
	if e.Activity != "" {
		a := e.Activity
		r.Activity = &a
	}
	if e.Accomplished != "" {
		a := e.Accomplished
		r.Accomplished = &a
	}
	return r
}
