package syncer

import (
	"sync"

	"daily-worklog/internal/daylog"
)

// Store is the session's in-memory cache of all known days, keyed by
// calendar day. It is owned by exactly one Session, filled once on load,
// and mutated only through staged updates, so it never diverges from what
// the session itself wrote — a failed persist reverts the stage.
type Store struct {
	mu     sync.Mutex
	logs   map[daylog.DayKey]daylog.Entry
	loaded bool
}

func NewStore() *Store {
	return &Store{logs: make(map[daylog.DayKey]daylog.Entry)}
}

// Fill replaces the cache contents with the bulk-fetched records and marks
// the store loaded.
func (s *Store) Fill(logs map[daylog.DayKey]daylog.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = make(map[daylog.DayKey]daylog.Entry, len(logs))
	for day, entry := range logs {
		s.logs[day] = entry
	}
	s.loaded = true
}

func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Get returns the cached entry for a day. The second return is false when
// the day has no entry yet.
func (s *Store) Get(day daylog.DayKey) (daylog.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.logs[day]
	return entry, ok
}

// Days returns the cached day keys.
func (s *Store) Days() []daylog.DayKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	days := make([]daylog.DayKey, 0, len(s.logs))
	for day := range s.logs {
		days = append(days, day)
	}
	return days
}

// Stage applies an entry tentatively and returns a revert closure restoring
// the prior cache state. Callers confirm the stage by dropping the revert,
// or roll back by calling it after a failed persist.
func (s *Store) Stage(day daylog.DayKey, entry daylog.Entry) (revert func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.logs[day]
	s.logs[day] = entry

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if existed {
			s.logs[day] = prev
		} else {
			delete(s.logs, day)
		}
	}
}
