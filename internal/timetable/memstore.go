package timetable

import (
	"context"
	"sync"
)

// MemStore is an in-memory EventStore and ProfileStore. It backs the tests
// and the "memory" backend of the CLI, which is handy for trying the engine
// without Google credentials or ICS feeds.
type MemStore struct {
	mu        sync.RWMutex
	owners    map[ParticipantID][]CalendarRef
	members   map[ParticipantID][]CalendarRef
	events    map[string][]Event
	busyByPID map[ParticipantID][]BusyRange
}

// NewMemStore creates an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		owners:    make(map[ParticipantID][]CalendarRef),
		members:   make(map[ParticipantID][]CalendarRef),
		events:    make(map[string][]Event),
		busyByPID: make(map[ParticipantID][]BusyRange),
	}
}

// AddCalendar registers a calendar with its owner and members.
func (s *MemStore) AddCalendar(ref CalendarRef, owner ParticipantID, members ...ParticipantID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owners[owner] = append(s.owners[owner], ref)
	for _, m := range members {
		s.members[m] = append(s.members[m], ref)
	}
}

// AddEvent appends an event (times in seconds) to a calendar.
func (s *MemStore) AddEvent(calendarID string, ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[calendarID] = append(s.events[calendarID], ev)
}

// AddBusyRange appends a personal busy range (times in milliseconds).
func (s *MemStore) AddBusyRange(p ParticipantID, r BusyRange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busyByPID[p] = append(s.busyByPID[p], r)
}

// CalendarsOwnedBy implements EventStore.
func (s *MemStore) CalendarsOwnedBy(_ context.Context, p ParticipantID) ([]CalendarRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]CalendarRef(nil), s.owners[p]...), nil
}

// CalendarsWithMember implements EventStore.
func (s *MemStore) CalendarsWithMember(_ context.Context, p ParticipantID) ([]CalendarRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]CalendarRef(nil), s.members[p]...), nil
}

// EventsOf implements EventStore.
func (s *MemStore) EventsOf(_ context.Context, calendarID string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event(nil), s.events[calendarID]...), nil
}

// BusyRangesOf implements ProfileStore.
func (s *MemStore) BusyRangesOf(_ context.Context, p ParticipantID) ([]BusyRange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]BusyRange(nil), s.busyByPID[p]...), nil
}
