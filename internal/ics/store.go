package ics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/schedly/schedly/internal/timetable"
)

// Store is a feed-backed calendar source. Each participant maps to exactly
// one subscribed feed, which doubles as their single owned calendar; group
// membership is not expressible in a plain feed, so CalendarsWithMember is
// always empty.
type Store struct {
	fetcher *Fetcher
	feeds   map[timetable.ParticipantID]string

	mu       sync.RWMutex
	winStart time.Time
	winEnd   time.Time
}

// NewStore creates a Store over the given feeds, keyed by participant.
func NewStore(fetcher *Fetcher, feeds map[timetable.ParticipantID]string) *Store {
	copied := make(map[timetable.ParticipantID]string, len(feeds))
	for p, u := range feeds {
		copied[p] = u
	}
	return &Store{
		fetcher: fetcher,
		feeds:   copied,
	}
}

// SetWindow updates the expansion window for subsequent queries.
func (s *Store) SetWindow(start, end time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.winStart = start
	s.winEnd = end
}

func (s *Store) window() (time.Time, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.winStart.IsZero() && s.winEnd.IsZero() {
		now := time.Now()
		return now.AddDate(0, 0, -28), now.AddDate(0, 0, 28)
	}
	return s.winStart, s.winEnd
}

// CalendarsOwnedBy returns the participant's feed as their single owned
// calendar.
func (s *Store) CalendarsOwnedBy(ctx context.Context, p timetable.ParticipantID) ([]timetable.CalendarRef, error) {
	if _, ok := s.feeds[p]; !ok {
		return nil, fmt.Errorf("no feed configured for participant %s", p)
	}
	return []timetable.CalendarRef{{ID: string(p), Summary: string(p)}}, nil
}

// CalendarsWithMember always returns nil; feeds carry no membership.
func (s *Store) CalendarsWithMember(ctx context.Context, p timetable.ParticipantID) ([]timetable.CalendarRef, error) {
	return nil, nil
}

// EventsOf fetches and expands the feed behind a calendar ID. Timestamps
// are Unix seconds.
func (s *Store) EventsOf(ctx context.Context, calendarID string) ([]timetable.Event, error) {
	occs, err := s.occurrences(ctx, timetable.ParticipantID(calendarID))
	if err != nil {
		return nil, err
	}

	var events []timetable.Event
	for _, occ := range occs {
		events = append(events, timetable.Event{
			ID:    occ.UID,
			Start: occ.Start.Unix(),
			End:   occ.End.Unix(),
		})
	}
	return events, nil
}

// BusyRangesOf fetches and expands the participant's feed. Timestamps are
// Unix milliseconds.
func (s *Store) BusyRangesOf(ctx context.Context, p timetable.ParticipantID) ([]timetable.BusyRange, error) {
	occs, err := s.occurrences(ctx, p)
	if err != nil {
		return nil, err
	}

	var ranges []timetable.BusyRange
	for _, occ := range occs {
		ranges = append(ranges, timetable.BusyRange{
			StartTime: occ.Start.UnixMilli(),
			EndTime:   occ.End.UnixMilli(),
		})
	}
	return ranges, nil
}

func (s *Store) occurrences(ctx context.Context, p timetable.ParticipantID) ([]Occurrence, error) {
	feedURL, ok := s.feeds[p]
	if !ok {
		return nil, fmt.Errorf("no feed configured for participant %s", p)
	}

	res, err := s.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("feed fetch for %s: %w", p, err)
	}

	events, err := Parse(res.Body)
	if err != nil {
		return nil, fmt.Errorf("feed parse for %s: %w", p, err)
	}

	winStart, winEnd := s.window()
	occs, err := Expand(events, ExpandConfig{RangeStart: winStart, RangeEnd: winEnd})
	if err != nil {
		return nil, fmt.Errorf("feed expansion for %s: %w", p, err)
	}
	return occs, nil
}

var (
	_ timetable.EventStore   = (*Store)(nil)
	_ timetable.ProfileStore = (*Store)(nil)
)
