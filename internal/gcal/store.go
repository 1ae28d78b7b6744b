package gcal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/schedly/schedly/internal/timetable"
)

// API is the subset of the Calendar client the Store relies on.
type API interface {
	ListCalendars(ctx context.Context) ([]CalendarInfo, error)
	ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]EventSummary, error)
	QueryFreeBusy(ctx context.Context, timeMin, timeMax time.Time, calendarIDs []string) ([]FreeBusyInfo, error)
}

// DefaultHorizon bounds event and freebusy queries when no explicit window
// has been set.
const DefaultHorizon = 28 * 24 * time.Hour

// Store adapts the Calendar API to the timetable collector interfaces.
//
// The authenticated account corresponds to exactly one participant, the
// owner. For that participant the calendar list is authoritative: entries
// with the "owner" access role are owned calendars, every other entry is a
// calendar the owner is a member of. Other participants are addressed by
// their calendar ID, which for Google accounts is their email address;
// their primary calendar is the only one visible to us, as an owned
// calendar with no membership info.
type Store struct {
	api   API
	owner timetable.ParticipantID

	mu       sync.RWMutex
	winStart time.Time
	winEnd   time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithQueryWindow sets the initial time window for event and freebusy
// queries.
func WithQueryWindow(start, end time.Time) StoreOption {
	return func(s *Store) {
		s.winStart = start
		s.winEnd = end
	}
}

// NewStore creates a Store for the given API bound to the owning
// participant.
func NewStore(api API, owner timetable.ParticipantID, opts ...StoreOption) *Store {
	s := &Store{
		api:   api,
		owner: owner,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetWindow updates the query window. Callers move the window along when the
// visible week changes so queries stay bounded.
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
		return now.Add(-DefaultHorizon), now.Add(DefaultHorizon)
	}
	return s.winStart, s.winEnd
}

// CalendarsOwnedBy returns the calendars the participant owns.
func (s *Store) CalendarsOwnedBy(ctx context.Context, p timetable.ParticipantID) ([]timetable.CalendarRef, error) {
	if p != s.owner {
		// Another participant's primary calendar, addressed by email.
		return []timetable.CalendarRef{{ID: string(p), Summary: string(p)}}, nil
	}

	infos, err := s.api.ListCalendars(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve owned calendars for %s: %w", p, err)
	}

	var refs []timetable.CalendarRef
	for _, info := range infos {
		if info.AccessRole == "owner" {
			refs = append(refs, timetable.CalendarRef{ID: info.ID, Summary: info.Summary})
		}
	}
	return refs, nil
}

// CalendarsWithMember returns the calendars the participant is a member of.
func (s *Store) CalendarsWithMember(ctx context.Context, p timetable.ParticipantID) ([]timetable.CalendarRef, error) {
	if p != s.owner {
		// Membership of other participants is not visible to this account.
		return nil, nil
	}

	infos, err := s.api.ListCalendars(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve member calendars for %s: %w", p, err)
	}

	var refs []timetable.CalendarRef
	for _, info := range infos {
		if info.AccessRole != "owner" {
			refs = append(refs, timetable.CalendarRef{ID: info.ID, Summary: info.Summary})
		}
	}
	return refs, nil
}

// EventsOf returns the events of a calendar within the query window.
// Timestamps are Unix seconds.
func (s *Store) EventsOf(ctx context.Context, calendarID string) ([]timetable.Event, error) {
	timeMin, timeMax := s.window()

	summaries, err := s.api.ListEvents(ctx, calendarID, timeMin, timeMax)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events of %s: %w", calendarID, err)
	}

	var events []timetable.Event
	for _, sum := range summaries {
		if sum.Status == "cancelled" {
			continue
		}
		if sum.Start.IsZero() || sum.End.IsZero() {
			continue
		}
		events = append(events, timetable.Event{
			ID:    sum.ID,
			Start: sum.Start.Unix(),
			End:   sum.End.Unix(),
		})
	}
	return events, nil
}

// BusyRangesOf returns the participant's freebusy intervals within the query
// window. Timestamps are Unix milliseconds.
func (s *Store) BusyRangesOf(ctx context.Context, p timetable.ParticipantID) ([]timetable.BusyRange, error) {
	timeMin, timeMax := s.window()

	infos, err := s.api.QueryFreeBusy(ctx, timeMin, timeMax, []string{string(p)})
	if err != nil {
		return nil, fmt.Errorf("failed to query freebusy for %s: %w", p, err)
	}

	var ranges []timetable.BusyRange
	for _, info := range infos {
		if len(info.Errors) > 0 {
			return nil, fmt.Errorf("freebusy lookup for %s reported: %s", info.Calendar, info.Errors[0])
		}
		for _, busy := range info.Busy {
			ranges = append(ranges, timetable.BusyRange{
				StartTime: busy.Start.UnixMilli(),
				EndTime:   busy.End.UnixMilli(),
			})
		}
	}
	return ranges, nil
}
