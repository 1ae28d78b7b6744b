package timetable

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPopulatedStore() *MemStore {
	store := NewMemStore()
	// alice owns "team", bob is a member; bob also owns "family".
	store.AddCalendar(CalendarRef{ID: "team", Summary: "Team"}, "alice", "bob")
	store.AddCalendar(CalendarRef{ID: "family", Summary: "Family"}, "bob")
	store.AddEvent("team", Event{ID: "standup", Start: 1000, End: 2000})
	store.AddEvent("family", Event{ID: "dinner", Start: 5000, End: 6000})
	store.AddBusyRange("alice", BusyRange{StartTime: 9_000_000, EndTime: 9_900_000})
	return store
}

func TestCollectGathersAllSources(t *testing.T) {
	store := newPopulatedStore()
	c := NewCollector(store, store)

	raw, err := c.Collect(context.Background(), "alice", []ParticipantID{"bob"})
	require.NoError(t, err)

	// alice: team (owned) events + personal range.
	// bob: family (owned) + team (member) events.
	// "standup" is therefore delivered twice: once through alice's owned
	// path and once through bob's membership path.
	assert.Contains(t, raw, Interval{Start: 1_000_000, End: 2_000_000})
	assert.Contains(t, raw, Interval{Start: 5_000_000, End: 6_000_000})
	assert.Contains(t, raw, Interval{Start: 9_000_000, End: 9_900_000})

	standups := 0
	for _, iv := range raw {
		if iv == (Interval{Start: 1_000_000, End: 2_000_000}) {
			standups++
		}
	}
	assert.Equal(t, 2, standups, "shared event must surface once per query path; dedup is the normalizer's job")
}

func TestCollectConvertsSecondsToMillis(t *testing.T) {
	store := NewMemStore()
	store.AddCalendar(CalendarRef{ID: "cal"}, "alice")
	store.AddEvent("cal", Event{ID: "e", Start: 1735725600, End: 1735729200})
	c := NewCollector(store, store)

	raw, err := c.Collect(context.Background(), "alice", nil)
	require.NoError(t, err)
	require.Len(t, raw, 1)
	assert.Equal(t, Interval{Start: 1735725600000, End: 1735729200000}, raw[0])
}

type failingEventStore struct {
	*MemStore
	failEventsOf bool
	failOwned    bool
}

func (f *failingEventStore) CalendarsOwnedBy(ctx context.Context, p ParticipantID) ([]CalendarRef, error) {
	if f.failOwned {
		return nil, errors.New("store unavailable")
	}
	return f.MemStore.CalendarsOwnedBy(ctx, p)
}

func (f *failingEventStore) EventsOf(ctx context.Context, calendarID string) ([]Event, error) {
	if f.failEventsOf {
		return nil, errors.New("store unavailable")
	}
	return f.MemStore.EventsOf(ctx, calendarID)
}

func TestCollectFailsWholeOperationOnSourceError(t *testing.T) {
	store := newPopulatedStore()
	failing := &failingEventStore{MemStore: store, failEventsOf: true}
	c := NewCollector(failing, store)

	raw, err := c.Collect(context.Background(), "alice", []ParticipantID{"bob"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCollection), "error must wrap ErrCollection")
	assert.Nil(t, raw, "no partial data on failure")
}

func TestCollectWrapsOwnedCalendarError(t *testing.T) {
	store := newPopulatedStore()
	failing := &failingEventStore{MemStore: store, failOwned: true}
	c := NewCollector(failing, store)

	_, err := c.Collect(context.Background(), "alice", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCollection)
}

func TestCollectRespectsContextCancellation(t *testing.T) {
	store := newPopulatedStore()
	c := NewCollector(blockingEventStore{}, store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Collect(ctx, "alice", nil)
	require.Error(t, err)
}

// blockingEventStore blocks until the context is done.
type blockingEventStore struct{}

func (blockingEventStore) CalendarsOwnedBy(ctx context.Context, _ ParticipantID) ([]CalendarRef, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingEventStore) CalendarsWithMember(ctx context.Context, _ ParticipantID) ([]CalendarRef, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingEventStore) EventsOf(ctx context.Context, _ string) ([]Event, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
