package timetable

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func TestEngineRefreshBuildsGrid(t *testing.T) {
	store := NewMemStore()
	store.AddCalendar(CalendarRef{ID: "team"}, "alice", "bob")
	// 10:00-10:30 on day 0 of the test week, in store-native seconds.
	store.AddEvent("team", Event{ID: "e", Start: slotTime(0, 20) / 1000, End: slotTime(0, 21) / 1000})

	eng := NewEngine(NewCollector(store, store), weekStart, WithClock(fixedClock(weekStart)))

	grid, err := eng.Refresh(context.Background(), "alice", []ParticipantID{"bob"})
	require.NoError(t, err)
	require.NotNil(t, grid)

	assert.Equal(t, 1, grid[0][20].OverlapCount)
	assert.Equal(t, 0, grid[0][21].OverlapCount)

	// The same shared calendar is reached through alice (owner) and bob
	// (member); normalization collapses the duplicate interval, so the
	// count stays 1 rather than 2.
	assert.Len(t, eng.BusySet(), 1)
}

func TestEngineRetainsGridOnCollectionFailure(t *testing.T) {
	store := newPopulatedStore()
	failing := &failingEventStore{MemStore: store}
	eng := NewEngine(NewCollector(failing, store), weekStart, WithClock(fixedClock(weekStart)))

	first, err := eng.Refresh(context.Background(), "alice", []ParticipantID{"bob"})
	require.NoError(t, err)

	failing.failEventsOf = true
	_, err = eng.Refresh(context.Background(), "alice", []ParticipantID{"bob"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCollection)

	// The previous grid is still served; the view never flashes empty.
	assert.Same(t, first, eng.Grid())
}

func TestEngineNavigateRoundTrip(t *testing.T) {
	store := newPopulatedStore()
	eng := NewEngine(NewCollector(store, store), weekStart, WithClock(fixedClock(weekStart)))

	_, err := eng.Navigate(context.Background(), DirectionNext, "alice", nil)
	require.NoError(t, err)
	assert.Equal(t, weekStart+WeekMillis, eng.Window().WeekStart)

	_, err = eng.Navigate(context.Background(), DirectionPrevious, "alice", nil)
	require.NoError(t, err)
	assert.Equal(t, weekStart, eng.Window().WeekStart)
}

func TestEngineNavigateRebuildsGridForNewWindow(t *testing.T) {
	store := NewMemStore()
	store.AddCalendar(CalendarRef{ID: "cal"}, "alice")
	// Busy slot in week N+1 only.
	nextWeek := weekStart + WeekMillis
	store.AddEvent("cal", Event{ID: "e", Start: nextWeek / 1000, End: (nextWeek + SlotMillis) / 1000})

	eng := NewEngine(NewCollector(store, store), weekStart, WithClock(fixedClock(weekStart)))

	grid, err := eng.Refresh(context.Background(), "alice", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, grid[0][0].OverlapCount)

	grid, err = eng.Navigate(context.Background(), DirectionNext, "alice", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, grid[0][0].OverlapCount)
	assert.Equal(t, nextWeek, grid[0][0].Time)
}

func TestEngineValidateUsesFrozenNow(t *testing.T) {
	store := newPopulatedStore()
	// Freeze "now" at 01:00 on day 0: slots 00:00 and 00:30 have passed.
	eng := NewEngine(NewCollector(store, store), weekStart, WithClock(fixedClock(slotTime(0, 2))))

	_, err := eng.Refresh(context.Background(), "alice", []ParticipantID{"bob"})
	require.NoError(t, err)

	outcome := eng.Validate(SelectionRange{Start: slotTime(0, 0), End: slotTime(0, 1)})
	require.NotNil(t, outcome)
	assert.Equal(t, MsgAlreadyPassed, outcome.Message)
	assert.False(t, outcome.Blocking)
}

// gatedEventStore blocks the first collection until released, letting tests
// interleave an old in-flight refresh with a newer one.
type gatedEventStore struct {
	*MemStore
	mu      sync.Mutex
	entered chan struct{}
	release chan struct{}
	gated   bool
}

func (g *gatedEventStore) CalendarsOwnedBy(ctx context.Context, p ParticipantID) ([]CalendarRef, error) {
	g.mu.Lock()
	first := !g.gated
	g.gated = true
	g.mu.Unlock()

	if first {
		close(g.entered)
		select {
		case <-g.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return g.MemStore.CalendarsOwnedBy(ctx, p)
}

func TestEngineDiscardsSupersededRefresh(t *testing.T) {
	store := newPopulatedStore()
	gated := &gatedEventStore{
		MemStore: store,
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	eng := NewEngine(NewCollector(gated, store), weekStart, WithClock(fixedClock(weekStart)))

	type result struct {
		grid *Grid
		err  error
	}
	oldDone := make(chan result, 1)
	go func() {
		grid, err := eng.Refresh(context.Background(), "alice", []ParticipantID{"bob"})
		oldDone <- result{grid, err}
	}()

	// Wait for the first refresh to be mid-collection, then issue a newer
	// one that completes immediately.
	<-gated.entered
	newer, err := eng.Refresh(context.Background(), "alice", []ParticipantID{"bob"})
	require.NoError(t, err)
	require.NotNil(t, newer)

	// Release the old request: its result must be discarded even though it
	// finished last.
	close(gated.release)
	old := <-oldDone
	require.Error(t, old.err)
	assert.ErrorIs(t, old.err, ErrSuperseded)
	assert.Nil(t, old.grid)
	assert.Same(t, newer, eng.Grid(), "engine state must reflect the newest request, not the last completion")
}

func TestEngineValidateBeforeFirstRefresh(t *testing.T) {
	store := NewMemStore()
	eng := NewEngine(NewCollector(store, store), weekStart)

	// No grid yet: only the structural check can fire.
	outcome := eng.Validate(SelectionRange{Start: 2000, End: 1000})
	require.NotNil(t, outcome)
	assert.Equal(t, MsgEndBeforeStart, outcome.Message)

	assert.Nil(t, eng.Validate(SelectionRange{Start: 1000, End: 2000}))
}
