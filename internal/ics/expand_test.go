package ics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandSingleEventInsideWindow(t *testing.T) {
	start := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)
	events := []ParsedEvent{{
		UID:   "evt-1",
		Start: start,
		End:   start.Add(time.Hour),
	}}

	occs, err := Expand(events, ExpandConfig{
		RangeStart: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		RangeEnd:   time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, occs, 1)
	assert.Equal(t, start, occs[0].Start)
}

func TestExpandSingleEventOutsideWindow(t *testing.T) {
	start := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	events := []ParsedEvent{{
		UID:   "evt-1",
		Start: start,
		End:   start.Add(time.Hour),
	}}

	occs, err := Expand(events, ExpandConfig{
		RangeStart: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		RangeEnd:   time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Empty(t, occs)
}

func TestExpandWeeklyRecurrence(t *testing.T) {
	// Weekly Monday sync, expanded over four weeks.
	start := time.Date(2025, 1, 6, 14, 0, 0, 0, time.UTC)
	events := []ParsedEvent{{
		UID:      "evt-3",
		Start:    start,
		End:      start.Add(time.Hour),
		RawRRule: "FREQ=WEEKLY;BYDAY=MO",
	}}

	occs, err := Expand(events, ExpandConfig{
		RangeStart: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		RangeEnd:   time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, occs, 4)
	for i, occ := range occs {
		want := start.AddDate(0, 0, 7*i)
		assert.Equal(t, want, occ.Start, "occurrence %d", i)
		assert.Equal(t, time.Hour, occ.End.Sub(occ.Start))
	}
}

func TestExpandAppliesExdate(t *testing.T) {
	start := time.Date(2025, 1, 6, 14, 0, 0, 0, time.UTC)
	skipped := start.AddDate(0, 0, 7)
	events := []ParsedEvent{{
		UID:      "evt-3",
		Start:    start,
		End:      start.Add(time.Hour),
		RawRRule: "FREQ=WEEKLY;BYDAY=MO",
		ExDates:  []time.Time{skipped},
	}}

	occs, err := Expand(events, ExpandConfig{
		RangeStart: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		RangeEnd:   time.Date(2025, 1, 27, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, occs, 2)
	for _, occ := range occs {
		assert.False(t, occ.Start.Equal(skipped))
	}
}

func TestExpandAppliesOverride(t *testing.T) {
	start := time.Date(2025, 1, 6, 14, 0, 0, 0, time.UTC)
	overridden := start.AddDate(0, 0, 7)
	movedTo := overridden.Add(2 * time.Hour)

	events := []ParsedEvent{
		{
			UID:      "evt-3",
			Start:    start,
			End:      start.Add(time.Hour),
			RawRRule: "FREQ=WEEKLY;BYDAY=MO",
		},
		{
			UID:          "evt-3",
			Summary:      "Moved sync",
			Start:        movedTo,
			End:          movedTo.Add(time.Hour),
			RecurrenceID: &overridden,
		},
	}

	occs, err := Expand(events, ExpandConfig{
		RangeStart: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		RangeEnd:   time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, occs, 2)

	var found bool
	for _, occ := range occs {
		if occ.Start.Equal(movedTo) {
			found = true
			assert.Equal(t, "Moved sync", occ.Summary)
		}
		assert.False(t, occ.Start.Equal(overridden), "overridden instance should be replaced")
	}
	assert.True(t, found, "override occurrence should be present")
}

func TestExpandInvalidRange(t *testing.T) {
	_, err := Expand(nil, ExpandConfig{
		RangeStart: time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC),
		RangeEnd:   time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
	})
	assert.Error(t, err)
}

func TestExpandIgnoresBrokenRRule(t *testing.T) {
	start := time.Date(2025, 1, 6, 14, 0, 0, 0, time.UTC)
	events := []ParsedEvent{{
		UID:      "evt-9",
		Start:    start,
		End:      start.Add(time.Hour),
		RawRRule: "FREQ=NONSENSE",
	}}

	occs, err := Expand(events, ExpandConfig{
		RangeStart: start.AddDate(0, 0, -1),
		RangeEnd:   start.AddDate(0, 0, 7),
	})
	require.NoError(t, err)
	assert.Empty(t, occs)
}
