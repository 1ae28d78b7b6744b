package timetable

import "testing"

// weekStart is 2025-01-01T00:00:00Z in milliseconds. The grid math is pure
// arithmetic on the window, so the tests can use UTC-midnight values without
// involving time zones.
const weekStart = int64(1735689600000)

func slotTime(day, slot int) int64 {
	return weekStart + int64(day)*DayMillis + int64(slot)*SlotMillis
}

func TestBuildGridShape(t *testing.T) {
	g := BuildGrid(WeekWindow{WeekStart: weekStart}, nil)

	cells := g.Cells()
	if len(cells) != DaysPerWeek*SlotsPerDay {
		t.Fatalf("grid has %d cells, want %d", len(cells), DaysPerWeek*SlotsPerDay)
	}

	for d := 0; d < DaysPerWeek; d++ {
		for s := 0; s < SlotsPerDay; s++ {
			want := slotTime(d, s)
			if g[d][s].Time != want {
				t.Fatalf("cell [%d][%d].Time = %d, want %d", d, s, g[d][s].Time, want)
			}
		}
	}

	// Consecutive intraday cells differ by exactly one slot; day boundaries
	// by exactly one day.
	for d := 0; d < DaysPerWeek; d++ {
		for s := 1; s < SlotsPerDay; s++ {
			if diff := g[d][s].Time - g[d][s-1].Time; diff != SlotMillis {
				t.Fatalf("intraday step at [%d][%d] = %d, want %d", d, s, diff, int64(SlotMillis))
			}
		}
		if d > 0 {
			if diff := g[d][0].Time - g[d-1][0].Time; diff != DayMillis {
				t.Fatalf("day step at day %d = %d, want %d", d, diff, int64(DayMillis))
			}
		}
	}
}

func TestBuildGridHalfOpenBoundary(t *testing.T) {
	// Interval [10:00, 10:30) on day 0: marks the 10:00 slot and leaves the
	// 10:30 slot untouched. 10:00 is slot 20.
	busy := BusySet{{Start: slotTime(0, 20), End: slotTime(0, 21)}}
	g := BuildGrid(WeekWindow{WeekStart: weekStart}, busy)

	if got := g[0][20].OverlapCount; got != 1 {
		t.Errorf("10:00 slot overlap = %d, want 1", got)
	}
	if got := g[0][21].OverlapCount; got != 0 {
		t.Errorf("10:30 slot overlap = %d, want 0 (event ends exactly at slot start)", got)
	}
	if got := g[0][19].OverlapCount; got != 0 {
		t.Errorf("09:30 slot overlap = %d, want 0", got)
	}
}

func TestBuildGridCountsOverlaps(t *testing.T) {
	// Two participants busy 09:00-10:00, one of them also 09:30-11:00.
	busy := BusySet{
		{Start: slotTime(0, 18), End: slotTime(0, 20)},
		{Start: slotTime(0, 18), End: slotTime(0, 20)},
		{Start: slotTime(0, 19), End: slotTime(0, 22)},
	}
	// The duplicate pair would normally be removed by Normalize; BuildGrid
	// counts whatever it is given.
	g := BuildGrid(WeekWindow{WeekStart: weekStart}, busy)

	wantBySlot := map[int]int{18: 2, 19: 3, 20: 1, 21: 1, 22: 0}
	for slot, want := range wantBySlot {
		if got := g[0][slot].OverlapCount; got != want {
			t.Errorf("slot %d overlap = %d, want %d", slot, got, want)
		}
	}
}

func TestBuildGridExhaustiveCount(t *testing.T) {
	// Property check: overlapCount equals the brute-force membership count
	// for every cell.
	busy := BusySet{
		{Start: slotTime(1, 0), End: slotTime(1, 5)},
		{Start: slotTime(1, 3), End: slotTime(2, 1)},
		{Start: slotTime(6, 47), End: slotTime(6, 48)},
		{Start: weekStart - DayMillis, End: weekStart + SlotMillis},
	}
	g := BuildGrid(WeekWindow{WeekStart: weekStart}, busy)

	for _, cell := range g.Cells() {
		want := 0
		for _, iv := range busy {
			if cell.Time >= iv.Start && cell.Time < iv.End {
				want++
			}
		}
		if cell.OverlapCount != want {
			t.Fatalf("cell %d overlap = %d, want %d", cell.Time, cell.OverlapCount, want)
		}
	}
}

func TestComputePassed(t *testing.T) {
	g := BuildGrid(WeekWindow{WeekStart: weekStart}, nil)

	// now = day 0, 01:15 -> slots 00:00, 00:30, 01:00 have passed.
	now := slotTime(0, 2) + SlotMillis/2
	passed := ComputePassed(g, now)

	if len(passed.Times) != 3 {
		t.Fatalf("passed set has %d entries, want 3: %v", len(passed.Times), passed.Times)
	}
	latest, ok := passed.Latest()
	if !ok || latest != slotTime(0, 2) {
		t.Errorf("Latest() = %d, %v, want %d, true", latest, ok, slotTime(0, 2))
	}
	if !passed.Contains(slotTime(0, 0)) || passed.Contains(slotTime(0, 3)) {
		t.Error("Contains() misclassifies slots around the boundary")
	}

	// A slot whose time equals now has not passed: strictly-less-than.
	passed = ComputePassed(g, slotTime(0, 2))
	if latest, _ := passed.Latest(); latest != slotTime(0, 1) {
		t.Errorf("slot equal to now counted as passed; latest = %d", latest)
	}
}

func TestComputePassedEmpty(t *testing.T) {
	g := BuildGrid(WeekWindow{WeekStart: weekStart}, nil)
	passed := ComputePassed(g, weekStart-1)
	if _, ok := passed.Latest(); ok {
		t.Error("future-only grid reported a latest passed slot")
	}
}
