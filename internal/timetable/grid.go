package timetable

// BuildGrid projects a normalized busy set onto the week window.
//
// A slot is covered by an interval when slot.Time >= interval.Start and
// slot.Time < interval.End. The membership test is half-open on purpose: an
// event ending exactly at a slot's start time does not occupy that slot.
// That boundary rule is the most common source of off-by-one scheduling
// bugs and must not change.
//
// The build is a direct nested scan, O(cells * |busy|). At the expected
// interval counts (a handful of participants with tens of events) this is
// well under a millisecond; a sweep-line rebuild would only be worth it for
// much larger participant sets and must keep the same observable behavior.
func BuildGrid(window WeekWindow, busy BusySet) *Grid {
	var g Grid
	for d := 0; d < DaysPerWeek; d++ {
		dayStart := window.WeekStart + int64(d)*DayMillis
		for s := 0; s < SlotsPerDay; s++ {
			t := dayStart + int64(s)*SlotMillis
			overlaps := 0
			for _, iv := range busy {
				if t >= iv.Start && t < iv.End {
					overlaps++
				}
			}
			g[d][s] = GridCell{Time: t, OverlapCount: overlaps}
		}
	}
	return &g
}

// ComputePassed returns every grid slot time strictly before now. now is
// sampled once per grid build and frozen; the passed set does not track the
// wall clock as time advances within a render cycle.
func ComputePassed(grid *Grid, now int64) PassedSlotSet {
	var times []int64
	for d := 0; d < DaysPerWeek; d++ {
		for s := 0; s < SlotsPerDay; s++ {
			if t := grid[d][s].Time; t < now {
				times = append(times, t)
			}
		}
	}
	return PassedSlotSet{Times: times}
}
