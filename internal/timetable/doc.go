// Package timetable implements the free/busy aggregation and
// availability-grid engine behind the scheduling timetable view.
//
// The engine collects busy intervals for a participant set from pluggable
// event and profile stores, deduplicates and orders them, and projects them
// onto a week-long grid of 30-minute slots. Each slot carries the number of
// participants busy during it, so the caller can distinguish "one person
// busy" from "everyone busy". A proposed event range is validated against
// the grid and against the slots that have already elapsed.
//
// Example usage:
//
//	store := timetable.NewMemStore()
//	collector := timetable.NewCollector(store, store)
//	engine := timetable.NewEngine(collector, timetable.WeekStartAt(time.Now()))
//
//	grid, err := engine.Refresh(ctx, "alice", []timetable.ParticipantID{"bob"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	outcome := engine.Validate(timetable.SelectionRange{Start: s, End: e})
package timetable
