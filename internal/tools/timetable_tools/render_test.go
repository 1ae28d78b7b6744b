package timetable_tools

import (
	"strings"
	"testing"
	"time"

	"github.com/schedly/schedly/internal/timetable"
)

// weekStartUTC returns local midnight of 2026-01-05 (a Monday) in UTC, in
// milliseconds.
func weekStartUTC() int64 {
	return time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC).UnixMilli()
}

func TestRenderGrid_NilGrid(t *testing.T) {
	out := RenderGrid(nil, timetable.WeekWindow{WeekStart: weekStartUTC()}, time.UTC)
	if !strings.Contains(out, "timetable_refresh") {
		t.Errorf("expected hint at refresh tool, got %q", out)
	}
}

func TestRenderGrid_AllFree(t *testing.T) {
	win := timetable.WeekWindow{WeekStart: weekStartUTC()}
	grid := timetable.BuildGrid(win, nil)

	out := RenderGrid(grid, win, time.UTC)

	if !strings.Contains(out, "Week of Mon 2026-01-05") {
		t.Errorf("expected week header, got %q", out)
	}
	if got := strings.Count(out, "all 48 slots free"); got != 7 {
		t.Errorf("expected 7 all-free day lines, got %d in %q", got, out)
	}
}

func TestRenderGrid_BusyRun(t *testing.T) {
	win := timetable.WeekWindow{WeekStart: weekStartUTC()}
	// Tuesday 09:00-10:30, with a second participant overlapping 09:30-10:00.
	day := win.WeekStart + timetable.DayMillis
	busy := timetable.BusySet{
		{Start: day + 9*3600*1000, End: day + 10*3600*1000 + 30*60*1000},
		{Start: day + 9*3600*1000 + 30*60*1000, End: day + 10*3600*1000},
	}
	grid := timetable.BuildGrid(win, busy)

	out := RenderGrid(grid, win, time.UTC)

	if !strings.Contains(out, "busy 09:00-10:30 (2 overlapping)") {
		t.Errorf("expected merged busy run with peak overlap, got %q", out)
	}
	if !strings.Contains(out, "45/48 slots free") {
		t.Errorf("expected free-slot count for the busy day, got %q", out)
	}
}

func TestRenderBusySet(t *testing.T) {
	busy := timetable.BusySet{
		{Start: weekStartUTC(), End: weekStartUTC() + timetable.SlotMillis},
	}

	out := RenderBusySet(busy, time.UTC)

	if !strings.Contains(out, "1 busy interval(s)") {
		t.Errorf("expected interval count, got %q", out)
	}
	if !strings.Contains(out, "2026-01-05T00:00:00Z - 2026-01-05T00:30:00Z") {
		t.Errorf("expected RFC3339 interval line, got %q", out)
	}
}
