package timetable_tools

import (
	"fmt"
	"strings"
	"time"

	"github.com/schedly/schedly/internal/timetable"
)

// RenderGrid formats the availability grid as one line per day, compressing
// consecutive busy slots into ranges.
func RenderGrid(grid *timetable.Grid, win timetable.WeekWindow, loc *time.Location) string {
	if grid == nil {
		return "No grid available yet; run timetable_refresh first."
	}

	var b strings.Builder
	weekStart := time.UnixMilli(win.WeekStart).In(loc)
	fmt.Fprintf(&b, "Week of %s (%s)\n\n", weekStart.Format("Mon 2006-01-02"), loc)

	for day := 0; day < timetable.DaysPerWeek; day++ {
		dayStart := time.UnixMilli(grid[day][0].Time).In(loc)
		fmt.Fprintf(&b, "%s: ", dayStart.Format("Mon 2006-01-02"))

		free := 0
		runStart := -1
		var runs []string
		for slot := 0; slot < timetable.SlotsPerDay; slot++ {
			if grid[day][slot].OverlapCount == 0 {
				free++
				if runStart >= 0 {
					runs = append(runs, formatSlotRun(grid, day, runStart, slot, loc))
					runStart = -1
				}
				continue
			}
			if runStart < 0 {
				runStart = slot
			}
		}
		if runStart >= 0 {
			runs = append(runs, formatSlotRun(grid, day, runStart, timetable.SlotsPerDay, loc))
		}

		if len(runs) == 0 {
			fmt.Fprintf(&b, "all %d slots free\n", timetable.SlotsPerDay)
			continue
		}
		fmt.Fprintf(&b, "busy %s; %d/%d slots free\n",
			strings.Join(runs, ", "), free, timetable.SlotsPerDay)
	}
	return b.String()
}

// formatSlotRun formats the half-open slot run [startSlot, endSlot) as a clock
// range, annotated with the peak overlap inside the run.
func formatSlotRun(grid *timetable.Grid, day, startSlot, endSlot int, loc *time.Location) string {
	start := time.UnixMilli(grid[day][startSlot].Time).In(loc)
	end := time.UnixMilli(grid[day][startSlot].Time + int64(endSlot-startSlot)*timetable.SlotMillis).In(loc)

	peak := 0
	for slot := startSlot; slot < endSlot; slot++ {
		if grid[day][slot].OverlapCount > peak {
			peak = grid[day][slot].OverlapCount
		}
	}

	rangeStr := fmt.Sprintf("%s-%s", start.Format("15:04"), end.Format("15:04"))
	if peak > 1 {
		return fmt.Sprintf("%s (%d overlapping)", rangeStr, peak)
	}
	return rangeStr
}
