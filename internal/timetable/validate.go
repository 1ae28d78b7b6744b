package timetable

// Validate checks a candidate selection range against the grid and the
// passed-slot set. Checks run in order and the first match wins:
//
//  1. End <= Start: non-blocking structural complaint. The caller may let
//     the user keep editing but must not silently accept the range.
//  2. The latest passed slot time exceeds the range start or end:
//     non-blocking "already passed" warning. Only the single maximum passed
//     timestamp is compared against the range bounds; this is not a true
//     interval-overlap test against the passed region. The coarse form is
//     preserved deliberately and is flagged for product review rather than
//     silently corrected here.
//  3. Any 30-minute slot spanned by the range has a non-zero overlap count:
//     blocking. The caller must force an explicit confirmation before
//     saving.
//
// A nil return means the range is valid with nothing to report.
func Validate(r SelectionRange, grid *Grid, passed PassedSlotSet) *ValidationOutcome {
	if r.End <= r.Start {
		return &ValidationOutcome{Message: MsgEndBeforeStart, Blocking: false}
	}

	if latest, ok := passed.Latest(); ok {
		if latest > r.Start || latest > r.End {
			return &ValidationOutcome{Message: MsgAlreadyPassed, Blocking: false}
		}
	}

	spanned := spannedSlots(r)
	if grid != nil {
		for d := 0; d < DaysPerWeek; d++ {
			for s := 0; s < SlotsPerDay; s++ {
				cell := grid[d][s]
				if cell.OverlapCount > 0 {
					if _, hit := spanned[cell.Time]; hit {
						return &ValidationOutcome{Message: MsgMembersBusy, Blocking: true}
					}
				}
			}
		}
	}

	return nil
}

// spannedSlots expands a range into the slot timestamps it covers, at the
// grid's 30-minute granularity starting from the range start. A range whose
// length is not a slot multiple still covers the partially-used final slot.
// Slots are keyed by exact timestamp: a range that is not slot-aligned
// matches no grid cells, mirroring how the timetable view highlights cells.
func spannedSlots(r SelectionRange) map[int64]struct{} {
	out := make(map[int64]struct{})
	if r.End <= r.Start {
		return out
	}
	n := (r.End - r.Start + SlotMillis - 1) / SlotMillis
	for i := int64(0); i < n; i++ {
		out[r.Start+i*SlotMillis] = struct{}{}
	}
	return out
}
