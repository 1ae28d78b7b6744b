package timetable

// Grid geometry. The timetable view always shows one week of 30-minute
// slots, regardless of how many busy intervals exist.
const (
	// DaysPerWeek is the number of day columns in a grid.
	DaysPerWeek = 7

	// SlotsPerDay is the number of 30-minute slots per day column.
	SlotsPerDay = 48

	// SlotMillis is the duration of one grid slot in milliseconds.
	SlotMillis = 30 * 60 * 1000

	// DayMillis is the duration of one day in milliseconds.
	DayMillis = 24 * 60 * 60 * 1000

	// WeekMillis is the duration of one week in milliseconds.
	WeekMillis = DaysPerWeek * DayMillis
)

// ParticipantID identifies a calendar owner or member. It is opaque to the
// engine; stores decide what it means (an account email, a document id, ...).
type ParticipantID string

// CalendarRef identifies a calendar in the external event store.
type CalendarRef struct {
	ID      string
	Summary string
}

// Event is a calendar event as delivered by the event store. Start and End
// are store-native seconds since epoch; the collector converts them to
// milliseconds at the boundary.
type Event struct {
	ID    string
	Start int64
	End   int64
}

// BusyRange is a personal busy range stored directly against a participant,
// for example an imported device-calendar range. Times are already in
// milliseconds since epoch.
type BusyRange struct {
	StartTime int64
	EndTime   int64
}

// Interval is a half-open busy interval [Start, End) in milliseconds since
// epoch. An interval is well formed when End > Start; malformed intervals
// are dropped during normalization rather than propagated.
type Interval struct {
	Start int64
	End   int64
}

// Valid reports whether the interval is well formed.
func (i Interval) Valid() bool {
	return i.End > i.Start
}

// BusySet is a normalized sequence of intervals: unique by (Start, End),
// sorted ascending by Start with ties broken by End. Overlapping intervals
// from different participants are kept separate on purpose, because the grid
// reports how many participants are busy, not merely whether any are.
type BusySet []Interval

// WeekWindow is the week currently shown by the timetable. WeekStart is
// local midnight of the week's first day, in milliseconds since epoch.
type WeekWindow struct {
	WeekStart int64
}

// GridCell is one 30-minute slot of the availability grid. OverlapCount is
// the number of busy intervals covering the slot's start time; zero means
// the slot is free.
type GridCell struct {
	Time         int64
	OverlapCount int
}

// Grid is the fixed-shape availability grid: 7 day columns of 48 slots.
// Cell [d][s] starts at WeekStart + d*DayMillis + s*SlotMillis.
type Grid [DaysPerWeek][SlotsPerDay]GridCell

// Cells returns the grid's cells flattened in day-major order. Because every
// day column is later than the previous one, the flattened sequence is
// globally ascending by time.
func (g *Grid) Cells() []GridCell {
	out := make([]GridCell, 0, DaysPerWeek*SlotsPerDay)
	for d := 0; d < DaysPerWeek; d++ {
		for s := 0; s < SlotsPerDay; s++ {
			out = append(out, g[d][s])
		}
	}
	return out
}

// PassedSlotSet is the set of grid slot times that were already in the past
// when the grid was built. The "now" used to compute it is frozen once per
// build; it does not track the wall clock afterwards.
type PassedSlotSet struct {
	// Times holds the passed slot times in ascending order.
	Times []int64
}

// Contains reports whether t is a passed slot time.
func (p PassedSlotSet) Contains(t int64) bool {
	for _, pt := range p.Times {
		if pt == t {
			return true
		}
		if pt > t {
			return false
		}
	}
	return false
}

// Latest returns the maximum passed slot time. ok is false when no slot has
// passed.
func (p PassedSlotSet) Latest() (latest int64, ok bool) {
	if len(p.Times) == 0 {
		return 0, false
	}
	return p.Times[len(p.Times)-1], true
}

// SelectionRange is the candidate event range supplied by the caller. It is
// structurally valid when End > Start; violations are reported through
// validation rather than rejected outright.
type SelectionRange struct {
	Start int64
	End   int64
}

// ValidationOutcome describes why a selection range was flagged. Blocking
// outcomes must force an explicit user confirmation before the caller saves
// the event; non-blocking outcomes may be surfaced as dismissible warnings.
// A nil *ValidationOutcome means the range is valid.
type ValidationOutcome struct {
	Message  string
	Blocking bool
}

// Validation messages. The exact wording is part of the engine's contract
// with the screen layer.
const (
	MsgEndBeforeStart = "End date must be after the start date."
	MsgAlreadyPassed  = "Selected time must not be passed already."
	MsgMembersBusy    = "One or more members are busy during the selected time."
)
