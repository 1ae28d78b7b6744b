package timetable

import "time"

// Direction selects which way the week window moves.
type Direction int

const (
	DirectionNext Direction = iota
	DirectionPrevious
)

// String returns the wire form used by the CLI and MCP tools.
func (d Direction) String() string {
	switch d {
	case DirectionNext:
		return "next"
	case DirectionPrevious:
		return "previous"
	default:
		return "unknown"
	}
}

// ParseDirection parses "next" or "previous".
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "next":
		return DirectionNext, true
	case "previous":
		return DirectionPrevious, true
	default:
		return 0, false
	}
}

// WeekNavigator owns the week-window cursor. Navigation is unbounded in both
// directions; moving Next then Previous restores the original week start
// exactly, because both operations shift by a fixed number of milliseconds.
type WeekNavigator struct {
	weekStart int64
}

// NewWeekNavigator creates a navigator anchored at weekStart, which should
// be local midnight of the day chosen as the week's first day (see
// WeekStartAt).
func NewWeekNavigator(weekStart int64) *WeekNavigator {
	return &WeekNavigator{weekStart: weekStart}
}

// WeekStart returns the current week start in milliseconds since epoch.
func (n *WeekNavigator) WeekStart() int64 {
	return n.weekStart
}

// Window returns the current week window.
func (n *WeekNavigator) Window() WeekWindow {
	return WeekWindow{WeekStart: n.weekStart}
}

// Next advances the window by one week and returns the new week start.
func (n *WeekNavigator) Next() int64 {
	n.weekStart += WeekMillis
	return n.weekStart
}

// Previous moves the window back by one week and returns the new week start.
func (n *WeekNavigator) Previous() int64 {
	n.weekStart -= WeekMillis
	return n.weekStart
}

// Move applies the given direction.
func (n *WeekNavigator) Move(d Direction) int64 {
	if d == DirectionPrevious {
		return n.Previous()
	}
	return n.Next()
}

// WeekStartAt returns local midnight of now's day in milliseconds since
// epoch. The timetable anchors its first week on the current day rather
// than a fixed weekday, so "this week" always begins today.
func WeekStartAt(now time.Time) int64 {
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return midnight.UnixMilli()
}
