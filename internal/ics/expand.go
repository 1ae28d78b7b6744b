package ics

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"
)

const defaultMaxOccurrencesPerEvent = 5000

// Occurrence is a concrete busy interval produced by expansion.
type Occurrence struct {
	UID     string
	Summary string
	Start   time.Time
	End     time.Time
}

// ExpandConfig controls recurrence expansion.
type ExpandConfig struct {
	// RangeStart and RangeEnd bound the expansion window.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrencesPerEvent caps runaway recurrences. Zero means the
	// default cap.
	MaxOccurrencesPerEvent int
}

// Expand turns parsed events into concrete occurrences within the window.
// It handles single events, RRULE recurrence, EXDATE exceptions and
// RECURRENCE-ID overrides.
func Expand(events []ParsedEvent, cfg ExpandConfig) ([]Occurrence, error) {
	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return nil, errors.New("expansion range end is before range start")
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	// Group base events and overrides by UID.
	baseByUID := make(map[string][]ParsedEvent)
	overridesByUID := make(map[string][]ParsedEvent)
	var uids []string
	for _, ev := range events {
		if ev.IsOverride() {
			overridesByUID[ev.UID] = append(overridesByUID[ev.UID], ev)
			continue
		}
		if _, seen := baseByUID[ev.UID]; !seen {
			uids = append(uids, ev.UID)
		}
		baseByUID[ev.UID] = append(baseByUID[ev.UID], ev)
	}

	var out []Occurrence
	for _, uid := range uids {
		overrides := overridesByUID[uid]
		for _, ev := range baseByUID[uid] {
			out = append(out, expandEvent(ev, overrides, cfg)...)
		}
	}
	return out, nil
}

func expandEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) []Occurrence {
	if ev.RawRRule == "" {
		return expandSingle(ev, overrides, cfg)
	}
	return expandRecurring(ev, overrides, cfg)
}

func expandSingle(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) []Occurrence {
	start, end := ev.Start, ev.End
	if o, ok := findOverride(overrides, start); ok {
		ev, start, end = o, o.Start, o.End
	}
	if !rangesOverlap(start, end, cfg.RangeStart, cfg.RangeEnd) {
		return nil
	}
	return []Occurrence{{UID: ev.UID, Summary: ev.Summary, Start: start, End: end}}
}

func expandRecurring(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) []Occurrence {
	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		return nil
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	dur := ev.End.Sub(ev.Start)

	// Widen the query so recurrences starting before the window but ending
	// inside it are not missed.
	rangeStart := cfg.RangeStart.Add(-dur).In(ev.Start.Location())
	rangeEnd := cfg.RangeEnd.In(ev.Start.Location())

	occTimes := set.Between(rangeStart, rangeEnd, true)
	if len(occTimes) > cfg.MaxOccurrencesPerEvent {
		occTimes = occTimes[:cfg.MaxOccurrencesPerEvent]
	}

	var out []Occurrence
	for _, occStart := range occTimes {
		occEnd := occStart.Add(dur)
		if ev.AllDay {
			day := time.Date(occStart.Year(), occStart.Month(), occStart.Day(), 0, 0, 0, 0, occStart.Location())
			occStart, occEnd = day, day.Add(24*time.Hour)
		}

		occEv := ev
		if o, ok := findOverride(overrides, occStart); ok {
			occEv, occStart, occEnd = o, o.Start, o.End
		}
		if !rangesOverlap(occStart, occEnd, cfg.RangeStart, cfg.RangeEnd) {
			continue
		}
		out = append(out, Occurrence{UID: occEv.UID, Summary: occEv.Summary, Start: occStart, End: occEnd})
	}
	return out
}

// findOverride finds an override whose RECURRENCE-ID matches the given
// instance start.
func findOverride(overrides []ParsedEvent, instanceStart time.Time) (ParsedEvent, bool) {
	for _, ov := range overrides {
		if ov.RecurrenceID == nil {
			continue
		}
		if ov.RecurrenceID.In(instanceStart.Location()).Equal(instanceStart) {
			return ov, true
		}
	}
	return ParsedEvent{}, false
}

func rangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
