package timetable

import "sort"

// Normalize turns a raw interval collection into a BusySet.
//
// It drops malformed intervals (End <= Start), removes exact duplicate
// (Start, End) pairs, and sorts ascending by Start with ties broken by End.
// The same underlying event is frequently reached through more than one
// query path (a participant can own one calendar and be a member of
// another), so duplicates are expected here rather than treated as errors.
//
// Overlapping-but-distinct intervals are never merged: two participants busy
// over the same range must stay two entries so the grid can count them both.
//
// Normalize is idempotent: normalizing an already normalized set returns an
// equal set.
func Normalize(raw []Interval) BusySet {
	seen := make(map[Interval]struct{}, len(raw))
	out := make(BusySet, 0, len(raw))
	for _, iv := range raw {
		if !iv.Valid() {
			continue
		}
		if _, dup := seen[iv]; dup {
			continue
		}
		seen[iv] = struct{}{}
		out = append(out, iv)
	}

	sort.Slice(out, func(a, b int) bool {
		if out[a].Start != out[b].Start {
			return out[a].Start < out[b].Start
		}
		return out[a].End < out[b].End
	})

	return out
}
