// Package ics collects busy ranges from subscribed iCalendar feeds.
//
// Each participant maps to one feed URL. The fetcher caches feed bodies on
// disk and honors ETag and Last-Modified so unchanged feeds are not
// re-downloaded. Parsed events are expanded into concrete occurrences,
// including RRULE recurrences with EXDATE exceptions and RECURRENCE-ID
// overrides, and the occurrences inside the query window become the
// participant's busy ranges.
package ics
