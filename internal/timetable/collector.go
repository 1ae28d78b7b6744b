package timetable

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/schedly/schedly/internal/logging"
)

// ErrCollection marks a busy-interval collection that failed because one of
// the source queries failed. The collector never returns partial data: the
// caller decides whether to keep showing a stale grid or surface an error.
var ErrCollection = errors.New("busy interval collection failed")

// EventStore is the read-only calendar/event collaborator. Event timestamps
// are store-native seconds and are converted to milliseconds by the
// collector.
type EventStore interface {
	// CalendarsOwnedBy returns the calendars the participant owns.
	CalendarsOwnedBy(ctx context.Context, p ParticipantID) ([]CalendarRef, error)

	// CalendarsWithMember returns the calendars the participant is a member of.
	CalendarsWithMember(ctx context.Context, p ParticipantID) ([]CalendarRef, error)

	// EventsOf returns all events of a calendar.
	EventsOf(ctx context.Context, calendarID string) ([]Event, error)
}

// ProfileStore is the read-only profile collaborator holding personal busy
// ranges, already expressed in milliseconds.
type ProfileStore interface {
	BusyRangesOf(ctx context.Context, p ParticipantID) ([]BusyRange, error)
}

// Collector pulls raw busy intervals for a participant set. Three sources
// feed each participant: events of calendars they own, events of calendars
// they are a member of, and their personal busy ranges. A participant who
// owns one shared calendar and is a member of another will surface the same
// events twice; deduplication is the normalizer's job, not the collector's.
type Collector struct {
	events   EventStore
	profiles ProfileStore
	logger   *slog.Logger

	// perSourceTimeout, when non-zero, bounds each participant's collection.
	// Zero (the default) keeps the baseline behavior of waiting for every
	// source.
	perSourceTimeout time.Duration
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithCollectorLogger sets a logger for collection progress.
func WithCollectorLogger(logger *slog.Logger) CollectorOption {
	return func(c *Collector) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSourceTimeout bounds the collection work for each participant. The
// whole collection still fails if any participant's sources time out; the
// timeout only prevents a hung store from stalling a refresh forever.
func WithSourceTimeout(d time.Duration) CollectorOption {
	return func(c *Collector) {
		c.perSourceTimeout = d
	}
}

// NewCollector creates a collector over the given stores.
func NewCollector(events EventStore, profiles ProfileStore, opts ...CollectorOption) *Collector {
	c := &Collector{
		events:   events,
		profiles: profiles,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect assembles the raw, un-deduplicated interval list for the full
// participant set of a calendar: the owner plus every member. Participants
// are queried concurrently; results are joined before returning, so no
// partial data is ever observed mid-flight.
func (c *Collector) Collect(ctx context.Context, owner ParticipantID, members []ParticipantID) ([]Interval, error) {
	participants := make([]ParticipantID, 0, len(members)+1)
	participants = append(participants, owner)
	participants = append(participants, members...)

	start := time.Now()
	perParticipant := make([][]Interval, len(participants))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range participants {
		g.Go(func() error {
			pctx := gctx
			if c.perSourceTimeout > 0 {
				var cancel context.CancelFunc
				pctx, cancel = context.WithTimeout(gctx, c.perSourceTimeout)
				defer cancel()
			}
			intervals, err := c.collectParticipant(pctx, p)
			if err != nil {
				return err
			}
			perParticipant[i] = intervals
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		c.logger.Error("busy interval collection failed",
			logging.Operation("collect"),
			slog.Int("participants", len(participants)),
			logging.Err(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrCollection, err)
	}

	var raw []Interval
	for _, intervals := range perParticipant {
		raw = append(raw, intervals...)
	}

	c.logger.Debug("busy interval collection completed",
		logging.Operation("collect"),
		slog.Int("participants", len(participants)),
		slog.Int("intervals", len(raw)),
		slog.Duration(logging.KeyDuration, time.Since(start)),
	)
	return raw, nil
}

// collectParticipant gathers the three busy sources of a single participant.
func (c *Collector) collectParticipant(ctx context.Context, p ParticipantID) ([]Interval, error) {
	var out []Interval

	owned, err := c.events.CalendarsOwnedBy(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("owned calendars of %s: %w", p, err)
	}
	memberOf, err := c.events.CalendarsWithMember(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("member calendars of %s: %w", p, err)
	}

	// Owned and member calendars can overlap for the same participant;
	// duplicates fall out during normalization.
	for _, cal := range append(owned, memberOf...) {
		events, err := c.events.EventsOf(ctx, cal.ID)
		if err != nil {
			return nil, fmt.Errorf("events of calendar %s: %w", cal.ID, err)
		}
		for _, ev := range events {
			// Store-native seconds to engine milliseconds.
			out = append(out, Interval{Start: ev.Start * 1000, End: ev.End * 1000})
		}
	}

	ranges, err := c.profiles.BusyRangesOf(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("busy ranges of %s: %w", p, err)
	}
	for _, r := range ranges {
		out = append(out, Interval{Start: r.StartTime, End: r.EndTime})
	}

	return out, nil
}
