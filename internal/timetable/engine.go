package timetable

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/schedly/schedly/internal/logging"
)

// ErrSuperseded is returned by Refresh when a newer refresh was issued while
// this one was still collecting. The stale result is discarded; the engine's
// state reflects whichever request carries the highest sequence number, not
// whichever one finished last.
var ErrSuperseded = errors.New("refresh superseded by a newer request")

// Engine owns the state of one scheduling session: the week cursor, the
// cached busy set, the availability grid and the passed-slot set. There are
// no ambient globals; every screen gets its own instance and the instance
// dies with the session.
type Engine struct {
	collector *Collector
	logger    *slog.Logger
	now       func() time.Time

	mu     sync.Mutex
	nav    *WeekNavigator
	busy   BusySet
	grid   *Grid
	passed PassedSlotSet
	seq    uint64 // latest issued refresh sequence
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock replaces the wall clock, used to freeze "now" in tests.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithEngineLogger sets the engine's logger.
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine anchored at the given week start (milliseconds
// since epoch, local midnight; see WeekStartAt).
func NewEngine(collector *Collector, weekStart int64, opts ...EngineOption) *Engine {
	e := &Engine{
		collector: collector,
		logger:    slog.Default(),
		now:       time.Now,
		nav:       NewWeekNavigator(weekStart),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Window returns the current week window.
func (e *Engine) Window() WeekWindow {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.nav.Window()
}

// Grid returns the most recently built grid, or nil before the first
// successful refresh. The grid is retained across failed refreshes so the
// caller never flashes back to an empty view.
func (e *Engine) Grid() *Grid {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.grid
}

// BusySet returns the engine's current normalized busy set.
func (e *Engine) BusySet() BusySet {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.busy
}

// Passed returns the passed-slot set of the current grid.
func (e *Engine) Passed() PassedSlotSet {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.passed
}

// Refresh runs the full collect -> normalize -> build -> passed-slots
// pipeline for the current week window and the given participant set.
//
// Collection failures leave the previous grid in place and return an error
// wrapping ErrCollection. If a newer Refresh is issued while this one is
// collecting, the late result is discarded and ErrSuperseded is returned;
// callers treat it as a non-event, not a failure.
func (e *Engine) Refresh(ctx context.Context, owner ParticipantID, members []ParticipantID) (*Grid, error) {
	e.mu.Lock()
	e.seq++
	seq := e.seq
	window := e.nav.Window()
	e.mu.Unlock()

	raw, err := e.collector.Collect(ctx, owner, members)
	if err != nil {
		// Previous grid stays as-is.
		return nil, err
	}

	busy := Normalize(raw)
	grid := BuildGrid(window, busy)
	passed := ComputePassed(grid, e.now().UnixMilli())

	e.mu.Lock()
	defer e.mu.Unlock()
	if seq != e.seq {
		e.logger.Debug("discarding superseded refresh",
			logging.Operation("refresh"),
			slog.Uint64("seq", seq),
			slog.Uint64("latest", e.seq),
		)
		return nil, ErrSuperseded
	}

	e.busy = busy
	e.grid = grid
	e.passed = passed

	e.logger.Debug("grid rebuilt",
		logging.Operation("refresh"),
		slog.Int64("week_start", window.WeekStart),
		slog.Int("busy_intervals", len(busy)),
		slog.Int("passed_slots", len(passed.Times)),
	)
	return grid, nil
}

// Navigate moves the week window one week in the given direction and
// refreshes the grid for the same participant set. Navigation always
// invalidates the current grid; the rebuild carries a fresh sequence number
// so an in-flight refresh for the old window can no longer apply.
func (e *Engine) Navigate(ctx context.Context, d Direction, owner ParticipantID, members []ParticipantID) (*Grid, error) {
	e.mu.Lock()
	weekStart := e.nav.Move(d)
	e.mu.Unlock()

	e.logger.Debug("week window moved",
		logging.Operation("navigate"),
		slog.String("direction", d.String()),
		slog.Int64("week_start", weekStart),
	)
	return e.Refresh(ctx, owner, members)
}

// Validate checks a candidate range against the current grid and passed-slot
// set. Before the first successful refresh the grid is empty, so only the
// structural and passed-time checks can fire.
func (e *Engine) Validate(r SelectionRange) *ValidationOutcome {
	e.mu.Lock()
	grid := e.grid
	passed := e.passed
	e.mu.Unlock()
	return Validate(r, grid, passed)
}
