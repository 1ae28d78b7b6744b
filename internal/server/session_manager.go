package server

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultSessionTimeout is how long an account's scheduling session may sit
// idle before its engine is dropped.
const DefaultSessionTimeout = 24 * time.Hour

// SessionReaper periodically expires idle scheduling sessions so engines for
// accounts that stopped calling tools do not accumulate in a long-running
// server. A reaped account transparently gets a fresh session on its next
// tool call.
type SessionReaper struct {
	sc       *ServerContext
	timeout  time.Duration
	ticker   *time.Ticker
	done     chan struct{}
	logger   *slog.Logger
	stopOnce sync.Once
}

// NewSessionReaper creates a reaper with the default logger. A non-positive
// timeout falls back to DefaultSessionTimeout.
func NewSessionReaper(sc *ServerContext, timeout time.Duration) *SessionReaper {
	return NewSessionReaperWithLogger(sc, timeout, slog.Default())
}

// NewSessionReaperWithLogger creates a reaper with a custom logger and
// starts its background sweep.
func NewSessionReaperWithLogger(sc *ServerContext, timeout time.Duration, logger *slog.Logger) *SessionReaper {
	if timeout <= 0 {
		timeout = DefaultSessionTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &SessionReaper{
		sc:      sc,
		timeout: timeout,
		ticker:  time.NewTicker(10 * time.Minute),
		done:    make(chan struct{}),
		logger:  logger,
	}

	go r.sweep()

	return r
}

func (r *SessionReaper) sweep() {
	for {
		select {
		case <-r.ticker.C:
			if expired := r.sc.ExpireIdleSessions(r.timeout); expired > 0 {
				r.logger.Info("Expired idle scheduling sessions", "count", expired)
			}
		case <-r.done:
			return
		}
	}
}

// Stop stops the background sweep. Safe to call more than once.
func (r *SessionReaper) Stop() {
	r.stopOnce.Do(func() {
		r.ticker.Stop()
		close(r.done)
	})
}
