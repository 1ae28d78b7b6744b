package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/schedly/schedly/internal/config"
	"github.com/schedly/schedly/internal/gcal"
	"github.com/schedly/schedly/internal/google"
	"github.com/schedly/schedly/internal/ics"
	"github.com/schedly/schedly/internal/instrumentation"
	"github.com/schedly/schedly/internal/timetable"
)

// BusyStore is the windowed busy-time backend behind a session: the two
// collector-facing stores plus the query window that follows the week cursor.
type BusyStore interface {
	timetable.EventStore
	timetable.ProfileStore
	SetWindow(start, end time.Time)
}

// Session bundles the per-account scheduling state: the engine holding the
// week cursor, grid and busy set, and the backend store feeding it.
type Session struct {
	Account string
	Engine  *timetable.Engine
	Store   BusyStore
}

// SyncWindow aligns the backend query window with the engine's current week,
// padded a week back and two weeks forward so navigation lands on fetched
// data.
func (s *Session) SyncWindow() {
	s.SyncWindowFor(s.Engine.Window().WeekStart)
}

// SyncWindowFor aligns the backend query window around the given week start
// (milliseconds since epoch).
func (s *Session) SyncWindowFor(weekStart int64) {
	start := time.UnixMilli(weekStart)
	s.Store.SetWindow(start.Add(-7*24*time.Hour), start.Add(14*24*time.Hour))
}

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx         context.Context
	cancel      context.CancelFunc
	cfg         *config.Config
	gcalClients map[string]*gcal.Client // Maps account name to Calendar client
	sessions    map[string]*Session     // Maps account name to scheduling session
	lastAccess  map[string]time.Time    // Maps account name to last session use
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	mu          sync.RWMutex
	shutdown    bool
}

// NewServerContext creates a new server context
func NewServerContext(ctx context.Context, cfg *config.Config) (*ServerContext, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	shutdownCtx, cancel := context.WithCancel(ctx)

	// Initialize client map
	gcalClients := make(map[string]*gcal.Client)

	// Try to create the configured account's Calendar client, but don't fail
	// if the token is missing. Clients will be lazily initialized when first
	// needed.
	if cfg.Backend == config.BackendGoogle && gcal.HasTokenForAccount(cfg.Account) {
		client, err := gcal.NewClientForAccount(shutdownCtx, cfg.Account)
		if err != nil {
			// Log but don't fail - will be re-attempted on first use
			fmt.Printf("Warning: failed to create Calendar client for account %s: %v\n", cfg.Account, err)
		} else {
			gcalClients[cfg.Account] = client
		}
	}

	return &ServerContext{
		ctx:         shutdownCtx,
		cancel:      cancel,
		cfg:         cfg,
		gcalClients: gcalClients,
		sessions:    make(map[string]*Session),
		lastAccess:  make(map[string]time.Time),
		shutdown:    false,
	}, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Config returns the active configuration.
func (sc *ServerContext) Config() *config.Config {
	return sc.cfg
}

// CalendarClientForAccount returns the Calendar client for a specific account
// Creates and caches the client if it doesn't exist yet
// Returns nil if the account has no token
func (sc *ServerContext) CalendarClientForAccount(account string) *gcal.Client {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.calendarClientLocked(account)
}

// CalendarClient returns the Calendar client for the configured account
func (sc *ServerContext) CalendarClient() *gcal.Client {
	return sc.CalendarClientForAccount(sc.cfg.Account)
}

// SetCalendarClientForAccount sets the Calendar client for a specific account
func (sc *ServerContext) SetCalendarClientForAccount(account string, client *gcal.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.gcalClients[account] = client
}

func (sc *ServerContext) calendarClientLocked(account string) *gcal.Client {
	// Check if client already exists
	if client, ok := sc.gcalClients[account]; ok {
		return client
	}

	// Try to create client if token exists
	if !gcal.HasTokenForAccount(account) {
		return nil
	}

	client, err := gcal.NewClientForAccount(sc.ctx, account)
	if err != nil {
		if sc.metrics != nil {
			sc.metrics.RecordOAuthAuth(sc.ctx, instrumentation.OAuthResultFailure)
		}
		fmt.Printf("Warning: failed to create Calendar client for account %s: %v\n", account, err)
		return nil
	}

	if sc.metrics != nil {
		sc.metrics.RecordOAuthAuth(sc.ctx, instrumentation.OAuthResultSuccess)
	}
	sc.gcalClients[account] = client
	return client
}

// SessionForAccount returns the scheduling session for a specific account,
// creating it on first use. The session's engine is anchored at the start of
// the current day in the configured timezone.
func (sc *ServerContext) SessionForAccount(account string) (*Session, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if session, ok := sc.sessions[account]; ok {
		sc.lastAccess[account] = time.Now()
		return session, nil
	}

	store, err := sc.buildStoreLocked(account)
	if err != nil {
		return nil, err
	}

	loc, err := sc.cfg.Location()
	if err != nil {
		return nil, err
	}

	var collectorOpts []timetable.CollectorOption
	if timeout, err := sc.cfg.SourceTimeoutDuration(); err == nil && timeout > 0 {
		collectorOpts = append(collectorOpts, timetable.WithSourceTimeout(timeout))
	}

	collector := timetable.NewCollector(store, store, collectorOpts...)
	engine := timetable.NewEngine(collector, timetable.WeekStartAt(time.Now().In(loc)))

	session := &Session{
		Account: account,
		Engine:  engine,
		Store:   store,
	}
	session.SyncWindow()
	sc.sessions[account] = session
	sc.lastAccess[account] = time.Now()
	if sc.metrics != nil {
		sc.metrics.IncrementActiveSessions(sc.ctx)
	}
	return session, nil
}

// ExpireIdleSessions removes sessions that have not been used for longer
// than idle and returns how many were dropped. Expired engines are rebuilt
// on the account's next tool call.
func (sc *ServerContext) ExpireIdleSessions(idle time.Duration) int {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	now := time.Now()
	expired := 0
	for account, last := range sc.lastAccess {
		if now.Sub(last) > idle {
			delete(sc.sessions, account)
			delete(sc.lastAccess, account)
			expired++
		}
	}
	if sc.metrics != nil {
		for i := 0; i < expired; i++ {
			sc.metrics.DecrementActiveSessions(sc.ctx)
		}
	}
	return expired
}

// Session returns the scheduling session for the configured account.
func (sc *ServerContext) Session() (*Session, error) {
	return sc.SessionForAccount(sc.cfg.Account)
}

// RemoveSessionForAccount drops the cached session for an account, forcing a
// rebuild on next use. Used after re-authentication.
func (sc *ServerContext) RemoveSessionForAccount(account string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if _, ok := sc.sessions[account]; ok && sc.metrics != nil {
		sc.metrics.DecrementActiveSessions(sc.ctx)
	}
	delete(sc.sessions, account)
	delete(sc.lastAccess, account)
}

func (sc *ServerContext) buildStoreLocked(account string) (BusyStore, error) {
	switch sc.cfg.Backend {
	case config.BackendGoogle:
		client := sc.calendarClientLocked(account)
		if client == nil {
			return nil, fmt.Errorf("%s", google.GetAuthenticationErrorMessage(account))
		}
		return gcal.NewStore(client, timetable.ParticipantID(sc.cfg.Owner)), nil

	case config.BackendICS:
		feeds := make(map[timetable.ParticipantID]string, len(sc.cfg.Feeds))
		for _, feed := range sc.cfg.Feeds {
			feeds[timetable.ParticipantID(feed.Participant)] = feed.URL
		}
		return ics.NewStore(ics.NewFetcher(sc.cfg.CacheDir), feeds), nil

	case config.BackendMemory:
		return newMemoryBusyStore(), nil

	default:
		return nil, fmt.Errorf("unknown backend %q", sc.cfg.Backend)
	}
}

// memoryBusyStore adds the window setter the in-memory store doesn't need,
// so the memory backend satisfies BusyStore.
type memoryBusyStore struct {
	*timetable.MemStore
}

func newMemoryBusyStore() *memoryBusyStore {
	return &memoryBusyStore{MemStore: timetable.NewMemStore()}
}

func (m *memoryBusyStore) SetWindow(_, _ time.Time) {}

// ActiveSessions returns how many scheduling sessions are currently cached.
func (sc *ServerContext) ActiveSessions() int {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return len(sc.sessions)
}

// Owner returns the configured owner participant.
func (sc *ServerContext) Owner() timetable.ParticipantID {
	return timetable.ParticipantID(sc.cfg.Owner)
}

// Members returns the configured member participants.
func (sc *ServerContext) Members() []timetable.ParticipantID {
	members := make([]timetable.ParticipantID, 0, len(sc.cfg.Members))
	for _, m := range sc.cfg.Members {
		members = append(members, timetable.ParticipantID(m))
	}
	return members
}

// SetInstrumentation wires the metrics recorder and audit logger into the
// server context so tool handlers can record invocations.
func (sc *ServerContext) SetInstrumentation(metrics *instrumentation.Metrics, auditLogger *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = metrics
	sc.auditLogger = auditLogger
}

// Metrics returns the metrics recorder, or nil if instrumentation is not
// configured.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// AuditLogger returns the audit logger, or nil if not configured.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
