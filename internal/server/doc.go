// Package server provides the MCP server context, scheduling sessions,
// session management, and operational HTTP endpoints for schedly.
//
// # Key Components
//
// ServerContext manages calendar backends with lazy initialization and
// caching. It builds one scheduling Session per account: a timetable engine
// anchored at the current week, fed by the backend the configuration selects
// (Google Calendar, ICS feeds, or an in-memory store).
//
// SessionReaper expires scheduling sessions that sit idle for too long, so a
// long-running server does not accumulate engines for accounts that stopped
// calling tools.
//
// MetricsServer exposes Prometheus metrics on a dedicated port, and
// HealthChecker provides liveness and readiness endpoints for Kubernetes
// probes.
package server
