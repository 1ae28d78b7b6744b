package timetable_tools

import (
	"fmt"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/schedly/schedly/internal/server"
)

// RegisterTimetableTools registers all timetable-related tools with the MCP server
func RegisterTimetableTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if err := RegisterGridTools(s, sc); err != nil {
		return fmt.Errorf("failed to register grid tools: %w", err)
	}
	if err := RegisterValidationTools(s, sc); err != nil {
		return fmt.Errorf("failed to register validation tools: %w", err)
	}
	if err := RegisterFreeBusyTools(s, sc); err != nil {
		return fmt.Errorf("failed to register free/busy tools: %w", err)
	}
	return nil
}

// getSession resolves the scheduling session for an account, with its backend
// window synced to the engine's current week.
func getSession(account string, sc *server.ServerContext) (*server.Session, error) {
	session, err := sc.SessionForAccount(account)
	if err != nil {
		return nil, err
	}
	session.SyncWindow()
	return session, nil
}

// recordRefresh reports the outcome of a refresh to the metrics recorder, if
// one is configured.
func recordRefresh(sc *server.ServerContext, result string, duration time.Duration) {
	if metrics := sc.Metrics(); metrics != nil {
		metrics.RecordRefresh(sc.Context(), result, duration)
	}
}
