package timetable_tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/schedly/schedly/internal/instrumentation"
	"github.com/schedly/schedly/internal/server"
	"github.com/schedly/schedly/internal/timetable"
	"github.com/schedly/schedly/internal/tools/common"
)

// RegisterGridTools registers grid refresh and week navigation tools with the MCP server
func RegisterGridTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	source := sc.Config().Backend

	refreshTool := mcp.NewTool("timetable_refresh",
		mcp.WithDescription("Rebuild the weekly availability grid from all participants' busy times"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple accounts."),
		),
	)

	s.AddTool(refreshTool, common.InstrumentedToolHandlerWithSource(
		"timetable_refresh", source, instrumentation.OperationRefresh, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleRefresh(ctx, request, sc)
		}))

	navigateTool := mcp.NewTool("timetable_navigate",
		mcp.WithDescription("Move the visible week one week forward or back and rebuild the grid"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple accounts."),
		),
		mcp.WithString("direction",
			mcp.Required(),
			mcp.Description("Direction to move the week window: 'next' or 'previous'"),
		),
	)

	s.AddTool(navigateTool, common.InstrumentedToolHandlerWithSource(
		"timetable_navigate", source, instrumentation.OperationNavigate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleNavigate(ctx, request, sc)
		}))

	return nil
}

func handleRefresh(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	session, err := getSession(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	start := time.Now()
	grid, err := session.Engine.Refresh(ctx, sc.Owner(), sc.Members())
	if err != nil {
		if errors.Is(err, timetable.ErrSuperseded) {
			recordRefresh(sc, instrumentation.RefreshSuperseded, time.Since(start))
			return mcp.NewToolResultText("Refresh superseded by a newer request; grid unchanged."), nil
		}
		recordRefresh(sc, instrumentation.RefreshError, time.Since(start))
		return mcp.NewToolResultError(fmt.Sprintf("Failed to refresh timetable: %v", err)), nil
	}
	recordRefresh(sc, instrumentation.RefreshSuccess, time.Since(start))

	return mcp.NewToolResultText(RenderGrid(grid, session.Engine.Window(), location(sc))), nil
}

func handleNavigate(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	directionStr, ok := args["direction"].(string)
	if !ok || directionStr == "" {
		return mcp.NewToolResultError("direction is required"), nil
	}
	direction, ok := timetable.ParseDirection(directionStr)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid direction %q: must be 'next' or 'previous'", directionStr)), nil
	}

	session, err := getSession(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Widen the backend window to the destination week before the engine
	// moves the cursor, so the rebuild queries fetched data.
	weekStart := session.Engine.Window().WeekStart
	switch direction {
	case timetable.DirectionNext:
		weekStart += timetable.WeekMillis
	case timetable.DirectionPrevious:
		weekStart -= timetable.WeekMillis
	}
	session.SyncWindowFor(weekStart)

	start := time.Now()
	grid, err := session.Engine.Navigate(ctx, direction, sc.Owner(), sc.Members())
	if err != nil {
		if errors.Is(err, timetable.ErrSuperseded) {
			recordRefresh(sc, instrumentation.RefreshSuperseded, time.Since(start))
			return mcp.NewToolResultText("Navigation superseded by a newer request; grid unchanged."), nil
		}
		recordRefresh(sc, instrumentation.RefreshError, time.Since(start))
		return mcp.NewToolResultError(fmt.Sprintf("Failed to navigate: %v", err)), nil
	}
	recordRefresh(sc, instrumentation.RefreshSuccess, time.Since(start))

	return mcp.NewToolResultText(RenderGrid(grid, session.Engine.Window(), location(sc))), nil
}

// location returns the configured timezone, falling back to the process-local
// one. Validation already rejected unknown zone names at startup.
func location(sc *server.ServerContext) *time.Location {
	loc, err := sc.Config().Location()
	if err != nil {
		return time.Local
	}
	return loc
}
