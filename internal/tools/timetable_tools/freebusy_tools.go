package timetable_tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/schedly/schedly/internal/instrumentation"
	"github.com/schedly/schedly/internal/server"
	"github.com/schedly/schedly/internal/timetable"
	"github.com/schedly/schedly/internal/tools/common"
)

// RegisterFreeBusyTools registers the raw busy-set query tool with the MCP server
func RegisterFreeBusyTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	freeBusyTool := mcp.NewTool("timetable_freebusy",
		mcp.WithDescription("List the merged busy intervals behind the current grid, across all participants"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple accounts."),
		),
	)

	s.AddTool(freeBusyTool, common.InstrumentedToolHandlerWithSource(
		"timetable_freebusy", sc.Config().Backend, instrumentation.OperationFreeBusy, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFreeBusy(ctx, request, sc)
		}))

	return nil
}

func handleFreeBusy(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	session, err := getSession(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	busy := session.Engine.BusySet()
	if len(busy) == 0 {
		return mcp.NewToolResultText("No busy intervals; run timetable_refresh to rebuild the grid."), nil
	}

	return mcp.NewToolResultText(RenderBusySet(busy, location(sc))), nil
}

func RenderBusySet(busy timetable.BusySet, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d busy interval(s):\n\n", len(busy))
	for _, iv := range busy {
		start := time.UnixMilli(iv.Start).In(loc)
		end := time.UnixMilli(iv.End).In(loc)
		fmt.Fprintf(&b, "%s - %s\n", start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return b.String()
}
