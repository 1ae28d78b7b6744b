package timetable_tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/schedly/schedly/internal/instrumentation"
	"github.com/schedly/schedly/internal/server"
	"github.com/schedly/schedly/internal/timetable"
	"github.com/schedly/schedly/internal/tools/common"
)

// RegisterValidationTools registers the candidate-time validation tool with the MCP server
func RegisterValidationTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	validateTool := mcp.NewTool("timetable_validate",
		mcp.WithDescription("Check a candidate event time against the current grid: past slots and member conflicts"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple accounts."),
		),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Candidate start time (RFC3339 format, e.g., '2025-01-01T09:00:00Z')"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("Candidate end time (RFC3339 format, e.g., '2025-01-01T10:00:00Z')"),
		),
	)

	s.AddTool(validateTool, common.InstrumentedToolHandlerWithSource(
		"timetable_validate", sc.Config().Backend, instrumentation.OperationValidate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleValidate(ctx, request, sc)
		}))

	return nil
}

func handleValidate(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	startStr, ok := args["start"].(string)
	if !ok || startStr == "" {
		return mcp.NewToolResultError("start is required"), nil
	}
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid start format: %v", err)), nil
	}

	endStr, ok := args["end"].(string)
	if !ok || endStr == "" {
		return mcp.NewToolResultError("end is required"), nil
	}
	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid end format: %v", err)), nil
	}

	session, err := getSession(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	outcome := session.Engine.Validate(timetable.SelectionRange{
		Start: start.UnixMilli(),
		End:   end.UnixMilli(),
	})
	recordValidation(sc, outcome)

	if outcome == nil {
		return mcp.NewToolResultText("Selected time is valid."), nil
	}
	if outcome.Blocking {
		return mcp.NewToolResultText(fmt.Sprintf("Blocking: %s", outcome.Message)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Warning: %s", outcome.Message)), nil
}

// recordValidation maps the validation outcome onto the metrics result label.
func recordValidation(sc *server.ServerContext, outcome *timetable.ValidationOutcome) {
	metrics := sc.Metrics()
	if metrics == nil {
		return
	}

	result := instrumentation.ValidationOK
	if outcome != nil {
		switch outcome.Message {
		case timetable.MsgEndBeforeStart:
			result = instrumentation.ValidationEndBeforeStart
		case timetable.MsgAlreadyPassed:
			result = instrumentation.ValidationAlreadyPassed
		case timetable.MsgMembersBusy:
			result = instrumentation.ValidationMembersBusy
		}
	}
	metrics.RecordValidation(sc.Context(), result)
}
