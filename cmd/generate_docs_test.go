package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCategoryFromToolName(t *testing.T) {
	tests := []struct {
		name     string
		toolName string
		expected string
	}{
		{
			name:     "timetable tool",
			toolName: "timetable_refresh",
			expected: "Timetable Tools",
		},
		{
			name:     "timetable validate",
			toolName: "timetable_validate",
			expected: "Timetable Tools",
		},
		{
			name:     "unknown prefix",
			toolName: "mystery_tool",
			expected: "Other",
		},
		{
			name:     "no underscore",
			toolName: "refresh",
			expected: "Other",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, getCategoryFromToolName(tt.toolName))
		})
	}
}

func TestGenerateToolMarkdown(t *testing.T) {
	tool := mcp.NewTool("timetable_navigate",
		mcp.WithDescription("Move the week window and rebuild the grid."),
		mcp.WithString("direction",
			mcp.Required(),
			mcp.Description("Either \"next\" or \"previous\"."),
		),
		mcp.WithString("account",
			mcp.Description("Account name to use."),
		),
	)

	md := generateToolMarkdown(tool)

	assert.Contains(t, md, "### timetable_navigate")
	assert.Contains(t, md, "Move the week window and rebuild the grid.")
	assert.Contains(t, md, "- `direction` (required):")
	assert.Contains(t, md, "- `account` (optional):")
}

func TestGenerateToolsMarkdown_TableOfContents(t *testing.T) {
	tools := []mcp.Tool{
		mcp.NewTool("timetable_refresh", mcp.WithDescription("Rebuild the grid.")),
		mcp.NewTool("timetable_freebusy", mcp.WithDescription("List busy intervals.")),
	}

	md := generateToolsMarkdown(tools)

	assert.Contains(t, md, "# MCP Tools Reference")
	assert.Contains(t, md, "- [Timetable Tools](#timetable-tools)")
	// Tools are sorted within their category.
	freebusyIdx := strings.Index(md, "### timetable_freebusy")
	refreshIdx := strings.Index(md, "### timetable_refresh")
	require.NotEqual(t, -1, freebusyIdx)
	require.NotEqual(t, -1, refreshIdx)
	assert.Less(t, freebusyIdx, refreshIdx)
}

func TestRunGenerateDocs(t *testing.T) {
	out := filepath.Join(t.TempDir(), "tools.md")

	err := runGenerateDocs(out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	md := string(data)
	assert.Contains(t, md, "### timetable_refresh")
	assert.Contains(t, md, "### timetable_navigate")
	assert.Contains(t, md, "### timetable_validate")
	assert.Contains(t, md, "### timetable_freebusy")
}

func TestContains(t *testing.T) {
	assert.True(t, contains([]string{"a", "b"}, "b"))
	assert.False(t, contains([]string{"a", "b"}, "c"))
	assert.False(t, contains(nil, "a"))
}
