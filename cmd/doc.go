// Package cmd implements the command-line interface for schedly.
//
// This package provides the following commands:
//   - check: Build the weekly availability grid once and print it
//   - watch: Rebuild the grid periodically on a cron schedule
//   - auth: Run the OAuth flow for a Google Calendar account
//   - serve: Start the MCP server to provide timetable tools for AI assistants
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The check command is the default command when no subcommand is specified.
package cmd
