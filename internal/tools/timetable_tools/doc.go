// Package timetable_tools provides MCP (Model Context Protocol) tools for the
// shared availability timetable.
//
// This package exposes the timetable engine through a standardized MCP
// interface, allowing AI assistants to refresh the weekly availability grid,
// move the week window, inspect the merged busy set, and validate candidate
// event times on behalf of users.
//
// The tools support multi-account sessions: each account gets its own engine
// and week cursor, backed by the busy-time source the configuration selects.
package timetable_tools
