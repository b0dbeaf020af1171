// Package mcp serves progress data to MCP clients.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("LiftLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("LiftLog strength training server. Query personal records, progress statistics, progression suggestions and logged workouts. Weights are in kilograms."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGetPersonalRecords, Handler: h.getPersonalRecords},
		server.ServerTool{Tool: toolGetProgressStats, Handler: h.getProgressStats},
		server.ServerTool{Tool: toolSuggestProgression, Handler: h.suggestProgression},
		server.ServerTool{Tool: toolGetPendingRecords, Handler: h.getPendingRecords},
		server.ServerTool{Tool: toolGetWorkouts, Handler: h.getWorkouts},
	)

	s.AddResources(
		server.ServerResource{Resource: resProgressSummary, Handler: h.progressSummary},
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resProgressSummary = mcp.NewResource(
	"liftlog://progress_summary",
	"Progress Summary",
	mcp.WithResourceDescription("Progress statistics for the recent window, cached progression suggestions and unacknowledged personal records"),
	mcp.WithMIMEType("application/json"),
)

var resRecentWorkouts = mcp.NewResource(
	"liftlog://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("Workouts from the last 14 days"),
	mcp.WithMIMEType("application/json"),
)
