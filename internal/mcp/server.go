package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("heartmon", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("heartmon heart-beat log server. List stored heart monitor sessions, inspect one with its beats, or analyse raw beat log text without storing it. All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListHeartWorkouts, Handler: h.listHeartWorkouts},
		server.ServerTool{Tool: toolGetHeartWorkout, Handler: h.getHeartWorkout},
		server.ServerTool{Tool: toolAnalyzeBeatLog, Handler: h.analyzeBeatLog},
		server.ServerTool{Tool: toolGetHeartZones, Handler: h.getHeartZones},
		server.ServerTool{Tool: toolGetHeartStats, Handler: h.getHeartStats},
		server.ServerTool{Tool: toolGetImportLogs, Handler: h.getImportLogs},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resGlossary, Handler: h.glossary},
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

var resGlossary = mcp.NewResource(
	"heartmon://glossary",
	"Glossary",
	mcp.WithResourceDescription("How beat periods, validity, the valid range and bpm figures are defined"),
	mcp.WithMIMEType("text/markdown"),
)

var resRecentWorkouts = mcp.NewResource(
	"heartmon://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("The 20 most recently stored sessions with their summaries"),
	mcp.WithMIMEType("application/json"),
)
