package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/luctussier/Heart-Monitor/internal/heartrate"
	"github.com/luctussier/Heart-Monitor/internal/ingest/beatlog"
	"github.com/luctussier/Heart-Monitor/internal/models"
	"github.com/luctussier/Heart-Monitor/internal/storage"
	"github.com/mark3labs/mcp-go/mcp"
)

// workoutListing is a stored session with its derived bpm summary.
type workoutListing struct {
	models.HeartWorkoutRow
	Summary heartrate.Summary `json:"summary"`
}

func listings(rows []models.HeartWorkoutRow) []workoutListing {
	out := make([]workoutListing, len(rows))
	for i, r := range rows {
		out[i] = workoutListing{HeartWorkoutRow: r, Summary: r.Summary()}
	}
	return out
}

// --- Tool definitions ---

var toolListHeartWorkouts = mcp.NewTool("list_heart_workouts",
	mcp.WithDescription("List stored heart monitor sessions, newest first. Each entry has the boot clock label, beat counts, valid range and a summary with duration in minutes and average/min/max bpm."),
	mcp.WithNumber("limit", mcp.Description("Maximum sessions to return. Defaults to 20.")),
)

var toolGetHeartWorkout = mcp.NewTool("get_heart_workout",
	mcp.WithDescription("Get one stored session by ID with its summary. Optionally include every beat with its time, period and validity."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Session UUID from list_heart_workouts")),
	mcp.WithBoolean("include_beats", mcp.Description("Include the beat sequence. Defaults to false.")),
)

var toolAnalyzeBeatLog = mcp.NewTool("analyze_beat_log",
	mcp.WithDescription("Analyse raw heart monitor log text without storing it. Sessions are split on '----' lines, sessions started within 10 minutes of the previous one's last beat are merged, and each session is validated. Returns per-session statistics."),
	mcp.WithString("log", mcp.Required(), mcp.Description("Full log text: '----H:m:s' header lines followed by one beat time in ms per line")),
	mcp.WithBoolean("include_beats", mcp.Description("Include classified beats for every session. Defaults to false.")),
)

var toolGetHeartZones = mcp.NewTool("get_heart_zones",
	mcp.WithDescription("Heart rate zone breakdown of one stored session: how many valid beats fell in each band (rest <=80, light 81-100, moderate 101-120, hard 121-150, max >150 bpm) and their share."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Session UUID from list_heart_workouts")),
)

var toolGetHeartStats = mcp.NewTool("get_heart_stats",
	mcp.WithDescription("Aggregate totals over all stored sessions: counts, usable sessions, beats, valid beats and recorded time per ingest source."),
)

var toolGetImportLogs = mcp.NewTool("get_import_logs",
	mcp.WithDescription("Recent beat log imports with status, session and beat counts, and any error message."),
	mcp.WithNumber("limit", mcp.Description("Maximum entries to return. Defaults to 20.")),
)

// --- Tool handlers ---

func (h *handlers) listHeartWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 20)
	uid := UserIDFromContext(ctx)

	rows, err := h.ds.QueryWorkouts(ctx, uid, limit)
	if err != nil {
		h.log.Error("mcp list_heart_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(listings(rows))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getHeartWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idStr, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("invalid session id: " + err.Error()), nil
	}

	detail, err := h.ds.GetWorkout(ctx, id, UserIDFromContext(ctx))
	if errors.Is(err, storage.ErrNotFound) {
		return mcp.NewToolResultError("session not found"), nil
	}
	if err != nil {
		h.log.Error("mcp get_heart_workout", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	out := map[string]any{
		"workout": detail.Workout,
		"summary": detail.Workout.Summary(),
	}
	if req.GetBool("include_beats", false) {
		out["beats"] = detail.Beats
	}

	result, err := mcp.NewToolResultJSON(out)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) analyzeBeatLog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("log")
	if err != nil {
		return mcp.NewToolResultError("log parameter is required"), nil
	}

	sessions, err := beatlog.Parse(strings.NewReader(text))
	if err != nil {
		return mcp.NewToolResultError("parse failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"sessions": models.Reports(sessions, req.GetBool("include_beats", false)),
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getHeartZones(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idStr, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("invalid session id: " + err.Error()), nil
	}

	zones, err := h.ds.GetZoneDistribution(ctx, id, UserIDFromContext(ctx))
	if errors.Is(err, storage.ErrNotFound) {
		return mcp.NewToolResultError("session not found"), nil
	}
	if err != nil {
		h.log.Error("mcp get_heart_zones", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(zones)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getHeartStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.ds.GetDataStats(ctx, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp get_heart_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(stats)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getImportLogs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 20)

	logs, err := h.ds.QueryImportLogs(ctx, UserIDFromContext(ctx), limit)
	if err != nil {
		h.log.Error("mcp get_import_logs", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(logs)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
