package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/luctussier/Heart-Monitor/internal/heartrate"
	"github.com/luctussier/Heart-Monitor/internal/models"
	"github.com/luctussier/Heart-Monitor/internal/storage"
	"github.com/mark3labs/mcp-go/mcp"
)

// fakeSource serves one stored session built from a steady 800ms log.
type fakeSource struct {
	row   models.HeartWorkoutRow
	beats []models.BeatRow
	uid   int
}

func newFakeSource() *fakeSource {
	w := heartrate.NewWorkout("7:0:0")
	for i := 1; i <= 20; i++ {
		w.AddBeat(int64(i) * 800)
	}
	w.Validate()
	row, beats := models.FromWorkout(1, "test", w)
	return &fakeSource{row: row, beats: beats}
}

func (f *fakeSource) QueryWorkouts(ctx context.Context, userID, limit int) ([]models.HeartWorkoutRow, error) {
	f.uid = userID
	return []models.HeartWorkoutRow{f.row}, nil
}

func (f *fakeSource) GetWorkout(ctx context.Context, id uuid.UUID, userID int) (*storage.WorkoutDetail, error) {
	f.uid = userID
	if id != f.row.ID {
		return nil, storage.ErrNotFound
	}
	return &storage.WorkoutDetail{Workout: f.row, Beats: f.beats}, nil
}

func (f *fakeSource) GetZoneDistribution(ctx context.Context, id uuid.UUID, userID int) (*storage.ZoneDistribution, error) {
	if id != f.row.ID {
		return nil, storage.ErrNotFound
	}
	return &storage.ZoneDistribution{
		WorkoutID:  id,
		ValidBeats: 19,
		Zones:      []storage.ZoneBand{{Zone: "rest", BPMRange: "<=80", Beats: 19, Pct: 100}},
	}, nil
}

func (f *fakeSource) GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error) {
	return &storage.DataStats{TotalWorkouts: 1, UsableWorkouts: 1, TotalBeats: 20}, nil
}

func (f *fakeSource) QueryImportLogs(ctx context.Context, userID, limit int) ([]storage.ImportLog, error) {
	return []storage.ImportLog{{ID: 1, Source: "test", Status: "success", SessionsInserted: 1}}, nil
}

func newTestHandlers() (*handlers, *fakeSource) {
	ds := newFakeSource()
	return &handlers{ds: ds, log: slog.New(slog.NewTextHandler(io.Discard, nil))}, ds
}

func callTool(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want TextContent", res.Content[0])
	}
	return text.Text
}

// TestUserIDFromContextDefault verifies the default user ID (1) when no value
// is set in the context.
func TestUserIDFromContextDefault(t *testing.T) {
	ctx := context.Background()
	if id := UserIDFromContext(ctx); id != 1 {
		t.Errorf("UserIDFromContext(empty) = %d, want 1", id)
	}
}

// TestUserIDFromContextSet verifies the user ID is extracted from context
// after being set by WithUserID.
func TestUserIDFromContextSet(t *testing.T) {
	ctx := WithUserID(context.Background(), 42)
	if id := UserIDFromContext(ctx); id != 42 {
		t.Errorf("UserIDFromContext = %d, want 42", id)
	}
}

// TestNewRegistersTools verifies the server builds with a data source.
func TestNewRegistersTools(t *testing.T) {
	ds := newFakeSource()
	if s := New(ds, "test", slog.Default()); s == nil {
		t.Fatal("New returned nil")
	}
}

// TestListHeartWorkouts verifies listings carry the bpm summary and the caller's user ID.
func TestListHeartWorkouts(t *testing.T) {
	h, ds := newTestHandlers()
	res, err := h.listHeartWorkouts(WithUserID(context.Background(), 5), callTool("list_heart_workouts", nil))
	if err != nil || res.IsError {
		t.Fatalf("unexpected failure: %v %v", err, res)
	}
	if ds.uid != 5 {
		t.Errorf("queried user = %d, want 5", ds.uid)
	}

	var got []struct {
		Label   string            `json:"label"`
		Summary heartrate.Summary `json:"summary"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].Label != "7:0:0" || got[0].Summary.AverageBPM != 75 {
		t.Errorf("listing = %+v", got)
	}
}

// TestGetHeartWorkout covers beats inclusion, unknown IDs and malformed IDs.
func TestGetHeartWorkout(t *testing.T) {
	h, ds := newTestHandlers()
	ctx := context.Background()

	res, err := h.getHeartWorkout(ctx, callTool("get_heart_workout", map[string]any{
		"id": ds.row.ID.String(), "include_beats": true,
	}))
	if err != nil || res.IsError {
		t.Fatalf("unexpected failure: %v %v", err, res)
	}
	var detail struct {
		Beats []models.BeatRow `json:"beats"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &detail); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(detail.Beats) != 20 {
		t.Errorf("beats = %d, want 20", len(detail.Beats))
	}

	res, _ = h.getHeartWorkout(ctx, callTool("get_heart_workout", map[string]any{"id": ds.row.ID.String()}))
	if strings.Contains(resultText(t, res), `"beats"`) {
		t.Error("beats included without include_beats")
	}

	for _, id := range []string{uuid.NewString(), "nope"} {
		res, err := h.getHeartWorkout(ctx, callTool("get_heart_workout", map[string]any{"id": id}))
		if err != nil || !res.IsError {
			t.Errorf("id %q: want tool error, got %v %v", id, err, res)
		}
	}
}

// TestGetHeartZones covers a known session and an unknown one.
func TestGetHeartZones(t *testing.T) {
	h, ds := newTestHandlers()
	ctx := context.Background()

	res, err := h.getHeartZones(ctx, callTool("get_heart_zones", map[string]any{"id": ds.row.ID.String()}))
	if err != nil || res.IsError {
		t.Fatalf("unexpected failure: %v %v", err, res)
	}
	var zones storage.ZoneDistribution
	if err := json.Unmarshal([]byte(resultText(t, res)), &zones); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if zones.ValidBeats != 19 || len(zones.Zones) != 1 || zones.Zones[0].Zone != "rest" {
		t.Errorf("zones = %+v", zones)
	}

	res, err = h.getHeartZones(ctx, callTool("get_heart_zones", map[string]any{"id": uuid.NewString()}))
	if err != nil || !res.IsError {
		t.Errorf("unknown id: want tool error, got %v %v", err, res)
	}
}

// TestAnalyzeBeatLog verifies raw log text is analysed without the data source.
func TestAnalyzeBeatLog(t *testing.T) {
	h := &handlers{log: slog.Default()}
	var b strings.Builder
	b.WriteString("----7:0:0\n")
	for i := 1; i <= 20; i++ {
		b.WriteString(strconv.Itoa(i*800) + "\n")
	}

	res, err := h.analyzeBeatLog(context.Background(), callTool("analyze_beat_log", map[string]any{"log": b.String()}))
	if err != nil || res.IsError {
		t.Fatalf("unexpected failure: %v %v", err, res)
	}
	var out struct {
		Sessions []models.SessionReport `json:"sessions"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Sessions) != 1 || out.Sessions[0].Summary.AverageBPM != 75 || out.Sessions[0].ValidBeats != 19 {
		t.Errorf("sessions = %+v", out.Sessions)
	}

	res, _ = h.analyzeBeatLog(context.Background(), callTool("analyze_beat_log", nil))
	if !res.IsError {
		t.Error("missing log should be a tool error")
	}
}

// TestGlossary verifies the glossary resource is served as markdown.
func TestGlossary(t *testing.T) {
	h, _ := newTestHandlers()
	var req mcp.ReadResourceRequest
	req.Params.URI = "heartmon://glossary"
	contents, err := h.glossary(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text, ok := contents[0].(mcp.TextResourceContents)
	if !ok || text.MIMEType != "text/markdown" || !strings.Contains(text.Text, "Valid range") {
		t.Errorf("glossary = %+v", contents[0])
	}
}
