package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/luctussier/Heart-Monitor/internal/models"
	"github.com/luctussier/Heart-Monitor/internal/storage"
)

// newTestServer creates an httptest server that routes requests to handler functions
// keyed by path. Verifies the HTTP client sends correct paths and query params.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

// TestQueryWorkouts verifies the limit is forwarded and rows are decoded.
func TestQueryWorkouts(t *testing.T) {
	id := uuid.New()
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/workouts": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("limit"); got != "5" {
				t.Errorf("limit=%q, want 5", got)
			}
			writeTestJSON(t, w, []models.HeartWorkoutRow{{ID: id, Label: "7:0:0", BeatCount: 20}})
		},
	})
	defer ts.Close()

	rows, err := NewHTTPClient(ts.URL+"/").QueryWorkouts(context.Background(), 1, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].ID != id || rows[0].BeatCount != 20 {
		t.Errorf("rows = %+v", rows)
	}
}

// TestGetWorkoutDetail verifies the detail response decodes with its beats.
func TestGetWorkoutDetail(t *testing.T) {
	id := uuid.New()
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/workouts/" + id.String(): func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, map[string]any{
				"workout": models.HeartWorkoutRow{ID: id, Label: "7:0:0"},
				"summary": models.HeartWorkoutRow{}.Summary(),
				"beats":   []models.BeatRow{{Seq: 0, TimeMs: 800}, {Seq: 1, TimeMs: 1600, PeriodMs: 800, Valid: true}},
			})
		},
	})
	defer ts.Close()

	detail, err := NewHTTPClient(ts.URL).GetWorkout(context.Background(), id, 1)
	if err != nil {
		t.Fatal(err)
	}
	if detail.Workout.ID != id || len(detail.Beats) != 2 {
		t.Fatalf("detail = %+v", detail)
	}
	if detail.Beats[1].WorkoutID != id || !detail.Beats[1].Valid {
		t.Errorf("beat = %+v", detail.Beats[1])
	}
}

// TestGetWorkoutNotFound verifies a 404 maps to storage.ErrNotFound.
func TestGetWorkoutNotFound(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{})
	defer ts.Close()

	_, err := NewHTTPClient(ts.URL).GetWorkout(context.Background(), uuid.New(), 1)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// TestGetZoneDistribution verifies the zones endpoint path and decoding.
func TestGetZoneDistribution(t *testing.T) {
	id := uuid.New()
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/workouts/" + id.String() + "/zones": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, storage.ZoneDistribution{WorkoutID: id, ValidBeats: 10,
				Zones: []storage.ZoneBand{{Zone: "hard", Beats: 4, Pct: 40}, {Zone: "light", Beats: 6, Pct: 60}}})
		},
	})
	defer ts.Close()

	zones, err := NewHTTPClient(ts.URL).GetZoneDistribution(context.Background(), id, 1)
	if err != nil {
		t.Fatal(err)
	}
	if zones.ValidBeats != 10 || len(zones.Zones) != 2 || zones.Zones[1].Pct != 60 {
		t.Errorf("zones = %+v", zones)
	}
}

// TestGetDataStats verifies the stats endpoint is decoded.
func TestGetDataStats(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/stats": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, storage.DataStats{TotalWorkouts: 4, ValidBeats: 1200})
		},
	})
	defer ts.Close()

	stats, err := NewHTTPClient(ts.URL).GetDataStats(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalWorkouts != 4 || stats.ValidBeats != 1200 {
		t.Errorf("stats = %+v", stats)
	}
}

// TestQueryImportLogs verifies import logs are decoded and server errors surface.
func TestQueryImportLogs(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/import-logs": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, []storage.ImportLog{{ID: 3, Source: "sd-card", Status: "success", BeatsInserted: 900}})
		},
	})
	defer ts.Close()

	logs, err := NewHTTPClient(ts.URL).QueryImportLogs(context.Background(), 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 || logs[0].BeatsInserted != 900 {
		t.Errorf("logs = %+v", logs)
	}

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer broken.Close()
	if _, err := NewHTTPClient(broken.URL).QueryImportLogs(context.Background(), 1, 0); err == nil {
		t.Error("expected error for 500 response")
	}
}
