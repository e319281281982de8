package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/luctussier/Heart-Monitor/internal/config"
	"github.com/luctussier/Heart-Monitor/internal/ingest"
	"github.com/luctussier/Heart-Monitor/internal/ingest/beatlog"
	"github.com/luctussier/Heart-Monitor/internal/models"
	"github.com/luctussier/Heart-Monitor/internal/render"
)

// TestHandleMeDefault verifies the /api/v1/me endpoint returns the dev user
// identity when no Tailscale middleware is active.
func TestHandleMeDefault(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	ctx := context.WithValue(req.Context(), userInfoKey, UserInfo{Login: "local", DisplayName: "Local Dev User"})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	s.handleMe(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var info UserInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if info.Login != "local" {
		t.Errorf("login = %q, want %q", info.Login, "local")
	}
	if info.DisplayName != "Local Dev User" {
		t.Errorf("display_name = %q, want %q", info.DisplayName, "Local Dev User")
	}
}

// TestHandleMeTailscaleUser verifies the /api/v1/me endpoint returns the
// Tailscale user identity when set in context.
func TestHandleMeTailscaleUser(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	ctx := context.WithValue(req.Context(), userInfoKey, UserInfo{Login: "alice@example.com", DisplayName: "Alice"})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	s.handleMe(rec, req)

	var info UserInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if info.Login != "alice@example.com" {
		t.Errorf("login = %q, want %q", info.Login, "alice@example.com")
	}
	if info.DisplayName != "Alice" {
		t.Errorf("display_name = %q, want %q", info.DisplayName, "Alice")
	}
}

type memStore struct {
	ids map[string]bool
}

func (m *memStore) InsertWorkout(ctx context.Context, row models.HeartWorkoutRow, beats []models.BeatRow) (bool, error) {
	if m.ids[row.ID.String()] {
		return false, nil
	}
	m.ids[row.ID.String()] = true
	return true, nil
}

// steadyLog is one session of n beats 800ms apart.
func steadyLog(clock string, n int) string {
	var b strings.Builder
	b.WriteString(beatlog.Delimiter + clock + "\n")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "%d\n", i*800)
	}
	return b.String()
}

func newTestServer() *Server {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	provider := beatlog.NewProvider(&memStore{ids: map[string]bool{}}, log)
	return New(nil, provider, "test-key", config.RenderConfig{Width: 300, Height: 100, Format: "gif"}, log)
}

// TestHandleAnalyze verifies the stateless endpoint reports each session.
func TestHandleAnalyze(t *testing.T) {
	s := newTestServer()
	body := steadyLog("7:0:0", 20) + steadyLog("9:0:0", 3)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	var resp struct {
		Sessions []models.SessionReport `json:"sessions"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(resp.Sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(resp.Sessions))
	}
	first := resp.Sessions[0]
	if first.Label != "7:0:0" || !first.HasValid || first.Summary.AverageBPM != 75 {
		t.Errorf("first session = %+v", first)
	}
	if first.Beats != nil {
		t.Error("beats included without ?beats=true")
	}
	if resp.Sessions[1].HasValid {
		t.Error("three-beat session reported a valid beat")
	}
}

// TestHandleAnalyzeWithBeats verifies ?beats=true includes the classified beats.
func TestHandleAnalyzeWithBeats(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze?beats=true", strings.NewReader(steadyLog("7:0:0", 20)))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var resp struct {
		Sessions []models.SessionReport `json:"sessions"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(resp.Sessions) != 1 || len(resp.Sessions[0].Beats) != 20 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

// TestHandleAnalyzeChart verifies a posted log is rendered in the requested format.
func TestHandleAnalyzeChart(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze/chart?format=png&width=200&height=80",
		strings.NewReader(steadyLog("7:0:0", 20)))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q, want image/png", ct)
	}
	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 80 {
		t.Errorf("bounds = %v, want 200x80", b)
	}
}

// TestHandleAnalyzeChartErrors covers the failure statuses of the chart endpoint.
func TestHandleAnalyzeChartErrors(t *testing.T) {
	tests := []struct {
		name  string
		query string
		body  string
		want  int
	}{
		{"session out of range", "?session=3", steadyLog("7:0:0", 20), http.StatusNotFound},
		{"bad session", "?session=x", steadyLog("7:0:0", 20), http.StatusBadRequest},
		{"no valid beat", "", steadyLog("7:0:0", 3), http.StatusUnprocessableEntity},
		{"bad format", "?format=bmp", steadyLog("7:0:0", 20), http.StatusBadRequest},
		{"too large", "?width=5000", steadyLog("7:0:0", 20), http.StatusBadRequest},
		{"bad width", "?width=wide", steadyLog("7:0:0", 20), http.StatusBadRequest},
	}
	s := newTestServer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze/chart"+tt.query, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
		})
	}
}

// TestChartOptionsDefaults verifies configured defaults apply when the query is empty.
func TestChartOptionsDefaults(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	opts, err := chartOptionsFromRequest(req, config.RenderConfig{Width: 640, Height: 480, Format: "png"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.width != 640 || opts.height != 480 || opts.format != render.FormatPNG {
		t.Errorf("opts = %+v", opts)
	}

	opts, err = chartOptionsFromRequest(req, config.RenderConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.width != render.ExportWidth || opts.height != render.ExportHeight || opts.format != render.FormatGIF {
		t.Errorf("zero config opts = %+v", opts)
	}
}

// TestHandleBeatLogIngest verifies the API-key endpoint stores sessions once.
func TestHandleBeatLogIngest(t *testing.T) {
	s := newTestServer()
	body := steadyLog("7:0:0", 20) + steadyLog("9:0:0", 20)

	post := func() *ingest.Result {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest/beatlog?source=sd-card", strings.NewReader(body))
		req.Header.Set("X-API-Key", "test-key")
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
		}
		var result ingest.Result
		if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
			t.Fatalf("decode error: %v", err)
		}
		return &result
	}

	first := post()
	if first.SessionsReceived != 2 || first.SessionsInserted != 2 || first.BeatsInserted != 40 {
		t.Errorf("first ingest = %+v", first)
	}
	second := post()
	if second.SessionsInserted != 0 || second.SessionsSkipped != 2 {
		t.Errorf("second ingest = %+v", second)
	}
}

// TestHandleBeatLogIngestRequiresKey verifies ingest is rejected without an API key.
func TestHandleBeatLogIngestRequiresKey(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest/beatlog", strings.NewReader(steadyLog("7:0:0", 20)))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

// TestInvalidWorkoutID verifies malformed IDs are rejected before touching the database.
func TestInvalidWorkoutID(t *testing.T) {
	s := newTestServer()
	for _, path := range []string{
		"/api/v1/workouts/not-a-uuid",
		"/api/v1/workouts/not-a-uuid/chart",
		"/api/v1/workouts/not-a-uuid/export.fit",
	} {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want 400", path, rec.Code)
		}
	}
}

// TestImportLogEntry covers success and failure rows.
func TestImportLogEntry(t *testing.T) {
	ok := importLogEntry(1, "api", &ingest.Result{SessionsReceived: 3, SessionsInserted: 2, BeatsReceived: 60, BeatsInserted: 40}, nil, 12)
	if ok.Status != "success" || ok.SessionsInserted != 2 || ok.BeatsInserted != 40 || *ok.DurationMs != 12 {
		t.Errorf("success entry = %+v", ok)
	}
	if ok.ErrorMessage != nil {
		t.Error("success entry has an error message")
	}

	failed := importLogEntry(1, "api", nil, errors.New("parsing beat log: boom"), 3)
	if failed.Status != "error" || failed.ErrorMessage == nil || *failed.ErrorMessage != "parsing beat log: boom" {
		t.Errorf("error entry = %+v", failed)
	}
}
