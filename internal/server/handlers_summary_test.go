package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestParseTimeRange covers defaults, date-only ends and rejected ranges.
func TestParseTimeRange(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantStart time.Time
		wantEnd   time.Time
		wantErr   bool
	}{
		{
			name:      "dates",
			query:     "?start=2026-03-01&end=2026-03-14",
			wantStart: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "rfc3339",
			query:     "?start=2026-03-01T06:00:00Z&end=2026-03-01T08:00:00Z",
			wantStart: time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		},
		{
			name:      "default start",
			query:     "?end=2026-03-14",
			wantStart: time.Date(2026, 2, 13, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		},
		{name: "bad start", query: "?start=yesterday", wantErr: true},
		{name: "bad end", query: "?start=2026-03-01&end=soon", wantErr: true},
		{name: "inverted", query: "?start=2026-03-14&end=2026-03-01", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/summary"+tt.query, nil)
			start, end, err := parseTimeRange(req)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %v..%v", start, end)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !start.Equal(tt.wantStart) || !end.Equal(tt.wantEnd) {
				t.Errorf("range = %v..%v, want %v..%v", start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

// TestParseTimeRangeDefault verifies an empty query covers the last 30 days.
func TestParseTimeRangeDefault(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/summary", nil)
	start, end, err := parseTimeRange(req)
	if err != nil {
		t.Fatal(err)
	}
	if got := end.Sub(start); got < 29*24*time.Hour || got > 31*24*time.Hour {
		t.Errorf("default span = %v", got)
	}
}

// TestPeriodSummaryRejectsBucket verifies unknown buckets fail before the database is touched.
func TestPeriodSummaryRejectsBucket(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/summary?bucket=fortnight", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestWorkoutZonesInvalidID verifies a malformed ID is rejected.
func TestWorkoutZonesInvalidID(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/workouts/not-a-uuid/zones", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
