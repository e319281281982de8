package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/luctussier/Heart-Monitor/internal/storage"
)

func (s *Server) handleWorkoutZones(w http.ResponseWriter, r *http.Request) {
	id, ok := workoutIDParam(w, r)
	if !ok {
		return
	}
	zones, err := s.db.GetZoneDistribution(r.Context(), id, userIDFromContext(r))
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, zones)
}

func (s *Server) handlePeriodSummary(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid time range: " + err.Error()})
		return
	}
	bucket := r.URL.Query().Get("bucket")
	switch bucket {
	case "":
		bucket = "day"
	case "day", "week", "month":
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bucket must be day, week or month"})
		return
	}

	summary, err := s.db.GetPeriodSummary(r.Context(), start, end, bucket, userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if summary == nil {
		summary = []storage.PeriodSummary{}
	}
	writeJSON(w, http.StatusOK, summary)
}

// parseTimeRange reads start/end as RFC 3339 or YYYY-MM-DD. A date-only end
// covers that whole day. Without start the range is the last 30 days.
func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	end = time.Now()
	if endStr != "" {
		end, err = parseTimeOrDate(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if _, dateErr := time.Parse(time.DateOnly, endStr); dateErr == nil {
			end = end.Add(24 * time.Hour)
		}
	}

	if startStr == "" {
		return end.AddDate(0, 0, -30), end, nil
	}
	start, err = parseTimeOrDate(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, errors.New("start must be before end")
	}
	return start, end, nil
}

func parseTimeOrDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}
