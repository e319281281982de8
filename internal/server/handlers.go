package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/luctussier/Heart-Monitor/internal/export"
	"github.com/luctussier/Heart-Monitor/internal/heartrate"
	"github.com/luctussier/Heart-Monitor/internal/models"
	"github.com/luctussier/Heart-Monitor/internal/storage"
)

func (s *Server) handleBeatLogIngest(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source")
	if source == "" {
		source = r.Header.Get("X-Source")
	}
	if source == "" {
		source = "api"
	}

	start := time.Now()
	body := http.MaxBytesReader(w, r.Body, maxLogBytes)
	result, err := s.beatlog.Ingest(r.Context(), body, localUserID, source)
	durationMs := int(time.Since(start).Milliseconds())
	if err != nil {
		s.log.Error("beat log ingest error", "source", source, "error", err)
		s.logImport(localUserID, source, nil, err, durationMs)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s.logImport(localUserID, source, result, nil, durationMs)

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleQueryWorkouts(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	workouts, err := s.db.QueryWorkouts(r.Context(), userIDFromContext(r), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	detail, _, ok := s.loadWorkout(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"workout": detail.Workout,
		"summary": detail.Workout.Summary(),
		"beats":   detail.Beats,
	})
}

func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	id, ok := workoutIDParam(w, r)
	if !ok {
		return
	}
	deleted, err := s.db.DeleteWorkout(r.Context(), id, userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWorkoutChart(w http.ResponseWriter, r *http.Request) {
	_, wk, ok := s.loadWorkout(w, r)
	if !ok {
		return
	}
	opts, err := chartOptionsFromRequest(r, s.render)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeChart(w, wk, opts)
}

func (s *Server) handleExportFIT(w http.ResponseWriter, r *http.Request) {
	detail, wk, ok := s.loadWorkout(w, r)
	if !ok {
		return
	}

	day := detail.Workout.CreatedAt
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := time.Parse(time.DateOnly, d)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	var buf bytes.Buffer
	if err := export.WriteFIT(&buf, wk, export.SessionStart(day, wk.Begin)); err != nil {
		if errors.Is(err, heartrate.ErrNoValidBeat) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeAttachment(w, "application/vnd.ant.fit", detail.Workout.ID.String()+".fit", buf.Bytes())
}

func (s *Server) handleExportParquet(w http.ResponseWriter, r *http.Request) {
	detail, wk, ok := s.loadWorkout(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteParquet(&buf, wk); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeAttachment(w, "application/vnd.apache.parquet", detail.Workout.ID.String()+".parquet", buf.Bytes())
}

// loadWorkout fetches the workout named in the URL and rebuilds it for
// rendering or export. It writes the error response itself.
func (s *Server) loadWorkout(w http.ResponseWriter, r *http.Request) (*storage.WorkoutDetail, *heartrate.Workout, bool) {
	id, ok := workoutIDParam(w, r)
	if !ok {
		return nil, nil, false
	}
	detail, err := s.db.GetWorkout(r.Context(), id, userIDFromContext(r))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		} else {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return nil, nil, false
	}
	return detail, models.ToWorkout(detail.Workout, detail.Beats), true
}

func workoutIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return uuid.Nil, false
	}
	return id, true
}

func writeAttachment(w http.ResponseWriter, contentType, name string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
