package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/luctussier/Heart-Monitor/internal/config"
	"github.com/luctussier/Heart-Monitor/internal/heartrate"
	"github.com/luctussier/Heart-Monitor/internal/ingest/beatlog"
	"github.com/luctussier/Heart-Monitor/internal/models"
	"github.com/luctussier/Heart-Monitor/internal/render"
)

type chartOptions struct {
	width, height int
	format        render.Format
}

// handleAnalyze parses a posted beat log and returns per-session statistics
// without storing anything. ?beats=true includes the classified beats.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	sessions, err := beatlog.Parse(http.MaxBytesReader(w, r.Body, maxLogBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	withBeats, _ := strconv.ParseBool(r.URL.Query().Get("beats"))
	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": models.Reports(sessions, withBeats),
	})
}

// handleAnalyzeChart renders one session of a posted beat log, chosen with
// ?session=N (default 0).
func (s *Server) handleAnalyzeChart(w http.ResponseWriter, r *http.Request) {
	opts, err := chartOptionsFromRequest(r, s.render)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	index := 0
	if v := r.URL.Query().Get("session"); v != "" {
		index, err = strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session must be an integer"})
			return
		}
	}

	sessions, err := beatlog.Parse(http.MaxBytesReader(w, r.Body, maxLogBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if index < 0 || index >= len(sessions) {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": fmt.Sprintf("session %d not found, log has %d", index, len(sessions)),
		})
		return
	}
	writeChart(w, sessions[index], opts)
}

// chartOptionsFromRequest reads width, height and format, falling back to
// the configured defaults.
func chartOptionsFromRequest(r *http.Request, def config.RenderConfig) (chartOptions, error) {
	q := r.URL.Query()
	opts := chartOptions{width: def.Width, height: def.Height}

	format := q.Get("format")
	if format == "" {
		format = def.Format
	}
	f, err := render.ParseFormat(format)
	if err != nil {
		return opts, err
	}
	opts.format = f

	for _, p := range []struct {
		key string
		dst *int
	}{{"width", &opts.width}, {"height", &opts.height}} {
		v := q.Get(p.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("%s must be an integer", p.key)
		}
		*p.dst = n
	}
	if opts.width == 0 {
		opts.width = render.ExportWidth
	}
	if opts.height == 0 {
		opts.height = render.ExportHeight
	}
	return opts, nil
}

func writeChart(w http.ResponseWriter, wk *heartrate.Workout, opts chartOptions) {
	img, err := render.Visualize(wk, opts.width, opts.height)
	switch {
	case errors.Is(err, render.ErrNoValidBeat):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	case errors.Is(err, render.ErrBadSize):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	var buf bytes.Buffer
	if err := render.Encode(&buf, img, opts.format); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", opts.format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes()) //nolint:errcheck
}
