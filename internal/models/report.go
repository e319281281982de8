package models

import "github.com/luctussier/Heart-Monitor/internal/heartrate"

// SessionReport is the JSON view of one analysed session.
type SessionReport struct {
	Index       int               `json:"index"`
	Label       string            `json:"label"`
	Clock       string            `json:"clock"`
	ClockSet    bool              `json:"clock_set"`
	BeatCount   int               `json:"beat_count"`
	ValidBeats  int               `json:"valid_beats"`
	HasValid    bool              `json:"has_valid_beat"`
	ValidRange  *heartrate.Range  `json:"valid_range,omitempty"`
	TotalBeats  float64           `json:"total_beats"`
	DurationMs  int64             `json:"duration_ms"`
	AverageMs   float64           `json:"average_ms"`
	MinPeriodMs int               `json:"min_period_ms,omitempty"`
	MaxPeriodMs int               `json:"max_period_ms,omitempty"`
	Summary     heartrate.Summary `json:"summary"`
	Beats       []heartrate.Beat  `json:"beats,omitempty"`
}

// Report summarises a validated session. Beats are included only when
// withBeats is set.
func Report(index int, w *heartrate.Workout, withBeats bool) SessionReport {
	rep := SessionReport{
		Index:      index,
		Label:      w.Label,
		Clock:      w.Begin.String(),
		ClockSet:   w.Begin.Set,
		BeatCount:  len(w.Beats),
		HasValid:   w.HasValidBeat(),
		TotalBeats: w.TotalBeats,
		DurationMs: w.Duration(),
		AverageMs:  w.Average(),
		Summary:    w.Summary(),
	}
	for _, b := range w.Beats {
		if b.Valid {
			rep.ValidBeats++
		}
	}
	if r, ok := w.ValidRange(); ok {
		rep.ValidRange = &r
		rep.MinPeriodMs = w.MinPeriod()
		rep.MaxPeriodMs = w.MaxPeriod()
	}
	if withBeats {
		rep.Beats = w.Beats
	}
	return rep
}

// Reports summarises every session in order.
func Reports(sessions []*heartrate.Workout, withBeats bool) []SessionReport {
	out := make([]SessionReport, len(sessions))
	for i, w := range sessions {
		out[i] = Report(i, w, withBeats)
	}
	return out
}
