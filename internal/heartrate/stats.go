package heartrate

import (
	"fmt"
	"math"
)

// Average is the mean period in ms over the valid range, counting beats
// estimated across gaps. It is 0 without a valid range.
func (w *Workout) Average() float64 {
	if !w.hasRange || w.TotalBeats == 0 {
		return 0
	}
	return float64(w.Duration()) / w.TotalBeats
}

// Duration is the time in ms between the ends of the valid range, or 0.
func (w *Workout) Duration() int64 {
	if !w.hasRange {
		return 0
	}
	return w.Beats[w.valid.Last].Time - w.Beats[w.valid.First].Time
}

// ValidBeats returns the beats of the valid range, ends included. Beats in
// the slice may still be individually invalid.
func (w *Workout) ValidBeats() []Beat {
	if !w.hasRange {
		return nil
	}
	return w.Beats[w.valid.First : w.valid.Last+1]
}

// BPM converts a period in ms to beats per minute. Non-positive periods give 0.
func BPM(periodMs float64) int {
	if periodMs <= 0 {
		return 0
	}
	return int(math.Round(60000 / periodMs))
}

// Summary is what a display shows for a session.
type Summary struct {
	DurationMinutes int64 `json:"duration_minutes"`
	AverageBPM      int   `json:"average_bpm"`
	MinBPM          int   `json:"min_bpm"`
	MaxBPM          int   `json:"max_bpm"`
}

// Summary converts the session's stats to minutes and bpm. The longest
// period gives the lowest rate.
func (w *Workout) Summary() Summary {
	if !w.hasRange {
		return Summary{}
	}
	return Summary{
		DurationMinutes: w.Duration() / 60000,
		AverageBPM:      BPM(w.Average()),
		MinBPM:          BPM(float64(w.max)),
		MaxBPM:          BPM(float64(w.min)),
	}
}

func (s Summary) String() string {
	return fmt.Sprintf("time:%d  ave:%d  min:%d  max:%d", s.DurationMinutes, s.AverageBPM, s.MinBPM, s.MaxBPM)
}
