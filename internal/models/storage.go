package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/luctussier/Heart-Monitor/internal/heartrate"
)

// workoutNamespace scopes deterministic workout IDs.
var workoutNamespace = uuid.MustParse("7d0c5a52-4c1e-4b8e-9a51-3f8f6c2b9e10")

// HeartWorkoutRow is a row of the heart_workouts table.
type HeartWorkoutRow struct {
	ID          uuid.UUID `json:"id"`
	UserID      int       `json:"user_id"`
	Source      string    `json:"source"`
	Label       string    `json:"label"`
	ClockMillis int64     `json:"clock_ms"`
	ClockSet    bool      `json:"clock_set"`
	BeatCount   int       `json:"beat_count"`
	ValidBeats  int       `json:"valid_beats"`
	TotalBeats  float64   `json:"total_beats"`
	FirstValid  *int      `json:"first_valid"`
	LastValid   *int      `json:"last_valid"`
	MinPeriod   *int      `json:"min_period_ms"`
	MaxPeriod   *int      `json:"max_period_ms"`
	DurationMs  int64     `json:"duration_ms"`
	AverageMs   float64   `json:"average_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

// BeatRow is a row of the heart_beats table.
type BeatRow struct {
	WorkoutID uuid.UUID `json:"-"`
	Seq       int       `json:"seq"`
	TimeMs    int64     `json:"time_ms"`
	PeriodMs  int       `json:"period_ms"`
	Valid     bool      `json:"valid"`
}

// WorkoutID derives a stable ID so re-importing the same log is a no-op.
func WorkoutID(userID int, w *heartrate.Workout) uuid.UUID {
	var first, last int64
	if n := len(w.Beats); n > 0 {
		first, last = w.Beats[0].Time, w.Beats[n-1].Time
	}
	key := fmt.Sprintf("%d|%s|%d|%d|%d", userID, w.Label, len(w.Beats), first, last)
	return uuid.NewSHA1(workoutNamespace, []byte(key))
}

// FromWorkout flattens a validated session into storage rows.
func FromWorkout(userID int, source string, w *heartrate.Workout) (HeartWorkoutRow, []BeatRow) {
	row := HeartWorkoutRow{
		ID:          WorkoutID(userID, w),
		UserID:      userID,
		Source:      source,
		Label:       w.Label,
		ClockMillis: w.Begin.Millis,
		ClockSet:    w.Begin.Set,
		BeatCount:   len(w.Beats),
		TotalBeats:  w.TotalBeats,
		DurationMs:  w.Duration(),
		AverageMs:   w.Average(),
	}
	if r, ok := w.ValidRange(); ok {
		first, last := r.First, r.Last
		minP, maxP := w.MinPeriod(), w.MaxPeriod()
		row.FirstValid, row.LastValid = &first, &last
		row.MinPeriod, row.MaxPeriod = &minP, &maxP
	}

	beats := make([]BeatRow, len(w.Beats))
	for i, b := range w.Beats {
		beats[i] = BeatRow{WorkoutID: row.ID, Seq: i, TimeMs: b.Time, PeriodMs: b.Period, Valid: b.Valid}
		if b.Valid {
			row.ValidBeats++
		}
	}
	return row, beats
}

// ToWorkout rebuilds a validated session from stored rows without
// re-running validation. Beats must be ordered by Seq.
func ToWorkout(row HeartWorkoutRow, beats []BeatRow) *heartrate.Workout {
	w := heartrate.NewWorkout(row.Label)
	w.Begin = heartrate.Clock{Millis: row.ClockMillis, Set: row.ClockSet}
	w.Beats = make([]heartrate.Beat, len(beats))
	for i, b := range beats {
		w.Beats[i] = heartrate.Beat{Time: b.TimeMs, Period: b.PeriodMs, Valid: b.Valid}
	}

	var r heartrate.Range
	ok := row.FirstValid != nil && row.LastValid != nil
	if ok {
		r = heartrate.Range{First: *row.FirstValid, Last: *row.LastValid}
	}
	var minP, maxP int
	if row.MinPeriod != nil {
		minP = *row.MinPeriod
	}
	if row.MaxPeriod != nil {
		maxP = *row.MaxPeriod
	}
	w.Restore(row.TotalBeats, r, ok, minP, maxP)
	return w
}

// Summary converts the stored stats to display units.
func (r HeartWorkoutRow) Summary() heartrate.Summary {
	if r.FirstValid == nil || r.MinPeriod == nil || r.MaxPeriod == nil {
		return heartrate.Summary{}
	}
	return heartrate.Summary{
		DurationMinutes: r.DurationMs / 60000,
		AverageBPM:      heartrate.BPM(r.AverageMs),
		MinBPM:          heartrate.BPM(float64(*r.MaxPeriod)),
		MaxBPM:          heartrate.BPM(float64(*r.MinPeriod)),
	}
}
