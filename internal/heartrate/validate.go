package heartrate

import "math"

const (
	// SampleSize is the number of consecutive beats needed to agree on a rate.
	SampleSize = 7

	// MinHumanPeriod and MaxHumanPeriod bound a plausible period, exclusive
	// (roughly 40 to 218 bpm).
	MinHumanPeriod = 275
	MaxHumanPeriod = 1500
)

// IsHumanRate reports whether period (ms) is a plausible human heart beat.
func IsHumanRate(period int) bool {
	return MinHumanPeriod < period && period < MaxHumanPeriod
}

// ValidateSample checks that the truncated average period of the window and
// every member are human rates, and that no member deviates from the average
// by more than 20%. A member exactly at 80% or 120% passes.
func ValidateSample(window []Beat) bool {
	if len(window) == 0 {
		return false
	}
	var sum int64
	for _, b := range window {
		sum += int64(b.Period)
	}
	average := int(sum / int64(len(window)))
	if !IsHumanRate(average) {
		return false
	}
	lo, hi := float64(average)*0.8, float64(average)*1.2
	for _, b := range window {
		if !IsHumanRate(b.Period) {
			return false
		}
		if p := float64(b.Period); lo > p || p > hi {
			return false
		}
	}
	return true
}

// GapEstimate returns how many beats elapsed between two valid beats that
// bound a run of invalid ones, using the mean of their periods.
func GapEstimate(prevTime int64, prevPeriod int, nextTime int64, nextPeriod int) float64 {
	denom := prevPeriod + nextPeriod
	if denom <= 0 {
		return 0
	}
	return math.Round(2 * float64(nextTime-prevTime) / float64(denom))
}

// Validate derives periods, classifies every beat, and fills the valid range,
// beat estimate and period extremes. It reports whether any beat is valid.
// Running it again on the same beats gives the same result.
func (w *Workout) Validate() bool {
	beats := w.Beats
	n := len(beats)

	for i := range beats {
		beats[i].Valid = false
		if i == 0 {
			beats[i].Period = int(beats[i].Time)
			continue
		}
		beats[i].Period = int(beats[i].Time - beats[i-1].Time)
	}

	// The first beat has no previous one and is never classified.
	for i := 1; i < n; i++ {
		if i+1 >= SampleSize {
			beats[i].Valid = ValidateSample(beats[i+1-SampleSize : i+1])
		}
		if !beats[i].Valid && i <= n-SampleSize {
			beats[i].Valid = ValidateSample(beats[i : i+SampleSize])
		}
	}

	w.TotalBeats = 0
	w.valid, w.hasRange = Range{}, false
	w.min, w.max = 0, 0

	anyValid := false
	for i := range beats {
		if beats[i].Valid {
			anyValid = true
			break
		}
	}
	if !anyValid {
		return false
	}

	// first stays one index behind the first valid beat.
	first := -1
	for i := 0; i < n && !beats[i].Valid; i++ {
		first = i
	}
	last := first

	for i := max(first, 1); i < n; i++ {
		if beats[i].Valid {
			w.TotalBeats++
			last = i
			continue
		}
		j := i + 1
		for j < n && !beats[j].Valid {
			j++
		}
		if j == n {
			break
		}
		w.TotalBeats += GapEstimate(beats[i-1].Time, beats[i-1].Period, beats[j].Time, beats[j].Period)
		last = j
		i = j
	}

	w.valid = Range{First: first, Last: last}
	w.hasRange = true

	seeded := false
	for i := first; i <= last; i++ {
		if !beats[i].Valid {
			continue
		}
		p := beats[i].Period
		if !seeded {
			w.min, w.max = p, p
			seeded = true
			continue
		}
		w.min = min(w.min, p)
		w.max = max(w.max, p)
	}
	return true
}
