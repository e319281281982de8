package heartrate

import "time"

// MergeGap is the longest power interruption that still continues a session.
const MergeGap = 10 * time.Minute

// ShouldMerge reports whether next continues prev: same start clock, or next
// started no more than MergeGap after prev's last beat.
func ShouldMerge(prev, next *Workout) bool {
	if next.Begin.Millis == prev.Begin.Millis {
		return true
	}
	gap := next.Begin.Millis - prev.Begin.Millis - prev.LastBeatTime()
	return gap <= MergeGap.Milliseconds()
}

// Merge absorbs the later of a and b into the earlier one and returns the
// survivor. The later session's beats are shifted onto the earlier session's
// time base; when both clocks are equal (typically both unset) the later
// segment is assumed to resume counting right after the earlier one ended.
// If the earlier session has no beats the later one is returned untouched.
func Merge(a, b *Workout) *Workout {
	earliest, latest := a, b
	if latest.Begin.Millis < earliest.Begin.Millis {
		earliest, latest = b, a
	}
	if len(earliest.Beats) == 0 {
		return latest
	}

	gap := latest.Begin.Millis - earliest.Begin.Millis
	if gap == 0 {
		gap = earliest.LastBeatTime()
	}
	for _, beat := range latest.Beats {
		beat.Time += gap
		earliest.Beats = append(earliest.Beats, beat)
	}
	latest.Beats = nil
	return earliest
}
