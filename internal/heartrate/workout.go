// Package heartrate holds the beat-validation, session-merging and statistics
// engine for heart monitor logs.
package heartrate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNoValidBeat is returned by consumers that need a valid beat range.
var ErrNoValidBeat = errors.New("workout has no valid beat")

// Beat is one pulse recorded by the monitor.
type Beat struct {
	Time   int64 `json:"time_ms"` // milliseconds since device boot
	Period int   `json:"period_ms"`
	Valid  bool  `json:"valid"`
}

// Clock is the wall-clock time of day written at the top of a log segment.
// An unset clock compares as midnight.
type Clock struct {
	Millis int64 `json:"millis"`
	Set    bool  `json:"set"`
}

// UnsetLabel is what the device writes when its clock was never set.
const UnsetLabel = "0:0:0"

// ParseClock reads "H:m:s" or "H:m:s.fff". Anything else, including the
// literal UnsetLabel, yields the unset clock.
func ParseClock(s string) Clock {
	s = strings.TrimSpace(s)
	if s == UnsetLabel {
		return Clock{}
	}
	hms, frac, hasFrac := strings.Cut(s, ".")
	parts := strings.Split(hms, ":")
	if len(parts) != 3 {
		return Clock{}
	}
	limits := [3]int{23, 59, 59}
	var v [3]int64
	for i, p := range parts {
		n, ok := clockField(p, limits[i])
		if !ok {
			return Clock{}
		}
		v[i] = n
	}
	var ms int64
	if hasFrac {
		n, ok := clockField(frac, 999)
		if !ok {
			return Clock{}
		}
		ms = n
	}
	return Clock{
		Millis: ((v[0]*60+v[1])*60+v[2])*1000 + ms,
		Set:    true,
	}
}

func clockField(s string, limit int) (int64, bool) {
	if s == "" || strings.ContainsAny(s, "+-") {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > limit {
		return 0, false
	}
	return int64(n), true
}

// String renders the clock the way the device writes it.
func (c Clock) String() string {
	if !c.Set {
		return UnsetLabel
	}
	ms := c.Millis
	return fmt.Sprintf("%d:%d:%d.%03d", ms/3600000, ms/60000%60, ms/1000%60, ms%1000)
}

// Range is an inclusive span of beat indices.
type Range struct {
	First int `json:"first"`
	Last  int `json:"last"`
}

// Workout is one monitoring session, possibly stitched from several device
// boots. Derived fields are filled by Validate.
type Workout struct {
	Label string
	Begin Clock
	Beats []Beat

	// TotalBeats counts valid beats plus beats estimated across invalid gaps.
	TotalBeats float64

	valid    Range
	hasRange bool
	min, max int
}

// NewWorkout returns an empty session whose clock is parsed from label.
func NewWorkout(label string) *Workout {
	return &Workout{Label: label, Begin: ParseClock(label)}
}

// AddBeat appends a raw beat time.
func (w *Workout) AddBeat(t int64) {
	w.Beats = append(w.Beats, Beat{Time: t})
}

// LastBeatTime is the time of the final beat, or 0 for an empty session.
func (w *Workout) LastBeatTime() int64 {
	if len(w.Beats) == 0 {
		return 0
	}
	return w.Beats[len(w.Beats)-1].Time
}

// ValidRange reports the span found by Validate. The first index may point
// one beat before the first valid beat.
func (w *Workout) ValidRange() (Range, bool) {
	return w.valid, w.hasRange
}

// HasValidBeat reports whether Validate found a valid range.
func (w *Workout) HasValidBeat() bool {
	return w.hasRange
}

// MinPeriod is the shortest valid period in the valid range, 0 when undefined.
func (w *Workout) MinPeriod() int {
	return w.min
}

// MaxPeriod is the longest valid period in the valid range, 0 when undefined.
func (w *Workout) MaxPeriod() int {
	return w.max
}

// Restore sets the derived fields from previously stored values. Beats must
// already carry their periods and validity.
func (w *Workout) Restore(total float64, r Range, ok bool, minPeriod, maxPeriod int) {
	if r.First < 0 || r.Last >= len(w.Beats) || r.First > r.Last {
		ok = false
	}
	w.TotalBeats = total
	w.valid, w.hasRange = r, ok
	if !ok {
		w.valid = Range{}
		minPeriod, maxPeriod = 0, 0
	}
	w.min, w.max = minPeriod, maxPeriod
}
