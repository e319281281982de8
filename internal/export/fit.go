// Package export converts validated sessions into interchange formats used by
// training tools: FIT activity files and parquet beat tables.
package export

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/luctussier/Heart-Monitor/internal/heartrate"
	"github.com/tormoder/fit"
)

// SessionStart is the instant of beat time zero: midnight UTC of day plus the
// session's boot clock. An unset clock starts at midnight.
func SessionStart(day time.Time, c heartrate.Clock) time.Time {
	y, m, d := day.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Add(time.Duration(c.Millis) * time.Millisecond)
}

// WriteFIT encodes the valid beats of w as a FIT activity. Each valid beat
// becomes one record carrying its instantaneous heart rate.
func WriteFIT(out io.Writer, w *heartrate.Workout, start time.Time) error {
	if !w.HasValidBeat() {
		return heartrate.ErrNoValidBeat
	}

	header := fit.NewHeader(fit.V20, true)
	file, err := fit.NewFile(fit.FileTypeActivity, header)
	if err != nil {
		return fmt.Errorf("creating fit file: %w", err)
	}
	activity, err := file.Activity()
	if err != nil {
		return fmt.Errorf("fit activity: %w", err)
	}

	beats := w.ValidBeats()
	at := func(ms int64) time.Time { return start.Add(time.Duration(ms) * time.Millisecond) }

	begin := fit.NewEventMsg()
	begin.Timestamp = at(beats[0].Time)
	begin.Event = fit.EventTimer
	begin.EventType = fit.EventTypeStart
	activity.Events = append(activity.Events, begin)

	for _, b := range beats {
		if !b.Valid {
			continue
		}
		record := fit.NewRecordMsg()
		record.Timestamp = at(b.Time)
		record.HeartRate = heartRateByte(b.Period)
		activity.Records = append(activity.Records, record)
	}

	end := fit.NewEventMsg()
	end.Timestamp = at(beats[len(beats)-1].Time)
	end.Event = fit.EventTimer
	end.EventType = fit.EventTypeStop
	activity.Events = append(activity.Events, end)

	if err := fit.Encode(out, file, binary.LittleEndian); err != nil {
		return fmt.Errorf("encoding fit: %w", err)
	}
	return nil
}

// heartRateByte clamps a period's bpm into the FIT heart rate field.
func heartRateByte(period int) uint8 {
	bpm := heartrate.BPM(float64(period))
	if bpm > 254 {
		bpm = 254 // 255 is the FIT invalid marker
	}
	return uint8(bpm)
}
