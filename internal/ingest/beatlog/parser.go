// Package beatlog reads the plain-text beat logs written by the heart monitor.
//
// A log holds one segment per device boot. Each segment starts with the
// segment delimiter directly followed by the wall-clock time of the boot, then
// one beat per line as milliseconds since boot:
//
//	----10:42:7.250
//	812
//	1620
//	2431
package beatlog

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/luctussier/Heart-Monitor/internal/heartrate"
)

// Delimiter is written by the device on every boot.
const Delimiter = "----"

// Parse reads a whole log and returns its validated sessions.
func Parse(r io.Reader) ([]*heartrate.Workout, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading log: %w", err)
	}
	return ParseLog(string(data)), nil
}

// ParseLog splits text into boot segments, stitches segments separated by
// short power interruptions, and validates each resulting session once.
func ParseLog(text string) []*heartrate.Workout {
	sessions := Fold(Segments(text))
	for _, w := range sessions {
		w.Validate()
	}
	return sessions
}

// Segments decodes every non-empty boot segment of text, in log order.
func Segments(text string) []*heartrate.Workout {
	var segments []*heartrate.Workout
	for _, seg := range strings.Split(text, Delimiter) {
		if seg == "" {
			continue
		}
		segments = append(segments, ParseSegment(seg))
	}
	return segments
}

// ParseSegment decodes one boot segment. The first line is the boot clock. A
// beat line that is not a non-negative integer ends the segment: it and every
// later line are dropped.
func ParseSegment(seg string) *heartrate.Workout {
	scanner := bufio.NewScanner(strings.NewReader(seg))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(scanDeviceLines)

	label := ""
	if scanner.Scan() {
		label = scanner.Text()
	}
	w := heartrate.NewWorkout(label)

	for scanner.Scan() {
		t, err := strconv.ParseInt(scanner.Text(), 10, 64)
		if err != nil || t < 0 {
			break
		}
		w.AddBeat(t)
	}
	return w
}

// Fold runs the single left-to-right merge pass: each segment either
// continues the running session or starts a new one.
func Fold(segments []*heartrate.Workout) []*heartrate.Workout {
	var sessions []*heartrate.Workout
	for _, w := range segments {
		n := len(sessions)
		if n == 0 || !heartrate.ShouldMerge(sessions[n-1], w) {
			sessions = append(sessions, w)
			continue
		}
		sessions[n-1] = heartrate.Merge(sessions[n-1], w)
	}
	return sessions
}

// scanDeviceLines is bufio.ScanLines extended to accept a lone '\r' as a
// line terminator.
func scanDeviceLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		// '\r' at the end of the buffer: wait to see if '\n' follows.
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
