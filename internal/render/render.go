// Package render draws a session's heart rate over time as a raster chart.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/luctussier/Heart-Monitor/internal/heartrate"
)

// Chart sizes used by the display and by exported copies.
const (
	DisplayWidth  = 800
	DisplayHeight = 600
	ExportWidth   = 1440
	ExportHeight  = 1080

	// MaxSize bounds either dimension of a requested chart.
	MaxSize = 4096
)

var (
	// ErrNoValidBeat is returned when asked to draw a session without a valid range.
	ErrNoValidBeat = heartrate.ErrNoValidBeat
	// ErrBadSize is returned for dimensions outside 1..MaxSize.
	ErrBadSize = errors.New("chart size out of range")
)

var (
	Background  = color.RGBA{0, 0, 0, 255}
	AverageLine = color.RGBA{255, 175, 175, 255}
	RateLine    = color.RGBA{0, 255, 0, 255}
)

// RelativeRate places period within the session's own rate range: 0 at the
// slowest valid beat (longest period), 1 at the fastest. It is the bpm
// normalisation min*(max-period) / (period*(max-min)). It is 0 when the
// session is flat or has no valid range, and for non-positive periods.
func RelativeRate(w *heartrate.Workout, period int) float64 {
	minP, maxP := w.MinPeriod(), w.MaxPeriod()
	if !w.HasValidBeat() || maxP == minP || period <= 0 {
		return 0
	}
	return float64(minP) * float64(maxP-period) / (float64(period) * float64(maxP-minP))
}

// Visualize draws w on a width x height canvas: a black background, a pink
// line at the average rate, and a green polyline of every valid beat in the
// valid range. Time runs left to right across the valid range.
func Visualize(w *heartrate.Workout, width, height int) (*image.RGBA, error) {
	if width < 1 || height < 1 || width > MaxSize || height > MaxSize {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadSize, width, height)
	}
	if !w.HasValidBeat() {
		return nil, ErrNoValidBeat
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{Background}, image.Point{}, draw.Src)

	avgY := int(RelativeRate(w, int(math.Round(w.Average()))) * float64(height))
	drawLine(img, 0, avgY, width, avgY, AverageLine)

	beats := w.ValidBeats()
	start := beats[0].Time
	span := beats[len(beats)-1].Time - start

	// The line enters at the left edge at the first valid beat's rate.
	var prev image.Point
	for _, b := range beats {
		if b.Valid {
			prev = image.Pt(0, int(RelativeRate(w, b.Period)*float64(height)))
			break
		}
	}
	for _, b := range beats {
		if !b.Valid {
			continue
		}
		x := 0
		if span > 0 {
			x = int(math.Round(float64(b.Time-start) / float64(span) * float64(width)))
		}
		curr := image.Pt(x, int(RelativeRate(w, b.Period)*float64(height)))
		drawLine(img, prev.X, prev.Y, curr.X, curr.Y, RateLine)
		prev = curr
	}
	return img, nil
}

// drawLine plots a one pixel Bresenham line. Points off the canvas are
// clipped by SetRGBA.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		img.SetRGBA(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
