package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/png"
	"io"
	"path/filepath"
	"strings"
)

// Format is an image encoding for charts.
type Format string

const (
	FormatGIF Format = "gif"
	FormatPNG Format = "png"
)

// ParseFormat accepts "gif" or "png" in any case. Empty means gif.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "", "gif":
		return FormatGIF, nil
	case "png":
		return FormatPNG, nil
	}
	return "", fmt.Errorf("unsupported image format %q", s)
}

// ContentType is the MIME type of f.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/gif"
}

// chartPalette holds exactly the colours a chart uses, so GIF output is not dithered.
var chartPalette = color.Palette{Background, AverageLine, RateLine}

// Encode writes img to w in format f.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case FormatPNG:
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("encoding png: %w", err)
		}
		return nil
	case FormatGIF:
		pal := image.NewPaletted(img.Bounds(), chartPalette)
		draw.Draw(pal, pal.Rect, img, img.Bounds().Min, draw.Src)
		if err := gif.Encode(w, pal, nil); err != nil {
			return fmt.Errorf("encoding gif: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unsupported image format %q", f)
}

// ChartPath is where the chart for a log file goes: a trailing "LOG" becomes
// "gif", any other name gets ".gif" appended.
func ChartPath(logPath string) string {
	dir, name := filepath.Split(logPath)
	if strings.HasSuffix(name, "LOG") {
		return dir + strings.TrimSuffix(name, "LOG") + "gif"
	}
	return logPath + ".gif"
}
