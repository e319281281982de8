package importer

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/luctussier/Heart-Monitor/internal/heartrate"
	"github.com/luctussier/Heart-Monitor/internal/ingest/beatlog"
	"github.com/luctussier/Heart-Monitor/internal/render"
)

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int
	FilesErrored   int

	SessionsInserted   int
	SessionsDuplicated int
	SessionsInvalid    int
	BeatsInserted      int64
	ChartsWritten      int
}

// Importer reads monitor logs from disk and stores their sessions.
type Importer struct {
	provider *beatlog.Provider
	log      *slog.Logger
	dryRun   bool
	charts   bool
	stats    Stats
}

// New creates a new Importer. With charts set, each log gets a GIF of its
// first usable session written next to it.
func New(provider *beatlog.Provider, log *slog.Logger, dryRun, charts bool) *Importer {
	return &Importer{provider: provider, log: log, dryRun: dryRun, charts: charts}
}

// IsLogFile reports whether name is a beat log or a gzipped one.
func IsLogFile(name string) bool {
	upper := strings.ToUpper(name)
	return strings.HasSuffix(upper, ".LOG") || strings.HasSuffix(upper, ".LOG.GZ")
}

// Import processes a single log file, or every log under a directory.
func (imp *Importer) Import(ctx context.Context, path string) (*Stats, error) {
	info, err := os.Stat(path)
	if err != nil {
		return &imp.stats, err
	}
	if !info.IsDir() {
		if err := imp.importFile(ctx, path); err != nil {
			return &imp.stats, err
		}
		return &imp.stats, nil
	}

	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsLogFile(d.Name()) {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := imp.importFile(ctx, p); err != nil {
			imp.log.Warn("import failed", "file", p, "error", err)
			imp.stats.FilesErrored++
		}
		return nil
	})
	return &imp.stats, err
}

func (imp *Importer) importFile(ctx context.Context, path string) error {
	rc, err := OpenLog(path)
	if err != nil {
		return err
	}
	sessions, err := beatlog.Parse(rc)
	rc.Close()
	if err != nil {
		return fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	if len(sessions) == 0 {
		imp.stats.FilesSkipped++
		return nil
	}
	imp.stats.FilesProcessed++

	first := firstUsable(sessions)
	var minutes int64
	if first != nil {
		minutes = first.Summary().DurationMinutes
	}
	imp.log.Info("log parsed", "file", filepath.Base(path), "workouts", len(sessions), "duration", minutes)

	if imp.dryRun {
		for _, w := range sessions {
			if !w.HasValidBeat() {
				imp.stats.SessionsInvalid++
			}
		}
	} else {
		result, err := imp.provider.Store(ctx, sessions, 1, "import")
		if err != nil {
			return err
		}
		imp.stats.SessionsInserted += result.SessionsInserted
		imp.stats.SessionsDuplicated += result.SessionsSkipped
		imp.stats.SessionsInvalid += result.SessionsInvalid
		imp.stats.BeatsInserted += result.BeatsInserted
	}

	if imp.charts && first != nil {
		out := chartPathFor(path)
		if imp.dryRun {
			imp.log.Info("dry-run: would write chart", "path", out)
			return nil
		}
		if err := writeChart(out, first); err != nil {
			return fmt.Errorf("chart %s: %w", out, err)
		}
		imp.stats.ChartsWritten++
	}
	return nil
}

func firstUsable(sessions []*heartrate.Workout) *heartrate.Workout {
	for _, w := range sessions {
		if w.HasValidBeat() {
			return w
		}
	}
	return nil
}

// chartPathFor places the chart next to the log; HEART01.LOG.gz gets HEART01.gif.
func chartPathFor(logPath string) string {
	if strings.EqualFold(filepath.Ext(logPath), ".gz") {
		logPath = logPath[:len(logPath)-3]
	}
	return render.ChartPath(logPath)
}

func writeChart(path string, w *heartrate.Workout) error {
	img, err := render.Visualize(w, render.ExportWidth, render.ExportHeight)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render.Encode(f, img, render.FormatGIF); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
