package upload

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/luctussier/Heart-Monitor/internal/ingest/beatlog"
)

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesUploaded int
	FilesSkipped  int
	FilesErrored  int

	SessionsSent     int
	SessionsInserted int
	SessionsInvalid  int
	BeatsSent        int64
}

// Uploader walks a directory of monitor logs and POSTs each new one to the
// heartmon server.
type Uploader struct {
	client *Client
	state  *StateDB
	root   string
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates a new Uploader. client may be nil in dry-run mode.
func New(client *Client, state *StateDB, root string, dryRun bool, log *slog.Logger) *Uploader {
	return &Uploader{
		client: client,
		state:  state,
		root:   root,
		dryRun: dryRun,
		log:    log,
	}
}

// IsBeatLog reports whether name looks like a monitor log file (*.LOG, any case).
func IsBeatLog(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".log")
}

// FindLogs returns the beat logs under root in lexical order. root may also
// name a single file.
func FindLogs(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsBeatLog(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// Run executes the upload pipeline. A file that fails is counted and
// skipped; only a failure to list the directory aborts the run.
func (u *Uploader) Run(ctx context.Context) (*Stats, error) {
	files, err := FindLogs(u.root)
	if err != nil {
		return &u.stats, fmt.Errorf("listing %s: %w", u.root, err)
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return &u.stats, err
		}
		u.stats.FilesTotal++
		if err := u.processFile(ctx, f); err != nil {
			u.log.Warn("upload failed", "file", f, "error", err)
			u.stats.FilesErrored++
		}
	}

	return &u.stats, nil
}

func (u *Uploader) processFile(ctx context.Context, path string) error {
	relPath, err := filepath.Rel(u.root, path)
	if err != nil || relPath == "." {
		relPath = filepath.Base(path)
	}

	hash, err := HashFile(path)
	if err != nil {
		return fmt.Errorf("hashing: %w", err)
	}
	uploaded, err := u.state.IsUploaded(hash)
	if err != nil {
		return fmt.Errorf("checking state: %w", err)
	}
	if uploaded {
		u.stats.FilesSkipped++
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading: %w", err)
	}

	if u.dryRun {
		sessions, err := beatlog.Parse(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("parsing: %w", err)
		}
		var beats int64
		for _, w := range sessions {
			beats += int64(len(w.Beats))
			if !w.HasValidBeat() {
				u.stats.SessionsInvalid++
			}
		}
		u.log.Info("dry-run: would send", "file", relPath, "sessions", len(sessions), "beats", beats)
		u.stats.SessionsSent += len(sessions)
		u.stats.BeatsSent += beats
		return nil
	}

	result, err := u.client.SendBeatLog(ctx, data, "upload")
	if err != nil {
		return err
	}
	u.stats.SessionsSent += result.SessionsReceived
	u.stats.SessionsInserted += result.SessionsInserted
	u.stats.SessionsInvalid += result.SessionsInvalid
	u.stats.BeatsSent += result.BeatsReceived

	if err := u.state.MarkUploaded(relPath, int64(len(data)), hash, result.SessionsReceived); err != nil {
		u.log.Warn("failed to mark uploaded", "file", relPath, "error", err)
	}
	u.stats.FilesUploaded++
	u.log.Info("uploaded log",
		"file", relPath,
		"sessions", result.SessionsReceived,
		"inserted", result.SessionsInserted,
	)
	return nil
}
