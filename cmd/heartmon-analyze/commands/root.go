package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/luctussier/Heart-Monitor/internal/heartrate"
	"github.com/luctussier/Heart-Monitor/internal/importer"
	"github.com/luctussier/Heart-Monitor/internal/ingest/beatlog"
	"github.com/spf13/cobra"
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "heartmon-analyze",
		Short: "Analyse heart monitor beat logs offline",
		Long: `heartmon-analyze reads beat logs straight from the monitor's SD card
(plain or gzipped) and summarises, draws or exports their sessions without a server.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(NewSummaryCommand())
	rootCmd.AddCommand(NewRenderCommand())
	rootCmd.AddCommand(NewExportCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadSessions parses every session in the log at path.
func loadSessions(path string) ([]*heartrate.Workout, error) {
	rc, err := importer.OpenLog(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	sessions, err := beatlog.Parse(rc)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return sessions, nil
}

// pickSession returns the session at index, or the first usable one when
// index is negative.
func pickSession(sessions []*heartrate.Workout, index int) (*heartrate.Workout, int, error) {
	if index >= 0 {
		if index >= len(sessions) {
			return nil, 0, fmt.Errorf("session %d out of range (log has %d)", index, len(sessions))
		}
		return sessions[index], index, nil
	}
	for i, w := range sessions {
		if w.HasValidBeat() {
			return w, i, nil
		}
	}
	return nil, 0, heartrate.ErrNoValidBeat
}

func sessionName(w *heartrate.Workout, index int) string {
	if w.Label != "" {
		return w.Label
	}
	return "#" + strconv.Itoa(index)
}
