package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/luctussier/Heart-Monitor/internal/export"
	"github.com/spf13/cobra"
)

type exportOptions struct {
	output  string
	format  string
	session int
	date    string
}

// NewExportCommand creates the export command
func NewExportCommand() *cobra.Command {
	opts := exportOptions{}
	cmd := &cobra.Command{
		Use:   "export <log>",
		Short: "Export a session as a FIT activity or a parquet beat table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := runExport(args[0], opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: next to the log)")
	cmd.Flags().StringVar(&opts.format, "format", "fit", "export format: fit or parquet")
	cmd.Flags().IntVar(&opts.session, "session", -1, "session index (default: first usable)")
	cmd.Flags().StringVar(&opts.date, "date", "", "recording day for FIT timestamps, YYYY-MM-DD (default: today)")
	return cmd
}

func runExport(logPath string, opts exportOptions) (string, error) {
	format := strings.ToLower(opts.format)
	if format != "fit" && format != "parquet" {
		return "", fmt.Errorf("unsupported export format %q", opts.format)
	}
	day := time.Now()
	if opts.date != "" {
		d, err := time.Parse(time.DateOnly, opts.date)
		if err != nil {
			return "", fmt.Errorf("date must be YYYY-MM-DD: %w", err)
		}
		day = d
	}

	sessions, err := loadSessions(logPath)
	if err != nil {
		return "", err
	}
	w, _, err := pickSession(sessions, opts.session)
	if err != nil {
		return "", err
	}

	out := opts.output
	if out == "" {
		base := trimGz(logPath)
		out = strings.TrimSuffix(base, filepath.Ext(base)) + "." + format
	}
	f, err := os.Create(out)
	if err != nil {
		return "", err
	}
	if format == "fit" {
		err = export.WriteFIT(f, w, export.SessionStart(day, w.Begin))
	} else {
		err = export.WriteParquet(f, w)
	}
	if err != nil {
		f.Close()
		os.Remove(out)
		return "", err
	}
	return out, f.Close()
}

func trimGz(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".gz") {
		return path[:len(path)-3]
	}
	return path
}
