package commands

import (
	"fmt"
	"os"

	"github.com/luctussier/Heart-Monitor/internal/render"
	"github.com/spf13/cobra"
)

type renderOptions struct {
	output  string
	session int
	width   int
	height  int
	format  string
}

// NewRenderCommand creates the render command
func NewRenderCommand() *cobra.Command {
	opts := renderOptions{}
	cmd := &cobra.Command{
		Use:   "render <log>",
		Short: "Draw a session's heart rate as an image",
		Long: `Draw a session's heart rate as a GIF or PNG chart. Without -o the chart
is written next to the log, HEART01.LOG becoming HEART01.gif.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := runRender(args[0], opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: next to the log)")
	cmd.Flags().IntVar(&opts.session, "session", -1, "session index (default: first usable)")
	cmd.Flags().IntVar(&opts.width, "width", render.ExportWidth, "image width in pixels")
	cmd.Flags().IntVar(&opts.height, "height", render.ExportHeight, "image height in pixels")
	cmd.Flags().StringVar(&opts.format, "format", "gif", "image format: gif or png")
	return cmd
}

func runRender(logPath string, opts renderOptions) (string, error) {
	format, err := render.ParseFormat(opts.format)
	if err != nil {
		return "", err
	}
	sessions, err := loadSessions(logPath)
	if err != nil {
		return "", err
	}
	w, idx, err := pickSession(sessions, opts.session)
	if err != nil {
		return "", err
	}
	img, err := render.Visualize(w, opts.width, opts.height)
	if err != nil {
		return "", fmt.Errorf("session %s: %w", sessionName(w, idx), err)
	}

	out := opts.output
	if out == "" {
		out = render.ChartPath(trimGz(logPath))
		if format == render.FormatPNG {
			out = out[:len(out)-len("gif")] + "png"
		}
	}
	f, err := os.Create(out)
	if err != nil {
		return "", err
	}
	if err := render.Encode(f, img, format); err != nil {
		f.Close()
		return "", err
	}
	return out, f.Close()
}
