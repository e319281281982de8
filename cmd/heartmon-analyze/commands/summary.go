package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/luctussier/Heart-Monitor/internal/models"
	"github.com/spf13/cobra"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))
	cellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))
)

var summaryColumns = []string{"#", "clock", "beats", "valid", "time", "ave", "min", "max"}

// NewSummaryCommand creates the summary command
func NewSummaryCommand() *cobra.Command {
	var withBeats bool
	cmd := &cobra.Command{
		Use:   "summary <log>",
		Short: "Print a table of the sessions in a log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := loadSessions(args[0])
			if err != nil {
				return err
			}
			reports := models.Reports(sessions, withBeats)
			fmt.Fprintln(cmd.OutOrStdout(), titleStyle.Render(args[0]))
			writeSummary(cmd.OutOrStdout(), reports)
			if withBeats {
				writeBeats(cmd.OutOrStdout(), reports)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&withBeats, "beats", false, "also list every beat of each session")
	return cmd
}

// summaryRows turns reports into table cells. Sessions without a valid range
// show dashes in place of stats.
func summaryRows(reports []models.SessionReport) [][]string {
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		clock := r.Clock
		if !r.ClockSet {
			clock = "unset"
		}
		row := []string{
			strconv.Itoa(r.Index),
			clock,
			strconv.Itoa(r.BeatCount),
			strconv.Itoa(r.ValidBeats),
		}
		if r.HasValid {
			s := r.Summary
			row = append(row,
				strconv.FormatInt(s.DurationMinutes, 10)+"m",
				strconv.Itoa(s.AverageBPM),
				strconv.Itoa(s.MinBPM),
				strconv.Itoa(s.MaxBPM),
			)
		} else {
			row = append(row, "-", "-", "-", "-")
		}
		rows = append(rows, row)
	}
	return rows
}

func writeSummary(out io.Writer, reports []models.SessionReport) {
	if len(reports) == 0 {
		fmt.Fprintln(out, dimStyle.Render("no sessions found"))
		return
	}
	rows := summaryRows(reports)

	widths := make([]int, len(summaryColumns))
	for i, c := range summaryColumns {
		widths[i] = len(c)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}

	line := func(cells []string, style lipgloss.Style) string {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = style.Width(widths[i]).Align(lipgloss.Right).Render(cell)
		}
		return strings.Join(parts, "  ")
	}

	fmt.Fprintln(out, line(summaryColumns, headerStyle))
	for i, row := range rows {
		style := cellStyle
		if !reports[i].HasValid {
			style = dimStyle
		}
		fmt.Fprintln(out, line(row, style))
	}
}

func writeBeats(out io.Writer, reports []models.SessionReport) {
	for _, r := range reports {
		fmt.Fprintln(out)
		fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("session %d", r.Index)))
		for i, b := range r.Beats {
			style := cellStyle
			if !b.Valid {
				style = dimStyle
			}
			fmt.Fprintln(out, style.Render(fmt.Sprintf("%6d %10d %6d", i, b.Time, b.Period)))
		}
	}
}
