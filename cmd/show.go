package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/daymark/internal/ledger"
	"github.com/Tiliavir/daymark/internal/model"
	"github.com/Tiliavir/daymark/internal/session"
	"github.com/Tiliavir/daymark/internal/timecalc"
)

var showFormat string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the events and statistics of a day",
	Args:  cobra.NoArgs,
	RunE:  runShow,
}

func init() {
	addDateFlag(showCmd)
	showCmd.Flags().StringVar(&showFormat, "format", "table", "Output format: table, csv")
}

func runShow(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(_ context.Context, _ *env, sess *session.Session) error {
		day := sess.Day()
		durations := sess.Durations()
		out := cmd.OutOrStdout()

		switch showFormat {
		case "csv":
			printEventsCSV(out, day, durations)
			return nil
		case "table", "":
		default:
			return fmt.Errorf("unknown format %q (use table or csv)", showFormat)
		}

		fmt.Fprintf(out, "%s  start %s\n", sess.Date(), day.StartTime)
		if len(day.Events) == 0 {
			fmt.Fprintln(out, "No events recorded.")
		} else {
			fmt.Fprintln(out, eventTable(day, durations))
		}
		printStatsSummary(out, sess.Stats())
		if !ledger.ValidateOrder(&day) {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", ledger.ErrOutOfOrder)
		}
		return nil
	})
}

func eventTable(day model.DayRecord, durations []ledger.EventDuration) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "★", "Time", "Duration", "Description")
	for i, ev := range day.Events {
		mark := ""
		if ev.Important {
			mark = "★"
		}
		t.Row(strconv.FormatInt(ev.ID, 10), mark, displayTime(ev.Time), durationLabel(durations[i]), ev.Description)
	}
	return t.Render()
}

func displayTime(t string) string {
	if t == "" {
		return "--:--"
	}
	return t
}

func durationLabel(d ledger.EventDuration) string {
	switch {
	case !d.Timed:
		return "-"
	case !d.Valid:
		return "time error"
	}
	return fmt.Sprintf("%d min", d.Minutes)
}

func printStatsSummary(out io.Writer, st ledger.Stats) {
	fmt.Fprintf(out, "Events: %d  Important: %d\n", st.TotalEvents, st.ImportantCount)
	fmt.Fprintf(out, "Total span: %d min (about %s h)  Important time: %d min (about %s h)\n",
		st.TotalSpan, timecalc.FormatHours(st.TotalSpan),
		st.ImportantTime, timecalc.FormatHours(st.ImportantTime))
	fmt.Fprintf(out, "Ratio: %s%%\n", st.RatioString())
}

func printEventsCSV(out io.Writer, day model.DayRecord, durations []ledger.EventDuration) {
	fmt.Fprintln(out, "id,important,description,time,duration_minutes")
	for i, ev := range day.Events {
		dur := ""
		if durations[i].Timed && durations[i].Valid {
			dur = strconv.Itoa(durations[i].Minutes)
		}
		fmt.Fprintf(out, "%d,%t,%s,%s,%s\n",
			ev.ID,
			ev.Important,
			csvEscape(ev.Description),
			ev.Time,
			dur,
		)
	}
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	needsQuote := false
	for _, c := range s {
		if c == ',' || c == '"' || c == '\n' || c == '\r' {
			needsQuote = true
			break
		}
	}
	if !needsQuote {
		return s
	}
	// Escape internal double quotes by doubling them.
	escaped := ""
	for _, c := range s {
		if c == '"' {
			escaped += "\""
		}
		escaped += string(c)
	}
	return `"` + escaped + `"`
}
