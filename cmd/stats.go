package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/daymark/internal/ledger"
	"github.com/Tiliavir/daymark/internal/session"
	"github.com/Tiliavir/daymark/internal/timecalc"
)

var (
	statsWeek   bool
	statsFormat string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show span, important time and ratio for a day or its week",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	addDateFlag(statsCmd)
	statsCmd.Flags().BoolVar(&statsWeek, "week", false, "Report the ISO week containing the day")
	statsCmd.Flags().StringVar(&statsFormat, "format", "md", "Output format: md, csv, json")
}

type statsRow struct {
	Date             string  `json:"date"`
	TotalEvents      int     `json:"total_events"`
	ImportantCount   int     `json:"important_count"`
	TotalSpanMinutes int     `json:"total_span_minutes"`
	ImportantMinutes int     `json:"important_minutes"`
	Ratio            float64 `json:"ratio"`
}

type statsReport struct {
	Label string     `json:"label"`
	Days  []statsRow `json:"days"`
	Total statsRow   `json:"total"`
}

func newStatsRow(date string, st ledger.Stats) statsRow {
	return statsRow{
		Date:             date,
		TotalEvents:      st.TotalEvents,
		ImportantCount:   st.ImportantCount,
		TotalSpanMinutes: st.TotalSpan,
		ImportantMinutes: st.ImportantTime,
		Ratio:            st.Ratio,
	}
}

// buildStatsReport aggregates the session's current day, or every recorded
// day of its ISO week.
func buildStatsReport(sess *session.Session, week bool) (statsReport, error) {
	date := sess.Date()
	if !week {
		st := sess.Stats()
		return statsReport{Label: date, Days: []statsRow{newStatsRow(date, st)}, Total: newStatsRow("total", st)}, nil
	}

	t, err := timecalc.ParseDate(date)
	if err != nil {
		return statsReport{}, err
	}
	report := statsReport{Label: timecalc.ISOWeekLabel(t)}
	var all []ledger.Stats
	for _, d := range timecalc.WeekDates(t) {
		day, ok := sess.DayFor(d)
		if !ok || len(day.Events) == 0 {
			continue
		}
		st := ledger.Aggregate(&day)
		all = append(all, st)
		report.Days = append(report.Days, newStatsRow(d, st))
	}
	report.Total = newStatsRow("total", ledger.Combine(all...))
	return report, nil
}

func runStats(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(_ context.Context, _ *env, sess *session.Session) error {
		report, err := buildStatsReport(sess, statsWeek)
		if err != nil {
			return err
		}
		return printStatsReport(cmd.OutOrStdout(), report, statsFormat)
	})
}

func printStatsReport(out io.Writer, report statsReport, format string) error {
	switch format {
	case "csv":
		fmt.Fprintln(out, "date,events,important,span_minutes,important_minutes,ratio")
		for _, r := range append(report.Days, report.Total) {
			fmt.Fprintf(out, "%s,%d,%d,%d,%d,%.1f\n",
				r.Date, r.TotalEvents, r.ImportantCount, r.TotalSpanMinutes, r.ImportantMinutes, r.Ratio)
		}
	case "json":
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		fmt.Fprintln(out, string(data))
	case "md", "":
		fmt.Fprintf(out, "Report %s\n", report.Label)
		fmt.Fprintln(out, "------------------------------------------------------")
		fmt.Fprintf(out, "%-12s%8s%11s%11s%11s%8s\n", "Date", "Events", "Important", "Span", "Imp. time", "Ratio")
		for _, r := range report.Days {
			printStatsLine(out, r)
		}
		fmt.Fprintln(out, "------------------------------------------------------")
		printStatsLine(out, report.Total)
	default:
		return fmt.Errorf("unknown format %q (use md, csv or json)", format)
	}
	return nil
}

func printStatsLine(out io.Writer, r statsRow) {
	fmt.Fprintf(out, "%-12s%8d%11d%11s%11s%7.1f%%\n",
		r.Date, r.TotalEvents, r.ImportantCount,
		timecalc.FormatMinutes(r.TotalSpanMinutes),
		timecalc.FormatMinutes(r.ImportantMinutes),
		r.Ratio)
}
