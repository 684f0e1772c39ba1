package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/Tiliavir/daymark/internal/ledger"
	"github.com/Tiliavir/daymark/internal/model"
	"github.com/Tiliavir/daymark/internal/session"
	"github.com/Tiliavir/daymark/internal/timecalc"
)

const barWidth = 20

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	dateStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	valueStyle = lipgloss.NewStyle().Bold(true)
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	toastStyles = map[session.NoticeKind]lipgloss.Style{
		session.NoticeSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("82")),
		session.NoticeWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		session.NoticeError:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
)

func newTable() table.Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "★", Width: 2},
			{Title: "Description", Width: 40},
			{Title: "Time", Width: 6},
			{Title: "Duration", Width: 12},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true).
		Foreground(lipgloss.Color("86"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}

func rows(day model.DayRecord, durations []ledger.EventDuration) []table.Row {
	out := make([]table.Row, 0, len(day.Events))
	for i, ev := range day.Events {
		mark := ""
		if ev.Important {
			mark = "★"
		}
		t := ev.Time
		if t == "" {
			t = "--:--"
		}
		out = append(out, table.Row{mark, ev.Description, t, durationText(durations[i])})
	}
	return out
}

func durationText(d ledger.EventDuration) string {
	switch {
	case !d.Timed:
		return "-"
	case !d.Valid:
		return "time error"
	}
	return fmt.Sprintf("%d min", d.Minutes)
}

// View renders the header, table, stats panel and footer.
func (m Model) View() string {
	day := m.sess.Day()
	var b strings.Builder

	b.WriteString(titleStyle.Render("daymark"))
	b.WriteString("  ")
	b.WriteString(dateStyle.Render(m.sess.Date()))
	b.WriteString(labelStyle.Render("  start "))
	b.WriteString(valueStyle.Render(day.StartTime))
	b.WriteString("\n\n")

	b.WriteString(m.table.View())
	b.WriteString("\n\n")
	b.WriteString(panelStyle.Render(statsPanel(m.sess.Stats())))
	b.WriteString("\n")

	if m.toast != "" {
		b.WriteString(toastStyles[m.toastKind].Render(m.toast))
	}
	b.WriteString("\n")

	if m.mode != modeBrowse {
		b.WriteString(m.input.View())
		b.WriteString("\n")
		b.WriteString(help("enter", "save", "esc", "cancel"))
	} else {
		b.WriteString(help(
			"a", "add", "e", "edit", "t", "time", "s", "start",
			"space", "important", "d", "delete",
			"h/l", "day", "g", "today", "x", "export", "i", "import", "q", "quit",
		))
	}
	return b.String()
}

func statsPanel(st ledger.Stats) string {
	line := func(label, value string) string {
		return labelStyle.Render(fmt.Sprintf("%-15s", label)) + valueStyle.Render(value)
	}
	return strings.Join([]string{
		line("Events", fmt.Sprintf("%d", st.TotalEvents)),
		line("Important", fmt.Sprintf("%d", st.ImportantCount)),
		line("Total span", fmt.Sprintf("%d min (about %s h)", st.TotalSpan, timecalc.FormatHours(st.TotalSpan))),
		line("Important time", fmt.Sprintf("%d min (about %s h)", st.ImportantTime, timecalc.FormatHours(st.ImportantTime))),
		line("Ratio", st.RatioString()+"% "+bar(st.ClampedRatio())),
	}, "\n")
}

func bar(percent float64) string {
	filled := int(math.Round(percent / 100 * barWidth))
	return barStyle.Render(strings.Repeat("█", filled)) +
		labelStyle.Render(strings.Repeat("░", barWidth-filled))
}

func help(pairs ...string) string {
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, keyStyle.Render(pairs[i])+" "+labelStyle.Render(pairs[i+1]))
	}
	return strings.Join(parts, "  ")
}
