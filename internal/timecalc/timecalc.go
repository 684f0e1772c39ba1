package timecalc

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// DateLayout is the layout of the date keys in the store.
const DateLayout = "2006-01-02"

// ErrInvalidClock is returned when a string is not a zero-padded HH:MM time.
var ErrInvalidClock = errors.New("invalid clock time")

// ParseClock parses a zero-padded 24-hour "HH:MM" string into minutes since
// midnight.
func ParseClock(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	h, okH := twoDigits(s[0], s[1])
	m, okM := twoDigits(s[3], s[4])
	if !okH || !okM || h > 23 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return h*60 + m, nil
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}

// ValidClock reports whether s is empty or a valid HH:MM time.
func ValidClock(s string) bool {
	if s == "" {
		return true
	}
	_, err := ParseClock(s)
	return err == nil
}

// ClockOf formats the wall clock of t as HH:MM.
func ClockOf(t time.Time) string {
	return t.Format("15:04")
}

// FormatMinutes formats minutes as "1h 40m", "45m" or "0m". Negative values
// keep their sign.
func FormatMinutes(minutes int) string {
	sign := ""
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	h := minutes / 60
	m := minutes % 60
	if h > 0 {
		return fmt.Sprintf("%s%dh %dm", sign, h, m)
	}
	return fmt.Sprintf("%s%dm", sign, m)
}

// FormatHours formats minutes as hours with one decimal, e.g. "1.5".
func FormatHours(minutes int) string {
	return fmt.Sprintf("%.1f", math.Round(float64(minutes)/6)/10)
}

// FormatDate returns the store key for t.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD store key in the local time zone.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// ShiftDate moves a YYYY-MM-DD key by the given number of days.
func ShiftDate(date string, days int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return FormatDate(t.AddDate(0, 0, days)), nil
}

// WeekRange returns the Monday and Sunday of the ISO week containing t.
func WeekRange(t time.Time) (time.Time, time.Time) {
	// Go's weekday: Sunday=0, Monday=1, …, Saturday=6
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7 // treat Sunday as 7 (ISO)
	}
	monday := t.AddDate(0, 0, -(wd - 1))
	monday = time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, t.Location())
	sunday := monday.AddDate(0, 0, 6)
	sunday = time.Date(sunday.Year(), sunday.Month(), sunday.Day(), 23, 59, 59, 0, t.Location())
	return monday, sunday
}

// WeekDates returns the seven YYYY-MM-DD keys of the ISO week containing t.
func WeekDates(t time.Time) []string {
	monday, _ := WeekRange(t)
	dates := make([]string, 7)
	for i := range dates {
		dates[i] = FormatDate(monday.AddDate(0, 0, i))
	}
	return dates
}

// ISOWeekLabel returns a label like "2026-W09".
func ISOWeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
