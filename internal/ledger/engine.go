// Package ledger implements the validation, duration and aggregation logic
// over a single day's events, plus the operations that edit a day.
//
// Everything here is synchronous and free of hidden state; callers own the
// model.Store and decide when to persist it.
package ledger

import (
	"fmt"
	"math"

	"github.com/Tiliavir/daymark/internal/model"
	"github.com/Tiliavir/daymark/internal/timecalc"
)

// ValidateOrder reports whether every timed event is not earlier than the
// nearest preceding timed event, with the day's start time standing in before
// the first event. Events without a time are skipped and never become the
// comparison anchor. Times compare as strings, which is correct for
// zero-padded HH:MM.
func ValidateOrder(day *model.DayRecord) bool {
	prev := day.StartTime
	for _, e := range day.Events {
		if e.Time == "" {
			continue
		}
		if e.Time < prev {
			return false
		}
		prev = e.Time
	}
	return true
}

// Duration returns t2 - t1 in minutes. It is negative or zero when t2 is not
// after t1; there is no wraparound across midnight.
func Duration(t1, t2 string) (int, error) {
	a, err := timecalc.ParseClock(t1)
	if err != nil {
		return 0, fmt.Errorf("duration start: %w", err)
	}
	b, err := timecalc.ParseClock(t2)
	if err != nil {
		return 0, fmt.Errorf("duration end: %w", err)
	}
	return b - a, nil
}

// EventDuration is the interval that ends at one event.
type EventDuration struct {
	ID int64
	// Minutes since the previous timed event (or the start time).
	Minutes int
	// Timed is false when the event has no time.
	Timed bool
	// Valid is true for timed events with a positive, parseable duration.
	Valid bool
}

// Durations walks the day once and returns the interval ending at each event,
// in event order.
func Durations(day *model.DayRecord) []EventDuration {
	out := make([]EventDuration, 0, len(day.Events))
	prev := day.StartTime
	for _, e := range day.Events {
		d := EventDuration{ID: e.ID}
		if e.Time != "" {
			d.Timed = true
			if mins, err := Duration(prev, e.Time); err == nil {
				d.Minutes = mins
				d.Valid = mins > 0
			}
			prev = e.Time
		}
		out = append(out, d)
	}
	return out
}

// Stats summarises a day.
type Stats struct {
	TotalEvents    int
	ImportantCount int
	// TotalSpan is the minutes from the start time to the last timed event.
	TotalSpan int
	// ImportantTime sums the positive intervals that end at important events.
	ImportantTime int
	// Ratio is ImportantTime as a percentage of TotalSpan, rounded to one
	// decimal. It is not clamped.
	Ratio float64
}

// RatioString formats the ratio with one decimal, e.g. "50.0".
func (s Stats) RatioString() string {
	return fmt.Sprintf("%.1f", s.Ratio)
}

// ClampedRatio returns the ratio limited to [0, 100] for progress bars.
func (s Stats) ClampedRatio() float64 {
	return math.Max(0, math.Min(100, s.Ratio))
}

// Aggregate computes the day's statistics in one pass. The anchor advances to
// every timed event, even when its interval is not positive.
func Aggregate(day *model.DayRecord) Stats {
	var st Stats
	st.TotalEvents = len(day.Events)

	prev := day.StartTime
	last := ""
	for _, e := range day.Events {
		if e.Important {
			st.ImportantCount++
		}
		if e.Time == "" {
			continue
		}
		if mins, err := Duration(prev, e.Time); err == nil && mins > 0 && e.Important {
			st.ImportantTime += mins
		}
		prev = e.Time
		last = e.Time
	}

	if last != "" {
		if span, err := Duration(day.StartTime, last); err == nil && span > 0 {
			st.TotalSpan = span
		}
	}
	st.Ratio = ratio(st.ImportantTime, st.TotalSpan)
	return st
}

// Combine adds up several days and recomputes the ratio over the sums.
func Combine(stats ...Stats) Stats {
	var out Stats
	for _, s := range stats {
		out.TotalEvents += s.TotalEvents
		out.ImportantCount += s.ImportantCount
		out.TotalSpan += s.TotalSpan
		out.ImportantTime += s.ImportantTime
	}
	out.Ratio = ratio(out.ImportantTime, out.TotalSpan)
	return out
}

func ratio(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 10
}
