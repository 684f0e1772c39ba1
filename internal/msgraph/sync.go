package msgraph

import (
	"fmt"
	"io"
	"time"

	"github.com/Tiliavir/daymark/internal/ledger"
	"github.com/Tiliavir/daymark/internal/model"
	"github.com/Tiliavir/daymark/internal/timecalc"
)

// SyncResult holds counters for a sync operation.
type SyncResult struct {
	Imported int
	Skipped  int
	Updated  int
	Errors   int
}

// Changed reports whether the sync added or modified events.
func (r SyncResult) Changed() bool {
	return r.Imported+r.Updated > 0
}

// SyncOptions configures a sync run.
type SyncOptions struct {
	// Date is the day (YYYY-MM-DD) events are imported into. Events that do
	// not start and end on it are ignored.
	Date string
	// Timezone is the IANA zone used to read Graph times. Empty = UTC.
	Timezone string
	// DryRun reports what would change without touching the day.
	DryRun bool
	// Out receives one progress line per event. Nil discards.
	Out io.Writer
}

// DayRange returns [start, end) of date in the given timezone.
func DayRange(date, timezone string) (time.Time, time.Time, error) {
	loc, err := loadLocation(timezone)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start, err := time.ParseInLocation(timecalc.DateLayout, date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return start, start.AddDate(0, 0, 1), nil
}

func loadLocation(tz string) (*time.Location, error) {
	if tz == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", tz, err)
	}
	return loc, nil
}

// parseGraphTime parses a Graph API dateTime string in the given location.
// Graph returns times like "2026-02-27T09:00:00.0000000" without a zone suffix
// when a Prefer: outlook.timezone header is set.
func parseGraphTime(dt string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, dt); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range []string{
		"2006-01-02T15:04:05.0000000",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.ParseInLocation(layout, dt, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse graph time %q", dt)
}

// shouldSkip returns true if the event should not be imported.
func shouldSkip(event CalendarEvent) bool {
	if event.IsCancelled || event.IsAllDay {
		return true
	}
	if event.Sensitivity == "private" {
		return true
	}
	if event.ShowAs != "busy" {
		return true
	}
	return event.Start.DateTime == "" || event.End.DateTime == ""
}

// MapEvent converts a Graph event into a ledger event. The event completes
// at its end time, so that becomes the ledger time. The returned date is the
// day the event belongs to; it is empty when the event crosses midnight.
func MapEvent(event CalendarEvent, timezone string) (model.Event, string, error) {
	loc, err := loadLocation(timezone)
	if err != nil {
		return model.Event{}, "", err
	}
	start, err := parseGraphTime(event.Start.DateTime, loc)
	if err != nil {
		return model.Event{}, "", fmt.Errorf("parsing start time: %w", err)
	}
	end, err := parseGraphTime(event.End.DateTime, loc)
	if err != nil {
		return model.Event{}, "", fmt.Errorf("parsing end time: %w", err)
	}

	date := ""
	if timecalc.SameDay(start, end) {
		date = timecalc.FormatDate(start)
	}
	return model.Event{
		ExternalID:  event.ID,
		Description: event.Subject,
		Time:        timecalc.ClockOf(end),
		Important:   event.Importance == "high",
	}, date, nil
}

// findByExternalID returns the index of the event with the given external id.
func findByExternalID(events []model.Event, externalID string) int {
	for i := range events {
		if events[i].ExternalID == externalID {
			return i
		}
	}
	return -1
}

// SyncEvents merges Graph events into day. New meetings are inserted in time
// order; meetings imported earlier are matched by external id and updated in
// place, keeping their ledger id. Events the user added by hand are never
// touched. With DryRun the day is left unchanged.
func SyncEvents(day *model.DayRecord, events []CalendarEvent, opts SyncOptions, ids *ledger.IDSource) SyncResult {
	var result SyncResult
	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	target := day
	if opts.DryRun {
		scratch := model.DayRecord{StartTime: day.StartTime, Events: append([]model.Event(nil), day.Events...)}
		target = &scratch
	}

	for _, event := range events {
		if shouldSkip(event) {
			continue
		}

		mapped, date, err := MapEvent(event, opts.Timezone)
		if err != nil {
			fmt.Fprintf(out, "  ! Error mapping event %q: %v\n", event.Subject, err)
			result.Errors++
			continue
		}
		if date != opts.Date {
			continue
		}

		if i := findByExternalID(target.Events, event.ID); i >= 0 {
			found := target.Events[i]
			if found.Description == mapped.Description && found.Time == mapped.Time && found.Important == mapped.Important {
				fmt.Fprintf(out, "  – Skipped:  %s (already exists)\n", event.Subject)
				result.Skipped++
				continue
			}
			mapped.ID = found.ID
			ledger.DeleteEvent(target, found.ID)
			ledger.InsertByTime(target, mapped)
			fmt.Fprintf(out, "  ↑ Updated:  %s (%s)\n", event.Subject, mapped.Time)
			result.Updated++
			continue
		}

		mapped.ID = ids.Next(target)
		ledger.InsertByTime(target, mapped)
		fmt.Fprintf(out, "  ✓ Imported: %s (%s)\n", event.Subject, mapped.Time)
		result.Imported++
	}
	return result
}
