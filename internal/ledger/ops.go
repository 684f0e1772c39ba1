package ledger

import (
	"fmt"
	"strconv"

	"github.com/Tiliavir/daymark/internal/model"
	"github.com/Tiliavir/daymark/internal/timecalc"
)

// Field names an editable event field.
type Field string

const (
	FieldDescription Field = "description"
	FieldTime        Field = "time"
	FieldImportant   Field = "important"
)

// ParseField maps a field name to a Field.
func ParseField(s string) (Field, error) {
	switch f := Field(s); f {
	case FieldDescription, FieldTime, FieldImportant:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// EnsureDay returns the day for date, creating a default one on first access.
func EnsureDay(store model.Store, date string) *model.DayRecord {
	day, ok := store[date]
	if ok && day != nil {
		return day
	}
	day = model.NewDayRecord()
	store[date] = day
	return day
}

// AddEvent appends an empty, unimportant event with a fresh id and returns it.
func AddEvent(day *model.DayRecord, ids *IDSource) model.Event {
	ev := model.Event{ID: ids.Next(day)}
	day.Events = append(day.Events, ev)
	return ev
}

// InsertByTime places ev before the first timed event that is later than
// ev.Time, or at the end. Untimed events are appended.
func InsertByTime(day *model.DayRecord, ev model.Event) model.Event {
	pos := len(day.Events)
	if ev.Time != "" {
		for i, e := range day.Events {
			if e.Time != "" && e.Time > ev.Time {
				pos = i
				break
			}
		}
	}
	day.Events = append(day.Events, model.Event{})
	copy(day.Events[pos+1:], day.Events[pos:])
	day.Events[pos] = ev
	return ev
}

func indexOf(day *model.DayRecord, id int64) int {
	for i := range day.Events {
		if day.Events[i].ID == id {
			return i
		}
	}
	return -1
}

// Find returns the event with the given id.
func Find(day *model.DayRecord, id int64) (model.Event, bool) {
	if i := indexOf(day, id); i >= 0 {
		return day.Events[i], true
	}
	return model.Event{}, false
}

// DeleteEvent removes the first event with the given id and closes the gap.
// It reports whether anything was removed.
func DeleteEvent(day *model.DayRecord, id int64) bool {
	i := indexOf(day, id)
	if i < 0 {
		return false
	}
	day.Events = append(day.Events[:i], day.Events[i+1:]...)
	return true
}

// ToggleImportant flips the important flag. It reports whether the event
// exists.
func ToggleImportant(day *model.DayRecord, id int64) bool {
	i := indexOf(day, id)
	if i < 0 {
		return false
	}
	day.Events[i].Important = !day.Events[i].Important
	return true
}

// UpdateEventField sets one field of an event in place. A missing id is a
// no-op and reports false. A time must be empty or HH:MM, but its order
// relative to other events is not checked here; callers run ValidateOrder
// after a time edit.
func UpdateEventField(day *model.DayRecord, id int64, field Field, value string) (bool, error) {
	i := indexOf(day, id)
	if i < 0 {
		return false, nil
	}
	ev := &day.Events[i]
	switch field {
	case FieldDescription:
		ev.Description = value
	case FieldTime:
		if !timecalc.ValidClock(value) {
			return false, fmt.Errorf("event %d: %w: %q", id, timecalc.ErrInvalidClock, value)
		}
		ev.Time = value
	case FieldImportant:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("event %d: important must be true or false: %w", id, err)
		}
		ev.Important = b
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return true, nil
}

// SetStartTime changes the day's start time.
func SetStartTime(day *model.DayRecord, value string) error {
	if _, err := timecalc.ParseClock(value); err != nil {
		return fmt.Errorf("start time: %w", err)
	}
	day.StartTime = value
	return nil
}
