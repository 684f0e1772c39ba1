package model

// DefaultStartTime is the start time given to a day on first access.
const DefaultStartTime = "08:00"

// Event is a single logged activity. Time is the HH:MM at which the activity
// concluded, or empty when not yet set.
type Event struct {
	ID          int64  `json:"id" yaml:"id"`
	Important   bool   `json:"important" yaml:"important"`
	Description string `json:"description" yaml:"description"`
	Time        string `json:"time" yaml:"time"`
	// ExternalID links an event imported from a calendar to its source.
	ExternalID string `json:"externalId,omitempty" yaml:"externalId,omitempty"`
}

// DayRecord holds the start time and event list for one calendar date.
type DayRecord struct {
	StartTime string  `json:"startTime" yaml:"startTime"`
	Events    []Event `json:"events" yaml:"events"`
}

// NewDayRecord returns a day with the default start time and no events.
func NewDayRecord() *DayRecord {
	return &DayRecord{StartTime: DefaultStartTime, Events: []Event{}}
}

// Store maps YYYY-MM-DD dates to their day records. It is the top-level
// structure of the persisted JSON.
type Store map[string]*DayRecord

// Normalize replaces nil days and nil event slices so the store encodes as
// objects and arrays rather than nulls.
func (s Store) Normalize() {
	for date, day := range s {
		if day == nil {
			s[date] = NewDayRecord()
			continue
		}
		if day.Events == nil {
			day.Events = []Event{}
		}
	}
}

// Clone returns a deep copy of the store.
func (s Store) Clone() Store {
	out := make(Store, len(s))
	for date, day := range s {
		if day == nil {
			out[date] = nil
			continue
		}
		events := make([]Event, len(day.Events))
		copy(events, day.Events)
		out[date] = &DayRecord{StartTime: day.StartTime, Events: events}
	}
	return out
}
