package ledger

import (
	"sync"
	"time"

	"github.com/Tiliavir/daymark/internal/model"
)

// IDSource hands out event ids. Ids are Unix millisecond timestamps, bumped
// so every id is greater than the previous one and than any id already in the
// day. Two events created in the same millisecond therefore never collide.
type IDSource struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

// NewIDSource returns an IDSource reading the given clock. A nil clock means
// time.Now.
func NewIDSource(now func() time.Time) *IDSource {
	if now == nil {
		now = time.Now
	}
	return &IDSource{now: now}
}

// Next returns a fresh id for an event that will be added to day.
func (s *IDSource) Next(day *model.DayRecord) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.now().UnixMilli()
	if id <= s.last {
		id = s.last + 1
	}
	if day != nil {
		for _, e := range day.Events {
			if e.ID >= id {
				id = e.ID + 1
			}
		}
	}
	s.last = id
	return id
}
