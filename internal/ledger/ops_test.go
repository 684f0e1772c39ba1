package ledger_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/daymark/internal/ledger"
	"github.com/Tiliavir/daymark/internal/model"
	"github.com/Tiliavir/daymark/internal/timecalc"
)

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func TestEnsureDayIsIdempotent(t *testing.T) {
	store := model.Store{}
	d := ledger.EnsureDay(store, "2026-02-27")
	require.NotNil(t, d)
	assert.Equal(t, "08:00", d.StartTime)
	assert.NotNil(t, d.Events)
	assert.Empty(t, d.Events)

	d.StartTime = "07:30"
	again := ledger.EnsureDay(store, "2026-02-27")
	assert.Same(t, d, again)
	assert.Equal(t, "07:30", again.StartTime)
	assert.Len(t, store, 1)
}

func TestAddEvent(t *testing.T) {
	d := model.NewDayRecord()
	ids := ledger.NewIDSource(fixedClock(1000))

	ev := ledger.AddEvent(d, ids)
	assert.Equal(t, model.Event{ID: 1000}, ev)
	require.Len(t, d.Events, 1)
	assert.Equal(t, ev, d.Events[0])
}

func TestIDSourceSameMillisecond(t *testing.T) {
	d := model.NewDayRecord()
	ids := ledger.NewIDSource(fixedClock(5000))

	a := ledger.AddEvent(d, ids)
	b := ledger.AddEvent(d, ids)
	c := ledger.AddEvent(d, ids)
	assert.Equal(t, int64(5000), a.ID)
	assert.Equal(t, int64(5001), b.ID)
	assert.Equal(t, int64(5002), c.ID)
}

func TestIDSourceSkipsExistingIDs(t *testing.T) {
	d := day("08:00", model.Event{ID: 9000})
	ids := ledger.NewIDSource(fixedClock(100))
	assert.Equal(t, int64(9001), ids.Next(d))
}

func TestIDSourceConcurrent(t *testing.T) {
	ids := ledger.NewIDSource(fixedClock(1))
	seen := make(map[int64]bool)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := ids.Next(nil)
			mu.Lock()
			seen[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 50)
}

func TestDeleteEvent(t *testing.T) {
	d := day("08:00", timed(1, "09:00", false), timed(2, "10:00", false), timed(3, "11:00", false))

	assert.True(t, ledger.DeleteEvent(d, 2))
	require.Len(t, d.Events, 2)
	assert.Equal(t, int64(1), d.Events[0].ID)
	assert.Equal(t, int64(3), d.Events[1].ID)
}

func TestDeleteEventMissingIsNoop(t *testing.T) {
	d := day("08:00", timed(1, "09:00", false), timed(2, "10:00", true))
	before := append([]model.Event(nil), d.Events...)

	assert.False(t, ledger.DeleteEvent(d, 42))
	assert.Equal(t, before, d.Events)
}

func TestToggleImportantInvolution(t *testing.T) {
	d := day("08:00", timed(1, "09:00", false))

	assert.True(t, ledger.ToggleImportant(d, 1))
	assert.True(t, d.Events[0].Important)
	assert.True(t, ledger.ToggleImportant(d, 1))
	assert.False(t, d.Events[0].Important)

	assert.False(t, ledger.ToggleImportant(d, 99))
}

func TestUpdateEventField(t *testing.T) {
	d := day("08:00", timed(1, "", false))

	ok, err := ledger.UpdateEventField(d, 1, ledger.FieldDescription, "write report")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "write report", d.Events[0].Description)

	ok, err = ledger.UpdateEventField(d, 1, ledger.FieldTime, "07:00")
	require.NoError(t, err, "order is not enforced at write time")
	assert.True(t, ok)
	assert.Equal(t, "07:00", d.Events[0].Time)

	ok, err = ledger.UpdateEventField(d, 1, ledger.FieldTime, "")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "", d.Events[0].Time)

	ok, err = ledger.UpdateEventField(d, 1, ledger.FieldImportant, "true")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, d.Events[0].Important)
}

func TestUpdateEventFieldErrors(t *testing.T) {
	d := day("08:00", timed(1, "09:00", false))

	_, err := ledger.UpdateEventField(d, 1, ledger.FieldTime, "9am")
	assert.True(t, errors.Is(err, timecalc.ErrInvalidClock))
	assert.Equal(t, "09:00", d.Events[0].Time)

	_, err = ledger.UpdateEventField(d, 1, ledger.FieldImportant, "maybe")
	assert.Error(t, err)

	_, err = ledger.UpdateEventField(d, 1, ledger.Field("colour"), "red")
	assert.True(t, errors.Is(err, ledger.ErrUnknownField))

	ok, err := ledger.UpdateEventField(d, 77, ledger.FieldDescription, "x")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestParseField(t *testing.T) {
	f, err := ledger.ParseField("time")
	require.NoError(t, err)
	assert.Equal(t, ledger.FieldTime, f)

	_, err = ledger.ParseField("id")
	assert.True(t, errors.Is(err, ledger.ErrUnknownField))
}

func TestSetStartTime(t *testing.T) {
	d := model.NewDayRecord()
	require.NoError(t, ledger.SetStartTime(d, "07:15"))
	assert.Equal(t, "07:15", d.StartTime)

	assert.Error(t, ledger.SetStartTime(d, ""))
	assert.Equal(t, "07:15", d.StartTime)
}

func TestInsertByTime(t *testing.T) {
	d := day("08:00", timed(1, "09:00", false), timed(2, "", false), timed(3, "12:00", false))

	ledger.InsertByTime(d, model.Event{ID: 4, Time: "10:30"})
	ledger.InsertByTime(d, model.Event{ID: 5, Time: "13:00"})
	ledger.InsertByTime(d, model.Event{ID: 6, Time: "08:15"})
	ledger.InsertByTime(d, model.Event{ID: 7})

	var order []int64
	for _, e := range d.Events {
		order = append(order, e.ID)
	}
	assert.Equal(t, []int64{6, 1, 2, 4, 3, 5, 7}, order)
	assert.True(t, ledger.ValidateOrder(d))
}

func TestFind(t *testing.T) {
	d := day("08:00", timed(1, "09:00", true))
	ev, ok := ledger.Find(d, 1)
	assert.True(t, ok)
	assert.True(t, ev.Important)

	_, ok = ledger.Find(d, 2)
	assert.False(t, ok)
}
