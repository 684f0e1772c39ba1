package tui

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/daymark/internal/ledger"
	"github.com/Tiliavir/daymark/internal/model"
	"github.com/Tiliavir/daymark/internal/session"
	"github.com/Tiliavir/daymark/internal/storage"
)

var fixedNow = time.Date(2026, 2, 27, 9, 30, 0, 0, time.Local)

func newTestModel(t *testing.T, store model.Store) (Model, *session.Session) {
	t.Helper()
	dir := t.TempDir()
	gw := storage.NewFileGateway(dir)
	if store != nil {
		require.NoError(t, gw.Save(context.Background(), store))
	}
	sess := session.New(gw, session.WithClock(func() time.Time { return fixedNow }))
	t.Cleanup(func() { _ = sess.Close() })
	require.NoError(t, sess.Load(context.Background()))
	return New(context.Background(), sess, nil), sess
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(Model)
	}
	return m
}

func sampleDay() model.Store {
	return model.Store{"2026-02-27": {StartTime: "08:00", Events: []model.Event{
		{ID: 1, Important: true, Description: "deep work", Time: "09:00"},
		{ID: 2, Description: "emails", Time: "10:00"},
	}}}
}

func TestAddThenDescribe(t *testing.T) {
	m, sess := newTestModel(t, nil)

	m = press(t, m, "a")
	assert.Equal(t, modeEditDescription, m.mode)

	m = press(t, m, "write report", "enter")
	assert.Equal(t, modeBrowse, m.mode)

	day := sess.Day()
	require.Len(t, day.Events, 1)
	assert.Equal(t, "write report", day.Events[0].Description)
	assert.False(t, day.Events[0].Important)
}

func TestEscapeCancelsEdit(t *testing.T) {
	m, sess := newTestModel(t, sampleDay())

	m = press(t, m, "e", "changed", "esc")
	assert.Equal(t, modeBrowse, m.mode)
	assert.Equal(t, "deep work", sess.Day().Events[0].Description)
}

func TestToggleAndDelete(t *testing.T) {
	m, sess := newTestModel(t, sampleDay())

	m = press(t, m, "down", "space")
	assert.True(t, sess.Day().Events[1].Important)

	m = press(t, m, "d")
	day := sess.Day()
	require.Len(t, day.Events, 1)
	assert.Equal(t, int64(1), day.Events[0].ID)
	assert.Equal(t, 0, m.table.Cursor())
}

func TestOutOfOrderTimeWarnsAndKeepsValue(t *testing.T) {
	m, sess := newTestModel(t, sampleDay())

	// Select the second event and move it before the first.
	m = press(t, m, "down", "t")
	assert.Equal(t, "10:00", m.input.Value())
	m.input.SetValue("")
	m = press(t, m, "08:30", "enter")

	assert.Equal(t, ledger.ErrOutOfOrder.Error(), m.toast)
	assert.Equal(t, session.NoticeWarning, m.toastKind)
	assert.Equal(t, "08:30", sess.Day().Events[1].Time)
}

func TestInvalidTimeShowsError(t *testing.T) {
	m, sess := newTestModel(t, sampleDay())

	m = press(t, m, "t")
	m.input.SetValue("")
	m = press(t, m, "late", "enter")

	assert.Equal(t, session.NoticeError, m.toastKind)
	assert.Equal(t, "09:00", sess.Day().Events[0].Time)
}

func TestStartTimeEdit(t *testing.T) {
	m, sess := newTestModel(t, sampleDay())

	m = press(t, m, "s")
	m.input.SetValue("")
	m = press(t, m, "07:15", "enter")
	assert.Equal(t, "07:15", sess.Day().StartTime)
}

func TestDateNavigation(t *testing.T) {
	m, sess := newTestModel(t, sampleDay())

	m = press(t, m, "h")
	assert.Equal(t, "2026-02-26", sess.Date())
	assert.Empty(t, m.table.Rows())

	m = press(t, m, "right", "l")
	assert.Equal(t, "2026-02-28", sess.Date())

	m = press(t, m, "g")
	assert.Equal(t, "2026-02-27", sess.Date())
	assert.Len(t, m.table.Rows(), 2)
}

func TestToastExpiresBySequence(t *testing.T) {
	m, _ := newTestModel(t, sampleDay())

	m.showToast(session.NoticeSuccess, "first")
	stale := m.toastSeq
	m.showToast(session.NoticeSuccess, "second")

	next, _ := m.Update(clearToastMsg{seq: stale})
	m = next.(Model)
	assert.Equal(t, "second", m.toast, "an older timer must not clear a newer toast")

	next, _ = m.Update(clearToastMsg{seq: m.toastSeq})
	m = next.(Model)
	assert.Empty(t, m.toast)
}

func TestSessionNoticeBecomesToast(t *testing.T) {
	m, _ := newTestModel(t, nil)

	next, cmd := m.Update(noticeMsg{Kind: session.NoticeError, Message: "save failed"})
	m = next.(Model)
	assert.Equal(t, "save failed", m.toast)
	assert.NotNil(t, cmd)
}

func TestExportAndImport(t *testing.T) {
	m, sess := newTestModel(t, sampleDay())
	path := filepath.Join(t.TempDir(), "backup.json")

	m = press(t, m, "x")
	assert.Equal(t, "timetracker-backup-2026-02-27.json", m.input.Value())
	m.input.SetValue(path)
	m = press(t, m, "enter")
	assert.Equal(t, session.NoticeSuccess, m.toastKind)
	_, err := os.Stat(path)
	require.NoError(t, err)

	m = press(t, m, "d", "d")
	assert.Empty(t, sess.Day().Events)

	m = press(t, m, "i")
	m.input.SetValue(path)
	m = press(t, m, "enter")
	assert.Equal(t, "import succeeded", m.toast)
	assert.Len(t, sess.Day().Events, 2)
	assert.Len(t, m.table.Rows(), 2)
}

func TestImportBadFormat(t *testing.T) {
	m, sess := newTestModel(t, sampleDay())
	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("nope"), 0o600))

	m = press(t, m, "i")
	m.input.SetValue(bad)
	m = press(t, m, "enter")

	assert.Equal(t, "import failed: bad format", m.toast)
	assert.Len(t, sess.Day().Events, 2)
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t, nil)
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestViewShowsStats(t *testing.T) {
	m, _ := newTestModel(t, sampleDay())
	out := m.View()
	assert.Contains(t, out, "2026-02-27")
	assert.Contains(t, out, "deep work")
	assert.Contains(t, out, "120 min")
	assert.Contains(t, out, "50.0%")
}

func TestDurationText(t *testing.T) {
	assert.Equal(t, "-", durationText(ledger.EventDuration{}))
	assert.Equal(t, "time error", durationText(ledger.EventDuration{Timed: true, Minutes: -30}))
	assert.Equal(t, "60 min", durationText(ledger.EventDuration{Timed: true, Valid: true, Minutes: 60}))
}
