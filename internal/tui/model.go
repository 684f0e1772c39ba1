// Package tui is the interactive day table built on bubbletea.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Tiliavir/daymark/internal/ledger"
	"github.com/Tiliavir/daymark/internal/session"
	"github.com/Tiliavir/daymark/internal/storage"
)

// ToastDuration is how long a status message stays visible.
const ToastDuration = 3 * time.Second

type mode int

const (
	modeBrowse mode = iota
	modeEditDescription
	modeEditTime
	modeEditStart
	modeExport
	modeImport
)

func (m mode) prompt() string {
	switch m {
	case modeEditDescription:
		return "Description: "
	case modeEditTime:
		return "Time (HH:MM): "
	case modeEditStart:
		return "Start time (HH:MM): "
	case modeExport:
		return "Export to: "
	case modeImport:
		return "Import from: "
	}
	return ""
}

type noticeMsg session.Notice

type clearToastMsg struct{ seq int }

// Model is the bubbletea model for one session.
type Model struct {
	ctx     context.Context
	sess    *session.Session
	notices <-chan session.Notice

	table table.Model
	input textinput.Model
	mode  mode
	// editID is the event being edited in modeEditDescription/modeEditTime.
	editID int64

	toast     string
	toastKind session.NoticeKind
	toastSeq  int

	width, height int
}

// New returns a Model over a loaded session. notices may be nil.
func New(ctx context.Context, sess *session.Session, notices <-chan session.Notice) Model {
	input := textinput.New()
	input.CharLimit = 200

	m := Model{
		ctx:     ctx,
		sess:    sess,
		notices: notices,
		table:   newTable(),
		input:   input,
	}
	m.refresh()
	return m
}

// Init starts listening for session notices.
func (m Model) Init() tea.Cmd {
	return waitForNotice(m.notices)
}

func waitForNotice(ch <-chan session.Notice) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return noticeMsg(n)
	}
}

// Update handles keys, window sizes, notices and toast expiry.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.adjustLayout()
		return m, nil

	case noticeMsg:
		text := msg.Message
		if msg.Err != nil {
			text = fmt.Sprintf("%s: %v", msg.Message, msg.Err)
		}
		toast := m.showToast(msg.Kind, text)
		m.refresh()
		return m, tea.Batch(toast, waitForNotice(m.notices))

	case clearToastMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case tea.KeyMsg:
		if m.mode != modeBrowse {
			return m.handleEditingKeys(msg)
		}
		return m.handleBrowseKeys(msg)
	}
	return m, nil
}

func (m Model) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "a":
		ev := m.sess.AddEvent()
		m.refresh()
		m.table.SetCursor(len(m.table.Rows()) - 1)
		return m, m.startEditing(modeEditDescription, ev.ID, "")

	case "e":
		if ev, ok := m.selected(); ok {
			return m, m.startEditing(modeEditDescription, ev.id, ev.description)
		}

	case "t":
		if ev, ok := m.selected(); ok {
			return m, m.startEditing(modeEditTime, ev.id, ev.time)
		}

	case "s":
		return m, m.startEditing(modeEditStart, 0, m.sess.Day().StartTime)

	case " ":
		if ev, ok := m.selected(); ok {
			m.sess.ToggleImportant(ev.id)
			m.refresh()
		}

	case "d", "delete":
		if ev, ok := m.selected(); ok {
			m.sess.DeleteEvent(ev.id)
			m.refresh()
		}

	case "h", "left":
		m.navigate(func() error { return m.sess.ShiftDate(m.ctx, -1) })
	case "l", "right":
		m.navigate(func() error { return m.sess.ShiftDate(m.ctx, 1) })
	case "g":
		m.navigate(func() error { return m.sess.Today(m.ctx) })

	case "x":
		return m, m.startEditing(modeExport, 0, m.sess.DefaultExportName(storage.FormatJSON))
	case "i":
		return m, m.startEditing(modeImport, 0, "")

	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleEditingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.stopEditing()
		return m, nil
	case "enter":
		cmd := m.commit(m.input.Value())
		m.stopEditing()
		m.refresh()
		return m, cmd
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) startEditing(md mode, id int64, value string) tea.Cmd {
	m.mode = md
	m.editID = id
	m.input.Prompt = md.prompt()
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.table.Blur()
	return m.input.Focus()
}

func (m *Model) stopEditing() {
	m.mode = modeBrowse
	m.editID = 0
	m.input.Blur()
	m.input.SetValue("")
	m.table.Focus()
}

// commit applies the input value for the current mode and returns the toast
// command, if any.
func (m *Model) commit(value string) tea.Cmd {
	switch m.mode {
	case modeEditDescription:
		if _, err := m.sess.UpdateEvent(m.editID, ledger.FieldDescription, value); err != nil {
			return m.showToast(session.NoticeError, err.Error())
		}

	case modeEditTime:
		_, err := m.sess.UpdateEvent(m.editID, ledger.FieldTime, value)
		switch {
		case errors.Is(err, ledger.ErrOutOfOrder):
			return m.showToast(session.NoticeWarning, err.Error())
		case err != nil:
			return m.showToast(session.NoticeError, err.Error())
		}

	case modeEditStart:
		if err := m.sess.SetStartTime(value); err != nil {
			return m.showToast(session.NoticeError, err.Error())
		}

	case modeExport:
		path, err := m.sess.Export(value, storage.FormatFromPath(value))
		if err != nil {
			return m.showToast(session.NoticeError, err.Error())
		}
		return m.showToast(session.NoticeSuccess, "exported: "+path)

	case modeImport:
		if err := m.sess.Import(value); err != nil {
			if errors.Is(err, storage.ErrBadFormat) {
				return m.showToast(session.NoticeError, "import failed: bad format")
			}
			return m.showToast(session.NoticeError, err.Error())
		}
		return m.showToast(session.NoticeSuccess, "import succeeded")
	}
	return nil
}

// navigate runs a date change. Load failures surface as session notices.
func (m *Model) navigate(fn func() error) {
	_ = fn()
	m.refresh()
	m.table.SetCursor(0)
}

func (m *Model) showToast(kind session.NoticeKind, text string) tea.Cmd {
	m.toastSeq++
	m.toast = text
	m.toastKind = kind
	seq := m.toastSeq
	return tea.Tick(ToastDuration, func(time.Time) tea.Msg {
		return clearToastMsg{seq: seq}
	})
}

type row struct {
	id          int64
	description string
	time        string
}

func (m Model) selected() (row, bool) {
	day := m.sess.Day()
	i := m.table.Cursor()
	if i < 0 || i >= len(day.Events) {
		return row{}, false
	}
	ev := day.Events[i]
	return row{id: ev.ID, description: ev.Description, time: ev.Time}, true
}

func (m *Model) refresh() {
	m.table.SetRows(rows(m.sess.Day(), m.sess.Durations()))
	if n := len(m.table.Rows()); m.table.Cursor() >= n && n > 0 {
		m.table.SetCursor(n - 1)
	}
}

func (m *Model) adjustLayout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	h := m.height - 12
	if h < 5 {
		h = 5
	}
	m.table.SetHeight(h)
	m.input.Width = m.width - len(m.input.Prompt) - 2
}
