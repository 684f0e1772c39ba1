// Package session holds the application state behind both presentation
// surfaces: the current date, the in-memory store and an asynchronous saver.
//
// A Session is safe for concurrent use. Mutations run synchronously on the
// caller's goroutine against the in-memory store; persistence is queued as a
// deep-copied snapshot and written in the background.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Tiliavir/daymark/internal/ledger"
	"github.com/Tiliavir/daymark/internal/logging"
	"github.com/Tiliavir/daymark/internal/model"
	"github.com/Tiliavir/daymark/internal/storage"
	"github.com/Tiliavir/daymark/internal/timecalc"
)

// NoticeKind classifies a Notice.
type NoticeKind int

const (
	NoticeSuccess NoticeKind = iota
	NoticeWarning
	NoticeError
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeSuccess:
		return "success"
	case NoticeWarning:
		return "warning"
	case NoticeError:
		return "error"
	}
	return "unknown"
}

// Notice is a user-facing message raised outside a direct call, such as a
// failed background save.
type Notice struct {
	Kind    NoticeKind
	Message string
	Err     error
}

// Option configures a Session.
type Option func(*Session)

// WithClock sets the clock used for "today", ids and default export names.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithNotify registers a callback for notices. It may be called from the
// saver goroutine and must not call back into the Session.
func WithNotify(fn func(Notice)) Option {
	return func(s *Session) { s.notify = fn }
}

// Session is the explicit application state.
type Session struct {
	gw     storage.Gateway
	now    func() time.Time
	logger *log.Logger
	notify func(Notice)
	ids    *ledger.IDSource
	saver  *saver

	mu      sync.Mutex
	date    string
	store   model.Store
	loading bool
}

// New returns a Session on gw positioned at today. Call Load before use and
// Close when done.
func New(gw storage.Gateway, opts ...Option) *Session {
	s := &Session{
		gw:     gw,
		now:    time.Now,
		logger: logging.Discard(),
		store:  model.Store{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ids = ledger.NewIDSource(s.now)
	s.date = timecalc.FormatDate(s.now())
	s.saver = newSaver(gw, s.saveFailed)
	return s
}

func (s *Session) saveFailed(err error) {
	s.logger.Error("save failed", "err", err)
	s.emit(Notice{Kind: NoticeError, Message: "save failed", Err: err})
}

func (s *Session) emit(n Notice) {
	if s.notify != nil {
		s.notify(n)
	}
}

// Loading reports whether a load is in progress.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Load reads the whole store from the gateway. Pending saves are flushed
// first so they cannot overwrite what is read. On failure the previously
// loaded store is kept (empty on first load) and the error is returned after
// a notice is raised. The current date always exists afterwards; creating it
// is not persisted.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	s.saver.flush()
	store, err := s.gw.Load(ctx)

	s.mu.Lock()
	if err == nil {
		s.store = store
	}
	if s.store == nil {
		s.store = model.Store{}
	}
	ledger.EnsureDay(s.store, s.date)
	s.loading = false
	days, date := len(s.store), s.date
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("load failed", "err", err)
		s.emit(Notice{Kind: NoticeError, Message: "load failed", Err: err})
		return fmt.Errorf("loading store: %w", err)
	}
	s.logger.Debug("store loaded", "days", days, "date", date)
	return nil
}

// SetDate switches to date (YYYY-MM-DD) and reloads.
func (s *Session) SetDate(ctx context.Context, date string) error {
	if _, err := timecalc.ParseDate(date); err != nil {
		return err
	}
	s.mu.Lock()
	s.date = date
	s.mu.Unlock()
	return s.Load(ctx)
}

// ShiftDate moves the current date by days and reloads.
func (s *Session) ShiftDate(ctx context.Context, days int) error {
	next, err := timecalc.ShiftDate(s.Date(), days)
	if err != nil {
		return err
	}
	return s.SetDate(ctx, next)
}

// Today switches to the clock's current date and reloads.
func (s *Session) Today(ctx context.Context) error {
	return s.SetDate(ctx, timecalc.FormatDate(s.now()))
}

// Date returns the current date.
func (s *Session) Date() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.date
}

// Day returns a copy of the current day.
func (s *Session) Day() model.DayRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyDay(s.day())
}

// DayFor returns a copy of the given date's record and whether it exists.
func (s *Session) DayFor(date string) (model.DayRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day, ok := s.store[date]
	if !ok || day == nil {
		return *model.NewDayRecord(), false
	}
	return copyDay(day), true
}

// Stats aggregates the current day.
func (s *Session) Stats() ledger.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ledger.Aggregate(s.day())
}

// Durations returns per-event durations for the current day.
func (s *Session) Durations() []ledger.EventDuration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ledger.Durations(s.day())
}

// Store returns a deep copy of the whole store.
func (s *Session) Store() model.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Clone()
}

// SetStartTime changes the current day's start time.
func (s *Session) SetStartTime(value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	day := s.day()
	if day.StartTime == value {
		return nil
	}
	if err := ledger.SetStartTime(day, value); err != nil {
		return err
	}
	s.persist()
	return nil
}

// AddEvent appends an empty event to the current day.
func (s *Session) AddEvent() model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev := ledger.AddEvent(s.day(), s.ids)
	s.persist()
	return ev
}

// DeleteEvent removes an event. It reports whether the event existed.
func (s *Session) DeleteEvent(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !ledger.DeleteEvent(s.day(), id) {
		return false
	}
	s.persist()
	return true
}

// ToggleImportant flips an event's important flag. It reports whether the
// event existed.
func (s *Session) ToggleImportant(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !ledger.ToggleImportant(s.day(), id) {
		return false
	}
	s.persist()
	return true
}

// UpdateEvent sets one field of an event. After a time edit the new value is
// stored and persisted even when it breaks completion order; in that case
// ledger.ErrOutOfOrder is returned.
func (s *Session) UpdateEvent(id int64, field ledger.Field, value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day := s.day()
	changed, err := ledger.UpdateEventField(day, id, field, value)
	if err != nil || !changed {
		return changed, err
	}
	s.persist()
	if field == ledger.FieldTime && !ledger.ValidateOrder(day) {
		return true, ledger.ErrOutOfOrder
	}
	return true, nil
}

// Mutate runs fn against the current day and persists when fn reports a
// change.
func (s *Session) Mutate(fn func(day *model.DayRecord, ids *ledger.IDSource) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn(s.day(), s.ids) {
		s.persist()
	}
}

// DefaultExportName returns the backup file name for the clock's date.
func (s *Session) DefaultExportName(format storage.Format) string {
	ext := "json"
	if format == storage.FormatYAML {
		ext = "yaml"
	}
	return fmt.Sprintf("timetracker-backup-%s.%s", timecalc.FormatDate(s.now()), ext)
}

// Export writes the whole store to path and returns the path written. An
// empty path uses DefaultExportName in the working directory.
func (s *Session) Export(path string, format storage.Format) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = s.DefaultExportName(format)
	}
	snapshot := s.Store()
	if err := storage.ExportFile(path, snapshot, format); err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}
	s.logger.Info("exported", "path", path, "days", len(snapshot))
	return path, nil
}

// Import replaces the whole store with the contents of path and persists it.
// On failure the store is unchanged and the error wraps storage.ErrBadFormat.
func (s *Session) Import(path string) error {
	store, err := storage.ImportFile(path)
	if err != nil {
		s.logger.Warn("import failed", "path", path, "err", err)
		if errors.Is(err, storage.ErrBadFormat) {
			return fmt.Errorf("import failed: %w", err)
		}
		return fmt.Errorf("import failed: %w: %w", storage.ErrBadFormat, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.store = store
	ledger.EnsureDay(s.store, s.date)
	s.persist()
	s.logger.Info("imported", "path", path, "days", len(store))
	return nil
}

// Flush waits until all queued saves have been written.
func (s *Session) Flush() {
	s.saver.flush()
}

// Close flushes pending saves, stops the saver and returns the error of the
// last save, if any.
func (s *Session) Close() error {
	return s.saver.close()
}

// day returns the current day, creating it if needed. Callers hold mu.
func (s *Session) day() *model.DayRecord {
	return ledger.EnsureDay(s.store, s.date)
}

// persist queues a snapshot unless a load is running. Callers hold mu.
func (s *Session) persist() {
	if s.loading {
		s.logger.Debug("save skipped while loading")
		return
	}
	s.saver.enqueue(s.store.Clone())
}

func copyDay(day *model.DayRecord) model.DayRecord {
	out := model.DayRecord{StartTime: day.StartTime, Events: make([]model.Event, len(day.Events))}
	copy(out.Events, day.Events)
	return out
}
