package session

import (
	"context"
	"sync"

	"github.com/Tiliavir/daymark/internal/model"
	"github.com/Tiliavir/daymark/internal/storage"
)

// saver persists store snapshots on a single goroutine. Snapshots queued
// while a save is running are coalesced: only the latest one is written.
type saver struct {
	gw      storage.Gateway
	onError func(error)

	mu      sync.Mutex
	idle    *sync.Cond
	pending model.Store
	queued  bool
	busy    bool
	closed  bool
	lastErr error

	wake chan struct{}
	done chan struct{}
}

func newSaver(gw storage.Gateway, onError func(error)) *saver {
	s := &saver{
		gw:      gw,
		onError: onError,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	s.idle = sync.NewCond(&s.mu)
	go s.run()
	return s
}

// enqueue replaces any pending snapshot. It never blocks on I/O.
func (s *saver) enqueue(snapshot model.Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.pending = snapshot
	s.queued = true
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *saver) run() {
	defer close(s.done)
	for range s.wake {
		for {
			s.mu.Lock()
			if !s.queued {
				s.busy = false
				s.idle.Broadcast()
				s.mu.Unlock()
				break
			}
			snapshot := s.pending
			s.pending, s.queued, s.busy = nil, false, true
			s.mu.Unlock()

			err := s.gw.Save(context.Background(), snapshot)

			s.mu.Lock()
			s.lastErr = err
			s.mu.Unlock()
			if err != nil && s.onError != nil {
				s.onError(err)
			}
		}
	}
}

// flush blocks until every queued snapshot has been written.
func (s *saver) flush() {
	s.mu.Lock()
	for s.queued || s.busy {
		s.idle.Wait()
	}
	s.mu.Unlock()
}

// close flushes, stops the goroutine and returns the result of the last save.
func (s *saver) close() error {
	s.flush()
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.wake)
	}
	s.mu.Unlock()
	<-s.done

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
