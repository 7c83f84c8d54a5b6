// internal/validator/debounce.go
package validator

import (
	"strings"
	"sync"
	"time"
)

// Timer is the part of *time.Timer the Scheduler needs.
type Timer interface {
	Stop() bool
}

// AfterFunc starts a timer that calls f once d has elapsed.
type AfterFunc func(d time.Duration, f func()) Timer

func stdAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// pendingRun is one outstanding debounced call for a field. id lets a
// timer that already fired recognise that it has been superseded.
type pendingRun struct {
	id    uint64
	timer Timer
}

// Scheduler delays per-field callbacks until input settles.
//
// At most one run is pending per field. Scheduling again for the same field
// cancels the previous run, and a run that was cancelled after its timer
// already fired is dropped rather than executed. Callbacks execute while the
// scheduler lock is held, so once Cancel or CancelAll returns no earlier run
// can still be executing. Callbacks must therefore not call back into the
// Scheduler.
type Scheduler struct {
	mu      sync.Mutex
	after   AfterFunc
	pending map[Field]*pendingRun
	seq     uint64
}

// NewScheduler returns a Scheduler using after as its timer source; nil
// selects time.AfterFunc.
func NewScheduler(after AfterFunc) *Scheduler {
	if after == nil {
		after = stdAfterFunc
	}
	return &Scheduler{
		after:   after,
		pending: make(map[Field]*pendingRun),
	}
}

// Schedule arranges for fire(value) to run after delay unless superseded.
// An empty (after trimming) value, or a non-positive delay, runs fire
// immediately on the calling goroutine after cancelling any pending run.
func (s *Scheduler) Schedule(field Field, value string, delay time.Duration, fire func(value string)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked(field)

	if strings.TrimSpace(value) == "" || delay <= 0 {
		fire(value)
		return
	}

	s.seq++
	run := &pendingRun{id: s.seq}
	id := run.id
	run.timer = s.after(delay, func() {
		s.expire(field, id, value, fire)
	})
	s.pending[field] = run
}

func (s *Scheduler) expire(field Field, id uint64, value string, fire func(string)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.pending[field]
	if !ok || run.id != id {
		return
	}
	delete(s.pending, field)
	fire(value)
}

// Cancel drops the pending run for field, if any, without executing it.
func (s *Scheduler) Cancel(field Field) {
	s.mu.Lock()
	s.cancelLocked(field)
	s.mu.Unlock()
}

// CancelAll drops every pending run without executing any of them.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for field := range s.pending {
		s.cancelLocked(field)
	}
}

// Pending reports whether a run is outstanding for field.
func (s *Scheduler) Pending(field Field) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[field]
	return ok
}

// Len returns the number of outstanding runs.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *Scheduler) cancelLocked(field Field) {
	if run, ok := s.pending[field]; ok {
		run.timer.Stop()
		delete(s.pending, field)
	}
}
