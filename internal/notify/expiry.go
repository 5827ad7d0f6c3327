package notify

import (
	"sync"
	"time"
)

// DefaultExpiry is how long a non-persistent unread notification stays in
// the store before being removed automatically.
const DefaultExpiry = 5 * time.Second

// Scheduler arms one cancellable removal timer per notification, keyed by
// id, so a record's lifetime is measured from its own insertion and is not
// perturbed by unrelated list mutations. Persistent records are never armed;
// marking a record read cancels its timer.
type Scheduler struct {
	mu     sync.Mutex
	delay  time.Duration
	timers map[string]*time.Timer
	remove func(id string)
}

// NewScheduler creates a Scheduler that calls remove(id) once a record's
// delay elapses.
func NewScheduler(delay time.Duration, remove func(id string)) *Scheduler {
	if delay <= 0 {
		delay = DefaultExpiry
	}
	return &Scheduler{
		delay:  delay,
		timers: make(map[string]*time.Timer),
		remove: remove,
	}
}

// Arm schedules removal of the record unless it is persistent or already
// read. Re-arming an id resets its countdown.
func (s *Scheduler) Arm(rec *Record) {
	if rec == nil || rec.Persistent || rec.Read {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[rec.ID]; ok {
		t.Stop()
	}
	id := rec.ID
	s.timers[id] = time.AfterFunc(s.delay, func() { s.fire(id) })
}

func (s *Scheduler) fire(id string) {
	s.mu.Lock()
	_, ok := s.timers[id]
	delete(s.timers, id)
	s.mu.Unlock()

	if ok && s.remove != nil {
		s.remove(id)
	}
}

// Cancel stops the pending timer for id, if any.
func (s *Scheduler) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
}

// CancelAll stops every pending timer.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

// Pending returns the number of armed timers.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
