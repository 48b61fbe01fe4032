package service

import (
	"sync"
	"time"
)

// Scheduler runs functions after a quiet period, keyed by name. Scheduling
// under a key that already has a pending function cancels the pending one,
// so only the latest of a rapid burst executes. Functions already running
// are never interrupted.
type Scheduler struct {
	mu      sync.Mutex
	gen     uint64
	pending map[string]*pendingRun
}

// pendingRun pairs a timer with the generation it was scheduled under.
// A fired callback whose generation no longer matches the map entry has
// been superseded and must not run.
type pendingRun struct {
	timer *time.Timer
	gen   uint64
}

// NewScheduler creates an empty Scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{pending: make(map[string]*pendingRun)}
}

// Schedule arranges fn to run after delay. A pending fn under the same key
// is cancelled and replaced, even when its timer fires during this call.
func (s *Scheduler) Schedule(key string, delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.pending[key]; ok {
		p.timer.Stop()
	}

	s.gen++
	gen := s.gen
	entry := &pendingRun{gen: gen}
	entry.timer = time.AfterFunc(delay, func() { s.run(key, gen, fn) })
	s.pending[key] = entry
}

// run executes a fired function if its generation is still the current one
// for the key. A stale generation means the function was superseded after
// its timer had already fired, so it must neither run nor disturb the
// replacement's map entry.
func (s *Scheduler) run(key string, gen uint64, fn func()) {
	s.mu.Lock()
	current, ok := s.pending[key]
	if !ok || current.gen != gen {
		s.mu.Unlock()
		return
	}
	delete(s.pending, key)
	s.mu.Unlock()
	fn()
}

// Cancel drops a pending function under the key, if any. It does not wait
// for an already-running function.
func (s *Scheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.pending[key]; ok {
		p.timer.Stop()
		delete(s.pending, key)
	}
}

// Stop cancels every pending function.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, p := range s.pending {
		p.timer.Stop()
		delete(s.pending, key)
	}
}
