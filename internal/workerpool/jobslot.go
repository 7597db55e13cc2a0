package workerpool

import (
	"sync"

	"github.com/anonmine-dev/corexminer/internal/miningjob"
)

// JobSlot is a single-writer, multi-reader latest-value cell, the Go
// analogue of a watch channel: every worker goroutine polls Load and
// always sees the most recently Stored job, never a backlog of stale
// ones.
type JobSlot struct {
	mu      sync.RWMutex
	job     miningjob.Job
	version uint64
	set     bool
}

// Store publishes a new job, replacing whatever was previously held.
func (s *JobSlot) Store(j miningjob.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.job = j
	s.version++
	s.set = true
}

// Load returns the current job and its version. ok is false until the
// first Store.
func (s *JobSlot) Load() (j miningjob.Job, version uint64, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.job, s.version, s.set
}

// Version returns the current version without copying the job.
func (s *JobSlot) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}
