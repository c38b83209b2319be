package core

import (
	"errors"
	"sync"
	"time"
)

// ErrRunNotFound is returned for unknown or expired run IDs.
var ErrRunNotFound = errors.New("run not found")

// DefaultResultTTL is how long finished runs stay downloadable.
const DefaultResultTTL = 30 * time.Minute

// ResultStore keeps finished runs in memory until their TTL expires.
type ResultStore struct {
	ttl time.Duration

	mu   sync.RWMutex
	runs map[string]*storedRun
}

type storedRun struct {
	result  *RunResult
	expires time.Time
	timer   *time.Timer
}

// NewResultStore creates a store. A non-positive ttl selects DefaultResultTTL.
func NewResultStore(ttl time.Duration) *ResultStore {
	if ttl <= 0 {
		ttl = DefaultResultTTL
	}
	return &ResultStore{
		ttl:  ttl,
		runs: make(map[string]*storedRun),
	}
}

// Put stores r under r.RunID, replacing any previous entry.
func (s *ResultStore) Put(r *RunResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.runs[r.RunID]; ok {
		old.timer.Stop()
	}
	id := r.RunID
	s.runs[id] = &storedRun{
		result:  r,
		expires: time.Now().Add(s.ttl),
		timer:   time.AfterFunc(s.ttl, func() { s.Delete(id) }),
	}
}

// Get returns a stored run or ErrRunNotFound.
func (s *ResultStore) Get(id string) (*RunResult, error) {
	s.mu.RLock()
	run, ok := s.runs[id]
	s.mu.RUnlock()

	if !ok || time.Now().After(run.expires) {
		return nil, ErrRunNotFound
	}
	return run.result, nil
}

// Delete removes a run.
func (s *ResultStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run, ok := s.runs[id]; ok {
		run.timer.Stop()
		delete(s.runs, id)
	}
}

// Len returns the number of stored runs.
func (s *ResultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}

// Close stops all expiry timers and drops every run.
func (s *ResultStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, run := range s.runs {
		run.timer.Stop()
		delete(s.runs, id)
	}
}
