package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/gag-stock-relay/internal/relay"
)

var (
	// ErrNotFound is returned when no run has been recorded in the requested window.
	ErrNotFound = errors.New("no runs recorded")
)

// MemoryStore is a concurrency-safe in-memory history of relay runs.
type MemoryStore struct {
	mu sync.RWMutex

	// ordered by StartedAt
	runs []relay.RunRecord

	// retention configuration
	maxHistory int           // max number of records kept
	maxAge     time.Duration // optional max age for records

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveRun appends a run record and enforces retention.
func (s *MemoryStore) SaveRun(rec relay.RunRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = append(s.runs, rec)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(s.runs) > s.maxHistory {
		over := len(s.runs) - s.maxHistory
		s.runs = append([]relay.RunRecord(nil), s.runs[over:]...)
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(s.runs); i++ {
			if !s.runs[i].StartedAt.Before(cutoff) {
				break
			}
		}
		if i > 0 {
			s.runs = append([]relay.RunRecord(nil), s.runs[i:]...)
		}
	}
}

// GetLatest returns the most recent run.
func (s *MemoryStore) GetLatest() (relay.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.runs) == 0 {
		return relay.RunRecord{}, ErrNotFound
	}
	return s.runs[len(s.runs)-1], nil
}

// GetRange returns all runs started between from and to (inclusive).
func (s *MemoryStore) GetRange(from, to time.Time) ([]relay.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []relay.RunRecord
	for _, rec := range s.runs {
		if !rec.StartedAt.Before(from) && !rec.StartedAt.After(to) {
			result = append(result, rec)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}
