package view

import "sync"

// Sequencer hands out increasing tickets per region so that only the most
// recently started request for a region may apply its result.
type Sequencer struct {
	mu     sync.Mutex
	latest map[Region]uint64
}

// Next issues a new ticket for r, superseding all earlier ones.
func (s *Sequencer) Next(r Region) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		s.latest = make(map[Region]uint64)
	}
	s.latest[r]++
	return s.latest[r]
}

// IsLatest reports whether ticket is still the newest issued for r.
func (s *Sequencer) IsLatest(r Region, ticket uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest[r] == ticket
}
