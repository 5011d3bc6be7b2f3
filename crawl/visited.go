package crawl

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// VisitedSet records the normalized URLs a crawl has started visiting.
// It is safe for concurrent use by multiple goroutines.
//
// Membership is exact. A Bloom filter sits in front of the map so that
// the common "never seen" answer does not touch the map.
type VisitedSet struct {
	mu     sync.Mutex
	filter *bloom.BloomFilter
	keys   map[string]struct{}
}

// NewVisitedSet creates an empty VisitedSet whose filter is sized for n
// expected URLs with the given false positive rate.
func NewVisitedSet(n uint, fpRate float64) *VisitedSet {
	return &VisitedSet{
		filter: bloom.NewWithEstimates(n, fpRate),
		keys:   make(map[string]struct{}),
	}
}

// Add inserts key and reports whether it was absent.
// Checking and inserting happen under one lock, so for any key exactly one
// caller observes true.
func (s *VisitedSet) Add(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.filter.TestString(key) {
		if _, ok := s.keys[key]; ok {
			return false
		}
	}
	s.filter.AddString(key)
	s.keys[key] = struct{}{}
	return true
}

// Contains reports whether key has been added.
func (s *VisitedSet) Contains(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.filter.TestString(key) {
		return false
	}
	_, ok := s.keys[key]
	return ok
}

// Len returns the number of keys in the set.
func (s *VisitedSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}
