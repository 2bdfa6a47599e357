// Package bloom provides a concurrency-safe seen-set backed by a Bloom filter.
package bloom

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// Set records keys that have been seen.
// Contains never reports a seen key as unseen; it may report an unseen key
// as seen with the configured false positive rate.
type Set struct {
	mu sync.Mutex
	f  *bloom.BloomFilter
}

// NewSet creates a Set sized for n expected keys with the given
// false positive rate.
func NewSet(n uint, fpRate float64) *Set {
	return &Set{f: bloom.NewWithEstimates(n, fpRate)}
}

// Add records key and reports whether it was new.
func (s *Set) Add(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.f.TestAndAddString(key)
}

// Contains reports whether key may have been added.
func (s *Set) Contains(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.TestString(key)
}

// Len returns the approximate number of keys added.
func (s *Set) Len() uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return uint(s.f.ApproximatedSize())
}
