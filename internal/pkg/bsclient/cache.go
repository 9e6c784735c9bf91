// Copyright 2026 Peter Edge
//
// All rights reserved.

package bsclient

import (
	"fmt"
	"sync"

	"github.com/bufdev/bsdate/internal/pkg/bsconv"
)

// Cache stores converted dates by cache key.
//
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the cached output for the key and whether it was present.
	Get(key string) (bsconv.Date, bool, error)
	// Set stores the output for the key.
	Set(key string, output bsconv.Date) error
	// Len returns the number of cached entries.
	Len() (int, error)
	// Clear removes all cached entries.
	Clear() error
}

// CacheKey returns the cache key for a conversion, e.g. "ad-to-bs-2024-10-15".
//
// The year is padded to four digits and the month and day to two.
func CacheKey(direction bsconv.Direction, year int, month int, day int) string {
	return fmt.Sprintf("%s-%04d-%02d-%02d", direction, year, month, day)
}

// NewMemoryCache returns a new in-memory Cache.
func NewMemoryCache() Cache {
	return &memoryCache{
		entries: make(map[string]bsconv.Date),
	}
}

// *** PRIVATE ***

type memoryCache struct {
	lock    sync.RWMutex
	entries map[string]bsconv.Date
}

func (m *memoryCache) Get(key string) (bsconv.Date, bool, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	output, ok := m.entries[key]
	return output, ok, nil
}

func (m *memoryCache) Set(key string, output bsconv.Date) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.entries[key] = output
	return nil
}

func (m *memoryCache) Len() (int, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.entries), nil
}

func (m *memoryCache) Clear() error {
	m.lock.Lock()
	defer m.lock.Unlock()
	clear(m.entries)
	return nil
}
