package cache

import (
	"context"
	"sync"
	"time"

	"github.com/smallbiznis/invoicedesk/internal/clock"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
	tags      []string
}

// MemoryStore is a process-local Store. A zero ttl means no expiry.
type MemoryStore struct {
	clock clock.Clock

	mu       sync.RWMutex
	items    map[string]memoryEntry
	byTag    map[string]map[string]struct{}
	versions map[string]int64
}

func NewMemoryStore(c clock.Clock) *MemoryStore {
	if c == nil {
		c = clock.NewSystemClock()
	}
	return &MemoryStore{
		clock:    c,
		items:    make(map[string]memoryEntry),
		byTag:    make(map[string]map[string]struct{}),
		versions: make(map[string]int64),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, ErrEmptyKey
	}
	s.mu.RLock()
	entry, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if s.expired(entry) {
		s.mu.Lock()
		// A Set may have replaced the entry since the read lock was released.
		if current, ok := s.items[key]; ok && s.expired(current) {
			s.deleteLocked(key)
		}
		s.mu.Unlock()
		return nil, false, nil
	}
	return append([]byte(nil), entry.value...), true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration, tags ...string) error {
	if key == "" {
		return ErrEmptyKey
	}
	entry := s.newEntry(value, ttl, tags)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.putLocked(key, entry)
	return nil
}

func (s *MemoryStore) TagVersions(_ context.Context, tags ...string) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	versions := make([]int64, len(tags))
	for i, tag := range tags {
		versions[i] = s.versions[tag]
	}
	return versions, nil
}

func (s *MemoryStore) SetIfCurrent(_ context.Context, key string, value []byte, ttl time.Duration, tags []string, versions []int64) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	if len(versions) != len(tags) {
		return false, ErrVersionMismatch
	}
	entry := s.newEntry(value, ttl, tags)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, tag := range tags {
		if s.versions[tag] != versions[i] {
			return false, nil
		}
	}
	s.putLocked(key, entry)
	return true, nil
}

func (s *MemoryStore) InvalidateTags(_ context.Context, tags ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tag := range tags {
		for key := range s.byTag[tag] {
			s.deleteLocked(key)
		}
		delete(s.byTag, tag)
		s.versions[tag]++
	}
	return nil
}

// Len reports the number of live and expired-but-unswept entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *MemoryStore) newEntry(value []byte, ttl time.Duration, tags []string) memoryEntry {
	entry := memoryEntry{
		value: append([]byte(nil), value...),
		tags:  append([]string(nil), tags...),
	}
	if ttl > 0 {
		entry.expiresAt = s.clock.Now().Add(ttl)
	}
	return entry
}

func (s *MemoryStore) expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && !s.clock.Now().Before(entry.expiresAt)
}

func (s *MemoryStore) putLocked(key string, entry memoryEntry) {
	s.deleteLocked(key)
	s.items[key] = entry
	for _, tag := range entry.tags {
		keys, ok := s.byTag[tag]
		if !ok {
			keys = make(map[string]struct{})
			s.byTag[tag] = keys
		}
		keys[key] = struct{}{}
	}
}

func (s *MemoryStore) deleteLocked(key string) {
	entry, ok := s.items[key]
	if !ok {
		return
	}
	delete(s.items, key)
	for _, tag := range entry.tags {
		if keys, ok := s.byTag[tag]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(s.byTag, tag)
			}
		}
	}
}
