package usecase

import (
	"strings"
	"sync"
	"time"

	"hospitalSectorsWs/internal/modules/sectors/domain"
)

// snapshotCache keeps the last mapped snapshot per hospital. With capacity 1 it
// behaves as a single slot: caching another hospital replaces the previous one.
type snapshotCache struct {
	mu         sync.RWMutex
	capacity   int
	ttl        time.Duration
	now        func() time.Time
	generation uint64
	entries    map[string]*snapshotCacheEntry
}

type snapshotCacheEntry struct {
	hospitalID string
	snapshot   *domain.HospitalSectorSnapshot
	fetchedAt  time.Time
}

func newSnapshotCache(capacity int, ttl time.Duration) *snapshotCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &snapshotCache{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		entries:  make(map[string]*snapshotCacheEntry),
	}
}

// get ignores entries older than the TTL; a zero TTL never expires.
func (c *snapshotCache) get(hospitalID string) (*snapshotCacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[strings.TrimSpace(hospitalID)]
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(entry.fetchedAt) >= c.ttl {
		return nil, false
	}
	return entry.clone(), true
}

// currentGeneration is captured before a fetch; setAt drops the result when the cache
// was cleared or invalidated in the meantime.
func (c *snapshotCache) currentGeneration() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

func (c *snapshotCache) setAt(generation uint64, hospitalID string, snapshot *domain.HospitalSectorSnapshot) bool {
	hospitalID = strings.TrimSpace(hospitalID)
	if hospitalID == "" || snapshot == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		return false
	}
	if _, exists := c.entries[hospitalID]; !exists && len(c.entries) >= c.capacity {
		c.evictOldestLocked()
	}
	c.entries[hospitalID] = &snapshotCacheEntry{
		hospitalID: hospitalID,
		snapshot:   snapshot,
		fetchedAt:  c.now().UTC(),
	}
	return true
}

func (c *snapshotCache) evictOldestLocked() {
	var (
		oldestID string
		oldestAt time.Time
	)
	for id, entry := range c.entries {
		if oldestID == "" || entry.fetchedAt.Before(oldestAt) {
			oldestID, oldestAt = id, entry.fetchedAt
		}
	}
	delete(c.entries, oldestID)
}

func (c *snapshotCache) delete(hospitalID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	delete(c.entries, strings.TrimSpace(hospitalID))
}

func (c *snapshotCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.entries = make(map[string]*snapshotCacheEntry)
}

func (c *snapshotCache) hospitalIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.entries) == 0 {
		return nil
	}
	ids := make([]string, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	return ids
}

// clone copies the entry; the snapshot pointer is shared on purpose so repeated
// reads return the same value.
func (e *snapshotCacheEntry) clone() *snapshotCacheEntry {
	if e == nil {
		return nil
	}
	cloned := *e
	return &cloned
}
