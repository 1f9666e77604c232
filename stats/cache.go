/*
cache.go - Statistics result memoization

PURPOSE:
  Memoizes full Statistics objects keyed by the dataset identity (the
  sorted reservation id list) plus the query parameters. The cache is
  owned by the Engine instance — construct, query, clear — never hidden
  module-level state.

INVALIDATION:
  Explicit only: timeframe change produces a different key, and dataset
  reset or manual refresh call Clear. There is no time-based expiry.
*/
package stats

import (
	"fmt"
	"hash/fnv"
	"sort"
	"sync"

	"github.com/fieldlab/reservation-engine/reserve"
)

// ResultCache memoizes statistics per (dataset, parameters) key. Safe for
// use from HTTP handlers; the core computation itself never blocks on it
// mid-pass.
type ResultCache struct {
	mu      sync.RWMutex
	entries map[uint64]*Statistics
}

func NewResultCache() *ResultCache {
	return &ResultCache{entries: make(map[uint64]*Statistics)}
}

// Key hashes the sorted reservation id list together with the query
// parameters. Input order of the batch does not affect the key.
func (c *ResultCache) Key(rs []reserve.Reservation, monthsBack int) uint64 {
	ids := make([]string, len(rs))
	for i, r := range rs {
		ids[i] = string(r.ID)
	}
	sort.Strings(ids)

	h := fnv.New64a()
	for _, id := range ids {
		h.Write([]byte(id))
		h.Write([]byte{0})
	}
	fmt.Fprintf(h, "months=%d", monthsBack)
	return h.Sum64()
}

func (c *ResultCache) Get(rs []reserve.Reservation, monthsBack int) (*Statistics, bool) {
	key := c.Key(rs, monthsBack)
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.entries[key]
	return s, ok
}

func (c *ResultCache) Put(rs []reserve.Reservation, monthsBack int, s *Statistics) {
	key := c.Key(rs, monthsBack)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = s
}

// Clear drops all entries.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[uint64]*Statistics)
}

// Len reports the number of memoized results.
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
