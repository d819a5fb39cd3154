// Package dnat implements the time-bounded DNAT mapping cache
// (SPEC_FULL.md §4.3, component C4): an append-only sliding window of
// observed source/internal/destination address-port tuples, purged of
// expired entries on every put and get. Grounded on the same sweep-on-
// mutate discipline as internal/counter, itself grounded on the teacher's
// internal/janitor (haukened-gone).
package dnat

import (
	"sync"
	"time"

	"github.com/stefal/pyruse-go/internal/domain"
)

// DefaultRetention is the default keep_until offset applied by the DNAT
// capture action when it does not specify keepSeconds (SPEC_FULL.md §4.3).
const DefaultRetention = 63 * time.Second

// Mapping is one observed DNAT tuple (SPEC_FULL.md §3). Each of the six
// address/port fields is optional.
type Mapping struct {
	SrcAddr, SrcPort           string
	InternalAddr, InternalPort string
	DestAddr, DestPort         string
	KeepUntil                  time.Time
}

func (m Mapping) hasSrcAddr() bool      { return m.SrcAddr != "" }
func (m Mapping) hasSrcPort() bool      { return m.SrcPort != "" }
func (m Mapping) hasInternalAddr() bool { return m.InternalAddr != "" }
func (m Mapping) hasInternalPort() bool { return m.InternalPort != "" }
func (m Mapping) hasDestAddr() bool     { return m.DestAddr != "" }
func (m Mapping) hasDestPort() bool     { return m.DestPort != "" }

// Cache is the in-memory append-only sliding window store.
type Cache struct {
	mu      sync.Mutex
	clock   domain.Clock
	entries []Mapping
}

// New returns an empty Cache. clock may be nil (defaults to RealClock).
func New(clock domain.Clock) *Cache {
	if clock == nil {
		clock = domain.RealClock{}
	}
	return &Cache{clock: clock}
}

// purge removes every entry whose KeepUntil <= now. Must be called with
// c.mu held.
func (c *Cache) purge(now time.Time) {
	kept := c.entries[:0]
	for _, e := range c.entries {
		if e.KeepUntil.After(now) {
			kept = append(kept, e)
		}
	}
	c.entries = kept
}

// Put purges expired mappings, then appends m. Duplicates are expected and
// intentional: each observation is retained independently until its own
// expiry (SPEC_FULL.md §4.3).
func (c *Cache) Put(m Mapping) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock.Now()
	c.purge(now)
	c.entries = append(c.entries, m)
}

// GetAll purges expired mappings, then returns the surviving entries in
// insertion order. The returned slice is a copy safe for the caller to
// range over without holding the cache's lock.
func (c *Cache) GetAll() []Mapping {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock.Now()
	c.purge(now)
	out := make([]Mapping, len(c.entries))
	copy(out, c.entries)
	return out
}
