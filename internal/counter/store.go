// Package counter implements the named, keyed counter store with optional
// expiry and "grace" semantics (SPEC_FULL.md §4.2, component C3). Its sweep-
// before-mutate shape and in-memory two-level map are grounded on the
// teacher's internal/janitor sweep loop and internal/store.Store
// composition (haukened-gone), adapted from a ticker-driven background sweep
// to a synchronous sweep performed inline by every mutating call, per the
// single-threaded execution model in SPEC_FULL.md §5.
package counter

import (
	"sync"
	"time"

	"github.com/stefal/pyruse-go/internal/domain"
	"github.com/stefal/pyruse-go/internal/pipeline"
)

// Entry identifies one counter: the counter's declared name plus the key
// Value distinguishing this particular tracked subject (SPEC_FULL.md §3
// CounterEntry).
type Entry struct {
	Name string
	Key  domain.Value
}

// Data is the mutable payload of a counter entry (SPEC_FULL.md §3
// CounterData): a non-negative count and an optional expiry.
type Data struct {
	Count  uint64
	Expiry *time.Time // nil means "no expiry"
}

// Metrics is the minimal counter-emission interface the store reports sweep
// and grace-block activity through (component C14). *pipeline.Metrics
// offers this as IncBy; cmd/pyruse adapts it to this interface.
type Metrics interface {
	Inc(name string, delta int64)
}

const (
	metricSwept      = pipeline.MetricCounterSweeps
	metricGraceBlock = pipeline.MetricCounterGraceBlock
)

// Store is the in-memory counter backend: a two-level map keyed first by
// counter name, then by the hash of the key Value (collisions resolved by
// an equality check, since Value is not itself a valid Go map key).
type Store struct {
	mu sync.Mutex

	clock   domain.Clock
	metrics Metrics
	byName  map[string]map[uint64][]keyedData

	// SweepOnRead additionally runs the sweep pass from Get, purely for
	// operator diagnostics (SPEC_FULL.md §4.8's counterSweepOnRead): it
	// makes an idle store's Get-driven introspection reflect expiries
	// promptly instead of waiting for the next mutating call. With it set,
	// an expired entry asked for through Get is dropped and reported
	// absent; without it, Get returns that entry with its past Expiry.
	SweepOnRead bool
}

type keyedData struct {
	key  domain.Value
	data Data
}

// New returns an empty Store. metrics may be nil (no-op reporting).
func New(clock domain.Clock, metrics Metrics) *Store {
	if clock == nil {
		clock = domain.RealClock{}
	}
	return &Store{
		clock:   clock,
		metrics: metrics,
		byName:  make(map[string]map[uint64][]keyedData),
	}
}

func (s *Store) emit(name string, delta int64) {
	if s.metrics != nil {
		s.metrics.Inc(name, delta)
	}
}

// sweep removes every entry across every counter name whose expiry is <= now.
// Must be called with s.mu held. Returns the number of entries removed.
func (s *Store) sweep(now time.Time) int {
	removed := 0
	for name, buckets := range s.byName {
		for h, list := range buckets {
			kept := list[:0]
			for _, kd := range list {
				if kd.data.Expiry != nil && !kd.data.Expiry.After(now) {
					removed++
					continue
				}
				kept = append(kept, kd)
			}
			if len(kept) == 0 {
				delete(buckets, h)
			} else {
				buckets[h] = kept
			}
		}
		if len(buckets) == 0 {
			delete(s.byName, name)
		}
	}
	return removed
}

// find returns the index of entry.Key within the bucket for entry.Name, or
// -1 if absent. Must be called with s.mu held.
func (s *Store) find(entry Entry) (bucket []keyedData, idx int) {
	byHash, ok := s.byName[entry.Name]
	if !ok {
		return nil, -1
	}
	h := entry.Key.Hash()
	list, ok := byHash[h]
	if !ok {
		return nil, -1
	}
	for i, kd := range list {
		if kd.key.Equal(entry.Key) {
			return list, i
		}
	}
	return list, -1
}

func (s *Store) write(entry Entry, data Data) {
	byHash, ok := s.byName[entry.Name]
	if !ok {
		byHash = make(map[uint64][]keyedData)
		s.byName[entry.Name] = byHash
	}
	h := entry.Key.Hash()
	list := byHash[h]
	for i, kd := range list {
		if kd.key.Equal(entry.Key) {
			list[i].data = data
			byHash[h] = list
			return
		}
	}
	byHash[h] = append(list, keyedData{key: entry.Key, data: data})
}

func (s *Store) erase(entry Entry) {
	byHash, ok := s.byName[entry.Name]
	if !ok {
		return
	}
	h := entry.Key.Hash()
	list := byHash[h]
	for i, kd := range list {
		if kd.key.Equal(entry.Key) {
			list = append(list[:i], list[i+1:]...)
			if len(list) == 0 {
				delete(byHash, h)
			} else {
				byHash[h] = list
			}
			if len(byHash) == 0 {
				delete(s.byName, entry.Name)
			}
			return
		}
	}
}

// inGrace reports whether data represents a counter in grace at instant now:
// count is zero and an expiry is present and still in the future.
func inGrace(data Data, now time.Time) bool {
	return data.Count == 0 && data.Expiry != nil && data.Expiry.After(now)
}

// Set unconditionally replaces the entry and returns the new count.
func (s *Store) Set(entry Entry, data Data) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	s.emit(metricSwept, int64(s.sweep(now)))
	s.write(entry, data)
	return data.Count
}

// Augment implements the augment operation from SPEC_FULL.md §4.2: if the
// entry is absent, it is inserted with data. If present and in grace, it is
// left untouched and 0 is returned. Otherwise the supplied count is added
// and the expiry becomes the later of the stored and supplied expiries
// (never shortened; a nil supplied expiry never shortens a stored one, and a
// nil stored expiry is always replaced by a supplied one).
func (s *Store) Augment(entry Entry, data Data) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	s.emit(metricSwept, int64(s.sweep(now)))

	list, idx := s.find(entry)
	if idx < 0 {
		s.write(entry, data)
		return data.Count
	}
	existing := list[idx].data
	if inGrace(existing, now) {
		s.emit(metricGraceBlock, 1)
		return 0
	}
	newCount := existing.Count + data.Count
	newExpiry := augmentedExpiry(existing.Expiry, data.Expiry)
	newData := Data{Count: newCount, Expiry: newExpiry}
	s.write(entry, newData)
	return newCount
}

// augmentedExpiry implements the "never shorten" expiry rule from
// SPEC_FULL.md §4.2 and §8: adopt the supplied expiry if none was stored, or
// if the supplied expiry is strictly later than the stored one; otherwise
// keep the stored expiry unchanged (a nil supplied expiry never erases an
// existing one).
func augmentedExpiry(stored, supplied *time.Time) *time.Time {
	if stored == nil {
		return supplied
	}
	if supplied != nil && supplied.After(*stored) {
		return supplied
	}
	return stored
}

// Reset implements the reset operation from SPEC_FULL.md §4.2. If
// graceUntil is non-nil, the entry becomes (0, graceUntil) unless an
// existing record already carries a later grace expiry. If graceUntil is
// nil, the entry is deleted unless it currently carries a future grace, in
// which case the grace is left untouched. Always returns 0.
func (s *Store) Reset(entry Entry, graceUntil *time.Time) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	s.emit(metricSwept, int64(s.sweep(now)))

	list, idx := s.find(entry)
	if graceUntil != nil {
		if idx >= 0 {
			existing := list[idx].data
			if existing.Expiry != nil && existing.Expiry.After(*graceUntil) {
				return 0
			}
		}
		s.write(entry, Data{Count: 0, Expiry: graceUntil})
		return 0
	}
	if idx >= 0 {
		existing := list[idx].data
		if inGrace(existing, now) {
			return 0
		}
	}
	s.erase(entry)
	return 0
}

// Get returns the current data for entry. Read-only inspection does not
// sweep by default, per SPEC_FULL.md §4.2; when SweepOnRead is set, Get
// also performs a sweep pass first (SPEC_FULL.md §4.8).
func (s *Store) Get(entry Entry) (Data, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SweepOnRead {
		s.emit(metricSwept, int64(s.sweep(s.clock.Now())))
	}
	list, idx := s.find(entry)
	if idx < 0 {
		return Data{}, false
	}
	return list[idx].data, true
}
