package dashboard

import (
	"strconv"
	"time"

	"mycash/internal/cache"
	"mycash/internal/core"
)

// Memo caches snapshots keyed on the dataset version and the canonical
// filter key, so a ledger change makes every older entry unreachable.
type Memo struct {
	snapshots *cache.LRUCache[Snapshot]
}

func NewMemo(size int, ttl time.Duration) *Memo {
	return &Memo{snapshots: cache.NewLRUCache[Snapshot](size, ttl)}
}

func memoKey(version uint64, filters core.TransactionFilters) string {
	return "v" + strconv.FormatUint(version, 10) + "|" + filters.Key()
}

// Get returns a cached snapshot or builds, stores and returns a fresh one.
// The second result reports a cache hit.
func (m *Memo) Get(version uint64, filters core.TransactionFilters, build func() (Snapshot, error)) (Snapshot, bool, error) {
	key := memoKey(version, filters)
	if s, ok := m.snapshots.Get(key); ok {
		return s, true, nil
	}
	s, err := build()
	if err != nil {
		return Snapshot{}, false, err
	}
	m.snapshots.Set(key, s)
	return s, false, nil
}

// Invalidate drops every cached snapshot and returns how many there were.
func (m *Memo) Invalidate() int {
	return m.snapshots.Purge()
}

// Cache exposes the underlying cache for expiry sweeps and stats.
func (m *Memo) Cache() *cache.LRUCache[Snapshot] {
	return m.snapshots
}
