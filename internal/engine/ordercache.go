package engine

import (
	"github.com/hailam/onitama/internal/board"
)

// cacheEntry maps a position hash to the move that last improved alpha there.
type cacheEntry struct {
	Key  uint64
	Move board.Move
}

// OrderingCache is a move-ordering hint table indexed by position hash.
//
// Only the 64-bit hash is compared, never the position itself: two
// positions that collide share a hint. That is harmless because a hint is
// only used after it is found in the node's freshly generated move list.
// The cache is owned by one search thread and is not safe for concurrent use.
type OrderingCache struct {
	entries []cacheEntry
	size    uint64
	mask    uint64

	// Statistics
	hits   uint64
	probes uint64
}

const cacheEntrySize = 16

// NewOrderingCache creates a cache of roughly sizeMB megabytes.
func NewOrderingCache(sizeMB int) *OrderingCache {
	if sizeMB < 1 {
		sizeMB = 1
	}
	numEntries := roundDownToPowerOf2(uint64(sizeMB) * 1024 * 1024 / cacheEntrySize)

	oc := &OrderingCache{
		entries: make([]cacheEntry, numEntries),
		size:    numEntries,
		mask:    numEntries - 1,
	}
	oc.Clear()
	return oc
}

// roundDownToPowerOf2 rounds n down to the nearest power of 2.
func roundDownToPowerOf2(n uint64) uint64 {
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

// Probe returns the hint stored for hash.
func (oc *OrderingCache) Probe(hash uint64) (board.Move, bool) {
	oc.probes++
	e := oc.entries[hash&oc.mask]
	if e.Move != board.NoMove && e.Key == hash {
		oc.hits++
		return e.Move, true
	}
	return board.NoMove, false
}

// Store records m as the hint for hash, replacing whatever shared the slot.
func (oc *OrderingCache) Store(hash uint64, m board.Move) {
	oc.entries[hash&oc.mask] = cacheEntry{Key: hash, Move: m}
}

// Clear empties the cache.
func (oc *OrderingCache) Clear() {
	for i := range oc.entries {
		oc.entries[i] = cacheEntry{Move: board.NoMove}
	}
	oc.hits = 0
	oc.probes = 0
}

// HashFull returns the permille (parts per thousand) of the table that is used.
func (oc *OrderingCache) HashFull() int {
	used := 0
	sampleSize := 1000
	if uint64(sampleSize) > oc.size {
		sampleSize = int(oc.size)
	}
	for i := 0; i < sampleSize; i++ {
		if oc.entries[i].Move != board.NoMove {
			used++
		}
	}
	return used * 1000 / sampleSize
}

// HitRate returns the hit rate as a percentage.
func (oc *OrderingCache) HitRate() float64 {
	if oc.probes == 0 {
		return 0
	}
	return float64(oc.hits) / float64(oc.probes) * 100
}

// Size returns the number of entries in the table.
func (oc *OrderingCache) Size() uint64 {
	return oc.size
}
