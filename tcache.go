package arbor

import (
	"math/bits"

	"github.com/go-gl/mathgl/mgl32"
)

// TCache is a best-effort transform cache. It is never a source of truth:
// both tables are fixed-size power-of-two arrays indexed by the top bits of
// a multiplicative hash, and a colliding insert silently overwrites the slot.
// Losing an entry only costs a recomputation.
//
// The composite table maps a node to its composed local transform. The path
// table maps an ordered (from, to) node pair to the transform between them.
// Any transform mutation evicts the node's composite entry and invalidates
// the entire path table, because an unknown number of cached paths may route
// through the node. Path invalidation is lazy: a flag makes lookups miss and
// the first CachePath afterwards clears the table.
type TCache struct {
	alloc Allocator

	composites []compositeEntry
	paths      []pathEntry

	compositeShift, pathShift uint

	pathsInvalid bool

	compositeHits, compositeMisses uint64
	pathHits, pathMisses           uint64
	pathFlushes                    uint64
}

type compositeEntry struct {
	key uint32 // node ID; 0 marks an empty slot
	m   mgl32.Mat4
}

type pathEntry struct {
	from, to uint32 // node IDs; from == 0 marks an empty slot
	m        mgl32.Mat4
}

// CacheStats is a snapshot of TCache counters.
type CacheStats struct {
	CompositeHits, CompositeMisses uint64
	PathHits, PathMisses           uint64
	PathFlushes                    uint64
}

// NewTCache allocates both tables through alloc. Sizes must be powers of two.
func NewTCache(alloc Allocator, compositeSize, pathSize int) (*TCache, error) {
	if !isPowerOfTwo(compositeSize) || !isPowerOfTwo(pathSize) {
		panic("arbor: transform cache sizes must be powers of two")
	}
	if alloc == nil {
		alloc = UnlimitedAllocator{}
	}
	if err := alloc.Alloc((compositeSize + pathSize) * sizeCacheEntry); err != nil {
		return nil, err
	}
	return &TCache{
		alloc:          alloc,
		composites:     make([]compositeEntry, compositeSize),
		paths:          make([]pathEntry, pathSize),
		compositeShift: uint(32 - bits.TrailingZeros(uint(compositeSize))),
		pathShift:      uint(32 - bits.TrailingZeros(uint(pathSize))),
	}, nil
}

// Release returns the table memory to the allocator.
func (tc *TCache) Release() {
	if tc.composites == nil {
		return
	}
	tc.alloc.Free((len(tc.composites) + len(tc.paths)) * sizeCacheEntry)
	tc.composites = nil
	tc.paths = nil
}

// hashID spreads a node ID with a multiplicative (Fibonacci) hash.
func hashID(id uint32) uint32 {
	return id * 2654435761
}

func hashPair(from, to uint32) uint32 {
	return hashID(from ^ (to*0x9E3779B9 + 0x7F4A7C15))
}

func (tc *TCache) compositeSlot(id uint32) *compositeEntry {
	return &tc.composites[hashID(id)>>tc.compositeShift]
}

func (tc *TCache) pathSlot(from, to uint32) *pathEntry {
	return &tc.paths[hashPair(from, to)>>tc.pathShift]
}

// Composite returns the cached composite transform of n, if present.
func (tc *TCache) Composite(n *Node) (mgl32.Mat4, bool) {
	e := tc.compositeSlot(n.ID)
	if e.key == n.ID && n.ID != 0 {
		tc.compositeHits++
		return e.m, true
	}
	tc.compositeMisses++
	return mgl32.Mat4{}, false
}

// CacheComposite stores m as the composite transform of n, evicting any
// colliding entry.
func (tc *TCache) CacheComposite(n *Node, m mgl32.Mat4) {
	if n.ID == 0 {
		return
	}
	e := tc.compositeSlot(n.ID)
	e.key = n.ID
	e.m = m
}

// InvalidateComposite evicts the composite entry of n if it is cached.
func (tc *TCache) InvalidateComposite(n *Node) {
	e := tc.compositeSlot(n.ID)
	if e.key == n.ID {
		e.key = 0
	}
}

// Path returns the cached transform from from's coordinates to to's
// coordinates. Always a miss while the path table is pending a flush.
func (tc *TCache) Path(from, to *Node) (mgl32.Mat4, bool) {
	if tc.pathsInvalid {
		tc.pathMisses++
		return mgl32.Mat4{}, false
	}
	e := tc.pathSlot(from.ID, to.ID)
	if e.from == from.ID && e.to == to.ID && from.ID != 0 {
		tc.pathHits++
		return e.m, true
	}
	tc.pathMisses++
	return mgl32.Mat4{}, false
}

// CachePath stores the transform between from and to. The first call after
// InvalidatePaths clears the whole table. Matrices without a unit bottom
// row are not cached.
func (tc *TCache) CachePath(from, to *Node, m mgl32.Mat4) {
	if tc.pathsInvalid {
		clear(tc.paths)
		tc.pathsInvalid = false
		tc.pathFlushes++
	}
	if from.ID == 0 || !isAffine(m) {
		return
	}
	e := tc.pathSlot(from.ID, to.ID)
	e.from = from.ID
	e.to = to.ID
	e.m = m
}

// InvalidatePaths marks every cached path as stale.
func (tc *TCache) InvalidatePaths() {
	tc.pathsInvalid = true
}

// Stats returns a snapshot of the cache counters.
func (tc *TCache) Stats() CacheStats {
	return CacheStats{
		CompositeHits:   tc.compositeHits,
		CompositeMisses: tc.compositeMisses,
		PathHits:        tc.pathHits,
		PathMisses:      tc.pathMisses,
		PathFlushes:     tc.pathFlushes,
	}
}

// isAffine reports whether m has a unit bottom row (0, 0, 0, 1).
func isAffine(m mgl32.Mat4) bool {
	return m[3] == 0 && m[7] == 0 && m[11] == 0 && m[15] == 1
}
