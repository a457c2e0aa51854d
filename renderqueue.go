package arbor

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// Render queue bucketing. The top BucketBits of a sort key select the bucket:
// layer plus the blend bit.
const (
	BucketBits  = 8
	BucketCount = 1 << BucketBits
	bucketShift = 32 - BucketBits

	minBucketCap = 4
)

// RenderItem is one pending draw: a node, a snapshot of its camera-space
// transform, a submesh index, and the key it was queued under.
type RenderItem struct {
	Node     *Node
	ToCamera mgl32.Mat4
	SubMesh  int
	SortKey  uint32
}

type bucket struct {
	items []*RenderItem
}

// RenderQueue collects drawables during traversal and replays them sorted by
// key. Buckets and items are pooled across passes; every reservation goes
// through the allocator and may fail.
type RenderQueue struct {
	alloc Allocator

	buckets    [BucketCount]*bucket
	minBucket  int
	maxBucket  int
	queued     int
	free       []*RenderItem
	allocated  int
	reserved   int
	debugCheck bool

	root   *Node
	lights *LightManager
}

// NewRenderQueue returns an empty queue charging memory to alloc.
func NewRenderQueue(alloc Allocator) *RenderQueue {
	if alloc == nil {
		alloc = UnlimitedAllocator{}
	}
	return &RenderQueue{alloc: alloc, minBucket: BucketCount}
}

func (q *RenderQueue) reserve(bytes int) error {
	if err := q.alloc.Alloc(bytes); err != nil {
		return err
	}
	q.reserved += bytes
	return nil
}

// getItem pops an item from the free list, or allocates a new one.
func (q *RenderQueue) getItem() (*RenderItem, error) {
	if n := len(q.free); n > 0 {
		it := q.free[n-1]
		q.free[n-1] = nil
		q.free = q.free[:n-1]
		return it, nil
	}
	if err := q.reserve(sizeRenderItem); err != nil {
		return nil, fmt.Errorf("arbor: allocate render item: %w", err)
	}
	q.allocated++
	return &RenderItem{}, nil
}

// recycle returns an item to the free list.
func (q *RenderQueue) recycle(it *RenderItem) {
	*it = RenderItem{}
	q.free = append(q.free, it)
}

// growBucket doubles the capacity of b.
func (q *RenderQueue) growBucket(b *bucket) error {
	newCap := max(minBucketCap, 2*cap(b.items))
	if err := q.reserve((newCap - cap(b.items)) * sizePointer); err != nil {
		return fmt.Errorf("arbor: grow render bucket: %w", err)
	}
	grown := make([]*RenderItem, len(b.items), newCap)
	copy(grown, b.items)
	b.items = grown
	return nil
}

// InsertDrawable queues a draw of the given submesh of n with the given
// camera-space transform. The top BucketBits of sortKey select the bucket;
// inside a bucket the item lands at the first position whose key is
// greater than or equal to sortKey. On allocation failure the item is
// recycled, the queue is left as it was, and an error wrapping
// ErrOutOfMemory is returned.
func (q *RenderQueue) InsertDrawable(n *Node, toCamera mgl32.Mat4, subMesh int, sortKey uint32) error {
	it, err := q.getItem()
	if err != nil {
		return err
	}
	it.Node = n
	it.ToCamera = toCamera
	it.SubMesh = subMesh
	it.SortKey = sortKey

	idx := int(sortKey >> bucketShift)
	b := q.buckets[idx]
	if b == nil {
		if err := q.reserve(sizeBucketHeader); err != nil {
			q.recycle(it)
			return fmt.Errorf("arbor: allocate render bucket: %w", err)
		}
		b = &bucket{}
		q.buckets[idx] = b
	}
	if len(b.items) == cap(b.items) {
		if err := q.growBucket(b); err != nil {
			q.recycle(it)
			return err
		}
	}

	pos := sort.Search(len(b.items), func(i int) bool {
		return b.items[i].SortKey >= sortKey
	})
	b.items = append(b.items, nil)
	copy(b.items[pos+1:], b.items[pos:])
	b.items[pos] = it
	q.queued++

	if idx < q.minBucket {
		q.minBucket = idx
	}
	if idx > q.maxBucket {
		q.maxBucket = idx
	}
	if q.debugCheck {
		debugCheckBucketOrder(b.items, idx)
	}
	return nil
}

// Clear resets the pass state and the populated bucket range. Items still
// queued from an aborted pass go back to the free list; bucket storage and
// items are kept for reuse.
func (q *RenderQueue) Clear() {
	q.root = nil
	q.lights = nil
	for i := q.minBucket; i <= q.maxBucket && i < BucketCount; i++ {
		b := q.buckets[i]
		if b == nil {
			continue
		}
		for j, it := range b.items {
			q.recycle(it)
			b.items[j] = nil
		}
		b.items = b.items[:0]
	}
	q.queued = 0
	q.minBucket = BucketCount
	q.maxBucket = 0
}

// Commit draws every queued item in bucket order, then key order within a
// bucket. Each item is recycled after its draw and each visited bucket is
// truncated with its capacity kept. Draining always completes; the first
// error returned by draw is reported afterwards.
func (q *RenderQueue) Commit(draw func(it *RenderItem) error) error {
	if q.debugCheck {
		debugCheckBucketRange(q)
	}
	var firstErr error
	for i := q.minBucket; i <= q.maxBucket && i < BucketCount; i++ {
		b := q.buckets[i]
		if b == nil {
			continue
		}
		for j, it := range b.items {
			if firstErr == nil {
				if err := draw(it); err != nil {
					firstErr = err
				}
			}
			q.recycle(it)
			b.items[j] = nil
		}
		b.items = b.items[:0]
	}
	q.queued = 0
	q.minBucket = BucketCount
	q.maxBucket = 0
	return firstErr
}

// Release returns every byte the queue reserved to the allocator and drops
// its pools. The queue is empty and usable afterwards.
func (q *RenderQueue) Release() {
	q.alloc.Free(q.reserved)
	*q = RenderQueue{alloc: q.alloc, minBucket: BucketCount, debugCheck: q.debugCheck}
}

// Len returns the number of queued items.
func (q *RenderQueue) Len() int { return q.queued }

// Allocated returns the number of items ever allocated by the queue.
func (q *RenderQueue) Allocated() int { return q.allocated }

// FreeItems returns the number of items on the free list.
func (q *RenderQueue) FreeItems() int { return len(q.free) }

// BucketRange returns the inclusive range of populated buckets. The range is
// empty (min > max) when nothing is queued.
func (q *RenderQueue) BucketRange() (lo, hi int) {
	return q.minBucket, q.maxBucket
}

// Bucket returns the items queued in bucket i, in draw order. The returned
// slice MUST NOT be mutated.
func (q *RenderQueue) Bucket(i int) []*RenderItem {
	if b := q.buckets[i]; b != nil {
		return b.items
	}
	return nil
}

// BucketCapacity returns the backing capacity of bucket i, or -1 if the
// bucket was never allocated.
func (q *RenderQueue) BucketCapacity(i int) int {
	if b := q.buckets[i]; b != nil {
		return cap(b.items)
	}
	return -1
}

// Items appends every queued item to dst in draw order.
func (q *RenderQueue) Items(dst []*RenderItem) []*RenderItem {
	for i := q.minBucket; i <= q.maxBucket && i < BucketCount; i++ {
		if b := q.buckets[i]; b != nil {
			dst = append(dst, b.items...)
		}
	}
	return dst
}

// SetDebugChecks enables order and range verification on every insert and
// commit.
func (q *RenderQueue) SetDebugChecks(enabled bool) {
	q.debugCheck = enabled
}

// bucketOf returns the bucket a sort key falls into.
func bucketOf(key uint32) int {
	return int(key >> bucketShift)
}
