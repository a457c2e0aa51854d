package arbor

import (
	"fmt"
	"time"
)

// Stats holds the counters of one render call. Timings are only measured in
// debug mode.
type Stats struct {
	Visited  int // setupRender calls
	BoxTests int // group bounding boxes tested against the frustum
	Culled   int // renderables skipped by culling
	Queued   int // items inserted into the render queue
	Lights   int // lights registered
	Drawn    int // backend draw calls

	SetupTime  time.Duration
	CommitTime time.Duration

	Cache CacheStats // cumulative transform cache counters
}

// log writes the stats of a finished pass at debug level.
func (s Stats) log(root *Node) {
	Logger().Debug("arbor: render pass",
		"root", root.Name,
		"visited", s.Visited,
		"box_tests", s.BoxTests,
		"culled", s.Culled,
		"queued", s.Queued,
		"lights", s.Lights,
		"drawn", s.Drawn,
		"setup", s.SetupTime,
		"commit", s.CommitTime,
		"composite_hits", s.Cache.CompositeHits,
		"path_hits", s.Cache.PathHits,
	)
}

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used in a tree operation. Only called in debug mode.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("arbor debug: %s on disposed node %q (ID was %d)", op, n.Name, n.ID))
	}
}

// debugCheckTreeDepth warns if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		Logger().Warn("arbor: tree depth exceeds threshold",
			"depth", depth, "threshold", debugMaxTreeDepth, "node", n.Name)
	}
}

// debugCheckChildCount warns if a node has more than 1000 children.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		Logger().Warn("arbor: child count exceeds threshold",
			"node", n.Name, "children", len(n.children), "threshold", debugMaxChildCount)
	}
}

// debugCheckBucketOrder panics if a bucket is not sorted by key or holds an
// item whose key selects another bucket.
func debugCheckBucketOrder(items []*RenderItem, idx int) {
	for i, it := range items {
		if bucketOf(it.SortKey) != idx {
			panic(fmt.Sprintf("arbor debug: key %#08x queued in bucket %d", it.SortKey, idx))
		}
		if i > 0 && items[i-1].SortKey > it.SortKey {
			panic(fmt.Sprintf("arbor debug: bucket %d out of order at %d (%#08x > %#08x)",
				idx, i, items[i-1].SortKey, it.SortKey))
		}
	}
}

// debugCheckBucketRange panics unless [minBucket, maxBucket] exactly bounds
// the non-empty buckets.
func debugCheckBucketRange(q *RenderQueue) {
	lo, hi := BucketCount, 0
	for i, b := range q.buckets {
		if b == nil || len(b.items) == 0 {
			continue
		}
		lo = min(lo, i)
		hi = max(hi, i)
	}
	if lo != q.minBucket || hi != q.maxBucket {
		panic(fmt.Sprintf("arbor debug: bucket range [%d, %d], populated [%d, %d]",
			q.minBucket, q.maxBucket, lo, hi))
	}
}
