package arbor

import "fmt"

// Engine owns the state shared by every node and render context created
// from it: the allocator, the transform cache, and the configuration.
// Nodes from different engines cannot be mixed in one tree.
//
// An Engine and everything created from it assume exclusive, sequential
// access; callers serialize entry points themselves.
type Engine struct {
	cfg   Config
	alloc Allocator
	tc    *TCache
	debug bool
}

// NewEngine validates cfg and allocates the transform cache. When
// cfg.MemoryLimit is non-zero all queue and cache memory is charged to a
// BudgetAllocator with that limit.
func NewEngine(cfg Config) (*Engine, error) {
	var alloc Allocator = UnlimitedAllocator{}
	if cfg.MemoryLimit > 0 {
		alloc = NewBudgetAllocator(cfg.MemoryLimit)
	}
	return NewEngineWithAllocator(cfg, alloc)
}

// NewEngineWithAllocator is like NewEngine but charges memory to alloc.
func NewEngineWithAllocator(cfg Config, alloc Allocator) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if alloc == nil {
		alloc = UnlimitedAllocator{}
	}
	tc, err := NewTCache(alloc, cfg.CompositeCacheSize, cfg.PathCacheSize)
	if err != nil {
		return nil, fmt.Errorf("arbor: create transform cache: %w", err)
	}
	e := &Engine{cfg: cfg, alloc: alloc, tc: tc, debug: cfg.Debug}
	Logger().Info("arbor: engine created",
		"composite_cache", cfg.CompositeCacheSize,
		"path_cache", cfg.PathCacheSize,
		"memory_limit", cfg.MemoryLimit)
	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// Allocator returns the allocator charged for queue and cache memory.
func (e *Engine) Allocator() Allocator { return e.alloc }

// TransformCache returns the engine's transform cache.
func (e *Engine) TransformCache() *TCache { return e.tc }

// SetDebugMode enables or disables invariant checks. When enabled, queue
// order, bucket ranges and cull masks are verified and violations panic;
// tree depth and child count warnings are logged.
func (e *Engine) SetDebugMode(enabled bool) {
	e.debug = enabled
}

// DebugMode reports whether invariant checks are enabled.
func (e *Engine) DebugMode() bool { return e.debug }

// Close releases the transform cache memory. The engine must not be used
// afterwards.
func (e *Engine) Close() {
	e.tc.Release()
}

// transformChanged applies the cache invalidation contract for a node whose
// local transform changed: evict its composite and invalidate every path.
func (e *Engine) transformChanged(n *Node) {
	e.tc.InvalidateComposite(n)
	e.tc.InvalidatePaths()
}
