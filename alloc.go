package arbor

import "fmt"

// Allocator accounts for every allocation made by the render queue and the
// transform cache. Any call to Alloc may fail; callers abort the current
// operation and leave persistent scene state untouched.
type Allocator interface {
	Alloc(bytes int) error
	Free(bytes int)
}

// UnlimitedAllocator never fails.
type UnlimitedAllocator struct{}

// Alloc always succeeds.
func (UnlimitedAllocator) Alloc(int) error { return nil }

// Free is a no-op.
func (UnlimitedAllocator) Free(int) {}

// BudgetAllocator fails any allocation that would push the number of bytes
// in use past Limit.
type BudgetAllocator struct {
	Limit int

	used int
	peak int
}

// NewBudgetAllocator returns an allocator that refuses to exceed limit bytes.
func NewBudgetAllocator(limit int) *BudgetAllocator {
	return &BudgetAllocator{Limit: limit}
}

// Alloc reserves bytes, or returns ErrOutOfMemory if the budget is exhausted.
func (a *BudgetAllocator) Alloc(bytes int) error {
	if a.used+bytes > a.Limit {
		return fmt.Errorf("%w: %d bytes requested, %d of %d in use", ErrOutOfMemory, bytes, a.used, a.Limit)
	}
	a.used += bytes
	if a.used > a.peak {
		a.peak = a.used
	}
	return nil
}

// Free returns bytes to the budget.
func (a *BudgetAllocator) Free(bytes int) {
	a.used -= bytes
	if a.used < 0 {
		a.used = 0
	}
}

// Used returns the number of bytes currently reserved.
func (a *BudgetAllocator) Used() int { return a.used }

// Peak returns the high-water mark of reserved bytes.
func (a *BudgetAllocator) Peak() int { return a.peak }

// Approximate sizes charged to the allocator.
const (
	sizeRenderItem   = 96 // node pointer, 4x4 float32 matrix, index, key
	sizeBucketHeader = 24 // slice header
	sizePointer      = 8
	sizeCacheEntry   = 72 // key plus 4x4 float32 matrix
	sizeAABB         = 24
)
