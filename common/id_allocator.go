package common

import "sync/atomic"

// IDAllocator hands out monotonically increasing ids, starting at 1, for one editing session.
// It is owned by the scene and passed to entities at construction.
type IDAllocator struct {
	last atomic.Uint64
}

// NewIDAllocator creates an allocator whose first id is 1.
//
// Returns:
//   - *IDAllocator: the allocator
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

// Next returns the next unused id.
func (a *IDAllocator) Next() uint64 {
	return a.last.Add(1)
}

// Observe advances the allocator past id so later calls to Next never return it.
// It is used when loading entities that already carry ids.
//
// Parameters:
//   - id: an id already in use
func (a *IDAllocator) Observe(id uint64) {
	for {
		cur := a.last.Load()
		if id <= cur || a.last.CompareAndSwap(cur, id) {
			return
		}
	}
}

// Last returns the most recently issued or observed id.
func (a *IDAllocator) Last() uint64 {
	return a.last.Load()
}
