package registry

import (
	"go.uber.org/atomic"
)

// idAllocator hands out strictly increasing identifiers starting at 1.
// next must be called with the owning registry's write lock held so that
// allocation and insertion form one step.
type idAllocator struct {
	last atomic.Uint64
}

func (a *idAllocator) next() uint64 {
	return a.last.Inc()
}

// current returns the most recently allocated id, or 0 if none was allocated.
func (a *idAllocator) current() uint64 {
	return a.last.Load()
}

func (a *idAllocator) reset(last uint64) {
	a.last.Store(last)
}
