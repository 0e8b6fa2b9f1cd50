// Package alloc defines the pluggable allocator capability shared by every
// container in memkit, together with the reference backends.
//
// An Allocator hands out byte regions. The source of those regions is up to
// the implementation: the Go heap (Heap), a bump arena (see package arena),
// or a wrapper that enforces a byte budget (Budget). Containers receive an
// Allocator at construction and route every growth through it.
//
// The context handle of a classic C allocator interface is the method
// receiver here; it is passed implicitly to every call.
package alloc

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
)

// Allocator is the capability every container is constructed with.
//
// Allocate returns a region of exactly n bytes whose contents are
// unspecified. Reallocate returns a region of n bytes whose first
// min(len(b), n) bytes equal b; len(b) is taken as the old size, so b must be
// passed exactly as it was returned. Deallocate releases a region obtained
// from the same allocator instance.
//
// Failures are reported as *Error values of KindAllocation.
type Allocator interface {
	Allocate(n int) ([]byte, error)
	Reallocate(b []byte, n int) ([]byte, error)
	Deallocate(b []byte) error
}

// Heap passes every request through to the Go runtime allocator.
// Deallocate is a no-op; the garbage collector reclaims regions once they
// are unreachable. Heap is safe for concurrent use.
type Heap struct {
	allocs   atomic.Int64
	reallocs atomic.Int64
	bytes    atomic.Int64
}

// NewHeap returns a heap allocator.
func NewHeap() *Heap { return &Heap{} }

// Allocate returns n fresh bytes.
func (h *Heap) Allocate(n int) ([]byte, error) {
	if n < 0 {
		return nil, AllocationFailed("alloc.Heap.Allocate", n, nil)
	}
	b, err := makeBytes("alloc.Heap.Allocate", n)
	if err != nil {
		return nil, err
	}
	h.allocs.Add(1)
	h.bytes.Add(int64(n))
	return b, nil
}

// Reallocate returns a region of n bytes holding the prefix of b.
func (h *Heap) Reallocate(b []byte, n int) ([]byte, error) {
	if n < 0 {
		return nil, AllocationFailed("alloc.Heap.Reallocate", n, nil)
	}
	if n <= cap(b) {
		h.reallocs.Add(1)
		return b[:n], nil
	}
	nb, err := makeBytes("alloc.Heap.Reallocate", n)
	if err != nil {
		return nil, err
	}
	h.reallocs.Add(1)
	h.bytes.Add(int64(n))
	copy(nb, b)
	return nb, nil
}

// makeBytes is make([]byte, n) with the runtime's length check reported as
// an allocation failure instead of a panic.
func makeBytes(op string, n int) (b []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			cause, ok := r.(error)
			if !ok {
				cause = fmt.Errorf("%v", r)
			}
			b, err = nil, AllocationFailed(op, n, cause)
		}
	}()
	return make([]byte, n), nil
}

// Deallocate does nothing.
func (h *Heap) Deallocate(b []byte) error { return nil }

// Stats reports how many allocations and reallocations were served and how
// many bytes were requested from the runtime in total.
func (h *Heap) Stats() (allocs, reallocs, bytes int64) {
	return h.allocs.Load(), h.reallocs.Load(), h.bytes.Load()
}

// Budget wraps another allocator and refuses any request that would push
// the number of outstanding bytes above a fixed limit. It is not safe for
// concurrent use.
type Budget struct {
	parent Allocator
	limit  int
	inUse  int
}

// NewBudget returns a Budget over parent allowing at most limit outstanding
// bytes.
func NewBudget(parent Allocator, limit int) *Budget {
	return &Budget{parent: parent, limit: limit}
}

// Allocate forwards to the parent allocator if n bytes fit in the budget.
func (b *Budget) Allocate(n int) ([]byte, error) {
	const op = "alloc.Budget.Allocate"
	if n < 0 {
		return nil, AllocationFailed(op, n, nil)
	}
	if b.inUse+n > b.limit {
		Logger().Debug("budget exhausted",
			zap.Int("requested", n),
			zap.Int("in_use", b.inUse),
			zap.Int("limit", b.limit))
		return nil, AllocationFailed(op, n, ErrBudgetExceeded)
	}
	p, err := b.parent.Allocate(n)
	if err != nil {
		return nil, err
	}
	b.inUse += n
	return p, nil
}

// Reallocate forwards to the parent allocator if the size change fits in
// the budget.
func (b *Budget) Reallocate(p []byte, n int) ([]byte, error) {
	const op = "alloc.Budget.Reallocate"
	if n < 0 {
		return nil, AllocationFailed(op, n, nil)
	}
	delta := n - len(p)
	if b.inUse+delta > b.limit {
		Logger().Debug("budget exhausted",
			zap.Int("requested", n),
			zap.Int("in_use", b.inUse),
			zap.Int("limit", b.limit))
		return nil, AllocationFailed(op, n, ErrBudgetExceeded)
	}
	np, err := b.parent.Reallocate(p, n)
	if err != nil {
		return nil, err
	}
	b.inUse += delta
	return np, nil
}

// Deallocate returns len(p) bytes to the budget and forwards to the parent.
func (b *Budget) Deallocate(p []byte) error {
	b.inUse -= len(p)
	if b.inUse < 0 {
		b.inUse = 0
	}
	return b.parent.Deallocate(p)
}

// InUse returns the number of outstanding bytes.
func (b *Budget) InUse() int { return b.inUse }

// Limit returns the configured limit.
func (b *Budget) Limit() int { return b.limit }
