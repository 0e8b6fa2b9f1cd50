package arena

import (
	"errors"
	"unsafe"

	"go.uber.org/zap"

	"github.com/pavanmanishd/memkit/alloc"
)

// DefaultChunkSize is the default chunk size for new arenas (64 KiB).
const DefaultChunkSize = 1 << 16

// ErrReleased is the cause of allocation failures on a released arena.
var ErrReleased = errors.New("arena released")

// chunk represents a single memory chunk within an arena.
type chunk struct {
	buf    []byte  // backing memory
	offset uintptr // next free byte
	last   uintptr // start of the most recent allocation
}

// take bump-allocates n bytes at the aligned offset off.
func (c *chunk) take(off uintptr, n int) []byte {
	c.last = off
	c.offset = off + uintptr(n)
	return c.buf[off:c.offset:c.offset]
}

// isLast reports whether b is the most recent allocation in c.
func (c *chunk) isLast(b []byte) bool {
	if c.offset <= c.last || len(b) == 0 {
		return false
	}
	return unsafe.SliceData(b) == &c.buf[c.last] && c.last+uintptr(len(b)) == c.offset
}

// Arena is a chunked bump allocator implementing alloc.Allocator.
// Not goroutine-safe. Use SafeArena for concurrent access.
//
// Individual regions are never freed. Deallocate is a no-op; Release frees
// every chunk at once and Reset rewinds them for reuse.
type Arena struct {
	parent    alloc.Allocator
	chunks    []chunk
	cur       int // index of the chunk being bumped
	chunkSize int
	released  bool
}

var _ alloc.Allocator = (*Arena)(nil)

// NewArena creates an Arena backed by the Go heap.
// If chunkSize <= 0, DefaultChunkSize is used.
func NewArena(chunkSize int) *Arena {
	return NewArenaFrom(alloc.NewHeap(), chunkSize)
}

// NewArenaFrom creates an Arena whose chunks are obtained from parent.
// No chunk is allocated until the first request.
func NewArenaFrom(parent alloc.Allocator, chunkSize int) *Arena {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Arena{parent: parent, chunkSize: chunkSize}
}

// current returns the chunk being bumped, or nil if there is none.
func (a *Arena) current() *chunk {
	if len(a.chunks) == 0 {
		return nil
	}
	return &a.chunks[a.cur]
}

// Allocate returns n bytes from the current chunk, moving on to the next
// retained chunk or appending a new one when it has no room. The returned
// slice has cap == len so appends never spill into neighbouring
// allocations. Returns nil if n == 0.
func (a *Arena) Allocate(n int) ([]byte, error) {
	const op = "arena.Allocate"
	if n < 0 {
		return nil, alloc.AllocationFailed(op, n, nil)
	}
	if a.released {
		return nil, alloc.AllocationFailed(op, n, ErrReleased)
	}
	if n == 0 {
		return nil, nil
	}

	// Fast path: bump within the current chunk
	if c := a.current(); c != nil {
		off := alignPtr(c.offset)
		if off+uintptr(n) <= uintptr(len(c.buf)) {
			return c.take(off, n), nil
		}
	}
	return a.allocateSlow(n)
}

// allocateSlow handles allocation when the fast path fails. Chunks kept by
// Reset are reused before a new one is requested from the parent.
func (a *Arena) allocateSlow(n int) ([]byte, error) {
	if a.advance(n) {
		return a.current().take(0, n), nil
	}
	if err := a.grow(n); err != nil {
		return nil, alloc.AllocationFailed("arena.Allocate", n, err)
	}
	return a.current().take(0, n), nil
}

// advance moves cur through the chunks kept by Reset until one can hold n
// bytes from its start. It reports false when none is left.
func (a *Arena) advance(n int) bool {
	for a.cur+1 < len(a.chunks) {
		a.cur++
		if n <= len(a.chunks[a.cur].buf) {
			return true
		}
	}
	return false
}

// Reallocate extends b in place when it is the most recent allocation of
// the current chunk and the chunk has slack. Otherwise it copies into a fresh
// region and leaves the old one as unreclaimed slack.
func (a *Arena) Reallocate(b []byte, n int) ([]byte, error) {
	const op = "arena.Reallocate"
	if n < 0 {
		return nil, alloc.AllocationFailed(op, n, nil)
	}
	if a.released {
		return nil, alloc.AllocationFailed(op, n, ErrReleased)
	}
	if len(b) == 0 {
		return a.Allocate(n)
	}

	if c := a.current(); c != nil && c.isLast(b) && c.last+uintptr(n) <= uintptr(len(c.buf)) {
		c.offset = c.last + uintptr(n)
		return c.buf[c.last:c.offset:c.offset], nil
	}

	nb, err := a.Allocate(n)
	if err != nil {
		return nil, err
	}
	copy(nb, b)
	return nb, nil
}

// Deallocate is a no-op: an arena only releases memory all at once.
func (a *Arena) Deallocate(b []byte) error { return nil }

// EnsureCapacity ensures the current chunk has at least n free bytes,
// moving on to a retained chunk or growing the arena when it does not.
func (a *Arena) EnsureCapacity(n int) error {
	const op = "arena.EnsureCapacity"
	if a.released {
		return alloc.AllocationFailed(op, n, ErrReleased)
	}
	c := a.current()
	if c != nil && alignPtr(c.offset)+uintptr(n) <= uintptr(len(c.buf)) {
		return nil
	}
	if a.advance(n) {
		return nil
	}
	if err := a.grow(n); err != nil {
		return alloc.AllocationFailed(op, n, err)
	}
	return nil
}

// Reset rewinds every chunk but keeps them for reuse. All regions handed
// out before the call become invalid.
func (a *Arena) Reset() {
	for i := range a.chunks {
		a.chunks[i].offset = 0
		a.chunks[i].last = 0
	}
	a.cur = 0
}

// Release frees every chunk in one pass and makes the arena unusable.
// Every region obtained from the arena becomes invalid, and any later
// allocation fails with ErrReleased. Release must be called at most once,
// and only after the last use of the arena's memory.
func (a *Arena) Release() {
	for _, c := range a.chunks {
		_ = a.parent.Deallocate(c.buf)
	}
	a.chunks = nil
	a.cur = 0
	a.released = true
}

// Released reports whether Release has been called.
func (a *Arena) Released() bool { return a.released }

// grow appends a new chunk of at least min bytes.
func (a *Arena) grow(min int) error {
	size := a.chunkSize
	if min > size {
		size = min
	}
	buf, err := a.parent.Allocate(size)
	if err != nil {
		return err
	}
	a.chunks = append(a.chunks, chunk{buf: buf})
	a.cur = len(a.chunks) - 1
	alloc.Logger().Debug("arena chunk allocated",
		zap.Int("size", size),
		zap.Int("chunks", len(a.chunks)))
	return nil
}

// alignPtr aligns the offset up to pointer size alignment.
func alignPtr(off uintptr) uintptr {
	const align = unsafe.Sizeof(uintptr(0))
	mask := align - 1
	return (off + mask) & ^mask
}
