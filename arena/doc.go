// Package arena implements a chunked bump allocator (memory arena) that
// satisfies alloc.Allocator.
//
// # Overview
//
// An arena hands out regions from large chunks by bumping an offset. It
// never frees individual regions: everything is reclaimed at once, either
// by Reset (chunks kept for reuse) or by Release (chunks returned to the
// parent allocator). This makes it a good backing store for containers
// whose lifetime matches a request or a batch job.
//
// # Basic Usage
//
//	a := arena.NewArena(0) // default chunk size, backed by the Go heap
//	defer a.Release()      // whole-arena release
//
//	buf, err := a.Allocate(1024)
//	buf, err = a.Reallocate(buf, 2048) // grows in place when buf is the last region
//
//	arr, err := dynarr.New[int](a, 0)
//	s, err := strbuf.New(a, strbuf.Lit("hello"))
//
// # Memory Layout
//
// Chunks are obtained lazily from the parent allocator, DefaultChunkSize
// bytes each unless a single request is larger. Offsets within a chunk are
// aligned to the pointer size, so two back-to-back allocations whose first
// size is a multiple of the pointer size are exactly that many bytes apart.
//
// # Reallocation
//
// Reallocating the most recent region of the current chunk extends it in
// place while the chunk has slack. Any other reallocation copies into a
// new region and leaves the old bytes behind until the next Reset or
// Release.
//
// # Thread Safety
//
// Arena is not thread-safe. SafeArena serializes allocator calls with a
// mutex for the rare case where one arena is shared between goroutines.
//
// # Important Notes
//
//   - Regions are only valid until Reset or Release
//   - Deallocate is a no-op; Release is the only way to free memory
//   - After Release every allocation fails with ErrReleased
//   - Memory returned by Allocate is not zeroed after a Reset
package arena
