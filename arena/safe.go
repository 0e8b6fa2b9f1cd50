package arena

import (
	"sync"

	"github.com/pavanmanishd/memkit/alloc"
)

// SafeArena is a mutex-protected Arena for sharing one arena between
// goroutines. It implements alloc.Allocator. Containers built on it are
// still not safe for concurrent mutation; only the allocator calls are
// serialized.
type SafeArena struct {
	mu sync.Mutex
	a  *Arena
}

var _ alloc.Allocator = (*SafeArena)(nil)

// NewSafeArena creates a new thread-safe arena with the specified chunk size.
// If chunkSize <= 0, DefaultChunkSize is used.
func NewSafeArena(chunkSize int) *SafeArena {
	return &SafeArena{a: NewArena(chunkSize)}
}

// Allocate is Arena.Allocate under the lock.
func (s *SafeArena) Allocate(n int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Allocate(n)
}

// Reallocate is Arena.Reallocate under the lock.
func (s *SafeArena) Reallocate(b []byte, n int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Reallocate(b, n)
}

// Deallocate is a no-op, as for Arena.
func (s *SafeArena) Deallocate(b []byte) error { return nil }

// EnsureCapacity is Arena.EnsureCapacity under the lock.
func (s *SafeArena) EnsureCapacity(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.EnsureCapacity(n)
}

// Reset is Arena.Reset under the lock.
func (s *SafeArena) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.Reset()
}

// Release is Arena.Release under the lock.
func (s *SafeArena) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.Release()
}

// Metrics returns a snapshot of the underlying arena's statistics.
func (s *SafeArena) Metrics() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Metrics()
}
