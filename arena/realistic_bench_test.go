package arena_test

import (
	"runtime"
	"testing"

	"github.com/pavanmanishd/memkit/alloc"
	"github.com/pavanmanishd/memkit/arena"
	"github.com/pavanmanishd/memkit/dynarr"
	"github.com/pavanmanishd/memkit/strbuf"
)

// request builds the containers a short-lived text job would: a line buffer
// grown byte by byte and an array of field offsets.
func request(a alloc.Allocator) {
	line, _ := strbuf.New(a, strbuf.View{})
	offsets, _ := dynarr.New[int32](a, 0)
	for j := 0; j < 200; j++ {
		if j%8 == 0 {
			offsets.PushBack(int32(line.Len()))
			line.PushBack(',')
			continue
		}
		line.PushBack('a' + byte(j%26))
	}
	line.Free()
	offsets.Free()
}

// BenchmarkRealisticUsage compares per-request container churn on an arena
// that is reset between requests with the same work on the Go heap.
func BenchmarkRealisticUsage(b *testing.B) {
	b.Run("Containers/Arena", func(b *testing.B) {
		a := arena.NewArena(64 * 1024)
		defer a.Release()
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			request(a)
			a.Reset()
		}
	})

	b.Run("Containers/Heap", func(b *testing.B) {
		h := alloc.NewHeap()
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			request(h)
			if i%10 == 0 {
				runtime.GC()
			}
		}
	})

	type record struct {
		ID   int64
		Data [56]byte
	}

	b.Run("Records/Arena", func(b *testing.B) {
		a := arena.NewArena(64 * 1024)
		defer a.Release()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			for j := 0; j < 50; j++ {
				r, _ := alloc.New[record](a)
				r.ID = int64(j)
			}
			a.Reset()
		}
	})

	b.Run("Records/Builtin", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			rs := make([]*record, 50)
			for j := range rs {
				rs[j] = &record{ID: int64(j)}
			}
			if i%10 == 0 {
				runtime.GC()
			}
		}
	})
}
