package strbuf

import (
	"bytes"
	"unsafe"

	"github.com/pavanmanishd/memkit/alloc"
)

// View is a non-owning, read-only reference to a run of bytes: a string
// literal, a Buffer's contents, or a caller-supplied byte range. A View
// never allocates, mutates or frees its target, and is only valid while the
// target is alive and unresized. The zero View is empty.
type View struct {
	data []byte
}

// Lit returns a zero-copy view of s. The bytes must not be modified
// through Bytes.
func Lit(s string) View {
	return View{data: unsafe.Slice(unsafe.StringData(s), len(s))}
}

// FromBytes returns a view of p limited to max bytes, stopping early at the
// first NUL. This wraps fixed-size, possibly unterminated character arrays.
func FromBytes(p []byte, max int) View {
	if max > len(p) {
		max = len(p)
	}
	if max < 0 {
		max = 0
	}
	p = p[:max]
	if i := bytes.IndexByte(p, 0); i >= 0 {
		p = p[:i]
	}
	return View{data: p}
}

// FromBuffer snapshots b's current contents. Any later mutation of b that
// resizes or reallocates it invalidates the view.
func FromBuffer(b *Buffer) View {
	return View{data: b.Data()}
}

// Len returns the number of bytes in the view.
func (v View) Len() int { return len(v.data) }

// Empty reports whether the view has no bytes.
func (v View) Empty() bool { return len(v.data) == 0 }

// At returns the byte at i.
func (v View) At(i int) (byte, error) {
	if i < 0 || i >= len(v.data) {
		return 0, alloc.OutOfBounds("strbuf.View.At", i, len(v.data))
	}
	return v.data[i], nil
}

// Front returns the first byte.
func (v View) Front() (byte, error) {
	if len(v.data) == 0 {
		return 0, alloc.OutOfBounds("strbuf.View.Front", 0, 0)
	}
	return v.data[0], nil
}

// Back returns the last byte.
func (v View) Back() (byte, error) {
	if len(v.data) == 0 {
		return 0, alloc.OutOfBounds("strbuf.View.Back", -1, 0)
	}
	return v.data[len(v.data)-1], nil
}

// Bytes returns the viewed bytes without copying. Callers must not modify
// them.
func (v View) Bytes() []byte { return v.data }

// String returns a copy of the viewed bytes as a string.
func (v View) String() string { return string(v.data) }

// Equal reports whether v and o hold the same bytes.
func (v View) Equal(o View) bool { return bytes.Equal(v.data, o.data) }
