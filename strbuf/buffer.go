// Package strbuf provides Buffer, a growable byte string backed by an
// alloc.Allocator, and View, a non-owning reference to bytes.
//
// A Buffer keeps a NUL byte right after its contents after every
// structural change (construction, push, pop, insert, erase, clear), so
// Data is usually terminated. Raw writes through Set do not re-terminate;
// use CStr when a terminated result is required.
//
// Buffers are not safe for concurrent use.
package strbuf

import (
	"bytes"
	"errors"
	"io"
	"math"
	"unsafe"

	"go.uber.org/zap"

	"github.com/pavanmanishd/memkit/alloc"
)

// DefaultCapacity is the smallest allocation a Buffer makes.
const DefaultCapacity = 16

// Buffer is an owning, growable byte string. len(data) is the capacity;
// data[size] is the terminating NUL.
type Buffer struct {
	a    alloc.Allocator
	data []byte
	size int
}

// New allocates a buffer holding a copy of v with capacity
// max(DefaultCapacity, 2*v.Len()).
func New(a alloc.Allocator, v View) (*Buffer, error) {
	n := v.Len()
	capacity := max(DefaultCapacity, 2*n)
	data, err := a.Allocate(capacity)
	if err != nil {
		alloc.Logger().Debug("strbuf allocation failed", zap.Int("bytes", capacity), zap.Error(err))
		return nil, err
	}
	copy(data, v.data)
	data[n] = 0
	return &Buffer{a: a, data: data, size: n}, nil
}

// Len returns the number of bytes, excluding the terminator.
func (b *Buffer) Len() int { return b.size }

// Cap returns the size of the allocation.
func (b *Buffer) Cap() int { return len(b.data) }

// Empty reports whether the buffer holds no bytes.
func (b *Buffer) Empty() bool { return b.size == 0 }

// Allocator returns the allocator backing the buffer.
func (b *Buffer) Allocator() alloc.Allocator { return b.a }

// terminate writes the NUL after the contents.
func (b *Buffer) terminate() {
	if b.size < len(b.data) {
		b.data[b.size] = 0
	}
}

// Reserve grows the allocation to at least n bytes. It never shrinks.
func (b *Buffer) Reserve(n int) error {
	if n <= len(b.data) {
		return nil
	}
	from := len(b.data)
	data, err := b.a.Reallocate(b.data, n)
	if err != nil {
		alloc.Logger().Debug("strbuf reallocation failed", zap.Int("bytes", n), zap.Error(err))
		return err
	}
	b.data = data
	alloc.Logger().Debug("strbuf grown", zap.Int("from", from), zap.Int("to", n))
	return nil
}

// ensure makes room for extra more bytes plus the terminator, doubling.
func (b *Buffer) ensure(op string, extra int) error {
	if extra > math.MaxInt/2-b.size-1 {
		return alloc.AllocationFailed(op, extra, alloc.ErrSizeOverflow)
	}
	need := b.size + extra
	if len(b.data) <= need {
		return b.Reserve(need * 2)
	}
	return nil
}

// At returns the byte at i.
func (b *Buffer) At(i int) (byte, error) {
	if i < 0 || i >= b.size {
		return 0, alloc.OutOfBounds("strbuf.At", i, b.size)
	}
	return b.data[i], nil
}

// Set overwrites the byte at i. It does not touch the terminator.
func (b *Buffer) Set(i int, c byte) error {
	if i < 0 || i >= b.size {
		return alloc.OutOfBounds("strbuf.Set", i, b.size)
	}
	b.data[i] = c
	return nil
}

// Front returns the first byte.
func (b *Buffer) Front() (byte, error) {
	if b.size == 0 {
		return 0, alloc.OutOfBounds("strbuf.Front", 0, 0)
	}
	return b.data[0], nil
}

// Back returns the last byte.
func (b *Buffer) Back() (byte, error) {
	if b.size == 0 {
		return 0, alloc.OutOfBounds("strbuf.Back", -1, 0)
	}
	return b.data[b.size-1], nil
}

// PushBack appends c.
func (b *Buffer) PushBack(c byte) error {
	if err := b.ensure("strbuf.PushBack", 1); err != nil {
		return err
	}
	b.data[b.size] = c
	b.size++
	b.terminate()
	return nil
}

// WriteByte implements io.ByteWriter.
func (b *Buffer) WriteByte(c byte) error { return b.PushBack(c) }

// PopBack removes the last byte.
func (b *Buffer) PopBack() error {
	if b.size == 0 {
		return alloc.OutOfBounds("strbuf.PopBack", -1, 0)
	}
	b.size--
	b.terminate()
	return nil
}

// AppendChar appends count copies of c.
func (b *Buffer) AppendChar(count int, c byte) error {
	if count < 0 {
		return alloc.InvalidRange("strbuf.AppendChar", b.size, count, b.size)
	}
	if err := b.ensure("strbuf.AppendChar", count); err != nil {
		return err
	}
	fill(b.data[b.size:b.size+count], c)
	b.size += count
	b.terminate()
	return nil
}

// AppendView appends the bytes of v.
func (b *Buffer) AppendView(v View) error {
	// Growth leaves the old region intact, so v stays readable even when it
	// aliases b.
	if err := b.ensure("strbuf.AppendView", v.Len()); err != nil {
		return err
	}
	copy(b.data[b.size:], v.data)
	b.size += v.Len()
	b.terminate()
	return nil
}

// Write implements io.Writer.
func (b *Buffer) Write(p []byte) (int, error) {
	if err := b.AppendView(View{data: p}); err != nil {
		return 0, err
	}
	return len(p), nil
}

// WriteString implements io.StringWriter.
func (b *Buffer) WriteString(s string) (int, error) {
	return b.Write(Lit(s).data)
}

// Remove drops the last count bytes.
func (b *Buffer) Remove(count int) error {
	if count < 0 || count > b.size {
		return alloc.InvalidRange("strbuf.Remove", b.size-count, count, b.size)
	}
	b.size -= count
	b.terminate()
	return nil
}

// Resize replaces the contents with count copies of c.
func (b *Buffer) Resize(count int, c byte) error {
	if count < 0 {
		return alloc.InvalidRange("strbuf.Resize", 0, count, b.size)
	}
	b.Clear()
	return b.AppendChar(count, c)
}

// Insert opens a gap of count bytes at index, shifting [index, Len) right,
// and fills the gap with c.
func (b *Buffer) Insert(index, count int, c byte) error {
	const op = "strbuf.Insert"
	if index < 0 || index > b.size {
		return alloc.OutOfBounds(op, index, b.size)
	}
	if count < 0 {
		return alloc.InvalidRange(op, index, count, b.size)
	}
	if count == 0 {
		return nil
	}
	if err := b.ensure(op, count); err != nil {
		return err
	}
	copy(b.data[index+count:b.size+count], b.data[index:b.size])
	fill(b.data[index:index+count], c)
	b.size += count
	b.terminate()
	return nil
}

// Erase removes count bytes starting at index.
func (b *Buffer) Erase(index, count int) error {
	const op = "strbuf.Erase"
	if index < 0 || index > b.size {
		return alloc.OutOfBounds(op, index, b.size)
	}
	if count < 0 || index+count > b.size {
		return alloc.InvalidRange(op, index, count, b.size)
	}
	copy(b.data[index:], b.data[index+count:b.size])
	b.size -= count
	b.terminate()
	return nil
}

// Replace overwrites the count bytes at index with v, growing or shrinking
// the buffer when v.Len() differs from count. An empty target range is an
// error.
func (b *Buffer) Replace(index, count int, v View) error {
	const op = "strbuf.Replace"
	if index < 0 || index > b.size {
		return alloc.OutOfBounds(op, index, b.size)
	}
	if count <= 0 || index+count > b.size {
		return alloc.InvalidRange(op, index, count, b.size)
	}
	v = b.detach(v)
	switch n := v.Len(); {
	case n > count:
		if err := b.Insert(index, n-count, ' '); err != nil {
			return err
		}
	case n < count:
		if err := b.Erase(index, count-n); err != nil {
			return err
		}
	}
	copy(b.data[index:], v.data)
	return nil
}

// Assign replaces the contents with v.
func (b *Buffer) Assign(v View) error {
	v = b.detach(v)
	b.Clear()
	return b.AppendView(v)
}

// Substr returns a new buffer allocated from a holding [index, index+count).
func (b *Buffer) Substr(a alloc.Allocator, index, count int) (*Buffer, error) {
	if index < 0 || count < 0 || index > b.size || index+count > b.size {
		return nil, alloc.InvalidRange("strbuf.Substr", index, count, b.size)
	}
	return New(a, View{data: b.data[index : index+count]})
}

// Clear empties the buffer and keeps the storage.
func (b *Buffer) Clear() {
	b.size = 0
	b.terminate()
}

// Swap exchanges the contents of b and other in O(1).
func (b *Buffer) Swap(other *Buffer) {
	*b, *other = *other, *b
}

// Data returns the contents. The byte after them is NUL unless the last
// change was a Set.
func (b *Buffer) Data() []byte {
	return b.data[:b.size]
}

// CStr writes the terminator and returns the contents followed by it. A
// freed buffer gets fresh storage first; nil is returned only if that
// allocation fails.
func (b *Buffer) CStr() []byte {
	if b.size >= len(b.data) {
		if err := b.Reserve(max(DefaultCapacity, b.size+1)); err != nil {
			return nil
		}
	}
	b.data[b.size] = 0
	return b.data[:b.size+1]
}

// String returns a copy of the contents.
func (b *Buffer) String() string {
	return string(b.data[:b.size])
}

// View returns a view of the contents.
func (b *Buffer) View() View { return FromBuffer(b) }

// ReadLine appends bytes from r up to and excluding the next '\n', which is
// consumed. It returns io.EOF only when r was exhausted before any byte was
// read; a final unterminated line is returned with a nil error.
func (b *Buffer) ReadLine(r io.ByteReader) error {
	read := false
	for {
		c, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) && read {
				return nil
			}
			return err
		}
		read = true
		if c == '\n' {
			return nil
		}
		if err := b.PushBack(c); err != nil {
			return err
		}
	}
}

// ReadAll appends bytes from r until end of stream.
func (b *Buffer) ReadAll(r io.ByteReader) error {
	for {
		c, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if err := b.PushBack(c); err != nil {
			return err
		}
	}
}

// Free hands the storage back to the allocator and leaves the buffer empty.
func (b *Buffer) Free() error {
	data := b.data
	b.data, b.size = nil, 0
	if data == nil {
		return nil
	}
	return b.a.Deallocate(data)
}

// detach copies v when it points into b's own storage, so that shifting b
// cannot change what v reads.
func (b *Buffer) detach(v View) View {
	if overlaps(v.data, b.data) {
		return View{data: bytes.Clone(v.data)}
	}
	return v
}

func overlaps(p, q []byte) bool {
	if len(p) == 0 || len(q) == 0 {
		return false
	}
	ps := uintptr(unsafe.Pointer(unsafe.SliceData(p)))
	qs := uintptr(unsafe.Pointer(unsafe.SliceData(q)))
	return ps < qs+uintptr(len(q)) && qs < ps+uintptr(len(p))
}

func fill(p []byte, c byte) {
	for i := range p {
		p[i] = c
	}
}
