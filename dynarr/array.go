// Package dynarr provides Array, a generic growable array whose header and
// element storage share a single allocation obtained from an
// alloc.Allocator.
//
// The allocation is laid out as
//
//	| size | capacity | elemSize | pad | elem 0 | elem 1 | ... | elem cap-1 |
//
// with the element storage starting at a fixed offset: the header size
// rounded up to the element alignment. Because header and storage are
// never split, reallocating the region moves both together.
//
// Element types must be free of Go pointers, since allocator memory is not
// scanned by the garbage collector. New rejects other types.
//
// An Array is not safe for concurrent use.
package dynarr

import (
	"iter"
	"math"
	"reflect"
	"unsafe"

	"go.uber.org/zap"

	"github.com/pavanmanishd/memkit/alloc"
)

// header sits at offset 0 of every array allocation.
type header struct {
	size     int
	capacity int
	elemSize int
}

const headerSize = unsafe.Sizeof(header{})

// Array is a growable sequence of T. The zero value is not usable; create
// arrays with New.
type Array[T any] struct {
	a    alloc.Allocator
	raw  []byte // header followed by element storage
	data []T    // capacity elements aliasing raw[dataOffset:]
}

// dataOffset returns the offset of element 0 within the allocation.
func dataOffset[T any]() int {
	var zero T
	align := unsafe.Alignof(zero)
	return int((headerSize + align - 1) &^ (align - 1))
}

func elemSize[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// byteSize returns the allocation size for capacity elements, or an
// allocation error when it does not fit in an int.
func byteSize[T any](op string, capacity int) (int, error) {
	if es := elemSize[T](); es > 0 && capacity > (math.MaxInt-dataOffset[T]())/es {
		return 0, alloc.AllocationFailed(op, capacity, alloc.ErrSizeOverflow)
	}
	return dataOffset[T]() + capacity*elemSize[T](), nil
}

// New allocates an array of size zeroed elements with room for 2*size.
func New[T any](a alloc.Allocator, size int) (*Array[T], error) {
	const op = "dynarr.New"
	if !alloc.PointerFree[T]() {
		return nil, alloc.UnsupportedType(op, reflect.TypeFor[T]().String())
	}
	if size < 0 {
		return nil, alloc.InvalidRange(op, 0, size, 0)
	}
	if size > math.MaxInt/2 {
		return nil, alloc.AllocationFailed(op, size, alloc.ErrSizeOverflow)
	}
	arr := &Array[T]{a: a}
	if err := arr.allocate(op, size*2); err != nil {
		return nil, err
	}
	clear(arr.data[:size])
	arr.header().size = size
	return arr, nil
}

// allocate replaces the array's storage with a fresh allocation of the
// given capacity and an empty header.
func (arr *Array[T]) allocate(op string, capacity int) error {
	n, err := byteSize[T](op, capacity)
	if err != nil {
		return err
	}
	raw, err := arr.a.Allocate(n)
	if err != nil {
		alloc.Logger().Debug("dynarr allocation failed", zap.String("op", op), zap.Int("bytes", n), zap.Error(err))
		return err
	}
	*(*header)(unsafe.Pointer(unsafe.SliceData(raw))) = header{capacity: capacity, elemSize: elemSize[T]()}
	arr.bind(raw)
	return nil
}

// bind points the array at raw, whose header is already valid.
func (arr *Array[T]) bind(raw []byte) {
	arr.raw = raw
	arr.data = alloc.Cast[T](raw[dataOffset[T]():], arr.header().capacity)
}

// header returns the header stored at the front of the allocation.
func (arr *Array[T]) header() *header {
	return (*header)(unsafe.Pointer(unsafe.SliceData(arr.raw)))
}

// Len returns the number of elements.
func (arr *Array[T]) Len() int {
	if arr.raw == nil {
		return 0
	}
	return arr.header().size
}

// Cap returns the number of elements the current allocation can hold.
func (arr *Array[T]) Cap() int {
	if arr.raw == nil {
		return 0
	}
	return arr.header().capacity
}

// ElemSize returns the size in bytes of one element.
func (arr *Array[T]) ElemSize() int {
	if arr.raw == nil {
		return elemSize[T]()
	}
	return arr.header().elemSize
}

// Empty reports whether the array has no elements.
func (arr *Array[T]) Empty() bool { return arr.Len() == 0 }

// Allocator returns the allocator backing the array.
func (arr *Array[T]) Allocator() alloc.Allocator { return arr.a }

// At returns the element at i.
func (arr *Array[T]) At(i int) (T, error) {
	if i < 0 || i >= arr.Len() {
		var zero T
		return zero, alloc.OutOfBounds("dynarr.At", i, arr.Len())
	}
	return arr.data[i], nil
}

// Set overwrites the element at i.
func (arr *Array[T]) Set(i int, v T) error {
	if i < 0 || i >= arr.Len() {
		return alloc.OutOfBounds("dynarr.Set", i, arr.Len())
	}
	arr.data[i] = v
	return nil
}

// Front returns the first element.
func (arr *Array[T]) Front() (T, error) {
	if arr.Empty() {
		var zero T
		return zero, alloc.OutOfBounds("dynarr.Front", 0, 0)
	}
	return arr.data[0], nil
}

// Back returns the last element.
func (arr *Array[T]) Back() (T, error) {
	n := arr.Len()
	if n == 0 {
		var zero T
		return zero, alloc.OutOfBounds("dynarr.Back", -1, 0)
	}
	return arr.data[n-1], nil
}

// Reserve grows the allocation to hold at least n elements. It never
// shrinks.
func (arr *Array[T]) Reserve(n int) error {
	const op = "dynarr.Reserve"
	if n <= arr.Cap() {
		return nil
	}
	if arr.raw == nil {
		return arr.allocate(op, n)
	}
	from := arr.Cap()
	size, err := byteSize[T](op, n)
	if err != nil {
		return err
	}
	raw, err := arr.a.Reallocate(arr.raw, size)
	if err != nil {
		alloc.Logger().Debug("dynarr reallocation failed", zap.Int("bytes", size), zap.Error(err))
		return err
	}
	(*header)(unsafe.Pointer(unsafe.SliceData(raw))).capacity = n
	arr.bind(raw)
	alloc.Logger().Debug("dynarr grown", zap.Int("from", from), zap.Int("to", n))
	return nil
}

// ShrinkToFit is a no-op; capacity never shrinks.
func (arr *Array[T]) ShrinkToFit() {}

// PushBack appends v, doubling the capacity when the array is full.
func (arr *Array[T]) PushBack(v T) error {
	size := arr.Len()
	if arr.Cap() <= size+1 {
		if size+1 > math.MaxInt/2 {
			return alloc.AllocationFailed("dynarr.PushBack", size+1, alloc.ErrSizeOverflow)
		}
		if err := arr.Reserve((size + 1) * 2); err != nil {
			return err
		}
	}
	arr.data[size] = v
	arr.header().size = size + 1
	return nil
}

// PopBack removes the last element.
func (arr *Array[T]) PopBack() error {
	size := arr.Len()
	if size == 0 {
		return alloc.OutOfBounds("dynarr.PopBack", -1, 0)
	}
	arr.header().size = size - 1
	return nil
}

// Append pushes count copies of v.
func (arr *Array[T]) Append(count int, v T) error {
	if count < 0 {
		return alloc.InvalidRange("dynarr.Append", arr.Len(), count, arr.Len())
	}
	for i := 0; i < count; i++ {
		if err := arr.PushBack(v); err != nil {
			return err
		}
	}
	return nil
}

// Assign replaces the contents with vs.
func (arr *Array[T]) Assign(vs ...T) error {
	arr.Clear()
	for _, v := range vs {
		if err := arr.PushBack(v); err != nil {
			return err
		}
	}
	return nil
}

// Resize replaces the contents with count copies of fill.
func (arr *Array[T]) Resize(count int, fill T) error {
	if count < 0 {
		return alloc.InvalidRange("dynarr.Resize", 0, count, arr.Len())
	}
	arr.Clear()
	return arr.Append(count, fill)
}

// Insert places v at pos, shifting the elements at and after pos one slot
// to the right. pos may equal Len.
func (arr *Array[T]) Insert(pos int, v T) error {
	size := arr.Len()
	if pos < 0 || pos > size {
		return alloc.OutOfBounds("dynarr.Insert", pos, size)
	}
	var zero T
	if err := arr.PushBack(zero); err != nil {
		return err
	}
	// Right to left so no source element is overwritten before it is read.
	for i := size; i > pos; i-- {
		arr.data[i] = arr.data[i-1]
	}
	arr.data[pos] = v
	return nil
}

// Erase removes count elements starting at pos.
func (arr *Array[T]) Erase(pos, count int) error {
	const op = "dynarr.Erase"
	size := arr.Len()
	if pos < 0 || pos > size {
		return alloc.OutOfBounds(op, pos, size)
	}
	if count < 0 || pos+count > size {
		return alloc.InvalidRange(op, pos, count, size)
	}
	if count == 0 {
		return nil
	}
	copy(arr.data[pos:size], arr.data[pos+count:size])
	arr.header().size = size - count
	return nil
}

// Clear sets the length to zero and keeps the storage.
func (arr *Array[T]) Clear() {
	if arr.raw != nil {
		arr.header().size = 0
	}
}

// Swap exchanges the storage of arr and other in O(1).
func (arr *Array[T]) Swap(other *Array[T]) {
	*arr, *other = *other, *arr
}

// Clone returns a copy of arr allocated from a, reserved to arr's capacity.
func (arr *Array[T]) Clone(a alloc.Allocator) (*Array[T], error) {
	dst := &Array[T]{a: a}
	if err := dst.allocate("dynarr.Clone", arr.Cap()); err != nil {
		return nil, err
	}
	size := arr.Len()
	copy(dst.data, arr.data[:size])
	dst.header().size = size
	return dst, nil
}

// CopyRange returns a new array allocated from a holding the elements in
// [index, index+count).
func (arr *Array[T]) CopyRange(a alloc.Allocator, index, count int) (*Array[T], error) {
	size := arr.Len()
	if index < 0 || count < 0 || index > size || index+count > size {
		return nil, alloc.InvalidRange("dynarr.CopyRange", index, count, size)
	}
	dst, err := New[T](a, count)
	if err != nil {
		return nil, err
	}
	copy(dst.data, arr.data[index:index+count])
	return dst, nil
}

// Slice returns the live elements. The slice aliases the array's storage
// and is invalidated by any operation that grows it.
func (arr *Array[T]) Slice() []T {
	return arr.data[:arr.Len()]
}

// All returns an iterator over index/value pairs.
func (arr *Array[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; i < arr.Len(); i++ {
			if !yield(i, arr.data[i]) {
				return
			}
		}
	}
}

// Free hands the allocation back to the allocator. The array is left
// empty and may be reused; the next growth allocates afresh.
func (arr *Array[T]) Free() error {
	if arr.raw == nil {
		return nil
	}
	raw := arr.raw
	arr.raw, arr.data = nil, nil
	return arr.a.Deallocate(raw)
}
