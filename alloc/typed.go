package alloc

import (
	"math"
	"reflect"
	"unsafe"
)

// PointerFree reports whether values of T contain no Go pointers and can
// therefore live in allocator memory that the garbage collector does not
// scan.
func PointerFree[T any]() bool {
	return pointerFree(reflect.TypeFor[T]())
}

func pointerFree(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return t.Len() == 0 || pointerFree(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !pointerFree(t.Field(i).Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Cast views the first n*sizeof(T) bytes of b as a []T without copying.
// b must be suitably aligned for T and at least that long. Returns nil if
// n <= 0.
func Cast[T any](b []byte, n int) []T {
	if n <= 0 {
		return nil
	}
	var zero T
	if unsafe.Sizeof(zero) == 0 {
		return make([]T, n)
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), n)
}

// New allocates a zeroed T from a.
func New[T any](a Allocator) (*T, error) {
	s, err := MakeSlice[T](a, 1)
	if err != nil {
		return nil, err
	}
	return &s[0], nil
}

// MakeSlice allocates a zeroed slice of n elements of T from a.
// Returns nil if n <= 0.
func MakeSlice[T any](a Allocator, n int) ([]T, error) {
	const op = "alloc.MakeSlice"
	if !PointerFree[T]() {
		return nil, UnsupportedType(op, reflect.TypeFor[T]().String())
	}
	if n <= 0 {
		return nil, nil
	}
	var zero T
	size := int(unsafe.Sizeof(zero))
	if size > 0 && n > math.MaxInt/size {
		return nil, AllocationFailed(op, n, ErrSizeOverflow)
	}
	b, err := a.Allocate(size * n)
	if err != nil {
		return nil, err
	}
	clear(b)
	return Cast[T](b, n), nil
}
