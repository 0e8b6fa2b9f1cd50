package alloc

import (
	"errors"
	"fmt"
	"strings"
)

// Kind categorizes an Error.
type Kind string

const (
	KindAllocation      Kind = "allocation"       // allocator returned no memory
	KindOutOfBounds     Kind = "out_of_bounds"    // index outside the logical size
	KindInvalidRange    Kind = "invalid_range"    // bad start/length pair
	KindUnsupportedType Kind = "unsupported_type" // element type cannot live in raw memory
)

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrAllocation      = &Error{Kind: KindAllocation}
	ErrOutOfBounds     = &Error{Kind: KindOutOfBounds}
	ErrInvalidRange    = &Error{Kind: KindInvalidRange}
	ErrUnsupportedType = &Error{Kind: KindUnsupportedType}
)

// ErrBudgetExceeded is the cause attached to allocation failures raised by
// Budget.
var ErrBudgetExceeded = errors.New("allocation budget exceeded")

// ErrSizeOverflow is the cause attached to allocation failures whose byte
// count does not fit in an int.
var ErrSizeOverflow = errors.New("allocation size overflows int")

// Error is the structured error returned by allocators and containers.
// Op names the failing operation, e.g. "dynarr.At".
type Error struct {
	Cause  error
	Kind   Kind
	Op     string
	Detail string
	Index  int
	Size   int
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteByte('[')
		b.WriteString(e.Op)
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind. A target with an
// Op set must match that too.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Op != "" && t.Op != e.Op {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if there
// is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// AllocationFailed creates an allocation failure error.
func AllocationFailed(op string, size int, cause error) *Error {
	return &Error{
		Kind:   KindAllocation,
		Op:     op,
		Size:   size,
		Detail: fmt.Sprintf("failed to allocate %d bytes", size),
		Cause:  cause,
	}
}

// OutOfBounds creates an out of bounds error.
func OutOfBounds(op string, index, length int) *Error {
	return &Error{
		Kind:   KindOutOfBounds,
		Op:     op,
		Index:  index,
		Size:   length,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
	}
}

// InvalidRange creates an invalid range error for the range [index, index+count)
// over a sequence of the given length.
func InvalidRange(op string, index, count, length int) *Error {
	var detail string
	switch {
	case count == 0:
		detail = fmt.Sprintf("empty range at %d", index)
	case count < 0:
		detail = fmt.Sprintf("negative count %d", count)
	default:
		detail = fmt.Sprintf("range [%d, %d) exceeds length %d", index, index+count, length)
	}
	return &Error{
		Kind:   KindInvalidRange,
		Op:     op,
		Index:  index,
		Size:   length,
		Detail: detail,
	}
}

// UnsupportedType creates an error for an element type that holds pointers.
func UnsupportedType(op, typeName string) *Error {
	return &Error{
		Kind:   KindUnsupportedType,
		Op:     op,
		Detail: fmt.Sprintf("%s contains pointers", typeName),
	}
}
