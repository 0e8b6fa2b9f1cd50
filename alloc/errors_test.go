package alloc

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name:     "out of bounds",
			err:      OutOfBounds("dynarr.At", 3, 3),
			contains: []string{"[dynarr.At]", "out_of_bounds", "index 3", "length 3"},
		},
		{
			name:     "empty range",
			err:      InvalidRange("strbuf.Replace", 0, 0, 5),
			contains: []string{"[strbuf.Replace]", "invalid_range", "empty range at 0"},
		},
		{
			name:     "range past end",
			err:      InvalidRange("strbuf.Substr", 2, 9, 5),
			contains: []string{"range [2, 11) exceeds length 5"},
		},
		{
			name:     "allocation with cause",
			err:      AllocationFailed("arena.Allocate", 64, errors.New("arena released")),
			contains: []string{"allocation", "64 bytes", "caused by: arena released"},
		},
		{
			name:     "unsupported type",
			err:      UnsupportedType("dynarr.New", "*int"),
			contains: []string{"unsupported_type", "*int contains pointers"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				assert.Contains(t, msg, s)
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", OutOfBounds("strbuf.At", 7, 2))

	assert.ErrorIs(t, err, ErrOutOfBounds)
	assert.NotErrorIs(t, err, ErrInvalidRange)
	assert.ErrorIs(t, err, &Error{Kind: KindOutOfBounds, Op: "strbuf.At"})
	assert.NotErrorIs(t, err, &Error{Kind: KindOutOfBounds, Op: "dynarr.At"})
	assert.Equal(t, KindOutOfBounds, KindOf(err))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))

	var e *Error
	if assert.ErrorAs(t, err, &e) {
		assert.Equal(t, 7, e.Index)
		assert.Equal(t, 2, e.Size)
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := AllocationFailed("alloc.Heap.Allocate", 1, cause)
	assert.Same(t, cause, err.Unwrap())
	assert.ErrorIs(t, err, cause)
}
