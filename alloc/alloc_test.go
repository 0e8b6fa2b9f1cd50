package alloc

import (
	"math"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeapAllocate(t *testing.T) {
	h := NewHeap()

	b, err := h.Allocate(32)
	require.NoError(t, err)
	assert.Len(t, b, 32)

	_, err = h.Allocate(-1)
	assert.ErrorIs(t, err, ErrAllocation)

	allocs, _, bytes := h.Stats()
	assert.Equal(t, int64(1), allocs)
	assert.Equal(t, int64(32), bytes)
}

func TestHeapReallocate(t *testing.T) {
	h := NewHeap()
	b, _ := h.Allocate(4)
	copy(b, "abcd")

	grown, err := h.Reallocate(b, 8)
	require.NoError(t, err)
	assert.Len(t, grown, 8)
	assert.Equal(t, "abcd", string(grown[:4]))

	shrunk, err := h.Reallocate(grown, 2)
	require.NoError(t, err)
	assert.Equal(t, "ab", string(shrunk))

	fresh, err := h.Reallocate(nil, 3)
	require.NoError(t, err)
	assert.Len(t, fresh, 3)

	assert.NoError(t, h.Deallocate(fresh))
}

func TestBudget(t *testing.T) {
	b := NewBudget(NewHeap(), 100)

	p, err := b.Allocate(60)
	require.NoError(t, err)
	assert.Equal(t, 60, b.InUse())

	_, err = b.Allocate(50)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllocation)
	assert.ErrorIs(t, err, ErrBudgetExceeded)
	assert.Equal(t, 60, b.InUse(), "failed request must not be charged")

	p, err = b.Reallocate(p, 90)
	require.NoError(t, err)
	assert.Equal(t, 90, b.InUse())

	_, err = b.Reallocate(p, 101)
	assert.ErrorIs(t, err, ErrBudgetExceeded)

	require.NoError(t, b.Deallocate(p))
	assert.Equal(t, 0, b.InUse())

	// A larger budget admits the request that failed before
	bigger := NewBudget(NewHeap(), 200)
	_, err = bigger.Allocate(150)
	assert.NoError(t, err)
}

type failing struct{}

func (failing) Allocate(n int) ([]byte, error) {
	return nil, AllocationFailed("failing.Allocate", n, errors.New("out of memory"))
}
func (failing) Reallocate(b []byte, n int) ([]byte, error) { return failing{}.Allocate(n) }
func (failing) Deallocate(b []byte) error                  { return nil }

func TestBudgetParentFailure(t *testing.T) {
	b := NewBudget(failing{}, 100)
	_, err := b.Allocate(10)
	require.ErrorIs(t, err, ErrAllocation)
	assert.Equal(t, 0, b.InUse())
}

func TestHeapOversized(t *testing.T) {
	h := NewHeap()

	_, err := h.Allocate(math.MaxInt)
	assert.ErrorIs(t, err, ErrAllocation)

	b, err := h.Allocate(8)
	require.NoError(t, err)
	_, err = h.Reallocate(b, math.MaxInt)
	assert.ErrorIs(t, err, ErrAllocation)

	allocs, reallocs, _ := h.Stats()
	assert.Equal(t, int64(1), allocs)
	assert.Zero(t, reallocs)
}
