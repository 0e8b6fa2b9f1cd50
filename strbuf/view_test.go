package strbuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavanmanishd/memkit/alloc"
)

func TestLit(t *testing.T) {
	v := Lit("rstr")
	assert.Equal(t, 4, v.Len())
	assert.False(t, v.Empty())
	assert.Equal(t, "rstr", v.String())

	assert.True(t, Lit("").Empty())
	assert.True(t, View{}.Empty())
	assert.True(t, Lit("").Equal(View{}))
}

func TestFromBytes(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		max  int
		want string
	}{
		{"whole", []byte("hello"), 5, "hello"},
		{"limited", []byte("hello"), 3, "hel"},
		{"max past end", []byte("hi"), 10, "hi"},
		{"embedded nul", []byte("ab\x00cd"), 5, "ab"},
		{"nul past max", []byte("abc\x00"), 3, "abc"},
		{"negative max", []byte("abc"), -1, ""},
		{"nil", nil, 4, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromBytes(tt.in, tt.max).String())
		})
	}
}

func TestFromBytesAliases(t *testing.T) {
	p := []byte("abc")
	v := FromBytes(p, 3)
	p[0] = 'x'
	assert.Equal(t, "xbc", v.String())
}

func TestViewAccess(t *testing.T) {
	v := Lit("xyz")
	c, err := v.At(1)
	require.NoError(t, err)
	assert.Equal(t, byte('y'), c)

	front, err := v.Front()
	require.NoError(t, err)
	back, err := v.Back()
	require.NoError(t, err)
	assert.Equal(t, byte('x'), front)
	assert.Equal(t, byte('z'), back)

	for _, i := range []int{-1, 3, 4} {
		_, err := v.At(i)
		assert.ErrorIs(t, err, alloc.ErrOutOfBounds, "At(%d)", i)
	}
	_, err = View{}.Front()
	assert.ErrorIs(t, err, alloc.ErrOutOfBounds)
	_, err = View{}.Back()
	assert.ErrorIs(t, err, alloc.ErrOutOfBounds)
}

func TestFromBuffer(t *testing.T) {
	b, err := New(alloc.NewHeap(), Lit("hello"))
	require.NoError(t, err)

	v := FromBuffer(b)
	assert.True(t, v.Equal(Lit("hello")))
	assert.True(t, b.View().Equal(v))
	assert.False(t, v.Equal(Lit("hell")))
}
