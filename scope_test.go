package directobj_test

import (
	"testing"

	"github.com/hupe1980/directobj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScope(t *testing.T) {
	h := newTestHeap(t)
	s := directobj.NewScope()

	b1, err := h.Allocate(8)
	require.NoError(t, err)
	b2, err := h.Allocate(16)
	require.NoError(t, err)

	assert.Same(t, b1, s.Track(b1))
	s.Track(b2)
	assert.Nil(t, s.Track(nil))
	assert.Equal(t, 2, s.Len())

	b2.Free() // freed early; Close must tolerate it

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.True(t, b1.Freed())
	assert.Zero(t, s.Len())
	assert.Zero(t, h.Stats().LiveBlocks)

	b3, err := h.Allocate(4)
	require.NoError(t, err)
	s.Track(b3)
	assert.True(t, b3.Freed(), "tracking on a closed scope frees at once")
}
