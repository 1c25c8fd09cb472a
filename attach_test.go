package directobj_test

import (
	"testing"

	"github.com/hupe1980/directobj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachment(t *testing.T) {
	h := newTestHeap(t)
	a := directobj.NewAttachment(h)

	var out bean
	assert.ErrorIs(t, a.Load(&out), directobj.ErrDetached)
	assert.False(t, a.Attached())

	in := &bean{Str1: strp("v1")}
	require.NoError(t, a.Save(in))
	require.True(t, a.Attached())
	handle := a.Block()

	in.Str2 = strp("v2 is longer")
	require.NoError(t, a.Save(in))
	assert.Same(t, handle, a.Block(), "save updates the attached block")

	require.NoError(t, a.Load(&out))
	assert.Equal(t, *in, out)

	detached := a.Detach()
	assert.Same(t, handle, detached)
	assert.Nil(t, a.Block())
	assert.ErrorIs(t, a.Load(&out), directobj.ErrDetached)

	other := directobj.NewAttachment(h)
	assert.Nil(t, other.Attach(detached))

	var again bean
	require.NoError(t, other.Load(&again))
	assert.Equal(t, *in, again)

	other.Free()
	assert.True(t, detached.Freed())
	assert.Zero(t, h.Stats().LiveBlocks)
}
