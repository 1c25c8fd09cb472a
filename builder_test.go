package directobj_test

import (
	"bytes"
	"testing"

	"github.com/hupe1980/directobj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_InvalidArguments(t *testing.T) {
	h := newTestHeap(t)
	base := h.NewBuilder()
	r := bytes.NewReader(nil)

	tests := []struct {
		name string
		b    directobj.Builder
	}{
		{"no source", base},
		{"two sources", base.FromRecord(&bean{}).FromBytes([]byte("x"))},
		{"reader without length", base.FromReader(r)},
		{"length and prefix", base.FromReader(r).WithLength(4).LengthPrefixed()},
		{"negative length", base.FromReader(r).WithLength(-1)},
		{"record with length", base.FromRecord(&bean{}).WithLength(4)},
		{"bytes with length", base.FromBytes([]byte("x")).WithLength(1)},
		{"prefixed bytes too short", base.FromBytes([]byte{1, 0}).LengthPrefixed()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.b.Build()
			assert.ErrorIs(t, err, directobj.ErrInvalidArguments)
			assert.Zero(t, h.Stats().TotalBlocks, "nothing allocated")
		})
	}
}

func TestBuilder_Sources(t *testing.T) {
	h := newTestHeap(t)
	scope := directobj.NewScope()
	defer scope.Close()

	in := &bean{Str1: strp("built"), Str3: strp("ok")}
	fromRecord, err := h.NewBuilder().FromRecord(in).WithCursor(directobj.NewCursor()).WithAutoRelease(scope).Build()
	require.NoError(t, err)

	var persisted bytes.Buffer
	_, err = fromRecord.WriteTo(&persisted)
	require.NoError(t, err)

	t.Run("reader length prefixed", func(t *testing.T) {
		b, err := h.NewBuilder().FromReader(bytes.NewReader(persisted.Bytes())).LengthPrefixed().WithAutoRelease(scope).Build()
		require.NoError(t, err)

		var out bean
		require.NoError(t, b.Populate(&out, nil))
		assert.Equal(t, *in, out)
	})

	t.Run("reader with length", func(t *testing.T) {
		b, err := h.NewBuilder().FromReader(bytes.NewReader([]byte("raw bytes"))).WithLength(3).WithAutoRelease(scope).Build()
		require.NoError(t, err)
		assert.Equal(t, "raw", string(b.Bytes()))
	})

	t.Run("bytes length prefixed", func(t *testing.T) {
		b, err := h.NewBuilder().FromBytes(persisted.Bytes()).LengthPrefixed().WithAutoRelease(scope).Build()
		require.NoError(t, err)
		assert.Equal(t, fromRecord.Bytes(), b.Bytes())
	})

	assert.Equal(t, 4, scope.Len())
	require.NoError(t, scope.Close())
	assert.True(t, fromRecord.Freed())
	assert.Zero(t, h.Stats().LiveBlocks)
}

func TestBuilder_Immutable(t *testing.T) {
	h := newTestHeap(t)

	base := h.NewBuilder().FromBytes([]byte("abc"))
	_ = base.LengthPrefixed()

	b, err := base.Build()
	require.NoError(t, err)
	defer b.Free()
	assert.Equal(t, "abc", string(b.Bytes()))
}
