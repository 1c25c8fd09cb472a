package directobj

import (
	"bytes"
	"encoding/binary"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHeap(t *testing.T, opts ...Option) *Heap {
	t.Helper()
	h := NewHeap(append([]Option{WithLogger(NoopLogger())}, opts...)...)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func TestCursor_Primitives(t *testing.T) {
	h := testHeap(t)

	size := new(Sizer).Byte().UnsignedByte().Bool().Char().Short().
		Int().Long().Float32().Float64().Bytes(3).Size()
	b, err := h.Allocate(size)
	require.NoError(t, err)
	defer b.Free()

	c := NewCursor()
	require.NoError(t, c.Begin(b))
	c.PutByte(-5)
	c.PutUnsignedByte(250)
	c.PutBool(true)
	c.PutChar(0xFFFE)
	c.PutShort(-1234)
	c.PutInt(math.MinInt32)
	c.PutLong(math.MaxInt64)
	c.PutFloat32(1.5)
	c.PutFloat64(-2.25)
	c.PutBytes([]byte("xyz"))
	assert.Equal(t, size, c.Pos())
	require.NoError(t, c.Finish())
	assert.Nil(t, c.Block())

	require.NoError(t, c.Begin(b))
	assert.Equal(t, int8(-5), c.GetByte())
	assert.Equal(t, uint8(250), c.GetUnsignedByte())
	assert.True(t, c.GetBool())
	assert.Equal(t, uint16(0xFFFE), c.GetChar())
	assert.Equal(t, int16(-1234), c.GetShort())
	assert.Equal(t, int32(math.MinInt32), c.GetInt())
	assert.Equal(t, int64(math.MaxInt64), c.GetLong())
	assert.Equal(t, float32(1.5), c.GetFloat32())
	assert.Equal(t, -2.25, c.GetFloat64())
	raw := make([]byte, 3)
	c.GetBytes(raw)
	assert.Equal(t, "xyz", string(raw))
	assert.Zero(t, c.Remaining())
	require.NoError(t, c.Finish())
}

func TestCursor_NativeByteOrder(t *testing.T) {
	h := testHeap(t)

	b, err := h.Allocate(4)
	require.NoError(t, err)
	defer b.Free()

	c := NewCursor()
	require.NoError(t, c.Begin(b))
	c.PutInt(0x01020304)
	require.NoError(t, c.Finish())

	assert.Equal(t, uint32(0x01020304), binary.NativeEndian.Uint32(b.Bytes()))
}

func TestAlignPosition(t *testing.T) {
	tests := []struct {
		pos, asInt, asLong int
	}{
		{0, 0, 0},
		{1, 4, 8},
		{3, 4, 8},
		{4, 4, 8},
		{5, 8, 8},
		{8, 8, 8},
		{9, 12, 16},
		{13, 16, 16},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.asInt, AlignPositionInt(tt.pos), "int pos=%d", tt.pos)
		assert.Equal(t, tt.asLong, AlignPositionLong(tt.pos), "long pos=%d", tt.pos)
	}
}

func TestCursor_AlignmentIsRelativeToPayload(t *testing.T) {
	h := testHeap(t)

	// The payload starts HeaderSize bytes into the block, so absolute
	// addresses are never 8-aligned here; sizing must still match writing.
	size := new(Sizer).Byte().AlignLong().Long().Byte().AlignInt().Int().Size()
	require.Equal(t, 24, size)

	b, err := h.Allocate(size)
	require.NoError(t, err)
	defer b.Free()

	c := NewCursor()
	require.NoError(t, c.Begin(b))
	c.PutByte(1)
	c.AlignLong()
	assert.Equal(t, 8, c.Pos())
	c.PutLong(2)
	c.PutByte(3)
	c.AlignInt()
	assert.Equal(t, 20, c.Pos())
	c.PutInt(4)
	require.NoError(t, c.Finish())
}

func TestCursor_BoundsViolation(t *testing.T) {
	mc := &BasicMetricsCollector{}
	h := testHeap(t, WithMetricsCollector(mc))

	b, err := h.Allocate(4)
	require.NoError(t, err)
	defer b.Free()

	c := NewCursor()
	require.NoError(t, c.Begin(b))
	c.PutLong(-1)
	assert.True(t, c.Overflowed())

	err = c.Finish()
	require.ErrorIs(t, err, ErrBoundsViolation)

	var be *BoundsError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 4, be.Declared)
	assert.Equal(t, 8, be.Used)
	assert.Equal(t, "write", be.Op)

	assert.Equal(t, make([]byte, 4), b.Bytes(), "nothing written past the payload")
	assert.Equal(t, int64(1), mc.GetStats().WriteErrors)

	require.NoError(t, c.BeginRead(b))
	assert.Zero(t, c.GetLong())
	err = c.Finish()
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "read", be.Op)

	stats := mc.GetStats()
	assert.Equal(t, int64(1), stats.WriteCount)
	assert.Equal(t, int64(1), stats.WriteErrors)
	assert.Equal(t, int64(1), stats.ReadCount)
	assert.Equal(t, int64(1), stats.ReadErrors)
}

func TestCursor_UnusedSpace(t *testing.T) {
	var logs bytes.Buffer
	mc := &BasicMetricsCollector{}
	h := testHeap(t,
		WithLogger(NewLogger(slog.NewTextHandler(&logs, nil))),
		WithMetricsCollector(mc),
	)

	b, err := h.Allocate(8)
	require.NoError(t, err)
	defer b.Free()

	c := NewCursor()
	require.NoError(t, c.Begin(b))
	c.PutInt(1)
	require.NoError(t, c.Finish())

	assert.Contains(t, logs.String(), "unused space")
	assert.Contains(t, logs.String(), "declared=8")
	assert.Contains(t, logs.String(), "used=4")
	assert.Equal(t, int64(1), mc.GetStats().UnusedSpaceCount)
	assert.Equal(t, int64(4), mc.GetStats().UnusedSpaceBytes)
}

func TestCursor_FreedBlock(t *testing.T) {
	h := testHeap(t)

	b, err := h.Allocate(4)
	require.NoError(t, err)
	b.Free()

	c := NewCursor()
	assert.ErrorIs(t, c.Begin(b), ErrFreed)
	assert.NoError(t, c.Finish(), "finish without a pass is a no-op")
}

func TestCompact_WireFormat(t *testing.T) {
	h := testHeap(t)

	tests := []struct {
		name  string
		units []uint16
		want  []byte
	}{
		{"one byte", []uint16{'A'}, []byte{0x41}},
		{"two bytes", []uint16{0x20AC}, []byte{0xAC, 0x41}},
		{"two bytes max", []uint16{0x3FFF}, []byte{0xFF, 0x7F}},
		{"three bytes min", []uint16{0x4000}, []byte{0x80, 0x80, 0x01}},
		{"three bytes max", []uint16{0xFFFF}, []byte{0xFF, 0xFF, 0x03}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size := CharsLen(Compact, tt.units)
			require.Equal(t, 4+len(tt.want), size)

			b, err := h.Allocate(size)
			require.NoError(t, err)
			defer b.Free()

			c := NewCursor()
			require.NoError(t, c.Begin(b))
			c.PutChars(Compact, tt.units)
			require.NoError(t, c.Finish())

			got := b.Bytes()
			assert.Equal(t, uint32(len(tt.units)), binary.NativeEndian.Uint32(got))
			assert.Equal(t, tt.want, got[4:])
		})
	}
}

func TestCursor_NullMarker(t *testing.T) {
	h := testHeap(t)

	b, err := h.Allocate(4)
	require.NoError(t, err)
	defer b.Free()

	c := NewCursor()
	require.NoError(t, c.Begin(b))
	c.PutString(nil)
	require.NoError(t, c.Finish())

	assert.Equal(t, int32(-1), int32(binary.NativeEndian.Uint32(b.Bytes())))
}

func TestCursor_CorruptCount(t *testing.T) {
	h := testHeap(t)

	for _, count := range []int32{1000, -7} {
		b, err := h.Allocate(8)
		require.NoError(t, err)

		c := NewCursor()
		require.NoError(t, c.Begin(b))
		c.PutInt(count)
		require.NoError(t, c.Finish())

		require.NoError(t, c.BeginRead(b))
		assert.Nil(t, c.GetString())
		assert.ErrorIs(t, c.Finish(), ErrBoundsViolation, "count=%d", count)

		b.Free()
	}
}

func TestUnitCount(t *testing.T) {
	assert.Equal(t, 0, unitCount(""))
	assert.Equal(t, 3, unitCount("abc"))
	assert.Equal(t, 4, unitCount("A€💡"))

	var got []uint16
	for u := range units("A€💡") {
		got = append(got, u)
	}
	assert.Equal(t, []uint16{0x41, 0x20AC, 0xD83D, 0xDCA1}, got)
}
