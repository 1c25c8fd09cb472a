package arena

import (
	"errors"
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type limitAcquirer struct {
	limit int64
	used  int64
}

func (l *limitAcquirer) AcquireMemory(amount int64) error {
	if l.used+amount > l.limit {
		return errors.New("limit reached")
	}
	l.used += amount
	return nil
}

func (l *limitAcquirer) ReleaseMemory(amount int64) {
	l.used -= amount
}

func TestArena_New(t *testing.T) {
	t.Run("default chunk size", func(t *testing.T) {
		a := New()
		defer a.Close()
		assert.Equal(t, DefaultChunkSize, a.chunkSize)
		assert.Zero(t, a.Stats().BytesReserved, "no memory mapped before first alloc")
	})

	t.Run("chunk size rounded and clamped", func(t *testing.T) {
		a := New(WithChunkSize(100))
		defer a.Close()
		assert.Equal(t, MaxClassSize, a.chunkSize)

		b := New(WithChunkSize(MaxClassSize + 1))
		defer b.Close()
		assert.Equal(t, 2*MaxClassSize, b.chunkSize)
	})
}

func TestArena_Alloc(t *testing.T) {
	a := New()
	defer a.Close()

	t.Run("zeroed and aligned", func(t *testing.T) {
		b, err := a.Alloc(100)
		require.NoError(t, err)
		require.Len(t, b, 100)
		for _, v := range b {
			require.Zero(t, v)
		}
		assert.Zero(t, uintptr(unsafe.Pointer(&b[0]))%Alignment)
	})

	t.Run("zero size", func(t *testing.T) {
		b, err := a.Alloc(0)
		require.NoError(t, err)
		assert.Nil(t, b)
	})

	t.Run("negative size", func(t *testing.T) {
		_, err := a.Alloc(-1)
		assert.ErrorIs(t, err, ErrInvalidSize)
	})

	t.Run("large allocation", func(t *testing.T) {
		b, err := a.Alloc(MaxClassSize * 2)
		require.NoError(t, err)
		require.Len(t, b, MaxClassSize*2)
		b[len(b)-1] = 1
		assert.Equal(t, uint64(1), a.Stats().LargeMappings)

		a.Free(b)
		assert.Zero(t, a.Stats().LargeMappings)
	})
}

func TestArena_FreeReusesSlot(t *testing.T) {
	a := New()
	defer a.Close()

	b1, err := a.Alloc(40)
	require.NoError(t, err)
	b1[0] = 0xFF
	p1 := unsafe.Pointer(&b1[0])
	a.Free(b1)

	b2, err := a.Alloc(48) // same 64-byte class
	require.NoError(t, err)
	assert.Equal(t, p1, unsafe.Pointer(&b2[0]))
	assert.Zero(t, b2[0], "reused slot is zeroed")

	stats := a.Stats()
	assert.Equal(t, uint64(1), stats.LiveAllocs)
	assert.Equal(t, uint64(2), stats.TotalAllocs)
	assert.Equal(t, uint64(1), stats.TotalFrees)
	assert.Equal(t, uint64(48), stats.BytesUsed)
}

func TestArena_DoubleFreePanics(t *testing.T) {
	a := New()
	defer a.Close()

	b, err := a.Alloc(10)
	require.NoError(t, err)
	a.Free(b)
	assert.Panics(t, func() { a.Free(b) })
}

func TestArena_Realloc(t *testing.T) {
	a := New()
	defer a.Close()

	t.Run("in place within class", func(t *testing.T) {
		b, err := a.Alloc(20)
		require.NoError(t, err)
		copy(b, "0123456789")

		nb, err := a.Realloc(b, 24)
		require.NoError(t, err)
		assert.Equal(t, unsafe.Pointer(&b[0]), unsafe.Pointer(&nb[0]))
		assert.Equal(t, "0123456789", string(nb[:10]))
		a.Free(nb)
	})

	t.Run("moves across classes", func(t *testing.T) {
		b, err := a.Alloc(8)
		require.NoError(t, err)
		copy(b, "abcdefgh")

		nb, err := a.Realloc(b, 4000)
		require.NoError(t, err)
		require.Len(t, nb, 4000)
		assert.Equal(t, "abcdefgh", string(nb[:8]))
		for _, v := range nb[8:] {
			require.Zero(t, v)
		}

		shrunk, err := a.Realloc(nb, 3)
		require.NoError(t, err)
		assert.Equal(t, "abc", string(shrunk))
		a.Free(shrunk)
	})

	t.Run("from nil", func(t *testing.T) {
		b, err := a.Realloc(nil, 16)
		require.NoError(t, err)
		assert.Len(t, b, 16)
		a.Free(b)
	})
}

func TestArena_MemoryAcquirer(t *testing.T) {
	acq := &limitAcquirer{limit: MaxClassSize}
	a := New(WithChunkSize(MaxClassSize), WithMemoryAcquirer(acq))

	b, err := a.Alloc(1000)
	require.NoError(t, err)
	assert.Equal(t, int64(MaxClassSize), acq.used)

	_, err = a.Alloc(MaxClassSize * 2)
	assert.ErrorIs(t, err, ErrAllocationFailed)

	a.Free(b)
	require.NoError(t, a.Close())
	assert.Zero(t, acq.used)
}

func TestArena_Close(t *testing.T) {
	a := New()
	b, err := a.Alloc(64)
	require.NoError(t, err)

	require.NoError(t, a.Close())
	require.NoError(t, a.Close())

	a.Free(b) // no-op after close
	_, err = a.Alloc(1)
	assert.ErrorIs(t, err, ErrClosed)
	assert.Zero(t, a.Stats().BytesReserved)
}

func TestArena_Concurrent(t *testing.T) {
	a := New()
	defer a.Close()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(seed byte) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				b, err := a.Alloc(int(seed)*8 + i%200 + 1)
				if err != nil {
					t.Error(err)
					return
				}
				b[0] = seed
				if b[0] != seed {
					t.Error("memory clobbered")
				}
				a.Free(b)
			}
		}(byte(g + 1))
	}
	wg.Wait()

	assert.Zero(t, a.Stats().LiveAllocs)
}

func TestClassFor(t *testing.T) {
	tests := []struct {
		need int
		size int
	}{
		{1, 16},
		{16, 16},
		{17, 32},
		{64, 64},
		{65, 128},
		{MaxClassSize, MaxClassSize},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.size, classSize(classFor(tt.need)), "need=%d", tt.need)
	}
}
