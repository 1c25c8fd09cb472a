//go:build amd64 || arm64

package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntToUint32(t *testing.T) {
	t.Run("valid zero", func(t *testing.T) {
		got, err := IntToUint32(0)
		assert.NoError(t, err)
		assert.Equal(t, uint32(0), got)
	})

	t.Run("valid max", func(t *testing.T) {
		got, err := IntToUint32(math.MaxUint32)
		assert.NoError(t, err)
		assert.Equal(t, uint32(math.MaxUint32), got)
	})

	t.Run("invalid negative", func(t *testing.T) {
		_, err := IntToUint32(-1)
		assert.Error(t, err)
	})

	t.Run("invalid too large", func(t *testing.T) {
		_, err := IntToUint32(math.MaxUint32 + 1)
		assert.Error(t, err)
	})
}

func TestIntToInt32(t *testing.T) {
	got, err := IntToInt32(-1)
	assert.NoError(t, err)
	assert.Equal(t, int32(-1), got)

	_, err = IntToInt32(math.MaxInt32 + 1)
	assert.Error(t, err)

	_, err = IntToInt32(math.MinInt32 - 1)
	assert.Error(t, err)
}

func TestIntToUint64(t *testing.T) {
	got, err := IntToUint64(42)
	assert.NoError(t, err)
	assert.Equal(t, uint64(42), got)

	_, err = IntToUint64(-1)
	assert.Error(t, err)
}

func TestUint32ToInt(t *testing.T) {
	got, err := Uint32ToInt(math.MaxUint32)
	assert.NoError(t, err)
	assert.Equal(t, int(math.MaxUint32), got)
}
