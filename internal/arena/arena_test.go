package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArena_AllocBytes(t *testing.T) {
	a := New(0)

	buf, err := a.AllocBytes(100)
	require.NoError(t, err)
	assert.Len(t, buf, 100)

	stats := a.Stats()
	assert.Equal(t, uint64(1), stats.ActiveChunks)
	assert.Equal(t, uint64(100), stats.BytesUsed)
	assert.Equal(t, uint64(1), stats.TotalAllocs)
}

func TestArena_AllocBytesAligned(t *testing.T) {
	a := New(1024)

	// two allocations must not overlap even with unaligned sizes
	b1, err := a.AllocBytes(5)
	require.NoError(t, err)
	b2, err := a.AllocBytes(5)
	require.NoError(t, err)

	for i := range b1 {
		b1[i] = 0xAA
	}
	for i := range b2 {
		b2[i] = 0xBB
	}
	assert.Equal(t, byte(0xAA), b1[0])
	assert.Equal(t, byte(0xBB), b2[0])
}

func TestArena_OversizedAllocation(t *testing.T) {
	a := New(64)

	buf, err := a.AllocBytes(1000)
	require.NoError(t, err)
	assert.Len(t, buf, 1000)
	assert.Equal(t, uint64(1), a.Stats().ChunksAllocated)
}

func TestArena_AllocUint32Slice(t *testing.T) {
	a := New(0)

	s, err := a.AllocUint32Slice(10)
	require.NoError(t, err)
	assert.Equal(t, 0, len(s))
	assert.Equal(t, 10, cap(s))

	for i := uint32(0); i < 10; i++ {
		s = append(s, i)
	}
	assert.Equal(t, uint32(9), s[9])
}

func TestArena_AllocUint32SliceEmpty(t *testing.T) {
	a := New(0)

	s, err := a.AllocUint32Slice(0)
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestArena_FreeIdempotent(t *testing.T) {
	a := New(0)
	_, err := a.AllocBytes(64)
	require.NoError(t, err)

	require.False(t, a.Freed())
	a.Free()
	require.True(t, a.Freed())
	a.Free() // second free is a no-op
	require.True(t, a.Freed())

	assert.Equal(t, uint64(0), a.Stats().ActiveChunks)

	_, err = a.AllocBytes(8)
	assert.Error(t, err)
}

func TestArena_Reset(t *testing.T) {
	a := New(128)

	for i := 0; i < 10; i++ {
		_, err := a.AllocBytes(100)
		require.NoError(t, err)
	}
	require.Greater(t, a.Stats().ActiveChunks, uint64(1))

	a.Reset()
	assert.Equal(t, uint64(1), a.Stats().ActiveChunks)
	assert.Equal(t, uint64(0), a.Stats().BytesUsed)

	_, err := a.AllocBytes(50)
	assert.NoError(t, err)
}
