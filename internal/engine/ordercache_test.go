package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/onitama/internal/board"
)

func TestOrderingCacheSize(t *testing.T) {
	oc := NewOrderingCache(1)
	assert.Equal(t, uint64(1024*1024/cacheEntrySize), oc.Size())

	oc = NewOrderingCache(3)
	assert.Equal(t, uint64(2*1024*1024/cacheEntrySize), oc.Size())

	oc = NewOrderingCache(0)
	assert.Equal(t, uint64(1024*1024/cacheEntrySize), oc.Size())
}

func TestRoundDownToPowerOf2(t *testing.T) {
	tests := map[uint64]uint64{1: 1, 2: 2, 3: 2, 1000: 512, 1024: 1024, 1025: 1024}
	for in, want := range tests {
		assert.Equal(t, want, roundDownToPowerOf2(in), "n=%d", in)
	}
}

func TestOrderingCacheProbeStore(t *testing.T) {
	oc := NewOrderingCache(1)
	m := board.NewMove(board.SquareOf(2, 2), 0, 1)

	_, ok := oc.Probe(12345)
	assert.False(t, ok)

	oc.Store(12345, m)
	got, ok := oc.Probe(12345)
	require.True(t, ok)
	assert.Equal(t, m, got)

	// Same slot, different key.
	_, ok = oc.Probe(12345 + oc.Size())
	assert.False(t, ok)

	other := board.NewMove(board.SquareOf(1, 1), 2, 0)
	oc.Store(12345+oc.Size(), other)
	_, ok = oc.Probe(12345)
	assert.False(t, ok, "replaced entry")

	assert.InDelta(t, 25.0, oc.HitRate(), 0.01)
}

func TestOrderingCacheZeroMoveIsStorable(t *testing.T) {
	oc := NewOrderingCache(1)
	zero := board.Move(0)

	oc.Store(0, zero)
	got, ok := oc.Probe(0)
	require.True(t, ok)
	assert.Equal(t, zero, got)

	oc.Clear()
	_, ok = oc.Probe(0)
	assert.False(t, ok)
	assert.Zero(t, oc.HashFull())
}

func TestMoveOrdererKillers(t *testing.T) {
	mo := NewMoveOrderer()
	assert.Equal(t, board.NoMove, mo.Killer(3))

	m := board.NewMove(board.SquareOf(2, 2), 1, 0)
	mo.UpdateKiller(3, m)
	assert.Equal(t, m, mo.Killer(3))
	assert.Equal(t, board.NoMove, mo.Killer(4))

	mo.Clear()
	assert.Equal(t, board.NoMove, mo.Killer(3))
}
