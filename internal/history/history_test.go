package history

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferEviction(t *testing.T) {
	b := NewBuffer(3)

	b.Append(1, 10)
	b.Append(2, 20)
	b.Append(3, 30)
	b.Append(4, 40)

	pts := b.Snapshot()
	require.Len(t, pts, 3)
	assert.Equal(t, []Point{{2, 20}, {3, 30}, {4, 40}}, pts)
}

func TestBufferHoldsLastCapacityEntries(t *testing.T) {
	const capacity = 16
	b := NewBuffer(capacity)

	for i := 0; i < 100; i++ {
		b.Append(float64(i), float64(i)*2)
	}

	pts := b.Snapshot()
	require.Len(t, pts, capacity)
	for i, p := range pts {
		want := float64(100 - capacity + i)
		assert.Equal(t, want, p.Time, "arrival order must be preserved")
		assert.Equal(t, want*2, p.Value)
	}
}

func TestBufferPartialFill(t *testing.T) {
	b := NewBuffer(10)
	b.Append(1, 1.5)
	b.Append(2, 2.5)

	assert.Equal(t, 2, b.Len())
	assert.Equal(t, 10, b.Cap())
	assert.Equal(t, []Point{{1, 1.5}, {2, 2.5}}, b.Snapshot())
}

func TestBufferClear(t *testing.T) {
	b := NewBuffer(4)
	for i := 0; i < 6; i++ {
		b.Append(float64(i), float64(i))
	}

	b.Clear()
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 4, b.Cap(), "capacity unchanged by clear")
	assert.Empty(t, b.Snapshot())

	b.Append(9, 9)
	assert.Equal(t, []Point{{9, 9}}, b.Snapshot())
}

func TestBufferStoresNaN(t *testing.T) {
	b := NewBuffer(4)
	b.Append(1, math.NaN())
	b.Append(2, 20)

	pts := b.Snapshot()
	require.Len(t, pts, 2, "NaN values are stored, not skipped")
	assert.True(t, math.IsNaN(pts[0].Value))
}

func TestBufferLast(t *testing.T) {
	b := NewBuffer(2)

	_, ok := b.Last()
	assert.False(t, ok)

	b.Append(1, 10)
	b.Append(2, 20)
	b.Append(3, 30)

	p, ok := b.Last()
	require.True(t, ok)
	assert.Equal(t, Point{3, 30}, p)
}

func TestBufferLastN(t *testing.T) {
	b := NewBuffer(5)
	for i := 1; i <= 5; i++ {
		b.Append(float64(i), float64(i))
	}

	assert.Len(t, b.LastN(3), 3)
	assert.Equal(t, Point{5, 5}, b.LastN(3)[2])
	assert.Len(t, b.LastN(99), 5)
	assert.Nil(t, b.LastN(0))
}

func TestStoreChannels(t *testing.T) {
	s := NewStore(8)

	for _, name := range Channels {
		require.NotNil(t, s.Get(name), "channel %s", name)
	}
	assert.Nil(t, s.Get("no_such_channel"))

	s.Append(ChanDSTemp, 1, 21.5)
	s.Append("no_such_channel", 1, 1) // ignored

	assert.Equal(t, 1, s.Get(ChanDSTemp).Len())

	s.Clear()
	assert.Equal(t, 0, s.Get(ChanDSTemp).Len())
}
