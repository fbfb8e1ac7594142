package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"domination-engine/internal/models"
)

func TestKeyRoundTrip(t *testing.T) {
	c := Coord{Row: 12, Col: 7}
	assert.Equal(t, Key("12-7"), c.Key())

	got, err := ParseKey(c.Key())
	require.NoError(t, err)
	assert.Equal(t, c, got)

	for _, bad := range []Key{"", "12", "a-1", "1-b"} {
		_, err := ParseKey(bad)
		assert.ErrorIs(t, err, ErrNotFound, "key %q", bad)
	}
}

func TestAdjacencyIsSymmetric(t *testing.T) {
	for _, topo := range []Topology{Orthogonal{}, OffsetHex{}} {
		t.Run(string(topo.Name()), func(t *testing.T) {
			g := NewGrid(8, topo)
			for r := 0; r < g.Size; r++ {
				for c := 0; c < g.Size; c++ {
					a := Coord{r, c}
					assert.False(t, g.Adjacent(a, a), "%v adjacent to itself", a)
					for _, b := range g.NeighborsOf(a) {
						require.True(t, g.InBounds(b))
						assert.True(t, g.Adjacent(b, a), "%v -> %v not symmetric", a, b)
					}
				}
			}
		})
	}
}

func TestNeighborCounts(t *testing.T) {
	orth := NewGrid(8, Orthogonal{})
	assert.Len(t, orth.NeighborsOf(Coord{0, 0}), 2)
	assert.Len(t, orth.NeighborsOf(Coord{0, 3}), 3)
	assert.Len(t, orth.NeighborsOf(Coord{4, 4}), 4)
	assert.False(t, orth.Adjacent(Coord{4, 4}, Coord{5, 5}), "no diagonals")

	hex := NewGrid(8, OffsetHex{})
	assert.Len(t, hex.NeighborsOf(Coord{4, 4}), 6)
	assert.Len(t, hex.NeighborsOf(Coord{3, 4}), 6)
	assert.True(t, hex.Adjacent(Coord{4, 4}, Coord{3, 3}), "even row leans left")
	assert.True(t, hex.Adjacent(Coord{3, 4}, Coord{2, 5}), "odd row leans right")
}

func TestTopologyFor(t *testing.T) {
	assert.Equal(t, models.TopologyHex, TopologyFor(models.TopologyHex).Name())
	assert.Equal(t, models.TopologyOrthogonal, TopologyFor(models.TopologyOrthogonal).Name())
	assert.Equal(t, models.TopologyOrthogonal, TopologyFor("").Name())
}

func TestGridGrowKeepsCoordinates(t *testing.T) {
	g := NewGrid(8, Orthogonal{})
	require.True(t, g.InBounds(Coord{7, 7}))
	require.False(t, g.InBounds(Coord{8, 0}))

	g.Grow(25)
	assert.Equal(t, 33, g.Size)
	assert.Equal(t, 1, g.Generation)
	assert.Equal(t, 33*33, g.TileCount())
	assert.True(t, g.InBounds(Coord{7, 7}))
	assert.True(t, g.InBounds(Coord{32, 32}))
	assert.Len(t, g.Keys(), g.TileCount())
	assert.Equal(t, Key("0-0"), g.Keys()[0])
}
