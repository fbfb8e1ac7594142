package game

import (
	"fmt"
	"strconv"
	"strings"

	"domination-engine/internal/models"
)

// Key is the serialized identity of a tile, "row-col".
type Key string

// Coord is a tile position.
type Coord struct {
	Row int
	Col int
}

func (c Coord) Key() Key {
	return Key(strconv.Itoa(c.Row) + "-" + strconv.Itoa(c.Col))
}

// ParseKey is the inverse of Coord.Key.
func ParseKey(k Key) (Coord, error) {
	r, c, ok := strings.Cut(string(k), "-")
	if !ok {
		return Coord{}, fmt.Errorf("parse key %q: missing separator: %w", k, ErrNotFound)
	}
	row, err := strconv.Atoi(r)
	if err != nil {
		return Coord{}, fmt.Errorf("parse key %q: %w", k, ErrNotFound)
	}
	col, err := strconv.Atoi(c)
	if err != nil {
		return Coord{}, fmt.Errorf("parse key %q: %w", k, ErrNotFound)
	}
	return Coord{Row: row, Col: col}, nil
}

// Topology enumerates the neighbors of a coordinate, ignoring bounds.
type Topology interface {
	Offsets(c Coord) []Coord
	Name() models.Topology
}

// Orthogonal is the 4-neighbor (von Neumann) policy.
type Orthogonal struct{}

func (Orthogonal) Name() models.Topology { return models.TopologyOrthogonal }

func (Orthogonal) Offsets(c Coord) []Coord {
	return []Coord{
		{c.Row - 1, c.Col},
		{c.Row + 1, c.Col},
		{c.Row, c.Col - 1},
		{c.Row, c.Col + 1},
	}
}

// OffsetHex is the "odd-r" offset layout: odd rows are shifted right, so the
// diagonal neighbors of an even row sit at col-1 and those of an odd row at col+1.
type OffsetHex struct{}

func (OffsetHex) Name() models.Topology { return models.TopologyHex }

func (OffsetHex) Offsets(c Coord) []Coord {
	d := -1
	if c.Row%2 != 0 {
		d = 1
	}
	return []Coord{
		{c.Row - 1, c.Col},
		{c.Row - 1, c.Col + d},
		{c.Row, c.Col - 1},
		{c.Row, c.Col + 1},
		{c.Row + 1, c.Col},
		{c.Row + 1, c.Col + d},
	}
}

// TopologyFor resolves a settings value to a policy. Unknown names use Orthogonal.
func TopologyFor(name models.Topology) Topology {
	if name == models.TopologyHex {
		return OffsetHex{}
	}
	return Orthogonal{}
}

// Grid is a square N×N board. Generation increases every time the grid grows.
type Grid struct {
	Size       int
	Generation int
	Policy     Topology
}

func NewGrid(size int, policy Topology) *Grid {
	if policy == nil {
		policy = Orthogonal{}
	}
	return &Grid{Size: size, Policy: policy}
}

func (g *Grid) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < g.Size && c.Col >= 0 && c.Col < g.Size
}

// NeighborsOf returns the in-bounds neighbors of c in the policy's fixed order.
func (g *Grid) NeighborsOf(c Coord) []Coord {
	if !g.InBounds(c) {
		return nil
	}
	offsets := g.Policy.Offsets(c)
	out := offsets[:0]
	for _, n := range offsets {
		if g.InBounds(n) {
			out = append(out, n)
		}
	}
	return out
}

// Adjacent is derived from NeighborsOf so the two can never disagree.
func (g *Grid) Adjacent(a, b Coord) bool {
	for _, n := range g.NeighborsOf(a) {
		if n == b {
			return true
		}
	}
	return false
}

// AdjacentKeys is Adjacent for serialized keys; unparsable keys are never adjacent.
func (g *Grid) AdjacentKeys(a, b Key) bool {
	ca, err := ParseKey(a)
	if err != nil {
		return false
	}
	cb, err := ParseKey(b)
	if err != nil {
		return false
	}
	return g.Adjacent(ca, cb)
}

// Keys lists every tile key in row-major order.
func (g *Grid) Keys() []Key {
	keys := make([]Key, 0, g.Size*g.Size)
	for r := 0; r < g.Size; r++ {
		for c := 0; c < g.Size; c++ {
			keys = append(keys, Coord{r, c}.Key())
		}
	}
	return keys
}

// Grow enlarges the grid by n on each axis. Existing coordinates stay valid.
func (g *Grid) Grow(n int) {
	g.Size += n
	g.Generation++
}

func (g *Grid) TileCount() int { return g.Size * g.Size }
