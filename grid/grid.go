package grid

import (
	"fmt"
	"strings"
)

// Tile is the content of one grid cell
type Tile uint8

const (
	Empty Tile = iota
	Path
	Pickup
	Dropoff
	Obstacle
	Start
	End
)

var tileSymbols = [...]byte{
	Empty:    '#',
	Path:     'X',
	Pickup:   'P',
	Dropoff:  'D',
	Obstacle: 'O',
	Start:    'S',
	End:      'E',
}

var tileNames = [...]string{
	Empty:    "empty",
	Path:     "path",
	Pickup:   "pickup",
	Dropoff:  "dropoff",
	Obstacle: "obstacle",
	Start:    "start",
	End:      "end",
}

// Symbol returns the single-byte text encoding of the tile
func (t Tile) Symbol() byte {
	if int(t) < len(tileSymbols) {
		return tileSymbols[t]
	}
	return '?'
}

func (t Tile) String() string {
	if int(t) < len(tileNames) {
		return tileNames[t]
	}
	return fmt.Sprintf("tile(%d)", uint8(t))
}

// Walkable reports whether a solver may stand on the tile
// Task tiles are interacted with from an adjacent cell, never entered
func (t Tile) Walkable() bool {
	return t == Empty || t == Path || t == Start || t == End
}

// TileFromSymbol decodes a text symbol
func TileFromSymbol(b byte) (Tile, bool) {
	for t, s := range tileSymbols {
		if s == b {
			return Tile(t), true
		}
	}
	return Empty, false
}

// Point addresses a cell: X is the column, Y is the row
type Point struct {
	X, Y int
}

// Add returns the component-wise sum
func (p Point) Add(d Point) Point {
	return Point{p.X + d.X, p.Y + d.Y}
}

// Manhattan returns the L1 distance between two points
func (p Point) Manhattan(q Point) int {
	return abs(p.X-q.X) + abs(p.Y-q.Y)
}

// Adjacent reports whether q is an orthogonal neighbour of p
func (p Point) Adjacent(q Point) bool {
	return p.Manhattan(q) == 1
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Directions lists orthogonal steps in the fixed expansion order: up, down, left, right
var Directions = [4]Point{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}

// Grid is a square tile map stored row-major
type Grid struct {
	size  int
	cells []Tile
}

// New creates a size x size grid of Empty tiles
func New(size int) *Grid {
	if size < 1 {
		size = 1
	}
	return &Grid{
		size:  size,
		cells: make([]Tile, size*size),
	}
}

// NewBordered creates an Empty playfield enclosed by an Obstacle ring
func NewBordered(size int) *Grid {
	g := New(size)
	for i := 0; i < g.size; i++ {
		g.cells[i] = Obstacle
		g.cells[(g.size-1)*g.size+i] = Obstacle
		g.cells[i*g.size] = Obstacle
		g.cells[i*g.size+g.size-1] = Obstacle
	}
	return g
}

// Size returns the side length
func (g *Grid) Size() int {
	return g.size
}

// InBounds reports whether p addresses a cell of the grid
func (g *Grid) InBounds(p Point) bool {
	return p.X >= 0 && p.X < g.size && p.Y >= 0 && p.Y < g.size
}

// At returns the tile at p; out-of-bounds reads as Obstacle
func (g *Grid) At(p Point) Tile {
	if !g.InBounds(p) {
		return Obstacle
	}
	return g.cells[p.Y*g.size+p.X]
}

// Set writes a tile; out-of-bounds writes are ignored
func (g *Grid) Set(p Point, t Tile) {
	if !g.InBounds(p) {
		return
	}
	g.cells[p.Y*g.size+p.X] = t
}

// Index returns the flat row-major index of p
func (g *Grid) Index(p Point) int {
	return p.Y*g.size + p.X
}

// PointAt converts a flat index back to a point
func (g *Grid) PointAt(idx int) Point {
	return Point{idx % g.size, idx / g.size}
}

// Len returns the number of cells
func (g *Grid) Len() int {
	return len(g.cells)
}

// Clone returns a deep copy
func (g *Grid) Clone() *Grid {
	c := &Grid{
		size:  g.size,
		cells: make([]Tile, len(g.cells)),
	}
	copy(c.cells, g.cells)
	return c
}

// CopyRows overwrites rows [from, to) with the same rows of src
// Grids of different size are left untouched
func (g *Grid) CopyRows(src *Grid, from, to int) {
	if src.size != g.size {
		return
	}
	from = max(from, 0)
	to = min(to, g.size)
	if from >= to {
		return
	}
	copy(g.cells[from*g.size:to*g.size], src.cells[from*g.size:to*g.size])
}

// Equal reports whether both grids have the same size and layout
func (g *Grid) Equal(o *Grid) bool {
	if g == nil || o == nil {
		return g == o
	}
	if g.size != o.size {
		return false
	}
	for i, t := range g.cells {
		if o.cells[i] != t {
			return false
		}
	}
	return true
}

// Find returns every cell holding t in row-major order
func (g *Grid) Find(t Tile) []Point {
	var out []Point
	for i, c := range g.cells {
		if c == t {
			out = append(out, g.PointAt(i))
		}
	}
	return out
}

// First returns the first cell in row-major order holding t
func (g *Grid) First(t Tile) (Point, bool) {
	for i, c := range g.cells {
		if c == t {
			return g.PointAt(i), true
		}
	}
	return Point{}, false
}

// Count returns the number of cells holding t
func (g *Grid) Count(t Tile) int {
	n := 0
	for _, c := range g.cells {
		if c == t {
			n++
		}
	}
	return n
}

// Replace rewrites every from tile to to
func (g *Grid) Replace(from, to Tile) {
	for i, c := range g.cells {
		if c == from {
			g.cells[i] = to
		}
	}
}

// Neighbours returns in-bounds orthogonal neighbours in Directions order
func (g *Grid) Neighbours(p Point) []Point {
	out := make([]Point, 0, 4)
	for _, d := range Directions {
		n := p.Add(d)
		if g.InBounds(n) {
			out = append(out, n)
		}
	}
	return out
}

// AdjacentIndex returns the index of the first task orthogonally next to p, or -1
func AdjacentIndex(p Point, tasks []Point) int {
	for i, t := range tasks {
		if p.Adjacent(t) {
			return i
		}
	}
	return -1
}

// HasNeighbour reports whether any orthogonal neighbour of p holds t
func (g *Grid) HasNeighbour(p Point, t Tile) bool {
	for _, d := range Directions {
		n := p.Add(d)
		if g.InBounds(n) && g.At(n) == t {
			return true
		}
	}
	return false
}

// IsBorder reports whether p lies on the outer ring
func (g *Grid) IsBorder(p Point) bool {
	return p.X == 0 || p.Y == 0 || p.X == g.size-1 || p.Y == g.size-1
}

// IsInterior reports whether p is inside the outer ring
func (g *Grid) IsInterior(p Point) bool {
	return g.InBounds(p) && !g.IsBorder(p)
}

// IsCorner reports whether p is one of the four grid corners
func (g *Grid) IsCorner(p Point) bool {
	edgeX := p.X == 0 || p.X == g.size-1
	edgeY := p.Y == 0 || p.Y == g.size-1
	return edgeX && edgeY
}

// Rows encodes the grid as one symbol string per row
func (g *Grid) Rows() []string {
	rows := make([]string, g.size)
	buf := make([]byte, g.size)
	for y := 0; y < g.size; y++ {
		for x := 0; x < g.size; x++ {
			buf[x] = g.cells[y*g.size+x].Symbol()
		}
		rows[y] = string(buf)
	}
	return rows
}

func (g *Grid) String() string {
	return strings.Join(g.Rows(), "\n")
}

// Parse decodes symbol rows produced by Rows
func Parse(rows []string) (*Grid, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("parse grid: no rows")
	}

	size := len(rows)
	g := New(size)
	for y, row := range rows {
		if len(row) != size {
			return nil, fmt.Errorf("parse grid: row %d has %d cells, want %d", y, len(row), size)
		}
		for x := 0; x < size; x++ {
			t, ok := TileFromSymbol(row[x])
			if !ok {
				return nil, fmt.Errorf("parse grid: unknown symbol %q at %v", row[x], Point{x, y})
			}
			g.cells[y*size+x] = t
		}
	}
	return g, nil
}

// MustParse is Parse for fixtures; it panics on malformed input
func MustParse(rows ...string) *Grid {
	g, err := Parse(rows)
	if err != nil {
		panic(err)
	}
	return g
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
