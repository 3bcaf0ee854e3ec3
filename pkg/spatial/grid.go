// Package spatial implements a uniform bucket grid over a wrap-around plane.
// Buckets hold integer IDs, never pointers, so callers keep their items in
// a dense arena and address them by index.
package spatial

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/lao-tseu-is-alive/go-toroidal-boids/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-toroidal-boids/pkg/torus"
)

// ErrInvalidGrid is returned by New for dimensions that cannot be bucketed.
var ErrInvalidGrid = errors.New("invalid grid dimensions")

// Cell addresses one bucket: column X, row Y.
type Cell struct {
	X, Y int
}

func (c Cell) String() string {
	return fmt.Sprintf("[%d,%d]", c.X, c.Y)
}

// Grid buckets IDs by position. It is not safe for concurrent mutation;
// concurrent QueryRadius calls are fine while nothing is inserted,
// relocated or removed.
type Grid struct {
	plane    torus.Plane
	cellSize float64
	cols     int
	rows     int
	cells    [][]int // flat, index = row*cols + col
	count    int
}

// New creates a grid of ceil(width/cellSize) x ceil(height/cellSize) cells.
func New(width, height, cellSize float64) (*Grid, error) {
	for _, v := range [3]float64{width, height, cellSize} {
		if !(v > 0) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: width=%v height=%v cellSize=%v", ErrInvalidGrid, width, height, cellSize)
		}
	}
	cols := int(math.Ceil(width / cellSize))
	rows := int(math.Ceil(height / cellSize))

	cells := make([][]int, cols*rows)
	for i := range cells {
		cells[i] = make([]int, 0, 8)
	}

	return &Grid{
		plane:    torus.Plane{Width: width, Height: height},
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}, nil
}

// Dims returns the number of columns and rows.
func (g *Grid) Dims() (cols, rows int) { return g.cols, g.rows }

// CellSize returns the side length of a cell.
func (g *Grid) CellSize() float64 { return g.cellSize }

// Len returns the number of IDs currently stored.
func (g *Grid) Len() int { return g.count }

// CellFor returns the cell covering pos. Positions off the plane are wrapped first.
func (g *Grid) CellFor(pos geometry.Vector2D) Cell {
	pos = g.plane.Wrap(pos)
	return Cell{
		X: mod(int(math.Floor(pos.X/g.cellSize)), g.cols),
		Y: mod(int(math.Floor(pos.Y/g.cellSize)), g.rows),
	}
}

// Insert adds id to the cell covering pos and returns that cell.
// Inserting an id already present in that cell changes nothing.
func (g *Grid) Insert(id int, pos geometry.Vector2D) Cell {
	c := g.CellFor(pos)
	idx := g.index(c)
	if slices.Contains(g.cells[idx], id) {
		return c
	}
	g.cells[idx] = append(g.cells[idx], id)
	g.count++
	return c
}

// Relocate moves id from cell `from` to the cell covering pos.
// It reports whether a move happened; when the cell is unchanged it is a no-op.
// id must be stored in from: anything else is a broken caller and panics.
func (g *Grid) Relocate(id int, from Cell, pos geometry.Vector2D) (Cell, bool) {
	to := g.CellFor(pos)
	if to == from {
		return from, false
	}
	if !g.Remove(id, from) {
		panic(fmt.Sprintf("spatial: relocate of id %d from %s, which does not hold it", id, from))
	}
	idx := g.index(to)
	g.cells[idx] = append(g.cells[idx], id)
	g.count++
	return to, true
}

// Remove deletes id from cell c. It reports whether id was there.
func (g *Grid) Remove(id int, c Cell) bool {
	idx := g.index(c)
	bucket := g.cells[idx]
	i := slices.Index(bucket, id)
	if i < 0 {
		return false
	}
	// order inside a bucket is irrelevant: swap with the last element
	last := len(bucket) - 1
	bucket[i] = bucket[last]
	g.cells[idx] = bucket[:last]
	g.count--
	return true
}

// Clear empties every bucket but keeps their capacity.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
	g.count = 0
}

// Members returns the IDs stored in c. The slice is owned by the grid and
// only valid until the next mutation.
func (g *Grid) Members(c Cell) []int {
	return g.cells[g.index(c)]
}

// Locate scans every bucket for id and returns all cells holding it.
// It is a full scan meant for consistency checks, not for the hot path.
func (g *Grid) Locate(id int) []Cell {
	var found []Cell
	for idx, bucket := range g.cells {
		for _, member := range bucket {
			if member == id {
				found = append(found, Cell{X: idx % g.cols, Y: idx / g.cols})
			}
		}
	}
	return found
}

// ForEach calls fn for every stored ID with the cell holding it.
func (g *Grid) ForEach(fn func(id int, c Cell)) {
	for idx, bucket := range g.cells {
		c := Cell{X: idx % g.cols, Y: idx / g.cols}
		for _, id := range bucket {
			fn(id, c)
		}
	}
}

// QueryRadius appends to dst every ID stored in a cell that intersects the
// square of half-side radius around pos, taking wrap-around into account,
// and returns the extended slice. Each cell is visited once even when the
// square is wider than the plane. The result is a superset: callers must
// still filter by exact distance.
func (g *Grid) QueryRadius(pos geometry.Vector2D, radius float64, dst []int) []int {
	pos = g.plane.Wrap(pos)
	var colBuf, rowBuf [8]int
	cols := g.axisCells(pos.X, radius, g.plane.Width, g.cols, colBuf[:0])
	rows := g.axisCells(pos.Y, radius, g.plane.Height, g.rows, rowBuf[:0])

	for _, row := range rows {
		for _, col := range cols {
			dst = append(dst, g.cells[g.index(Cell{X: col, Y: row})]...)
		}
	}
	return dst
}

// axisCells lists the distinct cell indices along one axis covering the
// wrapped interval [center-radius, center+radius].
func (g *Grid) axisCells(center, radius, extent float64, n int, dst []int) []int {
	if 2*radius >= extent {
		for i := 0; i < n; i++ {
			dst = append(dst, i)
		}
		return dst
	}

	lo, hi := center-radius, center+radius
	switch {
	case lo < 0:
		dst = g.appendRange(dst, g.axisCell(lo+extent, n), n-1)
		dst = g.appendRange(dst, 0, g.axisCell(hi, n))
	case hi >= extent:
		dst = g.appendRange(dst, g.axisCell(lo, n), n-1)
		dst = g.appendRange(dst, 0, g.axisCell(hi-extent, n))
	default:
		dst = g.appendRange(dst, g.axisCell(lo, n), g.axisCell(hi, n))
	}
	return dedupe(dst)
}

func (g *Grid) axisCell(v float64, n int) int {
	return mod(int(math.Floor(v/g.cellSize)), n)
}

func (g *Grid) appendRange(dst []int, from, to int) []int {
	for i := from; i <= to; i++ {
		dst = append(dst, i)
	}
	return dst
}

// dedupe drops repeated indices; the two wrapped segments can meet in one cell.
func dedupe(idx []int) []int {
	if len(idx) < 2 {
		return idx
	}
	slices.Sort(idx)
	return slices.Compact(idx)
}

func (g *Grid) index(c Cell) int {
	if c.X < 0 || c.X >= g.cols || c.Y < 0 || c.Y >= g.rows {
		panic(fmt.Sprintf("spatial: cell %s outside %dx%d grid", c, g.cols, g.rows))
	}
	return c.Y*g.cols + c.X
}

// mod is a modulo whose result is always in [0, n).
func mod(v, n int) int {
	r := v % n
	if r < 0 {
		r += n
	}
	return r
}
