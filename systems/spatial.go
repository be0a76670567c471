package systems

import (
	"math"
	"slices"

	"github.com/pthm-cable/trophic/components"
)

// Sighting is one entity as it stood at the start of a tick.
type Sighting struct {
	ID      uint32
	Species uint8
	Tier    int
	X, Y    float64
	Speed   float64
	Status  components.Status
}

// View is an immutable snapshot of every entity taken before sensing begins.
// Steering reads only from the View, so no entity can observe another's
// already-updated position within the same tick.
type View struct {
	sightings []Sighting
	grid      *SpatialGrid
}

// NewView creates an empty view over a width x height plane.
func NewView(width, height, cellSize float64) *View {
	return &View{grid: NewSpatialGrid(width, height, cellSize)}
}

// Reset empties the view for a new capture.
func (v *View) Reset() {
	v.sightings = v.sightings[:0]
	v.grid.Clear()
}

// Add appends a sighting and indexes it. Returns its index.
func (v *View) Add(s Sighting) int {
	idx := len(v.sightings)
	v.sightings = append(v.sightings, s)
	v.grid.Insert(idx, s.X, s.Y)
	return idx
}

// Len returns the number of sightings.
func (v *View) Len() int {
	return len(v.sightings)
}

// At returns the sighting at idx.
func (v *View) At(idx int) *Sighting {
	return &v.sightings[idx]
}

// Within appends to dst the indices of sightings whose Euclidean distance
// from (x, y) is at most radius, excluding exclude, in ascending index order.
// A non-positive radius sees nothing.
func (v *View) Within(dst []int, x, y, radius float64, exclude int) []int {
	dst = dst[:0]
	if radius <= 0 {
		return dst
	}
	dst = v.grid.QueryInto(dst, x, y, radius)

	n := 0
	for _, idx := range dst {
		if idx == exclude {
			continue
		}
		s := &v.sightings[idx]
		if Distance(x, y, s.X, s.Y) <= radius {
			dst[n] = idx
			n++
		}
	}
	dst = dst[:n]
	slices.Sort(dst)
	return dst
}

// SpatialGrid buckets view indices by cell for radius queries.
type SpatialGrid struct {
	cellSize float64
	cols     int
	rows     int
	cells    [][]int
}

// NewSpatialGrid creates a spatial grid covering the given world size.
func NewSpatialGrid(width, height, cellSize float64) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = 64
	}
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	cells := make([][]int, cols*rows)
	for i := range cells {
		cells[i] = make([]int, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// Clear removes all entries from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds an index at the given position.
func (g *SpatialGrid) Insert(idx int, x, y float64) {
	col, row := g.cell(x, y)
	g.cells[row*g.cols+col] = append(g.cells[row*g.cols+col], idx)
}

// QueryInto appends every index stored in cells overlapping the square of
// half-width radius around (x, y). Candidates still need a distance check.
func (g *SpatialGrid) QueryInto(dst []int, x, y, radius float64) []int {
	minCol, minRow := g.cell(x-radius, y-radius)
	maxCol, maxRow := g.cell(x+radius, y+radius)

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			dst = append(dst, g.cells[row*g.cols+col]...)
		}
	}
	return dst
}

// cell returns the clamped cell coordinates for a position.
func (g *SpatialGrid) cell(x, y float64) (int, int) {
	col := clampInt(int(math.Floor(x/g.cellSize)), 0, g.cols-1)
	row := clampInt(int(math.Floor(y/g.cellSize)), 0, g.rows-1)
	return col, row
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
