package cpu

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Neighbor holds a nearby particle with precomputed spatial data.
type Neighbor struct {
	Index  int32
	DX, DY float32 // delta from query origin to the neighbour
	DistSq float32
}

// MaxQueryResults caps the neighbours returned by one query so that density
// spikes cannot cause unbounded work.
const MaxQueryResults = 64

// SpatialGrid buckets particle indices into square cells over the simulation
// bounds, which are centred on the origin.
type SpatialGrid struct {
	cellSize float32
	cols     int
	rows     int
	halfW    float32
	halfH    float32
	cells    [][]int32
}

// NewSpatialGrid creates a grid covering a width x height box centred on the
// origin. Cells are at least cellSize wide and grow as needed so that the grid
// never holds more than maxCells cells.
func NewSpatialGrid(width, height, cellSize float32, maxCells int) *SpatialGrid {
	maxCells = max(maxCells, 1)
	if cellSize <= 0 || math.IsNaN(float64(cellSize)) {
		cellSize = max(width, height, 1)
	}
	cells := func(s float32) int {
		return (int(width/s) + 1) * (int(height/s) + 1)
	}
	if float64(width/cellSize+1)*float64(height/cellSize+1) > float64(maxCells) {
		cellSize = max(cellSize, float32(math.Sqrt(float64(width)*float64(height)/float64(maxCells))))
		for cells(cellSize) > maxCells {
			cellSize *= 1.25
		}
	}
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		halfW:    width / 2,
		halfH:    height / 2,
		cells:    make([][]int32, cols*rows),
	}
}

// CellSize returns the side of one cell.
func (g *SpatialGrid) CellSize() float32 { return g.cellSize }

// Cells returns the number of cells.
func (g *SpatialGrid) Cells() int { return len(g.cells) }

// Clear empties every cell, keeping capacity.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds particle i at (x, y). Positions outside the box land in the edge cells.
func (g *SpatialGrid) Insert(i int32, x, y float32) {
	col, row := g.cellCoords(x, y)
	idx := row*g.cols + col
	g.cells[idx] = append(g.cells[idx], i)
}

// QueryRadiusInto appends particles within radius of (x, y) to dst, skipping
// exclude, up to MaxQueryResults.
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, x, y, radius float32, exclude int32, positions []mgl32.Vec3) []Neighbor {
	cellRadius := int(radius/g.cellSize) + 1
	centerCol, centerRow := g.cellCoords(x, y)
	radiusSq := radius * radius

	for dr := -cellRadius; dr <= cellRadius; dr++ {
		row := centerRow + dr
		if row < 0 || row >= g.rows {
			continue
		}
		for dc := -cellRadius; dc <= cellRadius; dc++ {
			col := centerCol + dc
			if col < 0 || col >= g.cols {
				continue
			}

			for _, j := range g.cells[row*g.cols+col] {
				if j == exclude {
					continue
				}
				p := positions[j]
				dx := p.X() - x
				dy := p.Y() - y
				distSq := dx*dx + dy*dy
				if distSq <= radiusSq {
					dst = append(dst, Neighbor{Index: j, DX: dx, DY: dy, DistSq: distSq})
					if len(dst) >= MaxQueryResults {
						return dst
					}
				}
			}
		}
	}

	return dst
}

// cellCoords returns the clamped cell column and row for a position.
func (g *SpatialGrid) cellCoords(x, y float32) (col, row int) {
	col = int((x + g.halfW) / g.cellSize)
	row = int((y + g.halfH) / g.cellSize)

	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}
	return col, row
}
