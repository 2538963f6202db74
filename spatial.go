package main

import "math"

// SpatialGrid buckets static items (wall indices) by the cells their
// bounding boxes overlap, so segment queries only test nearby items.
type SpatialGrid struct {
	cellSize float64
	cols     int
	rows     int
	cells    [][]int
}

// NewSpatialGrid creates a grid covering [0,width] x [0,height]
func NewSpatialGrid(width, height, cellSize float64) *SpatialGrid {
	cols := int(math.Ceil(width/cellSize)) + 1
	rows := int(math.Ceil(height/cellSize)) + 1
	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    make([][]int, cols*rows),
	}
}

func (g *SpatialGrid) span(minX, minY, maxX, maxY float64) (int, int, int, int) {
	minCX := g.clampCol(int(math.Floor(minX / g.cellSize)))
	maxCX := g.clampCol(int(math.Floor(maxX / g.cellSize)))
	minCY := g.clampRow(int(math.Floor(minY / g.cellSize)))
	maxCY := g.clampRow(int(math.Floor(maxY / g.cellSize)))
	return minCX, minCY, maxCX, maxCY
}

func (g *SpatialGrid) clampCol(c int) int {
	if c < 0 {
		return 0
	}
	if c >= g.cols {
		return g.cols - 1
	}
	return c
}

func (g *SpatialGrid) clampRow(r int) int {
	if r < 0 {
		return 0
	}
	if r >= g.rows {
		return g.rows - 1
	}
	return r
}

// InsertBox adds item to every cell overlapping the box
func (g *SpatialGrid) InsertBox(minX, minY, maxX, maxY float64, item int) {
	minCX, minCY, maxCX, maxCY := g.span(minX, minY, maxX, maxY)
	for cy := minCY; cy <= maxCY; cy++ {
		for cx := minCX; cx <= maxCX; cx++ {
			idx := cy*g.cols + cx
			g.cells[idx] = append(g.cells[idx], item)
		}
	}
}

// QueryBuf appends the items of every cell overlapping the box to buf.
// An item spanning several cells is appended once per cell.
func (g *SpatialGrid) QueryBuf(minX, minY, maxX, maxY float64, buf []int) []int {
	minCX, minCY, maxCX, maxCY := g.span(minX, minY, maxX, maxY)
	for cy := minCY; cy <= maxCY; cy++ {
		for cx := minCX; cx <= maxCX; cx++ {
			buf = append(buf, g.cells[cy*g.cols+cx]...)
		}
	}
	return buf
}
