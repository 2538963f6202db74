package main

import "math"

// Wall is an axis-aligned segment separating two unconnected cells, or
// part of the border.
type Wall struct {
	X1, Y1, X2, Y2 float64
}

// Horizontal reports whether the wall runs along the x axis
func (w Wall) Horizontal() bool {
	return w.Y1 == w.Y2
}

// WallManager owns the wall segments of a finalized maze and answers
// segment-crossing queries through a cell-sized spatial grid.
type WallManager struct {
	walls []Wall
	grid  *SpatialGrid

	buf   []int
	stamp []uint32
	epoch uint32
}

// NewWallManager derives the walls of m: the four border segments plus the
// north and west wall of each cell wherever that passage is missing. The
// maze must not change afterwards.
func NewWallManager(m *Maze) *WallManager {
	w, h := m.PixelWidth(), m.PixelHeight()
	wm := &WallManager{
		walls: []Wall{
			{0, 0, w, 0},
			{w, 0, w, h},
			{0, h, w, h},
			{0, 0, 0, h},
		},
		grid: NewSpatialGrid(w, h, m.Scale),
	}
	m.Nodes(func(n *MazeNode) {
		x, y := n.Position.X, n.Position.Y
		if n.Row > 0 && !n.IsConnected(m.Node(n.Col, n.Row-1)) {
			wm.walls = append(wm.walls, Wall{x, y, x + m.Scale, y})
		}
		if n.Col > 0 && !n.IsConnected(m.Node(n.Col-1, n.Row)) {
			wm.walls = append(wm.walls, Wall{x, y, x, y + m.Scale})
		}
	})
	for i, wl := range wm.walls {
		wm.grid.InsertBox(math.Min(wl.X1, wl.X2), math.Min(wl.Y1, wl.Y2),
			math.Max(wl.X1, wl.X2), math.Max(wl.Y1, wl.Y2), i)
	}
	wm.stamp = make([]uint32, len(wm.walls))
	return wm
}

// Walls returns a copy of every segment
func (wm *WallManager) Walls() []Wall {
	out := make([]Wall, len(wm.walls))
	copy(out, wm.walls)
	return out
}

// Len returns the number of segments
func (wm *WallManager) Len() int {
	return len(wm.walls)
}

// candidates returns the deduplicated wall indices near segment pq.
// The returned slice is reused by the next call.
func (wm *WallManager) candidates(p, q Position) []int {
	wm.epoch++
	if wm.epoch == 0 {
		for i := range wm.stamp {
			wm.stamp[i] = 0
		}
		wm.epoch = 1
	}
	raw := wm.grid.QueryBuf(math.Min(p.X, q.X), math.Min(p.Y, q.Y),
		math.Max(p.X, q.X), math.Max(p.Y, q.Y), wm.buf[:0])
	out := raw[:0]
	for _, i := range raw {
		if wm.stamp[i] != wm.epoch {
			wm.stamp[i] = wm.epoch
			out = append(out, i)
		}
	}
	wm.buf = raw
	return out
}

// CheckLineCollision reports whether segment pq crosses any wall
func (wm *WallManager) CheckLineCollision(p, q Position) bool {
	for _, i := range wm.candidates(p, q) {
		wl := wm.walls[i]
		if _, _, ok := segmentIntersection(p.X, p.Y, q.X, q.Y, wl.X1, wl.Y1, wl.X2, wl.Y2); ok {
			return true
		}
	}
	return false
}

// FirstCollision returns the wall nearest to p along pq and the fraction
// of pq travelled before reaching it.
func (wm *WallManager) FirstCollision(p, q Position) (Wall, float64, bool) {
	var hit Wall
	best := math.Inf(1)
	for _, i := range wm.candidates(p, q) {
		wl := wm.walls[i]
		t, _, ok := segmentIntersection(p.X, p.Y, q.X, q.Y, wl.X1, wl.Y1, wl.X2, wl.Y2)
		if ok && t < best {
			best = t
			hit = wl
		}
	}
	if math.IsInf(best, 1) {
		return Wall{}, 0, false
	}
	return hit, best, true
}
