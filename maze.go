package main

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
)

// MazeNode is one cell of the maze grid. Position is the cell's top-left
// corner in maze units.
type MazeNode struct {
	ID       int
	Col      int
	Row      int
	Position Position

	neighbours []*MazeNode
	connected  []*MazeNode
}

// IsConnected reports whether a passage joins n and o
func (n *MazeNode) IsConnected(o *MazeNode) bool {
	if o == nil {
		return false
	}
	for _, c := range n.connected {
		if c == o {
			return true
		}
	}
	return false
}

// Connected returns the cells reachable from n in one step
func (n *MazeNode) Connected() []*MazeNode {
	out := make([]*MazeNode, len(n.connected))
	copy(out, n.connected)
	return out
}

func (n *MazeNode) connect(o *MazeNode) {
	if n.IsConnected(o) {
		return
	}
	n.connected = append(n.connected, o)
	o.connected = append(o.connected, n)
}

func (n *MazeNode) saturated() bool {
	return len(n.connected) >= len(n.neighbours)
}

// Maze is a grid of Height rows by Width columns. Edges between adjacent
// cells are passages; a missing edge is a wall.
type Maze struct {
	Width  int
	Height int
	Scale  float64

	nodes [][]*MazeNode // [row][col]
	rng   *rand.Rand
}

// NewMaze builds a perfect maze (a spanning tree over the grid) using
// randomized Prim's algorithm.
func NewMaze(height, width int, scale float64, rng *rand.Rand) (*Maze, error) {
	if height < 1 || width < 1 {
		return nil, fmt.Errorf("maze dimensions must be positive, got %dx%d", width, height)
	}
	if scale <= 0 {
		return nil, fmt.Errorf("maze scale must be positive, got %v", scale)
	}
	if rng == nil {
		return nil, fmt.Errorf("maze needs a random source")
	}
	m := &Maze{Width: width, Height: height, Scale: scale, rng: rng}
	m.buildGrid()
	m.generate()
	return m, nil
}

func (m *Maze) buildGrid() {
	m.nodes = make([][]*MazeNode, m.Height)
	for r := 0; r < m.Height; r++ {
		m.nodes[r] = make([]*MazeNode, m.Width)
		for c := 0; c < m.Width; c++ {
			m.nodes[r][c] = &MazeNode{
				ID:       r*m.Width + c,
				Col:      c,
				Row:      r,
				Position: Position{X: float64(c) * m.Scale, Y: float64(r) * m.Scale},
			}
		}
	}
	for r := 0; r < m.Height; r++ {
		for c := 0; c < m.Width; c++ {
			n := m.nodes[r][c]
			if r > 0 {
				n.neighbours = append(n.neighbours, m.nodes[r-1][c])
			}
			if c < m.Width-1 {
				n.neighbours = append(n.neighbours, m.nodes[r][c+1])
			}
			if r < m.Height-1 {
				n.neighbours = append(n.neighbours, m.nodes[r+1][c])
			}
			if c > 0 {
				n.neighbours = append(n.neighbours, m.nodes[r][c-1])
			}
		}
	}
}

func (m *Maze) generate() {
	total := m.Width * m.Height
	inside := make([]bool, total)
	queued := make([]bool, total)
	var border []*MazeNode

	push := func(n *MazeNode) {
		for _, nb := range n.neighbours {
			if !inside[nb.ID] && !queued[nb.ID] {
				queued[nb.ID] = true
				border = append(border, nb)
			}
		}
	}

	start := m.nodes[m.rng.Intn(m.Height)][m.rng.Intn(m.Width)]
	inside[start.ID] = true
	push(start)

	cands := make([]*MazeNode, 0, 4)
	for len(border) > 0 {
		i := m.rng.Intn(len(border))
		n := border[i]
		border[i] = border[len(border)-1]
		border = border[:len(border)-1]

		cands = cands[:0]
		for _, nb := range n.neighbours {
			if inside[nb.ID] {
				cands = append(cands, nb)
			}
		}
		// a queued node always has at least one inside neighbour
		n.connect(cands[m.rng.Intn(len(cands))])
		inside[n.ID] = true
		push(n)
	}
}

// MaxEdges is the number of edges in the full grid graph
func (m *Maze) MaxEdges() int {
	return m.Height*m.Width*2 - m.Height - m.Width
}

// TreeEdges is the number of edges in a spanning tree of the grid
func (m *Maze) TreeEdges() int {
	return m.Height*m.Width - 1
}

// EdgeCount returns the current number of passages
func (m *Maze) EdgeCount() int {
	sum := 0
	for _, row := range m.nodes {
		for _, n := range row {
			sum += len(n.connected)
		}
	}
	return sum / 2
}

// RemoveWalls opens floor(openness * (MaxEdges - TreeEdges)) extra passages.
// Openness is clamped to [0, 1]. Passages are only ever added.
func (m *Maze) RemoveWalls(openness float64) {
	if math.IsNaN(openness) {
		return
	}
	openness = Clamp(openness, 0, 1)
	toAdd := int(math.Floor(openness * float64(m.MaxEdges()-m.TreeEdges())))
	if left := m.MaxEdges() - m.EdgeCount(); toAdd > left {
		toAdd = left
	}

	var open, free []*MazeNode
	for ; toAdd > 0; toAdd-- {
		open = open[:0]
		for _, row := range m.nodes {
			for _, n := range row {
				if !n.saturated() {
					open = append(open, n)
				}
			}
		}
		if len(open) == 0 {
			return
		}
		n := open[m.rng.Intn(len(open))]
		free = free[:0]
		for _, nb := range n.neighbours {
			if !n.IsConnected(nb) {
				free = append(free, nb)
			}
		}
		n.connect(free[m.rng.Intn(len(free))])
	}
}

// Node returns the cell at (col, row). Out-of-range coordinates are a
// programming error and panic.
func (m *Maze) Node(col, row int) *MazeNode {
	if col < 0 || col >= m.Width || row < 0 || row >= m.Height {
		panic(fmt.Sprintf("maze: node (%d,%d) outside %dx%d grid", col, row, m.Width, m.Height))
	}
	return m.nodes[row][col]
}

// NodeAt returns the cell containing pos, or nil outside the maze
func (m *Maze) NodeAt(pos Position) *MazeNode {
	if pos.X < 0 || pos.Y < 0 {
		return nil
	}
	col := int(pos.X / m.Scale)
	row := int(pos.Y / m.Scale)
	if col >= m.Width || row >= m.Height {
		return nil
	}
	return m.nodes[row][col]
}

// Center returns the midpoint of n
func (m *Maze) Center(n *MazeNode) Position {
	return Position{X: n.Position.X + m.Scale/2, Y: n.Position.Y + m.Scale/2}
}

// Nodes calls fn for every cell in row-major order
func (m *Maze) Nodes(fn func(n *MazeNode)) {
	for _, row := range m.nodes {
		for _, n := range row {
			fn(n)
		}
	}
}

// PixelWidth and PixelHeight are the maze bounds in maze units
func (m *Maze) PixelWidth() float64  { return float64(m.Width) * m.Scale }
func (m *Maze) PixelHeight() float64 { return float64(m.Height) * m.Scale }

// Path renders the walls as SVG path data: the border rectangle followed by
// the north and west wall of every cell that lacks that passage.
func (m *Maze) Path() string {
	var b strings.Builder
	w, h := m.PixelWidth(), m.PixelHeight()
	fmt.Fprintf(&b, "M0 0 L%s 0 L%s %s L0 %s L0 0", num(w), num(w), num(h), num(h))
	for _, row := range m.nodes {
		for _, n := range row {
			x, y := n.Position.X, n.Position.Y
			if n.Row > 0 && !n.IsConnected(m.nodes[n.Row-1][n.Col]) {
				fmt.Fprintf(&b, " M%s %s L%s %s", num(x), num(y), num(x+m.Scale), num(y))
			}
			if n.Col > 0 && !n.IsConnected(m.nodes[n.Row][n.Col-1]) {
				fmt.Fprintf(&b, " M%s %s L%s %s", num(x), num(y), num(x), num(y+m.Scale))
			}
		}
	}
	return b.String()
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Condensed returns the wire form sent with round-start
func (m *Maze) Condensed() *MazeState {
	st := &MazeState{
		Width:   m.Width,
		Height:  m.Height,
		Scale:   m.Scale,
		Nodes:   make([][]MazeNodeState, m.Height),
		MapData: m.Path(),
	}
	for r, row := range m.nodes {
		st.Nodes[r] = make([]MazeNodeState, m.Width)
		for c, n := range row {
			ns := MazeNodeState{ID: n.ID, Position: n.Position.Condensed()}
			if r > 0 {
				ns.Connected.Up = n.IsConnected(m.nodes[r-1][c])
			}
			if r < m.Height-1 {
				ns.Connected.Down = n.IsConnected(m.nodes[r+1][c])
			}
			if c > 0 {
				ns.Connected.Left = n.IsConnected(m.nodes[r][c-1])
			}
			if c < m.Width-1 {
				ns.Connected.Right = n.IsConnected(m.nodes[r][c+1])
			}
			st.Nodes[r][c] = ns
		}
	}
	return st
}

// Route returns the BFS route from 'from' to 'to' over passages, both ends
// included, or nil when unreachable.
func (m *Maze) Route(from, to *MazeNode) []*MazeNode {
	if from == nil || to == nil {
		return nil
	}
	if from == to {
		return []*MazeNode{from}
	}
	parent := make([]*MazeNode, m.Width*m.Height)
	seen := make([]bool, m.Width*m.Height)
	seen[from.ID] = true
	queue := []*MazeNode{from}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n == to {
			break
		}
		for _, c := range n.connected {
			if !seen[c.ID] {
				seen[c.ID] = true
				parent[c.ID] = n
				queue = append(queue, c)
			}
		}
	}
	if !seen[to.ID] {
		return nil
	}
	var route []*MazeNode
	for n := to; n != nil; n = parent[n.ID] {
		route = append(route, n)
		if n == from {
			break
		}
	}
	for i, j := 0, len(route)-1; i < j; i, j = i+1, j-1 {
		route[i], route[j] = route[j], route[i]
	}
	return route
}
