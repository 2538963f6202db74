package main

import (
	"math/rand"
	"strings"
	"testing"
)

func newTestMaze(t *testing.T, h, w int, seed int64) *Maze {
	t.Helper()
	m, err := NewMaze(h, w, MazeScale, rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatalf("NewMaze: %v", err)
	}
	return m
}

// openMaze has every passage open, so only the border remains
func openMaze(t *testing.T, h, w int) *Maze {
	t.Helper()
	m := newTestMaze(t, h, w, 1)
	m.RemoveWalls(1)
	return m
}

func reachable(m *Maze) int {
	seen := map[*MazeNode]bool{}
	queue := []*MazeNode{m.Node(0, 0)}
	seen[queue[0]] = true
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, c := range n.Connected() {
			if !seen[c] {
				seen[c] = true
				queue = append(queue, c)
			}
		}
	}
	return len(seen)
}

func TestMazeIsSpanningTree(t *testing.T) {
	for seed := int64(0); seed < 40; seed++ {
		h, w := 1+int(seed%6), 1+int(seed%9)
		m := newTestMaze(t, h, w, seed)
		if got := reachable(m); got != h*w {
			t.Fatalf("seed %d: %dx%d maze reaches %d of %d cells", seed, w, h, got, h*w)
		}
		if m.EdgeCount() != m.TreeEdges() {
			t.Errorf("seed %d: expected %d edges, got %d", seed, m.TreeEdges(), m.EdgeCount())
		}
	}
}

func TestMazeConnectionsAreAdjacentAndSymmetric(t *testing.T) {
	m := newTestMaze(t, 6, 9, 7)
	m.RemoveWalls(0.4)
	m.Nodes(func(n *MazeNode) {
		for _, c := range n.Connected() {
			dc, dr := c.Col-n.Col, c.Row-n.Row
			if dc*dc+dr*dr != 1 {
				t.Errorf("node %d connected to non-adjacent node %d", n.ID, c.ID)
			}
			if !c.IsConnected(n) {
				t.Errorf("connection %d-%d is one-way", n.ID, c.ID)
			}
		}
	})
}

func TestRemoveWallsOnlyAddsEdges(t *testing.T) {
	m := newTestMaze(t, 4, 6, 3)
	before := map[[2]int]bool{}
	m.Nodes(func(n *MazeNode) {
		for _, c := range n.Connected() {
			before[[2]int{n.ID, c.ID}] = true
		}
	})

	m.RemoveWalls(0.5)
	want := m.TreeEdges() + (m.MaxEdges()-m.TreeEdges())/2
	if m.EdgeCount() != want {
		t.Errorf("expected %d edges after openness 0.5, got %d", want, m.EdgeCount())
	}
	for e := range before {
		if !m.Node(e[0]%m.Width, e[0]/m.Width).IsConnected(m.Node(e[1]%m.Width, e[1]/m.Width)) {
			t.Fatalf("edge %v was removed", e)
		}
	}
}

func TestRemoveWallsBounds(t *testing.T) {
	m := newTestMaze(t, 4, 6, 5)
	m.RemoveWalls(0)
	if m.EdgeCount() != m.TreeEdges() {
		t.Errorf("openness 0 should not add edges, got %d", m.EdgeCount())
	}
	m.RemoveWalls(-3)
	if m.EdgeCount() != m.TreeEdges() {
		t.Error("negative openness should clamp to 0")
	}
	m.RemoveWalls(7)
	if m.EdgeCount() != m.MaxEdges() {
		t.Errorf("openness above 1 should open everything, got %d of %d", m.EdgeCount(), m.MaxEdges())
	}
	m.RemoveWalls(1)
	if m.EdgeCount() != m.MaxEdges() {
		t.Error("a full maze should stay full")
	}
}

func TestNewMazeRejectsEmptyGrid(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if _, err := NewMaze(0, 3, MazeScale, rng); err == nil {
		t.Error("expected error for zero height")
	}
	if _, err := NewMaze(3, 0, MazeScale, rng); err == nil {
		t.Error("expected error for zero width")
	}
}

func TestSingleCellMaze(t *testing.T) {
	m := newTestMaze(t, 1, 1, 1)
	if m.EdgeCount() != 0 {
		t.Errorf("expected no edges, got %d", m.EdgeCount())
	}
	if got := m.Path(); got != "M0 0 L100 0 L100 100 L0 100 L0 0" {
		t.Errorf("unexpected path %q", got)
	}
}

func TestMazeNodePanicsOutOfRange(t *testing.T) {
	m := newTestMaze(t, 2, 3, 1)
	defer func() {
		if recover() == nil {
			t.Error("expected panic for out-of-range node")
		}
	}()
	m.Node(3, 0)
}

func TestMazeNodeAt(t *testing.T) {
	m := newTestMaze(t, 2, 3, 1)
	n := m.NodeAt(Position{X: 250, Y: 150})
	if n == nil || n.Col != 2 || n.Row != 1 {
		t.Fatalf("expected node (2,1), got %+v", n)
	}
	if m.NodeAt(Position{X: -1, Y: 10}) != nil {
		t.Error("expected nil left of the maze")
	}
	if m.NodeAt(Position{X: 300, Y: 10}) != nil {
		t.Error("expected nil right of the maze")
	}
	c := m.Center(n)
	if c.X != 250 || c.Y != 150 {
		t.Errorf("expected centre (250,150), got (%v,%v)", c.X, c.Y)
	}
}

func TestMazePathListsMissingEdges(t *testing.T) {
	m := newTestMaze(t, 4, 6, 11)
	segments := strings.Count(m.Path(), "M") - 1
	if want := m.MaxEdges() - m.EdgeCount(); segments != want {
		t.Errorf("expected %d wall segments in path, got %d", want, segments)
	}
}

func TestMazeCondensed(t *testing.T) {
	m := newTestMaze(t, 3, 4, 2)
	st := m.Condensed()
	if st.Width != 4 || st.Height != 3 || len(st.Nodes) != 3 || len(st.Nodes[0]) != 4 {
		t.Fatalf("unexpected condensed dimensions %dx%d", st.Width, st.Height)
	}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			if st.Nodes[r][c].Connected.Right != st.Nodes[r][c+1].Connected.Left {
				t.Errorf("left/right flags disagree at (%d,%d)", c, r)
			}
		}
	}
	if st.Nodes[0][0].Connected.Up || st.Nodes[0][0].Connected.Left {
		t.Error("corner node cannot connect outside the grid")
	}
	if st.MapData != m.Path() {
		t.Error("condensed map data should be the SVG path")
	}
}

func TestMazeRoute(t *testing.T) {
	m := newTestMaze(t, 5, 7, 9)
	from, to := m.Node(0, 0), m.Node(6, 4)
	route := m.Route(from, to)
	if len(route) < 11 {
		t.Fatalf("route shorter than manhattan distance: %d", len(route))
	}
	if route[0] != from || route[len(route)-1] != to {
		t.Error("route should include both ends")
	}
	for i := 1; i < len(route); i++ {
		if !route[i-1].IsConnected(route[i]) {
			t.Fatalf("route step %d crosses a wall", i)
		}
	}
	if r := m.Route(from, from); len(r) != 1 {
		t.Errorf("route to self should be one node, got %d", len(r))
	}
}
