package main

import "testing"

func TestWallsSingleCellIsBorderOnly(t *testing.T) {
	wm := NewWallManager(newTestMaze(t, 1, 1, 1))
	if wm.Len() != 4 {
		t.Fatalf("expected 4 border walls, got %d", wm.Len())
	}
	if wm.CheckLineCollision(Position{X: 20, Y: 20}, Position{X: 80, Y: 70}) {
		t.Error("segment inside the cell should not collide")
	}
	if !wm.CheckLineCollision(Position{X: 50, Y: 50}, Position{X: 150, Y: 50}) {
		t.Error("segment leaving the maze should hit the border")
	}
}

func TestWallCountMatchesMissingEdges(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		m := newTestMaze(t, 4, 6, seed)
		wm := NewWallManager(m)
		if want := 4 + m.MaxEdges() - m.EdgeCount(); wm.Len() != want {
			t.Errorf("seed %d: expected %d walls, got %d", seed, want, wm.Len())
		}
	}
}

func TestWallsShrinkAsMazeOpens(t *testing.T) {
	m := newTestMaze(t, 4, 6, 4)
	before := NewWallManager(m).Len()
	m.RemoveWalls(0.3)
	after := NewWallManager(m).Len()
	if after > before {
		t.Errorf("opening passages added walls: %d -> %d", before, after)
	}
	m.RemoveWalls(1)
	if NewWallManager(m).Len() != 4 {
		t.Error("fully open maze should keep only the border")
	}
}

func TestWallsSeparateUnconnectedNeighbours(t *testing.T) {
	m := newTestMaze(t, 4, 6, 8)
	wm := NewWallManager(m)
	m.Nodes(func(n *MazeNode) {
		if n.Col == m.Width-1 {
			return
		}
		right := m.Node(n.Col+1, n.Row)
		crosses := wm.CheckLineCollision(m.Center(n), m.Center(right))
		if crosses == n.IsConnected(right) {
			t.Errorf("cells %d and %d: connected=%v but crossing=%v", n.ID, right.ID, n.IsConnected(right), crosses)
		}
	})
}

func TestFirstCollisionPicksNearestWall(t *testing.T) {
	wm := NewWallManager(openMaze(t, 1, 3))
	wm.walls = append(wm.walls, Wall{100, 0, 100, 100}, Wall{200, 0, 200, 100})
	wm.grid.InsertBox(100, 0, 100, 100, len(wm.walls)-2)
	wm.grid.InsertBox(200, 0, 200, 100, len(wm.walls)-1)
	wm.stamp = make([]uint32, len(wm.walls))

	wall, frac, ok := wm.FirstCollision(Position{X: 50, Y: 50}, Position{X: 250, Y: 50})
	if !ok {
		t.Fatal("expected a collision")
	}
	if wall.X1 != 100 || !approx(frac, 0.25) {
		t.Errorf("expected wall at x=100 at 0.25, got x=%v at %v", wall.X1, frac)
	}
	if _, _, ok := wm.FirstCollision(Position{X: 10, Y: 10}, Position{X: 90, Y: 90}); ok {
		t.Error("expected no collision inside the first cell")
	}
}

func TestWallsReturnsCopy(t *testing.T) {
	wm := NewWallManager(newTestMaze(t, 1, 1, 1))
	ws := wm.Walls()
	ws[0].X1 = 999
	if wm.Walls()[0].X1 == 999 {
		t.Error("Walls should return a copy")
	}
}
