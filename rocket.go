package main

import "time"

const (
	rocketLockTime  = 2500 * time.Millisecond
	rocketLockBoost = 1.4
)

type homingState struct {
	speed    float64
	target   *Player
	lockedAt time.Time

	// cached BFS result, valid while neither end changes
	routeFrom *MazeNode
	routeTo   *MazeNode
	nextHop   *MazeNode

	lastNode *MazeNode
	goToNext bool
}

func newHomingState(now time.Time, speed float64) *homingState {
	return &homingState{speed: speed, lockedAt: now}
}

// updateRocket flies boosted and unguided while acquiring a lock on the
// nearest living tank, then follows the maze toward it.
func (p *Projectile) updateRocket(a *arena, now time.Time) ([]*Projectile, bool) {
	if p.expired(now) {
		return nil, true
	}
	p.move(a, now)
	if p.strike(a) {
		return nil, true
	}

	h := p.homing
	nearest := p.nearestLiving(a)
	if nearest != h.target {
		h.target = nearest
		h.lockedAt = now
	}
	if h.target == nil {
		return nil, false
	}
	if now.Sub(h.lockedAt) < rocketLockTime {
		p.Velocity.SetSpeed(h.speed * rocketLockBoost)
		return nil, false
	}
	p.Velocity.SetSpeed(h.speed)
	p.steer(a.maze, h.target.Position)
	return nil, false
}

func (p *Projectile) nearestLiving(a *arena) *Player {
	var best *Player
	bestDist := 0.0
	for _, pl := range a.players {
		if !pl.Alive {
			continue
		}
		d := p.Position.DistanceTo(pl.Position)
		if best == nil || d < bestDist {
			best = pl
			bestDist = d
		}
	}
	return best
}

// steer points the velocity along the maze route to goal: first to the
// centre of the current cell, then on to the next cell of the route, and
// straight at the goal once inside its cell.
func (p *Projectile) steer(m *Maze, goal Position) {
	h := p.homing
	if m == nil {
		p.Velocity.SetAngle(p.Position.AngleTo(goal))
		return
	}
	cur := m.NodeAt(p.Position)
	dst := m.NodeAt(goal)
	if cur == nil || dst == nil || cur == dst {
		p.Velocity.SetAngle(p.Position.AngleTo(goal))
		return
	}

	if cur != h.routeFrom || dst != h.routeTo {
		h.routeFrom = cur
		h.routeTo = dst
		h.nextHop = nil
		if route := m.Route(cur, dst); len(route) > 1 {
			h.nextHop = route[1]
		}
	}
	if h.nextHop == nil {
		return
	}

	if h.lastNode != cur {
		h.goToNext = false
		h.lastNode = cur
	}
	aim := m.Center(cur)
	if h.goToNext || p.Position.DistanceTo(aim) < m.Scale/2 {
		aim = m.Center(h.nextHop)
		h.goToNext = true
	}
	p.Velocity.SetAngle(NormalizeDegrees(p.Position.AngleTo(aim)))
}
