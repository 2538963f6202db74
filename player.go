package main

import (
	"math"
	"time"
)

const (
	PlayerSize  = 35.0
	probeMargin = 5.0 // extra clearance kept between a tank's edge and walls
	muzzleGap   = 4.0
)

// Player is a tank. The lobby owns identity (ID, Name, Score) across
// rounds; the running round is the only writer of everything else.
type Player struct {
	ID          string
	Name        string
	Position    Position
	BodyAngle   float64 // degrees
	TurretAngle float64 // degrees
	Width       float64
	Height      float64
	Alive       bool
	Score       int
	Weapon      WeaponKind
	Charges     int
}

// NewPlayer creates a new player
func NewPlayer(id, name string) *Player {
	return &Player{
		ID:     id,
		Name:   name,
		Width:  PlayerSize,
		Height: PlayerSize,
		Weapon: WeaponBullet,
	}
}

// Reset prepares the player for a new round at pos
func (p *Player) Reset(pos Position) {
	p.Position = pos
	p.BodyAngle = 0
	p.TurretAngle = 0
	p.Alive = true
	p.Weapon = WeaponBullet
	p.Charges = 0
}

// Points returns the corners of the tank's body rotated by BodyAngle
func (p *Player) Points() []Position {
	hw, hh := p.Width/2, p.Height/2
	c := p.Position
	pts := []Position{
		{X: c.X - hw, Y: c.Y - hh},
		{X: c.X + hw, Y: c.Y - hh},
		{X: c.X + hw, Y: c.Y + hh},
		{X: c.X - hw, Y: c.Y + hh},
	}
	for i := range pts {
		pts[i] = pts[i].Rotated(c, p.BodyAngle)
	}
	return pts
}

// ContainsPoint reports whether q lies inside the tank's body
func (p *Player) ContainsPoint(q Position) bool {
	return pointInPolygon(p.Points(), q)
}

// ResolveMove moves the player toward target as far as the walls allow and
// returns the authoritative position. The x step is probed first at the
// current y, then the y step at the resolved x, each against three points
// on the leading side of a box of half-size width/2+5 around the probe
// centre. A blocked axis keeps its old coordinate, so diagonal moves slide
// along walls. The resolved motion never crosses a wall.
func (p *Player) ResolveMove(target Position, walls *WallManager, now time.Time) Position {
	cur := p.Position
	if !finite(target.X, target.Y) {
		return cur
	}
	c := p.Width/2 + probeMargin

	// blocked probes the side of the box around (x, y) facing (dx, dy)
	blocked := func(x, y, dx, dy float64) bool {
		var a, m, b Position
		if dx != 0 {
			ex := x + dx*c
			a, m, b = Position{X: ex, Y: y - c}, Position{X: ex, Y: y}, Position{X: ex, Y: y + c}
		} else {
			ey := y + dy*c
			a, m, b = Position{X: x - c, Y: ey}, Position{X: x, Y: ey}, Position{X: x + c, Y: ey}
		}
		return walls.CheckLineCollision(cur, a) ||
			walls.CheckLineCollision(cur, m) ||
			walls.CheckLineCollision(cur, b) ||
			walls.CheckLineCollision(a, b)
	}

	nx, ny := cur.X, cur.Y
	if dx := sign(target.X - cur.X); dx != 0 && !blocked(target.X, cur.Y, dx, 0) {
		nx = target.X
	}
	if dy := sign(target.Y - cur.Y); dy != 0 && !blocked(nx, target.Y, 0, dy) {
		ny = target.Y
	}

	next := Position{X: nx, Y: ny}
	if walls.CheckLineCollision(cur, next) {
		switch {
		case !walls.CheckLineCollision(cur, Position{X: nx, Y: cur.Y}):
			next = Position{X: nx, Y: cur.Y}
		case !walls.CheckLineCollision(cur, Position{X: cur.X, Y: ny}):
			next = Position{X: cur.X, Y: ny}
		default:
			next = Position{X: cur.X, Y: cur.Y}
		}
	}
	p.Position.MoveTo(next.X, next.Y, now)
	return p.Position
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// Muzzle returns the point just past the tank's body along the turret
func (p *Player) Muzzle() Position {
	reach := math.Hypot(p.Width, p.Height)/2 + muzzleGap
	sin, cos := math.Sincos(p.TurretAngle * math.Pi / 180)
	return Position{X: p.Position.X + cos*reach, Y: p.Position.Y + sin*reach}
}

// Arm equips a weapon with its pickup charges
func (p *Player) Arm(kind WeaponKind) {
	if !kind.Valid() {
		return
	}
	p.Weapon = kind
	p.Charges = kind.Def().Charges
}

// UseCharge consumes one shot; the bullet is unlimited and an exhausted
// weapon reverts to it.
func (p *Player) UseCharge() {
	if p.Weapon == WeaponBullet {
		return
	}
	p.Charges--
	if p.Charges <= 0 {
		p.Weapon = WeaponBullet
		p.Charges = 0
	}
}

// Condensed returns the wire form
func (p *Player) Condensed() PlayerState {
	return PlayerState{
		ID:          p.ID,
		Name:        p.Name,
		Position:    p.Position.Condensed(),
		BodyAngle:   p.BodyAngle,
		TurretAngle: p.TurretAngle,
		Width:       p.Width,
		Height:      p.Height,
		Alive:       p.Alive,
		Score:       p.Score,
		Weapon:      p.Weapon.Letter(),
		Charges:     p.Charges,
	}
}
