package main

import "time"

const bounceNudge = 0.01 // distance a bounced projectile is kept off the wall

// arena is the read-mostly world a projectile updates against. Projectiles
// may kill players but never move them.
type arena struct {
	maze    *Maze
	walls   *WallManager
	players []*Player
}

// Projectile is any live shot. Kind selects the behaviour; the per-kind
// state pointers are only set for their own kind.
type Projectile struct {
	ID        string
	Kind      WeaponKind
	Position  Position
	Velocity  Velocity
	OwnerID   string
	LifeTime  time.Duration
	TimeFired time.Time
	Width     float64
	Height    float64
	Collision bool // bounces off walls
	Damage    bool // kills living players it touches

	burst  *burstState
	mine   *mineState
	homing *homingState
}

// newKinetic builds a plain bullet-like projectile
func newKinetic(pos Position, vel Velocity, ownerID string, size float64, life time.Duration, now time.Time) *Projectile {
	return &Projectile{
		ID:        GenerateID(4),
		Kind:      WeaponBullet,
		Position:  NewPosition(pos.X, pos.Y, now),
		Velocity:  vel,
		OwnerID:   ownerID,
		LifeTime:  life,
		TimeFired: now,
		Width:     size,
		Height:    size,
		Collision: true,
		Damage:    true,
	}
}

// Update advances the projectile to now. It returns the projectiles it
// spawned this tick and whether it should be removed.
func (p *Projectile) Update(a *arena, now time.Time) ([]*Projectile, bool) {
	switch p.Kind {
	case WeaponAirBurst:
		return p.updateAirBurst(a, now)
	case WeaponMine:
		return p.updateMine(a, now)
	case WeaponRocket:
		return p.updateRocket(a, now)
	default:
		return nil, p.updateKinetic(a, now)
	}
}

func (p *Projectile) updateKinetic(a *arena, now time.Time) bool {
	if p.expired(now) {
		return true
	}
	p.move(a, now)
	return p.strike(a)
}

func (p *Projectile) expired(now time.Time) bool {
	return now.Sub(p.TimeFired) > p.LifeTime
}

// move integrates the velocity and reflects off the first wall crossed
func (p *Projectile) move(a *arena, now time.Time) {
	old := p.Position
	p.Position.Advance(p.Velocity, now)
	if !p.Collision || a.walls == nil {
		return
	}
	wall, t, ok := a.walls.FirstCollision(old, p.Position)
	if !ok {
		return
	}
	x := old.X + (p.Position.X-old.X)*t
	y := old.Y + (p.Position.Y-old.Y)*t
	if wall.Horizontal() {
		if p.Velocity.Y > 0 {
			y -= bounceNudge
		} else {
			y += bounceNudge
		}
		p.Velocity.Y = -p.Velocity.Y
	} else {
		if p.Velocity.X > 0 {
			x -= bounceNudge
		} else {
			x += bounceNudge
		}
		p.Velocity.X = -p.Velocity.X
	}
	p.Position.MoveTo(x, y, now)
}

// strike kills the first living player containing the projectile's
// position. It reports whether anyone was hit.
func (p *Projectile) strike(a *arena) bool {
	if !p.Damage {
		return false
	}
	for _, pl := range a.players {
		if pl.Alive && pl.ContainsPoint(p.Position) {
			pl.Alive = false
			return true
		}
	}
	return false
}

// Condensed returns the wire form
func (p *Projectile) Condensed() ProjectileState {
	return ProjectileState{
		ID:          p.ID,
		Kind:        p.Kind.Letter(),
		PlayerID:    p.OwnerID,
		TimeCreated: p.TimeFired.UnixMilli(),
		LifeTime:    p.LifeTime.Milliseconds(),
		Position:    p.Position.Condensed(),
		Velocity:    VelocityState{X: p.Velocity.X, Y: p.Velocity.Y},
		Width:       p.Width,
		Height:      p.Height,
	}
}
