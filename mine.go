package main

import "time"

const (
	mineArmTime          = 1500 * time.Millisecond
	mineTriggerTime      = 500 * time.Millisecond
	mineExplodeDistance  = 140.0
	mineShrapnelCount    = 24
	mineShrapnelSpeed    = 359.0
	mineShrapnelLifeTime = 300 * time.Millisecond
)

type mineState struct {
	launchSpeed float64
	triggered   bool
	triggeredAt time.Time
}

func newMineState(speed float64) *mineState {
	return &mineState{launchSpeed: speed}
}

// updateMine slides to a stop over the arm time, then waits for a living
// tank to come within range. Detonation replaces the mine with a ring of
// shrapnel.
func (p *Projectile) updateMine(a *arena, now time.Time) ([]*Projectile, bool) {
	m := p.mine
	if p.expired(now) {
		return p.shrapnel(now), true
	}

	elapsed := now.Sub(p.TimeFired)
	if elapsed < mineArmTime {
		frac := 1 - float64(elapsed)/float64(mineArmTime)
		p.Velocity.SetSpeed(m.launchSpeed * frac)
	} else {
		p.Velocity = Velocity{}
		p.Damage = true
	}
	p.move(a, now)
	if p.strike(a) {
		return p.shrapnel(now), true
	}

	if p.Damage && !m.triggered {
		for _, pl := range a.players {
			if pl.Alive && p.Position.DistanceTo(pl.Position) < mineExplodeDistance {
				m.triggered = true
				m.triggeredAt = now
				break
			}
		}
	}
	if m.triggered && now.Sub(m.triggeredAt) > mineTriggerTime {
		return p.shrapnel(now), true
	}
	return nil, false
}

func (p *Projectile) shrapnel(now time.Time) []*Projectile {
	out := make([]*Projectile, 0, mineShrapnelCount)
	step := 360.0 / mineShrapnelCount
	for i := 0; i < mineShrapnelCount; i++ {
		vel := VelocityFromAngle(step*float64(i), mineShrapnelSpeed)
		out = append(out, newKinetic(p.Position, vel, p.ID, fragmentSize, mineShrapnelLifeTime, now))
	}
	return out
}
