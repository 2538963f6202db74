package main

import "time"

const (
	defaultBurstDelay    = 1500 * time.Millisecond
	defaultChildLifeTime = 2500 * time.Millisecond
	defaultSplitAngle    = 30.0
	defaultChildCount    = 5
	defaultChildSpeed    = 135.0
	fragmentSize         = 5.0
)

type burstState struct {
	delay         time.Duration
	childLifeTime time.Duration
	splitAngle    float64 // total fan width in degrees
	childCount    int
	childSpeed    float64
	burst         bool
}

func newBurstState() *burstState {
	return &burstState{
		delay:         defaultBurstDelay,
		childLifeTime: defaultChildLifeTime,
		splitAngle:    defaultSplitAngle,
		childCount:    defaultChildCount,
		childSpeed:    defaultChildSpeed,
	}
}

// updateAirBurst flies like a bullet until the burst delay, then fans out
// fragments and lingers inert until its lifetime ends.
func (p *Projectile) updateAirBurst(a *arena, now time.Time) ([]*Projectile, bool) {
	if p.expired(now) {
		return nil, true
	}
	p.move(a, now)
	if p.strike(a) {
		return nil, true
	}
	b := p.burst
	if b.burst || now.Sub(p.TimeFired) < b.delay {
		return nil, false
	}
	b.burst = true
	p.Damage = false
	p.Collision = false
	p.Width = 0
	p.Height = 0
	return p.fragments(now), false
}

func (p *Projectile) fragments(now time.Time) []*Projectile {
	b := p.burst
	life := b.childLifeTime
	if left := p.LifeTime - now.Sub(p.TimeFired); left < life {
		life = left
	}
	if life <= 0 || b.childCount <= 0 {
		return nil
	}
	heading := p.Velocity.Angle()
	out := make([]*Projectile, 0, b.childCount)
	for i := 0; i < b.childCount; i++ {
		angle := heading
		if b.childCount > 1 {
			angle += b.splitAngle/float64(b.childCount-1)*float64(i) - b.splitAngle/2
		}
		vel := VelocityFromAngle(angle, b.childSpeed)
		out = append(out, newKinetic(p.Position, vel, p.ID, fragmentSize, life, now))
	}
	return out
}
