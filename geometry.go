package main

import (
	"math"
	"time"
)

// Position is a point in maze space stamped with the simulation time it was
// last moved at. Entities own their Position by value; use Copy when handing
// one to another entity.
type Position struct {
	X           float64
	Y           float64
	LastUpdated time.Time
}

// NewPosition returns a position stamped at now
func NewPosition(x, y float64, now time.Time) Position {
	return Position{X: x, Y: y, LastUpdated: now}
}

// MoveTo sets the absolute coordinates
func (p *Position) MoveTo(x, y float64, now time.Time) {
	p.X = x
	p.Y = y
	p.LastUpdated = now
}

// MoveBy offsets the coordinates
func (p *Position) MoveBy(dx, dy float64, now time.Time) {
	p.X += dx
	p.Y += dy
	p.LastUpdated = now
}

// Advance integrates v over the time elapsed since LastUpdated.
// Velocities are in units per second.
func (p *Position) Advance(v Velocity, now time.Time) {
	dt := now.Sub(p.LastUpdated).Seconds()
	if dt < 0 {
		dt = 0
	}
	p.MoveBy(v.X*dt, v.Y*dt, now)
}

// Rotated returns p rotated around pivot by deg degrees
func (p Position) Rotated(pivot Position, deg float64) Position {
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	dx := p.X - pivot.X
	dy := p.Y - pivot.Y
	return Position{
		X:           pivot.X + dx*cos - dy*sin,
		Y:           pivot.Y + dx*sin + dy*cos,
		LastUpdated: p.LastUpdated,
	}
}

// DistanceTo returns the euclidean distance to o
func (p Position) DistanceTo(o Position) float64 {
	return Distance(p.X, p.Y, o.X, o.Y)
}

// AngleTo returns the heading from p to o in degrees
func (p Position) AngleTo(o Position) float64 {
	return math.Atan2(o.Y-p.Y, o.X-p.X) * 180 / math.Pi
}

// Copy returns an independent copy
func (p Position) Copy() Position {
	return p
}

// Condensed returns the wire form
func (p Position) Condensed() PositionState {
	var ms int64
	if !p.LastUpdated.IsZero() {
		ms = p.LastUpdated.UnixMilli()
	}
	return PositionState{X: p.X, Y: p.Y, LastUpdated: ms}
}

// Velocity in units per second
type Velocity struct {
	X float64
	Y float64
}

// VelocityFromAngle builds a velocity heading deg degrees at speed
func VelocityFromAngle(deg, speed float64) Velocity {
	sin, cos := math.Sincos(deg * math.Pi / 180)
	return Velocity{X: cos * speed, Y: sin * speed}
}

// Speed returns the magnitude
func (v Velocity) Speed() float64 {
	return math.Hypot(v.X, v.Y)
}

// Angle returns the heading in degrees
func (v Velocity) Angle() float64 {
	return math.Atan2(v.Y, v.X) * 180 / math.Pi
}

// SetSpeed keeps the heading and changes the magnitude. A zero velocity
// stays zero since it has no heading.
func (v *Velocity) SetSpeed(speed float64) {
	cur := v.Speed()
	if cur == 0 {
		return
	}
	v.X = v.X / cur * speed
	v.Y = v.Y / cur * speed
}

// SetAngle keeps the magnitude and changes the heading
func (v *Velocity) SetAngle(deg float64) {
	*v = VelocityFromAngle(deg, v.Speed())
}

// NormalizeDegrees wraps an angle to [0, 360)
func NormalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
