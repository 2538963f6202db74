package main

import "time"

// WeaponKind identifies the projectile a player fires
type WeaponKind int

const (
	WeaponBullet   WeaponKind = 0
	WeaponRocket   WeaponKind = 1
	WeaponLaser    WeaponKind = 2
	WeaponAirBurst WeaponKind = 3
	WeaponMine     WeaponKind = 4
)

// WeaponDef holds the launch stats of a weapon kind
type WeaponDef struct {
	Letter   string
	Speed    float64
	Size     float64
	LifeTime time.Duration
	Charges  int // shots granted by a pickup; 0 means unlimited
}

var Weapons = [5]WeaponDef{
	{Letter: "B", Speed: 135, Size: 10, LifeTime: 15 * time.Second, Charges: 0},
	{Letter: "R", Speed: 110, Size: 15, LifeTime: 15 * time.Second, Charges: 1},
	{Letter: "L", Speed: 1500, Size: 5, LifeTime: time.Second, Charges: 3},
	{Letter: "A", Speed: 150, Size: 10, LifeTime: defaultBurstDelay + defaultChildLifeTime, Charges: 10},
	{Letter: "M", Speed: 200, Size: 20, LifeTime: 15 * time.Second, Charges: 5},
}

// pickupKinds are the weapons a power-up can grant
var pickupKinds = []WeaponKind{WeaponRocket, WeaponMine, WeaponAirBurst, WeaponLaser}

// Valid reports whether k is a known kind
func (k WeaponKind) Valid() bool {
	return k >= 0 && int(k) < len(Weapons)
}

// Def returns the definition of k, falling back to the bullet
func (k WeaponKind) Def() WeaponDef {
	if !k.Valid() {
		return Weapons[WeaponBullet]
	}
	return Weapons[k]
}

// Letter returns the one-letter wire code
func (k WeaponKind) Letter() string {
	return k.Def().Letter
}

// SpawnProjectile builds a projectile of the given kind. The launch speed
// comes from the kind; vel only supplies the heading.
func SpawnProjectile(kind WeaponKind, pos Position, vel Velocity, ownerID string, now time.Time) *Projectile {
	if !kind.Valid() {
		kind = WeaponBullet
	}
	def := kind.Def()
	heading := vel.Angle()
	p := &Projectile{
		ID:        GenerateID(4),
		Kind:      kind,
		Position:  NewPosition(pos.X, pos.Y, now),
		Velocity:  VelocityFromAngle(heading, def.Speed),
		OwnerID:   ownerID,
		LifeTime:  def.LifeTime,
		TimeFired: now,
		Width:     def.Size,
		Height:    def.Size,
		Collision: true,
		Damage:    true,
	}
	switch kind {
	case WeaponAirBurst:
		p.burst = newBurstState()
	case WeaponMine:
		p.Damage = false
		p.mine = newMineState(def.Speed)
	case WeaponRocket:
		p.homing = newHomingState(now, def.Speed)
	}
	return p
}
