package main

import (
	"math"
	"math/rand"
	"testing"
	"time"
)

func testArena(t *testing.T, m *Maze, players ...*Player) *arena {
	t.Helper()
	return &arena{maze: m, walls: NewWallManager(m), players: players}
}

func livePlayer(id string, x, y float64) *Player {
	p := NewPlayer(id, id)
	p.Reset(Position{X: x, Y: y})
	return p
}

func TestSpawnProjectileUsesKindSpeed(t *testing.T) {
	now := time.Now()
	p := SpawnProjectile(WeaponBullet, Position{X: 10, Y: 10}, Velocity{X: 0, Y: 3}, "o", now)
	if !approx(p.Velocity.Speed(), 135) || !approx(p.Velocity.Angle(), 90) {
		t.Errorf("expected 135 at 90deg, got %v at %v", p.Velocity.Speed(), p.Velocity.Angle())
	}
	if p.OwnerID != "o" || !p.TimeFired.Equal(now) || p.LifeTime != 15*time.Second {
		t.Errorf("unexpected projectile %+v", p)
	}

	bad := SpawnProjectile(WeaponKind(-1), Position{}, Velocity{X: 1}, "o", now)
	if bad.Kind != WeaponBullet {
		t.Error("unknown kinds should fall back to the bullet")
	}

	mine := SpawnProjectile(WeaponMine, Position{}, Velocity{X: 1}, "o", now)
	if mine.Damage {
		t.Error("mines are harmless until armed")
	}
}

func TestProjectileBouncesOffBorder(t *testing.T) {
	m, err := NewMaze(1, 1, 10, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	pl := NewPlayer("p", "P")
	pl.Width, pl.Height = 2, 2
	pl.Reset(Position{X: 5, Y: 5})
	a := testArena(t, m, pl)

	t0 := time.Now()
	proj := SpawnProjectile(WeaponBullet, Position{X: 7, Y: 5}, Velocity{X: 1}, "p", t0)
	_, remove := proj.Update(a, t0.Add(100*time.Millisecond))
	if remove {
		t.Fatal("bounced projectile should stay alive")
	}
	if proj.Velocity.X >= 0 {
		t.Errorf("expected vx reflected, got %v", proj.Velocity.X)
	}
	if proj.Position.X >= 10 || proj.Position.X < 9.9 {
		t.Errorf("expected position just inside the wall, got %v", proj.Position.X)
	}
	if !pl.Alive {
		t.Error("bounce should not hit the player")
	}
}

func TestProjectileReflectsVertically(t *testing.T) {
	m := openMaze(t, 2, 2)
	a := testArena(t, m)
	t0 := time.Now()
	proj := SpawnProjectile(WeaponBullet, Position{X: 100, Y: 190}, Velocity{X: 1, Y: 1}, "o", t0)
	vx := proj.Velocity.X
	proj.Update(a, t0.Add(200*time.Millisecond))
	if proj.Velocity.Y >= 0 {
		t.Errorf("expected vy reflected off the bottom border, got %v", proj.Velocity.Y)
	}
	if !approx(proj.Velocity.X, vx) {
		t.Error("horizontal walls should not change vx")
	}
}

func TestProjectileExpiry(t *testing.T) {
	a := testArena(t, openMaze(t, 3, 3))
	t0 := time.Now()
	proj := SpawnProjectile(WeaponBullet, Position{X: 150, Y: 150}, Velocity{X: 1}, "o", t0)

	if _, remove := proj.Update(a, t0.Add(15*time.Second)); remove {
		t.Error("projectile should live for exactly its lifetime")
	}
	if _, remove := proj.Update(a, t0.Add(15*time.Second+time.Millisecond)); !remove {
		t.Error("expected projectile removed after its lifetime")
	}
}

func TestProjectileHitKillsPlayer(t *testing.T) {
	target := livePlayer("target", 200, 150)
	a := testArena(t, openMaze(t, 3, 3), target)
	t0 := time.Now()
	proj := SpawnProjectile(WeaponBullet, Position{X: 150, Y: 150}, Velocity{X: 1}, "shooter", t0)

	_, remove := proj.Update(a, t0.Add(300*time.Millisecond))
	if !remove {
		t.Error("expected projectile removed on hit")
	}
	if target.Alive {
		t.Error("expected target killed")
	}
}

func TestProjectileIgnoresDeadPlayers(t *testing.T) {
	target := livePlayer("target", 200, 150)
	target.Alive = false
	a := testArena(t, openMaze(t, 3, 3), target)
	t0 := time.Now()
	proj := SpawnProjectile(WeaponBullet, Position{X: 150, Y: 150}, Velocity{X: 1}, "shooter", t0)
	if _, remove := proj.Update(a, t0.Add(300*time.Millisecond)); remove {
		t.Error("dead players do not stop projectiles")
	}
}

func TestLaserIsFastAndShortLived(t *testing.T) {
	a := testArena(t, openMaze(t, 3, 3))
	t0 := time.Now()
	proj := SpawnProjectile(WeaponLaser, Position{X: 150, Y: 150}, Velocity{Y: -1}, "o", t0)
	if !approx(proj.Velocity.Speed(), 1500) || proj.Width != 5 {
		t.Errorf("unexpected laser %+v", proj)
	}
	if _, remove := proj.Update(a, t0.Add(time.Second+time.Millisecond)); !remove {
		t.Error("expected laser gone after one second")
	}
}

func TestAirBurstSplits(t *testing.T) {
	a := testArena(t, openMaze(t, 5, 5))
	t0 := time.Now()
	proj := SpawnProjectile(WeaponAirBurst, Position{X: 100, Y: 250}, Velocity{X: 1}, "owner", t0)
	proj.burst.delay = 500 * time.Millisecond

	if kids, remove := proj.Update(a, t0.Add(400*time.Millisecond)); len(kids) != 0 || remove {
		t.Fatal("should not burst before the delay")
	}

	kids, remove := proj.Update(a, t0.Add(600*time.Millisecond))
	if remove {
		t.Error("burst parent lingers until its lifetime ends")
	}
	if len(kids) != 5 {
		t.Fatalf("expected 5 fragments, got %d", len(kids))
	}
	if proj.Damage || proj.Collision || proj.Width != 0 {
		t.Error("burst parent should be inert")
	}

	want := []float64{-15, -7.5, 0, 7.5, 15}
	for i, k := range kids {
		if k.Kind != WeaponBullet || !k.Damage {
			t.Errorf("fragment %d should be a damaging kinetic projectile", i)
		}
		if k.OwnerID != proj.ID {
			t.Errorf("fragment %d owned by %s, want %s", i, k.OwnerID, proj.ID)
		}
		if !approx(k.Velocity.Angle(), want[i]) || !approx(k.Velocity.Speed(), 135) {
			t.Errorf("fragment %d heading %v speed %v", i, k.Velocity.Angle(), k.Velocity.Speed())
		}
		if k.LifeTime != 2500*time.Millisecond {
			t.Errorf("fragment %d lifetime %v", i, k.LifeTime)
		}
	}

	if again, _ := proj.Update(a, t0.Add(700*time.Millisecond)); len(again) != 0 {
		t.Error("an air burst splits only once")
	}
	if _, remove := proj.Update(a, t0.Add(proj.LifeTime+time.Millisecond)); !remove {
		t.Error("expected parent removed after its lifetime")
	}
}

func TestMineArmsAndDetonates(t *testing.T) {
	victim := livePlayer("victim", 400, 400)
	a := testArena(t, openMaze(t, 5, 5), victim)
	t0 := time.Now()
	mine := SpawnProjectile(WeaponMine, Position{X: 100, Y: 250}, Velocity{X: 1}, "owner", t0)

	mine.Update(a, t0.Add(500*time.Millisecond))
	if got := mine.Velocity.Speed(); !approx(got, 200*(1-1.0/3)) {
		t.Errorf("expected decelerating mine, speed %v", got)
	}
	if mine.Damage {
		t.Error("mine should not be armed yet")
	}

	mine.Update(a, t0.Add(1600*time.Millisecond))
	if mine.Velocity.Speed() != 0 || !mine.Damage {
		t.Fatal("expected stationary armed mine")
	}

	victim.Position = Position{X: mine.Position.X + 80, Y: mine.Position.Y}
	if kids, remove := mine.Update(a, t0.Add(1700*time.Millisecond)); remove || len(kids) != 0 {
		t.Fatal("mine should wait after being triggered")
	}
	kids, remove := mine.Update(a, t0.Add(2300*time.Millisecond))
	if !remove {
		t.Fatal("expected mine to detonate")
	}
	if len(kids) != 24 {
		t.Errorf("expected 24 shrapnel, got %d", len(kids))
	}
	for _, k := range kids {
		if k.OwnerID != mine.ID || !approx(k.Velocity.Speed(), 359) || k.LifeTime != 300*time.Millisecond {
			t.Fatalf("unexpected shrapnel %+v", k)
		}
	}
}

func TestUnarmedMineIsHarmless(t *testing.T) {
	victim := livePlayer("victim", 100, 250)
	a := testArena(t, openMaze(t, 5, 5), victim)
	t0 := time.Now()
	mine := SpawnProjectile(WeaponMine, Position{X: 100, Y: 250}, Velocity{X: 1}, "owner", t0)
	if _, remove := mine.Update(a, t0.Add(50*time.Millisecond)); remove || !victim.Alive {
		t.Error("an unarmed mine should not detonate")
	}
}

func TestMineExpiresIntoShrapnel(t *testing.T) {
	a := testArena(t, openMaze(t, 3, 3))
	t0 := time.Now()
	mine := SpawnProjectile(WeaponMine, Position{X: 150, Y: 150}, Velocity{X: 1}, "owner", t0)
	kids, remove := mine.Update(a, t0.Add(mine.LifeTime+time.Millisecond))
	if !remove || len(kids) != 24 {
		t.Errorf("expected expiry detonation, got remove=%v kids=%d", remove, len(kids))
	}
}

func TestRocketBoostsWhileLocking(t *testing.T) {
	target := livePlayer("target", 150, 250)
	a := testArena(t, openMaze(t, 3, 3), target)
	t0 := time.Now()
	rocket := SpawnProjectile(WeaponRocket, Position{X: 150, Y: 50}, Velocity{X: 1}, "owner", t0)

	rocket.Update(a, t0.Add(100*time.Millisecond))
	if rocket.homing.target != target {
		t.Fatal("expected rocket to acquire the nearest living player")
	}
	if !approx(rocket.Velocity.Speed(), 110*1.4) {
		t.Errorf("expected boosted speed, got %v", rocket.Velocity.Speed())
	}
	if !approx(rocket.Velocity.Angle(), 0) {
		t.Error("rocket should fly straight while locking")
	}
}

func TestRocketFollowsMazeRoute(t *testing.T) {
	target := livePlayer("target", 150, 250)
	a := testArena(t, openMaze(t, 3, 3), target)
	t0 := time.Now()
	rocket := SpawnProjectile(WeaponRocket, Position{X: 150, Y: 50}, Velocity{X: 1}, "owner", t0)

	rocket.Update(a, t0.Add(100*time.Millisecond))
	rocket.homing.lockedAt = t0.Add(-3 * time.Second)
	rocket.Update(a, t0.Add(200*time.Millisecond))

	if !approx(rocket.Velocity.Speed(), 110) {
		t.Errorf("expected cruise speed after lock, got %v", rocket.Velocity.Speed())
	}
	if rocket.Velocity.Y <= 0 {
		t.Errorf("expected rocket to turn toward the next cell down, vel %+v", rocket.Velocity)
	}
	if rocket.homing.nextHop == nil || rocket.homing.nextHop.Col != 1 || rocket.homing.nextHop.Row != 1 {
		t.Errorf("expected next hop (1,1), got %+v", rocket.homing.nextHop)
	}
}

func TestRocketAimsDirectlyInTargetCell(t *testing.T) {
	target := livePlayer("target", 80, 80)
	a := testArena(t, openMaze(t, 3, 3), target)
	t0 := time.Now()
	rocket := SpawnProjectile(WeaponRocket, Position{X: 20, Y: 20}, Velocity{X: 1}, "owner", t0)
	rocket.homing.target = target
	rocket.homing.lockedAt = t0.Add(-3 * time.Second)

	rocket.Update(a, t0)
	want := rocket.Position.AngleTo(target.Position)
	if math.Abs(rocket.Velocity.Angle()-want) > 1e-6 {
		t.Errorf("expected heading %v, got %v", want, rocket.Velocity.Angle())
	}
}

func TestRocketWithoutTargetKeepsCourse(t *testing.T) {
	dead := livePlayer("dead", 150, 250)
	dead.Alive = false
	a := testArena(t, openMaze(t, 3, 3), dead)
	t0 := time.Now()
	rocket := SpawnProjectile(WeaponRocket, Position{X: 150, Y: 50}, Velocity{X: 1}, "owner", t0)
	rocket.Update(a, t0.Add(100*time.Millisecond))
	if rocket.homing.target != nil || !approx(rocket.Velocity.Speed(), 110) {
		t.Error("a rocket with no living target flies on unchanged")
	}
}

func TestProjectileCondensed(t *testing.T) {
	t0 := time.UnixMilli(5000)
	p := SpawnProjectile(WeaponMine, Position{X: 1, Y: 2}, Velocity{X: 1}, "own", t0)
	st := p.Condensed()
	if st.Kind != "M" || st.PlayerID != "own" || st.TimeCreated != 5000 || st.LifeTime != 15000 {
		t.Errorf("unexpected condensed projectile %+v", st)
	}
}
