package main

import (
	"math/rand"
	"time"
)

const (
	PowerUpClaimRadius = 50.0
	powerUpSpawnOdds   = 250 // one in N ticks
	maxPowerUps        = 8
)

// PowerUp sits at a cell centre until a living tank drives close enough
type PowerUp struct {
	ID        string
	Position  Position
	Kind      WeaponKind
	CreatedAt time.Time
}

// NewPowerUp places a random weapon at the centre of a random cell
func NewPowerUp(m *Maze, rng *rand.Rand, now time.Time) *PowerUp {
	n := m.Node(rng.Intn(m.Width), rng.Intn(m.Height))
	c := m.Center(n)
	return &PowerUp{
		ID:        GenerateID(4),
		Position:  NewPosition(c.X, c.Y, now),
		Kind:      pickupKinds[rng.Intn(len(pickupKinds))],
		CreatedAt: now,
	}
}

// Claimant returns the nearest living player within the claim radius
func (u *PowerUp) Claimant(players []*Player) *Player {
	var best *Player
	bestDist := PowerUpClaimRadius
	for _, pl := range players {
		if !pl.Alive {
			continue
		}
		if d := u.Position.DistanceTo(pl.Position); d < bestDist {
			best = pl
			bestDist = d
		}
	}
	return best
}

// Condensed returns the wire form
func (u *PowerUp) Condensed() PowerUpState {
	return PowerUpState{
		ID:       u.ID,
		Position: u.Position.Condensed(),
		Letter:   u.Kind.Letter(),
	}
}
