package main

import (
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

const (
	DefaultTickRate        = 30
	DefaultFailsafe        = 500 * time.Second
	DefaultWinHold         = 3 * time.Second
	MazeScale              = 100.0
	maxOwnedProjectiles    = 5
	maxProjectilesPerRound = 500
	roundInboxSize         = 256
)

// RoundHost is what a round needs from the lobby that owns it. OnRoundEnd
// and the send methods are called from the round goroutine and must not
// block on the round.
type RoundHost interface {
	GameSize() int
	OnRoundEnd(roundNumber int)
	Broadcast(roomID, event string, payload interface{})
	Send(playerID, event string, payload interface{})
}

// RoundPhase is the lifecycle state of a round
type RoundPhase int

const (
	PhaseInitializing RoundPhase = 0
	PhaseActive       RoundPhase = 1
	PhaseEnding       RoundPhase = 2
	PhaseTornDown     RoundPhase = 3
)

func (p RoundPhase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseActive:
		return "active"
	case PhaseEnding:
		return "ending"
	case PhaseTornDown:
		return "torn-down"
	}
	return "unknown"
}

// RoundOptions tunes a round. Zero fields take their defaults.
type RoundOptions struct {
	TickRate int
	Failsafe time.Duration
	WinHold  time.Duration // negative ends the round as soon as one tank is left
	Rand     *rand.Rand
	Maze     *Maze            // prebuilt maze; generated from the game size when nil
	Now      func() time.Time // simulation clock
}

func (o RoundOptions) withDefaults() RoundOptions {
	if o.TickRate <= 0 {
		o.TickRate = DefaultTickRate
	}
	if o.Failsafe <= 0 {
		o.Failsafe = DefaultFailsafe
	}
	if o.WinHold < 0 {
		o.WinHold = 0
	} else if o.WinHold == 0 {
		o.WinHold = DefaultWinHold
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

type intentBatch struct {
	playerID string
	intents  []Intent
}

type removePlayer struct {
	playerID string
}

type resync struct {
	playerID string
}

// Round is one maze and one fight. After Start, a single goroutine owns
// all round state; other goroutines talk to it through Submit and Remove.
type Round struct {
	ID     string
	RoomID string
	Number int

	host  RoundHost
	opts  RoundOptions
	rng   *rand.Rand
	maze  *Maze
	walls *WallManager
	arena arena

	players     []*Player
	projectiles []*Projectile
	powerUps    []*PowerUp

	phase      RoundPhase
	tick       uint64
	startCount int
	loneSince  time.Time

	inbox   chan any
	quit    chan struct{}
	done    chan struct{}
	started atomic.Bool
	closed  atomic.Bool
	endOnce sync.Once
	winner  *Player
}

// NewRound builds the maze, places the players on distinct cells and
// leaves the round in the initializing phase.
func NewRound(roomID string, players []*Player, roundNumber int, host RoundHost, opts RoundOptions) (*Round, error) {
	opts = opts.withDefaults()
	r := &Round{
		ID:      GenerateUUID(),
		RoomID:  roomID,
		Number:  roundNumber,
		host:    host,
		opts:    opts,
		rng:     opts.Rand,
		players: append([]*Player(nil), players...),
		phase:   PhaseInitializing,
		inbox:   make(chan any, roundInboxSize),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	r.maze = opts.Maze
	if r.maze == nil {
		size := host.GameSize()
		if size < 1 {
			size = 1
		}
		m, err := NewMaze(2+2*size, 3+3*size, MazeScale, r.rng)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", roundNumber, err)
		}
		m.RemoveWalls(r.rng.Float64() * float64(size) * 0.15)
		r.maze = m
	}
	r.walls = NewWallManager(r.maze)

	if err := r.placePlayers(opts.Now()); err != nil {
		return nil, fmt.Errorf("round %d: %w", roundNumber, err)
	}
	r.startCount = len(r.players)
	r.arena = arena{maze: r.maze, walls: r.walls, players: r.players}
	return r, nil
}

func (r *Round) placePlayers(now time.Time) error {
	cells := r.maze.Width * r.maze.Height
	if len(r.players) > cells {
		return fmt.Errorf("%d players do not fit in %d cells", len(r.players), cells)
	}
	for i, cell := range r.rng.Perm(cells)[:len(r.players)] {
		n := r.maze.Node(cell%r.maze.Width, cell/r.maze.Width)
		c := r.maze.Center(n)
		r.players[i].Reset(NewPosition(c.X, c.Y, now))
	}
	return nil
}

// Start announces the round with its map and launches the tick loop
func (r *Round) Start() {
	if r.closed.Load() || !r.started.CompareAndSwap(false, true) {
		return
	}
	r.phase = PhaseActive
	r.host.Broadcast(r.RoomID, MsgRoundStart, r.snapshot(true))
	log.Info("round started", "room", r.RoomID, "round", r.Number,
		"players", len(r.players), "maze", fmt.Sprintf("%dx%d", r.maze.Width, r.maze.Height))
	go r.run()
}

func (r *Round) run() {
	defer close(r.done)
	ticker := time.NewTicker(time.Second / time.Duration(r.opts.TickRate))
	defer ticker.Stop()
	failsafe := time.NewTimer(r.opts.Failsafe)
	defer failsafe.Stop()

	for {
		select {
		case <-r.quit:
			return
		case cmd := <-r.inbox:
			r.handleCommand(cmd, r.opts.Now())
		case <-ticker.C:
			r.step(r.opts.Now())
		case <-failsafe.C:
			log.Warn("round failsafe fired", "room", r.RoomID, "round", r.Number)
			r.requestNext("failsafe")
		}
	}
}

// Submit queues a batch of intents. Batches arriving after teardown, or
// while the inbox is full, are dropped.
func (r *Round) Submit(playerID string, intents []Intent) {
	if r.closed.Load() || len(intents) == 0 {
		return
	}
	select {
	case r.inbox <- intentBatch{playerID: playerID, intents: intents}:
	default:
		log.Debug("round inbox full, dropping intents", "room", r.RoomID, "player", playerID)
	}
}

// Remove takes a departed player out of the round
func (r *Round) Remove(playerID string) {
	if r.closed.Load() {
		return
	}
	select {
	case r.inbox <- removePlayer{playerID: playerID}:
	case <-r.quit:
	}
}

// Resync resends the full round state, map included, to one player
func (r *Round) Resync(playerID string) {
	if r.closed.Load() {
		return
	}
	select {
	case r.inbox <- resync{playerID: playerID}:
	default:
	}
}

// EndRound stops the tick loop and failsafe, waits for the round goroutine
// to exit and awards the sole survivor a point. It returns that survivor,
// or nil. Calling it again has no further effect.
func (r *Round) EndRound() *Player {
	r.endOnce.Do(func() {
		r.closed.Store(true)
		close(r.quit)
		if r.started.Load() {
			<-r.done
		}
		r.phase = PhaseTornDown
		if w := r.survivor(); w != nil {
			w.Score++
			r.winner = w
		}
		winner := ""
		if r.winner != nil {
			winner = r.winner.Name
		}
		log.Info("round torn down", "room", r.RoomID, "round", r.Number, "ticks", r.tick, "winner", winner)
	})
	return r.winner
}

func (r *Round) handleCommand(cmd any, now time.Time) {
	switch c := cmd.(type) {
	case intentBatch:
		r.applyIntents(c.playerID, c.intents, now)
	case removePlayer:
		r.removePlayer(c.playerID)
	case resync:
		r.host.Send(c.playerID, MsgRoundStart, r.snapshot(true))
	}
}

func (r *Round) player(id string) *Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Round) removePlayer(id string) {
	for i, p := range r.players {
		if p.ID == id {
			r.players = append(r.players[:i:i], r.players[i+1:]...)
			r.arena.players = r.players
			return
		}
	}
}

// applyIntents handles one batch in order. Dead and unknown players are
// ignored.
func (r *Round) applyIntents(playerID string, intents []Intent, now time.Time) {
	if r.phase == PhaseTornDown {
		return
	}
	pl := r.player(playerID)
	if pl == nil {
		return
	}
	for _, in := range intents {
		if !pl.Alive {
			return
		}
		switch in.Type {
		case IntentMove:
			r.move(pl, in, now)
		case IntentShoot:
			r.shoot(pl, in, now)
		}
	}
}

func (r *Round) move(pl *Player, in Intent, now time.Time) {
	if in.Position != nil {
		pl.ResolveMove(Position{X: in.Position.X, Y: in.Position.Y}, r.walls, now)
	}
	setAngle(&pl.BodyAngle, in.BodyAngle)
	setAngle(&pl.TurretAngle, in.TurretAngle)
	r.host.Send(pl.ID, MsgPosCorrection, pl.Position.Condensed())
}

// setAngle applies a reported angle if it is present and finite.
func setAngle(dst *float64, v *float64) {
	if v != nil && finite(*v) {
		*dst = NormalizeDegrees(*v)
	}
}

// shoot fires the player's weapon from the turret muzzle. A shot is
// refused while the player has the maximum of live projectiles out, or
// when the muzzle is on the far side of a wall.
func (r *Round) shoot(pl *Player, in Intent, now time.Time) {
	setAngle(&pl.TurretAngle, in.TurretAngle)
	if r.ownedCount(pl.ID) >= maxOwnedProjectiles || len(r.projectiles) >= maxProjectilesPerRound {
		return
	}
	muzzle := pl.Muzzle()
	if r.walls.CheckLineCollision(pl.Position, muzzle) {
		return
	}
	vel := VelocityFromAngle(pl.TurretAngle, 1)
	r.projectiles = append(r.projectiles, SpawnProjectile(pl.Weapon, muzzle, vel, pl.ID, now))
	pl.UseCharge()
}

func (r *Round) ownedCount(id string) int {
	n := 0
	for _, p := range r.projectiles {
		if p.OwnerID == id {
			n++
		}
	}
	return n
}

// step runs one tick at simulation time now
func (r *Round) step(now time.Time) {
	if r.phase == PhaseTornDown {
		return
	}
	r.tick++
	r.advanceProjectiles(now)
	r.checkOutcome(now)
	r.spawnPowerUp(now)
	r.claimPowerUps()
	r.host.Broadcast(r.RoomID, MsgRoundUpdate, r.snapshot(false))
}

// advanceProjectiles updates every projectile alive at the start of the
// tick. Projectiles spawned during the pass join afterwards.
func (r *Round) advanceProjectiles(now time.Time) {
	var spawned []*Projectile
	live := r.projectiles[:0]
	for _, p := range r.projectiles {
		kids, done := p.Update(&r.arena, now)
		spawned = append(spawned, kids...)
		if !done {
			live = append(live, p)
		}
	}
	for i := len(live); i < len(r.projectiles); i++ {
		r.projectiles[i] = nil
	}
	if room := maxProjectilesPerRound - len(live); len(spawned) > room {
		if room < 0 {
			room = 0
		}
		spawned = spawned[:room]
	}
	r.projectiles = append(live, spawned...)
}

func (r *Round) aliveCount() int {
	n := 0
	for _, p := range r.players {
		if p.Alive {
			n++
		}
	}
	return n
}

func (r *Round) survivor() *Player {
	var last *Player
	for _, p := range r.players {
		if p.Alive {
			if last != nil {
				return nil
			}
			last = p
		}
	}
	return last
}

func (r *Round) checkOutcome(now time.Time) {
	switch alive := r.aliveCount(); {
	case alive == 0:
		r.requestNext("no survivors")
	case alive == 1 && r.startCount >= 2:
		if r.loneSince.IsZero() {
			r.loneSince = now
		}
		if now.Sub(r.loneSince) >= r.opts.WinHold {
			r.requestNext("last tank standing")
		}
	default:
		r.loneSince = time.Time{}
	}
}

// requestNext asks the host for the following round, at most once
func (r *Round) requestNext(reason string) {
	if r.phase != PhaseActive {
		return
	}
	r.phase = PhaseEnding
	log.Info("round ending", "room", r.RoomID, "round", r.Number, "reason", reason)
	r.host.OnRoundEnd(r.Number)
}

func (r *Round) spawnPowerUp(now time.Time) {
	if len(r.powerUps) >= maxPowerUps || r.rng.Intn(powerUpSpawnOdds) != 0 {
		return
	}
	r.powerUps = append(r.powerUps, NewPowerUp(r.maze, r.rng, now))
}

func (r *Round) claimPowerUps() {
	left := r.powerUps[:0]
	for _, u := range r.powerUps {
		if p := u.Claimant(r.players); p != nil {
			p.Arm(u.Kind)
			log.Debug("power-up claimed", "room", r.RoomID, "player", p.ID, "weapon", u.Kind.Letter())
			continue
		}
		left = append(left, u)
	}
	for i := len(left); i < len(r.powerUps); i++ {
		r.powerUps[i] = nil
	}
	r.powerUps = left
}

// snapshot copies the round into its wire form
func (r *Round) snapshot(withMap bool) RoundState {
	st := RoundState{
		GameCode:    r.RoomID,
		RoundNumber: r.Number,
		Tick:        r.tick,
		Phase:       r.phase.String(),
		Players:     make([]PlayerState, 0, len(r.players)),
		Projectiles: make([]ProjectileState, 0, len(r.projectiles)),
		PowerUps:    make([]PowerUpState, 0, len(r.powerUps)),
	}
	for _, p := range r.players {
		st.Players = append(st.Players, p.Condensed())
	}
	for _, p := range r.projectiles {
		st.Projectiles = append(st.Projectiles, p.Condensed())
	}
	for _, u := range r.powerUps {
		st.PowerUps = append(st.PowerUps, u.Condensed())
	}
	if withMap {
		st.Map = r.maze.Condensed()
	}
	return st
}
