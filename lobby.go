package main

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

const (
	maxPlayersPerLobby = 8
	minGameSize        = 1
	maxGameSize        = 5
	maxNameLen         = 16
	defaultName        = "Tank"
)

var (
	ErrLobbyNotFound  = errors.New("lobby not found")
	ErrLobbyFull      = errors.New("lobby full")
	ErrNotHost        = errors.New("only the host can do that")
	ErrNotMember      = errors.New("not a member of this lobby")
	ErrBadPassphrase  = errors.New("wrong passphrase")
	ErrRoundActive    = errors.New("a round is in progress")
	ErrTooManyLobbies = errors.New("too many active lobbies")
)

// Broadcaster is a connected client as seen by a lobby
type Broadcaster interface {
	SendRaw(data []byte)
	SendBinary(data []byte)
}

type member struct {
	player      *Player
	client      Broadcaster
	removeTimer *time.Timer
}

// Lobby is a group of players sharing a code. It keeps their identity and
// scores across rounds and runs at most one round at a time.
type Lobby struct {
	Code      string
	CreatedAt time.Time

	passHash []byte
	opts     RoundOptions
	grace    time.Duration
	onEmpty  func(code string)
	gameSize atomic.Int32

	mu          sync.Mutex
	members     []*member // join order; the first is the host
	round       *Round
	roundNumber int
	closed      bool

	clientsMu sync.RWMutex
	clients   map[string]Broadcaster
}

// NewLobby creates an empty lobby. passHash may be nil for a public lobby.
func NewLobby(code string, passHash []byte, opts RoundOptions, grace time.Duration, onEmpty func(code string)) *Lobby {
	l := &Lobby{
		Code:      code,
		CreatedAt: time.Now(),
		passHash:  passHash,
		opts:      opts,
		grace:     grace,
		onEmpty:   onEmpty,
		clients:   make(map[string]Broadcaster),
	}
	l.gameSize.Store(minGameSize)
	return l
}

// GameSize scales the maze of the next round
func (l *Lobby) GameSize() int {
	return int(l.gameSize.Load())
}

// Private reports whether joining needs a passphrase
func (l *Lobby) Private() bool {
	return l.passHash != nil
}

// OnRoundEnd replaces the finished round with the next one. It runs on a
// fresh goroutine because the caller is the round being replaced.
func (l *Lobby) OnRoundEnd(roundNumber int) {
	go l.advance(roundNumber)
}

func (l *Lobby) advance(roundNumber int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || l.round == nil || l.round.Number != roundNumber {
		return
	}
	l.round.EndRound()
	l.round = nil
	l.startRoundLocked(roundNumber + 1)
	l.broadcastMembersLocked()
}

func (l *Lobby) startRoundLocked(number int) error {
	players := make([]*Player, len(l.members))
	for i, m := range l.members {
		players[i] = m.player
	}
	r, err := NewRound(l.Code, players, number, l, l.opts)
	if err != nil {
		log.Error("could not start round", "lobby", l.Code, "round", number, "error", err)
		return err
	}
	l.round = r
	l.roundNumber = number
	r.Start()
	return nil
}

// Broadcast sends an event to every connected member
func (l *Lobby) Broadcast(roomID, event string, payload interface{}) {
	frame, err := EncodeFrame(event, payload)
	if err != nil {
		log.Error("broadcast encode failed", "lobby", roomID, "event", event, "error", err)
		return
	}
	l.clientsMu.RLock()
	defer l.clientsMu.RUnlock()
	for _, c := range l.clients {
		deliver(c, frame)
	}
}

// Send delivers an event to one member if connected
func (l *Lobby) Send(playerID, event string, payload interface{}) {
	l.clientsMu.RLock()
	c, ok := l.clients[playerID]
	l.clientsMu.RUnlock()
	if !ok {
		return
	}
	frame, err := EncodeFrame(event, payload)
	if err != nil {
		log.Error("send encode failed", "lobby", l.Code, "event", event, "error", err)
		return
	}
	deliver(c, frame)
}

func deliver(c Broadcaster, f Frame) {
	if f.Binary {
		c.SendBinary(f.Data)
	} else {
		c.SendRaw(f.Data)
	}
}

func (l *Lobby) setClient(playerID string, c Broadcaster) {
	l.clientsMu.Lock()
	defer l.clientsMu.Unlock()
	if c == nil {
		delete(l.clients, playerID)
		return
	}
	l.clients[playerID] = c
}

func cleanName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return defaultName
	}
	if r := []rune(name); len(r) > maxNameLen {
		name = string(r[:maxNameLen])
	}
	return name
}

// AddPlayer admits a new member. A player joining mid-round waits for the
// next round.
func (l *Lobby) AddPlayer(name, passphrase string, client Broadcaster) (*Player, error) {
	if l.passHash != nil && !CheckPassphrase(l.passHash, passphrase) {
		return nil, ErrBadPassphrase
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, ErrLobbyNotFound
	}
	if len(l.members) >= maxPlayersPerLobby {
		return nil, ErrLobbyFull
	}
	p := NewPlayer(GenerateID(4), cleanName(name))
	l.members = append(l.members, &member{player: p, client: client})
	l.setClient(p.ID, client)
	log.Info("player joined", "lobby", l.Code, "player", p.ID, "name", p.Name)
	l.broadcastMembersLocked()
	return p, nil
}

func (l *Lobby) findLocked(playerID string) (int, *member) {
	for i, m := range l.members {
		if m.player.ID == playerID {
			return i, m
		}
	}
	return -1, nil
}

// Reattach binds a new connection to an existing member
func (l *Lobby) Reattach(playerID string, client Broadcaster) (*Player, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, m := l.findLocked(playerID)
	if m == nil || l.closed {
		return nil, ErrNotMember
	}
	if m.removeTimer != nil {
		m.removeTimer.Stop()
		m.removeTimer = nil
	}
	m.client = client
	l.setClient(playerID, client)
	if l.round != nil {
		l.round.Resync(playerID)
	}
	log.Info("player resumed", "lobby", l.Code, "player", playerID)
	l.broadcastMembersLocked()
	return m.player, nil
}

// Detach forgets a member's connection. The member is removed unless it
// reattaches within the grace period.
func (l *Lobby) Detach(playerID string, client Broadcaster) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, m := l.findLocked(playerID)
	if m == nil || m.client != client {
		return
	}
	m.client = nil
	l.setClient(playerID, nil)
	if l.grace <= 0 {
		l.removeLocked(playerID)
		return
	}
	m.removeTimer = time.AfterFunc(l.grace, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if _, cur := l.findLocked(playerID); cur == m && m.client == nil {
			l.removeLocked(playerID)
		}
	})
	l.broadcastMembersLocked()
}

// RemovePlayer takes a member out of the lobby for good
func (l *Lobby) RemovePlayer(playerID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.removeLocked(playerID)
}

func (l *Lobby) removeLocked(playerID string) {
	i, m := l.findLocked(playerID)
	if m == nil {
		return
	}
	if m.removeTimer != nil {
		m.removeTimer.Stop()
	}
	l.members = append(l.members[:i], l.members[i+1:]...)
	l.setClient(playerID, nil)
	if l.round != nil {
		l.round.Remove(playerID)
	}
	log.Info("player left", "lobby", l.Code, "player", playerID)

	if len(l.members) == 0 {
		l.closeLocked()
		if l.onEmpty != nil {
			go l.onEmpty(l.Code)
		}
		return
	}
	l.broadcastMembersLocked()
}

// Close ends the running round and refuses further joins
func (l *Lobby) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closeLocked()
}

func (l *Lobby) closeLocked() {
	if l.closed {
		return
	}
	l.closed = true
	if l.round != nil {
		l.round.EndRound()
		l.round = nil
	}
	for _, m := range l.members {
		if m.removeTimer != nil {
			m.removeTimer.Stop()
		}
	}
	log.Info("lobby closed", "lobby", l.Code)
}

func (l *Lobby) isHostLocked(playerID string) bool {
	return len(l.members) > 0 && l.members[0].player.ID == playerID
}

// SetName renames a member between rounds
func (l *Lobby) SetName(playerID, name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, m := l.findLocked(playerID)
	if m == nil {
		return ErrNotMember
	}
	if l.round != nil {
		return ErrRoundActive
	}
	m.player.Name = cleanName(name)
	l.broadcastMembersLocked()
	return nil
}

// SetGameSize changes the maze size used from the next round on
func (l *Lobby) SetGameSize(playerID string, size int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.isHostLocked(playerID) {
		return ErrNotHost
	}
	l.gameSize.Store(int32(Clamp(float64(size), minGameSize, maxGameSize)))
	l.broadcastMembersLocked()
	return nil
}

// Start begins the first round
func (l *Lobby) Start(playerID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.isHostLocked(playerID) {
		return ErrNotHost
	}
	if l.round != nil {
		return ErrRoundActive
	}
	return l.startRoundLocked(l.roundNumber + 1)
}

// HandleEvents forwards a batch of intents to the running round
func (l *Lobby) HandleEvents(playerID string, intents []Intent) {
	l.mu.Lock()
	r := l.round
	l.mu.Unlock()
	if r != nil {
		r.Submit(playerID, intents)
	}
}

// PlayerCount returns the number of members
func (l *Lobby) PlayerCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.members)
}

// Info summarizes the lobby for listings
func (l *Lobby) Info() LobbyInfo {
	l.mu.Lock()
	defer l.mu.Unlock()
	return LobbyInfo{
		Code:    l.Code,
		Players: len(l.members),
		Private: l.Private(),
		Playing: l.round != nil,
	}
}

func (l *Lobby) broadcastMembersLocked() {
	msg := PlayerListMsg{
		Code:     l.Code,
		GameSize: l.GameSize(),
		Round:    l.roundNumber,
		Players:  make([]MemberState, 0, len(l.members)),
	}
	for i, m := range l.members {
		msg.Players = append(msg.Players, MemberState{
			ID:        m.player.ID,
			Name:      m.player.Name,
			Host:      i == 0,
			Score:     m.player.Score,
			Connected: m.client != nil,
		})
	}
	l.Broadcast(l.Code, MsgPlayerList, msg)
}
