package main

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const lobbyCodeLen = 6

// Registry is the process-wide set of lobbies. It is created once in main
// and passed to whoever needs it.
type Registry struct {
	mu      sync.RWMutex
	lobbies map[string]*Lobby
	max     int
	opts    RoundOptions
	grace   time.Duration
}

// NewRegistry creates a registry holding at most max lobbies. Every lobby
// runs its rounds with opts and keeps dropped members for grace.
func NewRegistry(max int, opts RoundOptions, grace time.Duration) *Registry {
	return &Registry{
		lobbies: make(map[string]*Lobby),
		max:     max,
		opts:    opts,
		grace:   grace,
	}
}

// Create opens a lobby under a fresh code. A non-empty passphrase makes
// it private.
func (rg *Registry) Create(passphrase string) (*Lobby, error) {
	var hash []byte
	if passphrase != "" {
		h, err := HashPassphrase(passphrase)
		if err != nil {
			return nil, err
		}
		hash = h
	}

	rg.mu.Lock()
	defer rg.mu.Unlock()
	if len(rg.lobbies) >= rg.max {
		return nil, ErrTooManyLobbies
	}
	code := GenerateCode(lobbyCodeLen)
	for rg.lobbies[code] != nil {
		code = GenerateCode(lobbyCodeLen)
	}
	l := NewLobby(code, hash, rg.opts, rg.grace, rg.Remove)
	rg.lobbies[code] = l
	log.Info("lobby created", "lobby", code, "private", hash != nil, "lobbies", len(rg.lobbies))
	return l, nil
}

// Get returns a lobby by code (case-insensitive), or nil
func (rg *Registry) Get(code string) *Lobby {
	rg.mu.RLock()
	defer rg.mu.RUnlock()
	return rg.lobbies[strings.ToUpper(code)]
}

// Remove closes and forgets a lobby
func (rg *Registry) Remove(code string) {
	rg.mu.Lock()
	l, ok := rg.lobbies[code]
	delete(rg.lobbies, code)
	rg.mu.Unlock()
	if ok {
		l.Close()
	}
}

// List returns the lobbies ordered by creation time
func (rg *Registry) List() []LobbyInfo {
	rg.mu.RLock()
	all := make([]*Lobby, 0, len(rg.lobbies))
	for _, l := range rg.lobbies {
		all = append(all, l)
	}
	rg.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	list := make([]LobbyInfo, 0, len(all))
	for _, l := range all {
		list = append(list, l.Info())
	}
	return list
}

// Count returns the number of open lobbies
func (rg *Registry) Count() int {
	rg.mu.RLock()
	defer rg.mu.RUnlock()
	return len(rg.lobbies)
}

// Shutdown closes every lobby
func (rg *Registry) Shutdown() {
	rg.mu.Lock()
	all := rg.lobbies
	rg.lobbies = make(map[string]*Lobby)
	rg.mu.Unlock()
	for _, l := range all {
		l.Close()
	}
}
