package main

import (
	"sync"

	"github.com/charmbracelet/log"
)

const (
	maxConnsPerIP = 5
	maxTotalConns = 1000
)

// connLimiter caps sockets per address and overall. Acquire reserves a slot
// so two upgrades racing from one address cannot both pass the check.
type connLimiter struct {
	mu     sync.Mutex
	perIP  map[string]int
	total  int
	maxIP  int
	maxAll int
}

func newConnLimiter(maxIP, maxAll int) *connLimiter {
	return &connLimiter{perIP: make(map[string]int), maxIP: maxIP, maxAll: maxAll}
}

func (cl *connLimiter) Acquire(ip string) bool {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	if cl.total >= cl.maxAll || cl.perIP[ip] >= cl.maxIP {
		return false
	}
	cl.perIP[ip]++
	cl.total++
	return true
}

func (cl *connLimiter) Release(ip string) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	if cl.perIP[ip] <= 1 {
		delete(cl.perIP, ip)
	} else {
		cl.perIP[ip]--
	}
	if cl.total > 0 {
		cl.total--
	}
}

func (cl *connLimiter) Total() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return cl.total
}

// Hub owns the set of live sockets. Disconnects are funnelled through Run so a
// dropped socket detaches its lobby seat exactly once.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]struct{}
	unregister chan *Client
	quit       chan struct{}
	lobbies    *Registry
	auth       *Auth
	publicURL  string
	limits     *connLimiter
}

func NewHub(lobbies *Registry, auth *Auth, publicURL string) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		unregister: make(chan *Client, 64),
		quit:       make(chan struct{}),
		lobbies:    lobbies,
		auth:       auth,
		publicURL:  publicURL,
		limits:     newConnLimiter(maxConnsPerIP, maxTotalConns),
	}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	log.Debug("client connected", "addr", c.remoteAddr)
}

// Run serves unregister until Stop.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.unregister:
			h.drop(c)

		case <-h.quit:
			return
		}
	}
}

func (h *Hub) drop(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		c.close()
	}
	h.mu.Unlock()
	if !ok {
		return
	}
	h.limits.Release(c.remoteAddr)
	log.Debug("client disconnected", "addr", c.remoteAddr, "lobby", c.lobbyCode)

	if c.lobbyCode == "" {
		return
	}
	if l := h.lobbies.Get(c.lobbyCode); l != nil {
		l.Detach(c.playerID, c)
	}
}

func (h *Hub) Stop() {
	close(h.quit)
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
