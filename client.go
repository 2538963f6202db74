package main

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 120
	maxIntentsPerMsg  = 32
)

var errBadToken = errors.New("invalid token")

// Client is one websocket connection. After joining it is bound to a single
// lobby seat (lobbyCode, playerID); those fields are only touched by ReadPump.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan Frame
	done       chan struct{}
	closeOnce  sync.Once
	playerID   string
	lobbyCode  string
	remoteAddr string

	windowStart time.Time
	windowCount int
}

func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan Frame, sendBufSize),
		done:       make(chan struct{}),
		remoteAddr: remoteAddr,
	}
}

// close stops WritePump. send is never closed so late broadcasts are simply
// dropped.
func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// allow counts a message against the per-second budget.
func (c *Client) allow(now time.Time) bool {
	if now.Sub(c.windowStart) >= time.Second {
		c.windowStart = now
		c.windowCount = 0
	}
	c.windowCount++
	return c.windowCount <= maxMessagesPerSec
}

// ReadPump decodes inbound messages until the socket fails.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("ws read failed", "addr", c.remoteAddr, "error", err)
			}
			return
		}
		if !c.allow(time.Now()) {
			log.Warn("rate limit exceeded, disconnecting", "addr", c.remoteAddr)
			return
		}
		c.handleMessage(message)
	}
}

// WritePump drains send and keeps the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case f := <-c.send:
			kind := websocket.TextMessage
			if f.Binary {
				kind = websocket.BinaryMessage
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(kind, f.Data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// enqueue never blocks; a slow client loses frames.
func (c *Client) enqueue(f Frame) {
	select {
	case <-c.done:
	case c.send <- f:
	default:
	}
}

func (c *Client) SendJSON(event string, payload interface{}) {
	data, err := EncodeJSON(event, payload)
	if err != nil {
		log.Error("marshal failed", "event", event, "error", err)
		return
	}
	c.SendRaw(data)
}

func (c *Client) SendRaw(data []byte) {
	c.enqueue(Frame{Data: data})
}

func (c *Client) SendBinary(data []byte) {
	c.enqueue(Frame{Data: data, Binary: true})
}

func (c *Client) sendError(err error) {
	c.SendJSON(MsgError, ErrorMsg{Msg: err.Error()})
}

// decodeMsg unmarshals a message body. Malformed bodies are dropped silently.
func decodeMsg[T any](data json.RawMessage) (T, bool) {
	var msg T
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, false
	}
	return msg, true
}

func (c *Client) handleMessage(raw []byte) {
	env, ok := decodeMsg[InEnvelope](raw)
	if !ok {
		log.Debug("dropping malformed message", "addr", c.remoteAddr)
		return
	}

	switch env.T {
	case MsgEvents:
		if msg, ok := decodeMsg[EventsMsg](env.D); ok {
			c.handleEvents(msg)
		}
	case MsgList:
		c.SendJSON(MsgLobbies, c.hub.lobbies.List())
	case MsgCreate:
		if msg, ok := decodeMsg[CreateMsg](env.D); ok {
			c.handleCreate(msg)
		}
	case MsgJoin:
		if msg, ok := decodeMsg[JoinMsg](env.D); ok {
			c.handleJoin(msg)
		}
	case MsgResume:
		if msg, ok := decodeMsg[ResumeMsg](env.D); ok {
			c.handleResume(msg)
		}
	case MsgLeave:
		c.leave()
	case MsgSetName:
		if msg, ok := decodeMsg[SetNameMsg](env.D); ok {
			c.withLobby(func(l *Lobby) error { return l.SetName(c.playerID, msg.Name) })
		}
	case MsgGameSize:
		if msg, ok := decodeMsg[GameSizeMsg](env.D); ok {
			c.withLobby(func(l *Lobby) error { return l.SetGameSize(c.playerID, msg.Size) })
		}
	case MsgStart:
		c.withLobby(func(l *Lobby) error { return l.Start(c.playerID) })
	case MsgPing:
		c.SendJSON(MsgPong, nil)
	}
}

func (c *Client) lobby() *Lobby {
	if c.lobbyCode == "" {
		return nil
	}
	return c.hub.lobbies.Get(c.lobbyCode)
}

// withLobby runs a lobby operation for the bound seat and reports its error.
// Messages before a join are ignored.
func (c *Client) withLobby(op func(*Lobby) error) {
	l := c.lobby()
	if l == nil {
		return
	}
	if err := op(l); err != nil {
		c.sendError(err)
	}
}

func (c *Client) handleCreate(msg CreateMsg) {
	c.leave()
	l, err := c.hub.lobbies.Create(msg.Passphrase)
	if err != nil {
		c.sendError(err)
		return
	}
	c.SendJSON(MsgCreated, CreatedMsg{Code: l.Code})
	c.joinLobby(l, msg.Name, msg.Passphrase)
}

func (c *Client) handleJoin(msg JoinMsg) {
	l := c.hub.lobbies.Get(msg.Code)
	if l == nil {
		c.sendError(ErrLobbyNotFound)
		return
	}
	if l.Private() && !c.hub.auth.AllowAttempt(c.remoteAddr) {
		c.sendError(errors.New("too many attempts, try again later"))
		return
	}
	c.leave()
	c.joinLobby(l, msg.Name, msg.Passphrase)
}

func (c *Client) joinLobby(l *Lobby, name, passphrase string) {
	p, err := l.AddPlayer(name, passphrase, c)
	if err != nil {
		c.sendError(err)
		return
	}
	c.bind(l.Code, p.ID)
}

// bind ties the socket to a seat and hands out a fresh resume token.
func (c *Client) bind(code, playerID string) {
	c.lobbyCode = code
	c.playerID = playerID
	token, err := c.hub.auth.IssueToken(code, playerID)
	if err != nil {
		log.Error("could not issue resume token", "lobby", code, "error", err)
	}
	c.SendJSON(MsgWelcome, WelcomeMsg{ID: playerID, Code: code, Token: token})
}

func (c *Client) handleResume(msg ResumeMsg) {
	code, playerID, err := c.hub.auth.ValidateToken(msg.Token)
	if err != nil {
		log.Debug("resume rejected", "addr", c.remoteAddr, "error", err)
		c.sendError(errBadToken)
		return
	}
	l := c.hub.lobbies.Get(code)
	if l == nil {
		c.sendError(ErrLobbyNotFound)
		return
	}
	if _, err := l.Reattach(playerID, c); err != nil {
		c.sendError(err)
		return
	}
	c.bind(code, playerID)
}

func (c *Client) leave() {
	if l := c.lobby(); l != nil {
		l.RemovePlayer(c.playerID)
	}
	c.lobbyCode = ""
	c.playerID = ""
}

func (c *Client) handleEvents(msg EventsMsg) {
	l := c.lobby()
	if l == nil {
		return
	}
	if len(msg.Events) > maxIntentsPerMsg {
		msg.Events = msg.Events[:maxIntentsPerMsg]
	}
	l.HandleEvents(c.playerID, msg.Events)
}
