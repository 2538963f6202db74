package main

import "encoding/json"

// Client -> Server message types
const (
	MsgCreate   = "create"    // create a lobby and join it
	MsgJoin     = "join"      // join a lobby by code
	MsgResume   = "resume"    // rebind a new socket to a lobby member
	MsgLeave    = "leave"
	MsgSetName  = "set-name"
	MsgGameSize = "game-size" // host only
	MsgStart    = "start"     // host only
	MsgEvents   = "events"    // batched round intents
	MsgList     = "list"
	MsgPing     = "ping"
)

// Server -> Client message types
const (
	MsgCreated       = "created"
	MsgWelcome       = "welcome"
	MsgPlayerList    = "player-list"
	MsgRoundStart    = "round-start"
	MsgRoundUpdate   = "round-update" // sent as a binary msgpack frame
	MsgPosCorrection = "pos-correction"
	MsgLobbies       = "lobbies"
	MsgError         = "error"
	MsgPong          = "pong"
)

// Intent types inside an events batch
const (
	IntentMove  = "move"
	IntentShoot = "shoot"
)

// Envelope wraps all outgoing messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages; json.RawMessage avoids double-unmarshal
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// PositionState is a position on the wire; lastUpdated is Unix ms
type PositionState struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	LastUpdated int64   `json:"lastUpdated"`
}

type VelocityState struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Intent is one player action. Angles are degrees; a missing angle leaves
// the tank's current one alone.
type Intent struct {
	Type        string         `json:"type"`
	Position    *PositionState `json:"position,omitempty"`
	BodyAngle   *float64       `json:"bodyAngle,omitempty"`
	TurretAngle *float64       `json:"turretAngle,omitempty"`
}

type EventsMsg struct {
	Events []Intent `json:"events"`
}

type CreateMsg struct {
	Name       string `json:"name"`
	Passphrase string `json:"passphrase,omitempty"`
}

type JoinMsg struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Passphrase string `json:"passphrase,omitempty"`
}

type ResumeMsg struct {
	Token string `json:"token"`
}

type SetNameMsg struct {
	Name string `json:"name"`
}

type GameSizeMsg struct {
	Size int `json:"size"`
}

// WelcomeMsg confirms membership; Token lets a dropped client resume
type WelcomeMsg struct {
	ID    string `json:"id"`
	Code  string `json:"code"`
	Token string `json:"token"`
}

type CreatedMsg struct {
	Code string `json:"code"`
}

type ErrorMsg struct {
	Msg string `json:"msg"`
}

// MemberState is a lobby member as shown in the player list
type MemberState struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Host      bool   `json:"host"`
	Score     int    `json:"score"`
	Connected bool   `json:"connected"`
}

type PlayerListMsg struct {
	Code     string        `json:"code"`
	GameSize int           `json:"gameSize"`
	Round    int           `json:"round"`
	Players  []MemberState `json:"players"`
}

// LobbyInfo is the public summary used by the lobby list
type LobbyInfo struct {
	Code    string `json:"code"`
	Players int    `json:"players"`
	Private bool   `json:"private"`
	Playing bool   `json:"playing"`
}

// PlayerState is a tank inside a round
type PlayerState struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Position    PositionState `json:"position"`
	BodyAngle   float64       `json:"bodyAngle"`
	TurretAngle float64       `json:"turretAngle"`
	Width       float64       `json:"width"`
	Height      float64       `json:"height"`
	Alive       bool          `json:"alive"`
	Score       int           `json:"score"`
	Weapon      string        `json:"weapon"`
	Charges     int           `json:"charges"`
}

type ProjectileState struct {
	ID          string        `json:"id"`
	Kind        string        `json:"kind"`
	PlayerID    string        `json:"playerId"`
	TimeCreated int64         `json:"timeCreated"`
	LifeTime    int64         `json:"lifeTime"`
	Position    PositionState `json:"pos"`
	Velocity    VelocityState `json:"vel"`
	Width       float64       `json:"width"`
	Height      float64       `json:"height"`
}

type PowerUpState struct {
	ID       string        `json:"id"`
	Position PositionState `json:"pos"`
	Letter   string        `json:"letter"`
}

type NodeLinks struct {
	Left  bool `json:"left"`
	Right bool `json:"right"`
	Up    bool `json:"up"`
	Down  bool `json:"down"`
}

type MazeNodeState struct {
	ID        int           `json:"id"`
	Position  PositionState `json:"position"`
	Connected NodeLinks     `json:"connected"`
}

type MazeState struct {
	Width   int               `json:"width"`
	Height  int               `json:"height"`
	Scale   float64           `json:"scale"`
	Nodes   [][]MazeNodeState `json:"nodes"`
	MapData string            `json:"mapData"`
}

// RoundState is broadcast on round-start (with Map) and every tick (Map nil)
type RoundState struct {
	GameCode    string            `json:"gameCode"`
	RoundNumber int               `json:"roundNumber"`
	Tick        uint64            `json:"tick"`
	Phase       string            `json:"phase"`
	Players     []PlayerState     `json:"players"`
	Projectiles []ProjectileState `json:"projectiles"`
	PowerUps    []PowerUpState    `json:"powerups"`
	Map         *MazeState        `json:"map"`
}
