// Package game holds the authoritative world state: players, platforms,
// the ban set and the chat queue, all behind a single store lock
package game

import "fmt"

// GravityDirection is the cardinal direction a player's gravity pulls in
type GravityDirection string

const (
	GravityDown  GravityDirection = "down"
	GravityUp    GravityDirection = "up"
	GravityLeft  GravityDirection = "left"
	GravityRight GravityDirection = "right"
)

// ParseGravity validates a wire- or operator-supplied gravity direction
func ParseGravity(s string) (GravityDirection, error) {
	switch GravityDirection(s) {
	case GravityDown, GravityUp, GravityLeft, GravityRight:
		return GravityDirection(s), nil
	}
	return "", fmt.Errorf("direction must be one of 'up', 'down', 'left', 'right', got %q", s)
}

// Spawn defaults for a first-time player
const (
	SpawnX       = 2.0
	SpawnY       = 10.0
	DefaultSpeed = 300.0
)

// Player is the server-held state for one identity. Positions are in
// grid-tile units, not pixels. A player occupies one tile.
type Player struct {
	UUID      string
	Username  string
	Hat       string
	GridX     float64
	GridY     float64
	VelocityX float64
	VelocityY float64
	Speed     float64
	Frozen    bool
	Connected bool
	Gravity   GravityDirection
}

// NewPlayer creates a player at the spawn point with default movement state
func NewPlayer(uuid, username, hat string) *Player {
	return &Player{
		UUID:      uuid,
		Username:  username,
		Hat:       hat,
		GridX:     SpawnX,
		GridY:     SpawnY,
		Speed:     DefaultSpeed,
		Connected: true,
		Gravity:   GravityDown,
	}
}

// PlayerSnapshot is the serialized form of a player inside a state
// broadcast, mirroring the wire field names
type PlayerSnapshot struct {
	Position         [2]float64       `msgpack:"position"`
	VelocityX        float64          `msgpack:"velocity_x"`
	VelocityY        float64          `msgpack:"velocity_y"`
	Speed            float64          `msgpack:"speed"`
	Frozen           bool             `msgpack:"frozen"`
	Username         string           `msgpack:"username"`
	Hat              string           `msgpack:"hat"`
	UUID             string           `msgpack:"uuid"`
	Connected        bool             `msgpack:"connected"`
	GravityDirection GravityDirection `msgpack:"gravity_direction"`
}

// Snapshot copies the player into its broadcast form
func (p *Player) Snapshot() PlayerSnapshot {
	return PlayerSnapshot{
		Position:         [2]float64{p.GridX, p.GridY},
		VelocityX:        p.VelocityX,
		VelocityY:        p.VelocityY,
		Speed:            p.Speed,
		Frozen:           p.Frozen,
		Username:         p.Username,
		Hat:              p.Hat,
		UUID:             p.UUID,
		Connected:        p.Connected,
		GravityDirection: p.Gravity,
	}
}

// ChatMessage is one broadcast chat line
type ChatMessage struct {
	Sender string `msgpack:"sender"`
	Text   string `msgpack:"text"`
}
