package network

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/maximumcalamity58/game-because-i-was-bored/internal/game"
)

// MessageType tags every payload on the wire
type MessageType string

const (
	// Client → Server
	MsgHello  MessageType = "HELLO"  // identity announcement, first frame
	MsgUpdate MessageType = "UPDATE" // position update, repeated

	// Server → Client
	MsgWelcome MessageType = "WELCOME" // initial self-placement snapshot
	MsgState   MessageType = "STATE"   // full world broadcast
	MsgBan     MessageType = "BAN"     // rejection notice, connection closes after
	MsgKick    MessageType = "KICK"    // removal notice, connection closes after

	// Server → LAN (UDP multicast)
	MsgServerInfo MessageType = "SERVER_INFO"
)

// Envelope wraps every framed payload with an explicit type tag so the
// receiver never has to sniff payload fields to tell message kinds apart
type Envelope struct {
	Type    MessageType        `msgpack:"type"`
	Payload msgpack.RawMessage `msgpack:"payload"`
}

// HelloPayload is the one-time identity announcement a client sends after
// connecting
type HelloPayload struct {
	UUID     string `msgpack:"uuid"`
	Username string `msgpack:"username"`
	Hat      string `msgpack:"hat"`
}

// WelcomePayload places the client at its server-held position before the
// first broadcast arrives
type WelcomePayload struct {
	Position  [2]float64 `msgpack:"position"`
	VelocityX float64    `msgpack:"velocity_x"`
	VelocityY float64    `msgpack:"velocity_y"`
	Hat       string     `msgpack:"hat"`
	Username  string     `msgpack:"username"`
}

// UpdatePayload is a client-reported position update. Velocity and gravity
// are optional; absent fields preserve the server-held values.
type UpdatePayload struct {
	Position         *[2]float64 `msgpack:"position"`
	VelocityX        *float64    `msgpack:"velocity_x"`
	VelocityY        *float64    `msgpack:"velocity_y"`
	GravityDirection string      `msgpack:"gravity_direction"`
}

// StatePayload is the full world snapshot broadcast to every client
type StatePayload struct {
	Players   map[string]game.PlayerSnapshot `msgpack:"players"`
	Platforms []game.PlatformSnapshot        `msgpack:"platforms"`
	Chat      []game.ChatMessage             `msgpack:"chat"`
}

// NoticePayload carries the reason line for ban and kick messages
type NoticePayload struct {
	Reason string `msgpack:"reason"`
}

// ServerInfoPayload is the discovery beacon datagram
type ServerInfoPayload struct {
	ServerName string `msgpack:"server_name"`
	LobbyName  string `msgpack:"lobby_name"`
	Port       int    `msgpack:"port"`
}

var knownTypes = map[MessageType]bool{
	MsgHello:      true,
	MsgUpdate:     true,
	MsgWelcome:    true,
	MsgState:      true,
	MsgBan:        true,
	MsgKick:       true,
	MsgServerInfo: true,
}

// Encode serializes a payload inside a tagged envelope
func Encode(msgType MessageType, payload interface{}) ([]byte, error) {
	raw, err := msgpack.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", msgType, err)
	}
	data, err := msgpack.Marshal(Envelope{Type: msgType, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s envelope: %w", msgType, err)
	}
	return data, nil
}

// DecodeEnvelope deserializes a frame into its envelope, rejecting unknown
// or missing type tags
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := msgpack.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode envelope: %w", err)
	}
	if !knownTypes[env.Type] {
		return nil, fmt.Errorf("unknown message type %q", env.Type)
	}
	return &env, nil
}

// WriteMessage encodes a payload and sends it as one frame
func WriteMessage(w io.Writer, msgType MessageType, payload interface{}) error {
	data, err := Encode(msgType, payload)
	if err != nil {
		return err
	}
	return WriteFrame(w, data)
}

// ReadMessage reads one frame and decodes its envelope
func ReadMessage(r io.Reader) (*Envelope, error) {
	frame, err := ReadFrame(r)
	if err != nil {
		return nil, err
	}
	return DecodeEnvelope(frame)
}

// DecodeHello validates and returns the envelope as an identity
// announcement. The identity must be a well-formed UUID; the username
// defaults to "Player" when empty and the hat is optional.
func (e *Envelope) DecodeHello() (*HelloPayload, error) {
	if e.Type != MsgHello {
		return nil, fmt.Errorf("expected %s message, got %s", MsgHello, e.Type)
	}
	var hello HelloPayload
	if err := msgpack.Unmarshal(e.Payload, &hello); err != nil {
		return nil, fmt.Errorf("failed to decode hello payload: %w", err)
	}
	if hello.UUID == "" {
		return nil, fmt.Errorf("hello payload missing uuid")
	}
	if _, err := uuid.Parse(hello.UUID); err != nil {
		return nil, fmt.Errorf("hello payload has malformed uuid %q: %w", hello.UUID, err)
	}
	if hello.Username == "" {
		hello.Username = "Player"
	}
	return &hello, nil
}

// DecodeUpdate validates and returns the envelope as a position update.
// The position is required; velocity and gravity stay nil/empty when the
// client omitted them.
func (e *Envelope) DecodeUpdate() (*UpdatePayload, error) {
	if e.Type != MsgUpdate {
		return nil, fmt.Errorf("expected %s message, got %s", MsgUpdate, e.Type)
	}
	var update UpdatePayload
	if err := msgpack.Unmarshal(e.Payload, &update); err != nil {
		return nil, fmt.Errorf("failed to decode update payload: %w", err)
	}
	if update.Position == nil {
		return nil, fmt.Errorf("update payload missing position")
	}
	if update.GravityDirection != "" {
		if _, err := game.ParseGravity(update.GravityDirection); err != nil {
			return nil, fmt.Errorf("update payload: %w", err)
		}
	}
	return &update, nil
}

// DecodeWelcome returns the envelope as the initial placement snapshot
func (e *Envelope) DecodeWelcome() (*WelcomePayload, error) {
	if e.Type != MsgWelcome {
		return nil, fmt.Errorf("expected %s message, got %s", MsgWelcome, e.Type)
	}
	var welcome WelcomePayload
	if err := msgpack.Unmarshal(e.Payload, &welcome); err != nil {
		return nil, fmt.Errorf("failed to decode welcome payload: %w", err)
	}
	return &welcome, nil
}

// DecodeState returns the envelope as a world snapshot
func (e *Envelope) DecodeState() (*StatePayload, error) {
	if e.Type != MsgState {
		return nil, fmt.Errorf("expected %s message, got %s", MsgState, e.Type)
	}
	var state StatePayload
	if err := msgpack.Unmarshal(e.Payload, &state); err != nil {
		return nil, fmt.Errorf("failed to decode state payload: %w", err)
	}
	return &state, nil
}

// DecodeNotice returns the envelope as a ban or kick notice
func (e *Envelope) DecodeNotice() (*NoticePayload, error) {
	if e.Type != MsgBan && e.Type != MsgKick {
		return nil, fmt.Errorf("expected %s or %s message, got %s", MsgBan, MsgKick, e.Type)
	}
	var notice NoticePayload
	if err := msgpack.Unmarshal(e.Payload, &notice); err != nil {
		return nil, fmt.Errorf("failed to decode notice payload: %w", err)
	}
	return &notice, nil
}

// DecodeServerInfo returns the envelope as a discovery beacon datagram
func (e *Envelope) DecodeServerInfo() (*ServerInfoPayload, error) {
	if e.Type != MsgServerInfo {
		return nil, fmt.Errorf("expected %s message, got %s", MsgServerInfo, e.Type)
	}
	var info ServerInfoPayload
	if err := msgpack.Unmarshal(e.Payload, &info); err != nil {
		return nil, fmt.Errorf("failed to decode server info payload: %w", err)
	}
	if info.ServerName == "" || info.Port == 0 {
		return nil, fmt.Errorf("server info payload missing server_name or port")
	}
	return &info, nil
}
