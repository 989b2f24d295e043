package client

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/maximumcalamity58/game-because-i-was-bored/internal/game"
	"github.com/maximumcalamity58/game-because-i-was-bored/internal/network"
	"github.com/maximumcalamity58/game-because-i-was-bored/pkg/logger"
)

// ErrRemoved reports that the server removed this client with a ban or
// kick notice
var ErrRemoved = errors.New("removed by server")

// Client is one connection to a game server. It owns the handshake, the
// broadcast receive loop and the outgoing update stream; the movement
// logic feeding SendUpdate lives with the caller.
type Client struct {
	serverAddr string
	data       *PlayerData
	display    *Display
	logger     *logger.Logger

	conn    net.Conn
	welcome *network.WelcomePayload

	mu        sync.Mutex
	players   map[string]game.PlayerSnapshot
	platforms []game.PlatformSnapshot
}

// NewClient creates a client for the given server address and identity
func NewClient(serverAddr string, data *PlayerData) *Client {
	return &Client{
		serverAddr: serverAddr,
		data:       data,
		display:    NewDisplay(),
		logger:     logger.Client,
		players:    make(map[string]game.PlayerSnapshot),
	}
}

// Connect dials the server, announces the persisted identity and waits
// for the self-placement snapshot
func (c *Client) Connect() error {
	conn, err := net.Dial("tcp", c.serverAddr)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	c.conn = conn

	if err := network.WriteMessage(conn, network.MsgHello, network.HelloPayload{
		UUID:     c.data.UUID,
		Username: c.data.Username,
		Hat:      c.data.Hat,
	}); err != nil {
		conn.Close()
		return fmt.Errorf("failed to send identity: %w", err)
	}

	env, err := network.ReadMessage(conn)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to read welcome: %w", err)
	}

	// A banned identity gets a rejection notice instead of a welcome
	if env.Type == network.MsgBan || env.Type == network.MsgKick {
		notice, decodeErr := env.DecodeNotice()
		conn.Close()
		if decodeErr != nil {
			return fmt.Errorf("rejected by server: %w", decodeErr)
		}
		c.display.PrintNotice(string(env.Type), notice.Reason)
		return fmt.Errorf("%w: %s", ErrRemoved, notice.Reason)
	}

	welcome, err := env.DecodeWelcome()
	if err != nil {
		conn.Close()
		return fmt.Errorf("unexpected first message: %w", err)
	}
	c.welcome = welcome

	c.display.PrintServerStatus(fmt.Sprintf("Connected to %s as '%s'", c.serverAddr, welcome.Username))
	c.logger.Info("Connected to server at %s, placed at (%g, %g)", c.serverAddr, welcome.Position[0], welcome.Position[1])
	return nil
}

// Welcome returns the initial placement snapshot received at connect time
func (c *Client) Welcome() *network.WelcomePayload {
	return c.welcome
}

// Run receives broadcasts until the connection dies or the server removes
// this client. onState, when non-nil, runs for every snapshot received.
func (c *Client) Run(onState func(*network.StatePayload)) error {
	for {
		env, err := network.ReadMessage(c.conn)
		if err != nil {
			if errors.Is(err, network.ErrConnClosed) {
				c.logger.Info("Server closed the connection")
				return nil
			}
			return fmt.Errorf("lost connection to server: %w", err)
		}

		switch env.Type {
		case network.MsgState:
			state, err := env.DecodeState()
			if err != nil {
				c.logger.Warn("Dropping malformed state broadcast: %v", err)
				continue
			}
			c.applyState(state)
			if onState != nil {
				onState(state)
			}

		case network.MsgBan, network.MsgKick:
			notice, err := env.DecodeNotice()
			reason := ""
			if err == nil {
				reason = notice.Reason
			}
			c.display.PrintNotice(string(env.Type), reason)
			return fmt.Errorf("%w: %s", ErrRemoved, reason)

		default:
			c.logger.Debug("Unhandled message type: %s", env.Type)
		}
	}
}

// applyState replaces the local world view and surfaces chat lines
func (c *Client) applyState(state *network.StatePayload) {
	c.mu.Lock()
	c.players = state.Players
	c.platforms = state.Platforms
	c.mu.Unlock()

	for _, line := range state.Chat {
		c.display.PrintChat(line.Sender, line.Text)
	}
}

// Players returns a copy of the latest player table
func (c *Client) Players() map[string]game.PlayerSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	players := make(map[string]game.PlayerSnapshot, len(c.players))
	for uuid, player := range c.players {
		players[uuid] = player
	}
	return players
}

// Platforms returns a copy of the latest platform list
func (c *Client) Platforms() []game.PlatformSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	platforms := make([]game.PlatformSnapshot, len(c.platforms))
	copy(platforms, c.platforms)
	return platforms
}

// SendUpdate reports the local player's position, velocity and gravity to
// the server
func (c *Client) SendUpdate(x, y, velocityX, velocityY float64, gravity game.GravityDirection) error {
	position := [2]float64{x, y}
	return network.WriteMessage(c.conn, network.MsgUpdate, network.UpdatePayload{
		Position:         &position,
		VelocityX:        &velocityX,
		VelocityY:        &velocityY,
		GravityDirection: string(gravity),
	})
}

// Close shuts the connection down
func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}
