// Package server implements the authoritative game server: the TCP session
// manager, the state broadcast engine, the operator command interpreter,
// the LAN discovery beacon and the fixed-rate simulation loop.
package server

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/sasha-s/go-deadlock"
	"golang.org/x/time/rate"

	"github.com/maximumcalamity58/game-because-i-was-bored/internal/game"
	"github.com/maximumcalamity58/game-because-i-was-bored/internal/network"
	"github.com/maximumcalamity58/game-because-i-was-bored/pkg/logger"
)

// Config carries the operator-supplied server settings
type Config struct {
	Host           string
	Port           int
	ServerName     string
	LobbyName      string
	BeaconAddr     string
	BeaconInterval time.Duration
}

// Server accepts client connections and keeps every connected client's
// view of the world in sync
type Server struct {
	config   Config
	world    *game.World
	listener net.Listener
	logger   *logger.Logger

	// mu guards sessions, limiters and isRunning. It is never acquired
	// while holding the world store lock.
	mu        deadlock.Mutex
	sessions  map[net.Conn]string // open socket -> bound identity
	limiters  map[string]*rate.Limiter
	isRunning bool

	stop chan struct{}
}

// NewServer creates a server for the given world. Start must be called to
// begin accepting connections.
func NewServer(config Config, world *game.World) *Server {
	return &Server{
		config:   config,
		world:    world,
		logger:   logger.Server,
		sessions: make(map[net.Conn]string),
		limiters: make(map[string]*rate.Limiter),
		stop:     make(chan struct{}),
	}
}

// Start begins listening for client connections and blocks in the accept
// loop. The simulation loop and discovery beacon run alongside it.
func (s *Server) Start() error {
	address := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	s.mu.Lock()
	s.listener = listener
	s.isRunning = true
	s.mu.Unlock()

	s.logger.Info("Server '%s' started on %s, waiting for connections...", s.config.ServerName, address)

	go s.simulationLoop()
	go s.beaconLoop()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if !s.running() {
				return nil
			}
			s.logger.Error("Failed to accept connection: %v", err)
			continue
		}

		if !s.allowConnection(conn.RemoteAddr()) {
			s.logger.Debug("Connection from %s dropped by rate limiter", conn.RemoteAddr())
			conn.Close()
			continue
		}

		go s.handleConn(conn)
	}
}

// Stop shuts the server down: the listener closes and every live session's
// next read fails and tears itself down.
func (s *Server) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	close(s.stop)
	if s.listener != nil {
		s.listener.Close()
	}
	conns := make([]net.Conn, 0, len(s.sessions))
	for conn := range s.sessions {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
	s.logger.Info("Server stopped")
}

// Addr returns the listener's address once Start has bound it
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// allowConnection applies a per-IP token bucket (1 connection/s, burst 3)
// to inbound accepts
func (s *Server) allowConnection(addr net.Addr) bool {
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		host = addr.String()
	}

	s.mu.Lock()
	limiter, ok := s.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(1, 3)
		s.limiters[host] = limiter
	}
	s.mu.Unlock()

	return limiter.Allow()
}

// handleConn is the per-connection session worker. It performs the
// identity handshake, binds the connection, then streams position updates
// until the connection dies. No error here may escape the worker.
func (s *Server) handleConn(conn net.Conn) {
	remote := conn.RemoteAddr()
	s.logger.Info("Connected: %s", remote)

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Session worker for %s panicked: %v", remote, r)
			s.teardown(conn)
		}
	}()

	// Handshake: exactly one identity announcement frame
	env, err := network.ReadMessage(conn)
	if err != nil {
		s.logger.Info("Client %s disconnected before sending identity: %v", remote, err)
		conn.Close()
		return
	}
	hello, err := env.DecodeHello()
	if err != nil {
		s.logger.Warn("Bad handshake from %s: %v", remote, err)
		conn.Close()
		return
	}

	// Authorization: banned identities get a one-shot notice and the door
	if s.world.IsBanned(hello.UUID) {
		s.logger.Info("Banned player %s (%s) attempted to connect", hello.Username, hello.UUID)
		if err := network.WriteMessage(conn, network.MsgBan, network.NoticePayload{Reason: "You are banned from this server."}); err != nil {
			s.logger.Warn("Error sending ban notice to %s: %v", remote, err)
		}
		conn.Close()
		return
	}

	welcome, existed := s.bind(conn, hello)
	if existed {
		s.logger.Info("Player '%s' reconnected with UUID %s", hello.Username, hello.UUID)
	} else {
		s.logger.Info("Player '%s' connected from %s with UUID %s", hello.Username, remote, hello.UUID)
	}

	// Self-placement snapshot so the client can position itself before the
	// first broadcast arrives
	if err := network.WriteMessage(conn, network.MsgWelcome, network.WelcomePayload{
		Position:  welcome.Position,
		VelocityX: welcome.VelocityX,
		VelocityY: welcome.VelocityY,
		Hat:       welcome.Hat,
		Username:  welcome.Username,
	}); err != nil {
		s.logger.Warn("Error sending welcome to %s: %v", remote, err)
		s.teardown(conn)
		return
	}

	// Streaming loop: every accepted update triggers a full rebroadcast
	for {
		env, err := network.ReadMessage(conn)
		if err != nil {
			if !errors.Is(err, network.ErrConnClosed) {
				s.logger.Debug("Read error from %s: %v", remote, err)
			}
			break
		}

		update, err := env.DecodeUpdate()
		if err != nil {
			s.logger.Warn("Malformed message from %s: %v", remote, err)
			break
		}

		s.world.ApplyUpdate(hello.UUID, *update.Position, update.VelocityX, update.VelocityY, update.GravityDirection)
		s.BroadcastState(nil)
	}

	s.teardown(conn)
	s.logger.Info("Disconnected: %s", remote)
}

// bind inserts the connection into the binding table and upserts the
// player, superseding any live connection already bound to the same
// identity. Last handshake wins.
func (s *Server) bind(conn net.Conn, hello *network.HelloPayload) (game.PlayerSnapshot, bool) {
	s.mu.Lock()
	for existing, uuid := range s.sessions {
		if uuid == hello.UUID {
			s.logger.Info("Client with UUID %s is already connected. Disconnecting the existing connection.", hello.UUID)
			existing.Close()
			delete(s.sessions, existing)
			break
		}
	}
	s.sessions[conn] = hello.UUID
	snapshot, existed := s.world.Connect(hello.UUID, hello.Username, hello.Hat)
	s.mu.Unlock()
	return snapshot, existed
}

// teardown releases a session: the binding entry goes away, the player is
// marked disconnected (state retained for reconnection) and the socket
// closes. A connection superseded by a newer handshake has no binding
// entry left, so its player stays connected.
func (s *Server) teardown(conn net.Conn) {
	s.mu.Lock()
	uuid, bound := s.sessions[conn]
	if bound {
		delete(s.sessions, conn)
	}
	s.mu.Unlock()

	if bound {
		s.world.MarkDisconnected(uuid)
		s.logger.Info("Player with UUID %s disconnected", uuid)
	}
	conn.Close()
}

// Kick sends a notice frame to the identity's live connection, closes it
// and unbinds it. It reports whether a live connection existed.
func (s *Server) Kick(uuid string, msgType network.MessageType, reason string) bool {
	s.mu.Lock()
	var target net.Conn
	for conn, bound := range s.sessions {
		if bound == uuid {
			target = conn
			delete(s.sessions, conn)
			break
		}
	}
	s.mu.Unlock()

	if target == nil {
		return false
	}

	if err := network.WriteMessage(target, msgType, network.NoticePayload{Reason: reason}); err != nil {
		s.logger.Warn("Error sending %s notice: %v", msgType, err)
	}
	target.Close()
	s.world.MarkDisconnected(uuid)
	return true
}

// SessionCount returns the number of bound connections
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
