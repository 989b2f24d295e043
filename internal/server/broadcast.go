package server

import (
	"net"

	"github.com/maximumcalamity58/game-because-i-was-bored/internal/network"
)

// BroadcastState serializes one world snapshot and sends the identical
// frame to every target connection, or to all bound connections when
// targets is nil. A send failure degrades that one client to disconnected
// and never aborts the pass for the others.
func (s *Server) BroadcastState(targets []net.Conn) {
	players, platforms, chat := s.world.SnapshotState()

	frame, err := network.Encode(network.MsgState, network.StatePayload{
		Players:   players,
		Platforms: platforms,
		Chat:      chat,
	})
	if err != nil {
		s.logger.Error("Failed to encode state broadcast: %v", err)
		return
	}

	if targets == nil {
		s.mu.Lock()
		targets = make([]net.Conn, 0, len(s.sessions))
		for conn := range s.sessions {
			targets = append(targets, conn)
		}
		s.mu.Unlock()
	}

	for _, conn := range targets {
		if err := network.WriteFrame(conn, frame); err != nil {
			s.logger.Warn("Error sending game state to client: %v", err)
			s.dropConn(conn)
		}
	}
}

// dropConn removes a connection whose send failed: unbind, close, mark the
// player disconnected
func (s *Server) dropConn(conn net.Conn) {
	s.mu.Lock()
	uuid, bound := s.sessions[conn]
	if bound {
		delete(s.sessions, conn)
	}
	s.mu.Unlock()

	conn.Close()
	if bound {
		s.world.MarkDisconnected(uuid)
	}
}
