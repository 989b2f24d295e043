package server

import (
	"net"
	"time"

	"github.com/maximumcalamity58/game-because-i-was-bored/internal/network"
)

// Default discovery settings. Clients listen on the multicast group and
// learn about servers without knowing any address in advance.
const (
	DefaultBeaconAddr     = "224.0.0.1:12346"
	DefaultBeaconInterval = 2 * time.Second
)

// beaconLoop announces the server over UDP multicast on a fixed interval
// until the server stops. Send failures are logged and the loop carries
// on; discovery is best-effort.
func (s *Server) beaconLoop() {
	beaconAddr := s.config.BeaconAddr
	if beaconAddr == "" {
		beaconAddr = DefaultBeaconAddr
	}
	interval := s.config.BeaconInterval
	if interval <= 0 {
		interval = DefaultBeaconInterval
	}

	addr, err := net.ResolveUDPAddr("udp4", beaconAddr)
	if err != nil {
		s.logger.Error("Discovery beacon disabled, bad multicast address %s: %v", beaconAddr, err)
		return
	}

	conn, err := net.DialUDP("udp4", nil, addr)
	if err != nil {
		s.logger.Error("Discovery beacon disabled, cannot open UDP socket: %v", err)
		return
	}
	defer conn.Close()

	datagram, err := network.Encode(network.MsgServerInfo, network.ServerInfoPayload{
		ServerName: s.config.ServerName,
		LobbyName:  s.config.LobbyName,
		Port:       s.config.Port,
	})
	if err != nil {
		s.logger.Error("Discovery beacon disabled, cannot encode server info: %v", err)
		return
	}

	s.logger.Info("Broadcasting server info for '%s' at %s", s.config.ServerName, beaconAddr)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if _, err := conn.Write(datagram); err != nil {
				s.logger.Warn("Error broadcasting server info: %v", err)
			}
		}
	}
}
