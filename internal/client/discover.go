package client

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/maximumcalamity58/game-because-i-was-bored/internal/network"
	"github.com/maximumcalamity58/game-because-i-was-bored/pkg/logger"
)

// DiscoveredServer pairs a beacon payload with the address it arrived
// from. The beacon itself only carries the port; the host comes from the
// datagram's source.
type DiscoveredServer struct {
	Host string
	Info network.ServerInfoPayload
}

// Addr returns the host:port to dial for this server
func (d DiscoveredServer) Addr() string {
	return net.JoinHostPort(d.Host, strconv.Itoa(d.Info.Port))
}

// Discover listens on the multicast beacon group for the given duration
// and returns every distinct server heard from. Malformed datagrams are
// skipped; servers announce every couple of seconds, so a few seconds of
// listening is enough.
func Discover(beaconAddr string, timeout time.Duration) ([]DiscoveredServer, error) {
	addr, err := net.ResolveUDPAddr("udp4", beaconAddr)
	if err != nil {
		return nil, fmt.Errorf("bad beacon address %s: %w", beaconAddr, err)
	}

	conn, err := net.ListenMulticastUDP("udp4", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to join multicast group: %w", err)
	}
	defer conn.Close()

	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, fmt.Errorf("failed to set read deadline: %w", err)
	}

	var servers []DiscoveredServer
	seen := make(map[string]bool)
	buf := make([]byte, 64*1024)

	for {
		n, from, err := conn.ReadFromUDP(buf)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				return servers, nil
			}
			return servers, fmt.Errorf("failed to read beacon datagram: %w", err)
		}

		env, err := network.DecodeEnvelope(buf[:n])
		if err != nil {
			logger.Client.Debug("Ignoring malformed datagram from %s: %v", from, err)
			continue
		}
		info, err := env.DecodeServerInfo()
		if err != nil {
			logger.Client.Debug("Ignoring non-beacon message from %s: %v", from, err)
			continue
		}

		key := fmt.Sprintf("%s/%s:%d", info.ServerName, from.IP, info.Port)
		if !seen[key] {
			seen[key] = true
			servers = append(servers, DiscoveredServer{Host: from.IP.String(), Info: *info})
			logger.Client.Info("Discovered server '%s' (lobby '%s') at %s:%d", info.ServerName, info.LobbyName, from.IP, info.Port)
		}
	}
}
