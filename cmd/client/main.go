// Game client - Main Entry Point
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/maximumcalamity58/game-because-i-was-bored/internal/client"
	"github.com/maximumcalamity58/game-because-i-was-bored/internal/game"
	"github.com/maximumcalamity58/game-because-i-was-bored/internal/server"
	"github.com/maximumcalamity58/game-because-i-was-bored/pkg/logger"
)

var (
	version         = "1.0.0"
	serverAddr      = flag.String("server", "", "Server address host:port (discovered on the LAN when empty)")
	username        = flag.String("username", "", "Display name (persisted after first use)")
	hat             = flag.String("hat", "", "Cosmetic hat name (persisted after first use)")
	dataFile        = flag.String("data-file", client.DefaultDataFile, "Player identity cache file")
	beaconAddr      = flag.String("beacon-addr", server.DefaultBeaconAddr, "Multicast group:port to listen on for discovery")
	discoverTimeout = flag.Duration("discover-timeout", 5*time.Second, "How long to listen for server announcements")
	logLevel        = flag.String("log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	logFile         = flag.String("log-file", "", "Log file path (optional)")
)

func main() {
	flag.Parse()

	if err := initLogging(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	logger.Client.Info("Starting game client v%s", version)

	data, err := loadIdentity()
	if err != nil {
		logger.Client.Fatal("%v", err)
	}

	addr := *serverAddr
	if addr == "" {
		addr, err = discoverServer()
		if err != nil {
			logger.Client.Fatal("%v", err)
		}
	}

	gameClient := client.NewClient(addr, data)
	if err := gameClient.Connect(); err != nil {
		logger.Client.Fatal("Failed to connect: %v", err)
	}
	setupGracefulShutdown(gameClient)

	// A scripted walker stands in for the real input/physics loop, which
	// is not part of this build: it paces back and forth from the spawn
	// point so the shared world visibly moves.
	go walk(gameClient)

	if err := gameClient.Run(nil); err != nil {
		if errors.Is(err, client.ErrRemoved) {
			logger.Client.Info("Session ended: %v", err)
			os.Exit(0)
		}
		logger.Client.Error("%v", err)
		os.Exit(1)
	}
}

// loadIdentity reads the persisted identity, applies flag overrides and
// writes it back once complete
func loadIdentity() (*client.PlayerData, error) {
	data, err := client.LoadPlayerData(*dataFile)
	if err != nil {
		return nil, err
	}

	if *username != "" {
		data.Username = *username
	}
	if data.Username == "" {
		data.Username = "Player"
	}
	if *hat != "" {
		data.Hat = *hat
	}
	if data.EnsureUUID() {
		logger.Client.Info("Generated new player identity %s", data.UUID)
	}

	if err := data.Save(*dataFile); err != nil {
		return nil, err
	}
	return data, nil
}

// discoverServer listens for beacon announcements and picks the first
// server heard
func discoverServer() (string, error) {
	logger.Client.Info("No server address given, listening for announcements on %s...", *beaconAddr)

	servers, err := client.Discover(*beaconAddr, *discoverTimeout)
	if err != nil {
		return "", fmt.Errorf("discovery failed: %w", err)
	}
	client.NewDisplay().PrintServerList(servers)
	if len(servers) == 0 {
		return "", fmt.Errorf("no servers found; pass -server host:port")
	}
	return servers[0].Addr(), nil
}

// walk drives a simple oscillating movement, reporting position at 20Hz
func walk(gameClient *client.Client) {
	welcome := gameClient.Welcome()
	x, y := welcome.Position[0], welcome.Position[1]

	const speed = 2.0 // tiles per second
	direction := 1.0
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	last := time.Now()
	for now := range ticker.C {
		dt := now.Sub(last).Seconds()
		last = now

		x += speed * direction * dt
		if x > welcome.Position[0]+5 || x < welcome.Position[0]-5 {
			direction = -direction
		}

		if err := gameClient.SendUpdate(x, y, speed*direction, 0, game.GravityDown); err != nil {
			logger.Client.Debug("Stopping walker: %v", err)
			return
		}
	}
}

// initLogging sets up the logging system
func initLogging() error {
	var level logger.LogLevel
	switch *logLevel {
	case "DEBUG":
		level = logger.DEBUG
	case "INFO":
		level = logger.INFO
	case "WARN":
		level = logger.WARN
	case "ERROR":
		level = logger.ERROR
	default:
		level = logger.INFO
	}

	logger.SetGlobalLogLevel(level)

	if *logFile != "" {
		if err := logger.Client.SetFile(*logFile); err != nil {
			return fmt.Errorf("failed to set log file: %w", err)
		}
	}

	return nil
}

// setupGracefulShutdown closes the connection on interrupt signals
func setupGracefulShutdown(gameClient *client.Client) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logger.Client.Info("Received shutdown signal, closing client...")
		gameClient.Close()
		os.Exit(0)
	}()
}
