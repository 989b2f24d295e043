// Game server - Main Entry Point
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/maximumcalamity58/game-because-i-was-bored/internal/game"
	"github.com/maximumcalamity58/game-because-i-was-bored/internal/server"
	"github.com/maximumcalamity58/game-because-i-was-bored/pkg/logger"
)

var (
	version        = "1.0.0"
	buildTime      = "dev"
	host           = flag.String("host", "0.0.0.0", "Server listen host")
	port           = flag.Int("port", 12345, "Server port")
	serverName     = flag.String("name", "MyGameServer", "Server name announced on the LAN")
	lobbyName      = flag.String("lobby", "Default Lobby", "Lobby name announced on the LAN")
	beaconAddr     = flag.String("beacon-addr", server.DefaultBeaconAddr, "Multicast group:port for discovery announcements")
	beaconInterval = flag.Duration("beacon-interval", server.DefaultBeaconInterval, "Interval between discovery announcements")
	levelFile      = flag.String("level", "", "Level definition JSON file (built-in level when empty)")
	logLevel       = flag.String("log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	logFile        = flag.String("log-file", "", "Log file path (optional)")
	help           = flag.Bool("help", false, "Show help information")
	ver            = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Parse()

	if *help {
		showHelp()
		return
	}
	if *ver {
		showVersion()
		return
	}

	if err := initLogging(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	logger.Server.Info("Starting game server v%s", version)

	// Build the world from the level definition
	configs := game.DefaultLevel
	if *levelFile != "" {
		loaded, err := game.LoadLevel(*levelFile)
		if err != nil {
			logger.Server.Fatal("Failed to load level: %v", err)
		}
		configs = loaded
		logger.Server.Info("Loaded level from %s (%d entries)", *levelFile, len(configs))
	}
	platforms, err := game.BuildPlatforms(configs)
	if err != nil {
		logger.Server.Fatal("Failed to build level: %v", err)
	}
	world := game.NewWorld(platforms)

	gameServer := server.NewServer(server.Config{
		Host:           *host,
		Port:           *port,
		ServerName:     *serverName,
		LobbyName:      *lobbyName,
		BeaconAddr:     *beaconAddr,
		BeaconInterval: *beaconInterval,
	}, world)

	setupGracefulShutdown(gameServer)
	go runConsole(world, gameServer)

	if err := gameServer.Start(); err != nil {
		logger.Server.Fatal("Server failed to start: %v", err)
	}
}

// runConsole feeds operator commands from stdin into the command
// interpreter
func runConsole(world *game.World, gameServer *server.Server) {
	processor := server.NewCommandProcessor(world, gameServer, os.Stdout)
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		processor.Process(scanner.Text())
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
		if err := logger.Server.SetFile(*logFile); err != nil {
			return fmt.Errorf("failed to set log file: %w", err)
		}
		logger.Server.Info("Logging to file: %s", *logFile)
	}

	return nil
}

// setupGracefulShutdown handles graceful shutdown on interrupt signals
func setupGracefulShutdown(gameServer *server.Server) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logger.Server.Info("Received shutdown signal, stopping server...")
		gameServer.Stop()
		os.Exit(0)
	}()
}

// showHelp displays help information
func showHelp() {
	fmt.Printf(`Game Server v%s

USAGE:
    %s [OPTIONS]

OPTIONS:
    -host string             Server listen host (default "0.0.0.0")
    -port int                Server port (default 12345)
    -name string             Server name announced on the LAN
    -lobby string            Lobby name announced on the LAN
    -beacon-addr string      Multicast group:port for discovery (default "224.0.0.1:12346")
    -beacon-interval dur     Interval between announcements (default 2s)
    -level string            Level definition JSON file
    -log-level string        Set log level (DEBUG, INFO, WARN, ERROR) (default "INFO")
    -log-file string         Set log file path (optional)
    -help                    Show this help message
    -version                 Show version information

EXAMPLES:
    # Start server with the built-in level
    %s

    # Start on a specific port with a custom level
    %s -port 9000 -level my_level.json

    # Start with debug logging
    %s -log-level DEBUG

OPERATOR CONSOLE:
    Commands are read from stdin, one per line. Type 'help' for the
    command list (teleport, kick, ban, freeze, make_platform, ...).

SERVER FEATURES:
    - TCP socket server with length-prefixed msgpack frames
    - Persistent player identities with reconnection
    - Full-state broadcasts after every accepted update
    - UDP multicast discovery beacon for LAN clients
    - 60Hz platform simulation (breakable and gravity platforms)
`, version, os.Args[0], os.Args[0], os.Args[0], os.Args[0])
}

// showVersion displays version information
func showVersion() {
	fmt.Printf(`Game Server
Version: %s
Build Time: %s
`, version, buildTime)
}
