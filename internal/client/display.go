package client

import (
	"fmt"

	"github.com/fatih/color"
)

// Display renders client-side console output with consistent coloring
type Display struct {
	serverColor  *color.Color
	connectColor *color.Color
	chatColor    *color.Color
	warningColor *color.Color
	errorColor   *color.Color
	infoColor    *color.Color
}

// NewDisplay creates a display with the configured color scheme
func NewDisplay() *Display {
	return &Display{
		serverColor:  color.New(color.FgCyan, color.Bold),
		connectColor: color.New(color.FgGreen, color.Bold),
		chatColor:    color.New(color.FgYellow),
		warningColor: color.New(color.FgYellow, color.Bold),
		errorColor:   color.New(color.FgRed, color.Bold),
		infoColor:    color.New(color.FgWhite),
	}
}

// PrintBanner displays the client banner
func (d *Display) PrintBanner() {
	d.serverColor.Println("=== game-because-i-was-bored ===")
}

// PrintServerStatus displays connection status lines
func (d *Display) PrintServerStatus(message string) {
	d.connectColor.Printf("[SERVER] %s\n", message)
}

// PrintServerList displays the servers found during discovery
func (d *Display) PrintServerList(servers []DiscoveredServer) {
	if len(servers) == 0 {
		d.warningColor.Println("No servers found on the local network.")
		return
	}
	d.infoColor.Println("Servers found:")
	for i, server := range servers {
		d.infoColor.Printf("  %d. %s — lobby '%s' at %s\n", i+1, server.Info.ServerName, server.Info.LobbyName, server.Addr())
	}
}

// PrintChat displays one broadcast chat line
func (d *Display) PrintChat(sender, text string) {
	d.chatColor.Printf("[%s] %s\n", sender, text)
}

// PrintNotice displays a ban or kick notice from the server
func (d *Display) PrintNotice(kind, reason string) {
	d.errorColor.Printf("[%s] %s\n", kind, reason)
}

// PrintInfo displays a plain informational line
func (d *Display) PrintInfo(message string) {
	d.infoColor.Println(message)
}

// PrintError displays an error line
func (d *Display) PrintError(message string) {
	d.errorColor.Println(message)
}

// PrintPlayerCount displays how many players the latest snapshot holds
func (d *Display) PrintPlayerCount(connected, total int) {
	d.infoColor.Println(fmt.Sprintf("Players online: %d (%d known)", connected, total))
}
