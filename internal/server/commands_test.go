package server

import (
	"bytes"
	"strings"
	"testing"

	"github.com/maximumcalamity58/game-because-i-was-bored/internal/game"
)

// newTestProcessor wires a processor to an idle server so command
// broadcasts have no targets
func newTestProcessor() (*CommandProcessor, *game.World, *bytes.Buffer) {
	world := game.NewWorld(nil)
	s := NewServer(Config{ServerName: "TestServer"}, world)
	out := &bytes.Buffer{}
	return NewCommandProcessor(world, s, out), world, out
}

func TestTeleportCommand(t *testing.T) {
	processor, world, out := newTestProcessor()
	world.Connect(uuidAlice, "Alice", "")

	processor.Process("teleport Alice 7 2")

	if !strings.Contains(out.String(), "Teleported Alice to (7, 2).") {
		t.Fatalf("teleport output: %q", out.String())
	}
	snapshot, _ := world.PlayerInfo(uuidAlice)
	if snapshot.Position != [2]float64{7, 2} {
		t.Fatalf("teleport position: %v", snapshot.Position)
	}
}

func TestTeleportRejectsBadCoordinates(t *testing.T) {
	processor, world, out := newTestProcessor()
	world.Connect(uuidAlice, "Alice", "")

	processor.Process("teleport Alice abc 2")

	if !strings.Contains(out.String(), "Error: x and y must be numbers.") {
		t.Fatalf("teleport output: %q", out.String())
	}
	snapshot, _ := world.PlayerInfo(uuidAlice)
	if snapshot.Position != [2]float64{game.SpawnX, game.SpawnY} {
		t.Fatalf("player moved despite bad input: %v", snapshot.Position)
	}
}

func TestCommandDispatch(t *testing.T) {
	processor, _, out := newTestProcessor()

	processor.Process("bogus 1 2 3")
	if !strings.Contains(out.String(), "Unknown command: bogus.") {
		t.Fatalf("unknown command output: %q", out.String())
	}

	out.Reset()
	processor.Process("")
	if out.Len() != 0 {
		t.Fatalf("blank line produced output: %q", out.String())
	}

	// Command names are case-insensitive
	out.Reset()
	processor.Process("HELP")
	if !strings.Contains(out.String(), "Available commands:") {
		t.Fatalf("help output: %q", out.String())
	}
}

func TestCommandsRejectUnknownPlayer(t *testing.T) {
	processor, _, out := newTestProcessor()

	processor.Process("smite ghost")

	if !strings.Contains(out.String(), "No player found with identifier 'ghost'.") {
		t.Fatalf("unknown player output: %q", out.String())
	}
}

func TestAddCommandReportsNewPosition(t *testing.T) {
	processor, world, out := newTestProcessor()
	world.Connect(uuidAlice, "Alice", "")

	processor.Process("add Alice 3 -1")

	if !strings.Contains(out.String(), "New position: (5, 9).") {
		t.Fatalf("add output: %q", out.String())
	}
}

func TestBanCommand(t *testing.T) {
	processor, world, out := newTestProcessor()
	world.Connect(uuidAlice, "Alice", "")

	processor.Process("ban Alice")

	if !strings.Contains(out.String(), "Banned player Alice.") {
		t.Fatalf("ban output: %q", out.String())
	}
	if !world.IsBanned(uuidAlice) {
		t.Fatal("ban command did not record the ban")
	}
	if world.IsConnected(uuidAlice) {
		t.Fatal("banned player still marked connected")
	}
}

func TestUnbanAcceptsRawIdentity(t *testing.T) {
	processor, world, out := newTestProcessor()

	// An identity banned in a previous run has no player entry
	world.Ban(uuidBob)
	processor.Process("unban " + uuidBob)

	if !strings.Contains(out.String(), "Unbanned player with UUID "+uuidBob) {
		t.Fatalf("unban output: %q", out.String())
	}
	if world.IsBanned(uuidBob) {
		t.Fatal("unban did not clear the ban")
	}

	out.Reset()
	processor.Process("unban " + uuidBob)
	if !strings.Contains(out.String(), "No banned player found") {
		t.Fatalf("repeat unban output: %q", out.String())
	}
}

func TestFreezeCommandBlocksUpdates(t *testing.T) {
	processor, world, _ := newTestProcessor()
	world.Connect(uuidAlice, "Alice", "")

	processor.Process("freeze Alice")
	if world.ApplyUpdate(uuidAlice, [2]float64{50, 50}, nil, nil, "") {
		t.Fatal("frozen player's update accepted")
	}

	processor.Process("unfreeze Alice")
	if !world.ApplyUpdate(uuidAlice, [2]float64{50, 50}, nil, nil, "") {
		t.Fatal("update rejected after unfreeze")
	}
}

func TestMakePlatformCommand(t *testing.T) {
	processor, world, out := newTestProcessor()

	processor.Process("make_platform 5 6 2 1 deadly")

	if !strings.Contains(out.String(), "Created new platform of type 'deadly' at (5, 6) with size (2x1).") {
		t.Fatalf("make_platform output: %q", out.String())
	}
	if world.PlatformCount() != 1 {
		t.Fatalf("platform count: %d", world.PlatformCount())
	}

	out.Reset()
	processor.Process("make_platform 5 6 2 1 lava")
	if world.PlatformCount() != 1 {
		t.Fatal("invalid platform type created a platform")
	}

	// Type defaults to normal when omitted
	out.Reset()
	processor.Process("make_platform 0 0 1 1")
	if !strings.Contains(out.String(), "type 'normal'") {
		t.Fatalf("default type output: %q", out.String())
	}
}

func TestBroadcastCommand(t *testing.T) {
	processor, _, out := newTestProcessor()

	processor.Process("broadcast server restarting soon")
	if !strings.Contains(out.String(), "Broadcasted message: server restarting soon") {
		t.Fatalf("broadcast output: %q", out.String())
	}

	out.Reset()
	processor.Process("broadcast")
	if !strings.Contains(out.String(), "Usage: broadcast [message]") {
		t.Fatalf("broadcast usage output: %q", out.String())
	}
}

func TestChangeGravityCommand(t *testing.T) {
	processor, world, out := newTestProcessor()
	world.Connect(uuidAlice, "Alice", "")

	processor.Process("change_gravity Alice UP")
	snapshot, _ := world.PlayerInfo(uuidAlice)
	if snapshot.GravityDirection != game.GravityUp {
		t.Fatalf("gravity after command: %v", snapshot.GravityDirection)
	}

	out.Reset()
	processor.Process("change_gravity Alice sideways")
	if !strings.Contains(out.String(), "direction must be one of") {
		t.Fatalf("bad direction output: %q", out.String())
	}
}

func TestListCommand(t *testing.T) {
	processor, world, out := newTestProcessor()

	processor.Process("list")
	if !strings.Contains(out.String(), "No players are currently connected.") {
		t.Fatalf("empty list output: %q", out.String())
	}

	world.Connect(uuidAlice, "Alice", "")
	world.Connect(uuidBob, "Bob", "")
	world.MarkDisconnected(uuidBob)

	out.Reset()
	processor.Process("list")
	listing := out.String()
	if !strings.Contains(listing, "Username: Alice") || !strings.Contains(listing, "Username: Bob") {
		t.Fatalf("list output missing players: %q", listing)
	}
	if !strings.Contains(listing, "Status: Disconnected") {
		t.Fatalf("list output missing disconnected status: %q", listing)
	}
}
