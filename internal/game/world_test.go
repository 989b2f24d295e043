package game

import "testing"

const (
	uuidAlice = "11111111-1111-4111-8111-111111111111"
	uuidBob   = "22222222-2222-4222-8222-222222222222"
)

func TestConnectSpawnsAtSpawnPoint(t *testing.T) {
	world := NewWorld(nil)

	snapshot, existed := world.Connect(uuidAlice, "Alice", "crown")
	if existed {
		t.Fatal("first connect reported an existing player")
	}
	if snapshot.Position != [2]float64{SpawnX, SpawnY} {
		t.Fatalf("spawn position mismatch: %v", snapshot.Position)
	}
	if snapshot.Speed != DefaultSpeed || !snapshot.Connected || snapshot.Username != "Alice" {
		t.Fatalf("spawn snapshot mismatch: %+v", snapshot)
	}
	if snapshot.GravityDirection != GravityDown {
		t.Fatalf("spawn gravity mismatch: %v", snapshot.GravityDirection)
	}
}

func TestReconnectRevivesStoredState(t *testing.T) {
	world := NewWorld(nil)
	world.Connect(uuidAlice, "Alice", "crown")

	world.Teleport(uuidAlice, 40, 7)
	world.SetSpeed(uuidAlice, 450)
	world.MarkDisconnected(uuidAlice)

	if world.IsConnected(uuidAlice) {
		t.Fatal("player still connected after disconnect")
	}

	snapshot, existed := world.Connect(uuidAlice, "AliceRenamed", "halo")
	if !existed {
		t.Fatal("reconnect not recognized as an existing player")
	}
	if snapshot.Position != [2]float64{40, 7} {
		t.Fatalf("reconnect lost position: %v", snapshot.Position)
	}
	if snapshot.Speed != 450 {
		t.Fatalf("reconnect lost speed: %v", snapshot.Speed)
	}
	if snapshot.Username != "AliceRenamed" || snapshot.Hat != "halo" {
		t.Fatalf("reconnect did not take the new name/hat: %+v", snapshot)
	}
	if !world.IsConnected(uuidAlice) {
		t.Fatal("reconnect did not mark the player connected")
	}
}

func TestApplyUpdate(t *testing.T) {
	world := NewWorld(nil)
	world.Connect(uuidAlice, "Alice", "")

	vx := 3.0
	if !world.ApplyUpdate(uuidAlice, [2]float64{12, 9}, &vx, nil, "left") {
		t.Fatal("valid update rejected")
	}
	snapshot, _ := world.PlayerInfo(uuidAlice)
	if snapshot.Position != [2]float64{12, 9} || snapshot.VelocityX != 3.0 {
		t.Fatalf("update not applied: %+v", snapshot)
	}
	if snapshot.GravityDirection != GravityLeft {
		t.Fatalf("gravity not applied: %v", snapshot.GravityDirection)
	}

	if world.ApplyUpdate(uuidBob, [2]float64{1, 1}, nil, nil, "") {
		t.Fatal("update for unknown identity accepted")
	}
}

func TestFrozenPlayersIgnoreUpdates(t *testing.T) {
	world := NewWorld(nil)
	world.Connect(uuidAlice, "Alice", "")
	world.Teleport(uuidAlice, 8, 8)
	world.SetFrozen(uuidAlice, true)

	if world.ApplyUpdate(uuidAlice, [2]float64{99, 99}, nil, nil, "") {
		t.Fatal("frozen player's update was accepted")
	}
	snapshot, _ := world.PlayerInfo(uuidAlice)
	if snapshot.Position != [2]float64{8, 8} {
		t.Fatalf("frozen player moved: %v", snapshot.Position)
	}

	// Operator mutations still work on frozen players
	if !world.Teleport(uuidAlice, 5, 5) {
		t.Fatal("teleport rejected for frozen player")
	}

	world.SetFrozen(uuidAlice, false)
	if !world.ApplyUpdate(uuidAlice, [2]float64{6, 6}, nil, nil, "") {
		t.Fatal("update rejected after unfreeze")
	}
}

func TestBanSet(t *testing.T) {
	world := NewWorld(nil)

	if world.IsBanned(uuidAlice) {
		t.Fatal("fresh world reports a ban")
	}
	world.Ban(uuidAlice)
	if !world.IsBanned(uuidAlice) {
		t.Fatal("ban not recorded")
	}
	if !world.Unban(uuidAlice) {
		t.Fatal("unban of a banned identity reported false")
	}
	if world.Unban(uuidAlice) {
		t.Fatal("unban of a clean identity reported true")
	}
}

func TestFindPlayer(t *testing.T) {
	world := NewWorld(nil)
	world.Connect(uuidAlice, "Alice", "")
	world.Connect(uuidBob, "Bob", "")

	if uuid, ok := world.FindPlayer(uuidBob); !ok || uuid != uuidBob {
		t.Fatalf("lookup by identity failed: %q %v", uuid, ok)
	}
	if uuid, ok := world.FindPlayer("Alice"); !ok || uuid != uuidAlice {
		t.Fatalf("lookup by username failed: %q %v", uuid, ok)
	}
	if _, ok := world.FindPlayer("Charlie"); ok {
		t.Fatal("lookup of unknown player succeeded")
	}
}

func TestSnapshotStateDrainsChat(t *testing.T) {
	world := NewWorld([]*Platform{NewPlatform(0, 29, 1, 1, PlatformNormal)})
	world.Connect(uuidAlice, "Alice", "")
	world.PushChat("Server", "round starting")
	world.PushChat("Server", "good luck")

	players, platforms, chat := world.SnapshotState()
	if len(players) != 1 || len(platforms) != 1 {
		t.Fatalf("snapshot sizes: %d players, %d platforms", len(players), len(platforms))
	}
	if len(chat) != 2 || chat[1].Text != "good luck" {
		t.Fatalf("chat mismatch: %+v", chat)
	}

	_, _, chat = world.SnapshotState()
	if len(chat) != 0 {
		t.Fatalf("chat replayed on second snapshot: %+v", chat)
	}
}

func TestOperatorMutations(t *testing.T) {
	world := NewWorld(nil)
	world.Connect(uuidAlice, "Alice", "")

	if x, y, ok := world.Nudge(uuidAlice, 3, -1); !ok || x != SpawnX+3 || y != SpawnY-1 {
		t.Fatalf("nudge result: (%v,%v) %v", x, y, ok)
	}

	world.GiveHat(uuidAlice, "wizard")
	world.SetGravity(uuidAlice, GravityUp)
	world.Smite(uuidAlice)

	snapshot, _ := world.PlayerInfo(uuidAlice)
	if snapshot.Hat != "wizard" || snapshot.GravityDirection != GravityUp {
		t.Fatalf("mutations missing: %+v", snapshot)
	}
	if snapshot.VelocityY != 1000 {
		t.Fatalf("smite velocity: %v", snapshot.VelocityY)
	}

	before := snapshot.Position[1]
	world.Launch(uuidAlice)
	snapshot, _ = world.PlayerInfo(uuidAlice)
	if snapshot.Position[1] != before-0.5 || snapshot.VelocityY != -1000 {
		t.Fatalf("launch result: %+v", snapshot)
	}

	if world.Teleport(uuidBob, 0, 0) {
		t.Fatal("mutation of unknown identity succeeded")
	}
}

func TestStepBreaksTouchedPlatform(t *testing.T) {
	platform := NewPlatform(10, 10, 1, 1, PlatformBreakable)
	world := NewWorld([]*Platform{platform})
	world.Connect(uuidAlice, "Alice", "")
	world.Teleport(uuidAlice, 10, 10)

	const dt = 1.0 / 60
	world.Step(dt)
	if platform.BreakTimer == 0 {
		t.Fatal("touched breakable platform did not start crumbling")
	}

	// Crumble continues even after the player leaves
	world.Teleport(uuidAlice, 0, 0)
	for i := 0; i < 70; i++ {
		world.Step(dt)
	}
	if platform.Active {
		t.Fatal("platform survived past the break delay")
	}
}

func TestStepIgnoresDisconnectedPlayers(t *testing.T) {
	platform := NewPlatform(10, 10, 1, 1, PlatformBreakable)
	world := NewWorld([]*Platform{platform})
	world.Connect(uuidAlice, "Alice", "")
	world.Teleport(uuidAlice, 10, 10)
	world.MarkDisconnected(uuidAlice)

	world.Step(1.0 / 60)
	if platform.BreakTimer != 0 {
		t.Fatal("disconnected player armed a break timer")
	}
}

func TestStepGravityPlatformFlipsStandingPlayer(t *testing.T) {
	platform := NewPlatform(10, 10, 2, 1, PlatformGravity)
	world := NewWorld([]*Platform{platform})
	world.Connect(uuidAlice, "Alice", "")

	// Standing on top near the right edge: the player's center sits right of
	// the platform's center, so the platform pulls gravity back to the left
	vx := 4.0
	world.ApplyUpdate(uuidAlice, [2]float64{11.9, 9.05}, &vx, nil, "")

	world.Step(1.0 / 60)

	snapshot, _ := world.PlayerInfo(uuidAlice)
	if snapshot.GravityDirection != GravityLeft {
		t.Fatalf("gravity after step: %v", snapshot.GravityDirection)
	}
	if snapshot.VelocityX != 0 {
		t.Fatalf("velocity on the new axis not zeroed: %v", snapshot.VelocityX)
	}
}

func TestBuildPlatformsExpandsTiles(t *testing.T) {
	platforms, err := BuildPlatforms([]PlatformConfig{
		{GridX: 5, GridY: 20, WidthInTiles: 3, HeightInTiles: 2, PlatformType: "breakable"},
	})
	if err != nil {
		t.Fatalf("BuildPlatforms returned error: %v", err)
	}
	if len(platforms) != 6 {
		t.Fatalf("3x2 config expanded to %d tiles, want 6", len(platforms))
	}
	for _, platform := range platforms {
		if platform.WidthInTiles != 1 || platform.HeightInTiles != 1 {
			t.Fatalf("tile not 1x1: %+v", platform)
		}
		if platform.Type != PlatformBreakable || !platform.Active {
			t.Fatalf("tile type/state mismatch: %+v", platform)
		}
	}
}

func TestBuildPlatformsValidation(t *testing.T) {
	if _, err := BuildPlatforms([]PlatformConfig{{WidthInTiles: 1, HeightInTiles: 1, PlatformType: "lava"}}); err == nil {
		t.Fatal("unknown platform type was accepted")
	}

	platforms, err := BuildPlatforms([]PlatformConfig{{WidthInTiles: 1, HeightInTiles: 1}})
	if err != nil {
		t.Fatalf("BuildPlatforms returned error: %v", err)
	}
	if platforms[0].Type != PlatformNormal {
		t.Fatalf("empty type not defaulted to normal: %v", platforms[0].Type)
	}
}

func TestDefaultLevelBuilds(t *testing.T) {
	platforms, err := BuildPlatforms(DefaultLevel)
	if err != nil {
		t.Fatalf("built-in level failed to build: %v", err)
	}
	if len(platforms) == 0 {
		t.Fatal("built-in level is empty")
	}
}
