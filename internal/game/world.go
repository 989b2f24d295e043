package game

import (
	"github.com/sasha-s/go-deadlock"
)

// World is the authoritative world state store. Every read or write that
// spans more than one field goes through a method holding the store lock;
// nothing outside this package touches the maps directly.
type World struct {
	mu        deadlock.Mutex
	players   map[string]*Player
	platforms []*Platform
	banned    map[string]struct{}
	chat      []ChatMessage
}

// NewWorld creates a world populated with the given platforms and no
// players
func NewWorld(platforms []*Platform) *World {
	return &World{
		players:   make(map[string]*Player),
		platforms: platforms,
		banned:    make(map[string]struct{}),
	}
}

// Connect binds an identity to the world, creating the player at spawn on
// first sight or overwriting username/hat and reviving the stored state on
// reconnect. It returns the player's welcome snapshot and whether the
// identity already existed.
func (w *World) Connect(uuid, username, hat string) (PlayerSnapshot, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	player, existed := w.players[uuid]
	if existed {
		player.Username = username
		player.Hat = hat
		player.Connected = true
	} else {
		player = NewPlayer(uuid, username, hat)
		w.players[uuid] = player
	}
	return player.Snapshot(), existed
}

// MarkDisconnected flags the identity as disconnected. The player's state
// is retained for a future reconnect.
func (w *World) MarkDisconnected(uuid string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if player, ok := w.players[uuid]; ok {
		player.Connected = false
	}
}

// IsConnected reports whether the identity currently has a live binding
func (w *World) IsConnected(uuid string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	player, ok := w.players[uuid]
	return ok && player.Connected
}

// ApplyUpdate overwrites the player's position, and optionally velocity
// and gravity, from a client-reported update. Frozen players ignore
// updates entirely. It reports whether the update was applied.
func (w *World) ApplyUpdate(uuid string, position [2]float64, velocityX, velocityY *float64, gravity string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	player, ok := w.players[uuid]
	if !ok || player.Frozen {
		return false
	}

	player.GridX = position[0]
	player.GridY = position[1]
	if velocityX != nil {
		player.VelocityX = *velocityX
	}
	if velocityY != nil {
		player.VelocityY = *velocityY
	}
	if gravity != "" {
		if parsed, err := ParseGravity(gravity); err == nil {
			player.Gravity = parsed
		}
	}
	return true
}

// Ban adds the identity to the ban set
func (w *World) Ban(uuid string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.banned[uuid] = struct{}{}
}

// Unban removes the identity from the ban set, reporting whether it was
// banned
func (w *World) Unban(uuid string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.banned[uuid]; !ok {
		return false
	}
	delete(w.banned, uuid)
	return true
}

// IsBanned reports whether the identity is in the ban set
func (w *World) IsBanned(uuid string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	_, ok := w.banned[uuid]
	return ok
}

// PushChat queues a chat line for the next broadcast
func (w *World) PushChat(sender, text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.chat = append(w.chat, ChatMessage{Sender: sender, Text: text})
}

// SnapshotState copies the full world state for a broadcast in one lock
// hold and drains the chat queue. Chat lines are broadcast at most once;
// a send failure afterwards does not replay them.
func (w *World) SnapshotState() (map[string]PlayerSnapshot, []PlatformSnapshot, []ChatMessage) {
	w.mu.Lock()
	defer w.mu.Unlock()

	players := make(map[string]PlayerSnapshot, len(w.players))
	for uuid, player := range w.players {
		players[uuid] = player.Snapshot()
	}

	platforms := make([]PlatformSnapshot, 0, len(w.platforms))
	for _, platform := range w.platforms {
		platforms = append(platforms, platform.Snapshot())
	}

	chat := w.chat
	w.chat = nil

	return players, platforms, chat
}

// ListPlayers copies every known player's snapshot, connected or not
func (w *World) ListPlayers() []PlayerSnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	players := make([]PlayerSnapshot, 0, len(w.players))
	for _, player := range w.players {
		players = append(players, player.Snapshot())
	}
	return players
}

// FindPlayer resolves an operator-supplied identifier to a player UUID:
// exact identity match first, then the first player whose username
// matches. With duplicate usernames the winner is whichever player map
// iteration reaches first.
func (w *World) FindPlayer(identifier string) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.players[identifier]; ok {
		return identifier, true
	}
	for uuid, player := range w.players {
		if player.Username == identifier {
			return uuid, true
		}
	}
	return "", false
}

// PlayerInfo returns the snapshot of a single player by identity
func (w *World) PlayerInfo(uuid string) (PlayerSnapshot, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	player, ok := w.players[uuid]
	if !ok {
		return PlayerSnapshot{}, false
	}
	return player.Snapshot(), true
}

// mutatePlayer runs f on the player under the store lock, reporting
// whether the identity exists
func (w *World) mutatePlayer(uuid string, f func(*Player)) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	player, ok := w.players[uuid]
	if !ok {
		return false
	}
	f(player)
	return true
}

// Teleport moves the player to an absolute position
func (w *World) Teleport(uuid string, x, y float64) bool {
	return w.mutatePlayer(uuid, func(p *Player) {
		p.GridX = x
		p.GridY = y
	})
}

// Nudge moves the player by a relative offset and returns the new
// position
func (w *World) Nudge(uuid string, dx, dy float64) (float64, float64, bool) {
	var x, y float64
	ok := w.mutatePlayer(uuid, func(p *Player) {
		p.GridX += dx
		p.GridY += dy
		x, y = p.GridX, p.GridY
	})
	return x, y, ok
}

// SetSpeed sets the player's movement speed scalar
func (w *World) SetSpeed(uuid string, speed float64) bool {
	return w.mutatePlayer(uuid, func(p *Player) {
		p.Speed = speed
	})
}

// SetFrozen toggles whether the server ignores the player's own position
// updates
func (w *World) SetFrozen(uuid string, frozen bool) bool {
	return w.mutatePlayer(uuid, func(p *Player) {
		p.Frozen = frozen
	})
}

// GiveHat sets the player's cosmetic hat
func (w *World) GiveHat(uuid, hat string) bool {
	return w.mutatePlayer(uuid, func(p *Player) {
		p.Hat = hat
	})
}

// SetGravity sets the player's gravity direction
func (w *World) SetGravity(uuid string, gravity GravityDirection) bool {
	return w.mutatePlayer(uuid, func(p *Player) {
		p.Gravity = gravity
	})
}

// Smite slams the player downward with a large velocity
func (w *World) Smite(uuid string) bool {
	return w.mutatePlayer(uuid, func(p *Player) {
		p.VelocityY = 1000
	})
}

// Launch pops the player up half a tile and throws them skyward
func (w *World) Launch(uuid string) bool {
	return w.mutatePlayer(uuid, func(p *Player) {
		p.GridY -= 0.5
		p.VelocityY = -1000
	})
}

// AddPlatform appends a platform to the world
func (w *World) AddPlatform(platform *Platform) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.platforms = append(w.platforms, platform)
}

// PlatformCount returns the number of platforms in the world
func (w *World) PlatformCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.platforms)
}

// Step advances the simulation by dt seconds: platform break/respawn
// timers plus platform effects on connected players. Breakable platforms
// start crumbling when touched; gravity platforms pull a standing player's
// gravity toward themselves.
func (w *World) Step(dt float64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, platform := range w.platforms {
		platform.Update(dt)
	}

	for _, player := range w.players {
		if !player.Connected {
			continue
		}
		for _, platform := range w.platforms {
			if !platform.Active || !platform.Overlaps(player) {
				continue
			}
			switch platform.Type {
			case PlatformBreakable:
				platform.StartBreaking(dt)
			case PlatformGravity:
				if platform.IsStandingOn(player) {
					w.changeGravityLocked(player, platform)
				}
			}
		}
	}
}

// changeGravityLocked applies a gravity platform's pull, zeroing velocity
// on the new gravity axis when the direction actually changes. Caller
// holds the store lock.
func (w *World) changeGravityLocked(player *Player, platform *Platform) {
	newGravity := platform.GravityFor(player)
	if player.Gravity == newGravity {
		return
	}
	player.Gravity = newGravity
	if newGravity == GravityDown || newGravity == GravityUp {
		player.VelocityY = 0
	} else {
		player.VelocityX = 0
	}
}
