package game

import (
	"fmt"
	"math"
)

// PlatformType classifies how a platform behaves
type PlatformType string

const (
	PlatformNormal    PlatformType = "normal"
	PlatformBreakable PlatformType = "breakable"
	PlatformDeadly    PlatformType = "deadly"
	PlatformGravity   PlatformType = "gravity"
)

// ParsePlatformType validates an operator- or level-supplied platform type
func ParsePlatformType(s string) (PlatformType, error) {
	switch PlatformType(s) {
	case PlatformNormal, PlatformBreakable, PlatformDeadly, PlatformGravity:
		return PlatformType(s), nil
	}
	return "", fmt.Errorf("platform type must be one of 'normal', 'breakable', 'deadly', 'gravity', got %q", s)
}

// Breakable platforms crumble one second after being stepped on and come
// back five seconds later; deadly platforms come back after one second.
const (
	breakDelay         = 1.0
	breakableRespawnAt = 5.0
	deadlyRespawnAt    = 1.0
)

// Platform is one world platform. Breakable and deadly platforms toggle
// their active flag in place; platforms are never removed.
type Platform struct {
	GridX         float64
	GridY         float64
	WidthInTiles  int
	HeightInTiles int
	Type          PlatformType
	Active        bool
	BreakTimer    float64
	RespawnTimer  float64
}

// NewPlatform creates an active platform of the given type
func NewPlatform(gridX, gridY float64, widthInTiles, heightInTiles int, platformType PlatformType) *Platform {
	return &Platform{
		GridX:         gridX,
		GridY:         gridY,
		WidthInTiles:  widthInTiles,
		HeightInTiles: heightInTiles,
		Type:          platformType,
		Active:        true,
	}
}

// Update advances the platform's break and respawn timers by dt seconds
func (p *Platform) Update(dt float64) {
	switch p.Type {
	case PlatformBreakable:
		if !p.Active {
			p.RespawnTimer += dt
			if p.RespawnTimer >= breakableRespawnAt {
				p.Active = true
				p.RespawnTimer = 0
			}
		} else if p.BreakTimer > 0 {
			p.BreakTimer += dt
			if p.BreakTimer >= breakDelay {
				p.Active = false
				p.BreakTimer = 0
			}
		}
	case PlatformDeadly:
		if !p.Active {
			p.RespawnTimer += dt
			if p.RespawnTimer >= deadlyRespawnAt {
				p.Active = true
				p.RespawnTimer = 0
			}
		}
	}
}

// StartBreaking arms a breakable platform's break timer with the current
// tick's dt. Stepping on an already-crumbling platform does not restart
// the countdown.
func (p *Platform) StartBreaking(dt float64) {
	if p.Type == PlatformBreakable && p.Active && p.BreakTimer == 0 {
		p.BreakTimer = dt
	}
}

// Overlaps reports whether the player's tile-sized bounding box intersects
// this platform
func (p *Platform) Overlaps(player *Player) bool {
	return player.GridX < p.GridX+float64(p.WidthInTiles) &&
		player.GridX+1 > p.GridX &&
		player.GridY < p.GridY+float64(p.HeightInTiles) &&
		player.GridY+1 > p.GridY
}

// standTolerance is the edge-adjacency slack, in tiles, for the standing
// check. Positions are fractional, so exact edge equality would never
// hold.
const standTolerance = 0.1

// IsStandingOn reports whether the player rests against this platform on
// the side their gravity pulls toward and is not moving away from it
func (p *Platform) IsStandingOn(player *Player) bool {
	spansX := player.GridX < p.GridX+float64(p.WidthInTiles) && player.GridX+1 > p.GridX
	spansY := player.GridY < p.GridY+float64(p.HeightInTiles) && player.GridY+1 > p.GridY

	switch player.Gravity {
	case GravityDown, GravityUp:
		if !spansX {
			return false
		}
	case GravityLeft, GravityRight:
		if !spansY {
			return false
		}
	}

	switch player.Gravity {
	case GravityDown:
		return math.Abs((player.GridY+1)-p.GridY) <= standTolerance && player.VelocityY >= 0
	case GravityUp:
		return math.Abs(player.GridY-(p.GridY+float64(p.HeightInTiles))) <= standTolerance && player.VelocityY <= 0
	case GravityLeft:
		return math.Abs(player.GridX-(p.GridX+float64(p.WidthInTiles))) <= standTolerance && player.VelocityX <= 0
	case GravityRight:
		return math.Abs((player.GridX+1)-p.GridX) <= standTolerance && player.VelocityX >= 0
	}
	return false
}

// GravityFor picks the gravity direction a gravity platform imposes on a
// touching player: whichever side of the platform's center the player sits
// on, gravity pulls back toward the platform.
func (p *Platform) GravityFor(player *Player) GravityDirection {
	dx := (player.GridX + 0.5) - (p.GridX + float64(p.WidthInTiles)/2)
	dy := (player.GridY + 0.5) - (p.GridY + float64(p.HeightInTiles)/2)

	if math.Abs(dx) > math.Abs(dy) {
		if dx > 0 {
			return GravityLeft
		}
		return GravityRight
	}
	if dy > 0 {
		return GravityUp
	}
	return GravityDown
}

// PlatformSnapshot is the serialized form of a platform inside a state
// broadcast
type PlatformSnapshot struct {
	GridX         float64      `msgpack:"grid_x"`
	GridY         float64      `msgpack:"grid_y"`
	WidthInTiles  int          `msgpack:"width_in_tiles"`
	HeightInTiles int          `msgpack:"height_in_tiles"`
	PlatformType  PlatformType `msgpack:"platform_type"`
	Active        bool         `msgpack:"active"`
}

// Snapshot copies the platform into its broadcast form
func (p *Platform) Snapshot() PlatformSnapshot {
	return PlatformSnapshot{
		GridX:         p.GridX,
		GridY:         p.GridY,
		WidthInTiles:  p.WidthInTiles,
		HeightInTiles: p.HeightInTiles,
		PlatformType:  p.Type,
		Active:        p.Active,
	}
}
