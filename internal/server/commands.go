package server

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/maximumcalamity58/game-because-i-was-bored/internal/game"
	"github.com/maximumcalamity58/game-because-i-was-bored/internal/network"
)

// commandFunc handles one operator command with its already-split
// arguments
type commandFunc func(args []string)

// CommandProcessor interprets operator-issued console commands. Every
// mutating command goes through the world store's locked methods and
// finishes with a full state broadcast.
type CommandProcessor struct {
	world    *game.World
	server   *Server
	out      io.Writer
	commands map[string]commandFunc
}

// NewCommandProcessor builds the command registry. Command output lines
// are written to out (in addition to the server log) when out is non-nil.
func NewCommandProcessor(world *game.World, server *Server, out io.Writer) *CommandProcessor {
	p := &CommandProcessor{
		world:  world,
		server: server,
		out:    out,
	}
	p.commands = map[string]commandFunc{
		"teleport":       p.teleport,
		"setpos":         p.teleport,
		"add":            p.add,
		"kick":           p.kick,
		"ban":            p.ban,
		"unban":          p.unban,
		"broadcast":      p.broadcastChat,
		"set_speed":      p.setSpeed,
		"freeze":         p.freeze,
		"unfreeze":       p.unfreeze,
		"list":           p.list,
		"make_platform":  p.makePlatform,
		"smite":          p.smite,
		"launch":         p.launch,
		"give_hat":       p.giveHat,
		"change_gravity": p.changeGravity,
		"help":           p.help,
	}
	return p
}

// Process tokenizes and dispatches one operator command line. Bad input
// produces a usage message, never a crash.
func (p *CommandProcessor) Process(line string) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return
	}

	cmd := strings.ToLower(tokens[0])
	handler, ok := p.commands[cmd]
	if !ok {
		p.reply("Unknown command: %s. Type 'help' for a list of commands.", cmd)
		return
	}
	handler(tokens[1:])
}

// Commands returns the registered command names
func (p *CommandProcessor) Commands() []string {
	names := make([]string, 0, len(p.commands))
	for name := range p.commands {
		names = append(names, name)
	}
	return names
}

// reply reports a command result to the operator
func (p *CommandProcessor) reply(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	if p.out != nil {
		fmt.Fprintln(p.out, message)
	}
	p.server.logger.Info("%s", message)
}

// resolve maps an operator-supplied identifier to a player UUID and
// username, identity first and then first username match
func (p *CommandProcessor) resolve(identifier string) (string, string, bool) {
	uuid, ok := p.world.FindPlayer(identifier)
	if !ok {
		p.reply("No player found with identifier '%s'.", identifier)
		return "", "", false
	}
	info, _ := p.world.PlayerInfo(uuid)
	return uuid, info.Username, true
}

func (p *CommandProcessor) teleport(args []string) {
	if len(args) != 3 {
		p.reply("Usage: teleport [username/uuid] [x] [y]")
		return
	}
	x, errX := strconv.ParseFloat(args[1], 64)
	y, errY := strconv.ParseFloat(args[2], 64)
	if errX != nil || errY != nil {
		p.reply("Error: x and y must be numbers.")
		return
	}
	uuid, username, ok := p.resolve(args[0])
	if !ok {
		return
	}
	p.world.Teleport(uuid, x, y)
	p.reply("Teleported %s to (%g, %g).", username, x, y)
	p.server.BroadcastState(nil)
}

func (p *CommandProcessor) add(args []string) {
	if len(args) != 3 {
		p.reply("Usage: add [username/uuid] [dx] [dy]")
		return
	}
	dx, errX := strconv.ParseFloat(args[1], 64)
	dy, errY := strconv.ParseFloat(args[2], 64)
	if errX != nil || errY != nil {
		p.reply("Invalid arguments. dx and dy must be numbers.")
		return
	}
	uuid, username, ok := p.resolve(args[0])
	if !ok {
		return
	}
	x, y, _ := p.world.Nudge(uuid, dx, dy)
	p.reply("Moved player %s by (%g, %g). New position: (%g, %g).", username, dx, dy, x, y)
	p.server.BroadcastState(nil)
}

func (p *CommandProcessor) kick(args []string) {
	if len(args) != 1 {
		p.reply("Usage: kick [username/uuid]")
		return
	}
	uuid, username, ok := p.resolve(args[0])
	if !ok {
		return
	}
	p.server.Kick(uuid, network.MsgKick, "You have been kicked from the server.")
	p.world.MarkDisconnected(uuid)
	p.reply("Kicked player %s.", username)
	p.server.BroadcastState(nil)
}

func (p *CommandProcessor) ban(args []string) {
	if len(args) != 1 {
		p.reply("Usage: ban [username/uuid]")
		return
	}
	uuid, username, ok := p.resolve(args[0])
	if !ok {
		return
	}
	p.world.Ban(uuid)
	p.server.Kick(uuid, network.MsgBan, "You have been banned from the server.")
	p.world.MarkDisconnected(uuid)
	p.reply("Banned player %s.", username)
	p.server.BroadcastState(nil)
}

func (p *CommandProcessor) unban(args []string) {
	if len(args) != 1 {
		p.reply("Usage: unban [username/uuid]")
		return
	}
	// The identifier may name a known player or be a raw identity that
	// never connected this run
	uuid := args[0]
	if resolved, ok := p.world.FindPlayer(args[0]); ok {
		uuid = resolved
	}
	if p.world.Unban(uuid) {
		p.reply("Unbanned player with UUID %s.", uuid)
	} else {
		p.reply("No banned player found with identifier '%s'.", args[0])
	}
}

func (p *CommandProcessor) broadcastChat(args []string) {
	if len(args) == 0 {
		p.reply("Usage: broadcast [message]")
		return
	}
	message := strings.Join(args, " ")
	p.world.PushChat("Server", message)
	p.reply("Broadcasted message: %s", message)
	p.server.BroadcastState(nil)
}

func (p *CommandProcessor) setSpeed(args []string) {
	if len(args) != 2 {
		p.reply("Usage: set_speed [username/uuid] [speed]")
		return
	}
	speed, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		p.reply("Error: speed must be a number.")
		return
	}
	uuid, username, ok := p.resolve(args[0])
	if !ok {
		return
	}
	p.world.SetSpeed(uuid, speed)
	p.reply("Set speed of %s to %g.", username, speed)
	p.server.BroadcastState(nil)
}

func (p *CommandProcessor) freeze(args []string) {
	if len(args) != 1 {
		p.reply("Usage: freeze [username/uuid]")
		return
	}
	uuid, username, ok := p.resolve(args[0])
	if !ok {
		return
	}
	p.world.SetFrozen(uuid, true)
	p.reply("Froze player %s.", username)
	p.server.BroadcastState(nil)
}

func (p *CommandProcessor) unfreeze(args []string) {
	if len(args) != 1 {
		p.reply("Usage: unfreeze [username/uuid]")
		return
	}
	uuid, username, ok := p.resolve(args[0])
	if !ok {
		return
	}
	p.world.SetFrozen(uuid, false)
	p.reply("Unfroze player %s.", username)
	p.server.BroadcastState(nil)
}

func (p *CommandProcessor) list(args []string) {
	players := p.world.ListPlayers()
	if len(players) == 0 {
		p.reply("No players are currently connected.")
		return
	}
	var b strings.Builder
	b.WriteString("Players:")
	for _, player := range players {
		status := "Connected"
		if !player.Connected {
			status = "Disconnected"
		}
		fmt.Fprintf(&b, "\nUUID: %s, Username: %s, Position: (%g, %g), Status: %s",
			player.UUID, player.Username, player.Position[0], player.Position[1], status)
	}
	p.reply("%s", b.String())
}

func (p *CommandProcessor) makePlatform(args []string) {
	if len(args) < 4 || len(args) > 5 {
		p.reply("Usage: make_platform [x] [y] [width_in_tiles] [height_in_tiles] [platform_type]")
		return
	}
	x, errX := strconv.ParseFloat(args[0], 64)
	y, errY := strconv.ParseFloat(args[1], 64)
	width, errW := strconv.Atoi(args[2])
	height, errH := strconv.Atoi(args[3])
	if errX != nil || errY != nil || errW != nil || errH != nil {
		p.reply("Error: x and y must be numbers. width_in_tiles and height_in_tiles must be integers.")
		return
	}
	platformType := game.PlatformNormal
	if len(args) == 5 {
		parsed, err := game.ParsePlatformType(args[4])
		if err != nil {
			p.reply("Error: %v", err)
			return
		}
		platformType = parsed
	}
	p.world.AddPlatform(game.NewPlatform(x, y, width, height, platformType))
	p.reply("Created new platform of type '%s' at (%g, %g) with size (%dx%d).", platformType, x, y, width, height)
	p.server.BroadcastState(nil)
}

func (p *CommandProcessor) smite(args []string) {
	if len(args) != 1 {
		p.reply("Usage: smite [username/uuid]")
		return
	}
	uuid, username, ok := p.resolve(args[0])
	if !ok {
		return
	}
	p.world.Smite(uuid)
	p.reply("Smote player %s.", username)
	p.server.BroadcastState(nil)
}

func (p *CommandProcessor) launch(args []string) {
	if len(args) != 1 {
		p.reply("Usage: launch [username/uuid]")
		return
	}
	uuid, username, ok := p.resolve(args[0])
	if !ok {
		return
	}
	p.world.Launch(uuid)
	p.reply("Launched player %s into the air.", username)
	p.server.BroadcastState(nil)
}

func (p *CommandProcessor) giveHat(args []string) {
	if len(args) != 2 {
		p.reply("Usage: give_hat [username/uuid] [hat_name]")
		return
	}
	uuid, username, ok := p.resolve(args[0])
	if !ok {
		return
	}
	p.world.GiveHat(uuid, args[1])
	p.reply("Gave hat '%s' to player %s.", args[1], username)
	p.server.BroadcastState(nil)
}

func (p *CommandProcessor) changeGravity(args []string) {
	if len(args) != 2 {
		p.reply("Usage: change_gravity [username/uuid] [direction]")
		return
	}
	direction, err := game.ParseGravity(strings.ToLower(args[1]))
	if err != nil {
		p.reply("Error: direction must be one of 'up', 'down', 'left', 'right'.")
		return
	}
	uuid, username, ok := p.resolve(args[0])
	if !ok {
		return
	}
	p.world.SetGravity(uuid, direction)
	p.reply("Changed gravity for %s to %s.", username, direction)
	p.server.BroadcastState(nil)
}

func (p *CommandProcessor) help(args []string) {
	p.reply(`Available commands:
teleport [username/uuid] [x] [y] - Teleport a player to specified coordinates.
add [username/uuid] [dx] [dy] - Add to a player's current position.
kick [username/uuid] - Kick a player from the server.
ban [username/uuid] - Ban a player from the server.
unban [username/uuid] - Unban a player.
broadcast [message] - Send a message to all players.
set_speed [username/uuid] [speed] - Set the movement speed of a player.
freeze [username/uuid] - Freeze a player.
unfreeze [username/uuid] - Unfreeze a player.
list - List all connected players.
make_platform [x] [y] [width_in_tiles] [height_in_tiles] [platform_type] - Create a new platform of specified type.
smite [username/uuid] - Strike a player with lightning.
launch [username/uuid] - Launch a player into the air.
give_hat [username/uuid] [hat_name] - Give a hat to a player.
change_gravity [username/uuid] [direction] - Change the gravity direction for a player.
help - Show this help message.`)
}
