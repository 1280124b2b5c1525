package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/wtask/chatroom/internal/chat/registry"
)

// commandKind - closed set of recognized directives.
type commandKind int

const (
	cmdUnknown commandKind = iota
	cmdQuit
	cmdHelp
	cmdUsers
	cmdTime
	// operator-console directives, never parsed from a session line
	cmdStatus
	cmdKick
)

// origin - who issued the directive.
type origin int

const (
	originSession origin = iota
	originConsole
)

type command struct {
	kind commandKind
	arg  string
	raw  string
}

const sessionHelp = "commands: /help - this help, /users - who is online, /time - server time, /quit - leave the room"

// parseCommand - maps a /-prefixed line to a directive. Administrative
// directives parse only when issued from the operator console; from a
// session they resolve to cmdUnknown like any other garbage.
func parseCommand(line string, from origin) command {
	raw := strings.TrimSpace(line)
	fields := strings.Fields(raw)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return command{kind: cmdUnknown, raw: raw}
	}
	arg := strings.TrimSpace(strings.TrimPrefix(raw, fields[0]))
	switch strings.ToLower(fields[0]) {
	case "/quit":
		return command{kind: cmdQuit, raw: raw}
	case "/help":
		return command{kind: cmdHelp, raw: raw}
	case "/users":
		return command{kind: cmdUsers, raw: raw}
	case "/time":
		return command{kind: cmdTime, raw: raw}
	case "/status":
		if from == originConsole {
			return command{kind: cmdStatus, raw: raw}
		}
	case "/kick":
		if from == originConsole {
			return command{kind: cmdKick, arg: arg, raw: raw}
		}
	}
	return command{kind: cmdUnknown, raw: raw}
}

// apply - resolves an in-band directive on behalf of the issuing session.
// Malformed input always ends in a reply, never in a dropped connection.
func (s *Server) apply(c *registry.Conn, cmd command) {
	switch cmd.kind {
	case cmdQuit:
		s.reply(c, "bye!")
		// the session loop notices on its next liveness check
		c.Deactivate()
	case cmdHelp:
		s.reply(c, sessionHelp)
	case cmdUsers:
		names := s.clients.Names()
		s.reply(c, fmt.Sprintf("online (%d): %s", len(names), strings.Join(names, ", ")))
	case cmdTime:
		s.reply(c, "server time: "+time.Now().Format("2006-01-02 15:04:05"))
	default:
		s.reply(c, fmt.Sprintf("unknown command: %s, type /help for the list", cmd.raw))
	}
}

// Kick - disconnects the first active participant with exactly this display
// name: the target is notified, deactivated and its departure is broadcast
// to everyone else. Returns false when no one matches.
func (s *Server) Kick(name string) bool {
	c, ok := s.clients.FindByName(name)
	if !ok {
		return false
	}
	s.reply(c, "you have been kicked by the operator")
	s.drop(c, departKicked)
	return true
}
