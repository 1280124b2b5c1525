package chat

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/wtask/chatroom/internal/chat/message"
)

const consoleHelp = "console commands: /help, /status, /users, /time, /kick <name>, /quit - stop the server; plain text is broadcast to the room"

// RunConsole - drives the operator console. The console is just another
// command producer feeding the same interpreter and broadcast engine as the
// sessions, with the administrative directives unlocked. Returns on /quit,
// end of input or server shutdown.
func (s *Server) RunConsole(in io.Reader) {
	fmt.Println("operator console ready, /help for commands")
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if s.scope.Context().Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "/") {
			body := message.Sanitize(line)
			fmt.Println(message.Format(time.Now(), message.OperatorLabel, body))
			s.Broadcast(message.OperatorLabel, body, "")
			continue
		}
		cmd := parseCommand(line, originConsole)
		switch cmd.kind {
		case cmdQuit:
			s.requestQuit()
			return
		case cmdHelp:
			fmt.Println(consoleHelp)
		case cmdStatus:
			fmt.Printf("listening on %s, online %d/%d, uptime %s\n",
				s.addr, s.clients.Count(), s.capacity, time.Since(s.started).Round(time.Second))
		case cmdUsers:
			names := s.clients.Names()
			fmt.Printf("online (%d): %s\n", len(names), strings.Join(names, ", "))
		case cmdTime:
			fmt.Println("server time:", time.Now().Format("2006-01-02 15:04:05"))
		case cmdKick:
			if cmd.arg == "" {
				fmt.Println("usage: /kick <name>")
				continue
			}
			if !s.Kick(cmd.arg) {
				fmt.Println("no such user:", cmd.arg)
			}
		default:
			fmt.Println("unknown console command:", cmd.raw)
		}
	}
	// console EOF also means the operator is gone
	s.requestQuit()
}
