package chat

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"golang.org/x/time/rate"

	"github.com/wtask/chatroom/internal/chat/message"
	"github.com/wtask/chatroom/internal/chat/proto"
	"github.com/wtask/chatroom/internal/chat/registry"
)

// sessionState - connection lifecycle phase.
type sessionState int

const (
	stateAuthenticating sessionState = iota
	stateActive
	stateClosing
	stateClosed
)

func (st sessionState) String() string {
	switch st {
	case stateAuthenticating:
		return "authenticating"
	case stateActive:
		return "active"
	case stateClosing:
		return "closing"
	case stateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// departReason - why a connection left the registry.
type departReason int

const (
	departLeft departReason = iota
	departLost
	departKicked
)

func (r departReason) String() string {
	switch r {
	case departKicked:
		return "was kicked from the room"
	case departLost:
		return "lost the connection"
	default:
		return "left the room"
	}
}

// session - server-side lifecycle of one connection.
type session struct {
	srv   *Server
	state sessionState
	conn  *registry.Conn
}

// serve - drives a freshly accepted transport through the whole lifecycle.
func (s *Server) serve(nc net.Conn) {
	peer := nc.RemoteAddr().String()

	// early capacity gate: an over-capacity peer is turned away before any
	// authentication work; the binding check is inside registry.Insert
	if s.clients.Count() >= s.capacity {
		proto.Send(nc, proto.ServerFull, s.writeTimeout)
		nc.Close()
		s.logger.Warn().Str("peer", peer).Msg("connection rejected: room is full")
		return
	}

	sess := &session{srv: s, state: stateAuthenticating}
	c, err := negotiate(nc, s.secret, s.handshakeTimeout, s.writeTimeout)
	if err != nil {
		nc.Close()
		s.logger.Warn().Str("peer", peer).Err(err).Msg("handshake failed")
		return
	}
	sess.conn = c

	if err := sess.activate(); err != nil {
		if errors.Is(err, registry.ErrRoomFull) {
			// the room filled up while this peer was authenticating
			proto.Send(nc, proto.ServerFull, s.writeTimeout)
			s.logger.Warn().Str("peer", peer).Msg("connection rejected: room is full")
		} else {
			s.logger.Error().Str("peer", peer).Err(err).Msg("admission failed")
		}
		nc.Close()
		return
	}
	sess.close(sess.readLoop())
}

// activate - inserts the connection into the registry and greets the room:
// history replay and roster privately to the newcomer, a join notice to
// everyone else.
func (sess *session) activate() error {
	s, c := sess.srv, sess.conn
	if err := s.clients.Insert(c, s.capacity); err != nil {
		return err
	}
	sess.state = stateActive
	s.logger.Info().
		Str("peer", string(c.ID())).
		Str("name", c.Name()).
		Int("online", s.clients.Count()).
		Msg("joined the room")

	// replay before the join notice reaches history
	for _, line := range s.recent.Tail(s.greetTail) {
		if err := c.Send(line, s.writeTimeout); err != nil {
			break
		}
	}
	s.Broadcast(message.SystemLabel, fmt.Sprintf("%s joined the room", c.Name()), c.ID())
	names := s.clients.Names()
	s.reply(c, fmt.Sprintf("welcome, %s! online (%d): %s", c.Name(), len(names), strings.Join(names, ", ")))
	return nil
}

// readLoop - reads and classifies lines until the connection dies.
// Read deadlines only bound how long the loop stays blocked between
// liveness checks; a timed-out read is not a failure.
func (sess *session) readLoop() departReason {
	s, c := sess.srv, sess.conn
	limiter := rate.NewLimiter(s.limiterRate, s.limiterBurst)
	for {
		select {
		case <-s.scope.Context().Done():
			return departLeft
		default:
		}
		if !c.Active() {
			return departLeft
		}

		line, err := c.Reader().Read(s.readTick)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			if errors.Is(err, io.EOF) {
				return departLeft
			}
			return departLost
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		c.Touch()

		if strings.HasPrefix(line, "/") {
			s.apply(c, parseCommand(line, originSession))
			continue
		}
		if !limiter.Allow() {
			s.reply(c, "slow down: too many messages, the last one was dropped")
			continue
		}
		body := message.Sanitize(line)
		// chat traffic is surfaced on the operator console
		s.logger.Info().Str("name", c.Name()).Msg(body)
		s.Broadcast(c.Name(), body, c.ID())
	}
}

// close - tears the session down. Safe against repeated triggers: the
// registry removal, transport close and single departure notice happen
// exactly once per connection, whichever path got here first.
func (sess *session) close(reason departReason) {
	sess.state = stateClosing
	sess.srv.drop(sess.conn, reason)
	sess.state = stateClosed
}

// drop - retires the connection with a departure broadcast.
func (s *Server) drop(c *registry.Conn, reason departReason) {
	c.Retire(func() {
		c.Deactivate()
		s.clients.Remove(c.ID())
		c.Close()
		s.Broadcast(message.SystemLabel, fmt.Sprintf("%s %s", c.Name(), reason), c.ID())
		s.logger.Info().
			Str("peer", string(c.ID())).
			Str("name", c.Name()).
			Str("reason", reason.String()).
			Int("online", s.clients.Count()).
			Msg("parted")
	})
}
