// Package chat implements the room server: handshake, registry, broadcast
// fan-out, command dispatch and the per-connection session loops.
package chat

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/wtask/chatroom/internal/chat/history"
	"github.com/wtask/chatroom/internal/chat/message"
	"github.com/wtask/chatroom/internal/chat/registry"
	"github.com/wtask/chatroom/pkg/background"
)

// DefaultCapacity - maximum number of simultaneous participants unless
// overridden with WithCapacity.
const DefaultCapacity = 5

// Server - chat room server over any net.Listener implementation.
type Server struct {
	secret   string
	capacity int

	handshakeTimeout time.Duration
	readTick         time.Duration
	writeTimeout     time.Duration
	greetTail        int

	limiterRate  rate.Limit
	limiterBurst int

	logger  zerolog.Logger
	clients *registry.Registry
	recent  *history.Ring
	scope   *background.Scope

	addr     string
	started  time.Time
	quit     chan struct{}
	quitOnce sync.Once
}

// New - builds a room server guarding access with the given secret.
func New(secret string, options ...Option) (*Server, error) {
	if !message.ValidSecret(secret) {
		return nil, ErrInvalidSecret
	}
	recent, err := history.NewRing(100)
	if err != nil {
		return nil, err
	}
	s := &Server{
		secret:           secret,
		capacity:         DefaultCapacity,
		handshakeTimeout: 30 * time.Second,
		readTick:         time.Second,
		writeTimeout:     5 * time.Second,
		greetTail:        10,
		limiterRate:      rate.Every(500 * time.Millisecond),
		limiterBurst:     5,
		logger:           zerolog.Nop(),
		clients:          registry.New(),
		recent:           recent,
		scope:            background.NewScope(),
		quit:             make(chan struct{}),
	}
	if err := setup(s, options...); err != nil {
		return nil, err
	}
	return s, nil
}

// Serve - accepts connections from the listener until Shutdown.
// Each accepted connection is served by its own session goroutine.
func (s *Server) Serve(listener net.Listener) {
	if listener == nil || s.scope.Context().Err() != nil {
		return
	}
	s.addr = listener.Addr().String()
	s.started = time.Now()

	// close the listener to break Accept when the scope is cancelled
	s.scope.Go(func(ctx context.Context) {
		<-ctx.Done()
		listener.Close()
	})

	for {
		nc, err := listener.Accept()
		if err != nil {
			select {
			case <-s.scope.Context().Done():
				return
			default:
			}
			s.logger.Warn().Err(err).Msg("accept failed")
			continue
		}
		s.scope.Go(func(context.Context) {
			s.serve(nc)
		})
	}
}

// Online - returns the number of registered participants.
func (s *Server) Online() int {
	return s.clients.Count()
}

// Done - closed once the operator has requested shutdown
// (console /quit or end of console input).
func (s *Server) Done() <-chan struct{} {
	return s.quit
}

func (s *Server) requestQuit() {
	s.quitOnce.Do(func() { close(s.quit) })
}

// Shutdown - notifies the room, closes every connection and stops all
// session goroutines within the timeout. Returns the time it took.
func (s *Server) Shutdown(timeout time.Duration) time.Duration {
	if s.scope.Context().Err() != nil {
		return 0
	}
	from := time.Now()
	s.Broadcast(message.SystemLabel, "server is shutting down, bye", "")
	for _, c := range s.clients.Snapshot() {
		c := c
		// retire silently: recipients of a departure notice are going away too
		c.Retire(func() {
			c.Deactivate()
			s.clients.Remove(c.ID())
			c.Close()
		})
	}
	s.scope.Cancel()
	s.scope.Wait(timeout)
	return time.Since(from)
}
