package chat

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Option - optional server setting.
type Option func(s *Server) error

func setup(s *Server, options ...Option) error {
	for _, option := range options {
		if option == nil {
			continue
		}
		if err := option(s); err != nil {
			return err
		}
	}
	return nil
}

// WithLogger - attaches a logger; the default server is silent.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) error {
		s.logger = logger
		return nil
	}
}

// WithCapacity - overwrites the participant limit.
func WithCapacity(n int) Option {
	return func(s *Server) error {
		if n <= 0 {
			return fmt.Errorf("chat.WithCapacity: invalid capacity (%d)", n)
		}
		s.capacity = n
		return nil
	}
}

// WithHandshakeTimeout - overwrites the per-step handshake read timeout.
func WithHandshakeTimeout(timeout time.Duration) Option {
	return func(s *Server) error {
		if timeout <= 0 {
			return fmt.Errorf("chat.WithHandshakeTimeout: invalid timeout (%v)", timeout)
		}
		s.handshakeTimeout = timeout
		return nil
	}
}

// WithWriteTimeout - overwrites the per-recipient write deadline.
func WithWriteTimeout(timeout time.Duration) Option {
	return func(s *Server) error {
		if timeout <= 0 {
			return fmt.Errorf("chat.WithWriteTimeout: invalid timeout (%v)", timeout)
		}
		s.writeTimeout = timeout
		return nil
	}
}

// WithReadTick - overwrites the session read timeout. The tick only bounds
// how long a session may stay blocked before re-checking liveness and
// cancellation, it never ends a connection.
func WithReadTick(tick time.Duration) Option {
	return func(s *Server) error {
		if tick <= 0 {
			return fmt.Errorf("chat.WithReadTick: invalid tick value (%v)", tick)
		}
		s.readTick = tick
		return nil
	}
}

// WithGreetTail - overwrites the number of recent room lines replayed to a
// newcomer. Zero disables the replay.
func WithGreetTail(n int) Option {
	return func(s *Server) error {
		if n < 0 {
			return fmt.Errorf("chat.WithGreetTail: invalid value (%d)", n)
		}
		s.greetTail = n
		return nil
	}
}

// WithFloodLimit - overwrites the per-session message rate limit.
func WithFloodLimit(limit rate.Limit, burst int) Option {
	return func(s *Server) error {
		if limit <= 0 || burst <= 0 {
			return fmt.Errorf("chat.WithFloodLimit: invalid limit (%v, %d)", limit, burst)
		}
		s.limiterRate = limit
		s.limiterBurst = burst
		return nil
	}
}
