// Package client implements the room participant: dialing, the client half
// of the admission handshake and the interactive duplex session.
package client

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/wtask/chatroom/internal/chat/message"
	"github.com/wtask/chatroom/internal/chat/proto"
)

// Config - connection settings for a room participant.
type Config struct {
	Host     string
	Port     int
	Secret   string
	Nickname string

	ConnectTimeout time.Duration
	Attempts       int
	RetryPause     time.Duration
	ReadTick       time.Duration
	WriteTimeout   time.Duration

	Logger zerolog.Logger
}

func (cfg Config) withDefaults() Config {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	if cfg.RetryPause <= 0 {
		cfg.RetryPause = 2 * time.Second
	}
	if cfg.ReadTick <= 0 {
		cfg.ReadTick = time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	return cfg
}

// Session - an admitted connection to the room.
type Session struct {
	conn         net.Conn
	reader       *proto.LineReader
	nickname     string
	readTick     time.Duration
	writeTimeout time.Duration
	logger       zerolog.Logger
}

// Dial - connects to the server with bounded retries and completes the
// admission handshake. Any handshake failure is final, the caller may dial
// again.
func Dial(cfg Config) (*Session, error) {
	cfg = cfg.withDefaults()
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	var (
		conn net.Conn
		err  error
	)
	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		conn, err = net.DialTimeout("tcp", addr, cfg.ConnectTimeout)
		if err == nil {
			break
		}
		cfg.Logger.Warn().Err(err).Int("attempt", attempt).Int("of", cfg.Attempts).Msg("connect failed")
		if attempt < cfg.Attempts {
			time.Sleep(cfg.RetryPause)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}

	s := &Session{
		conn:         conn,
		reader:       proto.NewLineReader(conn),
		nickname:     cfg.Nickname,
		readTick:     cfg.ReadTick,
		writeTimeout: cfg.WriteTimeout,
		logger:       cfg.Logger,
	}
	if err := s.handshake(cfg.Secret, cfg.Nickname); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *Session) handshake(secret, nickname string) error {
	const step = 30 * time.Second

	line, err := s.reader.Read(step)
	if err != nil {
		return fmt.Errorf("handshake: %w", err)
	}
	switch line {
	case proto.PasswordRequest:
	case proto.ServerFull:
		return ErrServerFull
	default:
		return fmt.Errorf("%w: %q", ErrProtocol, line)
	}
	if err := proto.Send(s.conn, secret, s.writeTimeout); err != nil {
		return fmt.Errorf("submit credential: %w", err)
	}

	line, err = s.reader.Read(step)
	if err != nil {
		return fmt.Errorf("handshake: %w", err)
	}
	switch line {
	case proto.AuthSuccess:
	case proto.AuthFailed:
		return ErrAuthFailed
	case proto.ServerFull:
		return ErrServerFull
	default:
		return fmt.Errorf("%w: %q", ErrProtocol, line)
	}

	line, err = s.reader.Read(step)
	if err != nil {
		return fmt.Errorf("handshake: %w", err)
	}
	if line != proto.NicknameRequest {
		return fmt.Errorf("%w: %q", ErrProtocol, line)
	}
	if err := proto.Send(s.conn, nickname, s.writeTimeout); err != nil {
		return fmt.Errorf("submit nickname: %w", err)
	}
	return nil
}

// Nickname - the display name requested at dial time.
func (s *Session) Nickname() string {
	return s.nickname
}

// Send - ships one outbound line. Oversized bodies are rejected locally and
// never reach the wire.
func (s *Session) Send(line string) error {
	if !message.ValidBody(line) {
		return ErrTooLong
	}
	return proto.Send(s.conn, line, s.writeTimeout)
}

// Receive - returns the next inbound line. A timed-out read keeps the
// session usable, the caller just retries.
func (s *Session) Receive() (string, error) {
	return s.reader.Read(s.readTick)
}

// Quit - best-effort farewell before teardown.
func (s *Session) Quit() {
	proto.Send(s.conn, "/quit", s.writeTimeout)
}

// Close - closes the transport, unblocking any pending Receive.
func (s *Session) Close() error {
	return s.conn.Close()
}
