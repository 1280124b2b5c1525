package chat

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/wtask/chatroom/internal/chat/message"
	"github.com/wtask/chatroom/internal/chat/proto"
	"github.com/wtask/chatroom/internal/chat/registry"
)

// negotiate - runs the admission protocol on a freshly accepted transport:
// credential request and check, then nickname negotiation. On success the
// returned connection is ready for registry insertion. Nothing is retried,
// a failed peer must reconnect.
func negotiate(nc net.Conn, secret string, readTimeout, writeTimeout time.Duration) (*registry.Conn, error) {
	reader := proto.NewLineReader(nc)

	if err := proto.Send(nc, proto.PasswordRequest, writeTimeout); err != nil {
		return nil, fmt.Errorf("request credential: %w", err)
	}
	credential, err := reader.Read(readTimeout)
	if err != nil {
		// timeout or transport failure, either way an authentication failure
		return nil, fmt.Errorf("read credential: %w", err)
	}
	if strings.TrimSpace(credential) != secret {
		proto.Send(nc, proto.AuthFailed, writeTimeout) // best effort
		return nil, ErrAuthFailed
	}
	if err := proto.Send(nc, proto.AuthSuccess, writeTimeout); err != nil {
		return nil, fmt.Errorf("confirm credential: %w", err)
	}

	if err := proto.Send(nc, proto.NicknameRequest, writeTimeout); err != nil {
		return nil, fmt.Errorf("request nickname: %w", err)
	}
	nickname, err := reader.Read(readTimeout)
	if err != nil {
		return nil, fmt.Errorf("read nickname: %w", err)
	}
	nickname = strings.TrimSpace(nickname)
	if !message.ValidNickname(nickname) {
		nickname = placeholderName(nc)
	}

	return registry.NewConn(nc, reader, nickname), nil
}

// placeholderName - generated display name for a peer whose nickname
// negotiation produced nothing usable.
func placeholderName(nc net.Conn) string {
	if addr, ok := nc.RemoteAddr().(*net.TCPAddr); ok {
		return fmt.Sprintf("User_%d", addr.Port)
	}
	return "User_0"
}
