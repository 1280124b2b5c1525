package chat

import (
	"bufio"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/wtask/chatroom/internal/chat/registry"
)

func tcpPair(test *testing.T) (server, client net.Conn) {
	test.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		test.Fatal("Listen:", err)
	}
	defer listener.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		nc, _ := listener.Accept()
		accepted <- nc
	}()
	client, err = net.Dial("tcp", listener.Addr().String())
	if err != nil {
		test.Fatal("Dial:", err)
	}
	server = <-accepted
	if server == nil {
		test.Fatal("Accept failed")
	}
	test.Cleanup(func() {
		server.Close()
		client.Close()
	})
	return server, client
}

// driveClient - answers the handshake from the peer side.
func driveClient(test *testing.T, client net.Conn, secret, nickname string) <-chan []string {
	test.Helper()
	seen := make(chan []string, 1)
	go func() {
		var lines []string
		r := bufio.NewReader(client)
		readLine := func() string {
			client.SetReadDeadline(time.Now().Add(2 * time.Second))
			line, err := r.ReadString('\n')
			if err != nil {
				return ""
			}
			line = strings.TrimRight(line, "\n")
			lines = append(lines, line)
			return line
		}
		if readLine() == "PASSWORD_REQUEST" {
			client.Write([]byte(secret + "\n"))
		}
		if readLine() == "AUTH_SUCCESS" {
			if readLine() == "NICKNAME_REQUEST" {
				client.Write([]byte(nickname + "\n"))
			}
		}
		seen <- lines
	}()
	return seen
}

func runNegotiate(server net.Conn, secret string) (*registry.Conn, error) {
	return negotiate(server, secret, 2*time.Second, 2*time.Second)
}

func TestNegotiateSuccess(test *testing.T) {
	server, client := tcpPair(test)
	seen := driveClient(test, client, "room1", "Alice")

	c, err := runNegotiate(server, "room1")
	if err != nil {
		test.Fatal("negotiate:", err)
	}
	if c.Name() != "Alice" {
		test.Error("Unexpected nickname:", c.Name())
	}
	lines := <-seen
	want := []string{"PASSWORD_REQUEST", "AUTH_SUCCESS", "NICKNAME_REQUEST"}
	for i, marker := range want {
		if i >= len(lines) || lines[i] != marker {
			test.Fatalf("Marker sequence: expected %v, actual %v", want, lines)
		}
	}
}

func TestNegotiateWrongSecret(test *testing.T) {
	server, client := tcpPair(test)
	seen := driveClient(test, client, "wrong", "Alice")

	if _, err := runNegotiate(server, "room1"); !errors.Is(err, ErrAuthFailed) {
		test.Fatal("Expected ErrAuthFailed, got", err)
	}
	lines := <-seen
	if len(lines) < 2 || lines[1] != "AUTH_FAILED" {
		test.Error("Peer did not receive AUTH_FAILED, lines:", lines)
	}
}

func TestNegotiateInvalidNickname(test *testing.T) {
	cases := []string{"", "bad name!", strings.Repeat("a", 21)}
	for _, nickname := range cases {
		server, client := tcpPair(test)
		driveClient(test, client, "room1", nickname)

		c, err := runNegotiate(server, "room1")
		if err != nil {
			test.Fatalf("negotiate with nickname %q: %v", nickname, err)
		}
		if !strings.HasPrefix(c.Name(), "User_") {
			test.Errorf("Nickname %q: expected generated placeholder, got %q", nickname, c.Name())
		}
	}
}

func TestNegotiateTimeout(test *testing.T) {
	server, client := tcpPair(test)
	// peer stays silent after the password request
	go func() {
		bufio.NewReader(client).ReadString('\n')
	}()

	_, err := negotiate(server, "room1", 50*time.Millisecond, time.Second)
	if err == nil {
		test.Fatal("Expected timeout error, got nil")
	}
	var netErr net.Error
	if !errors.As(err, &netErr) || !netErr.Timeout() {
		test.Error("Expected a net timeout, got", err)
	}
}
