package chat

import (
	"bufio"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/wtask/chatroom/internal/chat/proto"
	"github.com/wtask/chatroom/internal/chat/registry"
)

func startServer(test *testing.T, options ...Option) (*Server, string) {
	test.Helper()
	options = append([]Option{
		WithReadTick(50 * time.Millisecond),
		WithWriteTimeout(time.Second),
	}, options...)
	s, err := New("room1", options...)
	if err != nil {
		test.Fatal("New:", err)
	}
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		test.Fatal("Listen:", err)
	}
	go s.Serve(listener)
	test.Cleanup(func() {
		s.Shutdown(2 * time.Second)
	})
	return s, listener.Addr().String()
}

// peer - a scripted chat participant on the client side of the wire.
type peer struct {
	test *testing.T
	conn net.Conn
	r    *bufio.Reader
}

func dialPeer(test *testing.T, addr string) *peer {
	test.Helper()
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		test.Fatal("Dial:", err)
	}
	test.Cleanup(func() { conn.Close() })
	return &peer{test: test, conn: conn, r: bufio.NewReader(conn)}
}

func (p *peer) send(line string) {
	p.test.Helper()
	p.conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
	if _, err := p.conn.Write([]byte(line + "\n")); err != nil {
		p.test.Fatal("peer send:", err)
	}
}

func (p *peer) readLine() (string, error) {
	p.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := p.r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\n"), nil
}

// expect - reads lines until one contains substr, returns all lines read.
func (p *peer) expect(substr string) []string {
	p.test.Helper()
	var lines []string
	for i := 0; i < 20; i++ {
		line, err := p.readLine()
		if err != nil {
			p.test.Fatalf("expect %q: %v (seen %v)", substr, err, lines)
		}
		lines = append(lines, line)
		if strings.Contains(line, substr) {
			return lines
		}
	}
	p.test.Fatalf("expect %q: not found in %v", substr, lines)
	return nil
}

// join - performs the client half of the handshake.
func (p *peer) join(secret, nickname string) {
	p.test.Helper()
	p.expect("PASSWORD_REQUEST")
	p.send(secret)
	p.expect("AUTH_SUCCESS")
	p.expect("NICKNAME_REQUEST")
	p.send(nickname)
	p.expect("welcome, " + nickname)
}

func waitOnline(test *testing.T, s *Server, expected int) {
	test.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.Online() == expected {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	test.Fatalf("Online() = %d, expected %d", s.Online(), expected)
}

func TestJoinAndBroadcast(test *testing.T) {
	s, addr := startServer(test)

	alice := dialPeer(test, addr)
	alice.join("room1", "Alice")
	waitOnline(test, s, 1)

	bob := dialPeer(test, addr)
	bob.join("room1", "Bob")
	alice.expect("Bob joined the room")
	waitOnline(test, s, 2)

	alice.send("hi")
	got := bob.expect("Alice: hi")
	if !strings.Contains(got[len(got)-1], "] Alice: hi") {
		test.Error("Envelope format broken:", got[len(got)-1])
	}

	// the sender is excluded from its own broadcast: nothing may arrive at
	// alice between her message and the /time reply
	alice.send("/time")
	for _, line := range alice.expect("server time:") {
		if strings.Contains(line, "Alice: hi") {
			test.Error("Sender received its own message back:", line)
		}
	}
}

func TestUsersCommand(test *testing.T) {
	s, addr := startServer(test)

	alice := dialPeer(test, addr)
	alice.join("room1", "Alice")
	bob := dialPeer(test, addr)
	bob.join("room1", "Bob")
	waitOnline(test, s, 2)

	alice.expect("Bob joined the room")
	alice.send("/users")
	lines := alice.expect("online (2)")
	if !strings.Contains(lines[len(lines)-1], "Alice, Bob") {
		test.Error("Unexpected roster:", lines[len(lines)-1])
	}
}

func TestUnknownCommandReply(test *testing.T) {
	_, addr := startServer(test)

	alice := dialPeer(test, addr)
	alice.join("room1", "Alice")
	alice.send("/dance")
	alice.expect("unknown command: /dance")
	// session survives malformed input
	alice.send("/time")
	alice.expect("server time:")
}

func TestAuthFailure(test *testing.T) {
	s, addr := startServer(test)

	mallory := dialPeer(test, addr)
	mallory.expect("PASSWORD_REQUEST")
	mallory.send("wrong")
	mallory.expect("AUTH_FAILED")
	if _, err := mallory.readLine(); err == nil {
		test.Error("Connection must be closed after a failed handshake")
	}
	waitOnline(test, s, 0)
}

func TestServerFull(test *testing.T) {
	s, addr := startServer(test, WithCapacity(1))

	alice := dialPeer(test, addr)
	alice.join("room1", "Alice")
	waitOnline(test, s, 1)

	second := dialPeer(test, addr)
	line, err := second.readLine()
	if err != nil {
		test.Fatal("readLine:", err)
	}
	if line != "SERVER_FULL" {
		test.Error("Expected SERVER_FULL before any password prompt, got:", line)
	}
	if _, err := second.readLine(); err == nil {
		test.Error("Connection must be closed after SERVER_FULL")
	}
	waitOnline(test, s, 1)
}

func TestServerFullDuringHandshake(test *testing.T) {
	s, addr := startServer(test, WithCapacity(1))

	// both peers pass the early gate while the room is still empty
	alice := dialPeer(test, addr)
	alice.expect("PASSWORD_REQUEST")
	bob := dialPeer(test, addr)
	bob.expect("PASSWORD_REQUEST")

	alice.send("room1")
	alice.expect("AUTH_SUCCESS")
	alice.expect("NICKNAME_REQUEST")
	alice.send("Alice")
	alice.expect("welcome, Alice")
	waitOnline(test, s, 1)

	// the slower peer authenticates fine but loses the last slot at insertion
	bob.send("room1")
	bob.expect("AUTH_SUCCESS")
	bob.expect("NICKNAME_REQUEST")
	bob.send("Bob")
	bob.expect("SERVER_FULL")
	if _, err := bob.readLine(); err == nil {
		test.Error("Connection must be closed after SERVER_FULL")
	}
	waitOnline(test, s, 1)
}

func TestQuitTeardown(test *testing.T) {
	s, addr := startServer(test)

	alice := dialPeer(test, addr)
	alice.join("room1", "Alice")
	bob := dialPeer(test, addr)
	bob.join("room1", "Bob")
	waitOnline(test, s, 2)

	alice.send("/quit")
	alice.expect("bye!")
	bob.expect("Alice left the room")
	waitOnline(test, s, 1)
}

func TestKick(test *testing.T) {
	s, addr := startServer(test)

	alice := dialPeer(test, addr)
	alice.join("room1", "Alice")
	bob := dialPeer(test, addr)
	bob.join("room1", "Bob")
	waitOnline(test, s, 2)
	alice.expect("Bob joined the room")

	if s.Kick("Carol") {
		test.Error("Kick of an absent name reported success")
	}
	waitOnline(test, s, 2)

	if !s.Kick("Bob") {
		test.Fatal("Kick of a present name failed")
	}
	bob.expect("kicked by the operator")
	alice.expect("Bob was kicked from the room")
	waitOnline(test, s, 1)
}

func TestPeerDisconnectTeardown(test *testing.T) {
	s, addr := startServer(test)

	alice := dialPeer(test, addr)
	alice.join("room1", "Alice")
	bob := dialPeer(test, addr)
	bob.join("room1", "Bob")
	waitOnline(test, s, 2)

	alice.conn.Close()
	bob.expect("Alice left the room")
	waitOnline(test, s, 1)
}

func TestBroadcastIsolatesFailedRecipient(test *testing.T) {
	s, err := New("room1", WithWriteTimeout(time.Second))
	if err != nil {
		test.Fatal("New:", err)
	}

	liveNC, livePeer := tcpPair(test)
	live := registry.NewConn(liveNC, proto.NewLineReader(liveNC), "Alice")

	// a pipe with the far end closed fails every write immediately
	deadNC, deadPeer := net.Pipe()
	deadPeer.Close()
	test.Cleanup(func() { deadNC.Close() })
	dead := registry.NewConn(deadNC, proto.NewLineReader(deadNC), "Bob")

	if err := s.clients.Insert(live, 0); err != nil {
		test.Fatal("Insert live:", err)
	}
	if err := s.clients.Insert(dead, 0); err != nil {
		test.Fatal("Insert dead:", err)
	}

	s.Broadcast("Carol", "hello", "")

	livePeer.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := bufio.NewReader(livePeer).ReadString('\n')
	if err != nil {
		test.Fatal("Live recipient never received the broadcast:", err)
	}
	if !strings.Contains(line, "Carol: hello") {
		test.Error("Unexpected line at the live recipient:", line)
	}

	if dead.Active() {
		test.Error("Failed recipient was not deactivated")
	}
	if s.Online() != 1 {
		test.Error("Failed recipient was not pruned, Online:", s.Online())
	}
}

func TestHistoryReplay(test *testing.T) {
	_, addr := startServer(test)

	alice := dialPeer(test, addr)
	alice.join("room1", "Alice")
	alice.send("hello history")
	// the line must land in history before the newcomer joins
	alice.send("/time")
	alice.expect("server time:")

	bob := dialPeer(test, addr)
	bob.expect("PASSWORD_REQUEST")
	bob.send("room1")
	bob.expect("AUTH_SUCCESS")
	bob.expect("NICKNAME_REQUEST")
	bob.send("Bob")
	bob.expect("Alice: hello history")
}

func TestNewValidation(test *testing.T) {
	if _, err := New(""); err != ErrInvalidSecret {
		test.Error("New with empty secret: expected ErrInvalidSecret, got", err)
	}
	if _, err := New("room1", WithCapacity(0)); err == nil {
		test.Error("WithCapacity(0): expected error")
	}
	if _, err := New("room1", WithGreetTail(-1)); err == nil {
		test.Error("WithGreetTail(-1): expected error")
	}
	if _, err := New("room1", WithReadTick(0)); err == nil {
		test.Error("WithReadTick(0): expected error")
	}
}
