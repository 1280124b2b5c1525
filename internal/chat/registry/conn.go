package registry

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wtask/chatroom/internal/chat/proto"
)

// ID - connection identity, the remote "addr:port" tuple.
type ID string

// Conn - server-side state of one authenticated connection.
// The owning session loop mutates it; the registry and the broadcast fan-out
// only reference it. Writes to the socket are serialized by an internal send
// lock so a directed reply never interleaves with a broadcast line.
type Conn struct {
	id          ID
	nc          net.Conn
	reader      *proto.LineReader
	name        string
	connectedAt time.Time
	lastSeen    atomic.Int64
	active      atomic.Bool

	sendMu sync.Mutex
	retire sync.Once
}

// NewConn - wraps an authenticated network connection under its display name.
func NewConn(nc net.Conn, reader *proto.LineReader, name string) *Conn {
	c := &Conn{
		id:          ID(nc.RemoteAddr().String()),
		nc:          nc,
		reader:      reader,
		name:        name,
		connectedAt: time.Now(),
	}
	c.active.Store(true)
	c.Touch()
	return c
}

// ID - returns the connection identity.
func (c *Conn) ID() ID {
	return c.id
}

// Name - returns the negotiated display name.
func (c *Conn) Name() string {
	return c.name
}

// ConnectedAt - returns the admission time.
func (c *Conn) ConnectedAt() time.Time {
	return c.connectedAt
}

// Touch - updates the last-activity timestamp.
func (c *Conn) Touch() {
	c.lastSeen.Store(time.Now().UnixNano())
}

// LastSeen - returns the last-activity timestamp.
func (c *Conn) LastSeen() time.Time {
	return time.Unix(0, c.lastSeen.Load())
}

// Active - reports whether the connection is still considered live.
func (c *Conn) Active() bool {
	return c.active.Load()
}

// Deactivate - marks the connection dead. Safe to call from any goroutine,
// the owning session loop notices on its next liveness check.
func (c *Conn) Deactivate() {
	c.active.Store(false)
}

// Reader - returns the line reader bound to this connection.
// Only the owning session loop may use it.
func (c *Conn) Reader() *proto.LineReader {
	return c.reader
}

// Send - writes one line to the peer under the send lock and a write
// deadline. A failed write deactivates the connection.
func (c *Conn) Send(line string, timeout time.Duration) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if err := proto.Send(c.nc, line, timeout); err != nil {
		c.Deactivate()
		return err
	}
	c.Touch()
	return nil
}

// Close - closes the underlying transport.
func (c *Conn) Close() error {
	return c.nc.Close()
}

// Retire - runs f at most once over the connection lifetime, whatever code
// path observes inactivity first. Teardown must go through here.
func (c *Conn) Retire(f func()) {
	c.retire.Do(f)
}
