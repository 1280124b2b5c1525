// Package proto defines the wire-level vocabulary of the chatroom protocol:
// the handshake markers and the newline-framed line IO both peers speak.
package proto

import (
	"bufio"
	"errors"
	"net"
	"strings"
	"time"
)

// MaxLine - longest accepted wire line in bytes, leaving room for the widest
// valid body in multibyte runes plus the envelope prefix.
const MaxLine = 4096

// ErrLineTooLong - the peer sent MaxLine bytes without a line terminator.
var ErrLineTooLong = errors.New("proto: line exceeds the wire limit")

// Handshake markers. Every marker travels as a single line.
const (
	PasswordRequest = "PASSWORD_REQUEST"
	AuthSuccess     = "AUTH_SUCCESS"
	AuthFailed      = "AUTH_FAILED"
	ServerFull      = "SERVER_FULL"
	NicknameRequest = "NICKNAME_REQUEST"
)

// Send - writes a single line to the connection under a write deadline.
// A trailing newline is appended, the payload must not contain one.
func Send(conn net.Conn, line string, timeout time.Duration) error {
	if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}
	_, err := conn.Write([]byte(line + "\n"))
	return err
}

// LineReader - reads newline-framed lines from a connection under per-read
// deadlines. A read that times out in the middle of a line keeps the partial
// bytes, so a later read returns the whole line.
type LineReader struct {
	conn    net.Conn
	buf     *bufio.Reader
	pending strings.Builder
}

// NewLineReader - wraps the connection for deadline-bounded line reads.
func NewLineReader(conn net.Conn) *LineReader {
	return &LineReader{
		conn: conn,
		buf:  bufio.NewReader(conn),
	}
}

// Read - returns the next complete line without its line terminator.
// On error (including timeouts) the returned string is empty; partial input
// read so far stays pending for the next call. A line that grows past MaxLine
// without a terminator fails with ErrLineTooLong: the peer is faulted, pending
// input is discarded.
func (l *LineReader) Read(timeout time.Duration) (string, error) {
	if err := l.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return "", err
	}
	chunk, err := l.buf.ReadString('\n')
	if len(chunk) > 0 {
		l.pending.WriteString(chunk)
	}
	if l.pending.Len() > MaxLine {
		l.pending.Reset()
		return "", ErrLineTooLong
	}
	if err != nil {
		return "", err
	}
	line := l.pending.String()
	l.pending.Reset()
	return strings.TrimRight(line, "\r\n"), nil
}
