// Package message formats chat envelopes and validates user-supplied input.
package message

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxBodyLen - longest accepted message body, in runes.
	MaxBodyLen = 500
	// MaxNicknameLen - longest accepted display name, in runes.
	MaxNicknameLen = 20
	// MaxSecretLen - longest accepted room secret, in runes.
	MaxSecretLen = 50
)

// Reserved sender labels. Nickname validation rejects '*', so no participant
// can impersonate either of them.
const (
	SystemLabel   = "**SERVER**"
	OperatorLabel = "**ADMIN**"
)

// Format - renders the envelope as a display line: "[HH:MM:SS] sender: body".
func Format(t time.Time, sender, body string) string {
	return fmt.Sprintf("[%s] %s: %s", t.Format("15:04:05"), sender, body)
}

// System - renders a server-originated envelope.
func System(t time.Time, body string) string {
	return Format(t, SystemLabel, body)
}

// ValidNickname - reports whether name is non-empty, at most MaxNicknameLen
// runes and built only from letters, digits or underscores in any script.
func ValidNickname(name string) bool {
	if name == "" || utf8.RuneCountInString(name) > MaxNicknameLen {
		return false
	}
	for _, r := range name {
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ValidSecret - reports whether the room secret has an acceptable length.
func ValidSecret(secret string) bool {
	n := utf8.RuneCountInString(secret)
	return n >= 1 && n <= MaxSecretLen
}

// ValidPort - reports whether port is usable for a non-privileged listener.
func ValidPort(port int) bool {
	return port >= 1024 && port <= 65535
}

// ValidBody - reports whether the body fits on the wire.
func ValidBody(body string) bool {
	return utf8.RuneCountInString(body) <= MaxBodyLen
}

// Sanitize - strips control runes, collapses any whitespace runs to a single
// space and clamps the result to MaxBodyLen runes.
func Sanitize(body string) string {
	b := strings.Builder{}
	space := false
	for _, r := range body {
		switch {
		case unicode.IsSpace(r):
			space = true
		case unicode.IsControl(r) || r == utf8.RuneError:
			// drop
		default:
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		}
	}
	return clamp(b.String(), MaxBodyLen)
}

func clamp(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
