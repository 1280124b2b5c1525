package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wtask/chatroom/internal/chat/message"
	"github.com/wtask/chatroom/pkg/background"
)

// The duplex coordinator: the inbound reader goroutine feeds received lines
// into the bubbletea program, while the model owns the in-progress input
// buffer. An asynchronous arrival redraws the view with the buffer intact,
// so no keystrokes are ever lost or duplicated.

type inboundMsg string

type disconnectedMsg struct{ err error }

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	systemStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Italic(true)
)

const clientHelp = "local: /quit (/exit, /q) - leave, /help - this help, /clear - wipe screen, /time - local time; server: /users, /time, /quit"

// localDirective - directives the client resolves without transmission.
type localDirective int

const (
	localNone localDirective = iota
	localQuit
	localHelp
	localClear
	localTime
)

func localCommand(line string) localDirective {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "/quit", "/exit", "/q":
		return localQuit
	case "/help":
		return localHelp
	case "/clear", "/cls":
		return localClear
	case "/time":
		return localTime
	default:
		return localNone
	}
}

type model struct {
	sess  *Session
	vp    viewport.Model
	input textinput.Model
	lines []string
	ready bool
}

func newModel(sess *Session) model {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "message"
	input.CharLimit = message.MaxBodyLen
	input.Focus()
	m := model{sess: sess, input: input}
	m.lines = []string{
		noticeStyle.Render(fmt.Sprintf("joined the room as %s, /help for commands", sess.Nickname())),
	}
	return m
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.vp = viewport.New(msg.Width, msg.Height-2)
			m.ready = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = msg.Height - 2
		}
		m.input.Width = msg.Width - 4
		m.refresh()
		return m, nil
	case inboundMsg:
		line := string(msg)
		if strings.Contains(line, message.SystemLabel) {
			line = systemStyle.Render(line)
		}
		// the input buffer stays untouched: the view redraw keeps every
		// in-progress keystroke
		m.push(line)
		return m, nil
	case disconnectedMsg:
		m.push(noticeStyle.Render("disconnected from the server"))
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	if line == "" {
		return m, nil
	}
	switch localCommand(line) {
	case localQuit:
		m.sess.Send("/quit") // best effort
		return m, tea.Quit
	case localHelp:
		m.push(noticeStyle.Render(clientHelp))
	case localClear:
		m.lines = nil
		m.refresh()
	case localTime:
		m.push(noticeStyle.Render("local time: " + time.Now().Format("2006-01-02 15:04:05")))
	case localNone:
		if !message.ValidBody(line) {
			m.push(noticeStyle.Render(fmt.Sprintf("message is too long (max %d characters), not sent", message.MaxBodyLen)))
			// keep the buffer so it can be edited down
			return m, nil
		}
		if err := m.sess.Send(line); err != nil {
			m.push(noticeStyle.Render("send failed: " + err.Error()))
			return m, tea.Quit
		}
	}
	m.input.Reset()
	return m, nil
}

func (m *model) push(line string) {
	m.lines = append(m.lines, line)
	m.refresh()
}

func (m *model) refresh() {
	if !m.ready {
		return
	}
	m.vp.SetContent(strings.Join(m.lines, "\n"))
	m.vp.GotoBottom()
}

func (m model) View() string {
	if !m.ready {
		return "entering the room..."
	}
	title := titleStyle.Render("chatroom - " + m.sess.Nickname())
	return fmt.Sprintf("%s\n%s\n%s", title, m.vp.View(), m.input.View())
}

// Run - drives the interactive session until the user leaves, the peer
// disconnects or input ends. The inbound reader is stopped and joined with
// a bounded wait before the transport is closed for good.
func Run(sess *Session) error {
	program := tea.NewProgram(newModel(sess))

	scope := background.NewScope()
	scope.Go(func(ctx context.Context) {
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			line, err := sess.Receive()
			if err != nil {
				var netErr net.Error
				if errors.As(err, &netErr) && netErr.Timeout() {
					continue
				}
				program.Send(disconnectedMsg{err})
				return
			}
			if line == "" {
				continue
			}
			program.Send(inboundMsg(line))
		}
	})

	_, err := program.Run()
	sess.Quit() // best effort, the server may be gone already
	sess.Close()
	scope.Cancel()
	if !scope.Wait(2 * time.Second) {
		sess.logger.Warn().Msg("inbound reader did not stop in time")
	}
	return err
}
