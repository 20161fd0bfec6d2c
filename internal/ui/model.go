// Package ui is the Bubble Tea host for the chat controller. The Model is
// the transcript container and the input field the controller drives.
package ui

import (
	"context"
	"strings"

	"LegalChat/internal/chatbot"
	"LegalChat/internal/transcript"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	maxInputHeight = 6
	chromeHeight   = 3 // title bar, help line, input border slack
)

// Controller is the part of the session controller the UI drives
type Controller interface {
	Begin(ctx context.Context, raw string) (*chatbot.Exchange, error)
	Dispatch(ex *chatbot.Exchange) (string, error)
	Complete(ex *chatbot.Exchange, reply string, err error)
	Clear()
}

// replyMsg carries a transport result back onto the update loop
type replyMsg struct {
	ex    *chatbot.Exchange
	reply string
	err   error
}

// Model is the Bubble Tea model for the chat screen
type Model struct {
	ctx  context.Context
	ctrl Controller

	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model

	units         []transcript.Unit
	scrollPending bool

	width  int
	height int
	ready  bool
}

// NewModel creates the chat screen. SetController must be called before
// the program starts.
func NewModel(ctx context.Context) *Model {
	ta := textarea.New()
	ta.Placeholder = "Ask a question about the act..."
	ta.Prompt = "┃ "
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(1)
	ta.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")
	ta.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = thinkingStyle

	return &Model{
		ctx:      ctx,
		viewport: viewport.New(80, 20),
		input:    ta,
		spinner:  s,
		width:    80,
		height:   24,
	}
}

// SetController attaches the session controller
func (m *Model) SetController(c Controller) {
	m.ctrl = c
}

// Append implements transcript.Container
func (m *Model) Append(u transcript.Unit) {
	m.units = append(m.units, u)
}

// Remove implements transcript.Container
func (m *Model) Remove(id string) bool {
	for i, u := range m.units {
		if u.ID == id {
			m.units = append(m.units[:i], m.units[i+1:]...)
			return true
		}
	}
	return false
}

// Clear implements transcript.Container
func (m *Model) Clear() {
	m.units = nil
}

// ScrollToBottom implements transcript.Container
func (m *Model) ScrollToBottom() {
	m.scrollPending = true
}

// Reset implements chatbot.Input
func (m *Model) Reset() {
	m.input.Reset()
	m.input.SetHeight(1)
	m.layout()
}

// Units returns the units currently on screen
func (m *Model) Units() []transcript.Unit {
	out := make([]transcript.Unit, len(m.units))
	copy(out, m.units)
	return out
}

// Init starts the cursor blink and the spinner
func (m *Model) Init() tea.Cmd {
	m.refresh()
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "ctrl+l":
			m.ctrl.Clear()
			m.refresh()
			return m, nil

		case "enter":
			ex, err := m.ctrl.Begin(m.ctx, m.input.Value())
			m.refresh()
			if err != nil {
				return m, nil
			}
			return m, m.dispatch(ex)

		case "pgup", "ctrl+u":
			m.viewport.HalfViewUp()
			return m, nil

		case "pgdown", "ctrl+d":
			m.viewport.HalfViewDown()
			return m, nil
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.autoGrow()
		return m, cmd

	case replyMsg:
		m.ctrl.Complete(msg.ex, msg.reply, msg.err)
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.hasLoading() {
			m.refresh()
		}
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *Model) dispatch(ex *chatbot.Exchange) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		reply, err := ctrl.Dispatch(ex)
		return replyMsg{ex: ex, reply: reply, err: err}
	}
}

// autoGrow sizes the input to its content, soft-wrapped rows included,
// capped at maxInputHeight lines
func (m *Model) autoGrow() {
	h := min(max(wrappedLines(m.input.Value(), m.input.Width()), 1), maxInputHeight)
	if h != m.input.Height() {
		m.input.SetHeight(h)
		m.layout()
	}
}

func wrappedLines(value string, width int) int {
	if width <= 0 {
		return strings.Count(value, "\n") + 1
	}
	return lipgloss.Height(lipgloss.NewStyle().Width(width).Render(value))
}

func (m *Model) layout() {
	m.input.SetWidth(max(m.width-2, 10))
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-m.input.Height()-chromeHeight, 1)
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	if m.scrollPending {
		m.viewport.GotoBottom()
		m.scrollPending = false
	}
}

func (m *Model) hasLoading() bool {
	for _, u := range m.units {
		if u.Loading {
			return true
		}
	}
	return false
}
