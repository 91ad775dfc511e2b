package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"bookchat/internal/chat"
)

// ChatPort is the TUI-facing side of one conversation.
type ChatPort interface {
	Handle(ctx context.Context, msg string) chat.Reply
	Reset() string
}

type speaker int

const (
	speakerBot speaker = iota
	speakerUser
)

type entry struct {
	who  speaker
	text string
}

// Model is the Bubble Tea model for the chat client.
type Model struct {
	conv       ChatPort
	input      textinput.Model
	viewport   viewport.Model
	transcript []entry
	status     string
	failed     bool
	ready      bool
}

// New creates a chat model that opens with the greeting.
func New(conv ChatPort) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a reply and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		conv:       conv,
		input:      ti,
		viewport:   vp,
		transcript: []entry{{who: speakerBot, text: chat.Greeting}},
		status:     "step: " + string(chat.StepChoosePreference),
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 2 + ih + 1 // header, status, spacer
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-th)
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD:
			return m, tea.Quit
		case tea.KeyCtrlR:
			m.transcript = []entry{{who: speakerBot, text: m.conv.Reset()}}
			m.status = "step: " + string(chat.StepChoosePreference)
			m.failed = false
			m.input.Reset()
			m.refresh()
			return m, nil
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.send(text)
			m.input.Reset()
			m.refresh()
			return m, nil
		case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) send(text string) {
	m.transcript = append(m.transcript, entry{who: speakerUser, text: text})
	reply := m.conv.Handle(context.Background(), text)
	m.transcript = append(m.transcript, entry{who: speakerBot, text: reply.Text})
	m.status = "step: " + string(reply.To)
	m.failed = reply.Err != nil
	switch {
	case errors.Is(reply.Err, chat.ErrRecommendation):
		m.status += "  (recommendation failed)"
	case errors.Is(reply.Err, chat.ErrEmptyResult):
		m.status += "  (no match)"
	case errors.Is(reply.Err, chat.ErrInvalidInput):
		m.status += "  (invalid input)"
	}
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

// View renders the header, transcript, input box and status line.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Book Recommendations") +
		lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("  ctrl+r restart, ctrl+c quit")
	statusStyle := okStatusStyle
	if m.failed {
		statusStyle = errStatusStyle
	}
	return header + "\n" +
		transcriptBoxStyle.Render(m.viewport.View()) + "\n" +
		inputBoxStyle.Render(m.input.View()) + "\n" +
		statusStyle.Render(m.status)
}

func (m Model) renderTranscript() string {
	parts := make([]string, 0, len(m.transcript))
	for _, e := range m.transcript {
		if e.who == speakerUser {
			parts = append(parts, userStyle.Render("you: "+e.text))
			continue
		}
		parts = append(parts, renderBotText(e.text))
	}
	return strings.Join(parts, "\n\n")
}

// renderBotText highlights the book lines of a reply.
func renderBotText(text string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		if isBookLine(l) {
			lines[i] = highlightStyle.Render(l)
		}
	}
	return strings.Join(lines, "\n")
}

func isBookLine(l string) bool {
	if strings.HasPrefix(l, "- ") {
		return true
	}
	head, _, ok := strings.Cut(l, ": ")
	if !ok || head == "" {
		return false
	}
	for _, r := range head {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

var (
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	userStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	okStatusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errStatusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)
