// Package terminal serves the dialogue in a local Bubble Tea chat window.
package terminal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/dialogue"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/ui/components"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/ui/layout"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/ui/theme"
)

// Handler answers one incoming message.
type Handler interface {
	Handle(ctx context.Context, in dialogue.Incoming) []dialogue.Reply
}

// Options identify the local user and where photos are written.
type Options struct {
	UserID   int64
	Username string

	// PhotoDir receives images sent by the bot; empty uses the OS temp dir.
	PhotoDir string
}

type repliesMsg struct {
	replies []dialogue.Reply
}

type tickMsg time.Time

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type line struct {
	from string // "you", "bot" or "" for notices
	text string
}

// Model is the root Bubble Tea model of the chat.
type Model struct {
	ctx      context.Context
	handler  Handler
	opts     Options
	lines    []line
	keyboard components.Keyboard
	input    components.TextInput
	onKeys   bool
	busy     bool
	frame    int
	photos   int
	width    int
	height   int
}

func New(ctx context.Context, h Handler, opts Options) Model {
	if opts.PhotoDir == "" {
		opts.PhotoDir = os.TempDir()
	}
	return Model{
		ctx:     ctx,
		handler: h,
		opts:    opts,
		input:   components.NewTextInput("Type a message...", 4000),
		busy:    true,
	}
}

// Init sends /start so the main menu appears.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.input.Init(), m.send("/start"), tickCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case repliesMsg:
		m.busy = false
		m.receive(msg.replies)
		return m, nil

	case tickMsg:
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, tickCmd()

	case components.PressedMsg:
		return m.submit(msg.Label)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "tab":
			return m.toggleFocus()
		case "enter":
			if !m.onKeys {
				return m.submit(m.input.Take())
			}
		}
		if m.onKeys {
			var cmd tea.Cmd
			m.keyboard, cmd = m.keyboard.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) toggleFocus() (tea.Model, tea.Cmd) {
	if m.keyboard.Empty() {
		return m, nil
	}
	m.onKeys = !m.onKeys
	if m.onKeys {
		m.input.Blur()
		return m, nil
	}
	return m, m.input.Focus()
}

// submit sends text unless a reply is still pending.
func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	if text == "" || m.busy {
		return m, nil
	}
	m.lines = append(m.lines, line{from: "you", text: text})
	m.busy = true
	return m, m.send(text)
}

func (m Model) send(text string) tea.Cmd {
	h, ctx, opts := m.handler, m.ctx, m.opts
	return func() tea.Msg {
		return repliesMsg{replies: h.Handle(ctx, dialogue.Incoming{
			UserID:   opts.UserID,
			Username: opts.Username,
			Text:     text,
		})}
	}
}

func (m *Model) receive(replies []dialogue.Reply) {
	for _, r := range replies {
		if len(r.Photo) > 0 {
			m.lines = append(m.lines, line{text: m.savePhoto(r.Photo)})
		}
		if r.Text != "" {
			m.lines = append(m.lines, line{from: "bot", text: r.Text})
		}
		switch {
		case r.RemoveKeyboard:
			m.keyboard = components.NewKeyboard(nil)
		case r.Keyboard != nil:
			m.keyboard = components.NewKeyboard(r.Keyboard)
		}
	}
	if m.keyboard.Empty() && m.onKeys {
		m.onKeys = false
		m.input.Focus()
	}
}

func (m *Model) savePhoto(png []byte) string {
	m.photos++
	path := filepath.Join(m.opts.PhotoDir, fmt.Sprintf("edubot-%d-%d.png", m.opts.UserID, m.photos))
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return "Could not save image: " + err.Error()
	}
	return "Image saved to " + path
}

// Transcript renders the conversation as plain styled text.
func (m Model) Transcript() string {
	var b strings.Builder
	for i, l := range m.lines {
		if i > 0 {
			b.WriteString("\n")
		}
		switch l.from {
		case "you":
			b.WriteString(theme.UserLabel.Render("You: ") + theme.Body.Render(l.text))
		case "bot":
			b.WriteString(theme.BotLabel.Render("Bot: ") + theme.Body.Render(l.text))
		default:
			b.WriteString(theme.Notice.Render(l.text))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	status := ""
	if m.busy {
		status = spinnerFrames[m.frame] + " thinking"
	}
	header := layout.RenderHeader("Chat", status, m.width)
	footer := layout.RenderFooter([]layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "Tab", Description: "Buttons"},
		{Key: "Ctrl+C", Description: "Quit"},
	}, m.width)

	bottom := m.input.View()
	if !m.keyboard.Empty() {
		bottom = m.keyboard.View(m.onKeys) + "\n" + bottom
	}

	room := m.height - lipgloss.Height(header) - lipgloss.Height(footer) - lipgloss.Height(bottom) - 1
	chat := lipgloss.NewStyle().Width(m.width).Render(m.Transcript())
	content := layout.Tail(chat, room) + "\n" + bottom

	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

func tickCmd() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Run starts the chat and blocks until the user quits.
func Run(ctx context.Context, h Handler, opts Options) error {
	p := tea.NewProgram(New(ctx, h, opts), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
