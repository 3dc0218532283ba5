// Package tui is the interactive terminal front end. It renders the
// conversation owned by the session manager, the history panel, and the
// task panel, and translates keystrokes into manager calls.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/SyedSaudAli-gh/todochat/internal/history"
	"github.com/SyedSaudAli-gh/todochat/internal/notify"
	"github.com/SyedSaudAli-gh/todochat/internal/session"
	"github.com/SyedSaudAli-gh/todochat/internal/todo"
)

type (
	initDoneMsg           struct{}
	sendDoneMsg           struct{ err error }
	historyLoadedMsg      struct{ err error }
	conversationLoadedMsg struct{ err error }
	conversationResetMsg  struct{ err error }

	deleteDoneMsg struct {
		id  string
		err error
	}
	todosLoadedMsg struct {
		todos []todo.Todo
		err   error
	}
	todosChangedMsg struct{}
	hintExpiryMsg   struct{}
)

type model struct {
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	session *session.Manager
	history *history.Manager
	todos   *todo.Client

	historyPanel *HistoryPanel
	todoPanel    *TodoPanel

	width  int
	height int
	ready  bool
}

// Run starts the interactive chat UI and blocks until the user quits.
// The notifier carries task-changed signals from the session manager
// into the task panel.
func Run(sess *session.Manager, hist *history.Manager, todos *todo.Client, notifier *notify.Notifier) error {
	m := newModel(sess, hist, todos)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if notifier != nil {
		cancel := notifier.Subscribe(func() {
			p.Send(todosChangedMsg{})
		})
		defer cancel()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	sess.Close()
	return nil
}

func newModel(sess *session.Manager, hist *history.Manager, todos *todo.Client) model {
	ta := textarea.New()
	ta.Placeholder = "Ask about your tasks..."
	ta.Focus()
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.SetWidth(defaultWidth)
	ta.SetHeight(minTextareaHeight)
	ta.ShowLineNumbers = false
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle()
	ta.FocusedStyle.Prompt = lipgloss.NewStyle()
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(CurrentTheme.Muted)
	ta.KeyMap.InsertNewline.SetEnabled(false)

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		FPS:    80 * time.Millisecond,
	}
	sp.Style = thinkingStyle

	return model{
		textarea:     ta,
		spinner:      sp,
		session:      sess,
		history:      hist,
		todos:        todos,
		historyPanel: NewHistoryPanel(),
		todoPanel:    NewTodoPanel(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick, m.initSession(), m.loadTodos())
}

func (m model) initSession() tea.Cmd {
	return func() tea.Msg {
		m.session.Init(context.Background())
		return initDoneMsg{}
	}
}

func (m model) sendMessage(text string) tea.Cmd {
	return func() tea.Msg {
		return sendDoneMsg{err: m.session.Send(context.Background(), text)}
	}
}

func (m model) loadHistory() tea.Cmd {
	return func() tea.Msg {
		return historyLoadedMsg{err: m.history.Refresh(context.Background())}
	}
}

func (m model) loadConversation(id string) tea.Cmd {
	return func() tea.Msg {
		return conversationLoadedMsg{err: m.session.LoadConversation(context.Background(), id)}
	}
}

func (m model) deleteConversation(id string) tea.Cmd {
	return func() tea.Msg {
		return deleteDoneMsg{id: id, err: m.history.Delete(context.Background(), id)}
	}
}

func (m model) newConversation() tea.Cmd {
	return func() tea.Msg {
		return conversationResetMsg{err: m.session.CreateNewConversation(context.Background())}
	}
}

func (m model) loadTodos() tea.Cmd {
	return func() tea.Msg {
		resp, err := m.todos.List(context.Background())
		if err != nil {
			return todosLoadedMsg{err: err}
		}
		return todosLoadedMsg{todos: resp.Todos}
	}
}

// hintExpiry re-renders once the tool status hint has cleared itself.
func hintExpiry(ttl time.Duration) tea.Cmd {
	return tea.Tick(ttl+50*time.Millisecond, func(time.Time) tea.Msg {
		return hintExpiryMsg{}
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case initDoneMsg, hintExpiryMsg, conversationResetMsg:
		m.syncViewport()
		return m, nil

	case sendDoneMsg:
		m.syncViewport()
		if msg.err == nil && m.session.Snapshot().ToolStatus != "" {
			return m, hintExpiry(session.DefaultHintTTL)
		}
		return m, nil

	case historyLoadedMsg:
		m.historyPanel.Update(m.history.Snapshot())
		return m, nil

	case conversationLoadedMsg:
		if msg.err == nil {
			m.historyPanel.Close()
		}
		m.syncViewport()
		return m, nil

	case deleteDoneMsg:
		m.historyPanel.Update(m.history.Snapshot())
		// Deleting the conversation currently on screen detaches the
		// session from it.
		if msg.err == nil && msg.id == m.session.Snapshot().ConversationID {
			m.session.Reset()
			m.syncViewport()
		}
		return m, nil

	case todosLoadedMsg:
		if msg.err == nil {
			m.todoPanel.Update(msg.todos)
		}
		return m, nil

	case todosChangedMsg:
		// The assistant changed tasks server-side; re-fetch so the
		// panel reflects them.
		return m, m.loadTodos()

	case tea.KeyMsg:
		return m.handleKeypress(msg)

	case tea.WindowSizeMsg:
		return m.handleWindowResize(msg)

	case spinner.TickMsg:
		if m.session.Snapshot().Sending {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			m.syncViewport()
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)

	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m model) handleKeypress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.historyPanel.IsOpen() {
		return m.handleHistoryKeypress(msg)
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.session.ClearError()
		m.syncViewport()
		return m, nil

	case "ctrl+h":
		m.session.ToggleHistory()
		if m.session.Snapshot().HistoryOpen {
			m.historyPanel.Open()
			return m, m.loadHistory()
		}
		m.historyPanel.Close()
		return m, nil

	case "ctrl+n":
		return m, m.newConversation()

	case "ctrl+t":
		m.todoPanel.Toggle()
		return m, m.loadTodos()

	case "enter":
		text := strings.TrimSpace(m.textarea.Value())
		if text == "" {
			return m, nil
		}
		if m.session.Snapshot().Sending {
			return m, nil
		}
		m.textarea.Reset()
		return m, tea.Batch(m.sendMessage(text), m.spinner.Tick)
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m model) handleHistoryKeypress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc", "ctrl+h":
		m.session.ToggleHistory()
		m.historyPanel.Close()
		return m, nil

	case "up", "k":
		m.historyPanel.MoveUp()
		return m, nil

	case "down", "j":
		m.historyPanel.MoveDown()
		if m.historyPanel.NearEnd() && m.history.HasMore() {
			return m, func() tea.Msg {
				return historyLoadedMsg{err: m.history.LoadMore(context.Background())}
			}
		}
		return m, nil

	case "enter":
		if id := m.historyPanel.SelectedID(); id != "" {
			return m, m.loadConversation(id)
		}
		return m, nil

	case "d":
		if id := m.historyPanel.SelectedID(); id != "" {
			return m, m.deleteConversation(id)
		}
		return m, nil
	}
	return m, nil
}

func (m model) handleWindowResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	chatHeight := m.height - 5
	if chatHeight < 1 {
		chatHeight = 1
	}

	if !m.ready {
		m.viewport = viewport.New(m.width, chatHeight)
		m.ready = true
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = chatHeight
	}
	m.textarea.SetWidth(m.width - 4)
	m.historyPanel.SetSize(m.width, m.height)
	m.todoPanel.SetWidth(m.width / 2)
	m.syncViewport()
	return m, nil
}

// syncViewport re-renders the transcript and keeps the view pinned to
// the newest message.
func (m *model) syncViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderMessages())
	m.viewport.GotoBottom()
}

func (m model) View() string {
	if !m.ready {
		return "\n  Loading..."
	}

	if m.historyPanel.IsOpen() {
		return m.historyPanel.Render()
	}

	chat := m.viewport.View()
	separator := separatorStyle.Render(strings.Repeat("─", m.width))

	var sections []string
	sections = append(sections, chat)

	if m.todoPanel.IsVisible() {
		sections = append(sections, m.todoPanel.Render())
	}

	sections = append(sections, separator)

	s := m.session.Snapshot()
	if s.Err != "" {
		sections = append(sections, errorBannerStyle.Render("  "+s.Err+"  (esc to dismiss)"))
	}
	if s.Sending {
		status := s.ToolStatus
		if status == "" {
			status = "Thinking..."
		}
		sections = append(sections, m.spinner.View()+" "+toolHintStyle.Render(status))
	} else if s.ToolStatus != "" {
		sections = append(sections, "  "+toolHintStyle.Render(s.ToolStatus))
	}

	prompt := inputPromptStyle.Render("❯ ")
	sections = append(sections, prompt+m.textarea.View())
	sections = append(sections, separator)
	sections = append(sections, m.renderStatusLine())

	return strings.Join(sections, "\n")
}

func (m model) renderStatusLine() string {
	var parts []string

	s := m.session.Snapshot()
	if s.ConversationID != "" {
		parts = append(parts, panelHintStyle.Render("  conversation "+shortID(s.ConversationID)))
	}
	if compact := m.todoPanel.RenderCompact(); compact != "" {
		parts = append(parts, compact)
	}
	parts = append(parts, panelHintStyle.Render("ctrl+h history · ctrl+n new · ctrl+t tasks · ctrl+c exit"))

	return strings.Join(parts, "  ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
