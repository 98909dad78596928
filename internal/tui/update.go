package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/set-night/parley/internal/domain"
	"github.com/set-night/parley/internal/service"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case replyMsg:
		m.status = ""
		return m, m.afterTurn(msg.reply.ConversationID)

	case replyErrMsg:
		zap.L().Debug("turn failed", zap.Stringer("conversation_id", msg.conversationID), zap.Error(msg.err))
		if msg.conversationID == m.conversations.CurrentID() {
			m.status = "Request failed"
		}
		return m, m.afterTurn(msg.conversationID)

	case spinner.TickMsg:
		if m.conversations.ActiveCount() == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.busy() {
			m.refresh(false)
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+n":
		return m, m.newChat()
	case "tab":
		return m, m.toggleFocus()
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.focus == focusSidebar {
		return m, m.handleSidebarKey(msg)
	}

	if msg.String() == "enter" {
		return m, m.send()
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m *Model) handleSidebarKey(msg tea.KeyMsg) tea.Cmd {
	items := m.sidebarItems()
	switch msg.String() {
	case "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down":
		if m.cursor < len(items) {
			m.cursor++
		}
	case "enter":
		if m.cursor == 0 {
			return m.newChat()
		}
		if m.cursor-1 < len(items) {
			return m.switchTo(items[m.cursor-1])
		}
	}
	return nil
}

// send submits the input as a user turn of the current conversation and
// starts the request in the background.
func (m *Model) send() tea.Cmd {
	if m.busy() {
		return nil
	}
	id := m.conversations.CurrentID()
	turn, err := m.chat.Submit(m.ctx, id, m.textarea.Value())
	if errors.Is(err, domain.ErrEmptyMessage) {
		return nil
	}
	if err != nil {
		m.status = err.Error()
		return nil
	}

	m.status = ""
	m.textarea.Reset()
	m.textarea.Blur()
	m.refresh(true)
	return tea.Batch(m.complete(turn), m.spinner.Tick)
}

// complete runs the request off the update loop. The result names the
// conversation the turn was sent from.
func (m Model) complete(turn *service.Turn) tea.Cmd {
	ctx, chat := m.ctx, m.chat
	return func() tea.Msg {
		reply, err := chat.Complete(ctx, turn)
		if err != nil {
			return replyErrMsg{conversationID: turn.ConversationID, err: err}
		}
		return replyMsg{reply: reply}
	}
}

// afterTurn redraws once a request has finished. Only the conversation on
// screen is redrawn; replies for others show up when switched to.
func (m *Model) afterTurn(id uuid.UUID) tea.Cmd {
	if id != m.conversations.CurrentID() {
		return nil
	}
	m.refresh(true)
	if m.focus == focusInput {
		return m.textarea.Focus()
	}
	return nil
}

func (m *Model) newChat() tea.Cmd {
	c := m.conversations.CreateNew(m.ctx)
	zap.L().Debug("new conversation", zap.Stringer("conversation_id", c.ID))
	m.status = ""
	m.focus = focusInput
	m.cursor = 0
	m.textarea.Reset()
	m.refresh(true)
	return m.textarea.Focus()
}

func (m *Model) switchTo(c *domain.Conversation) tea.Cmd {
	if _, err := m.conversations.SwitchTo(c.ID); err != nil {
		m.status = err.Error()
		return nil
	}
	m.status = ""
	m.focus = focusInput
	m.refresh(true)
	if m.busy() {
		m.textarea.Blur()
		return m.spinner.Tick
	}
	return m.textarea.Focus()
}

func (m *Model) toggleFocus() tea.Cmd {
	if m.focus == focusInput {
		m.focus = focusSidebar
		m.textarea.Blur()
		m.cursor = 0
		current := m.conversations.CurrentID()
		for i, c := range m.sidebarItems() {
			if c.ID == current {
				m.cursor = i + 1
				break
			}
		}
		return nil
	}
	m.focus = focusInput
	if m.busy() {
		return nil
	}
	return m.textarea.Focus()
}

// busy reports whether the conversation on screen is waiting for a reply.
func (m Model) busy() bool {
	return m.conversations.IsActive(m.conversations.CurrentID())
}

func (m *Model) resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	m.width, m.height = width, height

	chatWidth := m.chatWidth()
	vpHeight := height - inputHeight - statusLines
	if vpHeight < 1 {
		vpHeight = 1
	}
	m.viewport.Width = chatWidth
	m.viewport.Height = vpHeight
	if w := chatWidth - 4; w > 0 {
		m.textarea.SetWidth(w)
	}
	m.ready = true
	m.refresh(true)
}

func (m Model) chatWidth() int {
	w := m.width - m.sidebarWidth
	if w < 1 {
		w = 1
	}
	return w
}

func (m *Model) refresh(bottom bool) {
	m.viewport.SetContent(m.renderConversation())
	if bottom {
		m.viewport.GotoBottom()
	}
}
