package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/set-night/parley/internal/domain"
)

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	input := m.styles.Input
	if m.focus == focusInput && !m.busy() {
		input = m.styles.InputActive
	}
	chat := lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		m.renderStatus(),
		input.Width(m.chatWidth()-2).Render(m.textarea.View()),
	)

	return m.styles.App.Render(lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderSidebar(m.height),
		m.styles.Chat.Width(m.chatWidth()).Height(m.height).Render(chat),
	))
}

func (m Model) renderStatus() string {
	if m.busy() {
		return m.styles.Status.Render(m.spinner.View() + " Thinking...")
	}
	if m.status != "" {
		return m.styles.Status.Render(m.status)
	}
	conv, err := m.conversations.Get(m.conversations.CurrentID())
	if err != nil {
		return ""
	}
	return m.styles.Status.Render(usageLine(conv))
}

func usageLine(c *domain.Conversation) string {
	parts := []string{c.Model}
	if n := c.Usage.TotalTokens(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d tokens", n))
	}
	if !c.Usage.Cost.IsZero() {
		parts = append(parts, "$"+c.Usage.Cost.StringFixed(6))
	}
	return strings.Join(parts, " · ")
}

// renderConversation draws the visible messages of the current conversation
// as bubbles, user messages on the right.
func (m Model) renderConversation() string {
	conv, err := m.conversations.Get(m.conversations.CurrentID())
	if err != nil {
		return ""
	}

	width := m.chatWidth()
	bubbleWidth := width * 3 / 4
	if bubbleWidth < 10 {
		bubbleWidth = width
	}

	blocks := []string{""}
	for _, msg := range conv.Visible() {
		if msg.Role == domain.RoleUser {
			blocks = append(blocks, m.userBubble(msg.Content, width, bubbleWidth))
		} else {
			blocks = append(blocks, m.assistantBubble(msg, width, bubbleWidth))
		}
	}
	if m.conversations.IsActive(conv.ID) {
		blocks = append(blocks, m.styles.AILabel.Render(assistantLabel)+"\n"+
			m.styles.AIBubble.Render(m.spinner.View()+" Thinking..."))
	}
	return strings.Join(blocks, "\n\n")
}

func (m Model) userBubble(text string, width, maxWidth int) string {
	w := lipgloss.Width(text) + 4
	if w > maxWidth {
		w = maxWidth
	}
	bubble := m.styles.UserBubble.Width(w).Render(text)
	label := m.styles.UserLabel.Render(userLabel)
	return lipgloss.PlaceHorizontal(width, lipgloss.Right,
		lipgloss.JoinVertical(lipgloss.Right, label, bubble))
}

func (m Model) assistantBubble(msg domain.Message, width, maxWidth int) string {
	inner := maxWidth - 4
	if inner < 1 {
		inner = 1
	}
	var body string
	if msg.Local {
		body = m.styles.NoticeText.Width(inner).Render(msg.Content)
	} else {
		body = m.renderer.Render(msg.Content, inner)
	}
	bubble := m.styles.AIBubble.Render(body)
	label := m.styles.AILabel.Render(assistantLabel)
	return lipgloss.PlaceHorizontal(width, lipgloss.Left,
		lipgloss.JoinVertical(lipgloss.Left, label, bubble))
}
