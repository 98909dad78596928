package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/set-night/parley/internal/domain"
)

const (
	sidebarHeader  = "AI Assistant"
	newChatLabel   = "+ New Chat"
	recentChats    = "Recent Chats"
	userLabel      = "You"
	assistantLabel = "🤖 AI Assistant"
)

// FormatTimestamp shows the time of day for conversations created today and
// the date otherwise.
func FormatTimestamp(t, now time.Time) string {
	t = t.In(now.Location())
	y1, m1, d1 := t.Date()
	y2, m2, d2 := now.Date()
	if y1 == y2 && m1 == m2 && d1 == d2 {
		return t.Format("03:04 PM")
	}
	return t.Format("Jan 02")
}

// sidebarItems lists the conversations shown below the new-chat button,
// newest first. Cursor index 0 is the button, i+1 is items[i].
func (m Model) sidebarItems() []*domain.Conversation {
	return m.conversations.List()
}

func (m Model) renderSidebar(height int) string {
	s := m.styles
	inner := m.sidebarWidth - 3
	if inner < 1 {
		inner = 1
	}

	var b strings.Builder
	b.WriteString(s.SidebarHeader.Render(sidebarHeader))
	b.WriteString("\n")

	btn := s.NewChat
	if m.focus == focusSidebar && m.cursor == 0 {
		btn = s.NewChatSelected
	}
	b.WriteString(btn.Width(inner).Render(newChatLabel))
	b.WriteString("\n")
	b.WriteString(s.SectionLabel.Render(recentChats))
	b.WriteString("\n")

	current := m.conversations.CurrentID()
	now := m.now()
	for i, c := range m.sidebarItems() {
		style := s.Item
		switch {
		case m.focus == focusSidebar && m.cursor == i+1:
			style = s.ItemCursor
		case c.ID == current:
			style = s.ItemCurrent
		}
		title := truncate(c.Title, inner-1)
		if m.conversations.IsActive(c.ID) {
			title = truncate(c.Title, inner-3) + " …"
		}
		b.WriteString(style.Width(inner).Render(title))
		b.WriteString("\n")
		b.WriteString(s.ItemTime.Render(FormatTimestamp(c.CreatedAt, now)))
		b.WriteString("\n")
	}

	return s.Sidebar.
		Width(m.sidebarWidth - 1).
		Height(height).
		MaxHeight(height).
		Render(strings.TrimRight(b.String(), "\n"))
}

func truncate(s string, width int) string {
	if width < 1 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
