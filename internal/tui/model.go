// Package tui is the terminal chat window: a sidebar with the session list
// on the left and the conversation with its input box on the right.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/set-night/parley/internal/config"
	"github.com/set-night/parley/internal/service"
)

type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
)

const (
	inputLines  = 3
	inputHeight = inputLines + 2 // border
	statusLines = 1
)

type Options struct {
	Markdown     string
	SidebarWidth int
	Now          func() time.Time
}

type Model struct {
	ctx           context.Context
	chat          *service.ChatService
	conversations *service.ConversationService
	renderer      Renderer
	styles        Styles
	now           func() time.Time

	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model

	focus  focusArea
	cursor int
	status string

	width        int
	height       int
	sidebarWidth int
	ready        bool
}

// replyMsg carries a finished turn back to the update loop.
type replyMsg struct {
	reply *service.Reply
}

type replyErrMsg struct {
	conversationID uuid.UUID
	err            error
}

func New(ctx context.Context, chat *service.ChatService, opts Options) Model {
	styles := DefaultStyles()

	ta := textarea.New()
	ta.Placeholder = "Type your message here..."
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.SetHeight(inputLines)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	sidebarWidth := opts.SidebarWidth
	if sidebarWidth <= 0 {
		sidebarWidth = config.SidebarWidth
	}

	m := Model{
		ctx:           ctx,
		chat:          chat,
		conversations: chat.Conversations(),
		renderer:      NewRenderer(opts.Markdown, styles),
		styles:        styles,
		now:           now,
		textarea:      ta,
		viewport:      viewport.New(0, 0),
		spinner:       sp,
		sidebarWidth:  sidebarWidth,
	}
	// The first conversation exists before the window is shown.
	m.conversations.Current(ctx)
	return m
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Run shows the chat window until the user quits or ctx is cancelled.
func Run(ctx context.Context, chat *service.ChatService, opts Options) error {
	p := tea.NewProgram(
		New(ctx, chat, opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}
