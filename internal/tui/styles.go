package tui

import "github.com/charmbracelet/lipgloss"

// Palette of the chat window.
var (
	ColorBgDark     = lipgloss.Color("#0D0D0D")
	ColorSidebar    = lipgloss.Color("#171717")
	ColorChat       = lipgloss.Color("#212121")
	ColorInput      = lipgloss.Color("#2A2A2A")
	ColorUserBubble = lipgloss.Color("#2F2F2F")
	ColorAIBubble   = lipgloss.Color("#1A1A1A")
	ColorAccent     = lipgloss.Color("#10A37F")
	ColorText       = lipgloss.Color("#ECECEC")
	ColorTextDim    = lipgloss.Color("#8E8E8E")
	ColorBorder     = lipgloss.Color("#3A3A3A")
)

type Styles struct {
	App lipgloss.Style

	Sidebar         lipgloss.Style
	SidebarHeader   lipgloss.Style
	NewChat         lipgloss.Style
	NewChatSelected lipgloss.Style
	SectionLabel    lipgloss.Style
	Item            lipgloss.Style
	ItemCurrent     lipgloss.Style
	ItemCursor      lipgloss.Style
	ItemTime        lipgloss.Style

	Chat        lipgloss.Style
	UserBubble  lipgloss.Style
	AIBubble    lipgloss.Style
	UserLabel   lipgloss.Style
	AILabel     lipgloss.Style
	NoticeText  lipgloss.Style
	Input       lipgloss.Style
	InputActive lipgloss.Style
	Status      lipgloss.Style
	Spinner     lipgloss.Style

	// Formatted reply text
	Text    lipgloss.Style
	Bold    lipgloss.Style
	Code    lipgloss.Style
	Heading lipgloss.Style
	Number  lipgloss.Style
	Bullet  lipgloss.Style
	Quote   lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		App: lipgloss.NewStyle().Background(ColorBgDark),

		Sidebar: lipgloss.NewStyle().
			Background(ColorSidebar).
			Foreground(ColorText).
			Padding(1, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(ColorBorder),
		SidebarHeader: lipgloss.NewStyle().
			Foreground(ColorText).
			Bold(true).
			MarginBottom(1),
		NewChat: lipgloss.NewStyle().
			Foreground(ColorText).
			Background(ColorAccent).
			Bold(true).
			Padding(0, 1),
		NewChatSelected: lipgloss.NewStyle().
			Foreground(ColorBgDark).
			Background(ColorText).
			Bold(true).
			Padding(0, 1),
		SectionLabel: lipgloss.NewStyle().
			Foreground(ColorTextDim).
			MarginTop(1),
		Item: lipgloss.NewStyle().
			Foreground(ColorText).
			PaddingLeft(1),
		ItemCurrent: lipgloss.NewStyle().
			Foreground(ColorText).
			Background(ColorUserBubble).
			Bold(true).
			PaddingLeft(1),
		ItemCursor: lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true).
			PaddingLeft(1),
		ItemTime: lipgloss.NewStyle().
			Foreground(ColorTextDim).
			PaddingLeft(1),

		Chat: lipgloss.NewStyle().
			Background(ColorChat).
			Foreground(ColorText),
		UserBubble: lipgloss.NewStyle().
			Background(ColorUserBubble).
			Foreground(ColorText).
			Padding(0, 2),
		AIBubble: lipgloss.NewStyle().
			Background(ColorAIBubble).
			Foreground(ColorText).
			Padding(0, 2),
		UserLabel: lipgloss.NewStyle().
			Foreground(ColorTextDim).
			Bold(true),
		AILabel: lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true),
		NoticeText: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")),
		Input: lipgloss.NewStyle().
			Background(ColorInput).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1),
		InputActive: lipgloss.NewStyle().
			Background(ColorInput).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Padding(0, 1),
		Status: lipgloss.NewStyle().
			Foreground(ColorTextDim).
			Padding(0, 1),
		Spinner: lipgloss.NewStyle().
			Foreground(ColorAccent),

		Text:    lipgloss.NewStyle().Foreground(ColorText),
		Bold:    lipgloss.NewStyle().Foreground(ColorText).Bold(true),
		Code:    lipgloss.NewStyle().Foreground(ColorAccent).Background(ColorBgDark),
		Heading: lipgloss.NewStyle().Foreground(ColorAccent).Bold(true),
		Number:  lipgloss.NewStyle().Foreground(ColorText),
		Bullet:  lipgloss.NewStyle().Foreground(ColorText),
		Quote:   lipgloss.NewStyle().Foreground(ColorTextDim).Italic(true),
	}
}
