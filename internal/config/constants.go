package config

import "time"

const (
	// Conversation seeding
	SystemPrompt = "You are a helpful AI assistant."
	Greeting     = "How can I assist you today?"

	// Sidebar titles
	TitleMaxLen = 35
	TitleSuffix = "..."

	// AI request timeout
	RequestTimeout = 90 * time.Second

	// Model cache duration
	ModelCacheDuration = 1 * time.Hour

	// Markdown renderers
	MarkdownBasic   = "basic"
	MarkdownGlamour = "glamour"

	// Telegram limits
	MaxTelegramMessageLen = 4096

	// Rate limit (messages per minute) for the Telegram front-end
	RateLimitPerMinute = 20

	// Conversations per page in the Telegram list
	ConversationsPerPage = 5

	// Models per page in the Telegram list
	ModelsPerPage = 10

	// Longest /models search query kept in callback data (Telegram allows 64 bytes)
	MaxModelSearchLen = 32

	// Sidebar width in cells
	SidebarWidth = 30
)
