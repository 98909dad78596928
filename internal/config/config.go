package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	// Core
	APIKey  string `env:"GROQ_API_KEY"`
	BaseURL string `env:"COMPLETION_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`

	// Completion parameters
	Model       string  `env:"CHAT_MODEL" envDefault:"llama-3.3-70b-versatile"`
	Temperature float64 `env:"CHAT_TEMPERATURE" envDefault:"1"`
	TopP        float64 `env:"CHAT_TOP_P" envDefault:"1"`
	MaxTokens   int     `env:"CHAT_MAX_TOKENS" envDefault:"1024"`
	Stream      bool    `env:"CHAT_STREAM" envDefault:"true"`

	// Conversations
	MaxConversations int `env:"MAX_CONVERSATIONS" envDefault:"0"`

	// Display
	Markdown string `env:"CHAT_MARKDOWN" envDefault:"basic"`

	// Pricing, per 1M tokens
	PricePromptPerM     string `env:"PRICE_PROMPT_PER_M"`
	PriceCompletionPerM string `env:"PRICE_COMPLETION_PER_M"`

	// Archive
	DatabaseURL    string `env:"DATABASE_URL"`
	ArchiveRestore bool   `env:"ARCHIVE_RESTORE" envDefault:"false"`

	// Telegram front-end
	BotToken           string `env:"BOT_TOKEN"`
	OwnerID            int64  `env:"TELEGRAM_OWNER_ID"`
	DropPendingUpdates bool   `env:"BOT_DROP_PENDING_UPDATES" envDefault:"false"`

	// Logging
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogEncoding string `env:"LOG_ENCODING" envDefault:"console"`
	LogFile     string `env:"LOG_FILE" envDefault:"parley.log"`
}

// Load reads an optional .env file and parses the environment into a Config.
// A missing API key yields ErrMissingAPIKey.
func Load(envFiles ...string) (*Config, error) {
	if err := loadDotenv(envFiles...); err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDotenv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

var ErrMissingAPIKey = errors.New("API key not found. Make sure the .env file contains 'GROQ_API_KEY=<api_key>'")

func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	switch c.Markdown {
	case MarkdownBasic, MarkdownGlamour:
	default:
		return fmt.Errorf("unknown CHAT_MARKDOWN %q", c.Markdown)
	}
	if _, err := c.Prices(); err != nil {
		return err
	}
	return nil
}

// Prices returns the configured per-1M-token prices. Unset prices are zero.
func (c *Config) Prices() (Pricing, error) {
	var p Pricing
	var err error
	if c.PricePromptPerM != "" {
		if p.PromptPerM, err = decimal.NewFromString(c.PricePromptPerM); err != nil {
			return Pricing{}, fmt.Errorf("parse PRICE_PROMPT_PER_M: %w", err)
		}
	}
	if c.PriceCompletionPerM != "" {
		if p.CompletionPerM, err = decimal.NewFromString(c.PriceCompletionPerM); err != nil {
			return Pricing{}, fmt.Errorf("parse PRICE_COMPLETION_PER_M: %w", err)
		}
	}
	return p, nil
}

var (
	ErrMissingBotToken = errors.New("BOT_TOKEN is required for the Telegram front-end")
	ErrMissingOwner    = errors.New("TELEGRAM_OWNER_ID is required for the Telegram front-end")
)

// ValidateBot checks the settings needed by the Telegram front-end.
func (c *Config) ValidateBot() error {
	if strings.TrimSpace(c.BotToken) == "" {
		return ErrMissingBotToken
	}
	if c.OwnerID == 0 {
		return ErrMissingOwner
	}
	return nil
}

func (c *Config) ArchiveEnabled() bool {
	return c.DatabaseURL != ""
}

func (c *Config) IsOwner(telegramID int64) bool {
	return c.OwnerID != 0 && c.OwnerID == telegramID
}

type Pricing struct {
	PromptPerM     decimal.Decimal
	CompletionPerM decimal.Decimal
}

func (p Pricing) IsFree() bool {
	return p.PromptPerM.IsZero() && p.CompletionPerM.IsZero()
}
