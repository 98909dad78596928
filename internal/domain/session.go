package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

const DefaultTitle = "New Chat"

type Message struct {
	Role      Role
	Content   string
	CreatedAt time.Time
	// Local messages are shown in the conversation view but never sent to the API.
	Local bool
}

type Conversation struct {
	ID        uuid.UUID
	Title     string
	Messages  []Message
	Model     string
	Greeted   bool
	Usage     Usage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// History returns the role-tagged messages that are sent with a completion request.
func (c *Conversation) History() []Message {
	out := make([]Message, 0, len(c.Messages))
	for _, m := range c.Messages {
		if m.Local {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Visible returns every message after the system prompt.
func (c *Conversation) Visible() []Message {
	out := make([]Message, 0, len(c.Messages))
	for _, m := range c.Messages {
		if m.Role == RoleSystem {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (c *Conversation) Clone() *Conversation {
	cp := *c
	cp.Messages = append([]Message(nil), c.Messages...)
	return &cp
}
