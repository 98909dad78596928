package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/set-night/parley/internal/domain"
)

// ConversationArchive stores conversations and their messages in Postgres.
type ConversationArchive struct {
	db *pgxpool.Pool
}

func NewConversationArchive(db *pgxpool.Pool) *ConversationArchive {
	return &ConversationArchive{db: db}
}

func (a *ConversationArchive) SaveConversation(ctx context.Context, c *domain.Conversation) error {
	_, err := a.db.Exec(ctx, `
		INSERT INTO conversations (id, title, model, greeted, prompt_tokens, completion_tokens, cost, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			model = EXCLUDED.model,
			greeted = EXCLUDED.greeted,
			prompt_tokens = EXCLUDED.prompt_tokens,
			completion_tokens = EXCLUDED.completion_tokens,
			cost = EXCLUDED.cost,
			updated_at = EXCLUDED.updated_at`,
		pgUUID(c.ID), c.Title, c.Model, c.Greeted,
		c.Usage.PromptTokens, c.Usage.CompletionTokens, c.Usage.Cost,
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save conversation: %w", err)
	}
	return nil
}

func (a *ConversationArchive) AppendMessage(ctx context.Context, conversationID uuid.UUID, m domain.Message) error {
	_, err := a.db.Exec(ctx, `
		INSERT INTO conversation_messages (conversation_id, role, content, local, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		pgUUID(conversationID), string(m.Role), m.Content, m.Local, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

func (a *ConversationArchive) DeleteConversation(ctx context.Context, conversationID uuid.UUID) error {
	if _, err := a.db.Exec(ctx, `DELETE FROM conversations WHERE id = $1`, pgUUID(conversationID)); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	return nil
}

// LoadConversations returns every archived conversation, oldest first, with
// messages in insertion order.
func (a *ConversationArchive) LoadConversations(ctx context.Context) ([]*domain.Conversation, error) {
	rows, err := a.db.Query(ctx, `
		SELECT id, title, model, greeted, prompt_tokens, completion_tokens, cost, created_at, updated_at
		FROM conversations
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var convs []*domain.Conversation
	byID := make(map[uuid.UUID]*domain.Conversation)
	for rows.Next() {
		var (
			id                   pgtype.UUID
			c                    domain.Conversation
			promptTok, complTok  int64
			cost                 decimal.Decimal
			createdAt, updatedAt pgtype.Timestamptz
		)
		if err := rows.Scan(&id, &c.Title, &c.Model, &c.Greeted, &promptTok, &complTok, &cost, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		c.ID = uuid.UUID(id.Bytes)
		c.Usage = domain.Usage{PromptTokens: int(promptTok), CompletionTokens: int(complTok), Cost: cost}
		c.CreatedAt = pgTimestamptzToTime(createdAt)
		c.UpdatedAt = pgTimestamptzToTime(updatedAt)
		convs = append(convs, &c)
		byID[c.ID] = &c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversations: %w", err)
	}

	msgRows, err := a.db.Query(ctx, `
		SELECT conversation_id, role, content, local, created_at
		FROM conversation_messages
		ORDER BY conversation_id, id`)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer msgRows.Close()

	for msgRows.Next() {
		var (
			convID    pgtype.UUID
			role      string
			m         domain.Message
			createdAt pgtype.Timestamptz
		)
		if err := msgRows.Scan(&convID, &role, &m.Content, &m.Local, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Role = domain.Role(role)
		m.CreatedAt = pgTimestamptzToTime(createdAt)
		if c, ok := byID[uuid.UUID(convID.Bytes)]; ok {
			c.Messages = append(c.Messages, m)
		}
	}
	if err := msgRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return convs, nil
}
