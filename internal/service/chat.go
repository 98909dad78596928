package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/set-night/parley/internal/config"
	"github.com/set-night/parley/internal/domain"
)

// Completer issues one completion request for a message history.
type Completer interface {
	Chat(ctx context.Context, messages []ChatMessage, model string) (*Completion, error)
}

type ChatOptions struct {
	Pricing config.Pricing
	Timeout time.Duration
}

// ChatService runs the fetch-and-render sequence of a user turn.
type ChatService struct {
	conversations *ConversationService
	completer     Completer
	pricing       config.Pricing
	timeout       time.Duration
}

func NewChatService(conversations *ConversationService, completer Completer, opts ChatOptions) *ChatService {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = config.RequestTimeout
	}
	return &ChatService{
		conversations: conversations,
		completer:     completer,
		pricing:       opts.Pricing,
		timeout:       timeout,
	}
}

func (s *ChatService) Conversations() *ConversationService {
	return s.conversations
}

// Turn is a user message accepted into a conversation and awaiting its reply.
type Turn struct {
	ConversationID uuid.UUID
	Model          string
	History        []domain.Message
}

type Reply struct {
	ConversationID uuid.UUID
	Text           string
	Usage          domain.Usage
}

// Submit appends the user message and marks the conversation busy. The
// caller must follow up with Complete, which releases the conversation.
func (s *ChatService) Submit(ctx context.Context, conversationID uuid.UUID, text string) (*Turn, error) {
	if err := s.conversations.Begin(conversationID); err != nil {
		return nil, err
	}
	history, err := s.conversations.AppendUser(ctx, conversationID, text)
	if err != nil {
		s.conversations.End(conversationID)
		return nil, err
	}
	conv, err := s.conversations.Get(conversationID)
	if err != nil {
		s.conversations.End(conversationID)
		return nil, err
	}
	return &Turn{ConversationID: conversationID, Model: conv.Model, History: history}, nil
}

// Complete issues the request for turn and appends the reply to the
// conversation the turn belongs to. On failure the error text is appended as
// a display-only notice and the error is returned.
func (s *ChatService) Complete(ctx context.Context, turn *Turn) (*Reply, error) {
	defer s.conversations.End(turn.ConversationID)

	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	completion, err := s.completer.Chat(reqCtx, ToChatMessages(turn.History), turn.Model)
	if err != nil {
		zap.L().Error("completion", zap.Error(err), zap.Stringer("conversation_id", turn.ConversationID))
		if nerr := s.conversations.AppendNotice(ctx, turn.ConversationID, ErrorText(err)); nerr != nil {
			zap.L().Warn("append error notice", zap.Error(nerr))
		}
		return nil, err
	}

	if err := s.conversations.AppendAssistant(ctx, turn.ConversationID, completion.Text); err != nil {
		return nil, fmt.Errorf("append reply: %w", err)
	}

	usage := PriceUsage(completion.Usage, s.pricing)
	if err := s.conversations.AddUsage(ctx, turn.ConversationID, usage); err != nil && !errors.Is(err, domain.ErrConversationNotFound) {
		zap.L().Warn("add usage", zap.Error(err))
	}

	return &Reply{ConversationID: turn.ConversationID, Text: completion.Text, Usage: usage}, nil
}

// Send runs Submit and Complete back to back.
func (s *ChatService) Send(ctx context.Context, conversationID uuid.UUID, text string) (*Reply, error) {
	turn, err := s.Submit(ctx, conversationID, text)
	if err != nil {
		return nil, err
	}
	return s.Complete(ctx, turn)
}

// ErrorText is the text shown in the conversation in place of a reply.
func ErrorText(err error) string {
	return "Error: " + err.Error()
}
