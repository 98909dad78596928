package service

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/set-night/parley/internal/config"
	"github.com/set-night/parley/internal/domain"
)

// Archive receives a write-through copy of every conversation change.
type Archive interface {
	SaveConversation(ctx context.Context, c *domain.Conversation) error
	AppendMessage(ctx context.Context, conversationID uuid.UUID, m domain.Message) error
	DeleteConversation(ctx context.Context, conversationID uuid.UUID) error
	LoadConversations(ctx context.Context) ([]*domain.Conversation, error)
}

type ConversationOptions struct {
	Model            string
	MaxConversations int
	Archive          Archive
	Now              func() time.Time
}

// ConversationService holds the session list and the current selection.
// It is safe for concurrent use; every conversation it returns is a copy.
type ConversationService struct {
	mu      sync.RWMutex
	order   []uuid.UUID
	byID    map[uuid.UUID]*domain.Conversation
	active  map[uuid.UUID]struct{}
	current uuid.UUID
	model   string
	max     int
	archive Archive
	now     func() time.Time
}

func NewConversationService(opts ConversationOptions) *ConversationService {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &ConversationService{
		byID:    make(map[uuid.UUID]*domain.Conversation),
		active:  make(map[uuid.UUID]struct{}),
		model:   opts.Model,
		max:     opts.MaxConversations,
		archive: opts.Archive,
		now:     now,
	}
}

// Restore loads archived conversations, oldest first, and selects the newest.
// It returns the number of conversations restored.
func (s *ConversationService) Restore(ctx context.Context) (int, error) {
	if s.archive == nil {
		return 0, nil
	}
	convs, err := s.archive.LoadConversations(ctx)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range convs {
		if _, ok := s.byID[c.ID]; ok {
			continue
		}
		s.byID[c.ID] = c.Clone()
		s.order = append(s.order, c.ID)
		s.current = c.ID
	}
	return len(convs), nil
}

// CreateNew starts a conversation seeded with the system prompt and the
// greeting and makes it current.
func (s *ConversationService) CreateNew(ctx context.Context) *domain.Conversation {
	now := s.now()
	c := &domain.Conversation{
		ID:    uuid.New(),
		Title: domain.DefaultTitle,
		Model: s.model,
		Messages: []domain.Message{
			{Role: domain.RoleSystem, Content: config.SystemPrompt, CreatedAt: now},
			{Role: domain.RoleAssistant, Content: config.Greeting, CreatedAt: now},
		},
		Greeted:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	evicted := s.evictLocked()
	s.byID[c.ID] = c
	s.order = append(s.order, c.ID)
	s.current = c.ID
	out := c.Clone()
	s.mu.Unlock()

	for _, id := range evicted {
		s.archiveDelete(ctx, id)
	}
	if s.archive != nil {
		if err := s.archive.SaveConversation(ctx, out); err != nil {
			zap.L().Error("archive conversation", zap.Error(err), zap.Stringer("conversation_id", out.ID))
		}
		for _, m := range out.Messages {
			s.archiveAppend(ctx, out.ID, m)
		}
	}
	return out
}

// evictLocked drops the oldest idle conversations so one more fits under the limit.
func (s *ConversationService) evictLocked() []uuid.UUID {
	if s.max <= 0 {
		return nil
	}
	var evicted []uuid.UUID
	for len(s.order) >= s.max {
		idx := -1
		for i, id := range s.order {
			if _, busy := s.active[id]; !busy {
				idx = i
				break
			}
		}
		if idx == -1 {
			break
		}
		id := s.order[idx]
		s.order = append(s.order[:idx], s.order[idx+1:]...)
		delete(s.byID, id)
		evicted = append(evicted, id)
	}
	return evicted
}

// List returns conversations newest first.
func (s *ConversationService) List() []*domain.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Conversation, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, s.byID[s.order[i]].Clone())
	}
	return out
}

func (s *ConversationService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *ConversationService) Get(id uuid.UUID) (*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrConversationNotFound
	}
	return c.Clone(), nil
}

// Current returns the selected conversation, creating one if the list is empty.
func (s *ConversationService) Current(ctx context.Context) *domain.Conversation {
	s.mu.RLock()
	c, ok := s.byID[s.current]
	s.mu.RUnlock()
	if ok {
		return c.Clone()
	}
	return s.CreateNew(ctx)
}

func (s *ConversationService) CurrentID() uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *ConversationService) SwitchTo(id uuid.UUID) (*domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrConversationNotFound
	}
	s.current = id
	return c.Clone(), nil
}

// Delete removes a conversation. When it was current, the newest remaining
// conversation becomes current.
func (s *ConversationService) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	if _, ok := s.byID[id]; !ok {
		s.mu.Unlock()
		return domain.ErrConversationNotFound
	}
	if _, busy := s.active[id]; busy {
		s.mu.Unlock()
		return domain.ErrActiveRequest
	}
	delete(s.byID, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.current == id {
		s.current = uuid.Nil
		if n := len(s.order); n > 0 {
			s.current = s.order[n-1]
		}
	}
	s.mu.Unlock()

	s.archiveDelete(ctx, id)
	return nil
}

// Begin marks a request in flight for the conversation. Only one request per
// conversation may be in flight.
func (s *ConversationService) Begin(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return domain.ErrConversationNotFound
	}
	if _, busy := s.active[id]; busy {
		return domain.ErrActiveRequest
	}
	s.active[id] = struct{}{}
	return nil
}

func (s *ConversationService) End(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, id)
}

func (s *ConversationService) IsActive(id uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, busy := s.active[id]
	return busy
}

// ActiveCount reports how many conversations have a request in flight.
func (s *ConversationService) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.active)
}

// AppendUser records a user message and returns the history to send with the
// completion request. The first user message of a conversation sets its title.
func (s *ConversationService) AppendUser(ctx context.Context, id uuid.UUID, text string) ([]domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyMessage
	}

	s.mu.Lock()
	c, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return nil, domain.ErrConversationNotFound
	}
	retitled := false
	if len(c.Messages) == 2 {
		c.Title = MakeTitle(text)
		retitled = true
	}
	m := domain.Message{Role: domain.RoleUser, Content: text, CreatedAt: s.now()}
	c.Messages = append(c.Messages, m)
	c.UpdatedAt = m.CreatedAt
	history := c.History()
	snapshot := c.Clone()
	s.mu.Unlock()

	if retitled {
		s.archiveSave(ctx, snapshot)
	}
	s.archiveAppend(ctx, id, m)
	return history, nil
}

func (s *ConversationService) AppendAssistant(ctx context.Context, id uuid.UUID, text string) error {
	return s.appendMessage(ctx, id, domain.Message{Role: domain.RoleAssistant, Content: text})
}

// AppendNotice records a display-only assistant entry, such as an error.
func (s *ConversationService) AppendNotice(ctx context.Context, id uuid.UUID, text string) error {
	return s.appendMessage(ctx, id, domain.Message{Role: domain.RoleAssistant, Content: text, Local: true})
}

func (s *ConversationService) appendMessage(ctx context.Context, id uuid.UUID, m domain.Message) error {
	s.mu.Lock()
	c, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return domain.ErrConversationNotFound
	}
	m.CreatedAt = s.now()
	c.Messages = append(c.Messages, m)
	c.UpdatedAt = m.CreatedAt
	s.mu.Unlock()

	s.archiveAppend(ctx, id, m)
	return nil
}

func (s *ConversationService) AddUsage(ctx context.Context, id uuid.UUID, u domain.Usage) error {
	s.mu.Lock()
	c, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return domain.ErrConversationNotFound
	}
	c.Usage = c.Usage.Add(u)
	snapshot := c.Clone()
	s.mu.Unlock()

	s.archiveSave(ctx, snapshot)
	return nil
}

// SetModel changes the model used for the conversation's next requests.
func (s *ConversationService) SetModel(ctx context.Context, id uuid.UUID, model string) error {
	s.mu.Lock()
	c, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return domain.ErrConversationNotFound
	}
	c.Model = model
	snapshot := c.Clone()
	s.mu.Unlock()

	s.archiveSave(ctx, snapshot)
	return nil
}

func (s *ConversationService) archiveSave(ctx context.Context, c *domain.Conversation) {
	if s.archive == nil {
		return
	}
	if err := s.archive.SaveConversation(ctx, c); err != nil {
		zap.L().Error("archive conversation", zap.Error(err), zap.Stringer("conversation_id", c.ID))
	}
}

func (s *ConversationService) archiveAppend(ctx context.Context, id uuid.UUID, m domain.Message) {
	if s.archive == nil {
		return
	}
	if err := s.archive.AppendMessage(ctx, id, m); err != nil {
		zap.L().Error("archive message", zap.Error(err), zap.Stringer("conversation_id", id))
	}
}

func (s *ConversationService) archiveDelete(ctx context.Context, id uuid.UUID) {
	if s.archive == nil {
		return
	}
	if err := s.archive.DeleteConversation(ctx, id); err != nil {
		zap.L().Error("archive delete", zap.Error(err), zap.Stringer("conversation_id", id))
	}
}

// MakeTitle derives a sidebar title from the first user message: at most
// TitleMaxLen characters plus a suffix when cut, with whitespace runs collapsed.
func MakeTitle(text string) string {
	title := text
	if utf8.RuneCountInString(text) > config.TitleMaxLen {
		title = string([]rune(text)[:config.TitleMaxLen]) + config.TitleSuffix
	}
	return strings.Join(strings.Fields(title), " ")
}
