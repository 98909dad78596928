package handler

import (
	"context"

	"github.com/set-night/parley/internal/config"
	"github.com/set-night/parley/internal/domain"
	"github.com/set-night/parley/internal/service"
)

// ModelLister provides the models offered by the completion endpoint.
type ModelLister interface {
	ListModels(ctx context.Context) ([]domain.AIModel, error)
	RefreshModels()
}

// Handler holds all dependencies needed by command and callback handlers.
type Handler struct {
	cfg           *config.Config
	chat          *service.ChatService
	conversations *service.ConversationService
	models        ModelLister
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Cfg    *config.Config
	Chat   *service.ChatService
	Models ModelLister
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		cfg:           deps.Cfg,
		chat:          deps.Chat,
		conversations: deps.Chat.Conversations(),
		models:        deps.Models,
	}
}
