package domain

import "errors"

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrActiveRequest        = errors.New("active request exists")
	ErrEmptyMessage         = errors.New("empty message")
	ErrModelNotFound        = errors.New("model not found")
	ErrEmptyCompletion      = errors.New("completion returned no text")
	ErrRateLimited          = errors.New("rate limited")
	ErrNotOwner             = errors.New("not the bot owner")
)
