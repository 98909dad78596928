package main

import (
	"context"

	"github.com/set-night/parley/internal/tui"
)

func runChat(ctx context.Context) error {
	a, err := newApp(ctx, "", "chat")
	if err != nil {
		return err
	}
	defer a.close()

	return tui.Run(ctx, a.chat, tui.Options{Markdown: a.cfg.Markdown})
}
