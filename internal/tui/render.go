package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/set-night/parley/internal/config"
	"github.com/set-night/parley/internal/format"
)

// Renderer turns assistant text into styled terminal output of a given width.
type Renderer interface {
	Render(text string, width int) string
}

// NewRenderer returns the renderer for the configured markdown mode.
// Unknown modes fall back to the basic renderer.
func NewRenderer(mode string, styles Styles) Renderer {
	if mode == config.MarkdownGlamour {
		return &glamourRenderer{fallback: basicRenderer{styles: styles}}
	}
	return basicRenderer{styles: styles}
}

type basicRenderer struct {
	styles Styles
}

func (r basicRenderer) Render(text string, width int) string {
	lines := format.Parse(text)
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, r.renderLine(line, width))
	}
	return strings.Join(out, "\n")
}

func (r basicRenderer) renderLine(line format.Line, width int) string {
	s := r.styles
	var style lipgloss.Style
	switch line.Kind {
	case format.KindCode:
		// Code keeps its own line breaks.
		return s.Code.Render(line.Text())
	case format.KindHeading:
		style = s.Heading
	case format.KindNumber:
		style = s.Number
	case format.KindBullet:
		style = s.Bullet
	case format.KindQuote:
		style = s.Quote
	default:
		var sb strings.Builder
		for _, span := range line.Spans {
			switch span.Style {
			case format.SpanBold:
				sb.WriteString(s.Bold.Render(span.Text))
			case format.SpanCode:
				sb.WriteString(s.Code.Render(span.Text))
			default:
				sb.WriteString(s.Text.Render(span.Text))
			}
		}
		return lipgloss.NewStyle().Width(width).Render(sb.String())
	}
	return style.Width(width).Render(line.Text())
}

// glamourRenderer renders full markdown. Term renderers are bound to a wrap
// width, so one is rebuilt whenever the width changes.
type glamourRenderer struct {
	width    int
	term     *glamour.TermRenderer
	fallback basicRenderer
}

func (r *glamourRenderer) Render(text string, width int) string {
	if r.term == nil || r.width != width {
		term, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			zap.L().Warn("glamour renderer", zap.Error(err))
			return r.fallback.Render(text, width)
		}
		r.term, r.width = term, width
	}
	out, err := r.term.Render(text)
	if err != nil {
		zap.L().Warn("glamour render", zap.Error(err))
		return r.fallback.Render(text, width)
	}
	return strings.Trim(out, "\n")
}
