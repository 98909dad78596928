// Package format turns assistant replies into styled lines for display.
//
// The rules are line oriented: fenced code blocks, headings, numbered and
// bulleted list items and quotes are recognised per line, and plain lines
// carry inline **bold** and `code` spans.
package format

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type LineKind int

const (
	KindPlain LineKind = iota
	KindCode
	KindHeading
	KindNumber
	KindBullet
	KindQuote
)

func (k LineKind) String() string {
	switch k {
	case KindCode:
		return "code"
	case KindHeading:
		return "heading"
	case KindNumber:
		return "number"
	case KindBullet:
		return "bullet"
	case KindQuote:
		return "quote"
	default:
		return "plain"
	}
}

type SpanStyle int

const (
	SpanText SpanStyle = iota
	SpanBold
	SpanCode
)

type Span struct {
	Text  string
	Style SpanStyle
}

type Line struct {
	Kind  LineKind
	Spans []Span
}

// Text returns the line content without styling.
func (l Line) Text() string {
	var sb strings.Builder
	for _, s := range l.Spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// Parse splits message into display lines. Fence lines are dropped; an
// unterminated fence keeps every following line in the code block.
func Parse(message string) []Line {
	raw := strings.Split(message, "\n")
	lines := make([]Line, 0, len(raw))
	inCode := false

	for _, line := range raw {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inCode = !inCode
			continue
		}
		if inCode {
			lines = append(lines, single(KindCode, line))
			continue
		}

		switch {
		case strings.HasPrefix(line, "### "):
			lines = append(lines, single(KindHeading, line[4:]))
		case strings.HasPrefix(line, "## "):
			lines = append(lines, single(KindHeading, line[3:]))
		case strings.HasPrefix(line, "# "):
			lines = append(lines, single(KindHeading, line[2:]))
		case isNumbered(line, trimmed):
			lines = append(lines, single(KindNumber, line))
		case hasBullet(trimmed):
			lines = append(lines, single(KindBullet, "  • "+trimBullet(trimmed)))
		case strings.HasPrefix(trimmed, ">"):
			lines = append(lines, single(KindQuote, "  "+strings.TrimSpace(trimmed[1:])))
		default:
			lines = append(lines, Line{Kind: KindPlain, Spans: Inline(line)})
		}
	}
	return lines
}

func single(kind LineKind, text string) Line {
	return Line{Kind: kind, Spans: []Span{{Text: text, Style: SpanText}}}
}

// isNumbered matches "1. item": a digit first and ". " within the first five characters.
func isNumbered(line, trimmed string) bool {
	if trimmed == "" {
		return false
	}
	first, _ := utf8.DecodeRuneInString(strings.TrimLeftFunc(line, unicode.IsSpace))
	if !unicode.IsDigit(first) {
		return false
	}
	return strings.Contains(firstRunes(line, 5), ". ")
}

var bulletMarkers = []string{"- ", "• ", "* "}

func hasBullet(trimmed string) bool {
	for _, m := range bulletMarkers {
		if strings.HasPrefix(trimmed, m) {
			return true
		}
	}
	return false
}

func trimBullet(trimmed string) string {
	for _, m := range bulletMarkers {
		if strings.HasPrefix(trimmed, m) {
			return trimmed[len(m):]
		}
	}
	return trimmed
}

func firstRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Inline splits a plain line into text, **bold** and `code` spans. Markers
// without a closing partner are kept as literal text. A blank line yields no spans.
func Inline(line string) []Span {
	if strings.TrimSpace(line) == "" {
		return nil
	}

	var spans []Span
	var plain strings.Builder
	flush := func() {
		if plain.Len() > 0 {
			spans = append(spans, Span{Text: plain.String(), Style: SpanText})
			plain.Reset()
		}
	}

	for i := 0; i < len(line); {
		if strings.HasPrefix(line[i:], "**") {
			if end := strings.Index(line[i+2:], "**"); end != -1 {
				flush()
				spans = append(spans, Span{Text: line[i+2 : i+2+end], Style: SpanBold})
				i += end + 4
				continue
			}
		}
		if line[i] == '`' {
			if end := strings.IndexByte(line[i+1:], '`'); end != -1 {
				flush()
				spans = append(spans, Span{Text: line[i+1 : i+1+end], Style: SpanCode})
				i += end + 2
				continue
			}
		}
		plain.WriteByte(line[i])
		i++
	}
	flush()
	return spans
}
