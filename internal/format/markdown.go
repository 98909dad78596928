package format

import (
	"strings"
	"unicode/utf8"
)

// SplitMessage splits text into chunks of at most maxLen characters,
// preferring to break after a newline in the second half of a chunk.
func SplitMessage(text string, maxLen int) []string {
	if maxLen <= 0 || utf8.RuneCountInString(text) <= maxLen {
		return []string{text}
	}

	var parts []string
	runes := []rune(text)
	for len(runes) > 0 {
		if len(runes) <= maxLen {
			parts = append(parts, string(runes))
			break
		}

		splitAt := maxLen
		chunk := runes[:maxLen]
		for i := len(chunk) - 1; i > maxLen/2; i-- {
			if chunk[i] == '\n' {
				splitAt = i + 1
				break
			}
		}

		parts = append(parts, string(runes[:splitAt]))
		runes = runes[splitAt:]
	}
	return parts
}

// Balanced reports whether code fences and inline backticks are paired.
func Balanced(text string) bool {
	if strings.Count(text, "```")%2 != 0 {
		return false
	}
	inline := 0
	inBlock := false
	for i := 0; i < len(text); i++ {
		if strings.HasPrefix(text[i:], "```") {
			inBlock = !inBlock
			i += 2
			continue
		}
		if !inBlock && text[i] == '`' {
			inline++
		}
	}
	return inline%2 == 0
}

// FixMarkdown closes an unterminated code fence and unpaired inline backticks.
func FixMarkdown(text string) string {
	if strings.Count(text, "```")%2 != 0 {
		text += "\n```"
	}

	var b strings.Builder
	b.Grow(len(text) + 1)
	inBlock := false
	open := false
	for i := 0; i < len(text); i++ {
		if strings.HasPrefix(text[i:], "```") {
			if open {
				b.WriteByte('`')
				open = false
			}
			inBlock = !inBlock
			b.WriteString("```")
			i += 2
			continue
		}
		if !inBlock && text[i] == '`' {
			open = !open
		}
		b.WriteByte(text[i])
	}
	if open {
		b.WriteByte('`')
	}
	return b.String()
}
