package format

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSplitMessage_Short(t *testing.T) {
	assert.Equal(t, []string{"hi"}, SplitMessage("hi", 10))
}

func TestSplitMessage_PrefersNewline(t *testing.T) {
	text := strings.Repeat("a", 7) + "\n" + strings.Repeat("b", 7)

	parts := SplitMessage(text, 10)
	assert.Equal(t, []string{strings.Repeat("a", 7) + "\n", strings.Repeat("b", 7)}, parts)
}

func TestSplitMessage_HardSplit(t *testing.T) {
	text := strings.Repeat("é", 25)

	parts := SplitMessage(text, 10)
	assert.Len(t, parts, 3)
	for _, p := range parts {
		assert.LessOrEqual(t, utf8.RuneCountInString(p), 10)
	}
	assert.Equal(t, text, strings.Join(parts, ""))
}

func TestFixMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "balanced untouched", in: "a `b` c", want: "a `b` c"},
		{name: "open fence closed", in: "```go\nx", want: "```go\nx\n```"},
		{name: "open backtick closed", in: "run `ls", want: "run `ls`"},
		{name: "backtick inside fence ignored", in: "```\n`\n```", want: "```\n`\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FixMarkdown(tt.in)
			assert.Equal(t, tt.want, got)
			assert.True(t, Balanced(got))
		})
	}
}

func TestBalanced(t *testing.T) {
	assert.True(t, Balanced("plain"))
	assert.False(t, Balanced("```"))
	assert.False(t, Balanced("a ` b"))
}
