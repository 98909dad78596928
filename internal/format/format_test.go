package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_LineKinds(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantKind LineKind
		wantText string
	}{
		{name: "h1", input: "# Title", wantKind: KindHeading, wantText: "Title"},
		{name: "h2", input: "## Section", wantKind: KindHeading, wantText: "Section"},
		{name: "h3", input: "### Sub", wantKind: KindHeading, wantText: "Sub"},
		{name: "h4 is plain", input: "#### Deep", wantKind: KindPlain, wantText: "#### Deep"},
		{name: "numbered", input: "1. first", wantKind: KindNumber, wantText: "1. first"},
		{name: "numbered indented", input: " 12. twelfth", wantKind: KindNumber, wantText: " 12. twelfth"},
		{name: "indent pushes dot out", input: "  12. twelfth", wantKind: KindPlain, wantText: "  12. twelfth"},
		{name: "digit without dot", input: "2024 was a year", wantKind: KindPlain, wantText: "2024 was a year"},
		{name: "dot too far", input: "12345. x", wantKind: KindPlain, wantText: "12345. x"},
		{name: "dash bullet", input: "- apples", wantKind: KindBullet, wantText: "  • apples"},
		{name: "star bullet", input: "  * pears", wantKind: KindBullet, wantText: "  • pears"},
		{name: "dot bullet", input: "• plums", wantKind: KindBullet, wantText: "  • plums"},
		{name: "quote", input: ">   wise words", wantKind: KindQuote, wantText: "  wise words"},
		{name: "plain", input: "hello there", wantKind: KindPlain, wantText: "hello there"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := Parse(tt.input)
			require.Len(t, lines, 1)
			assert.Equal(t, tt.wantKind, lines[0].Kind)
			assert.Equal(t, tt.wantText, lines[0].Text())
		})
	}
}

func TestParse_CodeBlock(t *testing.T) {
	msg := "before\n```go\nfmt.Println(\"# not a heading\")\n- not a bullet\n```\nafter"

	lines := Parse(msg)
	require.Len(t, lines, 4)

	assert.Equal(t, KindPlain, lines[0].Kind)
	assert.Equal(t, KindCode, lines[1].Kind)
	assert.Equal(t, `fmt.Println("# not a heading")`, lines[1].Text())
	assert.Equal(t, KindCode, lines[2].Kind)
	assert.Equal(t, "- not a bullet", lines[2].Text())
	assert.Equal(t, KindPlain, lines[3].Kind)
}

func TestParse_UnterminatedFence(t *testing.T) {
	lines := Parse("```\na\nb")
	require.Len(t, lines, 2)
	for _, l := range lines {
		assert.Equal(t, KindCode, l.Kind)
	}
}

func TestParse_BlankLine(t *testing.T) {
	lines := Parse("a\n\nb")
	require.Len(t, lines, 3)
	assert.Empty(t, lines[1].Spans)
	assert.Equal(t, "", lines[1].Text())
}

func TestInline(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Span
	}{
		{
			name: "bold and code",
			in:   "use **care** with `rm`",
			want: []Span{
				{Text: "use ", Style: SpanText},
				{Text: "care", Style: SpanBold},
				{Text: " with ", Style: SpanText},
				{Text: "rm", Style: SpanCode},
			},
		},
		{
			name: "unclosed bold stays literal",
			in:   "a **b",
			want: []Span{{Text: "a **b", Style: SpanText}},
		},
		{
			name: "unclosed backtick stays literal",
			in:   "x `y",
			want: []Span{{Text: "x `y", Style: SpanText}},
		},
		{
			name: "empty bold",
			in:   "****",
			want: []Span{{Text: "", Style: SpanBold}},
		},
		{
			name: "unicode around markers",
			in:   "héllo **wörld**",
			want: []Span{
				{Text: "héllo ", Style: SpanText},
				{Text: "wörld", Style: SpanBold},
			},
		},
		{
			name: "whitespace only",
			in:   "   ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Inline(tt.in))
		})
	}
}

func TestLineKindString(t *testing.T) {
	assert.Equal(t, "heading", KindHeading.String())
	assert.Equal(t, "plain", LineKind(99).String())
}
