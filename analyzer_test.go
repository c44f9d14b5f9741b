package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnalyzeFencedBlocks(t *testing.T) {
	text := "intro\n\n```go\nfunc main() {}\n```\n\nmore text\n"
	a := NewAnalyzer().Analyze(text)

	require.Len(t, a.FencedBlocks, 1)
	fb := a.FencedBlocks[0]
	require.Equal(t, "go", fb.Language)
	require.Equal(t, 3, fb.StartLine)
	require.Equal(t, 5, fb.EndLine)
	require.False(t, fb.Unclosed)
	require.Equal(t, "func main() {}\n", text[fb.StartByte:fb.EndByte])
}

func TestAnalyzeNestedShorterFenceStaysContent(t *testing.T) {
	text := strings.Join([]string{
		"````markdown",
		"```go",
		"x := 1",
		"```",
		"````",
		"",
	}, "\n")
	a := NewAnalyzer().Analyze(text)

	require.Len(t, a.FencedBlocks, 1)
	require.Equal(t, 1, a.FencedBlocks[0].StartLine)
	require.Equal(t, 5, a.FencedBlocks[0].EndLine)
}

func TestAnalyzeUnclosedFence(t *testing.T) {
	text := "before\n\n```python\nprint('hi')\n"
	a := NewAnalyzer().Analyze(text)

	require.Len(t, a.FencedBlocks, 1)
	require.True(t, a.FencedBlocks[0].Unclosed)
	require.Len(t, a.Warnings, 1)
	require.Equal(t, 3, a.Warnings[0].Line)
}

func TestAnalyzeHeaders(t *testing.T) {
	text := "# Title\n\ntext\n\n## Sub heading ##\n\nbody\n"
	a := NewAnalyzer().Analyze(text)

	require.Len(t, a.Headers, 2)
	require.Equal(t, 1, a.Headers[0].Level)
	require.Equal(t, "Title", a.Headers[0].Text)
	require.Equal(t, 2, a.Headers[1].Level)
	require.Equal(t, "Sub heading", a.Headers[1].Text)
	require.Equal(t, 2, a.MaxHeaderDepth)
}

func TestAnalyzeHeaderInsideFenceIgnored(t *testing.T) {
	text := "```\n# not a header\n```\n"
	a := NewAnalyzer().Analyze(text)

	require.Empty(t, a.Headers)
	require.Len(t, a.FencedBlocks, 1)
}

func TestAnalyzeTable(t *testing.T) {
	text := "| a | b |\n| --- | --- |\n| 1 | 2 |\n| 3 | 4 |\n\nafter\n"
	a := NewAnalyzer().Analyze(text)

	require.Len(t, a.Tables, 1)
	tb := a.Tables[0]
	require.Equal(t, 1, tb.StartLine)
	require.Equal(t, 4, tb.EndLine)
	require.Equal(t, 2, tb.Columns)
	require.Equal(t, 2, tb.Rows)
}

func TestAnalyzeTableColumnMismatchNotATable(t *testing.T) {
	text := "| a | b | c |\n| --- | --- |\n| 1 | 2 |\n"
	a := NewAnalyzer().Analyze(text)

	require.Empty(t, a.Tables)
}

func TestAnalyzeCodeRatio(t *testing.T) {
	text := "text text\n\n```\ncodecodecodecode\n```\n"
	a := NewAnalyzer().Analyze(text)

	require.Greater(t, a.CodeRatio, 0.0)
	require.Less(t, a.CodeRatio, 1.0)
}

func TestAnalyzePreambleDetected(t *testing.T) {
	text := "This is a reasonably long introductory paragraph.\nIt spans more than one line of text.\n\n# First Header\n\nbody\n"
	a := NewAnalyzer().Analyze(text)

	require.True(t, a.HasPreamble)
	require.Equal(t, 4, a.PreambleEndLine)
}

func TestAnalyzePreambleTooShortIsNotPreamble(t *testing.T) {
	text := "hi\n\n# First Header\n\nbody\n"
	a := NewAnalyzer().Analyze(text)

	require.False(t, a.HasPreamble)
}

func TestAnalyzeNoHeadersWholeDocIsPreamble(t *testing.T) {
	text := "just some plain prose with no headers at all.\n"
	a := NewAnalyzer().Analyze(text)

	require.True(t, a.HasPreamble)
	require.Equal(t, a.TotalLines+1, a.PreambleEndLine)
}

func TestAnalyzeIdempotentOnAlreadyNormalizedText(t *testing.T) {
	text := "# H\n\nbody\n"
	a1 := NewAnalyzer().Analyze(text)
	a2 := NewAnalyzer().Analyze(normalize(text))
	require.Equal(t, a1, a2)
}
