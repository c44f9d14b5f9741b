package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyCodeAwareSplitsAroundFence(t *testing.T) {
	text := "intro paragraph one.\n\n```go\nfunc main() {}\n```\n\noutro paragraph.\n"
	cfg := DefaultChunkConfig()
	a := NewAnalyzer().Analyze(text)
	chunks := applyCodeAware(text, a, cfg)

	require.Len(t, chunks, 3)
	require.Equal(t, ContentText, chunks[0].ContentType)
	require.Equal(t, ContentCode, chunks[1].ContentType)
	require.True(t, chunks[1].atomic)
	require.Equal(t, ContentText, chunks[2].ContentType)
	require.Contains(t, chunks[1].Content, "func main")
}

func TestApplyCodeAwareOversizeFence(t *testing.T) {
	cfg := NewChunkConfig(WithMaxChunkSize(20))
	text := "```\n" + strings.Repeat("x", 100) + "\n```\n"
	a := NewAnalyzer().Analyze(text)
	chunks := applyCodeAware(text, a, cfg)

	require.Len(t, chunks, 1)
	require.True(t, chunks[0].AllowOversize)
	require.Equal(t, OversizeCodeBlock, chunks[0].OversizeReason)
}

func TestApplyCodeAwareTableAtomic(t *testing.T) {
	text := "before\n\n| a | b |\n| --- | --- |\n| 1 | 2 |\n\nafter\n"
	cfg := DefaultChunkConfig()
	a := NewAnalyzer().Analyze(text)
	chunks := applyCodeAware(text, a, cfg)

	var sawTable bool
	for _, c := range chunks {
		if c.ContentType == ContentTable {
			sawTable = true
			require.True(t, c.atomic)
		}
	}
	require.True(t, sawTable)
}

func TestApplyCodeAwareMixedGapWithInlineCode(t *testing.T) {
	text := "Use `foo()` and `bar()` together.\n\n```\nx\n```\n"
	cfg := DefaultChunkConfig()
	a := NewAnalyzer().Analyze(text)
	chunks := applyCodeAware(text, a, cfg)

	require.Equal(t, ContentMixed, chunks[0].ContentType)
}
