package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScenarioEmptyInput(t *testing.T) {
	chunks, err := ChunkText("", DefaultChunkConfig())
	require.NoError(t, err)
	require.Empty(t, chunks)
}

func TestScenarioWhitespaceOnlyInput(t *testing.T) {
	chunks, err := ChunkText("   \n\n\t\n", DefaultChunkConfig())
	require.NoError(t, err)
	require.Empty(t, chunks)
}

func TestScenarioSingleParagraphBelowMin(t *testing.T) {
	cfg := NewChunkConfig(WithMaxChunkSize(2000), WithMinChunkSize(200))
	chunks, err := ChunkText("Hello, world.", cfg)
	require.NoError(t, err)

	require.Len(t, chunks, 1)
	require.Equal(t, "Hello, world.", chunks[0].Content)
	require.Equal(t, StrategyFallback, chunks[0].Strategy)
	require.Equal(t, ContentText, chunks[0].ContentType)
	require.Equal(t, 13, chunks[0].Size)
}

func TestScenarioTwoSections(t *testing.T) {
	bodyOne := "This section has a long enough body to stay above the merge floor on its own. " + strings.Repeat("filler ", 20)
	bodyTwo := "This other section also has a long enough body to clear that same floor. " + strings.Repeat("filler ", 20)
	text := "# Section One\n\n" + bodyOne + "\n\n# Section Two\n\n" + bodyTwo + "\n"
	cfg := NewChunkConfig(WithStructureThreshold(1))
	chunks, err := ChunkText(text, cfg)
	require.NoError(t, err)

	require.Len(t, chunks, 2)
	require.Equal(t, "/Section One", chunks[0].HeaderPath)
	require.Equal(t, "/Section Two", chunks[1].HeaderPath)
}

func TestScenarioCodeBlockPreserved(t *testing.T) {
	before := strings.Repeat("a", 300)
	code := strings.Repeat("x", 2500)
	after := strings.Repeat("b", 50)
	text := before + "\n\n```python\n" + code + "\n```\n\n" + after + "\n"
	cfg := NewChunkConfig(WithMaxChunkSize(2000))

	chunks, err := ChunkText(text, cfg)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	mid := chunks[1]
	require.True(t, mid.AllowOversize)
	require.Equal(t, OversizeCodeBlock, mid.OversizeReason)
	require.Equal(t, ContentCode, mid.ContentType)
	require.Equal(t, "python", mid.Language)
	require.True(t, strings.HasPrefix(mid.Content, "```python"))
	require.True(t, strings.HasSuffix(strings.TrimRight(mid.Content, "\n"), "```"))
}

func TestScenarioNestedFences(t *testing.T) {
	text := "````markdown\n```go\nx := 1\n```\n````\n"
	chunks, err := ChunkText(text, DefaultChunkConfig())
	require.NoError(t, err)

	require.Len(t, chunks, 1)
	require.False(t, chunks[0].FenceBalanceError)
}

func TestScenarioOverlapAtWordBoundary(t *testing.T) {
	sectionA := strings.Repeat("alpha ", 170) // ~1020 chars
	sectionB := strings.Repeat("beta ", 170)
	text := "# A\n\n" + sectionA + "\n\n# B\n\n" + sectionB + "\n"
	cfg := NewChunkConfig(WithMaxChunkSize(2000), WithOverlapSize(50), WithStructureThreshold(1))

	chunks, err := ChunkText(text, cfg)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(chunks), 2)
	require.Greater(t, chunks[1].OverlapPrev, 0)
	require.True(t, strings.HasPrefix(strings.TrimSpace(chunks[1].Content), "alpha"))
}

func TestPropertyChunkIndexUniqueness(t *testing.T) {
	text := "# A\n\nbody one.\n\n# B\n\nbody two.\n\n# C\n\nbody three.\n"
	cfg := NewChunkConfig(WithStructureThreshold(1))
	chunks, err := ChunkText(text, cfg)
	require.NoError(t, err)

	for i, c := range chunks {
		require.Equal(t, i, c.ChunkIndex)
	}
}

func TestPropertyOrdering(t *testing.T) {
	text := "# A\n\nbody one.\n\n# B\n\nbody two.\n"
	cfg := NewChunkConfig(WithStructureThreshold(1))
	chunks, err := ChunkText(text, cfg)
	require.NoError(t, err)

	for i := 0; i+1 < len(chunks); i++ {
		require.LessOrEqual(t, chunks[i].EndLine, chunks[i+1].StartLine)
	}
}

func TestPropertyDeterminism(t *testing.T) {
	text := "# Title\n\nSome body text here.\n\n```go\nfunc f() {}\n```\n"
	cfg := DefaultChunkConfig()

	c1, err1 := ChunkText(text, cfg)
	c2, err2 := ChunkText(text, cfg)
	require.NoError(t, err1)
	require.NoError(t, err2)
	require.Equal(t, c1, c2)
}

func TestPropertyIdempotentNormalization(t *testing.T) {
	text := "# Title\n\nbody text.\n"
	cfg := DefaultChunkConfig()

	c1, err1 := ChunkText(text, cfg)
	c2, err2 := ChunkText(normalize(text), cfg)
	require.NoError(t, err1)
	require.NoError(t, err2)
	require.Equal(t, c1, c2)
}

func TestPropertySizeBound(t *testing.T) {
	// Min and overlap must stay below max for the config to validate;
	// overlap is off so Size measures the strategy's own split.
	cfg := NewChunkConfig(WithMaxChunkSize(100), WithMinChunkSize(50), WithOverlapSize(0))
	text := strings.Repeat("word ", 200) + "\n"
	chunks, err := ChunkText(text, cfg)
	require.NoError(t, err)

	for _, c := range chunks {
		if !c.AllowOversize {
			require.LessOrEqual(t, c.Size, cfg.MaxChunkSize)
		} else {
			require.NotEmpty(t, c.OversizeReason)
		}
	}
}

func TestChunkTextRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultChunkConfig()
	cfg.MaxChunkSize = 0
	_, err := ChunkText("hello", cfg)
	require.ErrorIs(t, err, ErrMaxChunkSize)
}
