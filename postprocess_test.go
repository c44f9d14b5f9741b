package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMergeUndersizeMergesWithNeighbor(t *testing.T) {
	cfg := NewChunkConfig(WithMinChunkSize(50), WithMaxChunkSize(2000))
	chunks := []Chunk{
		{Content: "a long enough first chunk of prose to stay above the floor on its own.", StartLine: 1, EndLine: 1},
		{Content: "short", StartLine: 2, EndLine: 2},
	}
	merged := mergeUndersize(chunks, cfg)

	require.Len(t, merged, 1)
	require.Contains(t, merged[0].Content, "short")
	require.Equal(t, 2, merged[0].EndLine)
}

func TestMergeUndersizeLeavesAtomicNeighborAlone(t *testing.T) {
	cfg := NewChunkConfig(WithMinChunkSize(50), WithMaxChunkSize(2000))
	chunks := []Chunk{
		{Content: "```\ncode\n```\n", atomic: true, StartLine: 1, EndLine: 3},
		{Content: "short", StartLine: 4, EndLine: 4},
	}
	merged := mergeUndersize(chunks, cfg)

	require.Len(t, merged, 2)
	require.True(t, merged[1].undersizeUnmerged)
}

func TestApplyOverlapSplicesWordBoundary(t *testing.T) {
	cfg := NewChunkConfig(WithOverlapSize(10))
	chunks := []Chunk{
		{Content: "the quick brown fox jumps"},
		{Content: "over the lazy dog today"},
	}
	applyOverlap(chunks, cfg)

	require.Contains(t, chunks[1].Content, "fox jumps")
	require.True(t, strings.HasPrefix(chunks[1].Content, "fox jumps"))
	require.Greater(t, chunks[0].OverlapNext, 0)
	require.Greater(t, chunks[1].OverlapPrev, 0)
}

func TestApplyOverlapSkipsAtomicNeighbors(t *testing.T) {
	cfg := NewChunkConfig(WithOverlapSize(10))
	chunks := []Chunk{
		{Content: "```\ncode\n```\n", atomic: true},
		{Content: "plain text after the block"},
	}
	applyOverlap(chunks, cfg)

	require.Equal(t, "```\ncode\n```\n", chunks[0].Content)
	require.Equal(t, 0, chunks[1].OverlapPrev)
}

func TestEnrichMetadataSetsIndexAndSize(t *testing.T) {
	chunks := []Chunk{{Content: "abc"}, {Content: "defgh"}}
	enrichMetadata(chunks, StrategyFallback, DefaultChunkConfig())

	require.Equal(t, 0, chunks[0].ChunkIndex)
	require.Equal(t, 1, chunks[1].ChunkIndex)
	require.Equal(t, 3, chunks[0].Size)
	require.Equal(t, 5, chunks[1].Size)
	require.Equal(t, StrategyFallback, chunks[0].Strategy)
}

func TestValidateFenceBalanceFlagsAtomicMismatch(t *testing.T) {
	c := Chunk{Content: "```\nunbalanced", atomic: true}
	validateFenceBalance(&c)
	require.True(t, c.FenceBalanceError)
}

func TestValidateFenceBalanceExemptsUnclosedFence(t *testing.T) {
	c := Chunk{Content: "```\nunbalanced", atomic: true, fenceExempt: true}
	validateFenceBalance(&c)
	require.False(t, c.FenceBalanceError)
}

func TestValidateFenceBalanceFlagsStrayFenceInTextChunk(t *testing.T) {
	c := Chunk{Content: "```\nleaked into a text chunk somehow\n```\n", atomic: false}
	validateFenceBalance(&c)
	require.True(t, c.FenceBalanceError)
}

func TestValidateInvariantsFlagsOversizeWithoutAllowance(t *testing.T) {
	cfg := NewChunkConfig(WithMaxChunkSize(5))
	chunks := []Chunk{{Content: "way too long", Size: 12, StartLine: 1, EndLine: 1}}
	validateInvariants(chunks, cfg, "way too long")
	require.NotEmpty(t, chunks[0].Warnings())
}

func TestValidateCoverageWithinToleranceIsSilent(t *testing.T) {
	cfg := DefaultChunkConfig()
	chunks := []Chunk{{Content: "alpha beta gamma"}}
	validateCoverage(chunks, cfg, "alpha beta gamma")
	require.Empty(t, chunks[0].Warnings())
}

func TestValidateCoverageFlagsDrift(t *testing.T) {
	cfg := DefaultChunkConfig()
	chunks := []Chunk{{Content: "alpha beta"}}
	validateCoverage(chunks, cfg, "alpha beta gamma delta epsilon")
	require.NotEmpty(t, chunks[0].Warnings())
}

func TestValidateCoverageStripsRecordedOverlap(t *testing.T) {
	cfg := DefaultChunkConfig()
	// chunks[0]'s content already carries its own text plus a 5-char
	// overlap_next splice from chunks[1]; stripping OverlapNext before
	// counting should not double-count "gamma".
	chunks := []Chunk{
		{Content: "alpha beta gamma", OverlapNext: 5},
		{Content: "gamma delta"},
	}
	validateCoverage(chunks, cfg, "alpha beta gamma delta")
	require.Empty(t, chunks[0].Warnings())
}
