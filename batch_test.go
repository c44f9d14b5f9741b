package chunker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBatchChunkPreservesOrder(t *testing.T) {
	docs := []string{
		"# Doc One\n\nbody one.\n",
		"# Doc Two\n\nbody two.\n",
		"",
		"plain paragraph with no headers.\n",
	}
	// One header per document: lower StructureThreshold so the structural
	// strategy (and its header paths) applies.
	results := BatchChunk(docs, NewChunkConfig(WithStructureThreshold(1)))

	require.Len(t, results, 4)
	require.NoError(t, results[0].Err)
	require.NotEmpty(t, results[0].Chunks)
	require.Equal(t, "/Doc One", results[0].Chunks[0].HeaderPath)
	require.Equal(t, "/Doc Two", results[1].Chunks[0].HeaderPath)
	require.Empty(t, results[2].Chunks)
	require.NotEmpty(t, results[3].Chunks)
}

func TestBatchChunkEmptyInput(t *testing.T) {
	results := BatchChunk(nil, DefaultChunkConfig())
	require.Empty(t, results)
}

func TestBatchChunkPropagatesConfigError(t *testing.T) {
	cfg := DefaultChunkConfig()
	cfg.MaxChunkSize = -1
	results := BatchChunk([]string{"hello"}, cfg)

	require.Len(t, results, 1)
	require.Error(t, results[0].Err)
}
