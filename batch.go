package chunker

import (
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/asukhodko/dify-markdown-chunker-sub006/internal/chunklog"
)

// BatchResult holds one document's outcome from BatchChunk.
type BatchResult struct {
	Chunks []Chunk
	Err    error
}

// BatchChunk runs ChunkText over docs concurrently through a bounded
// worker pool, since each document's pipeline run is independent of
// every other (spec.md §5's concurrency model). Results preserve the
// input order regardless of completion order.
func BatchChunk(docs []string, cfg ChunkConfig) []BatchResult {
	results := make([]BatchResult, len(docs))
	if len(docs) == 0 {
		return results
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > len(docs) {
		workers = len(docs)
	}
	if workers < 1 {
		workers = 1
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		chunklog.Warnf("batch chunk: failed to create worker pool, falling back to sequential: %v", err)
		for i, doc := range docs {
			chunks, chunkErr := ChunkText(doc, cfg)
			results[i] = BatchResult{Chunks: chunks, Err: chunkErr}
		}
		return results
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, doc := range docs {
		i, doc := i, doc
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			chunks, chunkErr := ChunkText(doc, cfg)
			results[i] = BatchResult{Chunks: chunks, Err: chunkErr}
		})
		if submitErr != nil {
			wg.Done()
			chunks, chunkErr := ChunkText(doc, cfg)
			results[i] = BatchResult{Chunks: chunks, Err: chunkErr}
		}
	}
	wg.Wait()

	return results
}
