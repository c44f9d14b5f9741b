package streaming

import (
	"context"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/bmatcuk/doublestar/v4"

	chunker "github.com/asukhodko/dify-markdown-chunker-sub006"
	"github.com/asukhodko/dify-markdown-chunker-sub006/internal/chunklog"
)

// ChunkReader returns a lazy, ordered iterator of chunks read from r,
// one window at a time, so memory stays bounded by streamCfg.BufferSize
// plus its carry-over regardless of r's total size. Range over the
// result with "for chunk, err := range ChunkReader(...)"; a non-nil
// err ends iteration (the loop body sees it exactly once, on the final
// iteration).
func ChunkReader(ctx context.Context, r io.Reader, chunkCfg chunker.ChunkConfig, streamCfg Config) iter.Seq2[chunker.Chunk, error] {
	return func(yield func(chunker.Chunk, error) bool) {
		it := NewIterator(r, chunkCfg, streamCfg)
		for {
			c, ok, err := it.Next(ctx)
			if err != nil {
				yield(chunker.Chunk{}, err)
				return
			}
			if !ok {
				return
			}
			if !yield(c, nil) {
				return
			}
		}
	}
}

// ChunkPath opens the file at path and returns a lazy iterator over
// its chunks, closing the file once iteration ends (whether by
// exhaustion, error, or the caller breaking out of the range early).
func ChunkPath(ctx context.Context, path string, chunkCfg chunker.ChunkConfig, streamCfg Config) iter.Seq2[chunker.Chunk, error] {
	return func(yield func(chunker.Chunk, error) bool) {
		f, err := os.Open(path)
		if err != nil {
			yield(chunker.Chunk{}, fmt.Errorf("streaming: open %s: %w", path, err))
			return
		}
		defer f.Close()

		for c, err := range ChunkReader(ctx, f, chunkCfg, streamCfg) {
			if !yield(c, err) {
				return
			}
			if err != nil {
				return
			}
		}
	}
}

// ChunkGlob returns a lazy iterator over every file matching pattern
// (a doublestar glob, supporting "**" recursive matching), chunked in
// matched-path order. Only one file's window is ever held in memory at
// a time. A read failure on one file is logged and that file is
// skipped rather than ending the whole glob.
func ChunkGlob(ctx context.Context, pattern string, chunkCfg chunker.ChunkConfig, streamCfg Config) iter.Seq2[chunker.Chunk, error] {
	return func(yield func(chunker.Chunk, error) bool) {
		paths, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			yield(chunker.Chunk{}, fmt.Errorf("streaming: glob %s: %w", pattern, err))
			return
		}

		for _, p := range paths {
			for c, chunkErr := range ChunkPath(ctx, p, chunkCfg, streamCfg) {
				if chunkErr != nil {
					chunklog.Errorf("streaming: skipping %s: %v", p, chunkErr)
					break
				}
				if !yield(c, nil) {
					return
				}
			}
		}
	}
}
