package streaming

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"

	chunker "github.com/asukhodko/dify-markdown-chunker-sub006"
	"github.com/asukhodko/dify-markdown-chunker-sub006/internal/chunklog"
)

// Iterator yields chunks from a source one window at a time, running
// the core pipeline (Orchestrator.Run) over each window and carrying
// a tail of unprocessed lines forward across window boundaries.
//
// A single Iterator is not safe for concurrent use.
type Iterator struct {
	reader    *WindowReader
	detector  SplitDetector
	chunkCfg  chunker.ChunkConfig
	streamCfg Config
	runID     string

	carry       []string
	pending     []chunker.Chunk
	pendingNext int
	windowIndex int
	chunkIndex  int
	done        bool
	err         error
}

// NewIterator builds an Iterator reading from r. chunkCfg governs the
// chunking semantics applied to each window; streamCfg governs
// windowing and split behavior.
func NewIterator(r io.Reader, chunkCfg chunker.ChunkConfig, streamCfg Config) *Iterator {
	return &Iterator{
		reader:    NewWindowReader(r, streamCfg),
		chunkCfg:  chunkCfg,
		streamCfg: streamCfg,
		runID:     uuid.NewString(),
	}
}

// Next returns the next chunk, or ok=false when the source is
// exhausted (check Err for a non-nil error in that case).
func (it *Iterator) Next(ctx context.Context) (chunk chunker.Chunk, ok bool, err error) {
	for {
		if it.pendingNext < len(it.pending) {
			c := it.pending[it.pendingNext]
			it.pendingNext++
			return c, true, nil
		}
		if it.done {
			return chunker.Chunk{}, false, it.err
		}
		select {
		case <-ctx.Done():
			it.done = true
			it.err = ctx.Err()
			return chunker.Chunk{}, false, it.err
		default:
		}
		if !it.advance() {
			return chunker.Chunk{}, false, it.err
		}
	}
}

// Err returns the error, if any, that stopped iteration.
func (it *Iterator) Err() error {
	return it.err
}

// advance reads and processes the next window, populating it.pending.
// It returns false when there is nothing further to process (either
// an error occurred, or the source and carry are both exhausted).
func (it *Iterator) advance() bool {
	newLines, bytesTotal, exhausted, err := it.reader.Next()
	if err != nil {
		it.err = err
		it.done = true
		return false
	}

	if len(newLines) == 0 && exhausted {
		if len(it.carry) == 0 {
			it.done = true
			return false
		}
		it.process(it.carry, bytesTotal)
		it.carry = nil
		it.done = true
		return it.pendingNext < len(it.pending)
	}

	combined := make([]string, 0, len(it.carry)+len(newLines))
	combined = append(combined, it.carry...)
	combined = append(combined, newLines...)

	if exhausted {
		it.process(combined, bytesTotal)
		it.carry = nil
		it.done = true
		return it.pendingNext < len(it.pending)
	}

	splitIdx := it.detector.FindSplit(combined, it.streamCfg)
	if splitIdx < it.streamCfg.OverlapLines && len(combined) > it.streamCfg.OverlapLines {
		// SplitDetector found a split point earlier than OverlapLines;
		// processing that little would make almost no forward progress
		// per window. Push splitIdx out to the OverlapLines floor so
		// every window processes at least that many lines, at the cost
		// of a correspondingly smaller carry forwarded to the next one.
		splitIdx = it.streamCfg.OverlapLines
	}

	it.checkMemoryAdvisory(combined)
	it.process(combined[:splitIdx], bytesTotal)
	it.carry = append([]string(nil), combined[splitIdx:]...)
	// A window that yields no chunks (e.g. only blank lines before the
	// split) is not the end of the source; keep going while lines arrive.
	return len(newLines) > 0 || it.pendingNext < len(it.pending)
}

// checkMemoryAdvisory logs a warning when a window's in-flight lines
// grow past streamCfg.MaxMemoryMB. MaxMemoryMB is advisory only; this
// never trims lines or blocks processing.
func (it *Iterator) checkMemoryAdvisory(lines []string) {
	if it.streamCfg.MaxMemoryMB <= 0 {
		return
	}
	var size int
	for _, l := range lines {
		size += len(l) + 1
	}
	limit := it.streamCfg.MaxMemoryMB * 1024 * 1024
	if size > limit {
		chunklog.Warnf("stream %s window %d: in-flight window is %d bytes, past the advisory %dMB ceiling",
			it.runID, it.windowIndex+1, size, it.streamCfg.MaxMemoryMB)
	}
}

func (it *Iterator) process(lines []string, bytesTotal int64) {
	it.windowIndex++
	chunklog.Debugf("stream %s window %d: %d bytes processed, split index %d",
		it.runID, it.windowIndex, bytesTotal, len(lines))
	text := strings.Join(lines, "\n")
	if strings.TrimSpace(text) == "" {
		it.pending = nil
		it.pendingNext = 0
		return
	}

	chunks, analysis, runErr := chunker.NewOrchestrator().Run(text, it.chunkCfg)
	if runErr != nil {
		it.err = runErr
		it.done = true
		return
	}
	if analysis != nil && len(analysis.Warnings) > 0 {
		chunklog.Warnf("stream %s window %d: %d parse warnings", it.runID, it.windowIndex, len(analysis.Warnings))
	}

	for i := range chunks {
		chunks[i].StreamWindowIndex = it.windowIndex
		chunks[i].StreamChunkIndex = it.chunkIndex
		chunks[i].BytesProcessed = bytesTotal
		it.chunkIndex++
	}
	it.pending = chunks
	it.pendingNext = 0
}
