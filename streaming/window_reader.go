package streaming

import (
	"bufio"
	"io"
)

// maxLineBytes bounds a single line the scanner will accept; Markdown
// documents with pathologically long lines (e.g. a minified table)
// still need a ceiling so one bad line can't force unbounded buffering.
const maxLineBytes = 10 * 1024 * 1024

// WindowReader accumulates lines from an underlying reader until their
// combined size reaches Config.BufferSize, then emits them as one
// window. It carries no overlap or split logic of its own; that is
// the Iterator's job, since it needs to reason across window
// boundaries.
type WindowReader struct {
	scanner    *bufio.Scanner
	cfg        Config
	bytesTotal int64
	exhausted  bool
}

// NewWindowReader wraps r for line-at-a-time windowed reading.
func NewWindowReader(r io.Reader, cfg Config) *WindowReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &WindowReader{scanner: scanner, cfg: cfg}
}

// Next returns the next batch of newly read lines (without any
// carry-over from a previous call), the cumulative byte count read
// from the source so far, and whether the source is exhausted. Once
// exhausted is true, Next returns no further lines.
func (w *WindowReader) Next() (lines []string, bytesTotal int64, exhausted bool, err error) {
	if w.exhausted {
		return nil, w.bytesTotal, true, nil
	}

	var buf []string
	size := 0
	for size < w.cfg.BufferSize {
		if !w.scanner.Scan() {
			w.exhausted = true
			break
		}
		line := w.scanner.Text()
		buf = append(buf, line)
		size += len(line) + 1
		w.bytesTotal += int64(len(line) + 1)
	}
	if scanErr := w.scanner.Err(); scanErr != nil {
		return nil, w.bytesTotal, true, scanErr
	}

	return buf, w.bytesTotal, w.exhausted, nil
}
