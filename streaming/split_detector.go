package streaming

import chunker "github.com/asukhodko/dify-markdown-chunker-sub006"

// SplitDetector finds a safe index within a window's lines at which
// to stop processing and carry the remainder into the next window.
type SplitDetector struct{}

// FindSplit returns an index i, 0 <= i <= len(buffer), such that
// buffer[:i] is safe to hand to the core pipeline and buffer[i:]
// should be carried forward. It searches from
// Config.SafeSplitThreshold * len(buffer) onward, preferring in order:
//  1. the line before an ATX header outside any fence
//  2. the line after a blank-line paragraph break outside any fence
//  3. any line outside a fence
//  4. the threshold index itself, if the tail is entirely fenced
func (SplitDetector) FindSplit(buffer []string, cfg Config) int {
	n := len(buffer)
	if n == 0 {
		return 0
	}

	threshold := int(float64(n) * cfg.SafeSplitThreshold)
	if threshold < 0 {
		threshold = 0
	}
	if threshold >= n {
		threshold = n - 1
	}

	inside := fenceStates(buffer)

	for i := threshold; i < n; i++ {
		if inside[i] {
			continue
		}
		if _, _, ok := chunker.DetectATXHeader(buffer[i]); ok {
			return i
		}
	}

	for i := threshold; i < n; i++ {
		if inside[i] {
			continue
		}
		if i > 0 && chunker.IsBlankLine(buffer[i-1]) {
			return i
		}
	}

	for i := threshold; i < n; i++ {
		if !inside[i] {
			return i
		}
	}

	return threshold
}
