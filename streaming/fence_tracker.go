package streaming

import chunker "github.com/asukhodko/dify-markdown-chunker-sub006"

// FenceTracker replays the same fence open/close rule the Analyzer
// uses, one line at a time, so the streaming front end can tell
// whether a candidate split point falls inside an open fenced code
// block spanning a window boundary.
type FenceTracker struct {
	inFence bool
	ch      byte
	length  int
}

// Observe updates the tracker's state with the next line of input.
func (f *FenceTracker) Observe(line string) {
	if f.inFence {
		if chunker.IsFenceClose(line, f.ch, f.length) {
			f.inFence = false
		}
		return
	}
	if ch, length, ok := chunker.DetectFenceOpen(line); ok {
		f.inFence = true
		f.ch = ch
		f.length = length
	}
}

// IsInsideFence reports whether the tracker is currently inside an
// unclosed fence, after the most recent Observe call.
func (f *FenceTracker) IsInsideFence() bool {
	return f.inFence
}

// fenceStates returns, for each line in buffer, whether that line is
// part of a fenced code block's span (including its opening and
// closing delimiter lines themselves — splitting exactly on either
// would still break the block apart).
func fenceStates(buffer []string) []bool {
	inside := make([]bool, len(buffer))
	var tracker FenceTracker
	for i, line := range buffer {
		wasInside := tracker.IsInsideFence()
		tracker.Observe(line)
		inside[i] = wasInside || tracker.IsInsideFence()
	}
	return inside
}
