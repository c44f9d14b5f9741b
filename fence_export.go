package chunker

import "strings"

// DetectFenceOpen reports whether line opens a fenced code block,
// using the same rule the Analyzer applies during its single-pass
// scan. Exported for the streaming front end's FenceTracker, which
// needs to track fence state across windows without re-running a full
// analysis.
func DetectFenceOpen(line string) (ch byte, length int, ok bool) {
	return parseFenceOpen(strings.TrimSpace(line))
}

// IsFenceClose reports whether line closes a fence opened with ch and
// minLen.
func IsFenceClose(line string, ch byte, minLen int) bool {
	return isFenceCloser(strings.TrimSpace(line), ch, minLen)
}

// DetectATXHeader reports whether line is an ATX header line, per the
// same rule the Analyzer applies.
func DetectATXHeader(line string) (level int, text string, ok bool) {
	return parseATXHeader(strings.TrimSpace(line))
}

// IsBlankLine reports whether line contains only whitespace.
func IsBlankLine(line string) bool {
	return isBlank(line)
}
