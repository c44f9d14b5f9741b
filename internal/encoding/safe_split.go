// Package encoding provides UTF-8-safe string slicing helpers used by
// the chunking strategies and post-processor so that no chunk boundary
// ever lands inside a multi-byte rune.
package encoding

import "unicode/utf8"

// RuneCount returns the number of runes in s. Used in place of len(s)
// everywhere a character count (rather than a byte count) is needed,
// since chunk sizes are specified in characters.
func RuneCount(s string) int {
	return utf8.RuneCountInString(s)
}

// IsValidUTF8 reports whether s is entirely well-formed UTF-8.
func IsValidUTF8(s string) bool {
	return utf8.ValidString(s)
}

// ValidateUTF8 strips any invalid UTF-8 byte sequences from s, returning
// only the well-formed runes concatenated together.
func ValidateUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r != utf8.RuneError {
			out = append(out, r)
		}
	}
	return string(out)
}

// splitByRunes returns s as a slice of single-rune strings.
func splitByRunes(s string) []string {
	out := make([]string, 0, utf8.RuneCountInString(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// charToBytePos converts a rune-index position in s to the
// corresponding byte offset. A negative charPos returns -1. A charPos
// at or beyond the rune count returns len(s).
func charToBytePos(s string, charPos int) int {
	if charPos < 0 {
		return -1
	}
	if charPos == 0 {
		return 0
	}
	count := 0
	for i := range s {
		if count == charPos {
			return i
		}
		count++
	}
	return len(s)
}

// isValidUTF8Boundary reports whether byte offset pos in s lies on a
// rune boundary (true also for pos<=0 or pos>=len(s)).
func isValidUTF8Boundary(s string, pos int) bool {
	if pos <= 0 || pos >= len(s) {
		return true
	}
	return utf8.RuneStart(s[pos])
}

// findSafeSplitPoint returns the largest byte offset <= len(s) that is
// both a valid UTF-8 boundary and corresponds to approximately
// targetCharPos characters into s. targetCharPos is clamped to
// [0, rune count].
func findSafeSplitPoint(s string, targetCharPos int) int {
	if targetCharPos <= 0 {
		return 0
	}
	pos := charToBytePos(s, targetCharPos)
	if pos > len(s) {
		pos = len(s)
	}
	for pos > 0 && !isValidUTF8Boundary(s, pos) {
		pos--
	}
	return pos
}

// SafeSplit splits s at rune position pos into (left, right), clamping
// pos into [0, rune count] so the split never lands mid-rune.
func SafeSplit(s string, pos int) (string, string) {
	if s == "" {
		return "", ""
	}
	if pos < 0 {
		pos = 0
	}
	bytePos := findSafeSplitPoint(s, pos)
	return s[:bytePos], s[bytePos:]
}

// SafeSplitBySize splits s into consecutive chunks of at most size
// runes each. size<=0 returns s unchanged as the only element.
func SafeSplitBySize(s string, size int) []string {
	if size <= 0 {
		return []string{s}
	}
	if s == "" {
		return []string{""}
	}
	var out []string
	rest := s
	for RuneCount(rest) > size {
		left, right := SafeSplit(rest, size)
		out = append(out, left)
		rest = right
	}
	out = append(out, rest)
	return out
}

// SafeSplitBySeparator splits s on every occurrence of sep. An empty
// sep splits s into individual runes (like splitByRunes).
func SafeSplitBySeparator(s string, sep string) []string {
	if sep == "" {
		runes := splitByRunes(s)
		if len(runes) == 0 {
			return []string{}
		}
		return runes
	}
	var out []string
	rest := s
	for {
		idx := indexString(rest, sep)
		if idx < 0 {
			out = append(out, rest)
			return out
		}
		out = append(out, rest[:idx])
		rest = rest[idx+len(sep):]
	}
}

func indexString(s, sub string) int {
	n, m := len(s), len(sub)
	if m == 0 {
		return 0
	}
	for i := 0; i+m <= n; i++ {
		if s[i:i+m] == sub {
			return i
		}
	}
	return -1
}

// SafeSubstring returns the runes of text in [start, end), with end
// clamped to the rune count; a negative start, a start at or past the
// rune count, or an empty or inverted range returns "".
func SafeSubstring(text string, start, end int) string {
	length := RuneCount(text)
	if start < 0 || start >= end {
		return ""
	}
	if start >= length {
		return ""
	}
	if end > length {
		end = length
	}
	startByte := findSafeSplitPoint(text, start)
	endByte := findSafeSplitPoint(text, end)
	if startByte >= endByte {
		return ""
	}
	return text[startByte:endByte]
}

// SafeOverlap returns the last n runes of text, or text unchanged if it
// has n or fewer runes. n<=0 returns "".
func SafeOverlap(text string, n int) string {
	if n <= 0 {
		return ""
	}
	count := RuneCount(text)
	if n >= count {
		return text
	}
	_, right := SafeSplit(text, count-n)
	return right
}

// TailWords returns a suffix of text at most maxChars runes long, then
// drops the leading partial word so the result starts right after a
// whitespace boundary. text no longer than maxChars is returned whole;
// a window holding no whitespace boundary yields "". Used to build
// overlap_prev without cutting a word in half.
func TailWords(text string, maxChars int) string {
	tail := SafeOverlap(text, maxChars)
	if tail == "" || tail == text {
		return tail
	}
	if before, _ := utf8.DecodeLastRuneInString(text[:len(text)-len(tail)]); isSpace(before) {
		return tail
	}
	for i, r := range tail {
		if isSpace(r) {
			_, right := splitByteIndex(tail, i+runeLen(r))
			return right
		}
	}
	return ""
}

// HeadWords returns a prefix of text at most maxChars runes long, then
// drops the trailing partial word so the result ends right before a
// whitespace boundary (or is empty, if no such boundary exists within
// the window). Used to build overlap_next without cutting a word in
// half.
func HeadWords(text string, maxChars int) string {
	head, rest := SafeSplit(text, maxChars)
	if rest == "" {
		return head
	}
	if after, _ := utf8.DecodeRuneInString(rest); isSpace(after) {
		return head
	}
	lastSpace := -1
	for i, r := range head {
		if isSpace(r) {
			lastSpace = i
		}
	}
	if lastSpace < 0 {
		return ""
	}
	left, _ := splitByteIndex(head, lastSpace)
	return left
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

func runeLen(r rune) int {
	return len(string(r))
}

func splitByteIndex(s string, byteIdx int) (string, string) {
	if byteIdx < 0 {
		byteIdx = 0
	}
	if byteIdx > len(s) {
		byteIdx = len(s)
	}
	return s[:byteIdx], s[byteIdx:]
}
