package chunker

import (
	"sort"
	"strings"

	"github.com/asukhodko/dify-markdown-chunker-sub006/internal/encoding"
)

// lineRange is an inclusive, 0-based line index span.
type lineRange struct {
	Start, End int
}

// atomicRange is a fenced-code or table block expressed as a 0-based
// inclusive line span, ready to be walked alongside the gaps around it.
type atomicRange struct {
	Start, End int
	Kind       ContentType // ContentCode or ContentTable
	Language   string
	Unclosed   bool
}

// buildAtomicRanges merges the Analyzer's fenced blocks and tables into
// a single list ordered by document position. The two source lists
// cannot overlap by construction (the Analyzer never recognizes a
// table inside a fence), so start lines are distinct and a plain sort on
// start line is sufficient.
func buildAtomicRanges(analysis *ContentAnalysis) []atomicRange {
	ranges := make([]atomicRange, 0, len(analysis.FencedBlocks)+len(analysis.Tables))
	for _, f := range analysis.FencedBlocks {
		ranges = append(ranges, atomicRange{
			Start:    f.StartLine - 1,
			End:      f.EndLine - 1,
			Kind:     ContentCode,
			Language: f.Language,
			Unclosed: f.Unclosed,
		})
	}
	for _, tb := range analysis.Tables {
		ranges = append(ranges, atomicRange{
			Start: tb.StartLine - 1,
			End:   tb.EndLine - 1,
			Kind:  ContentTable,
		})
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Start < ranges[j].Start })
	return ranges
}

// rangeContent reconstructs the exact original substring spanning
// 0-based inclusive line indices [startIdx, endIdx], trailing newline
// included or omitted exactly as it appears in text.
func rangeContent(text string, starts []int, startIdx, endIdx int) string {
	if startIdx > endIdx {
		return ""
	}
	return text[starts[startIdx]:lineEndByte(text, starts, endIdx)]
}

func runeCountRange(text string, starts []int, startIdx, endIdx int) int {
	return encoding.RuneCount(rangeContent(text, starts, startIdx, endIdx))
}

// makeAtomicChunk builds the single chunk representing one fenced code
// block or table, per spec.md §4.3 step 4.
func makeAtomicChunk(text string, starts []int, r atomicRange, cfg ChunkConfig) Chunk {
	content := rangeContent(text, starts, r.Start, r.End)
	size := encoding.RuneCount(content)
	oversize := size > cfg.MaxChunkSize

	var reason OversizeReason
	if oversize {
		if r.Kind == ContentCode {
			reason = OversizeCodeBlock
		} else {
			reason = OversizeTable
		}
	}

	return Chunk{
		Content:        content,
		StartLine:      r.Start + 1,
		EndLine:        r.End + 1,
		ContentType:    r.Kind,
		Language:       r.Language,
		AllowOversize:  oversize,
		OversizeReason: reason,
		atomic:         true,
		fenceExempt:    r.Kind == ContentCode && r.Unclosed,
	}
}

// splitParagraphs splits the inclusive line range [startIdx, endIdx]
// into maximal runs of non-blank lines, dropping the separating blank
// lines (permitted by I1's whitespace-trim allowance at boundaries).
func splitParagraphs(lines []string, startIdx, endIdx int) []lineRange {
	var out []lineRange
	i := startIdx
	for i <= endIdx {
		for i <= endIdx && isBlank(lines[i]) {
			i++
		}
		if i > endIdx {
			break
		}
		j := i
		for j <= endIdx && !isBlank(lines[j]) {
			j++
		}
		out = append(out, lineRange{Start: i, End: j - 1})
		i = j
	}
	return out
}

// packParagraphs greedily packs paragraphs into chunks up to
// cfg.MaxChunkSize characters each (spec.md §4.3 step 3 / §4.5). A
// paragraph that alone exceeds the limit is cascaded through
// splitOversizedRange instead of being packed.
func packParagraphs(text string, starts []int, paragraphs []lineRange, cfg ChunkConfig) []Chunk {
	var out []Chunk
	i := 0
	for i < len(paragraphs) {
		p := paragraphs[i]
		size := runeCountRange(text, starts, p.Start, p.End)
		if size > cfg.MaxChunkSize {
			out = append(out, splitOversizedRange(text, starts, p, cfg)...)
			i++
			continue
		}

		end := p.End
		j := i + 1
		for j < len(paragraphs) {
			candidate := runeCountRange(text, starts, p.Start, paragraphs[j].End)
			if candidate > cfg.MaxChunkSize {
				break
			}
			end = paragraphs[j].End
			j++
		}

		content := rangeContent(text, starts, p.Start, end)
		out = append(out, Chunk{
			Content:     content,
			StartLine:   p.Start + 1,
			EndLine:     end + 1,
			ContentType: classifyText(content),
		})
		i = j
	}
	return out
}

// classifyText reports content_type=mixed when content carries more
// than one inline code span, per spec.md §4.3's heuristic, else text.
func classifyText(content string) ContentType {
	if countInlineCodeSpans(content) > 1 {
		return ContentMixed
	}
	return ContentText
}

func countInlineCodeSpans(content string) int {
	return strings.Count(content, "`") / 2
}

// splitOversizedRange cascades a single over-limit unit (a paragraph,
// or later a structural section) through sentence splitting, then word
// splitting, then a last-resort raw character split, per spec.md §4.4
// step 5 / §4.5. All resulting chunks report the same originating line
// range; only their content differs.
func splitOversizedRange(text string, starts []int, r lineRange, cfg ChunkConfig) []Chunk {
	content := rangeContent(text, starts, r.Start, r.End)
	pieces := splitBySentenceThenWord(content, cfg.MaxChunkSize)

	chunks := make([]Chunk, 0, len(pieces))
	for _, piece := range pieces {
		chunks = append(chunks, Chunk{
			Content:       piece,
			StartLine:     r.Start + 1,
			EndLine:       r.End + 1,
			ContentType:   classifyText(piece),
			AllowOversize: encoding.RuneCount(piece) > cfg.MaxChunkSize,
		})
	}
	return chunks
}

func splitBySentenceThenWord(content string, max int) []string {
	if encoding.RuneCount(content) <= max {
		return []string{content}
	}

	var pieces []string
	var cur strings.Builder
	curLen := 0
	flush := func() {
		if curLen > 0 {
			pieces = append(pieces, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, s := range splitSentences(content) {
		sLen := encoding.RuneCount(s)
		if sLen > max {
			flush()
			pieces = append(pieces, splitByWords(s, max)...)
			continue
		}
		if curLen+sLen > max {
			flush()
		}
		cur.WriteString(s)
		curLen += sLen
	}
	flush()

	if len(pieces) == 0 {
		return []string{content}
	}
	return pieces
}

// splitSentences splits s after '.', '!', or '?' followed by whitespace
// or end of string, consuming the separating whitespace.
func splitSentences(s string) []string {
	runes := []rune(s)
	n := len(runes)
	var out []string
	start := 0
	i := 0
	for i < n {
		r := runes[i]
		if r == '.' || r == '!' || r == '?' {
			if i+1 >= n || isSpaceRune(runes[i+1]) {
				out = append(out, string(runes[start:i+1]))
				j := i + 1
				for j < n && isSpaceRune(runes[j]) {
					j++
				}
				start = j
				i = j
				continue
			}
		}
		i++
	}
	if start < n {
		out = append(out, string(runes[start:]))
	}
	if len(out) == 0 {
		return []string{s}
	}
	return out
}

// splitByWords packs whitespace-delimited words greedily up to max
// characters; a single word still over max falls back to a raw
// rune-count split as the last resort.
func splitByWords(s string, max int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return encoding.SafeSplitBySize(s, max)
	}

	var out []string
	var cur []string
	curLen := 0
	flush := func() {
		if len(cur) > 0 {
			out = append(out, strings.Join(cur, " "))
			cur = nil
			curLen = 0
		}
	}

	for _, w := range words {
		wLen := encoding.RuneCount(w)
		if wLen > max {
			flush()
			out = append(out, encoding.SafeSplitBySize(w, max)...)
			continue
		}
		sep := 0
		if curLen > 0 {
			sep = 1
		}
		if curLen+sep+wLen > max {
			flush()
			sep = 0
		}
		cur = append(cur, w)
		curLen += sep + wLen
	}
	flush()
	return out
}

func isSpaceRune(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}
