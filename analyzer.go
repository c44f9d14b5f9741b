package chunker

import (
	"strings"

	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	gtext "github.com/yuin/goldmark/text"

	"github.com/asukhodko/dify-markdown-chunker-sub006/internal/chunklog"
	"github.com/asukhodko/dify-markdown-chunker-sub006/internal/encoding"
)

// Analyzer performs the single-pass structural scan described in
// spec.md §4.1: it extracts fenced code blocks, ATX headers, GFM
// tables, and the preamble region, and computes the ratios the Arbiter
// uses to choose a strategy. Analyzer holds no state and is safe for
// concurrent reuse.
type Analyzer struct{}

// NewAnalyzer returns a ready-to-use Analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze scans text (normalizing line endings first, so Analyze can be
// called directly on raw input) and returns the resulting
// ContentAnalysis.
func (a *Analyzer) Analyze(text string) *ContentAnalysis {
	text = normalize(text)
	lines, starts := splitLines(text)
	n := len(lines)

	analysis := &ContentAnalysis{
		TotalChars: encoding.RuneCount(text),
		TotalLines: n,
	}

	inFence := false
	var fenceChar byte
	var fenceLen int
	var fenceStartLineIdx int
	var fenceLang string
	var fenceContentStart int

	i := 0
	for i < n {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if inFence {
			if isFenceCloser(trimmed, fenceChar, fenceLen) {
				contentEnd := starts[i]
				analysis.FencedBlocks = append(analysis.FencedBlocks, FencedBlock{
					Language:  fenceLang,
					StartLine: fenceStartLineIdx + 1,
					EndLine:   i + 1,
					StartByte: fenceContentStart,
					EndByte:   contentEnd,
					FenceChar: fenceChar,
					FenceLen:  fenceLen,
				})
				inFence = false
			} else if _, _, ok := parseATXHeader(trimmed); ok {
				analysis.Warnings = append(analysis.Warnings, ParseWarning{
					Line:    i + 1,
					Message: "header-like line inside a fenced code block; ignored as a header",
				})
			}
			i++
			continue
		}

		if ch, runLen, ok := parseFenceOpen(trimmed); ok {
			inFence = true
			fenceChar = ch
			fenceLen = runLen
			fenceStartLineIdx = i
			fenceLang = strings.TrimSpace(trimmed[runLen:])
			fenceContentStart = lineEndByte(text, starts, i)
			i++
			continue
		}

		if level, headerText, ok := parseATXHeader(trimmed); ok {
			analysis.Headers = append(analysis.Headers, Header{
				Level: level,
				Text:  headerText,
				Line:  i + 1,
				Byte:  starts[i],
			})
			i++
			continue
		}

		if looksLikePipeRow(trimmed) && i+1 < n {
			headerCells := len(splitTableRow(trimmed))
			sepCells, sepOK := parseSeparatorRow(strings.TrimSpace(lines[i+1]))
			if sepOK && sepCells == headerCells {
				j := i + 2
				for j < n && looksLikePipeRow(strings.TrimSpace(lines[j])) {
					j++
				}
				analysis.Tables = append(analysis.Tables, TableBlock{
					StartLine: i + 1,
					EndLine:   j,
					Columns:   headerCells,
					Rows:      j - (i + 2),
				})
				i = j
				continue
			}
			if sepOK {
				analysis.Warnings = append(analysis.Warnings, ParseWarning{
					Line:    i + 1,
					Message: "table separator cell count does not match header row; treated as plain text",
				})
			}
		}

		i++
	}

	if inFence {
		analysis.FencedBlocks = append(analysis.FencedBlocks, FencedBlock{
			Language:  fenceLang,
			StartLine: fenceStartLineIdx + 1,
			EndLine:   n,
			StartByte: fenceContentStart,
			EndByte:   len(text),
			FenceChar: fenceChar,
			FenceLen:  fenceLen,
			Unclosed:  true,
		})
		analysis.Warnings = append(analysis.Warnings, ParseWarning{
			Line:    fenceStartLineIdx + 1,
			Message: "fenced code block never closed; treated as closed at end of document",
		})
	}

	analysis.CodeBlockCount = len(analysis.FencedBlocks)
	analysis.HeaderCount = len(analysis.Headers)
	analysis.TableCount = len(analysis.Tables)
	for _, h := range analysis.Headers {
		if h.Level > analysis.MaxHeaderDepth {
			analysis.MaxHeaderDepth = h.Level
		}
	}

	var codeChars int
	for _, f := range analysis.FencedBlocks {
		codeChars += encoding.RuneCount(text[f.StartByte:f.EndByte])
	}
	if analysis.TotalChars > 0 {
		analysis.CodeRatio = float64(codeChars) / float64(analysis.TotalChars)
	}

	analyzePreamble(analysis, lines)
	crossCheckHeaders(text, analysis)

	return analysis
}

// crossCheckHeaders re-parses text with goldmark's CommonMark AST
// and compares its heading count against the hand-rolled ATX scan
// above. The two scanners disagree in one legitimate case goldmark
// handles and the byte-scanner deliberately doesn't: Setext headers
// ("Title\n====="). A mismatch is logged, not treated as an error —
// the hand-rolled scan remains authoritative for line/byte bookkeeping,
// since goldmark's AST doesn't expose the raw line ranges this package
// needs for exact content reconstruction.
func crossCheckHeaders(text string, analysis *ContentAnalysis) {
	doc := goldmark.New().Parser().Parse(gtext.NewReader([]byte(text)))

	var astHeadings int
	err := gast.Walk(doc, func(n gast.Node, entering bool) (gast.WalkStatus, error) {
		if entering {
			if _, ok := n.(*gast.Heading); ok {
				astHeadings++
			}
		}
		return gast.WalkContinue, nil
	})
	if err != nil {
		chunklog.Debugf("header cross-check: goldmark walk failed: %v", err)
		return
	}

	if astHeadings != analysis.HeaderCount {
		chunklog.Debugf("header cross-check: goldmark found %d heading(s), ATX scan found %d (likely Setext headers, out of scope)", astHeadings, analysis.HeaderCount)
	}
}

// analyzePreamble fills in HasPreamble/PreambleEndLine per spec.md
// §4.1's preamble rule and SPEC_FULL.md §5's tunable defaults.
func analyzePreamble(analysis *ContentAnalysis, lines []string) {
	if len(analysis.Headers) == 0 {
		if analysis.TotalChars > 0 {
			analysis.HasPreamble = true
			analysis.PreambleEndLine = len(lines) + 1
		}
		return
	}

	firstHeaderLine := analysis.Headers[0].Line // 1-based
	before := lines[:firstHeaderLine-1]

	nonBlank := 0
	chars := 0
	for _, l := range before {
		if !isBlank(l) {
			nonBlank++
		}
		chars += encoding.RuneCount(l)
	}

	if nonBlank >= preambleMinNonBlankLines && chars >= preambleMinChars {
		analysis.HasPreamble = true
		analysis.PreambleEndLine = firstHeaderLine
	}
}

// splitLines splits text into its lines (without trailing '\n') along
// with the byte offset each line starts at. A trailing newline at the
// very end of text does not produce a spurious empty final line.
func splitLines(text string) (lines []string, starts []int) {
	if text == "" {
		return []string{""}, []int{0}
	}
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, text[start:i])
			starts = append(starts, start)
			start = i + 1
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
		starts = append(starts, start)
	}
	return lines, starts
}

// lineEndByte returns the byte offset immediately following line idx
// (i.e. where line idx+1 begins, or len(text) if idx is the last line).
func lineEndByte(text string, starts []int, idx int) int {
	if idx+1 < len(starts) {
		return starts[idx+1]
	}
	return len(text)
}

// parseFenceOpen reports whether trimmed opens a fenced code block: 3+
// of the same backtick or tilde character at the start of the line.
func parseFenceOpen(trimmed string) (ch byte, runLen int, ok bool) {
	if len(trimmed) == 0 {
		return 0, 0, false
	}
	first := trimmed[0]
	if first != '`' && first != '~' {
		return 0, 0, false
	}
	count := 0
	for count < len(trimmed) && trimmed[count] == first {
		count++
	}
	if count < 3 {
		return 0, 0, false
	}
	return first, count, true
}

// isFenceCloser reports whether trimmed closes a fence opened with ch
// and minLen: trimmed must consist solely of a run of ch at least
// minLen long, with no other content.
func isFenceCloser(trimmed string, ch byte, minLen int) bool {
	if len(trimmed) == 0 {
		return false
	}
	if trimmed[0] != ch {
		return false
	}
	count := 0
	for count < len(trimmed) && trimmed[count] == ch {
		count++
	}
	return count >= minLen && count == len(trimmed)
}

// parseATXHeader reports whether trimmed is an ATX header line
// (^#{1,6} +<text>$), returning its level and text with trailing '#'
// runs stripped.
func parseATXHeader(trimmed string) (level int, text string, ok bool) {
	i := 0
	for i < len(trimmed) && trimmed[i] == '#' {
		i++
	}
	if i == 0 || i > 6 {
		return 0, "", false
	}
	if i >= len(trimmed) || trimmed[i] != ' ' {
		return 0, "", false
	}
	j := i
	for j < len(trimmed) && trimmed[j] == ' ' {
		j++
	}
	text = stripTrailingHashes(strings.TrimRight(trimmed[j:], " "))
	return i, text, true
}

// stripTrailingHashes removes a trailing "closing" run of '#' (and any
// whitespace around it) from an ATX header's visible text.
func stripTrailingHashes(s string) string {
	trimmed := strings.TrimRight(s, "#")
	if trimmed == s {
		return s
	}
	return strings.TrimRight(trimmed, " ")
}

// looksLikePipeRow reports whether trimmed is a GFM table row candidate:
// it starts and ends with '|'.
func looksLikePipeRow(trimmed string) bool {
	return len(trimmed) >= 2 && trimmed[0] == '|' && trimmed[len(trimmed)-1] == '|'
}

// splitTableRow splits a pipe-delimited row into its cells, dropping
// the leading/trailing pipe.
func splitTableRow(trimmed string) []string {
	s := strings.TrimPrefix(trimmed, "|")
	s = strings.TrimSuffix(s, "|")
	return strings.Split(s, "|")
}

// parseSeparatorRow reports whether trimmed is a valid GFM table
// separator row (cells of only ':', '-', and whitespace, each with at
// least one '-'), returning its cell count.
func parseSeparatorRow(trimmed string) (cells int, ok bool) {
	if !looksLikePipeRow(trimmed) {
		return 0, false
	}
	parts := splitTableRow(trimmed)
	for _, p := range parts {
		if !isSeparatorCell(p) {
			return 0, false
		}
	}
	return len(parts), true
}

func isSeparatorCell(cell string) bool {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return false
	}
	start, end := 0, len(cell)
	if cell[start] == ':' {
		start++
	}
	if end > start && cell[end-1] == ':' {
		end--
	}
	if start >= end {
		return false
	}
	for i := start; i < end; i++ {
		if cell[i] != '-' {
			return false
		}
	}
	return true
}
