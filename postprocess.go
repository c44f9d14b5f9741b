package chunker

import (
	"strings"
	"unicode"

	"github.com/asukhodko/dify-markdown-chunker-sub006/internal/encoding"
)

// PostProcessor runs the fixed post-processing pipeline described in
// spec.md §4.6 over a strategy's raw chunk list: merge undersized
// chunks, splice overlap, enrich metadata, then validate invariants.
type PostProcessor struct{}

// NewPostProcessor returns a ready-to-use PostProcessor.
func NewPostProcessor() *PostProcessor {
	return &PostProcessor{}
}

// Process runs the full pipeline and returns the final, frozen chunk
// list. strategy is the Arbiter's choice, recorded on every chunk.
// source is the normalized document the chunks were drawn from, used
// only for the I1 content-coverage check.
func (p *PostProcessor) Process(chunks []Chunk, strategy Strategy, cfg ChunkConfig, source string) []Chunk {
	chunks = mergeUndersize(chunks, cfg)
	applyOverlap(chunks, cfg)
	enrichMetadata(chunks, strategy, cfg)
	validateInvariants(chunks, cfg, source)
	return chunks
}

// mergeUndersize implements step 1: any non-atomic chunk below
// min_chunk_size is merged into whichever neighbor keeps the result at
// or under max_chunk_size and isn't itself atomic, preferring the left
// neighbor. A chunk with no eligible neighbor is left as-is and
// flagged undersizeUnmerged.
func mergeUndersize(chunks []Chunk, cfg ChunkConfig) []Chunk {
	if len(chunks) == 0 {
		return chunks
	}
	out := make([]Chunk, 0, len(chunks))
	i := 0
	for i < len(chunks) {
		c := chunks[i]
		size := encoding.RuneCount(c.Content)

		if !c.atomic && size < cfg.MinChunkSize {
			if len(out) > 0 && !out[len(out)-1].atomic {
				merged := encoding.RuneCount(out[len(out)-1].Content) + mergeSepLen + size
				if merged <= cfg.MaxChunkSize {
					out[len(out)-1] = mergeChunks(out[len(out)-1], c)
					i++
					continue
				}
			}
			if i+1 < len(chunks) && !chunks[i+1].atomic {
				merged := size + mergeSepLen + encoding.RuneCount(chunks[i+1].Content)
				if merged <= cfg.MaxChunkSize {
					out = append(out, mergeChunks(c, chunks[i+1]))
					i += 2
					continue
				}
			}
			c.undersizeUnmerged = true
		}

		out = append(out, c)
		i++
	}
	return out
}

// mergeSep is the separator mergeChunks inserts between two merged
// chunks; mergeSepLen is its length in characters, counted by
// mergeUndersize when checking a merge against max_chunk_size.
const (
	mergeSep    = "\n\n"
	mergeSepLen = len(mergeSep)
)

// mergeChunks combines two adjacent, non-atomic chunks into one. The
// separator reconstructs the blank-line paragraph break that
// splitParagraphs dropped between them; I1's "up to whitespace-trim at
// chunk boundaries" allowance covers this approximation.
func mergeChunks(a, b Chunk) Chunk {
	merged := a
	merged.Content = a.Content + mergeSep + b.Content
	merged.EndLine = b.EndLine
	merged.ContentType = mergeContentType(a.ContentType, b.ContentType)
	if merged.Language == "" {
		merged.Language = b.Language
	}
	return merged
}

func mergeContentType(a, b ContentType) ContentType {
	if a == b {
		return a
	}
	return ContentMixed
}

// applyOverlap implements step 2. Tails/heads are computed from every
// chunk's pre-overlap content in one pass, then spliced in a second
// pass, so a chunk's contribution to its neighbors is never itself
// already carrying spliced overlap. Atomic chunks neither contribute
// nor receive overlap, since splicing text across a fence or table
// boundary would corrupt the block it's meant to preserve exactly.
func applyOverlap(chunks []Chunk, cfg ChunkConfig) {
	if cfg.OverlapSize <= 0 || len(chunks) < 2 {
		return
	}

	n := len(chunks)
	prevTail := make([]string, n)
	nextHead := make([]string, n)

	for i := 0; i < n; i++ {
		if chunks[i].atomic {
			continue
		}
		if i > 0 && !chunks[i-1].atomic {
			prevTail[i] = encoding.TailWords(chunks[i-1].Content, cfg.OverlapSize)
		}
		if i < n-1 && !chunks[i+1].atomic {
			nextHead[i] = encoding.HeadWords(chunks[i+1].Content, cfg.OverlapSize)
		}
	}

	const sep = " "
	for i := range chunks {
		if chunks[i].atomic {
			continue
		}
		if prevTail[i] != "" {
			chunks[i].Content = prevTail[i] + sep + chunks[i].Content
			chunks[i].OverlapPrev = encoding.RuneCount(prevTail[i]) + encoding.RuneCount(sep)
		}
		if nextHead[i] != "" {
			chunks[i].Content = chunks[i].Content + sep + nextHead[i]
			chunks[i].OverlapNext = encoding.RuneCount(nextHead[i]) + encoding.RuneCount(sep)
		}
	}
}

// enrichMetadata implements step 3: chunk_index in emission order,
// the arbiter's strategy choice, and size from the final content.
func enrichMetadata(chunks []Chunk, strategy Strategy, _ ChunkConfig) {
	for i := range chunks {
		chunks[i].Strategy = strategy
		chunks[i].ChunkIndex = i
		chunks[i].Size = encoding.RuneCount(chunks[i].Content)
		validateFenceBalance(&chunks[i])
	}
}

// validateFenceBalance sets FenceBalanceError when a chunk's literal
// fence-marker count doesn't match what its construction should
// guarantee (spec.md §4.6 step 4's I3/I4 safety net). An atomic code
// chunk must show exactly one balanced open/close pair; any other
// chunk must show none at all, since gaps are built by excluding
// atomic ranges in the first place.
func validateFenceBalance(c *Chunk) {
	if c.fenceExempt {
		return
	}
	opens, closes, endInFence := fenceMarkerBalance(c.Content)
	if c.atomic {
		if opens != closes || endInFence {
			c.FenceBalanceError = true
		}
		return
	}
	if opens != 0 || closes != 0 {
		c.FenceBalanceError = true
	}
}

func fenceMarkerBalance(content string) (opens, closes int, endInFence bool) {
	lines, _ := splitLines(content)
	inFence := false
	var ch byte
	var runLen int
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if inFence {
			if isFenceCloser(trimmed, ch, runLen) {
				closes++
				inFence = false
			}
			continue
		}
		if c0, l0, ok := parseFenceOpen(trimmed); ok {
			opens++
			inFence = true
			ch = c0
			runLen = l0
		}
	}
	return opens, closes, inFence
}

// validateInvariants implements step 4's best-effort checks for I1, I2,
// and I5; I3/I4 are covered by validateFenceBalance above. Violations
// are recorded as non-fatal warnings, never returned as errors.
func validateInvariants(chunks []Chunk, cfg ChunkConfig, source string) {
	for i := range chunks {
		c := &chunks[i]
		if c.Size < 1 {
			c.invariantWarnings = append(c.invariantWarnings, "chunk content is empty")
		}
		if c.Size > cfg.MaxChunkSize && !c.AllowOversize {
			c.invariantWarnings = append(c.invariantWarnings, "chunk exceeds max_chunk_size without allow_oversize")
		}
		if c.undersizeUnmerged {
			c.invariantWarnings = append(c.invariantWarnings, "chunk remains below min_chunk_size; no eligible neighbor to merge with")
		}
		if i+1 < len(chunks) && c.EndLine > chunks[i+1].StartLine {
			c.invariantWarnings = append(c.invariantWarnings, "chunk ordering invariant violated relative to next chunk")
		}
	}
	validateCoverage(chunks, cfg, source)
}

// validateCoverage implements I1: concatenating chunk contents, after
// stripping the recorded overlap_prev/overlap_next splices, should
// reproduce the normalized source's non-whitespace character count
// within cfg.CoverageTolerance (spec.md §7, §8's P1). A drift beyond
// tolerance is recorded once, on the first chunk, since it describes
// the document as a whole rather than any single chunk.
func validateCoverage(chunks []Chunk, cfg ChunkConfig, source string) {
	if len(chunks) == 0 {
		return
	}

	want := countNonWhitespace(source)
	var got int
	for _, c := range chunks {
		stripped := encoding.SafeSubstring(c.Content, c.OverlapPrev, encoding.RuneCount(c.Content)-c.OverlapNext)
		got += countNonWhitespace(stripped)
	}

	denom := want
	if denom == 0 {
		denom = 1
	}
	drift := got - want
	if drift < 0 {
		drift = -drift
	}
	if float64(drift)/float64(denom) > cfg.CoverageTolerance {
		chunks[0].invariantWarnings = append(chunks[0].invariantWarnings,
			"chunk content coverage drifts from the normalized source beyond coverage_tolerance")
	}
}

func countNonWhitespace(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
