package chunker

// applyCodeAware implements spec.md §4.3: walk the document as
// alternating gap and atomic regions, packing gaps into paragraph
// chunks and emitting each fenced block or table as a single chunk.
func applyCodeAware(text string, analysis *ContentAnalysis, cfg ChunkConfig) []Chunk {
	lines, starts := splitLines(text)
	bounds := lineRange{Start: 0, End: len(lines) - 1}
	return walkAtomicRanges(text, lines, starts, bounds, buildAtomicRanges(analysis), cfg)
}

// walkAtomicRanges applies the gap/atomic walk from spec.md §4.3 within
// an arbitrary line span, so StructuralStrategy can reuse it per
// section (§4.4 step 4's "defer: split by atomic ranges as in §4.3").
func walkAtomicRanges(text string, lines []string, starts []int, bounds lineRange, ranges []atomicRange, cfg ChunkConfig) []Chunk {
	var out []Chunk
	cursor := bounds.Start
	for _, r := range ranges {
		if r.Start > cursor {
			paragraphs := splitParagraphs(lines, cursor, r.Start-1)
			out = append(out, packParagraphs(text, starts, paragraphs, cfg)...)
		}
		out = append(out, makeAtomicChunk(text, starts, r, cfg))
		cursor = r.End + 1
	}
	if cursor <= bounds.End {
		paragraphs := splitParagraphs(lines, cursor, bounds.End)
		out = append(out, packParagraphs(text, starts, paragraphs, cfg)...)
	}
	return out
}

// atomicRangesWithin filters ranges to those fully contained in bounds.
func atomicRangesWithin(ranges []atomicRange, bounds lineRange) []atomicRange {
	var out []atomicRange
	for _, r := range ranges {
		if r.Start >= bounds.Start && r.End <= bounds.End {
			out = append(out, r)
		}
	}
	return out
}
