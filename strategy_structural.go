package chunker

import (
	"strings"

	"github.com/asukhodko/dify-markdown-chunker-sub006/internal/encoding"
)

// headerPathEntry is one frame of the ancestor-header stack used to
// build a section's header_path (spec.md §4.4 step 3).
type headerPathEntry struct {
	level int
	text  string
}

func headerPathString(stack []headerPathEntry) string {
	parts := make([]string, len(stack))
	for i, e := range stack {
		parts[i] = e.text
	}
	return "/" + strings.Join(parts, "/")
}

// applyStructural implements spec.md §4.4: emit the preamble (if any)
// as its own chunk, then walk headers in document order, computing
// each section's header_path and splitting its content according to
// whether it holds atomic blocks and/or exceeds max_chunk_size.
func applyStructural(text string, analysis *ContentAnalysis, cfg ChunkConfig) []Chunk {
	lines, starts := splitLines(text)
	var out []Chunk

	if analysis.HasPreamble {
		preEndIdx := analysis.PreambleEndLine - 2
		if preEndIdx >= 0 {
			content := rangeContent(text, starts, 0, preEndIdx)
			out = append(out, Chunk{
				Content:       content,
				StartLine:     1,
				EndLine:       preEndIdx + 1,
				ContentType:   ContentPreamble,
				HeaderPath:    "/__preamble__",
				HeaderLevel:   0,
				AllowOversize: encoding.RuneCount(content) > cfg.MaxChunkSize,
			})
		}
	}

	headers := analysis.Headers
	if len(headers) == 0 {
		if analysis.HasPreamble {
			// The preamble chunk above already holds the whole document.
			return out
		}
		return append(out, applyFallback(text, analysis, cfg)...)
	}

	allRanges := buildAtomicRanges(analysis)

	var stack []headerPathEntry
	for i, h := range headers {
		for len(stack) > 0 && stack[len(stack)-1].level >= h.Level {
			stack = stack[:len(stack)-1]
		}
		stack = append(stack, headerPathEntry{level: h.Level, text: h.Text})
		path := headerPathString(stack)

		sectionStart := h.Line - 1
		if i == 0 && !analysis.HasPreamble {
			sectionStart = 0
		}
		sectionEnd := len(lines) - 1
		if i+1 < len(headers) {
			sectionEnd = headers[i+1].Line - 2
		}
		if sectionEnd < sectionStart {
			continue
		}
		section := lineRange{Start: sectionStart, End: sectionEnd}

		sectionRanges := atomicRangesWithin(allRanges, section)

		var chunks []Chunk
		switch {
		case len(sectionRanges) > 0:
			chunks = walkAtomicRanges(text, lines, starts, section, sectionRanges, cfg)
		default:
			size := runeCountRange(text, starts, section.Start, section.End)
			if size <= cfg.MaxChunkSize {
				chunks = []Chunk{{
					Content:     rangeContent(text, starts, section.Start, section.End),
					StartLine:   section.Start + 1,
					EndLine:     section.End + 1,
					ContentType: ContentText,
				}}
			} else {
				paragraphs := splitParagraphs(lines, section.Start, section.End)
				chunks = packParagraphs(text, starts, paragraphs, cfg)
			}
		}

		for idx := range chunks {
			chunks[idx].HeaderPath = path
			chunks[idx].HeaderLevel = h.Level
		}
		out = append(out, chunks...)
	}

	return out
}
