package chunker

// applyFallback implements spec.md §4.5: paragraph-pack the whole
// document with no structural awareness. Used when the document has
// neither atomic blocks nor enough header structure to justify the
// other two strategies.
func applyFallback(text string, _ *ContentAnalysis, cfg ChunkConfig) []Chunk {
	lines, starts := splitLines(text)
	if len(lines) == 0 {
		return nil
	}
	paragraphs := splitParagraphs(lines, 0, len(lines)-1)
	return packParagraphs(text, starts, paragraphs, cfg)
}
