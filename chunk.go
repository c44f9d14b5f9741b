// Package chunker splits Markdown documents into size-bounded,
// structurally coherent chunks suitable for embedding into a
// retrieval-augmented generation pipeline.
//
// The pipeline is strictly linear: normalize line endings, analyze the
// document's structure, pick a chunking strategy, apply it, then
// post-process the result (merge undersized chunks, splice overlap,
// enrich metadata, validate invariants). See Chunk, ChunkText, and
// AnalyzeText for the main entry points.
package chunker

// Strategy names the chunking strategy that produced a Chunk.
type Strategy string

// Recognized strategies. These are the only three in scope; legacy
// strategy names from prior iterations of this design are not accepted.
const (
	StrategyCodeAware  Strategy = "code_aware"
	StrategyStructural Strategy = "structural"
	StrategyFallback   Strategy = "fallback"
)

// String returns the strategy's wire name.
func (s Strategy) String() string {
	return string(s)
}

// ParseStrategy parses a strategy name as accepted by ChunkConfig's
// StrategyOverride field. It returns ErrUnknownStrategy for anything
// else, including legacy six-strategy names from older documentation.
func ParseStrategy(name string) (Strategy, error) {
	switch Strategy(name) {
	case StrategyCodeAware, StrategyStructural, StrategyFallback:
		return Strategy(name), nil
	default:
		return "", ErrUnknownStrategy
	}
}

// ContentType classifies the kind of content a chunk holds.
type ContentType string

const (
	ContentText     ContentType = "text"
	ContentCode     ContentType = "code"
	ContentTable    ContentType = "table"
	ContentMixed    ContentType = "mixed"
	ContentPreamble ContentType = "preamble"
	ContentDocument ContentType = "document"
)

// OversizeReason explains why a chunk was allowed to exceed MaxChunkSize.
type OversizeReason string

const (
	OversizeCodeBlock OversizeReason = "code_block_integrity"
	OversizeTable      OversizeReason = "table_integrity"
	OversizeSection    OversizeReason = "section_integrity"
)

// Chunk is an ordered, size-bounded fragment of a source document.
//
// Chunks are created by strategies and mutated only by the
// post-processor (merge, overlap splicing, metadata enrichment); callers
// receive them already frozen and should treat every field as read-only.
type Chunk struct {
	// Content is this chunk's text, including any spliced overlap.
	Content string

	// StartLine and EndLine are the inclusive 1-based line range in the
	// normalized source that this chunk's own content (excluding
	// overlap) was drawn from.
	StartLine int
	EndLine   int

	Strategy          Strategy
	ContentType       ContentType
	HeaderPath        string
	HeaderLevel       int
	ChunkIndex        int
	Size              int
	AllowOversize     bool
	OversizeReason    OversizeReason
	FenceBalanceError bool
	OverlapPrev       int
	OverlapNext       int
	Language          string

	// Streaming-only fields; zero when produced by the batch core.
	StreamChunkIndex  int
	StreamWindowIndex int
	BytesProcessed    int64

	// undersizeUnmerged records that PostProcessor tried and failed to
	// merge this chunk (both neighbors were atomic, or merging would
	// have exceeded MaxChunkSize); kept for diagnostics via Warnings.
	undersizeUnmerged bool
	// invariantWarnings holds non-fatal InvariantWarning messages
	// attached during validation (I1/I5 soft violations).
	invariantWarnings []string

	// atomic marks a chunk whose entire content is a single fenced code
	// block or table; PostProcessor never merges across such a chunk
	// nor splices overlap into/out of it.
	atomic bool

	// fenceExempt marks an atomic code chunk built from a FencedBlock
	// that the Analyzer already reported as Unclosed; its literal
	// opening/closing marker count will never balance, by design, so
	// the fence-balance check must not flag it.
	fenceExempt bool
}

// Warnings returns any non-fatal InvariantWarning messages recorded for
// this chunk during post-processing. An empty slice means none.
func (c Chunk) Warnings() []string {
	return append([]string(nil), c.invariantWarnings...)
}

// Metadata renders the chunk's metadata as the language-agnostic
// key/value mapping described in spec.md §6's output format, suitable
// for JSON encoding by an embedding host.
func (c Chunk) Metadata() map[string]any {
	m := map[string]any{
		"strategy":     c.Strategy.String(),
		"content_type": string(c.ContentType),
		"header_path":  c.HeaderPath,
		"header_level": c.HeaderLevel,
		"chunk_index":  c.ChunkIndex,
		"size":         c.Size,
	}
	if c.AllowOversize {
		m["allow_oversize"] = true
	}
	if c.OversizeReason != "" {
		m["oversize_reason"] = string(c.OversizeReason)
	}
	if c.FenceBalanceError {
		m["fence_balance_error"] = true
	}
	if c.OverlapPrev > 0 {
		m["overlap_prev"] = c.OverlapPrev
	}
	if c.OverlapNext > 0 {
		m["overlap_next"] = c.OverlapNext
	}
	if c.Language != "" {
		m["language"] = c.Language
	}
	if c.StreamChunkIndex != 0 || c.StreamWindowIndex != 0 || c.BytesProcessed != 0 {
		m["stream_chunk_index"] = c.StreamChunkIndex
		m["stream_window_index"] = c.StreamWindowIndex
		m["bytes_processed"] = c.BytesProcessed
	}
	return m
}
