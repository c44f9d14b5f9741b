package chunker

import "github.com/asukhodko/dify-markdown-chunker-sub006/internal/chunklog"

// Orchestrator drives the full batch pipeline (spec.md §4.7): normalize
// line endings, analyze structure, pick a strategy, apply it, then
// post-process the result into frozen, validated chunks. Every step is
// pure given the same text and config.
type Orchestrator struct {
	analyzer      *Analyzer
	arbiter       *Arbiter
	postProcessor *PostProcessor
}

// NewOrchestrator wires together an Analyzer, Arbiter, and
// PostProcessor into a ready-to-use Orchestrator.
func NewOrchestrator() *Orchestrator {
	return &Orchestrator{
		analyzer:      NewAnalyzer(),
		arbiter:       NewArbiter(),
		postProcessor: NewPostProcessor(),
	}
}

// Run executes the pipeline and also returns the ContentAnalysis, for
// callers (such as StreamingFront) that need it for diagnostics.
func (o *Orchestrator) Run(text string, cfg ChunkConfig) ([]Chunk, *ContentAnalysis, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	normalized := normalize(text)
	if isBlank(normalized) {
		return nil, &ContentAnalysis{}, nil
	}

	analysis := o.analyzer.Analyze(normalized)
	chunklog.Debugf("analyze: %d header(s), %d fenced block(s), %d table(s), code_ratio=%.3f",
		analysis.HeaderCount, analysis.CodeBlockCount, analysis.TableCount, analysis.CodeRatio)
	for _, w := range analysis.Warnings {
		chunklog.Warnf("parse warning at line %d: %s", w.Line, w.Message)
	}

	strategy := o.arbiter.Select(analysis, cfg)
	chunklog.Debugf("arbitrate: selected strategy %q", strategy)

	var raw []Chunk
	switch strategy {
	case StrategyCodeAware:
		raw = applyCodeAware(normalized, analysis, cfg)
	case StrategyStructural:
		raw = applyStructural(normalized, analysis, cfg)
	default:
		raw = applyFallback(normalized, analysis, cfg)
	}
	chunklog.Debugf("apply: strategy %q produced %d raw chunk(s)", strategy, len(raw))

	chunks := o.postProcessor.Process(raw, strategy, cfg, normalized)
	chunklog.Debugf("post-process: %d final chunk(s)", len(chunks))
	for _, c := range chunks {
		for _, w := range c.Warnings() {
			chunklog.Warnf("invariant warning on chunk %d: %s", c.ChunkIndex, w)
		}
	}

	return chunks, analysis, nil
}

// ChunkText is the package's main entry point: it runs the full
// pipeline over text with cfg and returns the resulting chunks.
func ChunkText(text string, cfg ChunkConfig) ([]Chunk, error) {
	chunks, _, err := NewOrchestrator().Run(text, cfg)
	return chunks, err
}

// AnalyzeText runs only the Analyzer, after normalizing line endings,
// for callers that want structural information without chunking.
func AnalyzeText(text string) *ContentAnalysis {
	return NewAnalyzer().Analyze(text)
}
