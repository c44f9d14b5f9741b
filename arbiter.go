package chunker

// Arbiter chooses which strategy handles a document. Selection is
// deterministic and stateless: it looks only at the already-computed
// ContentAnalysis and ChunkConfig, never at the raw text itself.
type Arbiter struct{}

// NewArbiter returns a ready-to-use Arbiter.
func NewArbiter() *Arbiter {
	return &Arbiter{}
}

// Select applies spec.md §4.2's selection rules, in order:
//  1. An explicit, valid StrategyOverride always wins.
//  2. Any code block, any table, or a high enough code_ratio routes to
//     code-aware chunking.
//  3. Enough headers (and enough header depth) routes to structural
//     chunking.
//  4. Otherwise, fallback.
func (a *Arbiter) Select(analysis *ContentAnalysis, cfg ChunkConfig) Strategy {
	if cfg.StrategyOverride != "" {
		if s, err := ParseStrategy(cfg.StrategyOverride.String()); err == nil {
			return s
		}
	}

	if analysis.CodeBlockCount >= 1 || analysis.TableCount >= 1 || analysis.CodeRatio >= cfg.CodeThreshold {
		return StrategyCodeAware
	}

	minDepth := 2
	if !analysis.HasPreamble {
		minDepth = 1
	}
	if analysis.HeaderCount >= cfg.StructureThreshold && analysis.MaxHeaderDepth >= minDepth {
		return StrategyStructural
	}

	return StrategyFallback
}
