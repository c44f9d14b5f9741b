package chunker

import "fmt"

// Default values for ChunkConfig, matching spec.md §3.
const (
	DefaultMaxChunkSize       = 2000
	DefaultMinChunkSize       = 200
	DefaultOverlapSize        = 100
	DefaultCodeThreshold      = 0.30
	DefaultStructureThreshold = 3
	DefaultCoverageTolerance  = 0.005

	// preambleMinNonBlankLines and preambleMinChars are the tunables
	// for preamble detection (spec.md §4.1); the source material never
	// enumerates an exact legacy value (SPEC_FULL.md §5), so these are
	// fixed defaults rather than configurable fields.
	preambleMinNonBlankLines = 2
	preambleMinChars         = 40
)

// ChunkConfig controls the batch chunking pipeline. Use
// DefaultChunkConfig or NewChunkConfig with ChunkOptions to build one.
type ChunkConfig struct {
	MaxChunkSize int
	MinChunkSize int
	OverlapSize  int

	// PreserveAtomicBlocks is always true in effect; kept only so
	// callers migrating from a config file format that has it don't
	// need to special-case this field.
	PreserveAtomicBlocks bool

	CodeThreshold      float64
	StructureThreshold int

	// CoverageTolerance is the fraction of non-whitespace characters by
	// which concatenated chunk content (overlap stripped) may drift from
	// the normalized source before the post-processor records an I1
	// InvariantWarning (spec.md §7). Default 0.005 (±0.5%).
	CoverageTolerance float64

	// StrategyOverride, when non-empty, forces the Arbiter's choice.
	StrategyOverride Strategy
}

// DefaultChunkConfig returns a ChunkConfig populated with spec.md's
// documented defaults.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		MaxChunkSize:         DefaultMaxChunkSize,
		MinChunkSize:         DefaultMinChunkSize,
		OverlapSize:          DefaultOverlapSize,
		PreserveAtomicBlocks: true,
		CodeThreshold:        DefaultCodeThreshold,
		StructureThreshold:   DefaultStructureThreshold,
		CoverageTolerance:    DefaultCoverageTolerance,
	}
}

// ChunkOption customizes a ChunkConfig built by NewChunkConfig.
type ChunkOption func(*ChunkConfig)

// WithMaxChunkSize sets the upper target chunk size in characters.
func WithMaxChunkSize(n int) ChunkOption {
	return func(c *ChunkConfig) { c.MaxChunkSize = n }
}

// WithMinChunkSize sets the floor used when merging undersized chunks.
func WithMinChunkSize(n int) ChunkOption {
	return func(c *ChunkConfig) { c.MinChunkSize = n }
}

// WithOverlapSize sets the number of characters of overlap spliced onto
// each side of a chunk boundary.
func WithOverlapSize(n int) ChunkOption {
	return func(c *ChunkConfig) { c.OverlapSize = n }
}

// WithCodeThreshold sets the code_ratio at/above which code-aware
// chunking becomes eligible.
func WithCodeThreshold(ratio float64) ChunkOption {
	return func(c *ChunkConfig) { c.CodeThreshold = ratio }
}

// WithStructureThreshold sets the minimum header count required before
// structural chunking becomes eligible.
func WithStructureThreshold(n int) ChunkOption {
	return func(c *ChunkConfig) { c.StructureThreshold = n }
}

// WithCoverageTolerance sets the I1 content-coverage drift tolerance,
// as a fraction of non-whitespace characters in the normalized source.
func WithCoverageTolerance(fraction float64) ChunkOption {
	return func(c *ChunkConfig) { c.CoverageTolerance = fraction }
}

// WithStrategyOverride forces the Arbiter to return strategy,
// regardless of analysis.
func WithStrategyOverride(strategy Strategy) ChunkOption {
	return func(c *ChunkConfig) { c.StrategyOverride = strategy }
}

// NewChunkConfig builds a ChunkConfig from DefaultChunkConfig plus opts,
// applied in order.
func NewChunkConfig(opts ...ChunkOption) ChunkConfig {
	cfg := DefaultChunkConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Validate checks cfg against spec.md §7's ConfigInvalid rules. A
// zero-value StrategyOverride (unset) is always accepted.
func (c ChunkConfig) Validate() error {
	if c.MaxChunkSize <= 0 {
		return ErrMaxChunkSize
	}
	if c.MinChunkSize < 0 || c.MinChunkSize > c.MaxChunkSize {
		return ErrMinChunkSize
	}
	if c.OverlapSize < 0 {
		return ErrOverlapNegative
	}
	if c.OverlapSize >= c.MaxChunkSize {
		return ErrOverlapTooLarge
	}
	if c.CodeThreshold < 0 || c.CodeThreshold > 1 {
		return ErrThresholdRange
	}
	if c.StructureThreshold < 0 {
		return ErrStructureThreshold
	}
	if c.CoverageTolerance < 0 || c.CoverageTolerance > 1 {
		return ErrCoverageTolerance
	}
	if c.StrategyOverride != "" {
		if _, err := ParseStrategy(c.StrategyOverride.String()); err != nil {
			return fmt.Errorf("%w: %q", ErrUnknownStrategy, c.StrategyOverride)
		}
	}
	return nil
}
