package chunker

import "errors"

// Sentinel errors returned by Validate and the orchestrator entry points.
// Config errors and stream I/O errors are the only error values the core
// returns to callers; parse and invariant problems are recorded on the
// analysis/chunk instead of being surfaced as errors (see errors design
// notes in SPEC_FULL.md §2.2).
var (
	// ErrMaxChunkSize indicates max_chunk_size is not a positive integer.
	ErrMaxChunkSize = errors.New("max_chunk_size must be greater than 0")

	// ErrMinChunkSize indicates min_chunk_size is negative or exceeds max_chunk_size.
	ErrMinChunkSize = errors.New("min_chunk_size must be between 0 and max_chunk_size")

	// ErrOverlapTooLarge indicates overlap_size is not smaller than max_chunk_size.
	ErrOverlapTooLarge = errors.New("overlap_size must be less than max_chunk_size")

	// ErrOverlapNegative indicates overlap_size is negative.
	ErrOverlapNegative = errors.New("overlap_size must be non-negative")

	// ErrThresholdRange indicates code_threshold is outside [0,1].
	ErrThresholdRange = errors.New("code_threshold must be within [0,1]")

	// ErrStructureThreshold indicates structure_threshold is negative.
	ErrStructureThreshold = errors.New("structure_threshold must be non-negative")

	// ErrCoverageTolerance indicates coverage_tolerance is outside [0,1].
	ErrCoverageTolerance = errors.New("coverage_tolerance must be within [0,1]")

	// ErrUnknownStrategy indicates strategy_override does not name a known strategy.
	ErrUnknownStrategy = errors.New("strategy_override names an unknown strategy")
)
