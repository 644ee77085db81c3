package pipeline

import "errors"

// Sentinel errors for conditions callers may need to handle differently.
var (
	// ErrCancelled indicates the run was interrupted through its context.
	// Partial files are left on disk and are not guaranteed to be consistent.
	ErrCancelled = errors.New("pipeline: cancelled")

	// ErrInvalidConfig indicates the configuration cannot describe a run.
	ErrInvalidConfig = errors.New("pipeline: invalid configuration")

	// ErrShardFailed indicates a worker hit a fatal I/O error.
	ErrShardFailed = errors.New("pipeline: shard failed")

	// ErrMalformedBlock indicates a block could not be cleaned. It is logged
	// and the block is skipped; it never aborts a worker.
	ErrMalformedBlock = errors.New("pipeline: malformed block")
)
