package models

import "time"

// Run statuses.
const (
	RunStatusRunning   = "running"
	RunStatusDone      = "done"
	RunStatusCancelled = "cancelled"
	RunStatusFailed    = "failed"

	// RunStatusSkipped is only reported, a skipped run is not recorded.
	RunStatusSkipped = "skipped"
)

// Run is one recorded preparation run.
type Run struct {
	RunID          string     `yaml:"run_id"`
	Language       string     `yaml:"language"`
	InputPath      string     `yaml:"input_path"`
	InputBytes     int64      `yaml:"input_bytes"`
	Workers        int        `yaml:"workers"`
	BlockSize      int64      `yaml:"block_size"`
	VocabularySize int        `yaml:"vocabulary_size"`
	PruneFactor    int        `yaml:"prune_factor"`
	Status         string     `yaml:"status"`
	Error          string     `yaml:"error,omitempty"`
	StartedAt      time.Time  `yaml:"started_at"`
	FinishedAt     *time.Time `yaml:"finished_at,omitempty"`
	Stats          RunStats   `yaml:"stats"`
}

// RunStats holds the counters reported when a run finishes.
type RunStats struct {
	Batches         int   `yaml:"batches"`
	Prunes          int   `yaml:"prunes"`
	VocabularyWords int   `yaml:"vocabulary_words"`
	PreparedLines   int64 `yaml:"prepared_lines"`
	SkippedLines    int64 `yaml:"skipped_lines"`
}
