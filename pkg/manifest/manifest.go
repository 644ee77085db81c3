package manifest

// RunManifest describes a finished preparation run. It is written next to the
// outputs so a model directory documents how it was produced.
type RunManifest struct {
	RunID           string       `yaml:"run_id"`
	Language        string       `yaml:"language"`
	Status          string       `yaml:"status"`
	StartedAt       string       `yaml:"started_at"`
	FinishedAt      string       `yaml:"finished_at"`
	Duration        string       `yaml:"duration"`
	Config          RunConfig    `yaml:"config"`
	Outputs         []OutputFile `yaml:"outputs"`
	Stats           RunStats     `yaml:"stats"`
	TopKeywords     []string     `yaml:"top_keywords,omitempty"`
	ContentKeywords []string     `yaml:"content_keywords,omitempty"` // stopwords removed
}

// RunConfig records the effective pipeline settings.
type RunConfig struct {
	Input          string  `yaml:"input"`
	Workers        int     `yaml:"workers"`
	BlockSize      int     `yaml:"block_size"`
	VocabularySize int     `yaml:"vocabulary_size"`
	PruneFactor    int     `yaml:"prune_factor"`
	FlushThreshold int     `yaml:"flush_threshold"`
	Mmap           bool    `yaml:"mmap"`
	StripMarkup    bool    `yaml:"strip_markup"`
	Alpha          float64 `yaml:"alpha"`
	Beta           float64 `yaml:"beta"`
}

// OutputFile is one file produced by the run.
type OutputFile struct {
	Name      string `yaml:"name"`
	Path      string `yaml:"path"`
	SizeBytes int64  `yaml:"size_bytes"`
	SHA256    string `yaml:"sha256,omitempty"`
}

// RunStats are the pipeline counters.
type RunStats struct {
	InputBytes      int64 `yaml:"input_bytes"`
	Shards          int   `yaml:"shards"`
	Batches         int   `yaml:"batches"`
	Prunes          int   `yaml:"prunes"`
	DistinctWords   int   `yaml:"distinct_words"`
	VocabularyWords int   `yaml:"vocabulary_words"`
	Lines           int64 `yaml:"lines"`
	PreparedLines   int64 `yaml:"prepared_lines"`
	SkippedLines    int64 `yaml:"skipped_lines"`
}
