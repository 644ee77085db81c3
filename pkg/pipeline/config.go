package pipeline

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
)

const (
	DefaultBlockSize      = 100 << 20
	DefaultVocabularySize = 500000
	DefaultPruneFactor    = 10
	DefaultFlushThreshold = 100000
)

// Normalizer turns one raw line into zero or more cleaned, whitespace
// tokenizable lines. Implementations are called concurrently from every
// worker and must not share mutable state.
type Normalizer interface {
	Normalize(line string) []string
}

// NormalizerFunc adapts a plain function to Normalizer.
type NormalizerFunc func(line string) []string

func (f NormalizerFunc) Normalize(line string) []string {
	return f(line)
}

// Config describes one preparation run. It is passed explicitly into the
// pipeline and from there into every worker and the aggregator.
type Config struct {
	InputPath      string
	PreparedPath   string
	VocabularyPath string
	// TempDir holds the per-shard cleaned files (default: directory of PreparedPath).
	TempDir string

	WorkerCount    int // default runtime.NumCPU()
	BlockSize      int // max bytes per read call per worker
	VocabularySize int
	PruneFactor    int
	// FlushThreshold is the number of distinct words a worker may hold before
	// it sends a batch to the aggregator.
	FlushThreshold int
	UseMmap        bool
}

func (c Config) withDefaults() Config {
	if c.WorkerCount == 0 {
		c.WorkerCount = runtime.NumCPU()
	}
	if c.BlockSize == 0 {
		c.BlockSize = DefaultBlockSize
	}
	if c.VocabularySize == 0 {
		c.VocabularySize = DefaultVocabularySize
	}
	if c.PruneFactor == 0 {
		c.PruneFactor = DefaultPruneFactor
	}
	if c.FlushThreshold == 0 {
		c.FlushThreshold = DefaultFlushThreshold
	}
	if c.TempDir == "" && c.PreparedPath != "" {
		c.TempDir = filepath.Dir(c.PreparedPath)
	}
	return c
}

func (c Config) validate() error {
	switch {
	case c.InputPath == "":
		return fmt.Errorf("%w: input path is required", ErrInvalidConfig)
	case c.PreparedPath == "":
		return fmt.Errorf("%w: prepared path is required", ErrInvalidConfig)
	case c.VocabularyPath == "":
		return fmt.Errorf("%w: vocabulary path is required", ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker count must be positive, got %d", ErrInvalidConfig, c.WorkerCount)
	case c.BlockSize < 1:
		return fmt.Errorf("%w: block size must be positive, got %d", ErrInvalidConfig, c.BlockSize)
	case c.VocabularySize < 1:
		return fmt.Errorf("%w: vocabulary size must be positive, got %d", ErrInvalidConfig, c.VocabularySize)
	case c.PruneFactor < 1:
		return fmt.Errorf("%w: prune factor must be positive, got %d", ErrInvalidConfig, c.PruneFactor)
	case c.FlushThreshold < 1:
		return fmt.Errorf("%w: flush threshold must be positive, got %d", ErrInvalidConfig, c.FlushThreshold)
	}
	return nil
}

// PartialPath returns the cleaned-text file of shard index.
func (c Config) PartialPath(index int) string {
	return filepath.Join(c.TempDir, filepath.Base(c.PreparedPath)+".partial"+strconv.Itoa(index))
}
