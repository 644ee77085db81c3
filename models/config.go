// Package models defines configuration and record types shared by the commands.
package models

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// PrepareConfig holds the settings of a preparation run. Values come from an
// optional YAML file and are overridden by CLI flags.
type PrepareConfig struct {
	Language          string `yaml:"language"`
	Input             string `yaml:"input,omitempty"`
	OutputDir         string `yaml:"output_dir"`
	Workers           int    `yaml:"workers"`
	BlockSize         string `yaml:"block_size"`
	VocabularySize    int    `yaml:"vocabulary_size"`
	PruneFactor       int    `yaml:"prune_factor"`
	MaxKeys           int    `yaml:"max_keys"`
	Mmap              bool   `yaml:"mmap"`
	StripMarkup       bool   `yaml:"strip_markup"`
	DetectSampleLines int    `yaml:"detect_sample_lines"`
	Database          string `yaml:"database,omitempty"`

	// Alpha and Beta replace the language's decoder weights when set.
	Alpha *float64 `yaml:"alpha,omitempty"`
	Beta  *float64 `yaml:"beta,omitempty"`
}

// DefaultPrepareConfig returns the built-in defaults.
func DefaultPrepareConfig() PrepareConfig {
	return PrepareConfig{
		OutputDir:         "lmc-models",
		Workers:           runtime.NumCPU(),
		BlockSize:         "100M",
		VocabularySize:    500000,
		PruneFactor:       10,
		MaxKeys:           100000,
		DetectSampleLines: 200,
	}
}

// LoadConfig reads a YAML config file on top of the defaults.
func LoadConfig(path string) (PrepareConfig, error) {
	cfg := DefaultPrepareConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings no run could use.
func (c PrepareConfig) Validate() error {
	switch {
	case c.Language == "":
		return fmt.Errorf("language is required")
	case c.Workers < 1:
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	case c.VocabularySize < 1:
		return fmt.Errorf("vocabulary_size must be positive, got %d", c.VocabularySize)
	case c.PruneFactor < 1:
		return fmt.Errorf("prune_factor must be positive, got %d", c.PruneFactor)
	case c.MaxKeys < 1:
		return fmt.Errorf("max_keys must be positive, got %d", c.MaxKeys)
	case c.DetectSampleLines < 0:
		return fmt.Errorf("detect_sample_lines must not be negative, got %d", c.DetectSampleLines)
	case c.BlockSize == "":
		return fmt.Errorf("block_size is required")
	}
	return nil
}
