package manifest

import (
	"fmt"
	"os"
	"time"

	"github.com/dtnitsch/lm-corpus/internal/common"
	"github.com/dtnitsch/lm-corpus/pkg/analytics"
	"github.com/dtnitsch/lm-corpus/pkg/mapreduce"
	"github.com/dtnitsch/lm-corpus/pkg/pipeline"
	"github.com/dtnitsch/lm-corpus/pkg/storage"
	"gopkg.in/yaml.v3"
)

// reportedKeywords is how many keywords each manifest list holds.
const reportedKeywords = 25

// RunInfo carries what the manifest needs to know about a run besides the
// pipeline result.
type RunInfo struct {
	RunID       string
	Language    string
	Status      string
	StartedAt   time.Time
	FinishedAt  time.Time
	Config      pipeline.Config
	StripMarkup bool
	Alpha, Beta float64
}

// Build assembles the manifest of a finished run. Output files are stat'ed
// and the vocabulary is hashed so later runs can tell whether it changed.
func Build(info RunInfo, result *pipeline.Result, s *storage.Storage) (*RunManifest, error) {
	m := &RunManifest{
		RunID:      info.RunID,
		Language:   info.Language,
		Status:     info.Status,
		StartedAt:  info.StartedAt.Format(time.RFC3339),
		FinishedAt: info.FinishedAt.Format(time.RFC3339),
		Duration:   info.FinishedAt.Sub(info.StartedAt).Round(time.Millisecond).String(),
		Config: RunConfig{
			Input:          info.Config.InputPath,
			Workers:        info.Config.WorkerCount,
			BlockSize:      info.Config.BlockSize,
			VocabularySize: info.Config.VocabularySize,
			PruneFactor:    info.Config.PruneFactor,
			FlushThreshold: info.Config.FlushThreshold,
			Mmap:           info.Config.UseMmap,
			StripMarkup:    info.StripMarkup,
			Alpha:          info.Alpha,
			Beta:           info.Beta,
		},
	}

	if result != nil {
		m.Stats = RunStats{
			InputBytes:      result.TotalBytes,
			Shards:          len(result.Shards),
			Batches:         result.Batches,
			Prunes:          result.Prunes,
			DistinctWords:   result.DistinctWords,
			VocabularyWords: result.VocabularyWords,
			Lines:           result.Lines,
			PreparedLines:   result.PreparedLines,
			SkippedLines:    result.SkippedLines,
		}
		m.TopKeywords = mapreduce.FormatKeywords(result.Top[:min(len(result.Top), reportedKeywords)])
		m.ContentKeywords = mapreduce.FormatKeywords(analytics.ContentKeywords(info.Language, result.Top, reportedKeywords))
	}

	outputs := []struct {
		name string
		path string
		hash bool
	}{
		{"prepared", info.Config.PreparedPath, false},
		{"vocabulary", info.Config.VocabularyPath, true},
	}
	for _, o := range outputs {
		if !s.HasFile(o.path) {
			continue
		}
		stats, err := s.GetFileStats(o.path)
		if err != nil {
			return nil, err
		}
		out := OutputFile{Name: o.name, Path: o.path, SizeBytes: stats.SizeBytes}
		if o.hash {
			if out.SHA256, err = common.FileHash(o.path); err != nil {
				return nil, err
			}
		}
		m.Outputs = append(m.Outputs, out)
	}

	return m, nil
}

// Write saves the manifest as YAML at path.
func Write(m *RunManifest, path string, s *storage.Storage) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("error marshalling manifest: %w", err)
	}
	if err := s.SaveFile(path, data); err != nil {
		return fmt.Errorf("error saving manifest: %w", err)
	}
	return nil
}

// Read loads a manifest written by Write.
func Read(path string) (*RunManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m RunManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}
