package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dtnitsch/lm-corpus/pkg/mapreduce"
)

// topKeywordCount is how many ranked entries are kept for reporting.
const topKeywordCount = 200

// AggregateStats summarizes the aggregator's work.
type AggregateStats struct {
	Batches         int
	Prunes          int
	ProcessedBytes  uint64
	DistinctWords   int // table size at termination, after any pruning
	VocabularyWords int
	Top             []mapreduce.WordCount
}

// Aggregator is the single consumer of partial counts. It owns the global
// frequency table for its whole lifetime.
type Aggregator struct {
	vocabularySize int
	pruneLimit     int
	path           string
	totalBytes     int64
	progress       Progress
	logger         *slog.Logger
}

// NewAggregator returns an aggregator writing the top cfg.VocabularySize words
// to cfg.VocabularyPath.
func NewAggregator(cfg Config, totalBytes int64, progress Progress, logger *slog.Logger) *Aggregator {
	if progress == nil {
		progress = nopProgress{}
	}
	return &Aggregator{
		vocabularySize: cfg.VocabularySize,
		pruneLimit:     cfg.PruneFactor * cfg.VocabularySize,
		path:           cfg.VocabularyPath,
		totalBytes:     totalBytes,
		progress:       progress,
		logger:         logger,
	}
}

// Run merges batches from in until it receives a Termination, then writes the
// vocabulary. Whenever the table grows past prune factor x vocabulary size it
// is cut back to the vocabulary size; the dropped entries are lost, which makes
// the result approximate on corpora with a very long tail.
func (a *Aggregator) Run(ctx context.Context, in <-chan Message) (AggregateStats, error) {
	var stats AggregateStats
	table := make(mapreduce.Counts)

	for {
		var msg Message
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		case msg = <-in:
		}
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		switch m := msg.(type) {
		case PartialCount:
			table.Merge(m.Counts)
			stats.Batches++
			stats.ProcessedBytes += m.BytesConsumed
			if err := a.progress.Add64(int64(m.BytesConsumed)); err != nil {
				a.logger.Debug("Progress update failed", "error", err)
			}

			if len(table) > a.pruneLimit {
				before := len(table)
				table = mapreduce.Prune(table, a.vocabularySize)
				stats.Prunes++
				a.logger.Debug("Pruned frequency table", "before", before, "after", len(table))
			}

		case Termination:
			if err := a.progress.Finish(); err != nil {
				a.logger.Debug("Progress finish failed", "error", err)
			}
			stats.DistinctWords = len(table)

			ranked := mapreduce.Top(table, a.vocabularySize)
			if err := writeVocabulary(a.path, ranked); err != nil {
				return stats, err
			}
			stats.VocabularyWords = len(ranked)
			stats.Top = ranked[:min(len(ranked), topKeywordCount)]

			a.logger.Info("Vocabulary written", "path", a.path, "words", stats.VocabularyWords,
				"batches", stats.Batches, "prunes", stats.Prunes, "processed_bytes", stats.ProcessedBytes, "total_bytes", a.totalBytes)
			return stats, nil

		default:
			return stats, fmt.Errorf("unexpected message %T", msg)
		}
	}
}

// writeVocabulary writes one word per line, most frequent first.
func writeVocabulary(path string, ranked []mapreduce.WordCount) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create vocabulary: %w", err)
	}

	w := bufio.NewWriter(f)
	for _, wc := range ranked {
		if _, err := w.WriteString(wc.Word + "\n"); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to write vocabulary: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write vocabulary: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close vocabulary: %w", err)
	}
	return nil
}
