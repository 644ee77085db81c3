package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/dtnitsch/lm-corpus/pkg/mapreduce"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingProgress struct {
	total    int64
	finished bool
}

func (r *recordingProgress) Add64(n int64) error {
	r.total += n
	return nil
}

func (r *recordingProgress) Finish() error {
	r.finished = true
	return nil
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	if len(data) == 0 {
		return nil
	}
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func runAggregator(t *testing.T, cfg Config, progress Progress, batches ...Message) (AggregateStats, error) {
	t.Helper()
	in := make(chan Message, len(batches))
	for _, b := range batches {
		in <- b
	}
	return NewAggregator(cfg, 0, progress, discardLogger()).Run(context.Background(), in)
}

func TestAggregator_MergesAndWritesVocabulary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocabulary.txt")
	cfg := Config{VocabularyPath: path, VocabularySize: 3, PruneFactor: 10}
	progress := &recordingProgress{}

	stats, err := runAggregator(t, cfg, progress,
		PartialCount{Counts: mapreduce.Counts{"the": 2, "cat": 1, "sat": 1}, BytesConsumed: 12},
		PartialCount{Counts: mapreduce.Counts{}, BytesConsumed: 0},
		PartialCount{Counts: mapreduce.Counts{"the": 1, "cat": 1, "ran": 1}, BytesConsumed: 12},
		Termination{},
	)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	got := readLines(t, path)
	if len(got) != 3 || got[0] != "the" || got[1] != "cat" {
		t.Errorf("vocabulary = %v, want [the cat <count-1 word>]", got)
	}
	if stats.Batches != 3 {
		t.Errorf("Batches = %d, want 3 (empty batch must not terminate)", stats.Batches)
	}
	if stats.ProcessedBytes != 24 || progress.total != 24 {
		t.Errorf("processed = %d, progress = %d, want 24", stats.ProcessedBytes, progress.total)
	}
	if !progress.finished {
		t.Error("progress was not finished")
	}
	if stats.Prunes != 0 {
		t.Errorf("Prunes = %d, want 0", stats.Prunes)
	}
}

// Pruning is lossy: an entry cut early never comes back, even if its true
// total would have ranked it inside the vocabulary.
func TestAggregator_PruneIsLossy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocabulary.txt")
	cfg := Config{VocabularyPath: path, VocabularySize: 2, PruneFactor: 1}

	stats, err := runAggregator(t, cfg, nil,
		PartialCount{Counts: mapreduce.Counts{"a": 5, "b": 4, "c": 3}},
		PartialCount{Counts: mapreduce.Counts{"c": 3}},
		Termination{},
	)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if stats.Prunes != 2 {
		t.Errorf("Prunes = %d, want 2", stats.Prunes)
	}
	if got, want := readLines(t, path), []string{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("vocabulary = %v, want %v", got, want)
	}
	if stats.DistinctWords > cfg.PruneFactor*cfg.VocabularySize {
		t.Errorf("DistinctWords = %d exceeds prune limit", stats.DistinctWords)
	}
}

func TestAggregator_Cancelled(t *testing.T) {
	cfg := Config{VocabularyPath: filepath.Join(t.TempDir(), "vocabulary.txt"), VocabularySize: 1, PruneFactor: 1}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := NewAggregator(cfg, 0, nil, discardLogger()).Run(ctx, make(chan Message))
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("aggregator did not stop after cancellation")
	}
}

func TestAggregator_WriteFailure(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{VocabularyPath: dir, VocabularySize: 1, PruneFactor: 1} // a directory cannot be created as a file

	if _, err := runAggregator(t, cfg, nil, Termination{}); err == nil {
		t.Fatal("Run() should fail when the vocabulary cannot be written")
	}
}
