// Package pipeline prepares a raw text corpus for n-gram model training.
//
// The input file is split into byte-range shards. One Worker per shard cleans
// and counts its lines, writing cleaned text to a private shard file and
// sending batched partial counts over a bounded channel. A single Aggregator
// merges the batches into a frequency table that is periodically pruned, and
// writes the final vocabulary once the orchestrator signals that all workers
// are done. The shard files are then joined in shard order into the prepared
// corpus.
//
// Workers and the aggregator only share the channel. The channel holds at
// most one batch per worker, so slow aggregation blocks workers instead of
// growing memory.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dtnitsch/lm-corpus/pkg/mapreduce"
	"github.com/dtnitsch/lm-corpus/pkg/shard"
	"github.com/dtnitsch/lm-corpus/pkg/source"
	"github.com/dtnitsch/lm-corpus/pkg/storage"
	"golang.org/x/sync/errgroup"
)

// Result describes a completed run.
type Result struct {
	TotalBytes      int64
	Shards          []shard.Shard
	Batches         int
	Prunes          int
	DistinctWords   int
	VocabularyWords int
	Lines           int64
	PreparedLines   int64
	SkippedLines    int64
	PreparedBytes   int64
	Top             []mapreduce.WordCount
	Duration        time.Duration
	State           State
}

// Pipeline orchestrates one preparation run.
type Pipeline struct {
	cfg        Config
	normalizer Normalizer
	opts       options
	storage    *storage.Storage
}

// New validates cfg and returns a pipeline ready to Run.
func New(cfg Config, n Normalizer, opts ...Option) (*Pipeline, error) {
	if n == nil {
		return nil, fmt.Errorf("%w: normalizer is required", ErrInvalidConfig)
	}
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Pipeline{cfg: cfg, normalizer: n, opts: o, storage: &storage.Storage{}}, nil
}

// Prepare is a shorthand for New followed by Run.
func Prepare(ctx context.Context, cfg Config, n Normalizer, opts ...Option) (*Result, error) {
	p, err := New(cfg, n, opts...)
	if err != nil {
		return nil, err
	}
	return p.Run(ctx)
}

// Config returns the effective configuration, defaults applied.
func (p *Pipeline) Config() Config {
	return p.cfg
}

type aggregateResult struct {
	stats AggregateStats
	err   error
}

// Run executes the pipeline. It returns an error wrapping ErrCancelled when
// ctx is cancelled while workers or the aggregator are active; in that case
// every task has stopped before Run returns and partial files stay on disk.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	logger := p.opts.logger
	p.transition(StateInit)

	src, err := source.Open(p.cfg.InputPath, p.cfg.UseMmap)
	if err != nil {
		p.transition(StateFailed)
		return nil, err
	}
	defer src.Close()

	p.transition(StateSharding)
	shards, err := shard.Plan(src.Size(), p.cfg.WorkerCount)
	if err != nil {
		p.transition(StateFailed)
		return nil, err
	}
	for _, dir := range []string{p.cfg.TempDir, filepath.Dir(p.cfg.PreparedPath), filepath.Dir(p.cfg.VocabularyPath)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			p.transition(StateFailed)
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	logger.Info("Preparing shards", "input", src.Path(), "bytes", src.Size(), "shards", len(shards), "mmap", src.Mapped())

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	transfer := make(chan Message, p.cfg.WorkerCount)
	aggregator := NewAggregator(p.cfg, src.Size(), p.opts.progress, logger)
	aggDone := make(chan aggregateResult, 1)

	p.transition(StateRunning)
	go func() {
		stats, err := aggregator.Run(runCtx, transfer)
		if err != nil {
			cancel()
		}
		aggDone <- aggregateResult{stats: stats, err: err}
	}()

	workerStats := make([]WorkerStats, len(shards))
	partials := make([]string, len(shards))
	g, gctx := errgroup.WithContext(runCtx)
	for i, s := range shards {
		partials[i] = p.cfg.PartialPath(s.Index)
		w := NewWorker(s, src, src.Size(), p.cfg, p.normalizer, transfer, partials[i], logger)
		g.Go(func() error {
			stats, err := w.Run(gctx)
			workerStats[i] = stats
			if err != nil {
				return fmt.Errorf("%w: shard %d: %w", ErrShardFailed, s.Index, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		cancel()
		if agg := <-aggDone; agg.err != nil && !errors.Is(agg.err, context.Canceled) {
			err = agg.err
		}
		return nil, p.fail(ctx, err)
	}

	p.transition(StateDraining)
	select {
	case transfer <- Termination{}:
	case <-runCtx.Done():
	}
	agg := <-aggDone
	if agg.err != nil {
		return nil, p.fail(ctx, agg.err)
	}
	if ctx.Err() != nil {
		return nil, p.fail(ctx, ctx.Err())
	}

	p.transition(StateMerging)
	written, err := p.storage.JoinFiles(partials, p.cfg.PreparedPath)
	if err != nil {
		p.transition(StateFailed)
		return nil, fmt.Errorf("failed to join shard files: %w", err)
	}
	if err := p.storage.RemoveFiles(partials); err != nil {
		logger.Warn("Failed to remove shard files", "error", err)
	}

	result := &Result{
		TotalBytes:      src.Size(),
		Shards:          shards,
		Batches:         agg.stats.Batches,
		Prunes:          agg.stats.Prunes,
		DistinctWords:   agg.stats.DistinctWords,
		VocabularyWords: agg.stats.VocabularyWords,
		PreparedBytes:   written,
		Top:             agg.stats.Top,
		Duration:        time.Since(start),
		State:           StateDone,
	}
	for _, ws := range workerStats {
		result.Lines += ws.Lines
		result.PreparedLines += ws.CleanedLines
		result.SkippedLines += ws.SkippedLines
	}

	p.transition(StateDone)
	logger.Info("Corpus prepared", "prepared", p.cfg.PreparedPath, "vocabulary", p.cfg.VocabularyPath,
		"lines", result.PreparedLines, "words", result.VocabularyWords, "duration", result.Duration)
	return result, nil
}

// fail maps err to the run outcome: cancelled when the caller's context is
// done, fatal otherwise.
func (p *Pipeline) fail(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		p.transition(StateCancelled)
		p.opts.logger.Warn("Preparation cancelled, partial files left on disk", "temp_dir", p.cfg.TempDir)
		return fmt.Errorf("%w: %w", ErrCancelled, context.Cause(ctx))
	}
	p.transition(StateFailed)
	if errors.Is(err, ErrShardFailed) {
		p.opts.logger.Error("Shard worker failed", "error", err)
	}
	return err
}

func (p *Pipeline) transition(s State) {
	p.opts.logger.Info("Pipeline state", "state", s.String())
	if p.opts.stateHook != nil {
		p.opts.stateHook(s)
	}
}
