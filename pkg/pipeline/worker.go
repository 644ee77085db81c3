package pipeline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"unicode/utf8"

	"github.com/dtnitsch/lm-corpus/pkg/mapreduce"
	"github.com/dtnitsch/lm-corpus/pkg/shard"
)

// WorkerStats summarizes one finished shard.
type WorkerStats struct {
	Lines        int64 // raw lines owned by the shard
	CleanedLines int64 // lines written to the shard file
	SkippedLines int64 // lines dropped as undecodable or in a malformed block
	Batches      int
}

// Worker cleans and counts the lines of a single shard.
type Worker struct {
	shard          shard.Shard
	src            io.ReaderAt
	size           int64
	blockSize      int
	flushThreshold int
	normalizer     Normalizer
	out            chan<- Message
	path           string
	logger         *slog.Logger
}

// NewWorker returns a worker for s reading from src (of physical size size),
// writing cleaned lines to path and sending batches on out.
func NewWorker(s shard.Shard, src io.ReaderAt, size int64, cfg Config, n Normalizer, out chan<- Message, path string, logger *slog.Logger) *Worker {
	return &Worker{
		shard:          s,
		src:            src,
		size:           size,
		blockSize:      cfg.BlockSize,
		flushThreshold: cfg.FlushThreshold,
		normalizer:     n,
		out:            out,
		path:           path,
		logger:         logger.With("shard", s.Index),
	}
}

// Run processes the shard block by block. Malformed blocks are logged and
// skipped; any I/O error on the input or the shard file is returned.
func (w *Worker) Run(ctx context.Context) (WorkerStats, error) {
	var stats WorkerStats

	f, err := os.Create(w.path)
	if err != nil {
		return stats, fmt.Errorf("failed to create shard file: %w", err)
	}
	out := bufio.NewWriterSize(f, 1<<20)

	if err := w.process(ctx, out, &stats); err != nil {
		_ = f.Close() // Close error less important than the processing error
		return stats, err
	}
	if err := out.Flush(); err != nil {
		_ = f.Close()
		return stats, fmt.Errorf("failed to write shard file: %w", err)
	}
	if err := f.Close(); err != nil {
		return stats, fmt.Errorf("failed to close shard file: %w", err)
	}

	w.logger.Debug("Shard finished", "lines", stats.Lines, "cleaned", stats.CleanedLines, "skipped", stats.SkippedLines, "batches", stats.Batches)
	return stats, nil
}

func (w *Worker) process(ctx context.Context, out *bufio.Writer, stats *WorkerStats) error {
	r := shard.NewReader(w.src, w.size, w.shard, w.blockSize)
	counts := make(mapreduce.Counts)
	var flushed int64

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		block, readErr := w.readBlock(r)
		done := errors.Is(readErr, io.EOF)
		if readErr != nil && !done {
			return readErr
		}
		stats.Lines += int64(len(block))

		cleaned, skipped, err := w.clean(block)
		stats.SkippedLines += skipped
		if err != nil {
			w.logger.Warn("Skipping malformed block", "offset", r.Pos(), "lines", len(block), "error", err)
		} else if skipped > 0 {
			w.logger.Warn("Dropped undecodable lines", "offset", r.Pos(), "count", skipped)
		}

		for _, line := range cleaned {
			counts.AddLine(line)
			if _, err := out.WriteString(line); err != nil {
				return fmt.Errorf("failed to write shard file: %w", err)
			}
			if err := out.WriteByte('\n'); err != nil {
				return fmt.Errorf("failed to write shard file: %w", err)
			}
		}
		stats.CleanedLines += int64(len(cleaned))

		if len(counts) > w.flushThreshold || done {
			consumed := r.Consumed()
			if len(counts) > 0 || consumed > flushed {
				batch := PartialCount{Counts: counts, BytesConsumed: uint64(consumed - flushed)}
				if err := w.send(ctx, batch); err != nil {
					return err
				}
				stats.Batches++
			}
			flushed = consumed
			counts = make(mapreduce.Counts)
		}

		if done {
			return nil
		}
	}
}

// readBlock collects owned lines until roughly blockSize bytes were read.
func (w *Worker) readBlock(r *shard.Reader) ([][]byte, error) {
	var block [][]byte
	var n int
	for n < w.blockSize {
		line, err := r.Next()
		if err != nil {
			return block, err
		}
		block = append(block, line)
		n += len(line) + 1
	}
	return block, nil
}

// clean normalizes a block. Undecodable lines are dropped one by one; a panic
// in the normalizer discards the whole block.
func (w *Worker) clean(block [][]byte) (cleaned []string, skipped int64, err error) {
	defer func() {
		if r := recover(); r != nil {
			cleaned = nil
			skipped = int64(len(block))
			err = fmt.Errorf("%w: %v", ErrMalformedBlock, r)
		}
	}()

	for _, raw := range block {
		if !utf8.Valid(raw) {
			skipped++
			continue
		}
		cleaned = append(cleaned, w.normalizer.Normalize(string(raw))...)
	}
	return cleaned, skipped, nil
}

func (w *Worker) send(ctx context.Context, batch PartialCount) error {
	select {
	case w.out <- batch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
