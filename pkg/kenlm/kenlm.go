// Package kenlm runs the KenLM command line tools that turn a prepared corpus
// into a filtered, quantized binary n-gram model.
package kenlm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
)

const (
	// Order is the n-gram order of generated models.
	Order = 5

	lmplz       = "lmplz"
	filter      = "filter"
	buildBinary = "build_binary"
)

// ErrToolMissing is returned when a KenLM binary cannot be found.
var ErrToolMissing = errors.New("kenlm tool not found")

// Toolchain locates the KenLM binaries. An empty BinDir searches PATH.
type Toolchain struct {
	BinDir string
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// NewToolchain returns a toolchain for binDir that discards tool output.
func NewToolchain(binDir string, logger *slog.Logger) *Toolchain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Toolchain{BinDir: binDir, Stdout: io.Discard, Stderr: io.Discard, Logger: logger}
}

// BuildArpaArgs returns the lmplz arguments estimating an unpruned-unigram
// model of prepared into arpa.
func BuildArpaArgs(tempPrefix, prepared, arpa string) []string {
	return []string{
		"--temp_prefix", tempPrefix,
		"--memory", "80%",
		"--discount_fallback",
		"--text", prepared,
		"--arpa", arpa,
		"--skip", "symbols",
		"--order", fmt.Sprint(Order),
		"--prune", "0", "0", "1",
	}
}

// FilterArgs returns the filter arguments keeping only vocabulary words.
func FilterArgs(arpa, filtered string) []string {
	return []string{"single", "model:" + arpa, filtered}
}

// BuildBinaryArgs returns the build_binary arguments for a quantized trie.
func BuildBinaryArgs(arpa, binary string) []string {
	return []string{"-a", "255", "-q", "8", "-v", "trie", arpa, binary}
}

// BuildArpa estimates the unfiltered ARPA model.
func (t *Toolchain) BuildArpa(ctx context.Context, tempPrefix, prepared, arpa string) error {
	return t.run(ctx, lmplz, nil, BuildArpaArgs(tempPrefix, prepared, arpa)...)
}

// Filter restricts arpa to the words listed in vocabularyPath.
func (t *Toolchain) Filter(ctx context.Context, vocabularyPath, arpa, filtered string) error {
	vocabulary, err := os.ReadFile(vocabularyPath)
	if err != nil {
		return fmt.Errorf("failed to read vocabulary: %w", err)
	}
	return t.run(ctx, filter, bytes.NewReader(vocabulary), FilterArgs(arpa, filtered)...)
}

// BuildBinary compiles arpa into the binary trie format.
func (t *Toolchain) BuildBinary(ctx context.Context, arpa, binary string) error {
	return t.run(ctx, buildBinary, nil, BuildBinaryArgs(arpa, binary)...)
}

// Check verifies that every tool can be found.
func (t *Toolchain) Check() error {
	var errs []error
	for _, tool := range []string{lmplz, filter, buildBinary} {
		if _, err := t.lookup(tool); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t *Toolchain) lookup(tool string) (string, error) {
	name := tool
	if t.BinDir != "" {
		name = filepath.Join(t.BinDir, tool)
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrToolMissing, tool, err)
	}
	return path, nil
}

func (t *Toolchain) run(ctx context.Context, tool string, stdin io.Reader, args ...string) error {
	path, err := t.lookup(tool)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = stdin
	cmd.Stdout = t.Stdout
	cmd.Stderr = t.Stderr

	t.Logger.Info("Running KenLM tool", "tool", tool, "args", args)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s interrupted: %w", tool, ctx.Err())
		}
		return fmt.Errorf("failed to run %s: %w", tool, err)
	}
	return nil
}
