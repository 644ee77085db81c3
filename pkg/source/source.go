// Package source gives shard workers concurrent read-only access to the input corpus.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"
)

// Source is a read-only view of the input file that is safe for concurrent
// ReadAt calls at disjoint (or overlapping) offsets.
type Source struct {
	io.ReaderAt
	path   string
	size   int64
	file   *os.File
	mapped mmap.MMap
}

// Open opens path read-only. With useMmap the whole file is mapped into memory
// and served from the mapping; otherwise reads go through pread on the file.
// Empty files are never mapped.
func Open(path string, useMmap bool) (*Source, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat input: %w", err)
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, fmt.Errorf("input %s is a directory", path)
	}

	s := &Source{ReaderAt: file, path: path, size: info.Size(), file: file}
	if useMmap && s.size > 0 {
		mapped, err := mmap.Map(file, mmap.RDONLY, 0)
		if err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("failed to map input: %w", err)
		}
		s.mapped = mapped
		s.ReaderAt = bytes.NewReader(mapped)
	}
	return s, nil
}

// Size returns the physical size of the input in bytes.
func (s *Source) Size() int64 {
	return s.size
}

// Path returns the path the source was opened from.
func (s *Source) Path() string {
	return s.path
}

// Mapped reports whether reads are served from a memory mapping.
func (s *Source) Mapped() bool {
	return s.mapped != nil
}

// Close releases the mapping (if any) and the file handle.
func (s *Source) Close() error {
	var errs []error
	if s.mapped != nil {
		if err := s.mapped.Unmap(); err != nil {
			errs = append(errs, fmt.Errorf("failed to unmap input: %w", err))
		}
		s.mapped = nil
	}
	if err := s.file.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
