package storage

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

type Storage struct{}

// FileStats holds metadata about a file without reading its contents.
type FileStats struct {
	SizeBytes int64
	ModTime   time.Time
}

func (s *Storage) SaveFile(filePath string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}
	if err := os.WriteFile(filePath, content, 0644); err != nil {
		return fmt.Errorf("error saving file: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !os.IsNotExist(err)
}

func (s *Storage) HasFile(fn string) bool {
	return fileExists(fn)
}

// GetFileStats returns metadata about a file using os.Stat (no I/O overhead).
func (s *Storage) GetFileStats(filePath string) (*FileStats, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("error getting file stats: %w", err)
	}

	return &FileStats{
		SizeBytes: info.Size(),
		ModTime:   info.ModTime(),
	}, nil
}

// JoinFiles concatenates parts, strictly in the given order, into dst.
// dst is written to a temporary sibling first and renamed into place, so a
// failed join never leaves a truncated dst behind.
func (s *Storage) JoinFiles(parts []string, dst string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return 0, fmt.Errorf("error creating directory: %w", err)
	}

	tmp := dst + ".joining"
	out, err := os.Create(tmp)
	if err != nil {
		return 0, fmt.Errorf("error creating %s: %w", tmp, err)
	}

	w := bufio.NewWriterSize(out, 1<<20)
	var written int64
	for _, part := range parts {
		n, err := appendFile(w, part)
		written += n
		if err != nil {
			_ = out.Close()
			_ = os.Remove(tmp)
			return written, err
		}
	}

	if err := w.Flush(); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return written, fmt.Errorf("error writing %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return written, fmt.Errorf("error closing %s: %w", dst, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		return written, fmt.Errorf("error renaming %s: %w", tmp, err)
	}
	return written, nil
}

func appendFile(w io.Writer, path string) (int64, error) {
	in, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("error opening part %s: %w", path, err)
	}
	defer in.Close()

	n, err := io.Copy(w, in)
	if err != nil {
		return n, fmt.Errorf("error copying part %s: %w", path, err)
	}
	return n, nil
}

// RemoveFiles deletes every path, ignoring files that are already gone.
func (s *Storage) RemoveFiles(paths []string) error {
	var errs []error
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
