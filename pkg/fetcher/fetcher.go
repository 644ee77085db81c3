package fetcher

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
)

type Fetcher struct {
	client *http.Client
	quiet  bool
}

func NewFetcher(quiet bool) *Fetcher {
	return &Fetcher{
		client: &http.Client{},
		quiet:  quiet,
	}
}

// Download streams url into dst. The body is written to a temporary file
// next to dst which is renamed once complete, so dst never holds a partial
// download.
func (f *Fetcher) Download(ctx context.Context, url, dst string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("failed to download %s, status code: %d", url, resp.StatusCode)
	}

	return writeAtomic(dst, func(w io.Writer) (int64, error) {
		bar := f.newBar(resp.ContentLength, "downloading")
		defer bar.Finish()
		return io.Copy(io.MultiWriter(w, bar), resp.Body)
	})
}

// Gunzip decompresses the gzip file src into dst.
func (f *Fetcher) Gunzip(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("failed to open archive: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat archive: %w", err)
	}

	bar := f.newBar(info.Size(), "unzipping")
	defer bar.Finish()

	zr, err := gzip.NewReader(io.TeeReader(bufio.NewReader(in), bar))
	if err != nil {
		return 0, fmt.Errorf("failed to read gzip header: %w", err)
	}
	defer zr.Close()

	return writeAtomic(dst, func(w io.Writer) (int64, error) {
		return io.Copy(w, zr)
	})
}

func (f *Fetcher) newBar(total int64, description string) *progressbar.ProgressBar {
	if f.quiet {
		return progressbar.DefaultBytesSilent(total, description)
	}
	return progressbar.DefaultBytes(total, description)
}

func writeAtomic(dst string, fill func(io.Writer) (int64, error)) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}
	tmp := dst + ".download"
	out, err := os.Create(tmp)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", tmp, err)
	}

	bw := bufio.NewWriterSize(out, 1<<20)
	n, err := fill(bw)
	if err == nil {
		err = bw.Flush()
	}
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return n, fmt.Errorf("failed to write %s: %w", dst, err)
	}

	if err := os.Rename(tmp, dst); err != nil {
		return n, fmt.Errorf("failed to rename %s: %w", tmp, err)
	}
	return n, nil
}
