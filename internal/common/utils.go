package common

import (
	"crypto/sha256"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
)

// ParseFileSize parses sizes such as "100M", "512k", "1.5GB" or "4096".
// Unit letters are binary multiples: "1M" is 1<<20 bytes.
func ParseFileSize(size string) (int64, error) {
	s := strings.ToLower(strings.TrimSpace(size))
	s = strings.TrimSuffix(s, "ib")
	s = strings.TrimSuffix(s, "b")
	if s == "" {
		return 0, fmt.Errorf("invalid size %q", size)
	}
	if strings.ContainsAny(s[len(s)-1:], "kmgtpe") {
		s += "ib"
	}

	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", size, err)
	}
	if n > math.MaxInt64 {
		return 0, fmt.Errorf("size %q out of range", size)
	}
	return int64(n), nil
}

// FormatFileSize renders a byte count with binary units, e.g. "100 MiB".
func FormatFileSize(n int64) string {
	if n < 0 {
		return "-" + humanize.IBytes(uint64(-n))
	}
	return humanize.IBytes(uint64(n))
}

// ContentHash computes SHA256 hash of content and returns hex string.
func ContentHash(data []byte) string {
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}

// FileHash streams a file through SHA256 and returns the hex digest.
func FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
