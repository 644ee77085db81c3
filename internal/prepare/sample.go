package prepare

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// maxSampleLine bounds a single sampled line; longer lines are skipped.
const maxSampleLine = 1 << 20

// SampleLines returns up to n non-blank lines from the start of path.
func SampleLines(path string, n int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sample: %w", err)
	}
	defer f.Close()

	r := bufio.NewReaderSize(f, 64<<10)
	var lines []string
	for len(lines) < n {
		line, err := readLine(r)
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
		if err != nil {
			break // EOF or a read error; a short sample is still usable
		}
	}
	return lines, nil
}

func readLine(r *bufio.Reader) (string, error) {
	var sb strings.Builder
	tooLong := false
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			return sb.String(), err
		}
		if sb.Len()+len(chunk) > maxSampleLine {
			tooLong = true
		} else if !tooLong {
			sb.Write(chunk)
		}
		if !isPrefix {
			if tooLong {
				return "", nil
			}
			return sb.String(), nil
		}
	}
}
