// Package shard splits a line-oriented file into byte ranges that can be
// processed independently, and defines which shard owns each line.
//
// Ownership contract: a line belongs to the shard whose range contains the
// line's first byte. A shard therefore skips the tail of a line that started
// in the previous shard, and reads past its own end to finish the last line
// it started. Both sides of every boundary apply the same rule, so each line
// is read exactly once across all shards.
package shard

import "fmt"

// Shard is a contiguous byte range [Start, End) of the input assigned to one worker.
type Shard struct {
	Index int
	Start int64
	End   int64
}

// Len returns the nominal size of the shard in bytes.
func (s Shard) Len() int64 {
	return s.End - s.Start
}

func (s Shard) String() string {
	return fmt.Sprintf("shard %d [%d, %d)", s.Index, s.Start, s.End)
}

// Plan splits totalBytes into count shards of ceil(totalBytes/count) bytes.
// Shard ranges are clamped to totalBytes and the last shard always ends at totalBytes,
// so trailing shards may be empty when the file is small.
func Plan(totalBytes int64, count int) ([]Shard, error) {
	if count <= 0 {
		return nil, fmt.Errorf("shard count must be positive, got %d", count)
	}
	if totalBytes < 0 {
		return nil, fmt.Errorf("total bytes must not be negative, got %d", totalBytes)
	}

	size := (totalBytes + int64(count) - 1) / int64(count)
	shards := make([]Shard, count)
	for i := range shards {
		start := min(int64(i)*size, totalBytes)
		end := min(start+size, totalBytes)
		if i == count-1 {
			end = totalBytes
		}
		shards[i] = Shard{Index: i, Start: start, End: end}
	}
	return shards, nil
}
