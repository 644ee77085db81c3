package shard

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// minBufferSize is the smallest buffer bufio accepts.
const minBufferSize = 16

// Reader yields the lines owned by one shard.
type Reader struct {
	shard   Shard
	src     io.ReaderAt
	buf     *bufio.Reader
	pos     int64 // absolute offset of the next unread byte
	aligned bool
}

// NewReader returns a Reader over the lines of s. size is the physical size of src.
// Each underlying read requests at most blockSize bytes, or the shard length if smaller.
func NewReader(src io.ReaderAt, size int64, s Shard, blockSize int) *Reader {
	bufSize := int64(blockSize)
	if l := s.Len(); l < bufSize {
		bufSize = l
	}
	if bufSize < minBufferSize {
		bufSize = minBufferSize
	}

	section := io.NewSectionReader(src, s.Start, size-s.Start)
	return &Reader{
		shard: s,
		src:   src,
		buf:   bufio.NewReaderSize(section, int(bufSize)),
		pos:   s.Start,
	}
}

// Pos returns the absolute file offset of the next unread byte.
func (r *Reader) Pos() int64 {
	return r.pos
}

// Consumed returns how many bytes of the shard's nominal range have been read.
// Bytes read past the shard end to finish a line are not included, so the
// sum over all shards equals the file size once every shard is drained.
func (r *Reader) Consumed() int64 {
	return min(r.pos, r.shard.End) - r.shard.Start
}

// Next returns the next line owned by the shard, without its line terminator.
// It returns io.EOF once the next line would start at or after the shard end.
// Each returned slice is freshly allocated and owned by the caller.
func (r *Reader) Next() ([]byte, error) {
	if !r.aligned {
		if err := r.align(); err != nil {
			return nil, err
		}
	}
	if r.pos >= r.shard.End {
		return nil, io.EOF
	}

	line, err := r.buf.ReadBytes('\n')
	r.pos += int64(len(line))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read %s: %w", r.shard, err)
	}
	if len(line) == 0 {
		return nil, io.EOF
	}
	return trimEOL(line), nil
}

// align skips the tail of a line that started in the previous shard.
func (r *Reader) align() error {
	r.aligned = true
	if r.shard.Start == 0 {
		return nil
	}

	var prev [1]byte
	if _, err := r.src.ReadAt(prev[:], r.shard.Start-1); err != nil {
		return fmt.Errorf("failed to read boundary of %s: %w", r.shard, err)
	}
	if prev[0] == '\n' {
		return nil
	}

	for {
		chunk, err := r.buf.ReadSlice('\n')
		r.pos += int64(len(chunk))
		switch {
		case err == nil, errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		default:
			return fmt.Errorf("failed to skip leading fragment of %s: %w", r.shard, err)
		}
	}
}

func trimEOL(line []byte) []byte {
	n := len(line)
	if n > 0 && line[n-1] == '\n' {
		n--
		if n > 0 && line[n-1] == '\r' {
			n--
		}
	}
	return line[:n]
}
