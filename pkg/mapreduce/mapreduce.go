package mapreduce

import "strings"

// Counts maps a word to the number of times it was seen.
type Counts map[string]uint64

// AddLine counts every whitespace-separated token of line.
func (c Counts) AddLine(line string) {
	for _, word := range strings.Fields(line) {
		c[word]++
	}
}

// Merge adds every count of other into c.
func (c Counts) Merge(other Counts) {
	for word, count := range other {
		c[word] += count
	}
}
