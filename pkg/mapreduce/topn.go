package mapreduce

import (
	"fmt"
	"sort"
)

// WordCount is a single ranked vocabulary entry.
type WordCount struct {
	Word  string
	Count uint64
}

// Top returns the n most frequent words, ordered by count descending.
// Words with equal counts are ordered alphabetically so results are stable across runs.
func Top(wordCounts Counts, n int) []WordCount {
	if n <= 0 {
		return nil
	}

	ss := make([]WordCount, 0, len(wordCounts))
	for k, v := range wordCounts {
		ss = append(ss, WordCount{Word: k, Count: v})
	}

	sort.Slice(ss, func(i, j int) bool {
		if ss[i].Count != ss[j].Count {
			return ss[i].Count > ss[j].Count
		}
		return ss[i].Word < ss[j].Word
	})

	if len(ss) > n {
		// Copy so the discarded tail can be collected.
		ss = append([]WordCount(nil), ss[:n]...)
	}
	return ss
}

// Prune keeps only the n most frequent entries of wordCounts.
// Everything outside the cutoff is discarded for good.
func Prune(wordCounts Counts, n int) Counts {
	top := Top(wordCounts, n)
	pruned := make(Counts, len(top))
	for _, wc := range top {
		pruned[wc.Word] = wc.Count
	}
	return pruned
}

// TopKeywords returns the top N keywords from aggregated word counts as formatted strings.
// Each string is formatted as "word:count" (e.g., "haus:1153").
func TopKeywords(wordCounts Counts, n int) []string {
	return FormatKeywords(Top(wordCounts, n))
}

// FormatKeywords renders ranked entries as "word:count" strings.
func FormatKeywords(ranked []WordCount) []string {
	keywords := make([]string, len(ranked))
	for i, wc := range ranked {
		keywords[i] = fmt.Sprintf("%s:%d", wc.Word, wc.Count)
	}
	return keywords
}
