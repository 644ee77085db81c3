package language

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize cleans a raw corpus line:
//
//  1. NFKC normalization and lower-casing
//  2. symbol substitutions, padded with spaces
//  3. one output line per sentence (split at runs of '.', '!' and '?')
//  4. characters outside the alphabet become spaces
//  5. whitespace collapsed, empty sentences dropped
func (s *Spec) Normalize(line string) []string {
	text := strings.ToLower(norm.NFKC.String(line))
	for _, sub := range s.substitutions {
		text = strings.ReplaceAll(text, sub.From, " "+sub.To+" ")
	}

	var out []string
	for _, sentence := range strings.FieldsFunc(text, isSentenceEnd) {
		if cleaned := s.filter(sentence); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}

func (s *Spec) filter(sentence string) string {
	var sb strings.Builder
	sb.Grow(len(sentence))
	space := true // suppresses leading and repeated spaces
	for _, r := range sentence {
		if unicode.IsSpace(r) || !s.allowed[r] || r == ' ' {
			if !space {
				sb.WriteByte(' ')
				space = true
			}
			continue
		}
		sb.WriteRune(r)
		space = false
	}
	return strings.TrimSuffix(sb.String(), " ")
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
