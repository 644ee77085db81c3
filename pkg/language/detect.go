package language

import (
	"sort"

	"github.com/pemistahl/lingua-go"
)

var linguaLanguages = map[string]lingua.Language{
	"de": lingua.German,
	"en": lingua.English,
	"pt": lingua.Portuguese,
}

// Detector guesses which registered language a text sample is written in.
type Detector struct {
	detector lingua.LanguageDetector
	codes    map[lingua.Language]string
}

// NewDetector builds a detector restricted to the registered languages.
func NewDetector() *Detector {
	codes := make(map[lingua.Language]string, len(linguaLanguages))
	languages := make([]lingua.Language, 0, len(linguaLanguages))
	for _, code := range Codes() {
		l, ok := linguaLanguages[code]
		if !ok {
			continue
		}
		codes[l] = code
		languages = append(languages, l)
	}

	return &Detector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(languages...).
			WithMinimumRelativeDistance(0.1).
			Build(),
		codes: codes,
	}
}

// Detect returns the language code of text, or false when unsure.
func (d *Detector) Detect(text string) (string, bool) {
	l, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	code, ok := d.codes[l]
	return code, ok
}

// Share is the fraction of sampled lines detected as one language.
type Share struct {
	Code  string
	Lines int
	Ratio float64
}

// Shares classifies every line and returns the per-language shares, largest
// first. Lines the detector is unsure about count towards the total only.
func (d *Detector) Shares(lines []string) []Share {
	counts := make(map[string]int)
	for _, line := range lines {
		if code, ok := d.Detect(line); ok {
			counts[code]++
		}
	}

	shares := make([]Share, 0, len(counts))
	for code, n := range counts {
		shares = append(shares, Share{Code: code, Lines: n, Ratio: float64(n) / float64(len(lines))})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Lines != shares[j].Lines {
			return shares[i].Lines > shares[j].Lines
		}
		return shares[i].Code < shares[j].Code
	})
	return shares
}

// Dominant returns the most frequent language among lines and its share.
func (d *Detector) Dominant(lines []string) (string, float64) {
	shares := d.Shares(lines)
	if len(shares) == 0 {
		return "", 0
	}
	return shares[0].Code, shares[0].Ratio
}
