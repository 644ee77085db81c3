// Package language holds the per-language text cleaning rules used when
// preparing a corpus, plus the alphabet a decoder needs to read the model.
package language

import (
	"fmt"
	"sort"
	"strings"
)

// Default decoder weights, used unless a language has tuned its own.
const (
	DefaultAlpha = 0.931289039105002
	DefaultBeta  = 1.1834137581510284
)

// corpusURLPattern points at the deduplicated OSCAR dump of a language.
const corpusURLPattern = "https://traces1.inria.fr/oscar/files/Compressed/%s_dedup.txt.gz"

// Language is the capability set a corpus language provides.
type Language interface {
	Code() string
	// Normalize turns one raw line into zero or more cleaned lines. It is
	// safe for concurrent use.
	Normalize(line string) []string
	// Alphabet returns every character a cleaned line may contain.
	Alphabet() string
	SerializeAlphabet() []byte
	Weights() (alpha, beta float64)
	TextURL() string
}

// Substitution replaces a symbol by a spoken word.
type Substitution struct {
	From string
	To   string
}

// Spec is a Language defined by an alphabet and a list of substitutions.
type Spec struct {
	code          string
	alphabet      string
	allowed       map[rune]bool
	substitutions []Substitution
	alpha, beta   float64
}

// NewSpec builds a language from its alphabet. The alphabet must contain the
// space character.
func NewSpec(code, alphabet string, substitutions []Substitution) (*Spec, error) {
	if !strings.ContainsRune(alphabet, ' ') {
		return nil, fmt.Errorf("alphabet of %q lacks the space character", code)
	}
	allowed := make(map[rune]bool)
	for _, r := range alphabet {
		if allowed[r] {
			return nil, fmt.Errorf("alphabet of %q repeats %q", code, r)
		}
		allowed[r] = true
	}
	return &Spec{
		code:          code,
		alphabet:      alphabet,
		allowed:       allowed,
		substitutions: substitutions,
		alpha:         DefaultAlpha,
		beta:          DefaultBeta,
	}, nil
}

func (s *Spec) Code() string {
	return s.code
}

func (s *Spec) Alphabet() string {
	return s.alphabet
}

func (s *Spec) Weights() (alpha, beta float64) {
	return s.alpha, s.beta
}

func (s *Spec) TextURL() string {
	return fmt.Sprintf(corpusURLPattern, s.code)
}

func (s *Spec) SerializeAlphabet() []byte {
	return SerializeLabels(strings.Split(s.alphabet, "")) // split by rune
}

func (s *Spec) withWeights(alpha, beta float64) *Spec {
	s.alpha, s.beta = alpha, beta
	return s
}

func mustSpec(code, alphabet string, substitutions []Substitution) *Spec {
	s, err := NewSpec(code, alphabet, substitutions)
	if err != nil {
		panic(err)
	}
	return s
}

var registry = map[string]Language{
	"de": mustSpec("de", " abcdefghijklmnopqrstuvwxyzäöüß", []Substitution{
		{From: "$", To: "dollar"},
		{From: "€", To: "euro"},
		{From: "£", To: "pfund"},
	}),
	"en": mustSpec("en", " abcdefghijklmnopqrstuvwxyz'", []Substitution{
		{From: "$", To: "dollar"},
		{From: "€", To: "euro"},
		{From: "£", To: "pound"},
		{From: "&", To: "and"},
	}),
	"pt": mustSpec("pt", " abcdefghijklmnopqrstuvwxyz'áâãàçéêíóôõú", nil).
		withWeights(0.931289039105002, 1.1834137581510284),
}

// Get returns the registered language for code.
func Get(code string) (Language, error) {
	l, ok := registry[strings.ToLower(code)]
	if !ok {
		return nil, fmt.Errorf("unknown language %q (available: %s)", code, strings.Join(Codes(), ", "))
	}
	return l, nil
}

// Codes lists the registered language codes in sorted order.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
