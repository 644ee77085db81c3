package language

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type markupStripper struct {
	Language
}

// StripMarkup wraps lang so that lines carrying HTML remnants are reduced to
// their visible text before normalization. Lines without a tag pass through.
func StripMarkup(lang Language) Language {
	return markupStripper{Language: lang}
}

func (m markupStripper) Normalize(line string) []string {
	return m.Language.Normalize(VisibleText(line))
}

// VisibleText returns the text content of an HTML fragment, dropping script
// and style elements. Input that does not look like markup is returned as is.
func VisibleText(line string) string {
	open := strings.IndexByte(line, '<')
	if open < 0 || strings.IndexByte(line[open:], '>') < 0 {
		return line
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(line))
	if err != nil {
		return line
	}
	doc.Find("script,style,noscript").Remove()

	var parts []string
	doc.Find("body").Contents().Each(func(i int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, " ")
}
