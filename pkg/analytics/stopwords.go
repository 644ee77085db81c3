// Package analytics ranks corpus vocabulary for reporting.
package analytics

import (
	"strings"

	"github.com/dtnitsch/lm-corpus/pkg/mapreduce"
)

// stopwords holds per-language function words that dominate every corpus and
// say nothing about its content.
var stopwords = map[string]map[string]struct{}{
	"de": set(`
		aber alle als also am an auch auf aus bei bin bis bist da damit dann das
		dass dem den denn der des dich die dir doch du durch ein eine einem einen
		einer eines er es für gegen hat hatte haben hier ich ihm ihn ihr im in
		ist ja jetzt kann kein keine man mein mich mir mit nach nicht noch nur
		ob oder ohne schon sehr sein seine sich sie sind so über um und uns
		unter vom von vor war waren was weil wenn wer wie wir wird wo zu zum zur`),
	"en": set(`
		a about after all also am an and any are as at be because been before
		being but by can could did do does doing down during each few for from
		had has have having he her here hers him his how i if in into is it its
		just me more most my no nor not now of off on once only or other our
		out over own same she should so some such than that the their them then
		there these they this those through to too under until up very was we
		were what when where which while who whom why will with would you your`),
	"pt": set(`
		a ao aos as até com como da das de dela dele do dos e ela ele eles em
		entre era essa esse esta este eu foi for há isso já mais mas me mesmo
		meu minha muito na não nas nem no nos nós o os ou para pela pelo por
		quando que se sem ser seu sua são também te tem tu um uma você`),
}

func set(words string) map[string]struct{} {
	fields := strings.Fields(words)
	m := make(map[string]struct{}, len(fields))
	for _, w := range fields {
		m[w] = struct{}{}
	}
	return m
}

// IsStopword reports whether word is a function word of lang. Unknown
// languages have no stopwords.
func IsStopword(lang, word string) bool {
	_, ok := stopwords[lang][strings.ToLower(word)]
	return ok
}

// ContentKeywords returns up to n entries of ranked that are not stopwords of
// lang, keeping their order.
func ContentKeywords(lang string, ranked []mapreduce.WordCount, n int) []mapreduce.WordCount {
	var out []mapreduce.WordCount
	for _, wc := range ranked {
		if len(out) >= n {
			break
		}
		if IsStopword(lang, wc.Word) {
			continue
		}
		out = append(out, wc)
	}
	return out
}
