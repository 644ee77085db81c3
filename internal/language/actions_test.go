package language

import (
	"testing"

	langpkg "github.com/dtnitsch/lm-corpus/pkg/language"
)

func TestReport(t *testing.T) {
	lines := []string{
		"Die Katze sitzt auf der Matte und schläft den ganzen Tag.",
		"Wir fahren morgen mit dem Zug nach Berlin.",
		"Eu não sei onde está o meu livro, mas vou procurar amanhã.",
	}

	report := Report("sample.txt", lines, langpkg.NewDetector())
	if report.Sampled != 3 {
		t.Errorf("Sampled = %d, want 3", report.Sampled)
	}
	if len(report.Shares) == 0 || report.Shares[0].Code != "de" {
		t.Fatalf("Shares = %+v, want de first", report.Shares)
	}
	if report.Shares[0].Lines != 2 {
		t.Errorf("de lines = %d, want 2", report.Shares[0].Lines)
	}
}
