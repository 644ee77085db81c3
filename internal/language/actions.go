package language

import (
	"fmt"

	"github.com/dtnitsch/lm-corpus/internal/common"
	"github.com/dtnitsch/lm-corpus/internal/prepare"
	langpkg "github.com/dtnitsch/lm-corpus/pkg/language"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// Info describes a registered language.
type Info struct {
	Code     string  `yaml:"code"`
	Alphabet string  `yaml:"alphabet"`
	Alpha    float64 `yaml:"alpha"`
	Beta     float64 `yaml:"beta"`
	URL      string  `yaml:"url"`
}

// DetectionReport is the result of sampling a corpus file.
type DetectionReport struct {
	File    string  `yaml:"file"`
	Sampled int     `yaml:"sampled_lines"`
	Shares  []Share `yaml:"languages"`
}

// Share is one detected language within a sample.
type Share struct {
	Code  string  `yaml:"code"`
	Lines int     `yaml:"lines"`
	Ratio float64 `yaml:"ratio"`
}

// LanguagesAction prints every registered language as YAML.
func LanguagesAction(c *cli.Context) error {
	var infos []Info
	for _, code := range langpkg.Codes() {
		lang, err := langpkg.Get(code)
		if err != nil {
			return err
		}
		alpha, beta := lang.Weights()
		infos = append(infos, Info{
			Code:     lang.Code(),
			Alphabet: lang.Alphabet(),
			Alpha:    alpha,
			Beta:     beta,
			URL:      lang.TextURL(),
		})
	}

	out, err := yaml.Marshal(infos)
	if err != nil {
		return fmt.Errorf("failed to marshal languages: %w", err)
	}
	fmt.Print(string(out))
	return nil
}

// DetectAction samples the head of a corpus file and reports which
// registered languages it is written in.
func DetectAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	if c.NArg() == 0 {
		return fmt.Errorf("file required\nUsage: lmc detect <file>")
	}
	path := c.Args().First()

	n := c.Int("sample-lines")
	if n <= 0 {
		return fmt.Errorf("--sample-lines must be positive, got %d", n)
	}
	lines, err := prepare.SampleLines(path, n)
	if err != nil {
		return err
	}
	logger.Debug("Sampled corpus", "file", path, "lines", len(lines))

	report := Report(path, lines, langpkg.NewDetector())
	out, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	fmt.Print(string(out))
	return nil
}

// Report classifies sampled lines with d.
func Report(path string, lines []string, d *langpkg.Detector) DetectionReport {
	report := DetectionReport{File: path, Sampled: len(lines)}
	for _, s := range d.Shares(lines) {
		report.Shares = append(report.Shares, Share{Code: s.Code, Lines: s.Lines, Ratio: s.Ratio})
	}
	return report
}
