package fetch

import (
	"fmt"

	"github.com/dtnitsch/lm-corpus/internal/common"
	"github.com/dtnitsch/lm-corpus/pkg/artifact_manager"
	"github.com/dtnitsch/lm-corpus/pkg/fetcher"
	"github.com/dtnitsch/lm-corpus/pkg/language"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// StageResult reports what a stage did.
type StageResult struct {
	Stage   string `yaml:"stage"`
	Path    string `yaml:"path"`
	Skipped bool   `yaml:"skipped"`
	Size    string `yaml:"size,omitempty"`
}

// FetchAction downloads the raw corpus of a language and unpacks it. Each
// stage is skipped when its output exists and is newer than its input,
// unless --force is given or an earlier stage was redone.
func FetchAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	if c.NArg() == 0 {
		return fmt.Errorf("language is required (one of: %v)", language.Codes())
	}
	lang, err := language.Get(c.Args().First())
	if err != nil {
		return err
	}
	manager, err := artifact_manager.NewManager(c.String("output-dir"), lang.Code())
	if err != nil {
		return err
	}

	url := c.String("url")
	if url == "" {
		url = lang.TextURL()
	}
	f := fetcher.NewFetcher(c.Bool("quiet"))
	redo := c.Bool("force")
	var results []StageResult

	raw := manager.Path(artifact_manager.RawCorpusFile)
	needs, err := manager.NeedsBuild(redo, []string{artifact_manager.RawCorpusFile})
	if err != nil {
		return err
	}
	if needs {
		logger.Info("Downloading corpus", "url", url, "path", raw)
		n, err := f.Download(c.Context, url, raw)
		if err != nil {
			return err
		}
		results = append(results, StageResult{Stage: "download", Path: raw, Size: common.FormatFileSize(n)})
		redo = true
	} else {
		logger.Info("Corpus already downloaded", "path", raw)
		results = append(results, StageResult{Stage: "download", Path: raw, Skipped: true})
	}

	unprepared := manager.Path(artifact_manager.UnpreparedFile)
	needs, err = manager.NeedsBuild(redo, []string{artifact_manager.UnpreparedFile}, artifact_manager.RawCorpusFile)
	if err != nil {
		return err
	}
	if needs {
		logger.Info("Unzipping corpus", "src", raw, "dst", unprepared)
		n, err := f.Gunzip(raw, unprepared)
		if err != nil {
			return err
		}
		results = append(results, StageResult{Stage: "unzip", Path: unprepared, Size: common.FormatFileSize(n)})
	} else {
		logger.Info("Corpus already unzipped", "path", unprepared)
		results = append(results, StageResult{Stage: "unzip", Path: unprepared, Skipped: true})
	}

	out, err := yaml.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	fmt.Print(string(out))
	return nil
}
