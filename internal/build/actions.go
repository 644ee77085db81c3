package build

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dtnitsch/lm-corpus/internal/common"
	"github.com/dtnitsch/lm-corpus/pkg/artifact_manager"
	"github.com/dtnitsch/lm-corpus/pkg/kenlm"
	"github.com/dtnitsch/lm-corpus/pkg/language"
	"github.com/dtnitsch/lm-corpus/pkg/manifest"
	"github.com/dtnitsch/lm-corpus/pkg/storage"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// StageResult reports what a build stage did.
type StageResult struct {
	Stage   string `yaml:"stage"`
	Path    string `yaml:"path"`
	Skipped bool   `yaml:"skipped"`
}

// Report is printed to stdout when a build ends.
type Report struct {
	Language string        `yaml:"language"`
	Stages   []StageResult `yaml:"stages"`
	Alpha    float64       `yaml:"alpha"`
	Beta     float64       `yaml:"beta"`
}

// BuildAction turns a prepared corpus into a binary KenLM model and writes
// the decoder alphabet next to it.
func BuildAction(c *cli.Context) error {
	logger := common.NewLogger(c)
	lang, manager, err := resolve(c)
	if err != nil {
		return err
	}

	ok, err := manager.Exists(artifact_manager.PreparedFile, artifact_manager.VocabularyFile)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("prepared corpus missing in %s (run 'lmc prepare %s' first)", manager.Dir(), lang.Code())
	}

	tools := kenlm.NewToolchain(c.String("kenlm-bin"), logger)
	if c.Bool("verbose") {
		tools.Stdout, tools.Stderr = os.Stderr, os.Stderr
	}
	if err := tools.Check(); err != nil {
		return err
	}

	var (
		prepared   = manager.Path(artifact_manager.PreparedFile)
		vocabulary = manager.Path(artifact_manager.VocabularyFile)
		unfiltered = manager.Path(artifact_manager.UnfilteredArpaFile)
		filtered   = manager.Path(artifact_manager.FilteredArpaFile)
		binary     = manager.Path(artifact_manager.BinaryModelFile)
	)

	stages := []struct {
		name     string
		artifact string
		inputs   []string
		run      func() error
	}{
		{"arpa", artifact_manager.UnfilteredArpaFile, []string{artifact_manager.PreparedFile}, func() error {
			return tools.BuildArpa(c.Context, manager.TempPrefix(), prepared, unfiltered)
		}},
		{"filter", artifact_manager.FilteredArpaFile, []string{artifact_manager.UnfilteredArpaFile, artifact_manager.VocabularyFile}, func() error {
			return tools.Filter(c.Context, vocabulary, unfiltered, filtered)
		}},
		{"binary", artifact_manager.BinaryModelFile, []string{artifact_manager.FilteredArpaFile}, func() error {
			return tools.BuildBinary(c.Context, filtered, binary)
		}},
	}

	redo := c.Bool("force")
	report := Report{Language: lang.Code()}
	for _, st := range stages {
		needs, err := manager.NeedsBuild(redo, []string{st.artifact}, st.inputs...)
		if err != nil {
			return err
		}
		path := manager.Path(st.artifact)
		if !needs {
			logger.Info("Stage output is up to date, skipping", "stage", st.name, "path", path)
			report.Stages = append(report.Stages, StageResult{Stage: st.name, Path: path, Skipped: true})
			continue
		}
		if err := st.run(); err != nil {
			return fmt.Errorf("stage %s: %w", st.name, err)
		}
		redo = true
		report.Stages = append(report.Stages, StageResult{Stage: st.name, Path: path})
	}

	if report.Alpha, report.Beta, err = RecordWeights(c, lang, manager); err != nil {
		return err
	}

	alphabetPath, err := writeAlphabet(logger, c.String("alphabet-mode"), lang, manager)
	if err != nil {
		return err
	}
	report.Stages = append(report.Stages, StageResult{Stage: "alphabet", Path: alphabetPath})

	out, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	fmt.Print(string(out))
	return nil
}

// RecordWeights returns the decoder weights of the model: the language's
// tuned values, then those of an existing manifest, then --alpha and --beta.
// Overrides are written back to the manifest.
func RecordWeights(c *cli.Context, lang language.Language, manager *artifact_manager.Manager) (alpha, beta float64, err error) {
	alpha, beta = lang.Weights()

	path := manager.Path(artifact_manager.ManifestFile)
	ok, err := manager.Exists(artifact_manager.ManifestFile)
	if err != nil {
		return 0, 0, err
	}
	var m *manifest.RunManifest
	if ok {
		if m, err = manifest.Read(path); err != nil {
			return 0, 0, err
		}
		if m.Config.Alpha != 0 || m.Config.Beta != 0 {
			alpha, beta = m.Config.Alpha, m.Config.Beta
		}
	}

	if !c.IsSet("alpha") && !c.IsSet("beta") {
		return alpha, beta, nil
	}
	alpha, beta = common.Weights(c, alpha, beta)
	if m != nil {
		m.Config.Alpha, m.Config.Beta = alpha, beta
		if err := manifest.Write(m, path, &storage.Storage{}); err != nil {
			return 0, 0, err
		}
	}
	return alpha, beta, nil
}

// AlphabetAction writes only the serialized decoder alphabet.
func AlphabetAction(c *cli.Context) error {
	logger := common.NewLogger(c)
	lang, manager, err := resolve(c)
	if err != nil {
		return err
	}
	path, err := writeAlphabet(logger, c.String("alphabet-mode"), lang, manager)
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func resolve(c *cli.Context) (language.Language, *artifact_manager.Manager, error) {
	if c.NArg() == 0 {
		return nil, nil, fmt.Errorf("language is required (one of: %v)", language.Codes())
	}
	lang, err := language.Get(c.Args().First())
	if err != nil {
		return nil, nil, err
	}
	manager, err := artifact_manager.NewManager(c.String("output-dir"), lang.Code())
	if err != nil {
		return nil, nil, err
	}
	return lang, manager, nil
}

func writeAlphabet(logger *slog.Logger, mode string, lang language.Language, manager *artifact_manager.Manager) (string, error) {
	var vocabulary []string
	if mode == language.ModeAuto || mode == "" {
		var err error
		vocabulary, err = ReadVocabulary(manager.Path(artifact_manager.VocabularyFile))
		if err != nil {
			return "", err
		}
	}

	data, utf8, err := language.ResolveAlphabet(mode, lang, vocabulary)
	if err != nil {
		return "", err
	}
	path := manager.Path(artifact_manager.AlphabetFile)
	if err := (&storage.Storage{}).SaveFile(path, data); err != nil {
		return "", err
	}
	logger.Info("Alphabet written", "path", path, "utf8", utf8, "bytes", len(data))
	return path, nil
}

// ReadVocabulary returns the words of a vocabulary file, one per line.
func ReadVocabulary(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vocabulary: %w", err)
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		words = append(words, strings.Fields(scanner.Text())...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vocabulary: %w", err)
	}
	return words, nil
}
