package prepare

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dtnitsch/lm-corpus/internal/common"
	"github.com/dtnitsch/lm-corpus/models"
	"github.com/dtnitsch/lm-corpus/pkg/artifact_manager"
	"github.com/dtnitsch/lm-corpus/pkg/db"
	"github.com/dtnitsch/lm-corpus/pkg/language"
	"github.com/dtnitsch/lm-corpus/pkg/manifest"
	"github.com/dtnitsch/lm-corpus/pkg/pipeline"
	"github.com/dtnitsch/lm-corpus/pkg/storage"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// ExitCancelled is the exit code of an interrupted run.
const ExitCancelled = 130

// Summary is printed to stdout when a run ends.
type Summary struct {
	RunID      string   `yaml:"run_id"`
	Language   string   `yaml:"language"`
	Status     string   `yaml:"status"`
	Input      string   `yaml:"input"`
	InputSize  string   `yaml:"input_size"`
	Prepared   string   `yaml:"prepared,omitempty"`
	Vocabulary string   `yaml:"vocabulary,omitempty"`
	Manifest   string   `yaml:"manifest,omitempty"`
	Words      int      `yaml:"vocabulary_words"`
	Lines      int64    `yaml:"prepared_lines"`
	Skipped    int64    `yaml:"skipped_lines"`
	Prunes     int      `yaml:"prunes"`
	Duration   string   `yaml:"duration"`
	Alpha      float64  `yaml:"alpha,omitempty"`
	Beta       float64  `yaml:"beta,omitempty"`
	Top        []string `yaml:"top_keywords,omitempty"`
}

// PrepareAction runs the pipeline for one language and records the run. It
// skips the run when the prepared corpus and vocabulary are newer than the
// input, unless --force is given.
func PrepareAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	cfg, err := ResolveConfig(c)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	blockSize, err := common.ParseFileSize(cfg.BlockSize)
	if err != nil {
		return err
	}

	lang, err := language.Get(cfg.Language)
	if err != nil {
		return err
	}
	manager, err := artifact_manager.NewManager(cfg.OutputDir, lang.Code())
	if err != nil {
		return err
	}

	input := cfg.Input
	if input == "" {
		input = manager.Path(artifact_manager.UnpreparedFile)
	}
	info, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("input not available (run 'lmc fetch %s' first?): %w", lang.Code(), err)
	}

	prepared := manager.Path(artifact_manager.PreparedFile)
	vocabulary := manager.Path(artifact_manager.VocabularyFile)
	if !c.Bool("force") {
		stale, err := artifact_manager.Outdated([]string{prepared, vocabulary}, input)
		if err != nil {
			return err
		}
		if !stale {
			logger.Info("Prepared corpus is up to date, skipping", "prepared", prepared, "vocabulary", vocabulary)
			return printSummary(Summary{
				Language:   lang.Code(),
				Status:     models.RunStatusSkipped,
				Input:      input,
				InputSize:  common.FormatFileSize(info.Size()),
				Prepared:   prepared,
				Vocabulary: vocabulary,
			})
		}
	}

	if cfg.DetectSampleLines > 0 {
		if err := checkLanguage(logger, input, lang.Code(), cfg.DetectSampleLines, c.Bool("strict-language")); err != nil {
			return err
		}
	}

	var normalizer pipeline.Normalizer = lang
	if cfg.StripMarkup {
		normalizer = language.StripMarkup(lang)
	}

	pcfg := pipeline.Config{
		InputPath:      input,
		PreparedPath:   prepared,
		VocabularyPath: vocabulary,
		WorkerCount:    cfg.Workers,
		BlockSize:      int(blockSize),
		VocabularySize: cfg.VocabularySize,
		PruneFactor:    cfg.PruneFactor,
		FlushThreshold: cfg.MaxKeys,
		UseMmap:        cfg.Mmap,
	}

	database, err := db.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	run := &models.Run{
		Language:       lang.Code(),
		InputPath:      input,
		InputBytes:     info.Size(),
		Workers:        cfg.Workers,
		BlockSize:      blockSize,
		VocabularySize: cfg.VocabularySize,
		PruneFactor:    cfg.PruneFactor,
	}
	if err := database.InsertRun(run); err != nil {
		return err
	}
	logger = logger.With("run_id", run.RunID)

	var bar *progressbar.ProgressBar
	if c.Bool("quiet") {
		bar = progressbar.DefaultBytesSilent(info.Size(), "preparing")
	} else {
		bar = progressbar.DefaultBytes(info.Size(), "preparing")
	}

	result, runErr := pipeline.Prepare(c.Context, pcfg, normalizer,
		pipeline.WithLogger(logger),
		pipeline.WithProgress(bar),
		pipeline.WithStateHook(func(s pipeline.State) {
			if s.Terminal() && s != pipeline.StateDone {
				_ = bar.Clear()
			}
		}),
	)
	finished := time.Now().UTC()

	status := models.RunStatusDone
	switch {
	case errors.Is(runErr, pipeline.ErrCancelled):
		status = models.RunStatusCancelled
	case runErr != nil:
		status = models.RunStatusFailed
	}

	var stats models.RunStats
	if result != nil {
		stats = models.RunStats{
			Batches:         result.Batches,
			Prunes:          result.Prunes,
			VocabularyWords: result.VocabularyWords,
			PreparedLines:   result.PreparedLines,
			SkippedLines:    result.SkippedLines,
		}
	}
	// The run record is written even when the context is already cancelled.
	if err := database.FinishRun(run.RunID, status, runErr, info.Size(), stats); err != nil {
		logger.Error("failed to record run outcome", "error", err)
	}

	if runErr != nil {
		if status == models.RunStatusCancelled {
			logger.Warn("Preparation cancelled", "error", runErr)
			return cli.Exit("preparation cancelled", ExitCancelled)
		}
		return runErr
	}

	alpha, beta := lang.Weights()
	if cfg.Alpha != nil {
		alpha = *cfg.Alpha
	}
	if cfg.Beta != nil {
		beta = *cfg.Beta
	}
	s := &storage.Storage{}
	m, err := manifest.Build(manifest.RunInfo{
		RunID:       run.RunID,
		Language:    lang.Code(),
		Status:      status,
		StartedAt:   run.StartedAt,
		FinishedAt:  finished,
		Config:      pcfg,
		StripMarkup: cfg.StripMarkup,
		Alpha:       alpha,
		Beta:        beta,
	}, result, s)
	if err != nil {
		return fmt.Errorf("failed to build manifest: %w", err)
	}
	manifestPath := manager.Path(artifact_manager.ManifestFile)
	if err := manifest.Write(m, manifestPath, s); err != nil {
		return err
	}
	recordArtifacts(logger, database, run.RunID, m, manifestPath)

	return printSummary(Summary{
		RunID:      run.RunID,
		Language:   lang.Code(),
		Status:     status,
		Input:      input,
		InputSize:  common.FormatFileSize(result.TotalBytes),
		Prepared:   pcfg.PreparedPath,
		Vocabulary: pcfg.VocabularyPath,
		Manifest:   manifestPath,
		Words:      result.VocabularyWords,
		Lines:      result.PreparedLines,
		Skipped:    result.SkippedLines,
		Prunes:     result.Prunes,
		Duration:   result.Duration.Round(time.Millisecond).String(),
		Alpha:      alpha,
		Beta:       beta,
		Top:        m.TopKeywords[:min(len(m.TopKeywords), 10)],
	})
}

// ResolveConfig merges defaults, the optional --config file, the language
// argument and explicitly set flags, in that order.
func ResolveConfig(c *cli.Context) (models.PrepareConfig, error) {
	cfg := models.DefaultPrepareConfig()
	if path := c.String("config"); path != "" {
		loaded, err := models.LoadConfig(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if c.NArg() > 0 {
		cfg.Language = c.Args().First()
	}
	if c.IsSet("input") {
		cfg.Input = c.String("input")
	}
	if c.IsSet("output-dir") {
		cfg.OutputDir = c.String("output-dir")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("block-size") {
		cfg.BlockSize = c.String("block-size")
	}
	if c.IsSet("vocabulary-size") {
		cfg.VocabularySize = c.Int("vocabulary-size")
	}
	if c.IsSet("prune-factor") {
		cfg.PruneFactor = c.Int("prune-factor")
	}
	if c.IsSet("max-keys") {
		cfg.MaxKeys = c.Int("max-keys")
	}
	if c.IsSet("mmap") {
		cfg.Mmap = c.Bool("mmap")
	}
	if c.IsSet("strip-markup") {
		cfg.StripMarkup = c.Bool("strip-markup")
	}
	if c.IsSet("detect-sample-lines") {
		cfg.DetectSampleLines = c.Int("detect-sample-lines")
	}
	if c.IsSet("database") {
		cfg.Database = c.String("database")
	}
	if c.IsSet("alpha") || c.IsSet("beta") {
		alpha, beta := common.Weights(c, 0, 0)
		if c.IsSet("alpha") {
			cfg.Alpha = &alpha
		}
		if c.IsSet("beta") {
			cfg.Beta = &beta
		}
	}
	return cfg, nil
}

// checkLanguage samples the input and warns (or fails when strict) if it
// does not look like the requested language.
func checkLanguage(logger *slog.Logger, input, want string, n int, strict bool) error {
	lines, err := SampleLines(input, n)
	if err != nil {
		return err
	}
	got, share := language.NewDetector().Dominant(lines)
	logger.Info("Detected input language", "language", got, "share", share, "sample_lines", len(lines))
	if got == "" || got == want {
		return nil
	}
	if strict {
		return fmt.Errorf("input looks like %q (%.0f%% of %d sampled lines), not %q", got, share*100, len(lines), want)
	}
	logger.Warn("Input language differs from requested language", "requested", want, "detected", got, "share", share)
	return nil
}

func recordArtifacts(logger *slog.Logger, database *db.DB, runID string, m *manifest.RunManifest, manifestPath string) {
	for _, o := range m.Outputs {
		if err := database.RecordArtifact(runID, db.Artifact{Name: o.Name, FilePath: o.Path, SizeBytes: o.SizeBytes, ContentHash: o.SHA256}); err != nil {
			logger.Warn("failed to record artifact", "name", o.Name, "error", err)
		}
	}
	if err := database.RecordArtifact(runID, db.Artifact{Name: "manifest", FilePath: manifestPath}); err != nil {
		logger.Warn("failed to record artifact", "name", "manifest", "error", err)
	}
}

func printSummary(s Summary) error {
	out, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	fmt.Print(string(out))
	return nil
}
