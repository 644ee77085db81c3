package prepare

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dtnitsch/lm-corpus/models"
	"github.com/dtnitsch/lm-corpus/pkg/artifact_manager"
	"github.com/dtnitsch/lm-corpus/pkg/db"
	"github.com/dtnitsch/lm-corpus/pkg/language"
	"github.com/dtnitsch/lm-corpus/pkg/manifest"
	"github.com/urfave/cli/v2"
)

func newTestApp(action cli.ActionFunc) *cli.App {
	return &cli.App{
		Name:           "lmc",
		Flags:          Flags(),
		Action:         action,
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

func resolveArgs(t *testing.T, args ...string) models.PrepareConfig {
	t.Helper()
	var cfg models.PrepareConfig
	app := newTestApp(func(c *cli.Context) error {
		var err error
		cfg, err = ResolveConfig(c)
		return err
	})
	if err := app.Run(append([]string{"lmc"}, args...)); err != nil {
		t.Fatalf("ResolveConfig() error = %v", err)
	}
	return cfg
}

func TestResolveConfig_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lmc.yaml")
	content := `language: en
workers: 3
block_size: 16M
prune_factor: 4
beta: 2.5
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	defaults := resolveArgs(t, "de")
	if defaults.Language != "de" || defaults.BlockSize != "100M" || defaults.PruneFactor != 10 || defaults.Alpha != nil {
		t.Errorf("defaults = %+v", defaults)
	}

	fromFile := resolveArgs(t, "--config", path)
	if fromFile.Language != "en" || fromFile.Workers != 3 || fromFile.BlockSize != "16M" || fromFile.PruneFactor != 4 {
		t.Errorf("config file values = %+v", fromFile)
	}
	if fromFile.VocabularySize != 500000 {
		t.Errorf("VocabularySize = %d, flag default must not override the config file", fromFile.VocabularySize)
	}

	cfg := resolveArgs(t, "--config", path, "--workers", "7", "--alpha", "0.4", "de")
	tests := []struct {
		name string
		got  any
		want any
	}{
		{"language argument over config", cfg.Language, "de"},
		{"flag over config", cfg.Workers, 7},
		{"config over default", cfg.PruneFactor, 4},
		{"config kept without flag", cfg.BlockSize, "16M"},
		{"default kept", cfg.MaxKeys, 100000},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}
	if cfg.Alpha == nil || *cfg.Alpha != 0.4 {
		t.Errorf("Alpha = %v, want 0.4", cfg.Alpha)
	}
	if cfg.Beta == nil || *cfg.Beta != 2.5 {
		t.Errorf("Beta = %v, want 2.5 from the config file", cfg.Beta)
	}
}

func TestResolveConfig_MissingConfig(t *testing.T) {
	app := newTestApp(func(c *cli.Context) error {
		_, err := ResolveConfig(c)
		return err
	})
	if err := app.Run([]string{"lmc", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "de"}); err == nil {
		t.Error("ResolveConfig() should fail on a missing config file")
	}
}

type prepareEnv struct {
	input    string
	out      string
	database string
}

func newPrepareEnv(t *testing.T) prepareEnv {
	t.Helper()
	dir := t.TempDir()
	env := prepareEnv{
		input:    filepath.Join(dir, "input.txt"),
		out:      filepath.Join(dir, "models"),
		database: filepath.Join(dir, "runs.db"),
	}
	content := strings.Repeat("Der Hund läuft über die Straße.\nDie Katze schläft im Haus.\n", 50)
	if err := os.WriteFile(env.input, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-time.Hour)
	os.Chtimes(env.input, past, past)
	return env
}

func (e prepareEnv) run(ctx context.Context, extra ...string) error {
	args := []string{"lmc", "--input", e.input, "--output-dir", e.out, "--database", e.database,
		"--workers", "2", "--block-size", "1K", "--vocabulary-size", "20", "--detect-sample-lines", "0", "--quiet"}
	args = append(args, extra...)
	return newTestApp(PrepareAction).RunContext(ctx, append(args, "de"))
}

func (e prepareEnv) runs(t *testing.T) []models.Run {
	t.Helper()
	database, err := db.Open(e.database)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer database.Close()
	runs, err := database.ListRuns(0)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	return runs
}

func TestPrepareAction_Cancelled(t *testing.T) {
	env := newPrepareEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := env.run(ctx)
	var exit cli.ExitCoder
	if !errors.As(err, &exit) {
		t.Fatalf("PrepareAction() error = %v, want an exit error", err)
	}
	if exit.ExitCode() != ExitCancelled {
		t.Errorf("exit code = %d, want %d", exit.ExitCode(), ExitCancelled)
	}

	runs := env.runs(t)
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	if runs[0].Status != models.RunStatusCancelled {
		t.Errorf("run status = %q, want %q", runs[0].Status, models.RunStatusCancelled)
	}
	if runs[0].FinishedAt == nil {
		t.Error("cancelled run has no finish time")
	}
}

func TestPrepareAction_SkipsUpToDate(t *testing.T) {
	env := newPrepareEnv(t)
	ctx := context.Background()

	if err := env.run(ctx, "--alpha", "0.5"); err != nil {
		t.Fatalf("PrepareAction() error = %v", err)
	}
	runs := env.runs(t)
	if len(runs) != 1 || runs[0].Status != models.RunStatusDone {
		t.Fatalf("runs = %+v, want one finished run", runs)
	}

	manager, _ := artifact_manager.NewManager(env.out, "de")
	m, err := manifest.Read(manager.Path(artifact_manager.ManifestFile))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	lang, _ := language.Get("de")
	_, beta := lang.Weights()
	if m.Config.Alpha != 0.5 || m.Config.Beta != beta {
		t.Errorf("manifest weights = %v, %v, want 0.5, %v", m.Config.Alpha, m.Config.Beta, beta)
	}

	if err := env.run(ctx); err != nil {
		t.Fatalf("PrepareAction() error = %v", err)
	}
	if got := len(env.runs(t)); got != 1 {
		t.Errorf("up to date prepare recorded a run, got %d runs", got)
	}

	if err := env.run(ctx, "--force"); err != nil {
		t.Fatalf("PrepareAction() error = %v", err)
	}
	if got := len(env.runs(t)); got != 2 {
		t.Errorf("forced prepare: got %d runs, want 2", got)
	}

	future := time.Now().Add(time.Hour)
	os.Chtimes(env.input, future, future)
	if err := env.run(ctx); err != nil {
		t.Fatalf("PrepareAction() error = %v", err)
	}
	if got := len(env.runs(t)); got != 3 {
		t.Errorf("prepare after an input change: got %d runs, want 3", got)
	}
}

func TestPrepareAction_MissingInput(t *testing.T) {
	env := newPrepareEnv(t)
	os.Remove(env.input)
	if err := env.run(context.Background()); err == nil || !strings.Contains(err.Error(), "lmc fetch de") {
		t.Errorf("PrepareAction() error = %v, want a hint to fetch first", err)
	}
}
