package db

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dtnitsch/lm-corpus/internal/common"
	"github.com/dtnitsch/lm-corpus/models"
	dbpkg "github.com/dtnitsch/lm-corpus/pkg/db"
	"github.com/dtnitsch/lm-corpus/pkg/manifest"
	"github.com/dtnitsch/lm-corpus/pkg/storage"
	"github.com/urfave/cli/v2"
)

// seedDB records an older German run and a newer English run with a
// manifest, and returns the database path and the run IDs.
func seedDB(t *testing.T) (path, older, newer string) {
	t.Helper()
	dir := t.TempDir()
	path = filepath.Join(dir, "runs.db")
	database, err := dbpkg.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer database.Close()

	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	runs := []*models.Run{
		{Language: "de", InputPath: "de.txt", Workers: 2, StartedAt: start},
		{Language: "en", InputPath: "en.txt", Workers: 4, StartedAt: start.Add(time.Hour)},
	}
	for _, r := range runs {
		if err := database.InsertRun(r); err != nil {
			t.Fatalf("InsertRun() error = %v", err)
		}
		if err := database.FinishRun(r.RunID, models.RunStatusDone, nil, 1<<20, models.RunStats{VocabularyWords: 42}); err != nil {
			t.Fatalf("FinishRun() error = %v", err)
		}
	}

	manifestPath := filepath.Join(dir, "manifest.yaml")
	m := &manifest.RunManifest{
		RunID:           runs[1].RunID,
		Config:          manifest.RunConfig{Alpha: 0.5, Beta: 1.5},
		ContentKeywords: []string{"cat:3", "dog:2"},
	}
	if err := manifest.Write(m, manifestPath, &storage.Storage{}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := database.RecordArtifact(runs[1].RunID, dbpkg.Artifact{Name: "manifest", FilePath: manifestPath}); err != nil {
		t.Fatalf("RecordArtifact() error = %v", err)
	}
	return path, runs[0].RunID, runs[1].RunID
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := &cli.App{
		Name:           "lmc",
		Writer:         &out,
		ExitErrHandler: func(*cli.Context, error) {},
		Commands: []*cli.Command{
			{
				Name:   "runs",
				Action: RunsAction,
				Flags:  []cli.Flag{common.DatabaseFlag(), &cli.IntFlag{Name: "limit", Value: 20}},
			},
			{
				Name:   "run",
				Action: RunAction,
				Flags:  []cli.Flag{common.DatabaseFlag()},
			},
			{
				Name: "latest",
				Action: func(c *cli.Context) error {
					database, err := dbpkg.Open(c.String("database"))
					if err != nil {
						return err
					}
					defer database.Close()
					id, err := GetRunIDOrLatest(c, database)
					fmt.Fprint(c.App.Writer, id)
					return err
				},
				Flags: []cli.Flag{common.DatabaseFlag()},
			},
		},
	}
	err := app.RunContext(context.Background(), append([]string{"lmc"}, args...))
	return out.String(), err
}

func TestGetRunIDOrLatest(t *testing.T) {
	path, older, newer := seedDB(t)

	if got, err := runCommand(t, "latest", "--database", path); err != nil || got != newer {
		t.Errorf("GetRunIDOrLatest() = %q, %v, want %q", got, err, newer)
	}
	if got, err := runCommand(t, "latest", "--database", path, older); err != nil || got != older {
		t.Errorf("GetRunIDOrLatest(%s) = %q, %v", older, got, err)
	}

	empty := filepath.Join(t.TempDir(), "empty.db")
	if _, err := runCommand(t, "latest", "--database", empty); err == nil || !strings.Contains(err.Error(), "no runs found") {
		t.Errorf("GetRunIDOrLatest() error = %v, want no runs found", err)
	}
}

func TestRunsAction(t *testing.T) {
	path, older, newer := seedDB(t)

	out, err := runCommand(t, "runs", "--database", path)
	if err != nil {
		t.Fatalf("RunsAction() error = %v", err)
	}
	if !strings.Contains(out, "Total: 2 runs") {
		t.Errorf("output misses the total:\n%s", out)
	}
	if strings.Index(out, newer) > strings.Index(out, older) {
		t.Errorf("runs not listed newest first:\n%s", out)
	}

	out, err = runCommand(t, "runs", "--database", path, "--limit", "1")
	if err != nil {
		t.Fatalf("RunsAction() error = %v", err)
	}
	if strings.Contains(out, older) || !strings.Contains(out, "Total: 1 runs") {
		t.Errorf("--limit 1 output:\n%s", out)
	}

	out, err = runCommand(t, "runs", "--database", filepath.Join(t.TempDir(), "empty.db"))
	if err != nil || !strings.Contains(out, "No runs found") {
		t.Errorf("RunsAction() on an empty database = %q, %v", out, err)
	}
}

func TestRunAction(t *testing.T) {
	path, older, newer := seedDB(t)

	out, err := runCommand(t, "run", "--database", path)
	if err != nil {
		t.Fatalf("RunAction() error = %v", err)
	}
	for _, want := range []string{"Run " + newer, "Language:    en", "Status:      done", "alpha=0.5 beta=1.5", "Keywords:    cat:3, dog:2", "manifest"} {
		if !strings.Contains(out, want) {
			t.Errorf("output misses %q:\n%s", want, out)
		}
	}

	out, err = runCommand(t, "run", "--database", path, older)
	if err != nil {
		t.Fatalf("RunAction() error = %v", err)
	}
	if !strings.Contains(out, "Language:    de") || strings.Contains(out, "Weights:") {
		t.Errorf("older run output:\n%s", out)
	}

	if _, err := runCommand(t, "run", "--database", path, "missing-run"); err == nil {
		t.Error("RunAction() should fail on an unknown run")
	}
}
