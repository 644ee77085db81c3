package db

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dtnitsch/lm-corpus/internal/common"
	dbpkg "github.com/dtnitsch/lm-corpus/pkg/db"
	"github.com/dtnitsch/lm-corpus/pkg/manifest"
	"github.com/urfave/cli/v2"
)

// RunsAction lists recorded preparation runs, newest first.
func RunsAction(c *cli.Context) error {
	database, err := dbpkg.Open(c.String("database"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()
	w := c.App.Writer

	runs, err := database.ListRuns(c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs found")
		return nil
	}

	fmt.Fprintf(w, "%-36s %-20s %-5s %-10s %-8s %-10s %-8s\n",
		"ID", "Started", "Lang", "Status", "Workers", "Input", "Words")
	fmt.Fprintln(w, strings.Repeat("-", 104))

	for _, r := range runs {
		fmt.Fprintf(w, "%-36s %-20s %-5s %-10s %-8d %-10s %-8d\n",
			r.RunID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Language,
			r.Status,
			r.Workers,
			common.FormatFileSize(r.InputBytes),
			r.Stats.VocabularyWords,
		)
	}

	fmt.Fprintf(w, "\nTotal: %d runs\n", len(runs))
	fmt.Fprintf(w, "\nTip: Use 'lmc run <id>' to see details\n")

	return nil
}

// RunAction shows one run and its artifacts. Without an ID the latest run is
// shown.
func RunAction(c *cli.Context) error {
	database, err := dbpkg.Open(c.String("database"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()
	w := c.App.Writer

	runID, err := GetRunIDOrLatest(c, database)
	if err != nil {
		return err
	}

	run, err := database.GetRun(runID)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}
	artifacts, err := database.GetRunArtifacts(runID)
	if err != nil {
		return fmt.Errorf("failed to get run artifacts: %w", err)
	}

	fmt.Fprintf(w, "Run %s\n", run.RunID)
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Language:    %s\n", run.Language)
	fmt.Fprintf(w, "Input:       %s (%s)\n", run.InputPath, common.FormatFileSize(run.InputBytes))
	fmt.Fprintf(w, "Started:     %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	if run.FinishedAt != nil {
		fmt.Fprintf(w, "Finished:    %s (%s)\n",
			run.FinishedAt.Local().Format("2006-01-02 15:04:05"),
			run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	}
	fmt.Fprintf(w, "Status:      %s\n", run.Status)
	if run.Error != "" {
		fmt.Fprintf(w, "Error:       %s\n", run.Error)
	}
	fmt.Fprintf(w, "Config:      workers=%d block=%s vocabulary=%d prune=%d\n",
		run.Workers, common.FormatFileSize(run.BlockSize), run.VocabularySize, run.PruneFactor)
	fmt.Fprintf(w, "Stats:       %d batches, %d prunes, %d words, %d lines (%d skipped)\n",
		run.Stats.Batches, run.Stats.Prunes, run.Stats.VocabularyWords,
		run.Stats.PreparedLines, run.Stats.SkippedLines)

	for _, a := range artifacts {
		if a.Name == "manifest" {
			printManifest(w, a.FilePath)
		}
	}

	if len(artifacts) > 0 {
		fmt.Fprintf(w, "\nArtifacts (%d):\n", len(artifacts))
		fmt.Fprintln(w, strings.Repeat("-", 60))
		for i, a := range artifacts {
			fmt.Fprintf(w, "%2d. %-12s %s\n", i+1, a.Name, a.FilePath)
			fmt.Fprintf(w, "    Size: %s", common.FormatFileSize(a.SizeBytes))
			if a.ContentHash != "" {
				fmt.Fprintf(w, " | SHA-256: %s", a.ContentHash)
			}
			fmt.Fprintln(w)
		}
	}

	return nil
}

func printManifest(w io.Writer, path string) {
	m, err := manifest.Read(path)
	if err != nil {
		fmt.Fprintf(w, "Manifest:    unavailable (%v)\n", err)
		return
	}
	fmt.Fprintf(w, "Weights:     alpha=%g beta=%g\n", m.Config.Alpha, m.Config.Beta)
	if len(m.ContentKeywords) > 0 {
		fmt.Fprintf(w, "Keywords:    %s\n", strings.Join(m.ContentKeywords[:min(len(m.ContentKeywords), 10)], ", "))
	}
}
