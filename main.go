package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dtnitsch/lm-corpus/internal/build"
	"github.com/dtnitsch/lm-corpus/internal/common"
	"github.com/dtnitsch/lm-corpus/internal/db"
	"github.com/dtnitsch/lm-corpus/internal/fetch"
	"github.com/dtnitsch/lm-corpus/internal/language"
	"github.com/dtnitsch/lm-corpus/internal/prepare"
	"github.com/dtnitsch/lm-corpus/pkg/help"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "lmc",
		Usage: "Prepare text corpora and build KenLM language models",
		Commands: []*cli.Command{
			{
				Name:      "fetch",
				Usage:     "Download and unpack the raw corpus of a language",
				ArgsUsage: "<language>",
				Action:    fetch.FetchAction,
				Flags:     fetch.Flags(),
			},
			{
				Name:      "prepare",
				Usage:     "Normalize a corpus and extract its vocabulary",
				ArgsUsage: "<language>",
				Action:    prepare.PrepareAction,
				Flags:     prepare.Flags(),
			},
			{
				Name:      "build",
				Usage:     "Build the KenLM model and alphabet from a prepared corpus",
				ArgsUsage: "<language>",
				Action:    build.BuildAction,
				Flags:     build.Flags(),
			},
			{
				Name:      "alphabet",
				Usage:     "Write the serialized decoder alphabet of a language",
				ArgsUsage: "<language>",
				Action:    build.AlphabetAction,
				Flags:     append(common.OutputFlags(), build.AlphabetModeFlag()),
			},
			{
				Name:      "detect",
				Usage:     "Report which languages a corpus file is written in",
				ArgsUsage: "<file>",
				Action:    language.DetectAction,
				Flags: append(common.OutputFlags(),
					&cli.IntFlag{
						Name:  "sample-lines",
						Value: 200,
						Usage: "Number of lines to sample",
					},
				),
			},
			{
				Name:  "quickstart",
				Usage: "Print a YAML quick reference",
				Action: func(c *cli.Context) error {
					fmt.Print(help.QuickstartYAML)
					return nil
				},
			},
			{
				Name:   "languages",
				Usage:  "List the supported languages",
				Action: language.LanguagesAction,
			},
			{
				Name:   "runs",
				Usage:  "List recorded preparation runs",
				Action: db.RunsAction,
				Flags: []cli.Flag{
					common.DatabaseFlag(),
					&cli.IntFlag{
						Name:  "limit",
						Value: 20,
						Usage: "Maximum number of runs to show (0 for all)",
					},
				},
			},
			{
				Name:      "run",
				Usage:     "Show a recorded run and its artifacts (default: latest)",
				ArgsUsage: "[run-id]",
				Action:    db.RunAction,
				Flags:     []cli.Flag{common.DatabaseFlag()},
			},
		},
	}
}
