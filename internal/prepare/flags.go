package prepare

import (
	"runtime"

	"github.com/dtnitsch/lm-corpus/internal/common"
	"github.com/urfave/cli/v2"
)

// Flags returns the flags of the prepare command.
func Flags() []cli.Flag {
	flags := append(common.OutputFlags(),
		common.DatabaseFlag(),
		common.ForceFlag("Prepare again even if the prepared corpus is up to date"),
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML file with preparation settings",
		},
		&cli.StringFlag{
			Name:    "input",
			Aliases: []string{"i"},
			Usage:   "Input text file (default: the fetched corpus)",
		},
		&cli.IntFlag{
			Name:    "workers",
			Aliases: []string{"w"},
			Value:   runtime.NumCPU(),
			Usage:   "Number of shard workers",
		},
		&cli.StringFlag{
			Name:  "block-size",
			Value: "100M",
			Usage: "Bytes read per block, e.g. 64K, 100M",
		},
		&cli.IntFlag{
			Name:  "vocabulary-size",
			Value: 500000,
			Usage: "Number of words kept in the vocabulary",
		},
		&cli.IntFlag{
			Name:  "prune-factor",
			Value: 10,
			Usage: "Prune the running counts at vocabulary-size times this factor",
		},
		&cli.IntFlag{
			Name:  "max-keys",
			Value: 100000,
			Usage: "Distinct words a worker buffers before flushing",
		},
		&cli.BoolFlag{
			Name:  "mmap",
			Usage: "Memory-map the input instead of positional reads",
		},
		&cli.BoolFlag{
			Name:  "strip-markup",
			Usage: "Reduce HTML lines to their visible text",
		},
		&cli.IntFlag{
			Name:  "detect-sample-lines",
			Value: 200,
			Usage: "Lines sampled to check the input language (0 disables)",
		},
		&cli.BoolFlag{
			Name:  "strict-language",
			Usage: "Fail when the input looks like another language",
		},
	)
	return append(flags, common.WeightFlags()...)
}
