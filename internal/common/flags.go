package common

import (
	"github.com/dtnitsch/lm-corpus/pkg/artifact_manager"
	"github.com/urfave/cli/v2"
)

// OutputFlags are shared by the commands that write artifacts.
func OutputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "output-dir",
			Value: artifact_manager.DefaultBaseDir,
			Usage: "Base directory for per-language artifacts",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "Only log errors and hide progress bars",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable debug logging",
		},
	}
}

func DatabaseFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "database",
		Usage: "Path to the run database (default: next to the binary)",
	}
}

func ForceFlag(usage string) cli.Flag {
	return &cli.BoolFlag{Name: "force", Usage: usage}
}

// WeightFlags override the decoder weights recorded for a language model.
func WeightFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Float64Flag{
			Name:  "alpha",
			Usage: "Language model weight (default: the language's tuned value)",
		},
		&cli.Float64Flag{
			Name:  "beta",
			Usage: "Word insertion weight (default: the language's tuned value)",
		},
	}
}

// Weights returns alpha and beta, each replaced by its flag when set.
func Weights(c *cli.Context, alpha, beta float64) (float64, float64) {
	if c.IsSet("alpha") {
		alpha = c.Float64("alpha")
	}
	if c.IsSet("beta") {
		beta = c.Float64("beta")
	}
	return alpha, beta
}
