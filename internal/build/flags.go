package build

import (
	"github.com/dtnitsch/lm-corpus/internal/common"
	"github.com/urfave/cli/v2"
)

func AlphabetModeFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "alphabet-mode",
		Value: "auto",
		Usage: "Decoder alphabet: auto, utf8 or specific",
	}
}

// Flags returns the flags of the build command.
func Flags() []cli.Flag {
	flags := append(common.OutputFlags(),
		AlphabetModeFlag(),
		common.ForceFlag("Rebuild stages whose output is up to date"),
		&cli.StringFlag{
			Name:    "kenlm-bin",
			EnvVars: []string{"KENLM_BIN"},
			Usage:   "Directory with lmplz, filter and build_binary (default: $PATH)",
		},
	)
	return append(flags, common.WeightFlags()...)
}
