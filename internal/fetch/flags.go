package fetch

import (
	"github.com/dtnitsch/lm-corpus/internal/common"
	"github.com/urfave/cli/v2"
)

// Flags returns the flags of the fetch command.
func Flags() []cli.Flag {
	return append(common.OutputFlags(),
		&cli.StringFlag{
			Name:  "url",
			Usage: "Corpus URL (default: the language's corpus URL)",
		},
		common.ForceFlag("Redo stages whose output is up to date"),
	)
}
