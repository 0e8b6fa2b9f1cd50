// memkit reads text through memkit's string buffers and dynamic arrays,
// backed by a configurable allocator.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

var (
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	allocatorFlag = &cli.StringFlag{
		Name:  "allocator",
		Usage: "allocator backend (heap, arena)",
	}
	chunkSizeFlag = &cli.IntFlag{
		Name:  "chunk-size",
		Usage: "arena chunk size in bytes",
	}
	budgetFlag = &cli.IntFlag{
		Name:  "budget",
		Usage: "maximum bytes taken from the heap (0 = unlimited)",
	}
	verboseFlag = &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "development logging at debug level",
	}

	atFlag = &cli.IntFlag{
		Name:     "at",
		Usage:    "start index of the replaced range",
		Required: true,
	}
	countFlag = &cli.IntFlag{
		Name:     "count",
		Usage:    "length of the replaced range",
		Required: true,
	}
	withFlag = &cli.StringFlag{
		Name:  "with",
		Usage: "replacement text",
	}
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "memkit",
		Usage: "process text with allocator-backed buffers",
		Flags: []cli.Flag{
			configFlag,
			allocatorFlag,
			chunkSizeFlag,
			budgetFlag,
			verboseFlag,
		},
		Commands: []*cli.Command{
			{
				Name:      "lines",
				Usage:     "count lines and report their lengths",
				ArgsUsage: "[file]",
				Action:    linesAction,
			},
			{
				Name:      "cat",
				Usage:     "read the whole input into one buffer and write it out",
				ArgsUsage: "[file]",
				Action:    catAction,
			},
			{
				Name:      "replace",
				Usage:     "replace a byte range on every line",
				ArgsUsage: "[file]",
				Flags:     []cli.Flag{atFlag, countFlag, withFlag},
				Action:    replaceAction,
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
