package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Set at build time via -ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	app := &cli.App{
		Name:    "csparve",
		Usage:   "chain-&-sum authenticated encryption and keyed hashing",
		Version: fmt.Sprintf("%s (built %s)", Version, BuildTime),
		Commands: []*cli.Command{
			sealCommand,
			openCommand,
			hashCommand,
			benchCommand,
			logsCommand,
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
