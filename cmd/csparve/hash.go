package main

import (
	"fmt"
	"os"

	fasthex "github.com/tmthrgd/go-hex"
	"github.com/urfave/cli/v2"

	"csparve-go/pkg/csparve"
	"csparve-go/pkg/log"
)

var hashCommand = &cli.Command{
	Name:      "hash",
	Usage:     "prints the combined 64-bit keyed hash of a file",
	UsageText: "hash -k <hex16> [-c config] <file>",
	Description: `Computes the combined keyed hash over the file under the configured
context. This hash is independent of the MACs seal and open report.`,
	Flags:  commonFlags,
	Action: hashCmd,
}

func hashCmd(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("Error: exactly one target file is required.", 1)
	}
	target := c.Args().First()

	log.MustInit("csparve")
	defer log.Close()

	cfg, err := csparve.LoadConfig(c.String("config"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}
	ctx, err := cfg.Open()
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}
	defer ctx.Close()

	inputKey, err := fasthex.DecodeString(c.String("key"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error decoding input key: %v", err), 1)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error reading %s: %v", target, err), 1)
	}

	h, err := ctx.ComputeHash(inputKey, data)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error hashing %s: %v", target, err), 1)
	}

	log.Info().Str("op", "hash").Str("file", target).Int("bytes", len(data)).
		Str("hash", fmt.Sprintf("%016x", h)).Msg("hashed file")
	fmt.Printf("%016x\n", h)
	return nil
}
