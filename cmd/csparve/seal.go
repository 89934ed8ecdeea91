package main

import (
	"fmt"
	"os"

	fasthex "github.com/tmthrgd/go-hex"
	"github.com/urfave/cli/v2"

	"csparve-go/pkg/csparve"
	"csparve-go/pkg/log"
)

var commonFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to the context configuration `FILE` (default: csparve.yaml)",
	},
	&cli.StringFlag{
		Name:     "key",
		Aliases:  []string{"k"},
		Usage:    "Instance input key as 16 hex digits `HEX`",
		Required: true,
	},
}

var sealCommand = &cli.Command{
	Name:      "seal",
	Usage:     "encrypts a file in place and prints its MAC",
	UsageText: "seal -k <hex16> -s <seedfile> [-c config] <file>",
	Description: `Encrypts the file in place. The last 8 bytes of the result carry the
embedded MAC; the printed value is the pre-MAC the peer must see again on open.`,
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:     "seed",
			Aliases:  []string{"s"},
			Usage:    "Instance seed data `FILE` (length must be a multiple of 8)",
			Required: true,
		},
	}, commonFlags...),
	Action: func(c *cli.Context) error { return sealCmd(c, true) },
}

var openCommand = &cli.Command{
	Name:      "open",
	Usage:     "decrypts a sealed file in place and prints the recovered MAC",
	UsageText: "open -k <hex16> -s <seedfile> [-c config] <file>",
	Description: `Decrypts the file in place, restoring the original final 8 bytes, and
prints the recovered pre-MAC. Compare it against the value seal printed; a
mismatch means the ciphertext was tampered with.`,
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:     "seed",
			Aliases:  []string{"s"},
			Usage:    "Instance seed data `FILE` (length must be a multiple of 8)",
			Required: true,
		},
	}, commonFlags...),
	Action: func(c *cli.Context) error { return sealCmd(c, false) },
}

// newInstance builds an Instance from the shared CLI flags.
func newInstance(c *cli.Context) (*csparve.Instance, error) {
	cfg, err := csparve.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	ctx, err := cfg.Open()
	if err != nil {
		return nil, err
	}

	inputKey, err := fasthex.DecodeString(c.String("key"))
	if err != nil {
		return nil, fmt.Errorf("decoding input key: %w", err)
	}
	seed, err := os.ReadFile(c.String("seed"))
	if err != nil {
		return nil, fmt.Errorf("reading seed data: %w", err)
	}
	return ctx.NewInstance(inputKey, seed)
}

func sealCmd(c *cli.Context, seal bool) error {
	if c.NArg() != 1 {
		return cli.Exit("Error: exactly one target file is required.", 1)
	}
	target := c.Args().First()

	log.MustInit("csparve")
	defer log.Close()

	inst, err := newInstance(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}
	defer inst.Destroy()

	data, err := os.ReadFile(target)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error reading %s: %v", target, err), 1)
	}

	var mac uint64
	if seal {
		mac, err = inst.Encode(data)
	} else {
		mac, err = inst.Decode(data)
	}
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error processing %s: %v", target, err), 1)
	}

	if err := os.WriteFile(target, data, 0600); err != nil {
		return cli.Exit(fmt.Sprintf("Error writing %s: %v", target, err), 1)
	}

	op := "open"
	if seal {
		op = "seal"
	}
	log.Info().Str("op", op).Str("file", target).Int("bytes", len(data)).
		Str("mac", fmt.Sprintf("%016x", mac)).Msg("processed file")
	fmt.Printf("%016x\n", mac)
	return nil
}
