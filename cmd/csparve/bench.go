package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"csparve-go/pkg/benchmark"
	"csparve-go/pkg/log"
)

var benchCommand = &cli.Command{
	Name:      "bench",
	Usage:     "measures component throughput",
	UsageText: "bench [--component NAME] [--iterations N] [--size BYTES]",
	Description: `Runs throughput benchmarks over the crypto components. With no
--component, every component is measured in turn.`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "component",
			Aliases: []string{"C"},
			Usage:   "Component to benchmark: parve, bv4, chainsum, hash or seal `NAME`",
		},
		&cli.IntFlag{
			Name:    "iterations",
			Aliases: []string{"n"},
			Usage:   "Iterations per component `NUMBER`",
			Value:   10000,
		},
		&cli.IntFlag{
			Name:    "size",
			Aliases: []string{"b"},
			Usage:   "Buffer size in `BYTES` (rounded down to a multiple of 8)",
			Value:   1024,
		},
	},
	Action: benchCmd,
}

var componentNames = map[string]benchmark.Component{
	"seal":     benchmark.ComponentAll,
	"parve":    benchmark.ComponentParve,
	"bv4":      benchmark.ComponentBV4,
	"chainsum": benchmark.ComponentChainSum,
	"hash":     benchmark.ComponentHash,
}

func benchCmd(c *cli.Context) error {
	log.MustInit("csparve")
	defer log.Close()

	components := []benchmark.Component{
		benchmark.ComponentParve,
		benchmark.ComponentBV4,
		benchmark.ComponentChainSum,
		benchmark.ComponentHash,
		benchmark.ComponentAll,
	}
	if name := c.String("component"); name != "" {
		comp, ok := componentNames[name]
		if !ok {
			return cli.Exit(fmt.Sprintf("Error: unknown component %q.", name), 1)
		}
		components = []benchmark.Component{comp}
	}

	for _, comp := range components {
		opts := &benchmark.Options{
			Component:  comp,
			Iterations: c.Int("iterations"),
			BufferSize: c.Int("size"),
		}
		res, err := benchmark.Run(opts)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error benchmarking %s: %v", comp, err), 1)
		}
		log.Info().Str("component", comp.String()).Int("iterations", res.Iterations).
			Int("buffer_size", res.BufferSize).Dur("total", res.TotalTime).
			Float64("mb_per_s", res.Throughput).Msg("benchmark result")
		fmt.Println(res)
	}
	return nil
}
