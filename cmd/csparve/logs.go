package main

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"csparve-go/pkg/log"
)

// timeFormats includes common layouts to try when parsing absolute time
// strings. Order matters; more specific formats come earlier.
var timeFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTimeSpec attempts to parse a string as either a relative duration from
// now (e.g. "1h", "30m") or an absolute timestamp using various layouts.
func parseTimeSpec(spec string) (time.Time, error) {
	duration, err := time.ParseDuration(spec)
	if err == nil {
		return time.Now().Add(-duration), nil
	}
	for _, layout := range timeFormats {
		if ts, err := time.Parse(layout, spec); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time specification %q: use a relative duration (e.g. '1h', '30m') or an absolute format (e.g. '2023-10-27T15:04:05Z')", spec)
}

var logsCommand = &cli.Command{
	Name:      "logs",
	Usage:     "Retrieve JSON log entries from the application's log database",
	UsageText: "logs [--last|--since|--between] [options]",
	Description: `Retrieves log lines written by the other subcommands. Defaults to the
--last mode when no mode flag is given. Time specs accept relative durations
("1h", "30m") and absolute timestamps ("2023-10-27T15:04:05Z").`,
	Flags: []cli.Flag{
		// Mode flags.
		&cli.BoolFlag{
			Name:  "last",
			Usage: "Mode: Retrieve the most recent N log entries (default)",
		},
		&cli.BoolFlag{
			Name:  "since",
			Usage: "Mode: Retrieve logs since a specific start time",
		},
		&cli.BoolFlag{
			Name:  "between",
			Usage: "Mode: Retrieve logs between a specific start and end time",
		},
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"n"},
			Usage:   "Number of entries for --last mode `NUMBER`",
			Value:   100,
		},
		&cli.StringFlag{
			Name:    "start",
			Aliases: []string{"s"},
			Usage:   "Start time for --since/--between `TIME_SPEC`",
		},
		&cli.StringFlag{
			Name:    "end",
			Aliases: []string{"e"},
			Usage:   "End time for --between `TIME_SPEC`",
		},
		&cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"l"},
			Usage:   "Max entries for --since/--between `NUMBER`",
			Value:   1000,
		},
	},
	Action: logsCmd,
}

func logsCmd(c *cli.Context) error {
	isLast := c.Bool("last")
	isSince := c.Bool("since")
	isBetween := c.Bool("between")

	modeCount := 0
	for _, b := range []bool{isLast, isSince, isBetween} {
		if b {
			modeCount++
		}
	}
	if modeCount == 0 {
		isLast = true
	} else if modeCount > 1 {
		return cli.Exit("Error: Only one mode flag (--last, --since, --between) can be specified at a time.", 1)
	}

	if err := log.Init("csparve.db"); err != nil {
		return cli.Exit(fmt.Sprintf("Error initializing logger (required for DB access): %v", err), 1)
	}
	defer log.Close()

	var results []log.LogEntry
	var retrievalErr error

	switch {
	case isLast:
		count := c.Int("count")
		if count <= 0 {
			return cli.Exit("Error: --count (-n) must be a positive number.", 1)
		}
		results, retrievalErr = log.GetLastNLogs(count)

	case isSince:
		if !c.IsSet("start") {
			return cli.Exit("Error: --start (-s) flag is required for --since mode.", 1)
		}
		startTime, err := parseTimeSpec(c.String("start"))
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error parsing start time: %v", err), 1)
		}
		results, retrievalErr = log.GetLogsSince(startTime, c.Int("limit"))

	case isBetween:
		if !c.IsSet("start") || !c.IsSet("end") {
			return cli.Exit("Error: --start (-s) and --end (-e) flags are required for --between mode.", 1)
		}
		startTime, err := parseTimeSpec(c.String("start"))
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error parsing start time: %v", err), 1)
		}
		endTime, err := parseTimeSpec(c.String("end"))
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error parsing end time: %v", err), 1)
		}
		if startTime.After(endTime) {
			fmt.Fprintf(os.Stderr, "Warning: Start time (%s) is after end time (%s).\n",
				startTime.Format(time.RFC3339), endTime.Format(time.RFC3339))
		}
		results, retrievalErr = log.GetLogsBetween(startTime, endTime, c.Int("limit"))
	}

	if retrievalErr != nil {
		return cli.Exit(fmt.Sprintf("Error retrieving logs: %v", retrievalErr), 1)
	}
	if len(results) == 0 {
		fmt.Fprintln(os.Stderr, "No log entries found matching the criteria.")
		return nil
	}
	for _, entry := range results {
		fmt.Println(entry.LogData)
	}
	return nil
}
