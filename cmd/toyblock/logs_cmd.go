package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"toyblock/pkg/appdir"
	"toyblock/pkg/log"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

// timeFormats are tried in order when a time spec is not a duration.
var timeFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTimeSpec accepts a duration back from now ("1h", "30m") or an
// absolute timestamp.
func parseTimeSpec(spec string, now time.Time) (time.Time, error) {
	if d, err := time.ParseDuration(spec); err == nil {
		return now.Add(-d), nil
	}
	for _, layout := range timeFormats {
		if ts, err := time.ParseInLocation(layout, spec, time.Local); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time specification %q: use a duration such as 1h or a timestamp such as 2024-10-27T15:04:05Z", spec)
}

var logsCommand = &cli.Command{
	Name:      "logs",
	Usage:     "Print entries from the run journal",
	UsageText: "toyblock logs [--dbfile toyblock.db] [-n 20 | --since 1h] [--pretty]",
	Description: "Reads the SQLite journal written when --log-db (or log_db in the config) is set.\n" +
		"Without --since the newest --count entries are printed, oldest first.",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "dbfile",
			Aliases: []string{"f"},
			Usage:   "Journal `PATH` (default: --log-db or log_db)",
		},
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"n"},
			Usage:   "Number of newest entries `NUMBER`",
			Value:   20,
		},
		&cli.StringFlag{
			Name:    "since",
			Aliases: []string{"s"},
			Usage:   "Only entries since `TIME_SPEC` (e.g. '1h', '2024-10-27T10:00:00Z')",
		},
		&cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"l"},
			Usage:   "Max entries with --since `NUMBER`",
			Value:   log.DefaultLimit,
		},
		&cli.BoolFlag{
			Name:    "pretty",
			Aliases: []string{"p"},
			Usage:   "Human readable output instead of raw JSON lines",
		},
	},
	Action: logsCmd,
}

func logsCmd(c *cli.Context) error {
	dbFile := cfg.LogDB
	if c.IsSet("dbfile") {
		dbFile = c.String("dbfile")
	}
	if dbFile == "" {
		return cli.Exit("Error: no journal configured; pass --dbfile or --log-db.", 1)
	}

	// opening a missing file would create an empty journal
	if _, err := os.Stat(appdir.Resolve(dbFile)); errors.Is(err, fs.ErrNotExist) {
		return cli.Exit(fmt.Sprintf("Error: journal not found at '%s'", appdir.Resolve(dbFile)), 1)
	}
	if err := log.Init(dbFile); err != nil {
		return cli.Exit(fmt.Sprintf("Error opening journal: %v", err), 1)
	}
	defer log.Close()

	var (
		entries []log.Entry
		err     error
	)
	if c.IsSet("since") {
		start, perr := parseTimeSpec(c.String("since"), time.Now())
		if perr != nil {
			return cli.Exit(fmt.Sprintf("Error: %v", perr), 1)
		}
		entries, err = log.Since(start, c.Int("limit"))
	} else {
		if c.Int("count") <= 0 {
			return cli.Exit("Error: --count (-n) must be a positive number.", 1)
		}
		entries, err = log.LastN(c.Int("count"))
	}
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error retrieving journal entries: %v", err), 1)
	}

	if len(entries) == 0 {
		fmt.Fprintln(c.App.ErrWriter, "No journal entries found matching the criteria.")
		return nil
	}

	pretty := zerolog.ConsoleWriter{Out: c.App.Writer, NoColor: true, TimeFormat: time.RFC3339}
	for _, e := range entries {
		if c.Bool("pretty") {
			if _, err := pretty.Write([]byte(e.Data)); err == nil {
				continue
			}
		}
		fmt.Fprintln(c.App.Writer, strings.TrimRight(e.Data, "\n"))
	}
	return nil
}
