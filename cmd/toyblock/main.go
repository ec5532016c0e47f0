package main

import (
	"fmt"
	stdlog "log"
	"os"

	"toyblock/pkg/config"
	"toyblock/pkg/log"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

// Version information - will be set at build time
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// cfg is loaded once in before and read by every command.
var cfg = config.DefaultConfig()

func newApp() *cli.App {
	return &cli.App{
		Name:    "toyblock",
		Usage:   "toy block ciphers: a 16-bit SPN and S-DES",
		Version: fmt.Sprintf("%s (built %s)", Version, BuildTime),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration `FILE`",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Log debug events to stderr",
			},
			&cli.StringFlag{
				Name:  "log-db",
				Usage: "Also journal events into the SQLite `FILE` (relative names live in ~/.toyblock)",
			},
		},
		Before: before,
		After:  after,
		Commands: []*cli.Command{
			spnCommand,
			sdesCommand,
			fileCommand,
			searchCommand,
			vizCommand,
			serveCommand,
			logsCommand,
		},
	}
}

func before(c *cli.Context) error {
	loaded, err := config.Load(c.String("config"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error loading configuration: %v", err), 1)
	}
	if c.IsSet("debug") {
		loaded.Debug = c.Bool("debug")
	}
	if c.IsSet("log-db") {
		loaded.LogDB = c.String("log-db")
	}
	if err := loaded.Validate(); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	cfg = loaded

	if cfg.Debug {
		log.SetLevel(zerolog.DebugLevel)
		log.SetStd()
	} else {
		log.SetLevel(zerolog.InfoLevel)
	}
	// logs opens the journal itself to read it
	if cfg.LogDB != "" && c.Args().First() != "logs" {
		if err := log.Init(cfg.LogDB); err != nil {
			return cli.Exit(fmt.Sprintf("Error opening journal: %v", err), 1)
		}
	}
	log.Debug().Str("config_file", cfg.ConfigFile).Msg("configuration loaded")
	return nil
}

func after(c *cli.Context) error {
	return log.Close()
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		stdlog.Fatal(err)
	}
}
