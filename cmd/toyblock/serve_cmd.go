package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"toyblock/pkg/api"
	"toyblock/pkg/log"

	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:      "serve",
	Usage:     "Serve the ciphers over HTTP",
	UsageText: "toyblock serve [--listen :7780] [--journal]",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "listen", Aliases: []string{"l"}, Usage: "Listen `ADDRESS` (default from config)"},
		&cli.BoolFlag{Name: "journal", Usage: "Journal requests into ~/.toyblock/serve.db when no --log-db is given"},
	},
	Action: serveCmd,
}

func serveCmd(c *cli.Context) error {
	addr := cfg.APIListenAddr
	if c.IsSet("listen") {
		addr = c.String("listen")
	}
	if c.Bool("journal") && cfg.LogDB == "" {
		log.MustInit("serve")
	}
	capi := api.NewCipherApi(cfg.Workers)

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		log.Printf("shutting down api")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := capi.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("api shutdown")
		}
	}()

	return capi.Run(addr)
}
