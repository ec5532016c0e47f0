package main

import (
	"fmt"
	"os"

	"toyblock/pkg/engine"
	"toyblock/pkg/wiring"

	"github.com/urfave/cli/v2"
)

var vizCommand = &cli.Command{
	Name:      "viz",
	Usage:     "Draw the round structure of a cipher",
	UsageText: "toyblock viz --cipher spn [--rounds 4] [--format svg] [--out spn.svg]",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "cipher", Value: "spn", Usage: "Cipher `NAME` (spn or sdes)"},
		&cli.IntFlag{Name: "rounds", Aliases: []string{"r"}, Usage: "Number of rounds to draw"},
		&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "dot", Usage: "Output `FORMAT`: dot (source), svg or png"},
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Write to `PATH` instead of stdout"},
	},
	Action: vizCmd,
}

func vizCmd(c *cli.Context) error {
	def, err := engine.Lookup(c.String("cipher"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}
	dot, err := wiring.Dot(def, roundsFlag(c, def))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}

	out := []byte(dot)
	if f := c.String("format"); f != "dot" {
		if out, err = wiring.Render(c.Context, dot, f); err != nil {
			return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
		}
	}

	if path := c.String("out"); path != "" {
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return cli.Exit(fmt.Sprintf("Error writing %s: %v", path, err), 1)
		}
		return nil
	}
	_, err = c.App.Writer.Write(out)
	return err
}
