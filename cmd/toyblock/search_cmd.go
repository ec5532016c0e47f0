package main

import (
	"fmt"
	"strings"

	"toyblock/pkg/bitstr"
	"toyblock/pkg/engine"
	"toyblock/pkg/keysearch"

	"github.com/urfave/cli/v2"
)

var searchCommand = &cli.Command{
	Name:      "search",
	Usage:     "Recover keys from known plaintext/ciphertext pairs",
	UsageText: "toyblock search --cipher sdes --pair 11101010:10100010 [--pair ...] [--known <bin>] [--unknown-bits N]",
	Description: "Keys are hi<<len(known) | known for every hi of --unknown-bits bits. Without --known\n" +
		"the whole key is enumerated, which is only practical for S-DES.",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "cipher", Value: "sdes", Usage: "Cipher `NAME` (spn or sdes)"},
		&cli.StringSliceFlag{Name: "pair", Usage: "Known `PLAIN:CIPHER` pair in binary, repeatable", Required: true},
		&cli.StringFlag{Name: "known", Usage: "Known low key bits as a binary `STRING`; its length sets the known width"},
		&cli.IntFlag{Name: "unknown-bits", Usage: "Number of high key bits to enumerate (default: the rest of the key)", Value: -1},
		&cli.IntFlag{Name: "rounds", Aliases: []string{"r"}, Usage: "Number of rounds (default from config or the cipher)"},
		&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "Worker goroutines (default from config)"},
	},
	Action: searchCmd,
}

func parsePair(s string, width int) (keysearch.Pair, error) {
	p, c, ok := strings.Cut(s, ":")
	if !ok {
		return keysearch.Pair{}, fmt.Errorf("pair %q: want PLAIN:CIPHER", s)
	}
	pv, err := bitstr.Parse(p, width)
	if err != nil {
		return keysearch.Pair{}, fmt.Errorf("pair %q: %w", s, err)
	}
	cv, err := bitstr.Parse(c, width)
	if err != nil {
		return keysearch.Pair{}, fmt.Errorf("pair %q: %w", s, err)
	}
	return keysearch.Pair{Plaintext: pv, Ciphertext: cv}, nil
}

func searchCmd(c *cli.Context) error {
	def, err := engine.Lookup(c.String("cipher"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}

	req := keysearch.Request{
		Definition: def,
		Rounds:     roundsFlag(c, def),
		Workers:    cfg.Workers,
	}
	if c.IsSet("workers") {
		req.Workers = c.Int("workers")
	}
	for _, s := range c.StringSlice("pair") {
		pair, err := parsePair(s, def.BlockWidth)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
		}
		req.Pairs = append(req.Pairs, pair)
	}
	if known := strings.TrimPrefix(strings.ReplaceAll(c.String("known"), "_", ""), "0b"); known != "" {
		if req.KnownLow, err = bitstr.Parse(known, def.KeyWidth); err != nil {
			return cli.Exit(fmt.Sprintf("Error: --known: %v", err), 1)
		}
		req.KnownWidth = len(known)
	}
	req.UnknownWidth = def.KeyWidth - req.KnownWidth
	if n := c.Int("unknown-bits"); n >= 0 {
		req.UnknownWidth = n
	}

	keys, err := keysearch.Search(c.Context, req)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}
	if len(keys) == 0 {
		return cli.Exit("No key matches every pair.", 2)
	}
	for _, k := range keys {
		fmt.Fprintln(c.App.Writer, bitstr.Format(k, def.KeyWidth))
	}
	return nil
}
