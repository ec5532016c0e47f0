// Package keysearch recovers keys from known plaintext/ciphertext pairs when
// the low bits of the key are already known and the rest is small enough to
// enumerate.
package keysearch

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"toyblock/pkg/bitops"
	"toyblock/pkg/engine"
	"toyblock/pkg/log"

	"golang.org/x/sync/errgroup"
)

// MaxUnknownWidth bounds the enumerated part of the key.
const MaxUnknownWidth = 32

const cancelCheckEvery = 4096

var (
	ErrNoPairs       = errors.New("key search needs at least one known pair")
	ErrSearchTooWide = errors.New("unknown key width too large to enumerate")
)

type Pair struct {
	Plaintext  uint64
	Ciphertext uint64
}

type Request struct {
	Definition *engine.Definition
	Rounds     int // zero means the definition's default
	Pairs      []Pair

	// Candidates are hi<<KnownWidth | KnownLow for hi in [0, 2^UnknownWidth).
	KnownLow     uint64
	KnownWidth   int
	UnknownWidth int

	Workers int
}

func (r *Request) validate() (*engine.Cipher, error) {
	def := r.Definition
	if def == nil {
		return nil, fmt.Errorf("no cipher definition: %w", engine.ErrConfiguration)
	}
	if len(r.Pairs) == 0 {
		return nil, ErrNoPairs
	}
	if r.KnownWidth < 0 || r.UnknownWidth < 0 || r.KnownWidth+r.UnknownWidth > def.KeyWidth {
		return nil, fmt.Errorf("%s: known %d + unknown %d bits exceed %d bit key: %w",
			def.Name, r.KnownWidth, r.UnknownWidth, def.KeyWidth, engine.ErrConfiguration)
	}
	if r.UnknownWidth > MaxUnknownWidth {
		return nil, fmt.Errorf("%d bits: %w", r.UnknownWidth, ErrSearchTooWide)
	}
	if err := bitops.CheckWidth(r.KnownLow, r.KnownWidth, "known key bits"); err != nil {
		return nil, err
	}
	for i, p := range r.Pairs {
		if err := bitops.CheckWidth(p.Plaintext, def.BlockWidth, "plaintext"); err != nil {
			return nil, fmt.Errorf("pair %d: %w", i, err)
		}
		if err := bitops.CheckWidth(p.Ciphertext, def.BlockWidth, "ciphertext"); err != nil {
			return nil, fmt.Errorf("pair %d: %w", i, err)
		}
	}
	rounds := r.Rounds
	if rounds == 0 {
		rounds = def.DefaultRounds
	}
	return engine.NewCipher(def, r.KnownLow, rounds)
}

func matches(c *engine.Cipher, pairs []Pair) (bool, error) {
	for _, p := range pairs {
		got, err := c.EncryptBlock(p.Plaintext)
		if err != nil {
			return false, err
		}
		if got != p.Ciphertext {
			return false, nil
		}
	}
	return true, nil
}

// Search returns every candidate key under which all pairs encrypt as
// given, in ascending order.
func Search(ctx context.Context, req Request) ([]uint64, error) {
	base, err := req.validate()
	if err != nil {
		return nil, err
	}

	total := uint64(1) << req.UnknownWidth
	workers := uint64(max(req.Workers, 1))
	workers = min(workers, total)
	size := (total + workers - 1) / workers

	log.Debug().Str("cipher", req.Definition.Name).Uint64("candidates", total).
		Uint64("workers", workers).Int("pairs", len(req.Pairs)).Msg("key search started")

	found := make([][]uint64, workers)
	g, ctx := errgroup.WithContext(ctx)
	for w := uint64(0); w < workers; w++ {
		lo := w * size
		hi := min(lo+size, total)
		g.Go(func() error {
			for cand := lo; cand < hi; cand++ {
				if (cand-lo)%cancelCheckEvery == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				key := cand<<req.KnownWidth | req.KnownLow
				c, err := base.Rekey(key)
				if err != nil {
					return err
				}
				ok, err := matches(c, req.Pairs)
				if err != nil {
					return err
				}
				if ok {
					found[w] = append(found[w], key)
				}
			}
			log.Debug().Uint64("worker", w).Int("matches", len(found[w])).Msg("key search range done")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	keys := slices.Concat(found...)
	slices.Sort(keys)
	log.Debug().Str("cipher", req.Definition.Name).Int("keys", len(keys)).Msg("key search finished")
	return keys, nil
}
