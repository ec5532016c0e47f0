package engine

import (
	"context"
	"fmt"

	"toyblock/pkg/bitops"
	"toyblock/pkg/log"

	"golang.org/x/sync/errgroup"
)

// cancellation is checked once per this many blocks in parallel batches
const cancelCheckEvery = 1024

// Cipher binds a Definition to the round keys derived from one master key.
// It is immutable and safe for concurrent use.
type Cipher struct {
	def    *Definition
	rounds int
	keys   []uint64
}

// NewCipher validates the definition, round count and key, then derives the
// round keys once.
func NewCipher(def *Definition, key uint64, rounds int) (*Cipher, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if rounds < 1 {
		return nil, def.configErr("rounds must be >= 1, got %d", rounds)
	}
	c, err := derive(def, key, rounds)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("cipher", def.Name).Int("rounds", rounds).Int("round_keys", len(c.keys)).Msg("derived round keys")
	return c, nil
}

// Rekey returns a cipher with the same definition and round count under
// another key. The definition is not validated again.
func (c *Cipher) Rekey(key uint64) (*Cipher, error) {
	return derive(c.def, key, c.rounds)
}

func derive(def *Definition, key uint64, rounds int) (*Cipher, error) {
	if err := bitops.CheckWidth(key, def.KeyWidth, "key"); err != nil {
		return nil, fmt.Errorf("%s: %w", def.Name, err)
	}
	keys := def.Schedule(key, rounds)
	need := def.RequiredKeys(rounds)
	if len(keys) < need {
		return nil, def.configErr("%d rounds need %d round keys, schedule yields %d", rounds, need, len(keys))
	}
	keys = append([]uint64(nil), keys[:need]...)
	for i, rk := range keys {
		if err := bitops.CheckWidth(rk, def.RoundKeyWidth, "round key"); err != nil {
			return nil, fmt.Errorf("%s: round key %d: %w", def.Name, i, err)
		}
	}
	return &Cipher{def: def, rounds: rounds, keys: keys}, nil
}

func (c *Cipher) Definition() *Definition { return c.def }
func (c *Cipher) BlockWidth() int         { return c.def.BlockWidth }
func (c *Cipher) Rounds() int             { return c.rounds }

// RoundKeys returns a copy of the derived round keys.
func (c *Cipher) RoundKeys() []uint64 {
	return append([]uint64(nil), c.keys...)
}

// EncryptBlock encrypts one block.
func (c *Cipher) EncryptBlock(p uint64) (uint64, error) {
	if err := c.checkBlock(p); err != nil {
		return 0, err
	}
	return c.encrypt(p), nil
}

func (c *Cipher) checkBlock(p uint64) error {
	if err := bitops.CheckWidth(p, c.def.BlockWidth, "plaintext"); err != nil {
		return fmt.Errorf("%s: %w", c.def.Name, err)
	}
	return nil
}

func (c *Cipher) checkBlocks(blocks []uint64) error {
	for i, p := range blocks {
		if err := c.checkBlock(p); err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
	}
	return nil
}

func (c *Cipher) encrypt(p uint64) uint64 {
	if c.def.Composition == SPN {
		return encryptSPN(c.def.SPN, p, c.keys, c.rounds)
	}
	return encryptFeistel(c.def.Feistel, p, c.keys, c.rounds)
}

// EncryptMany encrypts every block independently. All blocks are checked
// before the first one is encrypted.
func (c *Cipher) EncryptMany(blocks []uint64) ([]uint64, error) {
	if err := c.checkBlocks(blocks); err != nil {
		return nil, err
	}
	out := make([]uint64, len(blocks))
	for i, p := range blocks {
		out[i] = c.encrypt(p)
	}
	return out, nil
}

// EncryptManyParallel returns the same result as EncryptMany, spreading the
// blocks over at most workers goroutines.
func (c *Cipher) EncryptManyParallel(ctx context.Context, blocks []uint64, workers int) ([]uint64, error) {
	if err := c.checkBlocks(blocks); err != nil {
		return nil, err
	}
	out := make([]uint64, len(blocks))
	if len(blocks) == 0 {
		return out, nil
	}
	workers = max(workers, 1)
	size := (len(blocks) + workers - 1) / workers

	log.Debug().Str("cipher", c.def.Name).Int("blocks", len(blocks)).Int("workers", workers).Msg("parallel batch")

	g, ctx := errgroup.WithContext(ctx)
	for start := 0; start < len(blocks); start += size {
		end := min(start+size, len(blocks))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if (i-start)%cancelCheckEvery == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				out[i] = c.encrypt(blocks[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Encrypt encrypts a single block under key with the given round count.
func Encrypt(def *Definition, plaintext, key uint64, rounds int) (uint64, error) {
	c, err := NewCipher(def, key, rounds)
	if err != nil {
		return 0, err
	}
	return c.EncryptBlock(plaintext)
}

// EncryptMany is ECB over a slice of blocks.
func EncryptMany(def *Definition, blocks []uint64, key uint64, rounds int) ([]uint64, error) {
	c, err := NewCipher(def, key, rounds)
	if err != nil {
		return nil, err
	}
	return c.EncryptMany(blocks)
}

func EncryptManyParallel(ctx context.Context, def *Definition, blocks []uint64, key uint64, rounds, workers int) ([]uint64, error) {
	c, err := NewCipher(def, key, rounds)
	if err != nil {
		return nil, err
	}
	return c.EncryptManyParallel(ctx, blocks, workers)
}
