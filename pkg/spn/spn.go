// Package spn is the 16-bit substitution-permutation network: four 4-bit
// S-boxes per round, a bit transpose between rounds and a 32-bit master key
// read as overlapping 16-bit windows.
package spn

import (
	"toyblock/pkg/bitops"
	"toyblock/pkg/engine"
	"toyblock/pkg/sbox"
)

const (
	Name          = "spn"
	BlockWidth    = 16
	KeyWidth      = 32
	DefaultRounds = 4
	// MaxRounds is the most rounds the key schedule can feed.
	MaxRounds = (KeyWidth - BlockWidth) / windowStep

	windowStep = 4
)

var (
	SBox = sbox.Flat{14, 4, 13, 1, 2, 15, 11, 8, 3, 10, 6, 12, 5, 9, 0, 7}

	// PBox sends bit 4*i+j to bit 4*j+i. It is its own inverse.
	PBox = bitops.MustTable("P", BlockWidth, bitops.LSB0, []int{
		0, 4, 8, 12,
		1, 5, 9, 13,
		2, 6, 10, 14,
		3, 7, 11, 15,
	})

	Definition = &engine.Definition{
		Name:          Name,
		Composition:   engine.SPN,
		BlockWidth:    BlockWidth,
		KeyWidth:      KeyWidth,
		RoundKeyWidth: BlockWidth,
		DefaultRounds: DefaultRounds,
		Schedule:      RoundKeys,
		SPN: &engine.SPNLayers{
			Box:   &SBox,
			Chunk: 4,
			PBox:  PBox,
		},
	}
)

func init() {
	engine.Register(Definition)
}

// RoundKeys returns rounds+1 windows of the key, K_i being the 16 bits
// starting 4*i bits below the top of the key. The key only has room for
// MaxRounds+1 windows; asking for more returns just those.
func RoundKeys(key uint64, rounds int) []uint64 {
	n := min(rounds+1, MaxRounds+1)
	if n < 0 {
		n = 0
	}
	mask := bitops.Mask(BlockWidth)
	keys := make([]uint64, n)
	for i := range keys {
		keys[i] = (key >> (KeyWidth - BlockWidth - windowStep*i)) & mask
	}
	return keys
}

// Encrypt encrypts one 16-bit block with a 32-bit key.
func Encrypt(plaintext, key uint64, rounds int) (uint64, error) {
	return engine.Encrypt(Definition, plaintext, key, rounds)
}

// EncryptMany encrypts each block independently under the same key.
func EncryptMany(blocks []uint64, key uint64, rounds int) ([]uint64, error) {
	return engine.EncryptMany(Definition, blocks, key, rounds)
}
