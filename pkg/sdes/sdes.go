// Package sdes is Simplified DES: 8-bit blocks, a 10-bit key and two
// Feistel rounds. Tables use the textbook notation, positions counted from
// the most significant bit starting at 1.
package sdes

import (
	"toyblock/pkg/bitops"
	"toyblock/pkg/engine"
	"toyblock/pkg/sbox"
)

const (
	Name          = "sdes"
	BlockWidth    = 8
	KeyWidth      = 10
	SubkeyWidth   = 8
	DefaultRounds = 2
)

var (
	P10 = bitops.MustTable("P10", 10, bitops.MSB1, []int{3, 5, 2, 7, 4, 10, 1, 9, 8, 6})
	P8  = bitops.MustTable("P8", 10, bitops.MSB1, []int{6, 3, 7, 4, 8, 5, 10, 9})
	LS1 = bitops.MustTable("LS-1", 5, bitops.MSB1, []int{2, 3, 4, 5, 1})
	LS2 = bitops.MustTable("LS-2", 5, bitops.MSB1, []int{3, 4, 5, 1, 2})

	IP    = bitops.MustTable("IP", 8, bitops.MSB1, []int{2, 6, 3, 1, 4, 8, 5, 7})
	IPInv = bitops.MustTable("IP^-1", 8, bitops.MSB1, []int{4, 1, 3, 5, 7, 2, 8, 6})
	EP    = bitops.MustTable("E/P", 4, bitops.MSB1, []int{4, 1, 2, 3, 2, 3, 4, 1})
	P4    = bitops.MustTable("P4", 4, bitops.MSB1, []int{2, 4, 3, 1})
	SW    = bitops.MustTable("SW", 8, bitops.MSB1, []int{5, 6, 7, 8, 1, 2, 3, 4})

	S0 = sbox.Matrix{
		{1, 0, 3, 2},
		{3, 2, 1, 0},
		{0, 2, 1, 3},
		{3, 1, 3, 2},
	}
	S1 = sbox.Matrix{
		{0, 1, 2, 3},
		{2, 0, 1, 3},
		{3, 0, 1, 0},
		{2, 1, 0, 3},
	}

	Layers = &engine.FeistelLayers{
		IP:    IP,
		IPInv: IPInv,
		EP:    EP,
		P4:    P4,
		SW:    SW,
		S0:    &S0,
		S1:    &S1,
	}

	Definition = &engine.Definition{
		Name:          Name,
		Composition:   engine.Feistel,
		BlockWidth:    BlockWidth,
		KeyWidth:      KeyWidth,
		RoundKeyWidth: SubkeyWidth,
		DefaultRounds: DefaultRounds,
		Schedule:      RoundKeys,
		Feistel:       Layers,
	}
)

func init() {
	engine.Register(Definition)
}

// Subkeys derives K1 and K2 from a 10-bit key.
func Subkeys(key uint64) (k1, k2 uint64) {
	left, right := bitops.Halve(P10.Permute(key), KeyWidth)
	left, right = LS1.Permute(left), LS1.Permute(right)
	k1 = P8.Permute(bitops.Concat(left, right, KeyWidth/2))
	left, right = LS2.Permute(left), LS2.Permute(right)
	k2 = P8.Permute(bitops.Concat(left, right, KeyWidth/2))
	return k1, k2
}

// RoundKeys always yields [K1, K2]; the round count does not change them.
func RoundKeys(key uint64, _ int) []uint64 {
	k1, k2 := Subkeys(key)
	return []uint64{k1, k2}
}

// F is the round function on a 4-bit right half.
func F(right, subkey uint64) uint64 {
	return engine.F(Layers, right, subkey)
}

// Fk is one Feistel round on a full 8-bit block.
func Fk(block, subkey uint64) uint64 {
	return engine.FeistelRound(Layers, block, subkey)
}

// Encrypt encrypts one 8-bit block with a 10-bit key over the standard two rounds.
func Encrypt(plaintext, key uint64) (uint64, error) {
	return engine.Encrypt(Definition, plaintext, key, DefaultRounds)
}

// EncryptMany encrypts each block independently under the same key.
func EncryptMany(blocks []uint64, key uint64) ([]uint64, error) {
	return engine.EncryptMany(Definition, blocks, key, DefaultRounds)
}
