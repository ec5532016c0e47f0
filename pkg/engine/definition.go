// Package engine drives toy block ciphers described as data. A Definition
// names the tables, widths and round composition of one cipher; the round
// functions and the encryption driver are shared by every definition.
package engine

import (
	"fmt"

	"toyblock/pkg/bitops"
	"toyblock/pkg/sbox"
)

// Composition selects how rounds are assembled from the layers.
type Composition int

const (
	// SPN rounds are key mix, substitution, permutation. The last round
	// skips the permutation and mixes a final key instead.
	SPN Composition = iota
	// Feistel rounds update the left half with F(right, key), with the
	// halves swapped between rounds and IP/IP^-1 around the whole.
	Feistel
)

func (c Composition) String() string {
	switch c {
	case SPN:
		return "spn"
	case Feistel:
		return "feistel"
	default:
		return fmt.Sprintf("composition(%d)", int(c))
	}
}

// KeySchedule derives the round keys for a master key. It may return fewer
// keys than the round count needs; the engine reports that as a
// configuration error.
type KeySchedule func(key uint64, rounds int) []uint64

// SPNLayers are the tables of a substitution-permutation network.
type SPNLayers struct {
	Box   sbox.Box
	Chunk int // substitution chunk width
	PBox  *bitops.Table
}

// FeistelLayers are the tables of an S-DES shaped Feistel network.
type FeistelLayers struct {
	IP, IPInv *bitops.Table
	EP        *bitops.Table // expands the right half to round key width
	P4        *bitops.Table // permutes the joined S-box outputs
	SW        *bitops.Table // swaps halves between rounds
	S0, S1    sbox.Box      // applied to the upper and lower half of EP(R)^K
}

// Definition is one cipher instance expressed as configuration.
type Definition struct {
	Name          string
	Composition   Composition
	BlockWidth    int
	KeyWidth      int
	RoundKeyWidth int
	DefaultRounds int
	Schedule      KeySchedule

	SPN     *SPNLayers
	Feistel *FeistelLayers
}

// RequiredKeys returns how many round keys an encryption with the given
// round count consumes.
func (d *Definition) RequiredKeys(rounds int) int {
	if d.Composition == SPN {
		return rounds + 1
	}
	return rounds
}

func (d *Definition) configErr(format string, args ...any) error {
	return fmt.Errorf("%s: %s: %w", d.Name, fmt.Sprintf(format, args...), ErrConfiguration)
}

// Validate checks that the layers agree with the declared widths.
func (d *Definition) Validate() error {
	if d.BlockWidth <= 0 || d.BlockWidth > bitops.MaxWidth {
		return d.configErr("block width %d", d.BlockWidth)
	}
	if d.KeyWidth <= 0 || d.KeyWidth > bitops.MaxWidth {
		return d.configErr("key width %d", d.KeyWidth)
	}
	if d.Schedule == nil {
		return d.configErr("no key schedule")
	}
	switch d.Composition {
	case SPN:
		return d.validateSPN()
	case Feistel:
		return d.validateFeistel()
	default:
		return d.configErr("unknown composition %s", d.Composition)
	}
}

func (d *Definition) validateSPN() error {
	l := d.SPN
	if l == nil || l.Box == nil || l.PBox == nil {
		return d.configErr("spn layers missing")
	}
	if l.Chunk != l.Box.InWidth() || l.Chunk != l.Box.OutWidth() {
		return d.configErr("chunk width %d does not match %d->%d box", l.Chunk, l.Box.InWidth(), l.Box.OutWidth())
	}
	if d.BlockWidth%l.Chunk != 0 {
		return d.configErr("block width %d not a multiple of chunk %d", d.BlockWidth, l.Chunk)
	}
	if l.PBox.In != d.BlockWidth || !l.PBox.IsBijection() {
		return d.configErr("p-box %s is not a permutation of %d bits", l.PBox.Name, d.BlockWidth)
	}
	if d.RoundKeyWidth != d.BlockWidth {
		return d.configErr("round key width %d differs from block width %d", d.RoundKeyWidth, d.BlockWidth)
	}
	return nil
}

func (d *Definition) validateFeistel() error {
	l := d.Feistel
	if l == nil || l.IP == nil || l.IPInv == nil || l.EP == nil || l.P4 == nil || l.SW == nil || l.S0 == nil || l.S1 == nil {
		return d.configErr("feistel layers missing")
	}
	half := d.BlockWidth / 2
	for _, t := range []*bitops.Table{l.IP, l.IPInv, l.SW} {
		if t.In != d.BlockWidth || !t.IsBijection() {
			return d.configErr("%s is not a permutation of %d bits", t.Name, d.BlockWidth)
		}
	}
	if l.EP.In != half || l.EP.Out() != d.RoundKeyWidth {
		return d.configErr("%s maps %d->%d bits, want %d->%d", l.EP.Name, l.EP.In, l.EP.Out(), half, d.RoundKeyWidth)
	}
	if l.S0.InWidth()*2 != d.RoundKeyWidth || l.S1.InWidth() != l.S0.InWidth() || l.S1.OutWidth() != l.S0.OutWidth() {
		return d.configErr("s-boxes do not split a %d bit round key", d.RoundKeyWidth)
	}
	if l.P4.In != 2*l.S0.OutWidth() || l.P4.Out() != half {
		return d.configErr("%s maps %d->%d bits, want %d->%d", l.P4.Name, l.P4.In, l.P4.Out(), 2*l.S0.OutWidth(), half)
	}
	return nil
}
