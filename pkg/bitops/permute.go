// Package bitops holds the width-aware bit primitives shared by the ciphers:
// table driven bit permutation and the split/join helpers used by
// substitution layers and key schedules.
//
// Every permutation table carries its own bit numbering. Two schemes exist
// because the ciphers were published with different conventions:
//
//   - LSB0: a position counts from the least significant bit, starting at 0,
//     and output index i is output bit i counted from the least significant end.
//   - MSB1: a position counts from the most significant bit of the input
//     width, starting at 1, and output index i is output bit i counted from the
//     most significant end of the output.
//
// In both schemes output index i is copied from the input bit named by
// Positions[i], and the output width is len(Positions).
package bitops

import (
	"fmt"
)

// Order selects how a table numbers its bits.
type Order int

const (
	LSB0 Order = iota
	MSB1
)

func (o Order) String() string {
	switch o {
	case LSB0:
		return "lsb0"
	case MSB1:
		return "msb1"
	default:
		return fmt.Sprintf("order(%d)", int(o))
	}
}

// Table is a bit permutation, selection or expansion table.
type Table struct {
	Name      string
	In        int // input width in bits
	Order     Order
	Positions []int
}

// NewTable validates positions against the input width and returns the table.
// The positions slice is copied.
func NewTable(name string, in int, order Order, positions []int) (*Table, error) {
	if in <= 0 || in > MaxWidth {
		return nil, fmt.Errorf("table %s: input width %d: %w", name, in, ErrTableDomain)
	}
	if len(positions) == 0 || len(positions) > MaxWidth {
		return nil, fmt.Errorf("table %s: %d output positions: %w", name, len(positions), ErrTableDomain)
	}
	lo, hi := 0, in-1
	if order == MSB1 {
		lo, hi = 1, in
	}
	for i, p := range positions {
		if p < lo || p > hi {
			return nil, fmt.Errorf("table %s: position[%d]=%d outside %d..%d: %w", name, i, p, lo, hi, ErrTableDomain)
		}
	}
	t := &Table{
		Name:      name,
		In:        in,
		Order:     order,
		Positions: make([]int, len(positions)),
	}
	copy(t.Positions, positions)
	return t, nil
}

// MustTable is NewTable for tables fixed at build time. A malformed table
// is a programming error, so it panics.
func MustTable(name string, in int, order Order, positions []int) *Table {
	t, err := NewTable(name, in, order, positions)
	if err != nil {
		panic(err)
	}
	return t
}

// Out returns the output width in bits.
func (t *Table) Out() int { return len(t.Positions) }

// sourceBit maps a table position to an LSB0 index in the input.
func (t *Table) sourceBit(p int) int {
	if t.Order == MSB1 {
		return t.In - p
	}
	return p
}

// destBit maps an output index to an LSB0 index in the output.
func (t *Table) destBit(i int) int {
	if t.Order == MSB1 {
		return len(t.Positions) - 1 - i
	}
	return i
}

// Permute applies the table to x. Bits of x above the input width are ignored.
func (t *Table) Permute(x uint64) uint64 {
	var y uint64
	for i, p := range t.Positions {
		if (x>>t.sourceBit(p))&1 != 0 {
			y |= 1 << t.destBit(i)
		}
	}
	return y
}

// IsBijection reports whether the table is a width preserving permutation.
func (t *Table) IsBijection() bool {
	if len(t.Positions) != t.In {
		return false
	}
	seen := make([]bool, t.In)
	for _, p := range t.Positions {
		s := t.sourceBit(p)
		if seen[s] {
			return false
		}
		seen[s] = true
	}
	return true
}

// Inverse returns the table that undoes t, in the same bit order.
func (t *Table) Inverse() (*Table, error) {
	if !t.IsBijection() {
		return nil, fmt.Errorf("table %s is not a bijection: %w", t.Name, ErrTableDomain)
	}
	inv := make([]int, len(t.Positions))
	for i, p := range t.Positions {
		// output index i reads source position p, so the inverse's output
		// index for position p reads position i.
		switch t.Order {
		case MSB1:
			inv[p-1] = i + 1
		default:
			inv[p] = i
		}
	}
	return NewTable(t.Name+"^-1", t.In, t.Order, inv)
}
