// Package sbox implements the two substitution box shapes used by the toy
// ciphers: a flat 16-entry lookup and the S-DES style 4x4 matrix addressed
// by non-contiguous bit groups.
package sbox

import (
	"errors"
	"fmt"
)

var ErrTableDomain = errors.New("substitution input outside table domain")

// Box maps an InWidth-bit input to an OutWidth-bit output.
type Box interface {
	Apply(x uint64) uint64
	InWidth() int
	OutWidth() int
}

func checkDomain(name string, x uint64) {
	if x > 0xF {
		panic(fmt.Errorf("sbox %s: input %#x: %w", name, x, ErrTableDomain))
	}
}

// Flat is a 4-bit to 4-bit lookup table.
type Flat [16]uint8

func (f *Flat) Apply(x uint64) uint64 {
	checkDomain("flat", x)
	return uint64(f[x])
}

func (f *Flat) InWidth() int  { return 4 }
func (f *Flat) OutWidth() int { return 4 }

// Matrix is a 4x4 table with 2-bit entries. The row is taken from the outer
// bits (3 and 0) of the input and the column from the inner bits (2 and 1).
type Matrix [4][4]uint8

// Row returns 2*bit3 + bit0.
func (m *Matrix) Row(x uint64) int {
	return int(2*((x>>3)&1) + x&1)
}

// Col returns 2*bit2 + bit1.
func (m *Matrix) Col(x uint64) int {
	return int(2*((x>>2)&1) + (x>>1)&1)
}

func (m *Matrix) Apply(x uint64) uint64 {
	checkDomain("matrix", x)
	return uint64(m[m.Row(x)][m.Col(x)])
}

func (m *Matrix) InWidth() int  { return 4 }
func (m *Matrix) OutWidth() int { return 2 }
