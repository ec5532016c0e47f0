package bitops

import "fmt"

// MaxWidth is the widest word the package handles.
const MaxWidth = 64

// Mask returns a mask with the low width bits set.
func Mask(width int) uint64 {
	if width >= MaxWidth {
		return ^uint64(0)
	}
	return (uint64(1) << width) - 1
}

// CheckWidth returns an error wrapping ErrWidthViolation when x does not fit
// in width bits. role names the value in the error message.
func CheckWidth(x uint64, width int, role string) error {
	if x&^Mask(width) != 0 {
		return fmt.Errorf("%s %#x does not fit in %d bits: %w", role, x, width, ErrWidthViolation)
	}
	return nil
}

// Split breaks a width-bit word into chunk-bit pieces. Chunk 0 holds the
// least significant bits.
func Split(x uint64, width, chunk int) []uint64 {
	n := (width + chunk - 1) / chunk
	out := make([]uint64, n)
	m := Mask(chunk)
	for i := 0; i < n; i++ {
		out[i] = (x >> (i * chunk)) & m
	}
	return out
}

// Join is the inverse of Split.
func Join(chunks []uint64, chunk int) uint64 {
	var y uint64
	m := Mask(chunk)
	for i, c := range chunks {
		y |= (c & m) << (i * chunk)
	}
	return y
}

// Halve splits a width-bit word into its upper (left) and lower (right) halves.
func Halve(x uint64, width int) (left, right uint64) {
	half := width / 2
	m := Mask(half)
	return (x >> half) & m, x & m
}

// Concat places left above right, each half bits wide.
func Concat(left, right uint64, half int) uint64 {
	m := Mask(half)
	return (left&m)<<half | right&m
}
