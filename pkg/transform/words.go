package transform

import (
	"encoding/binary"
	"fmt"
)

// PackWords reads data as a sequence of cipher words. 8-bit words take one
// byte each. 16-bit words take byte pairs little endian; an odd trailing
// byte becomes a word of its own.
func PackWords(data []byte, width int) ([]uint64, error) {
	switch width {
	case 8:
		words := make([]uint64, len(data))
		for i, b := range data {
			words[i] = uint64(b)
		}
		return words, nil
	case 16:
		words := make([]uint64, 0, (len(data)+1)/2)
		i := 0
		for ; i+1 < len(data); i += 2 {
			words = append(words, uint64(binary.LittleEndian.Uint16(data[i:])))
		}
		if i < len(data) {
			words = append(words, uint64(data[i]))
		}
		return words, nil
	}
	return nil, fmt.Errorf("%d bits: %w", width, ErrWordWidth)
}

// UnpackWords is the inverse of PackWords for a payload of size bytes. For
// an odd size only the low byte of the final word is kept.
func UnpackWords(words []uint64, width, size int) ([]byte, error) {
	out := make([]byte, size)
	switch width {
	case 8:
		for i := 0; i < size && i < len(words); i++ {
			out[i] = byte(words[i])
		}
		return out, nil
	case 16:
		for i, w := range words {
			off := 2 * i
			if off+1 < size {
				binary.LittleEndian.PutUint16(out[off:], uint16(w))
			} else if off < size {
				out[off] = byte(w)
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("%d bits: %w", width, ErrWordWidth)
}
