package bitstr

import (
	"testing"

	"toyblock/pkg/bitops"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  uint64
	}{
		{"1010010100010111", 16, 0xA517},
		{"0b1010_0101_0001_0111", 16, 0xA517},
		{"0111111101", 10, 509},
		{"  1 ", 8, 1},
		{"0000000000000000", 16, 0},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in, tt.width)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("10100101000101110", 16)
	assert.ErrorIs(t, err, bitops.ErrWidthViolation)

	for _, bad := range []string{"", "0b", "102", "abc", "_"} {
		_, err := Parse(bad, 16)
		assert.ErrorIs(t, err, ErrSyntax, bad)
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "1100001111011000", Format(0xC3D8, 16))
	assert.Equal(t, "00010011", Format(0b10011, 8))
	assert.Equal(t, "0111", Format(0xF7, 4))
	assert.Equal(t, []string{"01011111", "11111100"}, FormatAll([]uint64{0b01011111, 0b11111100}, 8))
}
