package bitops

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	spnPBox = []int{0, 4, 8, 12, 1, 5, 9, 13, 2, 6, 10, 14, 3, 7, 11, 15}
	ip      = []int{2, 6, 3, 1, 4, 8, 5, 7}
	ipInv   = []int{4, 1, 3, 5, 7, 2, 8, 6}
)

func TestPermuteLSB0(t *testing.T) {
	p := MustTable("P", 16, LSB0, spnPBox)

	assert.Equal(t, uint64(1), p.Permute(0x0001))
	assert.Equal(t, uint64(0x8000), p.Permute(0x8000))
	assert.Equal(t, uint64(0x0010), p.Permute(0x0002))
	assert.Equal(t, uint64(362), p.Permute(0x1234))
	assert.Equal(t, uint64(62405), p.Permute(0xABCD))

	// a transpose is its own inverse
	for x := uint64(0); x < 1<<16; x += 97 {
		require.Equal(t, x, p.Permute(p.Permute(x)))
	}
}

func TestPermuteMSB1(t *testing.T) {
	p10 := MustTable("P10", 10, MSB1, []int{3, 5, 2, 7, 4, 10, 1, 9, 8, 6})
	assert.Equal(t, uint64(0b1111110011), p10.Permute(0b0111111101))

	ipT := MustTable("IP", 8, MSB1, ip)
	assert.Equal(t, uint64(0b10110011), ipT.Permute(0b11101010))

	sw := MustTable("SW", 8, MSB1, []int{5, 6, 7, 8, 1, 2, 3, 4})
	assert.Equal(t, uint64(0b00111011), sw.Permute(0b10110011))
}

func TestPermuteWidthChanging(t *testing.T) {
	ep := MustTable("EP", 4, MSB1, []int{4, 1, 2, 3, 2, 3, 4, 1})
	assert.Equal(t, 8, ep.Out())
	assert.Equal(t, uint64(0b10010110), ep.Permute(0b0011))

	p8 := MustTable("P8", 10, MSB1, []int{6, 3, 7, 4, 8, 5, 10, 9})
	assert.Equal(t, 8, p8.Out())
	assert.False(t, p8.IsBijection())
}

func TestInitialPermutationRoundTrip(t *testing.T) {
	fwd := MustTable("IP", 8, MSB1, ip)
	back := MustTable("IP^-1", 8, MSB1, ipInv)

	for x := uint64(0); x < 256; x++ {
		require.Equal(t, x, back.Permute(fwd.Permute(x)), "x=%08b", x)
		require.Equal(t, x, fwd.Permute(back.Permute(x)), "x=%08b", x)
	}

	inv, err := fwd.Inverse()
	require.NoError(t, err)
	assert.Equal(t, ipInv, inv.Positions)
}

func TestInverseLSB0(t *testing.T) {
	rot := MustTable("rot", 4, LSB0, []int{3, 0, 1, 2})
	inv, err := rot.Inverse()
	require.NoError(t, err)
	for x := uint64(0); x < 16; x++ {
		assert.Equal(t, x, inv.Permute(rot.Permute(x)))
	}
}

func TestInverseRejectsNonBijection(t *testing.T) {
	ep := MustTable("EP", 4, MSB1, []int{4, 1, 2, 3, 2, 3, 4, 1})
	_, err := ep.Inverse()
	assert.True(t, errors.Is(err, ErrTableDomain))
}

func TestNewTableDomain(t *testing.T) {
	tests := []struct {
		name      string
		in        int
		order     Order
		positions []int
	}{
		{"lsb0 too high", 4, LSB0, []int{0, 1, 2, 4}},
		{"lsb0 negative", 4, LSB0, []int{-1, 1, 2, 3}},
		{"msb1 zero", 4, MSB1, []int{0, 1, 2, 3}},
		{"msb1 too high", 4, MSB1, []int{1, 2, 3, 5}},
		{"empty", 4, MSB1, nil},
		{"zero width", 0, LSB0, []int{0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.name, tt.in, tt.order, tt.positions)
			assert.ErrorIs(t, err, ErrTableDomain)
		})
	}

	assert.Panics(t, func() { MustTable("bad", 4, MSB1, []int{9}) })
}

func TestNewTableCopiesPositions(t *testing.T) {
	pos := []int{1, 0}
	tbl := MustTable("swap", 2, LSB0, pos)
	pos[0] = 0
	assert.Equal(t, []int{1, 0}, tbl.Positions)
}

func TestSplitJoin(t *testing.T) {
	chunks := Split(0xA517, 16, 4)
	assert.Equal(t, []uint64{0x7, 0x1, 0x5, 0xA}, chunks)
	assert.Equal(t, uint64(0xA517), Join(chunks, 4))

	// uneven width rounds up to a partial top chunk
	assert.Equal(t, []uint64{0b1111, 0b11}, Split(0b111111, 6, 4))

	for x := uint64(0); x < 1<<16; x += 131 {
		require.Equal(t, x, Join(Split(x, 16, 4), 4))
	}
}

func TestHalveConcat(t *testing.T) {
	l, r := Halve(0b1111110011, 10)
	assert.Equal(t, uint64(0b11111), l)
	assert.Equal(t, uint64(0b10011), r)
	assert.Equal(t, uint64(0b1111110011), Concat(l, r, 5))

	l, r = Halve(0xC3, 8)
	assert.Equal(t, uint64(0xC), l)
	assert.Equal(t, uint64(0x3), r)
}

func TestCheckWidth(t *testing.T) {
	assert.NoError(t, CheckWidth(0xFFFF, 16, "block"))
	assert.NoError(t, CheckWidth(0, 1, "bit"))
	err := CheckWidth(0x10000, 16, "block")
	assert.ErrorIs(t, err, ErrWidthViolation)
	assert.Contains(t, err.Error(), "block")

	assert.Equal(t, ^uint64(0), Mask(64))
	assert.Equal(t, uint64(0x3FF), Mask(10))
}

func TestOrderString(t *testing.T) {
	assert.Equal(t, "lsb0", LSB0.String())
	assert.Equal(t, "msb1", MSB1.String())
	assert.Equal(t, "order(7)", Order(7).String())
}
