package engine_test

import (
	"context"
	"sync"
	"testing"

	"toyblock/pkg/bitops"
	"toyblock/pkg/engine"
	"toyblock/pkg/sbox"
	"toyblock/pkg/sdes"
	"toyblock/pkg/spn"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBlocks(n int, width int) []uint64 {
	blocks := make([]uint64, n)
	x := uint64(0x9E37)
	for i := range blocks {
		x = x*6364136223846793005 + 1442695040888963407
		blocks[i] = (x >> 17) & bitops.Mask(width)
	}
	return blocks
}

func TestLastRoundSkipsPermutation(t *testing.T) {
	l := spn.Definition.SPN
	// with zero keys the last round is pure substitution
	assert.Equal(t, engine.Substitute(l, 0x1234), engine.LastRound(l, 0x1234, 0, 0))
	assert.Equal(t, uint64(0xEEEE), engine.LastRound(l, 0, 0, 0))
	assert.Equal(t, uint64(0xEEEE^0xFFFF), engine.LastRound(l, 0, 0, 0xFFFF))
	assert.Equal(t, l.PBox.Permute(engine.Substitute(l, 0xAB^0x11)), engine.Round(l, 0xAB, 0x11))
}

func TestSubstituteChunks(t *testing.T) {
	l := spn.Definition.SPN
	// S(0)=14, S(1)=4, S(2)=13, S(3)=1; chunk 0 is the low nibble
	assert.Equal(t, uint64(0x1D4E), engine.Substitute(l, 0x3210))
}

func TestFeistelRoundKeepsRight(t *testing.T) {
	for block := uint64(0); block < 256; block++ {
		out := engine.FeistelRound(sdes.Layers, block, 0b01011111)
		assert.Equal(t, block&0xF, out&0xF)
	}
}

func TestCipherReuse(t *testing.T) {
	c, err := engine.NewCipher(spn.Definition, 734533245, 4)
	require.NoError(t, err)
	assert.Equal(t, 16, c.BlockWidth())
	assert.Equal(t, 4, c.Rounds())

	keys := c.RoundKeys()
	keys[0] = 0
	assert.Equal(t, uint64(11208), c.RoundKeys()[0])

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.EncryptBlock(15324)
			assert.NoError(t, err)
			assert.Equal(t, uint64(8144), got)
		}()
	}
	wg.Wait()
}

func TestEncryptManyMatchesEncrypt(t *testing.T) {
	for _, def := range []*engine.Definition{spn.Definition, sdes.Definition} {
		blocks := sampleBlocks(300, def.BlockWidth)
		key := uint64(0x2AB) & bitops.Mask(def.KeyWidth)

		many, err := engine.EncryptMany(def, blocks, key, def.DefaultRounds)
		require.NoError(t, err)
		for i, p := range blocks {
			one, err := engine.Encrypt(def, p, key, def.DefaultRounds)
			require.NoError(t, err)
			require.Equal(t, one, many[i], "%s block %d", def.Name, i)
		}

		for _, workers := range []int{0, 1, 3, 8, 1000} {
			par, err := engine.EncryptManyParallel(context.Background(), def, blocks, key, def.DefaultRounds, workers)
			require.NoError(t, err)
			assert.Equal(t, many, par, "%s workers=%d", def.Name, workers)
		}
	}
}

func TestEncryptManyEmpty(t *testing.T) {
	got, err := engine.EncryptMany(spn.Definition, nil, 1, 4)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = engine.EncryptManyParallel(context.Background(), spn.Definition, nil, 1, 4, 4)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEncryptManyParallelCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := engine.EncryptManyParallel(ctx, spn.Definition, sampleBlocks(64, 16), 1, 4, 4)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEncryptManyValidatesFirst(t *testing.T) {
	blocks := []uint64{1, 2, 3, 1 << 16}
	_, err := engine.EncryptMany(spn.Definition, blocks, 1, 4)
	assert.ErrorIs(t, err, bitops.ErrWidthViolation)
	assert.Contains(t, err.Error(), "block 3")

	_, err = engine.EncryptManyParallel(context.Background(), spn.Definition, blocks, 1, 4, 2)
	assert.ErrorIs(t, err, bitops.ErrWidthViolation)
}

func TestRequiredKeys(t *testing.T) {
	assert.Equal(t, 5, spn.Definition.RequiredKeys(4))
	assert.Equal(t, 2, sdes.Definition.RequiredKeys(2))
}

func TestShortScheduleIsConfigurationError(t *testing.T) {
	def := *spn.Definition
	def.Schedule = func(key uint64, rounds int) []uint64 { return []uint64{key & 0xFFFF} }
	_, err := engine.Encrypt(&def, 1, 1, 1)
	assert.ErrorIs(t, err, engine.ErrConfiguration)
}

func TestOversizedRoundKey(t *testing.T) {
	def := *spn.Definition
	def.Schedule = func(key uint64, rounds int) []uint64 { return []uint64{1, 1 << 20} }
	_, err := engine.Encrypt(&def, 1, 1, 1)
	assert.ErrorIs(t, err, bitops.ErrWidthViolation)
}

func TestValidate(t *testing.T) {
	identity := bitops.MustTable("id", 8, bitops.LSB0, []int{0, 1, 2, 3, 4, 5, 6, 7})
	box := &sbox.Flat{}

	tests := []struct {
		name string
		def  engine.Definition
	}{
		{"no schedule", engine.Definition{Name: "x", BlockWidth: 16, KeyWidth: 32}},
		{"zero block", engine.Definition{Name: "x", KeyWidth: 32, Schedule: spn.RoundKeys}},
		{"missing spn layers", engine.Definition{Name: "x", BlockWidth: 16, KeyWidth: 32, RoundKeyWidth: 16, Schedule: spn.RoundKeys}},
		{"p-box width", engine.Definition{
			Name: "x", BlockWidth: 16, KeyWidth: 32, RoundKeyWidth: 16, Schedule: spn.RoundKeys,
			SPN: &engine.SPNLayers{Box: box, Chunk: 4, PBox: identity},
		}},
		{"chunk mismatch", engine.Definition{
			Name: "x", BlockWidth: 8, KeyWidth: 32, RoundKeyWidth: 8, Schedule: spn.RoundKeys,
			SPN: &engine.SPNLayers{Box: box, Chunk: 2, PBox: identity},
		}},
		{"missing feistel layers", engine.Definition{
			Name: "x", Composition: engine.Feistel, BlockWidth: 8, KeyWidth: 10, RoundKeyWidth: 8, Schedule: sdes.RoundKeys,
		}},
		{"unknown composition", engine.Definition{
			Name: "x", Composition: engine.Composition(7), BlockWidth: 8, KeyWidth: 10, Schedule: sdes.RoundKeys,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.def.Validate(), engine.ErrConfiguration)
		})
	}

	ok := engine.Definition{
		Name: "id8", BlockWidth: 8, KeyWidth: 8, RoundKeyWidth: 8, Schedule: spn.RoundKeys,
		SPN: &engine.SPNLayers{Box: box, Chunk: 4, PBox: identity},
	}
	assert.NoError(t, ok.Validate())
	assert.NoError(t, sdes.Definition.Validate())
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"sdes", "spn"}, engine.Names())
	_, err := engine.Lookup("des")
	assert.ErrorIs(t, err, engine.ErrUnknownCipher)
	assert.Panics(t, func() { engine.Register(spn.Definition) })
}

func TestCompositionString(t *testing.T) {
	assert.Equal(t, "spn", engine.SPN.String())
	assert.Equal(t, "feistel", engine.Feistel.String())
	assert.Equal(t, "composition(9)", engine.Composition(9).String())
}
