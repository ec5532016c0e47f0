package wiring

import (
	"context"
	"strings"
	"testing"

	"toyblock/pkg/engine"
	"toyblock/pkg/sdes"
	"toyblock/pkg/spn"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSPNDot(t *testing.T) {
	dot, err := SPNDot(spn.Definition, 4)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(dot, `digraph "spn"`))
	// 16 wires between each pair of consecutive rounds
	assert.Equal(t, 48, strings.Count(dot, "→"))
	assert.Contains(t, dot, `r1_s1 -> r2_s0 [label="4→1"`)
	assert.Contains(t, dot, `r3_s3 -> r4_s3 [label="15→15"`)
	assert.NotContains(t, dot, "r4_s0 -> r5_")
	assert.Contains(t, dot, "K5 -> ciphertext")
	assert.Equal(t, 16, strings.Count(dot, `[label="S"]`))
}

func TestFeistelDot(t *testing.T) {
	dot, err := FeistelDot(sdes.Definition, 2)
	require.NoError(t, err)
	assert.Contains(t, dot, "ip -> fk1;")
	assert.Contains(t, dot, "fk1 -> sw1;")
	assert.Contains(t, dot, "sw1 -> fk2;")
	assert.Contains(t, dot, "fk2 -> ipinv;")
	assert.NotContains(t, dot, "sw2")

	one, err := Dot(sdes.Definition, 1)
	require.NoError(t, err)
	assert.Contains(t, one, "fk1 -> ipinv;")
	assert.NotContains(t, one, "sw1")
}

func TestDotErrors(t *testing.T) {
	_, err := SPNDot(sdes.Definition, 2)
	assert.ErrorIs(t, err, engine.ErrConfiguration)
	_, err = FeistelDot(spn.Definition, 2)
	assert.ErrorIs(t, err, engine.ErrConfiguration)
	_, err = Dot(spn.Definition, 5)
	assert.ErrorIs(t, err, engine.ErrConfiguration)
	_, err = Dot(sdes.Definition, 0)
	assert.ErrorIs(t, err, engine.ErrConfiguration)
}

func TestRender(t *testing.T) {
	dot, err := Dot(sdes.Definition, 2)
	require.NoError(t, err)

	svg, err := Render(context.Background(), dot, "svg")
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")

	_, err = Render(context.Background(), dot, "gif")
	assert.ErrorIs(t, err, ErrFormat)
}
