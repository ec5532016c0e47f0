package engine

import "toyblock/pkg/bitops"

// Mix is the key mixing step.
func Mix(state, key uint64) uint64 { return state ^ key }

// Substitute runs every chunk of state through the layer's S-box.
func Substitute(l *SPNLayers, state uint64) uint64 {
	chunks := bitops.Split(state, l.PBox.In, l.Chunk)
	for i, c := range chunks {
		chunks[i] = l.Box.Apply(c)
	}
	return bitops.Join(chunks, l.Chunk)
}

// Round is an intermediate SPN round: mix, substitute, permute.
func Round(l *SPNLayers, state, rk uint64) uint64 {
	return l.PBox.Permute(Substitute(l, Mix(state, rk)))
}

// LastRound mixes k1, substitutes, then mixes k2. There is no permutation.
func LastRound(l *SPNLayers, state, k1, k2 uint64) uint64 {
	return Mix(Substitute(l, Mix(state, k1)), k2)
}

// F is the Feistel round function applied to the right half.
func F(l *FeistelLayers, right, rk uint64) uint64 {
	x := Mix(l.EP.Permute(right), rk)
	hi, lo := bitops.Halve(x, l.EP.Out())
	s := bitops.Concat(l.S0.Apply(hi), l.S1.Apply(lo), l.S0.OutWidth())
	return l.P4.Permute(s)
}

// FeistelRound returns (L xor F(R, rk), R).
func FeistelRound(l *FeistelLayers, block, rk uint64) uint64 {
	width := l.IP.In
	left, right := bitops.Halve(block, width)
	return bitops.Concat(left^F(l, right, rk), right, width/2)
}

func encryptSPN(l *SPNLayers, p uint64, rk []uint64, rounds int) uint64 {
	x := p
	for i := 0; i < rounds-1; i++ {
		x = Round(l, x, rk[i])
	}
	return LastRound(l, x, rk[rounds-1], rk[rounds])
}

func encryptFeistel(l *FeistelLayers, p uint64, rk []uint64, rounds int) uint64 {
	x := l.IP.Permute(p)
	for i := 0; i < rounds; i++ {
		if i > 0 {
			x = l.SW.Permute(x)
		}
		x = FeistelRound(l, x, rk[i])
	}
	return l.IPInv.Permute(x)
}
