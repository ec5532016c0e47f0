package transform

import (
	"fmt"

	"toyblock/pkg/bitops"
	"toyblock/pkg/engine"
	"toyblock/pkg/log"
	"toyblock/pkg/modes"
)

type cipherTransform struct {
	cipher     *engine.Cipher
	mode       modes.Mode
	iv         uint64
	keepPrefix int
}

// NewCipherTransform encrypts payloads word by word under the given mode.
// The first keepPrefix bytes pass through untouched, which keeps file
// headers such as an image header readable.
func NewCipherTransform(def *engine.Definition, key uint64, rounds int, mode modes.Mode, iv uint64, keepPrefix int) (Transform, error) {
	m, err := modes.ParseMode(string(mode))
	if err != nil {
		return nil, err
	}
	if keepPrefix < 0 {
		return nil, fmt.Errorf("%d: %w", keepPrefix, ErrKeepPrefix)
	}
	if err := bitops.CheckWidth(iv, def.BlockWidth, "iv"); err != nil {
		return nil, err
	}
	c, err := engine.NewCipher(def, key, rounds)
	if err != nil {
		return nil, err
	}
	return &cipherTransform{cipher: c, mode: m, iv: iv, keepPrefix: keepPrefix}, nil
}

func (t *cipherTransform) run(data []byte, fn func(modes.Mode, modes.BlockCipher, uint64, []uint64) ([]uint64, error)) ([]byte, error) {
	split := min(t.keepPrefix, len(data))
	body := data[split:]
	width := t.cipher.BlockWidth()

	words, err := PackWords(body, width)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("cipher", t.cipher.Definition().Name).Str("mode", t.mode.String()).
		Int("bytes", len(body)).Int("words", len(words)).Msg("cipher transform")

	words, err = fn(t.mode, t.cipher, t.iv, words)
	if err != nil {
		return nil, err
	}
	packed, err := UnpackWords(words, width, len(body))
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(data))
	out = append(out, data[:split]...)
	return append(out, packed...), nil
}

func (t *cipherTransform) Apply(data []byte) ([]byte, error) {
	return t.run(data, modes.Encrypt)
}

func (t *cipherTransform) Reverse(data []byte) ([]byte, error) {
	if !t.mode.Invertible() {
		return nil, fmt.Errorf("%s: %w", t.mode, ErrIrreversible)
	}
	return t.run(data, modes.Decrypt)
}
