// Package modes chains a block cipher over a sequence of words. Only the
// encryption direction of the block cipher is ever used, so ECB and CBC can
// encrypt but not decrypt. OFB, CFB and CTR undo themselves with the same
// forward cipher.
package modes

import (
	"errors"
	"fmt"
	"strings"

	"toyblock/pkg/bitops"

	"github.com/samber/lo"
)

var (
	ErrUnknownMode  = errors.New("unknown block mode")
	ErrIrreversible = errors.New("mode cannot be reversed with the forward cipher")
)

// BlockCipher is satisfied by *engine.Cipher.
type BlockCipher interface {
	BlockWidth() int
	EncryptBlock(p uint64) (uint64, error)
}

type Mode string

const (
	ModeECB Mode = "ecb"
	ModeCBC Mode = "cbc"
	ModeOFB Mode = "ofb"
	ModeCFB Mode = "cfb"
	ModeCTR Mode = "ctr"
)

var All = []Mode{ModeECB, ModeCBC, ModeOFB, ModeCFB, ModeCTR}

func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if lo.Contains(All, m) {
		return m, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownMode)
}

// Invertible reports whether Decrypt works for the mode.
func (m Mode) Invertible() bool {
	switch m {
	case ModeOFB, ModeCFB, ModeCTR:
		return true
	}
	return false
}

// UsesIV reports whether the mode reads an initialisation vector.
func (m Mode) UsesIV() bool { return m != ModeECB }

func (m Mode) String() string { return string(m) }

// Encrypt runs words through the mode.
func Encrypt(m Mode, c BlockCipher, iv uint64, words []uint64) ([]uint64, error) {
	switch m {
	case ModeECB:
		return ECB(c, words)
	case ModeCBC:
		return CBCEncrypt(c, iv, words)
	case ModeOFB:
		return OFB(c, iv, words)
	case ModeCFB:
		return CFBEncrypt(c, iv, words)
	case ModeCTR:
		return CTR(c, iv, words)
	}
	return nil, fmt.Errorf("%q: %w", string(m), ErrUnknownMode)
}

// Decrypt undoes Encrypt for the invertible modes.
func Decrypt(m Mode, c BlockCipher, iv uint64, words []uint64) ([]uint64, error) {
	switch m {
	case ModeOFB:
		return OFB(c, iv, words)
	case ModeCFB:
		return CFBDecrypt(c, iv, words)
	case ModeCTR:
		return CTR(c, iv, words)
	case ModeECB, ModeCBC:
		return nil, fmt.Errorf("%s: %w", m, ErrIrreversible)
	}
	return nil, fmt.Errorf("%q: %w", string(m), ErrUnknownMode)
}

// checkWords rejects any word or iv wider than the block.
func checkWords(c BlockCipher, iv uint64, words []uint64) error {
	width := c.BlockWidth()
	if err := bitops.CheckWidth(iv, width, "iv"); err != nil {
		return err
	}
	for i, w := range words {
		if err := bitops.CheckWidth(w, width, "word"); err != nil {
			return fmt.Errorf("word %d: %w", i, err)
		}
	}
	return nil
}

func ECB(c BlockCipher, words []uint64) ([]uint64, error) {
	if err := checkWords(c, 0, words); err != nil {
		return nil, err
	}
	out := make([]uint64, len(words))
	for i, w := range words {
		e, err := c.EncryptBlock(w)
		if err != nil {
			return nil, fmt.Errorf("word %d: %w", i, err)
		}
		out[i] = e
	}
	return out, nil
}

// CBCEncrypt computes c_i = E(p_i ^ c_{i-1}) with c_{-1} = iv.
func CBCEncrypt(c BlockCipher, iv uint64, words []uint64) ([]uint64, error) {
	if err := checkWords(c, iv, words); err != nil {
		return nil, err
	}
	prev := iv
	out := make([]uint64, len(words))
	for i, w := range words {
		e, err := c.EncryptBlock(w ^ prev)
		if err != nil {
			return nil, fmt.Errorf("word %d: %w", i, err)
		}
		out[i] = e
		prev = e
	}
	return out, nil
}

// OFB xors words with the iterated encryption of iv.
func OFB(c BlockCipher, iv uint64, words []uint64) ([]uint64, error) {
	if err := checkWords(c, iv, words); err != nil {
		return nil, err
	}
	state := iv
	out := make([]uint64, len(words))
	for i, w := range words {
		s, err := c.EncryptBlock(state)
		if err != nil {
			return nil, fmt.Errorf("word %d: %w", i, err)
		}
		state = s
		out[i] = w ^ s
	}
	return out, nil
}

func cfb(c BlockCipher, iv uint64, words []uint64, decrypt bool) ([]uint64, error) {
	if err := checkWords(c, iv, words); err != nil {
		return nil, err
	}
	feedback := iv
	out := make([]uint64, len(words))
	for i, w := range words {
		ks, err := c.EncryptBlock(feedback)
		if err != nil {
			return nil, fmt.Errorf("word %d: %w", i, err)
		}
		out[i] = w ^ ks
		if decrypt {
			feedback = w
		} else {
			feedback = out[i]
		}
	}
	return out, nil
}

// CFBEncrypt feeds each ciphertext word back into the cipher.
func CFBEncrypt(c BlockCipher, iv uint64, words []uint64) ([]uint64, error) {
	return cfb(c, iv, words, false)
}

func CFBDecrypt(c BlockCipher, iv uint64, words []uint64) ([]uint64, error) {
	return cfb(c, iv, words, true)
}

// CTR xors word i with E(iv + i), the counter wrapping at the block width.
func CTR(c BlockCipher, iv uint64, words []uint64) ([]uint64, error) {
	if err := checkWords(c, iv, words); err != nil {
		return nil, err
	}
	mask := bitops.Mask(c.BlockWidth())
	out := make([]uint64, len(words))
	for i, w := range words {
		ks, err := c.EncryptBlock((iv + uint64(i)) & mask)
		if err != nil {
			return nil, fmt.Errorf("word %d: %w", i, err)
		}
		out[i] = w ^ ks
	}
	return out, nil
}
