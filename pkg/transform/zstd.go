package transform

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

type zstdTransform struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	level   zstd.EncoderLevel
}

// NewZstdTransform compresses on Apply and decompresses on Reverse. Pass a
// level such as zstd.SpeedDefault or zstd.SpeedBestCompression.
func NewZstdTransform(level zstd.EncoderLevel) (Transform, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
	if err != nil {
		return nil, fmt.Errorf("zstd: failed to initialize encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd: failed to initialize decoder: %w", err)
	}
	return &zstdTransform{encoder: enc, decoder: dec, level: level}, nil
}

// EncodeAll and DecodeAll may be called concurrently on the same instance.
func (s *zstdTransform) Apply(data []byte) ([]byte, error) {
	return s.encoder.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}

func (s *zstdTransform) Reverse(data []byte) ([]byte, error) {
	out, err := s.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd reverse (decompress): %w", err)
	}
	return out, nil
}

// ParseZstdLevel maps names like "fastest" or "default" to encoder levels.
func ParseZstdLevel(name string) (zstd.EncoderLevel, error) {
	if name == "" {
		return zstd.SpeedDefault, nil
	}
	ok, level := zstd.EncoderLevelFromString(name)
	if !ok {
		return 0, fmt.Errorf("zstd: unknown level %q", name)
	}
	return level, nil
}
