package transform

import (
	"errors"

	"toyblock/pkg/modes"
)

var (
	ErrEmptyPipeline = errors.New("pipeline requires at least one transform; use NewNoOpTransform() for an empty pipeline")
	ErrWordWidth     = errors.New("unsupported word width")
	ErrKeepPrefix    = errors.New("keep prefix must not be negative")

	// ErrIrreversible is returned by Reverse for modes that would need block decryption.
	ErrIrreversible = modes.ErrIrreversible
)
