package engine

import "errors"

var (
	ErrConfiguration = errors.New("invalid cipher configuration")
	ErrUnknownCipher = errors.New("unknown cipher")
)
