package bitops

import "errors"

var (
	ErrWidthViolation = errors.New("value exceeds declared bit width")
	ErrTableDomain    = errors.New("permutation table addresses a bit outside its input width")
)
