// Package bitstr converts between binary digit strings and block values.
package bitstr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"toyblock/pkg/bitops"

	"github.com/samber/lo"
)

var ErrSyntax = errors.New("not a binary string")

// Parse reads s as a binary number of at most width digits. An optional 0b
// prefix and _ separators are accepted. Leading zeros count towards width.
func Parse(s string, width int) (uint64, error) {
	digits := strings.ReplaceAll(strings.TrimSpace(s), "_", "")
	digits = strings.TrimPrefix(strings.TrimPrefix(digits, "0b"), "0B")
	if digits == "" {
		return 0, fmt.Errorf("%q: %w", s, ErrSyntax)
	}
	if len(digits) > width {
		return 0, fmt.Errorf("%q has %d digits, at most %d allowed: %w", s, len(digits), width, bitops.ErrWidthViolation)
	}
	x, err := strconv.ParseUint(digits, 2, 64)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, ErrSyntax)
	}
	return x, nil
}

// Format renders x as exactly width binary digits.
func Format(x uint64, width int) string {
	return fmt.Sprintf("%0*b", width, x&bitops.Mask(width))
}

// FormatAll formats every value with Format.
func FormatAll(xs []uint64, width int) []string {
	return lo.Map(xs, func(x uint64, _ int) string {
		return Format(x, width)
	})
}
