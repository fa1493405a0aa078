// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package runes

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/BoostyLabs/etcher/internal/numbers"
)

// ErrInvalidDecimal defines malformed decimal amount.
var ErrInvalidDecimal = errors.New("invalid decimal")

// ParseDecimal parses decimal amount like "1000.25" and scales it by divisibility,
// so "1.5" with divisibility 2 becomes 150.
func ParseDecimal(s string, divisibility byte) (*big.Int, error) {
	integer, fraction, _ := strings.Cut(s, ".")
	if integer == "" && fraction == "" {
		return nil, ErrInvalidDecimal
	}

	if len(fraction) > int(divisibility) {
		return nil, fmt.Errorf("%w: excessive precision %q for divisibility %d", ErrInvalidDecimal, s, divisibility)
	}

	digits := integer + fraction + strings.Repeat("0", int(divisibility)-len(fraction))
	for _, c := range digits {
		if c < '0' || c > '9' {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDecimal, s)
		}
	}

	value, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDecimal, s)
	}

	if !numbers.IsUint128(value) {
		return nil, ErrUint128Overflow
	}

	return value, nil
}
