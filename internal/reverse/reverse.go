// Copyright (C) 2022 Creditor Corp. Group.
// See LICENSE for copying information.

package reverse

import (
	"math/big"
	"slices"
)

// Bytes reverses value in place and returns it.
func Bytes(value []byte) []byte {
	slices.Reverse(value)
	return value
}

// LittleEndian returns absolute value as size bytes little-endian number,
// panics if value does not fit.
func LittleEndian(value *big.Int, size int) []byte {
	return Bytes(value.FillBytes(make([]byte, size)))
}
