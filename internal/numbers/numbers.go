// Copyright (C) 2022 Creditor Corp. Group.
// See LICENSE for copying information.

package numbers

import (
	"math"
	"math/big"
)

// OneBigInt defies 1 as *big.Int type.
var OneBigInt = big.NewInt(1)

// MaxUInt128Value defines maximum value of uint128 type.
var MaxUInt128Value = new(big.Int).Sub(new(big.Int).Lsh(OneBigInt, 128), OneBigInt)

// IsNegative returns true if the number is less than zero.
func IsNegative(num *big.Int) bool {
	return num.Sign() < 0
}

// IsPositive returns true if the number is grater than zero.
func IsPositive(num *big.Int) bool {
	return num.Sign() > 0
}

// IsGreater returns true is a > b.
func IsGreater(a, b *big.Int) bool {
	return a.Cmp(b) > 0
}

// IsEqual returns true is a = b.
func IsEqual(a, b *big.Int) bool {
	return a.Cmp(b) == 0
}

// IsLess returns true is a < b.
func IsLess(a, b *big.Int) bool {
	return a.Cmp(b) < 0
}

// IsUint32 returns true if the number can be represented as uint32.
func IsUint32(num *big.Int) bool {
	return num.IsUint64() && num.Uint64() <= math.MaxUint32
}

// IsUint128 returns true if the number can be represented as uint128.
func IsUint128(num *big.Int) bool {
	return !IsNegative(num) && num.BitLen() <= 128
}
