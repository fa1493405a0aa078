// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package runes

import (
	"math/big"
)

var (
	// FlagEtching defines that the transaction contains an etching.
	FlagEtching = big.NewInt(1)
	// FlagTerms defines that the transaction's etching has open mint terms.
	FlagTerms = new(big.Int).Lsh(big.NewInt(1), 1)
	// FlagTurbo defines that the transaction's etching has set turbo mode.
	FlagTurbo = new(big.Int).Lsh(big.NewInt(1), 2)
)

// HasFlag returns true if every bit of flag is set in value.
func HasFlag(value *big.Int, flag *big.Int) bool {
	return new(big.Int).And(value, flag).Cmp(flag) == 0
}

// AddFlag sets flag bits in value and returns it.
func AddFlag(value *big.Int, flag *big.Int) *big.Int {
	return value.Or(value, flag)
}

// TakeFlag clears flag bits in value, returns true if they all were set.
func TakeFlag(value *big.Int, flag *big.Int) bool {
	if !HasFlag(value, flag) {
		return false
	}

	value.AndNot(value, flag)
	return true
}
