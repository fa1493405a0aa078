// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package runes

import (
	"math/big"
)

// Etching defines values of the new rune. Pointer fields are nil
// when the runestone omits them.
type Etching struct {
	Divisibility *byte
	Premine      *big.Int
	Rune         *Rune
	Spacers      *uint32
	Symbol       *rune
	Terms        *Terms
	Turbo        bool
}

// Complete returns true if the rune name and every display field are set.
func (e *Etching) Complete() bool {
	return e.Rune != nil && e.Symbol != nil && e.Divisibility != nil && e.Spacers != nil
}

// Terms defines open mint parameters of the etched rune.
// Heights are absolute, offsets are relative to the etching block.
type Terms struct {
	Amount      *big.Int
	Cap         *big.Int
	HeightStart *uint64
	HeightEnd   *uint64
	OffsetStart *uint64
	OffsetEnd   *uint64
}
