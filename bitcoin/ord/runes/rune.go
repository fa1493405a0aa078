// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package runes

import (
	"errors"
	"math/big"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"

	"github.com/BoostyLabs/etcher/internal/numbers"
	"github.com/BoostyLabs/etcher/internal/reverse"
)

const (
	// SubsidyHalvingInterval defines the number of blocks between block subsidy halvings.
	SubsidyHalvingInterval uint64 = 210_000
	// UnlockNamePeriod defines interval in blocks to unlock shorter name.
	UnlockNamePeriod = SubsidyHalvingInterval / 12

	// StartNameLength defines minimum name length before the first rune height.
	StartNameLength = 13
)

// ErrInvalidSymbol defines that the rune name contains symbols out of A-Z range.
var ErrInvalidSymbol = errors.New("invalid symbol in the rune")

// ErrUint128Overflow defines that the rune value does not fit into uint128.
var ErrUint128Overflow = errors.New("value overflows uint128")

// base26 defines 26 as *big.Int.
var base26 = big.NewInt(26)

// FirstReservedRuneNameInt defines FirstReservedRuneName as number.
var FirstReservedRuneNameInt, _ = new(big.Int).SetString("6402364363415443603228541259936211926", 10)

// FirstReservedRuneName defines first reserved rune name AAAAAAAAAAAAAAAAAAAAAAAAAAA.
var FirstReservedRuneName = RuneReserve(RuneID{0, 0})

// steps holds the value of the first name of every length: A, AA, AAA...
var steps = func() []*big.Int {
	values := make([]*big.Int, StartNameLength)
	for i := range values {
		rune_, err := NewRuneFromString(strings.Repeat("A", i+1))
		if err != nil {
			panic(err)
		}

		values[i] = rune_.Value()
	}

	return values
}()

// Rune defines rune names and encodes as modified base-26 integers.
type Rune struct {
	value *big.Int
}

// NewRuneFromString creates new Rune from string name.
// NOTE: Valid symbols are A-Z only.
func NewRuneFromString(runeStr string) (*Rune, error) {
	if runeStr == "" {
		return nil, errors.New("empty rune name")
	}

	var value = big.NewInt(0)
	for i, c := range runeStr {
		if i > 0 {
			value.Add(value, numbers.OneBigInt)
		}
		value = value.Mul(value, base26)
		if c < 'A' || c > 'Z' {
			return nil, ErrInvalidSymbol
		}
		value = value.Add(value, big.NewInt(int64(c)-'A'))

		if numbers.IsGreater(value, numbers.MaxUInt128Value) {
			return nil, ErrUint128Overflow
		}
	}

	return &Rune{value: value}, nil
}

// NewRuneFromNumber creates new Rune from number.
func NewRuneFromNumber(number *big.Int) (*Rune, error) {
	if !numbers.IsUint128(number) {
		return nil, ErrUint128Overflow
	}

	return &Rune{value: new(big.Int).Set(number)}, nil
}

// Value returns Rune name as number.
func (r *Rune) Value() *big.Int {
	return r.value
}

// Cmp compares two runes by value, same as big.Int.Cmp.
func (r *Rune) Cmp(other *Rune) int {
	return r.value.Cmp(other.value)
}

// IsReserved returns true if the rune name belongs to the range allocated for etchings without name.
func (r *Rune) IsReserved() bool {
	return !numbers.IsLess(r.value, FirstReservedRuneNameInt)
}

// String returns Rune name as string.
func (r *Rune) String() string {
	var value = new(big.Int).Set(r.value)
	if numbers.IsEqual(value, numbers.MaxUInt128Value) {
		return "BCGDENLQRQWDSLRUGSNLBTMFIJAV"
	}

	value = value.Add(value, numbers.OneBigInt)
	var symbol []byte
	for value.Sign() > 0 {
		valueSubOne := new(big.Int).Sub(value, numbers.OneBigInt)
		idx := new(big.Int).Mod(valueSubOne, base26)

		symbol = append(symbol, byte('A'+idx.Int64()))

		value = valueSubOne.Div(valueSubOne, base26)
	}

	return string(reverse.Bytes(symbol))
}

// RuneReserve returns allocated rune name in case it was omitted in etching.
func RuneReserve(runeID RuneID) *Rune {
	// 6402364363415443603228541259936211926 + (block << 32 | tx).
	reservedName := new(big.Int).Add(FirstReservedRuneNameInt, new(big.Int).Or(
		new(big.Int).Lsh(new(big.Int).SetUint64(runeID.Block), 32),
		new(big.Int).SetUint64(uint64(runeID.TxID))))

	return &Rune{value: reservedName}
}

// FirstRuneHeight returns the height since which runes may be etched on the network.
func FirstRuneHeight(params *chaincfg.Params) uint64 {
	switch params.Net {
	case wire.MainNet:
		return SubsidyHalvingInterval * 4
	case wire.TestNet3:
		return SubsidyHalvingInterval * 12
	default:
		return 0
	}
}

// MinimumAtHeight returns the smallest rune name that may be etched in the block at height.
// The result never grows with height: every UnlockNamePeriod the minimum length drops
// by one letter, and inside a period the minimum decreases linearly.
func MinimumAtHeight(params *chaincfg.Params, height uint64) *Rune {
	var (
		offset = height + 1
		start  = FirstRuneHeight(params)
		end    = start + SubsidyHalvingInterval
	)
	if offset < start {
		return &Rune{value: new(big.Int).Set(steps[StartNameLength-1])}
	}
	if offset >= end {
		return &Rune{value: big.NewInt(0)}
	}

	progress := offset - start
	length := uint64(StartNameLength-1) - progress/UnlockNamePeriod

	upper := steps[length]
	lower := steps[length-1]
	remainder := new(big.Int).SetUint64(progress % UnlockNamePeriod)

	// upper - (upper - lower) * remainder / UnlockNamePeriod.
	delta := new(big.Int).Sub(upper, lower)
	delta.Mul(delta, remainder)
	delta.Div(delta, new(big.Int).SetUint64(UnlockNamePeriod))

	return &Rune{value: delta.Sub(upper, delta)}
}
