// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package runes

import (
	"errors"
	"fmt"
	"math/big"
	"unicode/utf8"
)

// MaxScriptSize defines maximum size of the runestone script accepted by the etching.
const MaxScriptSize = 82

// ErrNotDirective defines that the runestone does not describe a plain etching.
var ErrNotDirective = errors.New("runestone is not an etching directive")

// ErrInvalidDivisibility defines that divisibility is out of [0;38] range.
var ErrInvalidDivisibility = errors.New("invalid divisibility")

// ErrInvalidSymbolCodePoint defines that symbol is not a Unicode scalar value.
var ErrInvalidSymbolCodePoint = errors.New("invalid symbol")

// Directive defines issuance parameters of the new rune.
// Nil Premine is encoded as zero, so it is decoded as zero.
type Directive struct {
	Rune         *Rune
	Spacers      uint32
	Divisibility byte
	Premine      *big.Int
	Symbol       rune
	Terms        *Terms
	Turbo        bool

	// Supply is the amount allocated by the issuance edict to the Output,
	// nil means the runestone carries no edicts.
	Supply *big.Int
	Output uint32
}

// SpacedRune returns directive rune with spacers.
func (d *Directive) SpacedRune() SpacedRune {
	return SpacedRune{Rune: d.Rune, Spacers: d.Spacers}
}

// Runestone returns directive as Runestone.
func (d *Directive) Runestone() *Runestone {
	var (
		divisibility = d.Divisibility
		spacers      = d.Spacers
		symbol       = d.Symbol
		premine      = d.Premine
	)
	if premine == nil {
		premine = big.NewInt(0)
	}

	runestone := &Runestone{
		Etching: &Etching{
			Divisibility: &divisibility,
			Premine:      premine,
			Rune:         d.Rune,
			Spacers:      &spacers,
			Symbol:       &symbol,
			Terms:        d.Terms,
			Turbo:        d.Turbo,
		},
	}

	if d.Supply != nil {
		runestone.Edicts = []Edict{{
			RuneID: RuneID{Block: 0, TxID: 0},
			Amount: d.Supply,
			Output: d.Output,
		}}
	}

	return runestone
}

// EncodeDirective encodes directive into runestone script.
// Returns MessageTooLargeError if the script exceeds MaxScriptSize.
func EncodeDirective(d *Directive) ([]byte, error) {
	switch {
	case d.Rune == nil:
		return nil, errors.New("directive rune is empty")
	case d.Divisibility > MaxDivisibility:
		return nil, fmt.Errorf("%w: %d > %d", ErrInvalidDivisibility, d.Divisibility, MaxDivisibility)
	case !utf8.ValidRune(d.Symbol):
		return nil, fmt.Errorf("%w: %U", ErrInvalidSymbolCodePoint, d.Symbol)
	}

	if err := d.SpacedRune().Validate(); err != nil {
		return nil, err
	}

	script, err := d.Runestone().IntoScript()
	if err != nil {
		return nil, err
	}

	if len(script) > MaxScriptSize {
		return nil, &MessageTooLargeError{Size: len(script), Limit: MaxScriptSize}
	}

	return script, nil
}

// DecodeDirective decodes directive from runestone script.
func DecodeDirective(script []byte) (*Directive, error) {
	runestone, err := ParseRunestone(script)
	if err != nil {
		return nil, err
	}

	switch {
	case runestone.Etching == nil || runestone.Etching.Rune == nil:
		return nil, ErrNotDirective
	case runestone.Mint != nil || runestone.Pointer != nil:
		return nil, fmt.Errorf("%w: unexpected mint or pointer", ErrNotDirective)
	case len(runestone.Edicts) > 1:
		return nil, fmt.Errorf("%w: %d edicts", ErrNotDirective, len(runestone.Edicts))
	}

	etching := runestone.Etching
	directive := &Directive{
		Rune:         etching.Rune,
		Spacers:      *etching.Spacers,
		Divisibility: *etching.Divisibility,
		Premine:      etching.Premine,
		Symbol:       *etching.Symbol,
		Terms:        etching.Terms,
		Turbo:        etching.Turbo,
	}

	if len(runestone.Edicts) == 1 {
		edict := runestone.Edicts[0]
		if edict.RuneID != (RuneID{}) {
			return nil, fmt.Errorf("%w: edict for rune %s", ErrNotDirective, edict.RuneID.String())
		}

		directive.Supply = edict.Amount
		directive.Output = edict.Output
	}

	return directive, nil
}
