// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package runes

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultSpacer defines default spacer for Rune name.
const DefaultSpacer = '•'

// AlternativeSpacer defines ASCII spacer accepted while parsing.
const AlternativeSpacer = '.'

// MaxSpacers defines max value for spacers.
const MaxSpacers uint32 = 0b00000111_11111111_11111111_11111111

// ErrInvalidSpacers defines that spacers are placed at the edges of the name or doubled.
var ErrInvalidSpacers = errors.New("invalid spacers")

// SpacedRune defines Rune with display spacers.
type SpacedRune struct {
	Rune    *Rune
	Spacers uint32
}

// ParseSpacedRune parses rune name with '•' or '.' used as spacers.
//
//	NOTE:
//	- Spacer may not be the first or the last symbol.
//	- Two spacers in a row are not allowed.
func ParseSpacedRune(s string) (SpacedRune, error) {
	var (
		name    strings.Builder
		spacers uint32
		idx     uint
		spaced  bool
	)
	for _, char := range s {
		if char == DefaultSpacer || char == AlternativeSpacer {
			if idx == 0 || spaced {
				return SpacedRune{}, ErrInvalidSpacers
			}
			if idx-1 >= 32 {
				return SpacedRune{}, ErrInvalidSpacers
			}

			spacers |= 1 << (idx - 1)
			spaced = true
			continue
		}

		name.WriteRune(char)
		idx++
		spaced = false
	}

	if spaced {
		return SpacedRune{}, ErrInvalidSpacers
	}

	rune_, err := NewRuneFromString(name.String())
	if err != nil {
		return SpacedRune{}, err
	}

	return SpacedRune{Rune: rune_, Spacers: spacers}, nil
}

// String returns rune name with the default spacer.
func (sr SpacedRune) String() string {
	return sr.StringWithSeparator(DefaultSpacer)
}

// StringWithSeparator returns Rune name as string with provided spacer.
func (sr SpacedRune) StringWithSeparator(spacer rune) string {
	name := sr.Rune.String()

	var b strings.Builder
	for idx, char := range name {
		b.WriteRune(char)

		if idx < len(name)-1 && sr.Spacers&(1<<idx) != 0 {
			b.WriteRune(spacer)
		}
	}

	return b.String()
}

// Validate checks that spacers do not point past the end of the name.
func (sr SpacedRune) Validate() error {
	if sr.Rune == nil {
		return errors.New("empty rune")
	}
	if sr.Spacers > MaxSpacers {
		return fmt.Errorf("%w: %b exceeds maximum", ErrInvalidSpacers, sr.Spacers)
	}
	if sr.Spacers >= 1<<(len(sr.Rune.String())-1) {
		return fmt.Errorf("%w: trailing spacer in %s", ErrInvalidSpacers, sr.Rune.String())
	}

	return nil
}
