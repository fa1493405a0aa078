// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package runes_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BoostyLabs/etcher/bitcoin/ord/runes"
)

func TestSpacedRune(t *testing.T) {
	t.Run("ParseSpacedRune", func(t *testing.T) {
		tests := []struct {
			input        string
			spacers      uint32
			expectedRune string
			display      string
		}{
			{
				input:        "ABC•DEF•GHI•JKL•MNO•PQR•STU•VWX•YZ",
				spacers:      0b00000000_10010010_01001001_00100100,
				expectedRune: "ABCDEFGHIJKLMNOPQRSTUVWXYZ",
				display:      "ABC•DEF•GHI•JKL•MNO•PQR•STU•VWX•YZ",
			},
			{
				input:        "HELLO.TEST.RUNE",
				spacers:      0b00000000_00000000_00000001_00010000,
				expectedRune: "HELLOTESTRUNE",
				display:      "HELLO•TEST•RUNE",
			},
			{
				input:        "HE.LLO•TEST.RUN•E",
				spacers:      0b00000000_00000000_00001001_00010010,
				expectedRune: "HELLOTESTRUNE",
				display:      "HE•LLO•TEST•RUN•E",
			},
			{
				input:        "NOSPACERS",
				expectedRune: "NOSPACERS",
				display:      "NOSPACERS",
			},
		}
		for _, test := range tests {
			t.Run(test.input, func(t *testing.T) {
				spaced, err := runes.ParseSpacedRune(test.input)
				require.NoError(t, err)
				require.EqualValues(t, test.spacers, spaced.Spacers)
				require.Equal(t, test.expectedRune, spaced.Rune.String())
				require.Equal(t, test.display, spaced.String())
				require.NoError(t, spaced.Validate())
			})
		}
	})

	t.Run("ParseSpacedRune (invalid)", func(t *testing.T) {
		tests := []struct {
			input string
			err   error
		}{
			{"•ABC", runes.ErrInvalidSpacers},
			{".ABC", runes.ErrInvalidSpacers},
			{"ABC•", runes.ErrInvalidSpacers},
			{"AB••C", runes.ErrInvalidSpacers},
			{"AB.•C", runes.ErrInvalidSpacers},
			{"AB_C", runes.ErrInvalidSymbol},
			{"abc", runes.ErrInvalidSymbol},
		}
		for _, test := range tests {
			_, err := runes.ParseSpacedRune(test.input)
			require.ErrorIs(t, err, test.err, test.input)
		}

		_, err := runes.ParseSpacedRune("")
		require.Error(t, err)
	})

	t.Run("StringWithSeparator", func(t *testing.T) {
		rune_, err := runes.NewRuneFromString("HELLOTESTRUNE")
		require.NoError(t, err)

		spaced := runes.SpacedRune{Rune: rune_, Spacers: 0b00000000_00000000_00001001_00010010}
		require.Equal(t, "HE\\LLO\\TEST\\RUN\\E", spaced.StringWithSeparator('\\'))
		require.Equal(t, "HE_LLO_TEST_RUN_E", spaced.StringWithSeparator('_'))
	})

	t.Run("Validate", func(t *testing.T) {
		rune_, err := runes.NewRuneFromString("ABC")
		require.NoError(t, err)

		require.NoError(t, runes.SpacedRune{Rune: rune_, Spacers: 0b11}.Validate())
		require.ErrorIs(t, runes.SpacedRune{Rune: rune_, Spacers: 0b100}.Validate(), runes.ErrInvalidSpacers)
		require.ErrorIs(t, runes.SpacedRune{Rune: rune_, Spacers: runes.MaxSpacers + 1}.Validate(), runes.ErrInvalidSpacers)
		require.Error(t, runes.SpacedRune{}.Validate())
	})
}
