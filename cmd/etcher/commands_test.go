// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package main

import (
	"testing"

	"github.com/jessevdk/go-flags"
	"github.com/stretchr/testify/require"

	"github.com/BoostyLabs/etcher/bitcoin/ord/runes"
)

func TestEtchCommandParams(t *testing.T) {
	t.Run("parsed from command line", func(t *testing.T) {
		command := &etchCommand{}
		parser := flags.NewParser(&options{}, flags.None)
		parser.CommandHandler = func(executed flags.Commander, _ []string) error {
			require.Same(t, command, executed)
			return nil
		}
		_, err := parser.AddCommand("etch", "", "", command)
		require.NoError(t, err)

		_, err = parser.ParseArgs([]string{
			"etch",
			"--rune", "UNCOMMON•GOODS",
			"--divisibility", "2",
			"--fee-rate", "1.5",
			"--supply", "21000.5",
			"--symbol", "⧉",
			"--premine", "100",
			"--amount", "1000",
			"--height-start", "840000",
			"--offset-end", "4320",
			"--turbo",
		})
		require.NoError(t, err)

		params, err := command.params()
		require.NoError(t, err)
		require.Equal(t, "UNCOMMON•GOODS", params.Rune.String())
		require.EqualValues(t, 2, params.Divisibility)
		require.EqualValues(t, 1500, params.FeeRate.Int64())
		require.EqualValues(t, 2100050, params.Supply.Int64())
		require.Equal(t, '⧉', params.Symbol)
		require.EqualValues(t, 100, params.Premine.Int64())
		require.True(t, params.Turbo)
		require.Empty(t, params.Destination)

		require.NotNil(t, params.Terms)
		require.EqualValues(t, 1000, params.Terms.Amount.Int64())
		require.Nil(t, params.Terms.Cap)
		require.EqualValues(t, 840000, *params.Terms.HeightStart)
		require.Nil(t, params.Terms.HeightEnd)
		require.Nil(t, params.Terms.OffsetStart)
		require.EqualValues(t, 4320, *params.Terms.OffsetEnd)
	})

	t.Run("defaults", func(t *testing.T) {
		command := &etchCommand{Rune: "AAAAAAAAAAAAA", FeeRate: "2", Supply: "1", Symbol: "¤", Premine: "0"}

		params, err := command.params()
		require.NoError(t, err)
		require.Nil(t, params.Terms)
		require.EqualValues(t, 2000, params.FeeRate.Int64())
		require.Zero(t, params.Premine.Sign())
		require.Equal(t, '¤', params.Symbol)
	})

	t.Run("invalid", func(t *testing.T) {
		valid := etchCommand{Rune: "AAAAAAAAAAAAA", FeeRate: "2", Supply: "1", Symbol: "¤", Premine: "0"}

		tests := []struct {
			name   string
			modify func(c *etchCommand)
		}{
			{"rune", func(c *etchCommand) { c.Rune = "abc" }},
			{"symbol", func(c *etchCommand) { c.Symbol = "ab" }},
			{"empty symbol", func(c *etchCommand) { c.Symbol = "" }},
			{"invalid utf-8 symbol", func(c *etchCommand) { c.Symbol = "\xff" }},
			{"fee rate precision", func(c *etchCommand) { c.FeeRate = "1.0001" }},
			{"supply precision", func(c *etchCommand) { c.Supply = "1.5" }},
			{"negative premine", func(c *etchCommand) { c.Premine = "-1" }},
			{"cap", func(c *etchCommand) { c.Cap = "many" }},
			{"height", func(c *etchCommand) { c.HeightEnd = "-5" }},
		}
		for _, test := range tests {
			t.Run(test.name, func(t *testing.T) {
				command := valid
				test.modify(&command)

				_, err := command.params()
				require.Error(t, err)
			})
		}
	})

	t.Run("supply overflow", func(t *testing.T) {
		command := &etchCommand{Rune: "AAAAAAAAAAAAA", FeeRate: "2", Supply: "340282366920938463463374607431768211456", Symbol: "¤"}

		_, err := command.params()
		require.ErrorIs(t, err, runes.ErrUint128Overflow)
	})
}
