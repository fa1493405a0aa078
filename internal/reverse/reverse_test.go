// Copyright (C) 2022 Creditor Corp. Group.
// See LICENSE for copying information.

package reverse_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BoostyLabs/etcher/internal/reverse"
)

func TestLittleEndian(t *testing.T) {
	tests := []struct {
		name     string
		value    *big.Int
		size     int
		expected []byte
	}{
		{"zero", big.NewInt(0), 4, []byte{0, 0, 0, 0}},
		{"one byte", big.NewInt(0x7f), 2, []byte{0x7f, 0}},
		{"multi byte", big.NewInt(0x010203), 4, []byte{0x03, 0x02, 0x01, 0}},
		{"exact size", big.NewInt(0xffff), 2, []byte{0xff, 0xff}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, reverse.LittleEndian(test.value, test.size))
		})
	}

	t.Run("too large", func(t *testing.T) {
		require.Panics(t, func() { reverse.LittleEndian(big.NewInt(0x010000), 2) })
	})
}
