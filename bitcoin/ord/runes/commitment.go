// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package runes

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/BoostyLabs/etcher/internal/reverse"
)

// CommitConfirmations defines number of confirmations the commit transaction
// must reach before the reveal transaction may spend it.
const CommitConfirmations = 6

// commitmentTag defines BIP-340 tag of the rune commitment hash.
var commitmentTag = []byte("rune/commitment")

// Commitment defines value binding the reveal transaction to the rune name.
type Commitment [32]byte

// Commitment returns commitment of the rune name, tagged SHA-256 of
// 16 bytes little-endian rune value.
func (r *Rune) Commitment() Commitment {
	return Commitment(*chainhash.TaggedHash(commitmentTag, r.Bytes()))
}

// Bytes returns Rune value as 16 bytes little-endian number.
func (r *Rune) Bytes() []byte {
	return reverse.LittleEndian(r.value, 16)
}

// ProtocolCommitment returns little-endian rune value with trailing zero bytes removed,
// the form indexers expect to find in the tapscript spent by the etching input.
func (r *Rune) ProtocolCommitment() []byte {
	b := r.Bytes()
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}

	return b[:end]
}

// String returns commitment as hex string.
func (c Commitment) String() string {
	return hex.EncodeToString(c[:])
}

// ConfirmationsRequired returns how many confirmations the commit transaction needs before reveal.
func ConfirmationsRequired() uint64 {
	return CommitConfirmations
}
