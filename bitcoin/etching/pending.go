// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package etching

import (
	"bytes"
	"encoding/hex"
	"math/big"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/google/uuid"

	"github.com/BoostyLabs/etcher/bitcoin/ord/runes"
)

// PendingEtching describes etching between the commit and the reveal broadcast.
// Keyed by rune name, at most one record per name.
type PendingEtching struct {
	RequestID  uuid.UUID
	Rune       runes.SpacedRune
	Directive  *runes.Directive
	Commitment runes.Commitment
	State      State

	CommitTxID     chainhash.Hash
	CommitOutpoint wire.OutPoint
	CommitHeight   uint64          // block count when the commit was broadcast.
	Reserved       []wire.OutPoint // wallet outpoints spent by the commit transaction.

	RevealTx    *wire.MsgTx // signed.
	RevealTxID  chainhash.Hash
	Destination string
	FeeRate     *big.Int // in satoshi per kilo virtual byte.

	Failure  string
	FailedAt State // state the failure happened in.

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Name returns record key, the rune name without spacers.
func (p *PendingEtching) Name() string {
	return p.Rune.Rune.String()
}

// CommitBroadcast returns true if the commit transaction could have been sent to the network.
func (p *PendingEtching) CommitBroadcast() bool {
	if p.State == StateFailed {
		return p.FailedAt != StateValidated
	}

	return p.State != StateValidated
}

// transition returns copy of the record in the next state.
func (p *PendingEtching) transition(next State, now time.Time) *PendingEtching {
	rec := *p
	rec.State = next
	rec.UpdatedAt = now

	return &rec
}

// fail returns copy of the record in failed state with the reason.
func (p *PendingEtching) fail(cause error, now time.Time) *PendingEtching {
	rec := p.transition(StateFailed, now)
	rec.FailedAt = p.State
	rec.Failure = cause.Error()

	return rec
}

// serializeTx returns hex encoded transaction.
func serializeTx(tx *wire.MsgTx) (string, error) {
	if tx == nil {
		return "", nil
	}

	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(buf.Bytes()), nil
}
