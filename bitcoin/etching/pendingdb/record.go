// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package pendingdb

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/BoostyLabs/etcher/bitcoin/etching"
	"github.com/BoostyLabs/etcher/bitcoin/ord/runes"
)

// record defines stored form of the pending etching.
// Directive is kept as runestone script and decoded back with runes.DecodeDirective.
type record struct {
	RequestID    string   `cbor:"1,keyasint"`
	Name         string   `cbor:"2,keyasint"`
	Spacers      uint32   `cbor:"3,keyasint"`
	Runestone    []byte   `cbor:"4,keyasint"`
	Commitment   []byte   `cbor:"5,keyasint"`
	State        string   `cbor:"6,keyasint"`
	CommitTxID   []byte   `cbor:"7,keyasint"`
	CommitVout   uint32   `cbor:"8,keyasint"`
	CommitHeight uint64   `cbor:"9,keyasint"`
	Reserved     []string `cbor:"10,keyasint,omitempty"`
	RevealTx     []byte   `cbor:"11,keyasint,omitempty"`
	Destination  string   `cbor:"12,keyasint"`
	FeeRate      []byte   `cbor:"13,keyasint"`
	Failure      string   `cbor:"14,keyasint,omitempty"`
	FailedAt     string   `cbor:"15,keyasint,omitempty"`
	CreatedAt    int64    `cbor:"16,keyasint"`
	UpdatedAt    int64    `cbor:"17,keyasint"`
}

// encMode defines deterministic cbor encoding of records.
var encMode, _ = cbor.CoreDetEncOptions().EncMode()

// encode serializes pending etching.
func encode(rec *etching.PendingEtching) ([]byte, error) {
	if rec.Directive == nil {
		return nil, errors.New("pending etching has no directive")
	}

	runestone, err := runes.EncodeDirective(rec.Directive)
	if err != nil {
		return nil, err
	}

	r := record{
		RequestID:    rec.RequestID.String(),
		Name:         rec.Name(),
		Spacers:      rec.Rune.Spacers,
		Runestone:    runestone,
		Commitment:   rec.Commitment[:],
		State:        rec.State.String(),
		CommitTxID:   rec.CommitTxID[:],
		CommitVout:   rec.CommitOutpoint.Index,
		CommitHeight: rec.CommitHeight,
		Destination:  rec.Destination,
		Failure:      rec.Failure,
		FailedAt:     rec.FailedAt.String(),
		CreatedAt:    rec.CreatedAt.UnixNano(),
		UpdatedAt:    rec.UpdatedAt.UnixNano(),
	}

	if rec.FeeRate != nil {
		r.FeeRate = rec.FeeRate.Bytes()
	}

	for _, outpoint := range rec.Reserved {
		r.Reserved = append(r.Reserved, outpoint.String())
	}

	if rec.RevealTx != nil {
		var buf bytes.Buffer
		if err = rec.RevealTx.Serialize(&buf); err != nil {
			return nil, err
		}

		r.RevealTx = buf.Bytes()
	}

	return encMode.Marshal(r)
}

// decode deserializes pending etching stored by the key.
func decode(key string, data []byte) (*etching.PendingEtching, error) {
	var r record
	if err := cbor.Unmarshal(data, &r); err != nil {
		return nil, err
	}

	if r.Name != key {
		return nil, fmt.Errorf("record of rune `%s` stored by key `%s`", r.Name, key)
	}

	requestID, err := uuid.Parse(r.RequestID)
	if err != nil {
		return nil, err
	}

	directive, err := runes.DecodeDirective(r.Runestone)
	if err != nil {
		return nil, err
	}
	if directive.Rune.String() != r.Name || directive.Spacers != r.Spacers {
		return nil, errors.New("runestone does not match the record rune")
	}

	state := etching.State(r.State)
	if !state.IsValid() {
		return nil, fmt.Errorf("unknown state %q", r.State)
	}

	if len(r.Commitment) != len(runes.Commitment{}) {
		return nil, errors.New("invalid commitment length")
	}

	commitTxID, err := chainhash.NewHash(r.CommitTxID)
	if err != nil {
		return nil, err
	}

	rec := &etching.PendingEtching{
		RequestID:      requestID,
		Rune:           runes.SpacedRune{Rune: directive.Rune, Spacers: r.Spacers},
		Directive:      directive,
		Commitment:     runes.Commitment(r.Commitment),
		State:          state,
		CommitTxID:     *commitTxID,
		CommitOutpoint: *wire.NewOutPoint(commitTxID, r.CommitVout),
		CommitHeight:   r.CommitHeight,
		Destination:    r.Destination,
		FeeRate:        new(big.Int).SetBytes(r.FeeRate),
		Failure:        r.Failure,
		FailedAt:       etching.State(r.FailedAt),
		CreatedAt:      time.Unix(0, r.CreatedAt),
		UpdatedAt:      time.Unix(0, r.UpdatedAt),
	}

	if rec.Commitment != directive.Rune.Commitment() {
		return nil, errors.New("commitment does not match the record rune")
	}

	for _, s := range r.Reserved {
		outpoint, err := wire.NewOutPointFromString(s)
		if err != nil {
			return nil, err
		}

		rec.Reserved = append(rec.Reserved, *outpoint)
	}

	if len(r.RevealTx) > 0 {
		rec.RevealTx = new(wire.MsgTx)
		if err = rec.RevealTx.Deserialize(bytes.NewReader(r.RevealTx)); err != nil {
			return nil, err
		}

		rec.RevealTxID = rec.RevealTx.TxHash()
	}

	return rec, nil
}
