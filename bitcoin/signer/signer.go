// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package signer

import (
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// ErrMissingWitnessUtxo defines that psbt input has no previous output to sign against.
var ErrMissingWitnessUtxo = errors.New("missing witness utxo")

// SignTaprootParams defines parameters for SignTaproot method.
type SignTaprootParams struct {
	Packet     *psbt.Packet
	Inputs     []int // inputs indexes.
	PrivateKey *btcec.PrivateKey
}

// signTaprootInputParams defines parameters for signTaprootInput method.
type signTaprootInputParams struct {
	packet       *psbt.Packet
	input        int
	inputFetcher txscript.PrevOutputFetcher
	privateKey   *btcec.PrivateKey
}

// Signer provides transaction signing related logic for keys held by the process,
// e.g. the one-time key of the reveal script. Wallet owned inputs are signed by the wallet.
type Signer struct{}

// NewSigner is a constructor for Signer.
func NewSigner() *Signer {
	return &Signer{}
}

// SignTaproot signs and finalizes taproot inputs by provided indexes, returns signed transaction.
// NOTE: all packet inputs must be listed, otherwise extraction fails.
func (signer *Signer) SignTaproot(params SignTaprootParams) (*wire.MsgTx, error) {
	var (
		packet               = params.Packet
		tx                   = packet.UnsignedTx
		prevOutputFetcherMap = make(map[wire.OutPoint]*wire.TxOut, len(tx.TxIn))
	)
	for idx, in := range packet.Inputs {
		if in.WitnessUtxo == nil {
			return nil, ErrMissingWitnessUtxo
		}

		prevOutputFetcherMap[tx.TxIn[idx].PreviousOutPoint] = in.WitnessUtxo
	}

	var prevOutputFetcher = txscript.NewMultiPrevOutFetcher(prevOutputFetcherMap)
	for _, input := range params.Inputs {
		if input < 0 || len(packet.Inputs) <= input {
			return nil, errors.New("invalid input index")
		}

		err := signer.signTaprootInput(signTaprootInputParams{
			packet:       packet,
			input:        input,
			inputFetcher: prevOutputFetcher,
			privateKey:   params.PrivateKey,
		})
		if err != nil {
			return nil, err
		}

		if err = psbt.Finalize(packet, input); err != nil {
			return nil, err
		}
	}

	return psbt.Extract(packet)
}

// signTaprootInput signs taproot input with or without witness script.
func (signer *Signer) signTaprootInput(params signTaprootInputParams) error {
	var (
		input       = &params.packet.Inputs[params.input]
		sigHashes   = txscript.NewTxSigHashes(params.packet.UnsignedTx, params.inputFetcher)
		value       = input.WitnessUtxo.Value
		pkScript    = input.WitnessUtxo.PkScript
		sigHashType = input.SighashType
	)

	if len(input.WitnessScript) == 0 {
		witness, err := txscript.TaprootWitnessSignature(
			params.packet.UnsignedTx, sigHashes, params.input,
			value, pkScript, sigHashType, params.privateKey)
		if err != nil {
			return err
		}

		input.TaprootKeySpendSig = witness[0]

		return nil
	}

	var (
		tapLeaf       = txscript.NewBaseTapLeaf(input.WitnessScript)
		tapScriptTree = txscript.AssembleTaprootScriptTree(tapLeaf)
		ctrlBlock     = tapScriptTree.LeafMerkleProofs[0].ToControlBlock(params.privateKey.PubKey())
		leafHash      = tapLeaf.TapHash()
	)

	ctrlBlockBytes, err := ctrlBlock.ToBytes()
	if err != nil {
		return err
	}

	sig, err := txscript.RawTxInTapscriptSignature(
		params.packet.UnsignedTx, sigHashes, params.input,
		value, pkScript, tapLeaf, sigHashType, params.privateKey,
	)
	if err != nil {
		return err
	}

	// sighash byte is appended back by the finalizer.
	if len(sig) > 64 {
		sig = sig[:64]
	}
	input.TaprootScriptSpendSig = []*psbt.TaprootScriptSpendSig{{
		XOnlyPubKey: params.privateKey.PubKey().SerializeCompressed()[1:],
		LeafHash:    leafHash.CloneBytes(),
		Signature:   sig,
		SigHash:     sigHashType,
	}}

	if len(input.TaprootLeafScript) == 0 {
		input.TaprootLeafScript = []*psbt.TaprootTapLeafScript{{
			ControlBlock: ctrlBlockBytes,
			Script:       tapLeaf.Script,
			LeafVersion:  tapLeaf.LeafVersion,
		}}
	}

	return nil
}
