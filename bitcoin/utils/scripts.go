// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package utils

import (
	"encoding/binary"
	"errors"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/txscript"
)

// ErrPushTooLarge defines that data exceeds maximum script element size.
var ErrPushTooLarge = errors.New("data push exceeds maximum script element size")

// AppendPush appends data push with explicit length prefix to the script.
// Unlike txscript.ScriptBuilder it never replaces one byte pushes by OP_1..OP_16.
func AppendPush(script []byte, data []byte) ([]byte, error) {
	size := len(data)
	switch {
	case size <= txscript.OP_DATA_75:
		script = append(script, byte(size))
	case size <= 0xff:
		script = append(script, txscript.OP_PUSHDATA1, byte(size))
	case size <= txscript.MaxScriptElementSize:
		script = append(script, txscript.OP_PUSHDATA2)
		script = binary.LittleEndian.AppendUint16(script, uint16(size))
	default:
		return nil, ErrPushTooLarge
	}

	return append(script, data...), nil
}

// NewCommitmentLeafTapScript generates taproot leaf script which requires signature of
// the provided key and carries data pushes in the never executed envelope.
// INFO: Script will have the next format: {<pubKey> OP_CHECKSIG OP_FALSE OP_IF <push1> [<push2> ...] OP_ENDIF}.
func NewCommitmentLeafTapScript(xOnlyPubKey []byte, pushes ...[]byte) ([]byte, error) {
	if len(xOnlyPubKey) != schnorr.PubKeyBytesLen {
		return nil, errors.New("invalid x-only public key length")
	}
	if len(pushes) == 0 {
		return nil, errors.New("no data pushes provided")
	}

	script, err := txscript.NewScriptBuilder().
		AddData(xOnlyPubKey).
		AddOp(txscript.OP_CHECKSIG).
		AddOp(txscript.OP_FALSE).
		AddOp(txscript.OP_IF).
		Script()
	if err != nil {
		return nil, err
	}

	for _, push := range pushes {
		script, err = AppendPush(script, push)
		if err != nil {
			return nil, err
		}
	}

	return append(script, txscript.OP_ENDIF), nil
}

// NewTapScriptTreeFromRawScripts builds tapScript tree from provided raw leaf scripts.
func NewTapScriptTreeFromRawScripts(leafScripts ...[]byte) (*txscript.IndexedTapScriptTree, error) {
	if len(leafScripts) == 0 {
		return nil, errors.New("no leaf scripts provided")
	}

	var tapLeafs = make([]txscript.TapLeaf, len(leafScripts))
	for i, leafScript := range leafScripts {
		tapLeafs[i] = txscript.NewBaseTapLeaf(leafScript)
	}

	return txscript.AssembleTaprootScriptTree(tapLeafs...), nil
}

// UpdatePSBTInputWithTapScriptLeafData updates provided psbt input with all data needed to sign taproot utxo.
func UpdatePSBTInputWithTapScriptLeafData(input *psbt.PInput, tapScriptTree *txscript.IndexedTapScriptTree) error {
	if len(input.TaprootInternalKey) == 0 {
		return errors.New("no taproot internal key provided")
	}
	if len(input.WitnessScript) == 0 {
		return errors.New("no witness script provided")
	}

	tapLeaf := txscript.NewBaseTapLeaf(input.WitnessScript)
	internalKey, err := schnorr.ParsePubKey(input.TaprootInternalKey)
	if err != nil {
		return err
	}

	ctrlBlock := tapScriptTree.LeafMerkleProofs[0].ToControlBlock(internalKey)
	tapLeafScript := &psbt.TaprootTapLeafScript{
		Script:      tapLeaf.Script,
		LeafVersion: tapLeaf.LeafVersion,
	}
	tapLeafScript.ControlBlock, err = ctrlBlock.ToBytes()
	if err != nil {
		return err
	}

	if len(input.TaprootLeafScript) == 0 {
		input.TaprootLeafScript = []*psbt.TaprootTapLeafScript{tapLeafScript}
	}

	if len(input.TaprootMerkleRoot) == 0 {
		input.TaprootMerkleRoot = ctrlBlock.RootHash(tapLeaf.Script)
	}

	return nil
}
