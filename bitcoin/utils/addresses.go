// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package utils

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
)

// ErrAddressNetwork defines that address is malformed or belongs to another network.
var ErrAddressNetwork = errors.New("address does not belong to the network")

// NewTaprootAddressFromScripts generates taproot address with tree built from provided leaf scripts.
func NewTaprootAddressFromScripts(chainParams *chaincfg.Params, internalKey *btcec.PublicKey, leafScripts ...[]byte) (*btcutil.AddressTaproot, error) {
	tapScriptTree, err := NewTapScriptTreeFromRawScripts(leafScripts...)
	if err != nil {
		return nil, err
	}

	tapScriptRootHash := tapScriptTree.RootNode.TapHash()
	outputKey := txscript.ComputeTaprootOutputKey(internalKey, tapScriptRootHash[:])

	return btcutil.NewAddressTaproot(schnorr.SerializePubKey(outputKey), chainParams)
}

// DecodeAddressForNet decodes address of the chainParams network.
func DecodeAddressForNet(address string, chainParams *chaincfg.Params) (btcutil.Address, error) {
	decoded, err := btcutil.DecodeAddress(address, chainParams)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrAddressNetwork, address, err)
	}

	if !decoded.IsForNet(chainParams) {
		return nil, fmt.Errorf("%w: %q is not %s address", ErrAddressNetwork, address, chainParams.Name)
	}

	return decoded, nil
}

// PayToAddressScript returns output script paying to the address of chainParams network.
func PayToAddressScript(address string, chainParams *chaincfg.Params) ([]byte, error) {
	decoded, err := DecodeAddressForNet(address, chainParams)
	if err != nil {
		return nil, err
	}

	return txscript.PayToAddrScript(decoded)
}
