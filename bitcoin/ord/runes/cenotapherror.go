// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package runes

import (
	"fmt"
)

// CenotaphKind defines which runestone part violates the protocol rules.
type CenotaphKind byte

const (
	// CenotaphPointer describes pointer out of the transaction outputs.
	CenotaphPointer CenotaphKind = iota + 1
	// CenotaphEtching describes incomplete or invalid etching.
	CenotaphEtching
	// CenotaphMint describes invalid mint rune id.
	CenotaphMint
	// CenotaphEdict describes invalid edict rune id or output.
	CenotaphEdict
)

// String returns name of the runestone part.
func (kind CenotaphKind) String() string {
	switch kind {
	case CenotaphPointer:
		return "pointer"
	case CenotaphEtching:
		return "etching"
	case CenotaphMint:
		return "mint"
	case CenotaphEdict:
		return "edict"
	default:
		return fmt.Sprintf("unknown(%d)", byte(kind))
	}
}

// CenotaphError describes runestone that would be burned by indexers.
type CenotaphError struct {
	Kind    CenotaphKind
	Message string
}

// Error implements error interface.
func (e *CenotaphError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrCenotaph.Error(), e.Kind, e.Message)
}

// Is reports ErrCenotaph as target.
func (e *CenotaphError) Is(target error) bool {
	return target == ErrCenotaph
}
