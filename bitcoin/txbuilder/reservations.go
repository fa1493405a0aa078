// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"context"

	"github.com/btcsuite/btcd/wire"
)

// Locker excludes outpoints from wallet coin selection.
type Locker interface {
	LockUnspent(ctx context.Context, outpoints []wire.OutPoint) error
}

// ExcludeReservations locks outpoints reserved by other pending operations,
// so that the following funding call can not select them.
func (b *TxBuilder) ExcludeReservations(ctx context.Context, locker Locker, reserved []wire.OutPoint) error {
	if len(reserved) == 0 {
		return nil
	}

	var (
		seen      = make(map[wire.OutPoint]struct{}, len(reserved))
		outpoints = make([]wire.OutPoint, 0, len(reserved))
	)
	for _, outpoint := range reserved {
		if _, ok := seen[outpoint]; ok {
			continue
		}

		seen[outpoint] = struct{}{}
		outpoints = append(outpoints, outpoint)
	}

	if err := locker.LockUnspent(ctx, outpoints); err != nil {
		return NewLockFailureError(err)
	}

	return nil
}
