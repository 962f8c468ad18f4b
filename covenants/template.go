// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package covenants builds the standard redeem-script patterns a name
// owner locks their REGISTER/UPDATE/RENEW/TRANSFER/REVOKE coin to
// (spec.md §8). Both patterns branch on the spending transaction's
// same-index output covenant type via OP_TYPE rather than on a timeout or
// signature count, the introspection-driven idiom the covenant model is
// built around.
package covenants

import (
	"github.com/domainchain/dmcd/txscript"
	"github.com/domainchain/dmcd/wire"
)

// AnyoneCanRenewScript returns a redeem script that lets any party submit
// a RENEW covenant against the name (keeping it from expiring costs
// nothing but a fee, so anyone is free to pay it), while every other
// covenant type still requires owner's signature.
//
//	OP_TYPE <RENEW> OP_EQUAL
//	OP_IF
//	    OP_TRUE
//	OP_ELSE
//	    <owner> OP_CHECKSIG
//	OP_ENDIF
func AnyoneCanRenewScript(owner []byte) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_TYPE).
		AddInt64(int64(wire.CovenantRenew)).
		AddOp(txscript.OP_EQUAL).
		AddOp(txscript.OP_IF).
		AddOp(txscript.OP_TRUE).
		AddOp(txscript.OP_ELSE).
		AddData(owner).
		AddOp(txscript.OP_CHECKSIG).
		AddOp(txscript.OP_ENDIF).
		Script()
}

// SplitManagementScript returns a redeem script that routes day-to-day
// covenants (UPDATE, RENEW) to a hot key and ownership-changing covenants
// (TRANSFER, REVOKE) to a separate cold key, the same hot/cold split a
// custody vault makes on spend timing, here made on covenant type instead:
//
//	OP_TYPE OP_DUP <UPDATE> OP_EQUAL OP_SWAP <RENEW> OP_EQUAL OP_BOOLOR
//	OP_IF
//	    <hot> OP_CHECKSIG
//	OP_ELSE
//	    <cold> OP_CHECKSIG
//	OP_ENDIF
func SplitManagementScript(hot, cold []byte) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_TYPE).
		AddOp(txscript.OP_DUP).
		AddInt64(int64(wire.CovenantUpdate)).
		AddOp(txscript.OP_EQUAL).
		AddOp(txscript.OP_SWAP).
		AddInt64(int64(wire.CovenantRenew)).
		AddOp(txscript.OP_EQUAL).
		AddOp(txscript.OP_BOOLOR).
		AddOp(txscript.OP_IF).
		AddData(hot).
		AddOp(txscript.OP_CHECKSIG).
		AddOp(txscript.OP_ELSE).
		AddData(cold).
		AddOp(txscript.OP_CHECKSIG).
		AddOp(txscript.OP_ENDIF).
		Script()
}
