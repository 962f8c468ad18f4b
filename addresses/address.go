// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package addresses turns the witness programs carried by wire.Address
// into and out of their human-readable bech32 form, and builds the
// redeem scripts behind the pay-to-script-hash programs the auction
// covenants spend through.
package addresses

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/domainchain/dmcd/chaincfg"
	"github.com/domainchain/dmcd/txscript"
	"github.com/domainchain/dmcd/wire"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

var (
	// ErrInvalidAddress is returned when an address string cannot be
	// decoded into a witness program.
	ErrInvalidAddress = errors.New("invalid address format")

	// ErrWrongNetwork is returned when an address decodes fine but
	// carries the wrong network's HRP.
	ErrWrongNetwork = errors.New("address is not for this network")

	// ErrInvalidPublicKey is returned when a public key is malformed.
	ErrInvalidPublicKey = errors.New("invalid public key")
)

// pubKeyHash computes the BLAKE2b-160 hash OP_BLAKE160 uses to bind a
// witness program to a public key (spec.md §4.4).
func pubKeyHash(pubKey *btcec.PublicKey) []byte {
	h, _ := blake2b.New(20, nil)
	h.Write(pubKey.SerializeCompressed())
	return h.Sum(nil)
}

// NewPubKeyHashAddress returns the pay-to-pubkey-hash witness program for
// pubKey: version 0, a 20-byte hash.
func NewPubKeyHashAddress(pubKey *btcec.PublicKey) (wire.Address, error) {
	if pubKey == nil {
		return wire.Address{}, ErrInvalidPublicKey
	}
	return wire.Address{Version: 0, Hash: pubKeyHash(pubKey)}, nil
}

// NewScriptHashAddress returns the pay-to-script-hash witness program for
// redeemScript: version 0, a 32-byte SHA3-256 digest.
func NewScriptHashAddress(redeemScript []byte) wire.Address {
	h := sha3.Sum256(redeemScript)
	return wire.Address{Version: 0, Hash: append([]byte(nil), h[:]...)}
}

// NewOpReturnAddress returns the unspendable witness program used for data
// carrier / airdrop-burn outputs (spec.md §4.4).
func NewOpReturnAddress() wire.Address {
	return wire.Address{Version: wire.OpReturnVersion, Hash: nil}
}

// MultiSigRedeemScript builds an m-of-n CHECKMULTISIG redeem script over
// the given compressed public keys.
func MultiSigRedeemScript(pubKeys []*btcec.PublicKey, required int) ([]byte, error) {
	if required <= 0 || required > len(pubKeys) {
		return nil, fmt.Errorf("invalid required signatures: %d of %d", required, len(pubKeys))
	}
	if len(pubKeys) > 20 {
		return nil, fmt.Errorf("too many public keys: %d (max 20)", len(pubKeys))
	}

	builder := txscript.NewScriptBuilder().AddInt64(int64(required))
	for _, pk := range pubKeys {
		builder.AddData(pk.SerializeCompressed())
	}
	builder.AddInt64(int64(len(pubKeys))).AddOp(txscript.OP_CHECKMULTISIG)
	return builder.Script()
}

// NewMultiSigAddress returns the pay-to-script-hash witness program for an
// m-of-n multisig redeem script, along with the redeem script itself (the
// caller must attach it as the final witness item when spending).
func NewMultiSigAddress(pubKeys []*btcec.PublicKey, required int) (wire.Address, []byte, error) {
	script, err := MultiSigRedeemScript(pubKeys, required)
	if err != nil {
		return wire.Address{}, nil, err
	}
	return NewScriptHashAddress(script), script, nil
}

// Encode renders addr as a bech32 string under params' HRP.
func Encode(addr wire.Address, params *chaincfg.Params) (string, error) {
	conv, err := bech32.ConvertBits(addr.Hash, 8, 5, true)
	if err != nil {
		return "", err
	}
	data := append([]byte{addr.Version}, conv...)
	return bech32.Encode(params.Bech32HRPSegwit, data)
}

// Decode parses a bech32 address string, verifying it belongs to params'
// network.
func Decode(address string, params *chaincfg.Params) (wire.Address, error) {
	hrp, data, err := bech32.Decode(address)
	if err != nil {
		return wire.Address{}, ErrInvalidAddress
	}
	if hrp != params.Bech32HRPSegwit {
		return wire.Address{}, ErrWrongNetwork
	}
	if len(data) < 1 {
		return wire.Address{}, ErrInvalidAddress
	}

	version := data[0]
	hash, err := bech32.ConvertBits(data[1:], 5, 8, false)
	if err != nil {
		return wire.Address{}, ErrInvalidAddress
	}

	addr := wire.Address{Version: version, Hash: hash}
	return addr, nil
}

// DecodeAny parses address against every network known to the process
// (via chaincfg.ParamsForHRP), returning the matching network's params
// alongside the decoded address.
func DecodeAny(address string) (wire.Address, *chaincfg.Params, error) {
	hrp, _, err := bech32.Decode(address)
	if err != nil {
		return wire.Address{}, nil, ErrInvalidAddress
	}
	params, err := chaincfg.ParamsForHRP(hrp)
	if err != nil {
		return wire.Address{}, nil, ErrWrongNetwork
	}
	addr, err := Decode(address, params)
	return addr, params, err
}
