// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addresses

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/domainchain/dmcd/chaincfg"
	"github.com/domainchain/dmcd/chaincfg/chainhash"
)

// EncodePrivateKey renders key in the legacy base58-check "wallet import
// format" wallets use for backup/export, versioned per network.
func EncodePrivateKey(key *btcec.PrivateKey, params *chaincfg.Params, compressed bool) string {
	keyBytes := key.Serialize()
	payloadLen := 1 + len(keyBytes)
	if compressed {
		payloadLen++
	}
	payload := make([]byte, 0, payloadLen)
	payload = append(payload, params.PrivateKeyID)
	payload = append(payload, keyBytes...)
	if compressed {
		payload = append(payload, 0x01)
	}

	checksum := chainhash.DoubleHashB(payload)[:4]
	return base58.Encode(append(payload, checksum...))
}

// DecodePrivateKey parses a WIF-encoded private key, returning the key and
// whether it was marked for use with a compressed public key.
func DecodePrivateKey(wif string, params *chaincfg.Params) (*btcec.PrivateKey, bool, error) {
	decoded := base58.Decode(wif)
	if len(decoded) != 37 && len(decoded) != 38 {
		return nil, false, fmt.Errorf("malformed WIF: invalid length")
	}

	compressed := len(decoded) == 38
	payload := decoded[:len(decoded)-4]
	checksum := decoded[len(decoded)-4:]
	expected := chainhash.DoubleHashB(payload)[:4]
	for i := range checksum {
		if checksum[i] != expected[i] {
			return nil, false, fmt.Errorf("malformed WIF: checksum mismatch")
		}
	}

	if payload[0] != params.PrivateKeyID {
		return nil, false, fmt.Errorf("malformed WIF: wrong network version")
	}

	keyBytes := payload[1:33]
	priv, _ := btcec.PrivKeyFromBytes(keyBytes)
	return priv, compressed, nil
}
