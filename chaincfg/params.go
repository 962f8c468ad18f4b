// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg defines the network-parameter record that the rest of
// the core consults instead of any process-wide global state: the proof-of-
// work limits, address prefixes, and the block-count auction windows that drive
// the name-covenant state machine (names.NameState.Phase).
package chaincfg

import (
	"errors"
	"math/big"
	"strings"

	"github.com/domainchain/dmcd/chaincfg/chainhash"
)

var (
	bigOne = big.NewInt(1)

	// mainPowLimit is the highest proof-of-work value a main-network block
	// may have, expressed as the PoW limit a reorg-free header layer
	// would enforce. The core never checks PoW itself (spec Non-goal);
	// this is carried only so chaincfg can describe a network completely
	// for an external header-verification collaborator.
	mainPowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 224), bigOne)

	regtestPowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 255), bigOne)
)

// Network identifies one of the magic values that key-exchange and address
// encoding are scoped to. It replaces the wire.BitcoinNet magic-number
// pattern with a small closed enum, since this repository's wire package
// does not define a peer-handshake message set (out of core scope).
type Network uint32

// Network magic identifiers.
const (
	MainNet Network = 0xd9b4bef9
	TestNet Network = 0x0709110b
	RegTest Network = 0xdab5bffa
	SimNet  Network = 0x12141c16
)

// DNSSeed identifies a DNS seed used by the (external) P2P pool collaborator
// to discover peers.
type DNSSeed struct {
	Host         string
	HasFiltering bool
}

// Checkpoint identifies a known-good point in the block chain, consulted
// by the (external) chain database collaborator.
type Checkpoint struct {
	Height int32
	Hash   *chainhash.Hash
}

// Params defines a dmcd network by the parameters that differentiate it
// from any other: the PoW limit, the address-encoding magics, and the
// block-count windows that the name-auction state machine (names package)
// and the covenant consensus gate (consensus package) are parameterized
// over. No code outside of this struct and its three pre-built instances
// (MainNetParams, TestNetParams, RegressionNetParams) holds a global
// singleton for any of these values.
type Params struct {
	// Name is a human-readable identifier for the network.
	Name string

	// Net is the magic value used to identify the network to peers.
	Net Network

	// DefaultPort is the default P2P listen port for the network.
	DefaultPort string

	// DNSSeeds lists the seeds used for peer discovery.
	DNSSeeds []DNSSeed

	// PowLimit is the highest allowed proof-of-work target.
	PowLimit *big.Int

	// PowLimitBits is PowLimit in compact form.
	PowLimitBits uint32

	// CoinbaseMaturity is the number of blocks required before a coinbase
	// output may be spent.
	CoinbaseMaturity uint16

	// Checkpoints are ordered oldest to newest.
	Checkpoints []Checkpoint

	// Bech32HRPSegwit is the human-readable part used for bech32-encoded
	// witness addresses on this network.
	Bech32HRPSegwit string

	// PubKeyHashAddrID is the version byte of a legacy P2PKH address.
	PubKeyHashAddrID byte

	// ScriptHashAddrID is the version byte of a legacy P2SH address.
	ScriptHashAddrID byte

	// PrivateKeyID is the version byte prepended to a WIF-encoded private
	// key export for this network (addresses.EncodePrivateKey/DecodePrivateKey).
	PrivateKeyID byte

	// --- Name-auction windows (spec.md §4.6, §6, glossary) ---

	// TreeInterval is the number of blocks between trie-commit boundaries
	// (spec.md §4.7); it is also the delay between a name's OPEN height
	// and the start of its BIDDING window.
	TreeInterval uint32

	// BiddingPeriod is the length, in blocks, of the BIDDING window that
	// follows TreeInterval blocks of confirmation after OPEN.
	BiddingPeriod uint32

	// RevealPeriod is the length, in blocks, of the REVEAL window that
	// follows the BIDDING window's close.
	RevealPeriod uint32

	// TransferLockup is the number of blocks that must elapse between a
	// TRANSFER covenant and the FINALIZE that completes it.
	TransferLockup uint32

	// RenewalWindow is the number of blocks of inactivity (measured from
	// NameState.renewal) after which a name is considered EXPIRED and
	// becomes eligible for a fresh OPEN.
	RenewalWindow uint32

	// RevocationDelay is the number of blocks a REVOKEd name remains
	// un-openable.
	RevocationDelay uint32

	// LockupPeriod is a block count for how long a non-winning REVEAL's
	// bid lockup stays unredeemable after the REVEAL window closes. No
	// covenant rule reads it: REDEEM is accepted at any height once the
	// REVEAL window has closed.
	LockupPeriod uint32
}

// String returns the network name.
func (n Network) String() string {
	switch n {
	case MainNet:
		return "mainnet"
	case TestNet:
		return "testnet"
	case RegTest:
		return "regtest"
	case SimNet:
		return "simnet"
	default:
		return "unknown"
	}
}

// MainNetParams defines the parameters for the main dmcd network.
var MainNetParams = Params{
	Name:        "mainnet",
	Net:         MainNet,
	DefaultPort: "8339",
	DNSSeeds: []DNSSeed{
		{"seed1.dmcd.network", true},
		{"seed2.dmcd.network", true},
	},

	PowLimit:         mainPowLimit,
	PowLimitBits:     0x1d00ffff,
	CoinbaseMaturity: 100,

	Bech32HRPSegwit:  "dm",
	PubKeyHashAddrID: 0x00,
	ScriptHashAddrID: 0x05,
	PrivateKeyID:     0x80,

	TreeInterval:    36,    // ~6 hours at 10-minute blocks
	BiddingPeriod:   144,   // ~1 day
	RevealPeriod:    216,   // ~1.5 days
	TransferLockup:  288,   // ~2 days
	RenewalWindow:   52560, // ~1 year
	RevocationDelay: 4320,  // ~30 days
	LockupPeriod:    216,
}

// TestNetParams defines the parameters for the test network.
var TestNetParams = Params{
	Name:        "testnet",
	Net:         TestNet,
	DefaultPort: "18339",
	DNSSeeds: []DNSSeed{
		{"testseed.dmcd.network", true},
	},

	PowLimit:         mainPowLimit,
	PowLimitBits:     0x1d00ffff,
	CoinbaseMaturity: 100,

	Bech32HRPSegwit:  "tm",
	PubKeyHashAddrID: 0x6f,
	ScriptHashAddrID: 0xc4,
	PrivateKeyID:     0xef,

	TreeInterval:    36,
	BiddingPeriod:   36,
	RevealPeriod:    36,
	TransferLockup:  36,
	RenewalWindow:   5256,
	RevocationDelay: 432,
	LockupPeriod:    36,
}

// RegressionNetParams defines the parameters for the regression test
// network, using small windows so that the auction end-to-end scenario in
// spec.md §8 completes in well under a hundred blocks.
var RegressionNetParams = Params{
	Name:        "regtest",
	Net:         RegTest,
	DefaultPort: "18444",

	PowLimit:         regtestPowLimit,
	PowLimitBits:     0x207fffff,
	CoinbaseMaturity: 100,

	Bech32HRPSegwit:  "rm",
	PubKeyHashAddrID: 0x6f,
	ScriptHashAddrID: 0xc4,
	PrivateKeyID:     0xef,

	TreeInterval:    5,
	BiddingPeriod:   5,
	RevealPeriod:    10,
	TransferLockup:  10,
	RenewalWindow:   5000,
	RevocationDelay: 20,
	LockupPeriod:    10,
}

var (
	// ErrDuplicateNet describes an error when a network is registered more
	// than once.
	ErrDuplicateNet = errors.New("duplicate network")

	// ErrUnknownHRP describes an error when a bech32 HRP is not registered
	// to any known network.
	ErrUnknownHRP = errors.New("unknown bech32 human-readable part")

	registeredNets = make(map[Network]struct{})
	hrpToNetParams = make(map[string]*Params)
)

// Register registers the network parameters for a network so that address
// decoding (addresses package) can look up the correct HRP, following the
// pattern of chaincfg.Register in the btcsuite family.
func Register(params *Params) error {
	if _, ok := registeredNets[params.Net]; ok {
		return ErrDuplicateNet
	}
	registeredNets[params.Net] = struct{}{}
	hrpToNetParams[strings.ToLower(params.Bech32HRPSegwit)] = params
	return nil
}

// ParamsForHRP returns the registered network parameters for a bech32
// human-readable part, or ErrUnknownHRP if none has been registered.
func ParamsForHRP(hrp string) (*Params, error) {
	params, ok := hrpToNetParams[strings.ToLower(hrp)]
	if !ok {
		return nil, ErrUnknownHRP
	}
	return params, nil
}

func init() {
	for _, p := range []*Params{&MainNetParams, &TestNetParams, &RegressionNetParams} {
		if err := Register(p); err != nil {
			panic(err)
		}
	}
}
