// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package names

import (
	"encoding/binary"

	"github.com/domainchain/dmcd/chaincfg"
	"github.com/domainchain/dmcd/chaincfg/chainhash"
	"github.com/domainchain/dmcd/wire"
)

// View is the minimal read/write handle the covenant engine needs over the
// authenticated trie (spec.md C7): a NameState lookup and a staged write.
// The consensus gate (C8) backs this with an urkel.Transaction overlay;
// the mempool admission adapter (C9) backs it with a layered view over the
// last committed root plus unconfirmed writes (spec.md §4.8).
type View interface {
	GetName(nameHash chainhash.Hash) (*NameState, bool)
	PutName(nameHash chainhash.Hash, ns *NameState)
}

// PrevOutputFetcher supplies the output consumed by a given outpoint, the
// same shape txscript.PrevOutputFetcher uses, duplicated here so this
// package does not need to import txscript to inspect a spent coin's
// covenant (e.g. the BID a REVEAL is spending).
type PrevOutputFetcher interface {
	FetchPrevOutput(op wire.OutPoint) (*wire.TxOut, bool)
}

// ApplyCovenant validates and applies the covenant carried by output
// outIdx of tx against view, per spec.md §4.5-§4.6. It is called once per
// non-NONE output, in output order, by both the consensus gate (which
// applies every covenant of a connecting block) and the mempool adapter
// (which applies a single candidate transaction's covenants against an
// overlay view).
func ApplyCovenant(view View, fetcher PrevOutputFetcher, tx *wire.MsgTx, outIdx int, height uint32, params *chaincfg.Params) error {
	if outIdx < 0 || outIdx >= len(tx.TxOut) {
		return verifyError(ReasonBadCovenantItems, "output index out of range")
	}
	cov := &tx.TxOut[outIdx].Covenant

	switch cov.Type {
	case wire.CovenantNone:
		return nil
	case wire.CovenantClaim:
		return applyClaim(view, tx, outIdx, height, params)
	case wire.CovenantOpen:
		return applyOpen(view, tx, outIdx, height, params)
	case wire.CovenantBid:
		return applyBid(view, tx, outIdx, height, params)
	case wire.CovenantReveal:
		return applyReveal(view, fetcher, tx, outIdx, height, params)
	case wire.CovenantRedeem:
		return applyRedeem(view, fetcher, tx, outIdx, height, params)
	case wire.CovenantRegister:
		return applyRegister(view, fetcher, tx, outIdx, height, params)
	case wire.CovenantUpdate:
		return applyUpdate(view, tx, outIdx, height, params)
	case wire.CovenantRenew:
		return applyRenew(view, tx, outIdx, height, params)
	case wire.CovenantTransfer:
		return applyTransfer(view, tx, outIdx, height, params)
	case wire.CovenantFinalize:
		return applyFinalize(view, tx, outIdx, height, params)
	case wire.CovenantRevoke:
		return applyRevoke(view, tx, outIdx, height, params)
	default:
		return verifyError(ReasonUnknownCovenant, cov.Type.String())
	}
}

// --- item parsing helpers ---

func itemU32(item []byte) (uint32, bool) {
	if len(item) != 4 {
		return 0, false
	}
	return binary.LittleEndian.Uint32(item), true
}

func itemHash(item []byte) (chainhash.Hash, bool) {
	var h chainhash.Hash
	if len(item) != chainhash.HashSize {
		return h, false
	}
	copy(h[:], item)
	return h, true
}

// nameHashAndOpenHeight parses the two items every name-referencing
// covenant shares at positions 0 and 1, and checks the open-height agrees
// with the referenced NameState (spec.md §3.2 invariant 3).
func nameHashAndOpenHeight(cov *wire.Covenant, ns *NameState) (chainhash.Hash, error) {
	nameHash, ok := itemHash(cov.Item(0))
	if !ok {
		return chainhash.Hash{}, verifyError(ReasonBadCovenantItems, "name-hash item must be 32 bytes")
	}
	openHeight, ok := itemU32(cov.Item(1))
	if !ok {
		return chainhash.Hash{}, verifyError(ReasonBadCovenantItems, "open-height item must be 4 bytes")
	}
	if ns != nil && openHeight != ns.Height {
		return chainhash.Hash{}, verifyError(ReasonBadOpenHeight, "open-height does not match name state")
	}
	return nameHash, nil
}

// outpointSpentBefore reports whether tx spends op in an input whose index
// does not come after outIdx (spec.md §4.6 rule 3's ordering check: a
// continuing covenant's output index may not precede the input index that
// spends the name's prior state).
func outpointSpentBefore(tx *wire.MsgTx, op wire.OutPoint, outIdx int) bool {
	for i, in := range tx.TxIn {
		if i <= outIdx && in.PreviousOutPoint == op {
			return true
		}
	}
	return false
}

// findSpentCovenant locates the first input of tx, at an index not greater
// than outIdx, whose previous output carries covenant type wantType over
// nameHash. It returns the spent output and the input's index.
func findSpentCovenant(tx *wire.MsgTx, fetcher PrevOutputFetcher, outIdx int, wantType wire.CovenantType, nameHash chainhash.Hash) (*wire.TxOut, int, bool) {
	if fetcher == nil {
		return nil, -1, false
	}
	for i, in := range tx.TxIn {
		if i > outIdx {
			continue
		}
		prev, ok := fetcher.FetchPrevOutput(in.PreviousOutPoint)
		if !ok || prev.Covenant.Type != wantType {
			continue
		}
		if h, ok := itemHash(prev.Covenant.Item(0)); !ok || h != nameHash {
			continue
		}
		return prev, i, true
	}
	return nil, -1, false
}

// --- CLAIM ---

func applyClaim(view View, tx *wire.MsgTx, outIdx int, height uint32, params *chaincfg.Params) error {
	cov := &tx.TxOut[outIdx].Covenant
	if len(cov.Items) != 6 {
		return verifyError(ReasonBadCovenantItems, "CLAIM requires 6 items")
	}
	nameHash, ok := itemHash(cov.Item(0))
	if !ok {
		return verifyError(ReasonBadCovenantItems, "name-hash item must be 32 bytes")
	}
	name := cov.Item(2)
	if err := IsValidName(name); err != nil {
		return verifyError(ReasonBadNameLength, err.Error())
	}
	if Hash(name) != nameHash {
		return verifyError(ReasonBadNameHash, "name-hash does not match name")
	}
	if _, exists := view.GetName(nameHash); exists {
		return verifyError(ReasonNameNotExpired, "CLAIM target already has a name state")
	}

	flags := byte(0)
	if f := cov.Item(3); len(f) == 1 {
		flags = f[0]
	}

	ns := &NameState{
		Name:     append([]byte(nil), name...),
		NameHash: nameHash,
		Height:   height,
		Renewal:  height,
		Owner:    wire.OutPoint{Hash: tx.TxHash(), Index: uint32(outIdx)},
		Claimed:  height,
		Weak:     flags&1 != 0,
	}
	view.PutName(nameHash, ns)
	return nil
}

// --- OPEN ---

func applyOpen(view View, tx *wire.MsgTx, outIdx int, height uint32, params *chaincfg.Params) error {
	cov := &tx.TxOut[outIdx].Covenant
	if len(cov.Items) != 3 {
		return verifyError(ReasonBadCovenantItems, "OPEN requires 3 items")
	}
	nameHash, ok := itemHash(cov.Item(0))
	if !ok {
		return verifyError(ReasonBadCovenantItems, "name-hash item must be 32 bytes")
	}
	if openHeight, ok := itemU32(cov.Item(1)); !ok || openHeight != 0 {
		return verifyError(ReasonBadOpenHeight, "OPEN's open-height item must be 0")
	}
	name := cov.Item(2)
	if err := IsValidName(name); err != nil {
		return verifyError(ReasonBadNameLength, err.Error())
	}
	if Hash(name) != nameHash {
		return verifyError(ReasonBadNameHash, "name-hash does not match name")
	}

	if existing, exists := view.GetName(nameHash); exists && !existing.IsOpenable(height, params) {
		return verifyError(ReasonNameNotExpired, "an active auction already exists for this name")
	}

	ns := &NameState{
		Name:     append([]byte(nil), name...),
		NameHash: nameHash,
		Height:   height,
		Renewal:  height,
	}
	view.PutName(nameHash, ns)
	return nil
}

// --- BID ---

func applyBid(view View, tx *wire.MsgTx, outIdx int, height uint32, params *chaincfg.Params) error {
	cov := &tx.TxOut[outIdx].Covenant
	if len(cov.Items) != 4 {
		return verifyError(ReasonBadCovenantItems, "BID requires 4 items")
	}
	ns, exists := view.GetName(mustHash(cov.Item(0)))
	if !exists {
		return verifyError(ReasonNameExpired, "BID references a name with no open auction")
	}
	if _, err := nameHashAndOpenHeight(cov, ns); err != nil {
		return err
	}
	name := cov.Item(2)
	if Hash(name) != ns.NameHash {
		return verifyError(ReasonBadNameHash, "name-hash does not match name")
	}
	if len(cov.Item(3)) != chainhash.HashSize {
		return verifyError(ReasonBadCovenantItems, "blind-hash item must be 32 bytes")
	}
	if ns.Phase(height, params) != PhaseBidding {
		return verifyError(ReasonBadCovenantPhase, "BID outside the BIDDING window")
	}
	// BID does not mutate the NameState; this output's value is the blind
	// lockup, and the bid itself is disclosed as the output value of the
	// REVEAL that later spends it.
	return nil
}

// --- REVEAL ---

func applyReveal(view View, fetcher PrevOutputFetcher, tx *wire.MsgTx, outIdx int, height uint32, params *chaincfg.Params) error {
	cov := &tx.TxOut[outIdx].Covenant
	if len(cov.Items) != 3 {
		return verifyError(ReasonBadCovenantItems, "REVEAL requires 3 items")
	}
	nameHash, ok := itemHash(cov.Item(0))
	if !ok {
		return verifyError(ReasonBadCovenantItems, "name-hash item must be 32 bytes")
	}
	ns, exists := view.GetName(nameHash)
	if !exists {
		return verifyError(ReasonNameExpired, "REVEAL references a name with no open auction")
	}
	if _, err := nameHashAndOpenHeight(cov, ns); err != nil {
		return err
	}
	var nonce [NonceSize]byte
	if n := cov.Item(2); len(n) != NonceSize {
		return verifyError(ReasonBadCovenantItems, "nonce item must be 32 bytes")
	} else {
		copy(nonce[:], n)
	}
	if ns.Phase(height, params) != PhaseReveal {
		return verifyError(ReasonBadCovenantPhase, "REVEAL outside the REVEAL window")
	}

	bidOut, bidIdx, found := findSpentCovenant(tx, fetcher, outIdx, wire.CovenantBid, nameHash)
	if !found {
		return verifyError(ReasonBadCovenantOrder, "REVEAL does not spend a matching BID output")
	}
	blindHash, ok := itemHash(bidOut.Covenant.Item(3))
	if !ok {
		return verifyError(ReasonBadCovenantItems, "spent BID carries no blind-hash")
	}
	bidValue := tx.TxOut[outIdx].Value
	if bidValue > bidOut.Value {
		return verifyError(ReasonBadValue, "revealed bid exceeds the BID's lockup")
	}
	if !VerifyBlind(blindHash, bidValue, nonce) {
		return verifyError(ReasonBadBlind, "revealed (value, nonce) does not match the BID's blind hash")
	}
	_ = bidIdx

	ns = ns.Clone()
	if bidValue > ns.Highest {
		if ns.Highest > 0 {
			ns.Value = ns.Highest // second-price (Vickrey): winner pays the runner-up's bid
		}
		ns.Highest = bidValue
		if ns.Value == 0 {
			ns.Value = bidValue // sole bidder so far pays their own bid until outbid
		}
	} else if bidValue > ns.Value {
		ns.Value = bidValue
	}
	view.PutName(nameHash, ns)
	return nil
}

// --- REDEEM ---

func applyRedeem(view View, fetcher PrevOutputFetcher, tx *wire.MsgTx, outIdx int, height uint32, params *chaincfg.Params) error {
	cov := &tx.TxOut[outIdx].Covenant
	if len(cov.Items) != 2 {
		return verifyError(ReasonBadCovenantItems, "REDEEM requires 2 items")
	}
	nameHash, ok := itemHash(cov.Item(0))
	if !ok {
		return verifyError(ReasonBadCovenantItems, "name-hash item must be 32 bytes")
	}
	ns, exists := view.GetName(nameHash)
	if !exists {
		return verifyError(ReasonNameExpired, "REDEEM references a name with no auction history")
	}
	if _, err := nameHashAndOpenHeight(cov, ns); err != nil {
		return err
	}
	phase := ns.Phase(height, params)
	if phase != PhaseClosed {
		return verifyError(ReasonBadCovenantPhase, "REDEEM before the REVEAL window has closed")
	}
	if _, _, found := findSpentCovenant(tx, fetcher, outIdx, wire.CovenantReveal, nameHash); !found {
		return verifyError(ReasonBadCovenantOrder, "REDEEM does not spend a matching REVEAL output")
	}
	// REDEEM does not mutate the NameState: it only returns a
	// non-winning bidder's lockup, net of their revealed bid.
	return nil
}

// --- REGISTER ---

func applyRegister(view View, fetcher PrevOutputFetcher, tx *wire.MsgTx, outIdx int, height uint32, params *chaincfg.Params) error {
	cov := &tx.TxOut[outIdx].Covenant
	if len(cov.Items) != 4 {
		return verifyError(ReasonBadCovenantItems, "REGISTER requires 4 items")
	}
	nameHash, ok := itemHash(cov.Item(0))
	if !ok {
		return verifyError(ReasonBadCovenantItems, "name-hash item must be 32 bytes")
	}
	ns, exists := view.GetName(nameHash)
	if !exists {
		return verifyError(ReasonNameExpired, "REGISTER references a name with no open auction")
	}
	if _, err := nameHashAndOpenHeight(cov, ns); err != nil {
		return err
	}
	data := cov.Item(2)
	if len(data) > MaxDataLength {
		return verifyError(ReasonBadCovenantItems, "data item exceeds maximum length")
	}
	if len(cov.Item(3)) != chainhash.HashSize {
		return verifyError(ReasonBadCovenantItems, "renewal-block-hash item must be 32 bytes")
	}
	phase := ns.Phase(height, params)
	if phase != PhaseClosed {
		return verifyError(ReasonBadCovenantPhase, "REGISTER outside the CLOSED window")
	}
	if _, _, found := findSpentCovenant(tx, fetcher, outIdx, wire.CovenantReveal, nameHash); !found {
		return verifyError(ReasonBadCovenantOrder, "REGISTER does not spend a matching REVEAL output")
	}
	if tx.TxOut[outIdx].Value != ns.Value {
		return verifyError(ReasonBadValue, "REGISTER output value must equal the winning Vickrey price")
	}

	ns = ns.Clone()
	ns.Data = append([]byte(nil), data...)
	ns.Renewal = height
	ns.Owner = wire.OutPoint{Hash: tx.TxHash(), Index: uint32(outIdx)}
	view.PutName(nameHash, ns)
	return nil
}

// --- continuing covenants: UPDATE, RENEW, TRANSFER, FINALIZE, REVOKE ---
// These all continue from the NameState's current `owner` outpoint, which
// must be spent by an input of the same transaction at an index not
// greater than the output's (spec.md §4.6 rule 3).

func requireOwnerContinuation(view View, tx *wire.MsgTx, outIdx int, nameHash chainhash.Hash) (*NameState, error) {
	ns, exists := view.GetName(nameHash)
	if !exists {
		return nil, verifyError(ReasonNameExpired, "covenant references a name with no state")
	}
	if !outpointSpentBefore(tx, ns.Owner, outIdx) {
		return nil, verifyError(ReasonBadCovenantOrder, "covenant does not spend the name's current owner outpoint")
	}
	return ns, nil
}

func applyUpdate(view View, tx *wire.MsgTx, outIdx int, height uint32, params *chaincfg.Params) error {
	cov := &tx.TxOut[outIdx].Covenant
	if len(cov.Items) != 3 {
		return verifyError(ReasonBadCovenantItems, "UPDATE requires 3 items")
	}
	nameHash, ok := itemHash(cov.Item(0))
	if !ok {
		return verifyError(ReasonBadCovenantItems, "name-hash item must be 32 bytes")
	}
	ns, err := requireOwnerContinuation(view, tx, outIdx, nameHash)
	if err != nil {
		return err
	}
	if _, err := nameHashAndOpenHeight(cov, ns); err != nil {
		return err
	}
	if ns.Phase(height, params) == PhaseRevoked {
		return verifyError(ReasonNameRevoked, "UPDATE on a revoked name")
	}
	data := cov.Item(2)
	if len(data) > MaxDataLength {
		return verifyError(ReasonBadCovenantItems, "data item exceeds maximum length")
	}
	if tx.TxOut[outIdx].Value != ns.Value {
		return verifyError(ReasonBadValue, "UPDATE must carry the name's registered value forward")
	}

	ns = ns.Clone()
	ns.Data = append([]byte(nil), data...)
	ns.Owner = wire.OutPoint{Hash: tx.TxHash(), Index: uint32(outIdx)}
	view.PutName(nameHash, ns)
	return nil
}

func applyRenew(view View, tx *wire.MsgTx, outIdx int, height uint32, params *chaincfg.Params) error {
	cov := &tx.TxOut[outIdx].Covenant
	if len(cov.Items) != 3 {
		return verifyError(ReasonBadCovenantItems, "RENEW requires 3 items")
	}
	nameHash, ok := itemHash(cov.Item(0))
	if !ok {
		return verifyError(ReasonBadCovenantItems, "name-hash item must be 32 bytes")
	}
	ns, err := requireOwnerContinuation(view, tx, outIdx, nameHash)
	if err != nil {
		return err
	}
	if _, err := nameHashAndOpenHeight(cov, ns); err != nil {
		return err
	}
	if ns.Phase(height, params) == PhaseRevoked {
		return verifyError(ReasonNameRevoked, "RENEW on a revoked name")
	}
	if len(cov.Item(2)) != chainhash.HashSize {
		return verifyError(ReasonBadCovenantItems, "renewal-block-hash item must be 32 bytes")
	}
	if height < ns.Renewal+params.TreeInterval+1 {
		return verifyError(ReasonPrematureRenewal, "RENEW too soon after the previous renewal")
	}

	ns = ns.Clone()
	ns.Renewal = height
	ns.Renewals++
	ns.Owner = wire.OutPoint{Hash: tx.TxHash(), Index: uint32(outIdx)}
	view.PutName(nameHash, ns)
	return nil
}

func applyTransfer(view View, tx *wire.MsgTx, outIdx int, height uint32, params *chaincfg.Params) error {
	cov := &tx.TxOut[outIdx].Covenant
	if len(cov.Items) != 4 {
		return verifyError(ReasonBadCovenantItems, "TRANSFER requires 4 items")
	}
	nameHash, ok := itemHash(cov.Item(0))
	if !ok {
		return verifyError(ReasonBadCovenantItems, "name-hash item must be 32 bytes")
	}
	ns, err := requireOwnerContinuation(view, tx, outIdx, nameHash)
	if err != nil {
		return err
	}
	if _, err := nameHashAndOpenHeight(cov, ns); err != nil {
		return err
	}
	if ns.Phase(height, params) == PhaseRevoked {
		return verifyError(ReasonNameRevoked, "TRANSFER on a revoked name")
	}
	if len(cov.Item(2)) != 1 {
		return verifyError(ReasonBadCovenantItems, "address-version item must be 1 byte")
	}
	if n := len(cov.Item(3)); n < wire.MinAddressHashSize || n > wire.MaxAddressHashSize {
		return verifyError(ReasonBadCovenantItems, "address-hash item out of range")
	}

	ns = ns.Clone()
	ns.Transfer = height
	ns.Owner = wire.OutPoint{Hash: tx.TxHash(), Index: uint32(outIdx)}
	view.PutName(nameHash, ns)
	return nil
}

func applyFinalize(view View, tx *wire.MsgTx, outIdx int, height uint32, params *chaincfg.Params) error {
	cov := &tx.TxOut[outIdx].Covenant
	if len(cov.Items) != 7 {
		return verifyError(ReasonBadCovenantItems, "FINALIZE requires 7 items")
	}
	nameHash, ok := itemHash(cov.Item(0))
	if !ok {
		return verifyError(ReasonBadCovenantItems, "name-hash item must be 32 bytes")
	}
	ns, err := requireOwnerContinuation(view, tx, outIdx, nameHash)
	if err != nil {
		return err
	}
	if _, err := nameHashAndOpenHeight(cov, ns); err != nil {
		return err
	}
	if Hash(cov.Item(2)) != nameHash {
		return verifyError(ReasonBadNameHash, "name-hash does not match name")
	}
	if ns.Transfer == 0 {
		return verifyError(ReasonBadCovenantPhase, "FINALIZE without a pending TRANSFER")
	}
	if height-ns.Transfer < params.TransferLockup {
		return verifyError(ReasonBadTransferLockup, "FINALIZE before the transfer lockup has elapsed")
	}
	if len(cov.Item(6)) != chainhash.HashSize {
		return verifyError(ReasonBadCovenantItems, "renewal-block-hash item must be 32 bytes")
	}

	ns = ns.Clone()
	ns.Transfer = 0
	ns.Renewal = height
	ns.Owner = wire.OutPoint{Hash: tx.TxHash(), Index: uint32(outIdx)}
	view.PutName(nameHash, ns)
	return nil
}

func applyRevoke(view View, tx *wire.MsgTx, outIdx int, height uint32, params *chaincfg.Params) error {
	cov := &tx.TxOut[outIdx].Covenant
	if len(cov.Items) != 2 {
		return verifyError(ReasonBadCovenantItems, "REVOKE requires 2 items")
	}
	nameHash, ok := itemHash(cov.Item(0))
	if !ok {
		return verifyError(ReasonBadCovenantItems, "name-hash item must be 32 bytes")
	}
	ns, err := requireOwnerContinuation(view, tx, outIdx, nameHash)
	if err != nil {
		return err
	}
	if _, err := nameHashAndOpenHeight(cov, ns); err != nil {
		return err
	}

	ns = ns.Clone()
	ns.Revoked = height
	ns.Owner = wire.OutPoint{Hash: tx.TxHash(), Index: uint32(outIdx)}
	view.PutName(nameHash, ns)
	return nil
}

func mustHash(item []byte) chainhash.Hash {
	h, _ := itemHash(item)
	return h
}
