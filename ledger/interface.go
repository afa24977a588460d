// Package ledger defines the balance/UTXO/nonce lookup surface the
// consensus core validates transactions against. A concrete
// persistence-backed implementation is out of scope (spec.md §1); the core
// only depends on this interface.
package ledger

import "timecoin/core/types"

// Ledger answers the account and UTXO state questions transaction
// validation needs, without the consensus core knowing whether the answer
// comes from an in-memory map, a database, or a state trie.
type Ledger interface {
	// Balance returns the spendable balance for an address.
	Balance(address string) (*BalanceView, error)
	// ExpectedNonce returns the next valid nonce for an address.
	ExpectedNonce(address string) (uint64, error)
	// ResolveOutput looks up the output referenced by an OutPoint, or
	// ErrUnknownInput if it does not exist or is already spent.
	ResolveOutput(ref types.OutPoint) (*types.Output, error)
}

// BalanceView reports the total and currently-reserved (pending-spend)
// balance for an address.
type BalanceView struct {
	Total    int64
	Reserved int64
}

// Spendable returns the balance available after reservations.
func (b *BalanceView) Spendable() int64 {
	if b == nil {
		return 0
	}
	return b.Total - b.Reserved
}
