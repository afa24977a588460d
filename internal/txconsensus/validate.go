package txconsensus

import (
	"fmt"

	"timecoin/core/errors"
	"timecoin/core/types"
	"timecoin/crypto"
	"timecoin/ledger"
)

// Validate checks a transaction's signature, balance, nonce, and conflict
// status against led before it is admitted to broadcast. An empty reason
// string means the transaction may proceed (spec §4.4's four admission
// checks: signature, balance, nonce, mempool conflict).
func Validate(tx *types.Transaction, led ledger.Ledger, inFlight ConflictChecker) (string, error) {
	if tx == nil {
		return "", fmt.Errorf("%w: nil transaction", errors.ErrMalformedPayload)
	}

	sender, err := tx.From()
	if err != nil {
		return "bad signature", fmt.Errorf("%w: %v", errors.ErrBadSignature, err)
	}
	senderAddr, err := crypto.NewAddress(crypto.TimePrefix, sender)
	if err != nil {
		return "bad signature", fmt.Errorf("%w: %v", errors.ErrBadSignature, err)
	}

	expectedNonce, err := led.ExpectedNonce(senderAddr.String())
	if err != nil {
		return "", err
	}
	if tx.Nonce != expectedNonce {
		return fmt.Sprintf("expected nonce %d, got %d", expectedNonce, tx.Nonce), errors.ErrBadNonce
	}

	balance, err := led.Balance(senderAddr.String())
	if err != nil {
		return "", err
	}
	total := tx.OutputTotal()
	if tx.Fee != nil {
		total.Add(total, tx.Fee)
	}
	if total.Int64() > balance.Spendable() {
		return "insufficient balance", errors.ErrInsufficientBalance
	}

	for _, in := range tx.Inputs {
		if _, err := led.ResolveOutput(in); err != nil {
			return "unknown input", fmt.Errorf("%w: %v", errors.ErrUnknownInput, err)
		}
		if inFlight != nil && inFlight.Conflicts(in) {
			return "conflicting transaction", errors.ErrConflict
		}
	}

	return "", nil
}

// ConflictChecker reports whether an input is already claimed by another
// transaction currently Collecting or Finalized (spec §4.4: "same nonce or
// double-spend of any input").
type ConflictChecker interface {
	Conflicts(ref types.OutPoint) bool
}
