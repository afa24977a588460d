// Package txconsensus implements per-transaction instant finality: the
// Pending -> Broadcast -> Collecting -> {Finalized | Rejected | Stuck} state
// machine driven by masternode votes (spec §4.4).
package txconsensus

import (
	"time"

	"timecoin/core/types"
)

// Status is the lifecycle state of a transaction under instant-finality
// voting.
type Status int

const (
	Pending Status = iota
	Broadcast
	Collecting
	Finalized
	Rejected
	Stuck
	Unfinalized
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Broadcast:
		return "broadcast"
	case Collecting:
		return "collecting"
	case Finalized:
		return "finalized"
	case Rejected:
		return "rejected"
	case Stuck:
		return "stuck"
	case Unfinalized:
		return "unfinalized"
	default:
		return "unknown"
	}
}

// FinalityProof is the attached vote set proving a transaction's
// finalization, carried alongside the tx when it is included in a block
// (spec §4.4: "attach the vote set... when included in a block").
type FinalityProof struct {
	VoterID   string
	Choice    types.Choice
	Signature *types.Vote
}

// Subject tracks one transaction's journey through the state machine.
type Subject struct {
	TxID          string
	Tx            *types.Transaction
	Status        Status
	BroadcastAt   time.Time
	Retries       int
	FinalityProof []FinalityProof
}

// NewSubject starts a transaction in Pending.
func NewSubject(txID string, tx *types.Transaction) *Subject {
	return &Subject{TxID: txID, Tx: tx, Status: Pending}
}
