// Package fallback implements the monotonic strategy-escalation machine used
// when normal BFT voting fails to finalize a subject within its timeout
// (spec §4.6). Strategies are modeled as a tagged enum with a pattern-matched
// `.Next()` rather than an interface hierarchy, per spec §9.
package fallback

import (
	"math/big"
	"time"

	"timecoin/internal/votes"
)

// BlockStrategy is a tagged enum over the block-creation fallback
// progression: NormalBFT -> RotateLeader -> RelaxedQuorum -> MempoolInclude
// -> Emergency (terminal).
type BlockStrategy int

const (
	NormalBFT BlockStrategy = iota
	RotateLeader
	RelaxedQuorum
	MempoolInclude
	Emergency
)

func (s BlockStrategy) String() string {
	switch s {
	case NormalBFT:
		return "NormalBFT"
	case RotateLeader:
		return "RotateLeader"
	case RelaxedQuorum:
		return "RelaxedQuorum"
	case MempoolInclude:
		return "MempoolInclude"
	case Emergency:
		return "Emergency"
	default:
		return "unknown"
	}
}

// Next returns the next strategy in the escalation and true, or the same
// strategy and false if it is already terminal (Emergency).
func (s BlockStrategy) Next() (BlockStrategy, bool) {
	switch s {
	case NormalBFT:
		return RotateLeader, true
	case RotateLeader:
		return RelaxedQuorum, true
	case RelaxedQuorum:
		return MempoolInclude, true
	case MempoolInclude:
		return Emergency, true
	default:
		return s, false
	}
}

// Terminal reports whether s has no successor.
func (s BlockStrategy) Terminal() bool {
	return s == Emergency
}

// Policy returns the vote policy and timeout associated with a block
// strategy (spec §4.6's table). Emergency has no vote policy: it accepts on
// a raw minimum-signature count instead, so Policy returns nil for it.
func (s BlockStrategy) Policy() (votes.Policy, time.Duration) {
	switch s {
	case NormalBFT:
		return votes.BlockFinalization(), 180 * time.Second
	case RotateLeader:
		return votes.BlockFinalization(), 180 * time.Second
	case RelaxedQuorum:
		return votes.AbsolutePolicy{PolicyName: "RelaxedQuorum", YesFraction: big.NewRat(2, 3), ParticipationFraction: big.NewRat(1, 2)}, 120 * time.Second
	case MempoolInclude:
		return votes.AbsolutePolicy{PolicyName: "RelaxedQuorum", YesFraction: big.NewRat(2, 3), ParticipationFraction: big.NewRat(1, 2)}, 120 * time.Second
	default:
		return nil, 60 * time.Second
	}
}

// EmergencySignatureMinimum is the raw co-signer count Emergency accepts
// without a weighted vote (spec §4.6: "accept with >= 2 signatures").
const EmergencySignatureMinimum = 2

// IncludesAllMempoolTxs reports whether this strategy drops the
// instant-finality precondition for transaction inclusion in the block
// candidate (true from MempoolInclude onward).
func (s BlockStrategy) IncludesAllMempoolTxs() bool {
	return s == MempoolInclude || s == Emergency
}

// UsesNewProposerSeed reports whether a fresh VRF seed salt must be derived
// for proposer reselection at this strategy (true from RotateLeader onward).
func (s BlockStrategy) UsesNewProposerSeed() bool {
	return s != NormalBFT
}

// TxStrategy is a tagged enum over the simpler transaction-finality fallback
// progression: RotateLeader -> RelaxBroadcast -> Emergency (terminal).
type TxStrategy int

const (
	TxRotateLeader TxStrategy = iota
	TxRelaxBroadcast
	TxEmergency
)

func (s TxStrategy) String() string {
	switch s {
	case TxRotateLeader:
		return "RotateLeader"
	case TxRelaxBroadcast:
		return "RelaxBroadcast"
	case TxEmergency:
		return "Emergency"
	default:
		return "unknown"
	}
}

// Next returns the next strategy in the escalation and true, or the same
// strategy and false if already terminal.
func (s TxStrategy) Next() (TxStrategy, bool) {
	switch s {
	case TxRotateLeader:
		return TxRelaxBroadcast, true
	case TxRelaxBroadcast:
		return TxEmergency, true
	default:
		return s, false
	}
}

// Terminal reports whether s has no successor.
func (s TxStrategy) Terminal() bool {
	return s == TxEmergency
}
