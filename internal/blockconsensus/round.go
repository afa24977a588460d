// Package blockconsensus implements the daily block-finalization cycle:
// proposer selection, candidate assembly, voting, and fallback escalation
// (spec §4.5).
package blockconsensus

import (
	"fmt"
	"math/big"
	"time"

	"timecoin/core/types"
	"timecoin/internal/assembler"
	"timecoin/internal/fallback"
)

// Phase is the coarse state of a block round (spec §4.5's
// Idle -> Proposing -> Voting -> {Finalized | FallbackLvlN} machine).
type Phase int

const (
	Idle Phase = iota
	Proposing
	Voting
	Finalized
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Proposing:
		return "proposing"
	case Voting:
		return "voting"
	case Finalized:
		return "finalized"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Round tracks one daily block cycle, including every candidate it has
// produced across fallback escalations.
type Round struct {
	BlockNumber uint64
	Phase       Phase
	Escalator   *fallback.Escalator[fallback.BlockStrategy]
	Candidate   *assembler.Candidate
	SubjectKey  string
	ProposerID  string
}

// subjectKey namespaces the vote collector per fallback strategy, since a
// re-proposed candidate under a new strategy has a different hash and
// therefore needs a fresh vote tally rather than reusing stale ballots cast
// against the superseded candidate.
func subjectKey(blockNumber uint64, strategy fallback.BlockStrategy) string {
	return fmt.Sprintf("%d:%s", blockNumber, strategy)
}

// PowerLookup resolves a masternode ID's effective voting power at a point
// in time, implemented by internal/masternode.Registry.
type PowerLookup interface {
	ActivePower(now time.Time) (*big.Int, int)
	ActiveMasternodes() []*types.Masternode
	EffectivePower(mn *types.Masternode, now time.Time) *big.Int
}
