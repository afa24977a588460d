// Package treasury implements the keyless treasury state machine: automatic
// per-block deposits and the weighted-vote proposal lifecycle that governs
// withdrawals (spec §4.7).
package treasury

import (
	"math/big"
	"time"
)

// ProposalStatus enumerates the lifecycle phases a treasury proposal moves
// through (spec §3 state model).
type ProposalStatus uint8

const (
	StatusActive ProposalStatus = iota
	StatusApproved
	StatusRejected
	StatusExecuted
	StatusExpired
)

// VotingPeriod is the default submission-to-voting-deadline window (spec
// §3: "voting_deadline = submission + 14 days").
const VotingPeriod = 14 * 24 * time.Hour

// ExecutionWindow is how much longer an Approved proposal has to execute
// past its voting deadline (spec §3: "execution_deadline = voting_deadline
// + 30 days").
const ExecutionWindow = 30 * 24 * time.Hour

func (s ProposalStatus) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusApproved:
		return "approved"
	case StatusRejected:
		return "rejected"
	case StatusExecuted:
		return "executed"
	case StatusExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Proposal is a withdrawal request against the treasury balance, voted on by
// masternodes with power snapshotted at submission time (spec §4.7: "the
// snapshot is taken at submission so mid-voting weight drift does not alter
// outcomes").
type Proposal struct {
	ID                string
	Submitter         string
	Amount            *big.Int
	Recipient         string
	Description       string
	Status            ProposalStatus
	SubmittedAt       time.Time
	VotingDeadline    time.Time
	ExecutionDeadline time.Time
	SnapshotPower     map[string]*big.Int
	TotalSnapshotted  *big.Int
	AuditTrail        []AuditRecord
}

// AuditRecord captures one lifecycle transition for a proposal, forming the
// audit trail spec_full.md's supplemented governance feature requires.
type AuditRecord struct {
	At     time.Time
	Event  string
	Detail string
}

func (p *Proposal) record(at time.Time, event, detail string) {
	p.AuditTrail = append(p.AuditTrail, AuditRecord{At: at, Event: event, Detail: detail})
}
