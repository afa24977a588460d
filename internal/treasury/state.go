package treasury

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"

	"timecoin/core/errors"
	"timecoin/core/events"
	"timecoin/core/types"
	"timecoin/internal/votes"
)

// ApprovalPolicy is the 2/3-of-participating-power supermajority rule from
// spec §4.7: "approval requires yes_power/(yes_power+no_power) >= 2/3
// (abstain excluded from the ratio but counts toward participation)". This
// is exactly the generic RatioPolicy shape already defined for instant
// finality's sibling layers (spec §9: one collector/policy shape reused
// across all voting subjects).
func ApprovalPolicy() votes.RatioPolicy {
	return votes.Custom("TreasuryApproval", 2, 3)
}

// Allocation records one treasury funding event (spec §4.7's "recorded as
// an allocation entry with source tag").
type Allocation struct {
	BlockNumber uint64
	Amount      *big.Int
	Source      string
	At          time.Time
}

// Withdrawal records one executed proposal's payout.
type Withdrawal struct {
	ProposalID string
	Amount     *big.Int
	Recipient  string
	At         time.Time
}

// State is the single keyless treasury ledger: a balance plus the full
// allocation/withdrawal audit trail and the live proposal set.
type State struct {
	mu          sync.Mutex
	balance     *big.Int
	allocated   *big.Int
	distributed *big.Int
	allocations []Allocation
	withdrawals []Withdrawal
	proposals   map[string]*Proposal
	votes       *votes.Registry[string]
	emitter     events.Emitter
}

// NewState returns an empty treasury with zero balance.
func NewState(emitter events.Emitter) *State {
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	return &State{
		balance:     big.NewInt(0),
		allocated:   big.NewInt(0),
		distributed: big.NewInt(0),
		proposals:   make(map[string]*Proposal),
		votes:       votes.NewRegistry[string](30*24*time.Hour, emitter),
		emitter:     emitter,
	}
}

// Balance returns the current spendable treasury balance.
func (s *State) Balance() *big.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return new(big.Int).Set(s.balance)
}

// Deposit applies the automatic per-block treasury funding (spec §4.7:
// "treasury_reward += 5 TIME + 50% x sum(fees)", computed by the caller and
// passed in as amount).
func (s *State) Deposit(blockNumber uint64, amount *big.Int, source string, now time.Time) {
	if amount == nil || amount.Sign() <= 0 {
		return
	}
	s.mu.Lock()
	s.balance.Add(s.balance, amount)
	s.allocated.Add(s.allocated, amount)
	s.allocations = append(s.allocations, Allocation{BlockNumber: blockNumber, Amount: new(big.Int).Set(amount), Source: source, At: now})
	s.mu.Unlock()

	s.emitter.Emit(events.TreasuryDeposit{BlockNumber: blockNumber, Amount: amount.String(), Source: source})
}

// SubmitProposal records a new withdrawal proposal, snapshotting each known
// voter's power at submission time so later weight drift cannot change the
// outcome (spec §4.7). votingWindow sets how long voting stays open
// (VotingPeriod is the spec default); ExecutionDeadline is always derived
// as VotingDeadline + ExecutionWindow, giving an Approved proposal its own
// window to execute that does not shrink the voting period (spec §3, §8).
func (s *State) SubmitProposal(submitter, recipient, description string, amount *big.Int, now time.Time, votingWindow time.Duration, snapshot map[string]*big.Int) (*Proposal, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: proposal amount must be positive", errors.ErrMalformedPayload)
	}

	total := big.NewInt(0)
	for _, p := range snapshot {
		total.Add(total, p)
	}

	votingDeadline := now.Add(votingWindow)
	proposal := &Proposal{
		ID:                uuid.NewString(),
		Submitter:         submitter,
		Amount:            new(big.Int).Set(amount),
		Recipient:         recipient,
		Description:       description,
		Status:            StatusActive,
		SubmittedAt:       now,
		VotingDeadline:    votingDeadline,
		ExecutionDeadline: votingDeadline.Add(ExecutionWindow),
		SnapshotPower:     snapshot,
		TotalSnapshotted:  total,
	}
	proposal.record(now, "submitted", fmt.Sprintf("amount=%s recipient=%s", amount, recipient))

	s.mu.Lock()
	s.proposals[proposal.ID] = proposal
	s.mu.Unlock()

	s.emitter.Emit(events.ProposalSubmitted{ProposalID: proposal.ID, Amount: amount.String(), Submitter: submitter})
	return proposal, nil
}

// Get returns a proposal by ID.
func (s *State) Get(id string) (*Proposal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.proposals[id]
	return p, ok
}

// CastVote records a masternode's ballot on a proposal. Only voters present
// in the proposal's submission-time snapshot may vote; anyone else is
// rejected as unauthorized, since the snapshot defines the known electorate
// for that proposal.
func (s *State) CastVote(proposalID, voterID string, choice types.Choice, now time.Time) error {
	s.mu.Lock()
	p, ok := s.proposals[proposalID]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: proposal %s", errors.ErrProposalNotFound, proposalID)
	}
	power, known := p.SnapshotPower[voterID]
	if !known {
		return fmt.Errorf("%w: voter %s not in submission-time snapshot", errors.ErrUnauthorizedVoter, voterID)
	}
	return s.votes.Collector(proposalID).AddVote(&types.Vote{
		VoterID:   voterID,
		SubjectID: proposalID,
		Choice:    choice,
		Power:     power,
		Timestamp: now,
	})
}

// Evaluate touches a proposal: it applies the lazy expiry check and, for
// Active proposals, evaluates the vote collector against ApprovalPolicy. It
// returns the proposal's status after evaluation.
func (s *State) Evaluate(proposalID string, now time.Time) (ProposalStatus, error) {
	s.mu.Lock()
	p, ok := s.proposals[proposalID]
	s.mu.Unlock()
	if !ok {
		return 0, fmt.Errorf("%w: proposal %s", errors.ErrProposalNotFound, proposalID)
	}

	if p.Status == StatusActive && now.After(p.VotingDeadline) {
		p.Status = StatusExpired
		p.record(now, "expired", "voting window elapsed without decision")
		s.emitter.Emit(events.ProposalExpired{ProposalID: proposalID})
		return p.Status, nil
	}
	if p.Status != StatusActive {
		return p.Status, nil
	}

	collector := s.votes.Collector(proposalID)
	decision := collector.HasConsensus(ApprovalPolicy(), p.TotalSnapshotted, len(p.SnapshotPower), now)
	switch decision {
	case votes.Approved:
		p.Status = StatusApproved
		p.record(now, "approved", "")
		s.emitter.Emit(events.ProposalFinalized{ProposalID: proposalID, Status: p.Status.String()})
	case votes.Rejected:
		p.Status = StatusRejected
		p.record(now, "rejected", "")
		s.emitter.Emit(events.ProposalFinalized{ProposalID: proposalID, Status: p.Status.String()})
	}
	return p.Status, nil
}

// Execute applies an approved proposal's withdrawal, per spec §4.7's three
// execution preconditions: status == Approved, block timestamp within the
// deadline, and sufficient balance. Executed proposals are terminal; an
// already-executed proposal returns ErrAlreadyExecuted rather than
// re-applying the withdrawal.
func (s *State) Execute(proposalID string, blockTimestamp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.proposals[proposalID]
	if !ok {
		return fmt.Errorf("%w: proposal %s", errors.ErrProposalNotFound, proposalID)
	}
	if p.Status == StatusExecuted {
		return errors.ErrAlreadyExecuted
	}
	if p.Status == StatusExpired {
		return errors.ErrExpiredProposal
	}
	if p.Status == StatusApproved && blockTimestamp.After(p.ExecutionDeadline) {
		p.Status = StatusExpired
		p.record(blockTimestamp, "expired", "execution attempted past deadline")
		return errors.ErrExpiredProposal
	}
	if p.Status != StatusApproved {
		return errors.ErrNotApproved
	}
	if s.balance.Cmp(p.Amount) < 0 {
		return errors.ErrTreasuryUnderflow
	}

	s.balance.Sub(s.balance, p.Amount)
	s.distributed.Add(s.distributed, p.Amount)
	s.withdrawals = append(s.withdrawals, Withdrawal{ProposalID: proposalID, Amount: new(big.Int).Set(p.Amount), Recipient: p.Recipient, At: blockTimestamp})
	p.Status = StatusExecuted
	p.record(blockTimestamp, "executed", fmt.Sprintf("amount=%s recipient=%s", p.Amount, p.Recipient))

	s.emitter.Emit(events.ProposalExecuted{ProposalID: proposalID, Amount: p.Amount.String()})
	return nil
}

// Allocations returns a snapshot of the full deposit audit trail.
func (s *State) Allocations() []Allocation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Allocation, len(s.allocations))
	copy(out, s.allocations)
	return out
}

// Withdrawals returns a snapshot of the full executed-withdrawal audit trail.
func (s *State) Withdrawals() []Withdrawal {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Withdrawal, len(s.withdrawals))
	copy(out, s.withdrawals)
	return out
}

// GC reclaims vote collectors for proposals whose decision has aged past
// the registry's retention window, and drops terminal proposals once their
// collector has been reclaimed, keeping the audit trail but not the live
// proposal entry.
func (s *State) GC(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	reclaimed := s.votes.GC(now)
	for id, p := range s.proposals {
		switch p.Status {
		case StatusExecuted, StatusRejected, StatusExpired:
		default:
			continue
		}
		if _, ok := s.votes.Get(id); !ok {
			delete(s.proposals, id)
		}
	}
	return reclaimed
}
