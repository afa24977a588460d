package events

const (
	TypeProposalSubmitted = "treasury.proposal_submitted"
	TypeProposalFinalized = "treasury.proposal_finalized"
	TypeProposalExecuted  = "treasury.proposal_executed"
	TypeProposalExpired   = "treasury.proposal_expired"
	TypeTreasuryDeposit   = "treasury.deposit"
)

// ProposalSubmitted is emitted when a new treasury proposal is accepted.
type ProposalSubmitted struct {
	ProposalID string
	Amount     string
	Submitter  string
}

func (ProposalSubmitted) EventType() string { return TypeProposalSubmitted }

// ProposalFinalized is emitted when voting concludes and the proposal
// transitions to Approved or Rejected.
type ProposalFinalized struct {
	ProposalID string
	Status     string
}

func (ProposalFinalized) EventType() string { return TypeProposalFinalized }

// ProposalExecuted is emitted when an approved proposal's withdrawal is
// applied to treasury state.
type ProposalExecuted struct {
	ProposalID string
	Amount     string
}

func (ProposalExecuted) EventType() string { return TypeProposalExecuted }

// ProposalExpired is emitted when a lazily-touched proposal is found past
// its execution deadline without having executed.
type ProposalExpired struct {
	ProposalID string
}

func (ProposalExpired) EventType() string { return TypeProposalExpired }

// TreasuryDeposit is emitted on every block's automatic treasury funding.
type TreasuryDeposit struct {
	BlockNumber uint64
	Amount      string
	Source      string
}

func (TreasuryDeposit) EventType() string { return TypeTreasuryDeposit }
