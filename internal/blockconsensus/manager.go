package blockconsensus

import (
	"fmt"
	"sync"
	"time"

	"timecoin/core/errors"
	"timecoin/core/events"
	"timecoin/core/types"
	"timecoin/internal/assembler"
	"timecoin/internal/fallback"
	"timecoin/internal/votes"
	"timecoin/internal/vrf"
)

// Manager drives the daily block-finalization cycle for every round. When
// deterministicMode is set, proposer selection is skipped entirely: every
// honest node computes the same candidate independently under the literal
// validator identity "consensus_block_{n}" (spec §4.5).
type Manager struct {
	mu                sync.Mutex
	masternodes       PowerLookup
	rounds            map[uint64]*Round
	voteRegistry      *votes.Registry[string]
	emitter           events.Emitter
	deterministicMode bool
}

// NewManager constructs a block-consensus manager.
func NewManager(masternodes PowerLookup, deterministicMode bool, emitter events.Emitter) *Manager {
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	return &Manager{
		masternodes:       masternodes,
		rounds:            make(map[uint64]*Round),
		voteRegistry:      votes.NewRegistry[string](48*time.Hour, emitter),
		emitter:           emitter,
		deterministicMode: deterministicMode,
	}
}

// StartRound selects a proposer (or the deterministic-mode literal
// identity), assembles the first candidate at NormalBFT strategy, and opens
// voting for it (spec §4.5 steps 1-3).
func (m *Manager) StartRound(blockNumber uint64, prevHash []byte, coinbase *types.Transaction, orderedTxs []*types.Transaction, now time.Time) (*Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.rounds[blockNumber]; exists {
		return nil, fmt.Errorf("%w: round %d already started", errors.ErrConflict, blockNumber)
	}

	round := &Round{
		BlockNumber: blockNumber,
		Phase:       Proposing,
		Escalator:   fallback.NewEscalator[fallback.BlockStrategy](fmt.Sprintf("block-%d", blockNumber), fallback.NormalBFT, fallback.BlockStrategy.Next, m.emitter),
	}

	if err := m.proposeCandidate(round, prevHash, coinbase, orderedTxs, now); err != nil {
		return nil, err
	}

	m.rounds[blockNumber] = round
	return round, nil
}

func (m *Manager) proposeCandidate(round *Round, prevHash []byte, coinbase *types.Transaction, orderedTxs []*types.Transaction, now time.Time) error {
	strategy := round.Escalator.Current()
	var validatorAddr, proposerID string

	if m.deterministicMode {
		validatorAddr = assembler.DeterministicValidatorAddress(round.BlockNumber)
	} else {
		candidates := make([]vrf.Candidate, 0)
		for _, mn := range m.masternodes.ActiveMasternodes() {
			candidates = append(candidates, vrf.Candidate{ID: mn.ID, Weight: m.masternodes.EffectivePower(mn, now)})
		}
		domain := "proposer"
		if strategy.UsesNewProposerSeed() {
			domain = fmt.Sprintf("proposer-%s", strategy)
		}
		seed := vrf.Seed(prevHash, round.BlockNumber, domain)
		winner, err := vrf.SelectWeighted(candidates, seed)
		if err != nil {
			return err
		}
		proposerID = winner
		validatorAddr = winner
	}

	candidate, err := assembler.Assemble(round.BlockNumber, now.Unix(), prevHash, validatorAddr, coinbase, orderedTxs)
	if err != nil {
		return err
	}

	_, timeout := strategy.Policy()
	round.Candidate = candidate
	round.ProposerID = proposerID
	round.SubjectKey = subjectKey(round.BlockNumber, strategy)
	round.Phase = Voting
	round.Escalator.Arm(timeout, now)
	return nil
}

// CastVote records a masternode's ballot on the round's current candidate.
// A vote whose SubjectID names a different subject key (a stale SubjectKey
// from before an escalation) is rejected with ErrConflict, never counted
// toward the current candidate. A vote with an empty SubjectID is recorded
// against the round's current SubjectKey.
func (m *Manager) CastVote(blockNumber uint64, vote *types.Vote) error {
	m.mu.Lock()
	round, ok := m.rounds[blockNumber]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: round %d not started", errors.ErrProposalNotFound, blockNumber)
	}
	if vote != nil && vote.SubjectID != "" && vote.SubjectID != round.SubjectKey {
		return fmt.Errorf("%w: vote for %s, current candidate is %s", errors.ErrConflict, vote.SubjectID, round.SubjectKey)
	}
	return m.voteRegistry.Collector(round.SubjectKey).AddVote(vote)
}

// Tick evaluates the round's current candidate for consensus and escalates
// on timeout, mirroring spec §4.5's finalize-or-escalate step. It returns
// the round and its decision once evaluated.
func (m *Manager) Tick(blockNumber uint64, now time.Time, prevHash []byte, coinbase *types.Transaction, orderedTxs []*types.Transaction) (*Round, votes.Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	round, ok := m.rounds[blockNumber]
	if !ok {
		return nil, votes.Pending, fmt.Errorf("%w: round %d not started", errors.ErrProposalNotFound, blockNumber)
	}
	if round.Phase == Finalized || round.Phase == Failed {
		return round, votes.Pending, nil
	}

	collector := m.voteRegistry.Collector(round.SubjectKey)

	strategy := round.Escalator.Current()
	policy, _ := strategy.Policy()
	totalPower, knownVoters := m.masternodes.ActivePower(now)

	var decision votes.Decision
	if policy != nil {
		decision = collector.HasConsensus(policy, totalPower, knownVoters, now)
	} else {
		// Emergency accepts on a raw signature count rather than a weighted
		// vote (spec §4.6): treat each distinct voter as one signature.
		if collector.VoterCount() >= fallback.EmergencySignatureMinimum {
			decision = votes.Approved
		}
	}

	if decision == votes.Approved {
		round.Phase = Finalized
		return round, decision, nil
	}

	if round.Escalator.Expired(now) {
		next, advanced := round.Escalator.Escalate()
		if !advanced {
			round.Phase = Failed
			return round, votes.Rejected, nil
		}
		_ = next
		if err := m.proposeCandidate(round, prevHash, coinbase, orderedTxs, now); err != nil {
			return round, votes.Pending, err
		}
	}

	return round, votes.Pending, nil
}

// GC reclaims vote collectors for rounds whose decision has aged past the
// registry's retention window, and drops the finished rounds themselves so
// the manager does not accumulate history for every block ever finalized.
func (m *Manager) GC(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	reclaimed := m.voteRegistry.GC(now)
	for blockNumber, round := range m.rounds {
		if round.Phase != Finalized && round.Phase != Failed {
			continue
		}
		if _, ok := m.voteRegistry.Get(round.SubjectKey); !ok {
			delete(m.rounds, blockNumber)
		}
	}
	return reclaimed
}

// Round returns the tracked round for a block number, if any.
func (m *Manager) Round(blockNumber uint64) (*Round, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rounds[blockNumber]
	return r, ok
}
