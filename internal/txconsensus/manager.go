package txconsensus

import (
	"fmt"
	"sync"
	"time"

	"timecoin/core/errors"
	"timecoin/core/events"
	"timecoin/core/types"
	"timecoin/internal/fallback"
	"timecoin/internal/masternode"
	"timecoin/internal/votes"
	"timecoin/p2p"
)

// InstantFinalityTimeout is the default window a transaction has to reach
// consensus before it is declared Stuck (spec §4.4).
const InstantFinalityTimeout = 5 * time.Second

// MaxRetries bounds how many times a Stuck transaction is rebroadcast
// before being declared Unfinalized.
const MaxRetries = 3

// Manager coordinates the full instant-finality lifecycle for every
// in-flight transaction: broadcast, vote collection, timeout detection, and
// fallback escalation via the shared votes.Collector/Registry and
// fallback.Escalator machinery.
type Manager struct {
	mu          sync.Mutex
	subjects    map[string]*Subject
	escalators  map[string]*fallback.Escalator[fallback.TxStrategy]
	retries     map[string]*fallback.RetryLimiter
	votes       *votes.Registry[string]
	masternodes *masternode.Registry
	broadcaster p2p.Broadcaster
	emitter     events.Emitter
}

// NewManager builds a transaction-consensus manager.
func NewManager(mnReg *masternode.Registry, broadcaster p2p.Broadcaster, emitter events.Emitter) *Manager {
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	return &Manager{
		subjects:    make(map[string]*Subject),
		escalators:  make(map[string]*fallback.Escalator[fallback.TxStrategy]),
		retries:     make(map[string]*fallback.RetryLimiter),
		votes:       votes.NewRegistry[string](10*time.Minute, emitter),
		masternodes: mnReg,
		broadcaster: broadcaster,
		emitter:     emitter,
	}
}

// Submit admits a validated transaction and broadcasts it for voting.
func (m *Manager) Submit(txID string, tx *types.Transaction, now time.Time) (*Subject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.subjects[txID]; exists {
		return nil, fmt.Errorf("%w: tx %s already submitted", errors.ErrConflict, txID)
	}
	subject := NewSubject(txID, tx)
	subject.Status = Broadcast
	subject.BroadcastAt = now
	m.subjects[txID] = subject
	m.escalators[txID] = fallback.NewEscalator[fallback.TxStrategy](txID, fallback.TxRotateLeader, fallback.TxStrategy.Next, m.emitter)
	m.retries[txID] = fallback.NewRetryLimiter(MaxRetries, 500*time.Millisecond)

	if m.broadcaster != nil {
		payload, err := tx.Hash()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrMalformedPayload, err)
		}
		if err := m.broadcaster.Broadcast(&p2p.Message{Type: p2p.MessageTxBroadcast, Payload: payload}); err != nil {
			return nil, err
		}
	}
	subject.Status = Collecting
	return subject, nil
}

// CastVote records a masternode's vote on a transaction's finality.
func (m *Manager) CastVote(txID string, vote *types.Vote) error {
	return m.votes.Collector(txID).AddVote(vote)
}

// Tick evaluates every in-flight subject: checks for a fresh consensus
// decision, and escalates or declares Stuck/Unfinalized on timeout. It is
// meant to be called from a long-lived per-responsibility task, matching
// the cooperative-suspension-point scheduling model (spec §7).
func (m *Manager) Tick(now time.Time) []*Subject {
	m.mu.Lock()
	defer m.mu.Unlock()

	var changed []*Subject
	totalPower, knownVoters := m.masternodes.ActivePower(now)

	for txID, subject := range m.subjects {
		if subject.Status != Collecting && subject.Status != Stuck {
			continue
		}
		collector := m.votes.Collector(txID)
		decision := collector.HasConsensus(votes.InstantFinality(), totalPower, knownVoters, now)
		switch decision {
		case votes.Approved:
			subject.Status = Finalized
			subject.FinalityProof = proofFromTally(collector)
			changed = append(changed, subject)
			continue
		case votes.Rejected:
			subject.Status = Rejected
			changed = append(changed, subject)
			continue
		}

		if subject.Status == Collecting && now.Sub(subject.BroadcastAt) > InstantFinalityTimeout {
			subject.Status = Stuck
		}
		if subject.Status == Stuck {
			limiter := m.retries[txID]
			if _, ok := limiter.NextBackoff(); ok {
				subject.Retries++
				subject.Status = Collecting
				subject.BroadcastAt = now
				if m.broadcaster != nil {
					if payload, err := subject.Tx.Hash(); err == nil {
						_ = m.broadcaster.Broadcast(&p2p.Message{Type: p2p.MessageTxBroadcast, Payload: payload})
					}
				}
				m.escalators[txID].Escalate()
				changed = append(changed, subject)
			} else {
				subject.Status = Unfinalized
				changed = append(changed, subject)
			}
		}
	}
	return changed
}

func proofFromTally(c *votes.Collector[string]) []FinalityProof {
	ballots := c.Votes()
	proof := make([]FinalityProof, 0, len(ballots))
	for _, v := range ballots {
		proof = append(proof, FinalityProof{VoterID: v.VoterID, Choice: v.Choice, Signature: v})
	}
	return proof
}

// GC reclaims vote collectors for subjects whose decision has aged past the
// registry's retention window, and drops the matching escalator/retry
// bookkeeping for subjects that have left Collecting/Stuck entirely. Meant
// to run from the periodic vote-GC task (spec §5).
func (m *Manager) GC(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	reclaimed := m.votes.GC(now)
	for txID, subject := range m.subjects {
		if subject.Status == Finalized || subject.Status == Rejected || subject.Status == Unfinalized {
			if _, ok := m.votes.Get(txID); !ok {
				delete(m.subjects, txID)
				delete(m.escalators, txID)
				delete(m.retries, txID)
			}
		}
	}
	return reclaimed
}

// Subjects returns a snapshot of every tracked subject, used by the mempool
// scheduler to classify transactions into lanes.
func (m *Manager) Subjects() []*Subject {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Subject, 0, len(m.subjects))
	for _, s := range m.subjects {
		out = append(out, s)
	}
	return out
}

// Get returns the tracked subject for a transaction ID, if any.
func (m *Manager) Get(txID string) (*Subject, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subjects[txID]
	return s, ok
}
