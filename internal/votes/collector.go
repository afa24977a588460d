package votes

import (
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"timecoin/core/errors"
	"timecoin/core/events"
	"timecoin/core/types"
)

// BootstrapThreshold is the known-voter-count below which a subject degrades
// to bootstrap semantics: a single Yes vote is sufficient (spec §4.3).
const BootstrapThreshold = 3

// Collector accumulates votes for a single subject (a transaction ID, a
// block round, or a treasury proposal ID) and evaluates consensus against a
// pluggable Policy. It is the one generic aggregation type shared by every
// voting layer in the system (spec §9): callers parameterize it by the
// subject key type K and by the Policy they evaluate against.
type Collector[K comparable] struct {
	mu        sync.RWMutex
	subject   K
	votes     map[string]*types.Vote
	tally     Tally
	decision  Decision
	decidedAt time.Time
	bootstrap bool
	emitter   events.Emitter
}

// NewCollector creates an empty collector for subject, emitting lifecycle
// events through emitter (use events.NoopEmitter{} if nothing is wired).
func NewCollector[K comparable](subject K, emitter events.Emitter) *Collector[K] {
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	return &Collector[K]{
		subject: subject,
		votes:   make(map[string]*types.Vote),
		tally:   NewTally(),
		emitter: emitter,
	}
}

// Subject returns the collector's subject key.
func (c *Collector[K]) Subject() K { return c.subject }

// AddVote records a vote for the subject. First-write-wins: a second vote
// from the same voter ID for this subject is rejected with ErrConflict
// rather than overwriting the first (spec §3 decision: duplicate voter
// entries are rejected, not replaced).
func (c *Collector[K]) AddVote(v *types.Vote) error {
	if v == nil {
		return fmt.Errorf("%w: nil vote", errors.ErrMalformedPayload)
	}
	if !v.Choice.Valid() {
		return fmt.Errorf("%w: invalid choice %q", errors.ErrMalformedPayload, v.Choice)
	}
	if v.Power == nil || v.Power.Sign() < 0 {
		return fmt.Errorf("%w: negative or missing power", errors.ErrMalformedPayload)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.votes[v.VoterID]; exists {
		return fmt.Errorf("%w: voter %s already voted on %v", errors.ErrConflict, v.VoterID, c.subject)
	}
	c.votes[v.VoterID] = v
	switch v.Choice {
	case types.ChoiceYes:
		c.tally.Yes.Add(c.tally.Yes, v.Power)
	case types.ChoiceNo:
		c.tally.No.Add(c.tally.No, v.Power)
	case types.ChoiceAbstain:
		c.tally.Abstain.Add(c.tally.Abstain, v.Power)
	}

	c.emitter.Emit(events.VoteCast{
		SubjectID: fmt.Sprintf("%v", c.subject),
		VoterID:   v.VoterID,
		Choice:    string(v.Choice),
		Timestamp: v.Timestamp,
	})
	return nil
}

// Tally returns a snapshot copy of the current weighted tally.
func (c *Collector[K]) Tally() Tally {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Tally{
		Yes:     new(big.Int).Set(c.tally.Yes),
		No:      new(big.Int).Set(c.tally.No),
		Abstain: new(big.Int).Set(c.tally.Abstain),
	}
}

// Votes returns a snapshot slice of every vote recorded so far, used to
// build a subject's finality proof once it is decided.
func (c *Collector[K]) Votes() []*types.Vote {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*types.Vote, 0, len(c.votes))
	for _, v := range c.votes {
		out = append(out, v)
	}
	return out
}

// VoterCount returns how many distinct voters have cast a vote so far.
func (c *Collector[K]) VoterCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.votes)
}

// HasConsensus evaluates policy against the accumulated tally. knownVoters is
// the number of masternodes eligible to vote on this subject; below
// BootstrapThreshold, a single Yes vote is immediately Approved (bootstrap
// mode) rather than waiting on a quorum that does not yet exist. Once a
// decision is reached it is latched: later calls return the same decision
// even if the underlying tally were somehow still mutable.
func (c *Collector[K]) HasConsensus(policy Policy, totalKnownPower *big.Int, knownVoters int, now time.Time) Decision {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.decision != Pending {
		return c.decision
	}

	if knownVoters < BootstrapThreshold {
		if !c.bootstrap {
			c.bootstrap = true
			slog.Info("vote collector in bootstrap mode", "subject", fmt.Sprintf("%v", c.subject), "known_voters", knownVoters)
			c.emitter.Emit(events.BootstrapModeEngaged{
				SubjectID:  fmt.Sprintf("%v", c.subject),
				VoterCount: knownVoters,
			})
		}
		if c.tally.Yes.Sign() > 0 {
			c.finalize(Approved, now)
			return Approved
		}
		if len(c.votes) >= knownVoters && knownVoters > 0 {
			c.finalize(Rejected, now)
			return Rejected
		}
		return Pending
	}

	decision := policy.Decide(c.tally, totalKnownPower)
	if decision != Pending {
		c.finalize(decision, now)
	}
	return decision
}

func (c *Collector[K]) finalize(d Decision, now time.Time) {
	c.decision = d
	c.decidedAt = now
	subjectID := fmt.Sprintf("%v", c.subject)
	if d == Approved {
		c.emitter.Emit(events.SubjectFinalized{
			SubjectID:  subjectID,
			YesPower:   c.tally.Yes.String(),
			TotalPower: c.tally.Total().String(),
		})
	} else if d == Rejected {
		c.emitter.Emit(events.SubjectRejected{SubjectID: subjectID})
	}
}

// Decision returns the latched decision, or Pending if none has been reached.
func (c *Collector[K]) Decision() Decision {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.decision
}

// DecidedAt returns the time HasConsensus first latched a non-Pending
// decision. The zero time means no decision has been reached yet.
func (c *Collector[K]) DecidedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.decidedAt
}

// Expired reports whether the collector reached a decision more than
// retention ago, meaning its memory can be garbage collected by the owning
// registry.
func (c *Collector[K]) Expired(now time.Time, retention time.Duration) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.decision == Pending {
		return false
	}
	return now.Sub(c.decidedAt) > retention
}
