// Package masternode tracks the registered masternode set: tier, collateral,
// heartbeat-derived uptime, and the effective weighted voting power each
// masternode contributes to consensus (spec §4.3).
package masternode

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"timecoin/core/errors"
	"timecoin/core/types"
)

// InactivityResetGap is the heartbeat gap after which a masternode's
// longevity accrual restarts from zero (spec §4.3, §9).
const InactivityResetGap = 72 * time.Hour

// MaxLongevityMultiplier caps the longevity bonus at 3x base weight.
var MaxLongevityMultiplier = big.NewRat(3, 1)

// longevityIncrementPerDay is the 0.5/365 per-day slope in the formula
// L(d) = min(3.0, 1 + d/365*0.5).
var longevityIncrementPerDay = new(big.Rat).SetFrac64(5, 3650) // 0.5/365

// DefaultHeartbeatGrace is the heartbeat_grace fallback used when a
// registry is constructed with a non-positive duration (spec §4.3's
// default of 600s).
const DefaultHeartbeatGrace = 10 * time.Minute

// Registry is the single-writer store of masternode state. All mutation
// methods take the write lock; power queries take the read lock, matching
// the potso engine's mutex-guarded single-struct pattern.
type Registry struct {
	mu             sync.RWMutex
	nodes          map[string]*types.Masternode
	heartbeatGrace time.Duration
}

// NewRegistry returns an empty masternode registry. heartbeatGrace is the
// spec §4.3 liveness window: a masternode silent longer than this
// contributes zero voting power even though it remains Active and keeps
// accruing longevity until InactivityResetGap elapses. A non-positive value
// falls back to DefaultHeartbeatGrace.
func NewRegistry(heartbeatGrace time.Duration) *Registry {
	if heartbeatGrace <= 0 {
		heartbeatGrace = DefaultHeartbeatGrace
	}
	return &Registry{nodes: make(map[string]*types.Masternode), heartbeatGrace: heartbeatGrace}
}

// Register adds a new masternode. Registering an ID that already exists is
// idempotent: the call succeeds without changing existing state, matching
// the "re-announcement should not reset longevity" requirement implied by
// the heartbeat-based uptime model (spec §4.3).
func (r *Registry) Register(mn *types.Masternode) error {
	if mn == nil || mn.ID == "" {
		return fmt.Errorf("%w: masternode missing ID", errors.ErrMalformedPayload)
	}
	if mn.Tier == types.TierNone {
		return fmt.Errorf("%w: collateral %s below minimum tier", errors.ErrInsufficientBalance, mn.Collateral)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.nodes[mn.ID]; exists {
		return nil
	}
	r.nodes[mn.ID] = mn
	return nil
}

// Get returns the masternode with the given ID.
func (r *Registry) Get(id string) (*types.Masternode, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	mn, ok := r.nodes[id]
	return mn, ok
}

// Heartbeat records activity from a masternode at the given time. If the gap
// since the last recorded heartbeat exceeds InactivityResetGap, the
// longevity anchor resets to now, per spec §4.3's uptime-gap rule.
func (r *Registry) Heartbeat(id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	mn, ok := r.nodes[id]
	if !ok {
		return fmt.Errorf("%w: unknown masternode %s", errors.ErrUnauthorizedVoter, id)
	}
	if at.Sub(mn.LastActiveTime) > InactivityResetGap {
		mn.UptimeAnchor = at
	}
	mn.LastActiveTime = at
	mn.Active = true
	return nil
}

// MarkInactiveIfStale flips Active to false for any masternode whose last
// heartbeat is older than InactivityResetGap as of now, without resetting
// its longevity anchor (the anchor only resets on the next heartbeat that
// arrives after the gap). Returns the IDs flipped this call.
func (r *Registry) MarkInactiveIfStale(now time.Time) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var flipped []string
	for id, mn := range r.nodes {
		if mn.Active && now.Sub(mn.LastActiveTime) > InactivityResetGap {
			mn.Active = false
			flipped = append(flipped, id)
		}
	}
	return flipped
}

// LongevityMultiplier computes L(d) = min(3.0, 1 + d/365 * 0.5) for a
// masternode whose longevity anchor is anchor, evaluated at now. Returned as
// an exact big.Rat; callers multiply it into tier weight and floor the
// result, since effective voting power must stay an integer (spec §9: no
// floating point in any consensus-path calculation).
func LongevityMultiplier(anchor, now time.Time) *big.Rat {
	elapsed := now.Sub(anchor)
	if elapsed < 0 {
		elapsed = 0
	}
	days := big.NewRat(int64(elapsed), int64(24*time.Hour))
	bonus := new(big.Rat).Mul(days, longevityIncrementPerDay)
	multiplier := new(big.Rat).Add(big.NewRat(1, 1), bonus)
	if multiplier.Cmp(MaxLongevityMultiplier) > 0 {
		return new(big.Rat).Set(MaxLongevityMultiplier)
	}
	return multiplier
}

// EffectivePower returns a masternode's tier weight scaled by its current
// longevity multiplier, floored to an integer. It does not consider
// heartbeat recency; callers that need the heartbeat_grace cutoff use
// Registry.EffectivePower instead.
func EffectivePower(mn *types.Masternode, now time.Time) *big.Int {
	if mn == nil || !mn.Active {
		return big.NewInt(0)
	}
	base := big.NewRat(mn.Tier.Weight(), 1)
	multiplier := LongevityMultiplier(mn.UptimeAnchor, now)
	scaled := new(big.Rat).Mul(base, multiplier)
	quo := new(big.Int).Quo(scaled.Num(), scaled.Denom())
	return quo
}

// EffectivePower returns mn's effective power as of now, zeroed out if mn
// is inactive or hasn't heartbeat within the registry's heartbeat_grace
// window. This is the registry's two-timeout split (spec §4.3): a short
// grace period zeroes voting power immediately, while the much longer
// InactivityResetGap is what eventually flips Active and resets longevity.
func (r *Registry) EffectivePower(mn *types.Masternode, now time.Time) *big.Int {
	if mn == nil || !mn.Active {
		return big.NewInt(0)
	}
	if now.Sub(mn.LastActiveTime) > r.heartbeatGrace {
		return big.NewInt(0)
	}
	return EffectivePower(mn, now)
}

// ActivePower returns the total effective voting power of every active,
// recently-heartbeaten masternode, and the count of active masternodes
// (used by the vote Collector to decide bootstrap mode vs full policy
// evaluation).
func (r *Registry) ActivePower(now time.Time) (*big.Int, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := big.NewInt(0)
	count := 0
	for _, mn := range r.nodes {
		if !mn.Active {
			continue
		}
		total.Add(total, r.EffectivePower(mn, now))
		count++
	}
	return total, count
}

// ActiveMasternodes returns a snapshot slice of every currently active
// masternode, used by proposer selection and block assembly.
func (r *Registry) ActiveMasternodes() []*types.Masternode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*types.Masternode, 0, len(r.nodes))
	for _, mn := range r.nodes {
		if mn.Active {
			out = append(out, mn)
		}
	}
	return out
}

// Len returns the total number of registered masternodes, active or not.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nodes)
}
