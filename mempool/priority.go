package mempool

import (
	"sort"

	"timecoin/core/types"
	"timecoin/internal/txconsensus"
)

// Lanes groups tracked transaction subjects by how close they are to block
// eligibility: Finalized subjects have already reached instant finality and
// are always eligible; Stuck subjects are still retrying rebroadcast and
// only admitted within their reserved quota; Waiting subjects (Pending,
// Broadcast, Collecting) are not yet eligible at all except under the
// MempoolInclude fallback strategy (spec §4.6), which admits every
// known transaction regardless of finality status.
type Lanes struct {
	Finalized []*txconsensus.Subject
	Stuck     []*txconsensus.Subject
	Waiting   []*txconsensus.Subject
}

// Classify separates tracked subjects into their scheduling lanes. Rejected
// and Unfinalized subjects are dropped entirely: a rejected transaction must
// never enter a block, and an unfinalized one has already exhausted its
// retries under spec §4.4's stuck-then-unfinalized path.
func Classify(subjects []*txconsensus.Subject) Lanes {
	lanes := Lanes{
		Finalized: make([]*txconsensus.Subject, 0, len(subjects)),
		Stuck:     make([]*txconsensus.Subject, 0),
		Waiting:   make([]*txconsensus.Subject, 0),
	}
	for _, s := range subjects {
		if s == nil {
			continue
		}
		switch s.Status {
		case txconsensus.Finalized:
			lanes.Finalized = append(lanes.Finalized, s)
		case txconsensus.Stuck:
			lanes.Stuck = append(lanes.Stuck, s)
		case txconsensus.Pending, txconsensus.Broadcast, txconsensus.Collecting:
			lanes.Waiting = append(lanes.Waiting, s)
		}
	}
	sort.Slice(lanes.Stuck, func(i, j int) bool {
		return lanes.Stuck[i].BroadcastAt.Before(lanes.Stuck[j].BroadcastAt)
	})
	return lanes
}

// Usage captures how much of the reserved Stuck lane capacity was consumed
// for an assembled block candidate.
type Usage struct {
	// Target is the number of slots reserved for the Stuck lane based on
	// the configured quota.
	Target int
	// Used is the actual number of Stuck-lane transactions scheduled.
	Used int
	// TotalStuck is the total number of Stuck transactions currently
	// tracked, whether or not they made it into this block.
	TotalStuck int
	// IncludedWaiting is the number of not-yet-finalized transactions
	// admitted only because includeAllPending (MempoolInclude) was set.
	IncludedWaiting int
}

// Schedule assembles the ordered set of transactions eligible for the next
// block candidate. Finalized subjects are always included. Stuck subjects
// are admitted up to the quota's reserved slots, oldest first. When
// includeAllPending is set (the block round has escalated to
// MempoolInclude), every remaining Waiting subject is appended too,
// regardless of finality status, mirroring spec §4.6's "include all
// transactions regardless of instant-finality" rule.
func Schedule(lanes Lanes, maxTxs int, quota StuckQuota, includeAllPending bool) ([]*types.Transaction, Usage) {
	total := len(lanes.Finalized) + len(lanes.Stuck) + len(lanes.Waiting)
	if total == 0 {
		return nil, Usage{}
	}
	if maxTxs <= 0 || maxTxs > total {
		maxTxs = total
	}

	ordered := make([]*types.Transaction, 0, maxTxs)
	finalizedTake := len(lanes.Finalized)
	if finalizedTake > maxTxs {
		finalizedTake = maxTxs
	}
	for _, s := range lanes.Finalized[:finalizedTake] {
		ordered = append(ordered, s.Tx)
	}

	remaining := maxTxs - finalizedTake
	target := quota.WithDefault().ReservedSlots(maxTxs)
	stuckTake := target
	if stuckTake > remaining {
		stuckTake = remaining
	}
	if stuckTake > len(lanes.Stuck) {
		stuckTake = len(lanes.Stuck)
	}
	for _, s := range lanes.Stuck[:stuckTake] {
		ordered = append(ordered, s.Tx)
	}
	remaining -= stuckTake

	includedWaiting := 0
	if includeAllPending {
		for _, s := range lanes.Waiting {
			if remaining <= 0 {
				break
			}
			ordered = append(ordered, s.Tx)
			remaining--
			includedWaiting++
		}
		// MempoolInclude still has slack left over after Waiting is
		// exhausted: backfill with any Stuck subjects the quota held back.
		for _, s := range lanes.Stuck[stuckTake:] {
			if remaining <= 0 {
				break
			}
			ordered = append(ordered, s.Tx)
			remaining--
			stuckTake++
		}
	}

	return ordered, Usage{
		Target:          target,
		Used:            stuckTake,
		TotalStuck:      len(lanes.Stuck),
		IncludedWaiting: includedWaiting,
	}
}
