package metrics

import "timecoin/core/events"

// EventEmitter adapts the process-wide Consensus() metrics singleton to the
// events.Emitter interface, so every internal manager can be wired with a
// single emitter that both feeds downstream subscribers (via a wrapped
// emitter) and records Prometheus series, without those managers importing
// Prometheus directly.
type EventEmitter struct {
	metrics *ConsensusMetrics
	next    events.Emitter
}

// NewEventEmitter wraps next (use events.NoopEmitter{} if nothing else
// subscribes) with Prometheus observation of vote, subject decision,
// escalation, block, and treasury deposit/decision/execution/expiry events.
// ProposalSubmitted and BootstrapModeEngaged pass through unobserved.
func NewEventEmitter(next events.Emitter) *EventEmitter {
	if next == nil {
		next = events.NoopEmitter{}
	}
	return &EventEmitter{metrics: Consensus(), next: next}
}

func (e *EventEmitter) Emit(ev events.Event) {
	switch v := ev.(type) {
	case events.VoteCast:
		e.metrics.ObserveVoteCast(subjectKindOf(v.SubjectID), v.Choice)
	case events.SubjectFinalized:
		e.metrics.ObserveSubjectFinalized(subjectKindOf(v.SubjectID), "approved")
	case events.SubjectRejected:
		e.metrics.ObserveSubjectFinalized(subjectKindOf(v.SubjectID), "rejected")
	case events.StrategyEscalated:
		e.metrics.ObserveStrategyEscalation(subjectKindOf(v.Subject), v.To)
	case events.BlockFinalized:
		e.metrics.ObserveBlockOutcome("finalized")
	case events.TreasuryDeposit:
		e.metrics.ObserveTreasuryDeposit(v.Source)
	case events.ProposalExecuted:
		e.metrics.ObserveTreasuryExecution("executed")
	case events.ProposalExpired:
		e.metrics.ObserveTreasuryExecution("expired")
	case events.ProposalFinalized:
		e.metrics.ObserveTreasuryExecution(v.Status)
	}
	e.next.Emit(ev)
}

// subjectKindOf classifies a subject key by its namespacing convention:
// treasury proposal IDs are opaque UUIDs, block subjects are
// "{blockNumber}:{strategy}", and transaction subjects are raw tx IDs.
// Block subjects are the only ones carrying the ':' separator this package
// introduces, so that one byte is enough to disambiguate.
func subjectKindOf(subjectID string) string {
	for i := 0; i < len(subjectID); i++ {
		if subjectID[i] == ':' {
			return "block"
		}
	}
	if len(subjectID) == 36 {
		return "treasury_proposal"
	}
	return "transaction"
}
