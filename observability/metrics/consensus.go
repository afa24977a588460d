package metrics

import (
	"fmt"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type ConsensusMetrics struct {
	votesCast            *prometheus.CounterVec
	subjectsFinalized    *prometheus.CounterVec
	strategyEscalations  *prometheus.CounterVec
	blockCycleSeconds    *prometheus.GaugeVec
	blockOutcomes        *prometheus.CounterVec
	txFinalitySeconds    *prometheus.GaugeVec
	treasuryBalance      prometheus.Gauge
	treasuryDeposits     *prometheus.CounterVec
	treasuryExecutions   *prometheus.CounterVec
	activeMasternodes    *prometheus.GaugeVec
	activeNetworkPower   prometheus.Gauge
	retryLimiterExhausts *prometheus.CounterVec
}

var (
	consensusOnce     sync.Once
	consensusRegistry *ConsensusMetrics
)

func Consensus() *ConsensusMetrics {
	consensusOnce.Do(func() {
		consensusRegistry = &ConsensusMetrics{
			votesCast: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "consensus_votes_cast_total",
				Help: "Count of ballots accepted by a vote collector, by subject kind and choice.",
			}, []string{"subject_kind", "choice"}),
			subjectsFinalized: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "consensus_subjects_finalized_total",
				Help: "Count of subjects reaching a terminal decision, by subject kind and decision.",
			}, []string{"subject_kind", "decision"}),
			strategyEscalations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "consensus_strategy_escalations_total",
				Help: "Count of fallback strategy escalations, by strategy family and resulting level.",
			}, []string{"family", "level"}),
			blockCycleSeconds: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "consensus_block_cycle_seconds",
				Help: "Wall-clock seconds from round start to finalization for the most recent block.",
			}, []string{"block"}),
			blockOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "consensus_block_outcomes_total",
				Help: "Count of block round outcomes by final phase.",
			}, []string{"phase"}),
			txFinalitySeconds: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "consensus_tx_finality_seconds",
				Help: "Seconds from broadcast to finalization for a transaction, by outcome.",
			}, []string{"outcome"}),
			treasuryBalance: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "treasury_balance",
				Help: "Current treasury balance in base units.",
			}),
			treasuryDeposits: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "treasury_deposits_total",
				Help: "Count of automatic per-block treasury deposits, by source.",
			}, []string{"source"}),
			treasuryExecutions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "treasury_proposal_executions_total",
				Help: "Count of treasury proposal executions, by outcome.",
			}, []string{"outcome"}),
			activeMasternodes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "consensus_active_masternodes",
				Help: "Count of active masternodes, by tier.",
			}, []string{"tier"}),
			activeNetworkPower: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "consensus_active_network_power",
				Help: "Sum of effective voting power across all active masternodes.",
			}),
			retryLimiterExhausts: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "consensus_retry_limiter_exhausted_total",
				Help: "Count of rebroadcast retry budgets exhausted, by subject kind.",
			}, []string{"subject_kind"}),
		}
		prometheus.MustRegister(
			consensusRegistry.votesCast,
			consensusRegistry.subjectsFinalized,
			consensusRegistry.strategyEscalations,
			consensusRegistry.blockCycleSeconds,
			consensusRegistry.blockOutcomes,
			consensusRegistry.txFinalitySeconds,
			consensusRegistry.treasuryBalance,
			consensusRegistry.treasuryDeposits,
			consensusRegistry.treasuryExecutions,
			consensusRegistry.activeMasternodes,
			consensusRegistry.activeNetworkPower,
			consensusRegistry.retryLimiterExhausts,
		)
	})
	return consensusRegistry
}

func (m *ConsensusMetrics) ObserveVoteCast(subjectKind string, choice string) {
	if m == nil {
		return
	}
	m.votesCast.WithLabelValues(normaliseLabel(subjectKind), normaliseLabel(choice)).Inc()
}

func (m *ConsensusMetrics) ObserveSubjectFinalized(subjectKind string, decision string) {
	if m == nil {
		return
	}
	m.subjectsFinalized.WithLabelValues(normaliseLabel(subjectKind), normaliseLabel(decision)).Inc()
}

func (m *ConsensusMetrics) ObserveStrategyEscalation(family, level string) {
	if m == nil {
		return
	}
	m.strategyEscalations.WithLabelValues(normaliseLabel(family), normaliseLabel(level)).Inc()
}

func (m *ConsensusMetrics) SetBlockCycleSeconds(blockNumber uint64, seconds float64) {
	if m == nil {
		return
	}
	m.blockCycleSeconds.WithLabelValues(fmt.Sprintf("%d", blockNumber)).Set(seconds)
}

func (m *ConsensusMetrics) ObserveBlockOutcome(phase string) {
	if m == nil {
		return
	}
	m.blockOutcomes.WithLabelValues(normaliseLabel(phase)).Inc()
}

func (m *ConsensusMetrics) SetTxFinalitySeconds(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.txFinalitySeconds.WithLabelValues(normaliseLabel(outcome)).Set(seconds)
}

func (m *ConsensusMetrics) SetTreasuryBalance(amount float64) {
	if m == nil {
		return
	}
	m.treasuryBalance.Set(amount)
}

func (m *ConsensusMetrics) ObserveTreasuryDeposit(source string) {
	if m == nil {
		return
	}
	m.treasuryDeposits.WithLabelValues(normaliseLabel(source)).Inc()
}

func (m *ConsensusMetrics) ObserveTreasuryExecution(outcome string) {
	if m == nil {
		return
	}
	m.treasuryExecutions.WithLabelValues(normaliseLabel(outcome)).Inc()
}

func (m *ConsensusMetrics) SetActiveMasternodes(tier string, count float64) {
	if m == nil {
		return
	}
	m.activeMasternodes.WithLabelValues(normaliseLabel(tier)).Set(count)
}

func (m *ConsensusMetrics) SetActiveNetworkPower(power float64) {
	if m == nil {
		return
	}
	m.activeNetworkPower.Set(power)
}

func (m *ConsensusMetrics) IncRetryLimiterExhausted(subjectKind string) {
	if m == nil {
		return
	}
	m.retryLimiterExhausts.WithLabelValues(normaliseLabel(subjectKind)).Inc()
}

func normaliseLabel(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "unknown"
	}
	return strings.ToLower(trimmed)
}
