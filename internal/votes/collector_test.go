package votes

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"timecoin/core/events"
	"timecoin/core/types"
)

func vote(voter string, choice types.Choice, power int64) *types.Vote {
	return &types.Vote{
		VoterID:   voter,
		Choice:    choice,
		Power:     big.NewInt(power),
		Timestamp: time.Unix(0, 0),
	}
}

func TestCollectorRejectsDuplicateVoter(t *testing.T) {
	c := NewCollector[string]("subject-1", events.NoopEmitter{})
	require.NoError(t, c.AddVote(vote("v1", types.ChoiceYes, 10)))
	err := c.AddVote(vote("v1", types.ChoiceNo, 10))
	require.Error(t, err)
	require.Equal(t, 1, c.VoterCount())
}

func TestTwoThirdsBFTApprovesAtThreshold(t *testing.T) {
	c := NewCollector[string]("subject-2", events.NoopEmitter{})
	require.NoError(t, c.AddVote(vote("gold", types.ChoiceYes, 100)))
	require.NoError(t, c.AddVote(vote("silver1", types.ChoiceYes, 10)))
	require.NoError(t, c.AddVote(vote("silver2", types.ChoiceNo, 2)))
	require.NoError(t, c.AddVote(vote("bronze1", types.ChoiceYes, 1)))
	require.NoError(t, c.AddVote(vote("bronze2", types.ChoiceAbstain, 1))) // exactly 5 voters

	total := big.NewInt(113)
	decision := c.HasConsensus(TwoThirdsBFT(), total, 5, time.Unix(1, 0))
	require.Equal(t, Approved, decision)
}

func TestTwoThirdsBFTRejectsOnInsufficientYes(t *testing.T) {
	c := NewCollector[string]("subject-3", events.NoopEmitter{})
	require.NoError(t, c.AddVote(vote("a", types.ChoiceYes, 10)))
	require.NoError(t, c.AddVote(vote("b", types.ChoiceNo, 40)))
	require.NoError(t, c.AddVote(vote("c", types.ChoiceNo, 30)))
	require.NoError(t, c.AddVote(vote("d", types.ChoiceAbstain, 5)))

	total := big.NewInt(100)
	decision := c.HasConsensus(TwoThirdsBFT(), total, 4, time.Unix(1, 0))
	require.Equal(t, Rejected, decision)
}

func TestBootstrapModeApprovesOnSingleYes(t *testing.T) {
	c := NewCollector[string]("subject-4", events.NoopEmitter{})
	require.NoError(t, c.AddVote(vote("only-node", types.ChoiceYes, 1)))

	decision := c.HasConsensus(TwoThirdsBFT(), big.NewInt(1), 1, time.Unix(1, 0))
	require.Equal(t, Approved, decision)
}

func TestBootstrapModeRejectsWhenAllVotedNo(t *testing.T) {
	c := NewCollector[string]("subject-5", events.NoopEmitter{})
	require.NoError(t, c.AddVote(vote("n1", types.ChoiceNo, 1)))
	require.NoError(t, c.AddVote(vote("n2", types.ChoiceNo, 1)))

	decision := c.HasConsensus(TwoThirdsBFT(), big.NewInt(2), 2, time.Unix(1, 0))
	require.Equal(t, Rejected, decision)
}

func TestDecisionLatchesAfterFinalization(t *testing.T) {
	c := NewCollector[string]("subject-6", events.NoopEmitter{})
	require.NoError(t, c.AddVote(vote("gold", types.ChoiceYes, 100)))
	total := big.NewInt(100)
	first := c.HasConsensus(TwoThirdsBFT(), total, 5, time.Unix(1, 0))
	require.Equal(t, Approved, first)

	// Even if policy evaluation were to change, a latched decision sticks.
	again := c.HasConsensus(SimpleMajority(), big.NewInt(1), 5, time.Unix(2, 0))
	require.Equal(t, Approved, again)
	require.Equal(t, time.Unix(1, 0), c.DecidedAt())
}

func TestBlockFinalizationRequiresEightyPercentYes(t *testing.T) {
	c := NewCollector[uint64]("block-7", events.NoopEmitter{})
	require.NoError(t, c.AddVote(vote("a", types.ChoiceYes, 75)))
	require.NoError(t, c.AddVote(vote("b", types.ChoiceNo, 25)))

	total := big.NewInt(100)
	decision := c.HasConsensus(BlockFinalization(), total, 5, time.Unix(1, 0))
	require.Equal(t, Rejected, decision)
}

func TestBlockFinalizationApprovesAtEightyPercent(t *testing.T) {
	c := NewCollector[uint64]("block-8", events.NoopEmitter{})
	require.NoError(t, c.AddVote(vote("a", types.ChoiceYes, 80)))
	require.NoError(t, c.AddVote(vote("b", types.ChoiceNo, 10)))

	total := big.NewInt(100)
	decision := c.HasConsensus(BlockFinalization(), total, 5, time.Unix(1, 0))
	require.Equal(t, Approved, decision)
}

func TestRegistryGCReclaimsExpiredSubjects(t *testing.T) {
	r := NewRegistry[string](time.Minute, events.NoopEmitter{})
	c := r.Collector("tx-1")
	require.NoError(t, c.AddVote(vote("only-node", types.ChoiceYes, 1)))
	c.HasConsensus(TwoThirdsBFT(), big.NewInt(1), 1, time.Unix(0, 0))

	require.Equal(t, 1, r.Len())
	reclaimed := r.GC(time.Unix(0, 0).Add(2 * time.Minute))
	require.Equal(t, 1, reclaimed)
	require.Equal(t, 0, r.Len())
}
