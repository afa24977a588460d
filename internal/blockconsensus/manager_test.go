package blockconsensus

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"timecoin/core/events"
	"timecoin/core/types"
	"timecoin/crypto"
	"timecoin/internal/assembler"
	"timecoin/internal/masternode"
)

func registerNode(t *testing.T, reg *masternode.Registry, id string, tier types.Tier, now time.Time) {
	t.Helper()
	var collateral *big.Int
	switch tier {
	case types.TierGold:
		collateral = types.GoldCollateral
	default:
		collateral = types.BronzeCollateral
	}
	addr := crypto.MustNewAddress(crypto.TimePrefix, make([]byte, 20))
	mn := types.NewMasternode(id, addr, []byte("pub-"+id), crypto.SchemeSecp256k1, collateral, now)
	require.NoError(t, reg.Register(mn))
}

func TestDeterministicModeUsesLiteralValidatorAddress(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	reg := masternode.NewRegistry(masternode.DefaultHeartbeatGrace)
	registerNode(t, reg, "gold1", types.TierGold, now)

	m := NewManager(reg, true, events.NoopEmitter{})
	coinbase := assembler.BuildCoinbase(big.NewInt(0), nil, now.Unix())
	round, err := m.StartRound(42, []byte("prev"), coinbase, nil, now)
	require.NoError(t, err)
	require.Equal(t, "consensus_block_42", round.Candidate.Header.ValidatorAddress)
}

func TestRoundFinalizesOnConsensus(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	reg := masternode.NewRegistry(masternode.DefaultHeartbeatGrace)
	registerNode(t, reg, "gold1", types.TierGold, now)
	registerNode(t, reg, "gold2", types.TierGold, now)

	m := NewManager(reg, true, events.NoopEmitter{})
	coinbase := assembler.BuildCoinbase(big.NewInt(0), nil, now.Unix())
	_, err := m.StartRound(1, []byte("prev"), coinbase, nil, now)
	require.NoError(t, err)

	require.NoError(t, m.CastVote(1, &types.Vote{VoterID: "gold1", Choice: types.ChoiceYes, Power: big.NewInt(100), Timestamp: now}))
	require.NoError(t, m.CastVote(1, &types.Vote{VoterID: "gold2", Choice: types.ChoiceYes, Power: big.NewInt(100), Timestamp: now}))

	round, decision, err := m.Tick(1, now.Add(time.Second), []byte("prev"), coinbase, nil)
	require.NoError(t, err)
	require.Equal(t, decision.String(), "approved")
	require.Equal(t, Finalized, round.Phase)
}

func TestRoundEscalatesOnTimeout(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	reg := masternode.NewRegistry(masternode.DefaultHeartbeatGrace)
	registerNode(t, reg, "gold1", types.TierGold, now)

	m := NewManager(reg, true, events.NoopEmitter{})
	coinbase := assembler.BuildCoinbase(big.NewInt(0), nil, now.Unix())
	round, err := m.StartRound(2, []byte("prev"), coinbase, nil, now)
	require.NoError(t, err)

	after := now.Add(181 * time.Second)
	round, _, err = m.Tick(2, after, []byte("prev"), coinbase, nil)
	require.NoError(t, err)
	require.Equal(t, "RotateLeader", round.Escalator.Current().String())
}
