package txconsensus

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"timecoin/core/events"
	"timecoin/core/types"
	"timecoin/crypto"
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

func TestSubmitAndFinalizeByUnanimousVote(t *testing.T) {
	now := time.Unix(1000, 0)
	reg := masternode.NewRegistry(masternode.DefaultHeartbeatGrace)
	registerNode(t, reg, "gold1", types.TierGold, now)
	registerNode(t, reg, "gold2", types.TierGold, now)
	registerNode(t, reg, "gold3", types.TierGold, now)

	m := NewManager(reg, nil, events.NoopEmitter{})
	tx := &types.Transaction{Nonce: 0, Timestamp: now.Unix()}
	subject, err := m.Submit("tx-1", tx, now)
	require.NoError(t, err)
	require.Equal(t, Collecting, subject.Status)

	for _, id := range []string{"gold1", "gold2", "gold3"} {
		require.NoError(t, m.CastVote("tx-1", &types.Vote{VoterID: id, SubjectID: "tx-1", Choice: types.ChoiceYes, Power: big.NewInt(100), Timestamp: now}))
	}

	changed := m.Tick(now.Add(time.Second))
	require.Len(t, changed, 1)
	require.Equal(t, Finalized, changed[0].Status)
	require.Len(t, changed[0].FinalityProof, 3)
}

func TestSubjectBecomesStuckThenUnfinalizedAfterRetries(t *testing.T) {
	now := time.Unix(0, 0)
	reg := masternode.NewRegistry(masternode.DefaultHeartbeatGrace)
	registerNode(t, reg, "gold1", types.TierGold, now)
	registerNode(t, reg, "gold2", types.TierGold, now)
	registerNode(t, reg, "gold3", types.TierGold, now)

	m := NewManager(reg, nil, events.NoopEmitter{})
	tx := &types.Transaction{Nonce: 0, Timestamp: now.Unix()}
	_, err := m.Submit("tx-2", tx, now)
	require.NoError(t, err)

	t1 := now.Add(InstantFinalityTimeout + time.Second)
	changed := m.Tick(t1)
	require.Len(t, changed, 1)
	require.Equal(t, Collecting, changed[0].Status, "limiter grants a retry and re-enters Collecting")

	// Exhaust remaining retries by repeatedly timing out without any votes.
	last := changed[0]
	cursor := t1
	for i := 0; i < MaxRetries; i++ {
		cursor = cursor.Add(InstantFinalityTimeout + time.Second)
		res := m.Tick(cursor)
		if len(res) > 0 {
			last = res[len(res)-1]
		}
	}
	require.Equal(t, Unfinalized, last.Status)
}
