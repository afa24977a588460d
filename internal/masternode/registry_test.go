package masternode

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"timecoin/crypto"
	"timecoin/core/types"
)

func newTestNode(id string, tier types.Tier, registeredAt time.Time) *types.Masternode {
	var collateral *big.Int
	switch tier {
	case types.TierGold:
		collateral = types.GoldCollateral
	case types.TierSilver:
		collateral = types.SilverCollateral
	default:
		collateral = types.BronzeCollateral
	}
	rewardAddr := crypto.MustNewAddress(crypto.TimePrefix, make([]byte, 20))
	return types.NewMasternode(id, rewardAddr, []byte("pub-"+id), crypto.SchemeSecp256k1, collateral, registeredAt)
}

func TestRegisterIsIdempotent(t *testing.T) {
	r := NewRegistry(DefaultHeartbeatGrace)
	now := time.Unix(1000, 0)
	mn := newTestNode("mn1", types.TierGold, now)
	require.NoError(t, r.Register(mn))
	require.NoError(t, r.Register(mn))
	require.Equal(t, 1, r.Len())
}

func TestHeartbeatResetsLongevityAfterGap(t *testing.T) {
	r := NewRegistry(DefaultHeartbeatGrace)
	start := time.Unix(0, 0)
	mn := newTestNode("mn1", types.TierBronze, start)
	require.NoError(t, r.Register(mn))

	later := start.Add(InactivityResetGap - time.Minute)
	require.NoError(t, r.Heartbeat("mn1", later))
	got, _ := r.Get("mn1")
	require.Equal(t, start, got.UptimeAnchor, "heartbeat within the gap should not reset the anchor")

	afterGap := later.Add(InactivityResetGap + time.Minute)
	require.NoError(t, r.Heartbeat("mn1", afterGap))
	got, _ = r.Get("mn1")
	require.Equal(t, afterGap, got.UptimeAnchor, "heartbeat after the inactivity gap should reset the anchor")
}

func TestLongevityMultiplierCapsAtThree(t *testing.T) {
	anchor := time.Unix(0, 0)
	farFuture := anchor.Add(10 * 365 * 24 * time.Hour)
	mult := LongevityMultiplier(anchor, farFuture)
	require.Equal(t, 0, mult.Cmp(MaxLongevityMultiplier))
}

func TestLongevityMultiplierAtRegistration(t *testing.T) {
	anchor := time.Unix(0, 0)
	mult := LongevityMultiplier(anchor, anchor)
	require.Equal(t, 0, mult.Cmp(big.NewRat(1, 1)))
}

func TestEffectivePowerScalesByTierAndLongevity(t *testing.T) {
	anchor := time.Unix(0, 0)
	mn := newTestNode("mn1", types.TierGold, anchor)
	now := anchor.Add(365 * 24 * time.Hour) // +1 year => multiplier 1.5
	power := EffectivePower(mn, now)
	require.Equal(t, big.NewInt(150), power)
}

func TestInactiveMasternodeHasZeroPower(t *testing.T) {
	mn := newTestNode("mn1", types.TierGold, time.Unix(0, 0))
	mn.Active = false
	power := EffectivePower(mn, time.Unix(100, 0))
	require.Equal(t, big.NewInt(0), power)
}

func TestStaleHeartbeatZeroesPowerWithoutResettingLongevity(t *testing.T) {
	r := NewRegistry(10 * time.Minute)
	start := time.Unix(0, 0)
	mn := newTestNode("mn1", types.TierGold, start)
	require.NoError(t, r.Register(mn))
	require.NoError(t, r.Heartbeat("mn1", start))

	// Past the 10 minute heartbeat grace but nowhere near the 72h
	// inactivity gap: power drops to zero, but the longevity anchor and
	// Active flag are untouched.
	stale := start.Add(20 * time.Minute)
	require.Equal(t, big.NewInt(0), r.EffectivePower(mn, stale))
	got, _ := r.Get("mn1")
	require.True(t, got.Active)
	require.Equal(t, start, got.UptimeAnchor)

	total, count := r.ActivePower(stale)
	require.Equal(t, big.NewInt(0), total)
	require.Equal(t, 1, count)
}

