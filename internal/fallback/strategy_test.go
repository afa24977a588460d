package fallback

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"timecoin/core/events"
)

func TestBlockStrategyProgression(t *testing.T) {
	s := NormalBFT
	order := []BlockStrategy{RotateLeader, RelaxedQuorum, MempoolInclude, Emergency}
	for _, want := range order {
		next, ok := s.Next()
		require.True(t, ok)
		require.Equal(t, want, next)
		s = next
	}
	_, ok := s.Next()
	require.False(t, ok)
	require.True(t, s.Terminal())
}

func TestTxStrategyProgression(t *testing.T) {
	s := TxRotateLeader
	next, ok := s.Next()
	require.True(t, ok)
	require.Equal(t, TxRelaxBroadcast, next)

	next, ok = next.Next()
	require.True(t, ok)
	require.Equal(t, TxEmergency, next)

	_, ok = next.Next()
	require.False(t, ok)
}

func TestMempoolIncludeDropsInstantFinalityPrecondition(t *testing.T) {
	require.False(t, NormalBFT.IncludesAllMempoolTxs())
	require.False(t, RotateLeader.IncludesAllMempoolTxs())
	require.False(t, RelaxedQuorum.IncludesAllMempoolTxs())
	require.True(t, MempoolInclude.IncludesAllMempoolTxs())
	require.True(t, Emergency.IncludesAllMempoolTxs())
}

func TestEscalatorEmitsEventsAndStops(t *testing.T) {
	e := NewEscalator[BlockStrategy]("block-5", NormalBFT, BlockStrategy.Next, events.NoopEmitter{})
	require.Equal(t, NormalBFT, e.Current())

	next, ok := e.Escalate()
	require.True(t, ok)
	require.Equal(t, RotateLeader, next)
	require.Equal(t, RotateLeader, e.Current())

	for i := 0; i < 10; i++ {
		e.Escalate()
	}
	require.Equal(t, Emergency, e.Current())
}

func TestEscalatorArmAndExpire(t *testing.T) {
	e := NewEscalator[TxStrategy]("tx-1", TxRotateLeader, TxStrategy.Next, events.NoopEmitter{})
	now := time.Unix(0, 0)
	e.Arm(5*time.Second, now)
	require.False(t, e.Expired(now.Add(4*time.Second)))
	require.True(t, e.Expired(now.Add(5*time.Second)))
}

func TestRetryLimiterExhaustsAfterMaxRetries(t *testing.T) {
	r := NewRetryLimiter(3, 100*time.Millisecond)
	for i := 0; i < 3; i++ {
		_, ok := r.NextBackoff()
		require.True(t, ok)
	}
	_, ok := r.NextBackoff()
	require.False(t, ok)
	require.Equal(t, 3, r.Attempts())
}
