package mempool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"timecoin/core/types"
	"timecoin/internal/txconsensus"
)

func subject(id string, status txconsensus.Status, broadcastAt time.Time) *txconsensus.Subject {
	s := txconsensus.NewSubject(id, &types.Transaction{Sender: id})
	s.Status = status
	s.BroadcastAt = broadcastAt
	return s
}

func TestClassifySortsAndDropsTerminalLanes(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	subjects := []*txconsensus.Subject{
		subject("fin1", txconsensus.Finalized, base),
		subject("stuck-new", txconsensus.Stuck, base.Add(10*time.Second)),
		subject("stuck-old", txconsensus.Stuck, base),
		subject("waiting1", txconsensus.Collecting, base),
		subject("rejected1", txconsensus.Rejected, base),
		subject("unfinalized1", txconsensus.Unfinalized, base),
	}

	lanes := Classify(subjects)
	require.Len(t, lanes.Finalized, 1)
	require.Len(t, lanes.Stuck, 2)
	require.Len(t, lanes.Waiting, 1)
	require.Equal(t, "stuck-old", lanes.Stuck[0].TxID)
	require.Equal(t, "stuck-new", lanes.Stuck[1].TxID)
}

func TestScheduleIncludesFinalizedUnconditionally(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	lanes := Lanes{
		Finalized: []*txconsensus.Subject{subject("fin1", txconsensus.Finalized, base), subject("fin2", txconsensus.Finalized, base)},
	}
	ordered, usage := Schedule(lanes, 0, StuckQuota{}, false)
	require.Len(t, ordered, 2)
	require.Equal(t, 0, usage.Used)
}

func TestScheduleReservesQuotaForStuckLane(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	lanes := Lanes{
		Finalized: []*txconsensus.Subject{
			subject("fin1", txconsensus.Finalized, base),
			subject("fin2", txconsensus.Finalized, base),
			subject("fin3", txconsensus.Finalized, base),
			subject("fin4", txconsensus.Finalized, base),
			subject("fin5", txconsensus.Finalized, base),
			subject("fin6", txconsensus.Finalized, base),
			subject("fin7", txconsensus.Finalized, base),
			subject("fin8", txconsensus.Finalized, base),
			subject("fin9", txconsensus.Finalized, base),
		},
		Stuck: []*txconsensus.Subject{subject("stuck1", txconsensus.Stuck, base)},
	}
	ordered, usage := Schedule(lanes, 10, StuckQuota{ReservationBPS: 1_000}, false)
	require.Len(t, ordered, 10)
	require.Equal(t, 1, usage.Used)
	require.Equal(t, "stuck1", ordered[len(ordered)-1].Sender)
}

func TestScheduleExcludesWaitingWithoutMempoolInclude(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	lanes := Lanes{Waiting: []*txconsensus.Subject{subject("w1", txconsensus.Collecting, base)}}
	ordered, usage := Schedule(lanes, 10, StuckQuota{}, false)
	require.Empty(t, ordered)
	require.Equal(t, 0, usage.IncludedWaiting)
}

func TestScheduleIncludesAllPendingUnderMempoolInclude(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	lanes := Lanes{
		Finalized: []*txconsensus.Subject{subject("fin1", txconsensus.Finalized, base)},
		Stuck:     []*txconsensus.Subject{subject("stuck1", txconsensus.Stuck, base)},
		Waiting:   []*txconsensus.Subject{subject("w1", txconsensus.Collecting, base), subject("w2", txconsensus.Broadcast, base)},
	}
	ordered, usage := Schedule(lanes, 10, StuckQuota{}, true)
	require.Len(t, ordered, 4)
	require.Equal(t, 2, usage.IncludedWaiting)
}

func TestStuckQuotaReservedSlotsRoundsUp(t *testing.T) {
	q := StuckQuota{ReservationBPS: 1_000}
	require.Equal(t, 1, q.ReservedSlots(3))
	require.Equal(t, 10, q.ReservedSlots(100))
}
