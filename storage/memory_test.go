package storage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"timecoin/core/types"
)

func TestMemoryStoreLatestBlockRoundTrips(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.LatestBlock()
	require.ErrorIs(t, err, ErrEmpty)

	block := &types.Block{Header: &types.BlockHeader{BlockNumber: 1}}
	require.NoError(t, s.PutBlock(block))

	got, err := s.LatestBlock()
	require.NoError(t, err)
	require.Equal(t, uint64(1), got.Header.BlockNumber)
}

func TestMemoryStorePutBlockRejectsMissingHeader(t *testing.T) {
	s := NewMemoryStore()
	require.ErrorIs(t, s.PutBlock(&types.Block{}), ErrMalformedBlock)
}

func TestMemoryStoreTreasurySnapshotRoundTrips(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.LatestTreasurySnapshot()
	require.ErrorIs(t, err, ErrEmpty)

	require.NoError(t, s.PutTreasurySnapshot([]byte("snapshot")))
	got, err := s.LatestTreasurySnapshot()
	require.NoError(t, err)
	require.Equal(t, []byte("snapshot"), got)
}
