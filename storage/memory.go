package storage

import (
	"errors"
	"sync"

	"timecoin/core/types"
)

// ErrEmpty is returned when no block or treasury snapshot has been stored
// yet.
var ErrEmpty = errors.New("storage: nothing stored")

// ErrMalformedBlock is returned when PutBlock is given a block with no
// header.
var ErrMalformedBlock = errors.New("storage: block missing header")

// MemoryStore is a process-local Snapshotter kept entirely in memory. It
// satisfies the persistence boundary for standalone runs and tests where no
// durable backing store is wired, matching the "in-memory fake" role the
// interface doc describes.
type MemoryStore struct {
	mu       sync.Mutex
	blocks   []*types.Block
	treasury []byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// PutBlock appends block to the in-memory chain.
func (s *MemoryStore) PutBlock(block *types.Block) error {
	if block == nil || block.Header == nil {
		return ErrMalformedBlock
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks = append(s.blocks, block)
	return nil
}

// LatestBlock returns the most recently stored block.
func (s *MemoryStore) LatestBlock() (*types.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.blocks) == 0 {
		return nil, ErrEmpty
	}
	return s.blocks[len(s.blocks)-1], nil
}

// PutTreasurySnapshot replaces the stored treasury snapshot blob.
func (s *MemoryStore) PutTreasurySnapshot(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.treasury = append([]byte(nil), data...)
	return nil
}

// LatestTreasurySnapshot returns the most recently stored treasury blob.
func (s *MemoryStore) LatestTreasurySnapshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.treasury == nil {
		return nil, ErrEmpty
	}
	return append([]byte(nil), s.treasury...), nil
}
