// Package storage defines the persistence boundary the consensus core
// writes finalized state across. A concrete backing store (LevelDB, a state
// trie, or anything else) is out of scope (spec.md §1); the core only
// depends on this interface so it can be driven by an in-memory fake in
// tests and by a real store in production.
package storage

import "timecoin/core/types"

// Snapshotter persists finalized blocks and treasury state and restores
// them on startup. Persistence errors are halt-node severity (spec §7): a
// failed Put should make the caller stop rather than continue with
// divergent in-memory state.
type Snapshotter interface {
	PutBlock(block *types.Block) error
	LatestBlock() (*types.Block, error)
	PutTreasurySnapshot(data []byte) error
	LatestTreasurySnapshot() ([]byte, error)
}
