// Package genesis loads and hard-checks the block-0 genesis file consensus
// starts from (spec §6). Unlike a full chain's genesis builder, TIME Coin's
// consensus core never executes state from a genesis spec: the genesis file
// simply names the network, carries a human-readable message, and pins
// block 0's exact header/hash so every node can verify it was handed the
// same starting point before joining consensus.
package genesis

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"timecoin/config"
	"timecoin/core/errors"
	"timecoin/core/types"
)

// File is the on-disk genesis document's shape (spec §6:
// "{ network, version, message, block: { header: {...}, transactions: [...], hash } }").
type File struct {
	Network config.Network `json:"network"`
	Version string         `json:"version"`
	Message string         `json:"message"`
	Block   BlockSpec      `json:"block"`
}

// BlockSpec is block 0's literal header, transaction set, and the hash the
// header must hash to.
type BlockSpec struct {
	Header       HeaderSpec            `json:"header"`
	Transactions []*types.Transaction  `json:"transactions"`
	Hash         string                `json:"hash"`
}

// HeaderSpec mirrors types.BlockHeader with hex-encoded byte fields, since
// JSON has no native byte-string type.
type HeaderSpec struct {
	BlockNumber      uint64 `json:"blockNumber"`
	Timestamp        int64  `json:"timestamp"`
	PreviousHash     string `json:"previousHash"`
	MerkleRoot       string `json:"merkleRoot"`
	ValidatorAddress string `json:"validatorAddress"`
	ValidatorSig     string `json:"validatorSignature"`
}

// Load reads and parses a genesis file from disk.
func Load(path string) (*File, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("genesis: path must be provided")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("genesis: read %q: %w", path, err)
	}
	var f File
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("genesis: decode %q: %w", path, err)
	}
	return &f, nil
}

// ToBlock renders the genesis spec's block-0 description into a concrete
// Block, decoding its hex-encoded header fields.
func (f *File) ToBlock() (*types.Block, error) {
	prevHash, err := decodeHexOrEmpty(f.Block.Header.PreviousHash)
	if err != nil {
		return nil, fmt.Errorf("genesis: previousHash: %w", err)
	}
	merkleRoot, err := decodeHexOrEmpty(f.Block.Header.MerkleRoot)
	if err != nil {
		return nil, fmt.Errorf("genesis: merkleRoot: %w", err)
	}
	header := &types.BlockHeader{
		BlockNumber:      f.Block.Header.BlockNumber,
		Timestamp:        f.Block.Header.Timestamp,
		PreviousHash:     prevHash,
		MerkleRoot:       merkleRoot,
		ValidatorAddress: f.Block.Header.ValidatorAddress,
		ValidatorSig:     f.Block.Header.ValidatorSig,
	}
	return &types.Block{
		Header:       header,
		Transactions: f.Block.Transactions,
	}, nil
}

// VerifyBlockZero hard-checks that the parsed genesis file's block 0 hashes
// to its declared hash (spec §6: "Block 0 hash is fixed and hard-checked;
// mismatch aborts startup"). It is the one place genesis loading can fail a
// running node rather than just rejecting a malformed file.
func (f *File) VerifyBlockZero() error {
	if f.Block.Header.BlockNumber != 0 {
		return fmt.Errorf("genesis: block.header.blockNumber must be 0, got %d", f.Block.Header.BlockNumber)
	}
	block, err := f.ToBlock()
	if err != nil {
		return err
	}
	declared, err := decodeHexOrEmpty(f.Block.Hash)
	if err != nil {
		return fmt.Errorf("genesis: hash: %w", err)
	}
	computed := block.Header.Hash()
	if !bytes.Equal(computed, declared) {
		return fmt.Errorf("%w: genesis block 0 hash mismatch: computed %x, declared %x",
			errors.ErrHashMismatch, computed, declared)
	}
	return nil
}

func decodeHexOrEmpty(s string) ([]byte, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if trimmed == "" {
		return []byte{}, nil
	}
	return hex.DecodeString(trimmed)
}
