package genesis

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"timecoin/core/types"
)

func writeGenesisFile(t *testing.T, header HeaderSpec) string {
	t.Helper()
	block := &types.Block{Header: &types.BlockHeader{
		BlockNumber:      header.BlockNumber,
		Timestamp:        header.Timestamp,
		PreviousHash:     []byte{},
		MerkleRoot:       []byte{},
		ValidatorAddress: header.ValidatorAddress,
		ValidatorSig:     header.ValidatorSig,
	}}
	header.PreviousHash = ""
	header.MerkleRoot = ""
	hash := hex.EncodeToString(block.Header.Hash())

	f := File{
		Network: "mainnet",
		Version: "1",
		Message: "TIME Coin genesis",
		Block: BlockSpec{
			Header: header,
			Hash:   hash,
		},
	}
	raw, err := json.Marshal(f)
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "genesis.json")
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return path
}

func TestLoadAndVerifyBlockZeroSucceedsOnMatchingHash(t *testing.T) {
	path := writeGenesisFile(t, HeaderSpec{BlockNumber: 0, Timestamp: 1_700_000_000, ValidatorAddress: "genesis"})

	f, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, f.VerifyBlockZero())
}

func TestVerifyBlockZeroFailsOnHashMismatch(t *testing.T) {
	path := writeGenesisFile(t, HeaderSpec{BlockNumber: 0, Timestamp: 1_700_000_000, ValidatorAddress: "genesis"})

	f, err := Load(path)
	require.NoError(t, err)
	f.Block.Hash = "00"
	require.Error(t, f.VerifyBlockZero())
}

func TestVerifyBlockZeroRejectsNonZeroBlockNumber(t *testing.T) {
	path := writeGenesisFile(t, HeaderSpec{BlockNumber: 1, Timestamp: 1_700_000_000, ValidatorAddress: "genesis"})

	f, err := Load(path)
	require.NoError(t, err)
	require.Error(t, f.VerifyBlockZero())
}
