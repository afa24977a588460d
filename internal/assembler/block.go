package assembler

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"

	"timecoin/core/types"
)

// DeterministicValidatorAddress formats the literal
// "consensus_block_{n}" validator identity used under deterministic mode,
// where every honest node computes the same candidate independently and
// proposer selection becomes symbolic (spec §4.5).
func DeterministicValidatorAddress(blockNumber uint64) string {
	return fmt.Sprintf("consensus_block_%d", blockNumber)
}

// Candidate is an assembled, unsigned block awaiting votes.
type Candidate struct {
	Header       *types.BlockHeader
	CoinbaseTx   *types.Transaction
	Transactions []*types.Transaction
}

// Assemble builds a deterministic block candidate: transactions sorted into
// canonical order (timestamp ascending, then tx hash ascending, whatever
// order orderedTxs arrives in), a computed coinbase, and the merkle root over
// every tx (coinbase first) that the header hash covers (spec §4.8).
// validatorAddress is either the selected proposer's masternode ID or the
// deterministic-mode literal from DeterministicValidatorAddress.
func Assemble(blockNumber uint64, timestamp int64, previousHash []byte, validatorAddress string, coinbase *types.Transaction, orderedTxs []*types.Transaction) (*Candidate, error) {
	txs := append([]*types.Transaction(nil), orderedTxs...)
	sort.SliceStable(txs, func(i, j int) bool {
		if txs[i].Timestamp != txs[j].Timestamp {
			return txs[i].Timestamp < txs[j].Timestamp
		}
		hi, _ := txs[i].Hash()
		hj, _ := txs[j].Hash()
		return bytes.Compare(hi, hj) < 0
	})

	leaves := make([][]byte, 0, len(txs)+1)
	coinbaseHash, err := coinbase.Hash()
	if err != nil {
		return nil, err
	}
	leaves = append(leaves, coinbaseHash)
	for _, tx := range txs {
		h, err := tx.Hash()
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, h)
	}
	root := MerkleRoot(leaves)

	header := &types.BlockHeader{
		BlockNumber:      blockNumber,
		Timestamp:        timestamp,
		PreviousHash:     previousHash,
		MerkleRoot:       root,
		ValidatorAddress: validatorAddress,
	}

	return &Candidate{Header: header, CoinbaseTx: coinbase, Transactions: txs}, nil
}

// HashHex returns the candidate's block hash as a hex string, used as the
// value masternodes sign and compare during voting.
func (c *Candidate) HashHex() string {
	return hex.EncodeToString(c.Header.Hash())
}
