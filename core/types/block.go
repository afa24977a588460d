package types

import (
	"crypto/sha256"
	"encoding/binary"
)

// BlockHeader carries the metadata hashed to produce a block's identity
// (spec §3, §4.8).
type BlockHeader struct {
	BlockNumber      uint64 `json:"blockNumber"`
	Timestamp        int64  `json:"timestamp"`
	PreviousHash     []byte `json:"previousHash"`
	MerkleRoot       []byte `json:"merkleRoot"`
	ValidatorAddress string `json:"validatorAddress"`
	ValidatorSig     string `json:"validatorSignature"`
}

// Block is a full TIME Coin block: the finalized transaction set for one
// daily cycle plus its deterministic coinbase.
type Block struct {
	Header       *BlockHeader   `json:"header"`
	CoinbaseTx   *Transaction   `json:"coinbaseTx"`
	Transactions []*Transaction `json:"transactions"`
}

// Hash computes H(block_number || timestamp || previous_hash || merkle_root
// || validator_address || validator_signature), exactly per spec §4.8 so
// every honest node derives byte-identical hashes from byte-identical
// headers.
func (h *BlockHeader) Hash() []byte {
	buf := make([]byte, 0, 8+8+len(h.PreviousHash)+len(h.MerkleRoot)+len(h.ValidatorAddress)+len(h.ValidatorSig))
	var num, ts [8]byte
	binary.BigEndian.PutUint64(num[:], h.BlockNumber)
	binary.BigEndian.PutUint64(ts[:], uint64(h.Timestamp))
	buf = append(buf, num[:]...)
	buf = append(buf, ts[:]...)
	buf = append(buf, h.PreviousHash...)
	buf = append(buf, h.MerkleRoot...)
	buf = append(buf, []byte(h.ValidatorAddress)...)
	buf = append(buf, []byte(h.ValidatorSig)...)
	sum := sha256.Sum256(buf)
	return sum[:]
}
