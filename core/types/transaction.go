package types

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"timecoin/crypto"
)

// OutPoint references a prior transaction output by txid and index.
type OutPoint struct {
	TxID  string `json:"txid"`
	Index uint32 `json:"index"`
}

// Output describes a single payment destination.
type Output struct {
	Address string   `json:"address"`
	Amount  *big.Int `json:"amount"`
}

// Transaction captures the consensus-relevant fields of a TIME Coin
// transaction (spec §3). Script/contract payloads are out of scope; the
// Data field only ever carries the fixed, enumerated instructions consensus
// understands (e.g. treasury proposal execution).
type Transaction struct {
	Inputs    []OutPoint `json:"inputs"`
	Outputs   []Output   `json:"outputs"`
	Nonce     uint64     `json:"nonce"`
	Fee       *big.Int   `json:"fee"`
	Timestamp int64      `json:"timestamp"`
	Sender    string     `json:"sender"`
	Data      []byte     `json:"data,omitempty"`

	R *big.Int `json:"r"`
	S *big.Int `json:"s"`
	V *big.Int `json:"v"`

	from []byte
}

// Hash computes the transaction's canonical identifier over every field
// except the signature, so signing and hashing agree on what is committed.
func (tx *Transaction) Hash() ([]byte, error) {
	payload := struct {
		Inputs    []OutPoint `json:"inputs"`
		Outputs   []Output   `json:"outputs"`
		Nonce     uint64     `json:"nonce"`
		Fee       *big.Int   `json:"fee"`
		Timestamp int64      `json:"timestamp"`
		Sender    string     `json:"sender"`
		Data      []byte     `json:"data,omitempty"`
	}{tx.Inputs, tx.Outputs, tx.Nonce, tx.Fee, tx.Timestamp, tx.Sender, tx.Data}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	hash := sha256.Sum256(b)
	return hash[:], nil
}

// TxID renders the hash as a lowercase hex string, the canonical subject ID
// used by the vote collector and block assembler.
func (tx *Transaction) TxID() (string, error) {
	h, err := tx.Hash()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h), nil
}

// Sign signs the transaction hash with a secp256k1 key and records the
// recoverable signature.
func (tx *Transaction) Sign(key *crypto.PrivateKey) error {
	hash, err := tx.Hash()
	if err != nil {
		return err
	}
	sig, err := ethcrypto.Sign(hash, key.PrivateKey)
	if err != nil {
		return err
	}
	tx.R = new(big.Int).SetBytes(sig[:32])
	tx.S = new(big.Int).SetBytes(sig[32:64])
	tx.V = new(big.Int).SetBytes([]byte{sig[64] + 27})
	tx.from = nil
	return nil
}

// From recovers the sender's address from the transaction's signature.
func (tx *Transaction) From() ([]byte, error) {
	if tx.from != nil {
		return tx.from, nil
	}
	if tx.R == nil || tx.S == nil || tx.V == nil {
		return nil, fmt.Errorf("types: transaction missing signature")
	}
	hash, err := tx.Hash()
	if err != nil {
		return nil, err
	}
	sig := make([]byte, 65)
	copy(sig[32-len(tx.R.Bytes()):32], tx.R.Bytes())
	copy(sig[64-len(tx.S.Bytes()):64], tx.S.Bytes())
	sig[64] = byte(tx.V.Uint64() - 27)
	pubKey, err := ethcrypto.SigToPub(hash, sig)
	if err != nil {
		return nil, err
	}
	tx.from = ethcrypto.PubkeyToAddress(*pubKey).Bytes()
	return tx.from, nil
}

// OutputTotal sums the transaction's output amounts.
func (tx *Transaction) OutputTotal() *big.Int {
	total := big.NewInt(0)
	for _, out := range tx.Outputs {
		if out.Amount != nil {
			total.Add(total, out.Amount)
		}
	}
	return total
}
