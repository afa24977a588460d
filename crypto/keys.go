package crypto

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	cryptorand "crypto/rand"
	"fmt"

	"github.com/btcsuite/btcutil/bech32"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// AddressPrefix identifies the human-readable bech32 prefix for an address.
type AddressPrefix string

// TimePrefix is the bech32 prefix used for TIME Coin masternode reward
// addresses and treasury recipient addresses.
const TimePrefix AddressPrefix = "time"

// Address represents a 20-byte TIME Coin address with a specific prefix.
type Address struct {
	prefix AddressPrefix
	bytes  []byte
}

// NewAddress constructs an address from a 20-byte value.
func NewAddress(prefix AddressPrefix, b []byte) (Address, error) {
	if len(b) != 20 {
		return Address{}, fmt.Errorf("crypto: address must be 20 bytes long, got %d", len(b))
	}
	cloned := append([]byte(nil), b...)
	return Address{prefix: prefix, bytes: cloned}, nil
}

// MustNewAddress constructs an address and panics if the input is invalid.
func MustNewAddress(prefix AddressPrefix, b []byte) Address {
	addr, err := NewAddress(prefix, b)
	if err != nil {
		panic(err)
	}
	return addr
}

// String renders the address as its bech32 form.
func (a Address) String() string {
	conv, err := bech32.ConvertBits(a.bytes, 8, 5, true)
	if err != nil {
		panic(err)
	}
	encoded, err := bech32.Encode(string(a.prefix), conv)
	if err != nil {
		panic(err)
	}
	return encoded
}

// Bytes returns a defensive copy of the raw 20-byte address.
func (a Address) Bytes() []byte {
	return append([]byte(nil), a.bytes...)
}

// MarshalJSON renders the address in bech32 form so it round-trips through
// JSON snapshots the same way it appears in logs and RPC responses.
func (a Address) MarshalJSON() ([]byte, error) {
	if len(a.bytes) == 0 {
		return []byte(`""`), nil
	}
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON parses a bech32-encoded address string.
func (a *Address) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == `""` || s == "null" {
		*a = Address{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("crypto: invalid address JSON %s", s)
	}
	decoded, err := DecodeAddress(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*a = decoded
	return nil
}

// Prefix returns the human-readable prefix associated with the address.
func (a Address) Prefix() AddressPrefix {
	return a.prefix
}

// DecodeAddress parses a bech32-encoded address string.
func DecodeAddress(addrStr string) (Address, error) {
	prefix, decoded, err := bech32.Decode(addrStr)
	if err != nil {
		return Address{}, fmt.Errorf("crypto: invalid bech32 string: %w", err)
	}
	conv, err := bech32.ConvertBits(decoded, 5, 8, false)
	if err != nil {
		return Address{}, fmt.Errorf("crypto: error converting bits: %w", err)
	}
	return NewAddress(AddressPrefix(prefix), conv)
}

// --- Key management ---

// PrivateKey wraps a secp256k1 private key used for masternode and
// transaction signatures.
type PrivateKey struct {
	*ecdsa.PrivateKey
}

// PublicKey wraps a secp256k1 public key.
type PublicKey struct {
	*ecdsa.PublicKey
}

// GeneratePrivateKey creates a fresh secp256k1 key pair.
func GeneratePrivateKey() (*PrivateKey, error) {
	key, err := ecdsa.GenerateKey(ethcrypto.S256(), cryptorand.Reader)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key}, nil
}

// Bytes returns the raw private key bytes.
func (k *PrivateKey) Bytes() []byte {
	return ethcrypto.FromECDSA(k.PrivateKey)
}

// PubKey derives the public key for this private key.
func (k *PrivateKey) PubKey() *PublicKey {
	return &PublicKey{&k.PrivateKey.PublicKey}
}

// Address derives the 20-byte TIME Coin address for this public key.
func (k *PublicKey) Address() Address {
	addrBytes := ethcrypto.PubkeyToAddress(*k.PublicKey).Bytes()
	return MustNewAddress(TimePrefix, addrBytes)
}

// PrivateKeyFromBytes reconstructs a private key from its raw bytes.
func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	key, err := ethcrypto.ToECDSA(b)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key}, nil
}

// Scheme enumerates the signature algorithms a masternode may register
// under. Both schemes recover to the same 20-byte address space so the vote
// collector never needs to know which scheme a given voter used.
type Scheme string

const (
	SchemeSecp256k1 Scheme = "secp256k1"
	SchemeEd25519   Scheme = "ed25519"
)

// Signature bundles a signature with the scheme metadata required to verify
// it, mirroring how votes and proposals carry their signing scheme on the
// wire.
type Signature struct {
	Scheme    Scheme `json:"scheme"`
	Signature []byte `json:"signature"`
	PublicKey []byte `json:"publicKey,omitempty"`
}

// SignSecp256k1 signs a 32-byte digest with a secp256k1 private key,
// returning a 65-byte recoverable signature.
func SignSecp256k1(digest []byte, key *PrivateKey) (*Signature, error) {
	if key == nil {
		return nil, fmt.Errorf("crypto: nil private key")
	}
	sig, err := ethcrypto.Sign(digest, key.PrivateKey)
	if err != nil {
		return nil, err
	}
	return &Signature{Scheme: SchemeSecp256k1, Signature: sig}, nil
}

// SignEd25519 signs a digest with an ed25519 private key.
func SignEd25519(digest []byte, key ed25519.PrivateKey) *Signature {
	sig := ed25519.Sign(key, digest)
	return &Signature{Scheme: SchemeEd25519, Signature: sig, PublicKey: key.Public().(ed25519.PublicKey)}
}

// Verify checks a signature against a digest and the address it is expected
// to have been produced by, recovering the signer for secp256k1 or hashing
// the declared public key for ed25519.
func Verify(digest []byte, sig *Signature, expectedAddr []byte) error {
	if sig == nil {
		return fmt.Errorf("crypto: missing signature")
	}
	switch sig.Scheme {
	case SchemeSecp256k1:
		if len(sig.Signature) != 65 {
			return fmt.Errorf("crypto: invalid secp256k1 signature length")
		}
		pubKey, err := ethcrypto.SigToPub(digest, sig.Signature)
		if err != nil {
			return fmt.Errorf("crypto: secp256k1 recover failed: %w", err)
		}
		recovered := ethcrypto.PubkeyToAddress(*pubKey).Bytes()
		if string(recovered) != string(expectedAddr) {
			return fmt.Errorf("crypto: signature address mismatch")
		}
		return nil
	case SchemeEd25519:
		if len(sig.PublicKey) != ed25519.PublicKeySize {
			return fmt.Errorf("crypto: invalid ed25519 public key length")
		}
		if !ed25519.Verify(sig.PublicKey, digest, sig.Signature) {
			return fmt.Errorf("crypto: invalid ed25519 signature")
		}
		recovered := ethcrypto.Keccak256(sig.PublicKey)[12:]
		if string(recovered) != string(expectedAddr) {
			return fmt.Errorf("crypto: signature address mismatch")
		}
		return nil
	default:
		return fmt.Errorf("crypto: unsupported signature scheme %q", sig.Scheme)
	}
}
