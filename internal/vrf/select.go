// Package vrf implements deterministic, seed-driven leader and proposer
// selection. Every node computes the same seed from public chain state and
// therefore independently arrives at the same selection without any
// additional round of messages (spec §4.1).
package vrf

import (
	"crypto/sha256"
	"encoding/binary"
	"math/big"
	"sort"

	"timecoin/core/errors"
)

// Candidate is a weighted participant in a selection draw.
type Candidate struct {
	ID     string
	Weight *big.Int
}

// Seed derives the deterministic selection seed from the previous block
// hash, the current round number, and a domain tag that separates proposer
// selection from other uses of this package (e.g. fallback leader
// rotation), so the same (prevHash, round) pair never collides across
// domains.
func Seed(prevHash []byte, round uint64, domain string) []byte {
	roundBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(roundBytes, round)
	input := make([]byte, 0, len(prevHash)+8+len(domain))
	input = append(input, prevHash...)
	input = append(input, roundBytes...)
	input = append(input, []byte(domain)...)
	sum := sha256.Sum256(input)
	return sum[:]
}

// SelectWeighted performs a deterministic weighted draw over candidates
// using seed. Candidates are first sorted by ID so the draw is independent
// of caller iteration order, then walked via prefix-sum against
// seed mod total_weight, mirroring the validator-selection algorithm used
// for block proposing. Returns ErrNoCandidates if candidates is empty or
// every weight is zero.
func SelectWeighted(candidates []Candidate, seed []byte) (string, error) {
	if len(candidates) == 0 {
		return "", errors.ErrNoCandidates
	}

	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	totalWeight := big.NewInt(0)
	for _, c := range sorted {
		if c.Weight != nil && c.Weight.Sign() > 0 {
			totalWeight.Add(totalWeight, c.Weight)
		}
	}
	if totalWeight.Sign() == 0 {
		return "", errors.ErrNoCandidates
	}

	pick := new(big.Int).Mod(new(big.Int).SetBytes(seed), totalWeight)
	for _, c := range sorted {
		if c.Weight == nil || c.Weight.Sign() <= 0 {
			continue
		}
		if pick.Cmp(c.Weight) < 0 {
			return c.ID, nil
		}
		pick.Sub(pick, c.Weight)
	}
	// Unreachable while totalWeight correctly sums the positive weights,
	// but guards against rounding drift rather than panicking.
	return sorted[len(sorted)-1].ID, nil
}

// SelectUniform performs an unweighted deterministic draw, used when every
// candidate should have equal odds (e.g. fallback leader rotation when
// masternode power has not yet been established).
func SelectUniform(candidateIDs []string, seed []byte) (string, error) {
	if len(candidateIDs) == 0 {
		return "", errors.ErrNoCandidates
	}
	sorted := make([]string, len(candidateIDs))
	copy(sorted, candidateIDs)
	sort.Strings(sorted)

	idx := new(big.Int).Mod(new(big.Int).SetBytes(seed), big.NewInt(int64(len(sorted))))
	return sorted[idx.Int64()], nil
}
