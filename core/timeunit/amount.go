// Package timeunit provides the fixed-point integer representation for TIME
// Coin amounts used throughout the consensus core. One TIME equals 1e8 TIME
// units; all consensus-path arithmetic operates on units via math/big so no
// floating point value ever crosses a hashed boundary.
package timeunit

import "math/big"

// UnitsPerTime is the number of smallest-denomination units in one TIME.
const UnitsPerTime = 100_000_000

// PerTime returns UnitsPerTime as a *big.Int, safe to share read-only.
func PerTime() *big.Int {
	return big.NewInt(UnitsPerTime)
}

// FromTime converts a whole-TIME integer amount into units.
func FromTime(whole int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(whole), PerTime())
}

// DivRem performs integer division and returns both the quotient and
// remainder, matching the remainder-assignment rules used throughout block
// assembly and fee splitting (spec §4.8).
func DivRem(amount, divisor *big.Int) (quotient, remainder *big.Int) {
	quotient, remainder = new(big.Int), new(big.Int)
	quotient.QuoRem(amount, divisor, remainder)
	return quotient, remainder
}

// CeilDiv performs ceiling integer division: ceil(a/b).
func CeilDiv(a, b *big.Int) *big.Int {
	q, r := DivRem(a, b)
	if r.Sign() != 0 {
		q = new(big.Int).Add(q, big.NewInt(1))
	}
	return q
}

// FloorDiv performs floor integer division: floor(a/b). Provided alongside
// CeilDiv for symmetry at call sites that split a value into a floor half
// and a ceil half (spec §4.8 fee split).
func FloorDiv(a, b *big.Int) *big.Int {
	q, _ := DivRem(a, b)
	return q
}

// Sum adds a slice of amounts, treating nil entries as zero.
func Sum(amounts ...*big.Int) *big.Int {
	total := big.NewInt(0)
	for _, a := range amounts {
		if a == nil {
			continue
		}
		total.Add(total, a)
	}
	return total
}

// IsPositive reports whether amount is non-nil and strictly greater than zero.
func IsPositive(amount *big.Int) bool {
	return amount != nil && amount.Sign() > 0
}

// IsNonNegative reports whether amount is nil (treated as zero) or >= 0.
func IsNonNegative(amount *big.Int) bool {
	return amount == nil || amount.Sign() >= 0
}
