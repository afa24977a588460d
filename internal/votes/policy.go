// Package votes implements the generic, type-parametric vote collection and
// consensus-check machinery shared by instant transaction finality, daily
// block finalization, and treasury proposal voting (spec §4.2, §9).
package votes

import "math/big"

// Decision is the outcome of a has_consensus check for a subject.
type Decision int

const (
	Pending Decision = iota
	Approved
	Rejected
)

func (d Decision) String() string {
	switch d {
	case Approved:
		return "approved"
	case Rejected:
		return "rejected"
	default:
		return "pending"
	}
}

// Tally holds the cached weighted-power sums for a subject's votes.
type Tally struct {
	Yes     *big.Int
	No      *big.Int
	Abstain *big.Int
}

// NewTally returns a zeroed tally.
func NewTally() Tally {
	return Tally{Yes: big.NewInt(0), No: big.NewInt(0), Abstain: big.NewInt(0)}
}

// Participating returns yes_power + no_power.
func (t Tally) Participating() *big.Int {
	return new(big.Int).Add(t.Yes, t.No)
}

// Total returns yes_power + no_power + abstain_power.
func (t Tally) Total() *big.Int {
	return new(big.Int).Add(t.Participating(), t.Abstain)
}

// Policy decides whether a tally constitutes consensus given the total known
// voting power in the candidate set.
type Policy interface {
	Name() string
	Decide(tally Tally, totalKnownPower *big.Int) Decision
}

func fractionOf(power *big.Int, frac *big.Rat) *big.Rat {
	return new(big.Rat).Mul(new(big.Rat).SetInt(power), frac)
}

func ratGTE(power *big.Int, threshold *big.Rat) bool {
	return new(big.Rat).SetInt(power).Cmp(threshold) >= 0
}

// RatioPolicy implements the generic has_consensus formula from spec §4.2:
// Approved iff yes/(yes+no) >= Fraction AND (yes+no) >= Fraction*total;
// Rejected iff (yes+no+abstain) >= Fraction*total and Approved fails;
// Pending otherwise. TwoThirdsBFT, SimpleMajority, and Custom all use this
// shape with a different Fraction.
type RatioPolicy struct {
	PolicyName string
	Fraction   *big.Rat
}

// TwoThirdsBFT requires >=67% (2/3) agreement and participation.
func TwoThirdsBFT() RatioPolicy {
	return RatioPolicy{PolicyName: "TwoThirdsBFT", Fraction: big.NewRat(2, 3)}
}

// SimpleMajority requires a strict majority (>50%).
func SimpleMajority() RatioPolicy {
	return RatioPolicy{PolicyName: "SimpleMajority", Fraction: big.NewRat(1, 2)}
}

// Custom builds a RatioPolicy for an arbitrary fraction, e.g. the relaxed
// quorum used by fallback strategies.
func Custom(name string, numerator, denominator int64) RatioPolicy {
	return RatioPolicy{PolicyName: name, Fraction: big.NewRat(numerator, denominator)}
}

func (p RatioPolicy) Name() string { return p.PolicyName }

func (p RatioPolicy) Decide(t Tally, totalKnownPower *big.Int) Decision {
	participating := t.Participating()
	requiredParticipation := fractionOf(totalKnownPower, p.Fraction)
	if new(big.Rat).SetInt(participating).Cmp(requiredParticipation) >= 0 {
		if participating.Sign() > 0 {
			ratio := new(big.Rat).SetFrac(t.Yes, participating)
			if p.PolicyName == "SimpleMajority" {
				if ratio.Cmp(p.Fraction) > 0 {
					return Approved
				}
			} else if ratio.Cmp(p.Fraction) >= 0 {
				return Approved
			}
		}
	}
	total := t.Total()
	if new(big.Rat).SetInt(total).Cmp(requiredParticipation) >= 0 {
		return Rejected
	}
	return Pending
}

// AbsolutePolicy implements the direct block/tx finality rule: yes power
// alone must clear YesFraction of total known power, and total
// participation (yes+no) must clear ParticipationFraction (spec §4.4, §4.5).
type AbsolutePolicy struct {
	PolicyName            string
	YesFraction           *big.Rat
	ParticipationFraction *big.Rat
}

// InstantFinality is the 2/3-yes-of-network-power rule used for per-tx
// instant finality (spec §4.4).
func InstantFinality() AbsolutePolicy {
	return AbsolutePolicy{PolicyName: "InstantFinality", YesFraction: big.NewRat(2, 3), ParticipationFraction: big.NewRat(2, 3)}
}

// BlockFinalization is the 80%-yes / 67%-participation rule used for daily
// block finalization under NormalBFT (spec §4.5).
func BlockFinalization() AbsolutePolicy {
	return AbsolutePolicy{PolicyName: "BlockFinalization", YesFraction: big.NewRat(4, 5), ParticipationFraction: big.NewRat(2, 3)}
}

func (p AbsolutePolicy) Name() string { return p.PolicyName }

func (p AbsolutePolicy) Decide(t Tally, totalKnownPower *big.Int) Decision {
	if totalKnownPower == nil || totalKnownPower.Sign() <= 0 {
		return Pending
	}
	requiredYes := fractionOf(totalKnownPower, p.YesFraction)
	requiredParticipation := fractionOf(totalKnownPower, p.ParticipationFraction)
	participating := t.Participating()
	if ratGTE(t.Yes, requiredYes) && new(big.Rat).SetInt(participating).Cmp(requiredParticipation) >= 0 {
		return Approved
	}
	total := t.Total()
	if new(big.Rat).SetInt(total).Cmp(requiredParticipation) >= 0 {
		return Rejected
	}
	return Pending
}
