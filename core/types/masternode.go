package types

import (
	"math/big"
	"time"

	"timecoin/core/timeunit"
	"timecoin/crypto"
)

// Tier enumerates the masternode collateral brackets. Weights are assigned
// per tier and combined with the longevity multiplier to produce effective
// voting power.
type Tier uint8

const (
	TierNone Tier = iota
	TierBronze
	TierSilver
	TierGold
)

// Tier collateral thresholds, expressed in TIME units.
var (
	BronzeCollateral = timeunit.FromTime(1_000)
	SilverCollateral = timeunit.FromTime(10_000)
	GoldCollateral   = timeunit.FromTime(100_000)
)

// Tier weights used before the longevity multiplier is applied.
const (
	BronzeWeight = 1
	SilverWeight = 10
	GoldWeight   = 100
)

// TierFromCollateral derives the tier implied by a collateral amount,
// per spec §3: Bronze >= 1k TIME, Silver >= 10k, Gold >= 100k.
func TierFromCollateral(collateral *big.Int) Tier {
	if collateral == nil {
		return TierNone
	}
	switch {
	case collateral.Cmp(GoldCollateral) >= 0:
		return TierGold
	case collateral.Cmp(SilverCollateral) >= 0:
		return TierSilver
	case collateral.Cmp(BronzeCollateral) >= 0:
		return TierBronze
	default:
		return TierNone
	}
}

// Weight returns the base tier weight, 0 for TierNone.
func (t Tier) Weight() int64 {
	switch t {
	case TierBronze:
		return BronzeWeight
	case TierSilver:
		return SilverWeight
	case TierGold:
		return GoldWeight
	default:
		return 0
	}
}

func (t Tier) String() string {
	switch t {
	case TierBronze:
		return "bronze"
	case TierSilver:
		return "silver"
	case TierGold:
		return "gold"
	default:
		return "none"
	}
}

// Masternode captures the on-chain registration record for a BFT voting
// participant (spec §3).
type Masternode struct {
	ID               string         `json:"id"`
	RewardAddress    crypto.Address `json:"rewardAddress"`
	PublicKey        []byte         `json:"publicKey"`
	SignatureScheme  crypto.Scheme  `json:"signatureScheme"`
	Collateral       *big.Int       `json:"collateral"`
	Tier             Tier           `json:"tier"`
	RegistrationTime time.Time      `json:"registrationTime"`
	LastActiveTime   time.Time      `json:"lastActiveTime"`
	UptimeAnchor     time.Time      `json:"uptimeAnchor"`
	Active           bool           `json:"active"`
}

// NewMasternode constructs a registration record, deriving the tier from the
// supplied collateral.
func NewMasternode(id string, rewardAddr crypto.Address, pubKey []byte, scheme crypto.Scheme, collateral *big.Int, now time.Time) *Masternode {
	return &Masternode{
		ID:               id,
		RewardAddress:    rewardAddr,
		PublicKey:        append([]byte(nil), pubKey...),
		SignatureScheme:  scheme,
		Collateral:       new(big.Int).Set(collateral),
		Tier:             TierFromCollateral(collateral),
		RegistrationTime: now,
		LastActiveTime:   now,
		UptimeAnchor:     now,
		Active:           true,
	}
}
