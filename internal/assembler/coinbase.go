package assembler

import (
	"math/big"
	"sort"

	"timecoin/core/timeunit"
	"timecoin/core/types"
)

// TreasuryAddress is the system account credited with the block's treasury
// deposit output. It is not a masternode reward address and never appears
// in the masternode registry.
const TreasuryAddress = "treasury"

// TreasuryBlockReward is the fixed 5 TIME base treasury deposit per block.
var TreasuryBlockReward = timeunit.FromTime(5)

// MasternodeBlockPool is the fixed 95 TIME base masternode reward pool per
// block (TreasuryBlockReward + MasternodeBlockPool == 100 TIME).
var MasternodeBlockPool = timeunit.FromTime(95)

// PowerView is the minimal masternode power input coinbase splitting needs.
type PowerView struct {
	ID            string
	RewardAddress string
	Power         *big.Int
}

// BuildCoinbase computes the deterministic zero-input coinbase transaction
// per spec §4.8: the treasury gets 5 TIME + floor(fees/2); active
// masternodes split 95 TIME + ceil(fees/2) proportional to their active
// power at block time, with the integer-division remainder assigned to the
// lexicographically smallest masternode ID. All arithmetic is integer-only.
func BuildCoinbase(totalFees *big.Int, powers []PowerView, timestamp int64) *types.Transaction {
	if totalFees == nil {
		totalFees = big.NewInt(0)
	}
	halfFloor, _ := timeunit.DivRem(totalFees, big.NewInt(2))
	halfCeil := timeunit.CeilDiv(totalFees, big.NewInt(2))

	treasuryAmount := new(big.Int).Add(TreasuryBlockReward, halfFloor)
	pool := new(big.Int).Add(MasternodeBlockPool, halfCeil)

	outputs := []types.Output{{Address: TreasuryAddress, Amount: treasuryAmount}}
	outputs = append(outputs, splitPool(pool, powers)...)

	return &types.Transaction{
		Inputs:    nil,
		Outputs:   outputs,
		Nonce:     0,
		Fee:       big.NewInt(0),
		Timestamp: timestamp,
	}
}

func splitPool(pool *big.Int, powers []PowerView) []types.Output {
	if len(powers) == 0 || pool.Sign() == 0 {
		return nil
	}
	sorted := make([]PowerView, len(powers))
	copy(sorted, powers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	totalPower := big.NewInt(0)
	for _, p := range sorted {
		totalPower.Add(totalPower, p.Power)
	}
	if totalPower.Sign() == 0 {
		return nil
	}

	outputs := make([]types.Output, 0, len(sorted))
	distributed := big.NewInt(0)
	shares := make([]*big.Int, len(sorted))
	for i, p := range sorted {
		share := new(big.Int).Mul(pool, p.Power)
		share.Quo(share, totalPower)
		shares[i] = share
		distributed.Add(distributed, share)
	}
	remainder := new(big.Int).Sub(pool, distributed)
	if remainder.Sign() > 0 {
		shares[0].Add(shares[0], remainder)
	}
	for i, p := range sorted {
		outputs = append(outputs, types.Output{Address: p.RewardAddress, Amount: shares[i]})
	}
	return outputs
}
