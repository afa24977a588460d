package assembler

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"timecoin/core/timeunit"
)

func TestMerkleRootOfEmptyTreeIsZero(t *testing.T) {
	root := MerkleRoot(nil)
	require.Len(t, root, 32)
	for _, b := range root {
		require.Equal(t, byte(0), b)
	}
}

func TestMerkleRootDuplicatesOddNode(t *testing.T) {
	leaves := [][]byte{{1}, {2}, {3}}
	root := MerkleRoot(leaves)
	require.Len(t, root, 32)

	dup := MerkleRoot([][]byte{{1}, {2}, {3}, {3}})
	require.Equal(t, dup, root, "odd final leaf duplicated should match explicit duplication")
}

func TestBuildCoinbaseSplitsFeesFloorAndCeil(t *testing.T) {
	fees := big.NewInt(7) // floor(7/2)=3, ceil(7/2)=4
	powers := []PowerView{
		{ID: "b-node", RewardAddress: "addr-b", Power: big.NewInt(30)},
		{ID: "a-node", RewardAddress: "addr-a", Power: big.NewInt(70)},
	}
	tx := BuildCoinbase(fees, powers, 1000)

	require.Len(t, tx.Outputs, 3)
	require.Equal(t, TreasuryAddress, tx.Outputs[0].Address)
	wantTreasury := new(big.Int).Add(TreasuryBlockReward, big.NewInt(3))
	require.Equal(t, wantTreasury, tx.Outputs[0].Amount)

	pool := new(big.Int).Add(MasternodeBlockPool, big.NewInt(4))
	var total big.Int
	for _, out := range tx.Outputs[1:] {
		total.Add(&total, out.Amount)
	}
	require.Equal(t, pool.String(), total.String())
}

func TestBuildCoinbaseAssignsRemainderToSmallestID(t *testing.T) {
	powers := []PowerView{
		{ID: "zzz", RewardAddress: "addr-z", Power: big.NewInt(1)},
		{ID: "aaa", RewardAddress: "addr-a", Power: big.NewInt(1)},
		{ID: "mmm", RewardAddress: "addr-m", Power: big.NewInt(1)},
	}
	tx := BuildCoinbase(big.NewInt(0), powers, 1000)
	pool := new(big.Int).Set(MasternodeBlockPool)
	base := new(big.Int).Quo(pool, big.NewInt(3))
	remainder := new(big.Int).Sub(pool, new(big.Int).Mul(base, big.NewInt(3)))

	// outputs[0] is treasury, outputs[1:] follow sorted-by-id order: aaa, mmm, zzz
	require.Equal(t, "addr-a", tx.Outputs[1].Address)
	wantFirst := new(big.Int).Add(base, remainder)
	require.Equal(t, wantFirst, tx.Outputs[1].Amount)
	require.Equal(t, "addr-m", tx.Outputs[2].Address)
	require.Equal(t, base, tx.Outputs[2].Amount)
	require.Equal(t, "addr-z", tx.Outputs[3].Address)
	require.Equal(t, base, tx.Outputs[3].Amount)
}

func TestCanonicalOrderSortsByTimestampThenTxID(t *testing.T) {
	timestamps := map[string]int64{"b": 5, "a": 5, "c": 1}
	order := CanonicalOrder([]string{"a", "b", "c"}, timestamps)
	require.Equal(t, []string{"c", "a", "b"}, order)
}

func TestTimeUnitFromTimeScaling(t *testing.T) {
	require.Equal(t, big.NewInt(500_000_000), timeunit.FromTime(5))
}
