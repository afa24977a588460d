package assembler

import "sort"

// orderable is the minimal view of a finalized transaction the canonical
// ordering needs, decoupling this package from the tx-consensus types.
type orderable struct {
	TxID      string
	Timestamp int64
}

// CanonicalOrder sorts txIDs (paired with their timestamps) by
// (timestamp ascending, txid ascending) per spec §4.8. It returns the txIDs
// in canonical order.
func CanonicalOrder(txIDs []string, timestamps map[string]int64) []string {
	items := make([]orderable, len(txIDs))
	for i, id := range txIDs {
		items[i] = orderable{TxID: id, Timestamp: timestamps[id]}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Timestamp != items[j].Timestamp {
			return items[i].Timestamp < items[j].Timestamp
		}
		return items[i].TxID < items[j].TxID
	})
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.TxID
	}
	return out
}
