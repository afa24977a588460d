package events

const (
	TypeBlockFinalized    = "block.finalized"
	TypeStrategyEscalated = "strategy.escalated"
)

// BlockFinalized is emitted once a daily block is appended to the chain.
type BlockFinalized struct {
	BlockNumber uint64
	Hash        string
	TxCount     int
}

func (BlockFinalized) EventType() string { return TypeBlockFinalized }

// StrategyEscalated is emitted whenever the fallback manager advances to the
// next strategy in its progression.
type StrategyEscalated struct {
	Subject  string
	From     string
	To       string
}

func (StrategyEscalated) EventType() string { return TypeStrategyEscalated }
