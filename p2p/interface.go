// Package p2p defines the wire-level collaborator interfaces the consensus
// core depends on. A concrete peer-discovery and transport implementation is
// out of scope; this package only fixes the boundary the core talks across.
package p2p

// MessageType tags the payload carried by a Message.
type MessageType byte

const (
	MessageVote MessageType = iota
	MessageTxBroadcast
	MessageBlockProposal
	MessageHeartbeat
)

// Message is the generic envelope exchanged between nodes.
type Message struct {
	Type    MessageType
	Payload []byte
}

// Broadcaster sends a message to every known peer. The consensus core uses
// it to broadcast transactions for voting and to gossip heartbeats; it never
// depends on how peers are discovered or connected.
type Broadcaster interface {
	Broadcast(msg *Message) error
}

// MessageHandler processes an inbound raw message from the network.
type MessageHandler interface {
	HandleMessage(msg *Message) error
}
