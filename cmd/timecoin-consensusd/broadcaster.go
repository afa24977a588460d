package main

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"timecoin/p2p"
)

// outboundQueueCapacity bounds how many undelivered messages the broadcaster
// holds before dropping the oldest. A node that cannot reach any peer must
// not grow without bound.
const outboundQueueCapacity = 4096

const (
	outboundRetryBaseDelay = 100 * time.Millisecond
	outboundRetryMaxDelay  = 5 * time.Second
	idleTickInterval       = 1 * time.Second
)

// sendFunc delivers one message to the network. The consensus core never
// depends on how peers are discovered or connected (spec.md §1); main wires
// in whatever concrete transport a deployment uses.
type sendFunc func(*p2p.Message) error

// queuedBroadcaster implements p2p.Broadcaster with a bounded outbound
// queue and exponential-backoff retry, so a transient send failure never
// blocks the caller. When the queue is full the oldest queued message is
// dropped without notice, and a message dequeued while no sender is set is
// discarded.
type queuedBroadcaster struct {
	mu     sync.Mutex
	queue  []*p2p.Message
	sender sendFunc
	notify chan struct{}
	log    *slog.Logger
}

// newQueuedBroadcaster builds a broadcaster that delivers via send. send may
// be swapped later with setSender once a real transport comes online.
func newQueuedBroadcaster(send sendFunc, log *slog.Logger) *queuedBroadcaster {
	return &queuedBroadcaster{
		sender: send,
		notify: make(chan struct{}, 1),
		log:    log,
	}
}

// Broadcast enqueues msg for delivery, dropping the oldest queued message if
// the queue is already at capacity.
func (b *queuedBroadcaster) Broadcast(msg *p2p.Message) error {
	cp := &p2p.Message{Type: msg.Type, Payload: append([]byte(nil), msg.Payload...)}

	b.mu.Lock()
	if len(b.queue) >= outboundQueueCapacity {
		b.queue = b.queue[1:]
	}
	b.queue = append(b.queue, cp)
	b.mu.Unlock()

	select {
	case b.notify <- struct{}{}:
	default:
	}
	return nil
}

// setSender hot-swaps the delivery function, used when the concrete
// transport (re)connects.
func (b *queuedBroadcaster) setSender(send sendFunc) {
	b.mu.Lock()
	b.sender = send
	b.mu.Unlock()
	select {
	case b.notify <- struct{}{}:
	default:
	}
}

// run drains the queue until ctx is cancelled, retrying a failed send with
// exponential backoff before moving on to the next message.
func (b *queuedBroadcaster) run(ctx context.Context) {
	ticker := time.NewTicker(idleTickInterval)
	defer ticker.Stop()

	delay := outboundRetryBaseDelay
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.notify:
		case <-ticker.C:
		}

		for {
			msg := b.peek()
			if msg == nil {
				break
			}
			if err := b.send(msg); err != nil {
				b.log.Warn("broadcast send failed, retrying", "error", err, "delay", delay)
				timer := time.NewTimer(delay)
				select {
				case <-ctx.Done():
					timer.Stop()
					return
				case <-timer.C:
				}
				delay *= 2
				if delay > outboundRetryMaxDelay {
					delay = outboundRetryMaxDelay
				}
				continue
			}
			delay = outboundRetryBaseDelay
			b.pop()
		}
	}
}

func (b *queuedBroadcaster) send(msg *p2p.Message) error {
	b.mu.Lock()
	sender := b.sender
	b.mu.Unlock()
	if sender == nil {
		return nil
	}
	return sender(msg)
}

func (b *queuedBroadcaster) peek() *p2p.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queue) == 0 {
		return nil
	}
	return b.queue[0]
}

func (b *queuedBroadcaster) pop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queue) > 0 {
		b.queue = b.queue[1:]
	}
}

// logSender is the default sender used until a real transport is wired: it
// records that a message would have gone out, so a standalone node is
// observable without requiring peer-discovery machinery (out of scope per
// spec.md §1).
func logSender(log *slog.Logger) sendFunc {
	return func(msg *p2p.Message) error {
		log.Debug("broadcast", "type", msg.Type, "bytes", len(msg.Payload))
		return nil
	}
}
