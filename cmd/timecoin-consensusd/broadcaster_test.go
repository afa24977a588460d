package main

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"timecoin/observability/logging"
	"timecoin/p2p"
)

func TestQueuedBroadcasterDeliversInOrder(t *testing.T) {
	logger := logging.Setup("test", "")

	var mu sync.Mutex
	var delivered []byte

	b := newQueuedBroadcaster(func(msg *p2p.Message) error {
		mu.Lock()
		delivered = append(delivered, msg.Payload...)
		mu.Unlock()
		return nil
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.run(ctx)

	require.NoError(t, b.Broadcast(&p2p.Message{Type: p2p.MessageTxBroadcast, Payload: []byte{1}}))
	require.NoError(t, b.Broadcast(&p2p.Message{Type: p2p.MessageTxBroadcast, Payload: []byte{2}}))
	require.NoError(t, b.Broadcast(&p2p.Message{Type: p2p.MessageTxBroadcast, Payload: []byte{3}}))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(delivered) == 3
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []byte{1, 2, 3}, delivered)
}

func TestQueuedBroadcasterDropsOldestWhenFull(t *testing.T) {
	logger := logging.Setup("test", "")
	b := newQueuedBroadcaster(nil, logger)

	for i := 0; i < outboundQueueCapacity+10; i++ {
		require.NoError(t, b.Broadcast(&p2p.Message{Type: p2p.MessageTxBroadcast, Payload: []byte{byte(i)}}))
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	require.Len(t, b.queue, outboundQueueCapacity)
	require.Equal(t, byte(10), b.queue[0].Payload[0])
}

func TestQueuedBroadcasterRetriesOnFailure(t *testing.T) {
	logger := logging.Setup("test", "")

	var attempts int
	var mu sync.Mutex
	done := make(chan struct{})

	b := newQueuedBroadcaster(func(msg *p2p.Message) error {
		mu.Lock()
		attempts++
		n := attempts
		mu.Unlock()
		if n < 3 {
			return context.DeadlineExceeded
		}
		close(done)
		return nil
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.run(ctx)

	require.NoError(t, b.Broadcast(&p2p.Message{Type: p2p.MessageTxBroadcast, Payload: []byte{9}}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("message was never delivered after retries")
	}
}
