package engine

import (
	"testing"
	"time"

	"github.com/bnema/obsidian-launcher/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrokerFansOutToEverySubscription(t *testing.T) {
	t.Parallel()

	broker := NewBroker()
	first := broker.Subscribe(1)
	second := broker.Subscribe(1)

	event := ports.EngineEvent{Kind: ports.EngineEventData, Text: "hello"}
	broker.Publish(event)

	assert.Equal(t, event, <-first.Events())
	assert.Equal(t, event, <-second.Events())
}

func TestBrokerCloseUnblocksPublisher(t *testing.T) {
	t.Parallel()

	broker := NewBroker()
	sub := broker.Subscribe(0)

	published := make(chan struct{})
	go func() {
		broker.Publish(ports.EngineEvent{Kind: ports.EngineEventReady})
		close(published)
	}()

	select {
	case <-published:
		t.Fatal("publish should wait for an open subscription")
	case <-time.After(20 * time.Millisecond):
	}

	sub.Close()
	select {
	case <-published:
	case <-time.After(2 * time.Second):
		t.Fatal("publish stayed blocked after close")
	}
}

func TestBrokerCloseRemovesSubscription(t *testing.T) {
	t.Parallel()

	broker := NewBroker()
	sub := broker.Subscribe(4)
	require.Equal(t, 1, broker.subscribers())

	sub.Close()
	sub.Close()
	assert.Equal(t, 0, broker.subscribers())

	broker.Publish(ports.EngineEvent{Kind: ports.EngineEventReady})
	select {
	case event := <-sub.Events():
		t.Fatalf("closed subscription received %+v", event)
	default:
	}
}
