package engine

import (
	"sync"

	"github.com/bnema/obsidian-launcher/internal/ports"
)

// Broker fans engine events out to subscriptions. Publish waits for each
// open subscription to accept the event; a closed subscription never holds
// the publisher back.
type Broker struct {
	mu   sync.Mutex
	subs map[*subscription]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: map[*subscription]struct{}{}}
}

func (b *Broker) Subscribe(buffer int) ports.EngineSubscription {
	sub := &subscription{
		broker: b,
		events: make(chan ports.EngineEvent, max(buffer, 0)),
		done:   make(chan struct{}),
	}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	return sub
}

func (b *Broker) Publish(event ports.EngineEvent) {
	b.mu.Lock()
	subs := make([]*subscription, 0, len(b.subs))
	for sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.Unlock()

	for _, sub := range subs {
		select {
		case sub.events <- event:
		case <-sub.done:
		}
	}
}

func (b *Broker) subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

type subscription struct {
	broker *Broker
	events chan ports.EngineEvent
	done   chan struct{}
	once   sync.Once
}

func (s *subscription) Events() <-chan ports.EngineEvent {
	return s.events
}

func (s *subscription) Close() {
	s.once.Do(func() {
		close(s.done)

		s.broker.mu.Lock()
		delete(s.broker.subs, s)
		s.broker.mu.Unlock()
	})
}
