package health

import "sync"

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: map[chan ProbeEvent]struct{}{},
	}
}

// Broadcaster fans probe events out to stream subscribers.
type Broadcaster struct {
	mu          sync.Mutex
	subscribers map[chan ProbeEvent]struct{}
}

// Subscribe returns a buffered event channel and a cancel function.
// A slow subscriber drops events instead of blocking the probe loop.
func (b *Broadcaster) Subscribe() (<-chan ProbeEvent, func()) {
	ch := make(chan ProbeEvent, 16)

	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subscribers[ch]; ok {
			delete(b.subscribers, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

func (b *Broadcaster) Publish(ev ProbeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}
