package session

import (
	"sync"
	"sync/atomic"
	"time"
)

// Notifier fans snapshots out to subscribers. Each subscriber holds at most
// one pending snapshot; a newer one replaces it, so Publish never blocks.
type Notifier[S any] struct {
	mu     sync.Mutex
	subs   map[int]chan S
	nextID int
	closed bool
}

func (n *Notifier[S]) Subscribe(initial S) (<-chan S, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(chan S, 1)
	if n.closed {
		close(ch)
		return ch, func() {}
	}
	if n.subs == nil {
		n.subs = make(map[int]chan S)
	}
	id := n.nextID
	n.nextID++
	n.subs[id] = ch
	ch <- initial

	return ch, func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if c, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(c)
		}
	}
}

func (n *Notifier[S]) Publish(s S) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, ch := range n.subs {
		select {
		case ch <- s:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- s
		}
	}
}

// Close closes every subscriber channel. Later publishes are dropped.
func (n *Notifier[S]) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.closed = true
	for id, ch := range n.subs {
		delete(n.subs, id)
		close(ch)
	}
}

// Clock records the last time a container was used.
type Clock struct {
	last atomic.Int64
}

func (c *Clock) Touch() {
	c.last.Store(time.Now().UnixNano())
}

func (c *Clock) LastUsed() time.Time {
	return time.Unix(0, c.last.Load())
}
