package updates

import (
	"context"
	"sync"
)

// listener forwards events to a buffered channel
type listener struct {
	ch     chan Event
	mu     sync.Mutex
	closed bool
}

// send delivers without blocking the publisher; events are dropped while
// the buffer is full
func (l *listener) send(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	select {
	case l.ch <- e:
	default:
	}
}

func (l *listener) close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.closed {
		l.closed = true
		close(l.ch)
	}
}

// Listen subscribes a channel of the given buffer size. The subscription
// is removed and the channel closed when ctx is done.
func (r *Registry) Listen(ctx context.Context, buffer int) (<-chan Event, string) {
	if buffer < 1 {
		buffer = 1
	}
	l := &listener{ch: make(chan Event, buffer)}
	id := r.Subscribe(l.send)

	go func() {
		<-ctx.Done()
		r.Unsubscribe(id)
		l.close()
	}()

	return l.ch, id
}
