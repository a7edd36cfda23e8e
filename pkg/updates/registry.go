// Package updates simulates push updates: a subscriber registry and a
// fixed-interval ticker that publishes fresh dashboard metrics to it.
package updates

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/threatloom/pkg/logging"
)

// NewRegistry creates an empty registry
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		logger: logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(logging.Component("updates"))
	return r
}

// Subscribe registers cb and returns its subscription id
func (r *Registry) Subscribe(cb Callback) string {
	id := uuid.NewString()

	r.mu.Lock()
	r.subscribers = append(r.subscribers, subscriber{id: id, cb: cb})
	n := len(r.subscribers)
	r.mu.Unlock()

	r.setSubscribers(n)
	r.logger.Debug("subscriber added", logging.Subscriber(id), logging.Count(n))
	return id
}

// Unsubscribe removes the subscriber with id. Unknown ids are ignored.
func (r *Registry) Unsubscribe(id string) {
	r.mu.Lock()
	removed := false
	for i, s := range r.subscribers {
		if s.id == id {
			r.subscribers = append(r.subscribers[:i:i], r.subscribers[i+1:]...)
			removed = true
			break
		}
	}
	n := len(r.subscribers)
	r.mu.Unlock()

	if !removed {
		return
	}
	r.setSubscribers(n)
	r.logger.Debug("subscriber removed", logging.Subscriber(id), logging.Count(n))
}

// Len returns the number of subscribers
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subscribers)
}

// Publish invokes every callback in registration order. A panicking
// callback is recovered and logged; the remaining callbacks still run.
// It returns the number of callbacks that panicked.
func (r *Registry) Publish(event Event) int {
	// Dispatch from a copy so callbacks may subscribe or unsubscribe
	r.mu.RLock()
	subs := make([]subscriber, len(r.subscribers))
	copy(subs, r.subscribers)
	r.mu.RUnlock()

	start := time.Now()
	panics := 0
	for _, s := range subs {
		if err := r.dispatch(s, event); err != nil {
			panics++
			r.logger.Error("subscriber callback panicked",
				logging.Subscriber(s.id),
				logging.String("kind", event.Kind),
				logging.Error(err))
		}
	}

	if r.metrics != nil {
		r.metrics.RecordUpdateDispatch(event.Kind, panics, time.Since(start))
	}
	return panics
}

func (r *Registry) dispatch(s subscriber, event Event) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	s.cb(event)
	return nil
}

func (r *Registry) setSubscribers(n int) {
	if r.metrics != nil {
		r.metrics.SetSubscribers(n)
	}
}
