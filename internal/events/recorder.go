package events

import (
	"context"
	"sync"
)

// Recorder is the in-memory publisher. It doubles as the notification trail
// for tests and the single-process deployment: emitted events can be listed
// back in emission order.
type Recorder struct {
	mu     sync.RWMutex
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Emit(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, stamp(event))
	return nil
}

// List returns a copy of all recorded events in emission order.
func (r *Recorder) List() []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Event{}, r.events...)
}

// ListByType filters the recorded trail.
func (r *Recorder) ListByType(t Type) []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
