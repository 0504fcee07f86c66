package events

import (
	"log/slog"
	"sync"
)

// Sink receives every event raised by a successful plan mutation.
// Implementations must not assume they are called from a single goroutine
// unless the caller serializes mutations (which the engine contract
// requires for any one plan).
type Sink interface {
	// Publish delivers one event. Publish must not block indefinitely and
	// must not panic; the Dispatcher additionally guards against handler
	// panics so a faulty consumer cannot unwind an applied mutation.
	Publish(event Event)
}

// Handler is a function subscribed to a Dispatcher.
type Handler func(Event)

// subscriberEntry pairs a handler with its filter and registration order.
type subscriberEntry struct {
	id      uint64
	filter  Filter
	handler Handler
}

// Dispatcher is a synchronous fan-out Sink. Handlers run inline on the
// publishing goroutine, in registration order, so listeners observe events
// strictly in the order mutations were applied.
//
// A panicking handler is recovered and logged; remaining handlers still
// receive the event and the mutation that raised it is unaffected.
type Dispatcher struct {
	mu      sync.RWMutex
	entries []subscriberEntry
	nextID  uint64
	logger  *slog.Logger
}

// DispatcherOption is a functional option for configuring a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithLogger configures the dispatcher to report recovered handler panics
// through the given structured logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDispatcher creates a Dispatcher with the given options.
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Subscribe registers a handler with optional filtering and returns a
// function that removes the subscription. Pass Filter{} to receive all
// events.
func (d *Dispatcher) Subscribe(filter Filter, handler Handler) func() {
	if handler == nil {
		return func() {}
	}

	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.entries = append(d.entries, subscriberEntry{id: id, filter: filter, handler: handler})
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		for i, e := range d.entries {
			if e.id == id {
				d.entries = append(d.entries[:i], d.entries[i+1:]...)
				return
			}
		}
	}
}

// SubscriberCount returns the current number of registered handlers.
// Useful for monitoring and testing.
func (d *Dispatcher) SubscriberCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

// Publish delivers the event to every matching handler, synchronously and
// in registration order.
func (d *Dispatcher) Publish(event Event) {
	d.mu.RLock()
	entries := make([]subscriberEntry, len(d.entries))
	copy(entries, d.entries)
	d.mu.RUnlock()

	for _, e := range entries {
		if !e.filter.Matches(event) {
			continue
		}
		d.deliver(e, event)
	}
}

// deliver invokes a single handler with panic isolation.
func (d *Dispatcher) deliver(e subscriberEntry, event Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("event handler panicked",
				"event_type", event.Type,
				"plan_id", event.PlanID,
				"panic", r,
			)
		}
	}()
	e.handler(event)
}

// NoopSink discards every event. It is the default sink for plans built
// without an explicit event consumer.
type NoopSink struct{}

// Publish implements Sink by doing nothing.
func (NoopSink) Publish(Event) {}

// Recorder is a Sink that appends every published event to an in-memory
// log. It backs audit trails and assertions in tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Publish implements Sink by appending the event.
func (r *Recorder) Publish(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events in publication order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns just the event types, in publication order.
// Convenient for order assertions.
func (r *Recorder) Types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

// Reset discards all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// Compile-time interface checks.
var (
	_ Sink = (*Dispatcher)(nil)
	_ Sink = NoopSink{}
	_ Sink = (*Recorder)(nil)
)
