package dispatcher

import (
	"maps"
	"slices"
	"sync"

	"github.com/KirkDiggler/dispatcher/internal/errors"
	"github.com/KirkDiggler/dispatcher/internal/uuid"
	"github.com/KirkDiggler/dispatcher/internal/validator"
	"go.uber.org/zap"
)

var (
	// ErrInvalidEventName is returned when an event name is empty
	ErrInvalidEventName = errors.InvalidArgument("event name must be a non-empty string")

	// ErrNilCallback is returned when subscribing a nil callback
	ErrNilCallback = errors.InvalidArgument("callback must not be nil")

	// ErrDisposed is returned when subscribing to a disposed bus
	ErrDisposed = errors.Disposed("bus is disposed")
)

// Bus manages event subscribers and dispatches published events to them
type Bus struct {
	mu       sync.RWMutex
	events   map[string][]*entry
	disposed bool

	logger    *zap.Logger
	ids       uuid.Generator
	observers observers

	inflightMu sync.Mutex
	inflight   int
	idle       *sync.Cond
}

// CreateBus creates a new, independent bus
func CreateBus(opts ...Option) *Bus {
	b := &Bus{
		events: make(map[string][]*entry),
		logger: zap.NewNop(),
		ids:    uuid.NewGoogleUUIDGenerator(),
	}
	b.idle = sync.NewCond(&b.inflightMu)

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Subscribe registers callback for event and returns a function that removes
// exactly this subscription. The optional name allows removal through Unsubscribe.
func (b *Bus) Subscribe(event string, callback Callback, name ...string) (UnsubscribeFunc, error) {
	return b.subscribe(event, callback, false, name)
}

// SubscribeOnce is Subscribe for a callback that removes itself after its first
// invocation. The returned function may be used to cancel it before it fires.
func (b *Bus) SubscribeOnce(event string, callback Callback, name ...string) (UnsubscribeFunc, error) {
	return b.subscribe(event, callback, true, name)
}

func (b *Bus) subscribe(event string, callback Callback, once bool, name []string) (UnsubscribeFunc, error) {
	if !validator.IsNonEmptyString(event) {
		return nil, ErrInvalidEventName
	}
	if callback == nil {
		return nil, errors.Wrapf(ErrNilCallback, "subscribe %q", event)
	}

	e := &entry{
		id:       b.ids.New(),
		event:    event,
		once:     once,
		callback: callback,
	}
	if len(name) > 0 {
		e.name = name[0]
	}

	b.mu.Lock()
	if b.disposed {
		b.mu.Unlock()
		return nil, ErrDisposed
	}
	b.events[event] = append(b.events[event], e)
	b.mu.Unlock()

	b.logger.Debug("subscribed",
		zap.String("event", event),
		zap.String("subscriber", e.name),
		zap.String("id", e.id),
		zap.Bool("once", once))

	return func() { b.remove(e) }, nil
}

// Unsubscribe removes every subscriber of event with the given name. Without a
// name every subscriber of event is removed. Unknown events and names are ignored.
func (b *Bus) Unsubscribe(event string, name ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries, ok := b.events[event]
	if !ok {
		return
	}

	if len(name) == 0 {
		for _, e := range entries {
			e.removed.Store(true)
		}
		delete(b.events, event)
		b.logger.Debug("unsubscribed all", zap.String("event", event), zap.Int("count", len(entries)))
		return
	}

	removed := 0
	kept := entries[:0]
	for _, e := range entries {
		if e.name == name[0] {
			e.removed.Store(true)
			removed++
			continue
		}
		kept = append(kept, e)
	}
	clear(entries[len(kept):])
	b.store(event, kept)

	if removed > 0 {
		b.logger.Debug("unsubscribed",
			zap.String("event", event),
			zap.String("subscriber", name[0]),
			zap.Int("count", removed))
	}
}

// remove drops a single entry by identity. Only the first call for an entry does anything.
func (b *Bus) remove(e *entry) {
	if !e.removed.CompareAndSwap(false, true) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	entries := b.events[e.event]
	i := slices.Index(entries, e)
	if i < 0 {
		return
	}
	b.store(e.event, slices.Delete(entries, i, i+1))

	b.logger.Debug("removed subscription",
		zap.String("event", e.event),
		zap.String("subscriber", e.name),
		zap.String("id", e.id))
}

// store keeps the invariant that events without subscribers are absent. Caller holds mu.
func (b *Bus) store(event string, entries []*entry) {
	if len(entries) == 0 {
		delete(b.events, event)
		return
	}
	b.events[event] = entries
}

// snapshot returns a copy of the subscriber list for event
func (b *Bus) snapshot(event string) []*entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return slices.Clone(b.events[event])
}

// ListenerCount returns the number of subscribers for event
func (b *Bus) ListenerCount(event string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.events[event])
}

// TotalListenerCount returns the number of subscribers across all events
func (b *Bus) TotalListenerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	total := 0
	for _, entries := range b.events {
		total += len(entries)
	}
	return total
}

// Events returns the names of events that currently have subscribers, sorted
func (b *Bus) Events() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return slices.Sorted(maps.Keys(b.events))
}

// Subscribers describes the subscribers of event in delivery order
func (b *Bus) Subscribers(event string) []Subscriber {
	entries := b.snapshot(event)

	subs := make([]Subscriber, len(entries))
	for i, e := range entries {
		subs[i] = e.describe()
	}
	return subs
}

// Dispose removes every subscription and rejects further subscribes.
// Publishing to a disposed bus does nothing.
func (b *Bus) Dispose() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.disposed {
		return
	}

	for _, entries := range b.events {
		for _, e := range entries {
			e.removed.Store(true)
		}
	}
	b.events = make(map[string][]*entry)
	b.disposed = true

	b.logger.Debug("disposed")
}

// Disposed reports whether Dispose has been called
func (b *Bus) Disposed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.disposed
}
