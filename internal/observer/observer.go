// Package observer runs per-entity setup and teardown driven by join and
// leave events on a dispatcher bus.
package observer

import (
	"sync"

	"github.com/KirkDiggler/dispatcher/internal/dispatcher"
	"github.com/KirkDiggler/dispatcher/internal/errors"
	"github.com/KirkDiggler/dispatcher/internal/validator"
)

// SetupFunc is called once for each entity that joins. The returned cleanup,
// if any, runs when the entity leaves or the observer stops.
type SetupFunc func(key string) (cleanup func())

type tracked struct {
	cleanup func()
	gone    bool
	ready   bool
}

type lifecycle struct {
	fn SetupFunc

	mu       sync.Mutex
	entities map[string]*tracked
	stopped  bool
}

// Observe calls fn for every key in existing and then for every key published
// on joinEvent. Publishing the key on leaveEvent runs its cleanup. Join and
// leave events carry the entity key as their first argument.
//
// The returned stop function unsubscribes from both events and runs every
// outstanding cleanup. It is safe to call more than once.
func Observe(bus *dispatcher.Bus, joinEvent, leaveEvent string, fn SetupFunc, existing ...string) (func(), error) {
	if bus == nil {
		return nil, errors.InvalidArgument("bus is required")
	}
	if fn == nil {
		return nil, errors.InvalidArgument("setup func is required")
	}
	if !validator.IsNonEmptyString(joinEvent) || !validator.IsNonEmptyString(leaveEvent) {
		return nil, dispatcher.ErrInvalidEventName
	}

	l := &lifecycle{
		fn:       fn,
		entities: make(map[string]*tracked),
	}

	unsubJoin, err := bus.Subscribe(joinEvent, l.onEvent(l.join), "observer.join")
	if err != nil {
		return nil, errors.Wrap(err, "failed to subscribe to join event")
	}
	unsubLeave, err := bus.Subscribe(leaveEvent, l.onEvent(l.leave), "observer.leave")
	if err != nil {
		unsubJoin()
		return nil, errors.Wrap(err, "failed to subscribe to leave event")
	}

	for _, key := range existing {
		l.join(key)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			unsubJoin()
			unsubLeave()
			l.stop()
		})
	}, nil
}

func (l *lifecycle) onEvent(handle func(key string)) dispatcher.Callback {
	return func(args ...any) (any, error) {
		if len(args) == 0 {
			return nil, errors.InvalidArgument("entity key is required")
		}
		key, ok := args[0].(string)
		if !ok || !validator.IsNonEmptyString(key) {
			return nil, errors.InvalidArgumentf("entity key must be a non-empty string, got %T", args[0])
		}
		handle(key)
		return nil, nil
	}
}

func (l *lifecycle) join(key string) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	if _, exists := l.entities[key]; exists {
		l.mu.Unlock()
		return
	}
	t := &tracked{}
	l.entities[key] = t
	l.mu.Unlock()

	cleanup := l.fn(key)

	l.mu.Lock()
	t.cleanup = cleanup
	t.ready = true
	gone := t.gone
	l.mu.Unlock()

	// The entity left, or the observer stopped, while setup was running.
	if gone && cleanup != nil {
		cleanup()
	}
}

func (l *lifecycle) leave(key string) {
	l.mu.Lock()
	t, exists := l.entities[key]
	if !exists {
		l.mu.Unlock()
		return
	}
	delete(l.entities, key)
	cleanup := l.detach(t)
	l.mu.Unlock()

	if cleanup != nil {
		cleanup()
	}
}

func (l *lifecycle) stop() {
	l.mu.Lock()
	l.stopped = true
	var cleanups []func()
	for key, t := range l.entities {
		delete(l.entities, key)
		if cleanup := l.detach(t); cleanup != nil {
			cleanups = append(cleanups, cleanup)
		}
	}
	l.mu.Unlock()

	for _, cleanup := range cleanups {
		cleanup()
	}
}

// detach marks t gone and returns the cleanup to run now, if setup finished.
// Must hold l.mu.
func (l *lifecycle) detach(t *tracked) func() {
	t.gone = true
	if !t.ready {
		return nil
	}
	return t.cleanup
}
