package dispatcher

import "sync/atomic"

// entry is one registered callback. Only its membership in the event list and
// its removed/fired flags change after creation.
type entry struct {
	id       string
	event    string
	name     string
	once     bool
	callback Callback

	removed atomic.Bool
	fired   atomic.Bool
}

// claim reports whether the entry may run now. Fire-once entries can only be
// claimed by a single invocation.
func (e *entry) claim() bool {
	if e.removed.Load() {
		return false
	}
	if e.once {
		return e.fired.CompareAndSwap(false, true)
	}
	return true
}

// Subscriber describes a registered callback
type Subscriber struct {
	ID   string
	Name string
	Once bool
}

func (e *entry) describe() Subscriber {
	return Subscriber{ID: e.id, Name: e.name, Once: e.once}
}
