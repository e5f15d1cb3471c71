package dispatcher

import "sync"

var (
	defaultBus  *Bus
	defaultOnce sync.Once
)

// Default returns the process-wide bus, creating it on first use. It lives for
// the life of the process; it is only emptied by explicit unsubscribes.
func Default() *Bus {
	defaultOnce.Do(func() {
		defaultBus = CreateBus()
	})
	return defaultBus
}

// InitDefault creates the process-wide bus with opts. It only has an effect
// when called before the first call to Default and reports whether it did.
func InitDefault(opts ...Option) bool {
	initialized := false
	defaultOnce.Do(func() {
		defaultBus = CreateBus(opts...)
		initialized = true
	})
	return initialized
}
