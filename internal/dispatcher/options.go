package dispatcher

import (
	"github.com/KirkDiggler/dispatcher/internal/uuid"
	"go.uber.org/zap"
)

// Option configures a Bus
type Option func(*Bus)

// WithLogger sets the logger used for subscription changes and swallowed failures
func WithLogger(logger *zap.Logger) Option {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger.Named("dispatcher")
		}
	}
}

// WithObserver adds an observer. May be given several times.
func WithObserver(observer Observer) Option {
	return func(b *Bus) {
		if observer != nil {
			b.observers = append(b.observers, observer)
		}
	}
}

// WithIDGenerator sets the generator for subscription IDs
func WithIDGenerator(gen uuid.Generator) Option {
	return func(b *Bus) {
		if gen != nil {
			b.ids = gen
		}
	}
}
